package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Skill discriminators.
const (
	SkillTypeActive  = "active"
	SkillTypePassive = "passive"
	SkillTypeBuff    = "buff"

	DamagePhysical = "physical"
	DamageMagical  = "magical"
	DamageTrue     = "true"
	DamageNone     = "none"

	TargetEnemy = "enemy"
	TargetSelf  = "self"
	TargetAlly  = "ally"
	TargetArea  = "area"
)

// SkillLevelData is one row of a skill's per-level table.
type SkillLevelData struct {
	Level           int     `yaml:"level"`
	BaseDamage      int     `yaml:"base_damage"`
	BaseHealing     int     `yaml:"base_healing"`
	DamageMult      float64 `yaml:"damage_multiplier"`
	CritChanceBonus float64 `yaml:"crit_chance_bonus"`
	StatusPointCost int     `yaml:"status_point_cost"`
}

// SkillEffect describes an effect applied on successful use (stat buff,
// damage over time, stun …).
type SkillEffect struct {
	Type       string  `yaml:"type"`        // "statBuff" | "dot" | "stun"
	TargetStat string  `yaml:"target_stat"` // for statBuff
	Value      int     `yaml:"value"`
	DurationMS int64   `yaml:"duration_ms"`
	Interval   float64 `yaml:"interval"` // dot tick interval seconds
}

// SkillTemplate is an immutable skill definition.
type SkillTemplate struct {
	ID            int32            `yaml:"id"`
	Name          string           `yaml:"name"`
	SkillType     string           `yaml:"skill_type"`
	DamageType    string           `yaml:"damage_type"`
	TargetType    string           `yaml:"target_type"`
	RequiredLevel int              `yaml:"required_level"`
	RequiredClass string           `yaml:"required_class"`
	MaxLevel      int              `yaml:"max_level"`
	ManaCost      int              `yaml:"mana_cost"`
	HealthCost    int              `yaml:"health_cost"`
	Cooldown      float64          `yaml:"cooldown"`  // seconds
	CastTime      float64          `yaml:"cast_time"` // seconds
	Range         float64          `yaml:"range"`
	AreaRadius    float64          `yaml:"area_radius"`
	Levels        []SkillLevelData `yaml:"levels"`
	Effects       []SkillEffect    `yaml:"effects"`
}

// LevelData returns the row for a skill level, or nil if out of table.
func (s *SkillTemplate) LevelData(level int) *SkillLevelData {
	for i := range s.Levels {
		if s.Levels[i].Level == level {
			return &s.Levels[i]
		}
	}
	return nil
}

type skillListFile struct {
	Skills []*SkillTemplate `yaml:"skills"`
}

// SkillTable holds all skill templates indexed by skill ID.
type SkillTable struct {
	byID map[int32]*SkillTemplate
	all  []*SkillTemplate
}

func (t *SkillTable) Get(id int32) *SkillTemplate {
	return t.byID[id]
}

func (t *SkillTable) Count() int {
	return len(t.byID)
}

// ForClass returns every skill template learnable by the given class, in
// file order. Templates with no required class match every class.
func (t *SkillTable) ForClass(class string) []*SkillTemplate {
	out := make([]*SkillTemplate, 0, len(t.all))
	for _, s := range t.all {
		if s.RequiredClass == "" || s.RequiredClass == class {
			out = append(out, s)
		}
	}
	return out
}

// LoadSkillTable loads skill templates from a YAML file.
func LoadSkillTable(path string) (*SkillTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skill_list: %w", err)
	}
	var f skillListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse skill_list: %w", err)
	}
	t := &SkillTable{byID: make(map[int32]*SkillTemplate, len(f.Skills))}
	for _, s := range f.Skills {
		if s.MaxLevel < 1 {
			s.MaxLevel = len(s.Levels)
		}
		t.byID[s.ID] = s
		t.all = append(t.all, s)
	}
	return t, nil
}
