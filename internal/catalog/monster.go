package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// MonsterTemplate is an immutable monster definition.
type MonsterTemplate struct {
	ID            int32   `yaml:"id"`
	Name          string  `yaml:"name"`
	Level         int     `yaml:"level"`
	MaxHealth     int     `yaml:"max_health"`
	AttackPower   int     `yaml:"attack_power"`
	Defense       int     `yaml:"defense"`
	ExpReward     int     `yaml:"exp_reward"`
	AttackSpeed   float64 `yaml:"attack_speed"` // attacks per second
	AttackRange   float64 `yaml:"attack_range"`
	MoveSpeed     float64 `yaml:"move_speed"`
	AggroRange    float64 `yaml:"aggro_range"`
	SpawnX        float64 `yaml:"spawn_x"`
	SpawnY        float64 `yaml:"spawn_y"`
	SpawnZ        float64 `yaml:"spawn_z"`
	SpawnRadius   float64 `yaml:"spawn_radius"`
	RespawnTimeMS int64   `yaml:"respawn_time_ms"`
	SpawnCount    int     `yaml:"spawn_count"`
}

type monsterListFile struct {
	Monsters []*MonsterTemplate `yaml:"monsters"`
}

// MonsterTable holds all monster templates indexed by template ID.
type MonsterTable struct {
	byID map[int32]*MonsterTemplate
	all  []*MonsterTemplate
}

func (t *MonsterTable) Get(id int32) *MonsterTemplate {
	return t.byID[id]
}

func (t *MonsterTable) Count() int {
	return len(t.byID)
}

// LoadMonsterTable loads monster templates from a YAML file.
func LoadMonsterTable(path string) (*MonsterTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read monster_list: %w", err)
	}
	var f monsterListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse monster_list: %w", err)
	}
	t := &MonsterTable{byID: make(map[int32]*MonsterTemplate, len(f.Monsters))}
	for _, m := range f.Monsters {
		if m.AttackRange <= 0 {
			m.AttackRange = 2.0
		}
		if m.AttackSpeed <= 0 {
			m.AttackSpeed = 1.0
		}
		if m.SpawnCount < 1 {
			m.SpawnCount = 1
		}
		t.byID[m.ID] = m
		t.all = append(t.all, m)
	}
	sort.Slice(t.all, func(i, j int) bool { return t.all[i].ID < t.all[j].ID })
	return t, nil
}

// All returns every template ordered by ID.
func (t *MonsterTable) All() []*MonsterTemplate {
	return t.all
}
