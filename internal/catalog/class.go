package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StarterItem seeds a newly created character's inventory.
type StarterItem struct {
	TemplateID int32 `yaml:"template_id"`
	Quantity   int   `yaml:"quantity"`
}

// ClassTemplate defines the per-class balance table: base stats, growth,
// and the coefficients of the derived-stat formula. Derived stats are
// always recomputed from this table plus equipment — never stored.
type ClassTemplate struct {
	Name string `yaml:"name"`

	BaseStr int `yaml:"base_str"`
	BaseInt int `yaml:"base_int"`
	BaseDex int `yaml:"base_dex"`
	BaseVit int `yaml:"base_vit"`

	// Per-level base stat growth.
	StrPerLevel int `yaml:"str_per_level"`
	IntPerLevel int `yaml:"int_per_level"`
	DexPerLevel int `yaml:"dex_per_level"`
	VitPerLevel int `yaml:"vit_per_level"`

	// Resource pools.
	BaseHealth     int `yaml:"base_health"`
	HealthPerLevel int `yaml:"health_per_level"`
	HealthPerVit   int `yaml:"health_per_vit"`
	BaseMana       int `yaml:"base_mana"`
	ManaPerLevel   int `yaml:"mana_per_level"`
	ManaPerInt     int `yaml:"mana_per_int"`

	// Derived-stat coefficients.
	BaseAtk    int     `yaml:"base_atk"`
	AtkPerStr  float64 `yaml:"atk_per_str"`
	BaseMatk   int     `yaml:"base_matk"`
	MatkPerInt float64 `yaml:"matk_per_int"`
	BaseDef    int     `yaml:"base_def"`
	DefPerVit  float64 `yaml:"def_per_vit"`
	BaseAspd   float64 `yaml:"base_attack_speed"`
	AspdPerDex float64 `yaml:"attack_speed_per_dex"`

	StatusPointsPerLevel int `yaml:"status_points_per_level"`

	SpawnX float64 `yaml:"spawn_x"`
	SpawnY float64 `yaml:"spawn_y"`
	SpawnZ float64 `yaml:"spawn_z"`

	StarterItems []StarterItem `yaml:"starter_items"`
	StarterGold  int           `yaml:"starter_gold"`
}

type classListFile struct {
	Classes []*ClassTemplate `yaml:"classes"`
}

// ClassTable holds class templates indexed by class name.
type ClassTable struct {
	byName map[string]*ClassTemplate
}

func (t *ClassTable) Get(name string) *ClassTemplate {
	return t.byName[name]
}

func (t *ClassTable) Count() int {
	return len(t.byName)
}

// LoadClassTable loads class templates from a YAML file.
func LoadClassTable(path string) (*ClassTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class_list: %w", err)
	}
	var f classListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse class_list: %w", err)
	}
	t := &ClassTable{byName: make(map[string]*ClassTemplate, len(f.Classes))}
	for _, c := range f.Classes {
		if c.StatusPointsPerLevel <= 0 {
			c.StatusPointsPerLevel = 5
		}
		t.byName[c.Name] = c
	}
	return t, nil
}
