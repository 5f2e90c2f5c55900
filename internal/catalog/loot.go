package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LootItem is a single possible item drop.
type LootItem struct {
	TemplateID int32 `yaml:"template_id"`
	Chance     int   `yaml:"chance"` // out of 1,000,000 (100% = 1000000)
	Min        int   `yaml:"min"`
	Max        int   `yaml:"max"`
}

// LootEntry is the drop definition for one monster template.
type LootEntry struct {
	MonsterID int32      `yaml:"monster_id"`
	GoldMin   int        `yaml:"gold_min"`
	GoldMax   int        `yaml:"gold_max"`
	Items     []LootItem `yaml:"items"`
}

type lootListFile struct {
	Loot []*LootEntry `yaml:"loot"`
}

// LootTable holds drop definitions indexed by monster template ID.
type LootTable struct {
	byMonster map[int32]*LootEntry
}

// Get returns the loot entry for a monster template, or nil if none defined.
func (t *LootTable) Get(monsterID int32) *LootEntry {
	return t.byMonster[monsterID]
}

func (t *LootTable) Count() int {
	return len(t.byMonster)
}

// LoadLootTable loads loot definitions from a YAML file.
func LoadLootTable(path string) (*LootTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read loot_list: %w", err)
	}
	var f lootListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse loot_list: %w", err)
	}
	t := &LootTable{byMonster: make(map[int32]*LootEntry, len(f.Loot))}
	for _, e := range f.Loot {
		t.byMonster[e.MonsterID] = e
	}
	return t, nil
}
