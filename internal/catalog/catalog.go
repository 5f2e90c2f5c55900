// Package catalog holds the immutable static game data tables loaded at
// boot: monster, item and skill templates, loot tables, class tables, and
// the terrain heightmap. Tables are read-only after Load and safe for
// concurrent use.
package catalog

import (
	"fmt"
	"path/filepath"
)

// Catalog aggregates every static table.
type Catalog struct {
	Monsters *MonsterTable
	Items    *ItemTable
	Skills   *SkillTable
	Loot     *LootTable
	Classes  *ClassTable
	Terrain  *Terrain
}

// Load reads every table from dir. Any missing or malformed table is a
// boot-time failure.
func Load(dir string) (*Catalog, error) {
	monsters, err := LoadMonsterTable(filepath.Join(dir, "monster_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load monster table: %w", err)
	}
	items, err := LoadItemTable(filepath.Join(dir, "item_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load item table: %w", err)
	}
	skills, err := LoadSkillTable(filepath.Join(dir, "skill_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load skill table: %w", err)
	}
	loot, err := LoadLootTable(filepath.Join(dir, "loot_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load loot table: %w", err)
	}
	classes, err := LoadClassTable(filepath.Join(dir, "class_list.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load class table: %w", err)
	}
	terrain, err := LoadTerrain(filepath.Join(dir, "terrain.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load terrain: %w", err)
	}
	return &Catalog{
		Monsters: monsters,
		Items:    items,
		Skills:   skills,
		Loot:     loot,
		Classes:  classes,
		Terrain:  terrain,
	}, nil
}
