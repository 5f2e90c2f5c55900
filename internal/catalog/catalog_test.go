package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadItemTableDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "item_list.yaml", `
items:
  - id: 1
    name: potion
    type: consumable
    max_stack: 99
  - id: 2
    name: herb
    type: material
  - id: 101
    name: sword
    type: equipment
    slot: weapon
    max_stack: 50
    bonuses:
      atk: 5
`)
	tbl, err := LoadItemTable(path)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Count())

	assert.Equal(t, 99, tbl.Get(1).MaxStack)
	// 未指定 max_stack 的品項至少可放 1 個
	assert.Equal(t, 1, tbl.Get(2).MaxStack)
	// 裝備永遠不可堆疊，即使資料表寫了別的值
	assert.Equal(t, 1, tbl.Get(101).MaxStack)
	assert.Equal(t, 5, tbl.Get(101).Bonuses.Atk)
	assert.Nil(t, tbl.Get(999))
}

func TestLoadSkillTableDefaultsAndForClass(t *testing.T) {
	path := writeFile(t, t.TempDir(), "skill_list.yaml", `
skills:
  - id: 1
    name: bash
    skill_type: active
    damage_type: physical
    target_type: enemy
    required_class: warrior
    range: 2.5
    levels:
      - { level: 1, base_damage: 10, damage_multiplier: 1.2 }
      - { level: 2, base_damage: 18, damage_multiplier: 1.3 }
  - id: 31
    name: first aid
    skill_type: active
    damage_type: none
    target_type: self
    max_level: 5
    levels:
      - { level: 1, base_healing: 25 }
`)
	tbl, err := LoadSkillTable(path)
	require.NoError(t, err)

	// max_level 預設為等級表長度
	assert.Equal(t, 2, tbl.Get(1).MaxLevel)
	assert.Equal(t, 5, tbl.Get(31).MaxLevel)

	require.NotNil(t, tbl.Get(1).LevelData(2))
	assert.Equal(t, 18, tbl.Get(1).LevelData(2).BaseDamage)
	assert.Nil(t, tbl.Get(1).LevelData(3))

	// 無職業限制的技能對所有職業可見
	warrior := tbl.ForClass("warrior")
	mage := tbl.ForClass("mage")
	assert.Len(t, warrior, 2)
	assert.Len(t, mage, 1)
	assert.Equal(t, int32(31), mage[0].ID)
}

func TestLoadMonsterTableDefaultsAndOrder(t *testing.T) {
	path := writeFile(t, t.TempDir(), "monster_list.yaml", `
monsters:
  - id: 3
    name: goblin
    level: 7
    max_health: 200
  - id: 1
    name: slime
    level: 1
    max_health: 50
    spawn_count: 5
`)
	tbl, err := LoadMonsterTable(path)
	require.NoError(t, err)

	assert.Equal(t, 1, tbl.Get(3).SpawnCount)
	assert.Equal(t, 5, tbl.Get(1).SpawnCount)

	all := tbl.All()
	require.Len(t, all, 2)
	assert.Equal(t, int32(1), all[0].ID)
	assert.Equal(t, int32(3), all[1].ID)
}

func TestLoadClassTableDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "class_list.yaml", `
classes:
  - name: warrior
    base_str: 12
    base_health: 150
`)
	tbl, err := LoadClassTable(path)
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.Get("warrior").StatusPointsPerLevel)
	assert.Nil(t, tbl.Get("ninja"))
}

func TestLoadTerrainValidation(t *testing.T) {
	dir := t.TempDir()

	bad := writeFile(t, dir, "ragged.yaml", `
cell_size: 10.0
heights:
  - [0.0, 1.0]
  - [0.0]
`)
	_, err := LoadTerrain(bad)
	assert.Error(t, err)

	tiny := writeFile(t, dir, "tiny.yaml", `
cell_size: 10.0
heights:
  - [0.0]
`)
	_, err = LoadTerrain(tiny)
	assert.Error(t, err)
}

func TestTerrainHeightAt(t *testing.T) {
	terrain := &Terrain{
		CellSize: 10.0,
		Heights: [][]float64{
			{0.0, 2.0},
			{4.0, 6.0},
		},
	}

	assert.InDelta(t, 0.0, terrain.HeightAt(0, 0), 1e-9)
	assert.InDelta(t, 2.0, terrain.HeightAt(10, 0), 1e-9)
	assert.InDelta(t, 4.0, terrain.HeightAt(0, 10), 1e-9)
	// 中心點：四角雙線性平均
	assert.InDelta(t, 3.0, terrain.HeightAt(5, 5), 1e-9)
	// 超界取樣貼齊邊緣
	assert.InDelta(t, 6.0, terrain.HeightAt(100, 100), 1e-9)
}

func TestTerrainClamp(t *testing.T) {
	terrain := &Terrain{
		CellSize: 10.0,
		Heights: [][]float64{
			{0.0, 2.0},
			{4.0, 6.0},
		},
	}

	x, y, z := terrain.Clamp(-5, 25)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 10.0, z)
	assert.InDelta(t, 4.0, y, 1e-9)

	x, _, z = terrain.Clamp(3, 7)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 7.0, z)
}
