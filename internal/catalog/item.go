package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Item type discriminators.
const (
	ItemTypeConsumable = "consumable"
	ItemTypeEquipment  = "equipment"
	ItemTypeMaterial   = "material"
)

// Equipment slot keys. These are also the JSON keys of the inventory
// equipment map on the wire.
const (
	SlotWeapon   = "weapon"
	SlotArmor    = "armor"
	SlotHelmet   = "helmet"
	SlotBoots    = "boots"
	SlotGloves   = "gloves"
	SlotRing     = "ring"
	SlotNecklace = "necklace"
)

// EquipSlots lists every equipment slot key in a stable order.
var EquipSlots = []string{
	SlotWeapon, SlotArmor, SlotHelmet, SlotBoots,
	SlotGloves, SlotRing, SlotNecklace,
}

// StatBonuses are the additive stat contributions of an equipped item.
type StatBonuses struct {
	Str         int     `yaml:"str"`
	Int         int     `yaml:"int"`
	Dex         int     `yaml:"dex"`
	Vit         int     `yaml:"vit"`
	Atk         int     `yaml:"atk"`
	Matk        int     `yaml:"matk"`
	Def         int     `yaml:"def"`
	AttackSpeed float64 `yaml:"attack_speed"`
	MaxHealth   int     `yaml:"max_health"`
	MaxMana     int     `yaml:"max_mana"`
}

// ItemTemplate is an immutable item definition.
type ItemTemplate struct {
	ID            int32       `yaml:"id"`
	Name          string      `yaml:"name"`
	Type          string      `yaml:"type"` // consumable | equipment | material
	MaxStack      int         `yaml:"max_stack"`
	RequiredLevel int         `yaml:"required_level"`
	RequiredClass string      `yaml:"required_class"`
	Slot          string      `yaml:"slot"` // equipment slot key, empty for non-equipment
	Bonuses       StatBonuses `yaml:"bonuses"`
	EffectType    string      `yaml:"effect_type"`   // e.g. "restore"
	EffectTarget  string      `yaml:"effect_target"` // "health" | "mana"
	EffectValue   int         `yaml:"effect_value"`
}

type itemListFile struct {
	Items []*ItemTemplate `yaml:"items"`
}

// ItemTable holds all item templates indexed by template ID.
type ItemTable struct {
	byID map[int32]*ItemTemplate
}

func (t *ItemTable) Get(id int32) *ItemTemplate {
	return t.byID[id]
}

func (t *ItemTable) Count() int {
	return len(t.byID)
}

// LoadItemTable loads item templates from a YAML file.
func LoadItemTable(path string) (*ItemTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item_list: %w", err)
	}
	var f itemListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse item_list: %w", err)
	}
	t := &ItemTable{byID: make(map[int32]*ItemTemplate, len(f.Items))}
	for _, it := range f.Items {
		// 裝備不可堆疊；其他品項至少可放 1 個
		if it.Type == ItemTypeEquipment || it.MaxStack < 1 {
			it.MaxStack = maxStackFor(it)
		}
		t.byID[it.ID] = it
	}
	return t, nil
}

func maxStackFor(it *ItemTemplate) int {
	if it.Type == ItemTypeEquipment {
		return 1
	}
	if it.MaxStack < 1 {
		return 1
	}
	return it.MaxStack
}
