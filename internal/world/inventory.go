package world

import (
	"github.com/runekeep/server/internal/catalog"
)

// ItemInstance is one owned item stack.
type ItemInstance struct {
	InstanceID int64
	TemplateID int32
	Quantity   int
	Slot       int // bag slot index; cosmetic ordering only
	Equipped   bool
}

// Inventory is the per-character item state. Equipment maps slot keys to
// items that must belong to Items with Equipped=true and a matching
// template slot.
type Inventory struct {
	CharacterID int64
	MaxSlots    int
	Gold        int64
	Items       []*ItemInstance
	Equipment   map[string]*ItemInstance
}

func NewInventory(characterID int64, maxSlots int) *Inventory {
	return &Inventory{
		CharacterID: characterID,
		MaxSlots:    maxSlots,
		Equipment:   make(map[string]*ItemInstance, len(catalog.EquipSlots)),
	}
}

// Find returns the item with the given instance ID, or nil.
func (inv *Inventory) Find(instanceID int64) *ItemInstance {
	for _, it := range inv.Items {
		if it.InstanceID == instanceID {
			return it
		}
	}
	return nil
}

// UsedBagSlots counts non-equipped item stacks.
func (inv *Inventory) UsedBagSlots() int {
	n := 0
	for _, it := range inv.Items {
		if !it.Equipped {
			n++
		}
	}
	return n
}

// HasBagSpace reports whether one more non-equipped stack fits.
func (inv *Inventory) HasBagSpace() bool {
	return inv.UsedBagSlots() < inv.MaxSlots
}

// NextBagSlot returns the lowest free bag slot index.
func (inv *Inventory) NextBagSlot() int {
	used := make(map[int]bool, len(inv.Items))
	for _, it := range inv.Items {
		if !it.Equipped {
			used[it.Slot] = true
		}
	}
	for i := 0; ; i++ {
		if !used[i] {
			return i
		}
	}
}

// StackWithRoom returns a non-equipped stack of the template with room
// left under maxStack, or nil.
func (inv *Inventory) StackWithRoom(templateID int32, maxStack int) *ItemInstance {
	for _, it := range inv.Items {
		if !it.Equipped && it.TemplateID == templateID && it.Quantity < maxStack {
			return it
		}
	}
	return nil
}

// Remove deletes an item instance from the bag entirely.
func (inv *Inventory) Remove(instanceID int64) {
	for i, it := range inv.Items {
		if it.InstanceID == instanceID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			return
		}
	}
}
