package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInventoryBagSlots(t *testing.T) {
	inv := NewInventory(1, 2)
	assert.True(t, inv.HasBagSpace())
	assert.Equal(t, 0, inv.NextBagSlot())

	inv.Items = append(inv.Items, &ItemInstance{InstanceID: 1, TemplateID: 10, Quantity: 1, Slot: 0})
	assert.Equal(t, 1, inv.NextBagSlot())
	assert.True(t, inv.HasBagSpace())

	inv.Items = append(inv.Items, &ItemInstance{InstanceID: 2, TemplateID: 11, Quantity: 1, Slot: 1})
	assert.False(t, inv.HasBagSpace())

	// 已裝備的物品不佔背包格
	inv.Items[1].Equipped = true
	assert.True(t, inv.HasBagSpace())
	assert.Equal(t, 1, inv.UsedBagSlots())
	assert.Equal(t, 1, inv.NextBagSlot())
}

func TestInventoryStackWithRoom(t *testing.T) {
	inv := NewInventory(1, 10)
	full := &ItemInstance{InstanceID: 1, TemplateID: 5, Quantity: 99, Slot: 0}
	part := &ItemInstance{InstanceID: 2, TemplateID: 5, Quantity: 3, Slot: 1}
	worn := &ItemInstance{InstanceID: 3, TemplateID: 5, Quantity: 1, Slot: 2, Equipped: true}
	inv.Items = append(inv.Items, full, part, worn)

	// 跳過滿疊和已裝備的
	assert.Same(t, part, inv.StackWithRoom(5, 99))
	assert.Nil(t, inv.StackWithRoom(6, 99))

	part.Quantity = 99
	assert.Nil(t, inv.StackWithRoom(5, 99))
}

func TestInventoryFindAndRemove(t *testing.T) {
	inv := NewInventory(1, 10)
	a := &ItemInstance{InstanceID: 1, TemplateID: 5, Quantity: 1, Slot: 0}
	b := &ItemInstance{InstanceID: 2, TemplateID: 6, Quantity: 1, Slot: 1}
	inv.Items = append(inv.Items, a, b)

	assert.Same(t, b, inv.Find(2))
	assert.Nil(t, inv.Find(99))

	inv.Remove(1)
	assert.Nil(t, inv.Find(1))
	assert.Len(t, inv.Items, 1)

	inv.Remove(99) // no-op
	assert.Len(t, inv.Items, 1)
}
