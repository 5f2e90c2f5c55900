package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

func newInventoryFixture(t *testing.T) (*InventoryEngine, *world.Player, *fakeInvStore) {
	t.Helper()
	cat := newTestCatalog(t)
	inv := &fakeInvStore{}
	chars := &fakeCharStore{}
	e := NewInventoryEngine(cat, inv, chars, &fakeHub{}, 2*time.Second, zap.NewNop())
	p := newTestWarrior(t, cat)
	return e, p, inv
}

func TestEquipUnequipRoundTrip(t *testing.T) {
	e, p, store := newInventoryFixture(t)
	ctx := context.Background()

	sword := &world.ItemInstance{InstanceID: 1001, TemplateID: 101, Quantity: 1, Slot: 0}
	p.Inv.Items = append(p.Inv.Items, sword)

	effBefore := p.Eff
	derivedBefore := p.Derived
	maxHealthBefore := p.MaxHealth
	slotsBefore := p.Inv.UsedBagSlots()

	e.Equip(ctx, p, 1001)

	// 劍帶 str+2 與 atk+5：先加屬性再加固定值
	assert.Equal(t, effBefore.Str+2, p.Eff.Str)
	assert.Equal(t, derivedBefore.Atk+2*2+5, p.Derived.Atk)
	assert.True(t, sword.Equipped)
	assert.Same(t, sword, p.Inv.Equipment["weapon"])
	assert.Equal(t, slotsBefore-1, p.Inv.UsedBagSlots())
	require.Len(t, store.saves, 1)

	e.Unequip(ctx, p, "weapon")

	// 卸下後屬性與背包佔用完全回到裝備前的狀態
	assert.Equal(t, effBefore, p.Eff)
	assert.Equal(t, derivedBefore, p.Derived)
	assert.Equal(t, maxHealthBefore, p.MaxHealth)
	assert.False(t, sword.Equipped)
	assert.Nil(t, p.Inv.Equipment["weapon"])
	assert.Equal(t, slotsBefore, p.Inv.UsedBagSlots())
	require.Len(t, store.saves, 2)

	conn := p.Session.(*fakeConn)
	require.Len(t, conn.sent, 2)
	_, ok := conn.sent[0].(*protocol.ItemEquipped)
	assert.True(t, ok)
	_, ok = conn.sent[1].(*protocol.ItemUnequipped)
	assert.True(t, ok)
}

func TestEquipRejectsWrongClass(t *testing.T) {
	e, p, store := newInventoryFixture(t)
	p.Class = "mage"

	sword := &world.ItemInstance{InstanceID: 1001, TemplateID: 101, Quantity: 1, Slot: 0}
	p.Inv.Items = append(p.Inv.Items, sword)

	e.Equip(context.Background(), p, 1001)

	assert.False(t, sword.Equipped)
	assert.Empty(t, store.saves)

	conn := p.Session.(*fakeConn)
	require.Len(t, conn.sent, 1)
	failed, ok := conn.sent[0].(*protocol.ItemUseFailed)
	require.True(t, ok)
	assert.Equal(t, protocol.FailWrongClass, failed.Reason)
}
