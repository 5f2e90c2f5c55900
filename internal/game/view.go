package game

import (
	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

// Wire snapshot builders. Called under the world lock; the returned
// values are plain copies safe to marshal after the lock is released.

func StatsView(p *world.Player) protocol.Stats {
	return protocol.Stats{
		Str:         p.Eff.Str,
		Int:         p.Eff.Int,
		Dex:         p.Eff.Dex,
		Vit:         p.Eff.Vit,
		Atk:         p.Derived.Atk,
		Matk:        p.Derived.Matk,
		Def:         p.Derived.Def,
		AttackSpeed: p.Derived.AttackSpeed,
	}
}

func PlayerView(p *world.Player) protocol.PlayerState {
	return protocol.PlayerState{
		PlayerID:     p.Session.PlayerID(),
		Name:         p.Name,
		Race:         p.Race,
		Class:        p.Class,
		Level:        p.Level,
		Experience:   p.Exp,
		StatusPoints: p.StatusPoints,
		Health:       p.Health,
		MaxHealth:    p.MaxHealth,
		Mana:         p.Mana,
		MaxMana:      p.MaxMana,
		Position:     p.Pos,
		IsMoving:     p.Moving,
		InCombat:     p.InCombat(),
		IsDead:       p.Dead,
		Stats:        StatsView(p),
	}
}

func MonsterView(m *world.Monster) protocol.MonsterState {
	return protocol.MonsterState{
		ID:        m.ID,
		Name:      m.Template.Name,
		Level:     m.Template.Level,
		Health:    m.Health,
		MaxHealth: m.Template.MaxHealth,
		Position:  m.Pos,
		IsAlive:   m.Alive,
		InCombat:  m.State == world.MonsterAggro,
	}
}

func ItemView(it *world.ItemInstance, items *catalog.ItemTable) protocol.ItemState {
	name, itemType := "", ""
	if tpl := items.Get(it.TemplateID); tpl != nil {
		name = tpl.Name
		itemType = tpl.Type
	}
	return protocol.ItemState{
		InstanceID: it.InstanceID,
		TemplateID: it.TemplateID,
		Name:       name,
		ItemType:   itemType,
		Quantity:   it.Quantity,
		Slot:       it.Slot,
		IsEquipped: it.Equipped,
	}
}

func EquipmentView(inv *world.Inventory, items *catalog.ItemTable) protocol.EquipmentState {
	eq := protocol.EquipmentState{}
	for slot, it := range inv.Equipment {
		if it == nil {
			continue
		}
		v := ItemView(it, items)
		eq[slot] = &v
	}
	return eq
}

func InventoryView(inv *world.Inventory, items *catalog.ItemTable) protocol.InventoryState {
	out := protocol.InventoryState{
		MaxSlots:  inv.MaxSlots,
		Gold:      inv.Gold,
		Items:     make([]protocol.ItemState, 0, len(inv.Items)),
		Equipment: EquipmentView(inv, items),
	}
	for _, it := range inv.Items {
		if it.Equipped {
			continue
		}
		out.Items = append(out.Items, ItemView(it, items))
	}
	return out
}

// WorldSnapshot builds the periodic worldState broadcast body.
func WorldSnapshot(st *world.State, now int64) protocol.WorldState {
	ws := protocol.WorldState{
		Type: protocol.SWorldState,
		Time: now,
	}
	for _, p := range st.PlayersInJoinOrder() {
		ws.Players = append(ws.Players, PlayerView(p))
	}
	st.MonstersInOrder(func(m *world.Monster) {
		ws.Monsters = append(ws.Monsters, MonsterView(m))
	})
	return ws
}
