package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

// InventoryEngine owns item use, equipping, dropping and status-point
// allocation. All persistence on these paths is synchronous so failures
// surface to the caller before the success reply goes out.
type InventoryEngine struct {
	catalog        *catalog.Catalog
	inventories    InventoryStore
	chars          CharacterStore
	hub            Notifier
	potionCooldown time.Duration
	log            *zap.Logger
}

func NewInventoryEngine(cat *catalog.Catalog, inventories InventoryStore,
	chars CharacterStore, hub Notifier, potionCooldown time.Duration, log *zap.Logger) *InventoryEngine {
	return &InventoryEngine{
		catalog:        cat,
		inventories:    inventories,
		chars:          chars,
		hub:            hub,
		potionCooldown: potionCooldown,
		log:            log,
	}
}

func (e *InventoryEngine) failItem(p *world.Player, code, msg string) {
	p.Session.SendJSON(&protocol.ItemUseFailed{
		Type:    protocol.SItemUseFailed,
		Reason:  code,
		Message: msg,
	})
}

// UseItem consumes one unit of a consumable. Pre-consumption checks keep
// full bars a strict no-op: no quantity change, no cooldown charge.
func (e *InventoryEngine) UseItem(ctx context.Context, p *world.Player, instanceID int64, now time.Time) {
	it := p.Inv.Find(instanceID)
	if it == nil {
		e.failItem(p, protocol.FailItemNotFound, "物品不存在")
		return
	}
	tpl := e.catalog.Items.Get(it.TemplateID)
	if tpl == nil || tpl.Type != catalog.ItemTypeConsumable {
		e.failItem(p, protocol.FailNotConsumable, "此物品無法使用")
		return
	}

	if until, ok := p.PotionCooldowns[tpl.EffectTarget]; ok && now.Before(until) {
		e.failItem(p, protocol.FailOnCooldown, "使用過於頻繁")
		return
	}
	switch tpl.EffectTarget {
	case "health":
		if p.Health >= p.MaxHealth {
			e.failItem(p, protocol.FailHPFull, "生命值已滿")
			return
		}
	case "mana":
		if p.Mana >= p.MaxMana {
			e.failItem(p, protocol.FailMPFull, "魔力值已滿")
			return
		}
	}

	switch tpl.EffectTarget {
	case "health":
		p.Health += tpl.EffectValue
		if p.Health > p.MaxHealth {
			p.Health = p.MaxHealth
		}
	case "mana":
		p.Mana += tpl.EffectValue
		if p.Mana > p.MaxMana {
			p.Mana = p.MaxMana
		}
	}
	p.PotionCooldowns[tpl.EffectTarget] = now.Add(e.potionCooldown)

	it.Quantity--
	if it.Quantity <= 0 {
		p.Inv.Remove(instanceID)
	}
	p.Dirty = true

	if err := e.persistBoth(ctx, p); err != nil {
		e.log.Error("使用物品後保存失敗", zap.Error(err), zap.String("player", p.Name))
	}

	remaining := 0
	if cur := p.Inv.Find(instanceID); cur != nil {
		remaining = cur.Quantity
	}
	p.Session.SendJSON(&protocol.ItemUsed{
		Type:              protocol.SItemUsed,
		PlayerID:          p.Session.PlayerID(),
		InstanceID:        instanceID,
		Health:            p.Health,
		MaxHealth:         p.MaxHealth,
		Mana:              p.Mana,
		MaxMana:           p.MaxMana,
		RemainingQuantity: remaining,
	})
	e.hub.Broadcast(&protocol.PlayerStatsUpdate{
		Type:         protocol.SPlayerStatsUpdate,
		PlayerID:     p.Session.PlayerID(),
		Health:       p.Health,
		MaxHealth:    p.MaxHealth,
		Mana:         p.Mana,
		MaxMana:      p.MaxMana,
		Level:        p.Level,
		Experience:   p.Exp,
		StatusPoints: p.StatusPoints,
		Stats:        StatsView(p),
	})
}

// Equip puts an equipment item into its template slot, swapping out any
// current occupant. The swap needs a free bag slot for the old item.
func (e *InventoryEngine) Equip(ctx context.Context, p *world.Player, instanceID int64) {
	it := p.Inv.Find(instanceID)
	if it == nil {
		e.failItem(p, protocol.FailItemNotFound, "物品不存在")
		return
	}
	tpl := e.catalog.Items.Get(it.TemplateID)
	if tpl == nil || tpl.Type != catalog.ItemTypeEquipment || tpl.Slot == "" {
		e.failItem(p, protocol.FailNotEquipment, "此物品無法裝備")
		return
	}
	if it.Equipped {
		e.failItem(p, protocol.FailItemEquipped, "物品已裝備")
		return
	}
	if p.Level < tpl.RequiredLevel {
		e.failItem(p, protocol.FailLevelTooLow, "等級不足")
		return
	}
	if tpl.RequiredClass != "" && tpl.RequiredClass != p.Class {
		e.failItem(p, protocol.FailWrongClass, "職業不符")
		return
	}

	old := p.Inv.Equipment[tpl.Slot]
	if old != nil && !p.Inv.HasBagSpace() {
		e.failItem(p, protocol.FailInventoryFull, "背包已滿，無法替換裝備")
		return
	}

	if old != nil {
		old.Equipped = false
		old.Slot = p.Inv.NextBagSlot()
	}
	it.Equipped = true
	p.Inv.Equipment[tpl.Slot] = it

	RecalculateStats(p, e.catalog.Classes, e.catalog.Items)
	p.Dirty = true

	if err := e.inventories.Save(ctx, InventoryRow(p.Inv)); err != nil {
		e.log.Error("裝備後保存失敗", zap.Error(err), zap.String("player", p.Name))
	}

	p.Session.SendJSON(&protocol.ItemEquipped{
		Type:       protocol.SItemEquipped,
		PlayerID:   p.Session.PlayerID(),
		InstanceID: instanceID,
		NewStats:   StatsView(p),
		Equipment:  EquipmentView(p.Inv, e.catalog.Items),
	})
}

// Unequip clears an equipment slot back into the bag. A dangling slot
// reference is treated as corruption: cleared, persisted, and reported
// as a failure without killing the session.
func (e *InventoryEngine) Unequip(ctx context.Context, p *world.Player, slot string) {
	it, ok := p.Inv.Equipment[slot]
	if !ok || it == nil {
		e.failItem(p, protocol.FailSlotEmpty, "該欄位沒有裝備")
		return
	}
	if p.Inv.Find(it.InstanceID) == nil {
		e.log.Error("裝備欄位引用了不存在的物品實例，已重設",
			zap.String("player", p.Name),
			zap.String("slot", slot),
			zap.Int64("instanceID", it.InstanceID),
		)
		delete(p.Inv.Equipment, slot)
		if err := e.inventories.Save(ctx, InventoryRow(p.Inv)); err != nil {
			e.log.Error("重設裝備欄位後保存失敗", zap.Error(err))
		}
		e.failItem(p, protocol.FailItemNotFound, "裝備資料異常，已重設")
		return
	}
	if !p.Inv.HasBagSpace() {
		e.failItem(p, protocol.FailInventoryFull, "背包已滿")
		return
	}

	it.Equipped = false
	it.Slot = p.Inv.NextBagSlot()
	delete(p.Inv.Equipment, slot)

	RecalculateStats(p, e.catalog.Classes, e.catalog.Items)
	p.Dirty = true

	if err := e.inventories.Save(ctx, InventoryRow(p.Inv)); err != nil {
		e.log.Error("卸下裝備後保存失敗", zap.Error(err), zap.String("player", p.Name))
	}

	p.Session.SendJSON(&protocol.ItemUnequipped{
		Type:      protocol.SItemUnequipped,
		PlayerID:  p.Session.PlayerID(),
		Slot:      slot,
		NewStats:  StatsView(p),
		Equipment: EquipmentView(p.Inv, e.catalog.Items),
	})
}

// Drop discards quantity units of an unequipped stack.
func (e *InventoryEngine) Drop(ctx context.Context, p *world.Player, instanceID int64, quantity int) {
	it := p.Inv.Find(instanceID)
	if it == nil {
		e.failItem(p, protocol.FailItemNotFound, "物品不存在")
		return
	}
	if it.Equipped {
		e.failItem(p, protocol.FailItemEquipped, "請先卸下裝備")
		return
	}
	if quantity < 1 || quantity > it.Quantity {
		e.failItem(p, protocol.FailBadQuantity, "數量無效")
		return
	}

	it.Quantity -= quantity
	if it.Quantity == 0 {
		p.Inv.Remove(instanceID)
	}
	p.Dirty = true

	if err := e.inventories.Save(ctx, InventoryRow(p.Inv)); err != nil {
		e.log.Error("丟棄物品後保存失敗", zap.Error(err), zap.String("player", p.Name))
	}

	p.Session.SendJSON(&protocol.ItemDropped{
		Type:       protocol.SItemDropped,
		PlayerID:   p.Session.PlayerID(),
		InstanceID: instanceID,
		Quantity:   quantity,
	})
}

// AddStatusPoint spends one status point on a base stat.
func (e *InventoryEngine) AddStatusPoint(ctx context.Context, p *world.Player, stat string) {
	if p.StatusPoints < 1 {
		p.Session.SendJSON(&protocol.Error{Type: protocol.SError, Message: "狀態點數不足"})
		return
	}
	switch stat {
	case "str":
		p.Base.Str++
	case "int":
		p.Base.Int++
	case "dex":
		p.Base.Dex++
	case "vit":
		p.Base.Vit++
	default:
		p.Session.SendJSON(&protocol.Error{Type: protocol.SError, Message: "未知的屬性"})
		return
	}
	p.StatusPoints--

	RecalculateStats(p, e.catalog.Classes, e.catalog.Items)
	p.Dirty = true

	if err := e.chars.Update(ctx, CharacterRow(p)); err != nil {
		e.log.Error("配點後保存失敗", zap.Error(err), zap.String("player", p.Name))
	}

	p.Session.SendJSON(&protocol.StatusPointAdded{
		Type:         protocol.SStatusPointAdded,
		PlayerID:     p.Session.PlayerID(),
		Stat:         stat,
		StatusPoints: p.StatusPoints,
		NewStats:     StatsView(p),
	})
}

func (e *InventoryEngine) persistBoth(ctx context.Context, p *world.Player) error {
	if err := e.inventories.Save(ctx, InventoryRow(p.Inv)); err != nil {
		return err
	}
	return e.chars.Update(ctx, CharacterRow(p))
}
