package game

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/persist"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

// LootResolver rolls a dead monster's loot table for the killing player.
// One roll per death: the per-monster loot lock is held across the
// alive re-check and the roll so two concurrent kill paths for the same
// monster cannot both produce loot.
type LootResolver struct {
	state    *world.State
	catalog  *catalog.Catalog
	idalloc  *persist.ItemIDAllocator
	saver    AsyncSaver
	log      *zap.Logger
	rng      *rand.Rand
	dropRate float64
	goldRate float64
}

func NewLootResolver(state *world.State, cat *catalog.Catalog, idalloc *persist.ItemIDAllocator,
	saver AsyncSaver, rng *rand.Rand, dropRate, goldRate float64, log *zap.Logger) *LootResolver {
	return &LootResolver{
		state:    state,
		catalog:  cat,
		idalloc:  idalloc,
		saver:    saver,
		log:      log,
		rng:      rng,
		dropRate: dropRate,
		goldRate: goldRate,
	}
}

// Resolve rolls loot for one monster death and hands everything to the
// killer. Called under the world lock.
func (l *LootResolver) Resolve(killer *world.Player, m *world.Monster) {
	lock := l.state.LootLock(m.ID)
	lock.Lock()
	defer lock.Unlock()

	// 奪鎖期間已重生就放棄結算。
	if m.Alive {
		return
	}

	entry := l.catalog.Loot.Get(m.Template.ID)
	if entry == nil {
		return
	}

	out := protocol.LootReceived{
		Type:      protocol.SLootReceived,
		PlayerID:  killer.Session.PlayerID(),
		MonsterID: m.ID,
	}

	if entry.GoldMax >= entry.GoldMin && entry.GoldMax > 0 {
		gold := entry.GoldMin
		if entry.GoldMax > entry.GoldMin {
			gold += l.rng.Intn(entry.GoldMax - entry.GoldMin + 1)
		}
		gold = int(math.Round(float64(gold) * l.goldRate))
		if gold > 0 {
			killer.Inv.Gold += int64(gold)
			out.Gold = gold
		}
	}

	for _, li := range entry.Items {
		chance := int(math.Round(float64(li.Chance) * l.dropRate))
		if l.rng.Intn(1_000_000) >= chance {
			continue
		}
		qty := li.Min
		if li.Max > li.Min {
			qty += l.rng.Intn(li.Max - li.Min + 1)
		}
		if qty < 1 {
			continue
		}
		looted := l.giveItem(killer, li.TemplateID, qty, m.ID)
		if looted != nil {
			out.Items = append(out.Items, *looted)
		}
	}

	killer.Dirty = true
	l.saver.SaveInventoryAsync(InventoryRow(killer.Inv))

	killer.Session.SendJSON(&out)
}

// giveItem adds a rolled drop to the killer's bag, stacking first. A full
// bag discards the drop with a log line; gold is never discarded.
func (l *LootResolver) giveItem(p *world.Player, templateID int32, qty int, monsterID int64) *protocol.LootedItem {
	tpl := l.catalog.Items.Get(templateID)
	if tpl == nil {
		l.log.Warn("掉落表引用了不存在的物品模板",
			zap.Int32("templateID", templateID),
			zap.Int64("monsterID", monsterID),
		)
		return nil
	}

	if stack := p.Inv.StackWithRoom(templateID, tpl.MaxStack); stack != nil && stack.Quantity+qty <= tpl.MaxStack {
		stack.Quantity += qty
		return &protocol.LootedItem{
			InstanceID: stack.InstanceID,
			TemplateID: templateID,
			Name:       tpl.Name,
			Quantity:   qty,
		}
	}

	if !p.Inv.HasBagSpace() {
		l.log.Info("背包已滿，掉落物丟棄",
			zap.String("player", p.Name),
			zap.Int32("templateID", templateID),
			zap.Int("quantity", qty),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	id, err := l.idalloc.Next(ctx)
	if err != nil {
		l.log.Error("分配物品實例 ID 失敗，掉落物丟棄", zap.Error(err))
		return nil
	}

	p.Inv.Items = append(p.Inv.Items, &world.ItemInstance{
		InstanceID: id,
		TemplateID: templateID,
		Quantity:   qty,
		Slot:       p.Inv.NextBagSlot(),
	})
	return &protocol.LootedItem{
		InstanceID: id,
		TemplateID: templateID,
		Name:       tpl.Name,
		Quantity:   qty,
	}
}
