package game

import (
	"time"

	"github.com/runekeep/server/internal/persist"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

// Converters between runtime entities and persistence rows. Row builders
// run under the world lock and return detached copies so the actual
// database writes can happen without it.

func CharacterRow(p *world.Player) *persist.CharacterRow {
	return &persist.CharacterRow{
		ID:           p.CharID,
		AccountID:    p.AccountID,
		Name:         p.Name,
		Race:         p.Race,
		Class:        p.Class,
		Level:        p.Level,
		Exp:          p.Exp,
		StatusPoints: p.StatusPoints,
		Health:       p.Health,
		MaxHealth:    p.MaxHealth,
		Mana:         p.Mana,
		MaxMana:      p.MaxMana,
		Str:          p.Base.Str,
		Intel:        p.Base.Int,
		Dex:          p.Base.Dex,
		Vit:          p.Base.Vit,
		X:            p.Pos.X,
		Y:            p.Pos.Y,
		Z:            p.Pos.Z,
		IsDead:       p.Dead,
	}
}

func InventoryRow(inv *world.Inventory) *persist.InventoryRow {
	row := &persist.InventoryRow{
		CharacterID: inv.CharacterID,
		MaxSlots:    inv.MaxSlots,
		Gold:        inv.Gold,
		Items:       make([]*persist.ItemRow, 0, len(inv.Items)),
	}
	equippedSlot := make(map[int64]string, len(inv.Equipment))
	for slot, it := range inv.Equipment {
		if it != nil {
			equippedSlot[it.InstanceID] = slot
		}
	}
	for _, it := range inv.Items {
		ir := &persist.ItemRow{
			InstanceID:  it.InstanceID,
			CharacterID: inv.CharacterID,
			TemplateID:  it.TemplateID,
			Quantity:    it.Quantity,
			Slot:        it.Slot,
			Equipped:    it.Equipped,
		}
		if slot, ok := equippedSlot[it.InstanceID]; ok {
			s := slot
			ir.EquipSlot = &s
		}
		row.Items = append(row.Items, ir)
	}
	return row
}

func SkillRows(p *world.Player) []*persist.SkillRow {
	out := make([]*persist.SkillRow, 0, len(p.Skills))
	for _, s := range p.Skills {
		row := &persist.SkillRow{
			CharacterID: p.CharID,
			SkillID:     s.SkillID,
			Level:       s.Level,
			SlotNumber:  s.SlotNumber,
		}
		if !s.LastUsed.IsZero() {
			t := s.LastUsed
			row.LastUsed = &t
		}
		out = append(out, row)
	}
	return out
}

func MonsterRow(m *world.Monster) *persist.MonsterRow {
	return &persist.MonsterRow{
		ID:          m.ID,
		TemplateID:  m.Template.ID,
		Health:      m.Health,
		X:           m.Pos.X,
		Y:           m.Pos.Y,
		Z:           m.Pos.Z,
		Alive:       m.Alive,
		LastRespawn: m.LastRespawn,
	}
}

// InventoryFromRow rebuilds the runtime inventory at character select.
// Corrupt equipment references (equipped item whose slot key is missing or
// duplicated) are repaired by dropping the reference and leaving the item
// in the bag.
func InventoryFromRow(row *persist.InventoryRow) *world.Inventory {
	inv := world.NewInventory(row.CharacterID, row.MaxSlots)
	inv.Gold = row.Gold
	for _, ir := range row.Items {
		it := &world.ItemInstance{
			InstanceID: ir.InstanceID,
			TemplateID: ir.TemplateID,
			Quantity:   ir.Quantity,
			Slot:       ir.Slot,
			Equipped:   ir.Equipped,
		}
		inv.Items = append(inv.Items, it)
		if ir.Equipped && ir.EquipSlot != nil {
			if inv.Equipment[*ir.EquipSlot] == nil {
				inv.Equipment[*ir.EquipSlot] = it
			} else {
				it.Equipped = false
			}
		} else if ir.Equipped {
			it.Equipped = false
		}
	}
	return inv
}

// SkillsFromRows rebuilds the learned-skill map at character select.
func SkillsFromRows(rows []*persist.SkillRow) map[int32]*world.LearnedSkill {
	out := make(map[int32]*world.LearnedSkill, len(rows))
	for _, r := range rows {
		ls := &world.LearnedSkill{
			SkillID:    r.SkillID,
			Level:      r.Level,
			SlotNumber: r.SlotNumber,
		}
		if r.LastUsed != nil {
			ls.LastUsed = *r.LastUsed
		}
		out[r.SkillID] = ls
	}
	return out
}

// PlayerFromRow rebuilds the runtime player at character select. Derived
// stats are zero until RecalculateStats runs.
func PlayerFromRow(row *persist.CharacterRow) *world.Player {
	return &world.Player{
		CharID:       row.ID,
		AccountID:    row.AccountID,
		Name:         row.Name,
		Race:         row.Race,
		Class:        row.Class,
		Level:        row.Level,
		Exp:          row.Exp,
		StatusPoints: row.StatusPoints,
		Health:       row.Health,
		MaxHealth:    row.MaxHealth,
		Mana:         row.Mana,
		MaxMana:      row.MaxMana,
		Base: world.Attributes{
			Str: row.Str,
			Int: row.Intel,
			Dex: row.Dex,
			Vit: row.Vit,
		},
		Pos:             protocol.Position{X: row.X, Y: row.Y, Z: row.Z},
		Dead:            row.IsDead,
		Skills:          make(map[int32]*world.LearnedSkill),
		PotionCooldowns: make(map[string]time.Time),
	}
}
