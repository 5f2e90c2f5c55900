// Package game implements the gameplay engines: combat, skills,
// inventory, loot distribution, movement validation, and stat derivation.
// Engines mutate world state and are always called under the world lock.
package game

import (
	"math"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/world"
)

// RecalculateStats is the canonical derived-stat derivation. Every
// mutation of equipment, level, or allocated points ends with a call to
// this routine; nothing else writes derived stats.
//
// Order: reset effective stats to base, add equipment bonuses to base
// stats, recompute derived stats from the class formula, add flat
// equipment and buff deltas, clamp current pools.
func RecalculateStats(p *world.Player, classes *catalog.ClassTable, items *catalog.ItemTable) {
	cls := classes.Get(p.Class)
	if cls == nil {
		return
	}

	eff := p.Base
	var flatAtk, flatMatk, flatDef, flatHP, flatMP int
	var flatAspd float64

	for _, slot := range catalog.EquipSlots {
		it := p.Inv.Equipment[slot]
		if it == nil {
			continue
		}
		tpl := items.Get(it.TemplateID)
		if tpl == nil {
			continue
		}
		eff.Str += tpl.Bonuses.Str
		eff.Int += tpl.Bonuses.Int
		eff.Dex += tpl.Bonuses.Dex
		eff.Vit += tpl.Bonuses.Vit
		flatAtk += tpl.Bonuses.Atk
		flatMatk += tpl.Bonuses.Matk
		flatDef += tpl.Bonuses.Def
		flatAspd += tpl.Bonuses.AttackSpeed
		flatHP += tpl.Bonuses.MaxHealth
		flatMP += tpl.Bonuses.MaxMana
	}

	// Buffs on base stats apply before the class formula.
	for _, e := range p.Effects {
		if e.EffectType != world.EffectStatBuff {
			continue
		}
		switch e.TargetStat {
		case "str":
			eff.Str += e.Value
		case "int":
			eff.Int += e.Value
		case "dex":
			eff.Dex += e.Value
		case "vit":
			eff.Vit += e.Value
		}
	}

	p.Eff = eff

	p.Derived.Atk = cls.BaseAtk + int(math.Round(cls.AtkPerStr*float64(eff.Str))) + flatAtk
	p.Derived.Matk = cls.BaseMatk + int(math.Round(cls.MatkPerInt*float64(eff.Int))) + flatMatk
	p.Derived.Def = cls.BaseDef + int(math.Round(cls.DefPerVit*float64(eff.Vit))) + flatDef
	p.Derived.AttackSpeed = cls.BaseAspd + cls.AspdPerDex*float64(eff.Dex) + flatAspd
	if p.Derived.AttackSpeed < 0.1 {
		p.Derived.AttackSpeed = 0.1
	}

	// Buffs on derived stats apply after.
	for _, e := range p.Effects {
		if e.EffectType != world.EffectStatBuff {
			continue
		}
		switch e.TargetStat {
		case "atk":
			p.Derived.Atk += e.Value
		case "matk":
			p.Derived.Matk += e.Value
		case "def":
			p.Derived.Def += e.Value
		}
	}

	p.MaxHealth = cls.BaseHealth + cls.HealthPerLevel*(p.Level-1) + cls.HealthPerVit*eff.Vit + flatHP
	p.MaxMana = cls.BaseMana + cls.ManaPerLevel*(p.Level-1) + cls.ManaPerInt*eff.Int + flatMP

	if p.Health > p.MaxHealth {
		p.Health = p.MaxHealth
	}
	if p.Mana > p.MaxMana {
		p.Mana = p.MaxMana
	}
}

// InitialStats seeds a brand-new character from its class template.
func InitialStats(cls *catalog.ClassTemplate) (base world.Attributes, health, mana int) {
	base = world.Attributes{
		Str: cls.BaseStr,
		Int: cls.BaseInt,
		Dex: cls.BaseDex,
		Vit: cls.BaseVit,
	}
	health = cls.BaseHealth + cls.HealthPerVit*base.Vit
	mana = cls.BaseMana + cls.ManaPerInt*base.Int
	return base, health, mana
}
