package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/runekeep/server/internal/world"
)

func TestRecalculateStatsBareLevelOne(t *testing.T) {
	cat := newTestCatalog(t)
	p := newTestWarrior(t, cat)

	// warrior 表：atk = 10 + 2.0×12, def = 5 + 1.5×12
	assert.Equal(t, 34, p.Derived.Atk)
	assert.Equal(t, 6, p.Derived.Matk)
	assert.Equal(t, 23, p.Derived.Def)
	assert.InDelta(t, 1.08, p.Derived.AttackSpeed, 1e-9)
	assert.Equal(t, 150+10*12, p.MaxHealth)
	assert.Equal(t, 30+5*4, p.MaxMana)
	assert.Equal(t, p.Base, p.Eff)
}

func TestRecalculateStatsWithEquipment(t *testing.T) {
	cat := newTestCatalog(t)
	p := newTestWarrior(t, cat)

	sword := &world.ItemInstance{InstanceID: 10, TemplateID: 101, Quantity: 1, Equipped: true}
	armor := &world.ItemInstance{InstanceID: 11, TemplateID: 201, Quantity: 1, Equipped: true}
	p.Inv.Items = append(p.Inv.Items, sword, armor)
	p.Inv.Equipment["weapon"] = sword
	p.Inv.Equipment["armor"] = armor

	RecalculateStats(p, cat.Classes, cat.Items)

	// 劍的 str+2 先進基礎屬性，再套公式，最後加平減值 atk+5
	assert.Equal(t, 14, p.Eff.Str)
	assert.Equal(t, 10+2*14+5, p.Derived.Atk)
	assert.Equal(t, 5+18+5, p.Derived.Def)
	assert.Equal(t, 150+10*12+20, p.MaxHealth)
}

func TestRecalculateStatsWithBuffs(t *testing.T) {
	cat := newTestCatalog(t)
	p := newTestWarrior(t, cat)
	now := time.Now()

	// 基礎屬性 buff 在職業公式之前生效
	p.AddEffect(&world.ActiveEffect{
		ID: 1, SkillID: 9, EffectType: world.EffectStatBuff,
		TargetStat: "str", Value: 10, Start: now, Duration: time.Minute,
	})
	RecalculateStats(p, cat.Classes, cat.Items)
	assert.Equal(t, 22, p.Eff.Str)
	assert.Equal(t, 10+2*22, p.Derived.Atk)

	// 衍生屬性 buff 在公式之後直接相加
	p.Effects = nil
	p.AddEffect(&world.ActiveEffect{
		ID: 2, SkillID: 9, EffectType: world.EffectStatBuff,
		TargetStat: "atk", Value: 15, Start: now, Duration: time.Minute,
	})
	RecalculateStats(p, cat.Classes, cat.Items)
	assert.Equal(t, 34+15, p.Derived.Atk)
}

func TestRecalculateStatsClampsPools(t *testing.T) {
	cat := newTestCatalog(t)
	p := newTestWarrior(t, cat)

	armor := &world.ItemInstance{InstanceID: 11, TemplateID: 201, Quantity: 1, Equipped: true}
	p.Inv.Items = append(p.Inv.Items, armor)
	p.Inv.Equipment["armor"] = armor
	RecalculateStats(p, cat.Classes, cat.Items)
	p.Health = p.MaxHealth

	// 脫下 +20 HP 的護甲後，目前血量跟著上限收斂
	p.Inv.Equipment["armor"] = nil
	RecalculateStats(p, cat.Classes, cat.Items)
	assert.Equal(t, p.MaxHealth, p.Health)
}

func TestRecalculateStatsAttackSpeedFloor(t *testing.T) {
	cat := newTestCatalog(t)
	p := newTestWarrior(t, cat)

	p.AddEffect(&world.ActiveEffect{
		ID: 1, SkillID: 9, EffectType: world.EffectStatBuff,
		TargetStat: "dex", Value: -500, Start: time.Now(), Duration: time.Minute,
	})
	RecalculateStats(p, cat.Classes, cat.Items)
	assert.InDelta(t, 0.1, p.Derived.AttackSpeed, 1e-9)
}

func TestInitialStats(t *testing.T) {
	cat := newTestCatalog(t)
	cls := cat.Classes.Get("warrior")

	base, health, mana := InitialStats(cls)
	assert.Equal(t, world.Attributes{Str: 12, Int: 4, Dex: 8, Vit: 12}, base)
	assert.Equal(t, 150+10*12, health)
	assert.Equal(t, 30+5*4, mana)
}
