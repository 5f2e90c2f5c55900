package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// newRollEngine builds a combat engine with just enough wiring for the
// damage formula, using a fixed seed so crit rolls are reproducible.
// rand.NewSource(1) 的第一個 Float64 約為 0.6047。
func newRollEngine() *CombatEngine {
	return NewCombatEngine(nil, nil, nil, nil, nil, nil,
		rand.New(rand.NewSource(1)), 1.0, zap.NewNop())
}

func TestRollDamageDefenseReduction(t *testing.T) {
	c := newRollEngine()

	dmg, crit := c.RollDamage(100, 0, 0)
	assert.False(t, crit)
	assert.Equal(t, 100, dmg)

	// def 100 → 減傷 50%
	dmg, _ = c.RollDamage(100, 0, 100)
	assert.Equal(t, 50, dmg)

	// 減傷下限 10%
	dmg, _ = c.RollDamage(100, 0, 100000)
	assert.Equal(t, 10, dmg)
}

func TestRollDamageFloorOne(t *testing.T) {
	c := newRollEngine()
	dmg, _ := c.RollDamage(0, 0, 500)
	assert.Equal(t, 1, dmg)
}

func TestRollDamageCrit(t *testing.T) {
	// 首個亂數 0.6047 < 0.7 → 爆擊 ×1.5
	dmg, crit := newRollEngine().RollDamage(100, 0.7, 0)
	assert.True(t, crit)
	assert.Equal(t, 150, dmg)

	// 0.6047 >= 0.5 → 不爆擊
	dmg, crit = newRollEngine().RollDamage(100, 0.5, 0)
	assert.False(t, crit)
	assert.Equal(t, 100, dmg)
}

func TestRollDamageCritChanceClamp(t *testing.T) {
	// 超過上限的爆擊率視同 0.75，0.6047 < 0.75 仍會爆
	dmg, crit := newRollEngine().RollDamage(100, 5.0, 0)
	assert.True(t, crit)
	assert.Equal(t, 150, dmg)

	// 負值視同 0
	_, crit = newRollEngine().RollDamage(100, -1.0, 0)
	assert.False(t, crit)
}

func TestCritBases(t *testing.T) {
	assert.InDelta(t, 0.01, PhysicalCritBase(0), 1e-9)
	assert.InDelta(t, 0.04, PhysicalCritBase(10), 1e-9)
	assert.InDelta(t, 0.05, MagicalCritBase(0), 1e-9)
	assert.InDelta(t, 0.07, MagicalCritBase(10), 1e-9)
}

func TestMonsterWireID(t *testing.T) {
	assert.Equal(t, "m42", monsterWireID(42))
}
