package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

func TestGuardAcceptFirstMove(t *testing.T) {
	cat := newTestCatalog(t)
	g := NewMovementGuard(cat.Terrain, 15.0, zap.NewNop())
	p := newTestWarrior(t, cat)

	// 第一次請求沒有基準點，永遠接受
	pos, ok := g.Accept(p, protocol.Position{X: 100, Z: 100}, time.Now())
	assert.True(t, ok)
	// 超出地圖的目標貼齊邊界（3×3 格 × 10 = 20）
	assert.Equal(t, 20.0, pos.X)
	assert.Equal(t, 20.0, pos.Z)
}

func TestGuardRejectsSpeedHack(t *testing.T) {
	cat := newTestCatalog(t)
	g := NewMovementGuard(cat.Terrain, 15.0, zap.NewNop())
	p := newTestWarrior(t, cat)

	now := time.Now()
	p.Pos = protocol.Position{X: 0, Z: 0}
	p.LastAcceptedPos = p.Pos
	p.LastAcceptedTime = now
	target := protocol.Position{X: 5, Z: 0}
	p.TargetPos = &target
	p.Moving = true

	// 1 秒移動 20 單位 > 上限 15 → 悄悄回退，不回覆
	_, ok := g.Accept(p, protocol.Position{X: 20, Z: 0}, now.Add(time.Second))
	assert.False(t, ok)
	assert.Equal(t, 0.0, p.Pos.X)
	assert.Nil(t, p.TargetPos)
	assert.False(t, p.Moving)

	// 合法速度照常接受
	pos, ok := g.Accept(p, protocol.Position{X: 10, Z: 0}, now.Add(time.Second))
	assert.True(t, ok)
	assert.Equal(t, 10.0, pos.X)
	assert.Equal(t, pos, p.LastAcceptedPos)
}

func TestIntegrateStepsTowardTarget(t *testing.T) {
	cat := newTestCatalog(t)
	g := NewMovementGuard(cat.Terrain, 15.0, zap.NewNop())
	p := newTestWarrior(t, cat)

	p.Pos = protocol.Position{X: 0, Z: 0}
	target := protocol.Position{X: 10, Z: 0}
	p.TargetPos = &target
	p.MoveSpeed = 5.0

	g.Integrate(p, 0.05, time.Now())
	assert.InDelta(t, 0.25, p.Pos.X, 1e-9)
	assert.True(t, p.Moving)
	assert.True(t, p.Dirty)

	// 一步走得到就直接落在目標上並停下
	g.Integrate(p, 10.0, time.Now())
	assert.Equal(t, 10.0, p.Pos.X)
	assert.Nil(t, p.TargetPos)
	assert.False(t, p.Moving)
}

func TestIntegrateBlockedStates(t *testing.T) {
	cat := newTestCatalog(t)
	g := NewMovementGuard(cat.Terrain, 15.0, zap.NewNop())
	now := time.Now()

	p := newTestWarrior(t, cat)
	target := protocol.Position{X: 10, Z: 0}
	p.TargetPos = &target
	p.Dead = true
	g.Integrate(p, 0.05, now)
	assert.Equal(t, 0.0, p.Pos.X)
	assert.False(t, p.Moving)

	p = newTestWarrior(t, cat)
	p.TargetPos = &target
	p.AddEffect(&world.ActiveEffect{
		ID: 1, SkillID: 4, EffectType: world.EffectStun,
		Start: now, Duration: time.Second,
	})
	g.Integrate(p, 0.05, now)
	assert.Equal(t, 0.0, p.Pos.X)
}
