package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

func newSkillFixture(t *testing.T) (*SkillEngine, *world.State, *world.Player) {
	t.Helper()
	cat := newTestCatalog(t)
	state := world.NewState()
	e := NewSkillEngine(state, cat, nil, nil, nil, nil, zap.NewNop())

	p := newTestWarrior(t, cat)
	p.Skills[1] = &world.LearnedSkill{SkillID: 1, Level: 1}
	p.Skills[3] = &world.LearnedSkill{SkillID: 3, Level: 1}
	state.AddPlayer(p)

	m := &world.Monster{
		ID:       1,
		Template: cat.Monsters.Get(1),
		Health:   50,
		Alive:    true,
		Pos:      protocol.Position{X: 1, Z: 0},
	}
	state.AddMonster(m)
	return e, state, p
}

func TestValidateOrder(t *testing.T) {
	now := time.Now()

	t.Run("dead player short-circuits first", func(t *testing.T) {
		e, _, p := newSkillFixture(t)
		p.Dead = true
		p.Mana = 0 // 後面的檢查都不該跑到
		_, _, code := e.validate(p, &protocol.UseSkillRequest{SkillID: 1, TargetID: 1}, now)
		assert.Equal(t, protocol.FailPlayerDead, code)
	})

	t.Run("unlearned skill", func(t *testing.T) {
		e, _, p := newSkillFixture(t)
		_, _, code := e.validate(p, &protocol.UseSkillRequest{SkillID: 99}, now)
		assert.Equal(t, protocol.FailSkillNotLearned, code)
	})

	t.Run("learned but unknown to catalog", func(t *testing.T) {
		e, _, p := newSkillFixture(t)
		p.Skills[99] = &world.LearnedSkill{SkillID: 99, Level: 1}
		_, _, code := e.validate(p, &protocol.UseSkillRequest{SkillID: 99}, now)
		assert.Equal(t, protocol.FailSkillNotFound, code)
	})

	t.Run("cooldown", func(t *testing.T) {
		e, _, p := newSkillFixture(t)
		p.Skills[1].LastUsed = now.Add(-time.Second) // 冷卻 3 秒
		_, _, code := e.validate(p, &protocol.UseSkillRequest{SkillID: 1, TargetID: 1}, now)
		assert.Equal(t, protocol.FailCooldown, code)
	})

	t.Run("level outside table", func(t *testing.T) {
		e, _, p := newSkillFixture(t)
		p.Skills[1].Level = 3
		_, _, code := e.validate(p, &protocol.UseSkillRequest{SkillID: 1, TargetID: 1}, now)
		assert.Equal(t, protocol.FailInvalidLevel, code)
	})

	t.Run("no mana", func(t *testing.T) {
		e, _, p := newSkillFixture(t)
		p.Mana = 4
		_, _, code := e.validate(p, &protocol.UseSkillRequest{SkillID: 1, TargetID: 1}, now)
		assert.Equal(t, protocol.FailNoMana, code)
	})

	t.Run("health cost would kill", func(t *testing.T) {
		e, _, p := newSkillFixture(t)
		p.Health = 20 // health_cost 也是 20，不允許自殺
		_, _, code := e.validate(p, &protocol.UseSkillRequest{SkillID: 3}, now)
		assert.Equal(t, protocol.FailNoHealth, code)
	})

	t.Run("enemy target missing or out of range", func(t *testing.T) {
		e, state, p := newSkillFixture(t)
		_, _, code := e.validate(p, &protocol.UseSkillRequest{SkillID: 1, TargetID: 42}, now)
		assert.Equal(t, protocol.FailOutOfRange, code)

		state.Monster(1).Pos = protocol.Position{X: 19, Z: 0} // range 2.5
		_, _, code = e.validate(p, &protocol.UseSkillRequest{SkillID: 1, TargetID: 1}, now)
		assert.Equal(t, protocol.FailOutOfRange, code)

		state.Monster(1).Alive = false
		state.Monster(1).Pos = protocol.Position{X: 1, Z: 0}
		_, _, code = e.validate(p, &protocol.UseSkillRequest{SkillID: 1, TargetID: 1}, now)
		assert.Equal(t, protocol.FailOutOfRange, code)
	})

	t.Run("valid request passes", func(t *testing.T) {
		e, _, p := newSkillFixture(t)
		tpl, lvl, code := e.validate(p, &protocol.UseSkillRequest{SkillID: 1, TargetID: 1}, now)
		assert.Empty(t, code)
		assert.NotNil(t, tpl)
		assert.NotNil(t, lvl)
		assert.Equal(t, 10, lvl.BaseDamage)
	})
}

func TestUseSkillQueuesCastTime(t *testing.T) {
	e, _, p := newSkillFixture(t)
	now := time.Now()

	// bash 沒有詠唱時間，不會排入 pending cast；
	// 這裡只驗證排程判斷本身，所以直接塞一個 pending cast。
	p.Cast = &world.PendingCast{
		Request:    protocol.UseSkillRequest{SkillID: 1, TargetID: 1},
		ResolvesAt: now.Add(time.Second),
	}

	// 時間未到：不動
	e.ResolvePendingCast(p, now)
	assert.NotNil(t, p.Cast)

	// 取消：清掉即可，尚未扣任何資源
	e.CancelCast(p)
	assert.Nil(t, p.Cast)
}

func TestAreaSkillHitsOnlyTargetsInRadius(t *testing.T) {
	cat := newTestCatalog(t)
	state := world.NewState()
	hub := &fakeHub{}
	sink := &fakeCombatLog{}
	combat := NewCombatEngine(state, cat, nil, hub, nil, sink,
		rand.New(rand.NewSource(1)), 1.0, zap.NewNop())
	e := NewSkillEngine(state, cat, combat, hub, nil, nil, zap.NewNop())

	p := newTestWarrior(t, cat)
	p.Pos = protocol.Position{X: 10, Z: 10}
	p.Skills[2] = &world.LearnedSkill{SkillID: 2, Level: 1}
	state.AddPlayer(p)

	// 半徑 3.0：前兩隻在範圍內，第三隻在範圍外。
	// 血量拉高避免擊殺分支。
	tpl := cat.Monsters.Get(1)
	near1 := &world.Monster{ID: 1, Template: tpl, Health: 500, Alive: true, Pos: protocol.Position{X: 11, Z: 10}}
	near2 := &world.Monster{ID: 2, Template: tpl, Health: 500, Alive: true, Pos: protocol.Position{X: 10, Z: 12}}
	far := &world.Monster{ID: 3, Template: tpl, Health: 500, Alive: true, Pos: protocol.Position{X: 20, Z: 20}}
	state.AddMonster(near1)
	state.AddMonster(near2)
	state.AddMonster(far)

	manaBefore := p.Mana
	e.UseSkill(p, &protocol.UseSkillRequest{SkillID: 2}, time.Now())

	assert.Less(t, near1.Health, 500)
	assert.Less(t, near2.Health, 500)
	assert.Equal(t, 500, far.Health)

	// 範圍技能只扣一次法力，不隨命中數增加
	assert.Equal(t, manaBefore-8, p.Mana)

	require.Len(t, hub.broadcasts, 1)
	used, ok := hub.broadcasts[0].(*protocol.SkillUsed)
	require.True(t, ok)
	require.Len(t, used.Targets, 2)
	assert.Equal(t, int64(1), used.Targets[0].TargetID)
	assert.Equal(t, int64(2), used.Targets[1].TargetID)
	assert.Len(t, sink.entries, 2)
}

func TestResolvePendingCastAbortsOnMove(t *testing.T) {
	e, _, p := newSkillFixture(t)
	now := time.Now()

	p.Cast = &world.PendingCast{
		Request:    protocol.UseSkillRequest{SkillID: 1, TargetID: 1},
		ResolvesAt: now.Add(-time.Millisecond),
	}
	p.Moving = true

	mana := p.Mana
	e.ResolvePendingCast(p, now)
	assert.Nil(t, p.Cast)
	// 移動打斷：無聲取消，不扣資源
	assert.Equal(t, mana, p.Mana)
}
