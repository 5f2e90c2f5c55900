package world

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runekeep/server/internal/catalog"
)

func TestPlayersInJoinOrder(t *testing.T) {
	s := NewState()
	a := &Player{SessionID: 10, CharID: 1, Name: "a"}
	b := &Player{SessionID: 3, CharID: 2, Name: "b"}
	c := &Player{SessionID: 7, CharID: 3, Name: "c"}
	s.AddPlayer(a)
	s.AddPlayer(b)
	s.AddPlayer(c)

	got := s.PlayersInJoinOrder()
	require.Len(t, got, 3)
	// 依加入世界的順序，不是 session ID 順序
	assert.Equal(t, []*Player{a, b, c}, got)

	s.RemovePlayer(3)
	got = s.PlayersInJoinOrder()
	assert.Equal(t, []*Player{a, c}, got)
}

func TestPlayerLookupsAndOnline(t *testing.T) {
	s := NewState()
	p := &Player{SessionID: 1, CharID: 42, Name: "hero"}
	s.AddPlayer(p)

	assert.Same(t, p, s.PlayerBySession(1))
	assert.Same(t, p, s.PlayerByCharID(42))
	assert.Same(t, p, s.PlayerByName("hero"))
	assert.True(t, s.CharacterOnline(42))
	assert.False(t, s.CharacterOnline(99))

	removed := s.RemovePlayer(1)
	assert.Same(t, p, removed)
	assert.Nil(t, s.PlayerBySession(1))
	assert.False(t, s.CharacterOnline(42))
	assert.Nil(t, s.RemovePlayer(1))
}

func TestMonstersInOrder(t *testing.T) {
	s := NewState()
	s.AddMonster(&Monster{ID: 5})
	s.AddMonster(&Monster{ID: 1})
	s.AddMonster(&Monster{ID: 3})

	var ids []int64
	s.MonstersInOrder(func(m *Monster) { ids = append(ids, m.ID) })
	assert.Equal(t, []int64{1, 3, 5}, ids)
	assert.Equal(t, 3, s.MonsterCount())
}

func TestLootLockStable(t *testing.T) {
	s := NewState()
	assert.Same(t, s.LootLock(7), s.LootLock(7))
	assert.NotSame(t, s.LootLock(7), s.LootLock(8))
}

func TestPlayerApplyDamage(t *testing.T) {
	pos := func() *Player {
		return &Player{Health: 100, TargetMonster: 9, Moving: true}
	}

	p := pos()
	assert.False(t, p.ApplyDamage(30))
	assert.Equal(t, 70, p.Health)
	assert.False(t, p.Dead)

	// 致死一擊：血量歸零、清空戰鬥與移動狀態
	p = pos()
	assert.True(t, p.ApplyDamage(150))
	assert.Equal(t, 0, p.Health)
	assert.True(t, p.Dead)
	assert.Zero(t, p.TargetMonster)
	assert.False(t, p.Moving)

	// 已死亡不再吃傷害
	assert.False(t, p.ApplyDamage(10))
	assert.Equal(t, 0, p.Health)
}

func TestMonsterApplyDamageAndRespawn(t *testing.T) {
	tpl := &catalog.MonsterTemplate{RespawnTimeMS: 10000}
	m := &Monster{ID: 1, Template: tpl, Health: 50, Alive: true, State: MonsterAggro, Target: 7}

	assert.False(t, m.ApplyDamage(20))
	assert.True(t, m.Dirty)

	assert.True(t, m.ApplyDamage(40))
	assert.Equal(t, 0, m.Health)
	assert.False(t, m.Alive)
	assert.Equal(t, MonsterDead, m.State)
	assert.Zero(t, m.Target)

	assert.False(t, m.ApplyDamage(5))

	died := time.Now()
	m.LastRespawn = died
	assert.False(t, m.RespawnDue(died.Add(9*time.Second)))
	assert.True(t, m.RespawnDue(died.Add(10*time.Second)))
}

func TestEffectsAddReplaceAndStun(t *testing.T) {
	now := time.Now()
	p := &Player{}

	first := &ActiveEffect{ID: 1, SkillID: 3, EffectType: EffectStatBuff, TargetStat: "atk", Value: 10, Start: now, Duration: time.Second}
	assert.Nil(t, p.AddEffect(first))

	// 同技能同類型的效果覆蓋舊的
	second := &ActiveEffect{ID: 2, SkillID: 3, EffectType: EffectStatBuff, TargetStat: "atk", Value: 15, Start: now, Duration: time.Second}
	assert.Same(t, first, p.AddEffect(second))
	require.Len(t, p.Effects, 1)
	assert.Same(t, second, p.Effects[0])

	stun := &ActiveEffect{ID: 3, SkillID: 4, EffectType: EffectStun, Start: now, Duration: 2 * time.Second}
	p.AddEffect(stun)
	assert.True(t, p.Stunned(now.Add(time.Second)))
	assert.False(t, p.Stunned(now.Add(3*time.Second)))

	p.RemoveEffect(second)
	require.Len(t, p.Effects, 1)
	assert.Same(t, stun, p.Effects[0])
}
