package system

import (
	"math"
	"math/rand"
	"time"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/world"
)

// MonsterSystem drives monster AI and respawn. Idle monsters acquire the
// nearest living player inside aggro range; aggro monsters chase and
// attack with the shared combat formula; dead monsters respawn after
// their timer at a random point inside the spawn radius. Phase 2
// (Monsters).
type MonsterSystem struct {
	world   *world.State
	combat  *game.CombatEngine
	terrain *catalog.Terrain
	rng     *rand.Rand
}

func NewMonsterSystem(ws *world.State, combat *game.CombatEngine, terrain *catalog.Terrain, rng *rand.Rand) *MonsterSystem {
	return &MonsterSystem{world: ws, combat: combat, terrain: terrain, rng: rng}
}

func (s *MonsterSystem) Phase() Phase { return PhaseMonsters }

func (s *MonsterSystem) Update(now time.Time, dt time.Duration) {
	step := dt.Seconds()
	s.world.MonstersInOrder(func(m *world.Monster) {
		if !m.Alive {
			if m.RespawnDue(now) {
				s.respawn(m)
			}
			return
		}
		switch m.State {
		case world.MonsterIdle:
			s.acquireTarget(m)
		case world.MonsterAggro:
			s.pursue(m, now, step)
		}
	})
}

func (s *MonsterSystem) acquireTarget(m *world.Monster) {
	var nearest *world.Player
	best := m.Template.AggroRange
	for _, p := range s.world.PlayersInJoinOrder() {
		if p.Dead {
			continue
		}
		if d := world.Dist2D(m.Pos, p.Pos); d <= best {
			best = d
			nearest = p
		}
	}
	if nearest != nil {
		m.State = world.MonsterAggro
		m.Target = nearest.SessionID
	}
}

func (s *MonsterSystem) pursue(m *world.Monster, now time.Time, step float64) {
	p := s.world.PlayerBySession(m.Target)
	if p == nil || p.Dead {
		m.State = world.MonsterIdle
		m.Target = 0
		return
	}

	dist := world.Dist2D(m.Pos, p.Pos)
	if dist > m.Template.AttackRange {
		// 追擊：朝目標水平移動，高度貼地。
		move := m.Template.MoveSpeed * step
		if move > dist {
			move = dist
		}
		m.Pos.X += (p.Pos.X - m.Pos.X) / dist * move
		m.Pos.Z += (p.Pos.Z - m.Pos.Z) / dist * move
		m.Pos.Y = s.terrain.HeightAt(m.Pos.X, m.Pos.Z)
		m.Dirty = true
		return
	}

	interval := time.Duration(float64(time.Second) / m.Template.AttackSpeed)
	if now.Sub(m.LastAttack) < interval {
		return
	}
	s.combat.MonsterStrike(m, p, now)
}

// respawn brings a monster back at full health somewhere inside its spawn
// radius, clamped to the terrain.
func (s *MonsterSystem) respawn(m *world.Monster) {
	angle := s.rng.Float64() * 2 * math.Pi
	radius := s.rng.Float64() * m.Template.SpawnRadius
	x := m.Template.SpawnX + math.Cos(angle)*radius
	z := m.Template.SpawnZ + math.Sin(angle)*radius
	cx, cy, cz := s.terrain.Clamp(x, z)

	m.Pos.X, m.Pos.Y, m.Pos.Z = cx, cy, cz
	m.Health = m.Template.MaxHealth
	m.Alive = true
	m.State = world.MonsterIdle
	m.Target = 0
	m.Dirty = true
}
