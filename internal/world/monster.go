package world

import (
	"time"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/protocol"
)

// MonsterAIState is the monster's behavior mode.
type MonsterAIState int

const (
	MonsterIdle MonsterAIState = iota
	MonsterAggro
	MonsterDead
)

// Monster is a spawned monster instance. Created at world init from
// persisted rows; Alive flips false at zero health and back at
// lastRespawn + respawnTime.
type Monster struct {
	ID       int64
	Template *catalog.MonsterTemplate

	Health      int
	Pos         protocol.Position
	Alive       bool
	State       MonsterAIState
	Target      uint64 // aggro target session ID, 0 = none
	LastAttack  time.Time
	LastRespawn time.Time

	Dirty bool
}

// AliveByHealth keeps the isAlive ⇔ health > 0 invariant readable at call
// sites.
func (m *Monster) AliveByHealth() bool {
	return m.Health > 0
}

// ApplyDamage reduces health with a floor of zero. The caller owns the
// death path (loot, respawn timer) — this only flips the flags.
// Returns true when this call brought the monster to zero.
func (m *Monster) ApplyDamage(dmg int) bool {
	if !m.Alive {
		return false
	}
	m.Health -= dmg
	m.Dirty = true
	if m.Health <= 0 {
		m.Health = 0
		m.Alive = false
		m.State = MonsterDead
		m.Target = 0
		return true
	}
	return false
}

// RespawnDue reports whether the respawn timer has elapsed.
func (m *Monster) RespawnDue(now time.Time) bool {
	respawnAt := m.LastRespawn.Add(time.Duration(m.Template.RespawnTimeMS) * time.Millisecond)
	return !now.Before(respawnAt)
}
