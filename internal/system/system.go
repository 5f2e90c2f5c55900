// Package system contains the per-tick world update systems and the
// phase-ordered runner that drives them.
package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseMovement  Phase = iota // 0: integrate player movement
	PhaseCombat                 // 1: pending casts + player auto-combat
	PhaseMonsters               // 2: monster AI, attacks, respawn
	PhaseEffects                // 3: dot ticks + effect expiry
	PhaseBroadcast              // 4: periodic worldState snapshot
	PhasePersist                // 5: periodic async save
)

// System is one tick-driven world update unit.
type System interface {
	Phase() Phase
	Update(now time.Time, dt time.Duration)
}
