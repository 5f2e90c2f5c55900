package system

import (
	"time"

	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/world"
)

// MovementSystem advances every player toward its active move target.
// Phase 0 (Movement).
type MovementSystem struct {
	world *world.State
	guard *game.MovementGuard
}

func NewMovementSystem(ws *world.State, guard *game.MovementGuard) *MovementSystem {
	return &MovementSystem{world: ws, guard: guard}
}

func (s *MovementSystem) Phase() Phase { return PhaseMovement }

func (s *MovementSystem) Update(now time.Time, dt time.Duration) {
	step := dt.Seconds()
	for _, p := range s.world.PlayersInJoinOrder() {
		s.guard.Integrate(p, step, now)
	}
}
