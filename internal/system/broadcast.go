package system

import (
	"time"

	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/world"
)

// BroadcastSystem sends the periodic worldState snapshot to every
// session. Phase 4 (Broadcast).
type BroadcastSystem struct {
	world     *world.State
	hub       game.Notifier
	tickCount int
	interval  int // broadcast every N ticks
}

func NewBroadcastSystem(ws *world.State, hub game.Notifier, intervalTicks int) *BroadcastSystem {
	return &BroadcastSystem{world: ws, hub: hub, interval: intervalTicks}
}

func (s *BroadcastSystem) Phase() Phase { return PhaseBroadcast }

func (s *BroadcastSystem) Update(now time.Time, _ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0

	snap := game.WorldSnapshot(s.world, now.UnixMilli())
	s.hub.Broadcast(&snap)
}
