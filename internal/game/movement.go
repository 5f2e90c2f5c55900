package game

import (
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

// MovementGuard validates client-driven movement against a speed cap and
// clamps positions to the terrain. Violations are reverted silently; the
// client never learns the threshold.
type MovementGuard struct {
	terrain  *catalog.Terrain
	maxSpeed float64 // units per second
	log      *zap.Logger
}

func NewMovementGuard(terrain *catalog.Terrain, maxSpeed float64, log *zap.Logger) *MovementGuard {
	return &MovementGuard{terrain: terrain, maxSpeed: maxSpeed, log: log}
}

// Accept validates a requested target position for a player. On success
// the target is terrain-clamped, recorded as the last accepted position
// and returned. On a speed violation the player's position reverts to the
// last accepted one, the move target clears, and ok is false.
func (g *MovementGuard) Accept(p *world.Player, target protocol.Position, now time.Time) (protocol.Position, bool) {
	x, y, z := g.terrain.Clamp(target.X, target.Z)
	clamped := protocol.Position{X: x, Y: y, Z: z}

	if !p.LastAcceptedTime.IsZero() {
		dt := now.Sub(p.LastAcceptedTime).Seconds()
		if dt > 0 {
			speed := world.Dist2D(p.LastAcceptedPos, clamped) / dt
			if speed > g.maxSpeed {
				p.Pos = p.LastAcceptedPos
				p.TargetPos = nil
				p.Moving = false
				// SPEED_HACK：只留伺服器端紀錄，不回覆任何錯誤。
				g.log.Warn("SPEED_HACK",
					zap.String("player", p.Name),
					zap.Float64("speed", speed),
				)
				return protocol.Position{}, false
			}
		}
	}

	p.LastAcceptedPos = clamped
	p.LastAcceptedTime = now
	return clamped, true
}

// Commit records a server-driven position change (movement integration,
// respawn) as the new last accepted position.
func (g *MovementGuard) Commit(p *world.Player, now time.Time) {
	p.LastAcceptedPos = p.Pos
	p.LastAcceptedTime = now
}

// Integrate advances one player toward the active move target by
// moveSpeed·dt, snapping terrain height, clearing the target on arrival.
// Called under the world lock once per tick.
func (g *MovementGuard) Integrate(p *world.Player, dt float64, now time.Time) {
	if p.Dead || p.TargetPos == nil || p.Stunned(now) {
		p.Moving = false
		return
	}
	target := *p.TargetPos
	dist := world.Dist2D(p.Pos, target)
	step := p.MoveSpeed * dt

	if dist <= step {
		p.Pos = target
		p.TargetPos = nil
		p.Moving = false
	} else {
		p.Pos.X += (target.X - p.Pos.X) / dist * step
		p.Pos.Z += (target.Z - p.Pos.Z) / dist * step
		p.Moving = true
	}
	p.Pos.Y = g.terrain.HeightAt(p.Pos.X, p.Pos.Z)
	g.Commit(p, now)
	p.Dirty = true
}
