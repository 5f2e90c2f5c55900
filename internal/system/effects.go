package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

// EffectSystem applies damage-over-time ticks and removes expired
// effects. Removing a stat buff triggers a stat recomputation so derived
// stats never hold stale deltas. Phase 3 (Effects).
type EffectSystem struct {
	world   *world.State
	catalog *catalog.Catalog
	hub     game.Notifier
	log     *zap.Logger
}

func NewEffectSystem(ws *world.State, cat *catalog.Catalog, hub game.Notifier, log *zap.Logger) *EffectSystem {
	return &EffectSystem{world: ws, catalog: cat, hub: hub, log: log}
}

func (s *EffectSystem) Phase() Phase { return PhaseEffects }

func (s *EffectSystem) Update(now time.Time, _ time.Duration) {
	for _, p := range s.world.PlayersInJoinOrder() {
		s.tickPlayer(p, now)
	}
}

func (s *EffectSystem) tickPlayer(p *world.Player, now time.Time) {
	var expired []*world.ActiveEffect
	recalc := false

	for _, e := range p.Effects {
		if e.Expired(now) {
			expired = append(expired, e)
			if e.EffectType == world.EffectStatBuff {
				recalc = true
			}
			continue
		}
		if e.EffectType == world.EffectDot && !p.Dead {
			s.tickDot(p, e, now)
		}
	}

	for _, e := range expired {
		p.RemoveEffect(e)
	}
	if recalc {
		game.RecalculateStats(p, s.catalog.Classes, s.catalog.Items)
	}
}

func (s *EffectSystem) tickDot(p *world.Player, e *world.ActiveEffect, now time.Time) {
	tpl := s.catalog.Skills.Get(e.SkillID)
	interval := time.Second
	if tpl != nil {
		for i := range tpl.Effects {
			if tpl.Effects[i].Type == world.EffectDot && tpl.Effects[i].Interval > 0 {
				interval = time.Duration(tpl.Effects[i].Interval * float64(time.Second))
			}
		}
	}
	if e.LastTick.IsZero() {
		e.LastTick = e.Start
	}
	if now.Sub(e.LastTick) < interval {
		return
	}
	e.LastTick = now

	died := p.ApplyDamage(e.Value)
	p.Dirty = true
	s.hub.Broadcast(&protocol.CombatResult{
		Type:         protocol.SCombatResult,
		AttackerID:   e.SourceID,
		TargetID:     p.Session.PlayerID(),
		Damage:       e.Value,
		TargetHealth: p.Health,
		TargetDied:   died,
	})
	if died {
		s.log.Info("玩家死於持續傷害", zap.String("player", p.Name))
		s.hub.Broadcast(&protocol.PlayerDeath{
			Type:     protocol.SPlayerDeath,
			PlayerID: p.Session.PlayerID(),
		})
	}
}
