package system

import (
	"time"

	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/world"
)

// CombatSystem resolves elapsed skill casts and runs player auto-combat.
// Players are processed in join order, so several players striking the
// same monster in one tick serialize deterministically. Phase 1 (Combat).
type CombatSystem struct {
	world  *world.State
	combat *game.CombatEngine
	skills *game.SkillEngine
}

func NewCombatSystem(ws *world.State, combat *game.CombatEngine, skills *game.SkillEngine) *CombatSystem {
	return &CombatSystem{world: ws, combat: combat, skills: skills}
}

func (s *CombatSystem) Phase() Phase { return PhaseCombat }

func (s *CombatSystem) Update(now time.Time, _ time.Duration) {
	for _, p := range s.world.PlayersInJoinOrder() {
		s.skills.ResolvePendingCast(p, now)
		s.combat.ProcessPlayerCombat(p, now)
	}
}
