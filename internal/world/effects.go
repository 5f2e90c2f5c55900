package world

import "time"

// Effect type tags carried on active effects and skill templates.
const (
	EffectStatBuff = "statBuff"
	EffectDot      = "dot"
	EffectStun     = "stun"
)

// ActiveEffect is a timed effect on a player (stat buff, DoT, stun).
// Expires when now >= Start + Duration; stat deltas applied on add are
// reversed on removal.
type ActiveEffect struct {
	ID         int64
	SkillID    int32
	EffectType string // "statBuff" | "dot" | "stun"
	TargetStat string
	Value      int
	Start      time.Time
	Duration   time.Duration
	SourceID   string // caster player ID

	LastTick time.Time // dot only: last interval application
}

// Expired reports whether the effect's lifetime has elapsed.
func (e *ActiveEffect) Expired(now time.Time) bool {
	return !now.Before(e.Start.Add(e.Duration))
}

// AddEffect attaches an effect, replacing any previous effect from the
// same skill with the same type.
func (p *Player) AddEffect(e *ActiveEffect) *ActiveEffect {
	var replaced *ActiveEffect
	for i, old := range p.Effects {
		if old.SkillID == e.SkillID && old.EffectType == e.EffectType {
			replaced = old
			p.Effects = append(p.Effects[:i], p.Effects[i+1:]...)
			break
		}
	}
	p.Effects = append(p.Effects, e)
	return replaced
}

// RemoveEffect detaches an effect by identity.
func (p *Player) RemoveEffect(e *ActiveEffect) {
	for i, old := range p.Effects {
		if old == e {
			p.Effects = append(p.Effects[:i], p.Effects[i+1:]...)
			return
		}
	}
}

// Stunned reports whether any unexpired stun effect is active.
func (p *Player) Stunned(now time.Time) bool {
	for _, e := range p.Effects {
		if e.EffectType == EffectStun && !e.Expired(now) {
			return true
		}
	}
	return false
}
