// Package world holds the shared mutable gameplay state: the player and
// monster registries and every runtime entity they own. All mutation
// happens under the world lock (State.Lock) — by the tick loop for the
// duration of a tick, and by message handlers for the duration of one
// handler.
package world

import (
	"math"
	"time"

	"github.com/runekeep/server/internal/protocol"
)

// ClientConn is the transport-facing slice of a session that gameplay code
// uses: the wire identity and the outbound message path. The gateway
// session implements it.
type ClientConn interface {
	PlayerID() string
	SendJSON(v any)
}

// Attributes are the four base stats.
type Attributes struct {
	Str int
	Int int
	Dex int
	Vit int
}

// DerivedStats are always recomputed from base stats plus equipment —
// never written directly outside game.RecalculateStats.
type DerivedStats struct {
	Atk         int
	Matk        int
	Def         int
	AttackSpeed float64 // attacks per second
}

// LearnedSkill is one skill known by a character. SlotNumber 0 means
// unslotted; 1-9 are hotbar slots, at most one skill per slot.
type LearnedSkill struct {
	SkillID    int32
	Level      int
	SlotNumber int
	LastUsed   time.Time
}

// PendingCast tracks a cast-time skill between intent and resolution.
// Costs are deducted at resolution, not here.
type PendingCast struct {
	Request    protocol.UseSkillRequest
	ResolvesAt time.Time
}

// Player is the in-memory runtime of a character in the world.
type Player struct {
	SessionID uint64
	Session   ClientConn
	JoinSeq   uint64 // world join order, used for per-tick attack serialization

	CharID    int64
	AccountID int64
	Name      string
	Race      string
	Class     string

	Level        int
	Exp          int64
	StatusPoints int

	Health    int
	MaxHealth int
	Mana      int
	MaxMana   int

	Base    Attributes   // persisted base stats (includes allocated points)
	Eff     Attributes   // base + equipment, recomputed
	Derived DerivedStats // recomputed

	Pos       protocol.Position
	TargetPos *protocol.Position
	Moving    bool
	MoveSpeed float64
	Dead      bool

	// Auto-combat.
	TargetMonster int64 // 0 = not in combat
	LastAttack    time.Time
	AttackRange   float64

	// Movement anti-cheat: last accepted position and when.
	LastAcceptedPos  protocol.Position
	LastAcceptedTime time.Time

	Skills  map[int32]*LearnedSkill
	Inv     *Inventory
	Effects []*ActiveEffect

	// Per-effect-target consumable cooldowns ("health", "mana" …).
	PotionCooldowns map[string]time.Time

	Cast *PendingCast // non-nil while a cast-time skill is in flight

	// Dirty marks persisted state changed since last auto-save.
	Dirty bool
}

// InCombat reports whether the player has an auto-combat target.
func (p *Player) InCombat() bool {
	return p.TargetMonster != 0
}

// Skill returns the learned skill, or nil.
func (p *Player) Skill(skillID int32) *LearnedSkill {
	return p.Skills[skillID]
}

// SkillInSlot returns the learned skill occupying a hotbar slot, or nil.
func (p *Player) SkillInSlot(slot int) *LearnedSkill {
	if slot == 0 {
		return nil
	}
	for _, s := range p.Skills {
		if s.SlotNumber == slot {
			return s
		}
	}
	return nil
}

// ApplyDamage reduces health with a floor of zero and flips the dead flag
// when it hits bottom. Returns true when this call killed the player.
func (p *Player) ApplyDamage(dmg int) bool {
	if p.Dead {
		return false
	}
	p.Health -= dmg
	if p.Health <= 0 {
		p.Health = 0
		p.Dead = true
		p.TargetMonster = 0
		p.TargetPos = nil
		p.Moving = false
		return true
	}
	return false
}

// Dist2D is the horizontal (x, z plane) distance between two positions.
// 高度差不計入攻擊/技能距離判定。
func Dist2D(a, b protocol.Position) float64 {
	dx := a.X - b.X
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dz*dz)
}
