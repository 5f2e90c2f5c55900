package game

import (
	"math"
	"math/rand"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/scripting"
	"github.com/runekeep/server/internal/world"
)

// CombatLogger records combat events off the hot path.
type CombatLogger interface {
	LogCombatAsync(attacker, defender string, skillID int32, damage int, critical bool)
}

// monsterWireID formats a monster ID for fields that carry either side
// of a strike as a string.
func monsterWireID(id int64) string {
	return "m" + strconv.FormatInt(id, 10)
}

// CombatEngine owns the damage formula, attack gating, experience award
// and the level-up path. Player→monster and monster→player strikes use
// the same formula.
type CombatEngine struct {
	state   *world.State
	catalog *catalog.Catalog
	lua     *scripting.Engine
	hub     Notifier
	loot    *LootResolver
	sink    CombatLogger
	log     *zap.Logger
	rng     *rand.Rand
	expRate float64
}

func NewCombatEngine(state *world.State, cat *catalog.Catalog, lua *scripting.Engine,
	hub Notifier, loot *LootResolver, sink CombatLogger, rng *rand.Rand, expRate float64, log *zap.Logger) *CombatEngine {
	return &CombatEngine{
		state:   state,
		catalog: cat,
		lua:     lua,
		hub:     hub,
		loot:    loot,
		sink:    sink,
		log:     log,
		rng:     rng,
		expRate: expRate,
	}
}

// RollDamage runs the shared damage formula. raw is the pre-roll damage
// (attack or magic power, already multiplied and based for skills);
// critChance includes all bonuses and is clamped to [0, 0.75]. True
// damage passes defense 0.
func (c *CombatEngine) RollDamage(raw int, critChance float64, defense int) (int, bool) {
	if critChance < 0 {
		critChance = 0
	}
	if critChance > 0.75 {
		critChance = 0.75
	}
	dmg := float64(raw)
	crit := c.rng.Float64() < critChance
	if crit {
		dmg *= 1.5
	}
	reduction := 1.0 - float64(defense)/float64(defense+100)
	if reduction < 0.1 {
		reduction = 0.1
	}
	out := int(math.Round(dmg * reduction))
	if out < 1 {
		out = 1
	}
	return out, crit
}

// PhysicalCritBase is the pre-bonus crit chance of a physical strike.
func PhysicalCritBase(dex int) float64 { return 0.01 + 0.003*float64(dex) }

// MagicalCritBase is the pre-bonus crit chance of a magical strike.
func MagicalCritBase(intel int) float64 { return 0.05 + 0.002*float64(intel) }

// ProcessPlayerCombat advances one player's auto-combat for a tick.
// Called under the world lock, in join order across players so same-tick
// strikes on one monster serialize deterministically.
func (c *CombatEngine) ProcessPlayerCombat(p *world.Player, now time.Time) {
	if p.Dead || p.TargetMonster == 0 || p.Stunned(now) {
		return
	}
	m := c.state.Monster(p.TargetMonster)
	if m == nil || !m.Alive {
		p.TargetMonster = 0
		return
	}

	if world.Dist2D(p.Pos, m.Pos) > p.AttackRange {
		// 追擊：把目標位置設成怪物當前位置。
		pos := m.Pos
		p.TargetPos = &pos
		p.Moving = true
		return
	}

	interval := time.Duration(float64(time.Second) / p.Derived.AttackSpeed)
	if now.Sub(p.LastAttack) < interval {
		return
	}
	p.LastAttack = now
	p.Moving = false
	p.TargetPos = nil

	dmg, crit := c.RollDamage(p.Derived.Atk, PhysicalCritBase(p.Eff.Dex), m.Template.Defense)
	killed := m.ApplyDamage(dmg)

	pid := p.Session.PlayerID()
	c.hub.Broadcast(&protocol.PlayerAttack{
		Type:      protocol.SPlayerAttack,
		PlayerID:  pid,
		MonsterID: m.ID,
		Damage:    dmg,
		Critical:  crit,
	})
	c.hub.Broadcast(&protocol.CombatResult{
		Type:         protocol.SCombatResult,
		AttackerID:   pid,
		TargetID:     monsterWireID(m.ID),
		Damage:       dmg,
		Critical:     crit,
		TargetHealth: m.Health,
		TargetDied:   killed,
	})
	c.sink.LogCombatAsync(pid, monsterWireID(m.ID), 0, dmg, crit)

	if killed {
		c.OnMonsterKilled(p, m, now)
	}
}

// OnMonsterKilled runs the death path for a kill credited to one player:
// respawn timer, XP award and loot. Only the strike that brought health
// to zero reaches here.
func (c *CombatEngine) OnMonsterKilled(p *world.Player, m *world.Monster, now time.Time) {
	m.LastRespawn = now
	m.Dirty = true
	if p.TargetMonster == m.ID {
		p.TargetMonster = 0
	}

	c.AwardExp(p, m.Template.Level, m.Template.ExpReward)
	c.loot.Resolve(p, m)

	c.log.Info("怪物被擊殺",
		zap.Int64("monsterID", m.ID),
		zap.String("monster", m.Template.Name),
		zap.String("killer", p.Name),
	)
}

// AwardExp grants scaled experience and resolves any level-ups. Level-up
// refills health and mana, applies class growth to base stats, grants
// status points, recalculates, and broadcasts levelUp.
func (c *CombatEngine) AwardExp(p *world.Player, monsterLevel, baseReward int) {
	gained := c.lua.ScaleMonsterExp(p.Level, monsterLevel, baseReward)
	gained = int(math.Round(float64(gained) * c.expRate))
	if gained < 1 {
		gained = 1
	}
	p.Exp += int64(gained)
	p.Dirty = true

	cls := c.catalog.Classes.Get(p.Class)
	leveled := false
	for p.Exp >= c.lua.ExpForLevel(p.Level+1) && p.Level < scripting.MaxLevel {
		p.Level++
		leveled = true
		if cls != nil {
			p.Base.Str += cls.StrPerLevel
			p.Base.Int += cls.IntPerLevel
			p.Base.Dex += cls.DexPerLevel
			p.Base.Vit += cls.VitPerLevel
			p.StatusPoints += cls.StatusPointsPerLevel
		}
	}
	if !leveled {
		return
	}

	RecalculateStats(p, c.catalog.Classes, c.catalog.Items)
	p.Health = p.MaxHealth
	p.Mana = p.MaxMana

	c.log.Info("玩家升級",
		zap.String("player", p.Name),
		zap.Int("level", p.Level),
	)
	c.hub.Broadcast(&protocol.LevelUp{
		Type:         protocol.SLevelUp,
		PlayerID:     p.Session.PlayerID(),
		Level:        p.Level,
		MaxHealth:    p.MaxHealth,
		MaxMana:      p.MaxMana,
		StatusPoints: p.StatusPoints,
		Stats:        StatsView(p),
	})
}

// MonsterStrike applies one monster attack against a player. Monsters
// have no dexterity; their crit chance is the physical floor.
func (c *CombatEngine) MonsterStrike(m *world.Monster, p *world.Player, now time.Time) {
	m.LastAttack = now

	dmg, crit := c.RollDamage(m.Template.AttackPower, PhysicalCritBase(0), p.Derived.Def)
	died := p.ApplyDamage(dmg)
	p.Dirty = true

	c.hub.Broadcast(&protocol.CombatResult{
		Type:         protocol.SCombatResult,
		AttackerID:   monsterWireID(m.ID),
		TargetID:     p.Session.PlayerID(),
		Damage:       dmg,
		Critical:     crit,
		TargetHealth: p.Health,
		TargetDied:   died,
	})
	c.sink.LogCombatAsync(monsterWireID(m.ID), p.Session.PlayerID(), 0, dmg, crit)

	if died {
		m.State = world.MonsterIdle
		m.Target = 0
		c.log.Info("玩家死亡",
			zap.String("player", p.Name),
			zap.Int64("killer", m.ID),
		)
		c.hub.Broadcast(&protocol.PlayerDeath{
			Type:     protocol.SPlayerDeath,
			PlayerID: p.Session.PlayerID(),
			KillerID: m.ID,
		})
	}
}
