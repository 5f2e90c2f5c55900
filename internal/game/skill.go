package game

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/persist"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/world"
)

// SkillEngine validates and resolves skill use, learning, and skill
// level-up. Validation short-circuits in a fixed order and each failure
// maps to one stable code so clients can localize messages.
type SkillEngine struct {
	state   *world.State
	catalog *catalog.Catalog
	combat  *CombatEngine
	hub     Notifier
	skills  *persist.SkillRepo
	chars   *persist.CharacterRepo
	log     *zap.Logger
}

func NewSkillEngine(state *world.State, cat *catalog.Catalog, combat *CombatEngine,
	hub Notifier, skills *persist.SkillRepo, chars *persist.CharacterRepo, log *zap.Logger) *SkillEngine {
	return &SkillEngine{
		state:   state,
		catalog: cat,
		combat:  combat,
		hub:     hub,
		skills:  skills,
		chars:   chars,
		log:     log,
	}
}

// validate runs the ordered pre-use checks and returns the first failure
// code, or "" with the resolved template and level row on success.
func (e *SkillEngine) validate(p *world.Player, req *protocol.UseSkillRequest, now time.Time) (*catalog.SkillTemplate, *catalog.SkillLevelData, string) {
	if p.Dead {
		return nil, nil, protocol.FailPlayerDead
	}
	learned := p.Skill(req.SkillID)
	if learned == nil {
		return nil, nil, protocol.FailSkillNotLearned
	}
	tpl := e.catalog.Skills.Get(req.SkillID)
	if tpl == nil {
		return nil, nil, protocol.FailSkillNotFound
	}
	cooldown := time.Duration(tpl.Cooldown * float64(time.Second))
	if now.Sub(learned.LastUsed) < cooldown {
		return nil, nil, protocol.FailCooldown
	}
	lvl := tpl.LevelData(learned.Level)
	if lvl == nil {
		return nil, nil, protocol.FailInvalidLevel
	}
	if p.Mana < tpl.ManaCost {
		return nil, nil, protocol.FailNoMana
	}
	if p.Health <= tpl.HealthCost {
		return nil, nil, protocol.FailNoHealth
	}
	if tpl.TargetType == catalog.TargetEnemy {
		m := e.state.Monster(req.TargetID)
		if m == nil || !m.Alive || world.Dist2D(p.Pos, m.Pos) > tpl.Range {
			return nil, nil, protocol.FailOutOfRange
		}
	}
	return tpl, lvl, ""
}

// UseSkill handles a useSkill request. Cast-time skills are queued as a
// pending cast and resolved by the tick loop; instant skills resolve
// immediately. Costs are always deducted at resolution.
func (e *SkillEngine) UseSkill(p *world.Player, req *protocol.UseSkillRequest, now time.Time) {
	_, _, code := e.validate(p, req, now)
	if code != "" {
		e.fail(p, req.SkillID, code)
		return
	}

	tpl := e.catalog.Skills.Get(req.SkillID)
	if tpl.CastTime > 0 {
		p.Cast = &world.PendingCast{
			Request:    *req,
			ResolvesAt: now.Add(time.Duration(tpl.CastTime * float64(time.Second))),
		}
		return
	}
	e.resolve(p, req, now)
}

// CancelCast aborts an in-flight cast. No refund is needed since nothing
// was deducted yet.
func (e *SkillEngine) CancelCast(p *world.Player) {
	p.Cast = nil
}

// ResolvePendingCast re-validates and fires a cast whose timer elapsed.
// Movement and death abort it. Called by the tick loop under the world
// lock.
func (e *SkillEngine) ResolvePendingCast(p *world.Player, now time.Time) {
	cast := p.Cast
	if cast == nil || now.Before(cast.ResolvesAt) {
		return
	}
	p.Cast = nil
	if p.Moving {
		return
	}
	req := cast.Request
	if _, _, code := e.validate(p, &req, now); code != "" {
		e.fail(p, req.SkillID, code)
		return
	}
	e.resolve(p, &req, now)
}

// resolve deducts costs, starts the cooldown, and dispatches by target
// type. Caller has validated.
func (e *SkillEngine) resolve(p *world.Player, req *protocol.UseSkillRequest, now time.Time) {
	tpl := e.catalog.Skills.Get(req.SkillID)
	learned := p.Skill(req.SkillID)
	lvl := tpl.LevelData(learned.Level)

	p.Mana -= tpl.ManaCost
	p.Health -= tpl.HealthCost
	learned.LastUsed = now
	p.Dirty = true

	out := protocol.SkillUsed{
		Type:      protocol.SSkillUsed,
		PlayerID:  p.Session.PlayerID(),
		SkillID:   tpl.ID,
		SkillName: tpl.Name,
	}

	switch tpl.TargetType {
	case catalog.TargetEnemy:
		m := e.state.Monster(req.TargetID)
		if m == nil || !m.Alive {
			e.fail(p, req.SkillID, protocol.FailExecution)
			return
		}
		out.Targets = append(out.Targets, e.strikeMonster(p, m, tpl, lvl, now))

	case catalog.TargetArea:
		center := p.Pos
		if req.TargetPosition != nil {
			center = *req.TargetPosition
		}
		e.state.MonstersInOrder(func(m *world.Monster) {
			if !m.Alive || world.Dist2D(center, m.Pos) > tpl.AreaRadius {
				return
			}
			out.Targets = append(out.Targets, e.strikeMonster(p, m, tpl, lvl, now))
		})

	case catalog.TargetSelf, catalog.TargetAlly:
		// ally 目前回退成施法者自身。
		target := p
		healing := lvl.BaseHealing + int(float64(p.Derived.Matk)*lvl.DamageMult)
		if healing > 0 {
			target.Health += healing
			if target.Health > target.MaxHealth {
				target.Health = target.MaxHealth
			}
		}
		e.applyEffects(target, tpl, now)
		out.Targets = append(out.Targets, protocol.SkillTarget{
			TargetID:     target.CharID,
			Healing:      healing,
			TargetHealth: target.Health,
		})

	default:
		e.fail(p, req.SkillID, protocol.FailExecution)
		return
	}

	out.Mana = p.Mana
	out.Health = p.Health
	e.hub.Broadcast(&out)
}

// strikeMonster applies one skill hit to a monster and runs the kill
// path when it dies from it.
func (e *SkillEngine) strikeMonster(p *world.Player, m *world.Monster, tpl *catalog.SkillTemplate, lvl *catalog.SkillLevelData, now time.Time) protocol.SkillTarget {
	var raw int
	var crit float64
	switch tpl.DamageType {
	case catalog.DamageMagical:
		raw = int(float64(p.Derived.Matk)*lvl.DamageMult) + lvl.BaseDamage
		crit = MagicalCritBase(p.Eff.Int) + lvl.CritChanceBonus
	case catalog.DamageTrue:
		raw = int(float64(p.Derived.Atk)*lvl.DamageMult) + lvl.BaseDamage
		crit = lvl.CritChanceBonus
	default:
		raw = int(float64(p.Derived.Atk)*lvl.DamageMult) + lvl.BaseDamage
		crit = PhysicalCritBase(p.Eff.Dex) + lvl.CritChanceBonus
	}

	defense := m.Template.Defense
	if tpl.DamageType == catalog.DamageTrue {
		defense = 0
	}
	dmg, critical := e.combat.RollDamage(raw, crit, defense)
	killed := m.ApplyDamage(dmg)

	e.combat.sink.LogCombatAsync(p.Session.PlayerID(), monsterWireID(m.ID), tpl.ID, dmg, critical)
	if killed {
		e.combat.OnMonsterKilled(p, m, now)
	}
	return protocol.SkillTarget{
		TargetID:     m.ID,
		Damage:       dmg,
		Critical:     critical,
		TargetHealth: m.Health,
		TargetDied:   killed,
	}
}

// applyEffects attaches a skill's listed effects to the target.
func (e *SkillEngine) applyEffects(target *world.Player, tpl *catalog.SkillTemplate, now time.Time) {
	changed := false
	for i := range tpl.Effects {
		fx := &tpl.Effects[i]
		target.AddEffect(&world.ActiveEffect{
			SkillID:    tpl.ID,
			EffectType: fx.Type,
			TargetStat: fx.TargetStat,
			Value:      fx.Value,
			Start:      now,
			Duration:   time.Duration(fx.DurationMS) * time.Millisecond,
			SourceID:   target.Session.PlayerID(),
		})
		if fx.Type == world.EffectStatBuff {
			changed = true
		}
	}
	if changed {
		RecalculateStats(target, e.catalog.Classes, e.catalog.Items)
	}
}

func (e *SkillEngine) fail(p *world.Player, skillID int32, code string) {
	p.Session.SendJSON(&protocol.SkillUseFailed{
		Type:    protocol.SSkillUseFailed,
		SkillID: skillID,
		Reason:  code,
	})
}

// Learn handles learnSkill: level and class gates, slot eviction, and a
// synchronous persist before the success reply.
func (e *SkillEngine) Learn(ctx context.Context, p *world.Player, skillID int32, slot int) {
	reply := func(msg string) {
		p.Session.SendJSON(&protocol.SkillLearned{Type: protocol.SSkillLearned, Success: false, Message: msg})
	}
	tpl := e.catalog.Skills.Get(skillID)
	if tpl == nil {
		reply("技能不存在")
		return
	}
	if p.Level < tpl.RequiredLevel {
		reply("等級不足")
		return
	}
	if tpl.RequiredClass != "" && tpl.RequiredClass != p.Class {
		reply("職業不符")
		return
	}
	if p.Skill(skillID) != nil {
		reply("已學會此技能")
		return
	}
	if slot < 1 || slot > 9 {
		reply("欄位編號無效")
		return
	}

	var evicted *world.LearnedSkill
	if prev := p.SkillInSlot(slot); prev != nil {
		prev.SlotNumber = 0
		evicted = prev
	}
	learned := &world.LearnedSkill{SkillID: skillID, Level: 1, SlotNumber: slot}
	p.Skills[skillID] = learned

	rows := []*persist.SkillRow{{
		CharacterID: p.CharID, SkillID: skillID, Level: 1, SlotNumber: slot,
	}}
	if evicted != nil {
		rows = append(rows, &persist.SkillRow{
			CharacterID: p.CharID, SkillID: evicted.SkillID,
			Level: evicted.Level, SlotNumber: 0,
		})
	}
	if err := e.skills.Save(ctx, p.CharID, rows); err != nil {
		delete(p.Skills, skillID)
		if evicted != nil {
			evicted.SlotNumber = slot
		}
		e.log.Error("保存技能失敗", zap.Error(err), zap.String("player", p.Name))
		reply("保存失敗，請稍後再試")
		return
	}

	p.Session.SendJSON(&protocol.SkillLearned{
		Type:       protocol.SSkillLearned,
		Success:    true,
		SkillID:    skillID,
		SkillName:  tpl.Name,
		SlotNumber: slot,
	})
}

// LevelUp handles levelUpSkill: spends the next row's status-point cost
// and rolls both the skill level and the point spend back if the persist
// fails.
func (e *SkillEngine) LevelUp(ctx context.Context, p *world.Player, skillID int32) {
	reply := func(msg string) {
		p.Session.SendJSON(&protocol.SkillLeveledUp{Type: protocol.SSkillLeveledUp, Success: false, Message: msg})
	}
	learned := p.Skill(skillID)
	if learned == nil {
		reply("尚未學會此技能")
		return
	}
	tpl := e.catalog.Skills.Get(skillID)
	if tpl == nil {
		reply("技能不存在")
		return
	}
	if learned.Level >= tpl.MaxLevel {
		reply("技能已達最高等級")
		return
	}
	next := tpl.LevelData(learned.Level + 1)
	if next == nil {
		reply("技能等級表缺少下一級")
		return
	}
	if p.StatusPoints < next.StatusPointCost {
		reply("狀態點數不足")
		return
	}

	learned.Level++
	p.StatusPoints -= next.StatusPointCost

	row := &persist.SkillRow{
		CharacterID: p.CharID,
		SkillID:     skillID,
		Level:       learned.Level,
		SlotNumber:  learned.SlotNumber,
	}
	if !learned.LastUsed.IsZero() {
		t := learned.LastUsed
		row.LastUsed = &t
	}
	err := e.skills.Upsert(ctx, row)
	if err == nil {
		err = e.chars.Update(ctx, CharacterRow(p))
	}
	if err != nil {
		learned.Level--
		p.StatusPoints += next.StatusPointCost
		e.log.Error("技能升級保存失敗，已回滾", zap.Error(err), zap.String("player", p.Name))
		reply("保存失敗，請稍後再試")
		return
	}
	p.Dirty = true

	p.Session.SendJSON(&protocol.SkillLeveledUp{
		Type:         protocol.SSkillLeveledUp,
		Success:      true,
		SkillID:      skillID,
		NewLevel:     learned.Level,
		StatusPoints: p.StatusPoints,
	})
}

// TemplateView converts a catalog skill template to its wire shape.
func TemplateView(tpl *catalog.SkillTemplate) protocol.SkillTemplate {
	return protocol.SkillTemplate{
		ID:            tpl.ID,
		Name:          tpl.Name,
		SkillType:     tpl.SkillType,
		DamageType:    tpl.DamageType,
		TargetType:    tpl.TargetType,
		RequiredLevel: tpl.RequiredLevel,
		RequiredClass: tpl.RequiredClass,
		MaxLevel:      tpl.MaxLevel,
		ManaCost:      tpl.ManaCost,
		HealthCost:    tpl.HealthCost,
		Cooldown:      tpl.Cooldown,
		CastTime:      tpl.CastTime,
		Range:         tpl.Range,
		AreaRadius:    tpl.AreaRadius,
	}
}
