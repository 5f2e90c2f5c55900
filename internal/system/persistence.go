package system

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/persist"
	"github.com/runekeep/server/internal/world"
)

// PersistenceSystem periodically auto-saves dirty characters and monster
// instances on a small worker pool, so the tick never blocks on the
// database. It doubles as the async save sink for the tick-path engines
// (loot, combat) and the combat-log writer. Phase 5 (Persist).
type PersistenceSystem struct {
	world       *world.State
	chars       *persist.CharacterRepo
	inventories *persist.InventoryRepo
	skills      *persist.SkillRepo
	monsters    *persist.MonsterRepo
	combatLog   *persist.CombatLogRepo
	log         *zap.Logger

	jobs      chan func(ctx context.Context)
	wg        sync.WaitGroup
	tickCount int
	interval  int // auto-save every N ticks
}

const (
	persistWorkers  = 2
	persistQueueCap = 256
	persistTimeout  = 5 * time.Second
)

func NewPersistenceSystem(ws *world.State, chars *persist.CharacterRepo, inventories *persist.InventoryRepo,
	skills *persist.SkillRepo, monsters *persist.MonsterRepo, combatLog *persist.CombatLogRepo,
	intervalTicks int, log *zap.Logger) *PersistenceSystem {
	s := &PersistenceSystem{
		world:       ws,
		chars:       chars,
		inventories: inventories,
		skills:      skills,
		monsters:    monsters,
		combatLog:   combatLog,
		log:         log,
		jobs:        make(chan func(ctx context.Context), persistQueueCap),
		interval:    intervalTicks,
	}
	for i := 0; i < persistWorkers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	return s
}

func (s *PersistenceSystem) worker() {
	defer s.wg.Done()
	for job := range s.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		job(ctx)
		cancel()
	}
}

// enqueue hands a job to the pool. 佇列滿時丟棄並記錄，下一輪自動保存
// 會再把髒資料補上。
func (s *PersistenceSystem) enqueue(job func(ctx context.Context)) {
	select {
	case s.jobs <- job:
	default:
		s.log.Warn("持久化佇列已滿，任務丟棄")
	}
}

// SaveCharacterAsync implements game.AsyncSaver.
func (s *PersistenceSystem) SaveCharacterAsync(row *persist.CharacterRow) {
	s.enqueue(func(ctx context.Context) {
		if err := s.chars.Update(ctx, row); err != nil {
			s.log.Error("自動保存角色失敗", zap.Error(err), zap.Int64("charID", row.ID))
		}
	})
}

// SaveInventoryAsync implements game.AsyncSaver.
func (s *PersistenceSystem) SaveInventoryAsync(row *persist.InventoryRow) {
	s.enqueue(func(ctx context.Context) {
		if err := s.inventories.Save(ctx, row); err != nil {
			s.log.Error("自動保存背包失敗", zap.Error(err), zap.Int64("charID", row.CharacterID))
		}
	})
}

// SaveMonsterAsync implements game.AsyncSaver.
func (s *PersistenceSystem) SaveMonsterAsync(row *persist.MonsterRow) {
	s.enqueue(func(ctx context.Context) {
		if err := s.monsters.Update(ctx, row); err != nil {
			s.log.Error("自動保存怪物失敗", zap.Error(err), zap.Int64("monsterID", row.ID))
		}
	})
}

// SaveSkillsAsync queues a character's learned-skill rows, cooldown
// timestamps included.
func (s *PersistenceSystem) SaveSkillsAsync(charID int64, rows []*persist.SkillRow) {
	s.enqueue(func(ctx context.Context) {
		if err := s.skills.Save(ctx, charID, rows); err != nil {
			s.log.Error("自動保存技能失敗", zap.Error(err), zap.Int64("charID", charID))
		}
	})
}

// LogCombatAsync implements game.CombatLogger.
func (s *PersistenceSystem) LogCombatAsync(attacker, defender string, skillID int32, damage int, critical bool) {
	s.enqueue(func(ctx context.Context) {
		if err := s.combatLog.Log(ctx, attacker, defender, skillID, damage, critical); err != nil {
			s.log.Error("寫入戰鬥紀錄失敗", zap.Error(err))
		}
	})
}

func (s *PersistenceSystem) Phase() Phase { return PhasePersist }

func (s *PersistenceSystem) Update(_ time.Time, _ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.saveDirty()
}

// saveDirty snapshots dirty entities under the world lock (already held
// by the tick) and queues the writes.
func (s *PersistenceSystem) saveDirty() {
	saved := 0
	for _, p := range s.world.PlayersInJoinOrder() {
		if !p.Dirty {
			continue
		}
		p.Dirty = false
		s.SaveCharacterAsync(game.CharacterRow(p))
		s.SaveInventoryAsync(game.InventoryRow(p.Inv))
		s.SaveSkillsAsync(p.CharID, game.SkillRows(p))
		saved++
	}
	s.world.MonstersInOrder(func(m *world.Monster) {
		if !m.Dirty {
			return
		}
		m.Dirty = false
		s.SaveMonsterAsync(game.MonsterRow(m))
	})
	if saved > 0 {
		s.log.Debug("自動保存完成", zap.Int("players", saved))
	}
}

// SaveAllSync persists every active character and all monsters on the
// calling goroutine. Used for graceful shutdown; the caller holds the
// world lock.
func (s *PersistenceSystem) SaveAllSync(ctx context.Context) {
	for _, p := range s.world.PlayersInJoinOrder() {
		if err := s.chars.Update(ctx, game.CharacterRow(p)); err != nil {
			s.log.Error("關機保存角色失敗", zap.Error(err), zap.String("player", p.Name))
		}
		if err := s.inventories.Save(ctx, game.InventoryRow(p.Inv)); err != nil {
			s.log.Error("關機保存背包失敗", zap.Error(err), zap.String("player", p.Name))
		}
		if err := s.skills.Save(ctx, p.CharID, game.SkillRows(p)); err != nil {
			s.log.Error("關機保存技能失敗", zap.Error(err), zap.String("player", p.Name))
		}
		p.Dirty = false
	}
	s.world.MonstersInOrder(func(m *world.Monster) {
		if err := s.monsters.Update(ctx, game.MonsterRow(m)); err != nil {
			s.log.Error("關機保存怪物失敗", zap.Error(err), zap.Int64("monsterID", m.ID))
		}
		m.Dirty = false
	})
}

// Close drains the worker pool.
func (s *PersistenceSystem) Close() {
	close(s.jobs)
	s.wg.Wait()
}
