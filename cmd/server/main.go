package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/config"
	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/gateway"
	"github.com/runekeep/server/internal/handler"
	"github.com/runekeep/server/internal/persist"
	"github.com/runekeep/server/internal/protocol"
	"github.com/runekeep/server/internal/scripting"
	"github.com/runekeep/server/internal/system"
	"github.com/runekeep/server/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(serverName string, serverID int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m            Runekeep  v0.1.0               \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m       小型 MMO · Go 遊戲伺服器            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1m伺服器:\033[0m %s \033[90m(編號: %d)\033[0m\n\n", serverName, serverID)
}

func printSection(title string) {
	// Use rune count for CJK width calculation (each CJK char = 2 columns)
	displayWidth := 0
	for _, r := range title {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	lineLen := 46 - displayWidth - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	displayWidth := 0
	for _, r := range label {
		if r > 0x7F {
			displayWidth += 2
		} else {
			displayWidth++
		}
	}
	dotsLen := 42 - displayWidth - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printWarn(msg string) {
	fmt.Printf("  \033[33m!\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main server logic ─────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("RUNEKEEP_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Server.Name, cfg.Server.ID)

	// 3. Connect to PostgreSQL and run migrations. A dead store degrades
	// to catalog-only mode: the server boots but refuses login/register.
	printSection("資料庫")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	degraded := false
	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		log.Error("資料庫連線失敗，進入唯讀模式", zap.Error(err))
		printWarn("資料庫無法連線，登入/註冊停用")
		degraded = true
	} else if ok, status := db.HealthCheck(ctx); !ok {
		log.Error("資料庫健康檢查失敗，進入唯讀模式", zap.String("status", status))
		printWarn("資料庫無法連線，登入/註冊停用")
		db.Close()
		db = nil
		degraded = true
	} else {
		defer db.Close()
		printOK("PostgreSQL 連線成功")

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK("資料庫遷移完成")
	}
	fmt.Println()

	// 4. Load the content catalog and Lua balance scripts
	printSection("資料載入")

	cat, err := catalog.Load(cfg.World.DataDir)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	printStat("怪物模板", cat.Monsters.Count())
	printStat("道具模板", cat.Items.Count())
	printStat("技能", cat.Skills.Count())
	printStat("掉寶表", cat.Loot.Count())
	printStat("職業", cat.Classes.Count())

	lua, err := scripting.NewEngine(cfg.World.ScriptsDir, log)
	if err != nil {
		return fmt.Errorf("lua engine: %w", err)
	}
	defer lua.Close()
	printOK("Lua 腳本載入完成")

	// 5. Repositories and world state
	var (
		limiter     = persist.NewLoginLimiter(cfg.RateLimit.MaxLoginFailures, cfg.RateLimit.LockoutDuration)
		accounts    *persist.AccountRepo
		chars       *persist.CharacterRepo
		inventories *persist.InventoryRepo
		skills      *persist.SkillRepo
		monsters    *persist.MonsterRepo
		combatLog   *persist.CombatLogRepo
		idAlloc     *persist.ItemIDAllocator
	)
	if !degraded {
		accounts = persist.NewAccountRepo(db, limiter, cfg.RateLimit.FailureBackoff)
		chars = persist.NewCharacterRepo(db)
		inventories = persist.NewInventoryRepo(db)
		skills = persist.NewSkillRepo(db)
		monsters = persist.NewMonsterRepo(db)
		combatLog = persist.NewCombatLogRepo(db)
		idAlloc, err = persist.NewItemIDAllocator(ctx, db)
		if err != nil {
			return fmt.Errorf("item id allocator: %w", err)
		}
	}

	worldState := world.NewState()
	if !degraded {
		count, err := spawnMonsters(ctx, worldState, cat, monsters, log)
		if err != nil {
			return fmt.Errorf("spawn monsters: %w", err)
		}
		printStat("怪物生成", count)

		removed, err := combatLog.CleanOld(ctx, cfg.World.CombatLogDays)
		if err != nil {
			log.Warn("清理戰鬥紀錄失敗", zap.Error(err))
		} else if removed > 0 {
			log.Info("清理過期戰鬥紀錄", zap.Int64("rows", removed))
		}
	}
	fmt.Println()

	// 6. Engines, handlers, systems
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	persistSys := system.NewPersistenceSystem(worldState, chars, inventories, skills, monsters, combatLog, cfg.World.SaveTicks, log)
	defer persistSys.Close()

	guard := game.NewMovementGuard(cat.Terrain, cfg.World.MaxMoveSpeed, log)
	lootRes := game.NewLootResolver(worldState, cat, idAlloc, persistSys, rng, cfg.Rates.DropRate, cfg.Rates.GoldRate, log)

	deps := &handler.Deps{
		Config:      cfg,
		Log:         log,
		World:       worldState,
		Catalog:     cat,
		Lua:         lua,
		Accounts:    accounts,
		Chars:       chars,
		Inventories: inventories,
		Skills:      skills,
		IDAlloc:     idAlloc,
		Guard:       guard,
		Degraded:    degraded,
	}
	router := handler.NewRouter(deps)

	hub := gateway.NewHub(gateway.HubConfig{
		BindAddress:  cfg.Network.BindAddress,
		OutQueueSize: cfg.Network.OutQueueSize,
		WriteTimeout: cfg.Network.WriteTimeout,
		ReadTimeout:  cfg.Network.ReadTimeout,
		PingInterval: cfg.Network.PingInterval,
	}, router, log)
	deps.Hub = hub

	combat := game.NewCombatEngine(worldState, cat, lua, hub, lootRes, persistSys, rng, cfg.Rates.ExpRate, log)
	deps.SkillEng = game.NewSkillEngine(worldState, cat, combat, hub, skills, chars, log)
	deps.Inventory = game.NewInventoryEngine(cat, inventories, chars, hub, cfg.World.PotionCooldown, log)

	runner := system.NewRunner(log)
	runner.Register(system.NewMovementSystem(worldState, guard))
	runner.Register(system.NewCombatSystem(worldState, combat, deps.SkillEng))
	runner.Register(system.NewMonsterSystem(worldState, combat, cat.Terrain, rng))
	runner.Register(system.NewEffectSystem(worldState, cat, hub, log))
	runner.Register(system.NewBroadcastSystem(worldState, hub, cfg.World.BroadcastTicks))
	runner.Register(persistSys)

	// 7. Serve
	go func() {
		if err := hub.ListenAndServe(); err != nil {
			log.Error("網路伺服器停止", zap.Error(err))
		}
	}()

	printSection("伺服器就緒")
	printReady(fmt.Sprintf("監聽位址 %s", cfg.Network.BindAddress))
	printReady(fmt.Sprintf("遊戲迴圈啟動 (tick: %s)", cfg.World.TickRate))
	fmt.Println()

	// 8. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.World.TickRate)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			worldState.Lock()
			runner.Tick(now, cfg.World.TickRate)
			worldState.Unlock()

		case sig := <-shutdownCh:
			log.Info("收到關閉信號", zap.String("signal", sig.String()))

			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
			hub.Shutdown(shutdownCtx)

			if !degraded {
				worldState.Lock()
				persistSys.SaveAllSync(shutdownCtx)
				worldState.Unlock()
			}
			cancelShutdown()

			log.Info("伺服器已停止")
			return nil
		}
	}
}

// spawnMonsters restores monster instances from the store, seeding any
// catalog template not yet materialized (first boot or new content).
func spawnMonsters(ctx context.Context, ws *world.State, cat *catalog.Catalog, repo *persist.MonsterRepo, log *zap.Logger) (int, error) {
	rows, err := repo.LoadAll(ctx)
	if err != nil {
		return 0, err
	}

	byID := make(map[int64]*persist.MonsterRow, len(rows))
	var maxID int64
	for _, r := range rows {
		byID[r.ID] = r
		if r.ID > maxID {
			maxID = r.ID
		}
	}

	count := 0
	add := func(row *persist.MonsterRow, tpl *catalog.MonsterTemplate) {
		m := &world.Monster{
			ID:          row.ID,
			Template:    tpl,
			Health:      row.Health,
			Pos:         protocol.Position{X: row.X, Y: row.Y, Z: row.Z},
			Alive:       row.Alive,
			LastRespawn: row.LastRespawn,
		}
		if !m.Alive {
			m.State = world.MonsterDead
		}
		ws.AddMonster(m)
		count++
	}

	for _, r := range rows {
		tpl := cat.Monsters.Get(r.TemplateID)
		if tpl == nil {
			log.Warn("怪物實例引用未知模板，略過",
				zap.Int64("id", r.ID),
				zap.Int32("templateID", r.TemplateID),
			)
			continue
		}
		add(r, tpl)
	}

	// 依模板補齊缺少的實例數。
	existing := make(map[int32]int)
	for _, r := range rows {
		existing[r.TemplateID]++
	}
	for _, tpl := range cat.Monsters.All() {
		for existing[tpl.ID] < tpl.SpawnCount {
			maxID++
			x, y, z := cat.Terrain.Clamp(tpl.SpawnX, tpl.SpawnZ)
			row := &persist.MonsterRow{
				ID:          maxID,
				TemplateID:  tpl.ID,
				Health:      tpl.MaxHealth,
				X:           x,
				Y:           y,
				Z:           z,
				Alive:       true,
				LastRespawn: time.Now(),
			}
			if err := repo.Seed(ctx, row); err != nil {
				return count, err
			}
			add(row, tpl)
			existing[tpl.ID]++
		}
	}
	return count, nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
