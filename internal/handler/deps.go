// Package handler implements the per-message handlers behind the session
// state machine: auth, character select, and the in-world gameplay
// messages.
package handler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/runekeep/server/internal/catalog"
	"github.com/runekeep/server/internal/config"
	"github.com/runekeep/server/internal/game"
	"github.com/runekeep/server/internal/gateway"
	"github.com/runekeep/server/internal/persist"
	"github.com/runekeep/server/internal/scripting"
	"github.com/runekeep/server/internal/world"
)

// Deps holds shared dependencies injected into all message handlers.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	World   *world.State
	Hub     *gateway.Hub
	Catalog *catalog.Catalog
	Lua     *scripting.Engine

	Accounts    *persist.AccountRepo
	Chars       *persist.CharacterRepo
	Inventories *persist.InventoryRepo
	Skills      *persist.SkillRepo
	IDAlloc     *persist.ItemIDAllocator

	SkillEng  *game.SkillEngine
	Inventory *game.InventoryEngine
	Guard     *game.MovementGuard

	// Degraded reports whether the store was unreachable at boot; when
	// true login and register are refused while catalog-only traffic
	// still works.
	Degraded bool
}

// opCtx bounds one handler's persistence work.
func opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
