package game

import (
	"context"

	"github.com/runekeep/server/internal/persist"
)

// Notifier fans events out to connected sessions. Implemented by
// gateway.Hub; narrowed to an interface so engine tests can capture
// broadcasts.
type Notifier interface {
	Broadcast(v any)
	BroadcastExcept(exclude uint64, v any)
}

// InventoryStore persists an inventory snapshot. Implemented by
// persist.InventoryRepo.
type InventoryStore interface {
	Save(ctx context.Context, row *persist.InventoryRow) error
}

// CharacterStore persists a character snapshot. Implemented by
// persist.CharacterRepo.
type CharacterStore interface {
	Update(ctx context.Context, row *persist.CharacterRow) error
}

// AsyncSaver hands persistence snapshots to the background save workers.
// Tick-path mutations (combat, loot, auto-save) go through here so the
// tick loop never blocks on the database; handler-path mutations persist
// synchronously instead.
type AsyncSaver interface {
	SaveCharacterAsync(row *persist.CharacterRow)
	SaveInventoryAsync(row *persist.InventoryRow)
	SaveMonsterAsync(row *persist.MonsterRow)
}
