package persist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ItemIDAllocator hands out strictly monotonic item instance IDs. The
// watermark row is advanced in reserved blocks ahead of issue, so
// allocations are pure memory operations and a crash can only skip IDs,
// never repeat them. When the in-memory reservation runs low a refill
// runs in the background; the caller only waits on the database in the
// rare case the whole reservation is exhausted before the refill lands.
type ItemIDAllocator struct {
	mu        sync.Mutex
	persist   func(ctx context.Context, upper int64) error
	log       *zap.Logger
	next      int64
	reserved  int64 // exclusive upper bound backed by the store
	watermark int64 // highest upper bound ever requested from the store
	refilling bool
}

const (
	itemIDCounter  = "next_item_instance_id"
	itemIDBlock    = 64
	itemIDLowWater = 16
	refillTimeout  = 5 * time.Second
)

// NewItemIDAllocator loads the persisted watermark. IDs below the
// watermark may already exist; issue starts at it.
func NewItemIDAllocator(ctx context.Context, db *DB) (*ItemIDAllocator, error) {
	a := &ItemIDAllocator{
		persist: func(ctx context.Context, upper int64) error {
			// GREATEST 防止先發後至的更新把水位拉回去。
			_, err := db.Pool.Exec(ctx,
				`UPDATE counters SET value = GREATEST(value, $2) WHERE name = $1`,
				itemIDCounter, upper,
			)
			return err
		},
		log: db.log,
	}
	err := db.Pool.QueryRow(ctx,
		`SELECT value FROM counters WHERE name = $1`, itemIDCounter,
	).Scan(&a.next)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", itemIDCounter, err)
	}
	a.reserved = a.next
	a.watermark = a.next
	return a, nil
}

// reserveSync extends the store-backed reservation on the calling
// goroutine. 持久化失敗時不讓 ID 流出，避免重啟後重複發號。
// Caller holds a.mu.
func (a *ItemIDAllocator) reserveSync(ctx context.Context, n int64) error {
	target := a.watermark + n
	if err := a.persist(ctx, target); err != nil {
		return fmt.Errorf("persist %s: %w", itemIDCounter, err)
	}
	a.watermark = target
	a.reserved = target
	return nil
}

// maybeRefill starts a background reservation when the remaining range
// runs low. Caller holds a.mu.
func (a *ItemIDAllocator) maybeRefill() {
	if a.refilling || a.reserved-a.next >= itemIDLowWater {
		return
	}
	a.refilling = true
	target := a.watermark + itemIDBlock
	a.watermark = target

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refillTimeout)
		defer cancel()
		err := a.persist(ctx, target)

		a.mu.Lock()
		a.refilling = false
		if err == nil {
			if target > a.reserved {
				a.reserved = target
			}
		} else if a.log != nil {
			// 失敗只損失一段跳號；下次耗盡時走同步補充。
			a.log.Warn("物品 ID 區塊預約失敗", zap.Error(err))
		}
		a.mu.Unlock()
	}()
}

// Next allocates one ID.
func (a *ItemIDAllocator) Next(ctx context.Context) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.next >= a.reserved {
		if err := a.reserveSync(ctx, itemIDBlock); err != nil {
			return 0, err
		}
	}
	id := a.next
	a.next++
	a.maybeRefill()
	return id, nil
}

// NextBatch allocates n consecutive IDs.
func (a *ItemIDAllocator) NextBatch(ctx context.Context, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.next+int64(n) > a.reserved {
		need := a.next + int64(n) - a.reserved
		if need < itemIDBlock {
			need = itemIDBlock
		}
		if err := a.reserveSync(ctx, need); err != nil {
			return nil, err
		}
	}
	first := a.next
	a.next += int64(n)
	a.maybeRefill()

	ids := make([]int64, n)
	for i := range ids {
		ids[i] = first + int64(i)
	}
	return ids, nil
}
