package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeWatermark records every persisted upper bound in place of the
// counters row.
type fakeWatermark struct {
	mu      sync.Mutex
	uppers  []int64
	failing bool
}

func (f *fakeWatermark) persist(_ context.Context, upper int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("store down")
	}
	f.uppers = append(f.uppers, upper)
	return nil
}

func (f *fakeWatermark) highest() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var max int64
	for _, u := range f.uppers {
		if u > max {
			max = u
		}
	}
	return max
}

func newTestAllocator(fw *fakeWatermark) *ItemIDAllocator {
	return &ItemIDAllocator{persist: fw.persist}
}

func TestAllocatorMonotonicAndBlockReserved(t *testing.T) {
	fw := &fakeWatermark{}
	a := newTestAllocator(fw)
	ctx := context.Background()

	var prev int64 = -1
	for i := 0; i < 10; i++ {
		id, err := a.Next(ctx)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}

	// 首次就預約整個區塊，後續發號不再碰儲存層
	fw.mu.Lock()
	writes := len(fw.uppers)
	fw.mu.Unlock()
	assert.Equal(t, 1, writes)
	assert.EqualValues(t, itemIDBlock, fw.highest())

	// 發出去的每個 ID 都在持久化的水位之下
	assert.Less(t, prev, fw.highest())
}

func TestAllocatorBatchContiguous(t *testing.T) {
	fw := &fakeWatermark{}
	a := newTestAllocator(fw)
	ctx := context.Background()

	ids, err := a.NextBatch(ctx, 5)
	require.NoError(t, err)
	require.Len(t, ids, 5)
	for i := 1; i < len(ids); i++ {
		assert.Equal(t, ids[i-1]+1, ids[i])
	}

	none, err := a.NextBatch(ctx, 0)
	require.NoError(t, err)
	assert.Nil(t, none)

	// 超過剩餘預約量的批次也一次拿齊
	big, err := a.NextBatch(ctx, itemIDBlock*2)
	require.NoError(t, err)
	require.Len(t, big, itemIDBlock*2)
	assert.Greater(t, big[0], ids[4])
	assert.Less(t, big[len(big)-1], fw.highest())
}

func TestAllocatorRefillsInBackground(t *testing.T) {
	fw := &fakeWatermark{}
	a := newTestAllocator(fw)
	ctx := context.Background()

	// 吃掉預約量直到低水位，背景補充應該把上界推進一個區塊
	for i := 0; i < itemIDBlock-itemIDLowWater+1; i++ {
		_, err := a.Next(ctx)
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return a.reserved == int64(itemIDBlock*2)
	}, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, itemIDBlock*2, fw.highest())
}

func TestAllocatorHoldsIDsWhenPersistFails(t *testing.T) {
	fw := &fakeWatermark{failing: true}
	a := newTestAllocator(fw)
	ctx := context.Background()

	_, err := a.Next(ctx)
	require.Error(t, err)

	// 儲存層恢復後從頭發號，沒有任何 ID 在失敗期間流出
	fw.mu.Lock()
	fw.failing = false
	fw.mu.Unlock()
	id, err := a.Next(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, id)
}
