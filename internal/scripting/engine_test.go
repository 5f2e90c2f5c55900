package scripting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine("../../scripts", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestExpCurve(t *testing.T) {
	e := newTestEngine(t)

	assert.EqualValues(t, 0, e.ExpForLevel(1))
	// 曲線嚴格遞增
	prev := e.ExpForLevel(1)
	for lvl := 2; lvl <= 30; lvl++ {
		cur := e.ExpForLevel(lvl)
		assert.Greater(t, cur, prev, "level %d", lvl)
		prev = cur
	}
}

func TestLevelFromExpRoundTrip(t *testing.T) {
	e := newTestEngine(t)

	for _, lvl := range []int{1, 2, 5, 10, 25} {
		exp := e.ExpForLevel(lvl)
		assert.Equal(t, lvl, e.LevelFromExp(exp), "exact threshold of level %d", lvl)
		if lvl > 1 {
			assert.Equal(t, lvl-1, e.LevelFromExp(exp-1), "one exp short of level %d", lvl)
		}
	}
}

func TestScaleMonsterExp(t *testing.T) {
	e := newTestEngine(t)

	// 同級：原額
	assert.Equal(t, 100, e.ScaleMonsterExp(10, 10, 100))
	// 碾壓低等怪：大幅縮水但至少 1
	assert.Equal(t, 10, e.ScaleMonsterExp(20, 10, 100))
	assert.Equal(t, 1, e.ScaleMonsterExp(20, 10, 3))
	// 越級挑戰：最多 +50%
	assert.Equal(t, 150, e.ScaleMonsterExp(10, 30, 100))
}

func TestMissingFunctionReturnsZero(t *testing.T) {
	e := newTestEngine(t)
	assert.Equal(t, 0, e.callIntFunc("noSuchFunction", 1))
}
