package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runekeep/server/internal/world"
)

func TestSkillRowsCarryCooldowns(t *testing.T) {
	used := time.Now().Add(-2 * time.Second).Truncate(time.Microsecond)
	p := &world.Player{
		CharID: 7,
		Skills: map[int32]*world.LearnedSkill{
			1: {SkillID: 1, Level: 2, SlotNumber: 3, LastUsed: used},
			3: {SkillID: 3, Level: 1},
		},
	}

	rows := SkillRows(p)
	require.Len(t, rows, 2)

	byID := make(map[int32]*struct {
		level, slot int
		lastUsed    *time.Time
	}, len(rows))
	for _, r := range rows {
		assert.Equal(t, int64(7), r.CharacterID)
		byID[r.SkillID] = &struct {
			level, slot int
			lastUsed    *time.Time
		}{r.Level, r.SlotNumber, r.LastUsed}
	}

	require.NotNil(t, byID[1])
	assert.Equal(t, 2, byID[1].level)
	assert.Equal(t, 3, byID[1].slot)
	require.NotNil(t, byID[1].lastUsed)
	assert.True(t, byID[1].lastUsed.Equal(used))

	// 從未使用過的技能不寫冷卻時間
	require.NotNil(t, byID[3])
	assert.Nil(t, byID[3].lastUsed)

	// 重新上線後冷卻狀態原樣還原
	restored := SkillsFromRows(rows)
	require.NotNil(t, restored[1])
	assert.True(t, restored[1].LastUsed.Equal(used))
	assert.Equal(t, 3, restored[1].SlotNumber)
	require.NotNil(t, restored[3])
	assert.True(t, restored[3].LastUsed.IsZero())
}
