package persist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiterLockout(t *testing.T) {
	l := NewLoginLimiter(3, 15*time.Minute)
	now := time.Now()

	assert.False(t, l.Locked("alice", now))

	l.RecordFailure("alice", now)
	l.RecordFailure("alice", now)
	assert.False(t, l.Locked("alice", now))

	l.RecordFailure("alice", now)
	assert.True(t, l.Locked("alice", now))

	// 鎖定只影響該帳號
	assert.False(t, l.Locked("bob", now))

	// 鎖定期滿自動解鎖並重置計數
	later := now.Add(16 * time.Minute)
	assert.False(t, l.Locked("alice", later))
	l.RecordFailure("alice", later)
	assert.False(t, l.Locked("alice", later))
}

func TestLoginLimiterSuccessResets(t *testing.T) {
	l := NewLoginLimiter(3, 15*time.Minute)
	now := time.Now()

	l.RecordFailure("alice", now)
	l.RecordFailure("alice", now)
	l.RecordSuccess("alice")

	l.RecordFailure("alice", now)
	l.RecordFailure("alice", now)
	assert.False(t, l.Locked("alice", now))
}
