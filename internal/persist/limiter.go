package persist

import (
	"sync"
	"time"
)

// LoginLimiter tracks failed login attempts per account name. After
// maxFailures consecutive failures the account locks out for lockout
// duration. Lockout checks never touch the database.
type LoginLimiter struct {
	mu          sync.Mutex
	maxFailures int
	lockout     time.Duration
	entries     map[string]*limiterEntry
}

type limiterEntry struct {
	failures    int
	lockedUntil time.Time
}

func NewLoginLimiter(maxFailures int, lockout time.Duration) *LoginLimiter {
	return &LoginLimiter{
		maxFailures: maxFailures,
		lockout:     lockout,
		entries:     make(map[string]*limiterEntry),
	}
}

// Locked reports whether the account is currently locked out.
func (l *LoginLimiter) Locked(name string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[name]
	if e == nil {
		return false
	}
	if e.lockedUntil.After(now) {
		return true
	}
	// 鎖定期滿：重置計數，給帳號乾淨的重試機會
	if !e.lockedUntil.IsZero() && e.failures >= l.maxFailures {
		delete(l.entries, name)
	}
	return false
}

// RecordFailure bumps the failure count and starts the lockout window when
// the threshold is reached.
func (l *LoginLimiter) RecordFailure(name string, now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[name]
	if e == nil {
		e = &limiterEntry{}
		l.entries[name] = e
	}
	e.failures++
	if e.failures >= l.maxFailures {
		e.lockedUntil = now.Add(l.lockout)
	}
}

// RecordSuccess clears the failure history for an account.
func (l *LoginLimiter) RecordSuccess(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, name)
}
