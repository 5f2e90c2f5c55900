package persist

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

type AccountRow struct {
	ID           int64
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	LastLogin    *time.Time
}

var accountNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// commonPasswords is the deny list applied at registration.
var commonPasswords = map[string]struct{}{
	"password":  {},
	"password1": {},
	"123456":    {},
	"12345678":  {},
	"qwerty1":   {},
	"abc123":    {},
	"letmein1":  {},
	"admin123":  {},
}

// AccountRepo handles account rows and credential checks. The login rate
// limiter is consulted before any database round-trip.
type AccountRepo struct {
	db      *DB
	limiter *LoginLimiter
	backoff time.Duration // minimum delay added to every failed validation
}

func NewAccountRepo(db *DB, limiter *LoginLimiter, backoff time.Duration) *AccountRepo {
	return &AccountRepo{db: db, limiter: limiter, backoff: backoff}
}

// ValidName reports whether a username satisfies the 3-20 char
// [A-Za-z0-9_] rule.
func ValidName(name string) bool {
	return accountNameRe.MatchString(name)
}

// CheckPasswordPolicy returns a reason string for a rejected password, or
// "" when the password is acceptable: min length 6, at least one letter
// and one digit, not on the common-password deny list.
func CheckPasswordPolicy(pass string) string {
	if len(pass) < 6 {
		return "password must be at least 6 characters"
	}
	hasLetter, hasDigit := false, false
	for _, r := range pass {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return "password must contain at least one letter and one digit"
	}
	if _, banned := commonPasswords[pass]; banned {
		return "password is too common"
	}
	return ""
}

// Create registers a new account. Returns false with a reason when the
// name or password is rejected or the name is taken.
func (r *AccountRepo) Create(ctx context.Context, name, rawPassword string) (bool, string, error) {
	if !ValidName(name) {
		return false, "username must be 3-20 characters of letters, digits or underscore", nil
	}
	if reason := CheckPasswordPolicy(rawPassword); reason != "" {
		return false, reason, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), bcrypt.DefaultCost)
	if err != nil {
		return false, "", err
	}
	tag, err := r.db.Pool.Exec(ctx,
		`INSERT INTO accounts (name, password_hash)
		 VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`,
		name, string(hash),
	)
	if err != nil {
		return false, "", err
	}
	if tag.RowsAffected() == 0 {
		return false, "username already taken", nil
	}
	return true, "", nil
}

// ValidateLogin checks credentials and returns the account ID, or 0 when
// the login is rejected. Lockout short-circuits before the store is
// consulted; every failure sleeps the configured back-off so credential
// probing stays slow. bcrypt's CompareHashAndPassword is constant-time.
func (r *AccountRepo) ValidateLogin(ctx context.Context, name, rawPassword string) (int64, error) {
	now := time.Now()
	if r.limiter != nil && r.limiter.Locked(name, now) {
		return 0, nil
	}

	row := struct {
		id   int64
		hash string
	}{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, password_hash FROM accounts WHERE name = $1`, name,
	).Scan(&row.id, &row.hash)
	if errors.Is(err, pgx.ErrNoRows) {
		r.fail(name, now)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	if bcrypt.CompareHashAndPassword([]byte(row.hash), []byte(rawPassword)) != nil {
		r.fail(name, now)
		return 0, nil
	}

	if r.limiter != nil {
		r.limiter.RecordSuccess(name)
	}
	if _, err := r.db.Pool.Exec(ctx,
		`UPDATE accounts SET last_login = NOW() WHERE id = $1`, row.id,
	); err != nil {
		return 0, err
	}
	return row.id, nil
}

func (r *AccountRepo) fail(name string, now time.Time) {
	if r.limiter != nil {
		r.limiter.RecordFailure(name, now)
	}
	if r.backoff > 0 {
		time.Sleep(r.backoff)
	}
}

// Load fetches an account by name, or nil when it does not exist.
func (r *AccountRepo) Load(ctx context.Context, name string) (*AccountRow, error) {
	row := &AccountRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, password_hash, created_at, last_login
		 FROM accounts WHERE name = $1`, name,
	).Scan(&row.ID, &row.Name, &row.PasswordHash, &row.CreatedAt, &row.LastLogin)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
