package persist

import (
	"context"
	"fmt"
	"time"
)

type CombatLogRepo struct {
	db *DB
}

func NewCombatLogRepo(db *DB) *CombatLogRepo {
	return &CombatLogRepo{db: db}
}

// Log inserts one combat event row.
func (r *CombatLogRepo) Log(ctx context.Context, attacker, defender string, skillID int32, damage int, critical bool) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO combat_log (attacker, defender, skill_id, damage, critical)
		 VALUES ($1,$2,$3,$4,$5)`,
		attacker, defender, skillID, damage, critical,
	)
	return err
}

// CleanOld deletes combat rows older than the retention window and returns
// the number of rows removed.
func (r *CombatLogRepo) CleanOld(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		return 0, fmt.Errorf("retention days must be positive")
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	tag, err := r.db.Pool.Exec(ctx,
		`DELETE FROM combat_log WHERE at < $1`, cutoff,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
