package persist

import (
	"context"
	"time"
)

type MonsterRow struct {
	ID          int64
	TemplateID  int32
	Health      int
	X, Y, Z     float64
	Alive       bool
	LastRespawn time.Time
}

type MonsterRepo struct {
	db *DB
}

func NewMonsterRepo(db *DB) *MonsterRepo {
	return &MonsterRepo{db: db}
}

// LoadAll returns every persisted monster instance ordered by id.
func (r *MonsterRepo) LoadAll(ctx context.Context) ([]*MonsterRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, template_id, health, x, y, z, alive, last_respawn
		 FROM monster_instances ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*MonsterRow
	for rows.Next() {
		m := &MonsterRow{}
		if err := rows.Scan(&m.ID, &m.TemplateID, &m.Health, &m.X, &m.Y, &m.Z, &m.Alive, &m.LastRespawn); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Update persists one monster instance's runtime state.
func (r *MonsterRepo) Update(ctx context.Context, m *MonsterRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE monster_instances
		 SET health = $2, x = $3, y = $4, z = $5, alive = $6, last_respawn = $7
		 WHERE id = $1`,
		m.ID, m.Health, m.X, m.Y, m.Z, m.Alive, m.LastRespawn,
	)
	return err
}

// Seed inserts a monster instance if it does not yet exist. Used at boot to
// materialize spawns from the catalog on a fresh database.
func (r *MonsterRepo) Seed(ctx context.Context, m *MonsterRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO monster_instances (id, template_id, health, x, y, z, alive, last_respawn)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO NOTHING`,
		m.ID, m.TemplateID, m.Health, m.X, m.Y, m.Z, m.Alive, m.LastRespawn,
	)
	return err
}
