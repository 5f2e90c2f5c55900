package persist

import (
	"context"
	"time"
)

type SkillRow struct {
	CharacterID int64
	SkillID     int32
	Level       int
	SlotNumber  int
	LastUsed    *time.Time
}

type SkillRepo struct {
	db *DB
}

func NewSkillRepo(db *DB) *SkillRepo {
	return &SkillRepo{db: db}
}

// Load returns all learned skills of a character.
func (r *SkillRepo) Load(ctx context.Context, characterID int64) ([]*SkillRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT skill_id, level, slot_number, last_used
		 FROM character_skills WHERE character_id = $1 ORDER BY skill_id`,
		characterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*SkillRow
	for rows.Next() {
		s := &SkillRow{CharacterID: characterID}
		if err := rows.Scan(&s.SkillID, &s.Level, &s.SlotNumber, &s.LastUsed); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Save upserts every learned skill by (character_id, skill_id) inside one
// transaction.
func (r *SkillRepo) Save(ctx context.Context, characterID int64, skills []*SkillRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range skills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO character_skills (character_id, skill_id, level, slot_number, last_used)
			 VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (character_id, skill_id)
			 DO UPDATE SET level = $3, slot_number = $4, last_used = $5`,
			characterID, s.SkillID, s.Level, s.SlotNumber, s.LastUsed,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Upsert writes a single learned skill.
func (r *SkillRepo) Upsert(ctx context.Context, s *SkillRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO character_skills (character_id, skill_id, level, slot_number, last_used)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (character_id, skill_id)
		 DO UPDATE SET level = $3, slot_number = $4, last_used = $5`,
		s.CharacterID, s.SkillID, s.Level, s.SlotNumber, s.LastUsed,
	)
	return err
}
