package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type CharacterRow struct {
	ID           int64
	AccountID    int64
	Name         string
	Race         string
	Class        string
	Level        int
	Exp          int64
	StatusPoints int
	Health       int
	MaxHealth    int
	Mana         int
	MaxMana      int
	Str          int
	Intel        int
	Dex          int
	Vit          int
	X, Y, Z      float64
	IsDead       bool
	CreatedAt    time.Time
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

const characterColumns = `id, account_id, name, race, class, level, exp, status_points,
	health, max_health, mana, max_mana, str, intel, dex, vit, x, y, z, is_dead, created_at`

func scanCharacter(row pgx.Row) (*CharacterRow, error) {
	c := &CharacterRow{}
	err := row.Scan(
		&c.ID, &c.AccountID, &c.Name, &c.Race, &c.Class, &c.Level, &c.Exp, &c.StatusPoints,
		&c.Health, &c.MaxHealth, &c.Mana, &c.MaxMana, &c.Str, &c.Intel, &c.Dex, &c.Vit,
		&c.X, &c.Y, &c.Z, &c.IsDead, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns all characters of an account ordered by creation.
func (r *CharacterRepo) List(ctx context.Context, accountID int64) ([]*CharacterRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE account_id = $1 ORDER BY id`,
		accountID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CharacterRow
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CountByAccount returns the number of characters on an account.
func (r *CharacterRepo) CountByAccount(ctx context.Context, accountID int64) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM characters WHERE account_id = $1`, accountID,
	).Scan(&n)
	return n, err
}

// NameTaken reports whether a character name is already in use.
func (r *CharacterRepo) NameTaken(ctx context.Context, name string) (bool, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM characters WHERE name = $1`, name,
	).Scan(&n)
	return n > 0, err
}

// Create inserts the character row, its inventory row, and the class
// starter items inside one transaction. Any failure rolls everything back.
func (r *CharacterRepo) Create(ctx context.Context, c *CharacterRow, maxSlots int, gold int, starter []*ItemRow) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO characters
		   (account_id, name, race, class, level, exp, status_points,
		    health, max_health, mana, max_mana, str, intel, dex, vit, x, y, z, is_dead)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
		 RETURNING id`,
		c.AccountID, c.Name, c.Race, c.Class, c.Level, c.Exp, c.StatusPoints,
		c.Health, c.MaxHealth, c.Mana, c.MaxMana, c.Str, c.Intel, c.Dex, c.Vit,
		c.X, c.Y, c.Z, c.IsDead,
	).Scan(&c.ID)
	if err != nil {
		return 0, fmt.Errorf("insert character: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO inventories (character_id, max_slots, gold) VALUES ($1, $2, $3)`,
		c.ID, maxSlots, gold,
	); err != nil {
		return 0, fmt.Errorf("insert inventory: %w", err)
	}

	for _, it := range starter {
		if _, err := tx.Exec(ctx,
			`INSERT INTO item_instances
			   (instance_id, character_id, template_id, quantity, slot, equipped, equip_slot)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			it.InstanceID, c.ID, it.TemplateID, it.Quantity, it.Slot, it.Equipped, it.EquipSlot,
		); err != nil {
			return 0, fmt.Errorf("insert starter item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return c.ID, nil
}

// Load fetches one character, or nil when absent.
func (r *CharacterRepo) Load(ctx context.Context, id int64) (*CharacterRow, error) {
	c, err := scanCharacter(r.db.Pool.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update persists the mutable character fields.
func (r *CharacterRepo) Update(ctx context.Context, c *CharacterRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters SET
		   level = $2, exp = $3, status_points = $4,
		   health = $5, max_health = $6, mana = $7, max_mana = $8,
		   str = $9, intel = $10, dex = $11, vit = $12,
		   x = $13, y = $14, z = $15, is_dead = $16
		 WHERE id = $1`,
		c.ID, c.Level, c.Exp, c.StatusPoints,
		c.Health, c.MaxHealth, c.Mana, c.MaxMana,
		c.Str, c.Intel, c.Dex, c.Vit,
		c.X, c.Y, c.Z, c.IsDead,
	)
	return err
}
