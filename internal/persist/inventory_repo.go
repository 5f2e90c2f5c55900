package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type InventoryRow struct {
	CharacterID int64
	MaxSlots    int
	Gold        int64
	Items       []*ItemRow
}

type ItemRow struct {
	InstanceID  int64
	CharacterID int64
	TemplateID  int32
	Quantity    int
	Slot        int
	Equipped    bool
	EquipSlot   *string // equipment-slot key when this item fills a slot reference
}

type InventoryRepo struct {
	db *DB
}

func NewInventoryRepo(db *DB) *InventoryRepo {
	return &InventoryRepo{db: db}
}

// Load fetches the inventory row with all item instances, or nil when the
// character has no inventory row.
func (r *InventoryRepo) Load(ctx context.Context, characterID int64) (*InventoryRow, error) {
	inv := &InventoryRow{CharacterID: characterID}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT max_slots, gold FROM inventories WHERE character_id = $1`,
		characterID,
	).Scan(&inv.MaxSlots, &inv.Gold)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT instance_id, template_id, quantity, slot, equipped, equip_slot
		 FROM item_instances WHERE character_id = $1 ORDER BY slot, instance_id`,
		characterID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		it := &ItemRow{CharacterID: characterID}
		if err := rows.Scan(&it.InstanceID, &it.TemplateID, &it.Quantity, &it.Slot, &it.Equipped, &it.EquipSlot); err != nil {
			return nil, err
		}
		inv.Items = append(inv.Items, it)
	}
	return inv, rows.Err()
}

// Save persists the inventory transactionally: gold and slots update, then
// a delete-and-reinsert of every item instance so the stored set always
// matches memory exactly (including equipment-slot references).
func (r *InventoryRepo) Save(ctx context.Context, inv *InventoryRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE inventories SET max_slots = $2, gold = $3 WHERE character_id = $1`,
		inv.CharacterID, inv.MaxSlots, inv.Gold,
	); err != nil {
		return fmt.Errorf("update inventory: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM item_instances WHERE character_id = $1`, inv.CharacterID,
	); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}

	for _, it := range inv.Items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO item_instances
			   (instance_id, character_id, template_id, quantity, slot, equipped, equip_slot)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			it.InstanceID, inv.CharacterID, it.TemplateID, it.Quantity, it.Slot, it.Equipped, it.EquipSlot,
		); err != nil {
			return fmt.Errorf("insert item %d: %w", it.InstanceID, err)
		}
	}

	return tx.Commit(ctx)
}
