package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/vendo-machines/vendo/internal/domain"
)

// ─── Drink Operations ───────────────────────────────────────────────────────

// SeedDrinks inserts catalog entries that are not already present. Existing
// rows keep their stock: seeding is idempotent across restarts.
func (d *DB) SeedDrinks(drinks []domain.Drink) error {
	for _, dr := range drinks {
		_, err := d.db.Exec(`
			INSERT INTO drinks (id, name, temp, price_cents, stock)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING
		`, dr.ID, dr.Name, dr.Temp, dr.PriceCents, dr.Stock)
		if err != nil {
			return fmt.Errorf("seed drink %s: %w", dr.ID, err)
		}
	}
	return nil
}

// ListDrinks returns the full catalog ordered by slot id.
func (d *DB) ListDrinks() ([]domain.Drink, error) {
	rows, err := d.db.Query(`
		SELECT id, name, temp, price_cents, stock FROM drinks ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Drink
	for rows.Next() {
		var dr domain.Drink
		if err := rows.Scan(&dr.ID, &dr.Name, &dr.Temp, &dr.PriceCents, &dr.Stock); err != nil {
			return nil, err
		}
		out = append(out, dr)
	}
	return out, rows.Err()
}

// GetDrink returns one catalog entry.
func (d *DB) GetDrink(id string) (domain.Drink, error) {
	var dr domain.Drink
	err := d.db.QueryRow(`
		SELECT id, name, temp, price_cents, stock FROM drinks WHERE id = ?
	`, id).Scan(&dr.ID, &dr.Name, &dr.Temp, &dr.PriceCents, &dr.Stock)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Drink{}, domain.ErrDrinkNotFound
	}
	return dr, err
}

// GetStock returns the remaining stock for a drink.
func (d *DB) GetStock(id string) (int, error) {
	var stock int
	err := d.db.QueryRow(`SELECT stock FROM drinks WHERE id = ?`, id).Scan(&stock)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrDrinkNotFound
	}
	return stock, err
}

// DecrementStock removes one unit and returns the new count. Fails with
// ErrSoldOut when the slot is already empty, without going negative.
func (d *DB) DecrementStock(id string) (int, error) {
	res, err := d.db.Exec(`
		UPDATE drinks SET stock = stock - 1 WHERE id = ? AND stock > 0
	`, id)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Either unknown drink or empty slot; disambiguate for the caller.
		if _, err := d.GetDrink(id); err != nil {
			return 0, err
		}
		return 0, domain.ErrSoldOut
	}
	return d.GetStock(id)
}
