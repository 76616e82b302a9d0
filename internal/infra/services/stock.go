// Package services adapts the sqlite store to the ports the machine
// consumes: stock checks/decrements and the remote payment lifecycle.
package services

import (
	"context"

	"github.com/vendo-machines/vendo/internal/infra/sqlite"
)

// Stock serves the machine's stock port from the drinks table.
type Stock struct {
	db *sqlite.DB
}

// NewStock creates a stock service over the store.
func NewStock(db *sqlite.DB) *Stock {
	return &Stock{db: db}
}

// CheckStock returns remaining stock for a drink.
func (s *Stock) CheckStock(_ context.Context, drinkID string) (int, error) {
	return s.db.GetStock(drinkID)
}

// DecrementStock removes one unit, failing if the slot is empty.
func (s *Stock) DecrementStock(_ context.Context, drinkID string) (int, error) {
	return s.db.DecrementStock(drinkID)
}
