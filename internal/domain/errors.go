package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Catalog errors
	ErrDrinkNotFound = errors.New("drink not found")
	ErrSoldOut       = errors.New("sold out")

	// Payment errors
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAlreadyPaid     = errors.New("payment already completed")

	// Machine errors
	ErrRejectedSymbol    = errors.New("symbol not accepted in current state")
	ErrBadDenomination   = errors.New("unrecognized coin denomination")
	ErrTransactionActive = errors.New("another transaction is in progress")
)
