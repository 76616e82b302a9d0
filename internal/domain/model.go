// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the architecture — it depends on nothing.
package domain

import "time"

// ─── Catalog Types ──────────────────────────────────────────────────────────

// Drink is one slot of the machine's catalog.
type Drink struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Temp       string `json:"temp"`
	PriceCents int    `json:"price_cents"`
	Stock      int    `json:"stock"`
}

// SoldOut reports whether the slot has no stock left.
func (d Drink) SoldOut() bool { return d.Stock <= 0 }

// Selection is the item chosen for the current transaction. It exists from
// the select symbol in Idle until the machine returns to Idle.
type Selection struct {
	DrinkID    string `json:"drink_id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
}

// ─── Payment Types ──────────────────────────────────────────────────────────

// PaymentStatus is the remote payment lifecycle status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentCanceled PaymentStatus = "canceled"
)

// Terminal reports whether polling may stop: any status after which the
// payment can no longer change.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentPaid || s == PaymentFailed || s == PaymentCanceled
}

// Payment is a persisted remote payment record.
type Payment struct {
	ID         string        `json:"paymentId"`
	DrinkID    string        `json:"drinkId"`
	Status     PaymentStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	PaidAt     *time.Time    `json:"paidAt,omitempty"`
	CanceledAt *time.Time    `json:"canceledAt,omitempty"`
}

// PaymentIntent is what the machine receives when it opens a remote payment:
// an opaque handle plus what the customer needs to pay from their phone.
type PaymentIntent struct {
	Handle string `json:"paymentId"`
	PayURL string `json:"payUrl"`
	QRPNG  []byte `json:"-"`
}

// ─── Transition Log ─────────────────────────────────────────────────────────

// TransitionRecord is one accepted transition, as kept in the controller's
// bounded history and surfaced to the presentation layer.
type TransitionRecord struct {
	ID     string    `json:"id"`
	From   State     `json:"from"`
	Symbol Symbol    `json:"symbol"`
	To     State     `json:"to"`
	At     time.Time `json:"at"`
}
