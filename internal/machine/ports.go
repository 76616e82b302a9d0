// Package machine implements the transaction state machine that drives a
// single vending machine: the transition-table controller, the session
// timeout guard, and the remote-payment status poller.
package machine

import (
	"context"

	"github.com/vendo-machines/vendo/internal/domain"
)

// StockService is the catalog/stock collaborator.
type StockService interface {
	// CheckStock returns the remaining stock for a drink. Zero or negative
	// means sold out.
	CheckStock(ctx context.Context, drinkID string) (int, error)
	// DecrementStock removes one unit and returns the new count. It fails
	// when the slot is already empty.
	DecrementStock(ctx context.Context, drinkID string) (int, error)
}

// PaymentService is the remote (QR) payment collaborator. The remote payer
// confirms or cancels out-of-band; the controller only ever observes the
// outcome through Status.
type PaymentService interface {
	// Create opens a payment for a drink. Fails when the drink is sold out.
	Create(ctx context.Context, drinkID string) (domain.PaymentIntent, error)
	// Status reports the payment's current status. Idempotent and
	// side-effect-free.
	Status(ctx context.Context, handle string) (domain.PaymentStatus, error)
	// Cancel voids a still-pending payment. Fails once the payment is paid.
	Cancel(ctx context.Context, handle string) error
}

// Presenter is the presentation boundary. Every call is fire-and-forget:
// the controller never consumes a return value, and implementations must
// not call back into the controller synchronously.
type Presenter interface {
	// Render is invoked after every accepted transition.
	Render(Snapshot)
	// PayoutChange announces a change payout about to be dispensed.
	PayoutChange(plan domain.ChangePlan)
	// PayoutRefund announces a full refund of the given amount in cents.
	PayoutRefund(amountCents int)
}

// NopPresenter is a Presenter that does nothing. Useful headless and in tests.
type NopPresenter struct{}

func (NopPresenter) Render(Snapshot)                  {}
func (NopPresenter) PayoutChange(domain.ChangePlan)   {}
func (NopPresenter) PayoutRefund(int)                 {}
