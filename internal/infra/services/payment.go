package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/vendo-machines/vendo/internal/domain"
	"github.com/vendo-machines/vendo/internal/infra/sqlite"
)

const qrSizePx = 256

// Payments implements the machine's payment port and the out-of-band
// operations the remote payer's phone page drives (confirm/cancel). The
// controller never calls Confirm: it only observes outcomes via Status.
type Payments struct {
	db      *sqlite.DB
	log     *slog.Logger
	baseURL string
}

// NewPayments creates the payment service. baseURL is the externally
// reachable prefix for pay pages, e.g. "http://localhost:3000".
func NewPayments(db *sqlite.DB, log *slog.Logger, baseURL string) *Payments {
	return &Payments{db: db, log: log, baseURL: baseURL}
}

// Create opens a pending payment for a drink. Fails when the drink is
// unknown or sold out.
func (p *Payments) Create(_ context.Context, drinkID string) (domain.PaymentIntent, error) {
	drink, err := p.db.GetDrink(drinkID)
	if err != nil {
		return domain.PaymentIntent{}, err
	}
	if drink.SoldOut() {
		return domain.PaymentIntent{}, domain.ErrSoldOut
	}

	handle := "p_" + uuid.NewString()
	if err := p.db.InsertPayment(handle, drinkID, time.Now()); err != nil {
		return domain.PaymentIntent{}, fmt.Errorf("insert payment: %w", err)
	}

	payURL := p.baseURL + "/pay/" + handle
	png, err := qrcode.Encode(payURL, qrcode.Medium, qrSizePx)
	if err != nil {
		// The payment stands even if the QR image fails; the URL still works.
		p.log.Warn("qr encode failed", "payment", handle, "error", err)
	}

	p.log.Info("payment created", "payment", handle, "drink", drinkID, "pay_url", payURL)
	return domain.PaymentIntent{Handle: handle, PayURL: payURL, QRPNG: png}, nil
}

// Status reports the payment's current status. Side-effect-free.
func (p *Payments) Status(_ context.Context, handle string) (domain.PaymentStatus, error) {
	payment, err := p.db.GetPayment(handle)
	if err != nil {
		return "", err
	}
	return payment.Status, nil
}

// Get returns the full payment record.
func (p *Payments) Get(handle string) (domain.Payment, error) {
	return p.db.GetPayment(handle)
}

// Confirm marks a pending payment paid and decrements the drink's stock,
// mirroring what a payment network callback would do. Idempotent: a second
// confirm reports ErrAlreadyPaid without touching stock again. Refuses when
// the drink sold out between creation and confirmation.
func (p *Payments) Confirm(_ context.Context, handle string) error {
	payment, err := p.db.GetPayment(handle)
	if err != nil {
		return err
	}
	if payment.Status == domain.PaymentPaid {
		return domain.ErrAlreadyPaid
	}

	stock, err := p.db.GetStock(payment.DrinkID)
	if err != nil {
		return err
	}
	if stock <= 0 {
		return domain.ErrSoldOut
	}

	if err := p.db.MarkPaid(handle, time.Now()); err != nil {
		return err
	}
	if _, err := p.db.DecrementStock(payment.DrinkID); err != nil {
		return fmt.Errorf("decrement stock after confirm: %w", err)
	}
	p.log.Info("payment confirmed", "payment", handle, "drink", payment.DrinkID)
	return nil
}

// Cancel voids a still-pending payment. Paid payments refuse; canceling an
// already-canceled payment succeeds quietly.
func (p *Payments) Cancel(_ context.Context, handle string) error {
	payment, err := p.db.GetPayment(handle)
	if err != nil {
		return err
	}
	switch payment.Status {
	case domain.PaymentPaid:
		return domain.ErrAlreadyPaid
	case domain.PaymentCanceled:
		return nil
	}
	if err := p.db.MarkCanceled(handle, time.Now()); err != nil {
		return err
	}
	p.log.Info("payment canceled", "payment", handle)
	return nil
}
