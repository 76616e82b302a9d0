package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vendo-machines/vendo/internal/domain"
)

// ─── Payment Operations ─────────────────────────────────────────────────────

// InsertPayment records a freshly created pending payment.
func (d *DB) InsertPayment(id, drinkID string, createdAt time.Time) error {
	_, err := d.db.Exec(`
		INSERT INTO payments (id, drink_id, status, created_at)
		VALUES (?, ?, ?, ?)
	`, id, drinkID, string(domain.PaymentPending), createdAt.UTC().Format(time.RFC3339))
	return err
}

// GetPayment returns one payment record.
func (d *DB) GetPayment(id string) (domain.Payment, error) {
	var (
		p          domain.Payment
		status     string
		createdAt  string
		paidAt     sql.NullString
		canceledAt sql.NullString
	)
	err := d.db.QueryRow(`
		SELECT id, drink_id, status, created_at, paid_at, canceled_at
		FROM payments WHERE id = ?
	`, id).Scan(&p.ID, &p.DrinkID, &status, &createdAt, &paidAt, &canceledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Payment{}, domain.ErrPaymentNotFound
	}
	if err != nil {
		return domain.Payment{}, err
	}

	p.Status = domain.PaymentStatus(status)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if paidAt.Valid {
		t, _ := time.Parse(time.RFC3339, paidAt.String)
		p.PaidAt = &t
	}
	if canceledAt.Valid {
		t, _ := time.Parse(time.RFC3339, canceledAt.String)
		p.CanceledAt = &t
	}
	return p, nil
}

// MarkPaid flips a pending payment to paid. Returns ErrAlreadyPaid when the
// payment is already paid, ErrPaymentNotFound when it does not exist, and a
// plain error when it is in another terminal state.
func (d *DB) MarkPaid(id string, at time.Time) error {
	return d.markTerminal(id, domain.PaymentPaid, "paid_at", at)
}

// MarkCanceled flips a pending payment to canceled.
func (d *DB) MarkCanceled(id string, at time.Time) error {
	return d.markTerminal(id, domain.PaymentCanceled, "canceled_at", at)
}

// MarkFailed flips a pending payment to failed.
func (d *DB) MarkFailed(id string, at time.Time) error {
	return d.markTerminal(id, domain.PaymentFailed, "", at)
}

func (d *DB) markTerminal(id string, to domain.PaymentStatus, stampCol string, at time.Time) error {
	p, err := d.GetPayment(id)
	if err != nil {
		return err
	}
	if p.Status == domain.PaymentPaid {
		return domain.ErrAlreadyPaid
	}

	stamp := at.UTC().Format(time.RFC3339)
	var res sql.Result
	switch stampCol {
	case "paid_at":
		res, err = d.db.Exec(`
			UPDATE payments SET status = ?, paid_at = ? WHERE id = ? AND status = 'pending'
		`, string(to), stamp, id)
	case "canceled_at":
		res, err = d.db.Exec(`
			UPDATE payments SET status = ?, canceled_at = ? WHERE id = ? AND status IN ('pending', 'canceled')
		`, string(to), stamp, id)
	default:
		res, err = d.db.Exec(`
			UPDATE payments SET status = ? WHERE id = ? AND status = 'pending'
		`, string(to), id)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 && p.Status != to {
		return fmt.Errorf("payment %s is %s, cannot mark %s", id, p.Status, to)
	}
	return nil
}
