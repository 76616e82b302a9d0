package machine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/neilotoole/slogt"

	"github.com/vendo-machines/vendo/internal/domain"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type fakeStock struct {
	mu         sync.Mutex
	counts     map[string]int
	checkErr   error
	decErr     error
	decrements int
}

func newFakeStock(counts map[string]int) *fakeStock {
	return &fakeStock{counts: counts}
}

func (f *fakeStock) CheckStock(_ context.Context, drinkID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.checkErr != nil {
		return 0, f.checkErr
	}
	return f.counts[drinkID], nil
}

func (f *fakeStock) DecrementStock(_ context.Context, drinkID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.decErr != nil {
		return 0, f.decErr
	}
	if f.counts[drinkID] <= 0 {
		return 0, domain.ErrSoldOut
	}
	f.counts[drinkID]--
	f.decrements++
	return f.counts[drinkID], nil
}

func (f *fakeStock) decrementCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.decrements
}

type fakePayments struct {
	mu        sync.Mutex
	createErr error
	status    domain.PaymentStatus
	statusErr int // probe errors to emit before answering
	created   int
	canceled  []string
}

func newFakePayments() *fakePayments {
	return &fakePayments{status: domain.PaymentPending}
}

func (f *fakePayments) Create(_ context.Context, drinkID string) (domain.PaymentIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.PaymentIntent{}, f.createErr
	}
	f.created++
	return domain.PaymentIntent{
		Handle: "p_test",
		PayURL: "http://machine.local/pay/p_test",
		QRPNG:  []byte{0x89, 'P', 'N', 'G'},
	}, nil
}

func (f *fakePayments) Status(_ context.Context, _ string) (domain.PaymentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr > 0 {
		f.statusErr--
		return "", errors.New("probe failed")
	}
	return f.status, nil
}

func (f *fakePayments) Cancel(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, handle)
	return nil
}

func (f *fakePayments) setStatus(s domain.PaymentStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

func (f *fakePayments) canceledHandles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.canceled...)
}

// recPresenter records presenter calls for assertions.
type recPresenter struct {
	mu      sync.Mutex
	changes []domain.ChangePlan
	refunds []int
}

func (r *recPresenter) Render(Snapshot) {}

func (r *recPresenter) PayoutChange(plan domain.ChangePlan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, plan.Clone())
}

func (r *recPresenter) PayoutRefund(amount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refunds = append(r.refunds, amount)
}

func (r *recPresenter) refundAmounts() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.refunds...)
}

func (r *recPresenter) changePlans() []domain.ChangePlan {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ChangePlan(nil), r.changes...)
}

// ─── Construction Helpers ───────────────────────────────────────────────────

var testDrink = domain.Drink{ID: "1.1", Name: "Ramune Original Flavor", Temp: "cold", PriceCents: 200, Stock: 5}

func newTestController(t *testing.T, cfg Config, clk clock.Clock, stock StockService, payments PaymentService, presenter Presenter, float domain.CoinCounts) *Controller {
	t.Helper()
	c := New(cfg, clk, slogt.New(t), stock, payments, presenter, float)
	t.Cleanup(c.Close)
	return c
}

// fastConfig keeps real-clock tests quick: polling and display delays are a
// few milliseconds, and the session timeout is long enough to never fire.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.SessionTimeout = time.Hour
	cfg.PollInterval = 5 * time.Millisecond
	cfg.ConfirmDelay = time.Millisecond
	cfg.DispenseDelay = time.Millisecond
	cfg.SoldOutDelay = time.Millisecond
	cfg.NoChangeDelay = time.Millisecond
	cfg.PayoutDelay = time.Millisecond
	return cfg
}
