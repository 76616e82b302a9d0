package machine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/oklog/ulid/v2"

	"github.com/vendo-machines/vendo/internal/domain"
)

// Config controls controller timing. Every delay is driven through the
// injected clock so tests can run on a mock.
type Config struct {
	SessionTimeout time.Duration // customer dwell bound in interactive states
	PollInterval   time.Duration // QR payment status probe interval
	ConfirmDelay   time.Duration // PaymentConfirmed -> beginDispense
	DispenseDelay  time.Duration // Dispensing -> dispenseComplete
	SoldOutDelay   time.Duration // sold-out display before returning to Idle
	NoChangeDelay  time.Duration // no-change display before full refund
	PayoutDelay    time.Duration // payout acknowledgment window
	HistoryLimit   int           // transition log ring size
}

// DefaultConfig returns the timings of the physical machine.
func DefaultConfig() Config {
	return Config{
		SessionTimeout: 30 * time.Second,
		PollInterval:   time.Second,
		ConfirmDelay:   800 * time.Millisecond,
		DispenseDelay:  1500 * time.Millisecond,
		SoldOutDelay:   1500 * time.Millisecond,
		NoChangeDelay:  2 * time.Second,
		PayoutDelay:    time.Second,
		HistoryLimit:   50,
	}
}

// Result reports the outcome of feeding one symbol to the controller. To is
// the state the machine settled in once entry actions ran, which can lie
// beyond the table target of the submitted symbol.
type Result struct {
	Accepted bool          `json:"accepted"`
	From     domain.State  `json:"from"`
	Symbol   domain.Symbol `json:"symbol"`
	To       domain.State  `json:"to"`
}

// Snapshot is a consistent view of the controller for the presentation
// boundary and the HTTP surface.
type Snapshot struct {
	State          domain.State               `json:"state"`
	Selection      *domain.Selection          `json:"selection,omitempty"`
	PaidCents      int                        `json:"paid_cents"`
	RemainingCents int                        `json:"remaining_cents"`
	ChangeCents    int                        `json:"change_cents"`
	Inserted       domain.CoinCounts          `json:"inserted"`
	Inventory      domain.CoinCounts          `json:"inventory"`
	PaymentID      string                     `json:"payment_id,omitempty"`
	PayURL         string                     `json:"pay_url,omitempty"`
	History        []domain.TransitionRecord  `json:"history"`
}

// Controller is the transaction DFA. It owns the machine state, the current
// selection, the two-tier cash ledger, and the active payment handle; it is
// the sole authority allowed to change state.
//
// All mutation is serialized through a single mutex: timers and the poller
// never touch shared state directly, they only synthesize symbols that
// re-enter through Submit. A symbol arriving late from a stale timer finds
// a state whose transition row no longer accepts it and is rejected without
// side effects; that table lookup, not an explicit guard, is what
// neutralizes stale async results.
type Controller struct {
	cfg       Config
	clk       clock.Clock
	log       *slog.Logger
	stock     StockService
	payments  PaymentService
	presenter Presenter

	mu        sync.Mutex
	state     domain.State
	selection *domain.Selection
	ledger    domain.Ledger
	paidCents int
	change    int
	paymentID string
	intent    *domain.PaymentIntent
	poller    *PaymentPoller
	guard     *TimeoutGuard
	pending   []*clock.Timer
	history   []domain.TransitionRecord
}

// New creates a controller in Idle with the given change reserve.
func New(cfg Config, clk clock.Clock, log *slog.Logger, stock StockService, payments PaymentService, presenter Presenter, float domain.CoinCounts) *Controller {
	if presenter == nil {
		presenter = NopPresenter{}
	}
	c := &Controller{
		cfg:       cfg,
		clk:       clk,
		log:       log,
		stock:     stock,
		payments:  payments,
		presenter: presenter,
		state:     domain.StateIdle,
		ledger:    domain.NewLedger(float),
	}
	c.guard = NewTimeoutGuard(clk, cfg.SessionTimeout)
	return c
}

// State returns the current state.
func (c *Controller) State() domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns a consistent copy of the controller's observable state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:       c.state,
		PaidCents:   c.paidCents,
		ChangeCents: c.change,
		Inserted:    c.ledger.Inserted.Clone(),
		Inventory:   c.ledger.Inventory.Clone(),
		PaymentID:   c.paymentID,
		History:     append([]domain.TransitionRecord(nil), c.history...),
	}
	if c.selection != nil {
		sel := *c.selection
		snap.Selection = &sel
		if remaining := sel.PriceCents - c.paidCents; remaining > 0 {
			snap.RemainingCents = remaining
		}
	}
	if c.intent != nil {
		snap.PayURL = c.intent.PayURL
	}
	return snap
}

// QRImage returns the PNG for the active payment's pay URL, or nil when no
// QR payment is pending.
func (c *Controller) QRImage() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.intent == nil {
		return nil
	}
	return c.intent.QRPNG
}

// Submit feeds one symbol through the transition table. An unrecognized
// symbol for the current state leaves the state unchanged and is reported,
// never fatal. The select symbol carries a drink and is only valid through
// Select; submitting it bare is rejected like any other illegal input.
func (c *Controller) Submit(sym domain.Symbol) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if sym == domain.SymbolSelect {
		c.log.Warn("rejected symbol", "state", c.state, "symbol", sym)
		rejectedSymbolsTotal.WithLabelValues(string(c.state), string(sym)).Inc()
		return Result{Accepted: false, From: c.state, Symbol: sym, To: c.state}
	}
	return c.step(sym)
}

// Select begins a transaction for the given drink. Rejected unless Idle:
// at most one transaction is active per controller.
func (c *Controller) Select(d domain.Drink) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StateIdle {
		c.log.Warn("selection refused, transaction in progress", "state", c.state, "drink", d.ID)
		rejectedSymbolsTotal.WithLabelValues(string(c.state), string(domain.SymbolSelect)).Inc()
		return Result{Accepted: false, From: c.state, Symbol: domain.SymbolSelect, To: c.state}
	}
	c.selection = &domain.Selection{DrinkID: d.ID, Name: d.Name, PriceCents: d.PriceCents}
	return c.step(domain.SymbolSelect)
}

// InsertCoin records one customer coin. Each insertion adds to the inserted
// tier and the running paid amount, refreshes the session timeout, and emits
// coinInserted, amountReached, or amountExceeded depending on how the paid
// total compares to the price.
func (c *Controller) InsertCoin(denomCents int) (Result, error) {
	if !domain.ValidDenomination(denomCents) {
		return Result{}, domain.ErrBadDenomination
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != domain.StateCashInsertion {
		rejectedSymbolsTotal.WithLabelValues(string(c.state), string(domain.SymbolCoinInserted)).Inc()
		return Result{Accepted: false, From: c.state, Symbol: domain.SymbolCoinInserted, To: c.state}, nil
	}

	c.ledger.Insert(denomCents)
	c.paidCents += denomCents
	c.guard.Reset(c.timeoutExpired) // activity keeps the session alive

	price := c.selection.PriceCents
	switch {
	case c.paidCents < price:
		return c.step(domain.SymbolCoinInserted), nil
	case c.paidCents == price:
		return c.step(domain.SymbolAmountReached), nil
	default:
		return c.step(domain.SymbolAmountExceeded), nil
	}
}

// Cancel emits cancel only if the current state accepts it (ChoosePayment,
// CashInsertion, QrPending); otherwise it reports rejection without
// mutating state. A pending remote payment is voided best-effort so the
// payer's phone page cannot confirm a dead transaction.
func (c *Controller) Cancel() Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !domain.Accepts(c.state, domain.SymbolCancel) {
		c.log.Warn("cancel not available", "state", c.state)
		rejectedSymbolsTotal.WithLabelValues(string(c.state), string(domain.SymbolCancel)).Inc()
		return Result{Accepted: false, From: c.state, Symbol: domain.SymbolCancel, To: c.state}
	}
	if c.state == domain.StateQrPending && c.paymentID != "" {
		if err := c.payments.Cancel(context.Background(), c.paymentID); err != nil {
			c.log.Warn("remote payment cancel failed", "payment", c.paymentID, "error", err)
		}
	}
	return c.step(domain.SymbolCancel)
}

// Close tears down timers and the poller. The controller is not reusable
// afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teardownLocked()
}

// ─── DFA Core ───────────────────────────────────────────────────────────────

// step performs one table lookup and transition. Lock must be held.
func (c *Controller) step(sym domain.Symbol) Result {
	from := c.state
	to, ok := domain.Next(from, sym)
	if !ok {
		c.log.Warn("rejected symbol", "state", from, "symbol", sym)
		rejectedSymbolsTotal.WithLabelValues(string(from), string(sym)).Inc()
		return Result{Accepted: false, From: from, Symbol: sym, To: from}
	}

	rec := domain.TransitionRecord{
		ID:     ulid.Make().String(),
		From:   from,
		Symbol: sym,
		To:     to,
		At:     c.clk.Now(),
	}
	c.history = append(c.history, rec)
	if limit := c.cfg.HistoryLimit; limit > 0 && len(c.history) > limit {
		c.history = c.history[len(c.history)-limit:]
	}

	c.state = to
	transitionsTotal.WithLabelValues(string(from), string(sym), string(to)).Inc()
	c.log.Info("transition", "from", from, "symbol", sym, "to", to)

	c.onEnter(to)
	c.presenter.Render(c.snapshotLocked())
	// An entry action may itself transition further (QR creation failure
	// lands back in ChoosePayment); report where the machine ended up,
	// not just the table target.
	return Result{Accepted: true, From: from, Symbol: sym, To: c.state}
}

// onEnter runs the entry actions for the state just reached. Lock held.
func (c *Controller) onEnter(s domain.State) {
	switch s {
	case domain.StateIdle:
		c.enterIdle()
	case domain.StateConfirmSelection:
		c.enterConfirmSelection()
	case domain.StateChoosePayment:
		c.enterChoosePayment()
	case domain.StateCashInsertion:
		c.enterCashInsertion()
	case domain.StateQrPending:
		c.enterQrPending()
	case domain.StateReturnChange:
		c.enterReturnChange()
	case domain.StatePaymentConfirmed:
		c.enterPaymentConfirmed()
	case domain.StateDispensing:
		c.enterDispensing()
	case domain.StateCollectItem:
		// awaiting openCompartment / itemTaken from the customer
	case domain.StateRefund:
		c.enterRefund()
	}
}

func (c *Controller) enterIdle() {
	c.teardownLocked()
	c.selection = nil
}

func (c *Controller) enterConfirmSelection() {
	count, err := c.stock.CheckStock(context.Background(), c.selection.DrinkID)
	if err != nil {
		// The attempt proceeds; payment-time checks will catch an empty slot.
		c.log.Error("stock check failed", "drink", c.selection.DrinkID, "error", err)
		return
	}
	if count <= 0 {
		c.log.Info("selection sold out", "drink", c.selection.DrinkID)
		c.scheduleSymbol(c.cfg.SoldOutDelay, domain.SymbolSoldOut)
	}
}

func (c *Controller) enterChoosePayment() {
	// A failed QR attempt re-enters here. The dead handle must be dropped,
	// or the next cash purchase would be misclassified as a QR transaction.
	c.paymentID = ""
	c.intent = nil
	c.guard.Start(c.timeoutExpired)
}

func (c *Controller) enterCashInsertion() {
	c.guard.Start(c.timeoutExpired)
}

func (c *Controller) enterQrPending() {
	c.guard.Start(c.timeoutExpired)

	intent, err := c.payments.Create(context.Background(), c.selection.DrinkID)
	if err != nil {
		c.log.Warn("payment creation failed", "drink", c.selection.DrinkID, "error", err)
		paymentsTotal.WithLabelValues("qr", "failed").Inc()
		c.step(domain.SymbolQrFailed)
		return
	}
	c.paymentID = intent.Handle
	c.intent = &intent

	c.stopPollerLocked()
	c.poller = StartPaymentPoller(
		c.clk, c.cfg.PollInterval, c.log, c.payments, intent.Handle,
		func() { c.Submit(domain.SymbolQrConfirmed) },
		func() { c.Submit(domain.SymbolQrFailed) },
	)
}

func (c *Controller) enterReturnChange() {
	owed := c.paidCents - c.selection.PriceCents
	plan, ok := domain.MakeChange(owed, c.ledger.Available())
	if !ok {
		// Inventory and inserted stay untouched; Refund returns everything.
		c.log.Info("change infeasible, diverting to full refund",
			"owed_cents", owed, "available", c.ledger.Available())
		c.scheduleSymbol(c.cfg.NoChangeDelay, domain.SymbolNoChangeAvailable)
		return
	}

	c.ledger.ApplyPlan(plan)
	c.ledger.CommitInserted()
	c.change = owed
	changePaidOutCents.Add(float64(owed))
	c.log.Info("paying out change", "owed_cents", owed, "plan", plan)
	c.presenter.PayoutChange(plan)
	c.scheduleSymbol(c.cfg.PayoutDelay, domain.SymbolRefundDone)
}

func (c *Controller) enterPaymentConfirmed() {
	c.guard.Stop()
	c.stopPollerLocked()
	// The transaction has succeeded: the customer's coins join the change
	// reserve. A no-op for QR payments and for the overpay path, which
	// commits when the change plan is applied.
	c.ledger.CommitInserted()
	if c.paymentID != "" {
		paymentsTotal.WithLabelValues("qr", "confirmed").Inc()
	} else {
		paymentsTotal.WithLabelValues("cash", "confirmed").Inc()
	}
	c.scheduleSymbol(c.cfg.ConfirmDelay, domain.SymbolBeginDispense)
}

func (c *Controller) enterDispensing() {
	// Cash transactions decrement stock here. QR transactions already
	// decremented at payment confirmation, which is the payment service's
	// business, not the controller's.
	if c.paymentID == "" {
		if _, err := c.stock.DecrementStock(context.Background(), c.selection.DrinkID); err != nil {
			// Money has been accepted: the customer is owed the item
			// regardless of bookkeeping trouble downstream.
			c.log.Error("stock decrement failed during dispense",
				"drink", c.selection.DrinkID, "error", err)
		}
	}
	c.scheduleSymbol(c.cfg.DispenseDelay, domain.SymbolDispenseComplete)
}

func (c *Controller) enterRefund() {
	c.guard.Stop()
	c.stopPollerLocked()
	amount := c.paidCents
	if amount > 0 {
		refundsPaidOutCents.Add(float64(amount))
		paymentsTotal.WithLabelValues("cash", "refunded").Inc()
		c.log.Info("refunding full amount", "amount_cents", amount)
		c.presenter.PayoutRefund(amount)
	}
	// Inserted coins go back to the customer; inventory is never touched.
	c.paidCents = 0
	c.ledger.ClearInserted()
	c.scheduleSymbol(c.cfg.PayoutDelay, domain.SymbolRefundDone)
}

// ─── Teardown & Timers ──────────────────────────────────────────────────────

// teardownLocked stops every timer and the poller, clears the payment
// handle, and zeroes the transaction tier of the ledger.
func (c *Controller) teardownLocked() {
	c.guard.Stop()
	c.stopPollerLocked()
	for _, t := range c.pending {
		t.Stop()
	}
	c.pending = nil
	c.paymentID = ""
	c.intent = nil
	c.paidCents = 0
	c.change = 0
	c.ledger.ClearInserted()
}

func (c *Controller) stopPollerLocked() {
	if c.poller != nil {
		c.poller.Stop()
		c.poller = nil
	}
}

// scheduleSymbol arranges for sym to be submitted after delay. If the
// machine has moved on by then, the table lookup rejects it harmlessly.
func (c *Controller) scheduleSymbol(delay time.Duration, sym domain.Symbol) {
	t := c.clk.AfterFunc(delay, func() { c.Submit(sym) })
	c.pending = append(c.pending, t)
}

// timeoutExpired is the guard's callback; it synthesizes the timeout symbol.
func (c *Controller) timeoutExpired() {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()
	sessionTimeoutsTotal.WithLabelValues(string(st)).Inc()
	c.log.Info("session timeout", "state", st)
	c.Submit(domain.SymbolTimeout)
}
