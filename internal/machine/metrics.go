package machine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Machine Metrics ────────────────────────────────────────────────────────

// transitionsTotal counts accepted transitions by edge.
var transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vendo",
	Subsystem: "machine",
	Name:      "transitions_total",
	Help:      "Total accepted state transitions by (from, symbol, to).",
}, []string{"from", "symbol", "to"})

// rejectedSymbolsTotal counts symbols that had no entry in the transition
// table for the state they arrived in. Includes stale timer firings.
var rejectedSymbolsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vendo",
	Subsystem: "machine",
	Name:      "rejected_symbols_total",
	Help:      "Total rejected input symbols by (state, symbol).",
}, []string{"state", "symbol"})

// sessionTimeoutsTotal counts timeout-guard expiries by the state they fired in.
var sessionTimeoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vendo",
	Subsystem: "machine",
	Name:      "session_timeouts_total",
	Help:      "Total session timeout expiries by state.",
}, []string{"state"})

// changePaidOutCents counts cents paid out as change.
var changePaidOutCents = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vendo",
	Subsystem: "machine",
	Name:      "change_paid_out_cents_total",
	Help:      "Total change paid out, in cents.",
})

// refundsPaidOutCents counts cents returned as full refunds.
var refundsPaidOutCents = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "vendo",
	Subsystem: "machine",
	Name:      "refunds_paid_out_cents_total",
	Help:      "Total money refunded to customers, in cents.",
})

// paymentsTotal counts payment attempts by method and outcome.
var paymentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "vendo",
	Subsystem: "machine",
	Name:      "payments_total",
	Help:      "Total payment attempts by method (cash, qr) and outcome (confirmed, refunded, failed).",
}, []string{"method", "outcome"})
