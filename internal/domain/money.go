package domain

// All monetary amounts are integer minor units (cents). Floating-point
// currency never appears anywhere in this package.

// Denominations is the machine's coin set in cents, largest first.
//
// MakeChange relies on this being a canonical coin system: greedy
// largest-first never strands a remainder that another allocation could
// have resolved. If the set is ever extended to a non-canonical one
// (e.g. adding a 60c coin), the greedy pass below must be replaced, not
// merely re-ordered.
var Denominations = []int{100, 50, 25}

// ValidDenomination reports whether cents is one of the accepted coins.
func ValidDenomination(cents int) bool {
	for _, d := range Denominations {
		if d == cents {
			return true
		}
	}
	return false
}

// ─── Coin Counting ──────────────────────────────────────────────────────────

// CoinCounts maps a denomination (cents) to a coin count.
type CoinCounts map[int]int

// NewCoinCounts returns a zeroed count for every denomination.
func NewCoinCounts() CoinCounts {
	c := make(CoinCounts, len(Denominations))
	for _, d := range Denominations {
		c[d] = 0
	}
	return c
}

// Total returns the weighted sum in cents.
func (c CoinCounts) Total() int {
	sum := 0
	for denom, n := range c {
		sum += denom * n
	}
	return sum
}

// Clone returns an independent copy.
func (c CoinCounts) Clone() CoinCounts {
	out := make(CoinCounts, len(c))
	for denom, n := range c {
		out[denom] = n
	}
	return out
}

// Plus returns a new count holding the element-wise sum of c and other.
func (c CoinCounts) Plus(other CoinCounts) CoinCounts {
	out := c.Clone()
	for denom, n := range other {
		out[denom] += n
	}
	return out
}

// ChangePlan is a denomination breakdown whose weighted sum equals an owed
// amount exactly. It is only ever produced by MakeChange.
type ChangePlan = CoinCounts

// MakeChange computes a plan paying out exactly oweCents from the given
// availability, or reports infeasibility. Greedy largest-denomination-first,
// bounded per denomination by available counts.
func MakeChange(oweCents int, available CoinCounts) (ChangePlan, bool) {
	if oweCents < 0 {
		return nil, false
	}
	remaining := oweCents
	plan := NewCoinCounts()
	for _, denom := range Denominations {
		for remaining >= denom && plan[denom] < available[denom] {
			plan[denom]++
			remaining -= denom
		}
	}
	if remaining != 0 {
		return nil, false
	}
	return plan, true
}

// ─── Two-Tier Ledger ────────────────────────────────────────────────────────

// Ledger is the machine's two-tier coin accounting.
//
// Inventory is the persistent change reserve: it survives across
// transactions, grows only when a successful transaction commits the
// customer's coins, and shrinks only when a change plan is paid out.
//
// Inserted holds the coins of the current transaction only; it is emptied
// whenever a transaction concludes, whether by commit, refund, or cancel.
type Ledger struct {
	Inventory CoinCounts
	Inserted  CoinCounts
}

// NewLedger creates a ledger preloaded with the given change reserve.
func NewLedger(float CoinCounts) Ledger {
	inv := NewCoinCounts()
	for denom, n := range float {
		inv[denom] = n
	}
	return Ledger{Inventory: inv, Inserted: NewCoinCounts()}
}

// Insert records one customer coin of the given denomination.
func (l *Ledger) Insert(denomCents int) {
	l.Inserted[denomCents]++
}

// Available returns the combined inventory + inserted counts, the pool a
// change plan may draw from.
func (l *Ledger) Available() CoinCounts {
	return l.Inventory.Plus(l.Inserted)
}

// ApplyPlan consumes the plan's coins, drawing from Inserted first and the
// remainder from Inventory. The caller must have obtained the plan from
// MakeChange over Available(), so counts never go negative.
func (l *Ledger) ApplyPlan(plan ChangePlan) {
	for denom, needed := range plan {
		fromInserted := needed
		if l.Inserted[denom] < fromInserted {
			fromInserted = l.Inserted[denom]
		}
		l.Inserted[denom] -= fromInserted
		l.Inventory[denom] -= needed - fromInserted
	}
}

// CommitInserted moves every remaining inserted coin into the persistent
// inventory. Called exactly once per successful cash transaction.
func (l *Ledger) CommitInserted() {
	for denom, n := range l.Inserted {
		l.Inventory[denom] += n
	}
	l.Inserted = NewCoinCounts()
}

// ClearInserted discards the inserted tier without touching Inventory.
// Used on refund and cancel: the coins go back to the customer.
func (l *Ledger) ClearInserted() {
	l.Inserted = NewCoinCounts()
}
