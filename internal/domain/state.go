package domain

// ─── States ─────────────────────────────────────────────────────────────────

// State is one discrete stage of a single purchase lifecycle.
// The set is closed: exactly these ten values exist, and exactly one is
// current at any instant. The string values are part of the machine's
// public protocol and must not change.
type State string

const (
	StateIdle             State = "Idle"
	StateConfirmSelection State = "ConfirmSelection"
	StateChoosePayment    State = "ChoosePayment"
	StateCashInsertion    State = "CashInsertion"
	StateQrPending        State = "QrPending"
	StateReturnChange     State = "ReturnChange"
	StatePaymentConfirmed State = "PaymentConfirmed"
	StateDispensing       State = "Dispensing"
	StateCollectItem      State = "CollectItem"
	StateRefund           State = "Refund"
)

// States lists every machine state, in lifecycle order.
func States() []State {
	return []State{
		StateIdle, StateConfirmSelection, StateChoosePayment,
		StateCashInsertion, StateQrPending, StateReturnChange,
		StatePaymentConfirmed, StateDispensing, StateCollectItem,
		StateRefund,
	}
}

// ─── Symbols ────────────────────────────────────────────────────────────────

// Symbol is an input event that may trigger a state transition.
// Like State, the alphabet is closed and its string values are protocol.
type Symbol string

const (
	SymbolSelect            Symbol = "select"
	SymbolYes               Symbol = "yes"
	SymbolNo                Symbol = "no"
	SymbolCash              Symbol = "cash"
	SymbolQr                Symbol = "qr"
	SymbolCoinInserted      Symbol = "coinInserted"
	SymbolAmountReached     Symbol = "amountReached"
	SymbolAmountExceeded    Symbol = "amountExceeded"
	SymbolRefundDone        Symbol = "refundDone"
	SymbolQrConfirmed       Symbol = "qrConfirmed"
	SymbolQrFailed          Symbol = "qrFailed"
	SymbolCancel            Symbol = "cancel"
	SymbolTimeout           Symbol = "timeout"
	SymbolBeginDispense     Symbol = "beginDispense"
	SymbolDispenseComplete  Symbol = "dispenseComplete"
	SymbolOpenCompartment   Symbol = "openCompartment"
	SymbolItemTaken         Symbol = "itemTaken"
	SymbolSoldOut           Symbol = "soldOut"
	SymbolNoChangeAvailable Symbol = "noChangeAvailable"
)

// Symbols lists the full input alphabet.
func Symbols() []Symbol {
	return []Symbol{
		SymbolSelect, SymbolYes, SymbolNo, SymbolCash, SymbolQr,
		SymbolCoinInserted, SymbolAmountReached, SymbolAmountExceeded,
		SymbolRefundDone, SymbolQrConfirmed, SymbolQrFailed,
		SymbolCancel, SymbolTimeout, SymbolBeginDispense,
		SymbolDispenseComplete, SymbolOpenCompartment, SymbolItemTaken,
		SymbolSoldOut, SymbolNoChangeAvailable,
	}
}

// ─── Transition Table ───────────────────────────────────────────────────────

// transitions is the fixed transition table. Absence of an entry means the
// symbol is rejected in that state — a reported no-op, never a crash.
// This table is the single source of truth for legal motion; it is never
// mutated at runtime.
var transitions = map[State]map[Symbol]State{
	StateIdle: {
		SymbolSelect: StateConfirmSelection,
	},
	StateConfirmSelection: {
		SymbolYes:     StateChoosePayment,
		SymbolNo:      StateIdle,
		SymbolSoldOut: StateIdle,
	},
	StateChoosePayment: {
		SymbolCash:    StateCashInsertion,
		SymbolQr:      StateQrPending,
		SymbolCancel:  StateIdle,
		SymbolTimeout: StateIdle,
	},
	StateCashInsertion: {
		SymbolCoinInserted:   StateCashInsertion,
		SymbolAmountReached:  StatePaymentConfirmed,
		SymbolAmountExceeded: StateReturnChange,
		SymbolCancel:         StateRefund,
		SymbolTimeout:        StateRefund,
	},
	StateQrPending: {
		SymbolQrConfirmed: StatePaymentConfirmed,
		SymbolQrFailed:    StateChoosePayment,
		SymbolCancel:      StateIdle,
		SymbolTimeout:     StateIdle,
	},
	StateReturnChange: {
		SymbolRefundDone:        StatePaymentConfirmed,
		SymbolNoChangeAvailable: StateRefund,
	},
	StatePaymentConfirmed: {
		SymbolBeginDispense: StateDispensing,
	},
	StateDispensing: {
		SymbolDispenseComplete: StateCollectItem,
	},
	StateCollectItem: {
		SymbolOpenCompartment: StateCollectItem,
		SymbolItemTaken:       StateIdle,
	},
	StateRefund: {
		SymbolRefundDone: StateIdle,
	},
}

// Next returns the state reached by feeding symbol in the given state.
// The second return is false when the table has no entry, i.e. the symbol
// is not accepted in that state.
func Next(from State, sym Symbol) (State, bool) {
	row, ok := transitions[from]
	if !ok {
		return from, false
	}
	to, ok := row[sym]
	if !ok {
		return from, false
	}
	return to, true
}

// Accepts reports whether the symbol is legal in the given state.
func Accepts(from State, sym Symbol) bool {
	_, ok := Next(from, sym)
	return ok
}
