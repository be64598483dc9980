package ledger

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// pair is an unordered participant pair with lo < hi.
type pair struct {
	lo, hi string
}

func pairOf(a, b string) (pair, bool) {
	if a < b {
		return pair{lo: a, hi: b}, false
	}
	return pair{lo: b, hi: a}, true
}

// Payment is a direct transfer from PaidBy to PaidTo.
type Payment struct {
	ID        uuid.UUID       `json:"id"`
	PaidBy    string          `json:"paid_by"`
	PaidTo    string          `json:"paid_to"`
	Amount    decimal.Decimal `json:"amount"`
	Settled   bool            `json:"settled"`
	CreatedAt time.Time       `json:"created_at"`
}

// Balance is what With owes the queried participant. Negative means the
// queried participant owes With.
type Balance struct {
	With   string          `json:"with"`
	Amount decimal.Decimal `json:"amount"`
}

// Debt says Debtor owes Creditor a positive Amount.
type Debt struct {
	Creditor string          `json:"creditor"`
	Debtor   string          `json:"debtor"`
	Amount   decimal.Decimal `json:"amount"`
}

// Ledger keeps pairwise net balances between participants of one directory.
//
// Each pair is stored once as balance[lo][hi]; balance[hi][lo] is its
// negation, so the two directions can never disagree.
type Ledger struct {
	dir *Directory

	mu       sync.RWMutex
	balances map[pair]decimal.Decimal
	expenses []Expense
	payments []Payment
	now      func() time.Time
}

func New(dir *Directory) *Ledger {
	return &Ledger{
		dir:      dir,
		balances: make(map[pair]decimal.Decimal),
		now:      time.Now,
	}
}

// add increases balance[creditor][debtor] by amount. Caller holds mu.
func (l *Ledger) add(creditor, debtor string, amount decimal.Decimal) {
	key, flipped := pairOf(creditor, debtor)
	if flipped {
		amount = amount.Neg()
	}
	next := l.balances[key].Add(amount)
	if next.IsZero() {
		delete(l.balances, key)
		return
	}
	l.balances[key] = next
}

// get returns balance[a][b]. Caller holds mu.
func (l *Ledger) get(a, b string) decimal.Decimal {
	key, flipped := pairOf(a, b)
	v := l.balances[key]
	if flipped {
		return v.Neg()
	}
	return v
}

// ApplyExpense credits the payer with every split except their own.
func (l *Ledger) ApplyExpense(e *Expense) error {
	if e == nil {
		return invalidSplitf("nil expense")
	}
	if !l.dir.Has(e.PaidBy) {
		return unknownParticipant(e.PaidBy)
	}
	for _, s := range e.Splits {
		if !l.dir.Has(s.ParticipantID) {
			return unknownParticipant(s.ParticipantID)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range e.Splits {
		if s.ParticipantID == e.PaidBy {
			continue
		}
		l.add(e.PaidBy, s.ParticipantID, s.Amount)
	}
	l.expenses = append(l.expenses, *e)
	return nil
}

// ApplyPayment records payer handing amount to payee. Paying more than is
// owed is allowed and reverses the direction of the debt.
func (l *Ledger) ApplyPayment(payerID, payeeID string, amount decimal.Decimal) (Payment, error) {
	if !l.dir.Has(payerID) {
		return Payment{}, unknownParticipant(payerID)
	}
	if !l.dir.Has(payeeID) {
		return Payment{}, unknownParticipant(payeeID)
	}
	if payerID == payeeID {
		return Payment{}, invalidAmountf("%q cannot pay themselves", payerID)
	}
	if !amount.IsPositive() {
		return Payment{}, invalidAmountf("payment amount must be positive, got %s", amount)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.add(payerID, payeeID, amount)
	p := Payment{
		ID:        uuid.New(),
		PaidBy:    payerID,
		PaidTo:    payeeID,
		Amount:    amount,
		Settled:   l.get(payerID, payeeID).IsZero(),
		CreatedAt: l.now(),
	}
	l.payments = append(l.payments, p)
	return p, nil
}

// NetBalance returns balance[a][b]: positive when b owes a, negative when a
// owes b.
func (l *Ledger) NetBalance(a, b string) (decimal.Decimal, error) {
	if !l.dir.Has(a) {
		return decimal.Zero, unknownParticipant(a)
	}
	if !l.dir.Has(b) {
		return decimal.Zero, unknownParticipant(b)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.get(a, b), nil
}

// BalancesFor lists a's non-zero balances ordered by the other participant's id.
func (l *Ledger) BalancesFor(a string) ([]Balance, error) {
	if !l.dir.Has(a) {
		return nil, unknownParticipant(a)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Balance
	for key, v := range l.balances {
		switch a {
		case key.lo:
			out = append(out, Balance{With: key.hi, Amount: v})
		case key.hi:
			out = append(out, Balance{With: key.lo, Amount: v.Neg()})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].With < out[j].With })
	return out, nil
}

// AllNonZeroBalances reports each outstanding debt once, ordered by creditor
// then debtor.
func (l *Ledger) AllNonZeroBalances() []Debt {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Debt, 0, len(l.balances))
	for key, v := range l.balances {
		if v.IsPositive() {
			out = append(out, Debt{Creditor: key.lo, Debtor: key.hi, Amount: v})
		} else {
			out = append(out, Debt{Creditor: key.hi, Debtor: key.lo, Amount: v.Neg()})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Creditor != out[j].Creditor {
			return out[i].Creditor < out[j].Creditor
		}
		return out[i].Debtor < out[j].Debtor
	})
	return out
}

// Expenses returns the applied expenses in order.
func (l *Ledger) Expenses() []Expense {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Expense, len(l.expenses))
	copy(out, l.expenses)
	return out
}

// Payments returns the applied payments in order.
func (l *Ledger) Payments() []Payment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Payment, len(l.payments))
	copy(out, l.payments)
	return out
}
