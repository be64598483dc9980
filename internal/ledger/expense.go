package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Expense is a resolved payment by one participant shared among others.
// The amounts of Splits always add up to Amount.
type Expense struct {
	ID        uuid.UUID       `json:"id"`
	Kind      Kind            `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	PaidBy    string          `json:"paid_by"`
	Splits    []Split         `json:"splits"`
	CreatedAt time.Time       `json:"created_at"`
}

// Factory validates expense requests against a directory and resolves their
// splits. It never touches balances.
type Factory struct {
	dir *Directory
	now func() time.Time
}

func NewFactory(dir *Directory) *Factory {
	return &Factory{dir: dir, now: time.Now}
}

// CreateExpense resolves shares with the strategy for kind.
func (f *Factory) CreateExpense(kind Kind, amount decimal.Decimal, payerID string, shares []Share) (*Expense, error) {
	if !amount.IsPositive() {
		return nil, invalidAmountf("expense amount must be positive, got %s", amount)
	}
	if _, err := f.dir.Lookup(payerID); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(shares))
	for _, s := range shares {
		if _, err := f.dir.Lookup(s.ParticipantID); err != nil {
			return nil, err
		}
		if _, dup := seen[s.ParticipantID]; dup {
			return nil, invalidSplitf("participant %q listed more than once", s.ParticipantID)
		}
		seen[s.ParticipantID] = struct{}{}
	}

	splits, err := Resolve(kind, amount, shares)
	if err != nil {
		return nil, err
	}
	return &Expense{
		ID:        uuid.New(),
		Kind:      kind,
		Amount:    amount,
		PaidBy:    payerID,
		Splits:    splits,
		CreatedAt: f.now(),
	}, nil
}
