package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind selects how an expense total is divided among its participants.
type Kind int

const (
	Equal Kind = iota + 1
	Exact
	Percent
)

var hundred = decimal.NewFromInt(100)

func (k Kind) String() string {
	switch k {
	case Equal:
		return "EQUAL"
	case Exact:
		return "EXACT"
	case Percent:
		return "PERCENT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind accepts EQUAL, EXACT or PERCENT in any case.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EQUAL":
		return Equal, nil
	case "EXACT":
		return Exact, nil
	case "PERCENT":
		return Percent, nil
	}
	return 0, invalidSplitf("unknown split kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Share describes one participant's part of an expense before resolution.
// Value is an explicit amount for Exact, a percentage for Percent, and is
// ignored for Equal.
type Share struct {
	ParticipantID string          `json:"participant_id"`
	Value         decimal.Decimal `json:"value"`
}

// Split is one participant's resolved part of an expense.
type Split struct {
	ParticipantID string           `json:"participant_id"`
	Amount        decimal.Decimal  `json:"amount"`
	Percent       *decimal.Decimal `json:"percent,omitempty"`
}

// Resolve turns shares into splits whose amounts add up to total exactly.
func Resolve(kind Kind, total decimal.Decimal, shares []Share) ([]Split, error) {
	switch kind {
	case Equal:
		return splitEqual(total, shares)
	case Exact:
		return splitExact(total, shares)
	case Percent:
		return splitPercent(total, shares)
	default:
		return nil, invalidSplitf("unsupported split kind %s", kind)
	}
}

// splitEqual rounds the per-head amount to cents and puts the remainder on
// the first participant.
func splitEqual(total decimal.Decimal, shares []Share) ([]Split, error) {
	n := len(shares)
	if n == 0 {
		return nil, invalidSplitf("equal split needs at least one participant")
	}
	count := decimal.NewFromInt(int64(n))
	base := total.DivRound(count, 2)
	splits := make([]Split, n)
	for i, s := range shares {
		splits[i] = Split{ParticipantID: s.ParticipantID, Amount: base}
	}
	splits[0].Amount = base.Add(total.Sub(base.Mul(count)))
	return splits, nil
}

func splitExact(total decimal.Decimal, shares []Share) ([]Split, error) {
	if len(shares) == 0 {
		return nil, invalidSplitf("exact split needs at least one participant")
	}
	sum := decimal.Zero
	splits := make([]Split, len(shares))
	for i, s := range shares {
		if s.Value.IsNegative() {
			return nil, invalidSplitf("negative amount %s for %q", s.Value, s.ParticipantID)
		}
		sum = sum.Add(s.Value)
		splits[i] = Split{ParticipantID: s.ParticipantID, Amount: s.Value}
	}
	if !sum.Equal(total) {
		return nil, invalidSplitf("exact amounts sum to %s, expense total is %s", sum, total)
	}
	return splits, nil
}

func splitPercent(total decimal.Decimal, shares []Share) ([]Split, error) {
	if len(shares) == 0 {
		return nil, invalidSplitf("percent split needs at least one participant")
	}
	sum := decimal.Zero
	splits := make([]Split, len(shares))
	for i, s := range shares {
		if s.Value.IsNegative() {
			return nil, invalidSplitf("negative percentage %s for %q", s.Value, s.ParticipantID)
		}
		sum = sum.Add(s.Value)
		pct := s.Value
		splits[i] = Split{
			ParticipantID: s.ParticipantID,
			Amount:        total.Mul(pct).Div(hundred),
			Percent:       &pct,
		}
	}
	if !sum.Equal(hundred) {
		return nil, invalidSplitf("percentages sum to %s, want 100", sum)
	}
	return splits, nil
}
