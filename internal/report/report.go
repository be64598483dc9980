// Package report renders ledger state as "X owes Y: amount" lines.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/susu3304/warikan/internal/ledger"
)

const NoBalances = "No balances"

// Names resolves participant ids to display names.
type Names interface {
	Lookup(id string) (ledger.Participant, error)
}

func name(n Names, id string) string {
	if n == nil {
		return id
	}
	p, err := n.Lookup(id)
	if err != nil {
		return id
	}
	return p.DisplayName()
}

// Amount formats money with two decimals.
func Amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Line renders balance[a][b]. A zero balance renders nothing and ok is false.
func Line(n Names, a, b string, amount decimal.Decimal) (string, bool) {
	switch {
	case amount.IsNegative():
		return fmt.Sprintf("%s owes %s: %s", name(n, a), name(n, b), Amount(amount.Abs())), true
	case amount.IsPositive():
		return fmt.Sprintf("%s owes %s: %s", name(n, b), name(n, a), Amount(amount)), true
	default:
		return "", false
	}
}

// All renders every outstanding debt, one per line.
func All(n Names, debts []ledger.Debt) string {
	var lines []string
	for _, d := range debts {
		if line, ok := Line(n, d.Creditor, d.Debtor, d.Amount); ok {
			lines = append(lines, line)
		}
	}
	return join(lines)
}

// For renders the balances of one participant.
func For(n Names, id string, balances []ledger.Balance) string {
	var lines []string
	for _, b := range balances {
		if line, ok := Line(n, id, b.With, b.Amount); ok {
			lines = append(lines, line)
		}
	}
	return join(lines)
}

// Payment renders a payment and, when it cleared the pair, the settled notice.
func Payment(n Names, p ledger.Payment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s paid %s to %s", name(n, p.PaidBy), Amount(p.Amount), name(n, p.PaidTo))
	if p.Settled {
		fmt.Fprintf(&b, "\nAll balances between %s and %s are clear.", name(n, p.PaidBy), name(n, p.PaidTo))
	}
	return b.String()
}

func join(lines []string) string {
	if len(lines) == 0 {
		return NoBalances
	}
	return strings.Join(lines, "\n")
}
