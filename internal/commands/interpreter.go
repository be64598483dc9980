package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/susu3304/warikan/internal/group"
	"github.com/susu3304/warikan/internal/ledger"
	"github.com/susu3304/warikan/internal/report"
)

var (
	ErrSyntax         = errors.New("syntax error")
	ErrUnknownCommand = errors.New("unknown command")
)

const Usage = `USER <id> <name> [email] [phone]
EXPENSE <payer> <amount> <n> <id1> ... <idn> EQUAL
EXPENSE <payer> <amount> <n> <id1> ... <idn> EXACT <amount1> ... <amountn>
EXPENSE <payer> <amount> <n> <id1> ... <idn> PERCENT <percent1> ... <percentn>
PAY <payer> <payee> <amount>
SHOW [id]`

// Interpreter runs whitespace-separated text commands against one group.
type Interpreter struct {
	group *group.Group
}

func New(g *group.Group) *Interpreter {
	return &Interpreter{group: g}
}

// Execute runs one command line and returns the text to show the user.
func (in *Interpreter) Execute(ctx context.Context, line string) (string, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return "", syntaxf("empty command")
	}

	switch strings.ToUpper(tokens[0]) {
	case "USER":
		return in.user(ctx, tokens[1:])
	case "EXPENSE":
		return in.expense(ctx, tokens[1:])
	case "PAY":
		return in.pay(ctx, tokens[1:])
	case "SHOW":
		return in.show(tokens[1:])
	case "HELP":
		return Usage, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, tokens[0])
	}
}

func (in *Interpreter) user(ctx context.Context, args []string) (string, error) {
	if len(args) < 2 || len(args) > 4 {
		return "", syntaxf("USER <id> <name> [email] [phone]")
	}
	p := ledger.Participant{ID: args[0], Name: args[1]}
	if len(args) > 2 {
		p.Email = args[2]
	}
	if len(args) > 3 {
		p.Phone = args[3]
	}
	if err := in.group.Register(ctx, p); err != nil {
		return "", err
	}
	return fmt.Sprintf("Registered %s (%s)", p.DisplayName(), p.ID), nil
}

func (in *Interpreter) expense(ctx context.Context, args []string) (string, error) {
	if len(args) < 4 {
		return "", syntaxf("EXPENSE <payer> <amount> <n> <ids...> <EQUAL|EXACT|PERCENT> [values...]")
	}
	payer := args[0]
	amount, err := parseDecimal(args[1])
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(args[2])
	if err != nil || n < 0 {
		return "", syntaxf("participant count %q is not a number", args[2])
	}
	// n is user input; compare against what is left so 3+n cannot overflow.
	if n > len(args)-4 {
		return "", syntaxf("expected %d participant ids followed by a split kind", n)
	}
	ids := args[3 : 3+n]
	kind, err := ledger.ParseKind(args[3+n])
	if err != nil {
		return "", err
	}
	values := args[4+n:]

	shares := make([]ledger.Share, n)
	for i, id := range ids {
		shares[i] = ledger.Share{ParticipantID: id}
	}
	switch kind {
	case ledger.Equal:
		if len(values) != 0 {
			return "", syntaxf("EQUAL takes no values, got %d", len(values))
		}
	default:
		if len(values) != n {
			return "", syntaxf("%s needs %d values, got %d", kind, n, len(values))
		}
		for i, v := range values {
			d, err := parseDecimal(v)
			if err != nil {
				return "", err
			}
			shares[i].Value = d
		}
	}

	e, err := in.group.AddExpense(ctx, kind, amount, payer, shares)
	if err != nil {
		return "", err
	}
	payerName := payer
	if p, err := in.group.Directory().Lookup(payer); err == nil {
		payerName = p.DisplayName()
	}
	return fmt.Sprintf("%s paid %s split %s among %d", payerName, report.Amount(e.Amount), e.Kind, len(e.Splits)), nil
}

func (in *Interpreter) pay(ctx context.Context, args []string) (string, error) {
	if len(args) != 3 {
		return "", syntaxf("PAY <payer> <payee> <amount>")
	}
	amount, err := parseDecimal(args[2])
	if err != nil {
		return "", err
	}
	p, err := in.group.Pay(ctx, args[0], args[1], amount)
	if err != nil {
		return "", err
	}
	return report.Payment(in.group.Directory(), p), nil
}

func (in *Interpreter) show(args []string) (string, error) {
	l := in.group.Ledger()
	switch len(args) {
	case 0:
		return report.All(in.group.Directory(), l.AllNonZeroBalances()), nil
	case 1:
		balances, err := l.BalancesFor(args[0])
		if err != nil {
			return "", err
		}
		return report.For(in.group.Directory(), args[0], balances), nil
	default:
		return "", syntaxf("SHOW [id]")
	}
}

func parseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, syntaxf("%q is not a number", s)
	}
	return d, nil
}

func syntaxf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSyntax, fmt.Sprintf(format, args...))
}
