package commands

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/susu3304/warikan/internal/group"
	"github.com/susu3304/warikan/internal/ledger"
)

func newInterpreter(t *testing.T) *Interpreter {
	t.Helper()
	in := New(group.NewService(nil, nil).Open("test"))
	for _, line := range []string{
		"USER u1 User1 gaurav@workat.tech 9876543210",
		"USER u2 User2 sagar@workat.tech 9876543210",
		"USER u3 User3 hi@workat.tech 9876543210",
		"USER u4 User4 mock-interviews@workat.tech 9876543210",
	} {
		if _, err := in.Execute(context.Background(), line); err != nil {
			t.Fatalf("Execute(%q) error = %v", line, err)
		}
	}
	return in
}

func TestSampleTranscript(t *testing.T) {
	in := newInterpreter(t)

	steps := []struct {
		cmd  string
		want string
	}{
		{cmd: "SHOW", want: "No balances"},
		{cmd: "EXPENSE u1 1000 4 u1 u2 u3 u4 EQUAL"},
		{cmd: "SHOW u1", want: "User2 owes User1: 250.00\nUser3 owes User1: 250.00\nUser4 owes User1: 250.00"},
		{cmd: "SHOW", want: "User2 owes User1: 250.00\nUser3 owes User1: 250.00\nUser4 owes User1: 250.00"},
		{cmd: "EXPENSE u1 1250 2 u2 u3 EXACT 370 880"},
		{cmd: "SHOW", want: "User2 owes User1: 620.00\nUser3 owes User1: 1130.00\nUser4 owes User1: 250.00"},
		{cmd: "EXPENSE u4 1200 4 u1 u2 u3 u4 PERCENT 40 20 20 20"},
		{cmd: "SHOW", want: "User2 owes User1: 620.00\nUser3 owes User1: 1130.00\nUser1 owes User4: 230.00\nUser2 owes User4: 240.00\nUser3 owes User4: 240.00"},
		{cmd: "SHOW u2", want: "User2 owes User1: 620.00\nUser2 owes User4: 240.00"},
		{cmd: "PAY u2 u1 600.0", want: "User2 paid 600.00 to User1"},
		{cmd: "SHOW", want: "User2 owes User1: 20.00\nUser3 owes User1: 1130.00\nUser1 owes User4: 230.00\nUser2 owes User4: 240.00\nUser3 owes User4: 240.00"},
		{cmd: "PAY u2 u1 20.0", want: "User2 paid 20.00 to User1\nAll balances between User2 and User1 are clear."},
		{cmd: "SHOW", want: "User3 owes User1: 1130.00\nUser1 owes User4: 230.00\nUser2 owes User4: 240.00\nUser3 owes User4: 240.00"},
	}

	for _, step := range steps {
		got, err := in.Execute(context.Background(), step.cmd)
		if err != nil {
			t.Fatalf("Execute(%q) error = %v", step.cmd, err)
		}
		if step.want != "" && got != step.want {
			t.Errorf("Execute(%q) =\n%s\nwant\n%s", step.cmd, got, step.want)
		}
	}
}

func TestExpenseConfirmation(t *testing.T) {
	in := newInterpreter(t)
	got, err := in.Execute(context.Background(), "expense u1 100 3 u1 u2 u3 equal")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got != "User1 paid 100.00 split EQUAL among 3" {
		t.Errorf("Execute() = %q", got)
	}
}

func TestExecuteErrors(t *testing.T) {
	in := newInterpreter(t)
	tests := []struct {
		cmd     string
		wantErr error
	}{
		{cmd: "", wantErr: ErrSyntax},
		{cmd: "SETTLE u1", wantErr: ErrUnknownCommand},
		{cmd: "USER u5", wantErr: ErrSyntax},
		{cmd: "USER u1 Again", wantErr: ledger.ErrDuplicateParticipant},
		{cmd: "EXPENSE u1 abc 1 u2 EQUAL", wantErr: ErrSyntax},
		{cmd: "EXPENSE u1 10 x u2 EQUAL", wantErr: ErrSyntax},
		{cmd: "EXPENSE u1 10 3 u2 EQUAL", wantErr: ErrSyntax},
		{cmd: "EXPENSE u1 10 9223372036854775804 u1 EQUAL", wantErr: ErrSyntax},
		{cmd: "EXPENSE u1 10 99999999999999999999 u1 EQUAL", wantErr: ErrSyntax},
		{cmd: "EXPENSE u1 10 1 u2", wantErr: ErrSyntax},
		{cmd: "EXPENSE u1 10 1 u2 EQUAL 5", wantErr: ErrSyntax},
		{cmd: "EXPENSE u1 10 2 u2 u3 EXACT 5", wantErr: ErrSyntax},
		{cmd: "EXPENSE u1 10 1 u2 SHARES", wantErr: ledger.ErrInvalidSplit},
		{cmd: "EXPENSE u1 10 2 u2 u3 EXACT 5 4", wantErr: ledger.ErrInvalidSplit},
		{cmd: "EXPENSE u1 10 2 u2 u3 PERCENT 50 40", wantErr: ledger.ErrInvalidSplit},
		{cmd: "EXPENSE u1 10 0 EQUAL", wantErr: ledger.ErrInvalidSplit},
		{cmd: "EXPENSE u9 10 1 u2 EQUAL", wantErr: ledger.ErrUnknownParticipant},
		{cmd: "PAY u1 u9 10", wantErr: ledger.ErrUnknownParticipant},
		{cmd: "PAY u1 u2", wantErr: ErrSyntax},
		{cmd: "PAY u1 u2 -3", wantErr: ledger.ErrInvalidAmount},
		{cmd: "SHOW u9", wantErr: ledger.ErrUnknownParticipant},
		{cmd: "SHOW u1 u2", wantErr: ErrSyntax},
	}
	for _, tt := range tests {
		_, err := in.Execute(context.Background(), tt.cmd)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("Execute(%q) error = %v, want %v", tt.cmd, err, tt.wantErr)
		}
	}

	got, err := in.Execute(context.Background(), "SHOW")
	if err != nil || got != "No balances" {
		t.Errorf("failed commands changed balances: %q, %v", got, err)
	}
}

func TestHelp(t *testing.T) {
	in := newInterpreter(t)
	got, err := in.Execute(context.Background(), "help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(got, "PAY <payer> <payee> <amount>") {
		t.Errorf("help = %q", got)
	}
}
