package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/susu3304/warikan/internal/group"
)

func TestREPLSeededSession(t *testing.T) {
	ctx := context.Background()
	g := group.NewService(nil, nil).Open(replGroup)
	if err := seed(ctx, g); err != nil {
		t.Fatalf("seed() error = %v", err)
	}

	input := strings.Join([]string{
		"SHOW",
		"EXPENSE u1 1000 4 u1 u2 u3 u4 EQUAL",
		"SHOW u4",
		"PAY u9 u1 5",
		"EXIT",
		"SHOW",
	}, "\n")
	var out bytes.Buffer
	if err := runREPL(ctx, g, strings.NewReader(input), &out); err != nil {
		t.Fatalf("runREPL() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"> No balances\n",
		"User4 owes User1: 250.00\n",
		"Error: ",
		"Exiting the application.\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "> ") != 5 {
		t.Errorf("expected 5 prompts, got output:\n%s", got)
	}
}

func TestREPLEndOfInput(t *testing.T) {
	g := group.NewService(nil, nil).Open(replGroup)
	var out bytes.Buffer
	if err := runREPL(context.Background(), g, strings.NewReader("USER a Alice\n"), &out); err != nil {
		t.Fatalf("runREPL() error = %v", err)
	}
	if !g.Directory().Has("a") {
		t.Errorf("participant a was not registered")
	}
}

func TestSetupLogging(t *testing.T) {
	if err := setupLogging("nope"); err == nil {
		t.Errorf("setupLogging() should reject unknown level")
	}
	if err := setupLogging("warn"); err != nil {
		t.Errorf("setupLogging() error = %v", err)
	}
}
