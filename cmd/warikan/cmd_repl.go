package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/susu3304/warikan/internal/commands"
	"github.com/susu3304/warikan/internal/group"
	"github.com/susu3304/warikan/internal/ledger"
)

const replGroup = "local"

var replSeed bool

// replCmd reads commands from stdin against an in-memory group
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive command prompt",
	Long: `Read USER, EXPENSE, PAY and SHOW commands from standard input and print
the result of each. Type EXIT to quit.

Examples:
  warikan repl
  warikan repl --seed`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g := group.NewService(nil, nil).Open(replGroup)
		if replSeed {
			if err := seed(cmd.Context(), g); err != nil {
				return err
			}
		}
		return runREPL(cmd.Context(), g, os.Stdin, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().BoolVar(&replSeed, "seed", false, "Register u1..u4 before reading commands")
}

var seedParticipants = []ledger.Participant{
	{ID: "u1", Name: "User1", Email: "gaurav@workat.tech", Phone: "9876543210"},
	{ID: "u2", Name: "User2", Email: "sagar@workat.tech", Phone: "9876543210"},
	{ID: "u3", Name: "User3", Email: "hi@workat.tech", Phone: "9876543210"},
	{ID: "u4", Name: "User4", Email: "mock-interviews@workat.tech", Phone: "9876543210"},
}

func seed(ctx context.Context, g *group.Group) error {
	for _, p := range seedParticipants {
		if err := g.Register(ctx, p); err != nil {
			return fmt.Errorf("seed %s: %w", p.ID, err)
		}
	}
	return nil
}

func runREPL(ctx context.Context, g *group.Group, in io.Reader, out io.Writer) error {
	interp := commands.New(g)
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "EXIT") {
			fmt.Fprintln(out, "Exiting the application.")
			return nil
		}

		result, err := interp.Execute(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if result != "" {
			fmt.Fprintln(out, result)
		}
	}
}
