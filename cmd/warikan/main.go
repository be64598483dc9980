package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	envFile string
	debug   bool
)

// rootCmd is the base command for the warikan CLI
var rootCmd = &cobra.Command{
	Use:   "warikan",
	Short: "Shared expense ledger",
	Long: `warikan records shared expenses and payments between participants and
reports who owes whom. Run it as an HTTP and Discord service or as an
interactive prompt.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(os.Getenv("LOG_LEVEL"))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "config", "", "Path to an env file (default: .env if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

func setupLogging(level string) error {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	lvl := zerolog.InfoLevel
	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
		}
		lvl = parsed
	}
	if debug {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
