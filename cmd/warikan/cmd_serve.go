package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/susu3304/warikan/internal/api"
	"github.com/susu3304/warikan/internal/bot"
	"github.com/susu3304/warikan/internal/config"
	"github.com/susu3304/warikan/internal/db"
	"github.com/susu3304/warikan/internal/group"
	"github.com/susu3304/warikan/internal/metrics"
)

// serveCmd runs the HTTP API and, when a token is configured, the Discord bot
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and Discord bot",
	Long: `Start the HTTP API. The Discord bot starts when DISCORD_TOKEN is set and
every mutation is written to PostgreSQL when DATABASE_URL is set.

Examples:
  warikan serve
  warikan serve --config prod.env --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return err
	}

	ctx := context.Background()

	var journal group.Journal
	if cfg.JournalEnabled() {
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if err := database.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		journal = database
		log.Info().Msg("audit journal enabled")
	}

	registry := metrics.New()
	groups := group.NewService(journal, registry)
	apiServer := api.New(cfg, groups, registry)

	if cfg.BotEnabled() {
		discordBot, err := bot.New(cfg.DiscordToken, cfg.CommandPrefix, groups)
		if err != nil {
			return err
		}
		if err := discordBot.Start(); err != nil {
			return err
		}
		defer discordBot.Stop()
	} else {
		log.Warn().Msg("DISCORD_TOKEN not set, Discord bot disabled")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
	case err := <-errCh:
		return fmt.Errorf("API server error: %w", err)
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return apiServer.Shutdown(shutdownCtx)
}
