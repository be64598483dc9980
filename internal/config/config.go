package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	// Discord Bot (optional)
	DiscordToken  string
	CommandPrefix string

	// Audit journal (optional)
	DatabaseURL string

	// Web Server
	WebBind            string
	CORSAllowedOrigins []string

	LogLevel string
}

// Load reads configuration from the environment. envFile, when not empty,
// must exist; otherwise a .env in the working directory is loaded if present.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{
		DiscordToken:       os.Getenv("DISCORD_TOKEN"),
		CommandPrefix:      getEnvDefault("COMMAND_PREFIX", "!warikan"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		WebBind:            getEnvDefault("WEB_BIND", "0.0.0.0:3000"),
		CORSAllowedOrigins: splitList(getEnvDefault("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           getEnvDefault("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.WebBind == "" {
		return fmt.Errorf("WEB_BIND is required")
	}
	if strings.TrimSpace(c.CommandPrefix) == "" {
		return fmt.Errorf("COMMAND_PREFIX must not be blank")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}

// BotEnabled reports whether a Discord token was configured.
func (c *Config) BotEnabled() bool {
	return c.DiscordToken != ""
}

// JournalEnabled reports whether a database was configured.
func (c *Config) JournalEnabled() bool {
	return c.DatabaseURL != ""
}

func getEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
