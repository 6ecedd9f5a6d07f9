// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port              int           `env:"PORT" envDefault:"3318"`
	DatabaseURL       string        `env:"DATABASE_URL" envDefault:"secretballot.db"`
	DatabaseType      string        `env:"DATABASE_TYPE" envDefault:"sqlite"`
	InteractionSecret string        `env:"INTERACTION_SECRET"`
	VoteWindow        time.Duration `env:"VOTE_WINDOW" envDefault:"2m"`
	FanoutLimit       int           `env:"FANOUT_LIMIT" envDefault:"10"`
	RenderInterval    time.Duration `env:"RENDER_INTERVAL" envDefault:"1s"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseFlags builds the configuration. Precedence, highest first: CLI flags,
// environment, the .env file, defaults.
func ParseFlags(args []string) (Config, error) {
	var (
		flags   Config
		envFile string
	)

	fs := flag.NewFlagSet("secretballot", flag.ContinueOnError)

	fs.StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	// Network config (can be CLI args or env)
	fs.IntVar(&flags.Port, "p", 0, "Server port")
	fs.StringVar(&flags.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&flags.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Vote tuning
	fs.DurationVar(&flags.VoteWindow, "window", 0, "How long a vote stays open")
	fs.IntVar(&flags.FanoutLimit, "fanout", 0, "Concurrent private ballot sends")
	fs.DurationVar(&flags.RenderInterval, "render-interval", 0, "Minimum spacing of public status edits")
	fs.StringVar(&flags.LogLevel, "log-level", "", "debug, info, warn or error")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&flags.InteractionSecret, "secret", "", "Interaction signing secret (prefer env)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Real environment variables win over the file
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			cfg.Port = flags.Port
		case "d":
			cfg.DatabaseURL = flags.DatabaseURL
		case "t":
			cfg.DatabaseType = flags.DatabaseType
		case "window":
			cfg.VoteWindow = flags.VoteWindow
		case "fanout":
			cfg.FanoutLimit = flags.FanoutLimit
		case "render-interval":
			cfg.RenderInterval = flags.RenderInterval
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "secret":
			cfg.InteractionSecret = flags.InteractionSecret
		}
	})

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DatabaseType != "sqlite" && c.DatabaseType != "postgres" {
		return fmt.Errorf("unsupported database type %q (use sqlite or postgres)", c.DatabaseType)
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// Secrets - MUST be provided
	if c.InteractionSecret == "" {
		return errors.New("INTERACTION_SECRET required")
	}

	if c.VoteWindow <= 0 {
		return fmt.Errorf("vote window must be positive, got %v", c.VoteWindow)
	}
	if c.FanoutLimit <= 0 {
		return fmt.Errorf("fanout limit must be positive, got %d", c.FanoutLimit)
	}
	if c.RenderInterval < 0 {
		return fmt.Errorf("render interval must not be negative, got %v", c.RenderInterval)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
