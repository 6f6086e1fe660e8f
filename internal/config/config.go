package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/trivianight.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// SessionID selects which game document tree this server manages.
	// One process hosts one live session.
	SessionID string `env:"SESSION_ID" envDefault:"main"`

	// PlayKeyHash is the bcrypt hash of the shared key players enter to
	// unlock the game. Empty disables the gate entirely.
	PlayKeyHash string `env:"PLAY_KEY_HASH"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
