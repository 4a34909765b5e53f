// Package config loads application configuration from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

// Config holds the application configuration loaded from environment variables.
// Every variable has a working default: a first run with an empty environment
// creates the database and key file next to the binary and serves the API on
// loopback only.
type Config struct {
	// ListenAddr is the address the local API binds. It defaults to loopback;
	// exposing the vault beyond the local machine is a deliberate operator
	// decision.
	ListenAddr string `env:"OTPVAULT_LISTEN_ADDR" envDefault:"127.0.0.1:8337"`

	// DBPath is the SQLite database file holding encrypted accounts.
	DBPath string `env:"OTPVAULT_DB_PATH" envDefault:"otpvault.db"`

	// KeyPath is the master key file. Whoever can read it can decrypt the
	// database; it is the sole long-term secret of the system.
	KeyPath string `env:"OTPVAULT_KEY_PATH" envDefault:"otpvault.key"`

	// MinSecretBytes is the smallest decoded Base32 secret accepted at
	// enrollment. Ten bytes (80 bits) matches common authenticator minimums;
	// lower it only to enroll services that issue shorter secrets.
	MinSecretBytes int `env:"OTPVAULT_MIN_SECRET_BYTES" envDefault:"10"`
}

// Load reads configuration from OTPVAULT_ environment variables (and a .env
// file when present) and returns a validated Config.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.MinSecretBytes < 1 {
		return nil, fmt.Errorf("OTPVAULT_MIN_SECRET_BYTES must be at least 1, got %d", cfg.MinSecretBytes)
	}

	return &cfg, nil
}
