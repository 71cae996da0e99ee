// Package config loads service configuration from environment variables so
// main stays lean. Amount fields are decimal strings parsed into uint256 by
// the caller to keep this package free of domain imports.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Registrar captures economic policy for the name registrar.
type Registrar struct {
	// Account is the registrar's own ledger account: fees are credited to it
	// and faucet grants are debited from it.
	Account string `env:"REGISTRAR_ACCOUNT" envDefault:"0x00000000000000000000000000000000000000f1"`
	// Fee is the amount locked per registration or reassignment.
	Fee string `env:"REGISTRAR_FEE" envDefault:"1000000000000000000"`
	// Threshold is the minimum balance required to register or reassign.
	// Deliberately larger than Fee: an eligibility gate, not a price.
	Threshold string `env:"REGISTRAR_THRESHOLD" envDefault:"5000000000000000000"`
	// FaucetAmount is the fixed grant handed out by the test-token faucet.
	FaucetAmount string `env:"REGISTRAR_FAUCET_AMOUNT" envDefault:"10000000000000000000"`
	// CorrectedTransfer selects corrected ownership-transfer linkage instead
	// of the literal legacy behavior. See DESIGN.md.
	CorrectedTransfer bool `env:"REGISTRAR_CORRECTED_TRANSFER" envDefault:"false"`
}

// Redis captures cache connection settings. An empty URL disables caching.
type Redis struct {
	URL          string        `env:"REGISTRAR_REDIS_URL"`
	PoolSize     int           `env:"REGISTRAR_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REGISTRAR_REDIS_MIN_IDLE" envDefault:"2"`
	DialTimeout  time.Duration `env:"REGISTRAR_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REGISTRAR_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REGISTRAR_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	CacheTTL     time.Duration `env:"REGISTRAR_REDIS_CACHE_TTL" envDefault:"5m"`
}

// Kafka captures event sink settings. Empty brokers disables the sink and
// events stay in memory.
type Kafka struct {
	Brokers []string `env:"REGISTRAR_KAFKA_BROKERS" envSeparator:","`
	Topic   string   `env:"REGISTRAR_KAFKA_TOPIC" envDefault:"registrar.events"`
}

// Server is the top-level configuration for the registrar service.
type Server struct {
	Addr            string        `env:"REGISTRAR_ADDR" envDefault:":8080"`
	JWTSigningKey   string        `env:"REGISTRAR_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	PostgresURL     string        `env:"REGISTRAR_POSTGRES_URL"`
	ShutdownTimeout time.Duration `env:"REGISTRAR_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Registrar Registrar
	Redis     Redis
	Kafka     Kafka
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
