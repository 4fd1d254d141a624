package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the SLH community bot.
type Config struct {
	AppEnv string `mapstructure:"-"`

	Logger    LoggerConfig    `mapstructure:"logger" validate:"required"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Storage   StorageConfig   `mapstructure:"storage" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Ledger    LedgerConfig    `mapstructure:"ledger" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Server    ServerConfig    `mapstructure:"server"`
}

// LoggerConfig controls the slog handler construction.
type LoggerConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=text json"`

	// File enables lumberjack rotation when non-empty; stdout otherwise.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig controls error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

// StorageConfig picks the ledger store backend.
type StorageConfig struct {
	// Driver is "postgres" for real runs, "memory" for DB-less demos.
	Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
}

// DatabaseConfig describes the PostgreSQL connection.
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          string `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Name          string `mapstructure:"name"`
	SSLMode       string `mapstructure:"sslmode"`
	MigrationsDir string `mapstructure:"migrations_dir"`
}

// DSN returns the PostgreSQL connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig describes the cache/rate-limit Redis instance.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

// LedgerConfig carries the wallet ledger tunables.
type LedgerConfig struct {
	// FaucetToken is the default token symbol (and faucet currency).
	FaucetToken string `mapstructure:"faucet_token" validate:"required"`
	// FaucetAmount is the fixed faucet credit, as a decimal string.
	FaucetAmount string `mapstructure:"faucet_amount" validate:"required"`
	// HistoryLimit caps /wallet transaction history replies.
	HistoryLimit int `mapstructure:"history_limit"`
	// ReconcileInterval is how often the background sweep verifies
	// balances against the transaction log. Zero disables it.
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
}

// RateLimitRule is one limit/window pair.
type RateLimitRule struct {
	Limit  int           `mapstructure:"limit"`
	Window time.Duration `mapstructure:"window"`
}

// RateLimitConfig throttles the command layer.
type RateLimitConfig struct {
	// PerUser limits how many commands one user may issue per window.
	PerUser RateLimitRule `mapstructure:"per_user"`
	// FaucetCooldown is the minimum gap between faucet calls per user.
	// Zero disables the cooldown.
	FaucetCooldown time.Duration `mapstructure:"faucet_cooldown"`
	// Whitelist lists chat ids that bypass all limits.
	Whitelist []int64 `mapstructure:"whitelist"`
}

// ServerConfig describes the ops HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}
