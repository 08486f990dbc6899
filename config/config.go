package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Price sources selectable with PRICE_SOURCE.
const (
	PriceSourceYahoo    = "yahoo"
	PriceSourcePostgres = "postgres"
)

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	PRICE_SOURCE=yahoo
//	MARKET_TIMEOUT=10s
//	SHARES_CACHE_TTL=1h
//	POSTGRES_HOST=localhost
//	POSTGRES_DB=stockpulse
type Config struct {
	Server    ServerConfig    // HTTP server configuration
	Market    MarketConfig    // Price and profile source
	Shares    SharesConfig    // Share count resolution
	Query     QueryConfig     // Fetch window sizing
	RateLimit RateLimitConfig // Per-client API rate limit
	Postgres  PostgresConfig  // PostgreSQL connection settings
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           string        // The TCP port the HTTP server listens on (e.g., "8080")
	RequestTimeout time.Duration // Upper bound on a request's context
}

// MarketConfig selects the price source and tunes the Yahoo client.
type MarketConfig struct {
	PriceSource string        // "yahoo" or "postgres"
	BaseURL     string        // Yahoo API base URL
	CookieURL   string        // Page that issues the session cookie for crumb negotiation
	Timeout     time.Duration // Per-request HTTP timeout
	RateLimit   int           // Outbound requests per second
	UserAgent   string
}

// SharesConfig tunes the share count resolver.
type SharesConfig struct {
	CacheTTL      time.Duration
	LookupTimeout time.Duration
}

// QueryConfig sizes the price windows around a request.
type QueryConfig struct {
	LookbackTradingDays int
	LookbackSlackDays   int
	ForwardBufferDays   int
}

// RateLimitConfig is the per-client token bucket of the HTTP API.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// PostgresConfig defines connection details for the price warehouse.
//
// Fields:
//   - Host: hostname of the database server.
//   - Port: port number of the database server (default 5432).
//   - User: username for authentication.
//   - Password: password for authentication.
//   - DBName: target database name.
//   - SSLMode: SSL mode (e.g., "disable", "require").
//   - URL: computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// DSN renders the connection string for database/sql.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and read throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// Missing required values terminate the process (see validateConfig).
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_REQUEST_TIMEOUT", "30s")

	viper.SetDefault("PRICE_SOURCE", PriceSourceYahoo)
	viper.SetDefault("YAHOO_BASE_URL", "https://query1.finance.yahoo.com")
	viper.SetDefault("YAHOO_COOKIE_URL", "https://fc.yahoo.com")
	viper.SetDefault("MARKET_TIMEOUT", "10s")
	viper.SetDefault("MARKET_RATE_LIMIT", 2)
	viper.SetDefault("MARKET_USER_AGENT", "Mozilla/5.0 (compatible; stockpulse/1.0)")

	viper.SetDefault("SHARES_CACHE_TTL", "1h")
	viper.SetDefault("SHARES_LOOKUP_TIMEOUT", "10s")

	viper.SetDefault("LOOKBACK_TRADING_DAYS", 3)
	viper.SetDefault("LOOKBACK_SLACK_DAYS", 4)
	viper.SetDefault("FORWARD_BUFFER_DAYS", 5)

	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "stockpulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			RequestTimeout: viper.GetDuration("SERVER_REQUEST_TIMEOUT"),
		},
		Market: MarketConfig{
			PriceSource: strings.ToLower(strings.TrimSpace(viper.GetString("PRICE_SOURCE"))),
			BaseURL:     viper.GetString("YAHOO_BASE_URL"),
			CookieURL:   viper.GetString("YAHOO_COOKIE_URL"),
			Timeout:     viper.GetDuration("MARKET_TIMEOUT"),
			RateLimit:   viper.GetInt("MARKET_RATE_LIMIT"),
			UserAgent:   viper.GetString("MARKET_USER_AGENT"),
		},
		Shares: SharesConfig{
			CacheTTL:      viper.GetDuration("SHARES_CACHE_TTL"),
			LookupTimeout: viper.GetDuration("SHARES_LOOKUP_TIMEOUT"),
		},
		Query: QueryConfig{
			LookbackTradingDays: viper.GetInt("LOOKBACK_TRADING_DAYS"),
			LookbackSlackDays:   viper.GetInt("LOOKBACK_SLACK_DAYS"),
			ForwardBufferDays:   viper.GetInt("FORWARD_BUFFER_DAYS"),
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
	}
	AppConfig.Postgres.URL = AppConfig.Postgres.DSN()

	validateConfig()
}

// validateConfig terminates the application when problems(AppConfig) reports anything.
func validateConfig() {
	if missing := problems(AppConfig); len(missing) > 0 {
		log.Fatalf("❌ Missing or invalid environment variables: %v\n", missing)
	}
}

// problems lists the variables that are missing or invalid in cfg.
// Postgres settings are only required when prices come from the warehouse.
func problems(cfg Config) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	switch cfg.Market.PriceSource {
	case PriceSourceYahoo:
		if cfg.Market.BaseURL == "" {
			missing = append(missing, "YAHOO_BASE_URL")
		}
	case PriceSourcePostgres:
		missing = append(missing, PostgresProblems(cfg.Postgres)...)
	default:
		missing = append(missing, "PRICE_SOURCE")
	}
	if cfg.Query.LookbackTradingDays < 1 {
		missing = append(missing, "LOOKBACK_TRADING_DAYS")
	}
	if cfg.Query.LookbackSlackDays < 0 {
		missing = append(missing, "LOOKBACK_SLACK_DAYS")
	}
	if cfg.Query.ForwardBufferDays < 1 {
		missing = append(missing, "FORWARD_BUFFER_DAYS")
	}
	return missing
}

// PostgresProblems lists the missing warehouse settings. The ingest mode checks
// them regardless of PRICE_SOURCE.
func PostgresProblems(p PostgresConfig) []string {
	var missing []string
	if p.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if p.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if p.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if p.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if p.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	return missing
}
