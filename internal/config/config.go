// Package config provides configuration management for the value-better application.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	OddsAPI    OddsAPIConfig    `mapstructure:"odds_api" validate:"required"`
	Betting    BettingConfig    `mapstructure:"betting" validate:"required"`
	History    HistoryConfig    `mapstructure:"history" validate:"required"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	AWS        AWSConfig        `mapstructure:"aws"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// LoggingConfig represents log output configuration
type LoggingConfig struct {
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// OddsAPIConfig represents the odds source configuration
type OddsAPIConfig struct {
	Provider          string   `mapstructure:"provider" validate:"required,oneof=the_odds_api file"`
	BaseURL           string   `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey            string   `mapstructure:"api_key"`
	FixturePath       string   `mapstructure:"fixture_path" validate:"required_if=Provider file"`
	Sport             string   `mapstructure:"sport" validate:"required"`
	Regions           []string `mapstructure:"regions" validate:"required,min=1"`
	Markets           []string `mapstructure:"markets" validate:"required,min=1,markets"`
	OddsFormat        string   `mapstructure:"odds_format" validate:"required,oddsformat"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds" validate:"gt=0"`
	MaxRetries        int      `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit         float64  `mapstructure:"rate_limit" validate:"gt=0"`
	CircuitBreakerMax int      `mapstructure:"circuit_breaker_max" validate:"gt=0"`
	CooldownSeconds   int      `mapstructure:"circuit_breaker_cooldown_seconds" validate:"gte=0"`
	CacheTTLSeconds   int      `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
}

// BettingConfig represents engine inputs
type BettingConfig struct {
	Bankroll         float64 `mapstructure:"bankroll" validate:"required,gt=0"`
	Strategy         string  `mapstructure:"strategy" validate:"required,strategy"`
	KellyMultiplier  float64 `mapstructure:"kelly_multiplier" validate:"gt=0,lte=1"`
	MaxStakeFraction float64 `mapstructure:"max_stake_fraction" validate:"gt=0,lte=1"`
	MinEdge          float64 `mapstructure:"min_edge" validate:"gte=0"`
	Workers          int     `mapstructure:"workers" validate:"gte=1,lte=64"`
	TopN             int     `mapstructure:"top_n" validate:"gte=0"`
}

// HistoryConfig represents the historical results source
type HistoryConfig struct {
	Source   string         `mapstructure:"source" validate:"required,oneof=sample csv postgres"`
	CSVPath  string         `mapstructure:"csv_path" validate:"required_if=Source csv"`
	League   string         `mapstructure:"league"`
	Limit    int            `mapstructure:"limit" validate:"gte=0"`
	Fallback FallbackConfig `mapstructure:"fallback"`
}

// FallbackConfig holds the probabilities used for results absent from history
type FallbackConfig struct {
	Home float64 `mapstructure:"home" validate:"gt=0,lt=1"`
	Draw float64 `mapstructure:"draw" validate:"gt=0,lt=1"`
	Away float64 `mapstructure:"away" validate:"gt=0,lt=1"`
}

// ClassifierConfig represents classifier training configuration
type ClassifierConfig struct {
	LearningRate float64 `mapstructure:"learning_rate" validate:"gte=0"`
	Epochs       int     `mapstructure:"epochs" validate:"gte=0"`
	L2           float64 `mapstructure:"l2" validate:"gte=0"`
}

// DatabaseConfig represents database connection configuration. It is only required
// when history is read from Postgres.
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"gte=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"gte=0"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig represents watch mode scheduling
type ScheduleConfig struct {
	Cron       string `mapstructure:"cron"`
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// AWSConfig represents the optional Secrets Manager overlay
type AWSConfig struct {
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// UsesSecretsManager reports whether secrets should be overlaid from AWS
func (c *Config) UsesSecretsManager() bool {
	return c.AWS.Region != "" && c.AWS.SecretName != ""
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// CacheTTL returns the odds response cache lifetime
func (c *OddsAPIConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// CircuitBreakerCooldown returns how long a tripped breaker waits before a trial request
func (c *OddsAPIConfig) CircuitBreakerCooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// Timeout returns the per-request HTTP timeout
func (c *OddsAPIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
