package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. VALUE_BETTER_BETTING_BANKROLL
const EnvPrefix = "VALUE_BETTER"

// DefaultPath is used when no config path is given
const DefaultPath = "config/config.yaml"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields. A
// missing file is not an error: defaults and environment variables are used instead.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults mirrors config/config.example.yaml
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "value-better")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("logging.format", "")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 14)

	v.SetDefault("odds_api.provider", "the_odds_api")
	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com")
	v.SetDefault("odds_api.api_key", "")
	v.SetDefault("odds_api.fixture_path", "")
	v.SetDefault("odds_api.sport", "soccer_epl")
	v.SetDefault("odds_api.regions", []string{"uk"})
	v.SetDefault("odds_api.markets", []string{"h2h", "totals"})
	v.SetDefault("odds_api.odds_format", "decimal")
	v.SetDefault("odds_api.timeout_seconds", 30)
	v.SetDefault("odds_api.max_retries", 3)
	v.SetDefault("odds_api.rate_limit", 1.0)
	v.SetDefault("odds_api.circuit_breaker_max", 5)
	v.SetDefault("odds_api.circuit_breaker_cooldown_seconds", 60)
	v.SetDefault("odds_api.cache_ttl_seconds", 60)

	v.SetDefault("betting.bankroll", 1000.0)
	v.SetDefault("betting.strategy", "frequency")
	v.SetDefault("betting.kelly_multiplier", 1.0)
	v.SetDefault("betting.max_stake_fraction", 1.0)
	v.SetDefault("betting.min_edge", 0.0)
	v.SetDefault("betting.workers", 1)
	v.SetDefault("betting.top_n", 10)

	v.SetDefault("history.source", "sample")
	v.SetDefault("history.csv_path", "")
	v.SetDefault("history.fallback.home", 0.33)
	v.SetDefault("history.fallback.draw", 0.33)
	v.SetDefault("history.fallback.away", 0.34)

	v.SetDefault("classifier.learning_rate", 0.5)
	v.SetDefault("classifier.epochs", 500)
	v.SetDefault("classifier.l2", 0.001)

	v.SetDefault("database.host", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("schedule.cron", "*/15 * * * *")
	v.SetDefault("schedule.run_on_start", true)

	v.SetDefault("aws.region", "")
	v.SetDefault("aws.secret_name", "")
}
