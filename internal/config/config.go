package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the server's full runtime configuration. Values resolve in
// order: defaults, then the optional YAML file named by CONFIG_PATH,
// then environment variables.
type Config struct {
	Addr        string `yaml:"addr"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
	SeedPath    string `yaml:"seed_path"`

	ORSAPIKey  string `yaml:"ors_api_key"`
	ORSBaseURL string `yaml:"ors_base_url"`

	RedisAddr     string        `yaml:"redis_addr"`
	RouteCacheTTL time.Duration `yaml:"route_cache_ttl"`

	AverageSpeedMPH   float64       `yaml:"average_speed_mph"`
	FuelIntervalMiles float64       `yaml:"fuel_interval_miles"`
	ProviderTimeout   time.Duration `yaml:"provider_timeout"`
}

func defaults() Config {
	return Config{
		Addr:              ":8080",
		SQLitePath:        "eld.db",
		ORSBaseURL:        "https://api.openrouteservice.org",
		RouteCacheTTL:     24 * time.Hour,
		AverageSpeedMPH:   55,
		FuelIntervalMiles: 1000,
		ProviderTimeout:   15 * time.Second,
	}
}

// Load resolves the configuration. A missing config file is only an
// error when CONFIG_PATH explicitly names one.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("load config: parse %q: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Addr, "ADDR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.SeedPath, "SEED_PATH")
	setString(&cfg.ORSAPIKey, "ORS_API_KEY")
	setString(&cfg.ORSBaseURL, "ORS_BASE_URL")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setDuration(&cfg.RouteCacheTTL, "ROUTE_CACHE_TTL")
	setFloat(&cfg.AverageSpeedMPH, "AVERAGE_SPEED_MPH")
	setFloat(&cfg.FuelIntervalMiles, "FUEL_INTERVAL_MILES")
	setDuration(&cfg.ProviderTimeout, "PROVIDER_TIMEOUT")
}

func (c Config) validate() error {
	if c.AverageSpeedMPH <= 0 {
		return fmt.Errorf("load config: average_speed_mph must be positive, got %v", c.AverageSpeedMPH)
	}
	if c.FuelIntervalMiles <= 0 {
		return fmt.Errorf("load config: fuel_interval_miles must be positive, got %v", c.FuelIntervalMiles)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("load config: provider_timeout must be positive, got %v", c.ProviderTimeout)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
