package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Venue    VenueConfig    `yaml:"venue"`
	Rules    Rules          `yaml:"rules"`
	Lock     LockConfig     `yaml:"lock"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`

	CacheTTL time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// VenueConfig describes the single venue whose calendar is managed.
type VenueConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`

	Location *time.Location `yaml:"-"`
}

// Rules holds the business constants shared by the availability engine,
// the booking workflow and the edit policy.
type Rules struct {
	MinAdvanceDays   int `yaml:"min_advance_days"`
	MinGapHours      int `yaml:"min_gap_hours"`
	MinGuests        int `yaml:"min_guests"`
	FullEditDays     int `yaml:"full_edit_days"`
	CosmeticEditDays int `yaml:"cosmetic_edit_days"`
	MinSlotMinutes   int `yaml:"min_slot_minutes"`

	MinGap  time.Duration `yaml:"-"`
	MinSlot time.Duration `yaml:"-"`
}

// LockConfig selects the advisory lock backend used around booking writes.
type LockConfig struct {
	Backend            string `yaml:"backend"` // memory or redis
	RedisAddr          string `yaml:"redis_addr"`
	RedisPassword      string `yaml:"redis_password"`
	RedisDB            int    `yaml:"redis_db"`
	TTLSeconds         int    `yaml:"ttl_seconds"`
	WaitTimeoutSeconds int    `yaml:"wait_timeout_seconds"`

	TTL         time.Duration `yaml:"-"`
	WaitTimeout time.Duration `yaml:"-"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultRules returns the venue's standard business constants.
func DefaultRules() Rules {
	r := Rules{
		MinAdvanceDays:   15,
		MinGapHours:      10,
		MinGuests:        70,
		FullEditDays:     15,
		CosmeticEditDays: 3,
		MinSlotMinutes:   60,
	}
	r.derive()
	return r
}

func (r *Rules) derive() {
	r.MinGap = time.Duration(r.MinGapHours) * time.Hour
	r.MinSlot = time.Duration(r.MinSlotMinutes) * time.Minute
}

// Validate reports inconsistent business constants.
func (r Rules) Validate() error {
	if r.MinGapHours < 0 {
		return fmt.Errorf("rules.min_gap_hours must not be negative (got %d)", r.MinGapHours)
	}
	if r.MinSlotMinutes <= 0 {
		return fmt.Errorf("rules.min_slot_minutes must be positive (got %d)", r.MinSlotMinutes)
	}
	if r.CosmeticEditDays > r.FullEditDays {
		return fmt.Errorf("rules.cosmetic_edit_days (%d) must not exceed rules.full_edit_days (%d)", r.CosmeticEditDays, r.FullEditDays)
	}
	return nil
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Unset rule keys keep their standard values.
	cfg := Config{Rules: DefaultRules()}
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv lets deployment environments override connection settings without editing the file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Lock.RedisAddr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
}

func (cfg *Config) finalize() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite (got %q)", cfg.Database.Driver)
	}

	if cfg.Venue.Timezone == "" {
		cfg.Venue.Timezone = "UTC"
	}
	loc, err := time.LoadLocation(cfg.Venue.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load venue timezone %q: %w", cfg.Venue.Timezone, err)
	}
	cfg.Venue.Location = loc

	cfg.Rules.derive()
	if err := cfg.Rules.Validate(); err != nil {
		return err
	}

	if cfg.Lock.Backend == "" {
		cfg.Lock.Backend = "memory"
	}
	if cfg.Lock.Backend != "memory" && cfg.Lock.Backend != "redis" {
		return fmt.Errorf("lock.backend must be memory or redis (got %q)", cfg.Lock.Backend)
	}
	if cfg.Lock.TTLSeconds <= 0 {
		cfg.Lock.TTLSeconds = 30
	}
	if cfg.Lock.WaitTimeoutSeconds <= 0 {
		cfg.Lock.WaitTimeoutSeconds = 5
	}
	cfg.Lock.TTL = time.Duration(cfg.Lock.TTLSeconds) * time.Second
	cfg.Lock.WaitTimeout = time.Duration(cfg.Lock.WaitTimeoutSeconds) * time.Second

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	return nil
}
