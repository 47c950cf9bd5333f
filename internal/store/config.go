// File path: internal/store/config.go
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config selects the SQL backend and tunes its connection pool. SQLite is
// addressed by Path, MySQL by DSN.
type Config struct {
	Driver string `json:"driver"`
	Path   string `json:"path"`
	DSN    string `json:"dsn"`

	MaxOpenConns int `json:"max_open_conns"`
	MaxIdleConns int `json:"max_idle_conns"`

	ConnMaxLifetime       time.Duration `json:"-"`
	ConnMaxLifetimeString string        `json:"conn_max_lifetime"`

	ConnMaxIdleTime       time.Duration `json:"-"`
	ConnMaxIdleTimeString string        `json:"conn_max_idle_time"`

	BusyTimeout       time.Duration `json:"-"`
	BusyTimeoutString string        `json:"busy_timeout"`
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Driver) != "" {
		result.Driver = strings.ToLower(strings.TrimSpace(override.Driver))
	}
	if strings.TrimSpace(override.Path) != "" {
		result.Path = strings.TrimSpace(override.Path)
	}
	if strings.TrimSpace(override.DSN) != "" {
		result.DSN = strings.TrimSpace(override.DSN)
	}
	if override.MaxOpenConns > 0 {
		result.MaxOpenConns = override.MaxOpenConns
	}
	if override.MaxIdleConns > 0 {
		result.MaxIdleConns = override.MaxIdleConns
	}
	if override.ConnMaxLifetime > 0 {
		result.ConnMaxLifetime = override.ConnMaxLifetime
	}
	if strings.TrimSpace(override.ConnMaxLifetimeString) != "" {
		result.ConnMaxLifetimeString = strings.TrimSpace(override.ConnMaxLifetimeString)
	}
	if override.ConnMaxIdleTime > 0 {
		result.ConnMaxIdleTime = override.ConnMaxIdleTime
	}
	if strings.TrimSpace(override.ConnMaxIdleTimeString) != "" {
		result.ConnMaxIdleTimeString = strings.TrimSpace(override.ConnMaxIdleTimeString)
	}
	if override.BusyTimeout > 0 {
		result.BusyTimeout = override.BusyTimeout
	}
	if strings.TrimSpace(override.BusyTimeoutString) != "" {
		result.BusyTimeoutString = strings.TrimSpace(override.BusyTimeoutString)
	}
	return result
}

// LoadConfig reads DB_CONFIG_FILE (JSON) when set, then overlays DB_*
// environment variables and fills defaults.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("DB_CONFIG_FILE")); path != "" {
		fileCfg, err := loadConfigFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg, err := loadConfigEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(envCfg)
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Driver) == "" {
		c.Driver = DriverSQLite
	}
	if c.Driver == DriverSQLite && strings.TrimSpace(c.Path) == "" {
		c.Path = filepath.Join("data", "animalert.db")
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 8
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = c.MaxOpenConns
	}
	c.ConnMaxLifetime = durationOrDefault(c.ConnMaxLifetime, c.ConnMaxLifetimeString, 15*time.Minute)
	c.ConnMaxIdleTime = durationOrDefault(c.ConnMaxIdleTime, c.ConnMaxIdleTimeString, 5*time.Minute)
	// Submissions hold the write lock only for the final insert, but bursts
	// still queue behind each other.
	c.BusyTimeout = durationOrDefault(c.BusyTimeout, c.BusyTimeoutString, 15*time.Second)
}

func (c Config) validate() error {
	switch c.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Path) == "" {
			return fmt.Errorf("sqlite path required")
		}
	case DriverMySQL:
		if strings.TrimSpace(c.DSN) == "" {
			return fmt.Errorf("mysql dsn required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	return nil
}

func durationOrDefault(current time.Duration, raw string, fallback time.Duration) time.Duration {
	if current > 0 {
		return current
	}
	if raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func loadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read database config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse database config: %w", err)
	}
	return cfg, nil
}

func loadConfigEnv() (Config, error) {
	cfg := Config{
		Driver: strings.TrimSpace(os.Getenv("DB_DRIVER")),
		Path:   strings.TrimSpace(os.Getenv("DB_PATH")),
		DSN:    strings.TrimSpace(os.Getenv("DB_DSN")),
	}
	if openConns := strings.TrimSpace(os.Getenv("DB_MAX_OPEN_CONNS")); openConns != "" {
		value, err := strconv.Atoi(openConns)
		if err != nil {
			return Config{}, fmt.Errorf("parse DB_MAX_OPEN_CONNS: %w", err)
		}
		cfg.MaxOpenConns = value
	}
	if idleConns := strings.TrimSpace(os.Getenv("DB_MAX_IDLE_CONNS")); idleConns != "" {
		value, err := strconv.Atoi(idleConns)
		if err != nil {
			return Config{}, fmt.Errorf("parse DB_MAX_IDLE_CONNS: %w", err)
		}
		cfg.MaxIdleConns = value
	}
	cfg.ConnMaxLifetimeString = strings.TrimSpace(os.Getenv("DB_CONN_MAX_LIFETIME"))
	cfg.ConnMaxIdleTimeString = strings.TrimSpace(os.Getenv("DB_CONN_MAX_IDLE_TIME"))
	if busy := strings.TrimSpace(os.Getenv("DB_BUSY_TIMEOUT")); busy != "" {
		parsed, err := time.ParseDuration(busy)
		if err != nil {
			return Config{}, fmt.Errorf("parse DB_BUSY_TIMEOUT: %w", err)
		}
		cfg.BusyTimeout = parsed
	}
	return cfg, nil
}
