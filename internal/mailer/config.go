// File path: internal/mailer/config.go
package mailer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	TLSOpportunistic = "opportunistic"
	TLSMandatory     = "mandatory"
	TLSNone          = "none"
	TLSImplicit      = "ssl"
)

// Config holds the SMTP relay settings.
type Config struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	From      string `json:"from"`
	TLSPolicy string `json:"tls_policy"`

	Timeout       time.Duration `json:"-"`
	TimeoutString string        `json:"timeout"`
}

func DefaultConfig() Config {
	return Config{
		Port:      587,
		From:      "AnimAlert <no-reply@animalert.ro>",
		TLSPolicy: TLSOpportunistic,
		Timeout:   30 * time.Second,
	}
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Host) != "" {
		result.Host = strings.TrimSpace(override.Host)
	}
	if override.Port > 0 {
		result.Port = override.Port
	}
	if strings.TrimSpace(override.Username) != "" {
		result.Username = strings.TrimSpace(override.Username)
	}
	if override.Password != "" {
		result.Password = override.Password
	}
	if strings.TrimSpace(override.From) != "" {
		result.From = strings.TrimSpace(override.From)
	}
	if strings.TrimSpace(override.TLSPolicy) != "" {
		result.TLSPolicy = strings.ToLower(strings.TrimSpace(override.TLSPolicy))
	}
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	if strings.TrimSpace(override.TimeoutString) != "" {
		if parsed, err := time.ParseDuration(strings.TrimSpace(override.TimeoutString)); err == nil && parsed > 0 {
			result.Timeout = parsed
		}
	}
	return result
}

// LoadConfig reads SMTP_CONFIG_FILE (JSON) when set, then SMTP_*
// environment variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if path := strings.TrimSpace(os.Getenv("SMTP_CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("read smtp config: %w", err)
		}
		var fileCfg Config
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse smtp config: %w", err)
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg := Config{
		Host:          os.Getenv("SMTP_HOST"),
		Username:      os.Getenv("SMTP_USERNAME"),
		Password:      os.Getenv("SMTP_PASSWORD"),
		From:          os.Getenv("SMTP_FROM"),
		TLSPolicy:     os.Getenv("SMTP_TLS_POLICY"),
		TimeoutString: os.Getenv("SMTP_TIMEOUT"),
	}
	if port := strings.TrimSpace(os.Getenv("SMTP_PORT")); port != "" {
		value, err := strconv.Atoi(port)
		if err != nil {
			return Config{}, fmt.Errorf("parse SMTP_PORT: %w", err)
		}
		envCfg.Port = value
	}
	cfg = cfg.Merge(envCfg)
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.TLSPolicy {
	case TLSOpportunistic, TLSMandatory, TLSNone, TLSImplicit:
	default:
		return fmt.Errorf("unsupported smtp tls policy %q", c.TLSPolicy)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid smtp port %d", c.Port)
	}
	return nil
}

// Enabled reports whether a relay host is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Host) != ""
}
