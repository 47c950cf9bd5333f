// File path: internal/data/orchestrator/config.go
package orchestrator

import (
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/animalert/animalert/internal/complaint"
)

// Config controls how the orchestrator assembles the complaint pipeline.
type Config struct {
	ListenAddr       string
	OversightEmail   string
	DefaultRecipient string
	MaxEmailBytes    int
	EmailTimeout     time.Duration
	RenderTimeout    time.Duration
	// RawPlaceholders lists template keys substituted without escaping.
	RawPlaceholders []string
}

// DefaultConfig returns the baseline configuration used when no overrides are
// supplied.
func DefaultConfig() Config {
	defaults := complaint.DefaultConfig()
	return Config{
		ListenAddr:    ":8080",
		MaxEmailBytes: defaults.MaxEmailBytes,
		EmailTimeout:  defaults.EmailTimeout,
		RenderTimeout: defaults.RenderTimeout,
	}
}

// LoadConfig builds a Config from defaults and ANIMALERT_* environment
// variables.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if value := strings.TrimSpace(os.Getenv("ANIMALERT_LISTEN_ADDR")); value != "" {
		cfg.ListenAddr = value
	}
	if value := strings.TrimSpace(os.Getenv("ANIMALERT_OVERSIGHT_EMAIL")); value != "" {
		cfg.OversightEmail = value
	}
	if value := strings.TrimSpace(os.Getenv("ANIMALERT_DEFAULT_RECIPIENT")); value != "" {
		cfg.DefaultRecipient = value
	}
	if value := strings.TrimSpace(os.Getenv("ANIMALERT_MAX_EMAIL_BYTES")); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse ANIMALERT_MAX_EMAIL_BYTES: %w", err)
		}
		cfg.MaxEmailBytes = n
	}
	if value := strings.TrimSpace(os.Getenv("ANIMALERT_EMAIL_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse ANIMALERT_EMAIL_TIMEOUT: %w", err)
		}
		cfg.EmailTimeout = dur
	}
	if value := strings.TrimSpace(os.Getenv("ANIMALERT_RENDER_TIMEOUT")); value != "" {
		dur, err := time.ParseDuration(value)
		if err != nil {
			return Config{}, fmt.Errorf("parse ANIMALERT_RENDER_TIMEOUT: %w", err)
		}
		cfg.RenderTimeout = dur
	}
	if value := strings.TrimSpace(os.Getenv("ANIMALERT_RAW_PLACEHOLDERS")); value != "" {
		for _, key := range strings.Split(value, ",") {
			if key = strings.TrimSpace(key); key != "" {
				cfg.RawPlaceholders = append(cfg.RawPlaceholders, key)
			}
		}
	}
	cfg = applyDefaults(cfg)
	return cfg, cfg.validate()
}

func applyDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = defaults.ListenAddr
	}
	if cfg.MaxEmailBytes <= 0 {
		cfg.MaxEmailBytes = defaults.MaxEmailBytes
	}
	if cfg.EmailTimeout <= 0 {
		cfg.EmailTimeout = defaults.EmailTimeout
	}
	if cfg.RenderTimeout <= 0 {
		cfg.RenderTimeout = defaults.RenderTimeout
	}
	return cfg
}

func (c Config) validate() error {
	for name, addr := range map[string]string{"oversight email": c.OversightEmail, "default recipient": c.DefaultRecipient} {
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, addr, err)
		}
	}
	if c.MaxEmailBytes <= 0 {
		return fmt.Errorf("max email bytes must be positive")
	}
	if c.EmailTimeout <= 0 {
		return fmt.Errorf("email timeout must be positive")
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("render timeout must be positive")
	}
	return nil
}

func (c Config) complaintConfig() complaint.Config {
	return complaint.Config{
		OversightEmail:   c.OversightEmail,
		DefaultRecipient: c.DefaultRecipient,
		MaxEmailBytes:    c.MaxEmailBytes,
		EmailTimeout:     c.EmailTimeout,
		RenderTimeout:    c.RenderTimeout,
		RawPlaceholders:  c.RawPlaceholders,
	}
}
