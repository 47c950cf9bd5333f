// File path: internal/render/config.go
package render

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config controls the headless Chrome used for PDF rendering.
type Config struct {
	// Bin is the browser executable. Empty lets the launcher find or
	// download one.
	Bin           string
	NoSandbox     bool
	Timeout       time.Duration
	IdleWait      time.Duration
	MaxConcurrent int
}

func DefaultConfig() Config {
	return Config{
		Timeout:       60 * time.Second,
		IdleWait:      300 * time.Millisecond,
		MaxConcurrent: 4,
	}
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Bin) != "" {
		result.Bin = strings.TrimSpace(override.Bin)
	}
	if override.NoSandbox {
		result.NoSandbox = true
	}
	if override.Timeout > 0 {
		result.Timeout = override.Timeout
	}
	if override.IdleWait > 0 {
		result.IdleWait = override.IdleWait
	}
	if override.MaxConcurrent > 0 {
		result.MaxConcurrent = override.MaxConcurrent
	}
	return result
}

// LoadConfig overlays RENDER_* environment variables on DefaultConfig.
func LoadConfig() (Config, error) {
	env := Config{Bin: os.Getenv("RENDER_BIN")}
	if raw := strings.TrimSpace(os.Getenv("RENDER_NO_SANDBOX")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse RENDER_NO_SANDBOX: %w", err)
		}
		env.NoSandbox = value
	}
	if raw := strings.TrimSpace(os.Getenv("RENDER_TIMEOUT")); raw != "" {
		value, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse RENDER_TIMEOUT: %w", err)
		}
		env.Timeout = value
	}
	if raw := strings.TrimSpace(os.Getenv("RENDER_IDLE_WAIT")); raw != "" {
		value, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse RENDER_IDLE_WAIT: %w", err)
		}
		env.IdleWait = value
	}
	if raw := strings.TrimSpace(os.Getenv("RENDER_MAX_CONCURRENT")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse RENDER_MAX_CONCURRENT: %w", err)
		}
		env.MaxConcurrent = value
	}
	return DefaultConfig().Merge(env), nil
}
