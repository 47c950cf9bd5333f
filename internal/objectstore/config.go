// File path: internal/objectstore/config.go
package objectstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config addresses the S3 bucket documents are stored in. Endpoint and
// ForcePathStyle allow S3-compatible stores such as MinIO.
type Config struct {
	Bucket          string `json:"bucket"`
	Region          string `json:"region"`
	Endpoint        string `json:"endpoint"`
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
	ForcePathStyle  bool   `json:"force_path_style"`

	PresignTTL       time.Duration `json:"-"`
	PresignTTLString string        `json:"presign_ttl"`

	// MaxObjectBytes caps how much of an object Get reads into memory.
	MaxObjectBytes int64 `json:"max_object_bytes"`
}

func DefaultConfig() Config {
	return Config{
		Region:         "eu-central-1",
		PresignTTL:     15 * time.Minute,
		MaxObjectBytes: 25 << 20,
	}
}

func (c Config) Merge(override Config) Config {
	result := c
	if strings.TrimSpace(override.Bucket) != "" {
		result.Bucket = strings.TrimSpace(override.Bucket)
	}
	if strings.TrimSpace(override.Region) != "" {
		result.Region = strings.TrimSpace(override.Region)
	}
	if strings.TrimSpace(override.Endpoint) != "" {
		result.Endpoint = strings.TrimRight(strings.TrimSpace(override.Endpoint), "/")
	}
	if strings.TrimSpace(override.AccessKeyID) != "" {
		result.AccessKeyID = strings.TrimSpace(override.AccessKeyID)
	}
	if override.SecretAccessKey != "" {
		result.SecretAccessKey = override.SecretAccessKey
	}
	if override.ForcePathStyle {
		result.ForcePathStyle = true
	}
	if override.PresignTTL > 0 {
		result.PresignTTL = override.PresignTTL
	}
	if strings.TrimSpace(override.PresignTTLString) != "" {
		if parsed, err := time.ParseDuration(strings.TrimSpace(override.PresignTTLString)); err == nil && parsed > 0 {
			result.PresignTTL = parsed
		}
	}
	if override.MaxObjectBytes > 0 {
		result.MaxObjectBytes = override.MaxObjectBytes
	}
	return result
}

// LoadConfig reads S3_CONFIG_FILE (JSON) when set, then S3_* environment
// variables. Credentials fall back to the AWS default chain when unset.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if path := strings.TrimSpace(os.Getenv("S3_CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("read s3 config: %w", err)
		}
		var fileCfg Config
		if err := json.Unmarshal(data, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("parse s3 config: %w", err)
		}
		cfg = cfg.Merge(fileCfg)
	}
	envCfg := Config{
		Bucket:           os.Getenv("S3_BUCKET"),
		Region:           os.Getenv("S3_REGION"),
		Endpoint:         os.Getenv("S3_ENDPOINT"),
		AccessKeyID:      os.Getenv("S3_ACCESS_KEY_ID"),
		SecretAccessKey:  os.Getenv("S3_SECRET_ACCESS_KEY"),
		PresignTTLString: os.Getenv("S3_PRESIGN_TTL"),
	}
	if raw := strings.TrimSpace(os.Getenv("S3_FORCE_PATH_STYLE")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse S3_FORCE_PATH_STYLE: %w", err)
		}
		envCfg.ForcePathStyle = value
	}
	if raw := strings.TrimSpace(os.Getenv("S3_MAX_OBJECT_BYTES")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse S3_MAX_OBJECT_BYTES: %w", err)
		}
		envCfg.MaxObjectBytes = value
	}
	return cfg.Merge(envCfg), nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("s3 bucket required")
	}
	if strings.TrimSpace(c.Region) == "" {
		return fmt.Errorf("s3 region required")
	}
	return nil
}
