package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Storage     StorageConfig     `yaml:"storage"`
	Directory   DirectoryConfig   `yaml:"directory"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Related     RelatedConfig     `yaml:"related"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// AuthConfig drives token issuance and verification.
type AuthConfig struct {
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Postgres PostgresConfig `yaml:"postgres"`
	Pebble   PebbleConfig   `yaml:"pebble"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// PebbleConfig locates the embedded document store.
type PebbleConfig struct {
	Path string `yaml:"path"`
}

// DirectoryConfig controls profile resolution.
type DirectoryConfig struct {
	Cache CacheConfig `yaml:"cache"`
}

// CacheConfig contains connection information for the profile cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	TTL     time.Duration `yaml:"ttl"`
}

// AttachmentsConfig configures the attachment object store.
type AttachmentsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	MaxBytes  int64  `yaml:"maxBytes"`
}

// RelatedConfig controls the related-questions lookup.
type RelatedConfig struct {
	Dim   int `yaml:"dim"`
	Limit int `yaml:"limit"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
		Auth: AuthConfig{
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
		Storage: StorageConfig{
			Driver: "memory",
			Pebble: PebbleConfig{Path: "data/prepnest"},
		},
		Directory: DirectoryConfig{
			Cache: CacheConfig{TTL: 10 * time.Minute},
		},
		Attachments: AttachmentsConfig{
			Bucket:   "prepnest-attachments",
			MaxBytes: 8 << 20,
		},
		Related: RelatedConfig{
			Dim:   32,
			Limit: 5,
		},
	}
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("PEBBLE_PATH"); v != "" {
		cfg.Storage.Pebble.Path = v
	}
	if v := os.Getenv("PROFILE_CACHE_ADDR"); v != "" {
		cfg.Directory.Cache.Enabled = true
		cfg.Directory.Cache.Addr = v
	}
	if v := os.Getenv("ATTACHMENTS_ENDPOINT"); v != "" {
		cfg.Attachments.Enabled = true
		cfg.Attachments.Endpoint = v
	}
	if v := os.Getenv("ATTACHMENTS_ACCESS_KEY"); v != "" {
		cfg.Attachments.AccessKey = v
	}
	if v := os.Getenv("ATTACHMENTS_SECRET_KEY"); v != "" {
		cfg.Attachments.SecretKey = v
	}
	if v := os.Getenv("ATTACHMENTS_BUCKET"); v != "" {
		cfg.Attachments.Bucket = v
	}
	if v := os.Getenv("ATTACHMENTS_MAX_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Attachments.MaxBytes = parsed
		}
	}
	if v := os.Getenv("RELATED_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Related.Limit = parsed
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
		cfg.HTTP.AllowedOrigins = origins
	}
}

// Validate checks settings that would otherwise fail at request time.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address is required")
	}
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret is required (set AUTH_SECRET)")
	}
	switch c.Storage.Driver {
	case "memory", "postgres", "pebble":
	default:
		return fmt.Errorf("storage.driver %q is not one of memory, postgres, pebble", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn is required for the postgres driver")
	}
	if c.Storage.Driver == "pebble" && strings.TrimSpace(c.Storage.Pebble.Path) == "" {
		return errors.New("storage.pebble.path is required for the pebble driver")
	}
	if c.Attachments.Enabled {
		if c.Attachments.Endpoint == "" || c.Attachments.Bucket == "" {
			return errors.New("attachments.endpoint and attachments.bucket are required when attachments are enabled")
		}
	}
	return nil
}
