package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

var (
	ErrCacheDriverUnknown   = errors.New("pagebuilder config: cache driver must be memory, sqlite or redis")
	ErrCacheDSNRequired     = errors.New("pagebuilder config: cache dsn is required for sqlite and redis")
	ErrLoggingLevelInvalid  = errors.New("pagebuilder config: logging level must be trace, debug, info, warn, error or fatal")
	ErrLoggingFormatInvalid = errors.New("pagebuilder config: logging format must be json, console or pretty")
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheSQLite = "sqlite"
	CacheRedis  = "redis"
)

// Config is the runtime configuration for the CLI and dev server.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Project ProjectConfig `yaml:"project"`
	Cache   CacheConfig   `yaml:"cache"`
	Logging LoggingConfig `yaml:"logging"`
	Upload  UploadConfig  `yaml:"upload"`
}

// APIConfig points at the REST backend. A zero Timeout keeps the HTTP
// client default.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Token          string        `yaml:"token"`
	Timeout        time.Duration `yaml:"timeout"`
	ContentBaseURL string        `yaml:"content_base_url"`
}

// ProjectConfig identifies the page. Manifest optionally points at a YAML
// widget manifest of extra kinds.
type ProjectConfig struct {
	ID       string `yaml:"id"`
	Manifest string `yaml:"manifest"`
}

// CacheConfig selects the durable local cache.
type CacheConfig struct {
	Driver string        `yaml:"driver"`
	DSN    string        `yaml:"dsn"`
	TTL    time.Duration `yaml:"ttl"`
}

type LoggingConfig struct {
	Level     string `yaml:"level"`
	Format    string `yaml:"format"`
	AddSource bool   `yaml:"add_source"`
}

type UploadConfig struct {
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Driver: CacheMemory,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Upload: UploadConfig{
			Concurrency: 4,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads YAML from r over the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (cfg *Config) normalize() {
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	cfg.Cache.Driver = strings.ToLower(strings.TrimSpace(cfg.Cache.Driver))
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = CacheMemory
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Upload.Concurrency <= 0 {
		cfg.Upload.Concurrency = 4
	}
}

// Validate performs consistency checks.
func (cfg Config) Validate() error {
	switch cfg.Cache.Driver {
	case CacheMemory:
	case CacheSQLite, CacheRedis:
		if strings.TrimSpace(cfg.Cache.DSN) == "" {
			return ErrCacheDSNRequired
		}
	default:
		return ErrCacheDriverUnknown
	}
	switch cfg.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error", "fatal":
	default:
		return ErrLoggingLevelInvalid
	}
	switch cfg.Logging.Format {
	case "", "json", "console", "pretty":
	default:
		return ErrLoggingFormatInvalid
	}
	return validation.ValidateStruct(&cfg.API,
		validation.Field(&cfg.API.BaseURL, is.URL),
		validation.Field(&cfg.API.ContentBaseURL, is.URL),
		validation.Field(&cfg.API.Timeout, validation.Min(time.Duration(0))),
	)
}

// RequireRemote checks the settings needed to talk to the backend.
func (cfg Config) RequireRemote() error {
	return validation.Errors{
		"api.base_url": validation.Validate(cfg.API.BaseURL, validation.Required),
		"project.id":   validation.Validate(cfg.Project.ID, validation.Required),
	}.Filter()
}
