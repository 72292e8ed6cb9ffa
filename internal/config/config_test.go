package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAppliesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
api:
  base_url: https://api.example.com/
  timeout: 5s
project:
  id: p-1
`))
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, CacheMemory, cfg.Cache.Driver)
	assert.Equal(t, 4, cfg.Upload.Concurrency)
	assert.Equal(t, "info", cfg.Logging.Level)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.RequireRemote())
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	if _, err := Decode(strings.NewReader("api:\n  bogus: true\n")); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestDecodeEmptyInput(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestValidateCacheDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Driver = "sqlite"
	if err := cfg.Validate(); !errors.Is(err, ErrCacheDSNRequired) {
		t.Fatalf("expected dsn error, got %v", err)
	}
	cfg.Cache.Driver = "etcd"
	if err := cfg.Validate(); !errors.Is(err, ErrCacheDriverUnknown) {
		t.Fatalf("expected driver error, got %v", err)
	}
}

func TestValidateLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingLevelInvalid) {
		t.Fatalf("expected level error, got %v", err)
	}
}

func TestRequireRemote(t *testing.T) {
	err := DefaultConfig().RequireRemote()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project.id")
}
