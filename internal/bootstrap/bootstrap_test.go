package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
	"github.com/goliatone/go-pagebuilder/internal/config"
)

func TestBuildOfflineWithSQLiteCache(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.Project.ID = "p1"
	cfg.Cache.Driver = config.CacheSQLite
	cfg.Cache.DSN = filepath.Join(t.TempDir(), "cache.db")

	stack, err := Build(ctx, cfg, Options{Offline: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })

	_, err = stack.Service.AddBlock(ctx, builder.KindSectionText, map[string]any{"title": "x"})
	require.NoError(t, err)
	result, err := stack.Service.Save(ctx)
	require.NoError(t, err)
	assert.Empty(t, result.Uploads.Wait())
	assert.NotNil(t, stack.Handlers)
	assert.NotNil(t, stack.Controller)
}

func TestBuildRequiresRemoteSettings(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := Build(context.Background(), cfg, Options{})
	assert.Error(t, err)
}

func TestBuildLoadsManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "widgets.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`version: 1
widgets:
  - definition:
      code: quote
      name: Quote
      category: block
`), 0o644))

	cfg := config.DefaultConfig()
	cfg.Project.ID = "p1"
	cfg.Project.Manifest = manifest
	stack, err := Build(context.Background(), cfg, Options{Offline: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = stack.Close() })

	_, ok := stack.Service.Registry().Definition("quote")
	assert.True(t, ok)
}

func TestLogTelemetryRecords(t *testing.T) {
	logger := &captureLogger{}
	NewLogTelemetry(logger).Record(context.Background(), "pagebuilder.block.add", map[string]any{"kind": "link", "block_id": "b1"})
	require.Len(t, logger.entries, 1)
	assert.Equal(t, "pagebuilder.block.add", logger.entries[0].msg)
	assert.Equal(t, []any{"block_id", "b1", "kind", "link"}, logger.entries[0].args)
}

type captureEntry struct {
	msg  string
	args []any
}

type captureLogger struct {
	entries []captureEntry
}

func (c *captureLogger) Trace(string, ...any) {}
func (c *captureLogger) Debug(msg string, args ...any) {
	c.entries = append(c.entries, captureEntry{msg: msg, args: args})
}
func (c *captureLogger) Info(string, ...any)                         {}
func (c *captureLogger) Warn(string, ...any)                         {}
func (c *captureLogger) Error(string, ...any)                        {}
func (c *captureLogger) Fatal(string, ...any)                        {}
func (c *captureLogger) WithContext(context.Context) builder.Logger { return c }
