package bootstrap

import (
	"context"
	"errors"
	"fmt"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
	"github.com/goliatone/go-pagebuilder/components/builder/httpapi"
	"github.com/goliatone/go-pagebuilder/internal/config"
	"github.com/goliatone/go-pagebuilder/pkg/cache/rediscache"
	"github.com/goliatone/go-pagebuilder/pkg/cache/sqlitecache"
	"github.com/goliatone/go-pagebuilder/pkg/gologger"
	"github.com/goliatone/go-pagebuilder/pkg/schemaclient"
)

// Options tweaks how the stack is assembled.
type Options struct {
	// Offline swaps the REST client for an in-memory one.
	Offline bool
	// Client overrides the schema client entirely.
	Client builder.SchemaClient
	// LoggerProvider overrides the go-logger provider built from config.
	LoggerProvider builder.LoggerProvider
}

// Stack bundles everything a host needs to serve or drive the builder.
type Stack struct {
	Config     config.Config
	Service    *builder.Service
	Controller *builder.Controller
	Broadcast  *builder.BroadcastHook
	Handlers   *httpapi.Handlers
	Logger     builder.Logger
	Telemetry  *LogTelemetry
	closers    []func() error
}

// Build validates cfg and wires logging, cache, transport and service.
func Build(ctx context.Context, cfg config.Config, opts Options) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.Client == nil && !opts.Offline {
		if err := cfg.RequireRemote(); err != nil {
			return nil, err
		}
	}

	provider := opts.LoggerProvider
	if provider == nil {
		p, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		provider = p
	}
	logger := builder.ModuleLogger(provider, "pagebuilder.bootstrap")
	stack := &Stack{Config: cfg, Logger: logger}

	cache, closeCache, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	if closeCache != nil {
		stack.closers = append(stack.closers, closeCache)
	}

	client := opts.Client
	if client == nil {
		if opts.Offline {
			client = schemaclient.NewMemoryClient("")
		} else {
			client, err = schemaclient.NewHTTPClient(schemaclient.HTTPConfig{
				BaseURL: cfg.API.BaseURL,
				Token:   cfg.API.Token,
				Timeout: cfg.API.Timeout,
			})
			if err != nil {
				stack.Close()
				return nil, err
			}
		}
	}

	registry := builder.NewRegistry()
	if cfg.Project.Manifest != "" {
		if _, err := registry.LoadManifestFile(cfg.Project.Manifest); err != nil {
			stack.Close()
			return nil, err
		}
	}

	stack.Telemetry = NewLogTelemetry(builder.ModuleLogger(provider, "pagebuilder.telemetry"))
	stack.Broadcast = builder.NewBroadcastHook()
	stack.Service = builder.NewService(builder.Options{
		Cache:             cache,
		Registry:          registry,
		Client:            client,
		RefreshHook:       stack.Broadcast,
		Telemetry:         stack.Telemetry,
		LoggerProvider:    provider,
		ProjectID:         cfg.Project.ID,
		UploadConcurrency: cfg.Upload.Concurrency,
		ContentBaseURL:    cfg.API.ContentBaseURL,
	})

	renderer, err := builder.NewTemplateRenderer()
	if err != nil {
		stack.Close()
		return nil, fmt.Errorf("bootstrap: preview renderer: %w", err)
	}
	stack.Controller = builder.NewController(stack.Service, renderer)
	stack.Handlers = httpapi.NewHandlers(stack.Service, stack.Controller, stack.Telemetry)

	logger.Info("bootstrap.ready",
		"project_id", cfg.Project.ID,
		"cache", cfg.Cache.Driver,
		"offline", opts.Offline,
	)
	return stack, nil
}

// Close releases cache connections.
func (s *Stack) Close() error {
	if s == nil {
		return nil
	}
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, s.closers[i]())
	}
	s.closers = nil
	return err
}

func openCache(ctx context.Context, cfg config.CacheConfig) (builder.CacheStore, func() error, error) {
	switch cfg.Driver {
	case config.CacheSQLite:
		store, err := sqlitecache.Open(cfg.DSN, sqlitecache.Options{TTL: cfg.TTL})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.CacheRedis:
		store, err := rediscache.Dial(ctx, cfg.DSN, rediscache.Options{TTL: cfg.TTL})
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return builder.NewInMemoryCache(), nil, nil
	}
}
