package goadmin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	core "github.com/goliatone/go-pagebuilder/components/builder"
	builderpkg "github.com/goliatone/go-pagebuilder/pkg/builder"
)

// MenuBuilder ensures builder entries exist within the admin navigation.
type MenuBuilder interface {
	EnsureMenuItem(ctx context.Context, menuCode string, item MenuItem) error
}

// MenuItem is one admin navigation entry. Section entries carry the widget
// kind the shell opens the editor with; preview entries carry a Path.
type MenuItem struct {
	Label    string
	Route    string
	Parent   string
	Path     string
	Kind     string
	Icon     string
	Position int
}

// HydrateFailure selects what Bootstrap does when the project cannot be
// loaded from the schema API or the cache.
type HydrateFailure int

const (
	// HydrateAbort returns the hydrate error and seeds nothing.
	HydrateAbort HydrateFailure = iota
	// HydrateContinue logs the error, starts from an empty page, and still
	// seeds the menu so editors can rebuild the page.
	HydrateContinue
)

// Config wires the page builder service into an admin shell.
type Config struct {
	EnableBuilder   bool
	HydrateOnStart  bool
	OnHydrateError  HydrateFailure
	MenuCode        string
	MenuBuilder     MenuBuilder
	Service         *builderpkg.Service
	DefaultMenuItem MenuItem
	// BasePath is where the builder routes are mounted.
	BasePath string
	Logger   core.Logger
}

// Admin exposes helpers for go-admin style applications.
type Admin struct {
	cfg Config
}

// New creates an Admin helper that can seed builder menus.
func New(cfg Config) (*Admin, error) {
	if cfg.EnableBuilder && cfg.Service == nil {
		return nil, errors.New("goadmin: builder service is required when enabled")
	}
	if cfg.MenuCode == "" {
		cfg.MenuCode = "admin.main"
	}
	if cfg.DefaultMenuItem.Label == "" {
		cfg.DefaultMenuItem.Label = "Page builder"
	}
	if cfg.DefaultMenuItem.Route == "" {
		cfg.DefaultMenuItem.Route = "admin.builder"
	}
	if cfg.DefaultMenuItem.Icon == "" {
		cfg.DefaultMenuItem.Icon = "layout"
	}
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	if cfg.BasePath == "" {
		cfg.BasePath = "/builder"
	}
	if cfg.Logger == nil {
		cfg.Logger = core.NoOpLogger()
	}
	return &Admin{cfg: cfg}, nil
}

// Builder exposes the configured service when enabled.
func (a *Admin) Builder() *builderpkg.Service {
	if !a.cfg.EnableBuilder {
		return nil
	}
	return a.cfg.Service
}

// Bootstrap hydrates the project when asked to and seeds the builder menu.
func (a *Admin) Bootstrap(ctx context.Context) error {
	if !a.cfg.EnableBuilder {
		return nil
	}
	if a.cfg.HydrateOnStart {
		if err := a.cfg.Service.Hydrate(ctx); err != nil {
			if a.cfg.OnHydrateError == HydrateAbort {
				return fmt.Errorf("goadmin: hydrate project: %w", err)
			}
			a.cfg.Logger.WithContext(ctx).Warn("goadmin: hydrate failed, starting from an empty page",
				"project_id", a.cfg.Service.ProjectID(), "error", err)
		}
	}
	if a.cfg.MenuBuilder == nil {
		return nil
	}
	for _, item := range a.MenuItems() {
		if err := a.cfg.MenuBuilder.EnsureMenuItem(ctx, a.cfg.MenuCode, item); err != nil {
			return fmt.Errorf("goadmin: seed menu item %s: %w", item.Route, err)
		}
	}
	return nil
}

// MenuItems lists the entries Bootstrap seeds: the builder root, one child
// per left-column settings section in the registry, and the two preview
// surfaces.
func (a *Admin) MenuItems() []MenuItem {
	if !a.cfg.EnableBuilder {
		return nil
	}
	root := a.cfg.DefaultMenuItem
	items := []MenuItem{root}
	position := 1
	for _, def := range a.cfg.Service.Registry().Definitions() {
		if def.Category != core.CategoryLeftColumn || def.SettingsKey == "" {
			continue
		}
		label := def.Name
		if label == "" {
			label = def.SettingsKey
		}
		items = append(items, MenuItem{
			Label:    label,
			Route:    root.Route + ".section." + def.SettingsKey,
			Parent:   root.Route,
			Kind:     string(def.Code),
			Icon:     "sidebar",
			Position: position,
		})
		position++
	}
	items = append(items,
		MenuItem{
			Label:    "Preview",
			Route:    root.Route + ".preview",
			Parent:   root.Route,
			Path:     a.cfg.BasePath + "/preview",
			Icon:     "eye",
			Position: position,
		},
		MenuItem{
			Label:    "Preview data",
			Route:    root.Route + ".preview.json",
			Parent:   root.Route,
			Path:     a.cfg.BasePath + "/preview.json",
			Icon:     "code",
			Position: position + 1,
		},
	)
	return items
}
