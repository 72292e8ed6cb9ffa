package builder

import (
	"fmt"
	"sort"
	"sync"
)

// WidgetCategory groups kinds by where they live on the page.
type WidgetCategory string

const (
	CategoryBlock      WidgetCategory = "block"
	CategoryLeftColumn WidgetCategory = "left_column"
	CategorySelector   WidgetCategory = "selector"
)

// MediaField names a field that may hold a media value. When List is set
// the field is read from every entry of that list.
type MediaField struct {
	List  string `json:"list,omitempty" yaml:"list,omitempty"`
	Field string `json:"field" yaml:"field"`
}

// WidgetDefinition describes a widget kind.
type WidgetDefinition struct {
	Code        WidgetKind     `json:"code" yaml:"code"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category    WidgetCategory `json:"category" yaml:"category"`
	SettingsKey string         `json:"settings_key,omitempty" yaml:"settings_key,omitempty"`
	Schema      map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	MediaFields []MediaField   `json:"media_fields,omitempty" yaml:"media_fields,omitempty"`
}

// Virtual reports whether the kind never materialises as a block.
func (d WidgetDefinition) Virtual() bool {
	return d.Category == CategoryLeftColumn || d.Category == CategorySelector
}

// WidgetRegistry resolves widget kinds.
type WidgetRegistry interface {
	RegisterDefinition(def WidgetDefinition) error
	Definition(kind WidgetKind) (WidgetDefinition, bool)
	Definitions() []WidgetDefinition
}

// WidgetHook lets packages register widget kinds during init().
type WidgetHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []WidgetHook
)

// RegisterWidgetHook registers a hook executed against new registries.
func RegisterWidgetHook(h WidgetHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry implements WidgetRegistry with hook + manifest support.
type Registry struct {
	mu          sync.RWMutex
	definitions map[WidgetKind]WidgetDefinition
}

// NewRegistry builds a registry holding the built-in kinds and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		definitions: map[WidgetKind]WidgetDefinition{},
	}
	for _, def := range DefaultWidgetDefinitions() {
		_ = reg.RegisterDefinition(def)
	}
	_ = reg.ApplyHooks()
	return reg
}

// ApplyHooks executes registered widget hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDefinition stores widget metadata, replacing any previous entry.
func (r *Registry) RegisterDefinition(def WidgetDefinition) error {
	if def.Code == "" {
		return fmt.Errorf("widget definition code is required")
	}
	if def.Category == CategoryLeftColumn && def.SettingsKey == "" {
		return fmt.Errorf("left column widget %s requires a settings key", def.Code)
	}
	if def.Category == "" {
		def.Category = CategoryBlock
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Code] = def
	return nil
}

// Definition fetches a widget definition by kind.
func (r *Registry) Definition(kind WidgetKind) (WidgetDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[kind]
	return def, ok
}

// Definitions returns all registered definitions sorted by code.
func (r *Registry) Definitions() []WidgetDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]WidgetDefinition, 0, len(r.definitions))
	for _, def := range r.definitions {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Code < defs[j].Code })
	return defs
}

// LeftColumnKind returns the widget kind bound to a settings key.
func (r *Registry) LeftColumnKind(settingsKey string) (WidgetKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, def := range r.definitions {
		if def.Category == CategoryLeftColumn && def.SettingsKey == settingsKey {
			return def.Code, true
		}
	}
	return "", false
}
