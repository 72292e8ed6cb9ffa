package builder

import (
	"context"
	"fmt"
	"sync"
)

// WidgetOwner owns a left-column widget that lives outside the block list.
type WidgetOwner interface {
	OnCommit(ctx context.Context, kind WidgetKind, data map[string]any) error
	OnDiscard(ctx context.Context, kind WidgetKind) error
}

// Mediator routes editor commits and discards for left-column widgets to
// the owner registered for each kind.
type Mediator struct {
	mu     sync.RWMutex
	owners map[WidgetKind]WidgetOwner
}

// NewMediator returns an empty mediator.
func NewMediator() *Mediator {
	return &Mediator{owners: map[WidgetKind]WidgetOwner{}}
}

// Register binds owner to kind, replacing any previous owner.
func (m *Mediator) Register(kind WidgetKind, owner WidgetOwner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if owner == nil {
		delete(m.owners, kind)
		return
	}
	m.owners[kind] = owner
}

// Owner returns the owner registered for kind.
func (m *Mediator) Owner(kind WidgetKind) (WidgetOwner, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	owner, ok := m.owners[kind]
	return owner, ok
}

// OnCommit hands committed data to the kind's owner.
func (m *Mediator) OnCommit(ctx context.Context, kind WidgetKind, data map[string]any) error {
	owner, ok := m.Owner(kind)
	if !ok {
		return fmt.Errorf("pagebuilder: no owner registered for %s", kind)
	}
	return owner.OnCommit(ctx, kind, data)
}

// OnDiscard asks the kind's owner to drop an abandoned widget. Kinds without
// an owner have nothing to drop.
func (m *Mediator) OnDiscard(ctx context.Context, kind WidgetKind) error {
	owner, ok := m.Owner(kind)
	if !ok {
		return nil
	}
	return owner.OnDiscard(ctx, kind)
}

// SettingsOwner stores left-column widgets in the project settings section
// named by their definition.
type SettingsOwner struct {
	Registry WidgetRegistry
	Apply    func(ctx context.Context, key string, data map[string]any) error
}

// OnCommit writes data into the settings section.
func (o SettingsOwner) OnCommit(ctx context.Context, kind WidgetKind, data map[string]any) error {
	key, err := o.sectionKey(kind)
	if err != nil {
		return err
	}
	return o.Apply(ctx, key, CloneMap(data))
}

// OnDiscard clears the settings section.
func (o SettingsOwner) OnDiscard(ctx context.Context, kind WidgetKind) error {
	key, err := o.sectionKey(kind)
	if err != nil {
		return err
	}
	return o.Apply(ctx, key, nil)
}

func (o SettingsOwner) sectionKey(kind WidgetKind) (string, error) {
	if o.Registry == nil || o.Apply == nil {
		return "", fmt.Errorf("pagebuilder: settings owner not configured")
	}
	def, ok := o.Registry.Definition(kind)
	if !ok || def.Category != CategoryLeftColumn {
		return "", fmt.Errorf("pagebuilder: %s is not a left column widget", kind)
	}
	return def.SettingsKey, nil
}
