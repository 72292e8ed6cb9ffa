package builder

import (
	core "github.com/goliatone/go-pagebuilder/components/builder"
)

// Service exposes the underlying components/builder.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// Document re-export for hosts that persist pages themselves.
type Document = core.Document

// Block re-export.
type Block = core.Block

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}
