package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// PreviewInput requests the preview view model.
type PreviewInput struct{}

type previewController interface {
	Preview(ctx context.Context) (builder.PreviewView, error)
}

// PreviewQuery resolves the published preview, falling back to the live page.
type PreviewQuery struct {
	controller previewController
}

// NewPreviewQuery builds the query.
func NewPreviewQuery(controller previewController) *PreviewQuery {
	return &PreviewQuery{controller: controller}
}

var _ gocommand.Querier[PreviewInput, builder.PreviewView] = (*PreviewQuery)(nil)

// Query resolves the preview.
func (q *PreviewQuery) Query(ctx context.Context, _ PreviewInput) (builder.PreviewView, error) {
	return q.controller.Preview(ctx)
}
