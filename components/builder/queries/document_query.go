package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// DocumentInput requests the current page document.
type DocumentInput struct{}

// DocumentView bundles the document with editor state for clients.
type DocumentView struct {
	Document       builder.Document        `json:"document"`
	Editor         builder.SessionSnapshot `json:"editor"`
	SavePending    bool                    `json:"save_pending"`
	DeletedContent []string                `json:"deleted_content,omitempty"`
}

type documentService interface {
	Document() builder.Document
	EditorState() builder.SessionSnapshot
	SavePending() bool
	DeletedContent() []string
}

// DocumentQuery reads the in-memory document.
type DocumentQuery struct {
	service documentService
}

// NewDocumentQuery builds the query.
func NewDocumentQuery(service documentService) *DocumentQuery {
	return &DocumentQuery{service: service}
}

var _ gocommand.Querier[DocumentInput, DocumentView] = (*DocumentQuery)(nil)

// Query returns the document view.
func (q *DocumentQuery) Query(_ context.Context, _ DocumentInput) (DocumentView, error) {
	return DocumentView{
		Document:       q.service.Document(),
		Editor:         q.service.EditorState(),
		SavePending:    q.service.SavePending(),
		DeletedContent: q.service.DeletedContent(),
	}, nil
}
