package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	builder "github.com/goliatone/go-pagebuilder/components/builder"
	"github.com/goliatone/go-pagebuilder/components/builder/commands"
	"github.com/goliatone/go-pagebuilder/components/builder/queries"
)

// Executor is the transport-neutral surface the HTTP adapters call.
type Executor interface {
	AddBlock(ctx context.Context, msg commands.AddBlockInput) error
	RemoveBlock(ctx context.Context, msg commands.RemoveBlockInput) error
	ReorderBlocks(ctx context.Context, msg commands.ReorderBlocksInput) error
	OpenEditor(ctx context.Context, msg commands.OpenEditorInput) error
	UpdateWidget(ctx context.Context, msg commands.UpdateWidgetInput) error
	UpdateLink(ctx context.Context, msg commands.UpdateLinkInput) error
	UploadField(ctx context.Context, msg commands.UploadFieldInput) error
	Slide(ctx context.Context, msg commands.SlideInput) error
	CommitEditor(ctx context.Context, msg commands.CommitEditorInput) error
	CancelEditor(ctx context.Context, msg commands.CancelEditorInput) error
	Save(ctx context.Context, msg commands.SaveProjectInput) error
	PublishPreview(ctx context.Context, msg commands.PublishPreviewInput) error
	Document(ctx context.Context) (queries.DocumentView, error)
	Preview(ctx context.Context) (builder.PreviewView, error)
}

var (
	errNotConfigured  = errors.New("httpapi: handler not configured")
	errUploadTooLarge = errors.New("httpapi: upload exceeds size limit")
)

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	Add      gocommand.Commander[commands.AddBlockInput]
	Remove   gocommand.Commander[commands.RemoveBlockInput]
	Reorder  gocommand.Commander[commands.ReorderBlocksInput]
	Open     gocommand.Commander[commands.OpenEditorInput]
	Update   gocommand.Commander[commands.UpdateWidgetInput]
	Link     gocommand.Commander[commands.UpdateLinkInput]
	Upload   gocommand.Commander[commands.UploadFieldInput]
	Slides   gocommand.Commander[commands.SlideInput]
	Commit   gocommand.Commander[commands.CommitEditorInput]
	Cancel   gocommand.Commander[commands.CancelEditorInput]
	SaveCmd  gocommand.Commander[commands.SaveProjectInput]
	Publish  gocommand.Commander[commands.PublishPreviewInput]
	DocQuery gocommand.Querier[queries.DocumentInput, queries.DocumentView]
	Previews gocommand.Querier[queries.PreviewInput, builder.PreviewView]
}

var _ Executor = (*Handlers)(nil)

// NewHandlers wires every command and query against one service.
func NewHandlers(service *builder.Service, controller *builder.Controller, telemetry commands.Telemetry) *Handlers {
	if controller == nil {
		controller = builder.NewController(service, nil)
	}
	return &Handlers{
		Add:      commands.NewAddBlockCommand(service, telemetry),
		Remove:   commands.NewRemoveBlockCommand(service, telemetry),
		Reorder:  commands.NewReorderBlocksCommand(service, telemetry),
		Open:     commands.NewOpenEditorCommand(service, telemetry),
		Update:   commands.NewUpdateWidgetCommand(service),
		Link:     commands.NewUpdateLinkCommand(service),
		Upload:   commands.NewUploadFieldCommand(service, telemetry),
		Slides:   commands.NewSlideCommand(service),
		Commit:   commands.NewCommitEditorCommand(service, telemetry),
		Cancel:   commands.NewCancelEditorCommand(service, telemetry),
		SaveCmd:  commands.NewSaveProjectCommand(service, telemetry),
		Publish:  commands.NewPublishPreviewCommand(service, telemetry),
		DocQuery: queries.NewDocumentQuery(service),
		Previews: queries.NewPreviewQuery(controller),
	}
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return errNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func (h *Handlers) AddBlock(ctx context.Context, msg commands.AddBlockInput) error {
	return execute(ctx, h.Add, msg)
}

func (h *Handlers) RemoveBlock(ctx context.Context, msg commands.RemoveBlockInput) error {
	return execute(ctx, h.Remove, msg)
}

func (h *Handlers) ReorderBlocks(ctx context.Context, msg commands.ReorderBlocksInput) error {
	return execute(ctx, h.Reorder, msg)
}

func (h *Handlers) OpenEditor(ctx context.Context, msg commands.OpenEditorInput) error {
	return execute(ctx, h.Open, msg)
}

func (h *Handlers) UpdateWidget(ctx context.Context, msg commands.UpdateWidgetInput) error {
	return execute(ctx, h.Update, msg)
}

func (h *Handlers) UpdateLink(ctx context.Context, msg commands.UpdateLinkInput) error {
	return execute(ctx, h.Link, msg)
}

func (h *Handlers) UploadField(ctx context.Context, msg commands.UploadFieldInput) error {
	return execute(ctx, h.Upload, msg)
}

func (h *Handlers) Slide(ctx context.Context, msg commands.SlideInput) error {
	return execute(ctx, h.Slides, msg)
}

func (h *Handlers) CommitEditor(ctx context.Context, msg commands.CommitEditorInput) error {
	return execute(ctx, h.Commit, msg)
}

func (h *Handlers) CancelEditor(ctx context.Context, msg commands.CancelEditorInput) error {
	return execute(ctx, h.Cancel, msg)
}

func (h *Handlers) Save(ctx context.Context, msg commands.SaveProjectInput) error {
	return execute(ctx, h.SaveCmd, msg)
}

func (h *Handlers) PublishPreview(ctx context.Context, msg commands.PublishPreviewInput) error {
	return execute(ctx, h.Publish, msg)
}

func (h *Handlers) Document(ctx context.Context) (queries.DocumentView, error) {
	if h.DocQuery == nil {
		return queries.DocumentView{}, errNotConfigured
	}
	return h.DocQuery.Query(ctx, queries.DocumentInput{})
}

func (h *Handlers) Preview(ctx context.Context) (builder.PreviewView, error) {
	if h.Previews == nil {
		return builder.PreviewView{}, errNotConfigured
	}
	return h.Previews.Query(ctx, queries.PreviewInput{})
}

// StatusFor maps builder errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, errNotConfigured):
		return http.StatusNotImplemented
	case builder.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case builder.IsSessionStateError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) HandleDocument(w http.ResponseWriter, r *http.Request) {
	view, err := h.Document(r.Context())
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) HandleAddBlock(w http.ResponseWriter, r *http.Request) {
	var payload commands.AddBlockInput
	if !decode(w, r, &payload) {
		return
	}
	h.respond(w, r, http.StatusCreated, h.AddBlock(r.Context(), payload))
}

func (h *Handlers) HandleRemoveBlock(w http.ResponseWriter, r *http.Request, blockID string) {
	if blockID == "" {
		http.Error(w, "block id is required", http.StatusBadRequest)
		return
	}
	if err := h.RemoveBlock(r.Context(), commands.RemoveBlockInput{BlockID: blockID}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleReorderBlocks(w http.ResponseWriter, r *http.Request) {
	var payload commands.ReorderBlocksInput
	if !decode(w, r, &payload) {
		return
	}
	h.respond(w, r, http.StatusOK, h.ReorderBlocks(r.Context(), payload))
}

func (h *Handlers) HandleOpenEditor(w http.ResponseWriter, r *http.Request) {
	var payload commands.OpenEditorInput
	if !decode(w, r, &payload) {
		return
	}
	h.respond(w, r, http.StatusOK, h.OpenEditor(r.Context(), payload))
}

func (h *Handlers) HandleUpdateWidget(w http.ResponseWriter, r *http.Request) {
	var payload commands.UpdateWidgetInput
	if !decode(w, r, &payload) {
		return
	}
	h.respond(w, r, http.StatusOK, h.UpdateWidget(r.Context(), payload))
}

func (h *Handlers) HandleUpdateLink(w http.ResponseWriter, r *http.Request) {
	var payload commands.UpdateLinkInput
	if !decode(w, r, &payload) {
		return
	}
	h.respond(w, r, http.StatusOK, h.UpdateLink(r.Context(), payload))
}

// HandleUploadField accepts a multipart form with a "field" value and a
// "file" part, or a JSON UploadFieldInput with base64 data.
func (h *Handlers) HandleUploadField(w http.ResponseWriter, r *http.Request) {
	var payload commands.UploadFieldInput
	if isMultipart(r) {
		msg, err := readUpload(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		payload = msg
	} else if !decode(w, r, &payload) {
		return
	}
	h.respond(w, r, http.StatusOK, h.UploadField(r.Context(), payload))
}

func (h *Handlers) HandleAddSlide(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.Slide(r.Context(), commands.SlideInput{}))
}

func (h *Handlers) HandleRemoveSlide(w http.ResponseWriter, r *http.Request, slideID string) {
	if slideID == "" {
		http.Error(w, "slide id is required", http.StatusBadRequest)
		return
	}
	h.respond(w, r, http.StatusOK, h.Slide(r.Context(), commands.SlideInput{SlideID: slideID}))
}

func (h *Handlers) HandleCommitEditor(w http.ResponseWriter, r *http.Request) {
	var payload commands.CommitEditorInput
	if r.ContentLength != 0 && !decode(w, r, &payload) {
		return
	}
	h.respond(w, r, http.StatusOK, h.CommitEditor(r.Context(), payload))
}

func (h *Handlers) HandleCancelEditor(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, h.CancelEditor(r.Context(), commands.CancelEditorInput{}))
}

func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusAccepted, h.Save(r.Context(), commands.SaveProjectInput{}))
}

func (h *Handlers) HandlePublishPreview(w http.ResponseWriter, r *http.Request) {
	if err := h.PublishPreview(r.Context(), commands.PublishPreviewInput{}); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandlePreview(w http.ResponseWriter, r *http.Request) {
	view, err := h.Preview(r.Context())
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// respond writes the post-mutation document view so clients can re-render
// without a second round trip.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	if h.DocQuery == nil {
		w.WriteHeader(status)
		return
	}
	view, err := h.Document(r.Context())
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, status, view)
}

// MaxUploadBytes bounds a single field upload.
const MaxUploadBytes = 32 << 20

func isMultipart(r *http.Request) bool {
	media, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && media == "multipart/form-data"
}

func readUpload(r *http.Request) (commands.UploadFieldInput, error) {
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		return commands.UploadFieldInput{}, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return commands.UploadFieldInput{}, err
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		return commands.UploadFieldInput{}, err
	}
	if len(data) > MaxUploadBytes {
		return commands.UploadFieldInput{}, errUploadTooLarge
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return commands.UploadFieldInput{
		Field:       r.FormValue("field"),
		Name:        header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
