package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
	"github.com/goliatone/go-pagebuilder/components/builder/commands"
	"github.com/goliatone/go-pagebuilder/components/builder/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func TestHandleAddBlock(t *testing.T) {
	add := &stubCommander[commands.AddBlockInput]{}
	api := &Handlers{Add: add}
	payload := commands.AddBlockInput{Kind: builder.KindSectionText, Data: map[string]any{"title": "x"}}
	buf, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/builder/blocks", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleAddBlock(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if add.calls != 1 || add.last.Kind != builder.KindSectionText {
		t.Fatalf("expected add to execute with kind, got %#v", add.last)
	}
}

func TestHandleAddBlockRejectsBadJSON(t *testing.T) {
	add := &stubCommander[commands.AddBlockInput]{}
	api := &Handlers{Add: add}
	req := httptest.NewRequest(http.MethodPost, "/builder/blocks", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	api.HandleAddBlock(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if add.calls != 0 {
		t.Fatalf("expected add not to execute")
	}
}

func TestHandleRemoveBlock(t *testing.T) {
	remove := &stubCommander[commands.RemoveBlockInput]{}
	api := &Handlers{Remove: remove}
	req := httptest.NewRequest(http.MethodDelete, "/builder/blocks/b1", nil)
	rec := httptest.NewRecorder()
	api.HandleRemoveBlock(rec, req, "b1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if remove.last.BlockID != "b1" {
		t.Fatalf("expected block id propagation")
	}
}

func TestHandleReorderBlocks(t *testing.T) {
	reorder := &stubCommander[commands.ReorderBlocksInput]{}
	api := &Handlers{Reorder: reorder}
	buf, _ := json.Marshal(commands.ReorderBlocksInput{ActiveID: "b2", OverID: "b1"})
	req := httptest.NewRequest(http.MethodPost, "/builder/blocks/reorder", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	api.HandleReorderBlocks(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if reorder.last.ActiveID != "b2" || reorder.last.OverID != "b1" {
		t.Fatalf("unexpected payload %#v", reorder.last)
	}
}

func TestHandleRemoveSlide(t *testing.T) {
	slides := &stubCommander[commands.SlideInput]{}
	api := &Handlers{Slides: slides}
	req := httptest.NewRequest(http.MethodDelete, "/builder/editor/slides/s1", nil)
	rec := httptest.NewRecorder()
	api.HandleRemoveSlide(rec, req, "s1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if slides.last.SlideID != "s1" {
		t.Fatalf("expected slide id propagation")
	}
}

func TestHandleCommitEmptyBody(t *testing.T) {
	commit := &stubCommander[commands.CommitEditorInput]{}
	api := &Handlers{Commit: commit}
	req := httptest.NewRequest(http.MethodPost, "/builder/editor/commit", nil)
	rec := httptest.NewRecorder()
	api.HandleCommitEditor(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if commit.calls != 1 || commit.last.LocalOnly {
		t.Fatalf("expected remote commit, got %#v", commit.last)
	}
}

func TestHandleSaveFailure(t *testing.T) {
	save := &stubCommander[commands.SaveProjectInput]{err: errors.New("boom")}
	api := &Handlers{SaveCmd: save}
	req := httptest.NewRequest(http.MethodPost, "/builder/save", nil)
	rec := httptest.NewRecorder()
	api.HandleSave(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestMissingHandlerIsNotImplemented(t *testing.T) {
	api := &Handlers{}
	req := httptest.NewRequest(http.MethodPost, "/builder/editor/cancel", nil)
	rec := httptest.NewRecorder()
	api.HandleCancelEditor(rec, req)
	if rec.Code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", rec.Code)
	}
}

func TestRegisterServesEditorFlow(t *testing.T) {
	service := builder.NewService(builder.Options{ProjectID: "p1"})
	mux := http.NewServeMux()
	Register(mux, MuxConfig{Handlers: NewHandlers(service, nil, nil)})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(http.MethodPost, "/builder/editor/open", `{"kind":"sectionText"}`); rec.Code != http.StatusOK {
		t.Fatalf("open: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := do(http.MethodPost, "/builder/editor/open", `{"kind":"sectionText"}`); rec.Code != http.StatusConflict {
		t.Fatalf("second open: expected 409, got %d", rec.Code)
	}
	if rec := do(http.MethodPost, "/builder/editor/update", `{"data":{"title":"Hi"}}`); rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}
	rec := do(http.MethodPost, "/builder/editor/commit", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var view queries.DocumentView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode document view: %v", err)
	}
	if len(view.Document.Blocks) != 1 || !view.SavePending || view.Editor.IsOpen {
		t.Fatalf("unexpected document view %#v", view)
	}
	id := view.Document.Blocks[0].ID
	if rec := do(http.MethodDelete, "/builder/blocks/"+id, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("remove: expected 204, got %d", rec.Code)
	}
	if got := len(service.Blocks()); got != 0 {
		t.Fatalf("expected empty page, got %d blocks", got)
	}
}

func TestHandleUploadFieldMultipart(t *testing.T) {
	upload := &stubCommander[commands.UploadFieldInput]{}
	api := &Handlers{Upload: upload}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("field", "slides[0].image"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	part, err := form.CreateFormFile("file", "slide.png")
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	if err := form.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/builder/editor/upload", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	api.HandleUploadField(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if upload.last.Field != "slides[0].image" || upload.last.Name != "slide.png" {
		t.Fatalf("unexpected upload input %#v", upload.last)
	}
	if upload.last.ContentType == "" || len(upload.last.Data) != 8 {
		t.Fatalf("expected file payload, got %q with %d bytes", upload.last.ContentType, len(upload.last.Data))
	}
}

func TestHandleUploadFieldRequiresFilePart(t *testing.T) {
	upload := &stubCommander[commands.UploadFieldInput]{}
	api := &Handlers{Upload: upload}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	_ = form.WriteField("field", "image")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/builder/editor/upload", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()
	api.HandleUploadField(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if upload.calls != 0 {
		t.Fatalf("expected upload not to execute")
	}
}

func TestRegisterUploadPutsFileIntoDraft(t *testing.T) {
	service := builder.NewService(builder.Options{ProjectID: "p1"})
	mux := http.NewServeMux()
	Register(mux, MuxConfig{Handlers: NewHandlers(service, nil, nil)})

	req := httptest.NewRequest(http.MethodPost, "/builder/editor/open", strings.NewReader(`{"kind":"background"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("open: expected 200, got %d", rec.Code)
	}

	payload, _ := json.Marshal(commands.UploadFieldInput{Field: "image", Name: "bg.png", ContentType: "image/png", Data: []byte("png")})
	req = httptest.NewRequest(http.MethodPost, "/builder/editor/upload", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	file, ok := service.EditorState().WidgetData["image"].(*builder.LocalFile)
	if !ok || file.Name != "bg.png" || string(file.Data) != "png" {
		t.Fatalf("expected pending local file in draft, got %#v", service.EditorState().WidgetData["image"])
	}

	payload, _ = json.Marshal(commands.UploadFieldInput{Field: "color", Name: "x.png", Data: []byte("x")})
	req = httptest.NewRequest(http.MethodPost, "/builder/editor/upload", bytes.NewReader(payload))
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("non-media field: expected 422, got %d", rec.Code)
	}
}
