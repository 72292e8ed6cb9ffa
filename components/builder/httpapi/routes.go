package httpapi

import (
	"bytes"
	"net/http"
	"strings"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// MuxConfig mounts the API on a standard library ServeMux.
type MuxConfig struct {
	Handlers   *Handlers
	Controller *builder.Controller
	Broadcast  *builder.BroadcastHook
	BasePath   string
}

// Register adds the builder routes to mux.
func Register(mux *http.ServeMux, cfg MuxConfig) {
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = "/builder"
	}
	h := cfg.Handlers
	if h != nil {
		mux.HandleFunc("GET "+base+"/document", h.HandleDocument)
		mux.HandleFunc("POST "+base+"/blocks", h.HandleAddBlock)
		mux.HandleFunc("POST "+base+"/blocks/reorder", h.HandleReorderBlocks)
		mux.HandleFunc("DELETE "+base+"/blocks/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleRemoveBlock(w, r, r.PathValue("id"))
		})
		mux.HandleFunc("POST "+base+"/editor/open", h.HandleOpenEditor)
		mux.HandleFunc("POST "+base+"/editor/update", h.HandleUpdateWidget)
		mux.HandleFunc("POST "+base+"/editor/link", h.HandleUpdateLink)
		mux.HandleFunc("POST "+base+"/editor/upload", h.HandleUploadField)
		mux.HandleFunc("POST "+base+"/editor/slides", h.HandleAddSlide)
		mux.HandleFunc("DELETE "+base+"/editor/slides/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.HandleRemoveSlide(w, r, r.PathValue("id"))
		})
		mux.HandleFunc("POST "+base+"/editor/commit", h.HandleCommitEditor)
		mux.HandleFunc("POST "+base+"/editor/cancel", h.HandleCancelEditor)
		mux.HandleFunc("POST "+base+"/save", h.HandleSave)
		mux.HandleFunc("POST "+base+"/preview", h.HandlePublishPreview)
		mux.HandleFunc("GET "+base+"/preview.json", h.HandlePreview)
	}
	if cfg.Controller != nil {
		mux.HandleFunc("GET "+base+"/preview", func(w http.ResponseWriter, r *http.Request) {
			var buf bytes.Buffer
			if err := cfg.Controller.RenderPreview(r.Context(), &buf); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(buf.Bytes())
		})
	}
	if cfg.Broadcast != nil {
		mux.HandleFunc("GET "+base+"/events", cfg.Broadcast.ServeSSE)
		mux.HandleFunc("GET "+base+"/ws", cfg.Broadcast.ServeWebSocket)
	}
}
