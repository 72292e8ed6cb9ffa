package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
	"github.com/goliatone/go-pagebuilder/components/builder/commands"
	"github.com/goliatone/go-pagebuilder/components/builder/httpapi"
)

// ActorResolver converts a router.Context into the caller recorded on commands.
type ActorResolver func(router.Context) commands.Actor

// Config wires go-router with the builder controller, API, and broadcast hook.
type Config[T any] struct {
	Router        router.Router[T]
	Controller    *builder.Controller
	API           httpapi.Executor
	Broadcast     *builder.BroadcastHook
	ActorResolver ActorResolver
	BasePath      string
	Routes        RouteConfig
}

// RouteConfig customizes the relative paths mounted under BasePath.
type RouteConfig struct {
	Document  string
	Blocks    string
	Editor    string
	Save      string
	Preview   string
	WebSocket string
}

// Register mounts the builder JSON API, the HTML preview, and the event
// WebSocket on a go-router router. Server-Sent Events stay on the net/http
// mux because go-router has no streaming body abstraction.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		base = "/builder"
	}
	resolve := cfg.ActorResolver
	if resolve == nil {
		resolve = defaultActorResolver
	}

	group := cfg.Router.Group(base)
	m := mount[T]{r: group, api: cfg.API, resolve: resolve, routes: routes}
	m.document()
	m.blocks()
	m.editor()
	m.publishing()

	if cfg.Controller != nil {
		group.Get(routes.Preview, router.WrapHandler(func(ctx router.Context) error {
			var buf bytes.Buffer
			if err := cfg.Controller.RenderPreview(ctx.Context(), &buf); err != nil {
				return respondError(ctx, http.StatusInternalServerError, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}
	return nil
}

type mount[T any] struct {
	r       router.Router[T]
	api     httpapi.Executor
	resolve ActorResolver
	routes  RouteConfig
}

// view answers a mutation with the refreshed document so clients can
// re-render without a second request.
func (m mount[T]) view(ctx router.Context, status int, err error) error {
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	view, err := m.api.Document(ctx.Context())
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(status, view)
}

func (m mount[T]) document() {
	m.r.Get(m.routes.Document, router.WrapHandler(func(ctx router.Context) error {
		return m.view(ctx, http.StatusOK, nil)
	}))
}

func (m mount[T]) blocks() {
	base := m.routes.Blocks

	m.r.Post(base, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.AddBlockInput
		if err := decodeBody(ctx, &payload, false); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Actor = m.resolve(ctx)
		return m.view(ctx, http.StatusCreated, m.api.AddBlock(ctx.Context(), payload))
	}))

	m.r.Post(base+"/reorder", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.ReorderBlocksInput
		if err := decodeBody(ctx, &payload, false); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Actor = m.resolve(ctx)
		return m.view(ctx, http.StatusOK, m.api.ReorderBlocks(ctx.Context(), payload))
	}))

	m.r.Delete(base+"/:id", router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("block id is required"))
		}
		if err := m.api.RemoveBlock(ctx.Context(), commands.RemoveBlockInput{Actor: m.resolve(ctx), BlockID: id}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusNoContent, map[string]string{"status": "removed"})
	}))
}

func (m mount[T]) editor() {
	base := m.routes.Editor

	m.r.Post(base+"/open", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.OpenEditorInput
		if err := decodeBody(ctx, &payload, false); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Actor = m.resolve(ctx)
		return m.view(ctx, http.StatusOK, m.api.OpenEditor(ctx.Context(), payload))
	}))

	m.r.Post(base+"/update", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.UpdateWidgetInput
		if err := decodeBody(ctx, &payload, false); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Actor = m.resolve(ctx)
		return m.view(ctx, http.StatusOK, m.api.UpdateWidget(ctx.Context(), payload))
	}))

	m.r.Post(base+"/link", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.UpdateLinkInput
		if err := decodeBody(ctx, &payload, false); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Actor = m.resolve(ctx)
		return m.view(ctx, http.StatusOK, m.api.UpdateLink(ctx.Context(), payload))
	}))

	// JSON only; data travels base64 encoded. Multipart uploads go through
	// the net/http handlers.
	m.r.Post(base+"/upload", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.UploadFieldInput
		if err := decodeBody(ctx, &payload, false); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		if len(payload.Data) > httpapi.MaxUploadBytes {
			return respondError(ctx, http.StatusRequestEntityTooLarge, errors.New("upload exceeds size limit"))
		}
		payload.Actor = m.resolve(ctx)
		return m.view(ctx, http.StatusOK, m.api.UploadField(ctx.Context(), payload))
	}))

	m.r.Post(base+"/slides", router.WrapHandler(func(ctx router.Context) error {
		return m.view(ctx, http.StatusOK, m.api.Slide(ctx.Context(), commands.SlideInput{Actor: m.resolve(ctx)}))
	}))

	m.r.Delete(base+"/slides/:id", router.WrapHandler(func(ctx router.Context) error {
		id := ctx.Param("id")
		if id == "" {
			return respondError(ctx, http.StatusBadRequest, errors.New("slide id is required"))
		}
		return m.view(ctx, http.StatusOK, m.api.Slide(ctx.Context(), commands.SlideInput{Actor: m.resolve(ctx), SlideID: id}))
	}))

	m.r.Post(base+"/commit", router.WrapHandler(func(ctx router.Context) error {
		var payload commands.CommitEditorInput
		if err := decodeBody(ctx, &payload, true); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Actor = m.resolve(ctx)
		return m.view(ctx, http.StatusOK, m.api.CommitEditor(ctx.Context(), payload))
	}))

	m.r.Post(base+"/cancel", router.WrapHandler(func(ctx router.Context) error {
		return m.view(ctx, http.StatusOK, m.api.CancelEditor(ctx.Context(), commands.CancelEditorInput{Actor: m.resolve(ctx)}))
	}))
}

func (m mount[T]) publishing() {
	m.r.Post(m.routes.Save, router.WrapHandler(func(ctx router.Context) error {
		var payload commands.SaveProjectInput
		if err := decodeBody(ctx, &payload, true); err != nil {
			return respondError(ctx, http.StatusBadRequest, err)
		}
		payload.Actor = m.resolve(ctx)
		return m.view(ctx, http.StatusAccepted, m.api.Save(ctx.Context(), payload))
	}))

	m.r.Post(m.routes.Preview, router.WrapHandler(func(ctx router.Context) error {
		if err := m.api.PublishPreview(ctx.Context(), commands.PublishPreviewInput{Actor: m.resolve(ctx)}); err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "published"})
	}))

	m.r.Get(m.routes.Preview+".json", router.WrapHandler(func(ctx router.Context) error {
		view, err := m.api.Preview(ctx.Context())
		if err != nil {
			return respondError(ctx, httpapi.StatusFor(err), err)
		}
		return ctx.JSON(http.StatusOK, view)
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *builder.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		return streamEvents(ws.Context(), hook, ws)
	})
}

type eventSocket interface {
	WriteJSON(v any) error
	Close() error
}

// streamEvents forwards block events to ws and closes it once the socket
// context ends.
func streamEvents(ctx context.Context, hook *builder.BroadcastHook, ws eventSocket) error {
	err := hook.Stream(ctx, func(event builder.BlockEvent) error {
		return ws.WriteJSON(event)
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ws.Close()
	}
	return err
}

// decodeBody unmarshals a JSON request body. optional lets an empty body
// through untouched.
func decodeBody(ctx router.Context, target any, optional bool) error {
	body := ctx.Body()
	if optional && len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, target)
}

func defaultActorResolver(ctx router.Context) commands.Actor {
	var actor commands.Actor
	if v, ok := ctx.Locals("user_id").(string); ok {
		actor.UserID = v
	}
	if v, ok := ctx.Locals("session_id").(string); ok {
		actor.SessionID = v
	}
	return actor
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Document == "" {
		routes.Document = "/document"
	}
	if routes.Blocks == "" {
		routes.Blocks = "/blocks"
	}
	if routes.Editor == "" {
		routes.Editor = "/editor"
	}
	if routes.Save == "" {
		routes.Save = "/save"
	}
	if routes.Preview == "" {
		routes.Preview = "/preview"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
