package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

type editorService interface {
	OpenEditor(ctx context.Context, kind builder.WidgetKind, seed map[string]any, existingID string) (builder.SessionSnapshot, error)
	UpdateWidget(ctx context.Context, partial map[string]any) (builder.SessionSnapshot, error)
	UpdateLink(ctx context.Context, id string, partial map[string]any) (builder.SessionSnapshot, error)
	AttachFile(ctx context.Context, field string, file *builder.LocalFile) (builder.SessionSnapshot, error)
	AddSlide(ctx context.Context) (builder.SessionSnapshot, error)
	RemoveSlide(ctx context.Context, id string) (builder.SessionSnapshot, bool, error)
	CommitEditor(ctx context.Context, localOnly bool) (builder.CommitResult, error)
	CancelEditor(ctx context.Context) (builder.CancelResult, error)
}

var errEditorService = errors.New("editor command requires service")

// OpenEditorInput starts an edit. A non-empty BlockID edits that block.
type OpenEditorInput struct {
	Actor
	Kind    builder.WidgetKind `json:"kind"`
	Seed    map[string]any     `json:"seed,omitempty"`
	BlockID string             `json:"block_id,omitempty"`
}

// OpenEditorCommand wraps Service.OpenEditor.
type OpenEditorCommand struct {
	service   editorService
	telemetry Telemetry
}

// NewOpenEditorCommand builds the command.
func NewOpenEditorCommand(service editorService, telemetry Telemetry) *OpenEditorCommand {
	return &OpenEditorCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[OpenEditorInput] = (*OpenEditorCommand)(nil)

// Execute opens the editor session.
func (c *OpenEditorCommand) Execute(ctx context.Context, msg OpenEditorInput) error {
	if c.service == nil {
		return errEditorService
	}
	ctx = msg.apply(ctx)
	snap, err := c.service.OpenEditor(ctx, msg.Kind, msg.Seed, msg.BlockID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "pagebuilder.command.editor_open", map[string]any{
		"kind":  string(snap.WidgetType),
		"state": string(snap.State),
	})
	return nil
}

// UpdateWidgetInput merges Data into the open draft.
type UpdateWidgetInput struct {
	Actor
	Data map[string]any `json:"data"`
}

// UpdateWidgetCommand wraps Service.UpdateWidget.
type UpdateWidgetCommand struct {
	service editorService
}

// NewUpdateWidgetCommand builds the command.
func NewUpdateWidgetCommand(service editorService) *UpdateWidgetCommand {
	return &UpdateWidgetCommand{service: service}
}

var _ gocommand.Commander[UpdateWidgetInput] = (*UpdateWidgetCommand)(nil)

// Execute merges the partial data.
func (c *UpdateWidgetCommand) Execute(ctx context.Context, msg UpdateWidgetInput) error {
	if c.service == nil {
		return errEditorService
	}
	_, err := c.service.UpdateWidget(msg.apply(ctx), msg.Data)
	return err
}

// UpdateLinkInput merges Data into the link entry LinkID.
type UpdateLinkInput struct {
	Actor
	LinkID string         `json:"link_id"`
	Data   map[string]any `json:"data"`
}

// UpdateLinkCommand wraps Service.UpdateLink.
type UpdateLinkCommand struct {
	service editorService
}

// NewUpdateLinkCommand builds the command.
func NewUpdateLinkCommand(service editorService) *UpdateLinkCommand {
	return &UpdateLinkCommand{service: service}
}

var _ gocommand.Commander[UpdateLinkInput] = (*UpdateLinkCommand)(nil)

// Execute merges into one link entry.
func (c *UpdateLinkCommand) Execute(ctx context.Context, msg UpdateLinkInput) error {
	if c.service == nil {
		return errEditorService
	}
	_, err := c.service.UpdateLink(msg.apply(ctx), msg.LinkID, msg.Data)
	return err
}

// UploadFieldInput attaches a pending file to a media field of the draft.
// Field is a path such as "image" or "slides[1].image". Data is base64 in JSON.
type UploadFieldInput struct {
	Actor
	Field       string `json:"field"`
	Name        string `json:"name"`
	ContentType string `json:"content_type,omitempty"`
	Data        []byte `json:"data"`
}

// UploadFieldCommand wraps Service.AttachFile.
type UploadFieldCommand struct {
	service   editorService
	telemetry Telemetry
}

// NewUploadFieldCommand builds the command.
func NewUploadFieldCommand(service editorService, telemetry Telemetry) *UploadFieldCommand {
	return &UploadFieldCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UploadFieldInput] = (*UploadFieldCommand)(nil)

// Execute stores the file in the draft.
func (c *UploadFieldCommand) Execute(ctx context.Context, msg UploadFieldInput) error {
	if c.service == nil {
		return errEditorService
	}
	ctx = msg.apply(ctx)
	snap, err := c.service.AttachFile(ctx, msg.Field, &builder.LocalFile{
		Name:        msg.Name,
		ContentType: msg.ContentType,
		Data:        msg.Data,
	})
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "pagebuilder.command.editor_upload", map[string]any{
		"kind":  string(snap.WidgetType),
		"field": msg.Field,
		"bytes": len(msg.Data),
	})
	return nil
}

// SlideInput adds a slide when SlideID is empty and removes SlideID otherwise.
type SlideInput struct {
	Actor
	SlideID string `json:"slide_id,omitempty"`
}

// SlideCommand wraps Service.AddSlide and Service.RemoveSlide.
type SlideCommand struct {
	service editorService
}

// NewSlideCommand builds the command.
func NewSlideCommand(service editorService) *SlideCommand {
	return &SlideCommand{service: service}
}

var _ gocommand.Commander[SlideInput] = (*SlideCommand)(nil)

// Execute adds or removes a carousel slide.
func (c *SlideCommand) Execute(ctx context.Context, msg SlideInput) error {
	if c.service == nil {
		return errEditorService
	}
	ctx = msg.apply(ctx)
	if msg.SlideID == "" {
		_, err := c.service.AddSlide(ctx)
		return err
	}
	_, _, err := c.service.RemoveSlide(ctx, msg.SlideID)
	return err
}

// CommitEditorInput closes the session. LocalOnly skips the remote save flag.
type CommitEditorInput struct {
	Actor
	LocalOnly bool `json:"local_only,omitempty"`
}

// CommitEditorCommand wraps Service.CommitEditor.
type CommitEditorCommand struct {
	service   editorService
	telemetry Telemetry
}

// NewCommitEditorCommand builds the command.
func NewCommitEditorCommand(service editorService, telemetry Telemetry) *CommitEditorCommand {
	return &CommitEditorCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CommitEditorInput] = (*CommitEditorCommand)(nil)

// Execute validates and commits the draft.
func (c *CommitEditorCommand) Execute(ctx context.Context, msg CommitEditorInput) error {
	if c.service == nil {
		return errEditorService
	}
	ctx = msg.apply(ctx)
	result, err := c.service.CommitEditor(ctx, msg.LocalOnly)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "pagebuilder.command.editor_commit", map[string]any{
		"kind":        string(result.Kind),
		"block_id":    result.BlockID,
		"remote_save": result.RemoteSave,
	})
	return nil
}

// CancelEditorInput discards the open edit.
type CancelEditorInput struct {
	Actor
}

// CancelEditorCommand wraps Service.CancelEditor.
type CancelEditorCommand struct {
	service   editorService
	telemetry Telemetry
}

// NewCancelEditorCommand builds the command.
func NewCancelEditorCommand(service editorService, telemetry Telemetry) *CancelEditorCommand {
	return &CancelEditorCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CancelEditorInput] = (*CancelEditorCommand)(nil)

// Execute cancels the session.
func (c *CancelEditorCommand) Execute(ctx context.Context, msg CancelEditorInput) error {
	if c.service == nil {
		return errEditorService
	}
	ctx = msg.apply(ctx)
	result, err := c.service.CancelEditor(ctx)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "pagebuilder.command.editor_cancel", map[string]any{
		"kind":     string(result.Kind),
		"block_id": result.BlockID,
		"removed":  result.Removed,
	})
	return nil
}
