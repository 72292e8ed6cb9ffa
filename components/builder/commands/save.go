package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// SaveProjectInput triggers a save. WaitUploads blocks until background
// uploads settle, which CLI callers need before exiting.
type SaveProjectInput struct {
	Actor
	WaitUploads bool `json:"wait_uploads,omitempty"`
}

type saveService interface {
	Save(ctx context.Context) (builder.SaveResult, error)
}

// SaveProjectCommand wraps Service.Save.
type SaveProjectCommand struct {
	service   saveService
	telemetry Telemetry
}

// NewSaveProjectCommand builds the command.
func NewSaveProjectCommand(service saveService, telemetry Telemetry) *SaveProjectCommand {
	return &SaveProjectCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveProjectInput] = (*SaveProjectCommand)(nil)

// Execute saves the document. Upload failures are reported through
// telemetry only.
func (c *SaveProjectCommand) Execute(ctx context.Context, msg SaveProjectInput) error {
	if c.service == nil {
		return errors.New("save command requires service")
	}
	ctx = msg.apply(ctx)
	result, err := c.service.Save(ctx)
	if err != nil {
		return err
	}
	payload := map[string]any{
		"files":     result.Files,
		"unmatched": len(result.Unmatched),
	}
	if msg.WaitUploads {
		payload["upload_failures"] = len(result.Uploads.Wait())
	}
	c.telemetry.Record(ctx, "pagebuilder.command.save", payload)
	return nil
}

// PublishPreviewInput publishes the current document as the preview snapshot.
type PublishPreviewInput struct {
	Actor
}

type previewService interface {
	PublishPreview(ctx context.Context) (builder.Document, error)
}

// PublishPreviewCommand wraps Service.PublishPreview.
type PublishPreviewCommand struct {
	service   previewService
	telemetry Telemetry
}

// NewPublishPreviewCommand builds the command.
func NewPublishPreviewCommand(service previewService, telemetry Telemetry) *PublishPreviewCommand {
	return &PublishPreviewCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[PublishPreviewInput] = (*PublishPreviewCommand)(nil)

// Execute publishes the snapshot.
func (c *PublishPreviewCommand) Execute(ctx context.Context, msg PublishPreviewInput) error {
	if c.service == nil {
		return errors.New("preview command requires service")
	}
	ctx = msg.apply(ctx)
	doc, err := c.service.PublishPreview(ctx)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "pagebuilder.command.preview", map[string]any{"blocks": len(doc.Blocks)})
	return nil
}
