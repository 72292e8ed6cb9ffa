package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// AddBlockInput places a block of Kind at the end of the page.
type AddBlockInput struct {
	Actor
	Kind builder.WidgetKind `json:"kind"`
	Data map[string]any     `json:"data,omitempty"`
}

type addService interface {
	AddBlock(ctx context.Context, kind builder.WidgetKind, data map[string]any) (builder.Block, error)
}

// AddBlockCommand wraps Service.AddBlock.
type AddBlockCommand struct {
	service   addService
	telemetry Telemetry
}

// NewAddBlockCommand creates a command instance.
func NewAddBlockCommand(service addService, telemetry Telemetry) *AddBlockCommand {
	return &AddBlockCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddBlockInput] = (*AddBlockCommand)(nil)

// Execute adds the block.
func (c *AddBlockCommand) Execute(ctx context.Context, msg AddBlockInput) error {
	if c.service == nil {
		return errors.New("add block command requires service")
	}
	ctx = msg.apply(ctx)
	block, err := c.service.AddBlock(ctx, msg.Kind, msg.Data)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "pagebuilder.command.add", map[string]any{
		"block_id": block.ID,
		"kind":     string(block.Type),
	})
	return nil
}
