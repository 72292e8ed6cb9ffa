package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RemoveBlockInput identifies the block to remove.
type RemoveBlockInput struct {
	Actor
	BlockID string `json:"block_id"`
}

type removeService interface {
	RemoveBlock(ctx context.Context, id string) (bool, error)
}

// RemoveBlockCommand wraps Service.RemoveBlock. Unknown ids are a no-op.
type RemoveBlockCommand struct {
	service   removeService
	telemetry Telemetry
}

// NewRemoveBlockCommand builds a command instance.
func NewRemoveBlockCommand(service removeService, telemetry Telemetry) *RemoveBlockCommand {
	return &RemoveBlockCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveBlockInput] = (*RemoveBlockCommand)(nil)

// Execute removes the block.
func (c *RemoveBlockCommand) Execute(ctx context.Context, msg RemoveBlockInput) error {
	if c.service == nil {
		return errors.New("remove block command requires service")
	}
	ctx = msg.apply(ctx)
	removed, err := c.service.RemoveBlock(ctx, msg.BlockID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "pagebuilder.command.remove", map[string]any{
		"block_id": msg.BlockID,
		"removed":  removed,
	})
	return nil
}
