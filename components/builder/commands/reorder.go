package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// ReorderBlocksInput moves ActiveID to the position of OverID.
type ReorderBlocksInput struct {
	Actor
	ActiveID string `json:"active_id"`
	OverID   string `json:"over_id"`
}

type reorderService interface {
	ReorderBlocks(ctx context.Context, activeID, overID string) (bool, error)
}

// ReorderBlocksCommand wraps Service.ReorderBlocks.
type ReorderBlocksCommand struct {
	service   reorderService
	telemetry Telemetry
}

// NewReorderBlocksCommand builds the command.
func NewReorderBlocksCommand(service reorderService, telemetry Telemetry) *ReorderBlocksCommand {
	return &ReorderBlocksCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ReorderBlocksInput] = (*ReorderBlocksCommand)(nil)

// Execute applies the move.
func (c *ReorderBlocksCommand) Execute(ctx context.Context, msg ReorderBlocksInput) error {
	if c.service == nil {
		return errors.New("reorder command requires service")
	}
	ctx = msg.apply(ctx)
	moved, err := c.service.ReorderBlocks(ctx, msg.ActiveID, msg.OverID)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "pagebuilder.command.reorder", map[string]any{
		"active_id": msg.ActiveID,
		"over_id":   msg.OverID,
		"moved":     moved,
	})
	return nil
}
