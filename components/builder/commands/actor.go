package commands

import (
	"context"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// Actor identifies the caller of a command.
type Actor struct {
	UserID    string `json:"user_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

func (a Actor) apply(ctx context.Context) context.Context {
	if a.UserID == "" && a.SessionID == "" {
		return ctx
	}
	return builder.ContextWithActor(ctx, builder.ActorContext{UserID: a.UserID, SessionID: a.SessionID})
}
