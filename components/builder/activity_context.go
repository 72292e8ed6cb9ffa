package builder

import "context"

// ActorContext identifies who triggered a builder operation.
type ActorContext struct {
	UserID    string
	SessionID string
}

type actorContextKey struct{}

// ContextWithActor stores actor metadata on ctx.
func ContextWithActor(ctx context.Context, actor ActorContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts actor metadata, if present.
func ActorFromContext(ctx context.Context) ActorContext {
	if ctx == nil {
		return ActorContext{}
	}
	if actor, ok := ctx.Value(actorContextKey{}).(ActorContext); ok {
		return actor
	}
	return ActorContext{}
}

func actorPayload(ctx context.Context, payload map[string]any) map[string]any {
	actor := ActorFromContext(ctx)
	if payload == nil {
		payload = map[string]any{}
	}
	if actor.UserID != "" {
		payload["user_id"] = actor.UserID
	}
	if actor.SessionID != "" {
		payload["session_id"] = actor.SessionID
	}
	return payload
}
