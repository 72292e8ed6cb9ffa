package builder

import "context"

// Telemetry records builder events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// Telemetry event names.
const (
	EventBlockAdd       = "pagebuilder.block.add"
	EventBlockRemove    = "pagebuilder.block.remove"
	EventBlockReorder   = "pagebuilder.block.reorder"
	EventEditorCommit   = "pagebuilder.editor.commit"
	EventEditorCancel   = "pagebuilder.editor.cancel"
	EventSaveSuccess    = "pagebuilder.save.success"
	EventSaveFailure    = "pagebuilder.save.failure"
	EventUploadFailure  = "pagebuilder.upload.failure"
	EventPreviewPublish = "pagebuilder.preview.publish"
)

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
