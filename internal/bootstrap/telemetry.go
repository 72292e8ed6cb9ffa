package bootstrap

import (
	"context"
	"sort"

	builder "github.com/goliatone/go-pagebuilder/components/builder"
)

// LogTelemetry writes telemetry events to a structured logger. It satisfies
// both the service and the command telemetry contracts.
type LogTelemetry struct {
	logger builder.Logger
}

// NewLogTelemetry wraps logger.
func NewLogTelemetry(logger builder.Logger) *LogTelemetry {
	if logger == nil {
		logger = builder.NoOpLogger()
	}
	return &LogTelemetry{logger: logger}
}

// Record logs event at debug level with the payload as sorted key/value pairs.
func (t *LogTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, payload[key])
	}
	t.logger.WithContext(ctx).Debug(event, args...)
}
