package attendance

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Telemetry records client events. It is the diagnostic channel: transport
// failures are logged here and never shown verbatim to the user.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// ZapTelemetry writes events to a zap logger. Events ending in ".error" log at warn level.
type ZapTelemetry struct {
	Log *zap.Logger
}

// NewZapTelemetry wraps logger, falling back to a no-op logger.
func NewZapTelemetry(logger *zap.Logger) *ZapTelemetry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapTelemetry{Log: logger}
}

// Record implements Telemetry.
func (t *ZapTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	if t == nil || t.Log == nil {
		return
	}
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys)+1)
	fields = append(fields, zap.String("event", event))
	for _, key := range keys {
		if err, ok := payload[key].(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, payload[key]))
	}
	if isErrorEvent(event) {
		t.Log.Warn("attendance event", fields...)
		return
	}
	t.Log.Debug("attendance event", fields...)
}

func isErrorEvent(event string) bool {
	return strings.HasSuffix(event, ".error")
}
