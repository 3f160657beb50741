package commands

import (
	"context"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// Telemetry is the attendance event sink. The App's ZapTelemetry can be
// passed to commands as is.
type Telemetry = attendance.Telemetry

// TelemetryFunc records events with a plain function. A nil func drops them.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

// Record implements Telemetry.
func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	if f != nil {
		f(ctx, event, payload)
	}
}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return TelemetryFunc(nil)
	}
	return t
}
