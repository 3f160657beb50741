package attendance

import "context"

// reporter turns action outcomes into notifications. Transport failures are
// shown with the generic network message and their cause goes to telemetry only.
type reporter struct {
	notifier  *Notifier
	messages  *Messages
	telemetry Telemetry
}

func (r reporter) failure(ctx context.Context, op, titleKey, fallbackKey string, err error) {
	payload := map[string]any{"op": op, "error": err}
	if IsNetwork(err) {
		payload["class"] = "network"
	} else {
		payload["class"] = "server"
	}
	r.telemetry.Record(ctx, "attendance."+op+".error", payload)
	message := FailureMessage(err, r.messages.Text(fallbackKey), r.messages.Text("network.error"))
	r.notifier.Notify(r.messages.Text(titleKey), message, SeverityError)
}

func (r reporter) notify(titleKey, message string, severity Severity) {
	r.notifier.Notify(r.messages.Text(titleKey), message, severity)
}

// serverMessage prefers a non-empty server message over the catalogue text.
func (r reporter) serverMessage(message, fallbackKey string) string {
	if message != "" {
		return message
	}
	return r.messages.Text(fallbackKey)
}
