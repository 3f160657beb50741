package gorouter

import (
	"embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-attendance/components/attendance"
	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html
var consoleTemplates embed.FS

type consolePage struct {
	tpl        attendance.TemplateRenderer
	messages   *attendance.Messages
	text       map[string]string
	actions    string
	socketJSON string
}

func newConsolePage(messages *attendance.Messages, actions, socketURL string) (*consolePage, error) {
	if messages == nil {
		messages = attendance.NewMessages(attendance.DefaultLocale, nil)
	}
	tpl, err := template.NewRenderer(
		template.WithFS(consoleTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
	if err != nil {
		return nil, fmt.Errorf("gorouter: load console template: %w", err)
	}
	socket, err := json.Marshal(socketURL)
	if err != nil {
		return nil, fmt.Errorf("gorouter: encode socket url: %w", err)
	}
	return &consolePage{
		tpl:        tpl,
		messages:   messages,
		text:       messages.Catalogue(),
		actions:    actions,
		socketJSON: string(socket),
	}, nil
}

// Render produces the full console page for a snapshot.
func (p *consolePage) Render(snap attendance.Snapshot) ([]byte, error) {
	out, err := p.tpl.Render("console.html", p.view(snap))
	if err != nil {
		return nil, fmt.Errorf("gorouter: render console: %w", err)
	}
	return []byte(out), nil
}

// view flattens the snapshot into string keyed maps. Target names use
// underscores so templates can address them directly.
func (p *consolePage) view(snap attendance.Snapshot) map[string]any {
	modal := snap.View.Modal
	view := map[string]any{
		"text":           p.text,
		"locale":         p.messages.Locale(),
		"theme":          string(snap.Theme),
		"page":           string(snap.View.Page),
		"panel":          string(snap.View.Panel),
		"navbar_visible": snap.View.NavbarVisible,
		"actions":        p.actions,
		"socket_json":    p.socketJSON,
		"modal": map[string]any{
			"open":  modal.Open,
			"kind":  string(modal.Kind),
			"title": modal.Title,
			"body":  string(modal.Body),
		},
	}
	if nav := snap.View.Navbar; nav != nil {
		view["navbar"] = map[string]any{"full_name": nav.FullName, "role_label": nav.RoleLabel}
	}
	for target, fragment := range snap.Fragments {
		view[varName(target)] = string(fragment)
	}
	for target, chart := range snap.Charts {
		if chart.HTML == "" {
			continue
		}
		view[varName(target)] = map[string]any{"title": chart.Title, "html": chart.HTML}
	}

	kinds := make([]map[string]any, 0, len(snap.ChartKinds))
	for _, kind := range snap.ChartKinds {
		kinds = append(kinds, map[string]any{
			"kind":   string(kind),
			"label":  p.messages.Text("chart." + string(kind) + ".title"),
			"active": strconv.FormatBool(kind == snap.ActiveChart),
		})
	}
	view["chart_kinds"] = kinds

	notifications := make([]map[string]any, 0, len(snap.Notifications))
	for _, n := range snap.Notifications {
		notifications = append(notifications, map[string]any{
			"id":       n.ID,
			"severity": string(n.Severity),
			"leaving":  strconv.FormatBool(n.Leaving),
			"title":    n.Title,
			"message":  n.Message,
		})
	}
	view["notifications"] = notifications
	return view
}

func varName(target attendance.Target) string {
	return strings.ReplaceAll(string(target), "-", "_")
}
