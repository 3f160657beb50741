package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// SwitchChartInput selects a teacher chart.
type SwitchChartInput struct {
	Kind attendance.ChartKind `json:"kind"`
}

type chartService interface {
	SwitchTeacherChart(ctx context.Context, kind attendance.ChartKind) error
}

// SwitchChartCommand swaps the teacher chart from the cached payload.
type SwitchChartCommand struct {
	service   chartService
	telemetry Telemetry
}

// NewSwitchChartCommand creates the command.
func NewSwitchChartCommand(service chartService, telemetry Telemetry) *SwitchChartCommand {
	return &SwitchChartCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SwitchChartInput] = (*SwitchChartCommand)(nil)

// Execute delegates to the app.
func (c *SwitchChartCommand) Execute(ctx context.Context, msg SwitchChartInput) error {
	if c.service == nil {
		return errors.New("switch chart command requires service")
	}
	if err := c.service.SwitchTeacherChart(ctx, msg.Kind); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.chart", map[string]any{"kind": string(msg.Kind)})
	return nil
}

// ThemeInput sets Theme when present and toggles otherwise.
type ThemeInput struct {
	Theme attendance.Theme `json:"theme,omitempty"`
}

type themeService interface {
	ToggleTheme(ctx context.Context) (attendance.Theme, error)
	SetTheme(ctx context.Context, theme attendance.Theme) error
}

// ThemeCommand applies and persists the theme preference.
type ThemeCommand struct {
	service   themeService
	telemetry Telemetry
}

// NewThemeCommand creates the command.
func NewThemeCommand(service themeService, telemetry Telemetry) *ThemeCommand {
	return &ThemeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ThemeInput] = (*ThemeCommand)(nil)

// Execute delegates to the app.
func (c *ThemeCommand) Execute(ctx context.Context, msg ThemeInput) error {
	if c.service == nil {
		return errors.New("theme command requires service")
	}
	theme := msg.Theme
	if theme == "" {
		next, err := c.service.ToggleTheme(ctx)
		if err != nil {
			return err
		}
		theme = next
	} else if err := c.service.SetTheme(ctx, theme); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.theme", map[string]any{"theme": string(theme)})
	return nil
}

// CloseModalInput carries no fields.
type CloseModalInput struct{}

type modalService interface {
	CloseModal()
}

// CloseModalCommand hides the dialog.
type CloseModalCommand struct {
	service modalService
}

// NewCloseModalCommand creates the command.
func NewCloseModalCommand(service modalService) *CloseModalCommand {
	return &CloseModalCommand{service: service}
}

var _ gocommand.Commander[CloseModalInput] = (*CloseModalCommand)(nil)

// Execute delegates to the app.
func (c *CloseModalCommand) Execute(context.Context, CloseModalInput) error {
	if c.service == nil {
		return errors.New("close modal command requires service")
	}
	c.service.CloseModal()
	return nil
}
