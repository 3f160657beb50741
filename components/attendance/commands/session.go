package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

type loginService interface {
	Login(ctx context.Context, creds attendance.Credentials) (attendance.User, error)
}

// LoginCommand signs a user in.
type LoginCommand struct {
	service   loginService
	telemetry Telemetry
}

// NewLoginCommand creates the command.
func NewLoginCommand(service loginService, telemetry Telemetry) *LoginCommand {
	return &LoginCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[attendance.Credentials] = (*LoginCommand)(nil)

// Execute delegates to the app session controller.
func (c *LoginCommand) Execute(ctx context.Context, msg attendance.Credentials) error {
	if c.service == nil {
		return errors.New("login command requires service")
	}
	user, err := c.service.Login(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.login", map[string]any{
		"user_id": user.ID,
		"role":    string(user.Role),
	})
	return nil
}

type registerService interface {
	Register(ctx context.Context, req attendance.RegisterRequest) error
}

// RegisterCommand creates an account.
type RegisterCommand struct {
	service   registerService
	telemetry Telemetry
}

// NewRegisterCommand creates the command.
func NewRegisterCommand(service registerService, telemetry Telemetry) *RegisterCommand {
	return &RegisterCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[attendance.RegisterRequest] = (*RegisterCommand)(nil)

// Execute delegates to the app session controller.
func (c *RegisterCommand) Execute(ctx context.Context, msg attendance.RegisterRequest) error {
	if c.service == nil {
		return errors.New("register command requires service")
	}
	if err := c.service.Register(ctx, msg); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.register", map[string]any{"role": string(msg.Role)})
	return nil
}

// LogoutInput carries no fields.
type LogoutInput struct{}

type logoutService interface {
	Logout(ctx context.Context) error
}

// LogoutCommand signs the user out.
type LogoutCommand struct {
	service   logoutService
	telemetry Telemetry
}

// NewLogoutCommand creates the command.
func NewLogoutCommand(service logoutService, telemetry Telemetry) *LogoutCommand {
	return &LogoutCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LogoutInput] = (*LogoutCommand)(nil)

// Execute delegates to the app session controller.
func (c *LogoutCommand) Execute(ctx context.Context, _ LogoutInput) error {
	if c.service == nil {
		return errors.New("logout command requires service")
	}
	if err := c.service.Logout(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.logout", nil)
	return nil
}

// ShowPageInput selects a page.
type ShowPageInput struct {
	Page attendance.Page `json:"page"`
}

type pageService interface {
	ShowPage(ctx context.Context, page attendance.Page) error
}

// ShowPageCommand navigates between pages.
type ShowPageCommand struct {
	service   pageService
	telemetry Telemetry
}

// NewShowPageCommand creates the command.
func NewShowPageCommand(service pageService, telemetry Telemetry) *ShowPageCommand {
	return &ShowPageCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ShowPageInput] = (*ShowPageCommand)(nil)

// Execute delegates to the app view router.
func (c *ShowPageCommand) Execute(ctx context.Context, msg ShowPageInput) error {
	if c.service == nil {
		return errors.New("show page command requires service")
	}
	if err := c.service.ShowPage(ctx, msg.Page); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.page", map[string]any{"page": string(msg.Page)})
	return nil
}
