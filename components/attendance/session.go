package attendance

import (
	"context"
	"errors"
)

// Session holds the authenticated identity for one page lifetime. It is
// never persisted and must be re-derived from the server on every load.
type Session struct {
	user *User
}

// NewSession returns an unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// User returns the current identity.
func (s *Session) User() (User, bool) {
	if s == nil || s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// Authenticated reports whether an identity is held.
func (s *Session) Authenticated() bool {
	_, ok := s.User()
	return ok
}

func (s *Session) set(user User) {
	s.user = &user
}

func (s *Session) clear() {
	s.user = nil
}

// SessionControllerOptions wires a SessionController.
type SessionControllerOptions struct {
	Auth      AuthGateway
	Session   *Session
	View      *ViewRouter
	Notifier  *Notifier
	Messages  *Messages
	Telemetry Telemetry
	Validator *Validator
	// OnSignOut runs after identity is cleared, and before a new login
	// replaces an existing one.
	OnSignOut func()
}

// SessionController owns identity transitions.
type SessionController struct {
	auth      AuthGateway
	session   *Session
	view      *ViewRouter
	validator *Validator
	telemetry Telemetry
	report    reporter
	onSignOut func()
}

// NewSessionController builds a controller.
func NewSessionController(opts SessionControllerOptions) *SessionController {
	telemetry := normalizeTelemetry(opts.Telemetry)
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &SessionController{
		auth:      opts.Auth,
		session:   opts.Session,
		view:      opts.View,
		validator: normalizeValidator(opts.Validator),
		telemetry: telemetry,
		report:    reporter{notifier: notifier, messages: normalizeMessages(opts.Messages), telemetry: telemetry},
		onSignOut: opts.OnSignOut,
	}
}

// Init performs the single identity check of a page load. Any failure lands on
// the login page without a notification.
func (c *SessionController) Init(ctx context.Context) bool {
	user, err := c.auth.Profile(ctx)
	if err != nil {
		c.session.clear()
		c.telemetry.Record(ctx, "attendance.session.check", map[string]any{"authenticated": false, "error": err})
		c.view.ShowPage(PageLogin)
		return false
	}
	c.session.set(user)
	c.telemetry.Record(ctx, "attendance.session.check", map[string]any{"authenticated": true, "role": string(user.Role)})
	c.view.ShowDashboard(ctx)
	return true
}

// Login posts credentials. On failure the view stays where it is.
func (c *SessionController) Login(ctx context.Context, creds Credentials) (User, error) {
	if err := c.validator.Struct(creds); err != nil {
		c.report.failure(ctx, "session.login", "login.error.title", "login.error.fallback", err)
		return User{}, err
	}
	user, err := c.auth.Login(ctx, creds)
	if err != nil {
		c.report.failure(ctx, "session.login", "login.error.title", "login.error.fallback", err)
		return User{}, err
	}
	if c.session.Authenticated() && c.onSignOut != nil {
		c.onSignOut()
	}
	c.session.set(user)
	c.telemetry.Record(ctx, "attendance.session.login", map[string]any{"user_id": user.ID, "role": string(user.Role)})
	c.view.ShowDashboard(ctx)
	c.report.notify("login.success.title", c.report.messages.Textf("login.success.message", user.DisplayName()), SeveritySuccess)
	return user, nil
}

// Register creates an account and returns to the login page on success.
func (c *SessionController) Register(ctx context.Context, req RegisterRequest) error {
	if req.Role != RoleStudent {
		req.StudentID = ""
	}
	if err := c.validator.Struct(req); err != nil {
		c.report.failure(ctx, "session.register", "register.error.title", "register.error.fallback", err)
		return err
	}
	if _, err := c.auth.Register(ctx, req); err != nil {
		c.report.failure(ctx, "session.register", "register.error.title", "register.error.fallback", err)
		return err
	}
	c.telemetry.Record(ctx, "attendance.session.register", map[string]any{"username": req.Username, "role": string(req.Role)})
	c.view.ShowPage(PageLogin)
	c.report.notify("register.success.title", c.report.messages.Text("register.success.message"), SeveritySuccess)
	return nil
}

// Logout is best effort: identity is cleared and login shown whatever the
// server answers. Only a request that throws surfaces a failure notice.
func (c *SessionController) Logout(ctx context.Context) error {
	err := c.auth.Logout(ctx)
	c.session.clear()
	if c.onSignOut != nil {
		c.onSignOut()
	}
	c.view.ShowPage(PageLogin)
	var apiErr *APIError
	switch {
	case err == nil || errors.As(err, &apiErr):
		c.telemetry.Record(ctx, "attendance.session.logout", map[string]any{"server_error": err})
		c.report.notify("logout.success.title", c.report.messages.Text("logout.success.message"), SeverityInfo)
		return nil
	default:
		c.report.failure(ctx, "session.logout", "logout.error.title", "logout.error.title", err)
		return err
	}
}
