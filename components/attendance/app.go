package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Options configures an App. Only Gateway is required.
type Options struct {
	Gateway    Gateway
	ThemeStore ThemeStore
	Notifier   *Notifier
	Telemetry  Telemetry
	Messages   *Messages
	Document   *Document
	Charts     *ChartRenderer
	Validator  *Validator
	ActionBase string
}

// App is one page lifetime of the client. Every action holds the App lock
// for its whole duration, including its API calls, so responses are applied
// in the order actions were issued.
type App struct {
	mu        sync.Mutex
	gateway   Gateway
	session   *Session
	view      *ViewRouter
	sessions  *SessionController
	dashboard *Orchestrator
	renderer  *Renderer
	themes    *ThemeController
	notifier  *Notifier
	messages  *Messages
	validator *Validator
	telemetry Telemetry
	report    reporter
}

// NewApp wires the components with safe defaults.
func NewApp(opts Options) (*App, error) {
	if opts.Gateway == nil {
		return nil, ErrMissingGateway
	}
	telemetry := normalizeTelemetry(opts.Telemetry)
	messages := normalizeMessages(opts.Messages)
	validator := normalizeValidator(opts.Validator)
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}
	themes := NewThemeController(opts.ThemeStore, telemetry)
	charts := opts.Charts
	if charts == nil {
		charts = NewChartRenderer(WithChartThemeResolver(func() string { return themes.Current().ChartTheme() }))
	}
	renderer, err := NewRenderer(RendererOptions{Messages: messages, ActionBase: opts.ActionBase})
	if err != nil {
		return nil, err
	}
	dashboard := NewOrchestrator(OrchestratorOptions{
		Gateway:   opts.Gateway,
		Document:  opts.Document,
		Renderer:  renderer,
		Charts:    charts,
		Notifier:  notifier,
		Messages:  messages,
		Telemetry: telemetry,
	})
	session := NewSession()
	view := NewViewRouter(session, dashboard, messages)
	sessions := NewSessionController(SessionControllerOptions{
		Auth:      opts.Gateway,
		Session:   session,
		View:      view,
		Notifier:  notifier,
		Messages:  messages,
		Telemetry: telemetry,
		Validator: validator,
		OnSignOut: dashboard.Reset,
	})
	return &App{
		gateway:   opts.Gateway,
		session:   session,
		view:      view,
		sessions:  sessions,
		dashboard: dashboard,
		renderer:  renderer,
		themes:    themes,
		notifier:  notifier,
		messages:  messages,
		validator: validator,
		telemetry: telemetry,
		report:    reporter{notifier: notifier, messages: messages, telemetry: telemetry},
	}, nil
}

// Start applies the stored theme and performs the identity check.
func (a *App) Start(ctx context.Context) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.themes.Init(ctx)
	return a.sessions.Init(ctx)
}

// Notifier exposes the notification stack for hosts.
func (a *App) Notifier() *Notifier { return a.notifier }

// Messages exposes the catalogue for hosts.
func (a *App) Messages() *Messages { return a.messages }

// Login signs in.
func (a *App) Login(ctx context.Context, creds Credentials) (User, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions.Login(ctx, creds)
}

// Register creates an account.
func (a *App) Register(ctx context.Context, req RegisterRequest) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions.Register(ctx, req)
}

// Logout signs out.
func (a *App) Logout(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessions.Logout(ctx)
}

// ShowPage switches pages. The dashboard is only reachable with an identity.
func (a *App) ShowPage(ctx context.Context, page Page) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch page {
	case PageLogin, PageRegister:
		a.view.ShowPage(page)
		return nil
	case PageDashboard:
		if !a.session.Authenticated() {
			return ErrNotAuthenticated
		}
		a.view.ShowDashboard(ctx)
		return nil
	default:
		return fmt.Errorf("%w: unknown page %q", ErrValidation, page)
	}
}

// JoinCourse joins with a code, then refetches courses and pending forms.
func (a *App) JoinCourse(ctx context.Context, joinCode string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.session.Authenticated() {
		return ErrNotAuthenticated
	}
	code := normalizeJoinCode(joinCode)
	if code == "" {
		a.report.notify("join.error.title", a.messages.Text("join.missing"), SeverityError)
		return fmt.Errorf("%w: join code is required", ErrValidation)
	}
	ack, err := a.gateway.JoinCourse(ctx, code)
	if err != nil {
		a.report.failure(ctx, "course.join", "join.error.title", "join.error.fallback", err)
		return err
	}
	a.telemetry.Record(ctx, "attendance.course.join", map[string]any{"join_code": code})
	a.report.notify("join.success.title", a.report.serverMessage(ack.Message, "join.success.message"), SeveritySuccess)
	a.refreshMembership(ctx)
	return nil
}

// LeaveCourse leaves a course, then refetches courses and pending forms.
func (a *App) LeaveCourse(ctx context.Context, courseID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.session.Authenticated() {
		return ErrNotAuthenticated
	}
	ack, err := a.gateway.LeaveCourse(ctx, courseID)
	if err != nil {
		a.report.failure(ctx, "course.leave", "leave.error.title", "leave.error.fallback", err)
		return err
	}
	a.telemetry.Record(ctx, "attendance.course.leave", map[string]any{"course_id": courseID})
	a.report.notify("leave.success.title", a.report.serverMessage(ack.Message, "leave.success.message"), SeveritySuccess)
	a.refreshMembership(ctx)
	return nil
}

func (a *App) refreshMembership(ctx context.Context) {
	_ = a.dashboard.RefreshStudentCourses(ctx)
	_ = a.dashboard.RefreshPendingForms(ctx)
}

// ViewCourseDetails opens the course details dialog.
func (a *App) ViewCourseDetails(ctx context.Context, courseID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	course, err := a.gateway.Course(ctx, courseID)
	if err != nil {
		a.report.failure(ctx, "course.details", "course.load.error.title", "course.load.error.fallback", err)
		return err
	}
	return a.openModal(ModalCourseDetails, "modal.course.details", Modal{CourseID: courseID}, func() (Fragment, error) {
		return a.renderer.CourseDetails(course)
	})
}

// ViewCourseStudents opens the roster dialog.
func (a *App) ViewCourseStudents(ctx context.Context, courseID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	roster, err := a.gateway.CourseStudents(ctx, courseID)
	if err != nil {
		a.report.failure(ctx, "course.students", "course.load.error.title", "students.error.fallback", err)
		return err
	}
	return a.openModal(ModalCourseStudents, "modal.course.students", Modal{CourseID: courseID}, func() (Fragment, error) {
		return a.renderer.Roster(roster)
	})
}

// OpenCreateCourse shows the empty course form.
func (a *App) OpenCreateCourse() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.openModal(ModalCreateCourse, "modal.course.create", Modal{}, func() (Fragment, error) {
		return a.renderer.CourseForm(nil)
	})
}

// CreateCourse creates a course, closes the dialog and refetches the teacher list.
func (a *App) CreateCourse(ctx context.Context, input CourseInput) (Course, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.validator.Struct(input); err != nil {
		a.report.failure(ctx, "course.create", "course.create.error.title", "course.create.error.fallback", err)
		return Course{}, err
	}
	course, err := a.gateway.CreateCourse(ctx, input)
	if err != nil {
		a.report.failure(ctx, "course.create", "course.create.error.title", "course.create.error.fallback", err)
		return Course{}, err
	}
	a.telemetry.Record(ctx, "attendance.course.create", map[string]any{"course_code": input.Code})
	a.view.CloseModal()
	a.report.notify("course.create.success.title", a.messages.Textf("course.create.success.message", input.Name), SeveritySuccess)
	_, _ = a.dashboard.RefreshTeacherCourses(ctx)
	return course, nil
}

// EditCourse loads a course into the edit dialog.
func (a *App) EditCourse(ctx context.Context, courseID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	course, err := a.gateway.Course(ctx, courseID)
	if err != nil {
		a.report.failure(ctx, "course.edit", "course.load.error.title", "course.load.error.fallback", err)
		return err
	}
	return a.openModal(ModalEditCourse, "modal.course.edit", Modal{CourseID: courseID}, func() (Fragment, error) {
		return a.renderer.CourseForm(&course)
	})
}

// UpdateCourse saves a course, closes the dialog and refetches the teacher list.
func (a *App) UpdateCourse(ctx context.Context, courseID int, input CourseInput) (Course, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.validator.Struct(input); err != nil {
		a.report.failure(ctx, "course.update", "course.update.error.title", "course.update.error.fallback", err)
		return Course{}, err
	}
	course, err := a.gateway.UpdateCourse(ctx, courseID, input)
	if err != nil {
		a.report.failure(ctx, "course.update", "course.update.error.title", "course.update.error.fallback", err)
		return Course{}, err
	}
	a.telemetry.Record(ctx, "attendance.course.update", map[string]any{"course_id": courseID})
	a.view.CloseModal()
	a.report.notify("course.update.success.title", a.messages.Textf("course.update.success.message", input.Name), SeveritySuccess)
	_, _ = a.dashboard.RefreshTeacherCourses(ctx)
	return course, nil
}

// OpenCreateForm loads the course options and shows the new form dialog.
func (a *App) OpenCreateForm(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	courses, err := a.gateway.Courses(ctx)
	if err != nil {
		a.report.failure(ctx, "form.options", "course.load.error.title", "course.load.error.fallback", err)
		return err
	}
	return a.openModal(ModalCreateForm, "modal.form.create", Modal{}, func() (Fragment, error) {
		return a.renderer.CreateAttendanceForm(courses)
	})
}

// CreateForm creates an attendance form and closes the dialog.
func (a *App) CreateForm(ctx context.Context, input FormInput) (AttendanceForm, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.validator.Struct(input); err != nil {
		a.report.failure(ctx, "form.create", "form.create.error.title", "form.create.error.fallback", err)
		return AttendanceForm{}, err
	}
	form, err := a.gateway.CreateForm(ctx, input)
	if err != nil {
		a.report.failure(ctx, "form.create", "form.create.error.title", "form.create.error.fallback", err)
		return AttendanceForm{}, err
	}
	a.telemetry.Record(ctx, "attendance.form.create", map[string]any{"course_id": input.CourseID})
	a.view.CloseModal()
	a.report.notify("form.create.success.title", a.messages.Textf("form.create.success.message", input.Title), SeveritySuccess)
	return form, nil
}

// OpenSubmitAttendance shows the status picker for a pending form.
func (a *App) OpenSubmitAttendance(formID int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	form, ok := a.dashboard.PendingForm(formID)
	if !ok {
		form = AttendanceForm{ID: formID}
	}
	return a.openModal(ModalSubmitAttendance, "modal.attendance.submit", Modal{FormID: formID}, func() (Fragment, error) {
		return a.renderer.SubmitAttendanceForm(form)
	})
}

// SubmitAttendance records a status, closes the dialog and refetches pending forms.
func (a *App) SubmitAttendance(ctx context.Context, formID int, input SubmissionInput) (AttendanceRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.validator.Struct(input); err != nil {
		a.report.failure(ctx, "attendance.submit", "submit.error.title", "submit.error.fallback", err)
		return AttendanceRecord{}, err
	}
	record, err := a.gateway.SubmitAttendance(ctx, formID, input)
	if err != nil {
		a.report.failure(ctx, "attendance.submit", "submit.error.title", "submit.error.fallback", err)
		return AttendanceRecord{}, err
	}
	a.telemetry.Record(ctx, "attendance.attendance.submit", map[string]any{"form_id": formID, "status": string(input.Status)})
	a.view.CloseModal()
	a.report.notify("submit.success.title", a.messages.Text("submit.success.message"), SeveritySuccess)
	_ = a.dashboard.RefreshPendingForms(ctx)
	return record, nil
}

// SwitchTeacherChart swaps the teacher chart without refetching.
func (a *App) SwitchTeacherChart(ctx context.Context, kind ChartKind) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dashboard.SwitchTeacherChart(ctx, kind)
}

// ToggleTheme flips and persists the theme, then redraws the live charts.
func (a *App) ToggleTheme(ctx context.Context) (Theme, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	theme, err := a.themes.Toggle(ctx)
	return theme, errors.Join(err, a.dashboard.RedrawCharts(ctx))
}

// SetTheme applies and persists theme, then redraws the live charts.
func (a *App) SetTheme(ctx context.Context, theme Theme) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.themes.Set(ctx, theme)
	if a.themes.Current() != theme {
		return err
	}
	return errors.Join(err, a.dashboard.RedrawCharts(ctx))
}

// CloseModal hides the dialog.
func (a *App) CloseModal() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.CloseModal()
}

func (a *App) openModal(kind ModalKind, titleKey string, modal Modal, render func() (Fragment, error)) error {
	body, err := render()
	if err != nil {
		return fmt.Errorf("attendance: render modal %s: %w", kind, err)
	}
	modal.Kind = kind
	modal.Title = a.messages.Text(titleKey)
	modal.Body = body
	a.view.OpenModal(modal)
	return nil
}

// Snapshot is a consistent copy of everything on screen.
type Snapshot struct {
	Theme         Theme                `json:"theme"`
	View          ViewState            `json:"view"`
	User          *User                `json:"user,omitempty"`
	Fragments     map[Target]Fragment  `json:"fragments"`
	Charts        map[Target]ChartView `json:"charts"`
	ChartKinds    []ChartKind          `json:"chart_kinds,omitempty"`
	ActiveChart   ChartKind            `json:"active_chart,omitempty"`
	Notifications []Notification       `json:"notifications"`
}

// Snapshot copies the current state.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	doc := a.dashboard.Document()
	snap := Snapshot{
		Theme:         a.themes.Current(),
		View:          a.view.State(),
		Fragments:     doc.Fragments(),
		Charts:        doc.Charts(),
		Notifications: a.notifier.Active(),
	}
	if user, ok := a.session.User(); ok {
		snap.User = &user
	}
	if doc.Mounted(TargetTeacherChart) {
		if canvas, ok := doc.Canvas(TargetTeacherChart); ok {
			snap.ChartKinds = canvas.Kinds()
			snap.ActiveChart, _ = canvas.ActiveKind()
		}
	}
	return snap
}

// ChartCanvas exposes a canvas for inspection.
func (a *App) ChartCanvas(target Target) (*ChartCanvas, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dashboard.Document().Canvas(target)
}
