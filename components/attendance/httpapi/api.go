package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	"github.com/goliatone/go-attendance/components/attendance"
	"github.com/goliatone/go-attendance/components/attendance/commands"
	"github.com/goliatone/go-attendance/components/attendance/queries"
)

// Executor is the action surface shared by every host.
type Executor interface {
	Login(ctx context.Context, creds attendance.Credentials) error
	Register(ctx context.Context, req attendance.RegisterRequest) error
	Logout(ctx context.Context) error
	ShowPage(ctx context.Context, input commands.ShowPageInput) error
	Join(ctx context.Context, input commands.JoinCourseInput) error
	Leave(ctx context.Context, input commands.CourseRef) error
	ViewCourse(ctx context.Context, input commands.CourseRef) error
	ViewStudents(ctx context.Context, input commands.CourseRef) error
	OpenCreateCourse(ctx context.Context) error
	CreateCourse(ctx context.Context, input attendance.CourseInput) error
	EditCourse(ctx context.Context, input commands.CourseRef) error
	UpdateCourse(ctx context.Context, input commands.UpdateCourseInput) error
	OpenCreateForm(ctx context.Context) error
	CreateForm(ctx context.Context, input attendance.FormInput) error
	OpenSubmit(ctx context.Context, input commands.FormRef) error
	Submit(ctx context.Context, input commands.SubmitAttendanceInput) error
	SwitchChart(ctx context.Context, input commands.SwitchChartInput) error
	Theme(ctx context.Context, input commands.ThemeInput) error
	CloseModal(ctx context.Context) error
	State(ctx context.Context, req queries.ViewRequest) (attendance.Snapshot, error)
}

// ErrNotConfigured is returned when an action has no commander.
var ErrNotConfigured = errors.New("httpapi: action not configured")

// CommandExecutor adapts go-command commanders to Executor.
type CommandExecutor struct {
	LoginCommander            gocommand.Commander[attendance.Credentials]
	RegisterCommander         gocommand.Commander[attendance.RegisterRequest]
	LogoutCommander           gocommand.Commander[commands.LogoutInput]
	PageCommander             gocommand.Commander[commands.ShowPageInput]
	JoinCommander             gocommand.Commander[commands.JoinCourseInput]
	LeaveCommander            gocommand.Commander[commands.CourseRef]
	ViewCourseCommander       gocommand.Commander[commands.CourseRef]
	ViewStudentsCommander     gocommand.Commander[commands.CourseRef]
	OpenCreateCourseCommander gocommand.Commander[commands.OpenCreateCourseInput]
	CreateCourseCommander     gocommand.Commander[attendance.CourseInput]
	EditCourseCommander       gocommand.Commander[commands.CourseRef]
	UpdateCourseCommander     gocommand.Commander[commands.UpdateCourseInput]
	OpenCreateFormCommander   gocommand.Commander[commands.OpenCreateFormInput]
	CreateFormCommander       gocommand.Commander[attendance.FormInput]
	OpenSubmitCommander       gocommand.Commander[commands.FormRef]
	SubmitCommander           gocommand.Commander[commands.SubmitAttendanceInput]
	ChartCommander            gocommand.Commander[commands.SwitchChartInput]
	ThemeCommander            gocommand.Commander[commands.ThemeInput]
	CloseModalCommander       gocommand.Commander[commands.CloseModalInput]
	ViewQuerier               gocommand.Querier[queries.ViewRequest, attendance.Snapshot]
}

var _ Executor = (*CommandExecutor)(nil)

// App is everything NewCommandExecutor needs from the attendance app.
type App interface {
	Login(ctx context.Context, creds attendance.Credentials) (attendance.User, error)
	Register(ctx context.Context, req attendance.RegisterRequest) error
	Logout(ctx context.Context) error
	ShowPage(ctx context.Context, page attendance.Page) error
	JoinCourse(ctx context.Context, joinCode string) error
	LeaveCourse(ctx context.Context, courseID int) error
	ViewCourseDetails(ctx context.Context, courseID int) error
	ViewCourseStudents(ctx context.Context, courseID int) error
	EditCourse(ctx context.Context, courseID int) error
	OpenCreateCourse() error
	CreateCourse(ctx context.Context, input attendance.CourseInput) (attendance.Course, error)
	UpdateCourse(ctx context.Context, courseID int, input attendance.CourseInput) (attendance.Course, error)
	OpenCreateForm(ctx context.Context) error
	CreateForm(ctx context.Context, input attendance.FormInput) (attendance.AttendanceForm, error)
	OpenSubmitAttendance(formID int) error
	SubmitAttendance(ctx context.Context, formID int, input attendance.SubmissionInput) (attendance.AttendanceRecord, error)
	SwitchTeacherChart(ctx context.Context, kind attendance.ChartKind) error
	ToggleTheme(ctx context.Context) (attendance.Theme, error)
	SetTheme(ctx context.Context, theme attendance.Theme) error
	CloseModal()
	Snapshot() attendance.Snapshot
}

// NewCommandExecutor wires one commander per action against app.
func NewCommandExecutor(app App, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		LoginCommander:            commands.NewLoginCommand(app, telemetry),
		RegisterCommander:         commands.NewRegisterCommand(app, telemetry),
		LogoutCommander:           commands.NewLogoutCommand(app, telemetry),
		PageCommander:             commands.NewShowPageCommand(app, telemetry),
		JoinCommander:             commands.NewJoinCourseCommand(app, telemetry),
		LeaveCommander:            commands.NewLeaveCourseCommand(app, telemetry),
		ViewCourseCommander:       commands.NewViewCourseCommand(app, telemetry),
		ViewStudentsCommander:     commands.NewViewStudentsCommand(app, telemetry),
		OpenCreateCourseCommander: commands.NewOpenCreateCourseCommand(app, telemetry),
		CreateCourseCommander:     commands.NewCreateCourseCommand(app, telemetry),
		EditCourseCommander:       commands.NewEditCourseCommand(app, telemetry),
		UpdateCourseCommander:     commands.NewUpdateCourseCommand(app, telemetry),
		OpenCreateFormCommander:   commands.NewOpenCreateFormCommand(app, telemetry),
		CreateFormCommander:       commands.NewCreateFormCommand(app, telemetry),
		OpenSubmitCommander:       commands.NewOpenSubmitCommand(app, telemetry),
		SubmitCommander:           commands.NewSubmitAttendanceCommand(app, telemetry),
		ChartCommander:            commands.NewSwitchChartCommand(app, telemetry),
		ThemeCommander:            commands.NewThemeCommand(app, telemetry),
		CloseModalCommander:       commands.NewCloseModalCommand(app),
		ViewQuerier:               queries.NewViewQuery(app),
	}
}

func execute[T any](ctx context.Context, cmd gocommand.Commander[T], msg T) error {
	if cmd == nil {
		return ErrNotConfigured
	}
	return cmd.Execute(ctx, msg)
}

func (e *CommandExecutor) Login(ctx context.Context, creds attendance.Credentials) error {
	return execute(ctx, e.LoginCommander, creds)
}

func (e *CommandExecutor) Register(ctx context.Context, req attendance.RegisterRequest) error {
	return execute(ctx, e.RegisterCommander, req)
}

func (e *CommandExecutor) Logout(ctx context.Context) error {
	return execute(ctx, e.LogoutCommander, commands.LogoutInput{})
}

func (e *CommandExecutor) ShowPage(ctx context.Context, input commands.ShowPageInput) error {
	return execute(ctx, e.PageCommander, input)
}

func (e *CommandExecutor) Join(ctx context.Context, input commands.JoinCourseInput) error {
	return execute(ctx, e.JoinCommander, input)
}

func (e *CommandExecutor) Leave(ctx context.Context, input commands.CourseRef) error {
	return execute(ctx, e.LeaveCommander, input)
}

func (e *CommandExecutor) ViewCourse(ctx context.Context, input commands.CourseRef) error {
	return execute(ctx, e.ViewCourseCommander, input)
}

func (e *CommandExecutor) ViewStudents(ctx context.Context, input commands.CourseRef) error {
	return execute(ctx, e.ViewStudentsCommander, input)
}

func (e *CommandExecutor) OpenCreateCourse(ctx context.Context) error {
	return execute(ctx, e.OpenCreateCourseCommander, commands.OpenCreateCourseInput{})
}

func (e *CommandExecutor) CreateCourse(ctx context.Context, input attendance.CourseInput) error {
	return execute(ctx, e.CreateCourseCommander, input)
}

func (e *CommandExecutor) EditCourse(ctx context.Context, input commands.CourseRef) error {
	return execute(ctx, e.EditCourseCommander, input)
}

func (e *CommandExecutor) UpdateCourse(ctx context.Context, input commands.UpdateCourseInput) error {
	return execute(ctx, e.UpdateCourseCommander, input)
}

func (e *CommandExecutor) OpenCreateForm(ctx context.Context) error {
	return execute(ctx, e.OpenCreateFormCommander, commands.OpenCreateFormInput{})
}

func (e *CommandExecutor) CreateForm(ctx context.Context, input attendance.FormInput) error {
	return execute(ctx, e.CreateFormCommander, input)
}

func (e *CommandExecutor) OpenSubmit(ctx context.Context, input commands.FormRef) error {
	return execute(ctx, e.OpenSubmitCommander, input)
}

func (e *CommandExecutor) Submit(ctx context.Context, input commands.SubmitAttendanceInput) error {
	return execute(ctx, e.SubmitCommander, input)
}

func (e *CommandExecutor) SwitchChart(ctx context.Context, input commands.SwitchChartInput) error {
	return execute(ctx, e.ChartCommander, input)
}

func (e *CommandExecutor) Theme(ctx context.Context, input commands.ThemeInput) error {
	return execute(ctx, e.ThemeCommander, input)
}

func (e *CommandExecutor) CloseModal(ctx context.Context) error {
	return execute(ctx, e.CloseModalCommander, commands.CloseModalInput{})
}

// State reads the current snapshot.
func (e *CommandExecutor) State(ctx context.Context, req queries.ViewRequest) (attendance.Snapshot, error) {
	if e.ViewQuerier == nil {
		return attendance.Snapshot{}, ErrNotConfigured
	}
	return e.ViewQuerier.Query(ctx, req)
}
