package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, gw *fakeGateway, store ThemeStore) *App {
	t.Helper()
	notifier := NewNotifier(WithNotificationTiming(time.Hour, time.Hour))
	t.Cleanup(notifier.Close)
	app, err := NewApp(Options{
		Gateway:    gw,
		ThemeStore: store,
		Notifier:   notifier,
		Charts:     NewChartRenderer(WithChartCache(nil)),
	})
	require.NoError(t, err)
	return app
}

func TestNewAppRequiresGateway(t *testing.T) {
	_, err := NewApp(Options{})
	require.ErrorIs(t, err, ErrMissingGateway)
}

func TestAppStartAppliesStoredTheme(t *testing.T) {
	store := NewInMemoryThemeStore()
	require.NoError(t, store.SaveTheme(context.Background(), ThemeDark))
	app := newTestApp(t, &fakeGateway{profileErr: &APIError{Status: 401}}, store)

	assert.False(t, app.Start(context.Background()))

	snap := app.Snapshot()
	assert.Equal(t, ThemeDark, snap.Theme)
	assert.Equal(t, PageLogin, snap.View.Page)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Notifications)
}

func TestAppStudentJoinFlow(t *testing.T) {
	gw := &fakeGateway{
		loginUser: studentUser(),
		courses:   []Course{{ID: 10, Code: "CS101", Name: "Intro"}},
		joinAck:   Ack{Message: "Successfully joined course"},
	}
	app := newTestApp(t, gw, nil)
	ctx := context.Background()
	app.Start(ctx)

	_, err := app.Login(ctx, Credentials{Username: "sam", Password: "demo"})
	require.NoError(t, err)
	gw.Reset()

	require.NoError(t, app.JoinCourse(ctx, " abc123 "))

	assert.Equal(t, []string{"JoinCourse:ABC123", "Courses", "Forms"}, gw.Calls())
	snap := app.Snapshot()
	assert.Equal(t, PanelStudent, snap.View.Panel)
	last := snap.Notifications[len(snap.Notifications)-1]
	assert.Equal(t, "Successfully joined course", last.Message)
	assert.Equal(t, SeveritySuccess, last.Severity)
}

func TestAppLoginAsAnotherUserDropsPreviousPanel(t *testing.T) {
	gw := &fakeGateway{
		loginUser: studentUser(),
		courses:   []Course{{ID: 10, Code: "CS101", Name: "Intro"}},
	}
	app := newTestApp(t, gw, nil)
	ctx := context.Background()

	_, err := app.Login(ctx, Credentials{Username: "sam", Password: "demo"})
	require.NoError(t, err)
	require.Contains(t, app.Snapshot().Fragments, TargetStudentCourses)

	gw.loginUser = teacherUser()
	_, err = app.Login(ctx, Credentials{Username: "grace", Password: "demo"})
	require.NoError(t, err)

	snap := app.Snapshot()
	assert.Equal(t, PanelTeacher, snap.View.Panel)
	assert.NotContains(t, snap.Fragments, TargetStudentCourses)
	assert.NotContains(t, snap.Fragments, TargetPendingForms)
	assert.NotContains(t, snap.Charts, TargetStudentChart)
	assert.Contains(t, snap.Fragments, TargetTeacherCourses)
}

func TestAppJoinRequiresCode(t *testing.T) {
	gw := &fakeGateway{loginUser: studentUser()}
	app := newTestApp(t, gw, nil)
	ctx := context.Background()
	_, err := app.Login(ctx, Credentials{Username: "sam", Password: "demo"})
	require.NoError(t, err)
	gw.Reset()

	err = app.JoinCourse(ctx, "   ")
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, gw.Calls())
	snap := app.Snapshot()
	assert.Equal(t, "Please enter a course code", snap.Notifications[len(snap.Notifications)-1].Message)
}

func TestAppActionsRequireIdentity(t *testing.T) {
	gw := &fakeGateway{}
	app := newTestApp(t, gw, nil)
	ctx := context.Background()

	require.ErrorIs(t, app.JoinCourse(ctx, "JOIN101"), ErrNotAuthenticated)
	require.ErrorIs(t, app.LeaveCourse(ctx, 10), ErrNotAuthenticated)
	require.ErrorIs(t, app.ShowPage(ctx, PageDashboard), ErrNotAuthenticated)
	require.ErrorIs(t, app.ShowPage(ctx, Page("settings")), ErrValidation)
	assert.Empty(t, gw.Calls())

	require.NoError(t, app.ShowPage(ctx, PageRegister))
	assert.Equal(t, PageRegister, app.Snapshot().View.Page)
}

func TestAppLeaveFailureKeepsLists(t *testing.T) {
	gw := &fakeGateway{loginUser: studentUser(), courses: []Course{{ID: 10, Code: "CS101"}}}
	app := newTestApp(t, gw, nil)
	ctx := context.Background()
	_, err := app.Login(ctx, Credentials{Username: "sam", Password: "demo"})
	require.NoError(t, err)
	gw.Reset()
	gw.leaveErr = &APIError{Status: 400, Message: "Not enrolled in this course"}

	require.Error(t, app.LeaveCourse(ctx, 10))

	assert.Equal(t, []string{"LeaveCourse:10"}, gw.Calls())
	snap := app.Snapshot()
	assert.Contains(t, string(snap.Fragments[TargetStudentCourses]), "CS101")
	last := snap.Notifications[len(snap.Notifications)-1]
	assert.Equal(t, "Not enrolled in this course", last.Message)
	assert.Equal(t, "Leave failed", last.Title)
}

func TestAppTeacherCourseLifecycle(t *testing.T) {
	gw := &fakeGateway{
		loginUser:   teacherUser(),
		courses:     []Course{{ID: 10, Code: "CS101", Name: "Intro"}},
		course:      Course{ID: 10, Code: "CS101", Name: "Intro"},
		courseStats: teacherAnalytics(),
		roster:      CourseRoster{Students: []EnrolledStudent{{User: User{ID: 3, FullName: "Sam Chen", StudentID: "S001"}}}},
	}
	app := newTestApp(t, gw, nil)
	ctx := context.Background()
	_, err := app.Login(ctx, Credentials{Username: "grace", Password: "demo"})
	require.NoError(t, err)

	snap := app.Snapshot()
	assert.Equal(t, []ChartKind{ChartDaily, ChartStatus, ChartStudents}, snap.ChartKinds)
	assert.Equal(t, ChartDaily, snap.ActiveChart)

	require.NoError(t, app.OpenCreateCourse())
	assert.Equal(t, ModalCreateCourse, app.Snapshot().View.Modal.Kind)

	_, err = app.CreateCourse(ctx, CourseInput{Name: "No code"})
	require.ErrorIs(t, err, ErrValidation)
	assert.True(t, app.Snapshot().View.Modal.Open)

	gw.Reset()
	course, err := app.CreateCourse(ctx, CourseInput{Code: "CS101", Name: "Intro to CS"})
	require.NoError(t, err)
	assert.Equal(t, 99, course.ID)
	assert.Equal(t, []string{"CreateCourse:CS101", "Courses"}, gw.Calls())
	assert.False(t, app.Snapshot().View.Modal.Open)

	require.NoError(t, app.EditCourse(ctx, 10))
	modal := app.Snapshot().View.Modal
	assert.Equal(t, ModalEditCourse, modal.Kind)
	assert.Contains(t, string(modal.Body), `value="CS101"`)

	gw.Reset()
	_, err = app.UpdateCourse(ctx, 10, CourseInput{Code: "CS101", Name: "Intro II"})
	require.NoError(t, err)
	assert.Equal(t, []string{"UpdateCourse:10", "Courses"}, gw.Calls())

	require.NoError(t, app.ViewCourseStudents(ctx, 10))
	modal = app.Snapshot().View.Modal
	assert.Equal(t, ModalCourseStudents, modal.Kind)
	assert.Contains(t, string(modal.Body), "Sam Chen")

	require.NoError(t, app.SwitchTeacherChart(ctx, ChartStatus))
	assert.Equal(t, ChartStatus, app.Snapshot().ActiveChart)
}

func TestAppCreateFormFlow(t *testing.T) {
	gw := &fakeGateway{loginUser: teacherUser(), courses: []Course{{ID: 10, Code: "CS101", Name: "Intro"}}}
	app := newTestApp(t, gw, nil)
	ctx := context.Background()
	_, err := app.Login(ctx, Credentials{Username: "grace", Password: "demo"})
	require.NoError(t, err)

	require.NoError(t, app.OpenCreateForm(ctx))
	assert.Contains(t, string(app.Snapshot().View.Modal.Body), "Intro (CS101)")

	form, err := app.CreateForm(ctx, FormInput{Title: "Week 3", CourseID: 10, Date: "2024-03-08", StartTime: "09:00", EndTime: "10:00"})
	require.NoError(t, err)
	assert.Equal(t, 77, form.ID)
	assert.False(t, app.Snapshot().View.Modal.Open)

	gw.formErr = &APIError{Status: 403, Message: "Access denied"}
	_, err = app.CreateForm(ctx, FormInput{Title: "Week 4", CourseID: 10, Date: "2024-03-15", StartTime: "09:00", EndTime: "10:00"})
	require.Error(t, err)
	snap := app.Snapshot()
	assert.Equal(t, "Access denied", snap.Notifications[len(snap.Notifications)-1].Message)
}

func TestAppSubmitAttendance(t *testing.T) {
	gw := &fakeGateway{
		loginUser: studentUser(),
		forms:     []AttendanceForm{{ID: 101, Title: "Week 2", Date: "2024-03-08"}},
	}
	app := newTestApp(t, gw, nil)
	ctx := context.Background()
	_, err := app.Login(ctx, Credentials{Username: "sam", Password: "demo"})
	require.NoError(t, err)
	gw.Reset()

	require.NoError(t, app.OpenSubmitAttendance(101))
	assert.Empty(t, gw.Calls())
	modal := app.Snapshot().View.Modal
	assert.Equal(t, ModalSubmitAttendance, modal.Kind)
	assert.Equal(t, 101, modal.FormID)
	assert.Contains(t, string(modal.Body), "Week 2")

	_, err = app.SubmitAttendance(ctx, 101, SubmissionInput{Status: "sleeping"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, gw.Calls())

	gw.forms = []AttendanceForm{{ID: 101, Submitted: true}}
	record, err := app.SubmitAttendance(ctx, 101, SubmissionInput{Status: StatusLate, Notes: "bus"})
	require.NoError(t, err)
	assert.Equal(t, StatusLate, record.Status)
	assert.Equal(t, []string{"SubmitAttendance:101", "Forms"}, gw.Calls())
	snap := app.Snapshot()
	assert.False(t, snap.View.Modal.Open)
	assert.Contains(t, string(snap.Fragments[TargetPendingForms]), `data-empty="pending-forms"`)
}

func TestAppLogoutResetsDashboard(t *testing.T) {
	gw := &fakeGateway{
		loginUser:    studentUser(),
		courses:      []Course{{ID: 10, Code: "CS101"}},
		studentStats: StudentAnalytics{StatusCount: StatusCount{"present": 2}},
	}
	app := newTestApp(t, gw, nil)
	ctx := context.Background()
	_, err := app.Login(ctx, Credentials{Username: "sam", Password: "demo"})
	require.NoError(t, err)
	require.NotEmpty(t, app.Snapshot().Fragments)
	canvas, ok := app.ChartCanvas(TargetStudentChart)
	require.True(t, ok)
	require.Equal(t, 1, canvas.LiveInstances())

	require.NoError(t, app.Logout(ctx))

	snap := app.Snapshot()
	assert.Equal(t, PageLogin, snap.View.Page)
	assert.Nil(t, snap.User)
	assert.Empty(t, snap.Fragments)
	assert.Empty(t, snap.Charts)
	assert.Equal(t, 0, canvas.LiveInstances())
}

func TestAppThemeIndependentOfSession(t *testing.T) {
	store := NewInMemoryThemeStore()
	gw := &fakeGateway{loginUser: adminUser()}
	app := newTestApp(t, gw, store)
	ctx := context.Background()
	app.Start(ctx)

	theme, err := app.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)
	_, err = app.Login(ctx, Credentials{Username: "admin", Password: "demo"})
	require.NoError(t, err)
	require.NoError(t, app.Logout(ctx))

	stored, _ := store.LoadTheme(ctx)
	assert.Equal(t, ThemeDark, stored)
	assert.Equal(t, ThemeDark, app.Snapshot().Theme)

	require.NoError(t, app.SetTheme(ctx, ThemeLight))
	require.Error(t, app.SetTheme(ctx, "blue"))
	assert.Equal(t, ThemeLight, app.Snapshot().Theme)
}

func TestAppThemeChangeRedrawsActiveCharts(t *testing.T) {
	notifier := NewNotifier(WithNotificationTiming(time.Hour, time.Hour))
	t.Cleanup(notifier.Close)
	app, err := NewApp(Options{
		Gateway:  &fakeGateway{loginUser: studentUser(), studentStats: StudentAnalytics{StatusCount: StatusCount{"present": 2}}},
		Notifier: notifier,
	})
	require.NoError(t, err)
	ctx := context.Background()
	_, err = app.Login(ctx, Credentials{Username: "sam", Password: "demo"})
	require.NoError(t, err)

	canvas, ok := app.ChartCanvas(TargetStudentChart)
	require.True(t, ok)
	require.NotNil(t, canvas.Active())
	assert.Equal(t, types.ThemeWesteros, canvas.Active().View.Theme)

	_, err = app.ToggleTheme(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.ThemeWonderland, canvas.Active().View.Theme)
	assert.Equal(t, ChartStudentStatus, canvas.Active().View.Kind)
	assert.Equal(t, 1, canvas.LiveInstances())

	require.NoError(t, app.SetTheme(ctx, ThemeLight))
	assert.Equal(t, types.ThemeWesteros, app.Snapshot().Charts[TargetStudentChart].Theme)
}

func TestAppCloseModal(t *testing.T) {
	app := newTestApp(t, &fakeGateway{course: Course{ID: 10, Name: "Intro"}}, nil)
	require.NoError(t, app.ViewCourseDetails(context.Background(), 10))
	require.True(t, app.Snapshot().View.Modal.Open)

	app.CloseModal()
	assert.False(t, app.Snapshot().View.Modal.Open)
}
