package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLoader struct {
	loads []User
}

func (l *recordingLoader) Load(_ context.Context, user User) {
	l.loads = append(l.loads, user)
}

type sessionHarness struct {
	gw        *fakeGateway
	session   *Session
	view      *ViewRouter
	loader    *recordingLoader
	notifier  *Notifier
	telemetry *recordingTelemetry
	signOuts  int
	ctrl      *SessionController
}

func newSessionHarness(t *testing.T, gw *fakeGateway) *sessionHarness {
	t.Helper()
	h := &sessionHarness{
		gw:        gw,
		session:   NewSession(),
		loader:    &recordingLoader{},
		notifier:  NewNotifier(WithNotificationTiming(time.Hour, time.Hour)),
		telemetry: &recordingTelemetry{},
	}
	t.Cleanup(h.notifier.Close)
	h.view = NewViewRouter(h.session, h.loader, nil)
	h.ctrl = NewSessionController(SessionControllerOptions{
		Auth:      gw,
		Session:   h.session,
		View:      h.view,
		Notifier:  h.notifier,
		Telemetry: h.telemetry,
		OnSignOut: func() { h.signOuts++ },
	})
	return h
}

func TestSessionInitAuthenticated(t *testing.T) {
	h := newSessionHarness(t, &fakeGateway{profile: studentUser()})

	require.True(t, h.ctrl.Init(context.Background()))

	user, ok := h.session.User()
	require.True(t, ok)
	assert.Equal(t, 3, user.ID)
	state := h.view.State()
	assert.Equal(t, PageDashboard, state.Page)
	assert.Equal(t, PanelStudent, state.Panel)
	require.NotNil(t, state.Navbar)
	assert.Equal(t, "Sam Chen", state.Navbar.FullName)
	assert.Equal(t, "Student", state.Navbar.RoleLabel)
	assert.Len(t, h.loader.loads, 1)
	assert.Equal(t, []string{"Profile"}, h.gw.Calls())
}

func TestSessionInitFailureIsSilent(t *testing.T) {
	for _, err := range []error{&APIError{Status: 401, Message: "Not logged in"}, errRefused} {
		h := newSessionHarness(t, &fakeGateway{profileErr: err})

		require.False(t, h.ctrl.Init(context.Background()))

		assert.False(t, h.session.Authenticated())
		assert.Equal(t, PageLogin, h.view.State().Page)
		assert.False(t, h.view.State().NavbarVisible)
		assert.Empty(t, h.notifier.Active())
		assert.Empty(t, h.loader.loads)
	}
}

func TestSessionLoginSuccess(t *testing.T) {
	h := newSessionHarness(t, &fakeGateway{loginUser: teacherUser()})

	user, err := h.ctrl.Login(context.Background(), Credentials{Username: "grace", Password: "demo"})
	require.NoError(t, err)
	assert.Equal(t, RoleTeacher, user.Role)
	assert.Equal(t, PanelTeacher, h.view.State().Panel)

	active := h.notifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, SeveritySuccess, active[0].Severity)
	assert.Equal(t, "Welcome back, Grace Lin", active[0].Message)
}

func TestSessionLoginReplacingIdentityResetsDashboard(t *testing.T) {
	h := newSessionHarness(t, &fakeGateway{loginUser: teacherUser()})

	_, err := h.ctrl.Login(context.Background(), Credentials{Username: "grace", Password: "demo"})
	require.NoError(t, err)
	assert.Equal(t, 0, h.signOuts)

	_, err = h.ctrl.Login(context.Background(), Credentials{Username: "grace", Password: "demo"})
	require.NoError(t, err)
	assert.Equal(t, 1, h.signOuts)
}

func TestSessionLoginFailureStaysOnPage(t *testing.T) {
	h := newSessionHarness(t, &fakeGateway{loginErr: &APIError{Status: 401, Message: "Invalid username or password"}})
	h.view.ShowPage(PageLogin)

	_, err := h.ctrl.Login(context.Background(), Credentials{Username: "sam", Password: "wrong"})
	require.Error(t, err)

	assert.False(t, h.session.Authenticated())
	assert.Equal(t, PageLogin, h.view.State().Page)
	active := h.notifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Login failed", active[0].Title)
	assert.Equal(t, "Invalid username or password", active[0].Message)
}

func TestSessionLoginNetworkFailureUsesGenericMessage(t *testing.T) {
	h := newSessionHarness(t, &fakeGateway{loginErr: errRefused})

	_, err := h.ctrl.Login(context.Background(), Credentials{Username: "sam", Password: "demo"})
	require.Error(t, err)

	active := h.notifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "Network error, please try again later", active[0].Message)
	assert.Contains(t, h.telemetry.Events(), "attendance.session.login.error")
}

func TestSessionLoginValidationSkipsRequest(t *testing.T) {
	h := newSessionHarness(t, &fakeGateway{})

	_, err := h.ctrl.Login(context.Background(), Credentials{Username: "sam"})
	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, h.gw.Calls())
	assert.Len(t, h.notifier.Active(), 1)
}

func TestSessionRegisterDropsStudentIDForTeachers(t *testing.T) {
	gw := &fakeGateway{}
	h := newSessionHarness(t, gw)
	h.view.ShowPage(PageRegister)

	err := h.ctrl.Register(context.Background(), RegisterRequest{
		Username:  "grace",
		Email:     "grace@example.com",
		FullName:  "Grace Lin",
		Role:      RoleTeacher,
		Password:  "pw",
		StudentID: "T-1",
	})
	require.NoError(t, err)

	require.Len(t, gw.registered, 1)
	assert.Empty(t, gw.registered[0].StudentID)
	assert.Equal(t, PageLogin, h.view.State().Page)
	assert.False(t, h.session.Authenticated())
}

func TestSessionRegisterFailureStaysOnRegister(t *testing.T) {
	h := newSessionHarness(t, &fakeGateway{registerErr: &APIError{Status: 400, Message: "Username already exists"}})
	h.view.ShowPage(PageRegister)

	err := h.ctrl.Register(context.Background(), RegisterRequest{Username: "sam", Email: "sam@example.com", FullName: "Sam", Role: RoleStudent, Password: "pw", StudentID: "S009"})
	require.Error(t, err)
	assert.Equal(t, PageRegister, h.view.State().Page)
	assert.Equal(t, "Username already exists", h.notifier.Active()[0].Message)
}

func TestSessionLogoutServerErrorCountsAsSuccess(t *testing.T) {
	h := newSessionHarness(t, &fakeGateway{profile: studentUser(), logoutErr: &APIError{Status: 500}})
	require.True(t, h.ctrl.Init(context.Background()))

	require.NoError(t, h.ctrl.Logout(context.Background()))

	assert.False(t, h.session.Authenticated())
	assert.Equal(t, PageLogin, h.view.State().Page)
	assert.Equal(t, 1, h.signOuts)
	active := h.notifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, SeverityInfo, active[0].Severity)
}

func TestSessionLogoutNetworkFailureStillClears(t *testing.T) {
	h := newSessionHarness(t, &fakeGateway{profile: studentUser(), logoutErr: errRefused})
	require.True(t, h.ctrl.Init(context.Background()))

	err := h.ctrl.Logout(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))

	assert.False(t, h.session.Authenticated())
	assert.Equal(t, PageLogin, h.view.State().Page)
	assert.Equal(t, 1, h.signOuts)
	active := h.notifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, SeverityError, active[0].Severity)
}
