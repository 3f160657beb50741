package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attendance "github.com/goliatone/go-attendance/components/attendance"
	"github.com/goliatone/go-attendance/components/attendance/httpapi"
	"github.com/goliatone/go-attendance/pkg/api"
)

func newDemoShell(t *testing.T, script string) (*shell, *attendance.App, *bytes.Buffer) {
	t.Helper()
	app, err := attendance.NewApp(attendance.Options{Gateway: api.NewMockClient(api.DemoData())})
	require.NoError(t, err)
	t.Cleanup(app.Notifier().Close)
	var out bytes.Buffer
	return newShell(httpapi.NewCommandExecutor(app, nil), strings.NewReader(script), &out), app, &out
}

func TestShellStudentSession(t *testing.T) {
	sh, app, out := newDemoShell(t, strings.Join([]string{
		"login student",
		"demo",
		"join join201",
		"submit 101 late traffic",
		"state",
		"quit",
		"never reached",
	}, "\n"))

	require.NoError(t, sh.loop(context.Background()))

	snap := app.Snapshot()
	assert.Equal(t, attendance.PanelStudent, snap.View.Panel)
	assert.NotContains(t, out.String(), "error:")
	assert.Contains(t, out.String(), "page: dashboard")
	assert.Contains(t, out.String(), "CS201")
}

func TestShellReportsErrors(t *testing.T) {
	sh, _, out := newDemoShell(t, "frobnicate\nleave abc\njoin NOPE\n")

	require.NoError(t, sh.loop(context.Background()))

	text := out.String()
	assert.Contains(t, text, `unknown command "frobnicate"`)
	assert.Contains(t, text, `invalid id "abc"`)
	assert.Contains(t, text, attendance.ErrNotAuthenticated.Error())
}

func TestShellNormalizesVerbs(t *testing.T) {
	sh, app, _ := newDemoShell(t, "")
	ctx := context.Background()
	_, err := app.Login(ctx, attendance.Credentials{Username: "teacher", Password: "demo"})
	require.NoError(t, err)

	require.NoError(t, sh.dispatch(ctx, "NewCourse"))
	assert.Equal(t, attendance.ModalCreateCourse, app.Snapshot().View.Modal.Kind)
	require.NoError(t, sh.dispatch(ctx, "close"))
	assert.False(t, app.Snapshot().View.Modal.Open)
}

func TestIDArg(t *testing.T) {
	id, err := idArg([]string{"12"})
	require.NoError(t, err)
	assert.Equal(t, 12, id)

	for _, args := range [][]string{nil, {"0"}, {"x"}, {"1", "2"}} {
		_, err := idArg(args)
		assert.Error(t, err, "args %v", args)
	}
}
