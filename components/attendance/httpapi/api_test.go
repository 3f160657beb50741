package httpapi

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-attendance/components/attendance"
	"github.com/goliatone/go-attendance/components/attendance/commands"
	"github.com/goliatone/go-attendance/components/attendance/queries"
	"github.com/goliatone/go-attendance/pkg/api"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func TestCommandExecutorDelegates(t *testing.T) {
	join := &stubCommander[commands.JoinCourseInput]{}
	submit := &stubCommander[commands.SubmitAttendanceInput]{}
	closeModal := &stubCommander[commands.CloseModalInput]{}
	exec := &CommandExecutor{JoinCommander: join, SubmitCommander: submit, CloseModalCommander: closeModal}
	ctx := context.Background()

	if err := exec.Join(ctx, commands.JoinCourseInput{JoinCode: "ABC"}); err != nil {
		t.Fatalf("join returned error: %v", err)
	}
	if join.calls != 1 || join.last.JoinCode != "ABC" {
		t.Fatalf("expected join propagation, got %+v", join.last)
	}
	input := commands.SubmitAttendanceInput{FormID: 4, Submission: attendance.SubmissionInput{Status: attendance.StatusLate}}
	if err := exec.Submit(ctx, input); err != nil {
		t.Fatalf("submit returned error: %v", err)
	}
	if submit.last.FormID != 4 || submit.last.Submission.Status != attendance.StatusLate {
		t.Fatalf("expected submit propagation, got %+v", submit.last)
	}
	if err := exec.CloseModal(ctx); err != nil || closeModal.calls != 1 {
		t.Fatalf("expected close modal call, err=%v", err)
	}
}

func TestCommandExecutorNotConfigured(t *testing.T) {
	exec := &CommandExecutor{}
	if err := exec.Logout(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := exec.State(context.Background(), queries.ViewRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCommandExecutorPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	exec := &CommandExecutor{LeaveCommander: &stubCommander[commands.CourseRef]{err: boom}}
	if err := exec.Leave(context.Background(), commands.CourseRef{CourseID: 1}); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestNewCommandExecutorAgainstApp(t *testing.T) {
	app, err := attendance.NewApp(attendance.Options{Gateway: api.NewMockClient(api.DemoData())})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	exec := NewCommandExecutor(app, nil)
	ctx := context.Background()
	app.Start(ctx)

	if err := exec.Login(ctx, attendance.Credentials{Username: "teacher", Password: "demo"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := exec.SwitchChart(ctx, commands.SwitchChartInput{Kind: attendance.ChartStudents}); err != nil {
		t.Fatalf("switch chart: %v", err)
	}
	snap, err := exec.State(ctx, queries.ViewRequest{})
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if snap.View.Panel != attendance.PanelTeacher {
		t.Fatalf("expected teacher panel, got %s", snap.View.Panel)
	}
	if snap.ActiveChart != attendance.ChartStudents {
		t.Fatalf("expected students chart, got %s", snap.ActiveChart)
	}
	if err := exec.OpenCreateCourse(ctx); err != nil {
		t.Fatalf("open create course: %v", err)
	}
	snap, _ = exec.State(ctx, queries.ViewRequest{OmitCharts: true})
	if !snap.View.Modal.Open || snap.View.Modal.Kind != attendance.ModalCreateCourse {
		t.Fatalf("expected create course modal, got %+v", snap.View.Modal)
	}
}
