package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ettle/strcase"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	attendance "github.com/goliatone/go-attendance/components/attendance"
	"github.com/goliatone/go-attendance/components/attendance/commands"
	"github.com/goliatone/go-attendance/components/attendance/httpapi"
	"github.com/goliatone/go-attendance/components/attendance/queries"
)

type shellCmd struct {
	Prompt string `default:"attend> " help:"Prompt shown before each command."`
}

func (cmd *shellCmd) Run(ctx context.Context, g *globals) error {
	rt, err := newRuntime(g, "")
	if err != nil {
		return err
	}
	defer rt.Close()

	stop := printNotifications(rt.app.Notifier(), os.Stdout)
	defer stop()

	sh := newShell(httpapi.NewCommandExecutor(rt.app, attendance.NewZapTelemetry(rt.logger)), os.Stdin, os.Stdout)
	sh.prompt = cmd.Prompt
	if term.IsTerminal(int(os.Stdin.Fd())) {
		sh.secret = func() (string, error) {
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(sh.out)
			return string(raw), err
		}
	}
	if rt.app.Start(ctx) {
		fmt.Fprintln(sh.out, "session restored")
	}
	return sh.loop(ctx)
}

type verb struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

type shell struct {
	exec   httpapi.Executor
	in     *bufio.Scanner
	out    io.Writer
	prompt string
	secret func() (string, error)
	text   *bluemonday.Policy
	verbs  map[string]verb
}

func newShell(exec httpapi.Executor, in io.Reader, out io.Writer) *shell {
	sh := &shell{
		exec: exec,
		in:   bufio.NewScanner(in),
		out:  out,
		text: bluemonday.StrictPolicy(),
	}
	sh.secret = func() (string, error) { return sh.ask("") }
	sh.verbs = sh.commands()
	return sh
}

var errQuit = errors.New("quit")

func (s *shell) loop(ctx context.Context) error {
	for {
		if s.prompt != "" {
			fmt.Fprint(s.out, s.prompt)
		}
		if !s.in.Scan() {
			return s.in.Err()
		}
		err := s.dispatch(ctx, s.in.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
	}
}

func (s *shell) dispatch(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strcase.ToKebab(fields[0])
	v, ok := s.verbs[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return v.run(ctx, fields[1:])
}

func (s *shell) ask(label string) (string, error) {
	if label != "" {
		fmt.Fprint(s.out, label)
	}
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *shell) commands() map[string]verb {
	return map[string]verb{
		"help": {"help", func(context.Context, []string) error {
			s.help()
			return nil
		}},
		"quit": {"quit", func(context.Context, []string) error { return errQuit }},
		"state": {"state", func(ctx context.Context, _ []string) error {
			return s.printState(ctx)
		}},
		"login": {"login <username>", func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: login <username>")
			}
			fmt.Fprint(s.out, "password: ")
			password, err := s.secret()
			if err != nil {
				return err
			}
			return s.exec.Login(ctx, attendance.Credentials{Username: args[0], Password: password})
		}},
		"register": {"register", func(ctx context.Context, _ []string) error {
			req, err := s.askRegister()
			if err != nil {
				return err
			}
			return s.exec.Register(ctx, req)
		}},
		"logout": {"logout", func(ctx context.Context, _ []string) error {
			return s.exec.Logout(ctx)
		}},
		"page": {"page <login|register|dashboard>", func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: page <login|register|dashboard>")
			}
			return s.exec.ShowPage(ctx, commands.ShowPageInput{Page: attendance.Page(args[0])})
		}},
		"join": {"join <code>", func(ctx context.Context, args []string) error {
			return s.exec.Join(ctx, commands.JoinCourseInput{JoinCode: strings.Join(args, "")})
		}},
		"leave":       {"leave <course-id>", s.courseVerb(s.exec.Leave)},
		"course":      {"course <course-id>", s.courseVerb(s.exec.ViewCourse)},
		"students":    {"students <course-id>", s.courseVerb(s.exec.ViewStudents)},
		"edit-course": {"edit-course <course-id>", s.courseVerb(s.exec.EditCourse)},
		"new-course": {"new-course", func(ctx context.Context, _ []string) error {
			return s.exec.OpenCreateCourse(ctx)
		}},
		"create-course": {"create-course", func(ctx context.Context, _ []string) error {
			input, err := s.askCourse()
			if err != nil {
				return err
			}
			return s.exec.CreateCourse(ctx, input)
		}},
		"update-course": {"update-course <course-id>", func(ctx context.Context, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			input, err := s.askCourse()
			if err != nil {
				return err
			}
			return s.exec.UpdateCourse(ctx, commands.UpdateCourseInput{CourseID: id, Course: input})
		}},
		"new-form": {"new-form", func(ctx context.Context, _ []string) error {
			return s.exec.OpenCreateForm(ctx)
		}},
		"create-form": {"create-form", func(ctx context.Context, _ []string) error {
			input, err := s.askForm()
			if err != nil {
				return err
			}
			return s.exec.CreateForm(ctx, input)
		}},
		"open-form": {"open-form <form-id>", func(ctx context.Context, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			return s.exec.OpenSubmit(ctx, commands.FormRef{FormID: id})
		}},
		"submit": {"submit <form-id> <present|absent|late|excused> [notes]", func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return errors.New("usage: submit <form-id> <status> [notes]")
			}
			id, err := idArg(args[:1])
			if err != nil {
				return err
			}
			return s.exec.Submit(ctx, commands.SubmitAttendanceInput{
				FormID: id,
				Submission: attendance.SubmissionInput{
					Status: attendance.Status(args[1]),
					Notes:  strings.Join(args[2:], " "),
				},
			})
		}},
		"chart": {"chart <daily|status|students>", func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: chart <daily|status|students>")
			}
			return s.exec.SwitchChart(ctx, commands.SwitchChartInput{Kind: attendance.ChartKind(args[0])})
		}},
		"theme": {"theme [light|dark]", func(ctx context.Context, args []string) error {
			var theme attendance.Theme
			if len(args) > 0 {
				theme = attendance.Theme(args[0])
			}
			return s.exec.Theme(ctx, commands.ThemeInput{Theme: theme})
		}},
		"close": {"close", func(ctx context.Context, _ []string) error {
			return s.exec.CloseModal(ctx)
		}},
	}
}

func (s *shell) courseVerb(run func(context.Context, commands.CourseRef) error) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		id, err := idArg(args)
		if err != nil {
			return err
		}
		return run(ctx, commands.CourseRef{CourseID: id})
	}
}

func (s *shell) help() {
	names := make([]string, 0, len(s.verbs))
	for name := range s.verbs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", s.verbs[name].usage)
	}
}

func (s *shell) askRegister() (attendance.RegisterRequest, error) {
	var req attendance.RegisterRequest
	var role string
	fields := []struct {
		label  string
		target *string
	}{
		{"username: ", &req.Username},
		{"email: ", &req.Email},
		{"full name: ", &req.FullName},
		{"role (student|teacher): ", &role},
	}
	for _, f := range fields {
		value, err := s.ask(f.label)
		if err != nil {
			return req, err
		}
		*f.target = value
	}
	req.Role = attendance.Role(role)
	if req.Role == attendance.RoleStudent {
		id, err := s.ask("student id: ")
		if err != nil {
			return req, err
		}
		req.StudentID = id
	}
	fmt.Fprint(s.out, "password: ")
	password, err := s.secret()
	if err != nil {
		return req, err
	}
	req.Password = password
	return req, nil
}

func (s *shell) askCourse() (attendance.CourseInput, error) {
	var input attendance.CourseInput
	for _, f := range []struct {
		label  string
		target *string
	}{
		{"course code: ", &input.Code},
		{"course name: ", &input.Name},
		{"description: ", &input.Description},
	} {
		value, err := s.ask(f.label)
		if err != nil {
			return input, err
		}
		*f.target = value
	}
	return input, nil
}

func (s *shell) askForm() (attendance.FormInput, error) {
	var input attendance.FormInput
	course, err := s.ask("course id: ")
	if err != nil {
		return input, err
	}
	input.CourseID, _ = strconv.Atoi(course)
	for _, f := range []struct {
		label  string
		target *string
	}{
		{"title: ", &input.Title},
		{"date (YYYY-MM-DD): ", &input.Date},
		{"start (HH:MM): ", &input.StartTime},
		{"end (HH:MM): ", &input.EndTime},
		{"description: ", &input.Description},
	} {
		value, err := s.ask(f.label)
		if err != nil {
			return input, err
		}
		*f.target = value
	}
	return input, nil
}

type stateView struct {
	Page        attendance.Page   `yaml:"page"`
	Panel       attendance.Panel  `yaml:"panel,omitempty"`
	Theme       attendance.Theme  `yaml:"theme"`
	User        string            `yaml:"user,omitempty"`
	Modal       string            `yaml:"modal,omitempty"`
	ModalBody   string            `yaml:"modal_body,omitempty"`
	Sections    map[string]string `yaml:"sections,omitempty"`
	Charts      map[string]string `yaml:"charts,omitempty"`
	ChartKinds  []string          `yaml:"chart_kinds,omitempty"`
	ActiveChart string            `yaml:"active_chart,omitempty"`
}

func (s *shell) printState(ctx context.Context) error {
	snap, err := s.exec.State(ctx, queries.ViewRequest{OmitCharts: true})
	if err != nil {
		return err
	}
	view := stateView{
		Page:        snap.View.Page,
		Panel:       snap.View.Panel,
		Theme:       snap.Theme,
		Sections:    map[string]string{},
		Charts:      map[string]string{},
		ActiveChart: string(snap.ActiveChart),
	}
	if snap.View.Navbar != nil {
		view.User = fmt.Sprintf("%s (%s)", snap.View.Navbar.FullName, snap.View.Navbar.RoleLabel)
	}
	if snap.View.Modal.Open {
		view.Modal = snap.View.Modal.Title
		view.ModalBody = s.plain(string(snap.View.Modal.Body))
	}
	for target, fragment := range snap.Fragments {
		view.Sections[string(target)] = s.plain(string(fragment))
	}
	for target, chart := range snap.Charts {
		view.Charts[string(target)] = chart.Title
	}
	for _, kind := range snap.ChartKinds {
		view.ChartKinds = append(view.ChartKinds, string(kind))
	}
	out, err := yaml.Marshal(view)
	if err != nil {
		return fmt.Errorf("attendctl: encode state: %w", err)
	}
	_, err = s.out.Write(out)
	return err
}

func (s *shell) plain(html string) string {
	return strings.Join(strings.Fields(s.text.Sanitize(html)), " ")
}

func idArg(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one numeric id")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func printNotifications(source interface {
	Subscribe() (<-chan attendance.NotificationEvent, func())
}, out io.Writer) func() {
	events, cancel := source.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			if event.Type != attendance.NotificationShown {
				continue
			}
			note := event.Notification
			fmt.Fprintf(out, "\n[%s] %s: %s\n", note.Severity, note.Title, note.Message)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}
