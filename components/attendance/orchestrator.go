package attendance

import (
	"context"
	"errors"
	"fmt"
)

// OrchestratorOptions wires an Orchestrator.
type OrchestratorOptions struct {
	Gateway   Gateway
	Document  *Document
	Renderer  *Renderer
	Charts    *ChartRenderer
	Notifier  *Notifier
	Messages  *Messages
	Telemetry Telemetry
}

// Orchestrator issues the per-role call plan and feeds results to renderers.
// Steps run in order; a failed step is reported and the next one still runs.
type Orchestrator struct {
	gateway   Gateway
	doc       *Document
	renderer  *Renderer
	charts    *ChartRenderer
	messages  *Messages
	telemetry Telemetry
	report    reporter
	pending   []AttendanceForm
}

// NewOrchestrator builds an orchestrator. Renderer must be non-nil.
func NewOrchestrator(opts OrchestratorOptions) *Orchestrator {
	telemetry := normalizeTelemetry(opts.Telemetry)
	messages := normalizeMessages(opts.Messages)
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}
	doc := opts.Document
	if doc == nil {
		doc = NewDocument()
	}
	charts := opts.Charts
	if charts == nil {
		charts = NewChartRenderer()
	}
	return &Orchestrator{
		gateway:   opts.Gateway,
		doc:       doc,
		renderer:  opts.Renderer,
		charts:    charts,
		messages:  messages,
		telemetry: telemetry,
		report:    reporter{notifier: notifier, messages: messages, telemetry: telemetry},
	}
}

// Load implements DashboardLoader.
func (o *Orchestrator) Load(ctx context.Context, user User) {
	o.telemetry.Record(ctx, "attendance.dashboard.load", map[string]any{"role": string(user.Role), "user_id": user.ID})
	switch user.Role {
	case RoleStudent:
		_ = o.RefreshStudentCourses(ctx)
		_ = o.RefreshPendingForms(ctx)
		_ = o.RefreshStudentChart(ctx, user.ID)
	case RoleTeacher:
		courses, err := o.RefreshTeacherCourses(ctx)
		if err == nil {
			_ = o.RefreshTeacherCharts(ctx, courses)
		}
	case RoleAdmin:
		_ = o.RefreshOverview(ctx)
	}
}

// RefreshStudentCourses refetches and renders the joined courses.
func (o *Orchestrator) RefreshStudentCourses(ctx context.Context) error {
	courses, err := o.gateway.Courses(ctx)
	if err != nil {
		return o.stepFailed(ctx, "student.courses", err)
	}
	return o.renderList(ctx, TargetStudentCourses, func() (Fragment, error) { return o.renderer.StudentCourses(courses) })
}

// RefreshPendingForms refetches the forms and renders those not yet submitted.
func (o *Orchestrator) RefreshPendingForms(ctx context.Context) error {
	forms, err := o.gateway.Forms(ctx)
	if err != nil {
		return o.stepFailed(ctx, "student.forms", err)
	}
	o.pending = PendingOnly(forms)
	return o.renderList(ctx, TargetPendingForms, func() (Fragment, error) { return o.renderer.PendingForms(o.pending) })
}

// RefreshStudentChart renders the personal status distribution.
func (o *Orchestrator) RefreshStudentChart(ctx context.Context, studentID int) error {
	stats, err := o.gateway.StudentAnalytics(ctx, studentID)
	if err != nil {
		return o.stepFailed(ctx, "student.analytics", err)
	}
	return o.loadCanvas(ctx, TargetStudentChart, []ChartSpec{StudentStatusChart(stats, o.messages)})
}

// RefreshTeacherCourses refetches and renders the owned courses.
func (o *Orchestrator) RefreshTeacherCourses(ctx context.Context) ([]Course, error) {
	courses, err := o.gateway.Courses(ctx)
	if err != nil {
		return nil, o.stepFailed(ctx, "teacher.courses", err)
	}
	err = o.renderList(ctx, TargetTeacherCourses, func() (Fragment, error) { return o.renderer.TeacherCourses(courses) })
	return courses, err
}

// RefreshTeacherCharts loads the analytics of the first course into the teacher canvas.
func (o *Orchestrator) RefreshTeacherCharts(ctx context.Context, courses []Course) error {
	if len(courses) == 0 {
		return nil
	}
	stats, err := o.gateway.CourseAnalytics(ctx, courses[0].ID)
	if err != nil {
		return o.stepFailed(ctx, "teacher.analytics", err)
	}
	return o.loadCanvas(ctx, TargetTeacherChart, TeacherCharts(stats, o.messages))
}

// SwitchTeacherChart re-renders the teacher canvas from the cached payload.
func (o *Orchestrator) SwitchTeacherChart(ctx context.Context, kind ChartKind) error {
	canvas, ok := o.doc.Canvas(TargetTeacherChart)
	if !ok {
		return nil
	}
	if err := canvas.Switch(kind); err != nil {
		o.telemetry.Record(ctx, "attendance.chart.switch.error", map[string]any{"kind": string(kind), "error": err})
		return err
	}
	o.telemetry.Record(ctx, "attendance.chart.switch", map[string]any{"kind": string(kind)})
	return nil
}

// RedrawCharts re-renders the active chart of every canvas from its cached
// spec, picking up the current chart theme.
func (o *Orchestrator) RedrawCharts(ctx context.Context) error {
	var errs []error
	for _, target := range []Target{TargetStudentChart, TargetTeacherChart, TargetAdminChart} {
		canvas, ok := o.doc.Canvas(target)
		if !ok {
			continue
		}
		kind, ok := canvas.ActiveKind()
		if !ok {
			continue
		}
		if err := canvas.Switch(kind); err != nil {
			o.telemetry.Record(ctx, "attendance.chart.redraw.error", map[string]any{"target": string(target), "error": err})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RefreshOverview renders the admin totals chart.
func (o *Orchestrator) RefreshOverview(ctx context.Context) error {
	overview, err := o.gateway.Overview(ctx)
	if err != nil {
		return o.stepFailed(ctx, "admin.overview", err)
	}
	return o.loadCanvas(ctx, TargetAdminChart, []ChartSpec{AdminOverviewChart(overview, o.messages)})
}

// PendingForm looks up a form from the last pending list.
func (o *Orchestrator) PendingForm(id int) (AttendanceForm, bool) {
	for _, form := range o.pending {
		if form.ID == id {
			return form, true
		}
	}
	return AttendanceForm{}, false
}

// Reset drops everything rendered for the previous identity.
func (o *Orchestrator) Reset() {
	o.pending = nil
	o.doc.Reset()
}

// Document exposes the render targets.
func (o *Orchestrator) Document() *Document {
	return o.doc
}

func (o *Orchestrator) renderList(ctx context.Context, target Target, render func() (Fragment, error)) error {
	if !o.doc.Mounted(target) {
		return nil
	}
	fragment, err := render()
	if err != nil {
		return o.stepFailed(ctx, "render."+string(target), err)
	}
	o.doc.Render(target, fragment)
	return nil
}

func (o *Orchestrator) loadCanvas(ctx context.Context, target Target, specs []ChartSpec) error {
	canvas, ok := o.doc.Canvas(target)
	if !ok {
		return nil
	}
	if err := canvas.Load(specs, o.charts.Render); err != nil {
		return o.stepFailed(ctx, "render."+string(target), err)
	}
	return nil
}

func (o *Orchestrator) stepFailed(ctx context.Context, step string, err error) error {
	o.report.failure(ctx, "dashboard."+step, "dashboard.error.title", "dashboard.error.fallback", err)
	return fmt.Errorf("attendance: dashboard step %s: %w", step, err)
}
