package attendance

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultActionBase prefixes the action URLs embedded in rendered markup.
const DefaultActionBase = "/console/actions"

// Renderer maps payloads to fragments. Every method is a pure function of its
// input, so the same payload always renders the same markup.
type Renderer struct {
	templates  TemplateRenderer
	messages   *Messages
	text       map[string]string
	policy     *bluemonday.Policy
	actionBase string
}

// RendererOptions configures a Renderer.
type RendererOptions struct {
	Messages   *Messages
	ActionBase string
	// Templates overrides the embedded fragment templates.
	Templates  TemplateRenderer
}

// NewRenderer wires the fragment templates.
func NewRenderer(opts RendererOptions) (*Renderer, error) {
	r := &Renderer{
		templates:  opts.Templates,
		messages:   normalizeMessages(opts.Messages),
		policy:     bluemonday.UGCPolicy(),
		actionBase: strings.TrimRight(opts.ActionBase, "/"),
	}
	if r.actionBase == "" {
		r.actionBase = DefaultActionBase
	}
	r.text = r.messages.Catalogue()
	if r.templates == nil {
		tmpl, err := NewTemplateRenderer()
		if err != nil {
			return nil, fmt.Errorf("attendance: load templates: %w", err)
		}
		r.templates = tmpl
	}
	return r, nil
}

// StudentCourses renders the joined-course list.
func (r *Renderer) StudentCourses(courses []Course) (Fragment, error) {
	items := make([]map[string]any, 0, len(courses))
	for _, course := range courses {
		item := r.courseItem(course)
		item["details_action"] = r.action("courses", course.ID, "details")
		item["leave_action"] = r.action("courses", course.ID, "leave")
		items = append(items, item)
	}
	return r.execute("student_courses.html", map[string]any{"courses": items})
}

// TeacherCourses renders owned courses with their join codes and student counts.
func (r *Renderer) TeacherCourses(courses []Course) (Fragment, error) {
	items := make([]map[string]any, 0, len(courses))
	for _, course := range courses {
		item := r.courseItem(course)
		item["join_code"] = course.JoinCode
		item["students"] = strconv.Itoa(course.Students())
		item["students_action"] = r.action("courses", course.ID, "students")
		item["edit_action"] = r.action("courses", course.ID, "edit")
		items = append(items, item)
	}
	return r.execute("teacher_courses.html", map[string]any{"courses": items})
}

// PendingForms renders the forms still awaiting a submission.
func (r *Renderer) PendingForms(forms []AttendanceForm) (Fragment, error) {
	items := make([]map[string]any, 0, len(forms))
	for _, form := range forms {
		item := formItem(form)
		item["open_action"] = r.action("forms", form.ID, "open")
		items = append(items, item)
	}
	return r.execute("pending_forms.html", map[string]any{"forms": items})
}

// Roster renders the course student list.
func (r *Renderer) Roster(roster CourseRoster) (Fragment, error) {
	total := roster.TotalStudents
	if total == 0 {
		total = len(roster.Students)
	}
	students := make([]map[string]any, 0, len(roster.Students))
	for _, student := range roster.Students {
		students = append(students, map[string]any{
			"id":          strconv.Itoa(student.ID),
			"full_name":   student.FullName,
			"student_id":  student.StudentID,
			"email":       student.Email,
			"enrolled_at": student.EnrolledAt,
		})
	}
	return r.execute("roster.html", map[string]any{"students": students, "total": strconv.Itoa(total)})
}

// CourseDetails renders one course. The description is sanitized, not escaped,
// so basic formatting survives.
func (r *Renderer) CourseDetails(course Course) (Fragment, error) {
	return r.execute("course_details.html", map[string]any{
		"course":      r.courseItem(course),
		"description": r.policy.Sanitize(course.Description),
	})
}

// CourseForm renders the create (course == nil) or edit course form.
func (r *Renderer) CourseForm(course *Course) (Fragment, error) {
	data := map[string]any{
		"action": r.action("courses"),
		"course": map[string]any{"code": "", "name": "", "description": ""},
		"submit": r.messages.Text("action.create"),
	}
	if course != nil {
		data["action"] = r.action("courses", course.ID)
		data["course"] = map[string]any{"code": course.Code, "name": course.Name, "description": course.Description}
		data["submit"] = r.messages.Text("action.save")
	}
	return r.execute("course_form.html", data)
}

// CreateAttendanceForm renders the new form dialog with a course selector.
func (r *Renderer) CreateAttendanceForm(courses []Course) (Fragment, error) {
	options := make([]map[string]any, 0, len(courses))
	for _, course := range courses {
		options = append(options, map[string]any{"id": strconv.Itoa(course.ID), "code": course.Code, "name": course.Name})
	}
	return r.execute("attendance_form_create.html", map[string]any{
		"action":  r.action("forms"),
		"courses": options,
	})
}

// SubmitAttendanceForm renders the status picker for form.
func (r *Renderer) SubmitAttendanceForm(form AttendanceForm) (Fragment, error) {
	options := make([]map[string]any, 0, len(Statuses()))
	for _, status := range Statuses() {
		options = append(options, map[string]any{"value": string(status), "label": r.messages.StatusLabel(status)})
	}
	return r.execute("attendance_submit.html", map[string]any{
		"action":   r.action("forms", form.ID, "submit"),
		"form":     formItem(form),
		"statuses": options,
	})
}

func (r *Renderer) courseItem(course Course) map[string]any {
	teacher := course.TeacherName
	if teacher == "" {
		teacher = r.messages.Text("label.unknown")
	}
	return map[string]any{
		"id":      strconv.Itoa(course.ID),
		"code":    course.Code,
		"name":    course.Name,
		"teacher": teacher,
	}
}

func formItem(form AttendanceForm) map[string]any {
	return map[string]any{
		"id":          strconv.Itoa(form.ID),
		"title":       form.Title,
		"date":        form.Date,
		"start_time":  form.StartTime,
		"end_time":    form.EndTime,
		"course_name": form.CourseName,
	}
}

// execute injects the catalogue as "text" next to the template data.
func (r *Renderer) execute(name string, data map[string]any) (Fragment, error) {
	data["text"] = r.text
	out, err := r.templates.Render(name, data)
	if err != nil {
		return "", fmt.Errorf("attendance: render %s: %w", name, err)
	}
	return Fragment(out), nil
}

func (r *Renderer) action(parts ...any) string {
	var b strings.Builder
	b.WriteString(r.actionBase)
	for _, part := range parts {
		b.WriteByte('/')
		fmt.Fprint(&b, part)
	}
	return b.String()
}

// PendingOnly keeps the forms the student has not submitted yet.
func PendingOnly(forms []AttendanceForm) []AttendanceForm {
	pending := make([]AttendanceForm, 0, len(forms))
	for _, form := range forms {
		if !form.Submitted {
			pending = append(pending, form)
		}
	}
	return pending
}
