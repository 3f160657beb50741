package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// OpenCreateFormInput carries no fields.
type OpenCreateFormInput struct{}

type openCreateFormService interface {
	OpenCreateForm(ctx context.Context) error
}

// OpenCreateFormCommand loads the teacher's courses into the new form dialog.
type OpenCreateFormCommand struct {
	service   openCreateFormService
	telemetry Telemetry
}

// NewOpenCreateFormCommand creates the command.
func NewOpenCreateFormCommand(service openCreateFormService, telemetry Telemetry) *OpenCreateFormCommand {
	return &OpenCreateFormCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[OpenCreateFormInput] = (*OpenCreateFormCommand)(nil)

// Execute delegates to the app.
func (c *OpenCreateFormCommand) Execute(ctx context.Context, _ OpenCreateFormInput) error {
	if c.service == nil {
		return errors.New("open create form command requires service")
	}
	if err := c.service.OpenCreateForm(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.form_dialog", map[string]any{"dialog": "create"})
	return nil
}

type createFormService interface {
	CreateForm(ctx context.Context, input attendance.FormInput) (attendance.AttendanceForm, error)
}

// CreateFormCommand publishes an attendance form.
type CreateFormCommand struct {
	service   createFormService
	telemetry Telemetry
}

// NewCreateFormCommand creates the command.
func NewCreateFormCommand(service createFormService, telemetry Telemetry) *CreateFormCommand {
	return &CreateFormCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[attendance.FormInput] = (*CreateFormCommand)(nil)

// Execute delegates to the app.
func (c *CreateFormCommand) Execute(ctx context.Context, msg attendance.FormInput) error {
	if c.service == nil {
		return errors.New("create form command requires service")
	}
	form, err := c.service.CreateForm(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.form_create", map[string]any{
		"form_id":   form.ID,
		"course_id": msg.CourseID,
	})
	return nil
}

// FormRef addresses a form by id.
type FormRef struct {
	FormID int `json:"form_id"`
}

type openSubmitService interface {
	OpenSubmitAttendance(formID int) error
}

// OpenSubmitCommand shows the status picker for a pending form.
type OpenSubmitCommand struct {
	service   openSubmitService
	telemetry Telemetry
}

// NewOpenSubmitCommand creates the command.
func NewOpenSubmitCommand(service openSubmitService, telemetry Telemetry) *OpenSubmitCommand {
	return &OpenSubmitCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[FormRef] = (*OpenSubmitCommand)(nil)

// Execute delegates to the app.
func (c *OpenSubmitCommand) Execute(ctx context.Context, msg FormRef) error {
	if c.service == nil {
		return errors.New("open submit command requires service")
	}
	if err := c.service.OpenSubmitAttendance(msg.FormID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.form_dialog", map[string]any{
		"dialog":  "submit",
		"form_id": msg.FormID,
	})
	return nil
}

// SubmitAttendanceInput records a status for one form.
type SubmitAttendanceInput struct {
	FormID     int                        `json:"form_id"`
	Submission attendance.SubmissionInput `json:"submission"`
}

type submitService interface {
	SubmitAttendance(ctx context.Context, formID int, input attendance.SubmissionInput) (attendance.AttendanceRecord, error)
}

// SubmitAttendanceCommand records attendance and refreshes pending forms.
type SubmitAttendanceCommand struct {
	service   submitService
	telemetry Telemetry
}

// NewSubmitAttendanceCommand creates the command.
func NewSubmitAttendanceCommand(service submitService, telemetry Telemetry) *SubmitAttendanceCommand {
	return &SubmitAttendanceCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SubmitAttendanceInput] = (*SubmitAttendanceCommand)(nil)

// Execute delegates to the app.
func (c *SubmitAttendanceCommand) Execute(ctx context.Context, msg SubmitAttendanceInput) error {
	if c.service == nil {
		return errors.New("submit attendance command requires service")
	}
	record, err := c.service.SubmitAttendance(ctx, msg.FormID, msg.Submission)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.submit", map[string]any{
		"form_id": msg.FormID,
		"status":  string(record.Status),
	})
	return nil
}
