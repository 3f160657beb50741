package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// JoinCourseInput carries the code a teacher shared.
type JoinCourseInput struct {
	JoinCode string `json:"join_code"`
}

type joinService interface {
	JoinCourse(ctx context.Context, joinCode string) error
}

// JoinCourseCommand enrolls the student and refreshes membership views.
type JoinCourseCommand struct {
	service   joinService
	telemetry Telemetry
}

// NewJoinCourseCommand creates the command.
func NewJoinCourseCommand(service joinService, telemetry Telemetry) *JoinCourseCommand {
	return &JoinCourseCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[JoinCourseInput] = (*JoinCourseCommand)(nil)

// Execute delegates to the app.
func (c *JoinCourseCommand) Execute(ctx context.Context, msg JoinCourseInput) error {
	if c.service == nil {
		return errors.New("join course command requires service")
	}
	if err := c.service.JoinCourse(ctx, msg.JoinCode); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.join", nil)
	return nil
}

// CourseRef addresses a course by id.
type CourseRef struct {
	CourseID int `json:"course_id"`
}

type leaveService interface {
	LeaveCourse(ctx context.Context, courseID int) error
}

// LeaveCourseCommand withdraws the student and refreshes membership views.
type LeaveCourseCommand struct {
	service   leaveService
	telemetry Telemetry
}

// NewLeaveCourseCommand creates the command.
func NewLeaveCourseCommand(service leaveService, telemetry Telemetry) *LeaveCourseCommand {
	return &LeaveCourseCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CourseRef] = (*LeaveCourseCommand)(nil)

// Execute delegates to the app.
func (c *LeaveCourseCommand) Execute(ctx context.Context, msg CourseRef) error {
	if c.service == nil {
		return errors.New("leave course command requires service")
	}
	if err := c.service.LeaveCourse(ctx, msg.CourseID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.leave", map[string]any{"course_id": msg.CourseID})
	return nil
}

type courseDialogService interface {
	ViewCourseDetails(ctx context.Context, courseID int) error
	ViewCourseStudents(ctx context.Context, courseID int) error
	EditCourse(ctx context.Context, courseID int) error
}

// CourseDialog names the dialog a CourseDialogCommand opens.
type CourseDialog string

const (
	CourseDialogDetails  CourseDialog = "details"
	CourseDialogStudents CourseDialog = "students"
	CourseDialogEdit     CourseDialog = "edit"
)

// CourseDialogCommand opens the details, roster or edit dialog for one course.
type CourseDialogCommand struct {
	dialog    CourseDialog
	service   courseDialogService
	telemetry Telemetry
}

// NewViewCourseCommand opens the details dialog.
func NewViewCourseCommand(service courseDialogService, telemetry Telemetry) *CourseDialogCommand {
	return newCourseDialogCommand(CourseDialogDetails, service, telemetry)
}

// NewViewStudentsCommand opens the roster dialog.
func NewViewStudentsCommand(service courseDialogService, telemetry Telemetry) *CourseDialogCommand {
	return newCourseDialogCommand(CourseDialogStudents, service, telemetry)
}

// NewEditCourseCommand opens the edit dialog.
func NewEditCourseCommand(service courseDialogService, telemetry Telemetry) *CourseDialogCommand {
	return newCourseDialogCommand(CourseDialogEdit, service, telemetry)
}

func newCourseDialogCommand(dialog CourseDialog, service courseDialogService, telemetry Telemetry) *CourseDialogCommand {
	return &CourseDialogCommand{dialog: dialog, service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[CourseRef] = (*CourseDialogCommand)(nil)

// Execute delegates to the app.
func (c *CourseDialogCommand) Execute(ctx context.Context, msg CourseRef) error {
	if c.service == nil {
		return errors.New("course dialog command requires service")
	}
	var err error
	switch c.dialog {
	case CourseDialogDetails:
		err = c.service.ViewCourseDetails(ctx, msg.CourseID)
	case CourseDialogStudents:
		err = c.service.ViewCourseStudents(ctx, msg.CourseID)
	case CourseDialogEdit:
		err = c.service.EditCourse(ctx, msg.CourseID)
	default:
		err = errors.New("course dialog command: unknown dialog " + string(c.dialog))
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.course_dialog", map[string]any{
		"dialog":    string(c.dialog),
		"course_id": msg.CourseID,
	})
	return nil
}

// OpenCreateCourseInput carries no fields.
type OpenCreateCourseInput struct{}

type openCreateCourseService interface {
	OpenCreateCourse() error
}

// OpenCreateCourseCommand shows the empty course form.
type OpenCreateCourseCommand struct {
	service   openCreateCourseService
	telemetry Telemetry
}

// NewOpenCreateCourseCommand creates the command.
func NewOpenCreateCourseCommand(service openCreateCourseService, telemetry Telemetry) *OpenCreateCourseCommand {
	return &OpenCreateCourseCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[OpenCreateCourseInput] = (*OpenCreateCourseCommand)(nil)

// Execute delegates to the app.
func (c *OpenCreateCourseCommand) Execute(ctx context.Context, _ OpenCreateCourseInput) error {
	if c.service == nil {
		return errors.New("open create course command requires service")
	}
	if err := c.service.OpenCreateCourse(); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.course_dialog", map[string]any{"dialog": "create"})
	return nil
}

type createCourseService interface {
	CreateCourse(ctx context.Context, input attendance.CourseInput) (attendance.Course, error)
}

// CreateCourseCommand creates a course and refreshes the teacher list.
type CreateCourseCommand struct {
	service   createCourseService
	telemetry Telemetry
}

// NewCreateCourseCommand creates the command.
func NewCreateCourseCommand(service createCourseService, telemetry Telemetry) *CreateCourseCommand {
	return &CreateCourseCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[attendance.CourseInput] = (*CreateCourseCommand)(nil)

// Execute delegates to the app.
func (c *CreateCourseCommand) Execute(ctx context.Context, msg attendance.CourseInput) error {
	if c.service == nil {
		return errors.New("create course command requires service")
	}
	course, err := c.service.CreateCourse(ctx, msg)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.course_create", map[string]any{
		"course_id":   course.ID,
		"course_code": course.Code,
	})
	return nil
}

// UpdateCourseInput edits one course.
type UpdateCourseInput struct {
	CourseID int                    `json:"course_id"`
	Course   attendance.CourseInput `json:"course"`
}

type updateCourseService interface {
	UpdateCourse(ctx context.Context, courseID int, input attendance.CourseInput) (attendance.Course, error)
}

// UpdateCourseCommand saves a course and refreshes the teacher list.
type UpdateCourseCommand struct {
	service   updateCourseService
	telemetry Telemetry
}

// NewUpdateCourseCommand creates the command.
func NewUpdateCourseCommand(service updateCourseService, telemetry Telemetry) *UpdateCourseCommand {
	return &UpdateCourseCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[UpdateCourseInput] = (*UpdateCourseCommand)(nil)

// Execute delegates to the app.
func (c *UpdateCourseCommand) Execute(ctx context.Context, msg UpdateCourseInput) error {
	if c.service == nil {
		return errors.New("update course command requires service")
	}
	if _, err := c.service.UpdateCourse(ctx, msg.CourseID, msg.Course); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "attendance.command.course_update", map[string]any{"course_id": msg.CourseID})
	return nil
}
