package attendance

import (
	"fmt"
	"strings"
)

// Role is the closed set of account roles the server issues.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts only the three known roles.
func ParseRole(value string) (Role, error) {
	switch role := Role(strings.ToLower(strings.TrimSpace(value))); role {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("attendance: unknown role %q", value)
	}
}

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// User is the identity returned by the profile and login endpoints.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FullName  string `json:"full_name"`
	Role      Role   `json:"role"`
	StudentID string `json:"student_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// DisplayName falls back to the username when the full name is blank.
func (u User) DisplayName() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Username
}

// Course mirrors the course payload. JoinCode and StudentCount are only sent to owners.
type Course struct {
	ID           int    `json:"id"`
	Code         string `json:"course_code"`
	Name         string `json:"course_name"`
	TeacherID    int    `json:"teacher_id,omitempty"`
	Description  string `json:"description"`
	JoinCode     string `json:"join_code,omitempty"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at,omitempty"`
	TeacherName  string `json:"teacher_name,omitempty"`
	StudentCount *int   `json:"student_count,omitempty"`
}

// Students returns the enrolled count, zero when the server omitted it.
func (c Course) Students() int {
	if c.StudentCount == nil {
		return 0
	}
	return *c.StudentCount
}

// AttendanceForm is a per-course sign-in sheet. Submitted is computed per requesting student.
type AttendanceForm struct {
	ID          int    `json:"id"`
	CourseID    int    `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"form_date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at,omitempty"`
	CourseName  string `json:"course_name,omitempty"`
	CourseCode  string `json:"course_code,omitempty"`
	Submitted   bool   `json:"submitted"`
	MyStatus    Status `json:"my_status,omitempty"`
}

// Status is an attendance outcome.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusExcused Status = "excused"
)

// Statuses lists every status in display order.
func Statuses() []Status {
	return []Status{StatusPresent, StatusAbsent, StatusLate, StatusExcused}
}

// AttendanceRecord is created once per (form, student).
type AttendanceRecord struct {
	ID          int    `json:"id"`
	FormID      int    `json:"form_id"`
	StudentID   int    `json:"student_id"`
	Status      Status `json:"status"`
	Notes       string `json:"notes"`
	SubmittedAt string `json:"submitted_at,omitempty"`
}

// EnrolledStudent is a roster row.
type EnrolledStudent struct {
	User
	EnrolledAt string `json:"enrolled_at"`
}

// CourseRoster is the payload of the course students endpoint.
type CourseRoster struct {
	Course        Course            `json:"course"`
	Students      []EnrolledStudent `json:"students"`
	TotalStudents int               `json:"total_students"`
}

// Ack is the generic {message} acknowledgement.
type Ack struct {
	Message string  `json:"message"`
	Course  *Course `json:"course,omitempty"`
	User    *User   `json:"user,omitempty"`
}

// StatusCount maps status keys to counts.
type StatusCount map[string]int

// Get reads a status count, zero when absent.
func (s StatusCount) Get(status Status) int {
	if s == nil {
		return 0
	}
	return s[string(status)]
}

// StudentAnalytics is the personal attendance summary.
type StudentAnalytics struct {
	StudentInfo    User                   `json:"student_info"`
	TotalRecords   int                    `json:"total_records"`
	AttendanceRate float64                `json:"attendance_rate"`
	StatusCount    StatusCount            `json:"status_count"`
	CourseStats    map[string]StatusCount `json:"course_stats"`
	MonthlyStats   map[string]StatusCount `json:"monthly_stats"`
}

// DailyStat aggregates the responses to one form date.
type DailyStat struct {
	FormTitle      string      `json:"form_title"`
	TotalResponses int         `json:"total_responses"`
	StatusCount    StatusCount `json:"status_count"`
}

// CourseAnalytics is the per-course summary a teacher sees.
type CourseAnalytics struct {
	CourseInfo            Course                 `json:"course_info"`
	TotalForms            int                    `json:"total_forms"`
	TotalResponses        int                    `json:"total_responses"`
	AverageAttendanceRate float64                `json:"average_attendance_rate"`
	StatusCount           StatusCount            `json:"status_count"`
	DailyStats            map[string]DailyStat   `json:"daily_stats"`
	StudentStats          map[string]StatusCount `json:"student_stats"`
}

// BasicStats are the platform totals.
type BasicStats struct {
	TotalUsers    int `json:"total_users"`
	TotalStudents int `json:"total_students"`
	TotalTeachers int `json:"total_teachers"`
	TotalCourses  int `json:"total_courses"`
	TotalForms    int `json:"total_forms"`
	TotalRecords  int `json:"total_records"`
}

// MonthlyStat is one row of the overview trend.
type MonthlyStat struct {
	Month          string  `json:"month"`
	TotalRecords   int     `json:"total_records"`
	PresentCount   int     `json:"present_count"`
	AttendanceRate float64 `json:"attendance_rate"`
}

// RecentActivity counts the last week of activity.
type RecentActivity struct {
	RecentForms   int `json:"recent_forms"`
	RecentRecords int `json:"recent_records"`
}

// OverviewAnalytics is the admin-wide summary.
type OverviewAnalytics struct {
	BasicStats     BasicStats     `json:"basic_stats"`
	RecentActivity RecentActivity `json:"recent_activity"`
	StatusCount    StatusCount    `json:"status_count"`
	MonthlyStats   []MonthlyStat  `json:"monthly_stats"`
}

// Credentials is the login request.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates an account. StudentID is only sent for students.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FullName  string `json:"full_name" validate:"required"`
	Role      Role   `json:"role" validate:"required,oneof=student teacher"`
	Password  string `json:"password" validate:"required"`
	StudentID string `json:"student_id,omitempty" validate:"required_if=Role student"`
}

// CourseInput is the create/update course body.
type CourseInput struct {
	Code        string `json:"course_code" validate:"required"`
	Name        string `json:"course_name" validate:"required"`
	Description string `json:"description"`
}

// FormInput is the create attendance form body.
type FormInput struct {
	Title       string `json:"title" validate:"required"`
	CourseID    int    `json:"course_id" validate:"required,gt=0"`
	Date        string `json:"form_date" validate:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required,datetime=15:04"`
	EndTime     string `json:"end_time" validate:"required,datetime=15:04"`
	Description string `json:"description"`
}

// SubmissionInput is the attendance submit body.
type SubmissionInput struct {
	Status Status `json:"status" validate:"required,oneof=present absent late excused"`
	Notes  string `json:"notes"`
}
