package attendance

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// fakeGateway answers from fields and records every call as "Method" or "Method:arg".
type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	profile     User
	profileErr  error
	loginUser   User
	loginErr    error
	registered  []RegisterRequest
	registerErr error
	logoutErr   error

	courses     []Course
	coursesErr  error
	course      Course
	courseErr   error
	createErr   error
	updateErr   error
	joinAck     Ack
	joinErr     error
	leaveErr    error
	roster      CourseRoster
	rosterErr   error
	forms       []AttendanceForm
	formsErr    error
	formErr     error
	submitErr   error
	submissions map[int]SubmissionInput

	studentStats   StudentAnalytics
	studentErr     error
	courseStats    CourseAnalytics
	courseStatsErr error
	overview       OverviewAnalytics
	overviewErr    error
}

var _ Gateway = (*fakeGateway)(nil)

var errRefused = &NetworkError{Op: "test", Err: errors.New("connection refused")}

func (g *fakeGateway) record(name string, args ...any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, arg := range args {
		name += fmt.Sprintf(":%v", arg)
	}
	g.calls = append(g.calls, name)
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
}

func (g *fakeGateway) Profile(context.Context) (User, error) {
	g.record("Profile")
	return g.profile, g.profileErr
}

func (g *fakeGateway) Login(_ context.Context, creds Credentials) (User, error) {
	g.record("Login", creds.Username)
	return g.loginUser, g.loginErr
}

func (g *fakeGateway) Register(_ context.Context, req RegisterRequest) (Ack, error) {
	g.record("Register", req.Username)
	g.registered = append(g.registered, req)
	return Ack{}, g.registerErr
}

func (g *fakeGateway) Logout(context.Context) error {
	g.record("Logout")
	return g.logoutErr
}

func (g *fakeGateway) Courses(context.Context) ([]Course, error) {
	g.record("Courses")
	return g.courses, g.coursesErr
}

func (g *fakeGateway) Course(_ context.Context, id int) (Course, error) {
	g.record("Course", id)
	return g.course, g.courseErr
}

func (g *fakeGateway) CreateCourse(_ context.Context, input CourseInput) (Course, error) {
	g.record("CreateCourse", input.Code)
	return Course{ID: 99, Code: input.Code, Name: input.Name}, g.createErr
}

func (g *fakeGateway) UpdateCourse(_ context.Context, id int, input CourseInput) (Course, error) {
	g.record("UpdateCourse", id)
	return Course{ID: id, Code: input.Code, Name: input.Name}, g.updateErr
}

func (g *fakeGateway) JoinCourse(_ context.Context, joinCode string) (Ack, error) {
	g.record("JoinCourse", joinCode)
	return g.joinAck, g.joinErr
}

func (g *fakeGateway) LeaveCourse(_ context.Context, id int) (Ack, error) {
	g.record("LeaveCourse", id)
	return Ack{}, g.leaveErr
}

func (g *fakeGateway) CourseStudents(_ context.Context, id int) (CourseRoster, error) {
	g.record("CourseStudents", id)
	return g.roster, g.rosterErr
}

func (g *fakeGateway) Forms(context.Context) ([]AttendanceForm, error) {
	g.record("Forms")
	return g.forms, g.formsErr
}

func (g *fakeGateway) CreateForm(_ context.Context, input FormInput) (AttendanceForm, error) {
	g.record("CreateForm", input.CourseID)
	return AttendanceForm{ID: 77, CourseID: input.CourseID, Title: input.Title}, g.formErr
}

func (g *fakeGateway) SubmitAttendance(_ context.Context, formID int, input SubmissionInput) (AttendanceRecord, error) {
	g.record("SubmitAttendance", formID)
	if g.submitErr != nil {
		return AttendanceRecord{}, g.submitErr
	}
	if g.submissions == nil {
		g.submissions = map[int]SubmissionInput{}
	}
	g.submissions[formID] = input
	return AttendanceRecord{ID: 1, FormID: formID, Status: input.Status, Notes: input.Notes}, nil
}

func (g *fakeGateway) StudentAnalytics(_ context.Context, studentID int) (StudentAnalytics, error) {
	g.record("StudentAnalytics", studentID)
	return g.studentStats, g.studentErr
}

func (g *fakeGateway) CourseAnalytics(_ context.Context, courseID int) (CourseAnalytics, error) {
	g.record("CourseAnalytics", courseID)
	return g.courseStats, g.courseStatsErr
}

func (g *fakeGateway) Overview(context.Context) (OverviewAnalytics, error) {
	g.record("Overview")
	return g.overview, g.overviewErr
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTelemetry) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func studentUser() User {
	return User{ID: 3, Username: "sam", FullName: "Sam Chen", Role: RoleStudent, StudentID: "S001"}
}

func teacherUser() User {
	return User{ID: 2, Username: "grace", FullName: "Grace Lin", Role: RoleTeacher}
}

func adminUser() User {
	return User{ID: 1, Username: "admin", Role: RoleAdmin}
}

func countPtr(n int) *int { return &n }

func teacherAnalytics() CourseAnalytics {
	return CourseAnalytics{
		CourseInfo:  Course{ID: 10, Code: "CS101", Name: "Intro"},
		TotalForms:  2,
		StatusCount: StatusCount{"present": 3, "absent": 1},
		DailyStats: map[string]DailyStat{
			"2024-03-02": {FormTitle: "W2", TotalResponses: 2, StatusCount: StatusCount{"present": 1, "absent": 1}},
			"2024-03-01": {FormTitle: "W1", TotalResponses: 2, StatusCount: StatusCount{"present": 2}},
		},
		StudentStats: map[string]StatusCount{
			"S001 - Sam Chen": {"present": 2},
			"S002 - Ada Wu":   {"present": 1, "absent": 1},
		},
	}
}
