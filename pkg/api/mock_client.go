package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// MockAccount is a seeded login.
type MockAccount struct {
	User     attendance.User
	Password string
}

// MockData seeds deterministic fixtures for tests and local demos.
type MockData struct {
	Accounts    []MockAccount
	Courses     []attendance.Course
	Enrollments map[int][]int
	Forms       []attendance.AttendanceForm
	Records     []attendance.AttendanceRecord
}

// MockClient implements attendance.Gateway against in-memory fixtures. It
// keeps one server-side session, like a browser holding a cookie.
type MockClient struct {
	mu          sync.Mutex
	accounts    map[string]MockAccount
	courses     []attendance.Course
	enrollments map[int]map[int]bool
	forms       []attendance.AttendanceForm
	records     []attendance.AttendanceRecord
	current     *attendance.User
	nextID      int
}

var _ attendance.Gateway = (*MockClient)(nil)

// NewMockClient builds a mock gateway from the provided fixtures.
func NewMockClient(data MockData) *MockClient {
	c := &MockClient{
		accounts:    make(map[string]MockAccount, len(data.Accounts)),
		courses:     append([]attendance.Course(nil), data.Courses...),
		enrollments: map[int]map[int]bool{},
		forms:       append([]attendance.AttendanceForm(nil), data.Forms...),
		records:     append([]attendance.AttendanceRecord(nil), data.Records...),
		nextID:      1000,
	}
	for _, account := range data.Accounts {
		c.accounts[account.User.Username] = account
	}
	for courseID, students := range data.Enrollments {
		set := map[int]bool{}
		for _, id := range students {
			set[id] = true
		}
		c.enrollments[courseID] = set
	}
	return c
}

// DemoData returns a small school with one account per role. Every password is "demo".
func DemoData() MockData {
	return MockData{
		Accounts: []MockAccount{
			{User: attendance.User{ID: 1, Username: "admin", FullName: "Site Admin", Email: "admin@example.edu", Role: attendance.RoleAdmin}, Password: "demo"},
			{User: attendance.User{ID: 2, Username: "teacher", FullName: "Grace Lin", Email: "grace@example.edu", Role: attendance.RoleTeacher}, Password: "demo"},
			{User: attendance.User{ID: 3, Username: "student", FullName: "Sam Chen", Email: "sam@example.edu", Role: attendance.RoleStudent, StudentID: "S001"}, Password: "demo"},
			{User: attendance.User{ID: 4, Username: "student2", FullName: "Ada Wu", Email: "ada@example.edu", Role: attendance.RoleStudent, StudentID: "S002"}, Password: "demo"},
		},
		Courses: []attendance.Course{
			{ID: 10, Code: "CS101", Name: "Intro to Programming", TeacherID: 2, TeacherName: "Grace Lin", Description: "Variables, loops and <b>functions</b>.", JoinCode: "JOIN101", IsActive: true},
			{ID: 11, Code: "CS201", Name: "Data Structures", TeacherID: 2, TeacherName: "Grace Lin", Description: "Lists, trees and graphs.", JoinCode: "JOIN201", IsActive: true},
		},
		Enrollments: map[int][]int{10: {3, 4}},
		Forms: []attendance.AttendanceForm{
			{ID: 100, CourseID: 10, Title: "Week 1", Date: "2024-03-04", StartTime: "09:00", EndTime: "10:00", IsActive: true},
			{ID: 101, CourseID: 10, Title: "Week 2", Date: "2024-03-11", StartTime: "09:00", EndTime: "10:00", IsActive: true},
		},
		Records: []attendance.AttendanceRecord{
			{ID: 500, FormID: 100, StudentID: 3, Status: attendance.StatusPresent},
			{ID: 501, FormID: 100, StudentID: 4, Status: attendance.StatusLate},
		},
	}
}

// Profile implements attendance.AuthGateway.
func (c *MockClient) Profile(context.Context) (attendance.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return attendance.User{}, unauthorized()
	}
	return *c.current, nil
}

// Login implements attendance.AuthGateway.
func (c *MockClient) Login(_ context.Context, creds attendance.Credentials) (attendance.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	account, ok := c.accounts[creds.Username]
	if !ok || account.Password != creds.Password {
		return attendance.User{}, &attendance.APIError{Status: http.StatusUnauthorized, Message: "Invalid username or password"}
	}
	user := account.User
	c.current = &user
	return user, nil
}

// Register implements attendance.AuthGateway.
func (c *MockClient) Register(_ context.Context, req attendance.RegisterRequest) (attendance.Ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.accounts[req.Username]; exists {
		return attendance.Ack{}, &attendance.APIError{Status: http.StatusBadRequest, Message: "Username already exists"}
	}
	user := attendance.User{
		ID:       c.allocate(),
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if req.Role == attendance.RoleStudent {
		user.StudentID = req.StudentID
	}
	c.accounts[user.Username] = MockAccount{User: user, Password: req.Password}
	return attendance.Ack{Message: "User registered successfully", User: &user}, nil
}

// Logout implements attendance.AuthGateway.
func (c *MockClient) Logout(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
	return nil
}

// Courses implements attendance.CourseGateway. Teachers see their own courses
// with join codes, students see their enrollments, admins see everything.
func (c *MockClient) Courses(context.Context) ([]attendance.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, unauthorized()
	}
	out := []attendance.Course{}
	for _, course := range c.courses {
		switch c.current.Role {
		case attendance.RoleTeacher:
			if course.TeacherID == c.current.ID {
				out = append(out, c.withCount(course))
			}
		case attendance.RoleStudent:
			if c.enrollments[course.ID][c.current.ID] {
				course.JoinCode = ""
				out = append(out, course)
			}
		case attendance.RoleAdmin:
			out = append(out, c.withCount(course))
		}
	}
	return out, nil
}

// Course implements attendance.CourseGateway.
func (c *MockClient) Course(_ context.Context, id int) (attendance.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return attendance.Course{}, unauthorized()
	}
	idx := c.courseIndex(id)
	if idx < 0 {
		return attendance.Course{}, notFound("Course")
	}
	return c.withCount(c.courses[idx]), nil
}

// CreateCourse implements attendance.CourseGateway.
func (c *MockClient) CreateCourse(_ context.Context, input attendance.CourseInput) (attendance.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(attendance.RoleTeacher); err != nil {
		return attendance.Course{}, err
	}
	for _, course := range c.courses {
		if strings.EqualFold(course.Code, input.Code) {
			return attendance.Course{}, &attendance.APIError{Status: http.StatusBadRequest, Message: "Course code already exists"}
		}
	}
	id := c.allocate()
	course := attendance.Course{
		ID:          id,
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		TeacherID:   c.current.ID,
		TeacherName: c.current.DisplayName(),
		JoinCode:    fmt.Sprintf("J%05d", id),
		IsActive:    true,
	}
	c.courses = append(c.courses, course)
	return c.withCount(course), nil
}

// UpdateCourse implements attendance.CourseGateway.
func (c *MockClient) UpdateCourse(_ context.Context, id int, input attendance.CourseInput) (attendance.Course, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(attendance.RoleTeacher); err != nil {
		return attendance.Course{}, err
	}
	idx := c.courseIndex(id)
	if idx < 0 {
		return attendance.Course{}, notFound("Course")
	}
	if c.courses[idx].TeacherID != c.current.ID {
		return attendance.Course{}, forbidden()
	}
	c.courses[idx].Code = input.Code
	c.courses[idx].Name = input.Name
	c.courses[idx].Description = input.Description
	return c.withCount(c.courses[idx]), nil
}

// JoinCourse implements attendance.CourseGateway.
func (c *MockClient) JoinCourse(_ context.Context, joinCode string) (attendance.Ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(attendance.RoleStudent); err != nil {
		return attendance.Ack{}, err
	}
	for _, course := range c.courses {
		if course.JoinCode != joinCode {
			continue
		}
		if c.enrollments[course.ID][c.current.ID] {
			return attendance.Ack{}, &attendance.APIError{Status: http.StatusBadRequest, Message: "Already enrolled in this course"}
		}
		if c.enrollments[course.ID] == nil {
			c.enrollments[course.ID] = map[int]bool{}
		}
		c.enrollments[course.ID][c.current.ID] = true
		course.JoinCode = ""
		return attendance.Ack{Message: "Successfully joined course", Course: &course}, nil
	}
	return attendance.Ack{}, &attendance.APIError{Status: http.StatusNotFound, Message: "Invalid join code"}
}

// LeaveCourse implements attendance.CourseGateway.
func (c *MockClient) LeaveCourse(_ context.Context, id int) (attendance.Ack, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(attendance.RoleStudent); err != nil {
		return attendance.Ack{}, err
	}
	if !c.enrollments[id][c.current.ID] {
		return attendance.Ack{}, &attendance.APIError{Status: http.StatusBadRequest, Message: "Not enrolled in this course"}
	}
	delete(c.enrollments[id], c.current.ID)
	return attendance.Ack{Message: "Successfully left course"}, nil
}

// CourseStudents implements attendance.CourseGateway.
func (c *MockClient) CourseStudents(_ context.Context, id int) (attendance.CourseRoster, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return attendance.CourseRoster{}, unauthorized()
	}
	idx := c.courseIndex(id)
	if idx < 0 {
		return attendance.CourseRoster{}, notFound("Course")
	}
	roster := attendance.CourseRoster{Course: c.withCount(c.courses[idx]), Students: []attendance.EnrolledStudent{}}
	for _, account := range c.sortedAccounts() {
		if c.enrollments[id][account.User.ID] {
			roster.Students = append(roster.Students, attendance.EnrolledStudent{User: account.User})
		}
	}
	roster.TotalStudents = len(roster.Students)
	return roster, nil
}

// Forms implements attendance.FormGateway. Submitted is computed for the current student.
func (c *MockClient) Forms(context.Context) ([]attendance.AttendanceForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil, unauthorized()
	}
	out := []attendance.AttendanceForm{}
	for _, form := range c.forms {
		idx := c.courseIndex(form.CourseID)
		if idx < 0 {
			continue
		}
		course := c.courses[idx]
		switch c.current.Role {
		case attendance.RoleStudent:
			if !c.enrollments[course.ID][c.current.ID] {
				continue
			}
			if record, ok := c.record(form.ID, c.current.ID); ok {
				form.Submitted = true
				form.MyStatus = record.Status
			}
		case attendance.RoleTeacher:
			if course.TeacherID != c.current.ID {
				continue
			}
		}
		form.CourseName = course.Name
		form.CourseCode = course.Code
		out = append(out, form)
	}
	return out, nil
}

// CreateForm implements attendance.FormGateway.
func (c *MockClient) CreateForm(_ context.Context, input attendance.FormInput) (attendance.AttendanceForm, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(attendance.RoleTeacher); err != nil {
		return attendance.AttendanceForm{}, err
	}
	idx := c.courseIndex(input.CourseID)
	if idx < 0 {
		return attendance.AttendanceForm{}, notFound("Course")
	}
	if c.courses[idx].TeacherID != c.current.ID {
		return attendance.AttendanceForm{}, forbidden()
	}
	form := attendance.AttendanceForm{
		ID:          c.allocate(),
		CourseID:    input.CourseID,
		Title:       input.Title,
		Description: input.Description,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		IsActive:    true,
	}
	c.forms = append(c.forms, form)
	return form, nil
}

// SubmitAttendance implements attendance.FormGateway.
func (c *MockClient) SubmitAttendance(_ context.Context, formID int, input attendance.SubmissionInput) (attendance.AttendanceRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(attendance.RoleStudent); err != nil {
		return attendance.AttendanceRecord{}, err
	}
	var form *attendance.AttendanceForm
	for i := range c.forms {
		if c.forms[i].ID == formID {
			form = &c.forms[i]
		}
	}
	if form == nil {
		return attendance.AttendanceRecord{}, notFound("Form")
	}
	if !c.enrollments[form.CourseID][c.current.ID] {
		return attendance.AttendanceRecord{}, forbidden()
	}
	if _, ok := c.record(formID, c.current.ID); ok {
		return attendance.AttendanceRecord{}, &attendance.APIError{Status: http.StatusBadRequest, Message: "Attendance already submitted"}
	}
	record := attendance.AttendanceRecord{
		ID:        c.allocate(),
		FormID:    formID,
		StudentID: c.current.ID,
		Status:    input.Status,
		Notes:     input.Notes,
	}
	c.records = append(c.records, record)
	return record, nil
}

// StudentAnalytics implements attendance.AnalyticsGateway.
func (c *MockClient) StudentAnalytics(_ context.Context, studentID int) (attendance.StudentAnalytics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return attendance.StudentAnalytics{}, unauthorized()
	}
	if c.current.Role == attendance.RoleStudent && c.current.ID != studentID {
		return attendance.StudentAnalytics{}, forbidden()
	}
	stats := attendance.StudentAnalytics{
		StatusCount:  attendance.StatusCount{},
		CourseStats:  map[string]attendance.StatusCount{},
		MonthlyStats: map[string]attendance.StatusCount{},
	}
	for _, account := range c.accounts {
		if account.User.ID == studentID {
			stats.StudentInfo = account.User
		}
	}
	for _, record := range c.records {
		if record.StudentID != studentID {
			continue
		}
		stats.TotalRecords++
		stats.StatusCount[string(record.Status)]++
		if form, ok := c.form(record.FormID); ok {
			if idx := c.courseIndex(form.CourseID); idx >= 0 {
				bump(stats.CourseStats, c.courses[idx].Name, record.Status)
			}
			if len(form.Date) >= 7 {
				bump(stats.MonthlyStats, form.Date[:7], record.Status)
			}
		}
	}
	stats.AttendanceRate = rate(stats.StatusCount, stats.TotalRecords)
	return stats, nil
}

// CourseAnalytics implements attendance.AnalyticsGateway.
func (c *MockClient) CourseAnalytics(_ context.Context, courseID int) (attendance.CourseAnalytics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return attendance.CourseAnalytics{}, unauthorized()
	}
	idx := c.courseIndex(courseID)
	if idx < 0 {
		return attendance.CourseAnalytics{}, notFound("Course")
	}
	stats := attendance.CourseAnalytics{
		CourseInfo:   c.withCount(c.courses[idx]),
		StatusCount:  attendance.StatusCount{},
		DailyStats:   map[string]attendance.DailyStat{},
		StudentStats: map[string]attendance.StatusCount{},
	}
	names := map[int]string{}
	for _, account := range c.accounts {
		names[account.User.ID] = account.User.StudentID + " - " + account.User.DisplayName()
	}
	for _, form := range c.forms {
		if form.CourseID != courseID {
			continue
		}
		stats.TotalForms++
		daily := attendance.DailyStat{FormTitle: form.Title, StatusCount: attendance.StatusCount{}}
		for _, record := range c.records {
			if record.FormID != form.ID {
				continue
			}
			stats.TotalResponses++
			stats.StatusCount[string(record.Status)]++
			daily.TotalResponses++
			daily.StatusCount[string(record.Status)]++
			bump(stats.StudentStats, names[record.StudentID], record.Status)
		}
		stats.DailyStats[form.Date] = daily
	}
	stats.AverageAttendanceRate = rate(stats.StatusCount, stats.TotalResponses)
	return stats, nil
}

// Overview implements attendance.AnalyticsGateway.
func (c *MockClient) Overview(context.Context) (attendance.OverviewAnalytics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requireRole(attendance.RoleAdmin); err != nil {
		return attendance.OverviewAnalytics{}, err
	}
	overview := attendance.OverviewAnalytics{StatusCount: attendance.StatusCount{}, MonthlyStats: []attendance.MonthlyStat{}}
	for _, account := range c.accounts {
		overview.BasicStats.TotalUsers++
		switch account.User.Role {
		case attendance.RoleStudent:
			overview.BasicStats.TotalStudents++
		case attendance.RoleTeacher:
			overview.BasicStats.TotalTeachers++
		}
	}
	overview.BasicStats.TotalCourses = len(c.courses)
	overview.BasicStats.TotalForms = len(c.forms)
	overview.BasicStats.TotalRecords = len(c.records)
	for _, record := range c.records {
		overview.StatusCount[string(record.Status)]++
	}
	return overview, nil
}

func (c *MockClient) allocate() int {
	c.nextID++
	return c.nextID
}

func (c *MockClient) requireRole(role attendance.Role) error {
	if c.current == nil {
		return unauthorized()
	}
	if c.current.Role != role {
		return forbidden()
	}
	return nil
}

func (c *MockClient) courseIndex(id int) int {
	for i, course := range c.courses {
		if course.ID == id {
			return i
		}
	}
	return -1
}

func (c *MockClient) form(id int) (attendance.AttendanceForm, bool) {
	for _, form := range c.forms {
		if form.ID == id {
			return form, true
		}
	}
	return attendance.AttendanceForm{}, false
}

func (c *MockClient) record(formID, studentID int) (attendance.AttendanceRecord, bool) {
	for _, record := range c.records {
		if record.FormID == formID && record.StudentID == studentID {
			return record, true
		}
	}
	return attendance.AttendanceRecord{}, false
}

func (c *MockClient) withCount(course attendance.Course) attendance.Course {
	count := len(c.enrollments[course.ID])
	course.StudentCount = &count
	return course
}

func (c *MockClient) sortedAccounts() []MockAccount {
	out := make([]MockAccount, 0, len(c.accounts))
	for _, account := range c.accounts {
		out = append(out, account)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User.ID < out[j].User.ID })
	return out
}

func bump(target map[string]attendance.StatusCount, key string, status attendance.Status) {
	counts := target[key]
	if counts == nil {
		counts = attendance.StatusCount{}
		target[key] = counts
	}
	counts[string(status)]++
}

func rate(counts attendance.StatusCount, total int) float64 {
	if total == 0 {
		return 0
	}
	attended := counts.Get(attendance.StatusPresent) + counts.Get(attendance.StatusLate)
	return float64(attended) * 100 / float64(total)
}

func unauthorized() error {
	return &attendance.APIError{Status: http.StatusUnauthorized, Message: "Authentication required"}
}

func forbidden() error {
	return &attendance.APIError{Status: http.StatusForbidden, Message: "Permission denied"}
}

func notFound(what string) error {
	return &attendance.APIError{Status: http.StatusNotFound, Message: what + " not found"}
}
