package attendance

import "context"

// AuthGateway covers identity and account endpoints.
type AuthGateway interface {
	Profile(ctx context.Context) (User, error)
	Login(ctx context.Context, creds Credentials) (User, error)
	Register(ctx context.Context, req RegisterRequest) (Ack, error)
	Logout(ctx context.Context) error
}

// CourseGateway covers course and membership endpoints.
type CourseGateway interface {
	Courses(ctx context.Context) ([]Course, error)
	Course(ctx context.Context, id int) (Course, error)
	CreateCourse(ctx context.Context, input CourseInput) (Course, error)
	UpdateCourse(ctx context.Context, id int, input CourseInput) (Course, error)
	JoinCourse(ctx context.Context, joinCode string) (Ack, error)
	LeaveCourse(ctx context.Context, id int) (Ack, error)
	CourseStudents(ctx context.Context, id int) (CourseRoster, error)
}

// FormGateway covers attendance form endpoints.
type FormGateway interface {
	Forms(ctx context.Context) ([]AttendanceForm, error)
	CreateForm(ctx context.Context, input FormInput) (AttendanceForm, error)
	SubmitAttendance(ctx context.Context, formID int, input SubmissionInput) (AttendanceRecord, error)
}

// AnalyticsGateway covers the role-scoped aggregate endpoints.
type AnalyticsGateway interface {
	StudentAnalytics(ctx context.Context, studentID int) (StudentAnalytics, error)
	CourseAnalytics(ctx context.Context, courseID int) (CourseAnalytics, error)
	Overview(ctx context.Context) (OverviewAnalytics, error)
}

// Gateway is the full REST surface the client consumes.
type Gateway interface {
	AuthGateway
	CourseGateway
	FormGateway
	AnalyticsGateway
}
