package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

const maxErrorBody = 1 << 20

// HTTPConfig configures the REST gateway.
type HTTPConfig struct {
	BaseURL string
	// HTTPClient overrides the transport. The default keeps the session
	// cookie in a jar and sets no timeout.
	HTTPClient *http.Client
	// Breaker, when set, guards every request.
	Breaker *gobreaker.CircuitBreaker
	Metrics *Metrics
}

// HTTPClient implements attendance.Gateway over JSON/HTTP. Each call issues
// exactly one request and never retries.
type HTTPClient struct {
	baseURL  string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	metrics  *Metrics
	identity *identitySchema
}

var _ attendance.Gateway = (*HTTPClient)(nil)

// NewHTTPClient builds a gateway for the attendance API at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("api: cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar}
	}
	identity, err := newIdentitySchema()
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		baseURL:  base,
		client:   httpClient,
		breaker:  cfg.Breaker,
		metrics:  cfg.Metrics,
		identity: identity,
	}, nil
}

// Profile implements attendance.AuthGateway.
func (c *HTTPClient) Profile(ctx context.Context) (attendance.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, "profile", http.MethodGet, "/api/profile", nil, &raw); err != nil {
		return attendance.User{}, err
	}
	return c.identity.decode("profile", raw)
}

// Login implements attendance.AuthGateway.
func (c *HTTPClient) Login(ctx context.Context, creds attendance.Credentials) (attendance.User, error) {
	var resp loginResponse
	if err := c.do(ctx, "login", http.MethodPost, "/api/login", creds, &resp); err != nil {
		return attendance.User{}, err
	}
	return c.identity.decode("login", resp.User)
}

// Register implements attendance.AuthGateway. student_id is only sent for students.
func (c *HTTPClient) Register(ctx context.Context, req attendance.RegisterRequest) (attendance.Ack, error) {
	body := registerRequest{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     string(req.Role),
		Password: req.Password,
	}
	if req.Role == attendance.RoleStudent {
		body.StudentID = req.StudentID
	}
	var ack attendance.Ack
	err := c.do(ctx, "register", http.MethodPost, "/api/register", body, &ack)
	return ack, err
}

// Logout implements attendance.AuthGateway.
func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, "logout", http.MethodPost, "/api/logout", nil, nil)
}

// Courses implements attendance.CourseGateway.
func (c *HTTPClient) Courses(ctx context.Context) ([]attendance.Course, error) {
	var courses []attendance.Course
	err := c.do(ctx, "courses.list", http.MethodGet, "/api/courses", nil, &courses)
	return courses, err
}

// Course implements attendance.CourseGateway.
func (c *HTTPClient) Course(ctx context.Context, id int) (attendance.Course, error) {
	var course attendance.Course
	err := c.do(ctx, "courses.get", http.MethodGet, coursePath(id), nil, &course)
	return course, err
}

// CreateCourse implements attendance.CourseGateway.
func (c *HTTPClient) CreateCourse(ctx context.Context, input attendance.CourseInput) (attendance.Course, error) {
	var course attendance.Course
	err := c.do(ctx, "courses.create", http.MethodPost, "/api/courses", input, &course)
	return course, err
}

// UpdateCourse implements attendance.CourseGateway.
func (c *HTTPClient) UpdateCourse(ctx context.Context, id int, input attendance.CourseInput) (attendance.Course, error) {
	var course attendance.Course
	err := c.do(ctx, "courses.update", http.MethodPut, coursePath(id), input, &course)
	return course, err
}

// JoinCourse implements attendance.CourseGateway.
func (c *HTTPClient) JoinCourse(ctx context.Context, joinCode string) (attendance.Ack, error) {
	var ack attendance.Ack
	err := c.do(ctx, "courses.join", http.MethodPost, "/api/courses/join", joinRequest{JoinCode: joinCode}, &ack)
	return ack, err
}

// LeaveCourse implements attendance.CourseGateway.
func (c *HTTPClient) LeaveCourse(ctx context.Context, id int) (attendance.Ack, error) {
	var ack attendance.Ack
	err := c.do(ctx, "courses.leave", http.MethodPost, coursePath(id)+"/leave", nil, &ack)
	return ack, err
}

// CourseStudents implements attendance.CourseGateway.
func (c *HTTPClient) CourseStudents(ctx context.Context, id int) (attendance.CourseRoster, error) {
	var roster attendance.CourseRoster
	err := c.do(ctx, "courses.students", http.MethodGet, coursePath(id)+"/students", nil, &roster)
	return roster, err
}

// Forms implements attendance.FormGateway.
func (c *HTTPClient) Forms(ctx context.Context) ([]attendance.AttendanceForm, error) {
	var forms []attendance.AttendanceForm
	err := c.do(ctx, "forms.list", http.MethodGet, "/api/forms", nil, &forms)
	return forms, err
}

// CreateForm implements attendance.FormGateway.
func (c *HTTPClient) CreateForm(ctx context.Context, input attendance.FormInput) (attendance.AttendanceForm, error) {
	var form attendance.AttendanceForm
	err := c.do(ctx, "forms.create", http.MethodPost, "/api/forms", input, &form)
	return form, err
}

// SubmitAttendance implements attendance.FormGateway.
func (c *HTTPClient) SubmitAttendance(ctx context.Context, formID int, input attendance.SubmissionInput) (attendance.AttendanceRecord, error) {
	var record attendance.AttendanceRecord
	path := "/api/forms/" + strconv.Itoa(formID) + "/submit"
	err := c.do(ctx, "forms.submit", http.MethodPost, path, input, &record)
	return record, err
}

// StudentAnalytics implements attendance.AnalyticsGateway.
func (c *HTTPClient) StudentAnalytics(ctx context.Context, studentID int) (attendance.StudentAnalytics, error) {
	var stats attendance.StudentAnalytics
	err := c.do(ctx, "analytics.student", http.MethodGet, "/api/analytics/student/"+strconv.Itoa(studentID), nil, &stats)
	return stats, err
}

// CourseAnalytics implements attendance.AnalyticsGateway.
func (c *HTTPClient) CourseAnalytics(ctx context.Context, courseID int) (attendance.CourseAnalytics, error) {
	var stats attendance.CourseAnalytics
	err := c.do(ctx, "analytics.course", http.MethodGet, "/api/analytics/course/"+strconv.Itoa(courseID), nil, &stats)
	return stats, err
}

// Overview implements attendance.AnalyticsGateway.
func (c *HTTPClient) Overview(ctx context.Context) (attendance.OverviewAnalytics, error) {
	var overview attendance.OverviewAnalytics
	err := c.do(ctx, "analytics.overview", http.MethodGet, "/api/analytics/overview", nil, &overview)
	return overview, err
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, payload, target any) error {
	start := time.Now()
	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(func() (interface{}, error) {
			return nil, c.roundTrip(ctx, op, method, path, payload, target)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = &attendance.NetworkError{Op: op, Err: err}
		}
	} else {
		err = c.roundTrip(ctx, op, method, path, payload, target)
	}
	c.metrics.observe(op, outcome(err), time.Since(start))
	return err
}

func (c *HTTPClient) roundTrip(ctx context.Context, op, method, path string, payload, target any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("api: %s: encode payload: %w", op, err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return &attendance.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return &attendance.NetworkError{Op: op + ": decode response", Err: err}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var payload errorResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return &attendance.APIError{Status: resp.StatusCode}
	}
	return &attendance.APIError{Status: resp.StatusCode, Message: strings.TrimSpace(payload.Error)}
}

func coursePath(id int) string {
	return "/api/courses/" + strconv.Itoa(id)
}

func outcome(err error) string {
	var apiErr *attendance.APIError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &apiErr):
		return "server_error"
	default:
		return "network_error"
	}
}

type loginResponse struct {
	Message string          `json:"message"`
	User    json.RawMessage `json:"user"`
}

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Role      string `json:"role"`
	Password  string `json:"password"`
	StudentID string `json:"student_id,omitempty"`
}

type joinRequest struct {
	JoinCode string `json:"join_code"`
}

type errorResponse struct {
	Error string `json:"error"`
}
