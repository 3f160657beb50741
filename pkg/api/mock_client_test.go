package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

func TestMockClientRequiresSession(t *testing.T) {
	client := NewMockClient(DemoData())
	_, err := client.Profile(context.Background())
	var apiErr *attendance.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestMockClientStudentFlow(t *testing.T) {
	ctx := context.Background()
	client := NewMockClient(DemoData())
	user, err := client.Login(ctx, attendance.Credentials{Username: "student", Password: "demo"})
	require.NoError(t, err)

	courses, err := client.Courses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Empty(t, courses[0].JoinCode)

	_, err = client.JoinCourse(ctx, "JOIN201")
	require.NoError(t, err)
	_, err = client.JoinCourse(ctx, "JOIN201")
	require.Error(t, err)

	forms, err := client.Forms(ctx)
	require.NoError(t, err)
	pending := attendance.PendingOnly(forms)
	require.Len(t, pending, 1)
	assert.Equal(t, 101, pending[0].ID)

	_, err = client.SubmitAttendance(ctx, 101, attendance.SubmissionInput{Status: attendance.StatusAbsent})
	require.NoError(t, err)
	forms, err = client.Forms(ctx)
	require.NoError(t, err)
	assert.Empty(t, attendance.PendingOnly(forms))

	stats, err := client.StudentAnalytics(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalRecords)
	assert.Equal(t, 1, stats.StatusCount.Get(attendance.StatusAbsent))

	_, err = client.LeaveCourse(ctx, 11)
	require.NoError(t, err)
	courses, err = client.Courses(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
}

func TestMockClientTeacherAnalytics(t *testing.T) {
	ctx := context.Background()
	client := NewMockClient(DemoData())
	_, err := client.Login(ctx, attendance.Credentials{Username: "teacher", Password: "demo"})
	require.NoError(t, err)

	courses, err := client.Courses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "JOIN101", courses[0].JoinCode)
	assert.Equal(t, 2, courses[0].Students())

	stats, err := client.CourseAnalytics(ctx, courses[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalForms)
	assert.Equal(t, 2, stats.TotalResponses)
	assert.Contains(t, stats.StudentStats, "S001 - Sam Chen")

	_, err = client.Overview(ctx)
	var apiErr *attendance.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}
