package attendance

import (
	"fmt"
	"testing"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherChartsFromCoursePayload(t *testing.T) {
	specs := TeacherCharts(teacherAnalytics(), nil)
	require.Len(t, specs, 3)

	daily := specs[0]
	assert.Equal(t, ChartDaily, daily.Kind)
	assert.Equal(t, ChartLine, daily.Type)
	assert.Equal(t, []string{"2024-03-01", "2024-03-02"}, daily.Labels)
	require.Len(t, daily.Series, 2)
	assert.Equal(t, 2.0, daily.Series[0].Points[0].Value)
	assert.Equal(t, 1.0, daily.Series[1].Points[1].Value)

	status := specs[1]
	assert.Equal(t, ChartStatus, status.Kind)
	assert.Equal(t, ChartDoughnut, status.Type)
	assert.Equal(t, []string{"Present", "Absent", "Late", "Excused"}, status.Labels)
	assert.Equal(t, 3.0, status.Series[0].Points[0].Value)

	students := specs[2]
	assert.Equal(t, ChartStudents, students.Kind)
	assert.Equal(t, []string{"Sam Chen", "Ada Wu"}, students.Labels)
}

func TestStudentsChartCapsBars(t *testing.T) {
	stats := CourseAnalytics{StudentStats: map[string]StatusCount{}}
	for i := 0; i < 15; i++ {
		stats.StudentStats[fmt.Sprintf("S%03d - Student %02d", i, i)] = StatusCount{"present": 1}
	}
	spec := studentsChart(stats, NewMessages("en", nil))
	assert.Len(t, spec.Labels, maxStudentBars)
	assert.Equal(t, "Student 00", spec.Labels[0])
}

func TestStudentLabel(t *testing.T) {
	assert.Equal(t, "Sam Chen", studentLabel("S001 - Sam Chen"))
	assert.Equal(t, "S001", studentLabel("S001"))
	assert.Equal(t, "S001 - ", studentLabel("S001 - "))
}

func TestAdminOverviewChart(t *testing.T) {
	spec := AdminOverviewChart(OverviewAnalytics{BasicStats: BasicStats{TotalUsers: 4, TotalCourses: 2, TotalForms: 3, TotalRecords: 9}}, nil)
	assert.Equal(t, ChartOverview, spec.Kind)
	assert.Equal(t, ChartBar, spec.Type)
	values := make([]float64, 0, 4)
	for _, p := range spec.Series[0].Points {
		values = append(values, p.Value)
	}
	assert.Equal(t, []float64{4, 2, 3, 9}, values)
}

func TestChartLabelsFollowLocale(t *testing.T) {
	spec := StudentStatusChart(StudentAnalytics{StatusCount: StatusCount{"late": 2}}, NewMessages("zh-TW", nil))
	assert.Equal(t, "我的出席狀況", spec.Title)
	assert.Equal(t, "遲到", spec.Labels[2])
	assert.Equal(t, 2.0, spec.Series[0].Points[2].Value)
}

func TestChartRendererRendersEcharts(t *testing.T) {
	renderer := NewChartRenderer(WithChartCache(nil), WithChartAssetsHost("https://cdn.example.com/"))
	for _, spec := range TeacherCharts(teacherAnalytics(), nil) {
		view, err := renderer.Render(spec)
		require.NoError(t, err, spec.Kind)
		assert.Equal(t, spec.Kind, view.Kind)
		assert.Equal(t, types.ThemeWesteros, view.Theme)
		assert.Contains(t, view.HTML, "echarts")
		assert.Contains(t, view.HTML, "https://cdn.example.com/")
	}
}

func TestChartRendererThemeResolver(t *testing.T) {
	theme := ThemeLight
	renderer := NewChartRenderer(WithChartThemeResolver(func() string { return theme.ChartTheme() }))
	spec := StudentStatusChart(StudentAnalytics{}, nil)

	light, err := renderer.Render(spec)
	require.NoError(t, err)
	theme = ThemeDark
	dark, err := renderer.Render(spec)
	require.NoError(t, err)

	assert.Equal(t, types.ThemeWesteros, light.Theme)
	assert.Equal(t, types.ThemeWonderland, dark.Theme)
	assert.Contains(t, dark.HTML, types.ThemeWonderland)
}

func TestChartRendererRejectsBadSpecs(t *testing.T) {
	renderer := NewChartRenderer()
	_, err := renderer.Render(ChartSpec{Kind: ChartDaily, Type: ChartLine})
	require.Error(t, err)
	_, err = renderer.Render(ChartSpec{Kind: ChartDaily, Type: "radar", Series: []ChartSeries{{Name: "x"}}})
	require.Error(t, err)
}

func TestChartRendererCachesBySpec(t *testing.T) {
	counting := &countingCache{}
	renderer := NewChartRenderer(WithChartCache(counting))
	spec := StudentStatusChart(StudentAnalytics{StatusCount: StatusCount{"present": 1}}, nil)

	_, err := renderer.Render(spec)
	require.NoError(t, err)
	_, err = renderer.Render(spec)
	require.NoError(t, err)
	spec.Series[0].Points[0].Value = 5
	_, err = renderer.Render(spec)
	require.NoError(t, err)

	assert.Equal(t, 2, counting.renders)
	assert.Len(t, counting.keys, 2)
}

func TestChartRenderLeavesSpecColors(t *testing.T) {
	renderer := NewChartRenderer(WithChartCache(nil))
	for _, spec := range TeacherCharts(teacherAnalytics(), nil) {
		want := append([]string(nil), spec.Colors...)
		_, err := renderer.Render(spec)
		require.NoError(t, err, spec.Kind)
		assert.Equal(t, want, spec.Colors, spec.Kind)
	}
}

func TestChartCanvasSwitchBackReusesRenderedChart(t *testing.T) {
	renderer := NewChartRenderer()
	specs := TeacherCharts(teacherAnalytics(), nil)
	status := append([]string(nil), specs[1].Colors...)
	require.Greater(t, len(status), 1)

	canvas := newChartCanvas(TargetTeacherChart)
	require.NoError(t, canvas.Load(specs, renderer.Render))
	require.NoError(t, canvas.Switch(ChartStatus))
	first := canvas.Active().View.HTML

	require.NoError(t, canvas.Switch(ChartDaily))
	require.NoError(t, canvas.Switch(ChartStatus))

	assert.Equal(t, first, canvas.Active().View.HTML)
	assert.Equal(t, status, specs[1].Colors)
}

type countingCache struct {
	keys    map[string]string
	renders int
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c.keys == nil {
		c.keys = map[string]string{}
	}
	if html, ok := c.keys[key]; ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.renders++
	c.keys[key] = html
	return html, nil
}
