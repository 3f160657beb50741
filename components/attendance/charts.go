package attendance

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const (
	defaultChartHeight = "360px"
	maxStudentBars     = 10
)

// ChartKind identifies a chart a canvas can show.
type ChartKind string

const (
	ChartStudentStatus ChartKind = "student-status"
	ChartDaily         ChartKind = "daily"
	ChartStatus        ChartKind = "status"
	ChartStudents      ChartKind = "students"
	ChartOverview      ChartKind = "overview"
)

// TeacherChartKinds lists the teacher canvas switch options in display order.
func TeacherChartKinds() []ChartKind {
	return []ChartKind{ChartDaily, ChartStatus, ChartStudents}
}

// ChartType is the visual form of a chart.
type ChartType string

const (
	ChartLine     ChartType = "line"
	ChartBar      ChartType = "bar"
	ChartDoughnut ChartType = "doughnut"
)

var statusColors = map[Status]string{
	StatusPresent: "#48bb78",
	StatusAbsent:  "#f56565",
	StatusLate:    "#ed8936",
	StatusExcused: "#4299e1",
}

// ChartSeries is a named list of points.
type ChartSeries struct {
	Name   string       `json:"name"`
	Points []ChartPoint `json:"points"`
}

// ChartPoint represents an individual labeled value.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// ChartSpec is the declarative chart configuration handed to the chart library.
type ChartSpec struct {
	Kind   ChartKind     `json:"kind"`
	Type   ChartType     `json:"type"`
	Title  string        `json:"title"`
	Labels []string      `json:"labels,omitempty"`
	Series []ChartSeries `json:"series"`
	Colors []string      `json:"colors,omitempty"`
}

// ChartView is a rendered chart.
type ChartView struct {
	Kind  ChartKind `json:"kind"`
	Type  ChartType `json:"type"`
	Title string    `json:"title"`
	Theme string    `json:"theme"`
	HTML  string    `json:"html"`
}

// StudentStatusChart is the personal status doughnut.
func StudentStatusChart(stats StudentAnalytics, messages *Messages) ChartSpec {
	return statusDoughnut(ChartStudentStatus, normalizeMessages(messages).Text("chart.student.title"), stats.StatusCount, messages)
}

// TeacherCharts builds the daily, status and per-student charts from one course payload.
func TeacherCharts(stats CourseAnalytics, messages *Messages) []ChartSpec {
	messages = normalizeMessages(messages)
	return []ChartSpec{
		dailyChart(stats, messages),
		statusDoughnut(ChartStatus, messages.Text("chart.status.title"), stats.StatusCount, messages),
		studentsChart(stats, messages),
	}
}

// AdminOverviewChart is the bar chart of platform totals.
func AdminOverviewChart(overview OverviewAnalytics, messages *Messages) ChartSpec {
	messages = normalizeMessages(messages)
	basic := overview.BasicStats
	labels := []string{
		messages.Text("overview.users"),
		messages.Text("overview.courses"),
		messages.Text("overview.forms"),
		messages.Text("overview.records"),
	}
	values := []int{basic.TotalUsers, basic.TotalCourses, basic.TotalForms, basic.TotalRecords}
	points := make([]ChartPoint, len(labels))
	for i, label := range labels {
		points[i] = ChartPoint{Label: label, Value: float64(values[i])}
	}
	return ChartSpec{
		Kind:   ChartOverview,
		Type:   ChartBar,
		Title:  messages.Text("chart.overview.title"),
		Labels: labels,
		Series: []ChartSeries{{Name: messages.Text("overview.series"), Points: points}},
		Colors: []string{"#667eea"},
	}
}

func statusDoughnut(kind ChartKind, title string, counts StatusCount, messages *Messages) ChartSpec {
	messages = normalizeMessages(messages)
	statuses := Statuses()
	labels := make([]string, len(statuses))
	points := make([]ChartPoint, len(statuses))
	colors := make([]string, len(statuses))
	for i, status := range statuses {
		labels[i] = messages.StatusLabel(status)
		points[i] = ChartPoint{Label: labels[i], Value: float64(counts.Get(status))}
		colors[i] = statusColors[status]
	}
	return ChartSpec{
		Kind:   kind,
		Type:   ChartDoughnut,
		Title:  title,
		Labels: labels,
		Series: []ChartSeries{{Name: title, Points: points}},
		Colors: colors,
	}
}

func dailyChart(stats CourseAnalytics, messages *Messages) ChartSpec {
	dates := sortedKeys(stats.DailyStats)
	present := make([]ChartPoint, len(dates))
	absent := make([]ChartPoint, len(dates))
	for i, date := range dates {
		day := stats.DailyStats[date]
		present[i] = ChartPoint{Label: date, Value: float64(day.StatusCount.Get(StatusPresent))}
		absent[i] = ChartPoint{Label: date, Value: float64(day.StatusCount.Get(StatusAbsent))}
	}
	return ChartSpec{
		Kind:   ChartDaily,
		Type:   ChartLine,
		Title:  messages.Text("chart.daily.title"),
		Labels: dates,
		Series: []ChartSeries{
			{Name: messages.StatusLabel(StatusPresent), Points: present},
			{Name: messages.StatusLabel(StatusAbsent), Points: absent},
		},
		Colors: []string{statusColors[StatusPresent], statusColors[StatusAbsent]},
	}
}

func studentsChart(stats CourseAnalytics, messages *Messages) ChartSpec {
	keys := sortedKeys(stats.StudentStats)
	if len(keys) > maxStudentBars {
		keys = keys[:maxStudentBars]
	}
	labels := make([]string, len(keys))
	present := make([]ChartPoint, len(keys))
	absent := make([]ChartPoint, len(keys))
	for i, key := range keys {
		labels[i] = studentLabel(key)
		counts := stats.StudentStats[key]
		present[i] = ChartPoint{Label: labels[i], Value: float64(counts.Get(StatusPresent))}
		absent[i] = ChartPoint{Label: labels[i], Value: float64(counts.Get(StatusAbsent))}
	}
	return ChartSpec{
		Kind:   ChartStudents,
		Type:   ChartBar,
		Title:  messages.Text("chart.students.title"),
		Labels: labels,
		Series: []ChartSeries{
			{Name: messages.StatusLabel(StatusPresent), Points: present},
			{Name: messages.StatusLabel(StatusAbsent), Points: absent},
		},
		Colors: []string{statusColors[StatusPresent], statusColors[StatusAbsent]},
	}
}

// studentLabel keeps the name part of a "S001 - Name" key.
func studentLabel(key string) string {
	if _, name, ok := strings.Cut(key, " - "); ok && strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	return key
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ChartRenderer turns chart specs into go-echarts markup.
type ChartRenderer struct {
	cache      RenderCache
	theme      func() string
	assetsHost string
}

// ChartRendererOption customizes renderer behavior.
type ChartRendererOption func(*ChartRenderer)

// WithChartCache injects a render cache. A nil cache renders every time.
func WithChartCache(cache RenderCache) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartThemeResolver resolves the echarts theme at render time.
func WithChartThemeResolver(resolver func() string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.theme = resolver
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartRendererOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with a 5 minute cache and the Westeros theme.
func NewChartRenderer(options ...ChartRendererOption) *ChartRenderer {
	r := &ChartRenderer{cache: NewChartCache(5 * time.Minute)}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render produces the chart markup for spec.
func (r *ChartRenderer) Render(spec ChartSpec) (ChartView, error) {
	theme := r.resolveTheme()
	renderFn := func() (string, error) {
		return r.render(spec, theme)
	}
	var (
		html string
		err  error
	)
	if r.cache != nil {
		key := fmt.Sprintf("%s:%s:%s", spec.Kind, theme, specHash(spec))
		html, err = r.cache.GetOrRender(key, renderFn)
	} else {
		html, err = renderFn()
	}
	if err != nil {
		return ChartView{}, err
	}
	return ChartView{Kind: spec.Kind, Type: spec.Type, Title: spec.Title, Theme: theme, HTML: html}, nil
}

func (r *ChartRenderer) render(spec ChartSpec, theme string) (string, error) {
	if len(spec.Series) == 0 {
		return "", fmt.Errorf("attendance: chart %s has no series", spec.Kind)
	}
	switch spec.Type {
	case ChartBar:
		bar := charts.NewBar()
		bar.SetGlobalOptions(r.globalChartOptions(spec, theme)...)
		bar.SetXAxis(spec.Labels)
		for _, s := range spec.Series {
			bar.AddSeries(s.Name, toBarData(s.Points))
		}
		return renderChart(bar)
	case ChartLine:
		line := charts.NewLine()
		line.SetGlobalOptions(r.globalChartOptions(spec, theme)...)
		line.SetXAxis(spec.Labels)
		for _, s := range spec.Series {
			line.AddSeries(s.Name, toLineData(s.Points))
		}
		line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		return renderChart(line)
	case ChartDoughnut:
		pie := charts.NewPie()
		pie.SetGlobalOptions(r.globalChartOptions(spec, theme)...)
		s := spec.Series[0]
		pie.AddSeries(s.Name, toPieData(s.Points), charts.WithPieChartOpts(opts.PieChart{Radius: []string{"45%", "70%"}}))
		return renderChart(pie)
	default:
		return "", fmt.Errorf("attendance: unsupported chart type: %s", spec.Type)
	}
}

func (r *ChartRenderer) globalChartOptions(spec ChartSpec, theme string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	global := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: spec.Title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
	if len(spec.Colors) > 0 {
		global = append(global, charts.WithColorsOpts(opts.Colors(append([]string(nil), spec.Colors...))))
	}
	return global
}

func (r *ChartRenderer) resolveTheme() string {
	if r.theme != nil {
		if theme := r.theme(); theme != "" {
			return theme
		}
	}
	return types.ThemeWesteros
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{Name: point.Label, Value: point.Value}
	}
	return data
}

func toPieData(points []ChartPoint) []opts.PieData {
	data := make([]opts.PieData, len(points))
	for i, point := range points {
		name := point.Label
		if name == "" {
			name = fmt.Sprintf("Slice %d", i+1)
		}
		data[i] = opts.PieData{Name: name, Value: point.Value}
	}
	return data
}

func specHash(spec ChartSpec) string {
	b, err := json.Marshal(spec)
	if err != nil {
		return "invalid"
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:8])
}
