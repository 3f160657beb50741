package attendance

// Fragment is rendered, escaped markup for one render target.
type Fragment string

func (f Fragment) String() string {
	return string(f)
}

// Target names a render slot on the dashboard.
type Target string

const (
	TargetStudentCourses Target = "student-courses"
	TargetPendingForms   Target = "pending-forms"
	TargetStudentChart   Target = "student-chart"
	TargetTeacherCourses Target = "teacher-courses"
	TargetTeacherChart   Target = "teacher-chart"
	TargetAdminChart     Target = "admin-chart"
)

// DefaultTargets lists every slot the dashboard panels declare.
func DefaultTargets() []Target {
	return []Target{
		TargetStudentCourses,
		TargetPendingForms,
		TargetStudentChart,
		TargetTeacherCourses,
		TargetTeacherChart,
		TargetAdminChart,
	}
}

// Document holds the mounted render targets. Writes to a target that is not
// mounted are dropped silently. Access is serialised by App.
type Document struct {
	mounted   map[Target]bool
	fragments map[Target]Fragment
	canvases  map[Target]*ChartCanvas
}

// NewDocument mounts targets, or DefaultTargets when none are given.
func NewDocument(targets ...Target) *Document {
	if len(targets) == 0 {
		targets = DefaultTargets()
	}
	doc := &Document{
		mounted:   make(map[Target]bool, len(targets)),
		fragments: make(map[Target]Fragment, len(targets)),
		canvases:  make(map[Target]*ChartCanvas),
	}
	for _, target := range targets {
		doc.mounted[target] = true
	}
	return doc
}

// Mounted reports whether target exists.
func (d *Document) Mounted(target Target) bool {
	return d != nil && d.mounted[target]
}

// Render replaces the fragment of target. It reports false when the target is missing.
func (d *Document) Render(target Target, fragment Fragment) bool {
	if !d.Mounted(target) {
		return false
	}
	d.fragments[target] = fragment
	return true
}

// Fragment returns the last fragment rendered into target.
func (d *Document) Fragment(target Target) (Fragment, bool) {
	if !d.Mounted(target) {
		return "", false
	}
	fragment, ok := d.fragments[target]
	return fragment, ok
}

// Canvas returns the chart canvas bound to target, creating it on first use.
func (d *Document) Canvas(target Target) (*ChartCanvas, bool) {
	if !d.Mounted(target) {
		return nil, false
	}
	canvas, ok := d.canvases[target]
	if !ok {
		canvas = newChartCanvas(target)
		d.canvases[target] = canvas
	}
	return canvas, true
}

// Fragments copies every rendered fragment.
func (d *Document) Fragments() map[Target]Fragment {
	out := make(map[Target]Fragment, len(d.fragments))
	for target, fragment := range d.fragments {
		out[target] = fragment
	}
	return out
}

// Charts returns the active chart view of every canvas that holds one.
func (d *Document) Charts() map[Target]ChartView {
	out := make(map[Target]ChartView, len(d.canvases))
	for target, canvas := range d.canvases {
		if active := canvas.Active(); active != nil {
			out[target] = active.View
		}
	}
	return out
}

// Reset clears fragments and destroys every chart, keeping the mounts.
func (d *Document) Reset() {
	d.fragments = make(map[Target]Fragment, len(d.mounted))
	for _, canvas := range d.canvases {
		canvas.Clear()
	}
}
