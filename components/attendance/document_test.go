package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentDropsUnmountedTargets(t *testing.T) {
	doc := NewDocument(TargetStudentCourses)

	assert.True(t, doc.Render(TargetStudentCourses, "<ul></ul>"))
	assert.False(t, doc.Render(TargetTeacherCourses, "<ul></ul>"))
	_, ok := doc.Canvas(TargetTeacherChart)
	assert.False(t, ok)

	fragments := doc.Fragments()
	assert.Equal(t, map[Target]Fragment{TargetStudentCourses: "<ul></ul>"}, fragments)
}

func TestDocumentResetClearsEverything(t *testing.T) {
	doc := NewDocument()
	doc.Render(TargetPendingForms, "<ul></ul>")
	canvas, ok := doc.Canvas(TargetStudentChart)
	require.True(t, ok)
	require.NoError(t, canvas.Load([]ChartSpec{StudentStatusChart(StudentAnalytics{}, nil)}, fakeRender))
	require.Len(t, doc.Charts(), 1)

	doc.Reset()

	assert.Empty(t, doc.Fragments())
	assert.Empty(t, doc.Charts())
	assert.Equal(t, 0, canvas.LiveInstances())
	assert.True(t, doc.Mounted(TargetPendingForms))
	again, ok := doc.Canvas(TargetStudentChart)
	require.True(t, ok)
	assert.Same(t, canvas, again)
}

func TestFragmentString(t *testing.T) {
	assert.Equal(t, "<b>x</b>", Fragment("<b>x</b>").String())
}
