package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ident maps screen space directly onto world space for tests.
type ident struct{}

func (ident) ScreenToWorld(x, y float64) (float64, float64, bool) { return x, y, true }
func (ident) WorldToScreen(x, y float64) (float64, float64, bool) { return x, y, true }

func newTestRect() *Rect {
	r := NewRect(ident{})
	r.Bounds = Bounds{Left: 100, Right: 200, Top: 10, Bottom: 30}
	r.SnapEnabled = false
	return r
}

func TestRectHoverClassification(t *testing.T) {
	r := newTestRect()

	assert.Equal(t, Idle, r.MouseMove(50, 20))
	assert.Equal(t, HoveringBody, r.MouseMove(150, 20))
	assert.Equal(t, HoveringLeftEdge, r.MouseMove(102, 20))
	assert.Equal(t, HoveringRightEdge, r.MouseMove(198, 20))
	assert.Equal(t, Idle, r.MouseMove(150, 50))
}

func TestRectDragCommitsPreview(t *testing.T) {
	r := newTestRect()

	r.MouseMove(150, 20)
	require.True(t, r.MouseDown(150, 20))
	assert.Equal(t, Dragging, r.State)

	r.MouseDrag(170, 25)
	preview, ok := r.PreviewBounds()
	require.True(t, ok)
	assert.Equal(t, 120.0, preview.Left)
	assert.Equal(t, 15.0, preview.Top)
	// Bounds are untouched until mouse-up.
	assert.Equal(t, 100.0, r.Bounds.Left)

	finalized := false
	r.OnFinalize = func() { finalized = true }
	require.True(t, r.MouseUp(170, 25))
	assert.Equal(t, Idle, r.State)
	assert.True(t, finalized)
	assert.Equal(t, 120.0, r.Bounds.Left)
	assert.Equal(t, 220.0, r.Bounds.Right)
}

func TestRectDirectDragWithoutPreview(t *testing.T) {
	r := newTestRect()
	r.ShowDragPreview = false

	var changed []Bounds
	r.OnBoundsChanged = func(b Bounds) { changed = append(changed, b) }

	r.MouseMove(150, 20)
	require.True(t, r.MouseDown(150, 20))
	r.MouseDrag(160, 20)
	assert.Equal(t, 110.0, r.Bounds.Left)
	assert.NotEmpty(t, changed)
}

func TestRectResizeMinWidth(t *testing.T) {
	r := newTestRect()
	r.ShowDragPreview = false
	r.MinWidth = 40

	r.MouseMove(198, 20)
	require.True(t, r.MouseDown(198, 20))
	assert.Equal(t, ResizingRight, r.State)

	r.MouseDrag(110, 20)
	assert.Equal(t, 140.0, r.Bounds.Right, "right edge stops at min width")

	r.MouseUp(110, 20)

	r.MouseMove(102, 20)
	require.True(t, r.MouseDown(102, 20))
	assert.Equal(t, ResizingLeft, r.State)
	r.MouseDrag(190, 20)
	assert.Equal(t, 100.0, r.Bounds.Left, "left edge stops at min width")
}

func TestRectSnap(t *testing.T) {
	r := newTestRect()
	r.ShowDragPreview = false
	r.SnapEnabled = true
	r.SnapSize = 25

	r.MouseMove(150, 20)
	require.True(t, r.MouseDown(150, 20))
	r.MouseDrag(163, 20)
	// New left would be 113; the 25 px grid rounds it to 125.
	assert.Equal(t, 125.0, r.Bounds.Left)
}

func TestRectDisabled(t *testing.T) {
	r := newTestRect()
	r.Enabled = false
	assert.Equal(t, Idle, r.MouseMove(150, 20))
	assert.False(t, r.MouseDown(150, 20))
}

func TestRectNoStateChangeDuringActiveDrag(t *testing.T) {
	r := newTestRect()
	r.MouseMove(150, 20)
	require.True(t, r.MouseDown(150, 20))
	// Hover reclassification is suppressed while dragging.
	assert.Equal(t, Dragging, r.MouseMove(500, 500))
}
