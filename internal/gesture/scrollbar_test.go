package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScrollbar() *Scrollbar {
	s := NewScrollbar(Horizontal)
	s.UpdateGeometry(180, 585, 820)
	s.SetViewportSize(800)
	s.SetExploredArea(0, 1600)
	s.SetScrollPosition(0)
	return s
}

func TestThumbGeometry(t *testing.T) {
	s := newTestScrollbar()

	// Viewport covers half the explored range, so the thumb is half the track.
	b := s.Thumb.Bounds
	assert.InDelta(t, 180, b.Left, 1e-9)
	assert.InDelta(t, 820.0/2, b.Width(), 1e-9)

	// Scrolled to the end, the thumb hugs the right side of the track.
	s.SetScrollPosition(800)
	b = s.Thumb.Bounds
	assert.InDelta(t, 180+820, b.Right, 1e-9)
}

func TestThumbFillsTrackWhenViewportCoversExplored(t *testing.T) {
	s := newTestScrollbar()
	s.SetExploredArea(0, 700)
	b := s.Thumb.Bounds
	assert.InDelta(t, 180, b.Left, 1e-9)
	assert.InDelta(t, 1000, b.Right, 1e-9)
}

func TestPageClickScrolls(t *testing.T) {
	s := newTestScrollbar()
	var scrolled []float64
	s.OnScrollUpdate = func(pos float64) { scrolled = append(scrolled, pos) }

	// Click in the track to the right of the thumb pages forward by 0.9
	// viewports.
	require.True(t, s.HandleMouseDown(950, 590, 1.0))
	require.NotEmpty(t, scrolled)
	assert.InDelta(t, 720, scrolled[0], 1e-9)

	// Click left of the thumb pages back, clamped at the explored minimum.
	require.True(t, s.HandleMouseDown(181, 590, 2.0))
	assert.InDelta(t, 0, scrolled[1], 1e-9)
}

func TestBodyDragNeedsThreshold(t *testing.T) {
	s := newTestScrollbar()
	var scrolled []float64
	s.OnScrollUpdate = func(pos float64) { scrolled = append(scrolled, pos) }

	// Press mid-thumb.
	require.True(t, s.HandleMouseDown(300, 590, 1.0))
	assert.NotEqual(t, Dragging, s.Thumb.State)

	// A 2 px move stays a click.
	s.HandleMouseMove(302, 590)
	assert.NotEqual(t, Dragging, s.Thumb.State)
	assert.Empty(t, scrolled)

	// A larger move starts the drag and scrolling follows.
	s.HandleMouseMove(340, 590)
	assert.Equal(t, Dragging, s.Thumb.State)
	s.HandleMouseMove(390, 590)
	require.NotEmpty(t, scrolled)

	s.HandleMouseUp(390, 590)
	assert.Equal(t, Idle, s.Thumb.State)
}

func TestEdgeResizeFiresCallback(t *testing.T) {
	s := newTestScrollbar()
	var edges []string
	s.OnEdgeResize = func(edge string, deltaX float64) { edges = append(edges, edge) }

	// Press on the right edge of the thumb (thumb spans 180..590).
	right := s.Thumb.Bounds.Right
	require.True(t, s.HandleMouseDown(right-1, 590, 1.0))
	assert.Equal(t, ResizingRight, s.Thumb.State)
	assert.True(t, s.EdgeResizing())

	s.HandleMouseMove(right+40, 590)
	require.Equal(t, []string{"right"}, edges)

	// Manual thumb geometry grew with the drag.
	_, _, mw, _, ok := s.ManualThumb()
	require.True(t, ok)
	assert.Greater(t, mw, 400.0)

	s.HandleMouseUp(right+40, 590)
	assert.False(t, s.EdgeResizing())
}

func TestThumbDoubleClick(t *testing.T) {
	s := newTestScrollbar()
	fired := 0
	s.OnDoubleClick = func() { fired++ }

	require.True(t, s.HandleMouseDown(300, 590, 10.0))
	s.HandleMouseUp(300, 590)
	require.True(t, s.HandleMouseDown(300, 590, 10.3))
	assert.Equal(t, 1, fired)
}

func TestVerticalScrollbarClampsToContent(t *testing.T) {
	s := NewScrollbar(Vertical)
	s.UpdateGeometry(0, 0, 400)
	s.SetContentSize(1000)
	s.SetViewportSize(400)

	s.SetScrollPosition(5000)
	assert.InDelta(t, 600, s.ScrollPosition(), 1e-9)
	s.SetScrollPosition(-10)
	assert.InDelta(t, 0, s.ScrollPosition(), 1e-9)
}
