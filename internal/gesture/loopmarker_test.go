package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollwerk/pianoroll/internal/coords"
)

func newTestLoopMarker() (*LoopMarker, *coords.CoordinateSystem) {
	cs := coords.New(180)
	cs.SetViewportSize(800, 400)
	m := NewLoopMarker(cs, 1920, 3840)
	m.SetLayout(0, 24, 180)
	return m, cs
}

func TestLoopMarkerBounds(t *testing.T) {
	m, cs := newTestLoopMarker()

	b := m.Rect.Bounds
	assert.InDelta(t, cs.TickToWorld(1920), b.Left, 1e-9)
	assert.InDelta(t, cs.TickToWorld(3840), b.Right, 1e-9)
	// The band sits at 40-65% of the 24 px ruler.
	assert.InDelta(t, 24*0.40, b.Top, 1e-9)
	assert.InDelta(t, 24*0.65, b.Bottom, 1e-9)
}

func TestLoopMarkerSnapIsQuarterBeat(t *testing.T) {
	m, cs := newTestLoopMarker()
	// A quarter beat is 120 ticks, 15 world px at 60 px/beat.
	assert.InDelta(t, cs.TickToWorld(120), m.Rect.SnapSize, 1e-9)
	assert.True(t, m.Rect.SnapEnabled)
}

func TestLoopMarkerDragSnapsToQuarterBeat(t *testing.T) {
	m, cs := newTestLoopMarker()

	// World 240..480 on screen: left at 240-0+180=420.
	startScreenX := cs.TickToWorld(1920) + 180
	midX := startScreenX + 60
	bandY := 24 * 0.5

	require.Equal(t, HoveringBody, m.Rect.MouseMove(midX, bandY))
	require.True(t, m.Rect.MouseDown(midX, bandY))

	// Drag right by 37 px; snap rounds the preview to the 15 px grid.
	m.Rect.MouseDrag(midX+37, bandY)
	m.Rect.MouseUp(midX+37, bandY)

	start, end := m.TickRange()
	assert.Zero(t, start%120)
	assert.Zero(t, end%120)
	assert.Equal(t, int64(1920), int64(end-start), "drag keeps the length")
	assert.Equal(t, int64(1920+240), int64(start), "37 px snaps to 30 px = 240 ticks")
}

func TestLoopMarkerMinWidthOnFinalize(t *testing.T) {
	m, _ := newTestLoopMarker()
	m.SetTickRange(480, 480)
	_, end := m.TickRange()
	assert.Equal(t, int64(480), int64(end))

	// Finalize with a degenerate range grows it to one quarter beat.
	m.Rect.Bounds.Left = 60
	m.Rect.Bounds.Right = 60
	m.finalize()
	start, end := m.TickRange()
	assert.Equal(t, int64(120), int64(end-start))
}

func TestLoopMarkerSetTickRangeOrdersEnds(t *testing.T) {
	m, _ := newTestLoopMarker()
	m.SetTickRange(960, 480)
	start, end := m.TickRange()
	assert.Equal(t, int64(960), int64(start))
	assert.Equal(t, int64(960), int64(end))
}
