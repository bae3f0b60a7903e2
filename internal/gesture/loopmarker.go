package gesture

import (
	"math"

	"github.com/rollwerk/pianoroll/internal/coords"
	"github.com/rollwerk/pianoroll/internal/model"
)

// Loop-band placement inside the ruler, as fractions of the ruler height.
const (
	loopBandTopFrac    = 0.40
	loopBandBottomFrac = 0.65
)

// LoopMarker is the Bitwig-style loop region in the ruler band. Its bounds
// mix coordinate spaces: left/right are world X through the coordinate
// system, top/bottom are fixed local pixels inside the ruler. Snap is
// quarter-beat aligned; finalizing converts back to ticks and enforces a
// minimum width of one quarter beat.
type LoopMarker struct {
	Rect *Rect

	cs *coords.CoordinateSystem

	startTick model.Tick
	endTick   model.Tick

	topPadding    float64
	rulerHeight   float64
	pianoKeyWidth float64
}

// loopConv converts between widget-local screen space and the marker's
// mixed space: world X, untransformed ruler-local Y.
type loopConv struct {
	m *LoopMarker
}

func (c loopConv) ScreenToWorld(x, y float64) (float64, float64, bool) {
	cs := c.m.cs
	if cs == nil {
		return 0, 0, false
	}
	return x - cs.PianoKeyWidth() + cs.Viewport().X, y, true
}

func (c loopConv) WorldToScreen(wx, wy float64) (float64, float64, bool) {
	cs := c.m.cs
	if cs == nil {
		return 0, 0, false
	}
	return wx - cs.Viewport().X + cs.PianoKeyWidth(), wy, true
}

// NewLoopMarker builds a loop marker over the given tick range.
func NewLoopMarker(cs *coords.CoordinateSystem, startTick, endTick model.Tick) *LoopMarker {
	m := &LoopMarker{
		cs:        cs,
		startTick: startTick,
		endTick:   endTick,
	}
	m.Rect = NewRect(loopConv{m})
	m.Rect.EdgeThreshold = 20
	m.Rect.ShowDragPreview = true
	m.Rect.OnFinalize = m.finalize
	m.UpdateBoundsFromTicks()
	return m
}

// SetLayout positions the ruler band the marker lives in.
func (m *LoopMarker) SetLayout(topPadding, rulerHeight, pianoKeyWidth float64) {
	m.topPadding = topPadding
	m.rulerHeight = rulerHeight
	m.pianoKeyWidth = pianoKeyWidth
	m.UpdateBoundsFromTicks()
}

// TickRange returns the loop range in ticks.
func (m *LoopMarker) TickRange() (model.Tick, model.Tick) {
	return m.startTick, m.endTick
}

// SetTickRange sets the loop range, keeping end >= start.
func (m *LoopMarker) SetTickRange(start, end model.Tick) {
	m.startTick = start
	if end < start {
		end = start
	}
	m.endTick = end
	m.UpdateBoundsFromTicks()
}

func (m *LoopMarker) quarterTicks() model.Tick {
	return model.Tick(m.cs.TicksPerBeat()) / 4
}

// updateSnap aligns the rect's snap grid to quarter beats in world pixels.
func (m *LoopMarker) updateSnap() {
	tpb := m.cs.TicksPerBeat()
	if tpb <= 0 {
		return
	}
	snapWorld := math.Max(1, m.cs.TickToWorld(m.quarterTicks()))
	m.Rect.SnapEnabled = true
	m.Rect.SnapSize = snapWorld
	m.Rect.MinWidth = snapWorld
}

// UpdateBoundsFromTicks recomputes the mixed-space bounds after any change
// to the tick range, zoom, or layout.
func (m *LoopMarker) UpdateBoundsFromTicks() {
	if m.cs == nil {
		return
	}
	m.updateSnap()
	m.Rect.Bounds = Bounds{
		Left:   m.cs.TickToWorld(m.startTick),
		Right:  m.cs.TickToWorld(m.endTick),
		Top:    m.topPadding + m.rulerHeight*loopBandTopFrac,
		Bottom: m.topPadding + m.rulerHeight*loopBandBottomFrac,
	}
}

// finalize converts the dragged bounds back to ticks, re-snapped to quarter
// beats with a minimum width of one quarter beat.
func (m *LoopMarker) finalize() {
	if m.cs == nil {
		return
	}
	rawStart := m.cs.WorldToTick(m.Rect.Bounds.Left)
	rawEnd := m.cs.WorldToTick(m.Rect.Bounds.Right)

	quarter := m.quarterTicks()
	if quarter <= 0 {
		m.startTick = rawStart
		if rawEnd < rawStart {
			rawEnd = rawStart
		}
		m.endTick = rawEnd
		return
	}
	roundTo := func(v model.Tick) model.Tick {
		return model.Tick(math.Round(float64(v)/float64(quarter))) * quarter
	}
	m.startTick = roundTo(rawStart)
	m.endTick = roundTo(rawEnd)
	if m.endTick <= m.startTick {
		m.endTick = m.startTick + quarter
	}
	m.UpdateBoundsFromTicks()
}
