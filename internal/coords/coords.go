// Package coords maps between musical time (ticks), pitch (MIDI keys), and
// pixels. World coordinates are a 2-D pixel plane anchored at tick 0 and the
// top of the highest key; the viewport is the visible window into it.
package coords

import (
	"math"

	"github.com/rollwerk/pianoroll/internal/model"
)

// Zoom bounds in pixels per beat.
const (
	MinPixelsPerBeat = 15.0
	MaxPixelsPerBeat = 4000.0
)

// Viewport is the visible area in world coordinates. X may be negative (the
// timeline extends leftward of bar 1); Y is clamped by the coordinate
// system.
type Viewport struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// CoordinateSystem holds the view transform state: zoom in both axes, the
// viewport, and the fixed layout of the piano-key strip.
type CoordinateSystem struct {
	pianoKeyWidth float64
	viewport      Viewport

	ticksPerBeat  int
	pixelsPerBeat float64

	keyHeight float64
	totalKeys int
}

// New returns a coordinate system with the given piano-key strip width and
// the standard musical defaults (480 TPB, 60 px/beat, 20 px/key, 128 keys).
func New(pianoKeyWidth float64) *CoordinateSystem {
	return &CoordinateSystem{
		pianoKeyWidth: pianoKeyWidth,
		viewport:      Viewport{Width: 1200, Height: 700},
		ticksPerBeat:  480,
		pixelsPerBeat: 60,
		keyHeight:     20,
		totalKeys:     128,
	}
}

func (c *CoordinateSystem) PianoKeyWidth() float64        { return c.pianoKeyWidth }
func (c *CoordinateSystem) SetPianoKeyWidth(w float64)    { c.pianoKeyWidth = w }
func (c *CoordinateSystem) TicksPerBeat() int             { return c.ticksPerBeat }
func (c *CoordinateSystem) PixelsPerBeat() float64        { return c.pixelsPerBeat }
func (c *CoordinateSystem) KeyHeight() float64            { return c.keyHeight }
func (c *CoordinateSystem) TotalKeys() int                { return c.totalKeys }
func (c *CoordinateSystem) Viewport() Viewport            { return c.viewport }
func (c *CoordinateSystem) SetViewportSize(w, h float64)  { c.viewport.Width, c.viewport.Height = w, h }
func (c *CoordinateSystem) SetViewportX(x float64)        { c.viewport.X = x }

func (c *CoordinateSystem) SetTicksPerBeat(ticks int) {
	if ticks > 0 {
		c.ticksPerBeat = ticks
	}
}

func (c *CoordinateSystem) SetPixelsPerBeat(value float64) {
	if value <= 0 {
		return
	}
	c.pixelsPerBeat = clamp(value, MinPixelsPerBeat, MaxPixelsPerBeat)
}

func (c *CoordinateSystem) SetKeyHeight(h float64) {
	if h > 0 {
		c.keyHeight = h
	}
}

func (c *CoordinateSystem) SetTotalKeys(n int) {
	if n > 0 {
		c.totalKeys = n
	}
}

// MaxScrollY is the largest viewport Y that keeps the lowest key visible.
func (c *CoordinateSystem) MaxScrollY() float64 {
	contentHeight := float64(c.totalKeys) * c.keyHeight
	maxY := contentHeight - c.viewport.Height
	if maxY < 0 {
		maxY = 0
	}
	return maxY
}

// ScreenToWorld converts widget-local screen coordinates to world
// coordinates, accounting for the piano-key strip and the scroll offset.
func (c *CoordinateSystem) ScreenToWorld(sx, sy float64) (float64, float64) {
	return sx - c.pianoKeyWidth + c.viewport.X, sy + c.viewport.Y
}

// WorldToScreen is the inverse of ScreenToWorld.
func (c *CoordinateSystem) WorldToScreen(wx, wy float64) (float64, float64) {
	return wx - c.viewport.X + c.pianoKeyWidth, wy - c.viewport.Y
}

// WorldToTick converts a world X coordinate to a tick, clamped to >= 0.
// The floor truncation absorbs float rounding first, so positions that are
// exactly on a tick stay on it.
func (c *CoordinateSystem) WorldToTick(wx float64) model.Tick {
	beats := wx / c.pixelsPerBeat
	tick := beats * float64(c.ticksPerBeat)
	if tick < 0 {
		return 0
	}
	if r := math.Round(tick); r != tick && math.Abs(tick-r) <= 1e-9+math.Abs(tick)*1e-12 {
		tick = r
	}
	return model.Tick(tick)
}

// TickToWorld converts a tick to a world X coordinate.
func (c *CoordinateSystem) TickToWorld(tick model.Tick) float64 {
	return float64(tick) / float64(c.ticksPerBeat) * c.pixelsPerBeat
}

// KeyToWorldY returns the world Y of the top of the given key. Keys are
// stacked bottom-up: key 0 sits at maximum world Y.
func (c *CoordinateSystem) KeyToWorldY(key model.MidiKey) float64 {
	if key < 0 {
		key = 0
	} else if key >= c.totalKeys {
		key = c.totalKeys - 1
	}
	return float64(c.totalKeys-1-key) * c.keyHeight
}

// WorldYToKey converts a world Y coordinate to the key whose row contains it.
func (c *CoordinateSystem) WorldYToKey(wy float64) model.MidiKey {
	if c.keyHeight <= 0 || c.totalKeys <= 0 {
		return 0
	}
	fromTop := int(wy / c.keyHeight)
	key := c.totalKeys - 1 - fromTop
	if key < 0 {
		key = 0
	} else if key >= c.totalKeys {
		key = c.totalKeys - 1
	}
	return key
}

// ZoomIn multiplies the horizontal zoom by factor.
func (c *CoordinateSystem) ZoomIn(factor float64) {
	c.SetPixelsPerBeat(c.pixelsPerBeat * factor)
}

// ZoomOut divides the horizontal zoom by factor.
func (c *CoordinateSystem) ZoomOut(factor float64) {
	c.SetPixelsPerBeat(c.pixelsPerBeat / factor)
}

// ZoomAt zooms horizontally while keeping anchorWorldX at the same screen
// column. When the requested factor is clamped by the zoom bounds, the
// effective factor is used for the viewport shift so the anchor stays as
// close as possible. The viewport X is not clamped; negative world X is a
// valid scroll position.
func (c *CoordinateSystem) ZoomAt(factor, anchorWorldX float64) {
	if factor <= 0 || c.pixelsPerBeat <= 0 {
		return
	}
	oldPPB := c.pixelsPerBeat
	newPPB := clamp(oldPPB*factor, MinPixelsPerBeat, MaxPixelsPerBeat)
	effective := newPPB / oldPPB

	c.pixelsPerBeat = newPPB
	c.viewport.X += anchorWorldX*effective - anchorWorldX
}

// SetScroll moves the viewport. X is unrestricted; Y is clamped to
// [0, MaxScrollY].
func (c *CoordinateSystem) SetScroll(wx, wy float64) {
	if wy < 0 {
		wy = 0
	} else if maxY := c.MaxScrollY(); wy > maxY {
		wy = maxY
	}
	c.viewport.X = wx
	c.viewport.Y = wy
}

// Pan moves the viewport by a delta, with the same clamping as SetScroll.
func (c *CoordinateSystem) Pan(dx, dy float64) {
	c.SetScroll(c.viewport.X+dx, c.viewport.Y+dy)
}

// VisibleTickRange returns the ticks covered by the viewport.
func (c *CoordinateSystem) VisibleTickRange() (model.Tick, model.Tick) {
	start := c.WorldToTick(c.viewport.X)
	end := c.WorldToTick(c.viewport.X + c.viewport.Width)
	if end < start {
		end = start
	}
	return start, end
}

// VisibleKeyRange returns the lowest and highest visible keys.
func (c *CoordinateSystem) VisibleKeyRange() (model.MidiKey, model.MidiKey) {
	highest := c.WorldYToKey(c.viewport.Y)
	lowest := c.WorldYToKey(c.viewport.Y + c.viewport.Height)
	if lowest > highest {
		lowest, highest = highest, lowest
	}
	return lowest, highest
}

// CenterOnTick scrolls horizontally so the tick sits mid-viewport, not going
// left of tick 0.
func (c *CoordinateSystem) CenterOnTick(tick model.Tick) {
	x := c.TickToWorld(tick) - c.viewport.Width/2
	if x < 0 {
		x = 0
	}
	c.viewport.X = x
}

// CenterOnKey scrolls vertically so the key row sits mid-viewport.
func (c *CoordinateSystem) CenterOnKey(key model.MidiKey) {
	y := c.KeyToWorldY(key) - c.viewport.Height/2 + c.keyHeight/2
	c.SetScroll(c.viewport.X, y)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
