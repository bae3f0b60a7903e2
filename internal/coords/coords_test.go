package coords

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/rollwerk/pianoroll/internal/model"
)

func newTestCS() *CoordinateSystem {
	cs := New(180)
	cs.SetViewportSize(800, 400)
	return cs
}

func TestScreenWorldRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("screen_to_world inverts world_to_screen", prop.ForAll(
		func(wx, wy, scrollX, scrollY float64) bool {
			cs := newTestCS()
			cs.SetScroll(scrollX, scrollY)
			sx, sy := cs.WorldToScreen(wx, wy)
			gx, gy := cs.ScreenToWorld(sx, sy)
			return math.Abs(gx-wx) < 1e-9 && math.Abs(gy-wy) < 1e-9
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e5, 1e5),
		gen.Float64Range(0, 2000),
	))

	properties.Property("tick round trip is the identity for non-negative ticks", prop.ForAll(
		func(tick int64) bool {
			cs := newTestCS()
			return cs.WorldToTick(cs.TickToWorld(tick)) == tick
		},
		gen.Int64Range(0, 1<<32),
	))

	properties.TestingRun(t)
}

func TestWorldToTickClampsNegative(t *testing.T) {
	cs := newTestCS()
	assert.Equal(t, model.Tick(0), cs.WorldToTick(-100))
}

func TestKeyMapping(t *testing.T) {
	cs := newTestCS()

	// Key 127 sits at world Y 0; key 0 at the bottom.
	assert.Equal(t, 0.0, cs.KeyToWorldY(127))
	assert.Equal(t, float64(127)*20, cs.KeyToWorldY(0))

	for _, key := range []model.MidiKey{0, 1, 59, 60, 64, 126, 127} {
		y := cs.KeyToWorldY(key)
		assert.Equal(t, key, cs.WorldYToKey(y+0.5), "key %d", key)
		assert.Equal(t, key, cs.WorldYToKey(y+19.5), "key %d bottom", key)
	}
}

func TestAnchoredZoom(t *testing.T) {
	cs := newTestCS()
	// ppb=60, viewport.x=0, anchor at world 300 (beat 5).
	cs.ZoomAt(2.0, 300)

	assert.Equal(t, 120.0, cs.PixelsPerBeat())
	assert.Equal(t, 300.0, cs.Viewport().X)

	// The musical anchor (beat 5, now world 600) keeps its screen column.
	sx, _ := cs.WorldToScreen(600, 0)
	assert.Equal(t, 300.0+cs.PianoKeyWidth(), sx)
}

func TestAnchoredZoomProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("the beat under the anchor stays at the same screen X", prop.ForAll(
		func(anchorWX, factor, startScroll float64) bool {
			cs := newTestCS()
			cs.SetScroll(startScroll, 0)

			before, _ := cs.WorldToScreen(anchorWX, 0)
			oldPPB := cs.PixelsPerBeat()
			cs.ZoomAt(factor, anchorWX)
			effective := cs.PixelsPerBeat() / oldPPB

			after, _ := cs.WorldToScreen(anchorWX*effective, 0)
			return math.Abs(after-before) < 1e-6
		},
		gen.Float64Range(-5000, 5000),
		gen.Float64Range(0.1, 10),
		gen.Float64Range(-5000, 5000),
	))

	properties.TestingRun(t)
}

func TestZoomClampedToBounds(t *testing.T) {
	cs := newTestCS()
	cs.ZoomAt(1000, 0)
	assert.Equal(t, MaxPixelsPerBeat, cs.PixelsPerBeat())
	cs.ZoomAt(1e-9, 0)
	assert.Equal(t, MinPixelsPerBeat, cs.PixelsPerBeat())
}

func TestScrollClampsYOnly(t *testing.T) {
	cs := newTestCS()

	cs.SetScroll(-1234, -50)
	assert.Equal(t, -1234.0, cs.Viewport().X, "negative X is a valid scroll position")
	assert.Equal(t, 0.0, cs.Viewport().Y)

	cs.SetScroll(0, 1e9)
	assert.Equal(t, cs.MaxScrollY(), cs.Viewport().Y)
}

func TestMaxScrollY(t *testing.T) {
	cs := newTestCS()
	// 128 keys * 20 px - 400 px viewport.
	assert.Equal(t, 128.0*20-400, cs.MaxScrollY())

	cs.SetViewportSize(800, 1e6)
	assert.Equal(t, 0.0, cs.MaxScrollY())
}

func TestVisibleRanges(t *testing.T) {
	cs := newTestCS()

	start, end := cs.VisibleTickRange()
	assert.Equal(t, model.Tick(0), start)
	// 800 px at 60 px/beat is 13.33 beats.
	assert.Equal(t, model.Tick(800.0/60*480), end)

	low, high := cs.VisibleKeyRange()
	assert.Equal(t, 127, high)
	assert.Equal(t, cs.WorldYToKey(400), low)
	assert.LessOrEqual(t, low, high)
}

func TestVisibleRangesMonotoneUnderPan(t *testing.T) {
	cs := newTestCS()
	prevStart, _ := cs.VisibleTickRange()
	for i := 0; i < 20; i++ {
		cs.Pan(37, 0)
		start, end := cs.VisibleTickRange()
		assert.GreaterOrEqual(t, start, prevStart)
		assert.GreaterOrEqual(t, end, start)
		prevStart = start
	}
}

func TestCenterOn(t *testing.T) {
	cs := newTestCS()

	cs.CenterOnTick(4800) // beat 10, world 600
	assert.Equal(t, 600.0-400, cs.Viewport().X)

	// Near zero the center clamps to the origin.
	cs.CenterOnTick(0)
	assert.Equal(t, 0.0, cs.Viewport().X)

	cs.CenterOnKey(64)
	y := cs.KeyToWorldY(64)
	assert.InDelta(t, y-200+10, cs.Viewport().Y, 1e-9)
}
