package snap

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollwerk/pianoroll/internal/model"
)

func TestDefaultDivisions(t *testing.T) {
	s := New(480)
	divs := s.Divisions()
	require.Len(t, divs, 9)

	want := []model.Tick{30, 60, 120, 240, 480, 960, 1920, 3840, 7680}
	for i, d := range divs {
		assert.Equal(t, want[i], d.Ticks, d.Label)
	}
	assert.Equal(t, "1/4", s.SnapDivision().Label)
	assert.Equal(t, "1/4", s.GridDivision().Label)
}

func TestDivisionsScaleWithTPB(t *testing.T) {
	s := New(960)
	assert.Equal(t, model.Tick(60), s.Divisions()[0].Ticks)
	assert.Equal(t, model.Tick(960), s.SnapDivision().Ticks)
}

func TestSnapTick(t *testing.T) {
	s := New(480)
	s.SetMode(Manual)
	require.True(t, s.SetSnapDivision("1/4"))

	assert.Equal(t, model.Tick(480), s.SnapTick(460))
	assert.Equal(t, model.Tick(480), s.SnapTick(500))
	assert.Equal(t, model.Tick(0), s.SnapTick(200))
	assert.Equal(t, model.Tick(480), s.SnapTick(240))

	// Negative ticks round to the nearest multiple, not to zero.
	assert.Equal(t, model.Tick(-480), s.SnapTick(-460))

	s.SetMode(Off)
	assert.Equal(t, model.Tick(460), s.SnapTick(460))
}

func TestSnapTickFloorCeil(t *testing.T) {
	s := New(480)
	s.SetMode(Manual)
	require.True(t, s.SetSnapDivision("1/4"))

	assert.Equal(t, model.Tick(480), s.SnapTickFloor(700))
	assert.Equal(t, model.Tick(960), s.SnapTickCeil(700))
	assert.Equal(t, model.Tick(480), s.SnapTickCeil(480))

	// Floor/ceil clamp negatives to zero.
	assert.Equal(t, model.Tick(0), s.SnapTickFloor(-10))
	assert.Equal(t, model.Tick(0), s.SnapTickCeil(-10))
}

func TestMagneticSnap(t *testing.T) {
	s := New(480)
	s.SetMode(Manual)
	require.True(t, s.SetSnapDivision("1/4"))

	// At 60 px/beat: 460 is 2.5 px from 480, inside the 8 px range.
	tick, snapped := s.MagneticSnap(460, 60, 8)
	assert.True(t, snapped)
	assert.Equal(t, model.Tick(480), tick)

	// 400 is 10 px from 480, outside the range; input passes through.
	tick, snapped = s.MagneticSnap(400, 60, 8)
	assert.False(t, snapped)
	assert.Equal(t, model.Tick(400), tick)
}

func TestMagneticSnapOffMode(t *testing.T) {
	s := New(480)
	s.SetMode(Off)
	tick, snapped := s.MagneticSnap(460, 60, 8)
	assert.False(t, snapped)
	assert.Equal(t, model.Tick(460), tick)
}

func TestMagneticSnapProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)

	properties.Property("outside the magnetic range the input is unchanged", prop.ForAll(
		func(tick int64, ppb float64) bool {
			s := New(480)
			s.SetMode(Manual)
			s.SetSnapDivision("1/4")

			out, snapped := s.MagneticSnap(tick, ppb, 8)
			nearest := s.SnapTick(tick)
			diff := tick - nearest
			if diff < 0 {
				diff = -diff
			}
			px := float64(diff) / 480 * ppb
			if px > 8 {
				return !snapped && out == tick
			}
			return snapped && out == nearest
		},
		gen.Int64Range(0, 100000),
		gen.Float64Range(15, 4000),
	))

	properties.TestingRun(t)
}

func TestAdaptiveDivisionForSnap(t *testing.T) {
	s := New(480)

	// At 60 px/beat the finest division above 10 px spacing is 1/16 (15 px).
	d := s.AdaptiveDivision(60, false)
	assert.Equal(t, "1/16", d.Label)

	// Zoomed far out, only coarse divisions stay readable.
	d = s.AdaptiveDivision(15, false)
	assert.Equal(t, "1/4", d.Label)

	// Zoomed far in, the finest division wins.
	d = s.AdaptiveDivision(4000, false)
	assert.Equal(t, "1/64", d.Label)
}

func TestAdaptiveDivisionForGrid(t *testing.T) {
	s := New(480)

	// For the grid, spacing closest to 30 px wins.
	d := s.AdaptiveDivision(60, true)
	assert.Equal(t, "1/8", d.Label, "1/8 at 30 px spacing is ideal")

	// Nothing fits below 0.625 px/beat (4 bars under 10 px); fall back to quarters.
	d = s.AdaptiveDivision(0.5, true)
	assert.Equal(t, "1/4", d.Label)
}

func TestGridLinesClassification(t *testing.T) {
	s := New(480)

	lines := s.GridLines(0, 1920, 60)
	require.NotEmpty(t, lines)

	byTick := map[model.Tick]GridLineKind{}
	for _, l := range lines {
		byTick[l.Tick] = l.Kind
	}
	assert.Equal(t, Measure, byTick[0])
	assert.Equal(t, Beat, byTick[480])
	assert.Equal(t, Beat, byTick[960])
	assert.Equal(t, Measure, byTick[1920])
	// 1/8 grid at this zoom: 240 is a subdivision.
	assert.Equal(t, Subdivision, byTick[240])

	assert.Empty(t, s.GridLines(100, 100, 60))
}

func TestRulerLabelDensity(t *testing.T) {
	s := New(480)

	// Very zoomed in: sixteenth labels.
	labels := s.RulerLabels(0, 480, 500)
	require.NotEmpty(t, labels)
	assert.Equal(t, model.Tick(120), labels[1].Tick-labels[0].Tick)
	assert.Equal(t, "1.1", labels[0].Text)

	// Medium zoom: beat labels "m.b".
	labels = s.RulerLabels(0, 1920, 100)
	assert.Equal(t, model.Tick(480), labels[1].Tick-labels[0].Tick)
	assert.Equal(t, "1.2", labels[1].Text)

	// Bars only.
	labels = s.RulerLabels(0, 3840, 50)
	assert.Equal(t, model.Tick(1920), labels[1].Tick-labels[0].Tick)
	assert.Equal(t, "2", labels[1].Text)

	// Very zoomed out: every two bars.
	labels = s.RulerLabels(0, 7680, 20)
	assert.Equal(t, model.Tick(3840), labels[1].Tick-labels[0].Tick)
	assert.Equal(t, "1", labels[0].Text)
	assert.Equal(t, "3", labels[1].Text)
}

func TestCycleSnapDivision(t *testing.T) {
	s := New(480)
	assert.Equal(t, "1/4", s.SnapDivision().Label)
	s.CycleSnapDivision(true)
	assert.Equal(t, "1/2", s.SnapDivision().Label)
	s.CycleSnapDivision(false)
	s.CycleSnapDivision(false)
	assert.Equal(t, "1/8", s.SnapDivision().Label)
}

func TestSnapInfo(t *testing.T) {
	s := New(480)
	assert.Equal(t, "Snap: ADAPTIVE (1/4)", s.Info())
	s.SetMode(Off)
	assert.Equal(t, "Snap: OFF", s.Info())
	s.SetMode(Manual)
	s.SetSnapDivision("1/16")
	assert.Equal(t, "Snap: 1/16", s.Info())
}

func TestSetSnapDivisionUnknownLabel(t *testing.T) {
	s := New(480)
	assert.False(t, s.SetSnapDivision("1/7"))
	assert.Equal(t, "1/4", s.SnapDivision().Label)
}
