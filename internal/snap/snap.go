// Package snap implements the adaptive grid and magnetic snapping: a fixed
// table of musical divisions drives both grid rendering density and the
// rounding applied to edits.
package snap

import (
	"fmt"
	"math"

	"github.com/rollwerk/pianoroll/internal/model"
)

// Mode selects how SnapTick and MagneticSnap behave.
type Mode int

const (
	// Off disables snapping entirely.
	Off Mode = iota
	// Adaptive picks the finest division that is still readable at the
	// current zoom.
	Adaptive
	// Manual uses the explicitly configured snap division.
	Manual
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "OFF"
	case Adaptive:
		return "ADAPTIVE"
	case Manual:
		return "MANUAL"
	default:
		return "UNKNOWN"
	}
}

// Division is one grid/snap resolution, e.g. "1/16".
type Division struct {
	Ticks model.Tick
	Label string
}

// GridLineKind classifies a grid line for rendering.
type GridLineKind int

const (
	Measure GridLineKind = iota
	Beat
	Subdivision
)

// GridLine is one vertical grid line.
type GridLine struct {
	Tick model.Tick
	Kind GridLineKind
}

// RulerLabel is one text label in the timeline ruler.
type RulerLabel struct {
	Tick model.Tick
	Text string
}

// Grid spacing thresholds in pixels, used by the adaptive division picker.
const (
	minGridSpacingPx   = 10.0
	idealGridSpacingPx = 30.0
	maxGridSpacingPx   = 100.0
)

// DefaultMagneticRangePx is the pixel distance within which MagneticSnap
// pulls a tick onto the grid.
const DefaultMagneticRangePx = 8.0

// System holds snapping state. Divisions scale with ticks-per-beat: the
// table is 1/64 through 4 bars, i.e. 30..7680 ticks at TPB 480.
type System struct {
	ticksPerBeat    int
	beatsPerMeasure int

	mode         Mode
	snapDivision Division
	gridDivision Division

	divisions []Division
}

// New returns a snap system at the given ticks-per-beat with quarter-note
// snap/grid divisions and adaptive mode.
func New(ticksPerBeat int) *System {
	s := &System{
		ticksPerBeat:    ticksPerBeat,
		beatsPerMeasure: 4,
		mode:            Adaptive,
	}
	if s.ticksPerBeat <= 0 {
		s.ticksPerBeat = 480
	}
	s.rebuildDivisions()
	if quarter, ok := s.findDivision("1/4"); ok {
		s.snapDivision = quarter
		s.gridDivision = quarter
	}
	return s
}

// rebuildDivisions scales the fine-to-coarse table to the current TPB.
func (s *System) rebuildDivisions() {
	tpb := model.Tick(s.ticksPerBeat)
	s.divisions = []Division{
		{tpb / 16, "1/64"},
		{tpb / 8, "1/32"},
		{tpb / 4, "1/16"},
		{tpb / 2, "1/8"},
		{tpb, "1/4"},
		{tpb * 2, "1/2"},
		{tpb * 4, "1 bar"},
		{tpb * 8, "2 bars"},
		{tpb * 16, "4 bars"},
	}
}

func (s *System) TicksPerBeat() int { return s.ticksPerBeat }

func (s *System) SetTicksPerBeat(tpb int) {
	if tpb <= 0 {
		return
	}
	s.ticksPerBeat = tpb
	snapLabel := s.snapDivision.Label
	gridLabel := s.gridDivision.Label
	s.rebuildDivisions()
	if d, ok := s.findDivision(snapLabel); ok {
		s.snapDivision = d
	}
	if d, ok := s.findDivision(gridLabel); ok {
		s.gridDivision = d
	}
}

func (s *System) BeatsPerMeasure() int { return s.beatsPerMeasure }

func (s *System) SetBeatsPerMeasure(n int) {
	if n > 0 {
		s.beatsPerMeasure = n
	}
}

func (s *System) Mode() Mode        { return s.mode }
func (s *System) SetMode(m Mode)    { s.mode = m }
func (s *System) SnapDivision() Division { return s.snapDivision }
func (s *System) GridDivision() Division { return s.gridDivision }

// Divisions returns the division table from fine to coarse.
func (s *System) Divisions() []Division { return s.divisions }

// SetSnapDivision selects the snap division by label ("1/4", "2 bars", ...).
func (s *System) SetSnapDivision(label string) bool {
	d, ok := s.findDivision(label)
	if ok {
		s.snapDivision = d
	}
	return ok
}

// SetGridDivision selects the grid division by label.
func (s *System) SetGridDivision(label string) bool {
	d, ok := s.findDivision(label)
	if ok {
		s.gridDivision = d
	}
	return ok
}

// CycleSnapDivision steps the snap division through the table, wrapping.
func (s *System) CycleSnapDivision(forward bool) {
	if len(s.divisions) == 0 {
		return
	}
	index := 0
	for i, d := range s.divisions {
		if d.Label == s.snapDivision.Label {
			index = i
			break
		}
	}
	if forward {
		index = (index + 1) % len(s.divisions)
	} else {
		index = (index + len(s.divisions) - 1) % len(s.divisions)
	}
	s.snapDivision = s.divisions[index]
}

// AdaptiveDivision picks a division for the current zoom. For the grid it
// prefers spacing near the ideal and rejects spacing outside
// [min, max]; for snapping it picks the finest division whose spacing is
// still above the minimum.
func (s *System) AdaptiveDivision(pixelsPerBeat float64, forGrid bool) Division {
	var best *Division
	bestScore := math.Inf(1)
	for i := range s.divisions {
		d := s.divisions[i]
		beatsPerDiv := float64(d.Ticks) / float64(s.ticksPerBeat)
		px := beatsPerDiv * pixelsPerBeat

		if forGrid {
			if px < minGridSpacingPx || px > maxGridSpacingPx {
				continue
			}
			score := math.Abs(px - idealGridSpacingPx)
			if score < bestScore {
				bestScore = score
				best = &s.divisions[i]
			}
		} else if px >= minGridSpacingPx {
			// The table runs fine to coarse, so the first readable
			// division is the finest one.
			return d
		}
	}
	if best == nil {
		if quarter, ok := s.findDivision("1/4"); ok {
			return quarter
		}
		return s.divisions[0]
	}
	return *best
}

// SnapTick rounds to the nearest multiple of the snap division. Off mode is
// the identity. Negative ticks round to the nearest (possibly negative)
// multiple; use SnapTickFloor/SnapTickCeil for clamped variants.
func (s *System) SnapTick(tick model.Tick) model.Tick {
	if s.mode == Off {
		return tick
	}
	size := s.snapDivision.Ticks
	if size <= 0 {
		return tick
	}
	return model.Tick(math.Round(float64(tick)/float64(size))) * size
}

// SnapTickWithMode behaves like SnapTick but forces the given mode for one
// call without touching the configured mode.
func (s *System) SnapTickWithMode(tick model.Tick, mode Mode) model.Tick {
	saved := s.mode
	s.mode = mode
	snapped := s.SnapTick(tick)
	s.mode = saved
	return snapped
}

// SnapTickFloor rounds down to the snap division, clamping negatives to 0.
func (s *System) SnapTickFloor(tick model.Tick) model.Tick {
	if s.mode == Off {
		return tick
	}
	size := s.snapDivision.Ticks
	if size <= 0 {
		return tick
	}
	if tick < 0 {
		return 0
	}
	return tick / size * size
}

// SnapTickCeil rounds up to the snap division, clamping negatives to 0.
func (s *System) SnapTickCeil(tick model.Tick) model.Tick {
	if s.mode == Off {
		return tick
	}
	size := s.snapDivision.Ticks
	if size <= 0 {
		return tick
	}
	if tick < 0 {
		return 0
	}
	return (tick + size - 1) / size * size
}

// MagneticSnap pulls tick onto the nearest grid point only when the pixel
// distance at the current zoom is within rangePx. In adaptive mode the grid
// is the finest readable division for the zoom. The second result reports
// whether snapping happened; when false the input is returned unchanged.
func (s *System) MagneticSnap(tick model.Tick, pixelsPerBeat, rangePx float64) (model.Tick, bool) {
	if s.mode == Off {
		return tick, false
	}

	var size model.Tick
	if s.mode == Adaptive {
		size = s.AdaptiveDivision(pixelsPerBeat, false).Ticks
	} else {
		size = s.snapDivision.Ticks
	}
	if size <= 0 {
		return tick, false
	}

	nearest := model.Tick(math.Round(float64(tick)/float64(size))) * size
	diff := tick - nearest
	if diff < 0 {
		diff = -diff
	}
	px := float64(diff) / float64(s.ticksPerBeat) * pixelsPerBeat
	if px <= rangePx {
		return nearest, true
	}
	return tick, false
}

// GridLines emits lines aligned to the adaptive grid division over
// [startTick, endTick], classified by divisibility: measure boundaries,
// beats, then subdivisions.
func (s *System) GridLines(startTick, endTick model.Tick, pixelsPerBeat float64) []GridLine {
	var lines []GridLine
	if startTick >= endTick {
		return lines
	}
	size := s.AdaptiveDivision(pixelsPerBeat, true).Ticks
	if size <= 0 {
		return lines
	}

	measureTicks := model.Tick(s.ticksPerBeat) * model.Tick(s.beatsPerMeasure)
	aligned := startTick / size * size
	if aligned > startTick {
		aligned -= size
	}
	for t := aligned; t <= endTick; t += size {
		kind := Subdivision
		if measureTicks > 0 && t%measureTicks == 0 {
			kind = Measure
		} else if t%model.Tick(s.ticksPerBeat) == 0 {
			kind = Beat
		}
		lines = append(lines, GridLine{Tick: t, Kind: kind})
	}
	return lines
}

// RulerLabels emits Bitwig-style labels for [startTick, endTick]. Density
// follows the zoom: sixteenths when very close, "m.b" beat labels, bar
// numbers, then every second bar. Bars and beats are 1-indexed.
func (s *System) RulerLabels(startTick, endTick model.Tick, pixelsPerBeat float64) []RulerLabel {
	var labels []RulerLabel
	if startTick >= endTick {
		return labels
	}

	tpb := model.Tick(s.ticksPerBeat)
	bpm := model.Tick(s.beatsPerMeasure)

	var interval model.Tick
	beatLabels := true
	switch {
	case pixelsPerBeat >= 460:
		interval = tpb * 4 / 16
	case pixelsPerBeat >= 67:
		interval = tpb
	case pixelsPerBeat >= 40:
		interval = tpb * bpm
		beatLabels = false
	default:
		interval = tpb * bpm * 2
		beatLabels = false
	}
	if interval <= 0 {
		return labels
	}

	aligned := startTick / interval * interval
	if aligned > startTick {
		aligned -= interval
	}
	for t := aligned; t <= endTick; t += interval {
		totalBeats := float64(t) / float64(tpb)
		measure := int(totalBeats/float64(bpm)) + 1
		var text string
		if beatLabels {
			beat := int(math.Mod(totalBeats, float64(bpm))) + 1
			text = fmt.Sprintf("%d.%d", measure, beat)
		} else {
			text = fmt.Sprintf("%d", measure)
		}
		labels = append(labels, RulerLabel{Tick: t, Text: text})
	}
	return labels
}

// Info returns a human-readable snap status, e.g. "Snap: ADAPTIVE (1/16)".
func (s *System) Info() string {
	switch s.mode {
	case Off:
		return "Snap: OFF"
	case Adaptive:
		return fmt.Sprintf("Snap: ADAPTIVE (%s)", s.snapDivision.Label)
	default:
		return fmt.Sprintf("Snap: %s", s.snapDivision.Label)
	}
}

func (s *System) findDivision(label string) (Division, bool) {
	for _, d := range s.divisions {
		if d.Label == label {
			return d, true
		}
	}
	return Division{}, false
}
