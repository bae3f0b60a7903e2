package model

import "sort"

// ControlPoint is a single point in a CC lane.
type ControlPoint struct {
	Tick  Tick
	Value int // 0-127
}

// ControlLane is one MIDI continuous controller lane: a CC number plus a
// list of points kept sorted by tick.
type ControlLane struct {
	ccNumber int
	points   []ControlPoint
}

// NewControlLane returns an empty lane for the given CC number.
func NewControlLane(ccNumber int) *ControlLane {
	return &ControlLane{ccNumber: ccNumber}
}

// CCNumber returns the lane's controller number.
func (l *ControlLane) CCNumber() int {
	return l.ccNumber
}

// Points exposes the sorted point list. Callers must not mutate it.
func (l *ControlLane) Points() []ControlPoint {
	return l.points
}

// AddPoint inserts a point, clamping value to 0..127 and keeping the lane
// sorted by tick.
func (l *ControlLane) AddPoint(tick Tick, value int) {
	l.points = append(l.points, ControlPoint{Tick: tick, Value: clampCC(value)})
	l.sortPoints()
}

// RemoveNear removes the first point whose tick is within maxDelta of tick.
func (l *ControlLane) RemoveNear(tick Tick, maxDelta Tick) bool {
	for i, p := range l.points {
		if absTick(p.Tick-tick) <= maxDelta {
			l.points = append(l.points[:i], l.points[i+1:]...)
			return true
		}
	}
	return false
}

// IndexNear returns the index of the first point within maxDelta of tick,
// or -1 if none is close enough.
func (l *ControlLane) IndexNear(tick Tick, maxDelta Tick) int {
	for i, p := range l.points {
		if absTick(p.Tick-tick) <= maxDelta {
			return i
		}
	}
	return -1
}

// Point returns the point at index.
func (l *ControlLane) Point(index int) (ControlPoint, bool) {
	if index < 0 || index >= len(l.points) {
		return ControlPoint{}, false
	}
	return l.points[index], true
}

// SetValue clamps and sets the value of the point at index.
func (l *ControlLane) SetValue(index int, value int) {
	if index < 0 || index >= len(l.points) {
		return
	}
	l.points[index].Value = clampCC(value)
}

// SetTick moves the point at index to a new tick and re-sorts the lane.
func (l *ControlLane) SetTick(index int, tick Tick) {
	if index < 0 || index >= len(l.points) {
		return
	}
	l.points[index].Tick = tick
	l.sortPoints()
}

func (l *ControlLane) sortPoints() {
	sort.SliceStable(l.points, func(i, j int) bool {
		return l.points[i].Tick < l.points[j].Tick
	})
}

func clampCC(v int) int {
	if v < 0 {
		return 0
	}
	if v > 127 {
		return 127
	}
	return v
}

func absTick(t Tick) Tick {
	if t < 0 {
		return -t
	}
	return t
}
