// Package gesture holds the small pointer state machines shared by the
// piano roll: a generic hover/drag/resize rectangle plus its two
// specializations, the horizontal scrollbar and the loop marker. Each is a
// concrete struct composed with a coordinate Converter, not a hierarchy.
package gesture

import "math"

// State enumerates the rectangle interaction states.
type State int

const (
	Idle State = iota
	HoveringBody
	HoveringLeftEdge
	HoveringRightEdge
	Dragging
	ResizingLeft
	ResizingRight
)

// Active reports whether the state is a held drag or resize.
func (s State) Active() bool {
	return s == Dragging || s == ResizingLeft || s == ResizingRight
}

// Bounds is a rectangle in the gesture's native coordinate space.
type Bounds struct {
	Left, Right, Top, Bottom float64
}

func (b Bounds) Width() float64  { return b.Right - b.Left }
func (b Bounds) Height() float64 { return b.Bottom - b.Top }

func (b Bounds) Contains(x, y float64) bool {
	return b.Left <= x && x <= b.Right && b.Top <= y && y <= b.Bottom
}

// Converter maps between screen space and the rectangle's native space.
// The scrollbar uses the identity; the loop marker mixes world X with
// ruler-local Y.
type Converter interface {
	ScreenToWorld(x, y float64) (wx, wy float64, ok bool)
	WorldToScreen(wx, wy float64) (x, y float64, ok bool)
}

// Rect is the generic draggable/resizable rectangle state machine. Bounds
// live in the converter's world space; pointer events arrive in screen
// space. With ShowDragPreview set, drags update PreviewBounds and commit on
// mouse-up through OnFinalize.
type Rect struct {
	Bounds  Bounds
	State   State
	Visible bool
	Enabled bool

	EdgeThreshold float64 // px distance for edge detection
	MinWidth      float64 // enforced on resize
	SnapEnabled   bool
	SnapSize      float64

	ShowDragPreview bool

	Conv Converter

	OnBoundsChanged func(Bounds)
	OnStateChanged  func(State)
	// OnFinalize fires after preview bounds are committed on mouse-up.
	OnFinalize func()

	dragStartX, dragStartY   float64
	hasDragStart             bool
	dragOffsetX, dragOffsetY float64
	originalBounds           Bounds
	hasOriginal              bool
	previewBounds            Bounds
	hasPreview               bool
}

// NewRect returns an idle rectangle with the usual defaults.
func NewRect(conv Converter) *Rect {
	return &Rect{
		Visible:         true,
		Enabled:         true,
		EdgeThreshold:   5,
		MinWidth:        10,
		SnapEnabled:     true,
		SnapSize:        1,
		ShowDragPreview: true,
		Conv:            conv,
	}
}

// PreviewBounds returns the in-flight drag preview, if one is active.
func (r *Rect) PreviewBounds() (Bounds, bool) {
	return r.previewBounds, r.hasPreview
}

// ScreenBounds returns the current bounds converted to screen space.
func (r *Rect) ScreenBounds() (Bounds, bool) {
	x1, y1, ok1 := r.Conv.WorldToScreen(r.Bounds.Left, r.Bounds.Top)
	x2, y2, ok2 := r.Conv.WorldToScreen(r.Bounds.Right, r.Bounds.Bottom)
	if !ok1 || !ok2 {
		return Bounds{}, false
	}
	return Bounds{Left: x1, Top: y1, Right: x2, Bottom: y2}, true
}

func (r *Rect) snapValue(v float64) float64 {
	if !r.SnapEnabled || r.SnapSize <= 0 {
		return v
	}
	return math.Round(v/r.SnapSize) * r.SnapSize
}

func (r *Rect) setState(s State) {
	if s == r.State {
		return
	}
	r.State = s
	if r.OnStateChanged != nil {
		r.OnStateChanged(s)
	}
}

// MouseMove updates hover classification. During an active drag or resize
// the state is left alone; use MouseDrag for motion updates.
func (r *Rect) MouseMove(x, y float64) State {
	if !r.Enabled || !r.Visible {
		return Idle
	}
	if r.State.Active() {
		return r.State
	}

	sb, ok := r.ScreenBounds()
	if !ok || !sb.Contains(x, y) {
		r.setState(Idle)
		return r.State
	}

	switch {
	case math.Abs(x-sb.Left) <= r.EdgeThreshold:
		r.setState(HoveringLeftEdge)
	case math.Abs(x-sb.Right) <= r.EdgeThreshold:
		r.setState(HoveringRightEdge)
	default:
		r.setState(HoveringBody)
	}
	return r.State
}

// MouseDown starts a drag or resize from the current hover state. Returns
// true if an interaction started.
func (r *Rect) MouseDown(x, y float64) bool {
	if !r.Enabled || !r.Visible {
		return false
	}
	switch r.State {
	case HoveringLeftEdge:
		r.begin(ResizingLeft, x, y)
	case HoveringRightEdge:
		r.begin(ResizingRight, x, y)
	case HoveringBody:
		r.begin(Dragging, x, y)
		if wx, wy, ok := r.Conv.ScreenToWorld(x, y); ok {
			r.dragOffsetX = wx - r.Bounds.Left
			r.dragOffsetY = wy - r.Bounds.Top
		}
	default:
		return false
	}
	return true
}

func (r *Rect) begin(s State, x, y float64) {
	r.dragStartX, r.dragStartY = x, y
	r.hasDragStart = true
	r.originalBounds = r.Bounds
	r.hasOriginal = true
	r.dragOffsetX, r.dragOffsetY = 0, 0
	if r.ShowDragPreview {
		r.previewBounds = r.Bounds
		r.hasPreview = true
	}
	r.setState(s)
}

// MouseDrag updates position or size while a drag/resize is active.
func (r *Rect) MouseDrag(x, y float64) bool {
	if !r.Enabled {
		return false
	}
	switch r.State {
	case Dragging:
		return r.updateDrag(x, y)
	case ResizingLeft:
		return r.updateResizeLeft(x, y)
	case ResizingRight:
		return r.updateResizeRight(x, y)
	}
	return false
}

func (r *Rect) updateDrag(x, y float64) bool {
	if !r.hasDragStart || !r.hasOriginal {
		return false
	}
	wx, wy, ok := r.Conv.ScreenToWorld(x, y)
	if !ok {
		return false
	}
	newLeft := wx - r.dragOffsetX
	newTop := wy - r.dragOffsetY
	if r.SnapEnabled {
		newLeft = r.snapValue(newLeft)
		newTop = r.snapValue(newTop)
	}
	w := r.Bounds.Width()
	h := r.Bounds.Height()

	if r.ShowDragPreview && r.hasPreview {
		r.previewBounds = Bounds{Left: newLeft, Right: newLeft + w, Top: newTop, Bottom: newTop + h}
	} else {
		r.Bounds = Bounds{Left: newLeft, Right: newLeft + w, Top: newTop, Bottom: newTop + h}
		if r.OnBoundsChanged != nil {
			r.OnBoundsChanged(r.Bounds)
		}
	}
	return true
}

func (r *Rect) updateResizeLeft(x, y float64) bool {
	if !r.hasOriginal {
		return false
	}
	wx, _, ok := r.Conv.ScreenToWorld(x, y)
	if !ok {
		return false
	}
	newLeft := wx
	if r.SnapEnabled {
		newLeft = r.snapValue(newLeft)
	}
	if maxLeft := r.Bounds.Right - r.MinWidth; newLeft > maxLeft {
		newLeft = maxLeft
	}
	if r.ShowDragPreview && r.hasPreview {
		r.previewBounds.Left = newLeft
	} else {
		r.Bounds.Left = newLeft
		if r.OnBoundsChanged != nil {
			r.OnBoundsChanged(r.Bounds)
		}
	}
	return true
}

func (r *Rect) updateResizeRight(x, y float64) bool {
	if !r.hasOriginal {
		return false
	}
	wx, _, ok := r.Conv.ScreenToWorld(x, y)
	if !ok {
		return false
	}
	newRight := wx
	if r.SnapEnabled {
		newRight = r.snapValue(newRight)
	}
	if minRight := r.Bounds.Left + r.MinWidth; newRight < minRight {
		newRight = minRight
	}
	if r.ShowDragPreview && r.hasPreview {
		r.previewBounds.Right = newRight
	} else {
		r.Bounds.Right = newRight
		if r.OnBoundsChanged != nil {
			r.OnBoundsChanged(r.Bounds)
		}
	}
	return true
}

// MouseUp ends an active interaction, committing the preview if any.
func (r *Rect) MouseUp(x, y float64) bool {
	if !r.State.Active() {
		return false
	}
	r.EndInteraction()
	return true
}

// EndInteraction commits preview bounds, fires the finalize hook, and
// returns to Idle.
func (r *Rect) EndInteraction() {
	if r.ShowDragPreview && r.hasPreview {
		r.Bounds = r.previewBounds
		if r.OnBoundsChanged != nil {
			r.OnBoundsChanged(r.Bounds)
		}
		if r.OnFinalize != nil {
			r.OnFinalize()
		}
	}
	r.hasDragStart = false
	r.hasOriginal = false
	r.hasPreview = false
	r.dragOffsetX, r.dragOffsetY = 0, 0
	r.setState(Idle)
}
