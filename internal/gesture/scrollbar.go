package gesture

import "math"

// Orientation selects the scrollbar axis.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

// identity is the screen-space converter used by the scrollbar: its thumb
// lives directly in screen coordinates.
type identity struct{}

func (identity) ScreenToWorld(x, y float64) (float64, float64, bool) { return x, y, true }
func (identity) WorldToScreen(x, y float64) (float64, float64, bool) { return x, y, true }

// Scrollbar is a custom-rendered scrollbar with Bitwig-style semantics: the
// horizontal variant sizes its thumb against the explored area rather than
// the content, lets thumb edges be dragged as a zoom gesture, and accepts
// any scroll position set from outside (the explored area expands instead);
// page clicks stay inside the explored area.
type Scrollbar struct {
	Thumb *Rect // thumb bounds in screen space

	// TrackSize is the strip thickness: height for horizontal, width for
	// vertical.
	TrackSize float64

	// Called when a thumb drag translates into a new scroll position.
	OnScrollUpdate func(newScroll float64)
	// Called while a thumb edge is dragged; the host interprets it as zoom.
	OnEdgeResize func(edge string, deltaX float64)
	// Called when the thumb is double-clicked (host: fit to clip).
	OnDoubleClick func()
	// Called when a thumb drag ends.
	OnDragEnd func()

	orientation Orientation

	lastMouseX, lastMouseY float64
	suppressHover          bool

	dragThreshold                float64
	dragIntent                   bool
	dragStartMouseX, dragStartMY float64
	hasDragStartMouse            bool

	edgeResizeMode  bool
	hasManualThumb  bool
	manualThumbX    float64
	manualThumbY    float64
	manualThumbW    float64
	manualThumbH    float64

	trackX, trackY float64
	trackW, trackH float64

	contentSize    float64
	viewportSize   float64
	scrollPosition float64
	exploredMin    float64
	exploredMax    float64

	lastClickTime   float64
	doubleClickSecs float64
}

// NewScrollbar returns a scrollbar for the given orientation. Snapping and
// drag preview are off: the thumb tracks the pointer directly.
func NewScrollbar(orientation Orientation) *Scrollbar {
	s := &Scrollbar{
		TrackSize:       15,
		orientation:     orientation,
		dragThreshold:   3,
		contentSize:     1000,
		viewportSize:    100,
		exploredMin:     0,
		exploredMax:     100,
		doubleClickSecs: 0.8,
	}
	s.Thumb = NewRect(identity{})
	s.Thumb.SnapEnabled = false
	s.Thumb.ShowDragPreview = false
	s.Thumb.OnBoundsChanged = s.boundsChanged
	return s
}

func (s *Scrollbar) Orientation() Orientation { return s.orientation }
func (s *Scrollbar) ScrollPosition() float64  { return s.scrollPosition }
func (s *Scrollbar) ExploredMin() float64     { return s.exploredMin }
func (s *Scrollbar) ExploredMax() float64     { return s.exploredMax }
func (s *Scrollbar) ViewportSize() float64    { return s.viewportSize }
func (s *Scrollbar) EdgeResizing() bool       { return s.edgeResizeMode }

// TrackBounds returns the track strip in screen space.
func (s *Scrollbar) TrackBounds() Bounds {
	return Bounds{Left: s.trackX, Top: s.trackY, Right: s.trackX + s.trackW, Bottom: s.trackY + s.trackH}
}

// ManualThumb returns the explicit thumb geometry used during edge resize.
func (s *Scrollbar) ManualThumb() (x, y, w, h float64, ok bool) {
	return s.manualThumbX, s.manualThumbY, s.manualThumbW, s.manualThumbH, s.hasManualThumb
}

// UpdateGeometry positions the track strip in screen space.
func (s *Scrollbar) UpdateGeometry(x, y, length float64) {
	s.trackX, s.trackY = x, y
	if s.orientation == Horizontal {
		s.trackW, s.trackH = length, s.TrackSize
	} else {
		s.trackW, s.trackH = s.TrackSize, length
	}
	s.updateThumb()
}

// SetContentSize sets the scrollable content extent (vertical variant).
func (s *Scrollbar) SetContentSize(size float64) {
	s.contentSize = math.Max(1, size)
	s.updateThumb()
}

// SetViewportSize sets the visible extent in world units.
func (s *Scrollbar) SetViewportSize(size float64) {
	s.viewportSize = math.Max(1, size)
	if !s.edgeResizeMode {
		s.updateThumb()
	}
}

// SetScrollPosition updates the scroll position. Horizontal scrollbars
// accept any position (the explored area is managed separately); vertical
// ones clamp to the content range.
func (s *Scrollbar) SetScrollPosition(pos float64) {
	if s.orientation == Horizontal {
		s.scrollPosition = pos
	} else {
		maxScroll := math.Max(0, s.contentSize-s.viewportSize)
		s.scrollPosition = math.Max(0, math.Min(pos, maxScroll))
	}
	if !s.edgeResizeMode {
		s.updateThumb()
	}
}

// SetExploredArea sets the world range the thumb is sized against.
func (s *Scrollbar) SetExploredArea(min, max float64) {
	changed := min != s.exploredMin || max != s.exploredMax
	s.exploredMin, s.exploredMax = min, max
	if !s.edgeResizeMode && changed {
		s.updateThumb()
	}
}

// HandleMouseMove processes hover, drag-intent promotion, edge resize, and
// thumb drags. Returns true when the event changed scrollbar state.
func (s *Scrollbar) HandleMouseMove(x, y float64) bool {
	prev := s.Thumb.State

	// Promote a pending body click to a real drag once the pointer moves
	// past the threshold.
	if s.dragIntent && s.hasDragStartMouse {
		dx := math.Abs(x - s.dragStartMouseX)
		dy := math.Abs(y - s.dragStartMY)
		if dx > s.dragThreshold || dy > s.dragThreshold {
			s.dragIntent = false
			s.hasDragStartMouse = false
			s.Thumb.State = Dragging
			s.Thumb.hasDragStart = true
			s.Thumb.dragStartX, s.Thumb.dragStartY = s.dragStartMouseX, s.dragStartMY
			s.Thumb.originalBounds = s.Thumb.Bounds
			s.Thumb.hasOriginal = true
			s.Thumb.dragOffsetX = s.dragStartMouseX - s.Thumb.Bounds.Left
			s.Thumb.dragOffsetY = s.dragStartMY - s.Thumb.Bounds.Top
			s.lastMouseX, s.lastMouseY = x, y
		}
	}

	// After an edge resize ends, require some movement before hover state
	// comes back, so the release does not flicker the handles.
	if s.suppressHover {
		dx := math.Abs(x - s.lastMouseX)
		dy := math.Abs(y - s.lastMouseY)
		if dx > 5 || dy > 5 {
			s.suppressHover = false
		} else {
			return false
		}
	}

	newState := s.Thumb.MouseMove(x, y)

	if s.Thumb.State == ResizingLeft || s.Thumb.State == ResizingRight {
		if s.orientation == Horizontal && s.OnEdgeResize != nil {
			deltaX := x - s.lastMouseX
			s.edgeResizeMode = true

			x1 := s.Thumb.Bounds.Left
			x2 := s.Thumb.Bounds.Right
			top := s.Thumb.Bounds.Top
			const minThumbWidth = 20.0
			if s.Thumb.State == ResizingLeft {
				x1 = math.Max(s.trackX, x1+deltaX)
				if x2-x1 < minThumbWidth {
					x1 = x2 - minThumbWidth
				}
			} else {
				x2 = math.Min(s.trackX+s.trackW, x2+deltaX)
				if x2-x1 < minThumbWidth {
					x2 = x1 + minThumbWidth
				}
			}

			s.manualThumbX, s.manualThumbY = x1, top
			s.manualThumbW, s.manualThumbH = x2-x1, s.TrackSize
			s.hasManualThumb = true

			s.Thumb.Bounds = Bounds{Left: x1, Top: top, Right: x2, Bottom: top + s.TrackSize}

			edge := "right"
			if s.Thumb.State == ResizingLeft {
				edge = "left"
			}
			s.OnEdgeResize(edge, deltaX)

			s.lastMouseX = x
			return true
		}
	}

	if s.Thumb.State == Dragging {
		s.Thumb.updateDrag(x, y)
		s.lastMouseX, s.lastMouseY = x, y
		return true
	}

	s.lastMouseX, s.lastMouseY = x, y
	return newState != prev
}

// HandleMouseDown processes a press. now is a monotonic clock in seconds,
// used for double-click detection on the thumb.
func (s *Scrollbar) HandleMouseDown(x, y, now float64) bool {
	s.lastMouseX, s.lastMouseY = x, y

	onThumb := s.Thumb.Bounds.Contains(x, y)
	if onThumb {
		diff := now - s.lastClickTime
		if diff < s.doubleClickSecs && diff > 0.05 {
			if s.OnDoubleClick != nil {
				s.OnDoubleClick()
			}
			s.lastClickTime = 0
			return true
		}
		s.lastClickTime = now
	}

	inTrack := s.TrackBounds().Contains(x, y)
	if inTrack && !onThumb {
		// Page scroll by 0.9 viewport toward the click.
		if s.orientation == Horizontal {
			maxScroll := math.Max(0, s.exploredMax-s.exploredMin-s.viewportSize)
			if x < s.Thumb.Bounds.Left {
				s.scrollPosition = math.Max(s.exploredMin, s.scrollPosition-s.viewportSize*0.9)
			} else {
				s.scrollPosition = math.Min(s.exploredMin+maxScroll, s.scrollPosition+s.viewportSize*0.9)
			}
		} else {
			maxScroll := math.Max(0, s.contentSize-s.viewportSize)
			if y < s.Thumb.Bounds.Top {
				s.scrollPosition = math.Max(0, s.scrollPosition-s.viewportSize*0.9)
			} else {
				s.scrollPosition = math.Min(maxScroll, s.scrollPosition+s.viewportSize*0.9)
			}
		}
		s.updateThumb()
		if s.OnScrollUpdate != nil {
			s.OnScrollUpdate(s.scrollPosition)
		}
		return true
	}

	if onThumb {
		if s.orientation == Horizontal {
			if math.Abs(x-s.Thumb.Bounds.Left) <= s.Thumb.EdgeThreshold {
				s.beginEdgeResize(ResizingLeft, x, y)
				return true
			}
			if math.Abs(x-s.Thumb.Bounds.Right) <= s.Thumb.EdgeThreshold {
				s.beginEdgeResize(ResizingRight, x, y)
				return true
			}
			// Body press: record intent, start dragging only after the
			// pointer moves past the threshold.
			s.dragIntent = true
			s.dragStartMouseX, s.dragStartMY = x, y
			s.hasDragStartMouse = true
			return true
		}
		return s.Thumb.MouseDown(x, y)
	}

	return false
}

func (s *Scrollbar) beginEdgeResize(state State, x, y float64) {
	s.Thumb.State = state
	s.edgeResizeMode = true
	s.manualThumbX, s.manualThumbY = s.Thumb.Bounds.Left, s.Thumb.Bounds.Top
	s.manualThumbW = s.Thumb.Bounds.Width()
	s.manualThumbH = s.Thumb.Bounds.Height()
	s.hasManualThumb = true
	s.Thumb.dragStartX, s.Thumb.dragStartY = x, y
	s.Thumb.hasDragStart = true
	s.Thumb.originalBounds = s.Thumb.Bounds
	s.Thumb.hasOriginal = true
}

// HandleMouseUp ends any pending or active interaction.
func (s *Scrollbar) HandleMouseUp(x, y float64) bool {
	if s.dragIntent {
		s.dragIntent = false
		s.hasDragStartMouse = false
		return true
	}

	wasResizing := s.Thumb.State == ResizingLeft || s.Thumb.State == ResizingRight
	wasDragging := s.Thumb.State == Dragging

	result := s.Thumb.MouseUp(x, y)

	if wasResizing && s.orientation == Horizontal {
		s.edgeResizeMode = false
		s.hasManualThumb = false
		s.suppressHover = true
		s.updateThumb()
	}
	if wasDragging && s.OnDragEnd != nil {
		s.OnDragEnd()
	}
	return result
}

// updateThumb derives thumb geometry from viewport, explored area (or
// content for vertical), and scroll position, unless an edge resize holds
// explicit geometry.
func (s *Scrollbar) updateThumb() {
	if s.edgeResizeMode && s.hasManualThumb {
		s.Thumb.Bounds = Bounds{
			Left:   s.manualThumbX,
			Top:    s.manualThumbY,
			Right:  s.manualThumbX + s.manualThumbW,
			Bottom: s.manualThumbY + s.manualThumbH,
		}
		return
	}

	if s.orientation == Horizontal {
		exploredRange := s.exploredMax - s.exploredMin
		if s.viewportSize >= exploredRange {
			s.Thumb.Bounds = Bounds{Left: s.trackX, Top: s.trackY, Right: s.trackX + s.trackW, Bottom: s.trackY + s.TrackSize}
			return
		}
		thumbLen := math.Max(20, s.trackW*s.viewportSize/exploredRange)
		available := s.trackW - thumbLen

		offset := 0.0
		if available > 0 && exploredRange > s.viewportSize {
			normalized := (s.scrollPosition - s.exploredMin) / (exploredRange - s.viewportSize)
			normalized = math.Max(0, math.Min(1, normalized))
			offset = normalized * available
		}
		s.Thumb.Bounds = Bounds{
			Left:   s.trackX + offset,
			Top:    s.trackY,
			Right:  s.trackX + offset + thumbLen,
			Bottom: s.trackY + s.TrackSize,
		}
		return
	}

	if s.contentSize <= 0 {
		return
	}
	if s.viewportSize >= s.contentSize {
		s.Thumb.Bounds = Bounds{Left: s.trackX, Top: s.trackY, Right: s.trackX + s.TrackSize, Bottom: s.trackY + s.trackH}
		return
	}
	thumbLen := math.Max(20, s.trackH*s.viewportSize/s.contentSize)
	available := s.trackH - thumbLen
	offset := 0.0
	if available > 0 && s.contentSize > s.viewportSize {
		offset = s.scrollPosition / (s.contentSize - s.viewportSize) * available
	}
	s.Thumb.Bounds = Bounds{
		Left:   s.trackX,
		Top:    s.trackY + offset,
		Right:  s.trackX + s.TrackSize,
		Bottom: s.trackY + offset + thumbLen,
	}
}

// boundsChanged translates a dragged thumb into a scroll position.
func (s *Scrollbar) boundsChanged(b Bounds) {
	if s.orientation == Horizontal {
		relative := b.Left - s.trackX
		available := s.trackW - b.Width()
		exploredRange := s.exploredMax - s.exploredMin
		if available > 0 && exploredRange > s.viewportSize {
			ratio := math.Max(0, math.Min(1, relative/available))
			s.scrollPosition = s.exploredMin + ratio*(exploredRange-s.viewportSize)
		}
	} else {
		relative := b.Top - s.trackY
		available := s.trackH - b.Height()
		if available > 0 && s.contentSize > s.viewportSize {
			s.scrollPosition = relative / available * (s.contentSize - s.viewportSize)
		}
	}
	if s.OnScrollUpdate != nil && !s.edgeResizeMode {
		s.OnScrollUpdate(s.scrollPosition)
	}
}
