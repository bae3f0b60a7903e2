// Package host defines the boundary between the piano-roll core and the
// embedding immediate-mode UI: the draw-list primitives the widget emits and
// the per-frame input state the host supplies. The core depends only on
// these types; adapters (see internal/ebihost) implement them.
package host

import "image/color"

// Layer is the z-order bucket a draw command belongs to. Adapters must
// flush layers in ascending order.
type Layer int

const (
	LayerBackground Layer = iota
	LayerNotes
	LayerRuler
	LayerPlayhead
)

// DrawList receives primitive draw commands in screen coordinates relative
// to the widget canvas.
type DrawList interface {
	// SetLayer routes subsequent commands to the given z-order bucket.
	SetLayer(layer Layer)

	FillRect(x1, y1, x2, y2 float64, col color.NRGBA, cornerRadius float64)
	StrokeRect(x1, y1, x2, y2 float64, col color.NRGBA, thickness float64)
	Line(x1, y1, x2, y2 float64, col color.NRGBA, thickness float64)
	FillTriangle(x1, y1, x2, y2, x3, y3 float64, col color.NRGBA)
	FillCircle(cx, cy, radius float64, col color.NRGBA)
	Text(x, y float64, col color.NRGBA, text string)

	// PushClip restricts subsequent commands on the current layer to the
	// given rectangle until the matching PopClip.
	PushClip(x1, y1, x2, y2 float64)
	PopClip()

	// TextSize measures a string in the adapter's UI font.
	TextSize(text string) (w, h float64)
}

// Modifiers is the modifier-key state for an input frame.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// Pointer is the mouse state for one frame, in canvas-local coordinates.
type Pointer struct {
	X, Y float64

	Down          bool // left button held
	Clicked       bool // left button went down this frame
	Released      bool // left button went up this frame
	DoubleClicked bool

	Wheel float64 // vertical wheel notches this frame

	Mods Modifiers
}

// Key is a logical key the widget understands. Hosts map their native key
// codes onto these.
type Key int

const (
	KeyDelete Key = iota
	KeyBackspace
	KeyA
	KeyC
	KeyV
	KeyZ
	KeyY
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// KeyEvent is one key press observed during the frame. The host delivers an
// explicit event list so no keystroke is lost between frames.
type KeyEvent struct {
	Key  Key
	Mods Modifiers
}

// Frame is everything the host hands the widget for one draw call.
type Frame struct {
	// Canvas size in pixels. The widget draws into [0,W) x [0,H).
	CanvasWidth  float64
	CanvasHeight float64

	Pointer Pointer
	Keys    []KeyEvent

	// Now is a monotonic clock in seconds, used for double-click timing and
	// press-flash decay.
	Now float64
}
