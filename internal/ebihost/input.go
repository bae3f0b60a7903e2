package ebihost

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/rollwerk/pianoroll/internal/host"
)

// doubleClickSeconds is the window for turning two presses into one
// double-click event.
const doubleClickSeconds = 0.35

// doubleClickSlopPx bounds how far the pointer may move between the two
// presses of a double click.
const doubleClickSlopPx = 4.0

var logicalKeys = map[ebiten.Key]host.Key{
	ebiten.KeyDelete:     host.KeyDelete,
	ebiten.KeyBackspace:  host.KeyBackspace,
	ebiten.KeyA:          host.KeyA,
	ebiten.KeyC:          host.KeyC,
	ebiten.KeyV:          host.KeyV,
	ebiten.KeyZ:          host.KeyZ,
	ebiten.KeyY:          host.KeyY,
	ebiten.KeyArrowUp:    host.KeyUp,
	ebiten.KeyArrowDown:  host.KeyDown,
	ebiten.KeyArrowLeft:  host.KeyLeft,
	ebiten.KeyArrowRight: host.KeyRight,
}

// Input captures Ebitengine input into host frames.
type Input struct {
	start time.Time

	lastClickAt   float64
	lastClickX    float64
	lastClickY    float64
}

// NewInput returns an input capturer with its own monotonic clock.
func NewInput() *Input {
	return &Input{start: time.Now()}
}

// Frame reads the current Ebitengine input state. canvasX/canvasY locate
// the widget canvas inside the window so pointer coordinates come out
// canvas-local.
func (in *Input) Frame(canvasX, canvasY, canvasW, canvasH float64) host.Frame {
	now := time.Since(in.start).Seconds()

	mx, my := ebiten.CursorPosition()
	x := float64(mx) - canvasX
	y := float64(my) - canvasY

	mods := host.Modifiers{
		Shift: ebiten.IsKeyPressed(ebiten.KeyShift),
		Ctrl:  ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta),
		Alt:   ebiten.IsKeyPressed(ebiten.KeyAlt),
	}

	clicked := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	doubleClicked := false
	if clicked {
		dx := x - in.lastClickX
		dy := y - in.lastClickY
		if now-in.lastClickAt <= doubleClickSeconds &&
			dx*dx+dy*dy <= doubleClickSlopPx*doubleClickSlopPx {
			doubleClicked = true
			in.lastClickAt = 0
		} else {
			in.lastClickAt = now
		}
		in.lastClickX, in.lastClickY = x, y
	}

	_, wheelY := ebiten.Wheel()

	var keys []host.KeyEvent
	for ebitenKey, logical := range logicalKeys {
		if inpututil.IsKeyJustPressed(ebitenKey) {
			keys = append(keys, host.KeyEvent{Key: logical, Mods: mods})
		}
	}

	return host.Frame{
		CanvasWidth:  canvasW,
		CanvasHeight: canvasH,
		Pointer: host.Pointer{
			X:             x,
			Y:             y,
			Down:          ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
			Clicked:       clicked,
			Released:      inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft),
			DoubleClicked: doubleClicked,
			Wheel:         wheelY,
			Mods:          mods,
		},
		Keys: keys,
		Now:  now,
	}
}
