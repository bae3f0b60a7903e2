package ebihost

import (
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/rollwerk/pianoroll/internal/codec"
	"github.com/rollwerk/pianoroll/internal/widget"
)

// App runs a piano-roll widget as a standalone Ebitengine window: the demo
// host. It loads and saves PPR1 clips and drives a simple transport with
// the space bar.
type App struct {
	Widget *widget.Widget

	drawList *DrawList
	input    *Input

	playback widget.PlaybackState

	clipPath  string
	savePath  string

	width  int
	height int
}

// NewApp builds the demo host around a fresh widget.
func NewApp(cfg widget.Config, clipPath, savePath string) *App {
	a := &App{
		Widget:   widget.New(cfg),
		drawList: NewDrawList(),
		input:    NewInput(),
		playback: widget.NewPlaybackState(),
		clipPath: clipPath,
		savePath: savePath,
		width:    1280,
		height:   720,
	}
	a.playback.TicksPerBeat = cfg.TicksPerBeat
	return a
}

// LoadClip reads a PPR1 file into the widget.
func (a *App) LoadClip(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open: %v", err)
	}
	defer f.Close()
	lanes, err := codec.Decode(f, a.Widget.Notes())
	if err != nil {
		return err
	}
	if len(lanes) > 0 {
		a.Widget.SetCCLanes(lanes)
	}
	return nil
}

// SaveClip writes the widget contents as PPR1.
func (a *App) SaveClip(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create: %v", err)
	}
	defer f.Close()
	return codec.Encode(f, a.Widget.Notes(), a.Widget.CCLanes())
}

func (a *App) Update() error {
	// Space toggles the demo transport.
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		a.playback.Playing = !a.playback.Playing
		if a.playback.Playing {
			a.playback.SetPosition(a.Widget.PlaybackStartTick())
		}
	}
	if a.playback.Playing {
		a.playback.PositionTicks = a.Widget.UpdatePlayback(a.playback.PositionTicks, a.playback.TempoBPM, 1.0/float64(ebiten.TPS()))
	}

	// Ctrl+S saves when a save path is set.
	if a.savePath != "" &&
		inpututil.IsKeyJustPressed(ebiten.KeyS) &&
		ebiten.IsKeyPressed(ebiten.KeyControl) {
		if err := a.SaveClip(a.savePath); err != nil {
			log.Printf("save failed: %v", err)
		} else {
			log.Printf("saved %s", a.savePath)
		}
	}

	frame := a.input.Frame(0, 0, float64(a.width), float64(a.height))
	a.drawList.Reset()
	a.Widget.Draw(frame, a.drawList)
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	a.drawList.Flush(screen)
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	a.width, a.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until it closes.
func (a *App) Run(title string) error {
	if a.clipPath != "" {
		if err := a.LoadClip(a.clipPath); err != nil {
			return fmt.Errorf("could not load %q: %v", a.clipPath, err)
		}
	}
	ebiten.SetWindowSize(a.width, a.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(a)
}
