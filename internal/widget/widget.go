package widget

import (
	"image/color"
	"math"

	"github.com/rollwerk/pianoroll/internal/controller"
	"github.com/rollwerk/pianoroll/internal/coords"
	"github.com/rollwerk/pianoroll/internal/gesture"
	"github.com/rollwerk/pianoroll/internal/host"
	"github.com/rollwerk/pianoroll/internal/model"
	"github.com/rollwerk/pianoroll/internal/snap"
	"github.com/rollwerk/pianoroll/internal/theme"
)

// Zoom bounds used by scrollbar edge-resize and the double-click fit.
const (
	edgeResizeMinPPB = 10.0
	edgeResizeMaxPPB = 500.0
	fitClipMinPPB    = 15.0
	fitClipMaxPPB    = 480.0
)

// Vertical zoom bounds relative to the 20 px/key baseline.
const (
	basePixelsPerKey  = 20.0
	minVerticalZoomPct = 0.60
	maxVerticalZoomPct = 1.25
)

// Edge-scroll tuning while rectangle-selecting near the canvas border.
const (
	edgeScrollMargin    = 60.0
	edgeScrollBaseSpeed = 5.0
	edgeScrollMaxSpeed  = 25.0
)

// wheelScrollSpeed is the vertical pixels per wheel notch.
const wheelScrollSpeed = 30.0

// markerHitPx is the horizontal tolerance for grabbing playback and cue
// markers in the ruler.
const markerHitPx = 8.0

// rulerGesture is the latent pan-or-zoom decision state shared by the ruler
// and note-name column gestures.
type rulerGesture struct {
	active     bool
	panActive  bool
	zoomActive bool

	startX, startY     float64 // updated while panning
	initialX, initialY float64 // fixed at mouse-down
	startViewport      float64
	startZoom          float64
	anchor             float64
}

// Widget is the piano-roll orchestrator. Construct once per host widget
// instance and call Draw every frame from the host UI thread.
type Widget struct {
	cfg Config

	notes    *model.NoteStore
	cs       *coords.CoordinateSystem
	snap     *snap.System
	theme    theme.Theme
	pointer  *controller.Pointer
	keyboard *controller.Keyboard

	loop        *gesture.LoopMarker
	loopEnabled bool

	hScrollbar   *gesture.Scrollbar
	exploredMinX float64
	exploredMaxX float64

	ccLanes      []*model.ControlLane
	activeCCLane int
	showCCLane   bool
	ccDragging   bool
	ccDragIndex  int

	clipStartTick model.Tick
	clipEndTick   model.Tick

	playbackStartTick model.Tick
	showPlaybackStart bool
	cueLeftTick       model.Tick
	cueRightTick      model.Tick
	showCueMarkers    bool

	draggingPlaybackStart bool
	draggingCueLeft       bool
	draggingCueRight      bool

	playheadTick model.Tick
	hasPlayhead  bool

	playheadAutoScroll       bool
	playheadAutoScrollMargin float64

	ruler     rulerGesture
	noteNames rulerGesture

	hasHoveredPianoKey bool
	hoveredPianoKey    model.MidiKey
	hasPressedPianoKey bool
	pressedPianoKey    model.MidiKey
	pianoKeyActive     bool
	pianoKeyFlashUntil float64

	hasLastClickedCell   bool
	lastClickedTickStart model.Tick
	lastClickedTickEnd   model.Tick
	lastClickedKey       model.MidiKey

	showDebugCrosshair bool
	debugMouseX        float64
	debugMouseY        float64

	canvasW float64
	canvasH float64
	now     float64

	// Host callbacks, fired synchronously during Draw.
	OnPlayheadChanged        func(model.Tick)
	OnPlaybackMarkersChanged func(start, cueLeft, cueRight model.Tick)
	OnPianoKeyPressed        func(model.MidiKey)
	OnPianoKeyReleased       func(model.MidiKey)
}

// New builds a widget with the given configuration.
func New(cfg Config) *Widget {
	if cfg.TicksPerBeat <= 0 {
		cfg.TicksPerBeat = 480
	}
	if cfg.BeatsPerMeasure <= 0 {
		cfg.BeatsPerMeasure = 4
	}

	w := &Widget{
		cfg:          cfg,
		notes:        model.NewNoteStore(),
		cs:           coords.New(cfg.PianoKeyWidth),
		snap:         snap.New(cfg.TicksPerBeat),
		theme:        theme.Default(),
		activeCCLane: 0,
		showCCLane:   cfg.ShowCCLane,
		ccDragIndex:  -1,

		playheadAutoScrollMargin: 100,
		showDebugCrosshair:       false,
		debugMouseX:              -1,
		debugMouseY:              -1,
	}

	w.cs.SetTicksPerBeat(cfg.TicksPerBeat)
	w.cs.SetViewportSize(800, 400)
	w.snap.SetBeatsPerMeasure(cfg.BeatsPerMeasure)

	w.pointer = controller.NewPointer(w.notes, w.cs, w.snap)
	w.pointer.SetEdgeThresholdPx(10)
	w.pointer.SetDragThresholdPx(4)
	w.pointer.SetEnableCtrlDragDuplicate(true)
	w.keyboard = controller.NewKeyboard(w.notes, w.snap, w.cs)

	tpb := model.Tick(cfg.TicksPerBeat)
	w.loop = gesture.NewLoopMarker(w.cs, 4*tpb, 8*tpb)
	w.loop.SetLayout(cfg.TopPadding, cfg.RulerHeight, cfg.PianoKeyWidth)
	w.loop.Rect.Visible = false
	w.loop.Rect.Enabled = false

	w.clipStartTick = 0
	w.clipEndTick = model.Tick(cfg.DefaultClipBars) * model.Tick(cfg.BeatsPerMeasure) * tpb

	vp := w.cs.Viewport()
	w.exploredMinX = vp.X
	w.exploredMaxX = vp.X + vp.Width

	w.hScrollbar = gesture.NewScrollbar(gesture.Horizontal)
	w.hScrollbar.OnScrollUpdate = w.handleScrollbarScroll
	w.hScrollbar.OnEdgeResize = w.handleScrollbarEdgeResize
	w.hScrollbar.OnDoubleClick = w.handleScrollbarDoubleClick
	w.hScrollbar.OnDragEnd = w.handleScrollbarDragEnd

	// One default CC lane: mod wheel.
	w.ccLanes = append(w.ccLanes, model.NewControlLane(1))

	w.cs.CenterOnKey(cfg.InitialCenterKey)

	return w
}

// Core component access for host-side configuration.
func (w *Widget) Notes() *model.NoteStore           { return w.notes }
func (w *Widget) Coords() *coords.CoordinateSystem  { return w.cs }
func (w *Widget) Snap() *snap.System                { return w.snap }
func (w *Widget) Theme() *theme.Theme               { return &w.theme }
func (w *Widget) SetTheme(t theme.Theme)            { w.theme = t }
func (w *Widget) Keyboard() *controller.Keyboard    { return w.keyboard }
func (w *Widget) Pointer() *controller.Pointer      { return w.pointer }

// SetClipColor derives note, border, and drag-preview colours from one clip
// colour.
func (w *Widget) SetClipColor(clip color.NRGBA) {
	w.theme.ApplyClipColor(clip)
}

// CC lane access.
func (w *Widget) CCLanes() []*model.ControlLane { return w.ccLanes }

func (w *Widget) SetCCLanes(lanes []*model.ControlLane) {
	w.ccLanes = lanes
	if w.activeCCLane >= len(lanes) {
		w.activeCCLane = len(lanes) - 1
	}
	if w.activeCCLane < 0 && len(lanes) > 0 {
		w.activeCCLane = 0
	}
}

func (w *Widget) ActiveCCLaneIndex() int { return w.activeCCLane }

func (w *Widget) SetActiveCCLaneIndex(index int) {
	if index < 0 || index >= len(w.ccLanes) {
		w.activeCCLane = -1
		return
	}
	w.activeCCLane = index
}

func (w *Widget) ShowCCLane() bool       { return w.showCCLane }
func (w *Widget) SetShowCCLane(on bool)  { w.showCCLane = on }

// Playback markers.
func (w *Widget) SetPlaybackStartTick(tick model.Tick) {
	w.playbackStartTick = tick
	w.showPlaybackStart = true
	w.fireMarkersChanged()
}

func (w *Widget) PlaybackStartTick() model.Tick { return w.playbackStartTick }

func (w *Widget) SetCueMarkers(left, right model.Tick) {
	if left > right {
		left, right = right, left
	}
	w.cueLeftTick, w.cueRightTick = left, right
	w.showCueMarkers = true
	w.fireMarkersChanged()
}

func (w *Widget) CueMarkers() (model.Tick, model.Tick) {
	return w.cueLeftTick, w.cueRightTick
}

func (w *Widget) fireMarkersChanged() {
	if w.OnPlaybackMarkersChanged != nil {
		w.OnPlaybackMarkersChanged(w.playbackStartTick, w.cueLeftTick, w.cueRightTick)
	}
}

// Loop region.
func (w *Widget) SetLoopEnabled(enabled bool) {
	w.loopEnabled = enabled
	w.loop.Rect.Enabled = enabled
	w.loop.Rect.Visible = enabled
}

func (w *Widget) LoopEnabled() bool { return w.loopEnabled }

func (w *Widget) SetLoopRange(start, end model.Tick) {
	w.loop.SetTickRange(start, end)
}

func (w *Widget) LoopRange() (model.Tick, model.Tick) {
	return w.loop.TickRange()
}

// Playhead.
func (w *Widget) SetPlayhead(tick model.Tick) {
	if tick < 0 {
		tick = 0
	}
	w.playheadTick = tick
	w.hasPlayhead = true
	if w.OnPlayheadChanged != nil {
		w.OnPlayheadChanged(tick)
	}
}

func (w *Widget) ClearPlayhead()            { w.hasPlayhead = false }
func (w *Widget) HasPlayhead() bool         { return w.hasPlayhead }
func (w *Widget) PlayheadTick() model.Tick  { return w.playheadTick }

// SetPlayheadAutoScroll keeps the playhead inside a margin by scrolling.
func (w *Widget) SetPlayheadAutoScroll(on bool) { w.playheadAutoScroll = on }

// SetShowDebugCrosshair toggles the development cursor overlay.
func (w *Widget) SetShowDebugCrosshair(on bool) { w.showDebugCrosshair = on }

// Hover information for host overlays.
func (w *Widget) HoveredNote() (model.NoteID, controller.HoverEdge, bool) {
	h := w.pointer.Hover()
	if !h.HasNote {
		return 0, controller.HoverNone, false
	}
	return h.NoteID, h.Edge, true
}

func (w *Widget) DraggingNote() bool    { return w.pointer.DraggingNote() }
func (w *Widget) ResizingNote() bool    { return w.pointer.ResizingNote() }
func (w *Widget) DuplicatingNotes() bool { return w.pointer.Duplicating() }

// SnapInfo returns a human-readable snap status for host status bars.
func (w *Widget) SnapInfo() string { return w.snap.Info() }

// ExploredRange returns the horizontal world range the scrollbar thumb is
// sized against.
func (w *Widget) ExploredRange() (min, max float64) {
	return w.exploredMinX, w.exploredMaxX
}

// Clip bounds drive the ruler brackets and the scrollbar fit.
func (w *Widget) SetClipBounds(start, end model.Tick) {
	if end < start {
		start, end = end, start
	}
	minLength := model.Tick(w.cs.TicksPerBeat())
	if end < start+minLength {
		end = start + minLength
	}
	w.clipStartTick, w.clipEndTick = start, end
}

func (w *Widget) ClipBounds() (model.Tick, model.Tick) {
	return w.clipStartTick, w.clipEndTick
}

// SetTicksPerBeat keeps coordinate system and snapping in sync, preserving
// the bar-relative default clip length.
func (w *Widget) SetTicksPerBeat(ticks int) {
	if ticks <= 0 {
		return
	}
	w.cs.SetTicksPerBeat(ticks)
	w.snap.SetTicksPerBeat(ticks)
	w.clipEndTick = model.Tick(w.cfg.DefaultClipBars) * model.Tick(w.cfg.BeatsPerMeasure) * model.Tick(ticks)
}

// UpdatePlayback advances a host-held playback position by deltaSeconds at
// the given tempo, applying the loop region when enabled, and moves the
// playhead there.
func (w *Widget) UpdatePlayback(current model.Tick, tempoBPM, deltaSeconds float64) model.Tick {
	loopOn := w.loopEnabled
	var loopStart, loopEnd model.Tick
	if loopOn {
		loopStart, loopEnd = w.loop.TickRange()
		if loopEnd <= loopStart {
			loopOn = false
		}
	}
	next := AdvancePlayback(current, tempoBPM, w.cs.TicksPerBeat(), deltaSeconds, loopOn, loopStart, loopEnd)
	w.SetPlayhead(next)
	return w.playheadTick
}

// SelectionBounds returns the tick/key extent of the selection.
func (w *Widget) SelectionBounds() (minTick, maxTick model.Tick, minKey, maxKey model.MidiKey, ok bool) {
	for _, n := range w.notes.Notes() {
		if !n.Selected {
			continue
		}
		if !ok {
			ok = true
			minTick, maxTick = n.Tick, n.EndTick()
			minKey, maxKey = n.Key, n.Key
			continue
		}
		if n.Tick < minTick {
			minTick = n.Tick
		}
		if n.EndTick() > maxTick {
			maxTick = n.EndTick()
		}
		if n.Key < minKey {
			minKey = n.Key
		}
		if n.Key > maxKey {
			maxKey = n.Key
		}
	}
	return
}

// FitViewToClip applies the scrollbar double-click behaviour.
func (w *Widget) FitViewToClip() { w.handleScrollbarDoubleClick() }

// FitViewToSelection zooms and scrolls so the selection fills the view with
// a small padding. No-op when nothing is selected.
func (w *Widget) FitViewToSelection() {
	minTick, maxTick, minKey, maxKey, ok := w.SelectionBounds()
	if !ok {
		return
	}
	vp := w.cs.Viewport()
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}

	hPad := vp.Width * 0.05

	beats := float64(maxTick-minTick) / float64(w.cs.TicksPerBeat())
	w.cs.SetPixelsPerBeat((vp.Width - 2*hPad) / math.Max(beats, 1e-6))

	left := w.cs.TickToWorld(minTick) - hPad
	topY := w.cs.KeyToWorldY(maxKey)
	bottomY := w.cs.KeyToWorldY(minKey) + w.cs.KeyHeight()

	centerY := (topY + bottomY) / 2
	w.cs.SetScroll(left, centerY-vp.Height/2)
	w.expandExploredArea(left)
	w.updateScrollbarGeometry()
}

// Draw runs one frame: update viewport and explored area, render all
// layers, route input by gesture priority, then draw the overlay. The host
// must call it once per frame with the current canvas and input state.
func (w *Widget) Draw(frame host.Frame, dl host.DrawList) {
	if frame.CanvasWidth <= 0 || frame.CanvasHeight <= 0 {
		return
	}
	w.canvasW = frame.CanvasWidth
	w.canvasH = frame.CanvasHeight
	w.now = frame.Now

	if w.hasPressedPianoKey && w.now >= w.pianoKeyFlashUntil {
		w.hasPressedPianoKey = false
	}

	vpWidth := frame.CanvasWidth - w.cs.PianoKeyWidth()
	if vpWidth < 100 {
		vpWidth = 100
	}
	w.cs.SetViewportSize(vpWidth, frame.CanvasHeight)

	w.updateExploredAreaForNotes()
	w.updateScrollbarGeometry()

	w.render(dl)

	if w.playheadAutoScroll && w.hasPlayhead {
		w.autoScrollToPlayhead()
	}

	w.handlePointer(frame)
	w.handleKeyboard(frame)

	w.renderOverlay(dl)
	w.renderDebug(dl)
}

func (w *Widget) autoScrollToPlayhead() {
	ppb := w.cs.PixelsPerBeat()
	if ppb <= 0 {
		return
	}
	playheadX := w.cs.TickToWorld(w.playheadTick)
	vp := w.cs.Viewport()
	margin := w.playheadAutoScrollMargin

	switch {
	case playheadX < vp.X+margin:
		newX := playheadX - margin
		w.cs.SetScroll(newX, vp.Y)
		w.expandExploredArea(newX)
		w.updateScrollbarGeometry()
	case playheadX > vp.X+vp.Width-margin:
		newX := playheadX - vp.Width + margin
		w.cs.SetScroll(newX, vp.Y)
		w.expandExploredArea(newX)
		w.updateScrollbarGeometry()
	}
}

// laneBand returns the CC lane's vertical band in canvas-local pixels.
func (w *Widget) laneBand() (top, bottom float64) {
	laneHeight := w.cfg.CCLaneHeight
	if laneHeight <= 0 || laneHeight > w.canvasH*0.8 {
		laneHeight = w.canvasH * 0.25
	}
	return w.canvasH - laneHeight, w.canvasH
}

func (w *Widget) inRuler(x, y float64) bool {
	return x >= w.cs.PianoKeyWidth() &&
		y >= w.cfg.TopPadding && y <= w.cfg.TopPadding+w.cfg.RulerHeight
}

// handlePointer routes one frame of pointer input through the gesture
// priority order. The first gesture that claims the event consumes it.
func (w *Widget) handlePointer(frame host.Frame) {
	p := frame.Pointer
	if p.X < 0 || p.X > w.canvasW || p.Y < 0 || p.Y > w.canvasH {
		return
	}
	mods := p.Mods
	laneTop, laneBottom := w.laneBand()

	// Mouse wheel scrolls vertically only.
	if p.Wheel != 0 {
		vp := w.cs.Viewport()
		w.cs.SetScroll(vp.X, vp.Y-p.Wheel*wheelScrollSpeed)
	}

	w.debugMouseX, w.debugMouseY = p.X, p.Y

	// 1. An active playback-marker drag owns the pointer.
	if w.draggingPlaybackStart || w.draggingCueLeft || w.draggingCueRight {
		w.updateMarkerDrag(p, mods)
		return
	}

	// 2. An active loop drag/resize owns the pointer.
	if w.inRuler(p.X, p.Y) && w.loopEnabled && w.loop.Rect.Visible {
		w.loop.Rect.MouseMove(p.X, p.Y)
	} else if !w.loop.Rect.State.Active() {
		w.loop.Rect.State = gesture.Idle
	}
	if w.loop.Rect.State.Active() {
		if p.Down {
			w.loop.Rect.MouseDrag(p.X, p.Y)
		}
		if p.Released {
			w.loop.Rect.MouseUp(p.X, p.Y)
		}
		return
	}

	// 3. Ruler mouse-down: markers first, then loop, then a latent
	// pan-or-zoom gesture.
	if p.Clicked && w.inRuler(p.X, p.Y) {
		if w.beginMarkerDrag(p.X) {
			return
		}
		if w.loop.Rect.MouseDown(p.X, p.Y) {
			return
		}
		w.ruler = rulerGesture{
			active:        true,
			startX:        p.X,
			startY:        p.Y,
			initialX:      p.X,
			initialY:      p.Y,
			startViewport: w.cs.Viewport().X,
			startZoom:     w.cs.PixelsPerBeat(),
		}
	}

	// 4. Note-name-column mouse-down: latent vertical pan-or-zoom.
	if p.Clicked && p.X >= 0 && p.X <= w.cfg.NoteLabelWidth &&
		p.Y >= w.cfg.TopPadding+w.cfg.RulerHeight {
		w.noteNames = rulerGesture{
			active:        true,
			startX:        p.X,
			startY:        p.Y,
			initialX:      p.X,
			initialY:      p.Y,
			startViewport: w.cs.Viewport().Y,
			startZoom:     w.cs.KeyHeight(),
			anchor:        p.Y,
		}
	}

	// 5. Scrollbar events are forwarded unconditionally; it hit-tests its
	// own track geometry.
	w.hScrollbar.HandleMouseMove(p.X, p.Y)
	scrollbarHandled := false
	if p.Clicked {
		scrollbarHandled = w.hScrollbar.HandleMouseDown(p.X, p.Y, frame.Now)
	}
	if p.Released {
		w.hScrollbar.HandleMouseUp(p.X, p.Y)
	}
	scrollbarBusy := scrollbarHandled || w.hScrollbar.Thumb.State.Active() || w.hScrollbar.EdgeResizing()

	// 6. Active ruler gesture: pan vs horizontal zoom after threshold.
	if w.ruler.active {
		if p.Down {
			w.updateRulerGesture(p)
		}
		if p.Released {
			if !w.ruler.panActive && !w.ruler.zoomActive && w.inRuler(p.X, p.Y) {
				worldX, _ := w.cs.ScreenToWorld(p.X, 0)
				w.SetPlayhead(w.cs.WorldToTick(worldX))
			}
			w.ruler = rulerGesture{}
		}
		return
	}

	// 7. Active note-name gesture: vertical pan or zoom.
	if w.noteNames.active {
		if p.Down {
			w.updateNoteNamesGesture(p)
		}
		if p.Released {
			w.noteNames = rulerGesture{}
		}
		return
	}

	if scrollbarBusy {
		return
	}

	// Track the clicked cell and piano-key presses for overlays/callbacks.
	if p.Clicked {
		w.trackClickedCell(p.X, p.Y, laneTop)
		w.trackPianoKeyPress(p.X, p.Y, laneTop)
	}
	w.updatePianoKeyHover(p.X, p.Y, laneTop)

	// 8. CC lane editing.
	inCCLane := w.showCCLane && p.Y >= laneTop && p.Y <= laneBottom
	if inCCLane && w.activeCCLane >= 0 && w.activeCCLane < len(w.ccLanes) {
		w.handleCCPointer(p, laneTop, laneBottom, mods)
		return
	}

	// 9. Grid area: the pointer controller.
	if p.Clicked {
		w.pointer.MouseDown(p.X, p.Y, mods)
	}
	if p.Released {
		w.pointer.MouseUp(p.X, p.Y, mods)
		if w.pianoKeyActive {
			w.pianoKeyActive = false
			if w.OnPianoKeyReleased != nil {
				w.OnPianoKeyReleased(w.pressedPianoKey)
			}
		}
	}
	if p.Down {
		// 10. Edge scrolling while a rectangle selection is near the border.
		if w.pointer.HasSelectionRectangle() {
			w.checkRectangleEdgeScrolling(p.X, p.Y)
		}
		w.pointer.MouseMove(p.X, p.Y, mods)
	} else {
		w.pointer.MouseMove(p.X, p.Y, mods)
	}
	if p.DoubleClicked {
		w.pointer.DoubleClick(p.X, p.Y, mods)
	}
}

// updateMarkerDrag moves the held playback or cue marker, snapping unless
// Shift is down, and fires the changed callback on release.
func (w *Widget) updateMarkerDrag(p host.Pointer, mods host.Modifiers) {
	if p.Down {
		worldX, _ := w.cs.ScreenToWorld(p.X, 0)
		tick := w.cs.WorldToTick(worldX)
		if !mods.Shift {
			tick = w.snap.SnapTick(tick)
		}
		switch {
		case w.draggingPlaybackStart:
			if tick < 0 {
				tick = 0
			}
			w.playbackStartTick = tick
		case w.draggingCueLeft:
			w.cueLeftTick = tick
			if w.cueRightTick < w.cueLeftTick {
				w.cueRightTick = w.cueLeftTick
			}
		case w.draggingCueRight:
			w.cueRightTick = tick
			if w.cueRightTick < w.cueLeftTick {
				w.cueLeftTick = w.cueRightTick
			}
		}
	}
	if p.Released {
		w.draggingPlaybackStart = false
		w.draggingCueLeft = false
		w.draggingCueRight = false
		w.fireMarkersChanged()
	}
}

// markerScreenX returns a marker's canvas X if it is inside the grid area.
func (w *Widget) markerScreenX(tick model.Tick) (float64, bool) {
	x, _ := w.cs.WorldToScreen(w.cs.TickToWorld(tick), 0)
	gridLeft := w.cs.PianoKeyWidth()
	gridRight := w.cs.PianoKeyWidth() + w.cs.Viewport().Width
	if x < gridLeft || x > gridRight {
		return 0, false
	}
	return x, true
}

// beginMarkerDrag hit-tests playback start first, then the cue markers.
func (w *Widget) beginMarkerDrag(mouseX float64) bool {
	if w.showPlaybackStart {
		if x, ok := w.markerScreenX(w.playbackStartTick); ok && math.Abs(mouseX-x) <= markerHitPx {
			w.draggingPlaybackStart = true
			return true
		}
	}
	if w.showCueMarkers {
		if x, ok := w.markerScreenX(w.cueLeftTick); ok && math.Abs(mouseX-x) <= markerHitPx {
			w.draggingCueLeft = true
			return true
		}
		if x, ok := w.markerScreenX(w.cueRightTick); ok && math.Abs(mouseX-x) <= markerHitPx {
			w.draggingCueRight = true
			return true
		}
	}
	return false
}

// updateRulerGesture decides pan vs horizontal zoom once movement exceeds
// 3 px, then applies the committed gesture.
func (w *Widget) updateRulerGesture(p host.Pointer) {
	g := &w.ruler
	if !g.panActive && !g.zoomActive {
		dx := math.Abs(p.X - g.initialX)
		dy := math.Abs(p.Y - g.initialY)
		if dx > 3 || dy > 3 {
			if dx > dy*1.5 {
				g.panActive = true
			} else {
				g.zoomActive = true
				g.anchor = g.initialX
			}
		}
	}

	if g.panActive {
		// Drag left moves the view right.
		delta := -(p.X - g.startX)
		newX := g.startViewport + delta
		w.cs.SetScroll(newX, w.cs.Viewport().Y)
		w.expandExploredArea(newX)
		g.startX = p.X
		g.startViewport = w.cs.Viewport().X
		return
	}

	if g.zoomActive {
		// Vertical movement drives the zoom factor.
		deltaY := p.Y - g.initialY
		factor := 1 + deltaY*0.01
		newPPB := g.startZoom * factor
		newPPB = math.Max(coords.MinPixelsPerBeat, math.Min(coords.MaxPixelsPerBeat, newPPB))

		oldPPB := w.cs.PixelsPerBeat()
		oldViewportX := w.cs.Viewport().X
		mouseXInView := g.anchor - w.cs.PianoKeyWidth()
		beatsUnderMouse := (oldViewportX + mouseXInView) / oldPPB

		w.cs.SetPixelsPerBeat(newPPB)
		newX := beatsUnderMouse*newPPB - mouseXInView
		w.cs.SetScroll(newX, w.cs.Viewport().Y)
		w.expandExploredArea(newX)
	}
}

// updateNoteNamesGesture is the vertical counterpart: pan is inverted
// (drag down scrolls up) and zoom is clamped around the 20 px/key baseline.
func (w *Widget) updateNoteNamesGesture(p host.Pointer) {
	g := &w.noteNames
	if !g.panActive && !g.zoomActive {
		dx := math.Abs(p.X - g.initialX)
		dy := math.Abs(p.Y - g.initialY)
		if dx > 3 || dy > 3 {
			if dy > dx*1.5 {
				g.panActive = true
			} else {
				g.zoomActive = true
				g.startZoom = w.cs.KeyHeight()
			}
		}
	}

	if g.panActive {
		delta := -(p.Y - g.startY)
		w.cs.SetScroll(w.cs.Viewport().X, g.startViewport+delta)
		g.startY = p.Y
		g.startViewport = w.cs.Viewport().Y
		return
	}

	if g.zoomActive {
		deltaX := p.X - g.initialX
		factor := 1 + deltaX*0.01
		newPPK := g.startZoom * factor
		minPPK := basePixelsPerKey * minVerticalZoomPct
		maxPPK := basePixelsPerKey * maxVerticalZoomPct
		newPPK = math.Max(minPPK, math.Min(maxPPK, newPPK))

		oldPPK := w.cs.KeyHeight()
		oldViewportY := w.cs.Viewport().Y

		viewHeight := w.cs.Viewport().Height - (w.cfg.TopPadding + w.cfg.RulerHeight + w.cfg.FooterHeight)
		if viewHeight <= 0 {
			viewHeight = w.cs.Viewport().Height
		}
		contentTop := w.cfg.TopPadding + w.cfg.RulerHeight
		anchorFrac := (g.anchor - contentTop) / viewHeight
		anchorFrac = math.Max(0, math.Min(1, anchorFrac))

		totalKeys := float64(w.cs.TotalKeys())
		oldVisibleKeys := viewHeight / oldPPK
		oldTopKey := totalKeys - 1 - oldViewportY/oldPPK
		anchorKey := oldTopKey - anchorFrac*oldVisibleKeys

		w.cs.SetKeyHeight(newPPK)

		newVisibleKeys := viewHeight / newPPK
		newTopKey := anchorKey + anchorFrac*newVisibleKeys
		newViewportY := (totalKeys - 1 - newTopKey) * newPPK
		w.cs.SetScroll(w.cs.Viewport().X, newViewportY)
	}
}

// trackClickedCell records the beat-by-key cell under a grid click for the
// debug overlay.
func (w *Widget) trackClickedCell(x, y, laneTop float64) {
	inGridX := x >= w.cs.PianoKeyWidth()
	inGridY := y >= w.cfg.TopPadding+w.cfg.RulerHeight && (!w.showCCLane || y < laneTop)
	if !inGridX || !inGridY {
		w.hasLastClickedCell = false
		return
	}

	worldX, worldY := w.cs.ScreenToWorld(x, y)
	beat := worldX / w.cs.PixelsPerBeat()
	snapBeat := 0
	if beat >= 0 {
		snapBeat = int(beat)
	}
	tickStart := model.Tick(snapBeat) * model.Tick(w.cs.TicksPerBeat())

	keyFromTop := int(worldY / w.cs.KeyHeight())
	key := w.cs.TotalKeys() - 1 - keyFromTop
	if key < 0 || key >= w.cs.TotalKeys() {
		w.hasLastClickedCell = false
		return
	}
	w.hasLastClickedCell = true
	w.lastClickedTickStart = tickStart
	w.lastClickedTickEnd = tickStart + model.Tick(w.cs.TicksPerBeat())
	w.lastClickedKey = key
}

// pianoKeyFlashSeconds is how long a pressed key stays highlighted.
const pianoKeyFlashSeconds = 0.15

func (w *Widget) inPianoKeyArea(x, y, laneTop float64) bool {
	return x >= w.cfg.NoteLabelWidth && x < w.cs.PianoKeyWidth() &&
		y >= w.cfg.TopPadding+w.cfg.RulerHeight && (!w.showCCLane || y < laneTop)
}

func (w *Widget) trackPianoKeyPress(x, y, laneTop float64) {
	if !w.inPianoKeyArea(x, y, laneTop) {
		w.hasPressedPianoKey = false
		w.pianoKeyActive = false
		return
	}
	_, worldY := w.cs.ScreenToWorld(x, y)
	key := w.cs.WorldYToKey(worldY)
	w.pressedPianoKey = key
	w.hasPressedPianoKey = true
	w.pianoKeyActive = true
	w.pianoKeyFlashUntil = w.now + pianoKeyFlashSeconds
	if w.OnPianoKeyPressed != nil {
		w.OnPianoKeyPressed(key)
	}
}

func (w *Widget) updatePianoKeyHover(x, y, laneTop float64) {
	if !w.inPianoKeyArea(x, y, laneTop) {
		w.hasHoveredPianoKey = false
		return
	}
	_, worldY := w.cs.ScreenToWorld(x, y)
	w.hoveredPianoKey = w.cs.WorldYToKey(worldY)
	w.hasHoveredPianoKey = true
}

// handleCCPointer edits the active CC lane: Ctrl-click deletes a nearby
// point, a click near a point starts dragging it, a click elsewhere adds
// one. Dragging updates both tick and value.
func (w *Widget) handleCCPointer(p host.Pointer, laneTop, laneBottom float64, mods host.Modifiers) {
	laneHeight := laneBottom - laneTop
	if laneHeight <= 0 {
		return
	}
	lane := w.ccLanes[w.activeCCLane]

	// Map y to a CC value: 0 at the bottom, 127 at the top.
	t := (p.Y - laneTop) / laneHeight
	t = math.Max(0, math.Min(1, t))
	ccValue := int((1-t)*127 + 0.5)

	worldX, _ := w.cs.ScreenToWorld(p.X, 0)
	tick := w.cs.WorldToTick(worldX)
	if !mods.Shift {
		tick, _ = w.snap.MagneticSnap(tick, w.cs.PixelsPerBeat(), snap.DefaultMagneticRangePx)
	}

	threshold := model.Tick(w.cs.TicksPerBeat() / 16)

	if p.Clicked {
		if mods.Ctrl {
			if lane.RemoveNear(tick, threshold) {
				return
			}
		}
		if idx := lane.IndexNear(tick, threshold); idx >= 0 {
			w.ccDragging = true
			w.ccDragIndex = idx
			lane.SetValue(idx, ccValue)
			return
		}
		lane.AddPoint(tick, ccValue)
		w.ccDragging = false
		w.ccDragIndex = -1
		return
	}

	if p.Down && w.ccDragging && w.ccDragIndex >= 0 {
		lane.SetValue(w.ccDragIndex, ccValue)
		lane.SetTick(w.ccDragIndex, tick)
		// Re-sorting may have moved the point; follow it.
		if idx := lane.IndexNear(tick, 0); idx >= 0 {
			w.ccDragIndex = idx
		}
	}

	if p.Released {
		w.ccDragging = false
		w.ccDragIndex = -1
	}
}

// checkRectangleEdgeScrolling scrolls the view while a rectangle selection
// drags near the canvas border, speeding up with distance into the margin.
func (w *Widget) checkRectangleEdgeScrolling(x, y float64) bool {
	vp := w.cs.Viewport()
	widgetWidth := w.cs.PianoKeyWidth() + vp.Width
	widgetHeight := vp.Height

	leftEdge := w.cs.PianoKeyWidth() + edgeScrollMargin
	rightEdge := widgetWidth - edgeScrollMargin
	topEdge := w.cfg.TopPadding + w.cfg.RulerHeight + edgeScrollMargin
	bottomEdge := widgetHeight - w.cfg.FooterHeight - w.hScrollbar.TrackSize - edgeScrollMargin

	speed := func(distance float64) float64 {
		v := edgeScrollBaseSpeed + distance/20*30
		if v > edgeScrollMaxSpeed {
			v = edgeScrollMaxSpeed
		}
		return v
	}

	var hScroll, vScroll float64
	if x < leftEdge {
		hScroll = -speed(leftEdge - x)
	} else if x > rightEdge {
		hScroll = speed(x - rightEdge)
	}
	if y < topEdge {
		vScroll = -speed(topEdge - y)
	} else if y > bottomEdge {
		vScroll = speed(y - bottomEdge)
	}

	if hScroll == 0 && vScroll == 0 {
		return false
	}
	newX := w.cs.Viewport().X + hScroll
	newY := w.cs.Viewport().Y + vScroll
	w.cs.SetScroll(newX, newY)
	w.expandExploredArea(newX)
	w.updateScrollbarGeometry()
	return true
}

func (w *Widget) handleKeyboard(frame host.Frame) {
	moved := false
	for _, ev := range frame.Keys {
		consumed := w.keyboard.HandleKey(ev)
		if consumed && (ev.Key == host.KeyUp || ev.Key == host.KeyDown || ev.Key == host.KeyLeft || ev.Key == host.KeyRight) {
			moved = true
		}
	}
	if moved {
		w.ensureSelectedNotesVisible()
	}
}

// ensureSelectedNotesVisible scrolls minimally so the selection is in view.
func (w *Widget) ensureSelectedNotesVisible() {
	minTick, maxTick, minKey, maxKey, ok := w.SelectionBounds()
	if !ok {
		return
	}

	minX := w.cs.TickToWorld(minTick)
	maxX := w.cs.TickToWorld(maxTick)
	topY := w.cs.KeyToWorldY(maxKey)
	bottomY := w.cs.KeyToWorldY(minKey) + w.cs.KeyHeight()

	vp := w.cs.Viewport()
	newX, newY := vp.X, vp.Y

	if minX < vp.X {
		newX = minX
	} else if maxX > vp.X+vp.Width {
		newX = maxX - vp.Width
	}
	if topY < vp.Y {
		newY = math.Max(topY, 0)
	} else if bottomY > vp.Y+vp.Height {
		newY = bottomY - vp.Height
	}

	if newX != vp.X || newY != vp.Y {
		w.cs.SetScroll(newX, newY)
		w.expandExploredArea(newX)
		w.updateScrollbarGeometry()
	}
}

// updateScrollbarGeometry places the track along the bottom of the canvas
// and syncs viewport size and scroll position into it.
func (w *Widget) updateScrollbarGeometry() {
	if w.canvasW <= 0 || w.canvasH <= 0 {
		return
	}
	x := w.cs.PianoKeyWidth()
	length := w.canvasW - w.cs.PianoKeyWidth()
	y := w.canvasH - w.hScrollbar.TrackSize
	w.hScrollbar.UpdateGeometry(x, y, length)

	vp := w.cs.Viewport()
	w.hScrollbar.SetViewportSize(vp.Width)
	w.hScrollbar.SetScrollPosition(vp.X)
}

// handleScrollbarScroll applies a thumb drag to the viewport without
// clamping; negative positions are valid.
func (w *Widget) handleScrollbarScroll(newScroll float64) {
	w.cs.SetViewportX(newScroll)
}

// handleScrollbarEdgeResize turns a thumb-edge drag into a zoom anchored at
// the opposite edge of the viewport, then re-expands the explored area so
// the thumb ratio is preserved.
func (w *Widget) handleScrollbarEdgeResize(edge string, _ float64) {
	mx, _, mw, _, ok := w.hScrollbar.ManualThumb()
	if !ok {
		return
	}
	track := w.hScrollbar.TrackBounds()
	trackWidth := track.Width()
	thumbXRel := mx - track.Left
	thumbWidth := mw
	if trackWidth <= 0 || thumbWidth <= 0 {
		return
	}

	thumbRatio := thumbWidth / trackWidth
	screenWidth := w.cs.Viewport().Width
	oldScrollX := w.cs.Viewport().X
	oldPPB := math.Max(w.cs.PixelsPerBeat(), 1e-6)
	tpb := float64(w.cs.TicksPerBeat())

	exploredMinTick := w.exploredMinX / oldPPB * tpb
	exploredMaxTick := w.exploredMaxX / oldPPB * tpb
	exploredTickSpan := math.Max(1e-6, exploredMaxTick-exploredMinTick)

	newViewportTickSpan := math.Max(1e-6, thumbRatio*exploredTickSpan)
	newPPB := screenWidth * tpb / newViewportTickSpan
	newPPB = math.Max(edgeResizeMinPPB, math.Min(edgeResizeMaxPPB, newPPB))

	// Dragging the left edge anchors the right side of the viewport, and
	// vice versa.
	anchorScreenX := 0.0
	if edge == "left" {
		anchorScreenX = screenWidth
	}
	anchorTick := (oldScrollX + anchorScreenX) / oldPPB * tpb

	w.cs.SetPixelsPerBeat(newPPB)
	newScrollX := anchorTick/tpb*newPPB - anchorScreenX

	// No clamping here; the explored area expands instead.
	w.expandExploredArea(newScrollX)
	w.cs.SetViewportX(newScrollX)

	// Re-derive the explored range so the thumb keeps its dragged ratio.
	exploredRange := screenWidth / math.Max(1e-6, thumbRatio)
	available := math.Max(1, trackWidth-thumbWidth)
	scrollNorm := math.Max(0, math.Min(1, thumbXRel/available))
	w.exploredMinX = newScrollX - scrollNorm*(exploredRange-screenWidth)
	w.exploredMaxX = w.exploredMinX + exploredRange
	w.hScrollbar.SetExploredArea(w.exploredMinX, w.exploredMaxX)
}

// handleScrollbarDoubleClick fits the view to the clip bounds.
func (w *Widget) handleScrollbarDoubleClick() {
	vp := w.cs.Viewport()
	tpb := w.cs.TicksPerBeat()

	if w.clipEndTick > w.clipStartTick {
		clipBeats := float64(w.clipEndTick-w.clipStartTick) / float64(tpb)
		newPPB := vp.Width / clipBeats
		newPPB = math.Max(fitClipMinPPB, math.Min(fitClipMaxPPB, newPPB))

		w.cs.SetPixelsPerBeat(newPPB)
		w.cs.SetViewportX(w.cs.TickToWorld(w.clipStartTick))
		w.exploredMinX = w.cs.TickToWorld(w.clipStartTick)
		w.exploredMaxX = w.cs.TickToWorld(w.clipEndTick)
	} else {
		w.cs.SetPixelsPerBeat(60)
		w.cs.SetViewportX(0)
		w.exploredMinX = 0
		w.exploredMaxX = vp.Width
	}

	w.hScrollbar.SetExploredArea(w.exploredMinX, w.exploredMaxX)
	w.updateScrollbarGeometry()
}

func (w *Widget) handleScrollbarDragEnd() {
	w.updateScrollbarGeometry()
}

// expandExploredArea grows the explored range to cover the viewport at the
// given X.
func (w *Widget) expandExploredArea(newX float64) {
	right := newX + w.cs.Viewport().Width
	if newX < w.exploredMinX {
		w.exploredMinX = newX
	}
	if right > w.exploredMaxX {
		w.exploredMaxX = right
	}
	w.hScrollbar.SetExploredArea(w.exploredMinX, w.exploredMaxX)
}

// updateExploredAreaForNotes grows the explored range to cover every note.
func (w *Widget) updateExploredAreaForNotes() {
	notes := w.notes.Notes()
	if len(notes) == 0 {
		return
	}
	leftmost := notes[0].Tick
	rightmost := notes[0].EndTick()
	for _, n := range notes {
		if n.Tick < leftmost {
			leftmost = n.Tick
		}
		if n.EndTick() > rightmost {
			rightmost = n.EndTick()
		}
	}

	changed := false
	if x := w.cs.TickToWorld(leftmost); x < w.exploredMinX {
		w.exploredMinX = x
		changed = true
	}
	if x := w.cs.TickToWorld(rightmost); x > w.exploredMaxX {
		w.exploredMaxX = x
		changed = true
	}
	if changed {
		w.hScrollbar.SetExploredArea(w.exploredMinX, w.exploredMaxX)
	}
}
