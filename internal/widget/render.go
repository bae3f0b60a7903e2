package widget

import (
	"fmt"
	"image/color"
	"math"

	"github.com/rollwerk/pianoroll/internal/gesture"
	"github.com/rollwerk/pianoroll/internal/host"
	"github.com/rollwerk/pianoroll/internal/model"
	"github.com/rollwerk/pianoroll/internal/snap"
)

// loopBandBottom mirrors the loop marker's band bottom fraction inside the
// ruler; the cue markers sit just below it.
const loopBandBottom = 0.65

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func noteName(key model.MidiKey) string {
	return fmt.Sprintf("%s%d", noteNames[key%12], key/12-2)
}

func isBlackKey(key model.MidiKey) bool {
	switch key % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

func scale(c color.NRGBA, f float64) color.NRGBA {
	s := func(v uint8) uint8 {
		out := float64(v) * f
		if out > 255 {
			out = 255
		}
		return uint8(out)
	}
	return color.NRGBA{R: s(c.R), G: s(c.G), B: s(c.B), A: c.A}
}

// render issues the four core layers plus the chrome that sits in the ruler
// and key strip. The overlay pass comes separately, after input handling.
func (w *Widget) render(dl host.DrawList) {
	vp := w.cs.Viewport()

	dl.SetLayer(host.LayerBackground)
	w.renderBackground(dl)

	dl.SetLayer(host.LayerNotes)
	w.renderNotes(dl)

	dl.SetLayer(host.LayerRuler)
	w.renderGridAndRuler(dl)
	w.renderNoteNameColumn(dl)
	w.renderLoopMarker(dl)
	w.renderRulerChrome(dl)
	w.renderScrollbar(dl)
	if w.showCCLane && w.activeCCLane >= 0 && w.activeCCLane < len(w.ccLanes) {
		w.renderCCLane(dl)
	}

	dl.SetLayer(host.LayerPlayhead)
	if w.hasPlayhead {
		x, _ := w.cs.WorldToScreen(w.cs.TickToWorld(w.playheadTick), 0)
		dl.Line(x, 0, x, vp.Height, w.theme.Playhead, 2)
		const handle = 10.0
		dl.FillTriangle(x, 0, x-handle/2, -handle/2, x+handle/2, -handle/2, w.theme.Playhead)
	}
}

func (w *Widget) renderBackground(dl host.DrawList) {
	vp := w.cs.Viewport()
	widgetW := w.cs.PianoKeyWidth() + vp.Width

	dl.FillRect(0, 0, widgetW, vp.Height, w.theme.Background, 0)

	minKey, maxKey := w.cs.VisibleKeyRange()

	// Piano key strip.
	for key := minKey; key <= maxKey; key++ {
		y1, y2, ok := w.keyRowScreenY(key)
		if !ok {
			continue
		}
		col := w.theme.WhiteKey
		if isBlackKey(key) {
			col = w.theme.BlackKey
		}
		dl.FillRect(0, y1, w.cs.PianoKeyWidth(), y2, col, 0)
	}

	// Key row striping in the grid area.
	rowLight := scale(w.theme.Background, 1.15)
	rowDark := scale(w.theme.Background, 0.95)
	gridLeft := w.cs.PianoKeyWidth()
	gridRight := w.cs.PianoKeyWidth() + vp.Width
	for key := minKey; key <= maxKey; key++ {
		y1, y2, ok := w.keyRowScreenY(key)
		if !ok {
			continue
		}
		col := rowLight
		if isBlackKey(key) {
			col = rowDark
		}
		dl.FillRect(gridLeft, y1, gridRight, y2, col, 0)
	}

	// Spotlight band behind the selected notes' horizontal extent.
	minTick, maxTick, _, _, ok := w.SelectionBounds()
	if ok && maxTick > minTick {
		x1, _ := w.cs.WorldToScreen(w.cs.TickToWorld(minTick), 0)
		x2, _ := w.cs.WorldToScreen(w.cs.TickToWorld(maxTick), 0)
		x1 = math.Max(x1, gridLeft)
		x2 = math.Min(x2, gridRight)
		if x2 > x1 {
			dl.FillRect(x1, 0, x2, vp.Height, w.theme.SpotlightFill, 0)
			dl.Line(x1, 0, x1, vp.Height, w.theme.SpotlightEdge, 1)
			dl.Line(x2, 0, x2, vp.Height, w.theme.SpotlightEdge, 1)
		}
	}
}

// keyRowScreenY returns the clipped screen Y range of a key row, or false
// when the row is off screen.
func (w *Widget) keyRowScreenY(key model.MidiKey) (float64, float64, bool) {
	vp := w.cs.Viewport()
	worldY := w.cs.KeyToWorldY(key)
	_, y1 := w.cs.WorldToScreen(0, worldY)
	_, y2 := w.cs.WorldToScreen(0, worldY+w.cs.KeyHeight())
	if y2 < 0 || y1 > vp.Height {
		return 0, 0, false
	}
	if y1 < 0 {
		y1 = 0
	}
	if y2 > vp.Height {
		y2 = vp.Height
	}
	return y1, y2, true
}

const noteCornerRadius = 3.0

func (w *Widget) renderNotes(dl host.DrawList) {
	vp := w.cs.Viewport()
	leftLimit := w.cs.PianoKeyWidth()
	rightLimit := w.cs.PianoKeyWidth() + vp.Width

	drawNote := func(n model.Note) {
		x1, y1 := w.cs.WorldToScreen(w.cs.TickToWorld(n.Tick), w.cs.KeyToWorldY(n.Key))
		x2, y2 := w.cs.WorldToScreen(w.cs.TickToWorld(n.EndTick()), w.cs.KeyToWorldY(n.Key)+w.cs.KeyHeight())
		x1 = math.Max(x1, leftLimit)
		x2 = math.Min(x2, rightLimit)
		if x2 <= x1 {
			return
		}

		fill := w.theme.NoteFill
		border := w.theme.NoteBorder
		if n.Selected {
			fill = w.theme.SelectedNoteFill
			border = w.theme.SelectedNoteBorder
		} else {
			shadow := color.NRGBA{A: 31}
			dl.FillRect(x1+1, y1+1, x2+1, y2+1, shadow, noteCornerRadius)
		}

		dl.FillRect(x1, y1, x2, y2, fill, noteCornerRadius)
		dl.StrokeRect(x1, y1, x2, y2, border, 1)
		if n.Selected {
			dl.StrokeRect(x1+2, y1+2, x2-2, y2-2, w.theme.SelectedNoteInner, 1)
		}
	}

	// Unselected first so selected notes render on top.
	for _, n := range w.notes.Notes() {
		if !n.Selected {
			drawNote(n)
		}
	}
	for _, n := range w.notes.Notes() {
		if n.Selected {
			drawNote(n)
		}
	}

	// In-note pitch labels once rows are tall enough.
	if w.cs.KeyHeight() >= 16 {
		for _, n := range w.notes.Notes() {
			x1, y1 := w.cs.WorldToScreen(w.cs.TickToWorld(n.Tick), w.cs.KeyToWorldY(n.Key))
			x2, y2 := w.cs.WorldToScreen(w.cs.TickToWorld(n.EndTick()), w.cs.KeyToWorldY(n.Key)+w.cs.KeyHeight())
			if x2 <= leftLimit || x1 >= rightLimit {
				continue
			}
			x1 = math.Max(x1, leftLimit)
			x2 = math.Min(x2, rightLimit)
			if x2-x1 < 30 {
				continue
			}
			label := noteName(n.Key)
			_, th := dl.TextSize(label)
			dl.Text(x1+4, y1+(y2-y1-th)/2, w.theme.NoteLabelText, label)
		}
	}
}

func (w *Widget) renderGridAndRuler(dl host.DrawList) {
	vp := w.cs.Viewport()
	startTick, endTick := w.cs.VisibleTickRange()
	ppb := w.cs.PixelsPerBeat()

	for _, line := range w.snap.GridLines(startTick, endTick, ppb) {
		x, _ := w.cs.WorldToScreen(w.cs.TickToWorld(line.Tick), 0)
		col := w.theme.GridLine
		thickness := 1.0
		switch line.Kind {
		case snap.Measure:
			col = w.theme.BarLine
			thickness = 1.5
		case snap.Beat:
			col = w.theme.BeatLine
		case snap.Subdivision:
			col = w.theme.SubdivisionLine
			thickness = 0.8
		}
		dl.Line(x, 0, x, vp.Height, col, thickness)
	}

	// Horizontal key separators across the grid.
	minKey, maxKey := w.cs.VisibleKeyRange()
	left := w.cs.PianoKeyWidth()
	right := w.cs.PianoKeyWidth() + vp.Width
	for key := minKey; key <= maxKey; key++ {
		_, y := w.cs.WorldToScreen(0, w.cs.KeyToWorldY(key))
		dl.Line(left, y, right, y, w.theme.GridLine, 1)
	}

	// Ruler strip with labels.
	dl.FillRect(left, w.cfg.TopPadding, right, w.cfg.TopPadding+w.cfg.RulerHeight, w.theme.RulerBackground, 0)
	for _, label := range w.snap.RulerLabels(startTick, endTick, ppb) {
		x, _ := w.cs.WorldToScreen(w.cs.TickToWorld(label.Tick), 0)
		if x < left || x > right {
			continue
		}
		dl.Text(x+2, w.cfg.TopPadding+4, w.theme.RulerText, label.Text)
	}
}

// renderNoteNameColumn draws C4-style labels into the left column with a
// density that adapts to key height: everything at 20 px, C and F at 12 px,
// C only below that.
func (w *Widget) renderNoteNameColumn(dl host.DrawList) {
	vp := w.cs.Viewport()
	viewTop := w.cfg.TopPadding + w.cfg.RulerHeight
	viewBottom := vp.Height

	minKey, maxKey := w.cs.VisibleKeyRange()
	ppk := w.cs.KeyHeight()

	for key := minKey; key <= maxKey; key++ {
		_, y1 := w.cs.WorldToScreen(0, w.cs.KeyToWorldY(key))
		_, y2 := w.cs.WorldToScreen(0, w.cs.KeyToWorldY(key)+w.cs.KeyHeight())
		if y2 < viewTop || y1 > viewBottom {
			continue
		}
		y1 = math.Max(y1, viewTop)
		y2 = math.Min(y2, viewBottom)

		idx := key % 12
		show := false
		switch {
		case ppk >= 20:
			show = true
		case ppk >= 12:
			show = idx == 0 || idx == 5
		default:
			show = idx == 0
		}
		if !show {
			continue
		}

		label := noteName(key)
		tw, th := dl.TextSize(label)
		textY := y1 + (y2-y1-th)/2
		if textY+th > viewBottom {
			continue
		}
		const padding = 10.0
		textX := w.cfg.NoteLabelWidth - padding - tw
		dl.Text(textX, textY, w.theme.NoteLabelText, label)

		// Octave separator under every C.
		if idx == 0 {
			lineY := y2 - 0.5
			dl.Line(math.Max(0, textX-20), lineY, w.cfg.NoteLabelWidth, lineY, w.theme.GridLine, 1)
		}
	}

	// Hover/press highlight over the key strip.
	if w.hasHoveredPianoKey || w.hasPressedPianoKey {
		key := w.hoveredPianoKey
		col := color.NRGBA{R: 199, G: 219, B: 255, A: 255}
		if w.hasPressedPianoKey {
			key = w.pressedPianoKey
			col = color.NRGBA{R: 99, G: 150, B: 255, A: 255}
		}
		_, y1 := w.cs.WorldToScreen(0, w.cs.KeyToWorldY(key))
		_, y2 := w.cs.WorldToScreen(0, w.cs.KeyToWorldY(key)+w.cs.KeyHeight())
		dl.FillRect(0, y1, w.cs.PianoKeyWidth(), y2, col, 0)
	}

	// Darken the column while a note-name gesture is active.
	if w.noteNames.active {
		shade := color.NRGBA{A: 51}
		dl.FillRect(0, viewTop, w.cs.PianoKeyWidth(), viewBottom, shade, 0)
	}
}

func (w *Widget) renderLoopMarker(dl host.DrawList) {
	if !w.loopEnabled || !w.loop.Rect.Visible {
		return
	}
	w.loop.SetLayout(w.cfg.TopPadding, w.cfg.RulerHeight, w.cs.PianoKeyWidth())
	if !w.loop.Rect.State.Active() {
		w.loop.UpdateBoundsFromTicks()
	}

	bounds := w.loop.Rect.Bounds
	if preview, ok := w.loop.Rect.PreviewBounds(); ok && w.loop.Rect.State.Active() {
		bounds = preview
	}

	x1, y1, ok1 := w.loop.Rect.Conv.WorldToScreen(bounds.Left, bounds.Top)
	x2, y2, ok2 := w.loop.Rect.Conv.WorldToScreen(bounds.Right, bounds.Bottom)
	if !ok1 || !ok2 {
		return
	}

	left := w.cs.PianoKeyWidth()
	right := w.cs.PianoKeyWidth() + w.cs.Viewport().Width
	x1 = math.Max(x1, left)
	x2 = math.Min(x2, right)
	if x1 >= x2 {
		return
	}

	fill := w.theme.LoopRegionFill
	if w.loop.Rect.State == gesture.HoveringBody || w.loop.Rect.State == gesture.Dragging {
		fill = w.theme.LoopRegionHoverFill
	}
	dl.FillRect(x1, y1, x2, y2, fill, 2)

	handleCol := w.theme.LoopRegionFill
	handleCol.A = 255
	switch w.loop.Rect.State {
	case gesture.HoveringLeftEdge, gesture.HoveringRightEdge, gesture.ResizingLeft, gesture.ResizingRight:
		handleCol = w.theme.LoopRegionHandleHover
	}
	dl.FillRect(x1, y1, x1+3, y2, handleCol, 0)
	dl.FillRect(x2-3, y1, x2, y2, handleCol, 0)
}

// renderRulerChrome draws playback and cue markers, the clip brackets, and
// the interaction highlight on top of the ruler strip.
func (w *Widget) renderRulerChrome(dl host.DrawList) {
	left := w.cs.PianoKeyWidth()
	right := w.cs.PianoKeyWidth() + w.cs.Viewport().Width

	if w.ruler.active {
		highlight := w.theme.RulerBackground
		highlight.A = 51
		dl.FillRect(left, w.cfg.TopPadding, right, w.cfg.TopPadding+w.cfg.RulerHeight, highlight, 0)
	}

	// Playback start: triangle plus a faint line through the ruler.
	if w.showPlaybackStart {
		if x, ok := w.markerScreenX(w.playbackStartTick); ok {
			markerY := w.cfg.TopPadding + 8.0
			const size = 10.0
			col := w.theme.PlaybackStartMarker
			dl.FillTriangle(x, markerY-size*1.5, x, markerY-size*0.5, x+size*0.866, markerY-size, col)
			dl.Line(x, w.cfg.TopPadding, x, w.cfg.TopPadding+w.cfg.RulerHeight, col, 1)
		}
	}

	// Cue markers point into the cued range from either side.
	if w.showCueMarkers && w.cueRightTick > w.cueLeftTick {
		markerY := w.cfg.TopPadding + w.cfg.RulerHeight*loopBandBottom + 8.0
		const size = 14.0
		col := w.theme.CueMarker
		if x, ok := w.markerScreenX(w.cueLeftTick); ok {
			dl.FillTriangle(x, markerY-size/2, x, markerY+size/2, x+size, markerY, col)
		}
		if x, ok := w.markerScreenX(w.cueRightTick); ok {
			dl.FillTriangle(x, markerY-size/2, x, markerY+size/2, x-size, markerY, col)
		}
	}

	// Clip boundary brackets.
	if w.clipEndTick > w.clipStartTick {
		col := w.theme.RulerClipBoundary
		drawBracket := func(tick model.Tick, isStart bool) {
			x, ok := w.markerScreenX(tick)
			if !ok {
				return
			}
			top := w.cfg.TopPadding
			dl.Line(x, top, x, top+8, col, 2)
			if isStart {
				dl.Line(x, top, x+5, top, col, 2)
			} else {
				dl.Line(x-5, top, x, top, col, 2)
			}
		}
		drawBracket(w.clipStartTick, true)
		drawBracket(w.clipEndTick, false)
	}
}

func (w *Widget) renderScrollbar(dl host.DrawList) {
	track := w.hScrollbar.TrackBounds()
	dl.FillRect(track.Left, track.Top, track.Right, track.Bottom, w.theme.ScrollbarTrack, 0)
	thumb := w.hScrollbar.Thumb.Bounds
	dl.FillRect(thumb.Left, thumb.Top, thumb.Right, thumb.Bottom, w.theme.ScrollbarThumb, 4)
}

func (w *Widget) renderCCLane(dl host.DrawList) {
	laneTop, laneBottom := w.laneBand()
	left := w.cs.PianoKeyWidth()
	right := w.canvasW

	dl.FillRect(left, laneTop, right, laneBottom, w.theme.CCLaneBackground, 0)
	dl.StrokeRect(left, laneTop, right, laneBottom, w.theme.CCLaneBorder, 1)

	lane := w.ccLanes[w.activeCCLane]
	points := lane.Points()
	laneHeight := laneBottom - laneTop
	if laneHeight <= 0 {
		return
	}

	pointY := func(value int) float64 {
		return laneBottom - float64(value)/127*laneHeight
	}

	var prevX, prevY float64
	havePrev := false
	for _, p := range points {
		x, _ := w.cs.WorldToScreen(w.cs.TickToWorld(p.Tick), 0)
		y := pointY(p.Value)
		if havePrev {
			dl.Line(prevX, prevY, x, y, w.theme.CCCurve, 1.5)
		}
		prevX, prevY = x, y
		havePrev = true
	}
	for _, p := range points {
		x, _ := w.cs.WorldToScreen(w.cs.TickToWorld(p.Tick), 0)
		if x < left || x > right {
			continue
		}
		dl.FillCircle(x, pointY(p.Value), 3, w.theme.CCPoint)
	}

	label := fmt.Sprintf("CC %d", lane.CCNumber())
	dl.Text(left+6, laneTop+4, w.theme.NoteLabelText, label)
}
