package widget

import (
	"math"

	"github.com/rollwerk/pianoroll/internal/controller"
	"github.com/rollwerk/pianoroll/internal/host"
)

// renderOverlay is the single overlay pass: selection rectangle, hover edge
// highlight, then drag/duplicate ghost. It runs after input handling so it
// reflects this frame's state.
func (w *Widget) renderOverlay(dl host.DrawList) {
	dl.SetLayer(host.LayerPlayhead)

	vp := w.cs.Viewport()
	gridLeft := w.cs.PianoKeyWidth()
	gridRight := gridLeft + vp.Width
	gridBottom := vp.Height

	// Selection rectangle.
	if w.pointer.HasSelectionRectangle() {
		wx1, wy1, wx2, wy2 := w.pointer.SelectionRectangleWorld()
		x1, y1 := w.cs.WorldToScreen(wx1, wy1)
		x2, y2 := w.cs.WorldToScreen(wx2, wy2)

		x1 = math.Max(x1, gridLeft)
		x2 = math.Min(x2, gridRight)
		y1 = math.Max(y1, 0)
		y2 = math.Min(y2, gridBottom)
		if x2 > x1 && y2 > y1 {
			dl.FillRect(x1, y1, x2, y2, w.theme.SelectionRectFill, 0)
			dl.StrokeRect(x1, y1, x2, y2, w.theme.SelectionRectBorder, 1)
		}
	}

	// Hover edge highlight on the hovered note.
	if wx1, wy1, wx2, wy2, edge, ok := w.pointer.HoveredNoteWorld(); ok {
		x1, y1 := w.cs.WorldToScreen(wx1, wy1)
		x2, y2 := w.cs.WorldToScreen(wx2, wy2)
		if x2 > gridLeft && x1 < gridRight {
			x1 = math.Max(x1, gridLeft)
			x2 = math.Min(x2, gridRight)
			switch edge {
			case controller.HoverLeft:
				dl.Line(x1, y1, x1, y2, w.theme.SelectedNoteInner, 2)
			case controller.HoverRight:
				dl.Line(x2, y1, x2, y2, w.theme.SelectedNoteInner, 2)
			case controller.HoverBody:
				dl.StrokeRect(x1, y1, x2, y2, w.theme.SelectionRectBorder, 1)
			}
		}
	}

	// Drag/duplicate ghost over the moving selection.
	if w.pointer.DraggingNote() {
		ghost := w.theme.DragPreviewMove
		if w.pointer.Duplicating() {
			ghost = w.theme.DragPreviewDuplicate
		}
		for _, n := range w.notes.Notes() {
			if !n.Selected {
				continue
			}
			x1, y1 := w.cs.WorldToScreen(w.cs.TickToWorld(n.Tick), w.cs.KeyToWorldY(n.Key))
			x2, y2 := w.cs.WorldToScreen(w.cs.TickToWorld(n.EndTick()), w.cs.KeyToWorldY(n.Key)+w.cs.KeyHeight())
			x1 = math.Max(x1, gridLeft)
			x2 = math.Min(x2, gridRight)
			if x2 <= x1 {
				continue
			}
			dl.StrokeRect(x1, y1, x2, y2, ghost, 2)
		}
	}
}

// renderDebug draws the development overlays: last-clicked cell and cursor
// crosshair.
func (w *Widget) renderDebug(dl host.DrawList) {
	if w.hasLastClickedCell {
		dl.SetLayer(host.LayerPlayhead)
		x1, y1 := w.cs.WorldToScreen(w.cs.TickToWorld(w.lastClickedTickStart), w.cs.KeyToWorldY(w.lastClickedKey))
		x2, y2 := w.cs.WorldToScreen(w.cs.TickToWorld(w.lastClickedTickEnd), w.cs.KeyToWorldY(w.lastClickedKey)+w.cs.KeyHeight())

		gridLeft := w.cs.PianoKeyWidth()
		gridTop := w.cfg.TopPadding + w.cfg.RulerHeight
		x1 = math.Max(x1, gridLeft)
		x2 = math.Min(x2, w.canvasW)
		y1 = math.Max(y1, gridTop)
		y2 = math.Min(y2, w.canvasH)
		if x2 > x1 && y2 > y1 {
			dl.FillRect(x1, y1, x2, y2, w.theme.SelectionRectFill, 0)
		}
	}

	if w.showDebugCrosshair && w.debugMouseX >= 0 && w.debugMouseY >= 0 {
		dl.SetLayer(host.LayerPlayhead)
		dl.Line(w.debugMouseX, 0, w.debugMouseX, w.canvasH, w.theme.SelectedNoteInner, 1)
	}
}
