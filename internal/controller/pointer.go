// Package controller implements the pointer and keyboard state machines
// that drive note editing. Both operate purely on the model and coordinate
// system; the widget routes host input into them.
package controller

import (
	"math"

	"github.com/rollwerk/pianoroll/internal/coords"
	"github.com/rollwerk/pianoroll/internal/host"
	"github.com/rollwerk/pianoroll/internal/model"
	"github.com/rollwerk/pianoroll/internal/snap"
)

// Action enumerates what the pointer is currently doing on the grid.
type Action int

const (
	ActionNone Action = iota
	ActionDraggingNote
	ActionResizingLeft
	ActionResizingRight
	ActionRectangleSelection
)

// HoverEdge classifies where the cursor sits relative to a hovered note.
type HoverEdge int

const (
	HoverNone HoverEdge = iota
	HoverBody
	HoverLeft
	HoverRight
)

// Hover describes the note under the cursor, if any.
type Hover struct {
	HasNote bool
	NoteID  model.NoteID
	Edge    HoverEdge
}

// MinNoteLengthTicks is the smallest duration edge-resize will produce.
const MinNoteLengthTicks model.Duration = 10

// Pointer is the main pointer state machine: hit-test, selection, group
// drag, edge resize, rectangle selection with modifier set algebra,
// Ctrl-drag duplication, and double-click create/delete.
type Pointer struct {
	notes *model.NoteStore
	cs    *coords.CoordinateSystem
	snap  *snap.System

	action       Action
	activeNoteID model.NoteID

	// Anchor note state at gesture start.
	initialTick     model.Tick
	initialDuration model.Duration
	initialKey      model.MidiKey

	// Pointer offset from the anchor's top-left at drag start, world space.
	dragOffsetWorldX float64
	dragOffsetWorldY float64

	// Rectangle selection in world space.
	rectActive       bool
	rectStartX       float64
	rectStartY       float64
	rectEndX         float64
	rectEndY         float64
	initialSelection []model.NoteID

	edgeThresholdPx     float64
	defaultNoteDuration model.Duration

	enableCtrlDragDuplicate bool
	duplicating             bool

	// Click slop: no action commits until the pointer moves this far from
	// the press point.
	dragThresholdPx     float64
	pendingClick        bool
	clickStartScreenX   float64
	clickStartScreenY   float64
	pendingToggleOnRelease bool

	hover Hover
}

// NewPointer wires the pointer controller to its model and view state.
func NewPointer(notes *model.NoteStore, cs *coords.CoordinateSystem, sn *snap.System) *Pointer {
	return &Pointer{
		notes:                   notes,
		cs:                      cs,
		snap:                    sn,
		edgeThresholdPx:         5,
		defaultNoteDuration:     model.Duration(cs.TicksPerBeat()),
		enableCtrlDragDuplicate: true,
		dragThresholdPx:         4,
	}
}

// SetEdgeThresholdPx adjusts the drag-vs-resize edge distance in pixels.
func (p *Pointer) SetEdgeThresholdPx(v float64) { p.edgeThresholdPx = v }

// SetDragThresholdPx adjusts the click slop in pixels.
func (p *Pointer) SetDragThresholdPx(v float64) { p.dragThresholdPx = v }

// SetDefaultNoteDuration sets the duration used by double-click create.
func (p *Pointer) SetDefaultNoteDuration(d model.Duration) {
	if d > 0 {
		p.defaultNoteDuration = d
	}
}

// DefaultNoteDuration returns the duration double-click create will use. It
// tracks the last edge-resize result.
func (p *Pointer) DefaultNoteDuration() model.Duration { return p.defaultNoteDuration }

// SetEnableCtrlDragDuplicate toggles the Ctrl-drag duplication behaviour.
func (p *Pointer) SetEnableCtrlDragDuplicate(on bool) { p.enableCtrlDragDuplicate = on }

func (p *Pointer) Action() Action      { return p.action }
func (p *Pointer) DraggingNote() bool  { return p.action == ActionDraggingNote }
func (p *Pointer) ResizingNote() bool  { return p.action == ActionResizingLeft || p.action == ActionResizingRight }
func (p *Pointer) Duplicating() bool   { return p.duplicating }
func (p *Pointer) Hover() Hover        { return p.hover }

// HasSelectionRectangle reports whether a rectangle selection is in flight.
func (p *Pointer) HasSelectionRectangle() bool { return p.rectActive }

// SelectionRectangleWorld returns the normalized selection rectangle.
func (p *Pointer) SelectionRectangleWorld() (x1, y1, x2, y2 float64) {
	if !p.rectActive {
		return 0, 0, 0, 0
	}
	x1 = math.Min(p.rectStartX, p.rectEndX)
	x2 = math.Max(p.rectStartX, p.rectEndX)
	y1 = math.Min(p.rectStartY, p.rectEndY)
	y2 = math.Max(p.rectStartY, p.rectEndY)
	return
}

// applySnap runs magnetic snap on a tick unless Shift disables it.
func (p *Pointer) applySnap(raw model.Tick, mods host.Modifiers) model.Tick {
	if p.snap == nil || mods.Shift {
		return raw
	}
	snapped, _ := p.snap.MagneticSnap(raw, p.cs.PixelsPerBeat(), snap.DefaultMagneticRangePx)
	return snapped
}

// MouseDown resolves a left press on the grid area: note hit-test, then
// selection bookkeeping, duplication, and drag/resize classification, or a
// rectangle selection start on empty space.
func (p *Pointer) MouseDown(screenX, screenY float64, mods host.Modifiers) {
	p.pendingClick = true
	p.clickStartScreenX = screenX
	p.clickStartScreenY = screenY

	worldX, worldY := p.cs.ScreenToWorld(screenX, screenY)
	tick := p.cs.WorldToTick(worldX)
	key := p.cs.WorldYToKey(worldY)

	note, hit := p.notes.NoteAt(tick, key)
	if !hit {
		p.beginRectangleSelection(worldX, worldY)
		return
	}

	p.activeNoteID = note.ID
	p.initialTick = note.Tick
	p.initialDuration = note.Duration
	p.initialKey = note.Key

	noteX1 := p.cs.TickToWorld(note.Tick)
	p.dragOffsetWorldX = worldX - noteX1
	p.dragOffsetWorldY = worldY - p.cs.KeyToWorldY(note.Key)

	alreadySelected := note.Selected
	if !alreadySelected {
		if !mods.Ctrl && !mods.Shift {
			p.notes.ClearSelection()
		}
		p.notes.Select(note.ID, true)
	} else if mods.Ctrl && !p.enableCtrlDragDuplicate {
		// Ctrl-click on a selected note toggles on release, so a Ctrl-drag
		// is still possible.
		p.pendingToggleOnRelease = true
	}

	p.duplicating = false
	if p.enableCtrlDragDuplicate && mods.Ctrl {
		p.duplicateSelection()
	}

	anchor, ok := p.notes.FindByID(p.activeNoteID)
	if !ok {
		p.action = ActionNone
		return
	}

	anchorX1 := p.cs.TickToWorld(anchor.Tick)
	anchorX2 := p.cs.TickToWorld(anchor.EndTick())
	dxLeft := math.Abs(worldX - anchorX1)
	dxRight := math.Abs(worldX - anchorX2)

	switch {
	case dxLeft <= p.edgeThresholdPx:
		p.action = ActionResizingLeft
	case dxRight <= p.edgeThresholdPx:
		p.action = ActionResizingRight
	default:
		p.action = ActionDraggingNote
	}
	p.rectActive = false
	p.hover = Hover{}
}

// duplicateSelection clones every selected note, replaces the selection
// with the clones, and re-anchors on the clone of the clicked note.
func (p *Pointer) duplicateSelection() {
	originals := p.notes.SelectedIDs()
	if len(originals) == 0 {
		return
	}
	var newIDs []model.NoteID
	var newAnchor model.NoteID
	for _, id := range originals {
		src, ok := p.notes.FindByID(id)
		if !ok {
			continue
		}
		newID := p.notes.Create(src.Tick, src.Duration, src.Key, src.Velocity, src.Channel, true, false, true)
		if newID == 0 {
			continue
		}
		newIDs = append(newIDs, newID)
		if id == p.activeNoteID {
			newAnchor = newID
		}
	}
	if len(newIDs) == 0 {
		return
	}
	p.notes.ClearSelection()
	for _, id := range newIDs {
		p.notes.Select(id, true)
	}
	if newAnchor != 0 {
		p.activeNoteID = newAnchor
	} else {
		p.activeNoteID = newIDs[0]
	}
	p.duplicating = true
}

func (p *Pointer) beginRectangleSelection(worldX, worldY float64) {
	p.action = ActionRectangleSelection
	p.hover = Hover{}
	p.rectActive = true
	p.rectStartX, p.rectStartY = worldX, worldY
	p.rectEndX, p.rectEndY = worldX, worldY
	p.initialSelection = p.notes.SelectedIDs()
}

// MouseMove advances the active gesture or, while idle, refreshes hover
// state. Below the click-slop threshold only hover updates.
func (p *Pointer) MouseMove(screenX, screenY float64, mods host.Modifiers) {
	worldX, worldY := p.cs.ScreenToWorld(screenX, screenY)

	// Click slop: until the pointer leaves the threshold box around the
	// press point, only hover state updates and the chosen action stays
	// uncommitted.
	if p.pendingClick {
		dx := math.Abs(screenX - p.clickStartScreenX)
		dy := math.Abs(screenY - p.clickStartScreenY)
		if dx <= p.dragThresholdPx && dy <= p.dragThresholdPx {
			p.updateHover(worldX, worldY)
			return
		}
		p.pendingClick = false
	}

	if p.action == ActionNone {
		p.updateHover(worldX, worldY)
		return
	}

	switch p.action {
	case ActionDraggingNote:
		p.updateDrag(worldX, worldY, mods)
	case ActionResizingLeft, ActionResizingRight:
		p.updateResize(worldX, mods)
	case ActionRectangleSelection:
		p.rectEndX, p.rectEndY = worldX, worldY
		p.updateRectangleSelection(mods)
	}
}

func (p *Pointer) updateHover(worldX, worldY float64) {
	var h Hover
	tick := p.cs.WorldToTick(worldX)
	key := p.cs.WorldYToKey(worldY)
	if note, ok := p.notes.NoteAt(tick, key); ok {
		h.HasNote = true
		h.NoteID = note.ID

		x1 := p.cs.TickToWorld(note.Tick)
		x2 := p.cs.TickToWorld(note.EndTick())
		switch {
		case math.Abs(worldX-x1) <= p.edgeThresholdPx:
			h.Edge = HoverLeft
		case math.Abs(worldX-x2) <= p.edgeThresholdPx:
			h.Edge = HoverRight
		default:
			h.Edge = HoverBody
		}
	}
	p.hover = h
}

// updateDrag moves the whole selection by the anchor's delta. Individual
// moves that would overlap are skipped, keeping the group shape where
// possible.
func (p *Pointer) updateDrag(worldX, worldY float64, mods host.Modifiers) {
	anchor, ok := p.notes.FindByID(p.activeNoteID)
	if !ok {
		return
	}

	newTick := p.cs.WorldToTick(worldX - p.dragOffsetWorldX)
	newKey := p.cs.WorldYToKey(worldY - p.dragOffsetWorldY)
	newTick = p.applySnap(newTick, mods)

	deltaTick := newTick - anchor.Tick
	deltaKey := newKey - anchor.Key
	if deltaTick == 0 && deltaKey == 0 {
		return
	}

	ids := p.notes.SelectedIDs()
	if len(ids) == 0 {
		ids = []model.NoteID{p.activeNoteID}
	}
	for _, id := range ids {
		p.notes.Move(id, deltaTick, deltaKey, false, false)
	}
}

// updateResize recomputes the anchor's edges from the pointer, snaps them,
// and applies move+resize to the anchor only. Sibling selected notes keep
// their durations.
func (p *Pointer) updateResize(worldX float64, mods host.Modifiers) {
	if _, ok := p.notes.FindByID(p.activeNoteID); !ok {
		return
	}

	leftWorld := p.cs.TickToWorld(p.initialTick)
	rightWorld := p.cs.TickToWorld(p.initialTick + p.initialDuration)
	if p.action == ActionResizingLeft {
		leftWorld = worldX
	} else {
		rightWorld = worldX
	}

	newLeft := p.applySnap(p.cs.WorldToTick(leftWorld), mods)
	newRight := p.applySnap(p.cs.WorldToTick(rightWorld), mods)

	if p.action == ActionResizingLeft {
		if maxLeft := p.initialTick + p.initialDuration - MinNoteLengthTicks; newLeft > maxLeft {
			newLeft = maxLeft
		}
	} else {
		if minRight := p.initialTick + MinNoteLengthTicks; newRight < minRight {
			newRight = minRight
		}
	}
	if newRight <= newLeft {
		return
	}

	anchor, _ := p.notes.FindByID(p.activeNoteID)
	p.notes.Move(p.activeNoteID, newLeft-anchor.Tick, 0, false, false)
	p.notes.Resize(p.activeNoteID, newRight-newLeft, false, false)

	// Remember the last resized length for subsequent note creation.
	p.defaultNoteDuration = newRight - newLeft
}

// updateRectangleSelection recomputes the selection from the initial
// snapshot and the notes inside the rectangle, applying modifier set
// algebra: plain replaces, Ctrl unions, Shift toggles (symmetric
// difference), Alt subtracts.
func (p *Pointer) updateRectangleSelection(mods host.Modifiers) {
	x1 := math.Min(p.rectStartX, p.rectEndX)
	x2 := math.Max(p.rectStartX, p.rectEndX)
	y1 := math.Min(p.rectStartY, p.rectEndY)
	y2 := math.Max(p.rectStartY, p.rectEndY)

	var inRect []model.NoteID
	for _, n := range p.notes.Notes() {
		nx1 := p.cs.TickToWorld(n.Tick)
		nx2 := p.cs.TickToWorld(n.EndTick())
		ny1 := p.cs.KeyToWorldY(n.Key)
		ny2 := ny1 + p.cs.KeyHeight()
		if nx1 < x2 && nx2 > x1 && ny1 < y2 && ny2 > y1 {
			inRect = append(inRect, n.ID)
		}
	}

	base := make(map[model.NoteID]struct{}, len(p.initialSelection))
	for _, id := range p.initialSelection {
		base[id] = struct{}{}
	}

	switch {
	case mods.Alt:
		p.restoreInitialSelection()
		for _, id := range inRect {
			if _, ok := base[id]; ok {
				p.notes.Deselect(id)
			}
		}
	case mods.Ctrl:
		p.restoreInitialSelection()
		for _, id := range inRect {
			p.notes.Select(id, true)
		}
	case mods.Shift:
		p.restoreInitialSelection()
		for _, id := range inRect {
			if _, ok := base[id]; ok {
				p.notes.Deselect(id)
			} else {
				p.notes.Select(id, true)
			}
		}
	default:
		p.notes.ClearSelection()
		for _, id := range inRect {
			p.notes.Select(id, true)
		}
	}
}

func (p *Pointer) restoreInitialSelection() {
	p.notes.ClearSelection()
	for _, id := range p.initialSelection {
		p.notes.Select(id, true)
	}
}

// MouseUp finishes the gesture: a zero-area unmodified rectangle clears the
// selection (empty-space click), a pending Ctrl-click toggle flips the hit
// note, and all latent state resets.
func (p *Pointer) MouseUp(screenX, screenY float64, mods host.Modifiers) {
	if p.action == ActionRectangleSelection && !mods.Ctrl && !mods.Shift && !mods.Alt {
		if p.rectStartX == p.rectEndX && p.rectStartY == p.rectEndY {
			p.notes.ClearSelection()
		}
	}

	// The toggle only applies when the press never turned into a drag: the
	// pending-click flag is still set in that case.
	if p.pendingToggleOnRelease && !p.duplicating && p.pendingClick {
		worldX, worldY := p.cs.ScreenToWorld(screenX, screenY)
		tick := p.cs.WorldToTick(worldX)
		key := p.cs.WorldYToKey(worldY)
		if note, ok := p.notes.NoteAt(tick, key); ok && mods.Ctrl {
			if note.Selected {
				p.notes.Deselect(note.ID)
			} else {
				p.notes.Select(note.ID, true)
			}
		}
	}

	p.action = ActionNone
	p.activeNoteID = 0
	p.rectActive = false
	p.duplicating = false
	p.pendingClick = false
	p.pendingToggleOnRelease = false
}

// DoubleClick removes a hit note, or creates one at the snapped tick with
// the current default duration.
func (p *Pointer) DoubleClick(screenX, screenY float64, mods host.Modifiers) {
	worldX, worldY := p.cs.ScreenToWorld(screenX, screenY)
	tick := p.cs.WorldToTick(worldX)
	key := p.cs.WorldYToKey(worldY)

	if note, ok := p.notes.NoteAt(tick, key); ok {
		p.notes.Remove(note.ID, false)
		return
	}

	snapped := p.applySnap(tick, mods)
	if snapped < 0 {
		snapped = 0
	}
	if key < 0 {
		key = 0
	} else if key > 127 {
		key = 127
	}
	p.notes.Create(snapped, p.defaultNoteDuration, key, 100, 0, true, false, false)
}

// HoveredNoteWorld returns the hovered note's world bounds and edge.
func (p *Pointer) HoveredNoteWorld() (x1, y1, x2, y2 float64, edge HoverEdge, ok bool) {
	if !p.hover.HasNote {
		return 0, 0, 0, 0, HoverNone, false
	}
	note, found := p.notes.FindByID(p.hover.NoteID)
	if !found {
		return 0, 0, 0, 0, HoverNone, false
	}
	x1 = p.cs.TickToWorld(note.Tick)
	x2 = p.cs.TickToWorld(note.EndTick())
	y1 = p.cs.KeyToWorldY(note.Key)
	y2 = y1 + p.cs.KeyHeight()
	return x1, y1, x2, y2, p.hover.Edge, true
}
