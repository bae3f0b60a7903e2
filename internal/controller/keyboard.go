package controller

import (
	"github.com/rollwerk/pianoroll/internal/coords"
	"github.com/rollwerk/pianoroll/internal/host"
	"github.com/rollwerk/pianoroll/internal/model"
	"github.com/rollwerk/pianoroll/internal/snap"
)

// Keyboard applies editing shortcuts to the note store. The host delivers
// an explicit list of key events per frame, so repeated or coincident
// keystrokes are never dropped.
//
// Shortcuts: Ctrl+A select all, Delete/Backspace delete selection,
// Ctrl+C/V copy/paste, Ctrl+Z/Y undo/redo, arrows transpose (1 semitone, 12
// with Shift) or shift in time (snap division, 1/128 note with Shift).
type Keyboard struct {
	notes *model.NoteStore
	snap  *snap.System
	cs    *coords.CoordinateSystem

	clipboard []model.Note
}

// NewKeyboard wires the keyboard controller.
func NewKeyboard(notes *model.NoteStore, sn *snap.System, cs *coords.CoordinateSystem) *Keyboard {
	return &Keyboard{notes: notes, snap: sn, cs: cs}
}

// HasClipboard reports whether a copy has been taken.
func (k *Keyboard) HasClipboard() bool { return len(k.clipboard) > 0 }

// HandleKey processes one key event. Returns true if it was consumed.
func (k *Keyboard) HandleKey(ev host.KeyEvent) bool {
	mods := ev.Mods
	switch {
	case mods.Ctrl && ev.Key == host.KeyA:
		k.notes.SelectAll()
		return true
	case ev.Key == host.KeyDelete || ev.Key == host.KeyBackspace:
		k.deleteSelection()
		return true
	case mods.Ctrl && ev.Key == host.KeyC:
		k.copySelection()
		return true
	case mods.Ctrl && ev.Key == host.KeyV:
		return k.paste()
	case mods.Ctrl && ev.Key == host.KeyZ:
		return k.notes.Undo()
	case mods.Ctrl && ev.Key == host.KeyY:
		return k.notes.Redo()
	case ev.Key == host.KeyUp || ev.Key == host.KeyDown || ev.Key == host.KeyLeft || ev.Key == host.KeyRight:
		return k.moveSelection(ev.Key, mods)
	}
	return false
}

func (k *Keyboard) deleteSelection() {
	ids := k.notes.SelectedIDs()
	if len(ids) == 0 {
		return
	}
	k.notes.SnapshotForUndo()
	for _, id := range ids {
		k.notes.Remove(id, false)
	}
}

// copySelection deep-copies the selected notes with absolute ticks.
func (k *Keyboard) copySelection() {
	k.clipboard = k.clipboard[:0]
	for _, n := range k.notes.Notes() {
		if n.Selected {
			k.clipboard = append(k.clipboard, n)
		}
	}
}

// paste recreates the clipboard at its original tick positions.
func (k *Keyboard) paste() bool {
	if len(k.clipboard) == 0 {
		return false
	}
	k.notes.SnapshotForUndo()
	for _, src := range k.clipboard {
		k.notes.Create(src.Tick, src.Duration, src.Key, src.Velocity, src.Channel, true, false, false)
	}
	return true
}

// PasteAtTick pastes the clipboard shifted so its earliest note starts at
// targetTick. Returns true if any note was created.
func (k *Keyboard) PasteAtTick(targetTick model.Tick) bool {
	if len(k.clipboard) == 0 {
		return false
	}
	earliest := k.clipboard[0].Tick
	for _, n := range k.clipboard {
		if n.Tick < earliest {
			earliest = n.Tick
		}
	}
	offset := targetTick - earliest

	k.notes.SnapshotForUndo()
	created := false
	for _, src := range k.clipboard {
		tick := src.Tick + offset
		if tick < 0 {
			tick = 0
		}
		if k.notes.Create(tick, src.Duration, src.Key, src.Velocity, src.Channel, true, false, false) != 0 {
			created = true
		}
	}
	return created
}

// fineStepTicks is the Shift-arrow time step: a 1/128 note.
func (k *Keyboard) fineStepTicks() model.Tick {
	return model.Tick(4 * k.snap.TicksPerBeat() / 128)
}

// moveSelection moves the whole selection by one step. Pitch moves check
// the selection's key extremes against 0..127, and time moves check the
// earliest tick against 0, so the group stays intact or nothing moves. The
// whole edit is one undo step.
func (k *Keyboard) moveSelection(key host.Key, mods host.Modifiers) bool {
	var deltaTick model.Tick
	var deltaKey int

	switch key {
	case host.KeyUp:
		deltaKey = 1
		if mods.Shift {
			deltaKey = 12
		}
	case host.KeyDown:
		deltaKey = -1
		if mods.Shift {
			deltaKey = -12
		}
	case host.KeyLeft, host.KeyRight:
		if k.snap == nil {
			return false
		}
		step := k.snap.SnapDivision().Ticks
		if k.cs != nil && k.snap.Mode() == snap.Adaptive {
			step = k.snap.AdaptiveDivision(k.cs.PixelsPerBeat(), false).Ticks
		}
		if mods.Shift {
			step = k.fineStepTicks()
		}
		if key == host.KeyLeft {
			step = -step
		}
		deltaTick = step
	}

	all := k.notes.Notes()
	any := false
	minKey, maxKey := 127, 0
	var minTick model.Tick
	for _, n := range all {
		if !n.Selected {
			continue
		}
		if !any {
			any = true
			minTick = n.Tick
		} else if n.Tick < minTick {
			minTick = n.Tick
		}
		if n.Key < minKey {
			minKey = n.Key
		}
		if n.Key > maxKey {
			maxKey = n.Key
		}
	}
	if !any {
		return false
	}

	if deltaKey != 0 && (maxKey+deltaKey > 127 || minKey+deltaKey < 0) {
		return false
	}
	if deltaTick != 0 && minTick+deltaTick < 0 {
		return false
	}
	if deltaTick == 0 && deltaKey == 0 {
		return false
	}

	k.notes.SnapshotForUndo()
	moved := false
	for _, id := range k.notes.SelectedIDs() {
		if k.notes.Move(id, deltaTick, deltaKey, false, false) {
			moved = true
		}
	}
	return moved
}
