package model

// NoteStore owns the note collection and keeps three views of it in sync:
// an ID index, a per-key index for overlap tests and spatial queries, and
// the selection set. Undo/redo is snapshot-based; every recorded mutation
// copies the whole note slice, which is cheap at clip scale and keeps the
// contract trivial (ids are stable across snapshots).
//
// All methods must be called from the widget's UI thread; there is no
// internal locking.
type NoteStore struct {
	notes    []Note
	idToPos  map[NoteID]int
	keyToPos map[MidiKey][]int
	selected map[NoteID]struct{}

	undoStack     [][]Note
	redoStack     [][]Note
	maxUndoLevels int

	nextID NoteID
}

// DefaultMaxUndoLevels bounds the undo stack unless overridden.
const DefaultMaxUndoLevels = 100

// NewNoteStore returns an empty store.
func NewNoteStore() *NoteStore {
	return &NoteStore{
		idToPos:       make(map[NoteID]int),
		keyToPos:      make(map[MidiKey][]int),
		selected:      make(map[NoteID]struct{}),
		maxUndoLevels: DefaultMaxUndoLevels,
		nextID:        1,
	}
}

// SetMaxUndoLevels changes the undo depth bound. Values below 1 are ignored.
func (s *NoteStore) SetMaxUndoLevels(levels int) {
	if levels >= 1 {
		s.maxUndoLevels = levels
	}
}

// Notes exposes the underlying sequence in storage order. Callers must not
// mutate it; use the store operations instead.
func (s *NoteStore) Notes() []Note {
	return s.notes
}

// Len returns the number of notes.
func (s *NoteStore) Len() int {
	return len(s.notes)
}

// Create validates and adds a note, returning its assigned ID. It returns 0
// without allocating an ID when the fields are invalid, or when
// allowOverlap is false and the note would overlap another on the same key.
func (s *NoteStore) Create(tick Tick, duration Duration, key MidiKey, velocity Velocity, channel Channel, selected, recordUndo, allowOverlap bool) NoteID {
	n, err := NewNote(tick, duration, key, velocity, channel)
	if err != nil {
		return 0
	}
	n.Selected = selected

	if !allowOverlap && s.wouldOverlap(n, 0) {
		return 0
	}

	if recordUndo {
		s.pushUndo()
	}

	n.ID = s.nextID
	s.nextID++

	pos := len(s.notes)
	s.notes = append(s.notes, n)
	s.idToPos[n.ID] = pos
	s.keyToPos[n.Key] = append(s.keyToPos[n.Key], pos)
	if selected {
		s.selected[n.ID] = struct{}{}
	}
	return n.ID
}

// Remove deletes a note by ID. Returns false if the ID is unknown.
func (s *NoteStore) Remove(id NoteID, recordUndo bool) bool {
	pos, ok := s.idToPos[id]
	if !ok {
		return false
	}
	if recordUndo {
		s.pushUndo()
	}
	s.notes = append(s.notes[:pos], s.notes[pos+1:]...)
	s.rebuildIndexes()
	s.rebuildSelection()
	return true
}

// Move shifts a note by the given deltas, clamping tick to >= 0 and key to
// 0..127. When allowOverlap is false and the moved note would overlap, the
// note is restored and false is returned.
func (s *NoteStore) Move(id NoteID, deltaTick Tick, deltaKey int, recordUndo, allowOverlap bool) bool {
	pos, ok := s.idToPos[id]
	if !ok {
		return false
	}

	var snapshot []Note
	if recordUndo {
		snapshot = s.copyNotes()
	}

	original := s.notes[pos]
	moved := original
	moved.MoveBy(deltaTick, deltaKey)

	if !allowOverlap {
		if s.wouldOverlap(moved, id) {
			return false
		}
	}

	s.notes[pos] = moved
	if recordUndo {
		s.pushUndoSnapshot(snapshot)
	}
	s.rebuildIndexes()
	return true
}

// Resize sets a new duration for a note. newDuration must be positive.
func (s *NoteStore) Resize(id NoteID, newDuration Duration, recordUndo, allowOverlap bool) bool {
	pos, ok := s.idToPos[id]
	if !ok {
		return false
	}
	if newDuration <= 0 {
		return false
	}

	var snapshot []Note
	if recordUndo {
		snapshot = s.copyNotes()
	}

	resized := s.notes[pos]
	resized.Duration = newDuration

	if !allowOverlap && s.wouldOverlap(resized, id) {
		return false
	}

	s.notes[pos] = resized
	if recordUndo {
		s.pushUndoSnapshot(snapshot)
	}
	s.rebuildIndexes()
	return true
}

// wouldOverlap reports whether probe overlaps any stored note on the same
// key, ignoring excludeID (0 excludes nothing).
func (s *NoteStore) wouldOverlap(probe Note, excludeID NoteID) bool {
	for _, pos := range s.keyToPos[probe.Key] {
		existing := s.notes[pos]
		if excludeID != 0 && existing.ID == excludeID {
			continue
		}
		if probe.Overlaps(existing) {
			return true
		}
	}
	return false
}

// FindByID returns a copy of the note with the given ID.
func (s *NoteStore) FindByID(id NoteID) (Note, bool) {
	pos, ok := s.idToPos[id]
	if !ok {
		return Note{}, false
	}
	return s.notes[pos], true
}

// NoteAt returns a note on the given key whose interval contains tick.
func (s *NoteStore) NoteAt(tick Tick, key MidiKey) (Note, bool) {
	for _, pos := range s.keyToPos[key] {
		if s.notes[pos].ContainsTick(tick) {
			return s.notes[pos], true
		}
	}
	return Note{}, false
}

// NotesInRange returns copies of all notes intersecting the half-open tick
// range [startTick, endTick) on keys minKey..maxKey inclusive.
func (s *NoteStore) NotesInRange(startTick, endTick Tick, minKey, maxKey MidiKey) []Note {
	var result []Note
	if startTick >= endTick || minKey > maxKey {
		return result
	}
	for key := minKey; key <= maxKey; key++ {
		for _, pos := range s.keyToPos[key] {
			n := s.notes[pos]
			if n.Tick < endTick && n.EndTick() > startTick {
				result = append(result, n)
			}
		}
	}
	return result
}

// Select marks a note as selected. When add is false the previous selection
// is cleared first. Unknown IDs are ignored.
func (s *NoteStore) Select(id NoteID, add bool) {
	pos, ok := s.idToPos[id]
	if !ok {
		return
	}
	if !add {
		s.ClearSelection()
	}
	s.notes[pos].Selected = true
	s.selected[id] = struct{}{}
}

// Deselect removes a note from the selection. Unknown IDs are ignored.
func (s *NoteStore) Deselect(id NoteID) {
	pos, ok := s.idToPos[id]
	if !ok {
		return
	}
	s.notes[pos].Selected = false
	delete(s.selected, id)
}

// ClearSelection deselects every note.
func (s *NoteStore) ClearSelection() {
	for i := range s.notes {
		s.notes[i].Selected = false
	}
	s.selected = make(map[NoteID]struct{})
}

// SelectAll selects every note.
func (s *NoteStore) SelectAll() {
	s.selected = make(map[NoteID]struct{}, len(s.notes))
	for i := range s.notes {
		s.notes[i].Selected = true
		s.selected[s.notes[i].ID] = struct{}{}
	}
}

// IsSelected reports whether the note with the given ID is selected.
func (s *NoteStore) IsSelected(id NoteID) bool {
	_, ok := s.selected[id]
	return ok
}

// SelectedIDs returns the IDs of all selected notes in storage order.
func (s *NoteStore) SelectedIDs() []NoteID {
	ids := make([]NoteID, 0, len(s.selected))
	for _, n := range s.notes {
		if n.Selected {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Clear removes all notes, selection, and history. The ID counter is not
// reset, so IDs stay unique across a Clear.
func (s *NoteStore) Clear() {
	s.notes = nil
	s.idToPos = make(map[NoteID]int)
	s.keyToPos = make(map[MidiKey][]int)
	s.selected = make(map[NoteID]struct{})
	s.undoStack = nil
	s.redoStack = nil
}

// SnapshotForUndo captures the current sequence as one undo step. Used to
// group multi-note edits (drags, keyboard moves) into a single undo.
func (s *NoteStore) SnapshotForUndo() {
	s.pushUndo()
}

// Undo restores the previous snapshot. Returns false if there is none.
func (s *NoteStore) Undo() bool {
	if len(s.undoStack) == 0 {
		return false
	}
	s.redoStack = append(s.redoStack, s.copyNotes())
	s.notes = s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.rebuildIndexes()
	s.rebuildSelection()
	return true
}

// Redo reverses the most recent Undo. Returns false if there is none.
func (s *NoteStore) Redo() bool {
	if len(s.redoStack) == 0 {
		return false
	}
	s.undoStack = append(s.undoStack, s.copyNotes())
	s.notes = s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.rebuildIndexes()
	s.rebuildSelection()
	return true
}

func (s *NoteStore) copyNotes() []Note {
	cp := make([]Note, len(s.notes))
	copy(cp, s.notes)
	return cp
}

func (s *NoteStore) pushUndo() {
	s.pushUndoSnapshot(s.copyNotes())
}

// pushUndoSnapshot records an already-taken snapshot. Any new history entry
// invalidates the redo stack.
func (s *NoteStore) pushUndoSnapshot(snapshot []Note) {
	s.undoStack = append(s.undoStack, snapshot)
	if len(s.undoStack) > s.maxUndoLevels {
		s.undoStack = s.undoStack[1:]
	}
	s.redoStack = nil
}

func (s *NoteStore) rebuildIndexes() {
	s.idToPos = make(map[NoteID]int, len(s.notes))
	s.keyToPos = make(map[MidiKey][]int)
	for pos, n := range s.notes {
		s.idToPos[n.ID] = pos
		s.keyToPos[n.Key] = append(s.keyToPos[n.Key], pos)
	}
}

func (s *NoteStore) rebuildSelection() {
	s.selected = make(map[NoteID]struct{})
	for _, n := range s.notes {
		if n.Selected {
			s.selected[n.ID] = struct{}{}
		}
	}
}
