package model

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRejectsOverlap(t *testing.T) {
	s := NewNoteStore()

	id := s.Create(0, 240, 60, 100, 0, false, true, false)
	require.NotZero(t, id)

	// Overlapping on the same key is rejected and returns 0.
	rejected := s.Create(120, 240, 60, 100, 0, false, true, false)
	assert.Zero(t, rejected)
	assert.Equal(t, 1, s.Len())

	// The same interval on another key succeeds.
	id2 := s.Create(120, 240, 61, 100, 0, false, true, false)
	assert.NotZero(t, id2)
	assert.Equal(t, 2, s.Len())
}

func TestCreateAllowOverlap(t *testing.T) {
	s := NewNoteStore()
	require.NotZero(t, s.Create(0, 240, 60, 100, 0, false, false, false))
	assert.NotZero(t, s.Create(0, 240, 60, 100, 0, false, false, true))
	assert.Equal(t, 2, s.Len())
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	s := NewNoteStore()
	assert.Zero(t, s.Create(-1, 240, 60, 100, 0, false, true, false))
	assert.Zero(t, s.Create(0, 0, 60, 100, 0, false, true, false))
	assert.Zero(t, s.Create(0, 240, 200, 100, 0, false, true, false))
	assert.Equal(t, 0, s.Len())
}

func TestIDsAreUniqueAndMonotonic(t *testing.T) {
	s := NewNoteStore()
	var prev NoteID
	for i := 0; i < 10; i++ {
		id := s.Create(Tick(i)*480, 240, 60, 100, 0, false, false, false)
		require.NotZero(t, id)
		assert.Greater(t, id, prev)
		prev = id
	}
}

func TestMoveRestoresOnOverlap(t *testing.T) {
	s := NewNoteStore()
	a := s.Create(0, 240, 60, 100, 0, false, false, false)
	b := s.Create(480, 240, 60, 100, 0, false, false, false)
	require.NotZero(t, a)
	require.NotZero(t, b)

	// Moving B onto A fails and leaves B untouched.
	assert.False(t, s.Move(b, -360, 0, false, false))
	n, ok := s.FindByID(b)
	require.True(t, ok)
	assert.Equal(t, Tick(480), n.Tick)

	// Moving B to another key succeeds even over A's interval.
	assert.True(t, s.Move(b, -360, 1, false, false))
	n, _ = s.FindByID(b)
	assert.Equal(t, Tick(120), n.Tick)
	assert.Equal(t, 61, n.Key)
}

func TestResize(t *testing.T) {
	s := NewNoteStore()
	a := s.Create(0, 240, 60, 100, 0, false, false, false)
	b := s.Create(480, 240, 60, 100, 0, false, false, false)

	assert.False(t, s.Resize(a, 0, false, false))
	assert.False(t, s.Resize(a, 600, false, false), "growing into b is rejected")
	assert.True(t, s.Resize(a, 480, false, false))
	n, _ := s.FindByID(a)
	assert.Equal(t, Duration(480), n.Duration)
	_ = b
}

func TestRemoveUnknownID(t *testing.T) {
	s := NewNoteStore()
	assert.False(t, s.Remove(42, true))
	assert.False(t, s.Move(42, 1, 0, true, false))
	assert.False(t, s.Resize(42, 1, true, false))
}

func TestSelectionOperations(t *testing.T) {
	s := NewNoteStore()
	a := s.Create(0, 240, 60, 100, 0, false, false, false)
	b := s.Create(480, 240, 60, 100, 0, false, false, false)

	s.Select(a, false)
	assert.True(t, s.IsSelected(a))
	assert.False(t, s.IsSelected(b))

	s.Select(b, true)
	assert.ElementsMatch(t, []NoteID{a, b}, s.SelectedIDs())

	// Non-additive select replaces.
	s.Select(b, false)
	assert.Equal(t, []NoteID{b}, s.SelectedIDs())

	s.Deselect(b)
	assert.Empty(t, s.SelectedIDs())

	s.SelectAll()
	assert.Len(t, s.SelectedIDs(), 2)
	s.ClearSelection()
	assert.Empty(t, s.SelectedIDs())
}

func TestNoteAtAndRangeQueries(t *testing.T) {
	s := NewNoteStore()
	a := s.Create(0, 240, 60, 100, 0, false, false, false)
	s.Create(480, 240, 62, 100, 0, false, false, false)

	n, ok := s.NoteAt(120, 60)
	require.True(t, ok)
	assert.Equal(t, a, n.ID)

	_, ok = s.NoteAt(240, 60)
	assert.False(t, ok, "end tick is exclusive")

	_, ok = s.NoteAt(120, 61)
	assert.False(t, ok)

	assert.Len(t, s.NotesInRange(0, 1000, 0, 127), 2)
	assert.Len(t, s.NotesInRange(0, 1000, 61, 63), 1)
	assert.Empty(t, s.NotesInRange(1000, 0, 0, 127))
	assert.Empty(t, s.NotesInRange(241, 479, 60, 60))
}

func TestUndoRedo(t *testing.T) {
	s := NewNoteStore()
	a := s.Create(0, 240, 60, 100, 0, false, true, false)
	s.Create(480, 240, 61, 100, 0, false, true, false)

	require.True(t, s.Undo())
	assert.Equal(t, 1, s.Len())
	require.True(t, s.Undo())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Undo())

	require.True(t, s.Redo())
	assert.Equal(t, 1, s.Len())
	n, ok := s.FindByID(a)
	require.True(t, ok, "ids survive snapshots")
	assert.Equal(t, Tick(0), n.Tick)

	require.True(t, s.Redo())
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Redo())
}

func TestMutationClearsRedo(t *testing.T) {
	s := NewNoteStore()
	s.Create(0, 240, 60, 100, 0, false, true, false)
	s.Create(480, 240, 61, 100, 0, false, true, false)
	require.True(t, s.Undo())
	s.Create(960, 240, 62, 100, 0, false, true, false)
	assert.False(t, s.Redo())
}

func TestUndoLevelCap(t *testing.T) {
	s := NewNoteStore()
	s.SetMaxUndoLevels(3)
	for i := 0; i < 6; i++ {
		s.Create(Tick(i)*480, 240, 60, 100, 0, false, true, false)
	}
	undos := 0
	for s.Undo() {
		undos++
	}
	assert.Equal(t, 3, undos)
}

func TestSnapshotForUndoGroupsEdits(t *testing.T) {
	s := NewNoteStore()
	a := s.Create(0, 240, 60, 100, 0, false, false, false)
	b := s.Create(480, 240, 61, 100, 0, false, false, false)

	s.SnapshotForUndo()
	s.Move(a, 480, 0, false, false)
	s.Move(b, 480, 0, false, false)

	require.True(t, s.Undo())
	na, _ := s.FindByID(a)
	nb, _ := s.FindByID(b)
	assert.Equal(t, Tick(0), na.Tick)
	assert.Equal(t, Tick(480), nb.Tick)
}

// checkStoreInvariants verifies the §8-style universal invariants: index
// consistency, selection consistency, and non-overlap.
func checkStoreInvariants(s *NoteStore) bool {
	seen := map[NoteID]bool{}
	for pos, n := range s.notes {
		if n.ID == 0 || seen[n.ID] {
			return false
		}
		seen[n.ID] = true
		if s.idToPos[n.ID] != pos {
			return false
		}
	}
	if len(s.idToPos) != len(s.notes) {
		return false
	}
	count := 0
	for _, positions := range s.keyToPos {
		count += len(positions)
		for _, pos := range positions {
			if pos < 0 || pos >= len(s.notes) {
				return false
			}
		}
	}
	if count != len(s.notes) {
		return false
	}
	for _, n := range s.notes {
		if n.Selected != s.IsSelected(n.ID) {
			return false
		}
	}
	for i, a := range s.notes {
		for j, b := range s.notes {
			if i != j && a.Overlaps(b) {
				return false
			}
		}
	}
	return true
}

func TestPropertyStoreInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	type op struct {
		kind      int
		tick      int64
		dur       int64
		key       int
		deltaTick int64
		deltaKey  int
	}

	genOp := gopter.CombineGens(
		gen.IntRange(0, 6),
		gen.Int64Range(0, 4*1920),
		gen.Int64Range(1, 960),
		gen.IntRange(0, 127),
		gen.Int64Range(-960, 960),
		gen.IntRange(-12, 12),
	).Map(func(vs []interface{}) op {
		return op{
			kind:      vs[0].(int),
			tick:      vs[1].(int64),
			dur:       vs[2].(int64),
			key:       vs[3].(int),
			deltaTick: vs[4].(int64),
			deltaKey:  vs[5].(int),
		}
	})

	properties.Property("indices, selection, and non-overlap hold after any op sequence", prop.ForAll(
		func(ops []op) bool {
			s := NewNoteStore()
			var ids []NoteID
			for _, o := range ops {
				switch o.kind {
				case 0, 1:
					if id := s.Create(o.tick, o.dur, o.key, 100, 0, o.kind == 1, true, false); id != 0 {
						ids = append(ids, id)
					}
				case 2:
					if len(ids) > 0 {
						s.Move(ids[int(o.tick)%len(ids)], o.deltaTick, o.deltaKey, true, false)
					}
				case 3:
					if len(ids) > 0 {
						s.Resize(ids[int(o.tick)%len(ids)], o.dur, true, false)
					}
				case 4:
					if len(ids) > 0 {
						s.Remove(ids[int(o.tick)%len(ids)], true)
					}
				case 5:
					if len(ids) > 0 {
						s.Select(ids[int(o.tick)%len(ids)], o.deltaKey%2 == 0)
					}
				case 6:
					s.Undo()
				}
				if !checkStoreInvariants(s) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genOp),
	))

	properties.Property("N undos then N redos restore the exact sequence", prop.ForAll(
		func(ops []op) bool {
			s := NewNoteStore()
			s.SetMaxUndoLevels(10000)
			var ids []NoteID
			mutations := 0
			for _, o := range ops {
				switch o.kind % 3 {
				case 0:
					if id := s.Create(o.tick, o.dur, o.key, 100, 0, false, true, false); id != 0 {
						ids = append(ids, id)
						mutations++
					}
				case 1:
					if len(ids) > 0 && s.Move(ids[int(o.tick)%len(ids)], o.deltaTick, o.deltaKey, true, false) {
						mutations++
					}
				case 2:
					if len(ids) > 0 && s.Resize(ids[int(o.tick)%len(ids)], o.dur, true, false) {
						mutations++
					}
				}
			}
			want := append([]Note(nil), s.Notes()...)
			for i := 0; i < mutations; i++ {
				if !s.Undo() {
					return false
				}
			}
			for i := 0; i < mutations; i++ {
				if !s.Redo() {
					return false
				}
			}
			got := s.Notes()
			if len(got) != len(want) {
				return false
			}
			for i := range want {
				if got[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genOp),
	))

	properties.TestingRun(t)
}
