package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollwerk/pianoroll/internal/coords"
	"github.com/rollwerk/pianoroll/internal/host"
	"github.com/rollwerk/pianoroll/internal/model"
	"github.com/rollwerk/pianoroll/internal/snap"
)

type keyboardFixture struct {
	notes *model.NoteStore
	snap  *snap.System
	cs    *coords.CoordinateSystem
	k     *Keyboard
}

func newKeyboardFixture() *keyboardFixture {
	notes := model.NewNoteStore()
	cs := coords.New(180)
	cs.SetViewportSize(800, 400)
	sn := snap.New(480)
	sn.SetMode(snap.Manual)
	sn.SetSnapDivision("1/4")
	return &keyboardFixture{notes: notes, snap: sn, cs: cs, k: NewKeyboard(notes, sn, cs)}
}

func key(k host.Key, mods host.Modifiers) host.KeyEvent {
	return host.KeyEvent{Key: k, Mods: mods}
}

func TestSelectAll(t *testing.T) {
	f := newKeyboardFixture()
	f.notes.Create(0, 480, 60, 100, 0, false, false, false)
	f.notes.Create(960, 480, 62, 100, 0, false, false, false)

	assert.True(t, f.k.HandleKey(key(host.KeyA, host.Modifiers{Ctrl: true})))
	assert.Len(t, f.notes.SelectedIDs(), 2)

	// Plain A is not a shortcut.
	assert.False(t, f.k.HandleKey(key(host.KeyA, host.Modifiers{})))
}

func TestDeleteSelection(t *testing.T) {
	f := newKeyboardFixture()
	a := f.notes.Create(0, 480, 60, 100, 0, true, false, false)
	b := f.notes.Create(960, 480, 62, 100, 0, false, false, false)
	_ = a

	assert.True(t, f.k.HandleKey(key(host.KeyDelete, host.Modifiers{})))
	assert.Equal(t, 1, f.notes.Len())
	_, ok := f.notes.FindByID(b)
	assert.True(t, ok)

	// One undo restores the whole deletion.
	require.True(t, f.notes.Undo())
	assert.Equal(t, 2, f.notes.Len())
}

func TestDeleteEmptySelectionIsNoop(t *testing.T) {
	f := newKeyboardFixture()
	f.notes.Create(0, 480, 60, 100, 0, false, false, false)
	assert.True(t, f.k.HandleKey(key(host.KeyBackspace, host.Modifiers{})))
	assert.Equal(t, 1, f.notes.Len())
	assert.False(t, f.notes.Undo(), "no-op records no history")
}

func TestTransposeArrows(t *testing.T) {
	f := newKeyboardFixture()
	a := f.notes.Create(0, 480, 60, 100, 0, true, false, false)

	assert.True(t, f.k.HandleKey(key(host.KeyUp, host.Modifiers{})))
	n, _ := f.notes.FindByID(a)
	assert.Equal(t, 61, n.Key)

	assert.True(t, f.k.HandleKey(key(host.KeyUp, host.Modifiers{Shift: true})))
	n, _ = f.notes.FindByID(a)
	assert.Equal(t, 73, n.Key)

	assert.True(t, f.k.HandleKey(key(host.KeyDown, host.Modifiers{})))
	n, _ = f.notes.FindByID(a)
	assert.Equal(t, 72, n.Key)
}

func TestTransposeGroupStaysIntactAtBounds(t *testing.T) {
	f := newKeyboardFixture()
	a := f.notes.Create(0, 480, 127, 100, 0, true, false, false)
	b := f.notes.Create(960, 480, 60, 100, 0, true, false, false)

	// The top note cannot go higher, so nothing moves.
	assert.False(t, f.k.HandleKey(key(host.KeyUp, host.Modifiers{})))
	na, _ := f.notes.FindByID(a)
	nb, _ := f.notes.FindByID(b)
	assert.Equal(t, 127, na.Key)
	assert.Equal(t, 60, nb.Key)
}

func TestTimeArrowsUseSnapDivision(t *testing.T) {
	f := newKeyboardFixture()
	a := f.notes.Create(480, 480, 60, 100, 0, true, false, false)

	assert.True(t, f.k.HandleKey(key(host.KeyRight, host.Modifiers{})))
	n, _ := f.notes.FindByID(a)
	assert.Equal(t, model.Tick(960), n.Tick)

	// Shift uses the fine 1/128-note step (15 ticks at 480 TPB).
	assert.True(t, f.k.HandleKey(key(host.KeyLeft, host.Modifiers{Shift: true})))
	n, _ = f.notes.FindByID(a)
	assert.Equal(t, model.Tick(945), n.Tick)
}

func TestTimeArrowsRejectMoveBeforeZero(t *testing.T) {
	f := newKeyboardFixture()
	a := f.notes.Create(240, 480, 60, 100, 0, true, false, false)
	b := f.notes.Create(960, 480, 62, 100, 0, true, false, false)

	// A 480-tick step left would push the earliest note negative.
	assert.False(t, f.k.HandleKey(key(host.KeyLeft, host.Modifiers{})))
	na, _ := f.notes.FindByID(a)
	nb, _ := f.notes.FindByID(b)
	assert.Equal(t, model.Tick(240), na.Tick)
	assert.Equal(t, model.Tick(960), nb.Tick)
}

func TestGroupMoveIsOneUndoStep(t *testing.T) {
	f := newKeyboardFixture()
	a := f.notes.Create(0, 480, 60, 100, 0, true, false, false)
	b := f.notes.Create(960, 480, 62, 100, 0, true, false, false)

	require.True(t, f.k.HandleKey(key(host.KeyRight, host.Modifiers{})))
	require.True(t, f.notes.Undo())
	na, _ := f.notes.FindByID(a)
	nb, _ := f.notes.FindByID(b)
	assert.Equal(t, model.Tick(0), na.Tick)
	assert.Equal(t, model.Tick(960), nb.Tick)
	assert.False(t, f.notes.Undo())
}

func TestCopyPaste(t *testing.T) {
	f := newKeyboardFixture()
	f.notes.Create(0, 480, 60, 100, 0, true, false, false)
	f.notes.Create(960, 480, 62, 100, 3, true, false, false)

	assert.False(t, f.k.HasClipboard())
	assert.True(t, f.k.HandleKey(key(host.KeyC, host.Modifiers{Ctrl: true})))
	assert.True(t, f.k.HasClipboard())

	// Move the originals out of the way, then paste at the original spots.
	require.True(t, f.k.HandleKey(key(host.KeyUp, host.Modifiers{Shift: true})))
	require.True(t, f.k.HandleKey(key(host.KeyV, host.Modifiers{Ctrl: true})))

	assert.Equal(t, 4, f.notes.Len())
	n, ok := f.notes.NoteAt(0, 60)
	require.True(t, ok)
	assert.Equal(t, 100, n.Velocity)
	n, ok = f.notes.NoteAt(960, 62)
	require.True(t, ok)
	assert.Equal(t, 3, n.Channel)

	// Pasted notes join the selection.
	assert.Len(t, f.notes.SelectedIDs(), 4)
}

func TestPasteAtTick(t *testing.T) {
	f := newKeyboardFixture()
	f.notes.Create(480, 240, 60, 100, 0, true, false, false)
	f.notes.Create(960, 240, 64, 100, 0, true, false, false)

	require.True(t, f.k.HandleKey(key(host.KeyC, host.Modifiers{Ctrl: true})))
	f.notes.ClearSelection()
	assert.False(t, f.k.HandleKey(key(host.KeyUp, host.Modifiers{})), "empty selection does not move")

	// Paste so the earliest copy lands at 1920; relative spacing holds.
	require.True(t, f.k.PasteAtTick(1920))
	_, ok := f.notes.NoteAt(1920, 60)
	assert.True(t, ok)
	_, ok = f.notes.NoteAt(2400, 64)
	assert.True(t, ok)
}

func TestPasteEmptyClipboard(t *testing.T) {
	f := newKeyboardFixture()
	assert.False(t, f.k.HandleKey(key(host.KeyV, host.Modifiers{Ctrl: true})))
	assert.False(t, f.k.PasteAtTick(0))
}

func TestUndoRedoKeys(t *testing.T) {
	f := newKeyboardFixture()
	f.notes.Create(0, 480, 60, 100, 0, false, true, false)

	assert.True(t, f.k.HandleKey(key(host.KeyZ, host.Modifiers{Ctrl: true})))
	assert.Equal(t, 0, f.notes.Len())
	assert.True(t, f.k.HandleKey(key(host.KeyY, host.Modifiers{Ctrl: true})))
	assert.Equal(t, 1, f.notes.Len())
	assert.False(t, f.k.HandleKey(key(host.KeyY, host.Modifiers{Ctrl: true})))
}

func TestAdaptiveArrowStepFollowsZoom(t *testing.T) {
	f := newKeyboardFixture()
	f.snap.SetMode(snap.Adaptive)
	a := f.notes.Create(0, 480, 60, 100, 0, true, false, false)

	// At 60 px/beat the adaptive step is a sixteenth (120 ticks).
	require.True(t, f.k.HandleKey(key(host.KeyRight, host.Modifiers{})))
	n, _ := f.notes.FindByID(a)
	assert.Equal(t, model.Tick(120), n.Tick)
}
