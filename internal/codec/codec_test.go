package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rollwerk/pianoroll/internal/model"
)

func TestEncodeFormat(t *testing.T) {
	notes := model.NewNoteStore()
	notes.Create(0, 240, 60, 100, 0, false, false, false)
	notes.Create(480, 480, 67, 90, 1, false, false, false)

	lane := model.NewControlLane(1)
	lane.AddPoint(0, 0)
	lane.AddPoint(240, 64)
	lane.AddPoint(480, 127)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, notes, []*model.ControlLane{lane}))

	want := "PPR1\n" +
		"N 0 240 60 100 0\n" +
		"N 480 480 67 90 1\n" +
		"C 1 0 0\n" +
		"C 1 240 64\n" +
		"C 1 480 127\n"
	assert.Equal(t, want, buf.String())
}

func TestRoundTrip(t *testing.T) {
	notes := model.NewNoteStore()
	notes.Create(0, 240, 60, 100, 0, false, false, false)
	notes.Create(480, 480, 67, 90, 1, false, false, false)

	lane := model.NewControlLane(1)
	lane.AddPoint(0, 0)
	lane.AddPoint(240, 64)
	lane.AddPoint(480, 127)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, notes, []*model.ControlLane{lane}))

	fresh := model.NewNoteStore()
	lanes, err := Decode(&buf, fresh)
	require.NoError(t, err)

	require.Equal(t, 2, fresh.Len())
	got := fresh.Notes()
	assert.Equal(t, model.Tick(0), got[0].Tick)
	assert.Equal(t, model.Duration(240), got[0].Duration)
	assert.Equal(t, 60, got[0].Key)
	assert.Equal(t, 100, got[0].Velocity)
	assert.Equal(t, 0, got[0].Channel)
	assert.Equal(t, model.Tick(480), got[1].Tick)
	assert.Equal(t, 67, got[1].Key)
	assert.Equal(t, 90, got[1].Velocity)
	assert.Equal(t, 1, got[1].Channel)

	require.Len(t, lanes, 1)
	assert.Equal(t, 1, lanes[0].CCNumber())
	points := lanes[0].Points()
	require.Len(t, points, 3)
	assert.Equal(t, model.ControlPoint{Tick: 0, Value: 0}, points[0])
	assert.Equal(t, model.ControlPoint{Tick: 240, Value: 64}, points[1])
	assert.Equal(t, model.ControlPoint{Tick: 480, Value: 127}, points[2])
}

func TestDecodeSkipsBadLines(t *testing.T) {
	in := strings.Join([]string{
		"PPR1",
		"N 0 240 60 100 0",
		"X something unknown",
		"N bad fields here",
		"N 0 240",
		"C 1 120 64",
		"C 1 nonsense",
		"",
		"N 480 240 61 100 0",
	}, "\n")

	notes := model.NewNoteStore()
	lanes, err := Decode(strings.NewReader(in), notes)
	require.NoError(t, err)

	assert.Equal(t, 2, notes.Len())
	require.Len(t, lanes, 1)
	assert.Len(t, lanes[0].Points(), 1)
}

func TestDecodeTrustsOverlaps(t *testing.T) {
	in := "PPR1\nN 0 480 60 100 0\nN 240 480 60 100 0\n"
	notes := model.NewNoteStore()
	_, err := Decode(strings.NewReader(in), notes)
	require.NoError(t, err)
	assert.Equal(t, 2, notes.Len())
}

func TestDecodeClearsTarget(t *testing.T) {
	notes := model.NewNoteStore()
	notes.Create(0, 240, 60, 100, 0, false, false, false)

	_, err := Decode(strings.NewReader("PPR1\n"), notes)
	require.NoError(t, err)
	assert.Equal(t, 0, notes.Len())
}

func TestDecodeLanesInEncounterOrder(t *testing.T) {
	in := "PPR1\nC 11 0 1\nC 1 0 2\nC 11 240 3\n"
	notes := model.NewNoteStore()
	lanes, err := Decode(strings.NewReader(in), notes)
	require.NoError(t, err)
	require.Len(t, lanes, 2)
	assert.Equal(t, 11, lanes[0].CCNumber())
	assert.Equal(t, 1, lanes[1].CCNumber())
	assert.Len(t, lanes[0].Points(), 2)
}
