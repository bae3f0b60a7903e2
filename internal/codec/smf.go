package codec

import (
	"fmt"
	"io"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/rollwerk/pianoroll/internal/model"
)

// timedMessage is one absolute-time event before delta conversion.
type timedMessage struct {
	tick model.Tick
	// noteOff events sort before coincident note-ons so zero-gap notes on
	// the same key do not merge.
	noteOff bool
	msg     smf.Message
}

// EncodeSMF writes the clip as a type-1 SMF: one track for the notes, one
// per CC lane, at the given ticks-per-beat.
func EncodeSMF(w io.Writer, notes *model.NoteStore, lanes []*model.ControlLane, ticksPerBeat int) error {
	if ticksPerBeat <= 0 {
		return fmt.Errorf("ticks per beat must be positive, got %d", ticksPerBeat)
	}

	out := smf.NewSMF1()
	out.TimeFormat = smf.MetricTicks(ticksPerBeat)

	var noteEvents []timedMessage
	for _, n := range notes.Notes() {
		noteEvents = append(noteEvents, timedMessage{
			tick: n.Tick,
			msg:  smf.Message(midi.NoteOn(uint8(n.Channel), uint8(n.Key), uint8(n.Velocity))),
		})
		noteEvents = append(noteEvents, timedMessage{
			tick:    n.EndTick(),
			noteOff: true,
			msg:     smf.Message(midi.NoteOff(uint8(n.Channel), uint8(n.Key))),
		})
	}
	noteTrack := toTrack(noteEvents)
	noteTrack = append(smf.Track{smf.Event{Delta: 0, Message: smf.MetaTempo(120)}}, noteTrack...)
	out.Add(noteTrack)

	for _, lane := range lanes {
		var events []timedMessage
		cc := uint8(lane.CCNumber())
		for _, p := range lane.Points() {
			events = append(events, timedMessage{
				tick: p.Tick,
				msg:  smf.Message(midi.ControlChange(0, cc, uint8(p.Value))),
			})
		}
		out.Add(toTrack(events))
	}

	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("could not write smf: %v", err)
	}
	return nil
}

func toTrack(events []timedMessage) smf.Track {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].noteOff && !events[j].noteOff
	})
	var track smf.Track
	var last model.Tick
	for _, ev := range events {
		track = append(track, smf.Event{
			Delta:   uint32(ev.tick - last),
			Message: ev.msg,
		})
		last = ev.tick
	}
	track.Close(0)
	return track
}

// pendingNote tracks an open note-on until its note-off arrives.
type pendingNote struct {
	tick     model.Tick
	velocity uint8
}

type channelKey struct {
	ch, key uint8
}

// DecodeSMF reads an SMF stream into the store and CC lanes. Note-on and
// note-off events are paired per channel and key; an unmatched note-on is
// dropped. The store is cleared first; notes load with overlaps allowed.
// The returned ticks-per-beat is the file's metric resolution.
func DecodeSMF(r io.Reader, notes *model.NoteStore) ([]*model.ControlLane, int, error) {
	mid, err := smf.ReadFrom(r)
	if err != nil {
		return nil, 0, fmt.Errorf("could not read smf: %v", err)
	}
	metric, ok := mid.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, 0, fmt.Errorf("unsupported smf time format %v", mid.TimeFormat)
	}
	ticksPerBeat := int(metric)

	notes.Clear()
	var lanes []*model.ControlLane
	ccToLane := map[int]*model.ControlLane{}
	open := map[channelKey]pendingNote{}

	for _, track := range mid.Tracks {
		var now model.Tick
		for _, ev := range track {
			now += model.Tick(ev.Delta)
			msg := ev.Message

			var ch, key, vel uint8
			if msg.GetNoteStart(&ch, &key, &vel) {
				open[channelKey{ch, key}] = pendingNote{tick: now, velocity: vel}
				continue
			}
			if msg.GetNoteEnd(&ch, &key) {
				k := channelKey{ch, key}
				start, found := open[k]
				if !found {
					continue
				}
				delete(open, k)
				dur := now - start.tick
				if dur <= 0 {
					dur = 1
				}
				notes.Create(start.tick, dur, int(key), int(start.velocity), int(ch), false, false, true)
				continue
			}
			var cc, val uint8
			if msg.GetControlChange(&ch, &cc, &val) {
				lane, found := ccToLane[int(cc)]
				if !found {
					lane = model.NewControlLane(int(cc))
					ccToLane[int(cc)] = lane
					lanes = append(lanes, lane)
				}
				lane.AddPoint(now, int(val))
			}
		}
		// Notes left open at end of track are dropped.
		clear(open)
	}
	return lanes, ticksPerBeat, nil
}
