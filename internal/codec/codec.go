// Package codec reads and writes the clip contents: a simple line-based
// text format (PPR1) and Standard MIDI Files.
package codec

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rollwerk/pianoroll/internal/model"
)

// VersionTag is the first line of the text format.
const VersionTag = "PPR1"

// Encode writes notes and CC lanes as text:
//
//	PPR1
//	N <tick> <duration> <key> <velocity> <channel>
//	C <cc_number> <tick> <value>
//
// Notes come in storage order, then each lane's points in tick order. Note
// IDs are not part of the format.
func Encode(w io.Writer, notes *model.NoteStore, lanes []*model.ControlLane) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, VersionTag); err != nil {
		return err
	}
	for _, n := range notes.Notes() {
		if _, err := fmt.Fprintf(bw, "N %d %d %d %d %d\n", n.Tick, n.Duration, n.Key, n.Velocity, n.Channel); err != nil {
			return err
		}
	}
	for _, lane := range lanes {
		cc := lane.CCNumber()
		for _, p := range lane.Points() {
			if _, err := fmt.Fprintf(bw, "C %d %d %d\n", cc, p.Tick, p.Value); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Decode reads the text format into notes, returning the CC lanes bucketed
// by controller number in encounter order. The store is cleared first.
// Notes are created without undo records and with overlaps allowed (the
// file is trusted); malformed or unknown lines are skipped, not fatal.
func Decode(r io.Reader, notes *model.NoteStore) ([]*model.ControlLane, error) {
	notes.Clear()
	var lanes []*model.ControlLane
	ccToLane := map[int]*model.ControlLane{}

	sc := bufio.NewScanner(r)
	firstLine := true
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if firstLine {
			firstLine = false
			if line[0] == 'P' {
				// Version tag line; nothing else to check for v1.
				continue
			}
		}

		switch line[0] {
		case 'N':
			var tick, dur int64
			var key, vel, ch int
			if _, err := fmt.Sscanf(line, "N %d %d %d %d %d", &tick, &dur, &key, &vel, &ch); err != nil {
				continue
			}
			notes.Create(tick, dur, key, vel, ch, false, false, true)
		case 'C':
			var cc, val int
			var tick int64
			if _, err := fmt.Sscanf(line, "C %d %d %d", &cc, &tick, &val); err != nil {
				continue
			}
			lane, ok := ccToLane[cc]
			if !ok {
				lane = model.NewControlLane(cc)
				ccToLane[cc] = lane
				lanes = append(lanes, lane)
			}
			lane.AddPoint(tick, val)
		}
	}
	if err := sc.Err(); err != nil {
		return lanes, fmt.Errorf("could not read: %v", err)
	}
	return lanes, nil
}
