package model

import "fmt"

// Note is a single note in the roll. The zero value is not valid; use
// NewNote or NoteStore.Create, which validate all fields.
type Note struct {
	ID       NoteID
	Tick     Tick
	Duration Duration
	Key      MidiKey
	Velocity Velocity
	Channel  Channel
	Selected bool
}

// NewNote builds a validated note. The ID is left zero; the store assigns it.
func NewNote(tick Tick, duration Duration, key MidiKey, velocity Velocity, channel Channel) (Note, error) {
	n := Note{Tick: tick, Duration: duration, Key: key, Velocity: velocity, Channel: channel}
	if err := n.validate(); err != nil {
		return Note{}, err
	}
	return n, nil
}

func (n Note) validate() error {
	if n.Tick < 0 {
		return fmt.Errorf("note tick must be non-negative, got %d", n.Tick)
	}
	if n.Duration <= 0 {
		return fmt.Errorf("note duration must be positive, got %d", n.Duration)
	}
	if n.Key < 0 || n.Key > 127 {
		return fmt.Errorf("midi key must be in range 0-127, got %d", n.Key)
	}
	if n.Velocity < 0 || n.Velocity > 127 {
		return fmt.Errorf("velocity must be in range 0-127, got %d", n.Velocity)
	}
	if n.Channel < 0 || n.Channel > 15 {
		return fmt.Errorf("channel must be in range 0-15, got %d", n.Channel)
	}
	return nil
}

// EndTick returns the first tick after the note.
func (n Note) EndTick() Tick {
	return n.Tick + n.Duration
}

// Overlaps reports whether both notes share a key and their tick intervals
// [Tick, EndTick) intersect.
func (n Note) Overlaps(other Note) bool {
	if n.Key != other.Key {
		return false
	}
	return n.Tick < other.EndTick() && other.Tick < n.EndTick()
}

// ContainsTick reports whether tick falls inside [Tick, EndTick).
func (n Note) ContainsTick(tick Tick) bool {
	return n.Tick <= tick && tick < n.EndTick()
}

// MoveBy shifts the note, clamping the result to tick >= 0 and key 0..127.
func (n *Note) MoveBy(deltaTick Tick, deltaKey int) {
	t := n.Tick + deltaTick
	if t < 0 {
		t = 0
	}
	k := n.Key + deltaKey
	if k < 0 {
		k = 0
	} else if k > 127 {
		k = 127
	}
	n.Tick = t
	n.Key = k
}

// ResizeTo sets a new duration. Non-positive durations are rejected.
func (n *Note) ResizeTo(d Duration) error {
	if d <= 0 {
		return fmt.Errorf("note duration must be positive, got %d", d)
	}
	n.Duration = d
	return nil
}
