// Package model holds the pure data model of the piano roll: notes, the
// note store with selection and undo, and MIDI CC lanes. Nothing in here
// knows about pixels or the host UI.
package model

// Tick is the integer musical time unit; TicksPerBeat converts to beats.
type Tick = int64

// Duration is a note length in ticks.
type Duration = int64

// MidiKey is a MIDI note number (0..127).
type MidiKey = int

// Velocity is a MIDI velocity (0..127).
type Velocity = int

// Channel is a MIDI channel (0..15).
type Channel = int

// NoteID identifies a note inside a NoteStore. 0 is reserved as invalid.
type NoteID = uint64
