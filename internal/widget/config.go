// Package widget ties the piano-roll core together: it owns the model, the
// view state, and the controllers, routes host input through the gesture
// priority order, and issues draw commands back to the host.
package widget

import "github.com/rollwerk/pianoroll/internal/model"

// Config selects layout geometry and musical defaults.
type Config struct {
	// Layout, in pixels.
	PianoKeyWidth  float64
	RulerHeight    float64
	TopPadding     float64
	FooterHeight   float64
	NoteLabelWidth float64 // left label column

	// CC lane.
	ShowCCLane  bool
	CCLaneHeight float64

	// Musical defaults.
	TicksPerBeat     int
	BeatsPerMeasure  int
	DefaultClipBars  int
	InitialCenterKey model.MidiKey
}

// DefaultConfig returns the standard layout.
func DefaultConfig() Config {
	return Config{
		PianoKeyWidth:    180,
		RulerHeight:      24,
		NoteLabelWidth:   180,
		ShowCCLane:       true,
		CCLaneHeight:     120,
		TicksPerBeat:     480,
		BeatsPerMeasure:  4,
		DefaultClipBars:  4,
		InitialCenterKey: 60,
	}
}

// CompactConfig narrows the key strip and CC lane.
func CompactConfig() Config {
	cfg := DefaultConfig()
	cfg.PianoKeyWidth = 150
	cfg.RulerHeight = 22
	cfg.NoteLabelWidth = 150
	cfg.CCLaneHeight = 90
	return cfg
}

// SpaciousConfig widens the key strip and CC lane.
func SpaciousConfig() Config {
	cfg := DefaultConfig()
	cfg.PianoKeyWidth = 200
	cfg.NoteLabelWidth = 200
	cfg.CCLaneHeight = 140
	return cfg
}
