package widget

import "github.com/rollwerk/pianoroll/internal/model"

// AdvancePlayback computes the next playback tick from tempo and elapsed
// time. When looping is enabled and the step passes the loop end, the
// position wraps back into the loop by the overshoot amount. The result
// never goes below zero.
func AdvancePlayback(current model.Tick, tempoBPM float64, ticksPerBeat int, deltaSeconds float64, loopEnabled bool, loopStart, loopEnd model.Tick) model.Tick {
	if deltaSeconds <= 0 || tempoBPM <= 0 || ticksPerBeat <= 0 {
		return current
	}
	ticksPerSecond := tempoBPM * float64(ticksPerBeat) / 60
	deltaTicks := ticksPerSecond * deltaSeconds
	if deltaTicks <= 0 {
		return current
	}

	pos := current + model.Tick(deltaTicks)
	if pos < 0 {
		pos = 0
	}
	if loopEnabled && loopEnd > loopStart && pos >= loopEnd {
		pos = loopStart + (pos - loopEnd)
		if pos < loopStart {
			pos = loopStart
		}
	}
	return pos
}

// PlaybackState is a small transport helper hosts can hold next to the
// widget: position, tempo, and an optional loop range. Advance is meant to
// be called once per frame while playing.
type PlaybackState struct {
	PositionTicks model.Tick
	TempoBPM      float64
	TicksPerBeat  int

	Playing bool

	LoopEnabled   bool
	LoopStartTick model.Tick
	LoopEndTick   model.Tick
}

// NewPlaybackState returns a stopped transport at the musical defaults.
func NewPlaybackState() PlaybackState {
	return PlaybackState{TempoBPM: 120, TicksPerBeat: 480}
}

func (p *PlaybackState) SetTempo(bpm float64) {
	if bpm > 0 {
		p.TempoBPM = bpm
	}
}

func (p *PlaybackState) SetPosition(tick model.Tick) {
	if tick < 0 {
		tick = 0
	}
	p.PositionTicks = tick
}

func (p *PlaybackState) SetLoopRange(start, end model.Tick) {
	if end < start {
		start, end = end, start
	}
	if start < 0 {
		start = 0
	}
	p.LoopStartTick = start
	p.LoopEndTick = end
}

// Advance moves the position by deltaSeconds while playing and returns the
// new position.
func (p *PlaybackState) Advance(deltaSeconds float64) model.Tick {
	if !p.Playing {
		return p.PositionTicks
	}
	p.PositionTicks = AdvancePlayback(p.PositionTicks, p.TempoBPM, p.TicksPerBeat, deltaSeconds, p.LoopEnabled, p.LoopStartTick, p.LoopEndTick)
	return p.PositionTicks
}
