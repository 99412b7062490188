// Package modes implements the installation's lighting modes and the
// per-tick engine that drives them against the shared pixel buffer.
package modes

import (
	"time"

	"github.com/lightbath/ringpulse/internal/audio"
	"github.com/lightbath/ringpulse/internal/hue"
	"github.com/lightbath/ringpulse/internal/led"
	"github.com/pkg/errors"
)

// Status is the strip's on/off switch.
type Status uint8

const (
	StatusOff Status = iota
	StatusOn
)

// Mode selects the active effect.
type Mode uint8

const (
	ModeStatic0 Mode = iota
	ModeStatic1
	ModeStatic2
	ModeVisualizerFull
	ModeVisualizerMellow
	ModeBoot
)

// NumStatics is the number of static color flavors.
const NumStatics = 3

// String returns a human-friendly mode name.
func (m Mode) String() string {
	switch m {
	case ModeStatic0:
		return "static-0"
	case ModeStatic1:
		return "static-1"
	case ModeStatic2:
		return "static-2"
	case ModeVisualizerFull:
		return "visualizer-full"
	case ModeVisualizerMellow:
		return "visualizer-mellow"
	case ModeBoot:
		return "boot"
	default:
		return "unknown"
	}
}

// State is the mode selection shared between the input dispatcher and the
// engine. The dispatcher is the only writer outside the boot handoff.
type State struct {
	Status Status
	Mode   Mode
	Preset int // brightness preset index, 0..led.NumPresets-1
}

// Engine applies the active mode to the strip, one call per loop tick.
// All fields are wired once at startup and the engine is only ever used
// from the main loop.
type Engine struct {
	Strip   led.Strip
	State   *State
	Sampler *audio.Sampler
	Wheel   *hue.Wheel

	// Statics are the static color flavors, one per ModeStaticN.
	Statics [NumStatics]led.Pixel

	// Commit clamps and transmits the strip. The boot ramp calls it once
	// per step; every other mode leaves committing to the caller.
	Commit func() error

	// Sleep paces the boot ramp. Tests inject a no-op.
	Sleep    func(time.Duration)
	BootStep time.Duration

	bootDone bool
	blanked  bool
}

// Boot ramp shape: the ring's blue channel climbs a step per commit, and the
// accent rail starts bootStagger steps later so it lands after the ring.
const (
	bootSteps   = 255
	bootStagger = 20
)

// Tick runs one loop iteration of the active mode. sample is the raw
// envelope byte read this tick; ok is false when the serial link had no data,
// in which case the visualizers leave the buffer untouched.
func (e *Engine) Tick(sample uint8, ok bool) error {
	if e.State.Status != StatusOn {
		e.blankOnce()
		return nil
	}
	e.blanked = false

	switch e.State.Mode {
	case ModeBoot:
		return e.runBoot()
	case ModeStatic0, ModeStatic1, ModeStatic2:
		e.staticFill(e.Statics[e.State.Mode-ModeStatic0])
	case ModeVisualizerFull:
		if !ok {
			return nil
		}
		level := e.Sampler.Sample(sample)
		e.ripple()
		// The wheel is paced by the smoothed level so the hue keeps turning
		// through the gaps between beats.
		e.Wheel.Step(int(e.Sampler.Smoothed()) / 8)
		e.Strip.Set(led.RingCenter, e.Wheel.Color().Scale(level))
		e.accentGlow(level)
	case ModeVisualizerMellow:
		if !ok {
			return nil
		}
		level := e.Sampler.Sample(sample)
		e.ripple()
		e.Strip.Set(led.RingCenter, led.Pixel{level, 0, 0})
		e.accentGlow(level)
	default:
		// Unmapped mode numbers fall back to off.
		e.State.Status = StatusOff
		e.blankOnce()
	}

	return nil
}

// blankOnce turns the strip off on the first tick after the status drops and
// leaves the buffer alone afterwards. The guard is a flag rather than a
// sentinel pixel: a visualizer frame can leave ring pixel 0 dark while the
// rest of the strip is lit.
func (e *Engine) blankOnce() {
	if e.blanked {
		return
	}
	e.Strip.Clear()
	e.blanked = true
}

// staticFill writes a flat color, guarded by the sentinel pixel so the
// buffer is rewritten once per activation. Rewriting identical values would
// be harmless; the guard just saves the work.
func (e *Engine) staticFill(c led.Pixel) {
	if e.Strip[led.RingStart] == c {
		return
	}
	e.Strip.Fill(led.RingStart, led.RingEnd, c)
	e.Strip.Fill(led.AccentStart, led.AccentEnd, c)
}

// ripple shifts every ring pixel one position outward from RingCenter,
// vacating the center for this tick's sample color. Two directional passes,
// low side then high side, so no pixel is read after it is overwritten.
func (e *Engine) ripple() {
	for i := led.RingStart; i < led.RingCenter; i++ {
		e.Strip[i] = e.Strip[i+1]
	}
	for i := led.RingEnd - 1; i > led.RingCenter; i-- {
		e.Strip[i] = e.Strip[i-1]
	}
}

// accentGlow excites the accent rail by a fraction of the audio level and
// decays it by a small constant, giving a slow fade between hits.
func (e *Engine) accentGlow(level uint8) {
	for i := led.AccentStart; i < led.AccentEnd; i++ {
		e.Strip[i].Add(level / 5)
		e.Strip[i].Sub(8)
	}
}

// runBoot plays the one-shot power-up ramp. It blocks the loop for the whole
// animation by design and hands the state machine to the first static flavor
// when done. It never runs twice in one process.
func (e *Engine) runBoot() error {
	if e.bootDone {
		e.State.Mode = ModeStatic0
		return nil
	}

	for step := 1; step <= bootSteps+bootStagger; step++ {
		ringV := step
		if ringV > bootSteps {
			ringV = bootSteps
		}
		e.Strip.Fill(led.RingStart, led.RingEnd, led.Pixel{0, 0, uint8(ringV)})

		if step > bootStagger {
			e.Strip.Fill(led.AccentStart, led.AccentEnd, led.Pixel{0, 0, uint8(step - bootStagger)})
		}

		if err := e.Commit(); err != nil {
			return errors.Wrap(err, "boot ramp commit")
		}
		e.Sleep(e.BootStep)
	}

	e.bootDone = true
	e.State.Mode = ModeStatic0
	return nil
}
