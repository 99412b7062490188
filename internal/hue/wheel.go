// Package hue implements the incremental RGB color wheel the visualizers
// cycle through.
package hue

import "github.com/lightbath/ringpulse/internal/led"

// phase identifies which edge of the color triangle the wheel is walking.
type phase uint8

const (
	redToGreen phase = iota
	greenToBlue
	blueToRed
	numPhases
)

// target and source channel indices per phase.
var phaseChannels = [numPhases][2]int{
	redToGreen:  {1, 0}, // raise G, then drain R
	greenToBlue: {2, 1},
	blueToRed:   {0, 2},
}

// Wheel walks the RGB color wheel using only integer channel arithmetic.
// Each phase first raises the target channel to 255, then drains the source
// channel to 0, at which point the next phase begins. Outside the instant of
// a phase handoff, exactly one channel is 0 and one is 255, so the color
// always sits on the fully-saturated rim of the wheel.
//
// The wheel is owned by the effect engine; effects advance it only through
// Step and never assign channels directly.
type Wheel struct {
	color led.Pixel
	phase phase
}

// NewWheel returns a wheel starting at pure red.
func NewWheel() *Wheel {
	return &Wheel{color: led.Pixel{255, 0, 0}}
}

// Color returns the wheel's current color.
func (w *Wheel) Color() led.Pixel {
	return w.color
}

// Step advances the wheel by strength units. Strength carried past a channel
// limit spills into the next stage or phase, so the walk speed is uniform
// regardless of where phase boundaries fall. The loop form keeps arbitrary
// strengths bounded instead of recursing per phase.
func (w *Wheel) Step(strength int) {
	for strength > 0 {
		tgt, src := phaseChannels[w.phase][0], phaseChannels[w.phase][1]

		if w.color[tgt] < 255 {
			room := int(255 - w.color[tgt])
			if strength < room {
				w.color[tgt] += uint8(strength)
				return
			}
			w.color[tgt] = 255
			strength -= room
			continue
		}

		if w.color[src] > 0 {
			left := int(w.color[src])
			if strength < left {
				w.color[src] -= uint8(strength)
				return
			}
			w.color[src] = 0
			strength -= left
		}

		w.phase = (w.phase + 1) % numPhases
	}
}
