package hue

import (
	"math/rand"
	"testing"

	"github.com/lightbath/ringpulse/internal/led"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullCycle is the strength that walks the wheel exactly once around:
// three phases of raise-255 plus drain-255.
const fullCycle = 3 * (255 + 255)

func onRim(c led.Pixel) bool {
	var has0, has255 bool
	for _, v := range c {
		if v == 0 {
			has0 = true
		}
		if v == 255 {
			has255 = true
		}
	}
	return has0 && has255
}

func TestWheelStartsAtRed(t *testing.T) {
	w := NewWheel()
	assert.Equal(t, led.Pixel{255, 0, 0}, w.Color())
}

func TestWheelStaysOnRim(t *testing.T) {
	w := NewWheel()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 5000; i++ {
		w.Step(rng.Intn(64))
		require.True(t, onRim(w.Color()), "step %d: %v", i, w.Color())
	}
}

func TestWheelStepSplitsEvenly(t *testing.T) {
	// Stepping in pieces lands on the same color as one big step.
	strengths := []int{1, 7, 31, 255, 300, 1000}
	for _, total := range strengths {
		one := NewWheel()
		one.Step(total)

		many := NewWheel()
		for left := total; left > 0; left -= 13 {
			n := 13
			if left < n {
				n = left
			}
			many.Step(n)
		}

		assert.Equal(t, one.Color(), many.Color(), "total strength %d", total)
	}
}

func TestWheelFullCycleReturnsHome(t *testing.T) {
	w := NewWheel()
	w.Step(fullCycle)
	assert.Equal(t, led.Pixel{255, 0, 0}, w.Color())

	// Large cumulative strengths never diverge from the cycle.
	w.Step(10 * fullCycle)
	assert.Equal(t, led.Pixel{255, 0, 0}, w.Color())
}

func TestWheelPhaseWalk(t *testing.T) {
	w := NewWheel()
	w.Step(255)
	assert.Equal(t, led.Pixel{255, 255, 0}, w.Color(), "raise green")
	w.Step(255)
	assert.Equal(t, led.Pixel{0, 255, 0}, w.Color(), "drain red")
	w.Step(255)
	assert.Equal(t, led.Pixel{0, 255, 255}, w.Color(), "raise blue")
	w.Step(255)
	assert.Equal(t, led.Pixel{0, 0, 255}, w.Color(), "drain green")
}

func TestWheelZeroStep(t *testing.T) {
	w := NewWheel()
	w.Step(0)
	assert.Equal(t, led.Pixel{255, 0, 0}, w.Color())
}
