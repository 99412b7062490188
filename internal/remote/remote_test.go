package remote

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lightbath/ringpulse/internal/led"
	"github.com/lightbath/ringpulse/internal/modes"
	"github.com/stretchr/testify/assert"
)

type dispatcherProbe struct {
	*Dispatcher
	previews []int
	sleeps   []time.Duration
}

func newTestDispatcher(state *modes.State) *dispatcherProbe {
	p := &dispatcherProbe{}
	p.Dispatcher = &Dispatcher{
		State:   state,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Preview: func(preset int) { p.previews = append(p.previews, preset) },
		Sleep:   func(d time.Duration) { p.sleeps = append(p.sleeps, d) },
		Quiet:   250 * time.Millisecond,
	}
	return p
}

func TestLookupDeterministic(t *testing.T) {
	tests := []struct {
		code   Code
		action Action
		mode   modes.Mode
		ok     bool
	}{
		{CodeKey1, ActionSelect, modes.ModeStatic0, true},
		{CodeKey2, ActionSelect, modes.ModeStatic1, true},
		{CodeKey3, ActionSelect, modes.ModeStatic2, true},
		{CodeKey4, ActionSelect, modes.ModeVisualizerFull, true},
		{CodeKey5, ActionSelect, modes.ModeVisualizerMellow, true},
		{CodeVolUp, ActionBrightnessUp, 0, true},
		{CodeVolDown, ActionBrightnessDown, 0, true},
		{CodeRepeat, ActionIgnore, 0, true},
		{CodePlay, ActionIgnore, 0, true},
		{Code(0xDEADBEEF), 0, 0, false},
	}
	for _, tt := range tests {
		// Same code, same answer, every time.
		for i := 0; i < 3; i++ {
			action, mode, ok := Lookup(tt.code)
			assert.Equal(t, tt.ok, ok, "code %#x", uint32(tt.code))
			if !ok {
				continue
			}
			assert.Equal(t, tt.action, action, "code %#x", uint32(tt.code))
			if tt.action == ActionSelect {
				assert.Equal(t, tt.mode, mode, "code %#x", uint32(tt.code))
			}
		}
	}
}

func TestSelectTurnsOn(t *testing.T) {
	state := &modes.State{}
	d := newTestDispatcher(state)

	d.Handle(CodeKey4)
	assert.Equal(t, modes.StatusOn, state.Status)
	assert.Equal(t, modes.ModeVisualizerFull, state.Mode)
}

func TestUnrecognizedForcesOff(t *testing.T) {
	state := &modes.State{Status: modes.StatusOn, Mode: modes.ModeStatic0}
	d := newTestDispatcher(state)

	d.Handle(Code(0x1BADC0DE))
	assert.Equal(t, modes.StatusOff, state.Status)
}

func TestIgnoredCodesChangeNothing(t *testing.T) {
	state := &modes.State{Status: modes.StatusOn, Mode: modes.ModeStatic2, Preset: 2}
	d := newTestDispatcher(state)

	for _, code := range []Code{CodeRepeat, CodeChMinus, CodePlay, CodeEQ} {
		d.Handle(code)
	}
	assert.Equal(t, modes.State{Status: modes.StatusOn, Mode: modes.ModeStatic2, Preset: 2}, *state)
	assert.Empty(t, d.previews)
}

func TestBrightnessStepsPreviewAndOff(t *testing.T) {
	state := &modes.State{Status: modes.StatusOn, Mode: modes.ModeStatic0, Preset: 1}
	d := newTestDispatcher(state)

	d.Handle(CodeVolUp)
	assert.Equal(t, 2, state.Preset)
	assert.Equal(t, []int{2}, d.previews)
	assert.Equal(t, modes.StatusOff, state.Status)

	d.Handle(CodeVolDown)
	d.Handle(CodeVolDown)
	d.Handle(CodeVolDown)
	assert.Equal(t, 0, state.Preset, "clamped at the dim end")

	state.Preset = led.NumPresets - 1
	d.Handle(CodeVolUp)
	assert.Equal(t, led.NumPresets-1, state.Preset, "clamped at the bright end")
}

func TestQuietPeriodAfterEveryCode(t *testing.T) {
	state := &modes.State{}
	d := newTestDispatcher(state)

	d.Handle(CodeKey1)
	d.Handle(CodeRepeat)
	d.Handle(Code(0xFFFF0000))

	assert.Equal(t, []time.Duration{
		250 * time.Millisecond,
		250 * time.Millisecond,
		250 * time.Millisecond,
	}, d.sleeps)
}
