// Package remote maps decoded IR remote codes onto mode and brightness
// actions. The code table is the authoritative protocol surface: anything
// not listed is treated as a corrupted signal and turns the strip off.
package remote

import (
	"log/slog"
	"time"

	"github.com/lightbath/ringpulse/internal/led"
	"github.com/lightbath/ringpulse/internal/modes"
)

// Code is a decoded 32-bit IR command, NEC encoding, as forwarded by the
// strip controller.
type Code uint32

// Codes of the 17-key NEC remote paired with the installation.
const (
	CodeChMinus Code = 0xFFA25D
	CodeCh      Code = 0xFF629D
	CodeChPlus  Code = 0xFFE21D
	CodePrev    Code = 0xFF22DD
	CodeNext    Code = 0xFF02FD
	CodePlay    Code = 0xFFC23D
	CodeVolDown Code = 0xFFE01F
	CodeVolUp   Code = 0xFFA857
	CodeEQ      Code = 0xFF906F
	CodeKey1    Code = 0xFF30CF
	CodeKey2    Code = 0xFF18E7
	CodeKey3    Code = 0xFF7A85
	CodeKey4    Code = 0xFF10EF
	CodeKey5    Code = 0xFF38C7

	// CodeRepeat is the NEC repeat marker emitted while a button is held.
	CodeRepeat Code = 0xFFFFFFFF
)

// Action is what a mapped code does.
type Action uint8

const (
	// ActionIgnore marks codes that decode cleanly but do nothing, so they
	// are not mistaken for corrupted signals.
	ActionIgnore Action = iota
	ActionSelect
	ActionBrightnessUp
	ActionBrightnessDown
)

type binding struct {
	action Action
	mode   modes.Mode
}

// table is the exact lookup table. Transport-style keys and the repeat
// marker are deliberate no-ops.
var table = map[Code]binding{
	CodeRepeat:  {action: ActionIgnore},
	CodeChMinus: {action: ActionIgnore}, // power
	CodeCh:      {action: ActionIgnore},
	CodeChPlus:  {action: ActionIgnore},
	CodePrev:    {action: ActionIgnore},
	CodeNext:    {action: ActionIgnore},
	CodePlay:    {action: ActionIgnore},
	CodeEQ:      {action: ActionIgnore},

	CodeKey1: {action: ActionSelect, mode: modes.ModeStatic0},
	CodeKey2: {action: ActionSelect, mode: modes.ModeStatic1},
	CodeKey3: {action: ActionSelect, mode: modes.ModeStatic2},
	CodeKey4: {action: ActionSelect, mode: modes.ModeVisualizerFull},
	CodeKey5: {action: ActionSelect, mode: modes.ModeVisualizerMellow},

	CodeVolUp:   {action: ActionBrightnessUp},
	CodeVolDown: {action: ActionBrightnessDown},
}

// Lookup resolves a code against the table. ok is false for codes absent
// from it.
func Lookup(code Code) (Action, modes.Mode, bool) {
	b, ok := table[code]
	return b.action, b.mode, ok
}

// Dispatcher turns decoded codes into ModeState mutations. It is driven by
// the main loop only.
type Dispatcher struct {
	State  *modes.State
	Logger *slog.Logger

	// Preview shows the new brightness ceiling on the accent pixels for a
	// bounded interval. Called on every preset step.
	Preview func(preset int)

	// Sleep implements the post-handle quiet period. Tests inject a no-op.
	Sleep func(time.Duration)

	// Quiet is the minimum period between accepted decodes, suppressing
	// duplicate codes from a single press.
	Quiet time.Duration
}

// Handle maps one decoded code to its action. Unrecognized codes force the
// strip off: the commit call suppresses receive interrupts while
// transmitting, so a press landing mid-transmission usually arrives garbled,
// and treating garbage as "off" turns that defect into a usable second-press
// convention. The quiet period runs after every code, recognized or not.
func (d *Dispatcher) Handle(code Code) {
	action, mode, ok := Lookup(code)

	switch {
	case !ok:
		d.Logger.Debug("unrecognized remote code, forcing off", "code", uint32(code))
		d.State.Status = modes.StatusOff

	case action == ActionIgnore:
		d.Logger.Debug("ignored remote code", "code", uint32(code))

	case action == ActionSelect:
		d.Logger.Debug("mode selected", "code", uint32(code), "mode", mode.String())
		d.State.Status = modes.StatusOn
		d.State.Mode = mode

	case action == ActionBrightnessUp:
		d.adjustPreset(+1)

	case action == ActionBrightnessDown:
		d.adjustPreset(-1)
	}

	d.Sleep(d.Quiet)
}

// adjustPreset steps the brightness preset, clamped at the ends, previews
// the new ceiling, and leaves the strip off. The preview is the only visible
// proof of the change; persisting a lit frame here is not wanted.
func (d *Dispatcher) adjustPreset(delta int) {
	preset := d.State.Preset + delta
	if preset < 0 {
		preset = 0
	}
	if preset > led.NumPresets-1 {
		preset = led.NumPresets - 1
	}
	d.State.Preset = preset
	d.Logger.Debug("brightness preset", "preset", preset, "ceiling", led.PresetCeilings[preset])

	if d.Preview != nil {
		d.Preview(preset)
	}
	d.State.Status = modes.StatusOff
}
