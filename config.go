package ringpulse

import (
	"encoding"
	"io"
	"time"

	"github.com/lightbath/ringpulse/internal/led"
	"github.com/lightbath/ringpulse/internal/modes"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// Config is the configuration for the ringpulse daemon. Zone boundaries and
// effect constants are compile-time properties of the installation and are
// deliberately not configurable here.
type Config struct {
	// Strip is the serial link to the strip controller.
	Strip PortConfig `toml:"strip"`
	// Audio is the serial link carrying the envelope byte stream from the
	// capture companion.
	Audio PortConfig `toml:"audio"`

	// Rate is the main loop tick rate in Hz.
	Rate int `toml:"rate"`
	// Preset is the initial brightness preset index, 0 (dimmest) to 4.
	Preset int `toml:"preset"`
	// StaticColors are the static mode flavors as hex color strings,
	// brightest channel first on the remote's digit keys.
	StaticColors []string `toml:"static_colors"`

	// QuietPeriod is the minimum pause after a handled remote code.
	QuietPeriod TOMLDuration `toml:"quiet_period"`
	// PreviewHold is how long a brightness-change preview stays lit.
	PreviewHold TOMLDuration `toml:"preview_hold"`
	// BootStepDelay is the delay between boot ramp steps.
	BootStepDelay TOMLDuration `toml:"boot_step_delay"`
}

// PortConfig describes one serial port.
type PortConfig struct {
	// Device is the path to the device file, usually /dev/ttyUSB0 or
	// /dev/ttyACM0.
	Device string `toml:"device"`
	// Baud is the baud rate for the connection.
	Baud int `toml:"baud"`
}

// Default timing constants, overridable from the config file.
const (
	DefaultRate          = 60
	DefaultQuietPeriod   = 250 * time.Millisecond
	DefaultPreviewHold   = 400 * time.Millisecond
	DefaultBootStepDelay = 4 * time.Millisecond
)

// DefaultStaticColors are the stock static flavors: warm white, amber, and
// deep violet.
var DefaultStaticColors = []string{"#FFB36B", "#FF8C00", "#7A00B0"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Strip.Device == "" {
		return errors.New("no strip device configured")
	}
	if c.Strip.Baud <= 0 {
		return errors.New("invalid strip baud rate")
	}
	if c.Audio.Device == "" {
		return errors.New("no audio device configured")
	}
	if c.Audio.Baud <= 0 {
		return errors.New("invalid audio baud rate")
	}
	if c.Rate <= 0 {
		return errors.New("invalid tick rate")
	}
	if c.Preset < 0 || c.Preset >= led.NumPresets {
		return errors.Errorf("preset out of range 0..%d", led.NumPresets-1)
	}
	if len(c.StaticColors) != modes.NumStatics {
		return errors.Errorf("expected %d static colors", modes.NumStatics)
	}
	if _, err := c.StaticPixels(); err != nil {
		return err
	}
	return nil
}

// StaticPixels parses the configured static colors into pixels.
func (c *Config) StaticPixels() ([modes.NumStatics]led.Pixel, error) {
	var out [modes.NumStatics]led.Pixel
	for i, s := range c.StaticColors {
		col, err := colorful.Hex(s)
		if err != nil {
			return out, errors.Wrapf(err, "invalid static color %q", s)
		}
		r, g, b := col.RGB255()
		out[i] = led.Pixel{r, g, b}
	}
	return out, nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader, filling in defaults for
// anything unset.
func ParseConfig(r io.Reader) (*Config, error) {
	config := Config{
		Rate:          DefaultRate,
		QuietPeriod:   TOMLDuration(DefaultQuietPeriod),
		PreviewHold:   TOMLDuration(DefaultPreviewHold),
		BootStepDelay: TOMLDuration(DefaultBootStepDelay),
	}
	if err := toml.NewDecoder(r).Decode(&config); err != nil {
		return nil, err
	}
	if config.StaticColors == nil {
		config.StaticColors = DefaultStaticColors
	}
	return &config, nil
}
