package ringpulse

import (
	"strings"
	"testing"
	"time"

	"github.com/lightbath/ringpulse/internal/led"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodConfig = `
rate = 30
preset = 2
quiet_period = "300ms"

[strip]
device = "/dev/ttyACM0"
baud = 115200

[audio]
device = "/dev/ttyUSB1"
baud = 9600
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(goodConfig))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Rate)
	assert.Equal(t, 2, cfg.Preset)
	assert.Equal(t, "/dev/ttyACM0", cfg.Strip.Device)
	assert.Equal(t, 115200, cfg.Strip.Baud)
	assert.Equal(t, 300*time.Millisecond, time.Duration(cfg.QuietPeriod))

	// Unset fields fall back to defaults.
	assert.Equal(t, time.Duration(DefaultPreviewHold), time.Duration(cfg.PreviewHold))
	assert.Equal(t, DefaultStaticColors, cfg.StaticColors)

	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadPreset(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(goodConfig))
	require.NoError(t, err)

	cfg.Preset = led.NumPresets
	assert.Error(t, cfg.Validate())
	cfg.Preset = -1
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsMissingDevices(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(goodConfig))
	require.NoError(t, err)

	cfg.Strip.Device = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsBadStaticColor(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(goodConfig))
	require.NoError(t, err)

	cfg.StaticColors = []string{"#FFB36B", "not-a-color", "#7A00B0"}
	assert.Error(t, cfg.Validate())
}

func TestStaticPixels(t *testing.T) {
	cfg, err := ParseConfig(strings.NewReader(goodConfig))
	require.NoError(t, err)

	pix, err := cfg.StaticPixels()
	require.NoError(t, err)
	assert.Equal(t, led.Pixel{0xFF, 0xB3, 0x6B}, pix[0])
}
