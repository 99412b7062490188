// Package envelope converts audio amplitude frames into the one-byte
// envelope stream the daemon consumes. The encoder implements catnip's
// processor.Output so it can sit at the end of either the stdin PCM path or
// a catnip capture pipeline.
package envelope

import (
	"io"
	"math"

	"github.com/noriah/catnip/processor"
	"github.com/pkg/errors"
)

// Defaults for the two shaping knobs. Tune so that the loudest expected
// input just reaches 255.
const (
	DefaultScale = 0.8
	DefaultPower = 2.2
)

// Encoder reduces amplitude bins to a single envelope byte per frame and
// writes it out. Amplitudes are expected in 0..1.
type Encoder struct {
	// W receives one byte per Write call.
	W io.Writer
	// Scale linearly scales amplitudes before shaping.
	Scale float64
	// Power raises the 0..255 value to this exponent, spreading the useful
	// range of quiet signals.
	Power float64
	// NumBins is reported to the catnip processor.
	NumBins int
}

var _ processor.Output = (*Encoder)(nil)

// Bins returns the number of bins the encoder expects per channel.
func (e *Encoder) Bins(int) int {
	return e.NumBins
}

// Write reduces one frame of per-channel bins to an envelope byte and writes
// it. Channels are averaged together since the wire carries a single byte
// per sample.
func (e *Encoder) Write(bins [][]float64, nchannels int) error {
	if nchannels > len(bins) {
		nchannels = len(bins)
	}

	var sum float64
	var n int
	for ch := 0; ch < nchannels; ch++ {
		for _, v := range bins[ch] {
			sum += math.Abs(v) * e.Scale
			n++
		}
	}
	if n == 0 {
		return nil
	}

	v := math.Pow(sum/float64(n)*255, e.Power)
	if v > 255 {
		v = 255
	}

	if _, err := e.W.Write([]byte{uint8(v)}); err != nil {
		return errors.Wrap(err, "failed to write envelope byte")
	}
	return nil
}
