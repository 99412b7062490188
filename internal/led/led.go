// Package led models the installation's pixel buffer: a fixed strip split
// into the main ring and the accent rail, with saturating 8-bit channel
// arithmetic throughout.
package led

import (
	"io"
	"unsafe"
)

// Zone boundaries of the installation. The ring is the main loop of the
// strip; the accent rail is the short run of pixels behind the diffuser,
// which is allowed a higher brightness ceiling.
const (
	RingStart = 0
	RingLen   = 100
	RingEnd   = RingStart + RingLen // exclusive

	AccentStart = 100
	AccentLen   = 12
	AccentEnd   = AccentStart + AccentLen // exclusive

	StripLen = RingLen + AccentLen

	// RingCenter is the origin of the outward ripple.
	RingCenter = 49
)

// AccentScale multiplies the ring ceiling to get the accent rail ceiling.
// The rail sits behind a diffuser and needs the extra headroom to read as
// bright as the bare ring pixels.
const AccentScale = 9

// PresetCeilings are the five selectable global brightness ceilings for the
// ring zone, dimmest first.
var PresetCeilings = [5]uint8{5, 15, 40, 90, 180}

// NumPresets is the number of brightness presets.
const NumPresets = len(PresetCeilings)

// Pixel is one RGB pixel. Channel arithmetic saturates; values never wrap.
type Pixel [3]uint8

// SatAdd returns c+d saturated at 255.
func SatAdd(c, d uint8) uint8 {
	if s := uint16(c) + uint16(d); s <= 255 {
		return uint8(s)
	}
	return 255
}

// SatSub returns c-d saturated at 0.
func SatSub(c, d uint8) uint8 {
	if c < d {
		return 0
	}
	return c - d
}

// Add adds d to every channel, saturating.
func (p *Pixel) Add(d uint8) {
	p[0] = SatAdd(p[0], d)
	p[1] = SatAdd(p[1], d)
	p[2] = SatAdd(p[2], d)
}

// Sub subtracts d from every channel, saturating.
func (p *Pixel) Sub(d uint8) {
	p[0] = SatSub(p[0], d)
	p[1] = SatSub(p[1], d)
	p[2] = SatSub(p[2], d)
}

// Scale returns p with every channel scaled by level/255.
func (p Pixel) Scale(level uint8) Pixel {
	return Pixel{
		uint8(uint16(p[0]) * uint16(level) / 255),
		uint8(uint16(p[1]) * uint16(level) / 255),
		uint8(uint16(p[2]) * uint16(level) / 255),
	}
}

// Strip is the shared pixel buffer. It is allocated once at startup and
// mutated in place by the active effect mode.
type Strip []Pixel

// NewStrip returns a strip of StripLen pixels, all off.
func NewStrip() Strip {
	return make(Strip, StripLen)
}

// Set sets the pixel at index i.
func (s Strip) Set(i int, p Pixel) {
	s[i] = p
}

// Fill sets every pixel in [start, end) to p.
func (s Strip) Fill(start, end int, p Pixel) {
	for i := start; i < end; i++ {
		s[i] = p
	}
}

// Clear turns the whole strip off.
func (s Strip) Clear() {
	s.Fill(0, len(s), Pixel{})
}

// WriteTo implements io.WriterTo, writing the strip as packed RGB bytes.
func (s Strip) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, p := range s {
		n, err := w.Write(p[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// AsPixels returns the strip as a flat slice of channel bytes, three per
// pixel, without copying.
func (s Strip) AsPixels() []uint8 {
	return unsafe.Slice((*uint8)(unsafe.Pointer(&s[0])), 3*len(s))
}

// ClampBrightness caps every channel at ceiling, except pixels in the accent
// zone which are capped at accentCeiling instead. It is idempotent and must
// run before every hardware commit.
func (s Strip) ClampBrightness(ceiling, accentCeiling uint8) {
	for i := range s {
		max := ceiling
		if i >= AccentStart && i < AccentEnd {
			max = accentCeiling
		}
		for c := 0; c < 3; c++ {
			if s[i][c] > max {
				s[i][c] = max
			}
		}
	}
}

// AccentCeiling returns the accent rail ceiling for a given ring ceiling.
func AccentCeiling(ceiling uint8) uint8 {
	if v := uint16(ceiling) * AccentScale; v <= 255 {
		return uint8(v)
	}
	return 255
}
