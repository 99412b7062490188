package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw, want uint8
	}{
		{0, 0},
		{1, 2},
		{64, 128},
		{127, 254},
		{128, 255},
		{200, 255},
		{255, 255},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.raw), "Normalize(%d)", tt.raw)
	}
}

func TestNormalizeMonotonic(t *testing.T) {
	for b := 0; b < 255; b++ {
		assert.GreaterOrEqual(t, Normalize(uint8(b+1)), Normalize(uint8(b)))
	}
}

func TestSamplerSmoothedTracksHistory(t *testing.T) {
	var s Sampler

	assert.Equal(t, uint8(0), s.Smoothed())

	got := s.Sample(10)
	assert.Equal(t, uint8(20), got)
	assert.Equal(t, uint8(20), s.Smoothed())

	s.Sample(20)
	s.Sample(30)
	assert.Equal(t, uint8(40), s.Smoothed(), "mean of 20, 40, 60")
}

func TestSamplerDiscardsOldest(t *testing.T) {
	var s Sampler
	for i := 0; i < HistoryLen; i++ {
		s.Sample(0)
	}

	// One loud sample displaces exactly one zero.
	s.Sample(100)
	assert.Equal(t, uint8(200/HistoryLen), s.Smoothed())

	// Once loud samples have cycled the whole ring, the zeros are gone.
	for i := 0; i < HistoryLen-1; i++ {
		s.Sample(100)
	}
	assert.Equal(t, uint8(200), s.Smoothed())
}
