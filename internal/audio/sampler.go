// Package audio tracks the live audio envelope fed over the serial link by
// the capture companion.
package audio

// HistoryLen is the capacity of the sample history ring.
const HistoryLen = 20

// Normalize maps a raw envelope byte to the 0-255 working range. The
// companion nominally emits 0-127 at listening volume, with headroom to 255
// for loud signals; doubling saturates rather than rejecting hot samples.
func Normalize(raw uint8) uint8 {
	if raw > 127 {
		return 255
	}
	return raw * 2
}

// Sampler holds a short history of recent normalized samples. It is owned by
// the main loop; a tick without serial data simply leaves it untouched.
type Sampler struct {
	history [HistoryLen]uint8
	head    int
	n       int
}

// Sample normalizes raw, pushes it to the front of the history, and returns
// the normalized value, which is the level effects key off this tick. The
// oldest sample is discarded once the ring is full.
func (s *Sampler) Sample(raw uint8) uint8 {
	v := Normalize(raw)
	s.head--
	if s.head < 0 {
		s.head = HistoryLen - 1
	}
	s.history[s.head] = v
	if s.n < HistoryLen {
		s.n++
	}
	return v
}

// Smoothed returns the mean of the recorded history, or 0 before any sample
// has arrived. It damps single-tick spikes for consumers that want a steady
// level rather than the instantaneous one.
func (s *Sampler) Smoothed() uint8 {
	if s.n == 0 {
		return 0
	}
	sum := 0
	for i := 0; i < s.n; i++ {
		sum += int(s.history[(s.head+i)%HistoryLen])
	}
	return uint8(sum / s.n)
}
