package imu

import (
	"errors"
	"fmt"
)

// DefaultHistorySize is the number of samples a History created by the
// controller retains unless configured otherwise.
const DefaultHistorySize = 10

// ErrNoData is returned when a reading is requested from a History that has
// not received any samples yet.
var ErrNoData = errors.New("imu: no data")

// History is a fixed-capacity ring of inertial samples. Once full, each new
// sample overwrites the oldest one, so the ring always holds the most recent
// readings and Append never fails.
//
// History is not safe for concurrent use. It is owned by the control loop
// that appends to it.
type History struct {
	samples []Sample
	head    int // index the next sample is written to
	size    int // number of valid samples, up to len(samples)
}

// NewHistory returns a History retaining up to capacity samples.
func NewHistory(capacity int) (*History, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("imu: history capacity must be positive, got %d", capacity)
	}

	return &History{samples: make([]Sample, capacity)}, nil
}

// Append records a sample, evicting the oldest one if the ring is full.
func (h *History) Append(s Sample) {
	h.samples[h.head] = s
	h.head = (h.head + 1) % len(h.samples)

	if h.size < len(h.samples) {
		h.size++
	}
}

// Latest returns the most recently appended sample. It returns ErrNoData if
// nothing has been appended yet.
func (h *History) Latest() (Sample, error) {
	if h.size == 0 {
		return Sample{}, ErrNoData
	}

	return h.samples[h.index(0)], nil
}

// Recent returns up to n samples ordered newest first. It returns fewer than
// n samples if the ring holds fewer, and nil if it holds none.
func (h *History) Recent(n int) []Sample {
	if n > h.size {
		n = h.size
	}
	if n <= 0 {
		return nil
	}

	out := make([]Sample, n)
	for i := range out {
		out[i] = h.samples[h.index(i)]
	}

	return out
}

// Len returns the number of samples currently retained.
func (h *History) Len() int {
	return h.size
}

// Cap returns the maximum number of samples the ring retains.
func (h *History) Cap() int {
	return len(h.samples)
}

// index maps an age (0 is newest) to a position in the ring.
func (h *History) index(age int) int {
	n := len(h.samples)
	return (h.head - 1 - age + 2*n) % n
}
