package app

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/toth-andor/drone/internal/flight"
)

const (
	// For 20 samples:
	// - 5% percentile  = 1 sample
	// - 95% percentile = 19th sample
	minimumSampleCount = 20

	defaultGyroBound = 1.0 // rad/s either side of zero
	minimumGyroSpan  = 0.5 // rad/s
)

// TrackData accumulates the ticks of one recorded session in replay order.
type TrackData struct {
	Ticks        []flight.Tick
	TimeStart    float64 // Seconds since the start of the flight
	TimeEnd      float64
	PeakAltitude float64 // Meters above ground

	gyroRates []float64 // Flattened axis readings for the percentile bounds
}

func NewTrackData() *TrackData {
	return &TrackData{
		TimeStart: math.MaxFloat64,
		TimeEnd:   0,
	}
}

func (t *TrackData) Update(tick flight.Tick) {
	t.Ticks = append(t.Ticks, tick)

	t.TimeStart = min(t.TimeStart, tick.Timestamp)
	t.TimeEnd = max(t.TimeEnd, tick.Timestamp)
	t.PeakAltitude = max(t.PeakAltitude, tick.Position.Y)

	t.gyroRates = append(t.gyroRates, tick.Gyro.X, tick.Gyro.Y, tick.Gyro.Z)
}

// Count returns the number of accumulated ticks.
func (t *TrackData) Count() int {
	return len(t.Ticks)
}

// Duration returns the time covered by the accumulated ticks in seconds.
func (t *TrackData) Duration() float64 {
	if len(t.Ticks) == 0 {
		return 0
	}
	return t.TimeEnd - t.TimeStart
}

// Rate returns the recorded control rate in ticks per second.
func (t *TrackData) Rate() float64 {
	duration := t.Duration()
	if duration <= 0 {
		return 0
	}
	return float64(len(t.Ticks)-1) / duration
}

// MeanSpeed returns the mean rotor speed across all four rotors.
func (t *TrackData) MeanSpeed() float64 {
	if len(t.Ticks) == 0 {
		return 0
	}

	speeds := make([]float64, 0, len(t.Ticks)*4)
	for _, tick := range t.Ticks {
		speeds = append(speeds, tick.FrontLeft, tick.FrontRight, tick.RearLeft, tick.RearRight)
	}
	return stat.Mean(speeds, nil)
}

// GyroBounds returns the value range of the body rate traces: the 5th to
// 95th percentile of all recorded axis rates, widened by a 10% margin and
// never narrower than minimumGyroSpan.
func (t *TrackData) GyroBounds() SignalBounds {
	if len(t.gyroRates) < minimumSampleCount {
		return defaultGyroBounds()
	}

	rates := slices.Clone(t.gyroRates)
	slices.Sort(rates)

	lo := stat.Quantile(0.05, stat.Empirical, rates, nil)
	hi := stat.Quantile(0.95, stat.Empirical, rates, nil)

	if hi-lo < minimumGyroSpan {
		center := (hi + lo) / 2
		lo = center - minimumGyroSpan/2
		hi = center + minimumGyroSpan/2
	}

	margin := (hi - lo) / 10
	return SignalBounds{Min: lo - margin, Max: hi + margin}
}

func defaultGyroBounds() SignalBounds {
	return SignalBounds{Min: -defaultGyroBound, Max: defaultGyroBound}
}
