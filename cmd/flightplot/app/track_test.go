package app

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toth-andor/drone/internal/flight"
)

func TestTrackDataUpdate(t *testing.T) {
	track := NewTrackData()
	require.Zero(t, track.Count())

	track.Update(flight.Tick{Timestamp: 0.01, Position: r3.Vector{Y: 1.5}})
	track.Update(flight.Tick{Timestamp: 0.02, Position: r3.Vector{Y: 2.5}})
	track.Update(flight.Tick{Timestamp: 0.03, Position: r3.Vector{Y: 2.0}})

	assert.Equal(t, 3, track.Count())
	assert.Equal(t, 0.01, track.TimeStart)
	assert.Equal(t, 0.03, track.TimeEnd)
	assert.InDelta(t, 0.02, track.Duration(), 1e-12)
	assert.Equal(t, 2.5, track.PeakAltitude)
}

func TestTrackDataEmpty(t *testing.T) {
	track := NewTrackData()

	assert.Zero(t, track.Duration())
	assert.Zero(t, track.Rate())
	assert.Zero(t, track.MeanSpeed())
}

func TestTrackDataRate(t *testing.T) {
	track := NewTrackData()
	for i := 0; i < 101; i++ {
		track.Update(flight.Tick{Timestamp: float64(i) * 0.01})
	}

	assert.InDelta(t, 100.0, track.Rate(), 1e-9)
}

func TestTrackDataMeanSpeed(t *testing.T) {
	track := NewTrackData()
	track.Update(flight.Tick{FrontLeft: 0.2, FrontRight: 0.4, RearLeft: 0.6, RearRight: 0.8})

	assert.InDelta(t, 0.5, track.MeanSpeed(), 1e-12)
}

func TestTrackDataGyroBoundsDefault(t *testing.T) {
	track := NewTrackData()
	assert.Equal(t, defaultGyroBounds(), track.GyroBounds())

	// Six axis readings are still below the minimum sample count, even
	// though they include a violent rate.
	track.Update(flight.Tick{Gyro: r3.Vector{X: 100}})
	track.Update(flight.Tick{Gyro: r3.Vector{X: 100}})
	assert.Equal(t, defaultGyroBounds(), track.GyroBounds())
}

func TestTrackDataGyroBoundsPercentile(t *testing.T) {
	track := NewTrackData()
	for i := 0; i < 100; i++ {
		track.Update(flight.Tick{Gyro: r3.Vector{X: 2, Y: -2, Z: 0}})
	}

	// 5th/95th percentiles land on ±2, widened by the 10% margin.
	bounds := track.GyroBounds()
	assert.InDelta(t, -2.4, bounds.Min, 1e-9)
	assert.InDelta(t, 2.4, bounds.Max, 1e-9)
}

func TestTrackDataGyroBoundsIgnoresOutliers(t *testing.T) {
	track := NewTrackData()
	for i := 0; i < 99; i++ {
		track.Update(flight.Tick{Gyro: r3.Vector{X: 1, Y: -1, Z: 0.5}})
	}
	track.Update(flight.Tick{Gyro: r3.Vector{X: 500}})

	bounds := track.GyroBounds()
	assert.Less(t, bounds.Max, 10.0)
	assert.Greater(t, bounds.Min, -10.0)
}

func TestTrackDataGyroBoundsMinimumSpan(t *testing.T) {
	track := NewTrackData()
	for i := 0; i < 50; i++ {
		track.Update(flight.Tick{})
	}

	bounds := track.GyroBounds()
	assert.InDelta(t, minimumGyroSpan*1.2, bounds.Max-bounds.Min, 1e-9)
	assert.InDelta(t, -bounds.Min, bounds.Max, 1e-12)
}
