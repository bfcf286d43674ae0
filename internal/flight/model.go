// Package flight defines the records exchanged between the simulator, the
// flight recorder and the plotting tool.
package flight

import (
	"time"

	"github.com/golang/geo/r3"
)

// Session identifies one recorded flight.
type Session struct {
	ID        string    // Unique session identifier
	Name      string    // Operator-assigned label, may be empty
	StartTime time.Time // Wall-clock time the flight started
	Config    string    // Simulation configuration the flight ran with, may be empty
}

// Tick is the state of the aircraft captured at the end of one control
// cycle.
type Tick struct {
	Seq       int64   // Control cycle number, starting at 0
	Timestamp float64 // Simulation time at the end of the cycle in seconds

	// Pilot command applied during the cycle, each axis in [0, 1].
	Throttle float64
	YawRate  float64
	Pitch    float64
	Roll     float64

	Gyro     r3.Vector // Measured body angular velocity in rad/s
	Accel    r3.Vector // Measured body specific force in m/s²
	Position r3.Vector // World position of the center of mass in meters

	// Rotor speeds produced by the mixer, each in [0, 1].
	FrontLeft  float64
	FrontRight float64
	RearLeft   float64
	RearRight  float64
}
