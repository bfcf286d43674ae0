// Package imu holds the inertial measurement types shared by the control
// core and its hosts: a body-frame sample and a fixed-capacity history of
// recent samples.
package imu

import (
	"github.com/golang/geo/r3"
)

// Sample is a single inertial measurement in the aircraft body frame.
// A Sample is a plain value and is immutable once created.
type Sample struct {
	AngularVelocity    r3.Vector // Angular velocity around the body axes in rad/s
	LinearAcceleration r3.Vector // Specific force along the body axes in m/s²
	Timestamp          float64   // Measurement time in seconds since flight start
}

// Provider supplies one inertial sample per control tick. A simulation host
// synthesizes samples from its rigid body state; flight hardware reads them
// from the sensor bus.
type Provider interface {
	Sample() Sample
}
