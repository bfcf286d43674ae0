// Package control implements the stabilization core of an X-configuration
// quadrotor: pilot command validation, the fixed airframe geometry and the
// mixer that turns inertial feedback into per-rotor speeds.
package control

import (
	"fmt"
	"math"
)

// Command axes reported by AxisError.
const (
	AxisThrottle = "throttle"
	AxisYawRate  = "yaw rate"
	AxisPitch    = "pitch"
	AxisRoll     = "roll"
)

// AxisError reports a pilot input outside the accepted [0, 1] range.
type AxisError struct {
	Axis  string
	Value float64
}

func (e *AxisError) Error() string {
	return fmt.Sprintf("control: %s input %v is outside [0, 1]", e.Axis, e.Value)
}

// Command is a validated set of pilot inputs. Each axis is normalized to
// [0, 1], with 0.5 meaning neutral on the rotational axes. The zero value is
// a valid all-idle command.
type Command struct {
	throttle float64
	yawRate  float64
	pitch    float64
	roll     float64
}

// NewCommand validates the four pilot inputs and returns them as a Command.
// It returns an *AxisError naming the first offending axis if any input
// falls outside [0, 1].
func NewCommand(throttle, yawRate, pitch, roll float64) (Command, error) {
	axes := []struct {
		name  string
		value float64
	}{
		{AxisThrottle, throttle},
		{AxisYawRate, yawRate},
		{AxisPitch, pitch},
		{AxisRoll, roll},
	}

	for _, a := range axes {
		if math.IsNaN(a.value) || a.value < 0 || a.value > 1 {
			return Command{}, &AxisError{Axis: a.name, Value: a.value}
		}
	}

	return Command{
		throttle: throttle,
		yawRate:  yawRate,
		pitch:    pitch,
		roll:     roll,
	}, nil
}

// Throttle returns the collective thrust input.
func (c Command) Throttle() float64 { return c.throttle }

// YawRate returns the rotation input around the vertical axis.
func (c Command) YawRate() float64 { return c.yawRate }

// Pitch returns the forward and backward tilt input.
func (c Command) Pitch() float64 { return c.pitch }

// Roll returns the left and right tilt input.
func (c Command) Roll() float64 { return c.roll }
