package control

import (
	"math"

	"github.com/golang/geo/r3"
)

// Motor identifies one rotor of the X-configuration airframe. The airframe
// coordinate system is right-handed with X pointing forward, Y up and Z to
// the right.
type Motor int

const (
	FrontLeft Motor = iota
	FrontRight
	RearLeft
	RearRight

	numMotors
)

func (m Motor) String() string {
	switch m {
	case FrontLeft:
		return "front-left"
	case FrontRight:
		return "front-right"
	case RearLeft:
		return "rear-left"
	case RearRight:
		return "rear-right"
	}
	return "unknown"
}

// motor pairs one rotor's fixed mounting geometry with its current speed.
// arm is the offset of the rotor from the center of mass, dir is the same
// offset at unit length and yawSign is +1 for the rotors spinning against
// the yaw reaction torque and -1 for the others.
type motor struct {
	arm     r3.Vector
	dir     r3.Vector
	yawSign float64
	speed   float64
}

func newMotor(arm r3.Vector, yawSign float64) motor {
	return motor{arm: arm, dir: arm.Normalize(), yawSign: yawSign}
}

// MotorSpeeds tracks the commanded speed of all four rotors of the fixed
// X-configuration airframe. Speeds are normalized to [0, 1] and the setters
// clamp out-of-range values instead of failing, so a saturated mix still
// yields a flyable state.
type MotorSpeeds struct {
	motors [numMotors]motor
}

// NewMotorSpeeds returns the rotor set of the X-configuration airframe with
// all rotors idle.
func NewMotorSpeeds() *MotorSpeeds {
	return &MotorSpeeds{
		motors: [numMotors]motor{
			FrontLeft:  newMotor(r3.Vector{X: 1, Y: 0, Z: -1}, 1),
			FrontRight: newMotor(r3.Vector{X: 1, Y: 0, Z: 1}, -1),
			RearLeft:   newMotor(r3.Vector{X: -1, Y: 0, Z: -1}, -1),
			RearRight:  newMotor(r3.Vector{X: -1, Y: 0, Z: 1}, 1),
		},
	}
}

// Arm returns the mounting offset of a rotor from the center of mass.
func (s *MotorSpeeds) Arm(m Motor) r3.Vector {
	return s.motors[m].arm
}

// Speed returns the current speed of a rotor.
func (s *MotorSpeeds) Speed(m Motor) float64 {
	return s.motors[m].speed
}

// SetSpeed stores a rotor speed clamped to [0, 1].
func (s *MotorSpeeds) SetSpeed(m Motor, v float64) {
	s.motors[m].speed = clamp01(v)
}

// FrontLeft returns the front left rotor speed.
func (s *MotorSpeeds) FrontLeft() float64 { return s.Speed(FrontLeft) }

// FrontRight returns the front right rotor speed.
func (s *MotorSpeeds) FrontRight() float64 { return s.Speed(FrontRight) }

// RearLeft returns the rear left rotor speed.
func (s *MotorSpeeds) RearLeft() float64 { return s.Speed(RearLeft) }

// RearRight returns the rear right rotor speed.
func (s *MotorSpeeds) RearRight() float64 { return s.Speed(RearRight) }

// SetFrontLeft stores the front left rotor speed clamped to [0, 1].
func (s *MotorSpeeds) SetFrontLeft(v float64) { s.SetSpeed(FrontLeft, v) }

// SetFrontRight stores the front right rotor speed clamped to [0, 1].
func (s *MotorSpeeds) SetFrontRight(v float64) { s.SetSpeed(FrontRight, v) }

// SetRearLeft stores the rear left rotor speed clamped to [0, 1].
func (s *MotorSpeeds) SetRearLeft(v float64) { s.SetSpeed(RearLeft, v) }

// SetRearRight stores the rear right rotor speed clamped to [0, 1].
func (s *MotorSpeeds) SetRearRight(v float64) { s.SetSpeed(RearRight, v) }

// Speeds is a snapshot of the four rotor speeds, each in [0, 1].
type Speeds struct {
	FrontLeft  float64
	FrontRight float64
	RearLeft   float64
	RearRight  float64
}

// Speeds returns a copy of the current rotor speeds.
func (s *MotorSpeeds) Speeds() Speeds {
	return Speeds{
		FrontLeft:  s.Speed(FrontLeft),
		FrontRight: s.Speed(FrontRight),
		RearLeft:   s.Speed(RearLeft),
		RearRight:  s.Speed(RearRight),
	}
}

// clamp01 bounds v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// perpendicular returns the component of v orthogonal to the unit vector
// dir.
func perpendicular(v, dir r3.Vector) r3.Vector {
	return v.Sub(dir.Mul(v.Dot(dir)))
}
