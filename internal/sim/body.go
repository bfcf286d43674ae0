// Package sim closes the loop around the control core: a small rigid body
// model, a scripted pilot, synthetic inertial sensing and the step driver
// that ties them together into recorded flight ticks.
package sim

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Body is a rigid body in a right-handed, Y-up world, integrated with
// semi-implicit Euler steps. Position and Velocity are world frame,
// AngularVelocity is body frame and Orientation rotates body vectors into
// the world.
type Body struct {
	Mass    float64   // kg
	Inertia r3.Vector // diagonal body-frame inertia tensor in kg·m²

	Position        r3.Vector
	Velocity        r3.Vector
	Orientation     quat.Number
	AngularVelocity r3.Vector
}

// NewBody returns a body at rest at the world origin with identity
// orientation.
func NewBody(mass float64, inertia r3.Vector) *Body {
	return &Body{
		Mass:        mass,
		Inertia:     inertia,
		Orientation: quat.Number{Real: 1},
	}
}

// Step advances the body by dt seconds under a world-frame force and a
// body-frame torque. Velocities integrate before positions so the body
// stays stable at the coarse control-loop step sizes.
func (b *Body) Step(force, torque r3.Vector, dt float64) {
	accel := force.Mul(1 / b.Mass)
	b.Velocity = b.Velocity.Add(accel.Mul(dt))
	b.Position = b.Position.Add(b.Velocity.Mul(dt))

	// Euler's rotation equation with a diagonal inertia tensor.
	iw := r3.Vector{
		X: b.Inertia.X * b.AngularVelocity.X,
		Y: b.Inertia.Y * b.AngularVelocity.Y,
		Z: b.Inertia.Z * b.AngularVelocity.Z,
	}
	gyroscopic := b.AngularVelocity.Cross(iw)
	angAccel := r3.Vector{
		X: (torque.X - gyroscopic.X) / b.Inertia.X,
		Y: (torque.Y - gyroscopic.Y) / b.Inertia.Y,
		Z: (torque.Z - gyroscopic.Z) / b.Inertia.Z,
	}
	b.AngularVelocity = b.AngularVelocity.Add(angAccel.Mul(dt))

	// Quaternion kinematics, q̇ = ½·q⊗ω, renormalized to counter drift.
	dq := quat.Scale(0.5*dt, quat.Mul(b.Orientation, vecToQuat(b.AngularVelocity)))
	b.Orientation = normalize(quat.Add(b.Orientation, dq))
}

// Up returns the body's up axis expressed in the world frame.
func (b *Body) Up() r3.Vector {
	return Rotate(b.Orientation, r3.Vector{Y: 1})
}

// Rotate applies the rotation q to v.
func Rotate(q quat.Number, v r3.Vector) r3.Vector {
	r := quat.Mul(quat.Mul(q, vecToQuat(v)), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

func vecToQuat(v r3.Vector) quat.Number {
	return quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
}

func normalize(q quat.Number) quat.Number {
	abs := quat.Abs(q)
	if abs == 0 {
		return quat.Number{Real: 1}
	}
	return quat.Scale(1/abs, q)
}
