package sim

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

func TestBodyFreeFall(t *testing.T) {
	b := NewBody(1, r3.Vector{X: 1, Y: 1, Z: 1})

	const dt = 0.01
	for i := 0; i < 100; i++ {
		b.Step(r3.Vector{Y: -9.81}, r3.Vector{}, dt)
	}

	if math.Abs(b.Velocity.Y - -9.81) > 1e-9 {
		t.Errorf("Velocity.Y = %v, want -9.81", b.Velocity.Y)
	}
	// Semi-implicit Euler integrates the velocity first, so the fall
	// distance is the discrete sum 9.81·dt²·n(n+1)/2.
	want := -9.81 * dt * dt * 100 * 101 / 2
	if math.Abs(b.Position.Y-want) > 1e-9 {
		t.Errorf("Position.Y = %v, want %v", b.Position.Y, want)
	}
}

func TestBodyConstantYawTorque(t *testing.T) {
	b := NewBody(1, r3.Vector{X: 1, Y: 1, Z: 1})

	const dt = 0.01
	for i := 0; i < 100; i++ {
		b.Step(r3.Vector{}, r3.Vector{Y: 1}, dt)
	}

	if math.Abs(b.AngularVelocity.Y-1) > 1e-9 {
		t.Errorf("AngularVelocity.Y = %v, want 1", b.AngularVelocity.Y)
	}
	if up := b.Up(); math.Abs(up.Y-1) > 1e-9 {
		t.Errorf("Up() = %v, want to stay on the world up axis", up)
	}

	// The discrete yaw angle is dt²·n(n+1)/2 with the velocity updated
	// before the orientation.
	angle := dt * dt * 100 * 101 / 2
	fwd := Rotate(b.Orientation, r3.Vector{X: 1})
	if math.Abs(fwd.X-math.Cos(angle)) > 2e-3 || math.Abs(fwd.Z - -math.Sin(angle)) > 2e-3 {
		t.Errorf("forward axis = %v, want about (%v, 0, %v)", fwd, math.Cos(angle), -math.Sin(angle))
	}
}

func TestBodySpinAboutPrincipalAxisIsStable(t *testing.T) {
	b := NewBody(1, r3.Vector{X: 1, Y: 2, Z: 1})
	b.AngularVelocity = r3.Vector{Y: 10}

	for i := 0; i < 1000; i++ {
		b.Step(r3.Vector{}, r3.Vector{}, 0.001)
	}

	if got := b.AngularVelocity; math.Abs(got.Y-10) > 1e-9 || math.Abs(got.X) > 1e-9 || math.Abs(got.Z) > 1e-9 {
		t.Errorf("AngularVelocity = %v, want (0, 10, 0)", got)
	}
}

func TestRotate(t *testing.T) {
	identity := quat.Number{Real: 1}
	v := r3.Vector{X: 0.3, Y: -1.2, Z: 0.7}
	if got := Rotate(identity, v); got.Sub(v).Norm() > 1e-12 {
		t.Errorf("Rotate(identity, v) = %v, want %v", got, v)
	}

	// 90° about the world up axis carries the forward axis to the left.
	yaw90 := quat.Number{Real: math.Sqrt2 / 2, Jmag: math.Sqrt2 / 2}
	got := Rotate(yaw90, r3.Vector{X: 1})
	want := r3.Vector{Z: -1}
	if got.Sub(want).Norm() > 1e-12 {
		t.Errorf("Rotate(yaw90, forward) = %v, want %v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	q := normalize(quat.Number{Real: 2, Imag: 0, Jmag: 2, Kmag: 0})
	if math.Abs(quat.Abs(q)-1) > 1e-12 {
		t.Errorf("normalize() has magnitude %v, want 1", quat.Abs(q))
	}

	if got := normalize(quat.Number{}); got != (quat.Number{Real: 1}) {
		t.Errorf("normalize(zero) = %v, want identity", got)
	}
}
