package sim

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"

	"github.com/toth-andor/drone/internal/flight"
)

func newTestSim(t *testing.T, cfg Config, phases ...Phase) *Simulator {
	t.Helper()

	plan, err := NewPlan(phases)
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}

	s, err := New(cfg, plan)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return s
}

func TestNewValidation(t *testing.T) {
	plan, err := NewPlan([]Phase{{Duration: 1}})
	if err != nil {
		t.Fatalf("NewPlan() error = %v", err)
	}

	t.Run("empty plan", func(t *testing.T) {
		if _, err := New(Config{}, Plan{}); err == nil {
			t.Fatal("New() error = nil, want error")
		}
	})

	t.Run("negative mass", func(t *testing.T) {
		if _, err := New(Config{Mass: -1}, plan); err == nil {
			t.Fatal("New() error = nil, want error")
		}
	})

	t.Run("NaN dt", func(t *testing.T) {
		if _, err := New(Config{Dt: math.NaN()}, plan); err == nil {
			t.Fatal("New() error = nil, want error")
		}
	})

	t.Run("partial inertia", func(t *testing.T) {
		if _, err := New(Config{Inertia: r3.Vector{X: 1, Z: 1}}, plan); err == nil {
			t.Fatal("New() error = nil, want error")
		}
	})

	t.Run("defaults fly", func(t *testing.T) {
		if _, err := New(Config{}, plan); err != nil {
			t.Fatalf("New() error = %v", err)
		}
	})
}

func TestSimulatorIdleStaysGrounded(t *testing.T) {
	s := newTestSim(t, Config{}, Phase{Duration: 1})

	var last flight.Tick
	for i := 0; i < 100; i++ {
		last = s.Step()
	}

	if last.Position.Y != 0 {
		t.Errorf("Position.Y = %v, want 0", last.Position.Y)
	}
	if last.FrontLeft != 0 || last.FrontRight != 0 || last.RearLeft != 0 || last.RearRight != 0 {
		t.Errorf("rotor speeds = %+v, want all idle", last)
	}
}

func TestSimulatorFullThrottleClimbs(t *testing.T) {
	s := newTestSim(t, Config{}, Phase{Duration: 5, Throttle: 1})

	var last flight.Tick
	for i := 0; i < 100; i++ {
		last = s.Step()

		if last.FrontLeft != 0.5 || last.FrontRight != 0.5 || last.RearLeft != 0.5 || last.RearRight != 0.5 {
			t.Fatalf("tick %d: rotor speeds = %+v, want 0.5 on all", i, last)
		}
	}

	// Default airframe: 8 N of lift against 4.905 N of weight.
	if last.Position.Y < 2.5 {
		t.Errorf("Position.Y = %v, want a climb past 2.5", last.Position.Y)
	}
	if s.Body().Velocity.Y <= 0 {
		t.Errorf("Velocity.Y = %v, want positive", s.Body().Velocity.Y)
	}
}

func TestSimulatorFreeFallLandsAndStops(t *testing.T) {
	s := newTestSim(t, Config{StartAltitude: 2}, Phase{Duration: 5})

	for i := 0; i < 100; i++ {
		s.Step()
	}

	b := s.Body()
	if b.Position.Y != 0 {
		t.Errorf("Position.Y = %v, want 0", b.Position.Y)
	}
	if b.Velocity != (r3.Vector{}) {
		t.Errorf("Velocity = %v, want zero after touchdown", b.Velocity)
	}
}

func TestSimulatorYawSpinsBodyUpAxis(t *testing.T) {
	// High enough that the airframe stays airborne for the whole second.
	s := newTestSim(t, Config{StartAltitude: 50}, Phase{Duration: 5, YawRate: 1})

	var last flight.Tick
	for i := 0; i < 100; i++ {
		last = s.Step()
	}

	if last.FrontLeft != 0.25 || last.RearRight != 0.25 || last.FrontRight != 0 || last.RearLeft != 0 {
		t.Errorf("rotor speeds = %+v, want 0.25 on the front-left diagonal only", last)
	}

	w := s.Body().AngularVelocity
	// Reaction torque 0.2·4·0.5 N·m against the default 1.33 kg·m² for
	// one second.
	want := 0.2 * 4 * 0.5 / 1.33
	if math.Abs(w.Y-want) > 1e-9 {
		t.Errorf("AngularVelocity.Y = %v, want %v", w.Y, want)
	}
	if math.Abs(w.X) > 1e-12 || math.Abs(w.Z) > 1e-12 {
		t.Errorf("AngularVelocity = %v, want a pure yaw spin", w)
	}
	if up := s.Body().Up(); up.Y < 0.999999 {
		t.Errorf("Up() = %v, want to stay near the world up axis", up)
	}
}

func TestSimulatorTickSequence(t *testing.T) {
	s := newTestSim(t, Config{},
		Phase{Duration: 0.5, Throttle: 1},
		Phase{Duration: 0.5, YawRate: 1},
	)

	for i := 0; i < 70; i++ {
		tick := s.Step()

		if tick.Seq != int64(i) {
			t.Fatalf("tick %d: Seq = %d", i, tick.Seq)
		}
		if want := float64(i+1) * DefaultDt; math.Abs(tick.Timestamp-want) > 1e-9 {
			t.Fatalf("tick %d: Timestamp = %v, want %v", i, tick.Timestamp, want)
		}

		switch {
		case i < 49: // safely inside the first phase
			if tick.Throttle != 1 || tick.YawRate != 0 {
				t.Fatalf("tick %d: command = (%v, %v), want first phase", i, tick.Throttle, tick.YawRate)
			}
		case i > 51: // safely inside the second phase
			if tick.Throttle != 0 || tick.YawRate != 1 {
				t.Fatalf("tick %d: command = (%v, %v), want second phase", i, tick.Throttle, tick.YawRate)
			}
		}
	}
}

func TestSimulatorDeterminism(t *testing.T) {
	cfg := Config{Seed: 42, GyroNoise: 0.01, AccelNoise: 0.05, StartAltitude: 10}
	phases := []Phase{{Duration: 2, Throttle: 0.7, Roll: 0.6}}

	run := func(cfg Config) []flight.Tick {
		s := newTestSim(t, cfg, phases...)
		out := make([]flight.Tick, 50)
		for i := range out {
			out[i] = s.Step()
		}
		return out
	}

	first, second := run(cfg), run(cfg)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("tick %d differs between equal-seed runs:\n%+v\n%+v", i, first[i], second[i])
		}
	}

	other := run(Config{Seed: 43, GyroNoise: 0.01, AccelNoise: 0.05, StartAltitude: 10})
	same := true
	for i := range first {
		if first[i] != other[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("runs with different seeds produced identical flights")
	}
}

func TestSimulatorSample(t *testing.T) {
	s := newTestSim(t, Config{}, Phase{Duration: 1, Throttle: 1})

	got := s.Sample()
	if got.AngularVelocity != (r3.Vector{}) || got.LinearAcceleration != (r3.Vector{}) {
		t.Errorf("Sample() before first step = %+v, want zero readings", got)
	}

	s.Step()

	// Rotors now run at 0.5 each: 8 N of thrust on a 0.5 kg body.
	got = s.Sample()
	if want := 8.0 / 0.5; math.Abs(got.LinearAcceleration.Y-want) > 1e-9 {
		t.Errorf("Sample().LinearAcceleration.Y = %v, want %v", got.LinearAcceleration.Y, want)
	}
	if got.Timestamp != s.Now() {
		t.Errorf("Sample().Timestamp = %v, want %v", got.Timestamp, s.Now())
	}
}
