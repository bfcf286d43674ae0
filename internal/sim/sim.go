package sim

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"

	"github.com/golang/geo/r3"

	"github.com/toth-andor/drone/internal/control"
	"github.com/toth-andor/drone/internal/flight"
	"github.com/toth-andor/drone/internal/imu"
)

// gravity is the world-frame gravitational acceleration in m/s².
const gravity = 9.81

// Defaults applied by Config for fields left at their zero value.
const (
	DefaultDt             = 0.01 // 100 Hz control loop
	DefaultMass           = 0.5
	DefaultArmScale       = 1.8
	DefaultThrustScale    = 4.0
	DefaultYawTorqueRatio = 0.2
)

// defaultInertia approximates the airframe as a flat box spanning the rotor
// arms.
var defaultInertia = r3.Vector{X: 0.67, Y: 1.33, Z: 0.67}

// Config holds the physical and sensing parameters of a simulation. The
// zero value of every field means "use the default", so an empty Config is
// a flyable airframe.
type Config struct {
	// Seed feeds the sensor noise generator. Runs with equal seeds and
	// equal configs produce identical flights.
	Seed int64

	Dt      float64   // control period in seconds
	Mass    float64   // kg
	Inertia r3.Vector // diagonal body-frame inertia tensor in kg·m²

	// ArmScale converts the unit mixer geometry into physical rotor arms
	// in meters.
	ArmScale float64

	// ThrustScale is the rotor thrust in newtons at full speed.
	ThrustScale float64

	// YawTorqueRatio is the rotor reaction torque per newton of thrust in
	// meters.
	YawTorqueRatio float64

	StartAltitude float64 // initial height above ground in meters

	GyroNoise  float64 // standard deviation of gyro readings in rad/s
	AccelNoise float64 // standard deviation of accelerometer readings in m/s²

	// Controller overrides, zero means the controller default.
	HistorySize  int
	TiltGain     float64
	ThrottleGain float64
	YawGain      float64
}

// withDefaults returns a copy of the config with zero fields replaced by
// defaults.
func (c Config) withDefaults() Config {
	if c.Dt == 0 {
		c.Dt = DefaultDt
	}
	if c.Mass == 0 {
		c.Mass = DefaultMass
	}
	if c.Inertia == (r3.Vector{}) {
		c.Inertia = defaultInertia
	}
	if c.ArmScale == 0 {
		c.ArmScale = DefaultArmScale
	}
	if c.ThrustScale == 0 {
		c.ThrustScale = DefaultThrustScale
	}
	if c.YawTorqueRatio == 0 {
		c.YawTorqueRatio = DefaultYawTorqueRatio
	}
	return c
}

// Validate checks the physical parameters. It expects defaults to be
// applied already.
func (c Config) Validate() error {
	check := []struct {
		name     string
		value    float64
		positive bool // zero fails too
	}{
		{"dt", c.Dt, true},
		{"mass", c.Mass, true},
		{"inertia.x", c.Inertia.X, true},
		{"inertia.y", c.Inertia.Y, true},
		{"inertia.z", c.Inertia.Z, true},
		{"arm scale", c.ArmScale, true},
		{"thrust scale", c.ThrustScale, false},
		{"yaw torque ratio", c.YawTorqueRatio, false},
		{"start altitude", c.StartAltitude, false},
		{"gyro noise", c.GyroNoise, false},
		{"accel noise", c.AccelNoise, false},
	}

	for _, f := range check {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 || (f.positive && f.value == 0) {
			return fmt.Errorf("sim.Config: invalid %s: %v", f.name, f.value)
		}
	}

	return nil
}

// Simulator steps a closed loop: synthesize an inertial sample, mix it with
// the scripted command, apply the resulting rotor forces to the body and
// integrate. It implements imu.Provider, each Sample call drawing fresh
// sensor noise.
type Simulator struct {
	cfg    Config
	logger *slog.Logger

	controller *control.Controller
	body       *Body
	plan       Plan
	rng        *rand.Rand

	arms   [4]r3.Vector // physical rotor arms, body frame
	seq    int64
	now    float64
	speeds control.Speeds
}

var _ imu.Provider = (*Simulator)(nil)

// WithLogger sets the logger used by the simulator and its controller.
// Defaults to a logger that discards all output.
func WithLogger(logger *slog.Logger) func(s *Simulator) {
	return func(s *Simulator) {
		s.logger = logger
	}
}

// New creates a Simulator for the given airframe config and flight plan.
func New(cfg Config, plan Plan, opts ...func(s *Simulator)) (*Simulator, error) {
	if len(plan.phases) == 0 {
		return nil, fmt.Errorf("sim: empty flight plan")
	}

	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		plan:   plan,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}

	for _, opt := range opts {
		opt(s)
	}

	copts := []func(c *control.Controller){control.WithLogger(s.logger)}
	if cfg.HistorySize != 0 {
		copts = append(copts, control.WithHistorySize(cfg.HistorySize))
	}
	if cfg.TiltGain != 0 {
		copts = append(copts, control.WithTiltGain(cfg.TiltGain))
	}
	if cfg.ThrottleGain != 0 {
		copts = append(copts, control.WithThrottleGain(cfg.ThrottleGain))
	}
	if cfg.YawGain != 0 {
		copts = append(copts, control.WithYawGain(cfg.YawGain))
	}

	controller, err := control.New(copts...)
	if err != nil {
		return nil, fmt.Errorf("sim: %w", err)
	}
	s.controller = controller

	s.body = NewBody(cfg.Mass, cfg.Inertia)
	s.body.Position.Y = cfg.StartAltitude

	speeds := control.NewMotorSpeeds()
	for m := control.FrontLeft; m <= control.RearRight; m++ {
		s.arms[m] = speeds.Arm(m).Mul(cfg.ArmScale)
	}

	s.logger.Debug("simulator ready",
		slog.Int64("seed", cfg.Seed),
		slog.Float64("dt", cfg.Dt),
		slog.Float64("mass", cfg.Mass),
		slog.Float64("plan_s", plan.Total()))

	return s, nil
}

// Sample synthesizes one inertial reading from the current body state and
// rotor speeds. The gyro senses the body angular velocity and the
// accelerometer the rotor thrust; ground reaction is not modeled.
func (s *Simulator) Sample() imu.Sample {
	thrust := s.cfg.ThrustScale * (s.speeds.FrontLeft + s.speeds.FrontRight + s.speeds.RearLeft + s.speeds.RearRight)

	return imu.Sample{
		AngularVelocity:    s.body.AngularVelocity.Add(s.noise(s.cfg.GyroNoise)),
		LinearAcceleration: r3.Vector{Y: thrust / s.cfg.Mass}.Add(s.noise(s.cfg.AccelNoise)),
		Timestamp:          s.now,
	}
}

func (s *Simulator) noise(stddev float64) r3.Vector {
	return r3.Vector{
		X: s.rng.NormFloat64() * stddev,
		Y: s.rng.NormFloat64() * stddev,
		Z: s.rng.NormFloat64() * stddev,
	}
}

// Step runs one control cycle and returns the tick record capturing it.
func (s *Simulator) Step() flight.Tick {
	cmd := s.plan.At(s.now)
	sample := s.Sample()
	s.speeds = s.controller.Update(sample, cmd)

	force, torque := s.forces()
	s.body.Step(force, torque, s.cfg.Dt)

	// Crude ground contact: the body comes to rest instead of bouncing.
	if s.body.Position.Y < 0 {
		s.body.Position.Y = 0
		s.body.Velocity = r3.Vector{}
		s.body.AngularVelocity = r3.Vector{}
	}

	s.now += s.cfg.Dt

	tick := flight.Tick{
		Seq:        s.seq,
		Timestamp:  s.now,
		Throttle:   cmd.Throttle(),
		YawRate:    cmd.YawRate(),
		Pitch:      cmd.Pitch(),
		Roll:       cmd.Roll(),
		Gyro:       sample.AngularVelocity,
		Accel:      sample.LinearAcceleration,
		Position:   s.body.Position,
		FrontLeft:  s.speeds.FrontLeft,
		FrontRight: s.speeds.FrontRight,
		RearLeft:   s.speeds.RearLeft,
		RearRight:  s.speeds.RearRight,
	}
	s.seq++

	return tick
}

// forces converts the current rotor speeds into the world-frame force and
// body-frame torque acting on the airframe.
func (s *Simulator) forces() (force, torque r3.Vector) {
	up := s.body.Up()
	force = r3.Vector{Y: -gravity * s.cfg.Mass}

	perMotor := [4]float64{
		control.FrontLeft:  s.speeds.FrontLeft,
		control.FrontRight: s.speeds.FrontRight,
		control.RearLeft:   s.speeds.RearLeft,
		control.RearRight:  s.speeds.RearRight,
	}

	for m, speed := range perMotor {
		thrust := s.cfg.ThrustScale * speed
		force = force.Add(up.Mul(thrust))
		torque = torque.Add(s.arms[m].Cross(r3.Vector{Y: thrust}))
	}

	// Rotor reaction torque around the body up axis. The diagonals spin in
	// opposite directions, so their contributions carry opposite signs.
	spin := s.speeds.FrontLeft + s.speeds.RearRight - s.speeds.FrontRight - s.speeds.RearLeft
	torque.Y += s.cfg.YawTorqueRatio * s.cfg.ThrustScale * spin

	return force, torque
}

// Controller exposes the controller driving this simulation.
func (s *Simulator) Controller() *control.Controller {
	return s.controller
}

// Body exposes the simulated rigid body.
func (s *Simulator) Body() *Body {
	return s.body
}

// Now returns the current simulation time in seconds.
func (s *Simulator) Now() float64 {
	return s.now
}
