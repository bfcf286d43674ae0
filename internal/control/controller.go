package control

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/golang/geo/r3"

	"github.com/toth-andor/drone/internal/imu"
)

// Default mixing gains.
const (
	// DefaultTiltGain converts a full roll or pitch deflection into the
	// desired body rate in rad/s.
	DefaultTiltGain = math.Pi / 6

	// DefaultThrottleGain is the rotor speed contributed by full throttle.
	DefaultThrottleGain = 0.5

	// DefaultYawGain is the rotor speed offset contributed by a full yaw
	// input, added on one diagonal rotor pair and withheld from the other.
	DefaultYawGain = 0.25
)

// Controller mixes pilot commands and inertial feedback into rotor speeds
// for the fixed X-configuration airframe. It keeps a short history of the
// samples it has seen so hosts can inspect recent sensor readings.
//
// A Controller is driven by a single control loop and is not safe for
// concurrent use.
type Controller struct {
	logger *slog.Logger

	history *imu.History
	speeds  *MotorSpeeds

	historySize  int
	tiltGain     float64
	throttleGain float64
	yawGain      float64
}

// WithLogger sets the logger used by the controller. Defaults to a logger
// that discards all output.
func WithLogger(logger *slog.Logger) func(c *Controller) {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithHistorySize sets how many inertial samples the controller retains.
func WithHistorySize(n int) func(c *Controller) {
	return func(c *Controller) {
		c.historySize = n
	}
}

// WithTiltGain sets the conversion from a full roll or pitch deflection to
// the desired body rate in rad/s.
func WithTiltGain(g float64) func(c *Controller) {
	return func(c *Controller) {
		c.tiltGain = g
	}
}

// WithThrottleGain sets the rotor speed contributed by full throttle.
func WithThrottleGain(g float64) func(c *Controller) {
	return func(c *Controller) {
		c.throttleGain = g
	}
}

// WithYawGain sets the rotor speed offset contributed by a full yaw input.
func WithYawGain(g float64) func(c *Controller) {
	return func(c *Controller) {
		c.yawGain = g
	}
}

// New creates a Controller with all rotors idle and an empty sample
// history.
func New(opts ...func(c *Controller)) (*Controller, error) {
	c := &Controller{
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		speeds:       NewMotorSpeeds(),
		historySize:  imu.DefaultHistorySize,
		tiltGain:     DefaultTiltGain,
		throttleGain: DefaultThrottleGain,
		yawGain:      DefaultYawGain,
	}

	for _, opt := range opts {
		opt(c)
	}

	for _, g := range []struct {
		name  string
		value float64
	}{
		{"tilt", c.tiltGain},
		{"throttle", c.throttleGain},
		{"yaw", c.yawGain},
	} {
		if math.IsNaN(g.value) || math.IsInf(g.value, 0) || g.value < 0 {
			return nil, fmt.Errorf("control: %s gain must be finite and non-negative, got %v", g.name, g.value)
		}
	}

	history, err := imu.NewHistory(c.historySize)
	if err != nil {
		return nil, fmt.Errorf("control: %w", err)
	}
	c.history = history

	c.logger.Debug("controller ready",
		slog.Int("history_size", c.historySize),
		slog.Float64("tilt_gain", c.tiltGain),
		slog.Float64("throttle_gain", c.throttleGain),
		slog.Float64("yaw_gain", c.yawGain))

	return c, nil
}

// Update ingests one inertial sample and remixes the rotor speeds against
// the given command. It returns the resulting speed snapshot.
func (c *Controller) Update(sample imu.Sample, cmd Command) Speeds {
	c.history.Append(sample)
	return c.mix(sample, cmd)
}

// Mix remixes the rotor speeds against the most recent inertial sample
// without ingesting a new one. It fails with imu.ErrNoData until the first
// sample has been ingested.
func (c *Controller) Mix(cmd Command) (Speeds, error) {
	sample, err := c.history.Latest()
	if err != nil {
		return Speeds{}, fmt.Errorf("control: mix: %w", err)
	}

	return c.mix(sample, cmd), nil
}

// Speeds returns the current rotor speed snapshot without remixing.
func (c *Controller) Speeds() Speeds {
	return c.speeds.Speeds()
}

// History returns the retained inertial samples, newest first.
func (c *Controller) History() []imu.Sample {
	return c.history.Recent(c.history.Len())
}

// mix turns one inertial sample and one command into rotor speeds.
//
// The roll and pitch inputs are scaled into a desired body rate. The
// difference between the desired and the measured rate, with its vertical
// component removed, is the rate error each rotor reacts to. A rotor only
// responds to the part of the error perpendicular to its own arm, so the
// error is projected off the arm direction before taking its magnitude.
// Throttle adds a collective term and yaw adds a signed offset along the
// rotor diagonals. Each rotor speed saturates at [0, 1].
func (c *Controller) mix(sample imu.Sample, cmd Command) Speeds {
	desired := r3.Vector{
		X: c.tiltGain * cmd.Roll(),
		Z: c.tiltGain * cmd.Pitch(),
	}

	rateErr := desired.Sub(sample.AngularVelocity)
	rateErr.Y = 0

	collective := c.throttleGain * cmd.Throttle()
	yaw := c.yawGain * cmd.YawRate()

	for i := range c.speeds.motors {
		m := &c.speeds.motors[i]
		residual := perpendicular(rateErr, m.dir)
		c.speeds.SetSpeed(Motor(i), residual.Norm()+collective+m.yawSign*yaw)
	}

	return c.speeds.Speeds()
}
