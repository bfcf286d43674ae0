package app

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/golang/geo/r3"

	"github.com/toth-andor/drone/internal/sim"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var validLogLevels = map[LogLevel]slog.Level{
	LogLevelDebug: slog.LevelDebug,
	LogLevelInfo:  slog.LevelInfo,
	LogLevelWarn:  slog.LevelWarn,
	LogLevelError: slog.LevelError,
}

type LogLevel string

func (l LogLevel) String() string {
	return string(l)
}

// Level maps the configured name onto a slog level. An empty name means
// info.
func (l LogLevel) Level() slog.Level {
	if l == "" {
		return slog.LevelInfo
	}
	return validLogLevels[l]
}

type TimeDuration time.Duration

func NewTimeDuration(d time.Duration) TimeDuration {
	return TimeDuration(d)
}

func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.TimeDuration: failed to parse: %s", err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d *TimeDuration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *TimeDuration) Validate() error {
	if time.Duration(*d) < 0 {
		return fmt.Errorf("app.TimeDuration: must not be negative: %s", time.Duration(*d))
	}

	return nil
}

func (d *TimeDuration) String() string {
	duration := time.Duration(*d)
	switch {
	case duration >= time.Hour && duration%time.Hour == 0:
		return fmt.Sprintf("%dh", int(duration/time.Hour))
	case duration >= time.Minute && duration%time.Minute == 0:
		return fmt.Sprintf("%dm", int(duration/time.Minute))
	case duration >= time.Second && duration%time.Second == 0:
		return fmt.Sprintf("%ds", int(duration/time.Second))
	default:
		return duration.String()
	}
}

// Seconds returns the duration as floating point seconds.
func (d *TimeDuration) Seconds() float64 {
	return time.Duration(*d).Seconds()
}

// Config represents the main application configuration
type Config struct {
	Settings Settings       `yaml:"settings"`
	Flight   FlightConfig   `yaml:"flight"`
	Airframe AirframeConfig `yaml:"airframe"`
	Sensors  SensorConfig   `yaml:"sensors"`
	Mixer    MixerConfig    `yaml:"mixer"`
	Plan     []PhaseConfig  `yaml:"plan"`
	Storage  StorageConfig  `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel LogLevel `yaml:"logLevel"`
}

// FlightConfig identifies the recorded flight and its timing.
type FlightConfig struct {
	Name     string       `yaml:"name"`     // Operator-assigned label stored with the session
	Dt       TimeDuration `yaml:"dt"`       // Control period (default: 10ms)
	Duration TimeDuration `yaml:"duration"` // Total simulated time (default: the plan's length)
	Seed     int64        `yaml:"seed"`     // Sensor noise seed (default: 0)
}

// AirframeConfig holds the physical parameters of the simulated airframe.
// Zero fields fall back to the simulator defaults.
type AirframeConfig struct {
	Mass           float64      `yaml:"mass"`           // kg (default: 0.5)
	Inertia        VectorConfig `yaml:"inertia"`        // kg·m² about the body axes
	ArmScale       float64      `yaml:"armScale"`       // Rotor arm length scale in meters (default: 1.8)
	ThrustScale    float64      `yaml:"thrustScale"`    // Rotor thrust at full speed in newtons (default: 4.0)
	YawTorqueRatio float64      `yaml:"yawTorqueRatio"` // Reaction torque per newton of thrust (default: 0.2)
	StartAltitude  float64      `yaml:"startAltitude"`  // Initial height above ground in meters (default: 0)
}

// VectorConfig is a plain 3-vector in configuration files.
type VectorConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// SensorConfig holds the synthetic sensing parameters.
type SensorConfig struct {
	GyroNoise  float64 `yaml:"gyroNoise"`  // Gyro noise stddev in rad/s (default: 0)
	AccelNoise float64 `yaml:"accelNoise"` // Accelerometer noise stddev in m/s² (default: 0)
}

// MixerConfig overrides the controller gains. Zero fields fall back to the
// controller defaults.
type MixerConfig struct {
	HistorySize  int     `yaml:"historySize"`  // Retained inertial samples (default: 10)
	TiltGain     float64 `yaml:"tiltGain"`     // rad/s at full roll or pitch (default: π/6)
	ThrottleGain float64 `yaml:"throttleGain"` // Rotor speed at full throttle (default: 0.5)
	YawGain      float64 `yaml:"yawGain"`      // Rotor speed offset at full yaw (default: 0.25)
}

// PhaseConfig is one scripted flight plan segment.
type PhaseConfig struct {
	Duration TimeDuration `yaml:"duration"`
	Throttle float64      `yaml:"throttle"`
	YawRate  float64      `yaml:"yawRate"`
	Pitch    float64      `yaml:"pitch"`
	Roll     float64      `yaml:"roll"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
	MaxBatchSize  int    `yaml:"maxBatchSize"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err = config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Settings.LogLevel != "" {
		if _, ok := validLogLevels[c.Settings.LogLevel]; !ok {
			return fmt.Errorf("app.Config: invalid log level: %s", c.Settings.LogLevel)
		}
	}

	if err := c.Flight.Dt.Validate(); err != nil {
		return fmt.Errorf("app.Config: invalid dt: %w", err)
	}
	if err := c.Flight.Duration.Validate(); err != nil {
		return fmt.Errorf("app.Config: invalid duration: %w", err)
	}

	if len(c.Plan) == 0 {
		return fmt.Errorf("app.Config: flight plan is empty")
	}
	for i, phase := range c.Plan {
		if time.Duration(phase.Duration) <= 0 {
			return fmt.Errorf("app.Config: plan phase %d: duration must be positive: %s", i, time.Duration(phase.Duration))
		}
	}

	if c.Storage.MaxBatchSize < 0 {
		return fmt.Errorf("app.Config: max batch size must not be negative: %d", c.Storage.MaxBatchSize)
	}

	return nil
}

// SimConfig maps the configuration onto the simulator parameters.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Seed:           c.Flight.Seed,
		Dt:             c.Flight.Dt.Seconds(),
		Mass:           c.Airframe.Mass,
		Inertia:        r3.Vector{X: c.Airframe.Inertia.X, Y: c.Airframe.Inertia.Y, Z: c.Airframe.Inertia.Z},
		ArmScale:       c.Airframe.ArmScale,
		ThrustScale:    c.Airframe.ThrustScale,
		YawTorqueRatio: c.Airframe.YawTorqueRatio,
		StartAltitude:  c.Airframe.StartAltitude,
		GyroNoise:      c.Sensors.GyroNoise,
		AccelNoise:     c.Sensors.AccelNoise,
		HistorySize:    c.Mixer.HistorySize,
		TiltGain:       c.Mixer.TiltGain,
		ThrottleGain:   c.Mixer.ThrottleGain,
		YawGain:        c.Mixer.YawGain,
	}
}

// Phases maps the configured plan onto simulator phases.
func (c *Config) Phases() []sim.Phase {
	phases := make([]sim.Phase, len(c.Plan))
	for i, p := range c.Plan {
		phases[i] = sim.Phase{
			Duration: p.Duration.Seconds(),
			Throttle: p.Throttle,
			YawRate:  p.YawRate,
			Pitch:    p.Pitch,
			Roll:     p.Roll,
		}
	}
	return phases
}
