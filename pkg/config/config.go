package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/anggasct/signalgrid"
)

// Config holds the control center configuration.
type Config struct {
	// Tick loop and random event generator
	Simulation SimulationConfig `yaml:"simulation"`

	// Initial system mode
	Control ControlConfig `yaml:"control"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`

	// Fleet; empty means the built-in downtown grid
	Intersections []IntersectionConfig `yaml:"intersections,omitempty"`
}

// SimulationConfig configures the scheduler.
type SimulationConfig struct {
	TickInterval           string  `yaml:"tick_interval"`
	AIDecisionProbability  float64 `yaml:"ai_decision_probability"`
	FluctuationProbability float64 `yaml:"fluctuation_probability"`
	EmergencyProbability   float64 `yaml:"emergency_probability"`
	Seed                   uint64  `yaml:"seed"` // 0 seeds from the clock
	DecisionLogSize        int     `yaml:"decision_log_size"`
	StartPaused            bool    `yaml:"start_paused"`
}

// ControlConfig configures the initial system mode.
type ControlConfig struct {
	Mode            string `yaml:"mode"` // auto, semi, manual
	EmergencyActive bool   `yaml:"emergency_active"`
	PeakHourActive  bool   `yaml:"peak_hour_active"`
	EventModeActive bool   `yaml:"event_mode_active"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level   string `yaml:"level"`  // debug, info, warn, error
	Format  string `yaml:"format"` // text, json
	NoColor bool   `yaml:"no_color"`
}

// IntersectionConfig describes one intersection of the fleet.
type IntersectionConfig struct {
	ID          int     `yaml:"id"`
	Name        string  `yaml:"name"`
	Phase       string  `yaml:"phase"`
	Timer       int     `yaml:"timer"`
	PhaseBudget int     `yaml:"phase_budget,omitempty"` // defaults to timer
	Cars        int     `yaml:"cars"`
	Trucks      int     `yaml:"trucks"`
	Bikes       int     `yaml:"bikes"`
	Buses       int     `yaml:"buses"`
	QueueLength int     `yaml:"queue_length"`
	Emergency   bool    `yaml:"emergency"`
	Status      string  `yaml:"status,omitempty"` // defaults to online
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
}

// Environment variables that override the file
const (
	EnvTickInterval = "SIGNALGRID_TICK_INTERVAL"
	EnvMode         = "SIGNALGRID_MODE"
	EnvLogLevel     = "SIGNALGRID_LOG_LEVEL"
	EnvSeed         = "SIGNALGRID_SEED"
)

// Log formats
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	opts := signalgrid.DefaultOptions()
	return &Config{
		Simulation: SimulationConfig{
			TickInterval:           opts.TickInterval.String(),
			AIDecisionProbability:  opts.Probabilities.AIDecision,
			FluctuationProbability: opts.Probabilities.Fluctuation,
			EmergencyProbability:   opts.Probabilities.Emergency,
			DecisionLogSize:        opts.DecisionLogSize,
		},
		Control: ControlConfig{
			Mode: string(signalgrid.ModeAuto),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv(EnvTickInterval); v != "" {
		c.Simulation.TickInterval = v
	}
	if v := os.Getenv(EnvMode); v != "" {
		c.Control.Mode = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return signalgrid.NewConfigurationError("environment", fmt.Sprintf("%s must be an unsigned integer, got %q", EnvSeed, v))
		}
		c.Simulation.Seed = seed
	}
	return nil
}

// GetTickInterval returns the tick interval as a duration.
func (c *Config) GetTickInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Simulation.TickInterval)
	if err != nil {
		return 0, signalgrid.NewConfigurationError("simulation", fmt.Sprintf("invalid tick_interval %q", c.Simulation.TickInterval))
	}
	return d, nil
}

// GetLogLevel returns the configured slog level.
func (c *Config) GetLogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo, signalgrid.NewConfigurationError("logging", fmt.Sprintf("invalid level %q", c.Logging.Level))
	}
	return level, nil
}

// Validate checks every section and the fleet.
func (c *Config) Validate() error {
	opts, err := c.Options()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case FormatText, FormatJSON:
	default:
		return signalgrid.NewConfigurationError("logging", fmt.Sprintf("invalid format %q (valid: text, json)", c.Logging.Format))
	}

	fleet, err := c.Fleet()
	if err != nil {
		return err
	}
	seen := make(map[int]bool, len(fleet))
	for _, in := range fleet {
		if err := in.Validate(); err != nil {
			return signalgrid.NewConfigurationError("intersections", fmt.Sprintf("intersection %d: %v", in.ID, err))
		}
		if seen[in.ID] {
			return signalgrid.NewConfigurationError("intersections", fmt.Sprintf("duplicate intersection id %d", in.ID))
		}
		seen[in.ID] = true
	}
	return nil
}

// Options converts the configuration into controller options. Logger,
// clock and random source are left to the caller.
func (c *Config) Options() (signalgrid.Options, error) {
	interval, err := c.GetTickInterval()
	if err != nil {
		return signalgrid.Options{}, err
	}
	mode, err := signalgrid.ParseControlMode(c.Control.Mode)
	if err != nil {
		return signalgrid.Options{}, signalgrid.NewConfigurationError("control", err.Error())
	}

	return signalgrid.Options{
		TickInterval: interval,
		Probabilities: signalgrid.Probabilities{
			AIDecision:  c.Simulation.AIDecisionProbability,
			Fluctuation: c.Simulation.FluctuationProbability,
			Emergency:   c.Simulation.EmergencyProbability,
		},
		DecisionLogSize: c.Simulation.DecisionLogSize,
		Mode: signalgrid.SystemMode{
			Control:         mode,
			EmergencyActive: c.Control.EmergencyActive,
			PeakHourActive:  c.Control.PeakHourActive,
			EventModeActive: c.Control.EventModeActive,
		},
		StartPaused: c.Simulation.StartPaused,
		Seed:        c.Simulation.Seed,
	}, nil
}

// Fleet converts the configured intersections. An empty list yields
// signalgrid.DemoFleet().
func (c *Config) Fleet() ([]signalgrid.Intersection, error) {
	if len(c.Intersections) == 0 {
		return signalgrid.DemoFleet(), nil
	}

	fleet := make([]signalgrid.Intersection, 0, len(c.Intersections))
	for i, ic := range c.Intersections {
		in, err := ic.intersection()
		if err != nil {
			return nil, signalgrid.NewConfigurationError("intersections", fmt.Sprintf("entry %d: %v", i, err))
		}
		fleet = append(fleet, in)
	}
	return fleet, nil
}

func (ic IntersectionConfig) intersection() (signalgrid.Intersection, error) {
	phase, err := signalgrid.ParsePhase(ic.Phase)
	if err != nil {
		return signalgrid.Intersection{}, err
	}
	status := signalgrid.StatusOnline
	if ic.Status != "" {
		if status, err = signalgrid.ParseStatus(ic.Status); err != nil {
			return signalgrid.Intersection{}, err
		}
	}
	budget := ic.PhaseBudget
	if budget == 0 {
		budget = ic.Timer
	}

	return signalgrid.Intersection{
		ID:                      ic.ID,
		Name:                    ic.Name,
		Phase:                   phase,
		Timer:                   ic.Timer,
		PhaseBudget:             budget,
		Cars:                    ic.Cars,
		Trucks:                  ic.Trucks,
		Bikes:                   ic.Bikes,
		Buses:                   ic.Buses,
		QueueLength:             ic.QueueLength,
		EmergencyVehiclePresent: ic.Emergency,
		Status:                  status,
		Coordinates:             signalgrid.Coordinates{X: ic.X, Y: ic.Y},
		SuggestedAction:         signalgrid.ActionMaintainCurrent,
	}, nil
}

// FromIntersection converts an intersection into its configuration entry.
func FromIntersection(in signalgrid.Intersection) IntersectionConfig {
	return IntersectionConfig{
		ID:          in.ID,
		Name:        in.Name,
		Phase:       string(in.Phase),
		Timer:       in.Timer,
		PhaseBudget: in.PhaseBudget,
		Cars:        in.Cars,
		Trucks:      in.Trucks,
		Bikes:       in.Bikes,
		Buses:       in.Buses,
		QueueLength: in.QueueLength,
		Emergency:   in.EmergencyVehiclePresent,
		Status:      string(in.Status),
		X:           in.Coordinates.X,
		Y:           in.Coordinates.Y,
	}
}
