package utils

import (
	"fmt"
	"time"

	"github.com/benmeehan/ahu-simulator/pkg/file"
)

// Weather source operating modes.
const (
	WeatherModeLive = "live"
	WeatherModeSim  = "sim"
)

// Config represents the structure of the configuration file.
type Config struct {
	MQTT struct {
		Broker        string `yaml:"broker"`         // MQTT broker address
		ClientID      string `yaml:"client_id"`      // MQTT client ID
		CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate, empty disables TLS
	} `yaml:"mqtt"`

	Telemetry struct {
		TopicPrefix string `yaml:"topic_prefix"` // Prefix for telemetry and alarm topics
		QOS         int    `yaml:"qos"`          // MQTT QoS level for telemetry messages
	} `yaml:"telemetry"`

	Weather struct {
		Mode           string  `yaml:"mode"`            // "live" or "sim"
		Latitude       float64 `yaml:"latitude"`        // Site latitude for the live weather feed
		Longitude      float64 `yaml:"longitude"`       // Site longitude for the live weather feed
		TimeoutSeconds float64 `yaml:"timeout_seconds"` // Bound on a live weather fetch
		Seed           int64   `yaml:"seed"`            // Seed for the simulated weather model
	} `yaml:"weather"`

	Simulation struct {
		CadenceSeconds float64        `yaml:"cadence_seconds"` // Interval between control-loop ticks
		Devices        []DeviceConfig `yaml:"devices"`         // Simulated devices, one engine each
	} `yaml:"simulation"`

	Control ControlConfig `yaml:"control"`

	Health struct {
		Enabled         bool    `yaml:"enabled"`          // Enable/disable the agent health heartbeat
		Topic           string  `yaml:"topic"`            // MQTT topic for health messages
		IntervalSeconds float64 `yaml:"interval_seconds"` // Interval between health messages
		QOS             int     `yaml:"qos"`              // MQTT QoS level for health messages
	} `yaml:"health"`
}

// DeviceConfig identifies one simulated AHU.
type DeviceConfig struct {
	DeviceID   string   `yaml:"device_id"`
	BuildingID string   `yaml:"building_id"`
	Setpoint   *float64 `yaml:"setpoint"` // Overrides control.setpoint when set
}

// ControlConfig carries the control-loop parameters shared by all
// devices unless overridden per device.
type ControlConfig struct {
	Setpoint            float64 `yaml:"setpoint"`             // Target supply-air temperature
	Kp                  float64 `yaml:"kp"`                   // Proportional gain
	Ki                  float64 `yaml:"ki"`                   // Integral gain
	Kd                  float64 `yaml:"kd"`                   // Derivative gain
	IntegralMin         float64 `yaml:"integral_min"`         // Anti-windup clamp lower bound
	IntegralMax         float64 `yaml:"integral_max"`         // Anti-windup clamp upper bound
	DerivativeSmoothing float64 `yaml:"derivative_smoothing"` // Exponential filter weight, [0, 1)
	EconomizerOffsetC   float64 `yaml:"economizer_offset_c"`  // Degrees above setpoint where free cooling stops
	FreeCoolingGain     float64 `yaml:"free_cooling_gain"`    // Substitution fraction per degree below the threshold
	VFDMinPercent       float64 `yaml:"vfd_min_percent"`      // Fan drive lower speed bound
	VFDMaxPercent       float64 `yaml:"vfd_max_percent"`      // Fan drive upper speed bound
	VFDBasePercent      float64 `yaml:"vfd_base_percent"`     // Speed at zero demand, before clamping
	VFDGain             float64 `yaml:"vfd_gain"`             // Speed added per unit of demand magnitude
	CriticalDeviationC  float64 `yaml:"critical_deviation_c"` // Supply deviation raising a CRITICAL alarm
	FanSaturationTicks  int     `yaml:"fan_saturation_ticks"` // Consecutive max-speed ticks before WARNING
	FaultProbability    float64 `yaml:"fault_probability"`    // Per-tick injected fault chance
	Seed                int64   `yaml:"seed"`                 // Base seed for fault injection and plant noise
	PlantCapacity       float64 `yaml:"plant_capacity"`       // Conditioning rate at full speed, degrees C per second
	OutsideCoupling     float64 `yaml:"outside_coupling"`     // Outside-air pull when the economizer is open
	NoiseAmplitude      float64 `yaml:"noise_amplitude"`      // Process noise bound, 0 disables
}

// LoadConfig loads the YAML configuration from the specified file and
// validates it. Invalid configuration is fatal at startup.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks the cross-field constraints the engine depends on.
func (c *Config) Validate() error {
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt broker must be set")
	}
	if c.Weather.Mode != WeatherModeLive && c.Weather.Mode != WeatherModeSim {
		return fmt.Errorf("weather mode must be %q or %q, got %q", WeatherModeLive, WeatherModeSim, c.Weather.Mode)
	}
	if c.Simulation.CadenceSeconds <= 0 {
		return fmt.Errorf("simulation cadence must be positive")
	}
	if len(c.Simulation.Devices) == 0 {
		return fmt.Errorf("at least one device must be configured")
	}
	for i, d := range c.Simulation.Devices {
		if d.DeviceID == "" || d.BuildingID == "" {
			return fmt.Errorf("device %d is missing device_id or building_id", i)
		}
	}
	if c.Control.VFDMinPercent >= c.Control.VFDMaxPercent {
		return fmt.Errorf("vfd_min_percent must be below vfd_max_percent")
	}
	if c.Control.FaultProbability < 0 || c.Control.FaultProbability > 1 {
		return fmt.Errorf("fault_probability must lie within [0, 1]")
	}
	if c.Telemetry.QOS < 0 || c.Telemetry.QOS > 2 {
		return fmt.Errorf("telemetry qos must lie within [0, 2]")
	}
	if c.Weather.Mode == WeatherModeLive && c.Weather.TimeoutSeconds <= 0 {
		return fmt.Errorf("weather timeout_seconds must be positive in live mode")
	}
	if c.Health.Enabled {
		if c.Health.IntervalSeconds <= 0 {
			return fmt.Errorf("health interval_seconds must be positive when health is enabled")
		}
		if c.Health.QOS < 0 || c.Health.QOS > 2 {
			return fmt.Errorf("health qos must lie within [0, 2]")
		}
	}
	return nil
}

// Cadence returns the tick interval as a duration.
func (c *Config) Cadence() time.Duration {
	return time.Duration(c.Simulation.CadenceSeconds * float64(time.Second))
}

// WeatherTimeout returns the live weather fetch bound as a duration.
func (c *Config) WeatherTimeout() time.Duration {
	return time.Duration(c.Weather.TimeoutSeconds * float64(time.Second))
}

// HealthInterval returns the health heartbeat interval as a duration.
func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.Health.IntervalSeconds * float64(time.Second))
}
