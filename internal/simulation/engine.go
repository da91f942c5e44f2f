package simulation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/benmeehan/ahu-simulator/internal/control"
	"github.com/benmeehan/ahu-simulator/internal/models"
	"github.com/benmeehan/ahu-simulator/pkg/weather"
	"github.com/rs/zerolog"
)

// Publisher receives completed snapshots and alarms. Delivery is
// fire-and-forget; implementations own transport failures and the
// engine never sees them.
type Publisher interface {
	PublishTelemetry(snapshot models.TelemetrySnapshot)
	PublishAlarm(record models.AlarmRecord)
}

// Config holds the immutable per-device control parameters. It is
// loaded once; changing it requires restarting the engine.
type Config struct {
	DeviceID   string
	BuildingID string
	Setpoint   float64
	Cadence    time.Duration

	Kp                  float64
	Ki                  float64
	Kd                  float64
	IntegralMin         float64
	IntegralMax         float64
	DerivativeSmoothing float64

	EconomizerOffsetC float64
	FreeCoolingGain   float64

	VFDMinPercent  float64
	VFDMaxPercent  float64
	VFDBasePercent float64
	VFDGain        float64

	CriticalDeviationC float64
	FanSaturationTicks int
	FaultProbability   float64
	Seed               int64

	PlantCapacity   float64
	OutsideCoupling float64
	NoiseAmplitude  float64
}

// Validate rejects configurations the engine cannot safely run with.
func (c Config) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device id must not be empty")
	}
	if c.Cadence <= 0 {
		return fmt.Errorf("cadence must be positive, got %s", c.Cadence)
	}
	if c.VFDMinPercent >= c.VFDMaxPercent {
		return fmt.Errorf("vfd min percent (%.1f) must be below max percent (%.1f)", c.VFDMinPercent, c.VFDMaxPercent)
	}
	if c.VFDMinPercent < 0 || c.VFDMaxPercent > 100 {
		return fmt.Errorf("vfd speed bounds must lie within [0, 100]")
	}
	if c.IntegralMin >= c.IntegralMax {
		return fmt.Errorf("integral clamp bounds are inverted")
	}
	if c.FaultProbability < 0 || c.FaultProbability > 1 {
		return fmt.Errorf("fault probability must lie within [0, 1], got %f", c.FaultProbability)
	}
	if c.DerivativeSmoothing < 0 || c.DerivativeSmoothing >= 1 {
		return fmt.Errorf("derivative smoothing must lie within [0, 1)")
	}
	return nil
}

// State is the mutable per-device state. It is owned exclusively by
// the engine's tick loop; State() hands out copies only.
type State struct {
	SupplyTemp     float64
	OutsideTemp    float64
	Integral       float64
	PrevError      float64
	VFDSpeed       float64
	FanStatus      string
	EconomizerMode control.EconomizerMode
	Alarm          *models.AlarmRecord
	Tick           uint64
}

// Engine runs the control loop for a single simulated AHU. One engine
// exists per device and is driven by exactly one goroutine; nothing is
// shared between engines.
type Engine struct {
	cfg        Config
	source     weather.Provider
	pid        *control.PID
	economizer control.Economizer
	mapper     control.VFDMapper
	evaluator  *control.AlarmEvaluator
	plant      *Plant
	logger     zerolog.Logger

	state State
}

// NewEngine builds an engine from a validated configuration. Invalid
// configuration is the one fatal error class and refuses construction.
func NewEngine(cfg Config, source weather.Provider, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	return &Engine{
		cfg:    cfg,
		source: source,
		pid:    control.NewPID(cfg.Kp, cfg.Ki, cfg.Kd, cfg.IntegralMin, cfg.IntegralMax, cfg.DerivativeSmoothing),
		economizer: control.Economizer{
			OffsetC: cfg.EconomizerOffsetC,
			Gain:    cfg.FreeCoolingGain,
		},
		mapper: control.VFDMapper{
			MinPercent:  cfg.VFDMinPercent,
			MaxPercent:  cfg.VFDMaxPercent,
			BasePercent: cfg.VFDBasePercent,
			Gain:        cfg.VFDGain,
		},
		evaluator: control.NewAlarmEvaluator(cfg.CriticalDeviationC, cfg.FanSaturationTicks, cfg.FaultProbability, cfg.Seed),
		plant:     NewPlant(cfg.PlantCapacity, cfg.OutsideCoupling, cfg.NoiseAmplitude, cfg.Seed+1),
		logger:    logger.With().Str("device_id", cfg.DeviceID).Logger(),
		state: State{
			SupplyTemp: cfg.Setpoint,
			// Seed the fallback reading at the free-cooling boundary so
			// a source failure on the first tick leaves the economizer
			// closed instead of acting on a spurious 0 degree outside.
			OutsideTemp: cfg.Setpoint + cfg.EconomizerOffsetC,
			FanStatus:   control.FanOff,
		},
	}, nil
}

// Config returns the engine's immutable configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// State returns a copy of the current device state.
func (e *Engine) State() State {
	return e.state
}

// Tick runs one complete evaluation cycle: environment fetch,
// regulator, economizer, mapper, plant response, alarm evaluation,
// snapshot assembly. The stage order is fixed; each stage feeds the
// next. It returns the snapshot and the alarm raised this tick, if any.
func (e *Engine) Tick(ctx context.Context, now time.Time) (models.TelemetrySnapshot, *models.AlarmRecord) {
	dt := e.cfg.Cadence.Seconds()

	outside, err := e.source.GetOutsideTemperature(ctx, e.cfg.BuildingID, now)
	if err != nil {
		// Providers are expected to fall back internally; keep the
		// previous reading if one still manages to fail.
		e.logger.Warn().Err(err).Msg("Environment source failed, reusing last outside temperature")
		outside = e.state.OutsideTemp
	}
	e.state.OutsideTemp = outside

	output := e.pid.Update(e.cfg.Setpoint, e.state.SupplyTemp, dt)
	e.state.Integral = e.pid.Integral()
	e.state.PrevError = e.pid.PrevError()

	e.state.EconomizerMode = e.economizer.Decide(outside, e.cfg.Setpoint)
	demand := e.economizer.Apply(output, outside, e.cfg.Setpoint)

	e.state.VFDSpeed, e.state.FanStatus = e.mapper.Map(demand)

	substitution := e.economizer.Substitution(outside, e.cfg.Setpoint)
	e.state.SupplyTemp = e.plant.Step(e.state.SupplyTemp, e.cfg.Setpoint, outside, e.state.VFDSpeed, substitution, dt)

	var record *models.AlarmRecord
	if alarm := e.evaluator.Evaluate(e.state.SupplyTemp, e.cfg.Setpoint, e.state.VFDSpeed, e.cfg.VFDMaxPercent); alarm != nil {
		record = &models.AlarmRecord{
			Severity:   alarm.Severity,
			Message:    alarm.Message,
			Timestamp:  now.UnixMilli(),
			DeviceID:   e.cfg.DeviceID,
			BuildingID: e.cfg.BuildingID,
		}
	}
	e.state.Alarm = record
	e.state.Tick++

	return e.snapshot(now), record
}

// snapshot assembles the immutable telemetry reading for the tick just
// completed. Values are rounded to a tenth, matching the wire format.
func (e *Engine) snapshot(now time.Time) models.TelemetrySnapshot {
	var alarm *string
	if e.state.Alarm != nil {
		msg := e.state.Alarm.Message
		alarm = &msg
	}

	return models.TelemetrySnapshot{
		Timestamp:  now.UnixMilli(),
		DeviceID:   e.cfg.DeviceID,
		BuildingID: e.cfg.BuildingID,
		Points: models.TelemetryPoints{
			OutsideTemp:    round1(e.state.OutsideTemp),
			SupplyTemp:     round1(e.state.SupplyTemp),
			Setpoint:       round1(e.cfg.Setpoint),
			VFDSpeed:       round1(e.state.VFDSpeed),
			FanStatus:      e.state.FanStatus,
			Alarm:          alarm,
			EconomizerMode: string(e.state.EconomizerMode),
		},
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
