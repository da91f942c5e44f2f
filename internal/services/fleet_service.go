package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benmeehan/ahu-simulator/internal/simulation"
	"github.com/benmeehan/ahu-simulator/internal/utils"
	"github.com/benmeehan/ahu-simulator/pkg/weather"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

// FleetService runs one control-loop engine per configured device.
// Every device gets its own goroutine and its own engine; no state is
// shared between them. A stop request takes effect only between ticks,
// so every emitted snapshot reflects a fully completed cycle.
type FleetService struct {
	engines   cmap.ConcurrentMap[string, *simulation.Engine]
	cadence   time.Duration
	publisher simulation.Publisher
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewFleetService builds an engine for each configured device. Engine
// construction fails fast on invalid control parameters.
func NewFleetService(config *utils.Config, source weather.Provider, publisher simulation.Publisher, logger zerolog.Logger) (*FleetService, error) {
	fs := &FleetService{
		engines:   cmap.New[*simulation.Engine](),
		cadence:   config.Cadence(),
		publisher: publisher,
		logger:    logger,
	}

	for i, device := range config.Simulation.Devices {
		engine, err := simulation.NewEngine(engineConfig(config, device, int64(i)), source, logger)
		if err != nil {
			return nil, err
		}
		fs.engines.Set(device.DeviceID, engine)
	}

	return fs, nil
}

// engineConfig merges the shared control parameters with one device's
// overrides. Each device gets a distinct seed so fault and noise
// sequences differ between devices but stay reproducible.
func engineConfig(config *utils.Config, device utils.DeviceConfig, index int64) simulation.Config {
	ctl := config.Control

	setpoint := ctl.Setpoint
	if device.Setpoint != nil {
		setpoint = *device.Setpoint
	}

	return simulation.Config{
		DeviceID:            device.DeviceID,
		BuildingID:          device.BuildingID,
		Setpoint:            setpoint,
		Cadence:             config.Cadence(),
		Kp:                  ctl.Kp,
		Ki:                  ctl.Ki,
		Kd:                  ctl.Kd,
		IntegralMin:         ctl.IntegralMin,
		IntegralMax:         ctl.IntegralMax,
		DerivativeSmoothing: ctl.DerivativeSmoothing,
		EconomizerOffsetC:   ctl.EconomizerOffsetC,
		FreeCoolingGain:     ctl.FreeCoolingGain,
		VFDMinPercent:       ctl.VFDMinPercent,
		VFDMaxPercent:       ctl.VFDMaxPercent,
		VFDBasePercent:      ctl.VFDBasePercent,
		VFDGain:             ctl.VFDGain,
		CriticalDeviationC:  ctl.CriticalDeviationC,
		FanSaturationTicks:  ctl.FanSaturationTicks,
		FaultProbability:    ctl.FaultProbability,
		Seed:                ctl.Seed + index*2,
		PlantCapacity:       ctl.PlantCapacity,
		OutsideCoupling:     ctl.OutsideCoupling,
		NoiseAmplitude:      ctl.NoiseAmplitude,
	}
}

// Engine returns the engine for a device, if one exists.
func (fs *FleetService) Engine(deviceID string) (*simulation.Engine, bool) {
	return fs.engines.Get(deviceID)
}

// Start launches one tick loop per device.
func (fs *FleetService) Start() error {
	if fs.ctx != nil {
		fs.logger.Warn().Msg("FleetService is already running")
		return errors.New("fleet service is already running")
	}

	fs.ctx, fs.cancel = context.WithCancel(context.Background())

	for entry := range fs.engines.IterBuffered() {
		engine := entry.Val
		fs.wg.Add(1)
		go func() {
			defer fs.wg.Done()
			fs.runDeviceLoop(engine)
		}()
	}

	fs.logger.Info().Int("devices", fs.engines.Count()).Msg("FleetService started successfully")
	return nil
}

// Stop gracefully stops all device loops, waiting for in-flight ticks
// to complete.
func (fs *FleetService) Stop() error {
	if fs.ctx == nil {
		fs.logger.Warn().Msg("FleetService is not running")
		return errors.New("fleet service is not running")
	}

	fs.cancel()
	fs.wg.Wait()

	fs.ctx = nil
	fs.cancel = nil

	fs.logger.Info().Msg("FleetService stopped successfully")
	return nil
}

// runDeviceLoop advances one device at the configured cadence. The
// tick runs synchronously inside the select, so cancellation is only
// observed at the sleep boundary and never interrupts a tick.
func (fs *FleetService) runDeviceLoop(engine *simulation.Engine) {
	cfg := engine.Config()
	log := fs.logger.With().Str("device_id", cfg.DeviceID).Logger()

	ticker := time.NewTicker(fs.cadence)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			snapshot, alarm := engine.Tick(fs.ctx, now)
			fs.publisher.PublishTelemetry(snapshot)
			if alarm != nil {
				fs.publisher.PublishAlarm(*alarm)
				log.Warn().Str("severity", string(alarm.Severity)).Str("message", alarm.Message).Msg("Alarm raised")
			}

		case <-fs.ctx.Done():
			log.Info().Msg("Device loop stopping gracefully")
			return
		}
	}
}
