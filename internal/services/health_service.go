package services

import (
	"context"
	"encoding/json"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/benmeehan/ahu-simulator/internal/models"
	"github.com/benmeehan/ahu-simulator/pkg/mqtt"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/mem"
)

// HealthService publishes periodic agent health heartbeats so the
// backend can tell a quiet fleet from a dead one.
type HealthService struct {
	PubTopic   string
	Interval   time.Duration
	ClientID   string
	QOS        int
	MqttClient mqtt.MQTTClient
	Logger     zerolog.Logger

	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewHealthService initializes a new HealthService.
func NewHealthService(pubTopic string, interval time.Duration, clientID string, qos int,
	mqttClient mqtt.MQTTClient, logger zerolog.Logger) *HealthService {

	return &HealthService{
		PubTopic:   pubTopic,
		Interval:   interval,
		ClientID:   clientID,
		QOS:        qos,
		MqttClient: mqttClient,
		Logger:     logger,
	}
}

// Start launches the heartbeat loop in a separate goroutine.
func (h *HealthService) Start() error {
	if h.ctx != nil {
		h.Logger.Warn().Msg("HealthService is already running")
		return errors.New("health service is already running")
	}

	h.startedAt = time.Now()
	h.ctx, h.cancel = context.WithCancel(context.Background())

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runHeartbeatLoop()
	}()

	h.Logger.Info().Str("topic", h.PubTopic).Msg("HealthService started successfully")
	return nil
}

// Stop gracefully stops the health service.
func (h *HealthService) Stop() error {
	if h.ctx == nil {
		h.Logger.Warn().Msg("HealthService is not running")
		return errors.New("health service is not running")
	}

	h.cancel()
	h.wg.Wait()

	h.ctx = nil
	h.cancel = nil

	h.Logger.Info().Msg("HealthService stopped successfully")
	return nil
}

// runHeartbeatLoop publishes health messages at the configured interval.
func (h *HealthService) runHeartbeatLoop() {
	ticker := time.NewTicker(h.Interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			heartbeat := models.Heartbeat{
				ClientID:      h.ClientID,
				Timestamp:     now,
				Status:        models.StatusAlive,
				UptimeSeconds: now.Sub(h.startedAt).Seconds(),
				Goroutines:    runtime.NumGoroutine(),
			}

			if memStats, err := mem.VirtualMemory(); err != nil {
				h.Logger.Error().Err(err).Msg("Failed to retrieve memory statistics")
			} else {
				heartbeat.MemoryPercent = &memStats.UsedPercent
			}

			payload, err := json.Marshal(heartbeat)
			if err != nil {
				h.Logger.Error().Err(err).Msg("Failed to serialize heartbeat message")
				continue
			}

			token := h.MqttClient.Publish(h.PubTopic, byte(h.QOS), false, payload)
			token.Wait()

			if err := token.Error(); err != nil {
				h.Logger.Error().Err(err).Msg("Failed to publish heartbeat message")
			} else {
				h.Logger.Debug().Msg("Heartbeat published successfully")
			}

		case <-h.ctx.Done():
			h.Logger.Info().Msg("HealthService stopping gracefully")
			return
		}
	}
}
