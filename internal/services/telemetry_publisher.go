package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/benmeehan/ahu-simulator/internal/models"
	"github.com/benmeehan/ahu-simulator/internal/utils"
	"github.com/benmeehan/ahu-simulator/pkg/mqtt"
	"github.com/rs/zerolog"
)

// defaultPublishWait bounds how long a worker waits on broker
// acknowledgement before abandoning a message.
const defaultPublishWait = 5 * time.Second

// TelemetryPublisher delivers snapshots and alarms over MQTT. Delivery
// is fire-and-forget from the engine's point of view: publishing runs
// on a worker pool, a full queue drops the message, and failures
// surface only as log lines. The control loop never blocks on the
// broker.
type TelemetryPublisher struct {
	topicPrefix string
	qos         int
	mqttClient  mqtt.MQTTClient
	logger      zerolog.Logger
	workerPool  *utils.WorkerPool
	publishWait time.Duration
}

// NewTelemetryPublisher initializes a publisher for the given topic
// prefix. Topics follow <prefix>/<building>/<device>/telemetry and
// <prefix>/<building>/<device>/alarm.
func NewTelemetryPublisher(topicPrefix string, qos int, mqttClient mqtt.MQTTClient, logger zerolog.Logger) *TelemetryPublisher {
	return &TelemetryPublisher{
		topicPrefix: topicPrefix,
		qos:         qos,
		mqttClient:  mqttClient,
		logger:      logger,
		workerPool:  utils.NewWorkerPool(10),
		publishWait: defaultPublishWait,
	}
}

// PublishTelemetry serializes and sends a snapshot.
func (p *TelemetryPublisher) PublishTelemetry(snapshot models.TelemetrySnapshot) {
	topic := fmt.Sprintf("%s/%s/%s/telemetry", p.topicPrefix, snapshot.BuildingID, snapshot.DeviceID)
	p.publish(topic, snapshot)
}

// PublishAlarm serializes and sends an alarm record.
func (p *TelemetryPublisher) PublishAlarm(record models.AlarmRecord) {
	topic := fmt.Sprintf("%s/%s/%s/alarm", p.topicPrefix, record.BuildingID, record.DeviceID)
	p.publish(topic, record)
}

func (p *TelemetryPublisher) publish(topic string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", topic).Msg("Failed to serialize payload")
		return
	}

	accepted := p.workerPool.TrySubmit(func() {
		token := p.mqttClient.Publish(topic, byte(p.qos), false, data)
		if !token.WaitTimeout(p.publishWait) {
			p.logger.Warn().Str("topic", topic).Msg("Publish not acknowledged in time, abandoning message")
			return
		}

		if err := token.Error(); err != nil {
			p.logger.Error().Err(err).Str("topic", topic).Msg("Failed to publish message")
		} else {
			p.logger.Debug().Str("topic", topic).Msg("Message published successfully")
		}
	})
	if !accepted {
		p.logger.Warn().Str("topic", topic).Msg("Publish queue full, dropping message")
	}
}

// Close drains pending publishes and shuts the worker pool down.
func (p *TelemetryPublisher) Close() {
	p.workerPool.Shutdown()
}
