package services

import (
	"sync"
	"time"

	"github.com/benmeehan/ahu-simulator/internal/models"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/mock"
)

// MockMQTTClient is a mock implementation of the MQTTClient interface.
type MockMQTTClient struct {
	mock.Mock
}

func (m *MockMQTTClient) Connect() mqtt.Token {
	args := m.Called()
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	args := m.Called(topic, qos, retained, payload)
	return args.Get(0).(mqtt.Token)
}

func (m *MockMQTTClient) Disconnect(quiesce uint) {
	m.Called(quiesce)
}

// MockToken is a completed paho token with a fixed error.
type MockToken struct {
	Err error
}

func (t *MockToken) Wait() bool                     { return true }
func (t *MockToken) WaitTimeout(time.Duration) bool { return true }
func (t *MockToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *MockToken) Error() error { return t.Err }

// StuckToken models a wedged broker connection: it never completes.
type StuckToken struct{}

func (t *StuckToken) Wait() bool { select {} }
func (t *StuckToken) WaitTimeout(d time.Duration) bool {
	time.Sleep(d)
	return false
}
func (t *StuckToken) Done() <-chan struct{} { return make(chan struct{}) }
func (t *StuckToken) Error() error          { return nil }

// capturingPublisher records everything the fleet hands to it.
type capturingPublisher struct {
	mu        sync.Mutex
	snapshots []models.TelemetrySnapshot
	alarms    []models.AlarmRecord
}

func (p *capturingPublisher) PublishTelemetry(snapshot models.TelemetrySnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, snapshot)
}

func (p *capturingPublisher) PublishAlarm(record models.AlarmRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alarms = append(p.alarms, record)
}

func (p *capturingPublisher) Snapshots() []models.TelemetrySnapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.TelemetrySnapshot, len(p.snapshots))
	copy(out, p.snapshots)
	return out
}
