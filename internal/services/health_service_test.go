package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestHealthService_StartStopContract tests the double start/stop
// error contract.
func TestHealthService_StartStopContract(t *testing.T) {
	mockClient := new(MockMQTTClient)
	h := NewHealthService("agent/health", time.Second, "client-1", 0, mockClient, zerolog.Nop())

	require.NoError(t, h.Start())
	err := h.Start()
	require.Error(t, err)
	assert.Equal(t, "health service is already running", err.Error())

	require.NoError(t, h.Stop())
	err = h.Stop()
	require.Error(t, err)
	assert.Equal(t, "health service is not running", err.Error())
}

// TestHealthService_PublishesHeartbeat waits for at least one
// heartbeat on the configured topic.
func TestHealthService_PublishesHeartbeat(t *testing.T) {
	mockClient := new(MockMQTTClient)
	mockClient.On("Publish", "agent/health", byte(0), false, mock.Anything).Return(&MockToken{})

	h := NewHealthService("agent/health", 50*time.Millisecond, "client-1", 0, mockClient, zerolog.Nop())

	require.NoError(t, h.Start())
	time.Sleep(120 * time.Millisecond)
	require.NoError(t, h.Stop())

	mockClient.AssertExpectations(t)
}
