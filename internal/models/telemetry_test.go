package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTelemetrySnapshot_RoundTrip verifies the wire shape survives a
// marshal/unmarshal cycle with and without an active alarm.
func TestTelemetrySnapshot_RoundTrip(t *testing.T) {
	alarm := "High Temperature"
	snapshots := []TelemetrySnapshot{
		{
			Timestamp:  1756150000000,
			DeviceID:   "ahu1",
			BuildingID: "demo_building",
			Points: TelemetryPoints{
				OutsideTemp:    25.0,
				SupplyTemp:     18.2,
				Setpoint:       18.0,
				VFDSpeed:       54.5,
				FanStatus:      "ON",
				Alarm:          nil,
				EconomizerMode: "CLOSED",
			},
		},
		{
			Timestamp:  1756150002000,
			DeviceID:   "ahu1",
			BuildingID: "demo_building",
			Points: TelemetryPoints{
				OutsideTemp:    10.0,
				SupplyTemp:     24.1,
				Setpoint:       18.0,
				VFDSpeed:       100.0,
				FanStatus:      "ON",
				Alarm:          &alarm,
				EconomizerMode: "OPEN",
			},
		},
	}

	for _, snapshot := range snapshots {
		data, err := json.Marshal(snapshot)
		require.NoError(t, err)

		var decoded TelemetrySnapshot
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, snapshot, decoded)
	}
}

// TestTelemetrySnapshot_WireFields pins the JSON field names consumers
// depend on.
func TestTelemetrySnapshot_WireFields(t *testing.T) {
	snapshot := TelemetrySnapshot{Timestamp: 1, DeviceID: "d", BuildingID: "b"}
	data, err := json.Marshal(snapshot)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"ts", "device", "building", "points"} {
		assert.Contains(t, raw, key)
	}

	points := raw["points"].(map[string]any)
	for _, key := range []string{"outside_temp", "supply_temp", "setpoint", "vfd_speed", "fan_status", "alarm"} {
		assert.Contains(t, points, key)
	}
	assert.Nil(t, points["alarm"])
}

// TestAlarmRecord_RoundTrip verifies alarm records keep identity and
// severity across serialization.
func TestAlarmRecord_RoundTrip(t *testing.T) {
	record := AlarmRecord{
		Severity:   SeverityWarning,
		Message:    "Fan Saturation",
		Timestamp:  1756150002000,
		DeviceID:   "ahu2",
		BuildingID: "demo_building",
	}

	data, err := json.Marshal(record)
	require.NoError(t, err)

	var decoded AlarmRecord
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, record, decoded)
}
