package models

// AlarmSeverity classifies how urgent an alarm is.
type AlarmSeverity string

const (
	SeverityWarning  AlarmSeverity = "WARNING"
	SeverityCritical AlarmSeverity = "CRITICAL"
)

// TelemetrySnapshot is the reading emitted once per control-loop tick.
// It is assembled fresh each tick and handed to the publisher; the
// engine keeps no reference to it afterwards.
type TelemetrySnapshot struct {
	Timestamp  int64           `json:"ts"` // epoch milliseconds
	DeviceID   string          `json:"device"`
	BuildingID string          `json:"building"`
	Points     TelemetryPoints `json:"points"`
}

// TelemetryPoints is the nested point set of a snapshot.
type TelemetryPoints struct {
	OutsideTemp    float64 `json:"outside_temp"`
	SupplyTemp     float64 `json:"supply_temp"`
	Setpoint       float64 `json:"setpoint"`
	VFDSpeed       float64 `json:"vfd_speed"`
	FanStatus      string  `json:"fan_status"`
	Alarm          *string `json:"alarm"`
	EconomizerMode string  `json:"economizer_mode"`
}

// AlarmRecord describes a single fault condition raised during a tick.
// At most one record is emitted per tick; simultaneous conditions
// collapse to the highest-severity one.
type AlarmRecord struct {
	Severity   AlarmSeverity `json:"severity"`
	Message    string        `json:"message"`
	Timestamp  int64         `json:"ts"` // epoch milliseconds
	DeviceID   string        `json:"device"`
	BuildingID string        `json:"building"`
}
