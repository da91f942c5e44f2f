package models

import "time"

// StatusAlive is the status reported by a healthy agent.
const StatusAlive = "alive"

// Heartbeat represents the structure for an agent health event.
type Heartbeat struct {
	ClientID      string    `json:"client_id"`
	Timestamp     time.Time `json:"timestamp"`
	Status        string    `json:"status"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	MemoryPercent *float64  `json:"memory_percent,omitempty"`
	Goroutines    int       `json:"goroutines"`
}
