package control

import "math"

// Fan status values as they appear on the wire.
const (
	FanOn  = "ON"
	FanOff = "OFF"
)

// VFDMapper converts control demand into a bounded fan-drive speed.
// The mapping is monotonic in demand magnitude and always clamps into
// [MinPercent, MaxPercent]; it never rejects out-of-range input.
type VFDMapper struct {
	MinPercent  float64
	MaxPercent  float64
	BasePercent float64 // speed at zero demand, before clamping
	Gain        float64 // percent of speed added per unit of demand magnitude
}

// Map returns the drive speed and fan status for the given demand.
// Fan status is ON whenever the clamped speed is above zero.
func (m VFDMapper) Map(demand float64) (float64, string) {
	speed := m.BasePercent + m.Gain*math.Abs(demand)
	if speed < m.MinPercent {
		speed = m.MinPercent
	}
	if speed > m.MaxPercent {
		speed = m.MaxPercent
	}

	status := FanOff
	if speed > 0 {
		status = FanOn
	}
	return speed, status
}
