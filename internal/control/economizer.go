package control

// EconomizerMode is the damper position decided each tick.
type EconomizerMode string

const (
	EconomizerOpen   EconomizerMode = "OPEN"
	EconomizerClosed EconomizerMode = "CLOSED"
)

// Economizer decides when outside air is cool enough to substitute for
// mechanical cooling. The decision is stateless; only the resulting
// mode is recorded in device state for telemetry.
type Economizer struct {
	OffsetC float64 // degrees above setpoint up to which free cooling engages
	Gain    float64 // substitution fraction gained per degree below the threshold
}

// Decide returns OPEN when the outside temperature is strictly below
// setpoint + offset, CLOSED otherwise (the boundary resolves to CLOSED).
func (e Economizer) Decide(outsideTemp, setpoint float64) EconomizerMode {
	if outsideTemp < setpoint+e.OffsetC {
		return EconomizerOpen
	}
	return EconomizerClosed
}

// Substitution returns the fraction of mechanical demand replaced by
// outside air, in [0, 1]. Zero whenever the damper is CLOSED; free
// cooling never exceeds full substitution.
func (e Economizer) Substitution(outsideTemp, setpoint float64) float64 {
	threshold := setpoint + e.OffsetC
	if outsideTemp >= threshold {
		return 0
	}
	s := e.Gain * (threshold - outsideTemp)
	if s > 1 {
		s = 1
	}
	return s
}

// Apply scales the regulator output by whatever demand free cooling has
// not already covered. With the damper CLOSED the output passes through
// unmodified.
func (e Economizer) Apply(demand, outsideTemp, setpoint float64) float64 {
	return demand * (1 - e.Substitution(outsideTemp, setpoint))
}
