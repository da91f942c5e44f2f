package control

// PID is a proportional-integral-derivative regulator with integral
// clamping (anti-windup) and optional derivative smoothing.
type PID struct {
	Kp          float64
	Ki          float64
	Kd          float64
	IntegralMin float64
	IntegralMax float64
	Smoothing   float64 // exponential filter weight on the derivative, 0 disables

	integral  float64
	prevErr   float64
	prevDeriv float64
	first     bool
}

// NewPID creates a regulator with zeroed state. The first Update call
// reports a zero derivative since there is no previous error yet.
func NewPID(kp, ki, kd, integralMin, integralMax, smoothing float64) *PID {
	return &PID{
		Kp:          kp,
		Ki:          ki,
		Kd:          kd,
		IntegralMin: integralMin,
		IntegralMax: integralMax,
		Smoothing:   smoothing,
		first:       true,
	}
}

// Update advances the regulator by dt seconds against the measured
// value and returns the control output. The caller guarantees dt > 0.
func (p *PID) Update(setpoint, measured, dt float64) float64 {
	err := setpoint - measured

	p.integral += err * dt
	if p.integral > p.IntegralMax {
		p.integral = p.IntegralMax
	} else if p.integral < p.IntegralMin {
		p.integral = p.IntegralMin
	}

	var derivative float64
	if p.first {
		p.first = false
	} else {
		derivative = (err - p.prevErr) / dt
		derivative = p.Smoothing*p.prevDeriv + (1-p.Smoothing)*derivative
	}

	p.prevErr = err
	p.prevDeriv = derivative

	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

// Integral returns the accumulated integral term.
func (p *PID) Integral() float64 {
	return p.integral
}

// PrevError returns the error seen on the previous update.
func (p *PID) PrevError() float64 {
	return p.prevErr
}

// Reset clears integral and derivative state.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevDeriv = 0
	p.first = true
}
