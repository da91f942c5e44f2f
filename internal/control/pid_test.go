package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestPID_FirstTickDerivativeIsZero verifies the first update carries
// no derivative contribution.
func TestPID_FirstTickDerivativeIsZero(t *testing.T) {
	p := NewPID(1.0, 0.1, 0.05, -50, 50, 0)

	// err = 2, integral = 2, derivative = 0 on the first tick
	out := p.Update(2.0, 0.0, 1.0)

	assert.InDelta(t, 1.0*2.0+0.1*2.0, out, 1e-9)
}

// TestPID_SecondTickIncludesDerivative verifies the derivative uses
// the previous tick's error.
func TestPID_SecondTickIncludesDerivative(t *testing.T) {
	p := NewPID(1.0, 0.1, 0.05, -50, 50, 0)

	p.Update(2.0, 0.0, 1.0)
	out := p.Update(2.0, 1.0, 1.0)

	// err = 1, integral = 3, derivative = (1 - 2) / 1 = -1
	assert.InDelta(t, 1.0*1.0+0.1*3.0+0.05*(-1.0), out, 1e-9)
}

// TestPID_IntegralClamp verifies the anti-windup bounds hold no matter
// how long the error stays saturated.
func TestPID_IntegralClamp(t *testing.T) {
	p := NewPID(1.0, 0.1, 0.0, -5.0, 5.0, 0)

	for i := 0; i < 100; i++ {
		p.Update(10.0, 0.0, 1.0)
		assert.LessOrEqual(t, p.Integral(), 5.0)
	}
	assert.InDelta(t, 5.0, p.Integral(), 1e-9)

	for i := 0; i < 100; i++ {
		p.Update(0.0, 10.0, 1.0)
		assert.GreaterOrEqual(t, p.Integral(), -5.0)
	}
	assert.InDelta(t, -5.0, p.Integral(), 1e-9)
}

// TestPID_DerivativeSmoothing verifies the exponential filter blends
// the previous derivative into the raw one.
func TestPID_DerivativeSmoothing(t *testing.T) {
	p := NewPID(0.0, 0.0, 1.0, -50, 50, 0.5)

	p.Update(2.0, 0.0, 1.0)
	out := p.Update(2.0, 1.0, 1.0)

	// raw derivative = -1, previous filtered derivative = 0
	assert.InDelta(t, 0.5*0.0+0.5*(-1.0), out, 1e-9)
}

// TestPID_Reset verifies Reset clears accumulated state.
func TestPID_Reset(t *testing.T) {
	p := NewPID(1.0, 0.5, 0.1, -50, 50, 0)
	p.Update(5.0, 0.0, 1.0)
	p.Reset()

	assert.Zero(t, p.Integral())
	assert.Zero(t, p.PrevError())

	// After reset the next tick behaves like a first tick again.
	out := p.Update(2.0, 0.0, 1.0)
	assert.InDelta(t, 1.0*2.0+0.5*2.0, out, 1e-9)
}
