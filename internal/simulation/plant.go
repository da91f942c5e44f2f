package simulation

import (
	"math"
	"math/rand"
)

// Plant is a single lumped thermal model of the supply-air stream. The
// fan conditions air toward setpoint at a rate proportional to drive
// speed; an open economizer additionally pulls supply temperature
// toward outside air in proportion to the substitution fraction.
type Plant struct {
	CapacityCPerSec float64 // conditioning rate at 100% drive speed
	OutsideCoupling float64 // outside-air pull per degree of difference, per second
	NoiseAmplitude  float64 // process noise bound, 0 disables

	rng *rand.Rand
}

// NewPlant creates a plant model with a seeded noise source.
func NewPlant(capacityCPerSec, outsideCoupling, noiseAmplitude float64, seed int64) *Plant {
	return &Plant{
		CapacityCPerSec: capacityCPerSec,
		OutsideCoupling: outsideCoupling,
		NoiseAmplitude:  noiseAmplitude,
		rng:             rand.New(rand.NewSource(seed)),
	}
}

// Step advances the supply temperature by dt seconds and returns the
// new value. Mechanical conditioning never overshoots setpoint within
// a single step.
func (p *Plant) Step(supply, setpoint, outside, vfdSpeed, substitution, dt float64) float64 {
	drive := p.CapacityCPerSec * vfdSpeed / 100.0 * dt
	diff := setpoint - supply
	if math.Abs(diff) <= drive {
		supply = setpoint
	} else if diff > 0 {
		supply += drive
	} else {
		supply -= drive
	}

	supply += substitution * p.OutsideCoupling * (outside - supply) * dt

	if p.NoiseAmplitude > 0 {
		supply += (p.rng.Float64()*2 - 1) * p.NoiseAmplitude * dt
	}

	return supply
}
