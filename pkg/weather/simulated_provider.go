package weather

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

// SimulatedProvider models outside temperature as a daily sinusoid
// around 20 degrees C, peaking mid-afternoon, plus seeded noise. It
// never fails, which makes it a safe fallback for live providers.
type SimulatedProvider struct {
	BaseTemp  float64 // daily mean
	Amplitude float64 // half the daily swing
	NoiseC    float64 // uniform noise bound

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedProvider creates a seeded simulated weather source.
func NewSimulatedProvider(seed int64) *SimulatedProvider {
	return &SimulatedProvider{
		BaseTemp:  20.0,
		Amplitude: 10.0,
		NoiseC:    2.0,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// GetOutsideTemperature returns the modeled temperature for the given
// time of day. Safe for concurrent use across device loops.
func (p *SimulatedProvider) GetOutsideTemperature(ctx context.Context, buildingID string, at time.Time) (float64, error) {
	hour := float64(at.Hour()) + float64(at.Minute())/60.0
	base := p.BaseTemp + p.Amplitude*math.Sin((hour-6)*math.Pi/12)

	p.mu.Lock()
	noise := (p.rng.Float64()*2 - 1) * p.NoiseC
	p.mu.Unlock()

	return base + noise, nil
}
