package weather

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// FallbackProvider wraps a live provider with a strict time bound and
// fails over to a secondary provider on timeout or error. The control
// loop's cadence must never stall on a slow weather fetch, so the
// wrapped call always completes within the configured timeout and the
// failover surfaces as a log line, never as an error.
type FallbackProvider struct {
	primary  Provider
	fallback Provider
	timeout  time.Duration
	logger   zerolog.Logger
}

// NewFallbackProvider creates a provider that prefers primary and
// falls back to the secondary source on any failure.
func NewFallbackProvider(primary, fallback Provider, timeout time.Duration, logger zerolog.Logger) *FallbackProvider {
	return &FallbackProvider{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		logger:   logger,
	}
}

// GetOutsideTemperature returns the primary reading when it arrives in
// time, otherwise the fallback value.
func (f *FallbackProvider) GetOutsideTemperature(ctx context.Context, buildingID string, at time.Time) (float64, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	temp, err := f.primary.GetOutsideTemperature(fetchCtx, buildingID, at)
	if err == nil {
		return temp, nil
	}

	f.logger.Warn().Err(err).Str("building_id", buildingID).
		Msg("Live weather fetch failed, using simulated value")

	return f.fallback.GetOutsideTemperature(ctx, buildingID, at)
}
