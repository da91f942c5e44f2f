package weather

import (
	"context"
	"time"
)

// Provider yields the outside-air temperature for a building at a
// point in time. Implementations performing I/O must honor the
// context deadline.
type Provider interface {
	GetOutsideTemperature(ctx context.Context, buildingID string, at time.Time) (float64, error)
}
