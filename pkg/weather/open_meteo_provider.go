package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultOpenMeteoURL is the public Open-Meteo forecast endpoint.
const DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

// OpenMeteoProvider fetches the current outside temperature from the
// Open-Meteo API for a fixed site location.
type OpenMeteoProvider struct {
	client    *http.Client
	baseURL   string
	latitude  float64
	longitude float64
}

// NewOpenMeteoProvider creates a provider for the given coordinates.
// The timeout bounds every request regardless of caller context.
func NewOpenMeteoProvider(latitude, longitude float64, timeout time.Duration) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		client:    &http.Client{Timeout: timeout},
		baseURL:   DefaultOpenMeteoURL,
		latitude:  latitude,
		longitude: longitude,
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (p *OpenMeteoProvider) SetBaseURL(u string) {
	p.baseURL = u
}

type openMeteoResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
	} `json:"current_weather"`
}

// GetOutsideTemperature queries the API for the current temperature in
// Celsius. The buildingID is not part of the API contract; the site
// location is fixed per provider.
func (p *OpenMeteoProvider) GetOutsideTemperature(ctx context.Context, buildingID string, at time.Time) (float64, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(p.latitude, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(p.longitude, 'f', 4, 64))
	params.Set("current_weather", "true")
	params.Set("temperature_unit", "celsius")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("weather API returned status %d", resp.StatusCode)
	}

	var body openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode weather response: %w", err)
	}

	return body.CurrentWeather.Temperature, nil
}
