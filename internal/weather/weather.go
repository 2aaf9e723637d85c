// Package weather proxies a data.gov.sg-compatible air-temperature API,
// joining station metadata to readings by station identifier.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/omnidash/omnidash/internal/metrics"
)

// Weather errors.
var (
	ErrUpstreamUnavailable = errors.New("weather service unavailable")
	ErrBadUpstreamShape    = errors.New("unexpected weather payload")
)

// Reading is one station's joined and formatted observation.
type Reading struct {
	Location    string `json:"location"`
	Temperature string `json:"temperature"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
	Timestamp   string `json:"timestamp"`
}

// Upstream payload shapes.
type apiPayload struct {
	Metadata struct {
		Stations []apiStation `json:"stations"`
	} `json:"metadata"`
	Items []apiItem `json:"items"`
}

type apiStation struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

type apiItem struct {
	Timestamp string `json:"timestamp"`
	Readings  []struct {
		StationID string   `json:"station_id"`
		Value     *float64 `json:"value"`
	} `json:"readings"`
}

// Service fetches and reshapes current station readings.
type Service struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewService creates a weather Service for the given endpoint URL.
func NewService(endpoint string, httpClient *http.Client, logger *slog.Logger, recorder metrics.Recorder) *Service {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Service{
		endpoint: endpoint,
		http:     httpClient,
		logger:   logger.With("component", "weather.service"),
		metrics:  recorder,
	}
}

// Readings returns current readings joined with station metadata. Readings
// whose station is unknown or whose value is missing are skipped. A non-empty
// location filters by case-insensitive substring match on station name.
func (s *Service) Readings(ctx context.Context, location string) ([]Reading, error) {
	payload, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	if len(payload.Items) == 0 {
		return nil, fmt.Errorf("%w: no items", ErrBadUpstreamShape)
	}
	item := payload.Items[0]

	stations := make(map[string]apiStation, len(payload.Metadata.Stations))
	for _, st := range payload.Metadata.Stations {
		stations[st.ID] = st
	}

	filter := strings.ToLower(location)

	result := make([]Reading, 0, len(item.Readings))
	for _, r := range item.Readings {
		station, ok := stations[r.StationID]
		if !ok || r.Value == nil {
			continue
		}

		if filter != "" && !strings.Contains(strings.ToLower(station.Name), filter) {
			continue
		}

		result = append(result, Reading{
			Location:    station.Name,
			Temperature: fmt.Sprintf("%.1f°C", *r.Value),
			Latitude:    strconv.FormatFloat(station.Location.Latitude, 'f', -1, 64),
			Longitude:   strconv.FormatFloat(station.Location.Longitude, 'f', -1, 64),
			Timestamp:   item.Timestamp,
		})
	}

	return result, nil
}

func (s *Service) fetch(ctx context.Context) (*apiPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	s.metrics.ObserveUpstreamDuration("weather", time.Since(start))
	if err != nil {
		s.metrics.IncUpstreamRequest("weather", "error")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.metrics.IncUpstreamRequest("weather", "error")
		return nil, fmt.Errorf("%w: upstream status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.metrics.IncUpstreamRequest("weather", "error")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	var payload apiPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		s.metrics.IncUpstreamRequest("weather", "error")
		return nil, fmt.Errorf("%w: %v", ErrBadUpstreamShape, err)
	}

	s.metrics.IncUpstreamRequest("weather", "success")
	return &payload, nil
}
