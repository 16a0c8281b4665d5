// Package geojson loads the AFDC station dataset from a GeoJSON
// FeatureCollection and turns it into the in-memory station collection.
package geojson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/voltatlas/station-locator/internal/domain"
)

// FeatureCollection is the standard GeoJSON top-level structure.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a single geographic feature carrying the AFDC attribute bag.
type Feature struct {
	Type       string                   `json:"type"`
	Geometry   *Geometry                `json:"geometry"`
	Properties domain.StationProperties `json:"properties"`
}

// Geometry holds the feature geometry. Coordinates are [lon, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Parse decodes a GeoJSON FeatureCollection and assigns each feature a
// sequential ID from its position in the collection. IDs are stable for the
// session; every downstream representation is keyed by them. Features without
// a usable point geometry still become stations, just without coordinates.
func Parse(r io.Reader) ([]domain.Station, error) {
	var fc FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("parse feature collection: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("parse feature collection: unexpected type %q", fc.Type)
	}

	stations := make([]domain.Station, len(fc.Features))
	for i, f := range fc.Features {
		stations[i] = domain.Station{
			ID:         i,
			Geometry:   pointCoordinate(f.Geometry),
			Properties: f.Properties,
		}
	}
	return stations, nil
}

// pointCoordinate extracts a coordinate from a point geometry, or nil when
// the geometry is absent, non-point, or malformed.
func pointCoordinate(g *Geometry) *domain.Coordinate {
	if g == nil || g.Type != "Point" || len(g.Coordinates) < 2 {
		return nil
	}
	return &domain.Coordinate{Lon: g.Coordinates[0], Lat: g.Coordinates[1]}
}

// Loader fetches the station dataset from a URL or a local file. A load
// failure is fatal to initialization: the service has nothing to serve
// without the dataset.
type Loader struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLoader creates a dataset loader with the given fetch timeout.
func NewLoader(timeout time.Duration, logger *slog.Logger) *Loader {
	return &Loader{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FromURL fetches and parses the dataset over HTTP.
func (l *Loader) FromURL(ctx context.Context, url string) ([]domain.Station, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create dataset request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch dataset: status %d: %s", resp.StatusCode, body)
	}

	stations, err := Parse(resp.Body)
	if err != nil {
		return nil, err
	}
	l.logger.Info("dataset fetched", "url", url, "stations", len(stations))
	return stations, nil
}

// FromFile reads and parses the dataset from a local path.
func (l *Loader) FromFile(path string) ([]domain.Station, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	stations, err := Parse(f)
	if err != nil {
		return nil, err
	}
	l.logger.Info("dataset read", "path", path, "stations", len(stations))
	return stations, nil
}
