// Package geoip resolves client IP addresses to coordinates using an
// ip-api.com style JSON endpoint. It implements session.Locator.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/voltatlas/station-locator/internal/domain"
)

// Client queries the geolocation endpoint. Geolocation failure is always
// recoverable for the caller: the session keeps its previous location.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a geolocation client. baseURL is the endpoint prefix,
// e.g. "http://ip-api.com/json"; the IP is appended as a path segment.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Locate resolves an IP address to a coordinate.
func (c *Client) Locate(ctx context.Context, ip string) (domain.Coordinate, error) {
	u := fmt.Sprintf("%s/%s?fields=status,message,lat,lon", c.baseURL, url.PathEscape(ip))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("create locate request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Coordinate{}, fmt.Errorf("locate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.Coordinate{}, fmt.Errorf("geolocation API error: status %d: %s", resp.StatusCode, body)
	}

	var geoResp response
	if err := json.NewDecoder(resp.Body).Decode(&geoResp); err != nil {
		return domain.Coordinate{}, fmt.Errorf("decode locate response: %w", err)
	}

	if geoResp.Status != "success" {
		return domain.Coordinate{}, fmt.Errorf("geolocation failed for %s: %s", ip, geoResp.Message)
	}

	return domain.Coordinate{Lon: geoResp.Lon, Lat: geoResp.Lat}, nil
}

// Geolocation API response shape.
type response struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
