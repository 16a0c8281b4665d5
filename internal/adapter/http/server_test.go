package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/voltatlas/station-locator/internal/adapter/http"
	"github.com/voltatlas/station-locator/internal/domain"
	"github.com/voltatlas/station-locator/internal/observability"
	"github.com/voltatlas/station-locator/internal/session"
)

type stubLocator struct {
	coord domain.Coordinate
	err   error
	ip    string
}

func (s *stubLocator) Locate(_ context.Context, ip string) (domain.Coordinate, error) {
	s.ip = ip
	return s.coord, s.err
}

func stations() []domain.Station {
	return []domain.Station{
		{
			ID:         0,
			Geometry:   &domain.Coordinate{Lon: -122.34, Lat: 47.61},
			Properties: domain.StationProperties{StationName: "A", Status: "E", Pricing: "Free", DCFastPorts: 1},
		},
		{
			ID:         1,
			Geometry:   &domain.Coordinate{Lon: -122.20, Lat: 47.61},
			Properties: domain.StationProperties{StationName: "B", Status: "T", Pricing: "Paid $2/hr", Level2Ports: 2},
		},
	}
}

func newTestServer(t *testing.T, locator session.Locator) *httpadapter.Server {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	sess := session.New(nil, slog.Default(), metrics)
	sess.LoadStations(stations())
	return httpadapter.NewServer(":0", sess, locator, nil, slog.Default(), metrics)
}

func doRequest(srv *httpadapter.Server, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doRequest(newTestServer(t, nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	t.Run("ready once loaded", func(t *testing.T) {
		rec := doRequest(newTestServer(t, nil), http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready before load", func(t *testing.T) {
		metrics := observability.NewMetricsForTesting()
		sess := session.New(nil, slog.Default(), metrics)
		srv := httpadapter.NewServer(":0", sess, nil, nil, slog.Default(), metrics)

		rec := doRequest(srv, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not ready", body["status"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doRequest(newTestServer(t, nil), http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestGetStations(t *testing.T) {
	rec := doRequest(newTestServer(t, nil), http.MethodGet, "/api/stations", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []session.StationView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "A", views[0].Properties.StationName)
	assert.Equal(t, domain.CategoryDCFast, views[0].Category)
	assert.True(t, views[0].Visible)
}

func TestGetStation(t *testing.T) {
	srv := newTestServer(t, nil)

	t.Run("found", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/stations/1", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var view session.StationView
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		assert.Equal(t, "B", view.Properties.StationName)
		assert.Equal(t, domain.CategoryLevel2, view.Category)
	})

	t.Run("not found", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/stations/42", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("bad id", func(t *testing.T) {
		rec := doRequest(srv, http.MethodGet, "/api/stations/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPutFilters(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(srv, http.MethodPut, "/api/filters",
		`{"availability":"available","price":"free","max_distance_miles":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var settings domain.FilterSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, domain.AvailabilityAvailable, settings.Availability)
	assert.Equal(t, domain.PriceFree, settings.Price)
	assert.Equal(t, 5.0, settings.MaxDistanceMiles)

	// Filters applied: only station A is available and free, and it has no
	// computed distance yet, so the distance bound hides it too.
	rec = doRequest(srv, http.MethodGet, "/api/visibility", "")
	var decisions map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decisions))
	assert.Equal(t, map[string]bool{"0": false, "1": false}, decisions)
}

func TestPutFilters_Invalid(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
	}{
		{"bad availability", `{"availability":"open"}`},
		{"bad price", `{"price":"cheap"}`},
		{"negative distance", `{"max_distance_miles":-1}`},
		{"bad json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(srv, http.MethodPut, "/api/filters", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	// Invalid updates leave the settings untouched.
	rec := doRequest(srv, http.MethodGet, "/api/filters", "")
	var settings domain.FilterSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &settings))
	assert.Equal(t, domain.DefaultFilterSettings(), settings)
}

func TestConnectorFilter(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(srv, http.MethodPost, "/api/filters/connector/level2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/visibility", "")
	var decisions map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decisions))
	assert.Equal(t, map[string]bool{"0": false, "1": true}, decisions)

	t.Run("other is not selectable", func(t *testing.T) {
		rec := doRequest(srv, http.MethodPost, "/api/filters/connector/other", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLocate_ExplicitCoordinate(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(srv, http.MethodPost, "/api/session/locate", `{"lon":-122.335167,"lat":47.608013}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Distances are now annotated, so a distance bound keeps nearby stations.
	rec = doRequest(srv, http.MethodPut, "/api/filters", `{"max_distance_miles":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(srv, http.MethodGet, "/api/visibility", "")
	var decisions map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decisions))
	assert.True(t, decisions["0"], "station within five miles stays visible")
	assert.False(t, decisions["1"], "station across the lake is out of range")
}

func TestLocate_ViaProvider(t *testing.T) {
	locator := &stubLocator{coord: domain.Coordinate{Lon: -122.3, Lat: 47.6}}
	srv := newTestServer(t, locator)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/session/locate", strings.NewReader(""))
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "203.0.113.7", locator.ip)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, -122.3, resp["lon"])
}

func TestLocate_ProviderFailure(t *testing.T) {
	locator := &stubLocator{err: errors.New("provider down")}
	srv := newTestServer(t, locator)

	rec := doRequest(srv, http.MethodPost, "/api/session/locate", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestLocate_DisabledWithoutBody(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(srv, http.MethodPost, "/api/session/locate", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLocate_PartialCoordinate(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := doRequest(srv, http.MethodPost, "/api/session/locate", `{"lon":-122.3}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
