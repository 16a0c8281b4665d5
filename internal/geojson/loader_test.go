package geojson

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltatlas/station-locator/internal/domain"
)

func TestParse_Fixture(t *testing.T) {
	f, err := os.Open("testdata/stations.geojson")
	require.NoError(t, err)
	defer f.Close()

	stations, err := Parse(f)
	require.NoError(t, err)
	require.Len(t, stations, 3)

	// IDs are sequential from feature order.
	for i, st := range stations {
		assert.Equal(t, i, st.ID)
	}

	assert.Equal(t, "Seattle Center Garage", stations[0].Properties.StationName)
	require.NotNil(t, stations[0].Geometry)
	assert.Equal(t, -122.335167, stations[0].Geometry.Lon)
	assert.Equal(t, 47.608013, stations[0].Geometry.Lat)
	assert.Equal(t, domain.PortCount(2), stations[0].Properties.DCFastPorts)
	assert.Equal(t, domain.CategoryDCFast, domain.Classify(stations[0].Properties))

	assert.Equal(t, domain.PortCount(4), stations[1].Properties.Level2Ports)
	assert.Equal(t, "T", stations[1].Properties.Status)

	assert.Nil(t, stations[2].Geometry, "null geometry still becomes a station")
	assert.Equal(t, domain.CategoryLevel1, domain.Classify(stations[2].Properties))
}

func TestParse_Errors(t *testing.T) {
	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Parse(strings.NewReader("{broken"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse feature collection")
	})

	t.Run("wrong top-level type", func(t *testing.T) {
		_, err := Parse(strings.NewReader(`{"type":"Feature","features":[]}`))
		require.Error(t, err)
	})

	t.Run("empty collection", func(t *testing.T) {
		stations, err := Parse(strings.NewReader(`{"type":"FeatureCollection","features":[]}`))
		require.NoError(t, err)
		assert.Empty(t, stations)
	})
}

func TestParse_NonPointGeometry(t *testing.T) {
	data := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Polygon","coordinates":[]},"properties":{"Station_Name":"Odd"}}
	]}`

	stations, err := Parse(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Nil(t, stations[0].Geometry)
}

func TestLoader_FromURL(t *testing.T) {
	fixture, err := os.ReadFile("testdata/stations.geojson")
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(fixture) //nolint:errcheck
	}))
	defer srv.Close()

	loader := NewLoader(5*time.Second, slog.Default())
	stations, err := loader.FromURL(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, stations, 3)
}

func TestLoader_FromURL_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	loader := NewLoader(5*time.Second, slog.Default())
	_, err := loader.FromURL(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestLoader_FromFile_Missing(t *testing.T) {
	loader := NewLoader(time.Second, slog.Default())
	_, err := loader.FromFile("testdata/does-not-exist.geojson")
	require.Error(t, err)
}
