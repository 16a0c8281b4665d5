package geoip

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Locate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/203.0.113.7", r.URL.Path)
		w.Write([]byte(`{"status":"success","lat":47.608013,"lon":-122.335167}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, slog.Default())
	coord, err := client.Locate(context.Background(), "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, -122.335167, coord.Lon)
	assert.Equal(t, 47.608013, coord.Lat)
}

func TestClient_Locate_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"private range"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, slog.Default())
	_, err := client.Locate(context.Background(), "10.0.0.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private range")
}

func TestClient_Locate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, slog.Default())
	_, err := client.Locate(context.Background(), "203.0.113.7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestClient_Locate_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{broken")) //nolint:errcheck
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second, slog.Default())
	_, err := client.Locate(context.Background(), "203.0.113.7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode locate response")
}
