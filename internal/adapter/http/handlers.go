package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/voltatlas/station-locator/internal/domain"
)

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Stations())
}

func (s *Server) handleStation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid station id %q", r.PathValue("id")))
		return
	}

	view, ok := s.sess.Station(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("no station with id %d", id))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleVisibility(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Visibility())
}

func (s *Server) handleGetFilters(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.Settings())
}

// filterRequest is the PUT /api/filters body. Omitted fields mean
// unrestricted, matching the default position of the corresponding control.
type filterRequest struct {
	Availability     string  `json:"availability"`
	Price            string  `json:"price"`
	MaxDistanceMiles float64 `json:"max_distance_miles"`
}

func (s *Server) handlePutFilters(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode filter request: %w", err))
		return
	}

	availability, err := domain.ParseAvailability(req.Availability)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	price, err := domain.ParsePrice(req.Price)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.MaxDistanceMiles < 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("max_distance_miles must not be negative"))
		return
	}

	settings := s.sess.SetControls(availability, price, req.MaxDistanceMiles)
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleConnectorFilter(w http.ResponseWriter, r *http.Request) {
	connector, err := domain.ParseConnectorFilter(r.PathValue("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	settings := s.sess.SetConnectorFilter(connector)
	writeJSON(w, http.StatusOK, settings)
}

// locateRequest optionally carries an explicit coordinate. Without one the
// requesting client's IP is resolved through the geolocation provider.
type locateRequest struct {
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

type locateResponse struct {
	Lon       float64   `json:"lon"`
	Lat       float64   `json:"lat"`
	LocatedAt time.Time `json:"located_at"`
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	var req locateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode locate request: %w", err))
		return
	}

	var loc domain.Coordinate
	switch {
	case req.Lon != nil && req.Lat != nil:
		loc = domain.Coordinate{Lon: *req.Lon, Lat: *req.Lat}
	case req.Lon != nil || req.Lat != nil:
		writeError(w, http.StatusBadRequest, fmt.Errorf("lon and lat must be provided together"))
		return
	case s.locator == nil:
		writeError(w, http.StatusBadRequest, fmt.Errorf("geolocation is disabled; provide lon and lat"))
		return
	default:
		resolved, err := s.locator.Locate(r.Context(), clientIP(r))
		if err != nil {
			// Recoverable: the previous location, if any, is retained.
			s.logger.Warn("geolocation failed", "error", err)
			s.metrics.LocateRequests.WithLabelValues("error").Inc()
			writeError(w, http.StatusBadGateway, fmt.Errorf("could not resolve location: %w", err))
			return
		}
		loc = resolved
	}

	at := s.sess.SetLocation(loc)
	s.metrics.LocateRequests.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, locateResponse{Lon: loc.Lon, Lat: loc.Lat, LocatedAt: at})
}

// clientIP extracts the requesting client's address, preferring the first
// X-Forwarded-For hop when the service sits behind a proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
