// Package session owns the in-memory state of one locator deployment: the
// loaded station collection, the user location, and the active filter
// settings. Every mutation triggers a full, stateless visibility recompute
// whose result is pushed to the visibility sink; there is no incremental
// update path, which is simple and fast enough at dataset scale (hundreds to
// low thousands of stations).
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/voltatlas/station-locator/internal/domain"
	"github.com/voltatlas/station-locator/internal/observability"
)

// Locator resolves a client address to a coordinate.
type Locator interface {
	Locate(ctx context.Context, ip string) (domain.Coordinate, error)
}

// VisibilitySink receives the complete visibility decision set whenever it is
// recomputed. Implementations must not block.
type VisibilitySink interface {
	ApplyVisibility(decisions map[int]bool)
}

// StationView pairs a station with its derived fields for API responses.
// Category is recomputed on demand so it always reflects current properties.
type StationView struct {
	domain.Station
	Category domain.Category `json:"category"`
	Visible  bool            `json:"visible"`
}

// Session is the process-wide mutable state. Guarded by a RWMutex because
// HTTP handlers and the status feed run concurrently; mutations are
// serialized the way the original single event loop serialized callbacks.
type Session struct {
	mu        sync.RWMutex
	stations  []domain.Station
	location  *domain.Coordinate
	locatedAt time.Time
	settings  domain.FilterSettings
	loaded    bool

	sink    VisibilitySink
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates an empty session with unrestricted filter settings.
func New(sink VisibilitySink, logger *slog.Logger, metrics *observability.Metrics) *Session {
	return &Session{
		settings: domain.DefaultFilterSettings(),
		sink:     sink,
		logger:   logger,
		metrics:  metrics,
	}
}

// LoadStations installs the dataset. Called once at startup, before the HTTP
// server starts serving.
func (s *Session) LoadStations(stations []domain.Station) {
	s.mu.Lock()
	s.stations = stations
	s.loaded = true
	s.metrics.StationsLoaded.Set(float64(len(stations)))
	decisions := s.recomputeLocked()
	s.mu.Unlock()

	s.logger.Info("stations loaded", "count", len(stations))
	s.broadcast(decisions)
}

// CheckReadiness returns nil once the dataset has been loaded.
func (s *Session) CheckReadiness(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return errors.New("station dataset not loaded yet")
	}
	return nil
}

// Stations returns a view of every station with its current category and
// visibility decision.
func (s *Session) Stations() []StationView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	views := make([]StationView, len(s.stations))
	for i, st := range s.stations {
		views[i] = StationView{
			Station:  st,
			Category: domain.Classify(st.Properties),
			Visible:  domain.Visible(st, s.settings),
		}
	}
	return views
}

// Station returns the view for one station by ID.
func (s *Session) Station(id int) (StationView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.stations {
		if st.ID == id {
			return StationView{
				Station:  st,
				Category: domain.Classify(st.Properties),
				Visible:  domain.Visible(st, s.settings),
			}, true
		}
	}
	return StationView{}, false
}

// Visibility returns the current complete decision set.
func (s *Session) Visibility() map[int]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeVisibility(s.stations, s.settings)
}

// Settings returns the active filter settings snapshot.
func (s *Session) Settings() domain.FilterSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SetControls updates the dropdown-style filters (availability, price,
// distance bound) in one step and recomputes visibility.
func (s *Session) SetControls(availability domain.AvailabilityFilter, price domain.PriceFilter, maxDistanceMiles float64) domain.FilterSettings {
	s.mu.Lock()
	s.settings.Availability = availability
	s.settings.Price = price
	s.settings.MaxDistanceMiles = maxDistanceMiles
	settings := s.settings
	decisions := s.recomputeLocked()
	s.mu.Unlock()

	s.broadcast(decisions)
	return settings
}

// SetConnectorFilter records the connector button press and recomputes
// visibility.
func (s *Session) SetConnectorFilter(connector domain.ConnectorFilter) domain.FilterSettings {
	s.mu.Lock()
	s.settings.Connector = connector
	settings := s.settings
	decisions := s.recomputeLocked()
	s.mu.Unlock()

	s.broadcast(decisions)
	return settings
}

// SetLocation stores the user location, re-annotates every station's
// distance, and recomputes visibility. The write is unconditional: when
// several locate requests are in flight, the one that completes last wins,
// with no ordering guarantee tied to request order.
func (s *Session) SetLocation(loc domain.Coordinate) time.Time {
	s.mu.Lock()
	s.location = &loc
	s.locatedAt = clock.Now()
	domain.AnnotateDistances(s.stations, loc)
	at := s.locatedAt
	decisions := s.recomputeLocked()
	s.mu.Unlock()

	s.logger.Info("user location set", "lon", loc.Lon, "lat", loc.Lat)
	s.broadcast(decisions)
	return at
}

// Location returns the last stored user location, if any.
func (s *Session) Location() (domain.Coordinate, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.location == nil {
		return domain.Coordinate{}, time.Time{}, false
	}
	return *s.location, s.locatedAt, true
}

// UpdateStatus applies a live status change to one station and recomputes
// visibility. Returns false when no station has the given ID.
func (s *Session) UpdateStatus(stationID int, status string) bool {
	s.mu.Lock()
	found := false
	for i := range s.stations {
		if s.stations[i].ID == stationID {
			s.stations[i].Properties.Status = status
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return false
	}
	decisions := s.recomputeLocked()
	s.mu.Unlock()

	s.broadcast(decisions)
	return true
}

// recomputeLocked runs one full visibility pass. Caller must hold mu.
func (s *Session) recomputeLocked() map[int]bool {
	start := time.Now()
	decisions := domain.ComputeVisibility(s.stations, s.settings)

	visible := 0
	for _, v := range decisions {
		if v {
			visible++
		}
	}
	s.metrics.FilterPasses.Inc()
	s.metrics.VisibleStations.Set(float64(visible))
	s.metrics.FilterDuration.Observe(time.Since(start).Seconds())
	return decisions
}

// broadcast pushes a decision set to the sink, outside the session lock.
func (s *Session) broadcast(decisions map[int]bool) {
	if s.sink == nil {
		return
	}
	s.sink.ApplyVisibility(decisions)
}
