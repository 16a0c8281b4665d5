// Package sse streams visibility decisions to connected clients over
// Server-Sent Events. It is the service's visibility sink: whenever the
// session recomputes which stations are visible, every connected client
// receives the full decision set and toggles its markers and sidebar
// entries accordingly.
package sse

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/voltatlas/station-locator/internal/observability"
)

// Event is one message on the stream.
type Event struct {
	Type string
	Data any
}

// Manager tracks connected clients and fans events out to them.
// Implements session.VisibilitySink.
type Manager struct {
	mu      sync.Mutex
	clients map[int]chan Event
	nextID  int
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewManager creates an SSE manager with no clients.
func NewManager(logger *slog.Logger, metrics *observability.Metrics) *Manager {
	return &Manager{
		clients: make(map[int]chan Event),
		logger:  logger,
		metrics: metrics,
	}
}

// ApplyVisibility broadcasts a visibility decision set to every client.
func (m *Manager) ApplyVisibility(decisions map[int]bool) {
	m.Broadcast(Event{Type: "visibility", Data: decisions})
}

// Broadcast sends an event to all connected clients. Slow clients whose
// buffers are full miss the event rather than blocking the sender; the next
// broadcast carries the complete state again, so nothing is lost for long.
func (m *Manager) Broadcast(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, ch := range m.clients {
		select {
		case ch <- event:
		default:
			m.logger.Warn("sse client buffer full, dropping event", "client", id, "type", event.Type)
		}
	}
}

// addClient registers a new client and returns its ID and event channel.
func (m *Manager) addClient() (int, <-chan Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	ch := make(chan Event, 16)
	m.clients[id] = ch

	m.metrics.SSEClients.Set(float64(len(m.clients)))
	m.logger.Info("sse client connected", "client", id, "total", len(m.clients))
	return id, ch
}

// removeClient unregisters a client and closes its channel.
func (m *Manager) removeClient(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ch, ok := m.clients[id]; ok {
		close(ch)
		delete(m.clients, id)
		m.metrics.SSEClients.Set(float64(len(m.clients)))
		m.logger.Info("sse client disconnected", "client", id, "remaining", len(m.clients))
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.clients)
}

// formatEvent renders an event in SSE wire format.
func formatEvent(event Event) ([]byte, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, fmt.Errorf("marshal sse event: %w", err)
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", event.Type, data), nil
}
