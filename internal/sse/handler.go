package sse

import (
	"net/http"
)

// Handler returns the HTTP handler for the event stream. Each request
// registers one client; the connection stays open until the client goes away.
// On connect the client immediately receives the current visibility set via
// the initial function, so it never has to wait for the next change.
func (m *Manager) Handler(initial func() Event) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		id, events := m.addClient()
		defer m.removeClient(id)

		if initial != nil {
			if err := writeEvent(w, initial()); err != nil {
				return
			}
			flusher.Flush()
		}

		for {
			select {
			case <-r.Context().Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, event); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, event Event) error {
	wire, err := formatEvent(event)
	if err != nil {
		return err
	}
	_, err = w.Write(wire)
	return err
}
