// Package feed runs the live station-status loop: it reads status updates
// from a source and applies them to the session, which recomputes visibility
// and notifies the sink.
package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/voltatlas/station-locator/internal/domain"
	"github.com/voltatlas/station-locator/internal/observability"
)

// Extractor reads the next status update from the source, blocking until one
// is available or the context is cancelled.
type Extractor interface {
	Extract(ctx context.Context) (domain.StatusUpdate, error)
}

// Applier applies a status change to session state. Returns false when the
// station ID is unknown.
type Applier interface {
	UpdateStatus(stationID int, status string) bool
}

// Feed orchestrates the extract-apply loop.
type Feed struct {
	extractor Extractor
	applier   Applier
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Feed with the given source and destination.
func New(e Extractor, a Applier, logger *slog.Logger, metrics *observability.Metrics) *Feed {
	return &Feed{
		extractor: e,
		applier:   a,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes the loop until the context is cancelled. Source errors back
// off exponentially; malformed or unknown updates are counted and skipped,
// never fatal.
func (f *Feed) Run(ctx context.Context) error {
	f.logger.Info("status feed started")
	f.metrics.FeedRunning.Set(1)
	defer f.metrics.FeedRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("status feed stopping", "reason", ctx.Err())
			return nil
		default:
		}

		update, err := f.extractor.Extract(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			f.logger.Error("extract status update failed", "error", err)
			f.metrics.StatusUpdateErrors.Inc()
			if !sleepWithContext(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			continue
		}
		backoff = 200 * time.Millisecond

		if !f.applier.UpdateStatus(update.StationID, update.Status) {
			f.logger.Warn("status update for unknown station, skipping",
				"station_id", update.StationID,
				"status", update.Status,
			)
			f.metrics.StatusUpdateErrors.Inc()
			continue
		}

		f.metrics.StatusUpdatesApplied.Inc()
		f.logger.Debug("status update applied", "station_id", update.StationID, "status", update.Status)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
