package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/voltatlas/station-locator/internal/adapter/http"
	kafkaadapter "github.com/voltatlas/station-locator/internal/adapter/kafka"
	"github.com/voltatlas/station-locator/internal/config"
	"github.com/voltatlas/station-locator/internal/domain"
	"github.com/voltatlas/station-locator/internal/feed"
	"github.com/voltatlas/station-locator/internal/geoip"
	"github.com/voltatlas/station-locator/internal/geojson"
	"github.com/voltatlas/station-locator/internal/observability"
	"github.com/voltatlas/station-locator/internal/session"
	"github.com/voltatlas/station-locator/internal/sse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the station dataset. A dataset that fails to load or parse is
	// fatal: the service has nothing to serve without it.
	stations, err := loadStations(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to load station dataset", "error", err)
		os.Exit(1)
	}
	logger.Info("station dataset loaded", "stations", len(stations))

	events := sse.NewManager(logger, metrics)

	sess := session.New(events, logger, metrics)
	sess.LoadStations(stations)

	// IP geolocation (feature-flagged via GEOIP_ENABLED).
	var locator session.Locator
	if cfg.GeoIPEnabled {
		client := geoip.NewClient(cfg.GeoIPBaseURL, cfg.GeoIPTimeout, logger)
		locator = geoip.NewCachedLocator(client, cfg.GeoIPCacheSize, metrics)
		logger.Info("ip geolocation enabled", "cache_size", cfg.GeoIPCacheSize, "timeout", cfg.GeoIPTimeout)
	} else {
		logger.Info("ip geolocation disabled")
	}

	// Live status feed (feature-flagged via KAFKA_ENABLED).
	var reader *kafkaadapter.Reader
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		f := feed.New(reader, sess, logger, metrics)
		go func() {
			if err := f.Run(ctx); err != nil {
				logger.Error("status feed error", "error", err)
			}
		}()
		logger.Info("status feed enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaStatusTopic)
	} else {
		logger.Info("status feed disabled")
	}

	eventsHandler := events.Handler(func() sse.Event {
		return sse.Event{Type: "visibility", Data: sess.Visibility()}
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, sess, locator, eventsHandler, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

func loadStations(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]domain.Station, error) {
	loader := geojson.NewLoader(cfg.DatasetTimeout, logger)
	if cfg.DatasetURL != "" {
		return loader.FromURL(ctx, cfg.DatasetURL)
	}
	return loader.FromFile(cfg.DatasetPath)
}
