// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset source: exactly one of URL or Path.
	DatasetURL     string
	DatasetPath    string
	DatasetTimeout time.Duration

	// IP geolocation configuration.
	GeoIPEnabled   bool
	GeoIPBaseURL   string
	GeoIPTimeout   time.Duration
	GeoIPCacheSize int

	// Live station-status feed configuration.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaStatusTopic string
	KafkaGroupID     string
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is honored for local
// development; a missing one is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	datasetTimeout, err := parsePositiveDuration("DATASET_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	geoipTimeout, err := parsePositiveDuration("GEOIP_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatasetURL:     os.Getenv("DATASET_URL"),
		DatasetPath:    os.Getenv("DATASET_PATH"),
		DatasetTimeout: datasetTimeout,

		GeoIPEnabled:   os.Getenv("GEOIP_ENABLED") == "true",
		GeoIPBaseURL:   envOrDefault("GEOIP_BASE_URL", "http://ip-api.com/json"),
		GeoIPTimeout:   geoipTimeout,
		GeoIPCacheSize: parseGeoIPCacheSize(),

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaStatusTopic: envOrDefault("KAFKA_STATUS_TOPIC", "station-status-updates"),
		KafkaGroupID:     envOrDefault("KAFKA_GROUP_ID", "station-locator"),
	}

	if cfg.DatasetURL == "" && cfg.DatasetPath == "" {
		return nil, errors.New("one of DATASET_URL or DATASET_PATH is required")
	}
	if cfg.DatasetURL != "" && cfg.DatasetPath != "" {
		return nil, errors.New("DATASET_URL and DATASET_PATH are mutually exclusive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func parseGeoIPCacheSize() int {
	if s := os.Getenv("GEOIP_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
