package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Feed fetching.
	FeedBaseURL string
	FeedTimeout time.Duration
	FeedRetries int

	// Map presentation.
	MapStyle        string
	MapCenterLat    float64
	MapCenterLng    float64
	MapZoom         float64
	DisplayTimezone string
	ParksFillShown  bool

	// Tag prefix table (declarative icon/title rewrites for the general feed).
	TagTablePath string

	// Mapbox forward geocoding for address-only records.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int

	// Optional Kafka sink for normalized marker records.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	feedTimeout, err := parseDuration("FEED_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	centerLat, err := parseFloat("MAP_CENTER_LAT", 37.775)
	if err != nil {
		return nil, err
	}
	centerLng, err := parseFloat("MAP_CENTER_LNG", -122.446747)
	if err != nil {
		return nil, err
	}
	zoom, err := parseFloat("MAP_ZOOM", 12.5)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		FeedBaseURL: envOrDefault("FEED_BASE_URL", "https://api.sfspots.org"),
		FeedTimeout: feedTimeout,
		FeedRetries: parseIntOrDefault("FEED_RETRIES", 2),

		MapStyle:        envOrDefault("MAP_STYLE", "mapbox://styles/mapbox/streets-v12"),
		MapCenterLat:    centerLat,
		MapCenterLng:    centerLng,
		MapZoom:         zoom,
		DisplayTimezone: envOrDefault("DISPLAY_TZ", "America/Los_Angeles"),
		ParksFillShown:  os.Getenv("PARKS_FILL_SHOWN") == "true",

		TagTablePath: os.Getenv("TAG_TABLE_PATH"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseIntOrDefault("MAPBOX_CACHE_SIZE", 1000),

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "normalized-markers"),
	}

	if cfg.FeedBaseURL == "" {
		return nil, errors.New("FEED_BASE_URL is required")
	}
	if cfg.MapboxEnabled && cfg.MapboxToken == "" {
		return nil, errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
	}
	if cfg.MapCenterLat < -90 || cfg.MapCenterLat > 90 {
		return nil, fmt.Errorf("MAP_CENTER_LAT %v out of range", cfg.MapCenterLat)
	}
	if cfg.MapCenterLng < -180 || cfg.MapCenterLng > 180 {
		return nil, fmt.Errorf("MAP_CENTER_LNG %v out of range", cfg.MapCenterLng)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key, def string) (time.Duration, error) {
	s := envOrDefault(key, def)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func parseFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return v, nil
}

func parseIntOrDefault(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func splitBrokers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
