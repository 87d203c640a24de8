package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fogbelt/eventmap/internal/adapter/httpadapter"
	kafkaadapter "github.com/fogbelt/eventmap/internal/adapter/kafka"
	"github.com/fogbelt/eventmap/internal/adapter/mapbox"
	"github.com/fogbelt/eventmap/internal/config"
	"github.com/fogbelt/eventmap/internal/domain"
	"github.com/fogbelt/eventmap/internal/feed"
	"github.com/fogbelt/eventmap/internal/mapengine"
	"github.com/fogbelt/eventmap/internal/observability"
	"github.com/fogbelt/eventmap/internal/pipeline"
	"github.com/fogbelt/eventmap/internal/render"
)

func main() {
	_ = godotenv.Load() // best-effort; env vars win over .env

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loc, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		logger.Error("invalid display timezone", "tz", cfg.DisplayTimezone, "error", err)
		os.Exit(1)
	}

	tags, err := feed.LoadTagTable(cfg.TagTablePath)
	if err != nil {
		logger.Error("failed to load tag table", "path", cfg.TagTablePath, "error", err)
		os.Exit(1)
	}

	// Geocoding fallback for address-only records (feature-flagged via
	// MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	engine := mapengine.NewHeadless(
		mapengine.LngLat{Lng: cfg.MapCenterLng, Lat: cfg.MapCenterLat},
		cfg.MapZoom,
		cfg.MapStyle,
	)
	driver := render.NewDriver(engine, loc, cfg.ParksFillShown, logger, metrics)

	client := feed.NewClient(cfg.FeedBaseURL, cfg.FeedTimeout, cfg.FeedRetries)
	sources := []feed.Source{
		feed.NewGeneralSource(client, tags, geocoder, logger, metrics),
		feed.NewCleanupSource(client, geocoder, logger, metrics),
		feed.NewIlluminateSource(client, geocoder, logger, metrics),
		feed.NewVendorSource(client, geocoder, logger, metrics),
		feed.NewParkSource(client, logger, metrics),
	}

	var publisher pipeline.MarkerPublisher
	var kafkaPub *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPub = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPub
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(sources, driver, publisher, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Kick off the fetch→normalize→render pass.
	p.Init(ctx)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	driver.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPub != nil {
		if err := kafkaPub.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
