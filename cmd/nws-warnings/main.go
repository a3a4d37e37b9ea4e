package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/nws-warnings/internal/adapter/homeassistant"
	httpadapter "github.com/couchcryptid/nws-warnings/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/nws-warnings/internal/adapter/kafka"
	"github.com/couchcryptid/nws-warnings/internal/adapter/mapbox"
	"github.com/couchcryptid/nws-warnings/internal/adapter/nws"
	"github.com/couchcryptid/nws-warnings/internal/config"
	"github.com/couchcryptid/nws-warnings/internal/domain"
	"github.com/couchcryptid/nws-warnings/internal/observability"
	"github.com/couchcryptid/nws-warnings/internal/sensor"
	"github.com/couchcryptid/nws-warnings/internal/store"
	"github.com/couchcryptid/nws-warnings/internal/zone"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	sensors, err := config.LoadSensors(cfg.SensorsFile)
	if err != nil {
		logger.Error("invalid sensors file", "path", cfg.SensorsFile, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	nwsClient := nws.NewClient(nws.Config{
		BaseURL:         cfg.NWSBaseURL,
		UserAgent:       cfg.NWSUserAgent,
		Timeout:         cfg.NWSTimeout,
		RetryMax:        cfg.NWSRetryMax,
		PointsCacheSize: cfg.PointsCacheSize,
	}, metrics, logger)

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	var (
		entities   zone.EntitySource
		publishers []sensor.Publisher
	)
	if cfg.HassEnabled() {
		hass := homeassistant.NewClient(cfg.HassURL, cfg.HassToken, cfg.NWSTimeout, logger)
		entities = hass
		publishers = append(publishers, hass)
		logger.Info("home assistant enabled", "url", cfg.HassURL)
	}

	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publishers = append(publishers, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	st, err := store.Open(ctx, cfg)
	if err != nil {
		logger.Error("failed to open state store", "store", cfg.StateStore, "error", err)
		os.Exit(1)
	}

	r := sensor.New(sensor.Options{
		Sensors:    sensors.Sensors,
		Zones:      zone.NewResolver(sensors.Zones, entities, geocoder, nwsClient, logger),
		Source:     nwsClient,
		Store:      st,
		Publishers: publishers,
		Interval:   cfg.PollInterval,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, r, r, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start sensor refresher.
	refresherDone := make(chan struct{})
	go func() {
		defer close(refresherDone)
		if err := r.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	select {
	case <-refresherDone:
	case <-shutdownCtx.Done():
		logger.Warn("refresher did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("state store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
