// Package main implements the entry point for the config status daemon. It
// wires the provider registry, the status service, the translation bundles
// and the NATS event sink, and exposes Prometheus metrics.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatihboy/smarthome/config"
	"github.com/fatihboy/smarthome/configstatus/eventsink"
	"github.com/fatihboy/smarthome/configstatus/registry"
	"github.com/fatihboy/smarthome/configstatus/service"
	"github.com/fatihboy/smarthome/configstatus/translation"
	"github.com/fatihboy/smarthome/metric"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "configstatusd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()
	if cliCfg.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		return nil
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := setupLogger(cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	if cliCfg.Validate {
		logger.Info("Configuration is valid", "path", cliCfg.ConfigPath)
		return nil
	}

	metricsRegistry := metric.NewMetricsRegistry()

	reg := registry.New()
	svc := service.New(reg,
		service.WithLogger(logger),
		service.WithDefaultLocale(cfg.DefaultLocale()),
		service.WithWorkers(cfg.Notify.Workers),
		service.WithQueueSize(cfg.Notify.QueueSize),
		service.WithMetricsRegistry(metricsRegistry),
	)

	if cfg.Translations.Dir != "" {
		resolver := translation.NewBundleResolver(cfg.DefaultLocale())
		if err := resolver.LoadDirectory(cfg.Translations.Dir); err != nil {
			return fmt.Errorf("loading translation bundles: %w", err)
		}
		svc.SetTranslationResolver(resolver)
		logger.Info("Translation bundles loaded", "dir", cfg.Translations.Dir)
	} else {
		logger.Warn("No translation bundle directory configured, keyed messages will be dropped")
	}

	var sink *eventsink.NATSSink
	if cfg.NATS.Enabled {
		sink, err = eventsink.NewNATSSink(cfg.NATS.URL,
			eventsink.WithName(cfg.NATS.Name),
			eventsink.WithLogger(logger),
			eventsink.WithMaxReconnects(cfg.NATS.MaxReconnects),
			eventsink.WithReconnectWait(cfg.NATS.ReconnectWait()),
			eventsink.WithDrainTimeout(cfg.NATS.DrainTimeout()),
		)
		if err != nil {
			return fmt.Errorf("creating event sink: %w", err)
		}
		if err := sink.Connect(); err != nil {
			return fmt.Errorf("connecting event sink: %w", err)
		}
		defer sink.Close()
		svc.SetEventSink(sink)
		logger.Info("Event sink connected", "url", cfg.NATS.URL)
	} else {
		logger.Info("Event sink disabled, status events will not be published")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting status service: %w", err)
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsRegistry.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.ListenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("Metrics endpoint listening", "addr", cfg.Metrics.ListenAddr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	logger.Info("Config status daemon started", "version", Version)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("Shutting down", "signal", sig.String())

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}

	if err := svc.Stop(cliCfg.ShutdownTimeout); err != nil {
		logger.Warn("Status service did not stop cleanly", "error", err)
	}

	return nil
}
