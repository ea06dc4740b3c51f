package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/HerbHall/netglance/internal/backend"
	"github.com/HerbHall/netglance/internal/config"
	"github.com/HerbHall/netglance/internal/event"
	"github.com/HerbHall/netglance/internal/hostenv"
	"github.com/HerbHall/netglance/internal/metrics"
	"github.com/HerbHall/netglance/internal/monitor"
	"github.com/HerbHall/netglance/internal/scan"
	"github.com/HerbHall/netglance/internal/server"
	"github.com/HerbHall/netglance/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	dev := flag.Bool("dev", false, "use development logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Short())
		return
	}

	// Initialize logger
	logger, err := newLogger(*dev)
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("netglance starting", zap.String("version", version.Version))

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	m := metrics.New()
	bus := event.NewBus(logger)

	// Probe the host runtime once; without it every command runs against
	// the in-process demo backend.
	probe := hostenv.New()
	var commander backend.Commander
	var liveClient *backend.Client
	if probe.Available() {
		liveClient = backend.NewClient(probe, bus, logger)
		commander = liveClient
		logger.Info("host runtime available", zap.String("addr", probe.Addr()))
	} else {
		commander = backend.NewDemo(bus, logger)
		cfg.SetDemoMode(true)
		logger.Info("host runtime unavailable, running in demo mode")
	}

	scanSession := scan.New(commander, cfg, m, logger)
	monitorSession := monitor.New(commander, bus, m, logger,
		monitor.WithMaxEvents(cfg.MaxEvents()),
		monitor.WithOnScanComplete(func(hostsFound int, durationMs int64) {
			bus.PublishAsync(context.Background(), event.Event{
				Topic:   "dashboard.refresh",
				Source:  "monitor",
				Payload: hostsFound,
			})
		}),
	)
	defer monitorSession.Close()

	// Seed the aggregate view so the first status read is not empty.
	monitorSession.RefreshStatus(context.Background())

	// Create and start HTTP server
	addr := cfg.ServerAddr()
	srv := server.New(addr, scanSession, monitorSession, m, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	logger.Info("netglance ready", zap.String("addr", addr), zap.Bool("demo_mode", cfg.DemoMode()))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	scanSession.StopScan()
	if liveClient != nil {
		liveClient.Close()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	logger.Info("netglance stopped")
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
