// Command helmsmand is the control-core daemon: it ticks the filter
// block, skipper, collision avoider and helmsman state machine every
// 100ms, reading sensor data from and writing actuator commands to the
// line bus, and exposes Prometheus metrics and a telemetry websocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avalonsailing/helmsman/internal/bus"
	"github.com/avalonsailing/helmsman/internal/config"
	"github.com/avalonsailing/helmsman/internal/core"
	"github.com/avalonsailing/helmsman/internal/helmsman"
	"github.com/avalonsailing/helmsman/internal/normalcontrol"
	"github.com/avalonsailing/helmsman/internal/obslog"
	"github.com/avalonsailing/helmsman/internal/telemetry"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags.ConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "helmsmand: config:", err)
		os.Exit(2)
	}
	cfg = flags.Apply(cfg)

	logger := obslog.New(obslog.Options{Level: cfg.LogLevel, RotateFile: cfg.LogRotateFile})

	if err := writePIDFile(cfg.PIDFile); err != nil {
		logger.WithError(err).Warn("could not write pid file")
	}

	busClient, err := bus.Dial(cfg.BusSocketPath, "helmsmand")
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to the line bus")
	}
	defer busClient.Close()

	reg := prometheus.NewRegistry()
	metrics := core.NewMetrics(reg)

	telStreamer := telemetry.New(logger)
	telStop := make(chan struct{})
	go telStreamer.Run(telStop)
	defer close(telStop)

	normal := helmsman.NewNormalAdapter(normalcontrol.NewController(cfg.RudderKp, cfg.RudderKi, cfg.RudderKd, cfg.MaxRudderDeg*3.14159265358979/180))
	h := helmsman.New(
		logger,
		helmsman.NewTestController(logger),
		helmsman.NewInitialController(),
		normal,
		helmsman.NewDockingController(),
		helmsman.NewBrakeController(),
	)

	c := core.New(logger, busClient, metrics, telStreamer, h, core.Config{
		Period:              time.Duration(cfg.TickPeriodMS) * time.Millisecond,
		GammaSailDelayTicks: cfg.GammaSailDelayTicks,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws/telemetry", telStreamer.HandleWebSocket)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("metrics/telemetry server stopped unexpectedly")
		}
	}()

	logger.WithField("socket", cfg.BusSocketPath).Info("helmsmand starting")
	if err := c.Run(ctx); err != nil && err != context.Canceled {
		logger.WithError(err).Error("core stopped")
	}

	server.Close()
	logger.Info("helmsmand stopped")
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0644)
}
