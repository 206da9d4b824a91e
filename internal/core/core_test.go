package core

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/avalonsailing/helmsman/internal/bus"
	"github.com/avalonsailing/helmsman/internal/helmsman"
	"github.com/avalonsailing/helmsman/internal/normalcontrol"
)

func TestRunTickDoesNotPanic(t *testing.T) {
	dir := t.TempDir()
	sockPath := dir + "/bus.sock"
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		io.Copy(io.Discard, conn)
	}()

	busClient, err := bus.Dial(sockPath, "")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer busClient.Close()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)

	normal := helmsman.NewNormalAdapter(normalcontrol.NewController(2.0, 0.05, 0.5, 0.6))
	h := helmsman.New(logger, helmsman.NewTestController(logger), helmsman.NewInitialController(), normal, helmsman.NewDockingController(), helmsman.NewBrakeController())

	c := New(logger, busClient, metrics, nil, h, Config{Period: 10 * time.Millisecond, GammaSailDelayTicks: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = c.Run(ctx)
}
