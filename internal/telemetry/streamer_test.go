package telemetry

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestPublishDoesNotBlockOnFullBuffer(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := New(logger)

	for i := 0; i < 1000; i++ {
		s.Publish(Sample{TimestampMS: int64(i)})
	}
	clients, sent := s.Stats()
	if clients != 0 || sent != 0 {
		t.Errorf("expected no subscribers or sends without a running fan-out, got clients=%d sent=%d", clients, sent)
	}
}

func TestRunStopsOnCloseSignal(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := New(logger)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		s.Run(stop)
		close(done)
	}()
	close(stop)
	<-done
}
