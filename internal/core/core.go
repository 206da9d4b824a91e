// Package core wires the filter block, wind-strength classifier,
// skipper, collision avoider, and helmsman state machine into the
// single periodic tick the rest of the control software is driven by:
// one cooperative iteration every 100ms, sourced from the bus mailbox
// and written back to it, with no operation inside the tick allowed to
// block or suspend.
package core

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/avalonsailing/helmsman/internal/bus"
	"github.com/avalonsailing/helmsman/internal/controllerio"
	"github.com/avalonsailing/helmsman/internal/filterblock"
	"github.com/avalonsailing/helmsman/internal/geo"
	"github.com/avalonsailing/helmsman/internal/helmsman"
	"github.com/avalonsailing/helmsman/internal/skipper"
	"github.com/avalonsailing/helmsman/internal/telemetry"
	"github.com/avalonsailing/helmsman/internal/vskipper"
	"github.com/avalonsailing/helmsman/internal/windstrength"
)

// Metrics are the Prometheus instruments the core exposes.
type Metrics struct {
	TickDuration prometheus.Histogram
	TickOverrun  prometheus.Counter
	TickPanic    prometheus.Counter
}

// NewMetrics registers and returns a fresh Metrics set on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "helmsman_tick_duration_seconds",
			Help:    "Wall-clock duration of one control-loop tick.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		TickOverrun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helmsman_tick_overrun_total",
			Help: "Ticks whose processing took longer than the tick period.",
		}),
		TickPanic: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helmsman_tick_panic_total",
			Help: "Ticks recovered from a panic.",
		}),
	}
	reg.MustRegister(m.TickDuration, m.TickOverrun, m.TickPanic)
	return m
}

// Core owns every stateful collaborator and runs the periodic tick.
type Core struct {
	logger *logrus.Logger
	bus    *bus.Client
	metrics *Metrics
	telemetry *telemetry.Streamer

	period time.Duration

	block    *filterblock.Block
	wind     windstrength.Range
	skipper  skipper.State
	helmsman *helmsman.Helmsman

	tick int64
}

// Config collects the few pieces of tuning the Core itself needs beyond
// its collaborators (the rest is configured when each collaborator is
// built by the caller).
type Config struct {
	Period            time.Duration
	GammaSailDelayTicks int
}

// New builds a Core. The caller is responsible for constructing and
// wiring the helmsman state machine (it needs several mutually-aware
// collaborators) and passing it in fully formed.
func New(logger *logrus.Logger, busClient *bus.Client, metrics *Metrics, tel *telemetry.Streamer, h *helmsman.Helmsman, cfg Config) *Core {
	period := cfg.Period
	if period <= 0 {
		period = 100 * time.Millisecond
	}
	return &Core{
		logger:    logger,
		bus:       busClient,
		metrics:   metrics,
		telemetry: tel,
		period:    period,
		block:     filterblock.NewBlock(cfg.GammaSailDelayTicks),
		skipper:   skipper.State{},
		helmsman:  h,
	}
}

// Run ticks the core every Config.Period until ctx is cancelled.
func (c *Core) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			c.runTick(now)
		}
	}
}

// runTick executes exactly one tick, isolating any panic inside a
// collaborator so a single bad tick degrades rather than kills the
// daemon (per the error-handling design's "control core never exits").
func (c *Core) runTick(now time.Time) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.metrics.TickPanic.Inc()
			c.logger.WithField("recovered", r).Error("tick panicked, skipping")
		}
		elapsed := time.Since(start)
		c.metrics.TickDuration.Observe(elapsed.Seconds())
		if elapsed > c.period {
			c.metrics.TickOverrun.Inc()
		}
	}()

	c.tick++
	in := c.readInput(now)
	filtered := c.block.Run(in)

	c.wind = windstrength.Classify(c.wind, filtered.MagTrueMS)

	pos := geo.FromDeg(filtered.LatitudeDeg, filtered.LongitudeDeg)
	alphaStarDeg := c.skipper.Run(pos, filtered.AlphaTrueRad*180/math.Pi, filtered.MagTrueMS)

	contacts := c.bus.AisContacts()
	aisInfo := make([]vskipper.AisInfo, len(contacts))
	for i, ct := range contacts {
		aisInfo[i] = vskipper.AisInfo{
			TimestampMS: ct.TimestampMS,
			Position:    geo.FromDeg(ct.LatDeg, ct.LngDeg),
			BearingDeg:  ct.CogDeg,
			SpeedMS:     ct.SpeedMS,
			ID:          fmtMMSI(ct.MMSI),
		}
	}

	safeDeg := vskipper.Run(vskipper.AvalonState{
		TimestampMS: now.UnixMilli(),
		Position:    pos,
		TargetDeg:   alphaStarDeg,
		WindFromDeg: filtered.AlphaTrueRad * 180 / math.Pi,
		WindSpeedMS: filtered.MagTrueMS,
	}, aisInfo)
	if safeDeg != vskipper.NoWaySentinel {
		alphaStarDeg = safeDeg
	}

	in.AlphaStarRad = alphaStarDeg * math.Pi / 180
	out := c.helmsman.Tick(in, filtered)

	c.writeOutput(now, out)
	c.publishTelemetry(now, filtered, out)
}

func (c *Core) readInput(now time.Time) controllerio.ControllerInput {
	var in controllerio.ControllerInput
	in.Timestamp = now

	if line, ok := c.bus.Latest("imu"); ok {
		if imu, err := bus.ParseImu(line); err == nil {
			in.Imu.PhiZBoatRad = imu.YawDeg * math.Pi / 180
			in.Imu.PhiXRad = imu.RollDeg * math.Pi / 180
			in.Imu.PhiYRad = imu.PitchDeg * math.Pi / 180
			in.Imu.OmegaBoatRadS = imu.GyrZRadS
			in.Imu.VelocityXMS = imu.VelXMS
			in.Imu.LatitudeDeg = imu.LatDeg
			in.Imu.LongitudeDeg = imu.LngDeg
			in.Imu.MagPhiZRad = imu.MagYawDeg * math.Pi / 180
			in.Imu.MagValid = imu.MagValid
			in.Imu.TemperatureC = imu.TempC
			in.Imu.Valid = !math.IsNaN(imu.LatDeg) && !math.IsNaN(imu.YawDeg)
		}
	}
	if line, ok := c.bus.Latest("gps"); ok {
		if g, err := bus.ParseGPS(line); err == nil {
			in.Gps.LatitudeDeg = g.LatDeg
			in.Gps.LongitudeDeg = g.LngDeg
			in.Gps.CogRad = g.CogDeg * math.Pi / 180
			in.Gps.SpeedMS = g.SpeedMS
			in.Gps.Valid = g.Valid
		}
	}
	if line, ok := c.bus.Latest("compass"); ok {
		if cp, err := bus.ParseCompass(line); err == nil {
			in.Compass.PhiZRad = cp.YawDeg * math.Pi / 180
			in.Compass.Valid = cp.Valid
		}
	}
	if line, ok := c.bus.Latest("wind"); ok {
		if w, err := bus.ParseWind(line); err == nil {
			in.Wind.AlphaAppRad = w.AngleDeg * math.Pi / 180
			in.Wind.MagAppMS = w.SpeedMS
			in.Wind.Valid = w.Valid
		}
	}
	if line, ok := c.bus.Latest("ruddersts"); ok {
		if r, err := bus.ParseRudderStatus(line); err == nil {
			in.Drives.GammaRudderRad = r.RudderRDeg * math.Pi / 180
			in.Drives.GammaRudderLRad = r.RudderLDeg * math.Pi / 180
			in.Drives.GammaSailRad = r.SailDeg * math.Pi / 180
			in.Drives.SailHomed = r.SailHomed
			in.Drives.RudderHomed = r.RudderHomed
			in.Drives.RudderLHomed = r.RudderLHomed
		}
	}
	return in
}

func fmtMMSI(mmsi int64) string {
	return strconv.FormatInt(mmsi, 10)
}

func (c *Core) writeOutput(now time.Time, out controllerio.ControllerOutput) {
	c.bus.Publish(bus.EncodeRudderControl(bus.RudderControl{
		TimestampMS: now.UnixMilli(),
		RudderLDeg:  out.DrivesReference.GammaRudderLRad * 180 / math.Pi,
		RudderRDeg:  out.DrivesReference.GammaRudderRad * 180 / math.Pi,
		SailDeg:     out.DrivesReference.GammaSailRad * 180 / math.Pi,
	}))
}

func (c *Core) publishTelemetry(now time.Time, filtered controllerio.FilteredMeasurements, out controllerio.ControllerOutput) {
	if c.telemetry == nil {
		return
	}
	c.telemetry.Publish(telemetry.Sample{
		TimestampMS:    now.UnixMilli(),
		LatDeg:         filtered.LatitudeDeg,
		LngDeg:         filtered.LongitudeDeg,
		HeadingDeg:     filtered.PhiZBoatRad * 180 / math.Pi,
		SpeedMS:        filtered.MagBoatMS,
		AlphaAppDeg:    filtered.AlphaAppRad * 180 / math.Pi,
		MagAppMS:       filtered.MagAppMS,
		AlphaTrueDeg:   filtered.AlphaTrueRad * 180 / math.Pi,
		MagTrueMS:      filtered.MagTrueMS,
		GammaSailDeg:   out.DrivesReference.GammaSailRad * 180 / math.Pi,
		GammaRudderDeg: out.DrivesReference.GammaRudderRad * 180 / math.Pi,
		HelmsmanState:  c.helmsman.CurrentState(),
		Tacks:          out.Status.Tacks,
		Jibes:          out.Status.Jibes,
		Valid:          filtered.Valid,
	})
}
