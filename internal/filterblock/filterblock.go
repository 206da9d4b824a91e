// Package filterblock turns a raw ControllerInput into a stabilized
// FilteredMeasurements, running every signal through the appropriate
// scalar filter and mixing redundant compass sources with a
// consensus-gated weighted vector sum.
package filterblock

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/avalonsailing/helmsman/internal/angle"
	"github.com/avalonsailing/helmsman/internal/controllerio"
	"github.com/avalonsailing/helmsman/internal/filter"
)

// kWindSensorOffsetRad corrects for the mounting inaccuracies of mast,
// masttop unit and wind sensor; small and boat-specific.
const kWindSensorOffsetRad = -0.546288

// Tick period the sample-count filter windows below are sized against.
const tickPeriodS = 0.1

// CompassMixer combines up to three heading sources (radians, each with
// its own weight in [0, 1]) into a single consensus heading. A source
// with a NaN reading is treated as absent (zero weight) rather than
// poisoning the sum. If the combined weight is too small, or the
// individual readings disagree too much (consensus below 0.5), the
// previous output is held rather than publishing a fresh, unreliable
// value.
type CompassMixer struct {
	lastValid    float64
	haveLastValid bool
}

// Mix combines three (angle, weight) pairs into a consensus heading.
func (m *CompassMixer) Mix(a1, w1, a2, w2, a3, w3 float64) (headingRad float64, valid bool) {
	a1, w1 = guardNaN(a1, w1)
	a2, w2 = guardNaN(a2, w2)
	a3, w3 = guardNaN(a3, w3)

	weights := mat.NewVecDense(3, []float64{w1, w2, w3})
	cosines := mat.NewVecDense(3, []float64{math.Cos(a1), math.Cos(a2), math.Cos(a3)})
	sines := mat.NewVecDense(3, []float64{math.Sin(a1), math.Sin(a2), math.Sin(a3)})

	x := mat.Dot(weights, cosines)
	y := mat.Dot(weights, sines)
	sumWeights := w1 + w2 + w3

	if sumWeights < 0.5 {
		return m.hold(), false
	}
	consensus := math.Hypot(x, y) / sumWeights
	if consensus < 0.5 {
		return m.hold(), false
	}

	heading := math.Atan2(y, x)
	m.lastValid = heading
	m.haveLastValid = true
	return heading, true
}

func (m *CompassMixer) hold() float64 {
	if m.haveLastValid {
		return m.lastValid
	}
	return 0
}

func guardNaN(a, weight float64) (float64, float64) {
	if math.IsNaN(a) {
		return 0, 0
	}
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	return a, weight
}

// mixLinear combines up to three (value, weight) pairs into a plain
// weighted mean — unlike CompassMixer.Mix it does not treat the values
// as wrapping angles, since latitude/longitude degrees behave as plain
// Cartesian numbers at the scale a single fix covers. Gated only on the
// total weight, since there is no wraparound to build an angular
// consensus out of.
func mixLinear(a1, w1, a2, w2, a3, w3 float64) (value float64, valid bool) {
	a1, w1 = guardNaN(a1, w1)
	a2, w2 = guardNaN(a2, w2)
	a3, w3 = guardNaN(a3, w3)
	sumWeights := w1 + w2 + w3
	if sumWeights < 0.5 {
		return 0, false
	}
	return (a1*w1 + a2*w2 + a3*w3) / sumWeights, true
}

// Block is the full filter chain: one filter per measured quantity, plus
// the compass mixer, plus apparent/true wind decomposition.
type Block struct {
	headingMixer CompassMixer

	headingFilter *filter.WrapAround // wraps a Median5 over the mixed heading

	yawMedian filter.Scalar // Median5
	yawAvg    filter.Scalar // SlidingAverage(8s)

	speedFilter filter.Scalar // SlidingAverage(60s)

	appAngleFilter *filter.WrapAround // wraps SlidingAverage(4s)
	appMagFilter   filter.Scalar      // SlidingAverage(4s)

	trueWindFilter *filter.Polar // SlidingAverage(100s) x2
	aoaFilter      *filter.Polar // SlidingAverage(30s) x2

	gammaSailDelay []float64 // ring buffer compensating for sail-angle sensor lag
	gammaSailIdx   int
}

// NewBlock builds a filter block. gammaSailDelayTicks is how many ticks
// the sail-angle measurement lags the rest of the sensor suite (the
// production boat's sail angle potentiometer has a slower update rate
// than the IMU).
func NewBlock(gammaSailDelayTicks int) *Block {
	if gammaSailDelayTicks < 1 {
		gammaSailDelayTicks = 1
	}
	samples := func(seconds float64) int {
		return int(seconds/tickPeriodS + 0.5)
	}
	newSlidingPair := func(seconds float64) (filter.Scalar, filter.Scalar) {
		return filter.NewSlidingAverage(samples(seconds)), filter.NewSlidingAverage(samples(seconds))
	}
	trueX, trueY := newSlidingPair(100)
	aoaX, aoaY := newSlidingPair(30)
	return &Block{
		headingFilter:  filter.NewWrapAround(&filter.Median5{}),
		yawMedian:      &filter.Median5{},
		yawAvg:         filter.NewSlidingAverage(samples(8)),
		speedFilter:    filter.NewSlidingAverage(samples(60)),
		appAngleFilter: filter.NewWrapAround(filter.NewSlidingAverage(samples(4))),
		appMagFilter:   filter.NewSlidingAverage(samples(4)),
		trueWindFilter: filter.NewPolar(trueX, trueY),
		aoaFilter:      filter.NewPolar(aoaX, aoaY),
		gammaSailDelay: make([]float64, gammaSailDelayTicks),
	}
}

// validLatLon reports whether a position reading looks usable: no NaNs
// and not the all-zero "never fixed" sentinel.
func validLatLon(lat, lon float64) bool {
	return !math.IsNaN(lat) && !math.IsNaN(lon) && !(lat == 0 && lon == 0)
}

// censorSpeed clips a fused boat speed to the maximum speed this class
// of boat can plausibly make.
func censorSpeed(speedMS float64) float64 {
	const clip = 2.8
	if speedMS < -clip {
		return -clip
	}
	if speedMS > clip {
		return clip
	}
	return speedMS
}

// assignNotNaN copies src into *dst unless src is NaN, in which case the
// previous value of *dst is left untouched — NaNs must never be allowed
// to poison a filter's internal state.
func assignNotNaN(dst *float64, src float64) {
	if !math.IsNaN(src) {
		*dst = src
	}
}

// Run consumes one tick's ControllerInput and produces FilteredMeasurements.
func (b *Block) Run(in controllerio.ControllerInput) controllerio.FilteredMeasurements {
	var out controllerio.FilteredMeasurements

	imuFault := math.IsNaN(in.Imu.PhiZBoatRad) || math.IsNaN(in.Imu.VelocityXMS)
	imuGPSFault := !validLatLon(in.Imu.LatitudeDeg, in.Imu.LongitudeDeg)
	gpsFault := !in.Gps.Valid || !validLatLon(in.Gps.LatitudeDeg, in.Gps.LongitudeDeg)

	// Heading from three independent sources: the IMU's Kalman-filtered
	// attitude, the IMU's own onboard magnetometer, and an independent
	// compass sensor. The IMU's magnetometer is wobbly at standstill, so
	// its weight is kept low; the IMU attitude serves mostly as a hot
	// backup to the independent compass.
	imuWeight := 0.15
	if imuFault {
		imuWeight = 0
	}
	magWeight := 0.0
	if in.Imu.MagValid {
		magWeight = 0.075
	}
	const sensorWeight = 1.0 // no fault flag on the independent compass sensor (hardware never reports one)
	heading, _ := b.headingMixer.Mix(in.Imu.PhiZBoatRad, imuWeight, in.Imu.MagPhiZRad, magWeight, in.Compass.PhiZRad, sensorWeight)
	out.PhiZBoatRad = b.headingFilter.Filter(heading)

	// Position: a plain weighted mean of the IMU's own fused fix and the
	// independent GPS, not overwritten if neither source has ever reported
	// a non-zero fix.
	imuLat, imuLon := 0.0, 0.0
	if !imuGPSFault {
		assignNotNaN(&imuLat, in.Imu.LatitudeDeg)
		assignNotNaN(&imuLon, in.Imu.LongitudeDeg)
	}
	gpsLat, gpsLon, gpsCog, gpsSpeed := 0.0, 0.0, 0.0, 0.0
	if !gpsFault {
		assignNotNaN(&gpsLat, in.Gps.LatitudeDeg)
		assignNotNaN(&gpsLon, in.Gps.LongitudeDeg)
		assignNotNaN(&gpsCog, in.Gps.CogRad)
		assignNotNaN(&gpsSpeed, in.Gps.SpeedMS)
	}
	imuPosWeight := 0.51
	if imuGPSFault {
		imuPosWeight = 0
	}
	gpsPosWeight := 1.0
	if gpsFault {
		gpsPosWeight = 0
	}
	if imuLat != 0 || gpsLat != 0 {
		if lat, ok := mixLinear(imuLat, imuPosWeight, 0, 0, gpsLat, gpsPosWeight); ok {
			out.LatitudeDeg = lat
		}
	}
	if imuLon != 0 || gpsLon != 0 {
		if lon, ok := mixLinear(imuLon, imuPosWeight, 0, 0, gpsLon, gpsPosWeight); ok {
			out.LongitudeDeg = lon
		}
	}

	// Yaw rate: spike-reject then smooth.
	omZ := in.Imu.OmegaBoatRadS
	if math.IsNaN(omZ) {
		omZ = 0
	}
	out.OmegaBoatRadS = b.yawAvg.Filter(b.yawMedian.Filter(omZ))

	if !imuFault {
		assignNotNaN(&out.PhiXRad, in.Imu.PhiXRad)
		assignNotNaN(&out.PhiYRad, in.Imu.PhiYRad)
	}
	assignNotNaN(&out.TemperatureC, in.Imu.TemperatureC)

	// Boat speed: weighted mean of IMU body-x velocity and GPS
	// speed-over-ground, sign-flipped when the GPS course is pointing
	// within 45 degrees of astern of our heading (we are actually drifting
	// backward), smoothed over a full minute, then clipped to what this
	// hull can plausibly make.
	if !gpsFault && math.Abs(angle.DeltaOldNewRad(gpsCog, out.PhiZBoatRad)) > 3*math.Pi/4 {
		gpsCog = angle.SymmetricRad(gpsCog - math.Pi)
		gpsSpeed = -gpsSpeed
	}
	weightImu := 0.5
	if imuFault {
		weightImu = 0
	}
	weightGps := 0.5
	if gpsFault {
		weightGps = 0
	}
	if weightImu == 0 && weightGps == 0 {
		// Both speed sources are unavailable: optimistically assume we are
		// making some speed forward so downstream rate limiting has a sane
		// denominator, without marking the tick valid on a fabricated number.
		out.MagBoatMS = 1
	} else {
		sum := weightImu*in.Imu.VelocityXMS + weightGps*gpsSpeed
		out.MagBoatMS = censorSpeed(b.speedFilter.Filter(sum / (weightImu + weightGps)))
	}

	// Angle of attack: the wind sensor reading corrected for mounting
	// offset, filtered independently of (and more aggressively than) the
	// apparent wind used for sail control.
	validWindPath := in.Wind.Valid && in.Drives.SailHomed
	if in.Wind.Valid {
		aoaAlpha, aoaMag := b.aoaFilter.Filter(in.Wind.AlphaAppRad+kWindSensorOffsetRad, in.Wind.MagAppMS)
		out.AngleAOARad = aoaAlpha
		out.MagAOAMS = aoaMag
	}

	if validWindPath {
		angleApp := angle.SymmetricRad(in.Wind.AlphaAppRad)
		magApp := in.Wind.MagAppMS
		if magApp == 0 {
			angleApp = 0
		}

		var trueAlpha, trueMag float64
		if !imuFault {
			trueAlpha, trueMag = apparentToTrue(angleApp, magApp, out.PhiZBoatRad, out.MagBoatMS)
		} else {
			// No reliable heading/speed to de-rotate the apparent wind by,
			// so approximate the boat as stationary.
			trueAlpha, trueMag = angle.NormalizeRad(angleApp+out.PhiZBoatRad), magApp
		}
		out.AlphaTrueRad, out.MagTrueMS = b.trueWindFilter.Filter(trueAlpha, trueMag)

		out.AlphaAppRad = angle.SymmetricRad(b.appAngleFilter.Filter(angleApp))
		out.MagAppMS = b.appMagFilter.Filter(magApp)
		out.ValidAppWind = b.appAngleFilter.ValidOutput() && b.appMagFilter.ValidOutput()
	} else {
		out.AlphaTrueRad = math.NaN()
		out.MagTrueMS = math.NaN()
		out.AlphaAppRad = math.NaN()
		out.MagAppMS = in.Wind.MagAppMS
		out.ValidAppWind = false
	}

	out.Valid = out.ValidAppWind && b.yawAvg.ValidOutput() && b.yawMedian.ValidOutput() && b.headingFilter.ValidOutput() &&
		!(weightImu == 0 && weightGps == 0)
	out.ValidTrueWind = b.trueWindFilter.ValidOutput() && !imuFault && out.ValidAppWind

	b.gammaSailDelay[b.gammaSailIdx] = in.Drives.GammaSailRad
	b.gammaSailIdx = (b.gammaSailIdx + 1) % len(b.gammaSailDelay)

	return out
}

// DelayedGammaSailRad returns the sail angle measurement from
// gammaSailDelayTicks ago, compensating for the sail potentiometer's slow
// update rate relative to the rest of the sensor suite.
func (b *Block) DelayedGammaSailRad() float64 {
	return b.gammaSailDelay[b.gammaSailIdx]
}

// apparentToTrue inverts the apparent-wind composition (true = apparent +
// boat velocity) to recover true wind angle/speed from the apparent wind
// and the boat's own heading/speed. The boat-relative apparent angle is
// rotated by the heading into the global frame before the boat velocity
// is added.
func apparentToTrue(alphaAppRad, magAppMS, headingRad, boatSpeedMS float64) (alphaTrueRad, magTrueMS float64) {
	ax := magAppMS * math.Cos(alphaAppRad+headingRad)
	ay := magAppMS * math.Sin(alphaAppRad+headingRad)
	bx := boatSpeedMS * math.Cos(headingRad)
	by := boatSpeedMS * math.Sin(headingRad)
	tx := ax + bx
	ty := ay + by
	return math.Atan2(ty, tx), math.Hypot(tx, ty)
}
