// Package polardiagram implements the boat-speed polar model: expected
// boat speed as a function of the angle to the true wind and the true
// wind speed, including the tack/jibe dead zones and the wind/boat speed
// compression that keeps the polynomial speed model sane at high wind
// speeds.
package polardiagram

import "math"

// TackZoneDeg is the half-width, in degrees, of the dead zone the boat
// cannot sail inside of when heading upwind.
const TackZoneDeg = 50.0

// JibeZoneDeg is the angle to the true wind, in degrees, beyond which the
// boat is in the downwind dead zone; the zone spans 180 - 165 = 15
// degrees either side of dead downwind.
const JibeZoneDeg = 165.0

// polynomial coefficients for the normalized (relative) boat speed as a
// function of angle-to-wind, in radians.
const (
	k0 = -0.9844053104
	k1 = 3.3123159119
	k2 = -2.3354225154
	k3 = 0.7061562329
	k4 = -0.0797837181
)

// relativeSpeed evaluates the quartic polar polynomial at the given
// angle-to-wind (radians, already folded into [0, pi]).
func relativeSpeed(angleRad float64) float64 {
	a := angleRad
	a2 := a * a
	a3 := a2 * a
	a4 := a3 * a
	v := k0 + k1*a + k2*a2 + k3*a3 + k4*a4
	if v >= 1 {
		panic("polardiagram: relative speed model produced >=1, angle out of the model's valid domain")
	}
	return v
}

// compressWindSpeed folds down unrealistically high wind speeds before
// they reach the polynomial model, whose fit only holds over a bounded
// range; beyond that range the model is asymptotically extended by a
// square-root compression rather than extrapolated linearly.
func compressWindSpeed(windSpeedMS float64) float64 {
	if windSpeedMS > 5 {
		return 4 + math.Sqrt(windSpeedMS-4)
	}
	return windSpeedMS
}

// compressBoatSpeed applies the matching compression on the resulting
// boat speed, clipped hard at 2.6 (the highest speed the model is
// trusted for).
func compressBoatSpeed(speedMS float64) float64 {
	if speedMS > 2.3 {
		speedMS = 1.3 + math.Sqrt(speedMS-1.3)
	}
	if speedMS > 2.6 {
		speedMS = 2.6
	}
	return speedMS
}

// Speed returns the expected boat speed (m/s) at the given angle to the
// true wind (degrees, any range) and true wind speed (m/s), outside of
// the tack/jibe dead zones.
func Speed(angleToWindDeg, windSpeedMS float64) float64 {
	angleRad := math.Abs(foldTo180(angleToWindDeg)) * math.Pi / 180
	effectiveWind := compressWindSpeed(windSpeedMS)
	speed := relativeSpeed(angleRad) * effectiveWind
	return compressBoatSpeed(speed)
}

// ReadPolarDiagram is the full boat-speed lookup: it reports whether
// angleToWindDeg falls in the tack or jibe dead zone and, in either case,
// projects the dead-zone-boundary speed onto the requested (unsailable)
// angle the way the original beating-to-windward approximation does.
func ReadPolarDiagram(angleToWindDeg, windSpeedMS float64) (deadZoneTack, deadZoneJibe bool, speedMS float64) {
	angle := math.Abs(foldTo180(angleToWindDeg))
	deadZoneTack = angle < TackZoneDeg
	deadZoneJibe = angle > JibeZoneDeg

	if deadZoneTack {
		boundary := Speed(TackZoneDeg, windSpeedMS) * math.Cos(TackZoneDeg*math.Pi/180)
		speedMS = boundary / math.Cos(angle*math.Pi/180)
		return deadZoneTack, deadZoneJibe, speedMS
	}
	if deadZoneJibe {
		boundary := Speed(JibeZoneDeg, windSpeedMS) * math.Cos(JibeZoneDeg*math.Pi/180)
		speedMS = boundary / math.Cos(angle*math.Pi/180)
		return deadZoneTack, deadZoneJibe, speedMS
	}
	speedMS = Speed(angle, windSpeedMS)
	return deadZoneTack, deadZoneJibe, speedMS
}

// foldTo180 folds an arbitrary degree value into (-180, 180].
func foldTo180(deg float64) float64 {
	for deg <= -180 {
		deg += 360
	}
	for deg > 180 {
		deg -= 360
	}
	return deg
}
