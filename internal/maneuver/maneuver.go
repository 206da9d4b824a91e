// Package maneuver classifies heading changes into tack/jibe/course
// changes and computes the sail-angle delta a maneuver plan should drive
// toward.
package maneuver

import (
	"math"

	"github.com/avalonsailing/helmsman/internal/sailcontrol"
)

// Type identifies what kind of maneuver a heading change represents.
type Type int

const (
	Change Type = iota
	Tack
	Jibe
)

func (t Type) String() string {
	switch t {
	case Tack:
		return "tack"
	case Jibe:
		return "jibe"
	default:
		return "change"
	}
}

// FindManeuverType classifies the transition from oldApparentRad to
// newApparentRad: a sign change while the angle stays inside the tack
// zone is a tack, a sign change while it stays outside the jibe zone is
// a jibe, anything else is a plain course change. This works identically
// whether the two angles are apparent-wind angles or
// (alphaTrue - alphaStar) values — it is pure sign-and-magnitude logic.
func FindManeuverType(oldRad, newRad float64) Type {
	const tackZoneRad = 50 * math.Pi / 180
	const jibeZoneRad = 165 * math.Pi / 180

	oldSign := sign(oldRad)
	newSign := sign(newRad)
	if oldSign == newSign {
		return Change
	}

	if math.Abs(oldRad) < tackZoneRad && math.Abs(newRad) < tackZoneRad {
		return Tack
	}
	if math.Abs(oldRad) > jibeZoneRad && math.Abs(newRad) > jibeZoneRad {
		return Jibe
	}
	return Change
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}

// NextGammaSailWithOldGammaSail is the production sail-delta estimator.
// oldHeadingRad/newHeadingRad are the previous and new restricted
// headings (global frame); the maneuver is classified from how each
// sits relative to the true wind (crossing the bow-through-wind
// direction is a tack, crossing the stern-through-wind direction is a
// jibe). For a tack or jibe the new sail angle is the negation of the
// actual previous commanded angle, not a fresh BestGammaSail estimate —
// the boat is assumed to still be carrying way from before the
// maneuver, so the old gamma is the only trustworthy anchor. Only a
// plain course change re-derives the sail angle from the new apparent
// wind, which is approximated from true wind and new heading assuming
// boat speed is roughly a quarter of wind speed (we avoid depending on
// the unreliable boat-speed measurement here), accurate to within about
// 10 degrees — good enough to seed a maneuver plan.
func NextGammaSailWithOldGammaSail(oldGammaSailRad, oldHeadingRad, newHeadingRad, alphaTrueRad, windSpeedMS float64) (newGammaSailRad, deltaGammaSailRad float64, mtype Type) {
	oldRelRad := symmetricRad(oldHeadingRad - alphaTrueRad)
	newRelRad := symmetricRad(newHeadingRad - alphaTrueRad)
	mtype = FindManeuverType(oldRelRad, newRelRad)

	switch mtype {
	case Tack:
		newGammaSailRad = -oldGammaSailRad
		deltaGammaSailRad = newGammaSailRad - oldGammaSailRad
	case Jibe:
		newGammaSailRad = -oldGammaSailRad
		deltaGammaSailRad = newGammaSailRad - oldGammaSailRad - 2*math.Pi*sign64(oldGammaSailRad)
	default:
		approxBoatSpeed := 0.25 * windSpeedMS
		newApparent := apparentAngle(alphaTrueRad, windSpeedMS, newHeadingRad, approxBoatSpeed)
		newGammaSailRad = sailcontrol.BestGammaSail(newApparent)
		deltaGammaSailRad = newGammaSailRad - oldGammaSailRad
	}
	return newGammaSailRad, deltaGammaSailRad, mtype
}

func symmetricRad(rad float64) float64 {
	for rad <= -math.Pi {
		rad += 2 * math.Pi
	}
	for rad > math.Pi {
		rad -= 2 * math.Pi
	}
	return rad
}

func apparentAngle(alphaTrueRad, windSpeedMS, headingRad, boatSpeedMS float64) float64 {
	// Apparent wind angle on the boat, from a simple vector composition
	// of true wind and the (approximated) boat velocity.
	wx := windSpeedMS * math.Cos(alphaTrueRad)
	wy := windSpeedMS * math.Sin(alphaTrueRad)
	bx := boatSpeedMS * math.Cos(headingRad)
	by := boatSpeedMS * math.Sin(headingRad)
	return math.Atan2(wy-by, wx-bx)
}

func sign64(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// NewGammaSail is an alternative sail-delta computation driven by boat
// speed: it takes the given boat speeds as known and approximates each
// wind speed as four times the boat speed, then derives old and new sail
// angles from BestGammaSail. No other code or test in this repository
// calls it.
func NewGammaSail(oldAlphaTrueRad, oldBoatSpeedMS, oldHeadingRad, newAlphaTrueRad, newBoatSpeedMS, newHeadingRad float64) (newGammaSailRad, deltaGammaSailRad float64, mtype Type) {
	oldApparent := apparentAngle(oldAlphaTrueRad, oldBoatSpeedMS/0.25, oldHeadingRad, oldBoatSpeedMS)
	newApparent := apparentAngle(newAlphaTrueRad, newBoatSpeedMS/0.25, newHeadingRad, newBoatSpeedMS)

	mtype = FindManeuverType(oldApparent, newApparent)
	oldGamma := sailcontrol.BestGammaSail(oldApparent)
	newGammaSailRad = sailcontrol.BestGammaSail(newApparent)
	delta := newGammaSailRad - oldGamma
	if mtype == Jibe {
		delta -= 2 * math.Pi * sign64(delta)
	}
	return newGammaSailRad, delta, mtype
}
