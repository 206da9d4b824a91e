// Package sailcontrol computes the sail sheeting angle (gamma sail) that
// best matches the current apparent wind, and the small correction
// applied once the boat has settled into a steady heading.
package sailcontrol

import "math"

// trim table: apparent wind angle (radians, folded to [0, pi]) maps to a
// sail sheeting angle via a simple two-segment linear law — close hauled
// up to the tack zone boundary, then easing out linearly to fully eased
// at dead downwind. This mirrors the production boat's physical
// trim curve without needing the full polar model.
const (
	closeHauledSailRad = 15 * math.Pi / 180
	tackZoneRad         = 50 * math.Pi / 180
	fullyEasedSailRad  = 90 * math.Pi / 180
)

// BestGammaSail returns the sail angle (radians, relative to the boat's
// centerline) that best matches the given apparent wind angle (radians,
// folded into (-pi, pi]). The magnitude comes from the trim table; the
// sign follows the sign of the apparent wind angle, so the two tacks get
// mirrored sail angles.
func BestGammaSail(alphaAppRad float64) float64 {
	folded := foldToPi(alphaAppRad)
	a := math.Abs(folded)
	g := closeHauledSailRad
	if a > tackZoneRad {
		frac := (a - tackZoneRad) / (math.Pi - tackZoneRad)
		g = closeHauledSailRad + frac*(fullyEasedSailRad-closeHauledSailRad)
	}
	if folded < 0 {
		return -g
	}
	return g
}

// BestStabilizedGammaSail is BestGammaSail with a small rounding
// deadband, so the sail stops hunting once the boat has settled onto a
// steady course (called from NormalController's steady-state branch,
// not while a maneuver plan is running).
func BestStabilizedGammaSail(alphaAppRad, magAppMS float64) float64 {
	g := BestGammaSail(alphaAppRad)
	const deadbandRad = 1 * math.Pi / 180
	rounded := math.Round(g/deadbandRad) * deadbandRad
	return rounded
}

func foldToPi(rad float64) float64 {
	for rad <= -math.Pi {
		rad += 2 * math.Pi
	}
	for rad > math.Pi {
		rad -= 2 * math.Pi
	}
	return rad
}
