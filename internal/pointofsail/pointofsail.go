// Package pointofsail turns a desired true-wind-relative heading into the
// nearest sailable heading, classifying which of the six points of sail
// the boat is steering towards, and applies the anti-wind-gust
// correction that nudges the boat off a head-to-wind stall.
package pointofsail

import (
	"math"

	"github.com/avalonsailing/helmsman/internal/polardiagram"
)

// Sector identifies which of the six points of sail a heading falls into
// relative to the true wind.
type Sector int

const (
	TackPort Sector = iota
	TackStar
	ReachStar
	JibeStar
	JibePort
	ReachPort
)

func (s Sector) String() string {
	switch s {
	case TackPort:
		return "tack-port"
	case TackStar:
		return "tack-star"
	case ReachStar:
		return "reach-star"
	case JibeStar:
		return "jibe-star"
	case JibePort:
		return "jibe-port"
	case ReachPort:
		return "reach-port"
	default:
		return "unknown"
	}
}

const tackZoneRad = polardiagram.TackZoneDeg * math.Pi / 180
const jibeZoneRad = polardiagram.JibeZoneDeg * math.Pi / 180

// BestSailableHeading snaps alphaStarRad (the desired global heading,
// radians, symmetric) onto the nearest edge of a dead zone around
// alphaTrueRad if it falls inside one, biased by a hysteresis term of 10%
// (tack zone) or 30% (jibe zone) of the difference between the PREVIOUS
// output and alphaStarRad, so the boat doesn't flip-flop between the two
// edges of a dead zone on sensor noise.
func BestSailableHeading(alphaStarRad, previousOutputRad, alphaTrueRad float64) (headingRad float64, sector Sector) {
	limit1 := symmetricRad(alphaTrueRad - tackZoneRad)
	limit2 := symmetricRad(alphaTrueRad + tackZoneRad)
	limit3 := symmetricRad(alphaTrueRad - jibeZoneRad)
	limit4 := symmetricRad(alphaTrueRad + jibeZoneRad)

	hysteresisTack := deltaOldNewRad(previousOutputRad, alphaStarRad) * 0.1
	hysteresisJibe := deltaOldNewRad(previousOutputRad, alphaStarRad) * 0.3

	relWind := deltaOldNewRad(alphaTrueRad, alphaStarRad)

	switch {
	case relWind >= 0 && relWind < tackZoneRad:
		chosen, choseB := nearerRad(alphaStarRad-hysteresisTack, limit1, limit2)
		if !choseB {
			return chosen, TackPort
		}
		return chosen, TackStar
	case relWind < 0 && relWind > -tackZoneRad:
		chosen, choseB := nearerRad(alphaStarRad-hysteresisTack, limit1, limit2)
		if !choseB {
			return chosen, TackPort
		}
		return chosen, TackStar
	case relWind >= 0 && relWind > jibeZoneRad:
		chosen, choseB := nearerRad(alphaStarRad-hysteresisJibe, limit3, limit4)
		if !choseB {
			return chosen, JibeStar
		}
		return chosen, JibePort
	case relWind < 0 && relWind < -jibeZoneRad:
		chosen, choseB := nearerRad(alphaStarRad-hysteresisJibe, limit3, limit4)
		if !choseB {
			return chosen, JibeStar
		}
		return chosen, JibePort
	case relWind >= 0:
		return alphaStarRad, ReachStar
	default:
		return alphaStarRad, ReachPort
	}
}

// AntiWindGust nudges a sail-relative correction away from zero when the
// apparent wind angle creeps toward head-to-wind on a tack/reach, and
// decays that correction back toward zero at a fixed rate once the gust
// passes — an asymmetric filter that reacts instantly to worsening
// conditions but relaxes slowly, so the boat doesn't hunt.
type AntiWindGust struct {
	buffer1, buffer2 float64
}

const (
	decayPerTickRad = 0.2 * math.Pi / 180 * 0.1 // ~0.2 deg/s at a 100ms tick
	appOffsetRad    = 12 * math.Pi / 180
)

// Correct returns the correction (radians) to apply to the commanded
// sailable heading given the current sector, apparent wind angle
// (radians, relative to the boat) and apparent wind magnitude (m/s).
func (g *AntiWindGust) Correct(sector Sector, alphaAppRad, magAppMS float64) float64 {
	if magAppMS <= 0.5 {
		return 0
	}

	pointIntoWind := symmetricRad(tackZoneRad + math.Pi) // TackZoneRad().Opposite()
	delta1 := deltaOldNewRad(alphaAppRad, pointIntoWind-appOffsetRad)
	delta2 := deltaOldNewRad(alphaAppRad, -(pointIntoWind - appOffsetRad))

	switch sector {
	case TackPort, ReachPort:
		g.buffer2 = 0
		return -positiveFilterOffset(delta1, decayPerTickRad, &g.buffer1)
	case TackStar, ReachStar:
		g.buffer1 = 0
		return positiveFilterOffset(-delta2, decayPerTickRad, &g.buffer2)
	default: // JibeStar, JibePort
		g.buffer1 = 0
		g.buffer2 = 0
		return 0
	}
}

// positiveFilterOffset clips in to at most 45 degrees, snaps instantly to
// a larger (worse) value, and otherwise decays buf toward in at the
// given per-tick rate.
func positiveFilterOffset(in, decay float64, buf *float64) float64 {
	const maxRad = 45 * math.Pi / 180
	if in > maxRad {
		in = maxRad
	}
	if in < 0 {
		in = 0
	}
	if in > *buf {
		*buf = in
	} else if *buf > 0 {
		*buf -= decay
		if *buf < 0 {
			*buf = 0
		}
	}
	return *buf
}

func symmetricRad(rad float64) float64 {
	const twoPi = 2 * math.Pi
	for rad <= -math.Pi {
		rad += twoPi
	}
	for rad > math.Pi {
		rad -= twoPi
	}
	return rad
}

func deltaOldNewRad(oldRad, newRad float64) float64 {
	return symmetricRad(newRad - oldRad)
}

func nearerRad(target, a, b float64) (chosen float64, choseB bool) {
	da := math.Abs(deltaOldNewRad(target, a))
	db := math.Abs(deltaOldNewRad(target, b))
	if db < da {
		return b, true
	}
	return a, false
}
