// Package vskipper implements AIS-based collision avoidance: given the
// skipper's desired bearing and a list of nearby AIS contacts, it finds
// the nearest safe bearing, searching a shrinking time window if the
// desired bearing itself is unsafe.
package vskipper

import (
	"math"
	"sort"

	"github.com/avalonsailing/helmsman/internal/geo"
	"github.com/avalonsailing/helmsman/internal/polardiagram"
)

const (
	safeDistanceM    = 200.0
	maxTimeWindowS   = 15 * 60.0
	minTimeWindowS   = 60.0
	corridorWidthDeg = 5.01

	// NoWaySentinel is returned when no bearing in the full 360-degree
	// sweep is safe even at the shortest time window searched.
	NoWaySentinel = 999.0
)

// AvalonState is the boat's own state as seen by the collision avoider.
type AvalonState struct {
	TimestampMS int64
	Position    geo.LatLon
	TargetDeg   float64
	WindFromDeg float64 // direction the wind is blowing FROM
	WindSpeedMS float64
}

// AisInfo is a single AIS contact.
type AisInfo struct {
	TimestampMS int64
	Position    geo.LatLon
	BearingDeg  float64
	SpeedMS     float64
	ID          string
}

type localAis struct {
	bearingDeg float64
	distanceM  float64
	us         float64
	them       float64
	speedMS    float64
}

// computeLocalAis extrapolates each contact's position forward to "now"
// (us.TimestampMS) and converts it into a bearing/distance from our
// position, so every contact is compared on a common time base even
// though AIS reports arrive asynchronously.
func computeLocalAis(us AvalonState, contacts []AisInfo) []localAis {
	out := make([]localAis, 0, len(contacts))
	for _, c := range contacts {
		dtS := float64(us.TimestampMS-c.TimestampMS) / 1000.0
		extrapolated := geo.SphericalMove(c.Position, c.BearingDeg*math.Pi/180, c.SpeedMS*dtS)
		bearingRad, distM := geo.SphericalShortestPath(us.Position, extrapolated)
		out = append(out, localAis{
			bearingDeg: bearingRad * 180 / math.Pi,
			distanceM:  distM,
			us:         bearingRad,
			them:       c.BearingDeg * math.Pi / 180,
			speedMS:    c.SpeedMS,
		})
	}
	return out
}

func expectedVelocity(windFromDeg, windSpeedMS, bearingDeg float64) float64 {
	if windSpeedMS < 1e-9 {
		return 0
	}
	_, _, speed := polardiagram.ReadPolarDiagram(windFromDeg-bearingDeg, windSpeedMS)
	return speed
}

func distanceDanger(distM float64) float64 {
	if distM > safeDistanceM {
		return 0
	}
	return 1 - distM/safeDistanceM
}

func windFractionP(frac float64) float64 {
	v := 1 - math.Abs(frac-1)
	if v < 0 {
		return 0
	}
	return v
}

type candidate struct {
	bearingDeg       float64
	expectedVelocity float64
	bearingDiffDeg   float64
	danger           float64
	corridorDanger   float64
}

func foldTo180(deg float64) float64 {
	for deg <= -180 {
		deg += 360
	}
	for deg > 180 {
		deg -= 360
	}
	return deg
}

// skipperImpl runs one full 360-candidate corridor-danger search for the
// given time window, returning the safest candidate and whether it is
// actually safe (corridor danger ~ 0).
func skipperImpl(us AvalonState, ais []localAis, timeWindowS float64) (best candidate, safe bool) {
	candidates := make([]candidate, 360)
	for i := 0; i < 360; i++ {
		bearingDeg := us.TargetDeg + float64(i)
		ev := expectedVelocity(us.WindFromDeg, us.WindSpeedMS, bearingDeg)
		candidates[i] = candidate{
			bearingDeg:       bearingDeg,
			expectedVelocity: ev,
			bearingDiffDeg:   math.Abs(foldTo180(bearingDeg - us.TargetDeg)),
		}
	}

	for i := range candidates {
		var danger float64
		for windFraction := 0.0; windFraction <= 2.01; windFraction += 0.2 {
			speedMS := windFraction * candidates[i].expectedVelocity
			maxDanger := 0.0
			for _, contact := range ais {
				d := geo.MinDistance(
					candidates[i].bearingDeg*math.Pi/180, speedMS,
					contact.them, contact.speedMS,
					contact.us, contact.distanceM,
					timeWindowS,
				)
				dd := windFractionP(windFraction) * distanceDanger(d)
				if dd > maxDanger {
					maxDanger = dd
				}
			}
			danger += maxDanger
		}
		candidates[i].danger = danger
	}

	for i := range candidates {
		var corridor float64
		for j := range candidates {
			if math.Abs(foldTo180(candidates[i].bearingDeg-candidates[j].bearingDeg)) < corridorWidthDeg {
				corridor += candidates[j].danger
			}
		}
		candidates[i].corridorDanger = corridor
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].corridorDanger != candidates[j].corridorDanger {
			return candidates[i].corridorDanger < candidates[j].corridorDanger
		}
		return candidates[i].bearingDiffDeg < candidates[j].bearingDiffDeg
	})

	best = candidates[0]
	safe = best.corridorDanger < 1e-9
	return best, safe
}

// Run searches a shrinking time window (halving from maxTimeWindowS down
// to minTimeWindowS) for a bearing that is safe against every AIS
// contact, returning as soon as one is found. If no time window yields a
// safe bearing, it returns NoWaySentinel.
func Run(us AvalonState, contacts []AisInfo) float64 {
	local := computeLocalAis(us, contacts)

	for window := maxTimeWindowS; window >= minTimeWindowS; window /= 2 {
		best, safe := skipperImpl(us, local, window)
		if safe {
			return best.bearingDeg
		}
	}
	return NoWaySentinel
}
