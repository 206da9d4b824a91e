// Package ruddercontrol implements the heading-hold rudder law: given a
// reference heading and turn rate, and the boat's actual heading, turn
// rate and speed, compute the rudder deflection that drives heading
// error and rate error to zero.
package ruddercontrol

import "math"

// Controller is a PI-style heading-hold law with a speed-dependent gain:
// the slower the boat moves, the less effective the rudder is, so the
// commanded deflection is scaled up (inversely with speed) to compensate,
// within hard limits.
type Controller struct {
	kp, ki, kd   float64
	maxRudderRad float64
	integral     float64
}

// NewController builds a rudder controller with the given proportional,
// integral and derivative gains and a hard deflection limit (radians).
func NewController(kp, ki, kd, maxRudderRad float64) *Controller {
	return &Controller{kp: kp, ki: ki, kd: kd, maxRudderRad: maxRudderRad}
}

// Reset clears the integrator, called whenever the helmsman enters a new
// controller state (so old accumulated error doesn't leak across a
// maneuver boundary).
func (c *Controller) Reset() {
	c.integral = 0
}

// Control computes the rudder deflection (radians) needed to drive the
// boat toward phiStarRad at omegaStarRad/s, given its actual heading
// phiRad, turn rate omegaRad/s and speed (m/s, always clamped positive by
// the caller before calling in). The gain is divided by speed so slower
// boat speeds get proportionally larger rudder commands, clamped to the
// configured hard limit.
func (c *Controller) Control(phiStarRad, omegaStarRad, phiRad, omegaRad, speedMS float64) float64 {
	headingErr := symmetricRad(phiStarRad - phiRad)
	rateErr := omegaStarRad - omegaRad

	c.integral += headingErr
	const integralClamp = 5.0
	if c.integral > integralClamp {
		c.integral = integralClamp
	} else if c.integral < -integralClamp {
		c.integral = -integralClamp
	}

	if speedMS < 0.1 {
		speedMS = 0.1
	}
	gainScale := 1.0 / speedMS

	rudder := gainScale * (c.kp*headingErr + c.ki*c.integral + c.kd*rateErr)
	if rudder > c.maxRudderRad {
		rudder = c.maxRudderRad
	} else if rudder < -c.maxRudderRad {
		rudder = -c.maxRudderRad
	}
	return rudder
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
