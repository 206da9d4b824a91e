// Package helmsman implements the top-level control state machine: a
// self-test on startup, an initial wind-finding state, the tactical
// Normal sailing state, and the Docking/Brake states used to come
// alongside or hold position.
package helmsman

import (
	"github.com/sirupsen/logrus"

	"github.com/avalonsailing/helmsman/internal/controllerio"
)

// State is the contract every helmsman state implements: Entry runs once
// on transition in, Run runs every tick, Done reports whether the state
// considers itself finished (so the Helmsman can decide the next
// transition), Exit runs once on transition out.
type State interface {
	Name() string
	Entry(filtered controllerio.FilteredMeasurements)
	Run(in controllerio.ControllerInput, filtered controllerio.FilteredMeasurements) controllerio.ControllerOutput
	Done() bool
	Exit()
}

// Helmsman owns the current state and drives transitions between them.
type Helmsman struct {
	logger  *logrus.Logger
	current State
	states  map[string]State

	test    *TestController
	initial *InitialController
	normal  NormalState
	docking *DockingController
	brake   *BrakeController

	dockRequested  bool
	brakeRequested bool

	status controllerio.Status // cumulative counters across all ticks
}

// NormalState is the subset of the Normal-sailing behavior the top-level
// machine needs: a thin interface the Helmsman drives, implemented by
// normalAdapter around a normalcontrol.Controller.
type NormalState interface {
	State
	GiveUpReached() bool
}

// New builds a Helmsman wired with the given states, starting in Test.
func New(logger *logrus.Logger, test *TestController, initial *InitialController, normal NormalState, docking *DockingController, brake *BrakeController) *Helmsman {
	h := &Helmsman{
		logger:  logger,
		test:    test,
		initial: initial,
		normal:  normal,
		docking: docking,
		brake:   brake,
	}
	h.states = map[string]State{
		test.Name():    test,
		initial.Name(): initial,
		normal.Name():  normal,
		docking.Name(): docking,
		brake.Name():   brake,
	}
	h.current = test
	return h
}

// RequestDocking arranges for the next tick run in Normal to hand over
// to Docking, unless Normal gives up on that tick (then it goes to
// Initial and the request stays pending). Cleared when the handover to
// Docking happens.
func (h *Helmsman) RequestDocking() { h.dockRequested = true }

// RequestBrake arranges for the next tick run in Normal to hand over to
// Brake, unless Normal gives up on that tick (then it goes to Initial
// and the request stays pending). Cleared when the handover to Brake
// happens. Takes priority over a pending docking request.
func (h *Helmsman) RequestBrake() { h.brakeRequested = true }

// Tick runs one control-loop iteration: advances the current state,
// checks whether it is done, and transitions if so.
func (h *Helmsman) Tick(in controllerio.ControllerInput, filtered controllerio.FilteredMeasurements) controllerio.ControllerOutput {
	out := h.current.Run(in, filtered)
	h.status.Tacks += out.Status.Tacks
	h.status.Jibes += out.Status.Jibes
	out.Status = h.status

	if h.normal == h.current {
		if h.normal.GiveUpReached() {
			h.status.GiveUps++
			out.Status.GiveUps = h.status.GiveUps
			h.transition(h.initial, filtered)
			return out
		}
		if h.brakeRequested {
			h.brakeRequested = false
			h.transition(h.brake, filtered)
			return out
		}
		if h.dockRequested {
			h.dockRequested = false
			h.transition(h.docking, filtered)
			return out
		}
		return out
	}

	if h.current.Done() {
		next := h.next(filtered)
		h.transition(next, filtered)
	}
	return out
}

func (h *Helmsman) next(filtered controllerio.FilteredMeasurements) State {
	switch h.current {
	case h.test:
		if h.test.Succeeded() {
			return h.initial
		}
		return h.test // retries itself after its own cooldown
	case h.initial:
		return h.normal
	case h.docking:
		return h.initial
	case h.brake:
		return h.initial
	default:
		return h.initial
	}
}

func (h *Helmsman) transition(next State, filtered controllerio.FilteredMeasurements) {
	if next == h.current {
		return
	}
	h.logger.WithFields(logrus.Fields{
		"from": h.current.Name(),
		"to":   next.Name(),
	}).Info("helmsman state transition")
	h.current.Exit()
	h.current = next
	h.current.Entry(filtered)
}

// CurrentState returns the name of the currently active state.
func (h *Helmsman) CurrentState() string {
	return h.current.Name()
}
