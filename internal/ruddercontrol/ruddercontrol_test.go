package ruddercontrol

import (
	"math"
	"testing"
)

func TestControlSignConvention(t *testing.T) {
	c := NewController(1, 0, 0, 1)
	rudder := c.Control(0.1, 0, 0, 0, 2)
	if rudder <= 0 {
		t.Errorf("expected positive rudder correction to turn toward positive heading error, got %v", rudder)
	}
}

func TestControlClampsToLimit(t *testing.T) {
	c := NewController(100, 0, 0, 0.5)
	rudder := c.Control(math.Pi, 0, 0, 0, 2)
	if math.Abs(rudder) > 0.5+1e-9 {
		t.Errorf("rudder exceeded hard limit: %v", rudder)
	}
}

func TestResetClearsIntegral(t *testing.T) {
	c := NewController(0, 1, 0, 10)
	c.Control(0.5, 0, 0, 0, 2)
	c.Reset()
	rudder := c.Control(0, 0, 0, 0, 2)
	if rudder != 0 {
		t.Errorf("expected zero rudder after reset with zero error, got %v", rudder)
	}
}

func TestControlScalesWithSpeed(t *testing.T) {
	c1 := NewController(1, 0, 0, 10)
	slow := c1.Control(0.2, 0, 0, 0, 0.5)
	c2 := NewController(1, 0, 0, 10)
	fast := c2.Control(0.2, 0, 0, 0, 5)
	if math.Abs(slow) <= math.Abs(fast) {
		t.Errorf("expected larger rudder command at low speed: slow=%v fast=%v", slow, fast)
	}
}
