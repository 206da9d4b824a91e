package sailcontrol

import (
	"math"
	"testing"
)

func TestBestGammaSailCloseHauled(t *testing.T) {
	g := BestGammaSail(10 * math.Pi / 180)
	if g != closeHauledSailRad {
		t.Errorf("expected close-hauled sail angle, got %v", g)
	}
}

func TestBestGammaSailEasesDownwind(t *testing.T) {
	beam := BestGammaSail(90 * math.Pi / 180)
	broad := BestGammaSail(150 * math.Pi / 180)
	if broad <= beam {
		t.Errorf("sail should ease further downwind: beam=%v broad=%v", beam, broad)
	}
}

func TestBestStabilizedGammaSailIsRounded(t *testing.T) {
	g := BestStabilizedGammaSail(100*math.Pi/180, 5)
	deadband := 1 * math.Pi / 180
	ratio := g / deadband
	if math.Abs(ratio-math.Round(ratio)) > 1e-9 {
		t.Errorf("expected stabilized sail angle on the deadband grid, got %v", g)
	}
}
