package difficulty

import (
	"strings"
	"testing"
)

func TestAdapt_Bands(t *testing.T) {
	tests := []struct {
		name    string
		current float64
		score   float64
		want    float64
		delta   float64
		band    Band
	}{
		{"excellent at boundary", 65, 85, 80, 15, BandExcellent},
		{"excellent", 50, 99, 65, 15, BandExcellent},
		{"just below excellent", 50, 84.99, 50, 0, BandProficient},
		{"proficient lower bound", 50, 60, 50, 0, BandProficient},
		{"struggling", 50, 59, 40, -10, BandStruggling},
		{"struggling lower bound", 50, 40, 40, -10, BandStruggling},
		{"failing", 50, 39, 30, -20, BandFailing},
		{"failing zero", 50, 0, 30, -20, BandFailing},
		{"clamped high", 95, 90, 100, 5, BandExcellent},
		{"clamped low", 10, 10, 0, -10, BandFailing},
		{"already at max", 100, 100, 100, 0, BandExcellent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Adapt(tt.current, tt.score)
			if got.NewDifficulty != tt.want {
				t.Errorf("NewDifficulty = %v, want %v", got.NewDifficulty, tt.want)
			}
			if got.Delta != tt.delta {
				t.Errorf("Delta = %v, want %v", got.Delta, tt.delta)
			}
			if got.Band != tt.band {
				t.Errorf("Band = %s, want %s", got.Band, tt.band)
			}
			if got.Reason == "" {
				t.Error("Reason is empty")
			}
		})
	}
}

func TestAdapt_ExcellentReason(t *testing.T) {
	got := Adapt(65, 85)
	if got.NewDifficulty != 80 {
		t.Errorf("NewDifficulty = %v, want 80", got.NewDifficulty)
	}
	if !strings.Contains(strings.ToLower(got.Reason), "excellent") {
		t.Errorf("Reason = %q, want it to mention excellent", got.Reason)
	}
}

func TestAdapt_Deterministic(t *testing.T) {
	for score := 0.0; score <= 100; score += 7 {
		if a, b := Adapt(42, score), Adapt(42, score); a != b {
			t.Errorf("score %v: %+v != %+v", score, a, b)
		}
	}
}

func TestAdapt_AlwaysInRange(t *testing.T) {
	for _, current := range []float64{-30, 0, 5, 50, 95, 100, 140} {
		for score := 0.0; score <= 100; score += 5 {
			got := Adapt(current, score)
			if got.NewDifficulty < MinDifficulty || got.NewDifficulty > MaxDifficulty {
				t.Errorf("Adapt(%v, %v) = %v, outside [%v, %v]", current, score, got.NewDifficulty, MinDifficulty, MaxDifficulty)
			}
		}
	}
}
