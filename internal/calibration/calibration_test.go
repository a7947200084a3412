package calibration

import (
	"errors"
	"math"
	"testing"
)

func TestNormalizeConfidence(t *testing.T) {
	want := map[int]float64{1: 0, 2: 25, 3: 50, 4: 75, 5: 100}
	for c, w := range want {
		got, err := NormalizeConfidence(c)
		if err != nil {
			t.Fatalf("confidence %d: %v", c, err)
		}
		if got != w {
			t.Errorf("NormalizeConfidence(%d) = %v, want %v", c, got, w)
		}
	}
}

func TestNormalizeConfidence_OutOfRange(t *testing.T) {
	for _, c := range []int{0, 6, -1} {
		_, err := NormalizeConfidence(c)
		if !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("confidence %d: err = %v, want ErrInvalidRange", c, err)
		}
		var re *RangeError
		if !errors.As(err, &re) {
			t.Fatalf("confidence %d: err is not a *RangeError", c)
		}
		if re.Field != "confidence" {
			t.Errorf("Field = %q, want confidence", re.Field)
		}
	}
}

func TestValidateScore(t *testing.T) {
	for _, s := range []float64{0, 100} {
		if err := ValidateScore(s); err != nil {
			t.Errorf("ValidateScore(%v) = %v", s, err)
		}
	}
	for _, s := range []float64{-0.5, 100.1} {
		if err := ValidateScore(s); !errors.Is(err, ErrInvalidRange) {
			t.Errorf("ValidateScore(%v) = %v, want ErrInvalidRange", s, err)
		}
	}
}

func TestCategorize_Boundaries(t *testing.T) {
	tests := []struct {
		delta float64
		want  Category
	}{
		{15, CategoryCalibrated},
		{-15, CategoryCalibrated},
		{0, CategoryCalibrated},
		{16, CategoryOverconfident},
		{15.01, CategoryOverconfident},
		{-16, CategoryUnderconfident},
		{-15.01, CategoryUnderconfident},
	}
	for _, tt := range tests {
		if got := Categorize(tt.delta); got != tt.want {
			t.Errorf("Categorize(%v) = %s, want %s", tt.delta, got, tt.want)
		}
	}
}

func TestAnalyze(t *testing.T) {
	// confidence 4 → 75; 75 - 60 = 15 is still calibrated.
	rec, err := Analyze(4, 60)
	if err != nil {
		t.Fatal(err)
	}
	if rec.NormalizedConfidence != 75 || rec.Delta != 15 || rec.Category != CategoryCalibrated {
		t.Errorf("Analyze(4, 60) = %+v", rec)
	}

	rec, err = Analyze(4, 59)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Category != CategoryOverconfident {
		t.Errorf("Analyze(4, 59) = %+v", rec)
	}

	rec, err = Analyze(1, 16)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Delta != -16 || rec.Category != CategoryUnderconfident {
		t.Errorf("Analyze(1, 16) = %+v", rec)
	}

	if _, err := Analyze(3, 101); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("Analyze(3, 101) err = %v, want ErrInvalidRange", err)
	}
}

func TestMeanAbsoluteError(t *testing.T) {
	if _, ok := MeanAbsoluteError(nil); ok {
		t.Error("empty input should be absent")
	}
	mae, ok := MeanAbsoluteError([]Record{{Delta: 10}, {Delta: -20}, {Delta: 0}})
	if !ok || math.Abs(mae-10) > 1e-9 {
		t.Errorf("MAE = %v, %v; want 10", mae, ok)
	}
}
