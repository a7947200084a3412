package calibration

import (
	"errors"
	"math"
	"testing"
)

func TestByTopic(t *testing.T) {
	samples := []Sample{
		{Topic: "fluids", Confidence: 5, Score: 60},    // +40
		{Topic: "fluids", Confidence: 5, Score: 70},    // +30
		{Topic: "acid-base", Confidence: 1, Score: 50}, // -50
		{Topic: "renal", Confidence: 3, Score: 45},     // +5
		{Topic: "renal", Confidence: 3, Score: 55},     // -5
	}
	got, err := ByTopic(samples)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	if got[0].Topic != "acid-base" || got[0].Category != CategoryUnderconfident {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Topic != "fluids" || got[1].Count != 2 || math.Abs(got[1].MeanDelta-35) > 1e-9 || got[1].Category != CategoryOverconfident {
		t.Errorf("got[1] = %+v", got[1])
	}
	if got[2].Topic != "renal" || math.Abs(got[2].MeanDelta) > 1e-9 || math.Abs(got[2].MeanAbsError-5) > 1e-9 || got[2].Category != CategoryCalibrated {
		t.Errorf("got[2] = %+v", got[2])
	}
}

func TestBuildReport(t *testing.T) {
	samples := []Sample{
		{Topic: "a", Confidence: 1, Score: 5},
		{Topic: "a", Confidence: 2, Score: 30},
		{Topic: "a", Confidence: 3, Score: 50},
		{Topic: "b", Confidence: 4, Score: 70},
		{Topic: "b", Confidence: 5, Score: 95},
	}
	r, err := BuildReport(samples)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Records) != 5 || len(r.Topics) != 2 {
		t.Fatalf("report = %+v", r)
	}
	if r.Correlation == nil || r.Correlation.Strength != StrengthStrong {
		t.Errorf("correlation = %+v", r.Correlation)
	}
	if r.MeanAbsError == nil || math.Abs(*r.MeanAbsError-4) > 1e-9 {
		t.Errorf("MAE = %v, want 4", r.MeanAbsError)
	}
}

func TestBuildReport_SmallWindow(t *testing.T) {
	r, err := BuildReport([]Sample{{Topic: "a", Confidence: 3, Score: 50}})
	if err != nil {
		t.Fatal(err)
	}
	if r.Correlation != nil {
		t.Errorf("correlation should be absent, got %+v", r.Correlation)
	}
	if r.MeanAbsError == nil || *r.MeanAbsError != 0 {
		t.Errorf("MAE = %v, want 0", r.MeanAbsError)
	}
}

func TestBuildReport_InvalidSample(t *testing.T) {
	if _, err := BuildReport([]Sample{{Topic: "a", Confidence: 9, Score: 50}}); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}
