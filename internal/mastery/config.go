package mastery

import (
	"time"

	"github.com/abhisek/assessor/internal/calibration"
	"github.com/abhisek/assessor/internal/objectives"
)

// Config holds the verification thresholds.
type Config struct {
	// HighScore is the exclusive lower bound for a qualifying score.
	HighScore float64
	// RequiredHigh is the number of trailing qualifying responses needed.
	RequiredHigh int
	// RequiredTypes is the number of distinct assessment types needed.
	RequiredTypes int
	// RequiredDays is the number of distinct UTC calendar days needed.
	RequiredDays int
	// CalibrationTolerance bounds |delta| for every qualifying response.
	CalibrationTolerance float64
	// Window caps how many trailing qualifying responses are evaluated.
	Window int
	// Lookback limits how far back history is read.
	Lookback time.Duration
	// TierFloors is the minimum difficulty per complexity tier.
	TierFloors map[objectives.Tier]float64
}

// DefaultConfig returns the standard verification thresholds.
func DefaultConfig() Config {
	floors := make(map[objectives.Tier]float64)
	for _, t := range objectives.AllTiers() {
		floors[t] = t.Floor()
	}
	return Config{
		HighScore:            80,
		RequiredHigh:         3,
		RequiredTypes:        2,
		RequiredDays:         2,
		CalibrationTolerance: calibration.Tolerance,
		Window:               5,
		Lookback:             90 * 24 * time.Hour,
		TierFloors:           floors,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.HighScore == 0 {
		c.HighScore = def.HighScore
	}
	if c.RequiredHigh == 0 {
		c.RequiredHigh = def.RequiredHigh
	}
	if c.RequiredTypes == 0 {
		c.RequiredTypes = def.RequiredTypes
	}
	if c.RequiredDays == 0 {
		c.RequiredDays = def.RequiredDays
	}
	if c.CalibrationTolerance == 0 {
		c.CalibrationTolerance = def.CalibrationTolerance
	}
	if c.Window == 0 {
		c.Window = def.Window
	}
	if c.Window < c.RequiredHigh {
		c.Window = c.RequiredHigh
	}
	if c.Lookback == 0 {
		c.Lookback = def.Lookback
	}
	if c.TierFloors == nil {
		c.TierFloors = def.TierFloors
	}
	return c
}

// floor returns the difficulty floor for a tier.
func (c Config) floor(t objectives.Tier) float64 {
	if f, ok := c.TierFloors[t]; ok {
		return f
	}
	return t.Floor()
}
