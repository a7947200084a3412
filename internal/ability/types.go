package ability

// Observation is one scored response: the item difficulty and the score it
// earned, both on the 0-100 scale.
type Observation struct {
	Difficulty float64
	Score      float64
	// Discrimination scales the logistic slope. Zero means 1.
	Discrimination float64
}

// Estimate is the derived ability for one learner on one objective.
// It is recomputed from the full response history and never treated as
// authoritative state.
type Estimate struct {
	Theta              float64 `json:"theta"`
	StandardError      float64 `json:"standard_error"`
	ConfidenceInterval float64 `json:"confidence_interval"`
	Iterations         int     `json:"iterations"`
	Responses          int     `json:"responses"`
	Converged          bool    `json:"converged"`
	NonConvergent      bool    `json:"non_convergent"`
}

// Config holds the estimator's numeric settings.
type Config struct {
	// MaxIterations caps the Newton update loop.
	MaxIterations int
	// Tolerance is the |Δθ| below which the loop is considered converged.
	Tolerance float64
	// MaxStep caps a single update, in ability points.
	MaxStep float64
	// MinResponses is the fewest observations for which Estimate reports a value.
	MinResponses int
	// StopCI is the confidence-interval width below which early stop is signalled.
	StopCI float64
	// MaxStandardError caps the reported standard error when the data carries
	// almost no information (every score at 0 or 100).
	MaxStandardError float64
}

const (
	// Z95 is the two-sided 95% normal quantile.
	Z95 = 1.96

	MinTheta = 0.0
	MaxTheta = 100.0
)

// DefaultConfig returns the default estimator settings.
func DefaultConfig() Config {
	return Config{
		MaxIterations:    50,
		Tolerance:        0.01,
		MaxStep:          10,
		MinResponses:     3,
		StopCI:           10,
		MaxStandardError: 50,
	}
}
