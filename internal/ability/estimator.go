package ability

import (
	"math"
)

// Estimator fits a logistic ability model to a learner's scored responses.
type Estimator struct {
	cfg Config
}

// NewEstimator creates an estimator. Zero fields in cfg fall back to defaults.
func NewEstimator(cfg Config) *Estimator {
	def := DefaultConfig()
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = def.Tolerance
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = def.MaxStep
	}
	if cfg.MinResponses <= 0 {
		cfg.MinResponses = def.MinResponses
	}
	if cfg.StopCI <= 0 {
		cfg.StopCI = def.StopCI
	}
	if cfg.MaxStandardError <= 0 {
		cfg.MaxStandardError = def.MaxStandardError
	}
	return &Estimator{cfg: cfg}
}

// Config returns the estimator's effective settings.
func (e *Estimator) Config() Config {
	return e.cfg
}

// Estimate returns the ability estimate, or nil when fewer than MinResponses
// observations exist. A precise-looking value from one or two responses would
// mislead callers, so none is reported.
func (e *Estimator) Estimate(obs []Observation) *Estimate {
	if len(obs) < e.cfg.MinResponses {
		return nil
	}
	return e.Fit(obs)
}

// Fit runs the bounded Newton-Raphson loop for any non-empty history.
// Returns nil for an empty history. If the loop hits MaxIterations the best
// estimate so far is returned with NonConvergent set.
func (e *Estimator) Fit(obs []Observation) *Estimate {
	if len(obs) == 0 {
		return nil
	}

	theta := initialTheta(obs)
	iterations := 0
	converged := false

	for iterations < e.cfg.MaxIterations {
		iterations++

		grad, info := derivatives(theta, obs)
		if info <= 0 {
			// No curvature left: θ sits where every item is certain.
			converged = true
			break
		}

		step := grad / info
		step = clamp(step, -e.cfg.MaxStep, e.cfg.MaxStep)

		next := clamp(theta+step, MinTheta, MaxTheta)
		delta := math.Abs(next - theta)
		theta = next

		if delta < e.cfg.Tolerance {
			converged = true
			break
		}
	}

	_, info := derivatives(theta, obs)
	se := e.cfg.MaxStandardError
	if info > 0 {
		se = math.Min(1/math.Sqrt(info), e.cfg.MaxStandardError)
	}

	return &Estimate{
		Theta:              theta,
		StandardError:      se,
		ConfidenceInterval: Z95 * se,
		Iterations:         iterations,
		Responses:          len(obs),
		Converged:          converged,
		NonConvergent:      !converged,
	}
}

// ShouldStopEarly reports whether the estimate is precise enough to end the
// assessment: at least MinResponses observations and a 95% interval narrower
// than StopCI. It is a pure function of the estimate.
func (e *Estimator) ShouldStopEarly(est *Estimate) bool {
	if est == nil {
		return false
	}
	return est.Responses >= e.cfg.MinResponses && est.ConfidenceInterval < e.cfg.StopCI
}

// Probability is the logistic model P(correct | θ, δ) = 1 / (1 + e^-a(θ-δ)).
func Probability(theta, difficulty, discrimination float64) float64 {
	if discrimination == 0 {
		discrimination = 1
	}
	return 1 / (1 + math.Exp(-discrimination*(theta-difficulty)))
}

// derivatives returns the log-likelihood gradient and the observed Fisher
// information at theta.
func derivatives(theta float64, obs []Observation) (grad, info float64) {
	for _, o := range obs {
		a := o.Discrimination
		if a == 0 {
			a = 1
		}
		p := clamp(o.Score/100, 0, 1)
		pr := Probability(theta, o.Difficulty, a)
		grad += a * (p - pr)
		info += a * a * pr * (1 - pr)
	}
	return grad, info
}

// initialTheta starts the loop at the mean difficulty of the observed items.
func initialTheta(obs []Observation) float64 {
	sum := 0.0
	for _, o := range obs {
		sum += o.Difficulty
	}
	return clamp(sum/float64(len(obs)), MinTheta, MaxTheta)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
