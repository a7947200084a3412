// Package assessment orchestrates question selection and response
// processing on top of the calibration, ability, difficulty, mastery and
// follow-up components.
package assessment

import (
	"context"
	"time"

	"github.com/abhisek/assessor/internal/ability"
	"github.com/abhisek/assessor/internal/cache"
	"github.com/abhisek/assessor/internal/cooldown"
	"github.com/abhisek/assessor/internal/followup"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/mastery"
	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

// Options holds orchestrator policy.
type Options struct {
	InitialDifficulty float64
	CooldownDays      int
	LookbackDays      int
	RelaxCooldown     bool
	// ResumeFromHistory adapts from the learner's latest stored response when
	// a request names no previous response. Off, such requests start at
	// InitialDifficulty.
	ResumeFromHistory bool
	Ability           ability.Config
	Mastery           mastery.Config
}

// DefaultOptions returns the standard policy.
func DefaultOptions() Options {
	return Options{
		InitialDifficulty: 50,
		CooldownDays:      cooldown.DefaultDays,
		LookbackDays:      90,
		Ability:           ability.DefaultConfig(),
		Mastery:           mastery.DefaultConfig(),
	}
}

// Deps are the collaborators the engine reads from and writes to.
type Deps struct {
	Responses store.ResponseRepo
	Prompts   store.PromptRepo
	Mastery   store.MasteryRepo
	Graph     objectives.Graph
	Cache     cache.AbilityCache // nil disables caching
	Logger    *logger.Logger     // nil discards logs
}

// Engine is the assessment orchestrator. It holds no per-learner state;
// callers must serialize submissions for the same learner and objective.
type Engine struct {
	responses store.ResponseRepo
	prompts   store.PromptRepo
	graph     objectives.Graph
	cache     cache.AbilityCache
	log       *logger.Logger

	estimator *ability.Estimator
	mastery   *mastery.Service
	followups *followup.Selector
	cooldown  cooldown.Policy

	opts Options
	now  func() time.Time
}

// New creates an Engine.
func New(deps Deps, opts Options) *Engine {
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = DefaultOptions().LookbackDays
	}
	opts.Mastery.Lookback = time.Duration(opts.LookbackDays) * 24 * time.Hour

	c := deps.Cache
	if c == nil {
		c = cache.Nop{}
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Engine{
		responses: deps.Responses,
		prompts:   deps.Prompts,
		graph:     deps.Graph,
		cache:     c,
		log:       log,
		estimator: ability.NewEstimator(opts.Ability),
		mastery:   mastery.NewService(deps.Responses, deps.Mastery, deps.Graph, opts.Mastery),
		followups: followup.NewSelector(deps.Graph, deps.Prompts),
		cooldown:  cooldown.New(opts.CooldownDays),
		opts:      opts,
		now:       time.Now,
	}
}

// SetClock overrides the time source for the engine and its mastery service.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
	e.mastery.SetClock(now)
}

// MasteryHistory returns the recorded mastery transitions, oldest first.
func (e *Engine) MasteryHistory(ctx context.Context, learnerID, objectiveID string) ([]mastery.StateTransition, error) {
	if err := requireIDs(learnerID, objectiveID); err != nil {
		return nil, err
	}
	return e.mastery.History(ctx, learnerID, objectiveID)
}
