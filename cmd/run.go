package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/assessor/internal/assessment"
	"github.com/abhisek/assessor/internal/cache"
	"github.com/abhisek/assessor/internal/config"
	"github.com/abhisek/assessor/internal/logger"
	"github.com/abhisek/assessor/internal/objectives"
	"github.com/abhisek/assessor/internal/store"
)

// runtime bundles everything a command needs to talk to the engine.
type runtime struct {
	cfg    config.Config
	log    *logger.Logger
	store  *store.Store
	engine *assessment.Engine

	closers []func(context.Context) error
}

// openRuntime opens the store and builds the engine's dependencies. Redis
// and Neo4j are optional; without them the engine runs uncached on the
// objective graph stored in SQL.
func openRuntime(cmd *cobra.Command) (*runtime, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	rt := &runtime{cfg: cfg, log: log}
	rt.closers = append(rt.closers, func(context.Context) error { log.Sync(); return nil })

	st, err := store.OpenDriver(ctx, cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	rt.store = st
	rt.closers = append(rt.closers, func(context.Context) error { return st.Close() })

	graph, err := rt.buildGraph(ctx)
	if err != nil {
		rt.Close()
		return nil, err
	}

	var abilityCache cache.AbilityCache
	if cfg.Redis.Addr != "" {
		client, err := cache.Connect(ctx, cfg.Redis.Addr)
		if err != nil {
			log.Warn("ability cache unavailable, continuing without it", "error", err)
		} else {
			abilityCache = cache.NewAbilityCache(client, cfg.Redis.TTL)
			rt.closers = append(rt.closers, func(context.Context) error { return client.Close() })
		}
	}

	opts := assessment.DefaultOptions()
	opts.InitialDifficulty = cfg.Assessment.InitialDifficulty
	opts.CooldownDays = cfg.Assessment.CooldownDays
	opts.LookbackDays = cfg.Assessment.LookbackDays
	opts.RelaxCooldown = cfg.Assessment.RelaxCooldown
	opts.ResumeFromHistory = cfg.Assessment.ResumeFromHistory

	rt.engine = assessment.New(assessment.Deps{
		Responses: st.Responses(),
		Prompts:   st.Prompts(),
		Mastery:   st.Mastery(),
		Graph:     graph,
		Cache:     abilityCache,
		Logger:    log,
	}, opts)
	return rt, nil
}

// buildGraph loads the stored objectives and either mirrors them into Neo4j
// or serves them from memory.
func (rt *runtime) buildGraph(ctx context.Context) (objectives.Graph, error) {
	objs, err := rt.store.Objectives().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load objectives: %w", err)
	}

	if rt.cfg.Neo4j.URI != "" {
		g, err := objectives.NewNeo4jGraph(ctx, objectives.Neo4jConfig{
			URI:      rt.cfg.Neo4j.URI,
			User:     rt.cfg.Neo4j.User,
			Password: rt.cfg.Neo4j.Password,
			Database: rt.cfg.Neo4j.Database,
		})
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, g.Close)
		if err := g.Sync(ctx, objs); err != nil {
			return nil, fmt.Errorf("sync objective graph: %w", err)
		}
		rt.log.Info("objective graph synced to neo4j", "objectives", len(objs))
		return g, nil
	}

	g, err := objectives.NewGraph(objs)
	if err != nil {
		return nil, fmt.Errorf("build objective graph: %w", err)
	}
	return g, nil
}

// Close releases resources in reverse order of acquisition.
func (rt *runtime) Close() {
	ctx := context.Background()
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i](ctx)
	}
}
