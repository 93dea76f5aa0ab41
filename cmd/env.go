package main

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/gridironhq/league-analyst/internal/catalog"
	"github.com/gridironhq/league-analyst/internal/engine"
	"github.com/gridironhq/league-analyst/internal/executor"
	"github.com/gridironhq/league-analyst/internal/intent"
	"github.com/gridironhq/league-analyst/internal/league"
	"github.com/gridironhq/league-analyst/internal/model"
	"github.com/gridironhq/league-analyst/internal/planner"
	"github.com/gridironhq/league-analyst/internal/resolver"
	"github.com/gridironhq/league-analyst/internal/session"
	"github.com/gridironhq/league-analyst/internal/stats"
	"github.com/gridironhq/league-analyst/internal/synthesis"
	"github.com/gridironhq/league-analyst/pkg/anthropic"
)

// appEnv holds the wired engine and whatever needs closing on exit.
type appEnv struct {
	Engine *engine.Engine
	store  *league.Store
}

func (e *appEnv) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

// StorePing is the /health dependency check: a cheap store round trip.
func (e *appEnv) StorePing(ctx context.Context) error {
	_, err := e.store.Count(ctx, "users")
	return err
}

// openBackend opens the configured league store backend.
func openBackend(ctx context.Context) (league.Backend, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return league.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite":
		backend, err := league.NewSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := backend.Migrate(ctx); err != nil {
			backend.Close()
			return nil, err
		}
		return backend, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEngine builds the full question-answering pipeline from config.
func initEngine(ctx context.Context, mode string) (*appEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	backend, err := openBackend(ctx)
	if err != nil {
		return nil, err
	}
	store := league.NewStore(backend)

	entities, err := store.LoadEntities(ctx)
	if err != nil {
		store.Close()
		return nil, eris.Wrap(err, "load entity registry")
	}
	res := resolver.New(model.NewRegistry(entities))

	statsClient := stats.New(cfg.Stats.BaseURL)
	fetchers := map[model.DataSource]executor.Fetcher{
		model.SourceLeague: league.NewFetcher(store),
		model.SourceStats:  stats.NewFetcher(statsClient),
	}

	sessions, err := newSessionStore()
	if err != nil {
		store.Close()
		return nil, err
	}

	llm := anthropic.NewClient(cfg.Anthropic.Key)
	cat := catalog.Default()

	eng := engine.New(engine.Params{
		Classifier: intent.New(),
		Planner:    planner.New(cat, store, res, cfg.Engine.BulkFetchFloor),
		Executor: executor.New(res, fetchers,
			time.Duration(cfg.Engine.StepTimeoutSecs)*time.Second,
			cfg.Engine.MaxConcurrentSteps),
		Synthesizer: synthesis.New(llm, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens),
		Resolver:    res,
		Catalog:     cat,
		Sessions:    sessions,
		LLM:         llm,
		Fetchers:    fetchers,
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
	})

	return &appEnv{Engine: eng, store: store}, nil
}

func newSessionStore() (session.Store, error) {
	switch cfg.Session.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Session.RedisAddr})
		return session.NewRedisStore(client, cfg.Session.TTL), nil
	case "memory":
		return session.NewMemoryStore(), nil
	default:
		return nil, eris.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
}
