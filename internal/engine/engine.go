// Package engine wires the pipeline together: classify the question,
// either answer it on the fast path (tool-use loop for simple lookups) or
// run the data-first path (plan, execute, synthesize), and keep the
// session log current. The data-first path supplies the reasoning backend
// with every fact up front; it is never allowed to fetch mid-reasoning.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gridironhq/league-analyst/internal/catalog"
	"github.com/gridironhq/league-analyst/internal/executor"
	"github.com/gridironhq/league-analyst/internal/intent"
	"github.com/gridironhq/league-analyst/internal/model"
	"github.com/gridironhq/league-analyst/internal/planner"
	"github.com/gridironhq/league-analyst/internal/resolver"
	"github.com/gridironhq/league-analyst/internal/session"
	"github.com/gridironhq/league-analyst/internal/synthesis"
	"github.com/gridironhq/league-analyst/pkg/anthropic"
)

// Params collects the engine's collaborators.
type Params struct {
	Classifier  *intent.Classifier
	Planner     *planner.Planner
	Executor    *executor.Executor
	Synthesizer *synthesis.Synthesizer
	Resolver    *resolver.Resolver
	Catalog     *catalog.Catalog
	Sessions    session.Store
	LLM         anthropic.Client
	Fetchers    map[model.DataSource]executor.Fetcher

	// Model and MaxTokens drive the fast-path tool loop.
	Model     string
	MaxTokens int64
}

// Engine answers questions.
type Engine struct {
	p   Params
	log *zap.Logger
}

// New builds an engine from its parts.
func New(p Params) *Engine {
	if p.MaxTokens <= 0 {
		p.MaxTokens = 1500
	}
	return &Engine{p: p, log: zap.L().Named("engine")}
}

// Ask answers one question within a session. Data failures degrade the
// answer; only an unreachable reasoning backend fails the turn, and even
// then the session history survives.
func (e *Engine) Ask(ctx context.Context, sessionID, question string) (string, error) {
	history, err := e.p.Sessions.Get(ctx, sessionID)
	if err != nil {
		// A broken session backend should not block answering; proceed
		// without history.
		e.log.Warn("session read failed", zap.String("session", sessionID), zap.Error(err))
		history = nil
	}

	in := e.p.Classifier.Classify(question, history)
	e.log.Info("question classified",
		zap.String("session", sessionID),
		zap.String("category", string(in.Category)))

	var answer string
	if in.Category == model.IntentSimpleLookup {
		answer, err = e.fastPath(ctx, question, history)
		if err != nil {
			if model.IsBackendUnavailable(err) {
				return "", err
			}
			// Fast path could not settle the question; run the full
			// pipeline instead.
			e.log.Debug("fast path fell through", zap.Error(err))
			answer = ""
		}
	}

	if answer == "" {
		answer, err = e.dataFirst(ctx, question, in, history)
		if err != nil {
			if reason, ok := insufficiencyAnswer(err); ok {
				answer = reason
			} else {
				return "", err
			}
		}
	}

	turn := model.Turn{Question: question, Answer: answer, AskedAt: time.Now().UTC()}
	if err := e.p.Sessions.Append(ctx, sessionID, turn); err != nil {
		e.log.Warn("session append failed", zap.String("session", sessionID), zap.Error(err))
	}
	return answer, nil
}

// Reset clears a session's history. The ID stays usable.
func (e *Engine) Reset(ctx context.Context, sessionID string) error {
	return e.p.Sessions.Reset(ctx, sessionID)
}

func (e *Engine) dataFirst(ctx context.Context, question string, in model.QueryIntent, history []model.Turn) (string, error) {
	plan := e.p.Planner.Plan(ctx, in)
	dc := e.p.Executor.Execute(ctx, question, plan)
	return e.p.Synthesizer.Synthesize(ctx, dc, history)
}

// insufficiencyAnswer converts an InsufficientContextError into the honest
// natural-language answer the user sees. Other errors pass through.
func insufficiencyAnswer(err error) (string, bool) {
	var ic *model.InsufficientContextError
	if !errors.As(err, &ic) {
		return "", false
	}
	return fmt.Sprintf("I can't answer that from the league data I have: %s. Try rephrasing, or run a data sync first.", ic.Reason), true
}
