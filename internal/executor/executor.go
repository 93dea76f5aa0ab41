// Package executor runs an ExecutionPlan against the backing services and
// assembles the immutable DataContext. Independent steps run concurrently;
// dependent steps run in a second wave once their prerequisite has a
// result. Every planned step ends up as exactly one slot, payload or typed
// error — a failing backend degrades the context, it never aborts the plan.
package executor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gridironhq/league-analyst/internal/model"
	"github.com/gridironhq/league-analyst/internal/resolver"
)

// Fetcher executes one catalog operation against a backing service.
type Fetcher interface {
	Fetch(ctx context.Context, operation string, params map[string]any) (any, error)
}

// Executor runs plans.
type Executor struct {
	resolver    *resolver.Resolver
	fetchers    map[model.DataSource]Fetcher
	stepTimeout time.Duration
	maxParallel int
	log         *zap.Logger
}

// New returns an Executor. fetchers maps each data source to its adapter;
// a plan step naming an unmapped source records a fetch_failed slot.
func New(res *resolver.Resolver, fetchers map[model.DataSource]Fetcher, stepTimeout time.Duration, maxParallel int) *Executor {
	if stepTimeout <= 0 {
		stepTimeout = 15 * time.Second
	}
	if maxParallel <= 0 {
		maxParallel = 4
	}
	return &Executor{
		resolver:    res,
		fetchers:    fetchers,
		stepTimeout: stepTimeout,
		maxParallel: maxParallel,
		log:         zap.L().Named("executor"),
	}
}

// Execute runs every step of the plan and returns the completed context.
// The returned context always holds one slot per plan step, plus the
// reserved resolution_errors slot when any resolution failed.
func (e *Executor) Execute(ctx context.Context, question string, plan model.ExecutionPlan) *model.DataContext {
	var (
		mu    sync.Mutex
		slots = make(map[string]model.StepOutcome, len(plan.Steps))
	)
	record := func(id string, out model.StepOutcome) {
		mu.Lock()
		slots[id] = out
		mu.Unlock()
	}
	outcome := func(id string) (model.StepOutcome, bool) {
		mu.Lock()
		defer mu.Unlock()
		o, ok := slots[id]
		return o, ok
	}

	var independent, dependent []model.ExecutionStep
	for _, s := range plan.Steps {
		if s.DependsOn == "" {
			independent = append(independent, s)
		} else {
			dependent = append(dependent, s)
		}
	}

	runWave := func(steps []model.ExecutionStep) {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.maxParallel)
		for _, step := range steps {
			step := step
			g.Go(func() error {
				record(step.ID, e.runStep(gctx, step, outcome))
				return nil
			})
		}
		// Workers never return errors; failures live in the slots.
		_ = g.Wait()
	}

	runWave(independent)
	runWave(dependent)

	if resErrs := collectResolutionErrors(slots); len(resErrs) > 0 {
		slots[model.ResolutionErrorsSlot] = model.StepOutcome{Payload: resErrs}
	}

	dc := model.NewDataContext(question, slots)
	if dc.Degraded() {
		e.log.Warn("plan executed with failures",
			zap.Int("steps", len(plan.Steps)),
			zap.Int("failures", len(dc.Failures())))
	}
	return dc
}

// runStep executes one step under its own timeout and converts any failure
// into a typed StepError outcome.
func (e *Executor) runStep(ctx context.Context, step model.ExecutionStep, outcome func(string) (model.StepOutcome, bool)) model.StepOutcome {
	params := step.Params
	if step.DependsOn != "" {
		prereq, ok := outcome(step.DependsOn)
		if !ok || !prereq.OK() {
			return model.StepOutcome{Err: &model.StepError{
				Step:    step.ID,
				Kind:    "dependency_failed",
				Message: "prerequisite step " + step.DependsOn + " did not produce a result",
			}}
		}
		params = bindResolved(params, prereq.Payload)
	}

	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	switch step.Kind {
	case model.StepResolve:
		return e.runResolve(step)
	default:
		return e.runFetch(stepCtx, step, params)
	}
}

func (e *Executor) runResolve(step model.ExecutionStep) model.StepOutcome {
	if step.Entity == nil {
		return model.StepOutcome{Err: &model.StepError{
			Step: step.ID, Kind: "resolution_not_found",
			Message: "resolve step carries no entity slot",
		}}
	}
	cands, err := e.resolver.Resolve(step.Entity.Kind, step.Entity.Text)
	if err != nil {
		return model.StepOutcome{Err: &model.StepError{
			Step: step.ID, Kind: "resolution_not_found",
			Message: err.Error(),
		}}
	}
	return model.StepOutcome{Payload: cands}
}

func (e *Executor) runFetch(ctx context.Context, step model.ExecutionStep, params map[string]any) model.StepOutcome {
	f, ok := e.fetchers[step.Source]
	if !ok {
		return model.StepOutcome{Err: &model.StepError{
			Step: step.ID, Kind: "fetch_failed",
			Message: "no adapter for source " + string(step.Source),
		}}
	}

	payload, err := f.Fetch(ctx, step.Operation, params)
	if err != nil {
		kind := "fetch_failed"
		if errors.Is(err, context.DeadlineExceeded) {
			kind = "timeout"
		}
		e.log.Warn("step failed",
			zap.String("step", step.ID),
			zap.String("operation", step.Operation),
			zap.Error(err))
		return model.StepOutcome{Err: &model.StepError{
			Step: step.ID, Kind: kind, Message: err.Error(),
		}}
	}
	return model.StepOutcome{Payload: payload}
}

// bindResolved injects the resolved entity's canonical name into the fetch
// parameters, keyed by its kind. Ambiguous resolutions bind the top
// candidate; the candidate list itself is already in the prerequisite's
// slot for synthesis to see.
func bindResolved(params map[string]any, payload any) map[string]any {
	cands, ok := payload.([]resolver.Candidate)
	if !ok || len(cands) == 0 {
		return params
	}
	top := cands[0].Entity
	out := make(map[string]any, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out[string(top.Kind)] = top.Name
	return out
}

func collectResolutionErrors(slots map[string]model.StepOutcome) []model.StepError {
	var errs []model.StepError
	for _, o := range slots {
		if o.Err != nil && o.Err.Kind == "resolution_not_found" {
			errs = append(errs, *o.Err)
		}
	}
	sort.Slice(errs, func(i, j int) bool { return errs[i].Step < errs[j].Step })
	return errs
}
