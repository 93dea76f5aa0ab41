// Package planner expands a QueryIntent into an ExecutionPlan: one
// resolve step per entity mention, fetch steps per implicated source,
// cross-source fetches dependent on their resolve step.
//
// The planner enforces the data-first rule: an aggregation or superlative
// question plans a fetch sized to the full relevant population, never a
// "recent N" sample. A best-trade-ever ranking computed from the last 20
// trades is a correctness bug, so before planning a bulk fetch the planner
// asks the store how many rows the table actually holds and sizes the
// limit to at least that.
package planner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gridironhq/league-analyst/internal/catalog"
	"github.com/gridironhq/league-analyst/internal/model"
)

// DefaultBulkFloor is the fetch limit used when the population size is
// unknown (count failed or the table is unnamed). Large enough to cover
// any realistic league's full history.
const DefaultBulkFloor = 1000

// CountProvider reports how many rows a league table holds. The postgres
// and sqlite stores both satisfy it.
type CountProvider interface {
	Count(ctx context.Context, table string) (int, error)
}

// KindProber settles which registry kind a free-text mention belongs to.
// The resolver satisfies it.
type KindProber interface {
	ProbeKind(text string, kinds ...model.EntityKind) (model.EntityKind, bool)
}

// Planner builds execution plans.
type Planner struct {
	catalog *catalog.Catalog
	counts  CountProvider
	prober  KindProber
	floor   int
	log     *zap.Logger
}

// New returns a Planner. counts may be nil, in which case bulk fetches
// fall back to the floor limit; prober may be nil, in which case unsettled
// mentions default to teams.
func New(cat *catalog.Catalog, counts CountProvider, prober KindProber, floor int) *Planner {
	if floor <= 0 {
		floor = DefaultBulkFloor
	}
	return &Planner{
		catalog: cat,
		counts:  counts,
		prober:  prober,
		floor:   floor,
		log:     zap.L().Named("planner"),
	}
}

// Plan expands an intent into steps. It never returns an empty plan: even
// a signal-free intent plans at least one league fetch so synthesis has
// something to stand on.
func (p *Planner) Plan(ctx context.Context, intent model.QueryIntent) model.ExecutionPlan {
	intent.Entities = p.settleKinds(intent)
	plan := model.ExecutionPlan{Intent: intent}

	// (a) one resolve step per distinct entity mention.
	resolveIDs := make([]string, 0, len(intent.Entities))
	for i, slot := range intent.Entities {
		slot := slot
		id := fmt.Sprintf("resolve_%d", i)
		plan.Steps = append(plan.Steps, model.ExecutionStep{
			ID:     id,
			Kind:   model.StepResolve,
			Source: model.SourceLeague,
			Entity: &slot,
		})
		resolveIDs = append(resolveIDs, id)
	}

	// (b) league fetches implied by the intent category.
	if intent.HasSource(model.SourceLeague) {
		p.planLeagueFetches(ctx, &plan, intent, resolveIDs)
	}

	// (c) stats fetches, one per resolved entity, dependent on its
	// resolve step.
	if intent.HasSource(model.SourceStats) {
		p.planStatsFetches(&plan, intent, resolveIDs)
	}

	if countFetches(plan) == 0 {
		// Degenerate intent with no fetchable shape: fall back to the
		// league overview so the analyst can at least orient.
		plan.Steps = append(plan.Steps, model.ExecutionStep{
			ID:        "fetch_standings",
			Kind:      model.StepFetch,
			Operation: "get_standings",
			Source:    model.SourceLeague,
		})
		plan.Rationale = "no concrete data requirement; fetching standings as baseline"
	}

	p.log.Debug("planned question",
		zap.String("category", string(intent.Category)),
		zap.Int("steps", len(plan.Steps)))

	return plan
}

// settleKinds assigns a concrete kind to every entity mention whose
// phrasing did not reveal one, by probing the registry. Stats-flavored
// questions probe players first so a name present under both kinds leans
// toward the source the question implicates. Mentions the registry does
// not know at all default to teams; their resolve steps fail loudly
// downstream instead of silently fetching the wrong thing.
func (p *Planner) settleKinds(intent model.QueryIntent) []model.EntitySlot {
	slots := make([]model.EntitySlot, len(intent.Entities))
	copy(slots, intent.Entities)

	// Only kinds with a lookup operation are probed; owners resolve
	// through their team's aliases.
	order := []model.EntityKind{model.EntityTeam, model.EntityPlayer}
	if intent.HasSource(model.SourceStats) {
		order = []model.EntityKind{model.EntityPlayer, model.EntityTeam}
	}
	for i := range slots {
		if slots[i].Kind != model.EntityUnknown {
			continue
		}
		if p.prober != nil {
			if kind, ok := p.prober.ProbeKind(slots[i].Text, order...); ok {
				slots[i].Kind = kind
				continue
			}
		}
		slots[i].Kind = model.EntityTeam
	}
	return slots
}

func (p *Planner) planLeagueFetches(ctx context.Context, plan *model.ExecutionPlan, intent model.QueryIntent, resolveIDs []string) {
	switch intent.Category {
	case model.IntentSimpleLookup:
		// Exactly one fetch, bound to the single resolve step if present.
		step := model.ExecutionStep{
			ID:        "fetch_lookup",
			Kind:      model.StepFetch,
			Operation: "find_team",
			Source:    model.SourceLeague,
			Params:    map[string]any{},
		}
		if len(resolveIDs) == 1 {
			step.DependsOn = resolveIDs[0]
			if intent.Entities[0].Kind == model.EntityPlayer {
				step.Operation = "find_player"
			}
		} else if intent.Week > 0 {
			step.Operation = "get_weekly_matchups"
			step.Params["week"] = intent.Week
		} else {
			step.Operation = "get_standings"
		}
		plan.Steps = append(plan.Steps, step)

	case model.IntentAggregation, model.IntentComparison, model.IntentAdvisory, model.IntentCrossSource:
		// Data-first: fetch the complete populations the question could
		// range over. Standings are cheap and almost always relevant.
		plan.Steps = append(plan.Steps, model.ExecutionStep{
			ID:        "fetch_standings",
			Kind:      model.StepFetch,
			Operation: "get_standings",
			Source:    model.SourceLeague,
		})
		if mentionsTrades(intent) {
			limit := p.bulkLimit(ctx, "trades")
			plan.Steps = append(plan.Steps, model.ExecutionStep{
				ID:        "fetch_trades",
				Kind:      model.StepFetch,
				Operation: "get_recent_trades",
				Source:    model.SourceLeague,
				Params:    map[string]any{"limit": limit},
			})
			plan.Rationale = fmt.Sprintf("bulk trade fetch limit=%d covers full population", limit)
		}
		if intent.Week > 0 {
			plan.Steps = append(plan.Steps, model.ExecutionStep{
				ID:        "fetch_matchups",
				Kind:      model.StepFetch,
				Operation: "get_weekly_matchups",
				Source:    model.SourceLeague,
				Params:    map[string]any{"week": intent.Week},
			})
		}
		// Per-entity league detail, dependent on resolution.
		for i, id := range resolveIDs {
			op := "find_team"
			if intent.Entities[i].Kind == model.EntityPlayer {
				op = "find_player"
			}
			plan.Steps = append(plan.Steps, model.ExecutionStep{
				ID:        fmt.Sprintf("fetch_entity_%d", i),
				Kind:      model.StepFetch,
				Operation: op,
				Source:    model.SourceLeague,
				Params:    map[string]any{},
				DependsOn: id,
			})
		}
	}
}

func (p *Planner) planStatsFetches(plan *model.ExecutionPlan, intent model.QueryIntent, resolveIDs []string) {
	params := func() map[string]any {
		m := map[string]any{}
		if intent.Season > 0 {
			m["season"] = intent.Season
		}
		return m
	}

	// Per-player season lines, dependent on resolution. Team and owner
	// mentions have no stats-side lookup, so they plan nothing here.
	planned := false
	for i, id := range resolveIDs {
		if intent.Entities[i].Kind != model.EntityPlayer {
			continue
		}
		plan.Steps = append(plan.Steps, model.ExecutionStep{
			ID:        fmt.Sprintf("fetch_stats_%d", i),
			Kind:      model.StepFetch,
			Operation: "get_player_season_stats",
			Source:    model.SourceStats,
			Params:    params(),
			DependsOn: id,
		})
		planned = true
	}
	if !planned {
		// No named player to look up; NFL standings give the analyst the
		// real-world frame.
		plan.Steps = append(plan.Steps, model.ExecutionStep{
			ID:        "fetch_nfl_standings",
			Kind:      model.StepFetch,
			Operation: "get_nfl_standings",
			Source:    model.SourceStats,
			Params:    params(),
		})
	}
}

// bulkLimit returns max(row count, floor) for the table, falling back to
// the floor when the count is unavailable.
func (p *Planner) bulkLimit(ctx context.Context, table string) int {
	if p.counts == nil {
		return p.floor
	}
	n, err := p.counts.Count(ctx, table)
	if err != nil {
		p.log.Warn("population count failed, using floor",
			zap.String("table", table), zap.Error(err))
		return p.floor
	}
	if n > p.floor {
		return n
	}
	return p.floor
}

func mentionsTrades(intent model.QueryIntent) bool {
	if intent.Metric == "trades" {
		return true
	}
	// Aggregation and advisory questions in this domain almost always
	// range over trade history; over-fetching is the safe direction.
	return intent.Category == model.IntentAggregation ||
		intent.Category == model.IntentAdvisory
}

func countFetches(plan model.ExecutionPlan) int {
	n := 0
	for _, s := range plan.Steps {
		if s.Kind == model.StepFetch {
			n++
		}
	}
	return n
}
