package league

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/gridironhq/league-analyst/internal/model"
)

// Fetcher adapts the store to the executor's fetch contract: catalog
// operation name plus bound parameters in, payload out. It also owns the
// process's entity registry snapshot, loaded lazily and shared with the
// resolver.
type Fetcher struct {
	store *Store

	mu       sync.Mutex
	registry *model.Registry
}

// NewFetcher wraps a store.
func NewFetcher(store *Store) *Fetcher {
	return &Fetcher{store: store}
}

// Registry returns the entity registry, loading it on first use.
func (f *Fetcher) Registry(ctx context.Context) (*model.Registry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registry != nil {
		return f.registry, nil
	}
	entities, err := f.store.LoadEntities(ctx)
	if err != nil {
		return nil, err
	}
	f.registry = model.NewRegistry(entities)
	return f.registry, nil
}

// Fetch executes one league catalog operation.
func (f *Fetcher) Fetch(ctx context.Context, operation string, params map[string]any) (any, error) {
	switch operation {
	case "find_team":
		return f.findEntity(ctx, model.EntityTeam, stringParam(params, "team"))
	case "find_player":
		return f.findEntity(ctx, model.EntityPlayer, stringParam(params, "player"))
	case "list_teams":
		reg, err := f.Registry(ctx)
		if err != nil {
			return nil, err
		}
		return reg.Kind(model.EntityTeam), nil
	case "get_standings":
		return f.store.Standings(ctx)
	case "get_recent_trades":
		return f.store.Trades(ctx, TradeFilter{
			Season: stringParam(params, "season"),
			Limit:  intParam(params, "limit"),
		})
	case "get_trade_counts_by_team":
		return f.store.TradeCounts(ctx)
	case "get_team_trade_history":
		team := stringParam(params, "team")
		if team == "" {
			return nil, eris.New("league: get_team_trade_history requires team")
		}
		return f.store.Trades(ctx, TradeFilter{Team: team})
	case "get_weekly_matchups":
		week := intParam(params, "week")
		if week == 0 {
			return nil, eris.New("league: get_weekly_matchups requires week")
		}
		return f.store.Matchups(ctx, week, stringParam(params, "season"))
	case "query_with_filters":
		return f.genericQuery(ctx, params)
	default:
		return nil, eris.Errorf("league: unknown operation %s", operation)
	}
}

// findEntity looks up an already-resolved canonical name. Exact match
// only: fuzzy matching happened in the resolver.
func (f *Fetcher) findEntity(ctx context.Context, kind model.EntityKind, name string) (any, error) {
	if name == "" {
		return nil, eris.Errorf("league: find %s requires a name", kind)
	}
	reg, err := f.Registry(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range reg.Kind(kind) {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, eris.Errorf("league: no %s named %q", kind, name)
}

func (f *Fetcher) genericQuery(ctx context.Context, params map[string]any) (any, error) {
	table := stringParam(params, "table")
	if table == "" {
		return nil, eris.New("league: query_with_filters requires table")
	}
	spec := QuerySpec{
		Table:   table,
		OrderBy: stringParam(params, "order_by"),
		Desc:    boolParam(params, "desc"),
		Limit:   intParam(params, "limit"),
	}
	if raw, ok := params["filters"].(map[string]any); ok {
		spec.Filters = raw
	}
	return f.store.Query(ctx, spec)
}

func stringParam(params map[string]any, key string) string {
	s, _ := params[key].(string)
	return s
}

func intParam(params map[string]any, key string) int {
	switch n := params[key].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func boolParam(params map[string]any, key string) bool {
	b, _ := params[key].(bool)
	return b
}
