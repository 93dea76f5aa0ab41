package league

import (
	"context"
	"sort"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gridironhq/league-analyst/internal/model"
)

// Backend is the engine-specific half of the store: run a built query,
// count a table, close. PostgresBackend and SQLiteBackend implement it.
type Backend interface {
	Query(ctx context.Context, spec QuerySpec) ([]Row, error)
	Count(ctx context.Context, table string) (int, error)
	Close() error
}

// Store layers the domain reads over a Backend. All convenience queries
// are expressed as QuerySpecs so both engines get them for free.
type Store struct {
	backend Backend
}

// NewStore wraps a backend.
func NewStore(b Backend) *Store {
	return &Store{backend: b}
}

// Query runs a generic filtered query.
func (s *Store) Query(ctx context.Context, spec QuerySpec) ([]Row, error) {
	return s.backend.Query(ctx, spec)
}

// Count returns the table's row count.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	return s.backend.Count(ctx, table)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// LoadEntities reads the full entity registry: one entity per team (roster
// joined to its owning user), one per owner, one per NFL player.
func (s *Store) LoadEntities(ctx context.Context) ([]model.Entity, error) {
	rosterRows, err := s.backend.Query(ctx, QuerySpec{
		Table: "rosters",
		Select: []string{
			"roster_id", "owner_id", "wins", "losses",
			"points_for", "players", "starters", "reserve",
		},
		Join: &JoinSpec{
			Table:      "users",
			LocalKey:   "owner_id",
			ForeignKey: "user_id",
			Columns:    []string{"display_name", "team_name"},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "league: load rosters")
	}

	var entities []model.Entity
	for _, r := range rosterRows {
		teamName := asString(r["team_name"])
		owner := asString(r["display_name"])
		if teamName == "" {
			// Owners who never named their team show up by handle.
			teamName = owner
		}
		entities = append(entities, model.Entity{
			ID:       asString(r["roster_id"]),
			Kind:     model.EntityTeam,
			Name:     teamName,
			Aliases:  []string{owner},
			RosterID: asInt(r["roster_id"]),
			Wins:     asInt(r["wins"]),
			Losses:   asInt(r["losses"]),
			Points:   asFloat(r["points_for"]),
			Players:  asStringSlice(r["players"]),
			Starters: asStringSlice(r["starters"]),
			Reserve:  asStringSlice(r["reserve"]),
		})
		if owner != "" {
			entities = append(entities, model.Entity{
				ID:      asString(r["owner_id"]),
				Kind:    model.EntityOwner,
				Name:    owner,
				Aliases: []string{teamName},
			})
		}
	}

	playerRows, err := s.backend.Query(ctx, QuerySpec{
		Table:  "players",
		Select: []string{"player_id", "full_name", "position", "team"},
	})
	if err != nil {
		return nil, eris.Wrap(err, "league: load players")
	}
	for _, r := range playerRows {
		name := asString(r["full_name"])
		if name == "" {
			continue
		}
		entities = append(entities, model.Entity{
			ID:       asString(r["player_id"]),
			Kind:     model.EntityPlayer,
			Name:     name,
			Position: asString(r["position"]),
			ProTeam:  asString(r["team"]),
		})
	}

	return entities, nil
}

// Standings returns teams ordered by record, points as tiebreaker.
func (s *Store) Standings(ctx context.Context) ([]model.Standing, error) {
	rows, err := s.backend.Query(ctx, QuerySpec{
		Table: "rosters",
		Select: []string{
			"wins", "losses", "ties", "points_for", "points_against",
		},
		Join: &JoinSpec{
			Table:      "users",
			LocalKey:   "owner_id",
			ForeignKey: "user_id",
			Columns:    []string{"display_name", "team_name"},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "league: standings")
	}

	standings := make([]model.Standing, 0, len(rows))
	for _, r := range rows {
		name := asString(r["team_name"])
		if name == "" {
			name = asString(r["display_name"])
		}
		standings = append(standings, model.Standing{
			TeamName:      name,
			OwnerName:     asString(r["display_name"]),
			Wins:          asInt(r["wins"]),
			Losses:        asInt(r["losses"]),
			Ties:          asInt(r["ties"]),
			PointsFor:     asFloat(r["points_for"]),
			PointsAgainst: asFloat(r["points_against"]),
		})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		return standings[i].PointsFor > standings[j].PointsFor
	})
	return standings, nil
}

// TradeFilter narrows Trades.
type TradeFilter struct {
	Season string
	Team   string
	Limit  int
}

// Trades returns trades newest first. A zero limit means no cap; callers
// doing aggregation pass the full population size.
func (s *Store) Trades(ctx context.Context, filter TradeFilter) ([]model.Trade, error) {
	filters := map[string]any{}
	if filter.Season != "" {
		filters["season"] = filter.Season
	}
	rows, err := s.backend.Query(ctx, QuerySpec{
		Table: "trades",
		Select: []string{
			"trade_id", "season", "week", "team_name", "received", "completed_at",
		},
		Filters: filters,
		OrderBy: "completed_at",
		Desc:    true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "league: trades")
	}

	// One row per trade side; group into trades preserving row order.
	byID := map[string]int{}
	var trades []model.Trade
	for _, r := range rows {
		id := asString(r["trade_id"])
		idx, seen := byID[id]
		if !seen {
			completed, _ := r["completed_at"].(time.Time)
			trades = append(trades, model.Trade{
				ID:          id,
				Season:      asString(r["season"]),
				Week:        asInt(r["week"]),
				CompletedAt: completed,
			})
			idx = len(trades) - 1
			byID[id] = idx
		}
		trades[idx].Sides = append(trades[idx].Sides, model.TradeSide{
			TeamName: asString(r["team_name"]),
			Received: asStringSlice(r["received"]),
		})
	}

	if filter.Team != "" {
		var filtered []model.Trade
		for _, t := range trades {
			for _, side := range t.Sides {
				if side.TeamName == filter.Team {
					filtered = append(filtered, t)
					break
				}
			}
		}
		trades = filtered
	}
	if filter.Limit > 0 && len(trades) > filter.Limit {
		trades = trades[:filter.Limit]
	}
	return trades, nil
}

// TradeCounts returns each team's all-time trade total, most active first.
func (s *Store) TradeCounts(ctx context.Context) ([]model.TradeCount, error) {
	trades, err := s.Trades(ctx, TradeFilter{})
	if err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, t := range trades {
		for _, side := range t.Sides {
			counts[side.TeamName]++
		}
	}
	out := make([]model.TradeCount, 0, len(counts))
	for team, n := range counts {
		out = append(out, model.TradeCount{TeamName: team, Trades: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Trades != out[j].Trades {
			return out[i].Trades > out[j].Trades
		}
		return out[i].TeamName < out[j].TeamName
	})
	return out, nil
}

// Matchups returns head-to-head results for one week. Season is optional.
func (s *Store) Matchups(ctx context.Context, week int, season string) ([]model.Matchup, error) {
	filters := map[string]any{"week": week}
	if season != "" {
		filters["season"] = season
	}
	rows, err := s.backend.Query(ctx, QuerySpec{
		Table: "matchups",
		Select: []string{
			"week", "season", "team_name", "opponent_name", "points", "opponent_points",
		},
		Filters: filters,
		OrderBy: "points",
		Desc:    true,
	})
	if err != nil {
		return nil, eris.Wrap(err, "league: matchups")
	}

	matchups := make([]model.Matchup, 0, len(rows))
	for _, r := range rows {
		matchups = append(matchups, model.Matchup{
			Week:           asInt(r["week"]),
			Season:         asString(r["season"]),
			TeamName:       asString(r["team_name"]),
			OpponentName:   asString(r["opponent_name"]),
			Points:         asFloat(r["points"]),
			OpponentPoints: asFloat(r["opponent_points"]),
		})
	}
	return matchups, nil
}
