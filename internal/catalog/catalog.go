// Package catalog is the static registry of data-fetch operations: which
// operations exist, what parameters they take, and which backing service
// each belongs to. It is populated once at startup and read-only after.
package catalog

import (
	"github.com/rotisserie/eris"

	"github.com/gridironhq/league-analyst/internal/model"
	"github.com/gridironhq/league-analyst/pkg/anthropic"
)

// Param describes one operation parameter.
type Param struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // JSON schema type: "string", "integer"
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Operation is one data-fetch capability.
type Operation struct {
	Name        string           `json:"name"`
	Source      model.DataSource `json:"source"`
	Description string           `json:"description"`
	Params      []Param          `json:"params,omitempty"`
	Returns     string           `json:"returns"`
}

// Catalog maps operation names to their definitions.
type Catalog struct {
	ops   map[string]Operation
	order []string
}

// New builds a catalog from the given operations. Duplicate names error.
func New(ops ...Operation) (*Catalog, error) {
	c := &Catalog{ops: make(map[string]Operation, len(ops))}
	for _, op := range ops {
		if _, exists := c.ops[op.Name]; exists {
			return nil, eris.Errorf("catalog: duplicate operation %s", op.Name)
		}
		c.ops[op.Name] = op
		c.order = append(c.order, op.Name)
	}
	return c, nil
}

// Default returns the catalog of all operations the assistant can plan
// against: league-store queries plus external NFL stat lookups.
func Default() *Catalog {
	c, err := New(
		Operation{
			Name:        "find_team",
			Source:      model.SourceLeague,
			Description: "Find a fantasy team by (possibly misspelled or partial) name and return its record and roster.",
			Params: []Param{
				{Name: "team", Type: "string", Description: "Team or owner name to search for", Required: true},
			},
			Returns: "team record with wins, losses, points, and roster player IDs",
		},
		Operation{
			Name:        "find_player",
			Source:      model.SourceLeague,
			Description: "Find an NFL player by (possibly misspelled or partial) name.",
			Params: []Param{
				{Name: "player", Type: "string", Description: "Player name to search for", Required: true},
			},
			Returns: "player with position, pro team, and fantasy ownership",
		},
		Operation{
			Name:        "list_teams",
			Source:      model.SourceLeague,
			Description: "List every team in the league with its owner.",
			Returns:     "all teams with owner display names",
		},
		Operation{
			Name:        "get_standings",
			Source:      model.SourceLeague,
			Description: "Current league standings ordered by record and points.",
			Returns:     "teams ordered by wins then points",
		},
		Operation{
			Name:        "get_recent_trades",
			Source:      model.SourceLeague,
			Description: "Trades in the league, newest first. Use a high limit for any best/worst/most analysis.",
			Params: []Param{
				{Name: "limit", Type: "integer", Description: "Maximum trades to return"},
				{Name: "season", Type: "string", Description: "Restrict to one season"},
			},
			Returns: "trades with week, season, and assets moved per team",
		},
		Operation{
			Name:        "get_trade_counts_by_team",
			Source:      model.SourceLeague,
			Description: "How many trades each team has made, all time.",
			Returns:     "per-team trade totals",
		},
		Operation{
			Name:        "get_team_trade_history",
			Source:      model.SourceLeague,
			Description: "All trades involving one team.",
			Params: []Param{
				{Name: "team", Type: "string", Description: "Team name", Required: true},
			},
			Returns: "trades involving the team, newest first",
		},
		Operation{
			Name:        "get_weekly_matchups",
			Source:      model.SourceLeague,
			Description: "Matchup scores for one week.",
			Params: []Param{
				{Name: "week", Type: "integer", Description: "Week number", Required: true},
				{Name: "season", Type: "string", Description: "Season, defaults to current"},
			},
			Returns: "pairs of teams with points scored",
		},
		Operation{
			Name:        "query_with_filters",
			Source:      model.SourceLeague,
			Description: "Generic filtered query against a league table with optional one-hop join, sort, and limit.",
			Params: []Param{
				{Name: "table", Type: "string", Description: "Table name", Required: true},
				{Name: "filters", Type: "object", Description: "Equality filters, column to value"},
				{Name: "order_by", Type: "string", Description: "Sort column"},
				{Name: "limit", Type: "integer", Description: "Row limit"},
			},
			Returns: "matching rows",
		},
		Operation{
			Name:        "get_player_season_stats",
			Source:      model.SourceStats,
			Description: "Real NFL season statistics for a player.",
			Params: []Param{
				{Name: "player", Type: "string", Description: "Player full name", Required: true},
				{Name: "season", Type: "integer", Description: "Season year, defaults to current"},
			},
			Returns: "season stat line (yards, touchdowns, games played, ...)",
		},
		Operation{
			Name:        "get_player_game_stats",
			Source:      model.SourceStats,
			Description: "Per-game NFL statistics for a player.",
			Params: []Param{
				{Name: "player", Type: "string", Description: "Player full name", Required: true},
				{Name: "date", Type: "string", Description: "Game date, ISO format"},
				{Name: "season", Type: "integer", Description: "Season year, defaults to current"},
			},
			Returns: "per-game stat lines",
		},
		Operation{
			Name:        "get_nfl_standings",
			Source:      model.SourceStats,
			Description: "Real NFL standings.",
			Params: []Param{
				{Name: "season", Type: "integer", Description: "Season year, defaults to current"},
			},
			Returns: "NFL teams with win/loss records",
		},
	)
	if err != nil {
		// Default() definitions are compile-time constants; a duplicate is
		// a programming error.
		panic(err)
	}
	return c
}

// Get returns the operation with the given name.
func (c *Catalog) Get(name string) (Operation, bool) {
	op, ok := c.ops[name]
	return op, ok
}

// Operations returns all operations in registration order.
func (c *Catalog) Operations() []Operation {
	out := make([]Operation, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.ops[name])
	}
	return out
}

// BySource returns all operations backed by the given service.
func (c *Catalog) BySource(src model.DataSource) []Operation {
	var out []Operation
	for _, name := range c.order {
		if op := c.ops[name]; op.Source == src {
			out = append(out, op)
		}
	}
	return out
}

// ToolDefs renders the catalog as Anthropic tool definitions. Only the
// fast-path flow hands these to the model; the data-first flow plans
// explicitly and never exposes tools to the reasoning backend.
func (c *Catalog) ToolDefs() []anthropic.ToolDef {
	defs := make([]anthropic.ToolDef, 0, len(c.order))
	for _, name := range c.order {
		op := c.ops[name]
		props := make(map[string]any, len(op.Params))
		var required []string
		for _, p := range op.Params {
			props[p.Name] = map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
			if p.Required {
				required = append(required, p.Name)
			}
		}
		defs = append(defs, anthropic.ToolDef{
			Name:        op.Name,
			Description: op.Description,
			Properties:  props,
			Required:    required,
		})
	}
	return defs
}
