package stats

import (
	"context"

	"github.com/rotisserie/eris"
)

// Fetcher adapts the client to the executor's fetch contract.
type Fetcher struct {
	client *Client
}

// NewFetcher wraps a client.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch executes one stats catalog operation.
func (f *Fetcher) Fetch(ctx context.Context, operation string, params map[string]any) (any, error) {
	season := intParam(params, "season")
	switch operation {
	case "get_player_season_stats":
		player := stringParam(params, "player")
		if player == "" {
			return nil, eris.New("stats: get_player_season_stats requires player")
		}
		return f.client.PlayerSeasonStats(ctx, player, season)
	case "get_player_game_stats":
		player := stringParam(params, "player")
		if player == "" {
			return nil, eris.New("stats: get_player_game_stats requires player")
		}
		return f.client.PlayerGameStats(ctx, player, stringParam(params, "date"), season)
	case "get_nfl_standings":
		return f.client.NFLStandings(ctx, season)
	default:
		return nil, eris.Errorf("stats: unknown operation %s", operation)
	}
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
