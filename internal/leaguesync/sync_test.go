package leaguesync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironhq/league-analyst/internal/league"
	"github.com/gridironhq/league-analyst/internal/model"
)

// newSleeperFixture serves canned Sleeper responses for a two-team,
// two-week league with one completed trade and one pending one.
func newSleeperFixture(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	serve := func(path, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		})
	}

	serve("/league/L1/users", `[
		{"user_id": "u1", "display_name": "nickroachy", "metadata": {"team_name": "The Jaxon 5"}},
		{"user_id": "u2", "display_name": "kicker_fan", "metadata": {}}
	]`)
	serve("/league/L1/rosters", `[
		{"roster_id": 1, "owner_id": "u1", "players": ["p1", "p2"], "starters": ["p1"],
		 "settings": {"wins": 10, "losses": 3, "fpts": 1500, "fpts_decimal": 42, "fpts_against": 1301, "fpts_against_decimal": 7}},
		{"roster_id": 2, "owner_id": "u2", "players": ["p3"],
		 "settings": {"wins": 3, "losses": 10, "fpts": 1200, "fpts_decimal": 0}}
	]`)
	serve("/league/L1/matchups/1", `[
		{"roster_id": 1, "matchup_id": 1, "points": 131.4},
		{"roster_id": 2, "matchup_id": 1, "points": 99.2}
	]`)
	serve("/league/L1/matchups/2", `[
		{"roster_id": 1, "matchup_id": 1, "points": 88.0},
		{"roster_id": 2, "matchup_id": 1, "points": 110.5}
	]`)
	serve("/league/L1/transactions/1", `[]`)
	serve("/league/L1/transactions/2", `[
		{"transaction_id": "t1", "type": "trade", "status": "complete",
		 "adds": {"p1": 2, "p3": 1}, "roster_ids": [1, 2], "status_updated": 1730000000000},
		{"transaction_id": "t2", "type": "trade", "status": "pending",
		 "adds": {"p2": 2}, "roster_ids": [1, 2], "status_updated": 1730000001000},
		{"transaction_id": "t3", "type": "waiver", "status": "complete",
		 "adds": {"p9": 1}, "roster_ids": [1], "status_updated": 1730000002000}
	]`)
	serve("/players/nfl", `{
		"p1": {"full_name": "AJ Brown", "position": "WR", "team": "PHI"},
		"p2": {"full_name": "Jalen Hurts", "position": "QB", "team": "PHI"},
		"p3": {"full_name": "Bijan Robinson", "position": "RB", "team": "ATL"},
		"p8": {"full_name": "Some Lineman", "position": "OT", "team": "DAL"},
		"p9": {"full_name": "", "position": "WR", "team": "NYJ"}
	}`)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newSyncedStore(t *testing.T) (*league.Store, Summary) {
	t.Helper()
	srv := newSleeperFixture(t)

	backend, err := league.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	require.NoError(t, backend.Migrate(context.Background()))

	client := NewSleeperClient(WithBaseURL(srv.URL))
	syncer := NewSyncer(client, NewSQLiteTarget(backend), "L1", "2024")

	summary, err := syncer.Run(context.Background(), 2)
	require.NoError(t, err)
	return league.NewStore(backend), summary
}

func TestSync_Summary(t *testing.T) {
	_, summary := newSyncedStore(t)

	assert.Equal(t, 2, summary.Users)
	assert.Equal(t, 2, summary.Rosters)
	// Lineman and the nameless player are filtered out of the dump.
	assert.Equal(t, 3, summary.Players)
	// Only the completed trade counts; the pending one and the waiver don't.
	assert.Equal(t, 1, summary.Trades)
	// Two teams, two weeks.
	assert.Equal(t, 4, summary.Matchups)
}

func TestSync_StandingsReadBack(t *testing.T) {
	store, _ := newSyncedStore(t)

	standings, err := store.Standings(context.Background())
	require.NoError(t, err)
	require.Len(t, standings, 2)

	assert.Equal(t, "The Jaxon 5", standings[0].TeamName)
	assert.Equal(t, 10, standings[0].Wins)
	assert.InDelta(t, 1500.42, standings[0].PointsFor, 0.001)
	assert.InDelta(t, 1301.07, standings[0].PointsAgainst, 0.001)

	// No team name set; the display name stands in.
	assert.Equal(t, "kicker_fan", standings[1].TeamName)
}

func TestSync_TradesTranslatePlayerNames(t *testing.T) {
	store, _ := newSyncedStore(t)

	trades, err := store.Trades(context.Background(), league.TradeFilter{})
	require.NoError(t, err)
	require.Len(t, trades, 1)
	require.Len(t, trades[0].Sides, 2)

	bySide := map[string][]string{}
	for _, side := range trades[0].Sides {
		bySide[side.TeamName] = side.Received
	}
	assert.Equal(t, []string{"Bijan Robinson"}, bySide["The Jaxon 5"])
	assert.Equal(t, []string{"AJ Brown"}, bySide["kicker_fan"])
	assert.Equal(t, 2, trades[0].Week)
	assert.Equal(t, "2024", trades[0].Season)
}

func TestSync_MatchupsDenormalizeOpponents(t *testing.T) {
	store, _ := newSyncedStore(t)

	matchups, err := store.Matchups(context.Background(), 1, "2024")
	require.NoError(t, err)
	require.Len(t, matchups, 2)

	byTeam := map[string]model.Matchup{}
	for _, m := range matchups {
		byTeam[m.TeamName] = m
	}
	jaxon := byTeam["The Jaxon 5"]
	assert.Equal(t, "kicker_fan", jaxon.OpponentName)
	assert.InDelta(t, 131.4, jaxon.Points, 0.001)
	assert.InDelta(t, 99.2, jaxon.OpponentPoints, 0.001)
}

func TestSync_Idempotent(t *testing.T) {
	srv := newSleeperFixture(t)

	backend, err := league.NewSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	require.NoError(t, backend.Migrate(context.Background()))

	client := NewSleeperClient(WithBaseURL(srv.URL))
	syncer := NewSyncer(client, NewSQLiteTarget(backend), "L1", "2024")

	_, err = syncer.Run(context.Background(), 2)
	require.NoError(t, err)
	_, err = syncer.Run(context.Background(), 2)
	require.NoError(t, err)

	store := league.NewStore(backend)
	n, err := store.Count(context.Background(), "matchups")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	n, err = store.Count(context.Background(), "trades")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
