package league

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery_FiltersSortLimit(t *testing.T) {
	sql, args, err := BuildQuery(QuerySpec{
		Table:   "trades",
		Select:  []string{"trade_id", "week"},
		Filters: map[string]any{"season": "2024"},
		OrderBy: "completed_at",
		Desc:    true,
		Limit:   250,
	}, DialectPostgres)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT trades.trade_id, trades.week FROM trades WHERE trades.season = $1 ORDER BY trades.completed_at DESC LIMIT $2",
		sql)
	assert.Equal(t, []any{"2024", 250}, args)
}

func TestBuildQuery_SQLitePlaceholders(t *testing.T) {
	sql, args, err := BuildQuery(QuerySpec{
		Table:   "matchups",
		Filters: map[string]any{"week": 7},
		Limit:   10,
	}, DialectSQLite)
	require.NoError(t, err)

	assert.Equal(t, "SELECT matchups.* FROM matchups WHERE matchups.week = ? LIMIT ?", sql)
	assert.Equal(t, []any{7, 10}, args)
}

func TestBuildQuery_OneHopJoin(t *testing.T) {
	sql, _, err := BuildQuery(QuerySpec{
		Table:  "rosters",
		Select: []string{"roster_id", "wins"},
		Join: &JoinSpec{
			Table:      "users",
			LocalKey:   "owner_id",
			ForeignKey: "user_id",
			Columns:    []string{"display_name", "team_name"},
		},
	}, DialectPostgres)
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT rosters.roster_id, rosters.wins, users.display_name, users.team_name FROM rosters JOIN users ON rosters.owner_id = users.user_id",
		sql)
}

func TestBuildQuery_FilterOrderIsDeterministic(t *testing.T) {
	spec := QuerySpec{
		Table:   "matchups",
		Filters: map[string]any{"week": 7, "season": "2024", "league_id": "L1"},
	}

	first, firstArgs, err := BuildQuery(spec, DialectPostgres)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		sql, args, err := BuildQuery(spec, DialectPostgres)
		require.NoError(t, err)
		assert.Equal(t, first, sql)
		assert.Equal(t, firstArgs, args)
	}
}

func TestBuildQuery_RejectsUnknownTable(t *testing.T) {
	_, _, err := BuildQuery(QuerySpec{Table: "pg_catalog"}, DialectPostgres)
	require.Error(t, err)
}

func TestBuildQuery_RejectsInjectionIdentifiers(t *testing.T) {
	cases := []QuerySpec{
		{Table: "trades", Select: []string{"week; DROP TABLE trades"}},
		{Table: "trades", OrderBy: "week--"},
		{Table: "trades", Filters: map[string]any{"week = 1 OR 1": 1}},
		{Table: "trades", Join: &JoinSpec{Table: "users", LocalKey: "owner_id", ForeignKey: "user_id", Columns: []string{"a b"}}},
	}
	for _, spec := range cases {
		_, _, err := BuildQuery(spec, DialectPostgres)
		assert.Error(t, err)
	}
}
