package league

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// SQLiteBackend runs league queries against an embedded sqlite database.
// It is the zero-infrastructure option for single-user CLI use; the Sleeper
// sync writes the same tables postgres carries.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLite opens (and if needed creates) the database at the given path
// and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteBackend, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "league: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := sqldb.Exec(pragma); err != nil {
			sqldb.Close()
			return nil, eris.Wrapf(err, "league: sqlite exec %s", pragma)
		}
	}
	return &SQLiteBackend{db: sqldb}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS users (
	user_id      TEXT PRIMARY KEY,
	league_id    TEXT NOT NULL,
	display_name TEXT NOT NULL,
	team_name    TEXT
);

CREATE TABLE IF NOT EXISTS rosters (
	roster_id      INTEGER PRIMARY KEY,
	league_id      TEXT NOT NULL,
	owner_id       TEXT REFERENCES users(user_id),
	wins           INTEGER NOT NULL DEFAULT 0,
	losses         INTEGER NOT NULL DEFAULT 0,
	ties           INTEGER NOT NULL DEFAULT 0,
	points_for     REAL NOT NULL DEFAULT 0,
	points_against REAL NOT NULL DEFAULT 0,
	players        TEXT,
	starters       TEXT,
	reserve        TEXT
);

CREATE TABLE IF NOT EXISTS players (
	player_id TEXT PRIMARY KEY,
	full_name TEXT NOT NULL,
	position  TEXT,
	team      TEXT
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id     TEXT NOT NULL,
	season       TEXT NOT NULL,
	week         INTEGER NOT NULL,
	team_name    TEXT NOT NULL,
	received     TEXT,
	completed_at DATETIME,
	PRIMARY KEY (trade_id, team_name)
);

CREATE TABLE IF NOT EXISTS matchups (
	league_id       TEXT NOT NULL,
	season          TEXT NOT NULL,
	week            INTEGER NOT NULL,
	team_name       TEXT NOT NULL,
	opponent_name   TEXT,
	points          REAL NOT NULL DEFAULT 0,
	opponent_points REAL NOT NULL DEFAULT 0,
	PRIMARY KEY (league_id, season, week, team_name)
);

CREATE INDEX IF NOT EXISTS idx_trades_season ON trades(season);
CREATE INDEX IF NOT EXISTS idx_matchups_week ON matchups(week);
CREATE INDEX IF NOT EXISTS idx_players_name ON players(full_name);
`

// Migrate creates the league schema if missing.
func (b *SQLiteBackend) Migrate(ctx context.Context) error {
	_, err := b.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "league: sqlite migrate")
}

// Query builds and runs the spec, returning generic rows.
func (b *SQLiteBackend) Query(ctx context.Context, spec QuerySpec) ([]Row, error) {
	query, args, err := BuildQuery(spec, DialectSQLite)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "league: query %s", spec.Table)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrap(err, "league: columns")
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrap(err, "league: scan row")
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "league: iterate %s", spec.Table)
	}
	return out, nil
}

// Count returns the table's row count.
func (b *SQLiteBackend) Count(ctx context.Context, table string) (int, error) {
	if !allowedTables[table] {
		return 0, eris.Errorf("league: table %q not queryable", table)
	}
	var n int
	if err := b.db.QueryRowContext(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "league: count %s", table)
	}
	return n, nil
}

// Exec runs a raw statement; the Sleeper sync uses it for sqlite upserts.
func (b *SQLiteBackend) Exec(ctx context.Context, query string, args ...any) error {
	_, err := b.db.ExecContext(ctx, query, args...)
	return eris.Wrap(err, "league: sqlite exec")
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
