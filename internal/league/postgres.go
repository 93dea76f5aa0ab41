package league

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/gridironhq/league-analyst/internal/db"
)

// PostgresBackend runs league queries against a pgx pool.
type PostgresBackend struct {
	pool db.Pool
}

// NewPostgres connects a pool with store-appropriate sizing.
func NewPostgres(ctx context.Context, connString string) (*PostgresBackend, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "league: parse postgres config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "league: connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "league: ping postgres")
	}
	return &PostgresBackend{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; tests hand in a pgxmock pool.
func NewPostgresFromPool(pool db.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool}
}

// Pool exposes the underlying pool; the Sleeper sync writes through it.
func (b *PostgresBackend) Pool() db.Pool {
	return b.pool
}

const postgresMigration = `
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
	points_for     DOUBLE PRECISION NOT NULL DEFAULT 0,
	points_against DOUBLE PRECISION NOT NULL DEFAULT 0,
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
	completed_at TIMESTAMPTZ,
	PRIMARY KEY (trade_id, team_name)
);

CREATE TABLE IF NOT EXISTS matchups (
	league_id       TEXT NOT NULL,
	season          TEXT NOT NULL,
	week            INTEGER NOT NULL,
	team_name       TEXT NOT NULL,
	opponent_name   TEXT,
	points          DOUBLE PRECISION NOT NULL DEFAULT 0,
	opponent_points DOUBLE PRECISION NOT NULL DEFAULT 0,
	PRIMARY KEY (league_id, season, week, team_name)
);

CREATE INDEX IF NOT EXISTS idx_trades_season ON trades(season);
CREATE INDEX IF NOT EXISTS idx_matchups_week ON matchups(week);
CREATE INDEX IF NOT EXISTS idx_players_name ON players(full_name);
`

// Migrate creates the league schema if missing.
func (b *PostgresBackend) Migrate(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "league: postgres migrate")
}

// Query builds and runs the spec, returning generic rows.
func (b *PostgresBackend) Query(ctx context.Context, spec QuerySpec) ([]Row, error) {
	sql, args, err := BuildQuery(spec, DialectPostgres)
	if err != nil {
		return nil, err
	}

	rows, err := b.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, eris.Wrapf(err, "league: query %s", spec.Table)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, eris.Wrap(err, "league: read row")
		}
		row := make(Row, len(fields))
		for i, f := range fields {
			row[f.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "league: iterate %s", spec.Table)
	}
	return out, nil
}

// Count returns the table's row count.
func (b *PostgresBackend) Count(ctx context.Context, table string) (int, error) {
	if !allowedTables[table] {
		return 0, eris.Errorf("league: table %q not queryable", table)
	}
	var n int
	if err := b.pool.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s", table)).Scan(&n); err != nil {
		return 0, eris.Wrapf(err, "league: count %s", table)
	}
	return n, nil
}

// Close releases the pool.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
