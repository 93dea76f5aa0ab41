package leaguesync

import (
	"context"
	"fmt"
	"strings"

	"github.com/gridironhq/league-analyst/internal/db"
	"github.com/gridironhq/league-analyst/internal/league"
)

// PostgresTarget writes sync rows through the pooled bulk upsert.
type PostgresTarget struct {
	pool db.Pool
}

// NewPostgresTarget wraps an open pool.
func NewPostgresTarget(pool db.Pool) *PostgresTarget {
	return &PostgresTarget{pool: pool}
}

func (t *PostgresTarget) Upsert(ctx context.Context, table string, columns, conflictKeys []string, rows [][]any) error {
	_, err := db.BulkUpsert(ctx, t.pool, db.UpsertConfig{
		Table:        table,
		Columns:      columns,
		ConflictKeys: conflictKeys,
	}, rows)
	return err
}

// SQLiteTarget writes sync rows into an embedded sqlite database with
// INSERT OR REPLACE. Row volumes are small enough that statement-per-row
// is fine here.
type SQLiteTarget struct {
	backend *league.SQLiteBackend
}

// NewSQLiteTarget wraps a migrated sqlite backend.
func NewSQLiteTarget(backend *league.SQLiteBackend) *SQLiteTarget {
	return &SQLiteTarget{backend: backend}
}

func (t *SQLiteTarget) Upsert(ctx context.Context, table string, columns, _ []string, rows [][]any) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders)
	for _, row := range rows {
		if err := t.backend.Exec(ctx, stmt, row...); err != nil {
			return err
		}
	}
	return nil
}
