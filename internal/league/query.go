// Package league is the relational store adapter for synced league data:
// teams, rosters, players, trades, and matchups. It runs on postgres
// (pgx pool) or embedded sqlite, sharing one query builder between the
// two, and exposes both a generic filtered query and the convenience
// reads the catalog operations map onto.
package league

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// QuerySpec describes one generic filtered query: equality filters, an
// optional one-hop join pulling named columns from a related table, sort,
// and limit. It is the store-level contract behind query_with_filters.
type QuerySpec struct {
	Table   string
	Select  []string
	Filters map[string]any
	Join    *JoinSpec
	OrderBy string
	Desc    bool
	Limit   int
}

// JoinSpec is a single inner join to a related table.
type JoinSpec struct {
	Table      string
	LocalKey   string
	ForeignKey string
	Columns    []string
}

// Dialect selects the placeholder style for the target engine.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

func (d Dialect) placeholder(n int) string {
	if d == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Tables the generic query surface may touch. Identifiers arrive from the
// reasoning backend on the fast path, so they are allow-listed rather
// than trusted.
var allowedTables = map[string]bool{
	"users":        true,
	"rosters":      true,
	"players":      true,
	"trades":       true,
	"matchups":     true,
	"transactions": true,
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func validIdent(s string) bool {
	return identPattern.MatchString(s)
}

// BuildQuery renders a QuerySpec into SQL and its ordered arguments.
func BuildQuery(spec QuerySpec, d Dialect) (string, []any, error) {
	if !allowedTables[spec.Table] {
		return "", nil, eris.Errorf("league: table %q not queryable", spec.Table)
	}

	cols := spec.Select
	if len(cols) == 0 {
		cols = []string{spec.Table + ".*"}
	} else {
		qualified := make([]string, len(cols))
		for i, c := range cols {
			if !validIdent(c) {
				return "", nil, eris.Errorf("league: bad column %q", c)
			}
			qualified[i] = spec.Table + "." + c
		}
		cols = qualified
	}

	if spec.Join != nil {
		if !allowedTables[spec.Join.Table] {
			return "", nil, eris.Errorf("league: join table %q not queryable", spec.Join.Table)
		}
		if !validIdent(spec.Join.LocalKey) || !validIdent(spec.Join.ForeignKey) {
			return "", nil, eris.New("league: bad join keys")
		}
		for _, c := range spec.Join.Columns {
			if !validIdent(c) {
				return "", nil, eris.Errorf("league: bad join column %q", c)
			}
			cols = append(cols, spec.Join.Table+"."+c)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), spec.Table)

	if spec.Join != nil {
		fmt.Fprintf(&b, " JOIN %s ON %s.%s = %s.%s",
			spec.Join.Table,
			spec.Table, spec.Join.LocalKey,
			spec.Join.Table, spec.Join.ForeignKey)
	}

	var args []any
	if len(spec.Filters) > 0 {
		keys := make([]string, 0, len(spec.Filters))
		for k := range spec.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		clauses := make([]string, 0, len(keys))
		for _, k := range keys {
			if !validIdent(k) {
				return "", nil, eris.Errorf("league: bad filter column %q", k)
			}
			args = append(args, spec.Filters[k])
			clauses = append(clauses, fmt.Sprintf("%s.%s = %s", spec.Table, k, d.placeholder(len(args))))
		}
		b.WriteString(" WHERE " + strings.Join(clauses, " AND "))
	}

	if spec.OrderBy != "" {
		if !validIdent(spec.OrderBy) {
			return "", nil, eris.Errorf("league: bad order column %q", spec.OrderBy)
		}
		fmt.Fprintf(&b, " ORDER BY %s.%s", spec.Table, spec.OrderBy)
		if spec.Desc {
			b.WriteString(" DESC")
		}
	}

	if spec.Limit > 0 {
		args = append(args, spec.Limit)
		b.WriteString(" LIMIT " + d.placeholder(len(args)))
	}

	return b.String(), args, nil
}
