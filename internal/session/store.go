// Package session holds per-conversation turn history. Sessions are keyed
// by caller-supplied identifiers and isolated from each other: concurrent
// turns on different sessions never contend on a shared lock.
package session

import (
	"context"

	"github.com/gridironhq/league-analyst/internal/model"
)

// Store is the session backend contract. Get on an unknown ID returns an
// empty history, not an error; Reset clears history but leaves the ID
// usable for the next Append.
type Store interface {
	Get(ctx context.Context, id string) ([]model.Turn, error)
	Append(ctx context.Context, id string, turn model.Turn) error
	Reset(ctx context.Context, id string) error
}
