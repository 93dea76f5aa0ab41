package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataContext_CopiesSlots(t *testing.T) {
	slots := map[string]StepOutcome{
		"standings": {Payload: []string{"a", "b"}},
	}
	dc := NewDataContext("who is in first?", slots)

	// Mutating the source map after construction must not leak in.
	slots["extra"] = StepOutcome{Payload: 1}
	assert.Equal(t, 1, dc.Len())

	o, ok := dc.Slot("standings")
	require.True(t, ok)
	assert.True(t, o.OK())
}

func TestDataContext_FailuresAndDegraded(t *testing.T) {
	dc := NewDataContext("q", map[string]StepOutcome{
		"a": {Payload: 1},
		"b": {Err: &StepError{Step: "b", Kind: "timeout", Message: "deadline exceeded"}},
		"c": {Err: &StepError{Step: "c", Kind: "fetch_failed", Message: "boom"}},
	})

	assert.True(t, dc.Degraded())
	assert.False(t, dc.Empty())

	fails := dc.Failures()
	require.Len(t, fails, 2)
	// Deterministic order by slot name.
	assert.Equal(t, "b", fails[0].Step)
	assert.Equal(t, "c", fails[1].Step)
}

func TestDataContext_Empty(t *testing.T) {
	dc := NewDataContext("q", map[string]StepOutcome{
		"only": {Err: &StepError{Step: "only", Kind: "fetch_failed", Message: "x"}},
	})
	assert.True(t, dc.Empty())

	none := NewDataContext("q", nil)
	assert.True(t, none.Empty())
	assert.Equal(t, 0, none.Len())
}

func TestExecutionPlan_FetchLimit(t *testing.T) {
	p := ExecutionPlan{Steps: []ExecutionStep{
		{ID: "r", Kind: StepResolve},
		{ID: "trades", Kind: StepFetch, Operation: "get_recent_trades", Params: map[string]any{"limit": 500}},
		{ID: "counts", Kind: StepFetch, Operation: "get_trade_counts_by_team"},
	}}
	assert.Equal(t, 500, p.FetchLimit("get_recent_trades"))
	assert.Equal(t, 0, p.FetchLimit("get_trade_counts_by_team"))

	_, ok := p.Step("trades")
	assert.True(t, ok)
	_, ok = p.Step("missing")
	assert.False(t, ok)
}
