package engine

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironhq/league-analyst/internal/catalog"
	"github.com/gridironhq/league-analyst/internal/executor"
	"github.com/gridironhq/league-analyst/internal/intent"
	"github.com/gridironhq/league-analyst/internal/model"
	"github.com/gridironhq/league-analyst/internal/planner"
	"github.com/gridironhq/league-analyst/internal/resolver"
	"github.com/gridironhq/league-analyst/internal/session"
	"github.com/gridironhq/league-analyst/internal/synthesis"
	"github.com/gridironhq/league-analyst/pkg/anthropic"
)

// scriptedLLM replays canned responses and records every request.
type scriptedLLM struct {
	responses []*anthropic.MessageResponse
	requests  []anthropic.MessageRequest
	err       error
}

func (s *scriptedLLM) CreateMessage(_ context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	if len(s.responses) == 0 {
		return textResponse("out of script"), nil
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content:    []anthropic.ContentBlock{{Type: "text", Text: text}},
		StopReason: "end_turn",
	}
}

func toolUseResponse(id, name, input string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{
			Type: "tool_use",
			ToolUse: &anthropic.ToolUse{
				ID: id, Name: name, Input: json.RawMessage(input),
			},
		}},
		StopReason: "tool_use",
	}
}

type stubFetcher struct {
	mu       sync.Mutex
	payloads map[string]any
	err      error
	calls    []string
	params   map[string]map[string]any
}

func (s *stubFetcher) Fetch(_ context.Context, op string, params map[string]any) (any, error) {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	if s.params == nil {
		s.params = map[string]map[string]any{}
	}
	s.params[op] = params
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.payloads[op]; ok {
		return p, nil
	}
	return map[string]any{"op": op}, nil
}

func newTestEngine(llm anthropic.Client, league, stats executor.Fetcher) *Engine {
	reg := model.NewRegistry([]model.Entity{
		{ID: "1", Kind: model.EntityTeam, Name: "The Jaxon 5", Wins: 10, Losses: 3},
		{ID: "2", Kind: model.EntityTeam, Name: "Field Goal Fanatics"},
		{ID: "3", Kind: model.EntityPlayer, Name: "Justin Jefferson", Position: "WR", ProTeam: "MIN"},
	})
	res := resolver.New(reg)

	fetchers := map[model.DataSource]executor.Fetcher{}
	if league != nil {
		fetchers[model.SourceLeague] = league
	}
	if stats != nil {
		fetchers[model.SourceStats] = stats
	}

	return New(Params{
		Classifier:  intent.New(),
		Planner:     planner.New(catalog.Default(), nil, res, 100),
		Executor:    executor.New(res, fetchers, time.Second, 4),
		Synthesizer: synthesis.New(llm, "test-model", 500),
		Resolver:    res,
		Catalog:     catalog.Default(),
		Sessions:    session.NewMemoryStore(),
		LLM:         llm,
		Fetchers:    fetchers,
		Model:       "test-model",
		MaxTokens:   500,
	})
}

func TestAsk_DataFirstSuppliesAllDataUpFront(t *testing.T) {
	llm := &scriptedLLM{responses: []*anthropic.MessageResponse{
		textResponse("The best trade was clearly t1."),
	}}
	league := &stubFetcher{payloads: map[string]any{
		"get_recent_trades": []model.Trade{{ID: "t1", Season: "2024", Week: 3}},
		"get_standings":     []model.Standing{{TeamName: "The Jaxon 5", Wins: 10}},
	}}
	e := newTestEngine(llm, league, nil)

	answer, err := e.Ask(context.Background(), "s1", "Who made the best trade in league history?")
	require.NoError(t, err)
	assert.Equal(t, "The best trade was clearly t1.", answer)

	// One synthesis call, no tools exposed, data already in the prompt.
	require.Len(t, llm.requests, 1)
	assert.Empty(t, llm.requests[0].Tools)
	assert.Contains(t, llm.requests[0].Messages[0].Content, "Season 2024")

	// Turn recorded.
	history, err := e.p.Sessions.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Who made the best trade in league history?", history[0].Question)
}

func TestAsk_PlayerQuestionFetchesStatsUnderPlayerParam(t *testing.T) {
	llm := &scriptedLLM{responses: []*anthropic.MessageResponse{
		textResponse("Jefferson leads all receivers with 1,749 yards."),
	}}
	stats := &stubFetcher{payloads: map[string]any{
		"get_player_season_stats": map[string]any{"player": "Justin Jefferson", "rec_yards": 1749},
	}}
	e := newTestEngine(llm, &stubFetcher{}, stats)

	answer, err := e.Ask(context.Background(), "s1",
		"How many receiving yards does Justin Jefferson have compared to every other receiver?")
	require.NoError(t, err)
	assert.Equal(t, "Jefferson leads all receivers with 1,749 yards.", answer)

	// The mention settled to a player, so the stats fetch ran with the
	// canonical name bound under the player param.
	require.Contains(t, stats.calls, "get_player_season_stats")
	assert.Equal(t, "Justin Jefferson", stats.params["get_player_season_stats"]["player"])
}

func TestAsk_FastPathResolvesFuzzyToolArguments(t *testing.T) {
	llm := &scriptedLLM{responses: []*anthropic.MessageResponse{
		toolUseResponse("tu_1", "find_team", `{"team":"Jaxson 5"}`),
		textResponse("The Jaxon 5 are 10-3."),
	}}
	league := &stubFetcher{payloads: map[string]any{
		"find_team": model.Entity{Name: "The Jaxon 5", Wins: 10, Losses: 3},
	}}
	e := newTestEngine(llm, league, nil)

	answer, err := e.Ask(context.Background(), "s1", `What is the record for "Jaxson 5"?`)
	require.NoError(t, err)
	assert.Equal(t, "The Jaxon 5 are 10-3.", answer)

	// The tool round trip happened with tools attached.
	require.Len(t, llm.requests, 2)
	assert.NotEmpty(t, llm.requests[0].Tools)

	// The second request carries the tool result for the canonical name.
	last := llm.requests[1].Messages
	require.NotEmpty(t, last)
	results := last[len(last)-1].ToolResults
	require.Len(t, results, 1)
	assert.Equal(t, "tu_1", results[0].ToolUseID)
	assert.False(t, results[0].IsError)
}

func TestAsk_FastPathFallsBackToDataFirst(t *testing.T) {
	// The model never stops calling tools; after the budget is spent the
	// engine answers through the full pipeline.
	llm := &scriptedLLM{responses: []*anthropic.MessageResponse{
		toolUseResponse("tu_1", "find_team", `{"team":"The Jaxon 5"}`),
		toolUseResponse("tu_2", "find_team", `{"team":"The Jaxon 5"}`),
		toolUseResponse("tu_3", "find_team", `{"team":"The Jaxon 5"}`),
		textResponse("pipeline answer"),
	}}
	league := &stubFetcher{}
	e := newTestEngine(llm, league, nil)

	answer, err := e.Ask(context.Background(), "s1", `What is the record for "The Jaxon 5"?`)
	require.NoError(t, err)
	assert.Equal(t, "pipeline answer", answer)
}

func TestAsk_BackendDownFailsTurnButKeepsSession(t *testing.T) {
	ctx := context.Background()

	llm := &scriptedLLM{responses: []*anthropic.MessageResponse{
		textResponse("first answer"),
	}}
	league := &stubFetcher{}
	e := newTestEngine(llm, league, nil)

	_, err := e.Ask(ctx, "s1", "Who made the most trades?")
	require.NoError(t, err)

	llm.err = eris.New("connection refused")
	_, err = e.Ask(ctx, "s1", "And the least?")
	require.Error(t, err)
	assert.True(t, model.IsBackendUnavailable(err))

	// The failed turn is not recorded; the earlier one survives.
	history, err := e.p.Sessions.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "first answer", history[0].Answer)
}

func TestAsk_AllFetchesFailedYieldsHonestAnswer(t *testing.T) {
	llm := &scriptedLLM{}
	league := &stubFetcher{err: eris.New("database is down")}
	e := newTestEngine(llm, league, nil)

	answer, err := e.Ask(context.Background(), "s1", "Who made the best trade ever?")
	require.NoError(t, err)
	assert.Contains(t, answer, "can't answer")
	// Synthesis never reached the backend.
	assert.Empty(t, llm.requests)
}

func TestReset_ClearsHistory(t *testing.T) {
	ctx := context.Background()
	llm := &scriptedLLM{responses: []*anthropic.MessageResponse{textResponse("a")}}
	e := newTestEngine(llm, &stubFetcher{}, nil)

	_, err := e.Ask(ctx, "s1", "Who made the most trades?")
	require.NoError(t, err)
	require.NoError(t, e.Reset(ctx, "s1"))

	history, err := e.p.Sessions.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, history)
}
