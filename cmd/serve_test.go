package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironhq/league-analyst/internal/model"
)

type stubAsker struct {
	answer   string
	err      error
	sessions []string
	resets   []string
}

func (s *stubAsker) Ask(_ context.Context, sessionID, _ string) (string, error) {
	s.sessions = append(s.sessions, sessionID)
	return s.answer, s.err
}

func (s *stubAsker) Reset(_ context.Context, sessionID string) error {
	s.resets = append(s.resets, sessionID)
	return s.err
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServeHealth(t *testing.T) {
	handler := newRouter(&stubAsker{}, func(context.Context) error { return nil })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","store":"ok"}`, rec.Body.String())
}

func TestServeHealth_StoreDownIsDegraded(t *testing.T) {
	handler := newRouter(&stubAsker{}, func(context.Context) error {
		return eris.New("database is down")
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "degraded")
}

func TestServeAsk(t *testing.T) {
	stub := &stubAsker{answer: "The Jaxon 5 lead at 10-3."}
	handler := newRouter(stub, nil)

	rec := postJSON(t, handler, "/api/ask",
		`{"question":"who leads the league?","session_id":"s1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The Jaxon 5 lead at 10-3.", resp["answer"])
	assert.Equal(t, "s1", resp["session_id"])
	assert.Equal(t, []string{"s1"}, stub.sessions)
}

func TestServeAsk_GeneratesSessionID(t *testing.T) {
	stub := &stubAsker{answer: "ok"}
	handler := newRouter(stub, nil)

	rec := postJSON(t, handler, "/api/ask", `{"question":"standings?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["session_id"])
}

func TestServeAsk_MissingQuestion(t *testing.T) {
	handler := newRouter(&stubAsker{}, nil)

	rec := postJSON(t, handler, "/api/ask", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeAsk_BackendDownIsBadGateway(t *testing.T) {
	stub := &stubAsker{err: &model.BackendUnavailableError{
		Service: "anthropic", Err: eris.New("connection refused"),
	}}
	handler := newRouter(stub, nil)

	rec := postJSON(t, handler, "/api/ask", `{"question":"standings?","session_id":"s1"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServeReset(t *testing.T) {
	stub := &stubAsker{}
	handler := newRouter(stub, nil)

	rec := postJSON(t, handler, "/api/reset", `{"session_id":"s1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"s1"}, stub.resets)

	rec = postJSON(t, handler, "/api/reset", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
