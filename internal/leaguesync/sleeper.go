// Package leaguesync pulls league data from the Sleeper API into the
// local store. The QA pipeline never talks to Sleeper directly; it reads
// whatever the last sync wrote.
package leaguesync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gridironhq/league-analyst/internal/resilience"
)

// DefaultBaseURL is the public Sleeper API.
const DefaultBaseURL = "https://api.sleeper.app/v1"

// SleeperClient is a read-only Sleeper API client.
type SleeperClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	log     *zap.Logger
}

// ClientOption configures a SleeperClient.
type ClientOption func(*SleeperClient)

// WithBaseURL points the client at a different host; tests use httptest.
func WithBaseURL(u string) ClientOption {
	return func(c *SleeperClient) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *SleeperClient) { c.http = h }
}

// NewSleeperClient returns a client with Sleeper-friendly rate limits.
func NewSleeperClient(opts ...ClientOption) *SleeperClient {
	c := &SleeperClient{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		retry:   resilience.DefaultRetryConfig(),
		log:     zap.L().Named("sleeper"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SleeperUser is a league member.
type SleeperUser struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Metadata    struct {
		TeamName string `json:"team_name"`
	} `json:"metadata"`
}

// SleeperRoster is one team's roster and record.
type SleeperRoster struct {
	RosterID int      `json:"roster_id"`
	OwnerID  string   `json:"owner_id"`
	Players  []string `json:"players"`
	Starters []string `json:"starters"`
	Reserve  []string `json:"reserve"`
	Settings struct {
		Wins               int `json:"wins"`
		Losses             int `json:"losses"`
		Ties               int `json:"ties"`
		Fpts               int `json:"fpts"`
		FptsDecimal        int `json:"fpts_decimal"`
		FptsAgainst        int `json:"fpts_against"`
		FptsAgainstDecimal int `json:"fpts_against_decimal"`
	} `json:"settings"`
}

// PointsFor reconstructs the fractional score Sleeper splits across two
// integer fields.
func (r SleeperRoster) PointsFor() float64 {
	return float64(r.Settings.Fpts) + float64(r.Settings.FptsDecimal)/100
}

// PointsAgainst is the opposing total.
func (r SleeperRoster) PointsAgainst() float64 {
	return float64(r.Settings.FptsAgainst) + float64(r.Settings.FptsAgainstDecimal)/100
}

// SleeperMatchup is one roster's side of a weekly matchup.
type SleeperMatchup struct {
	RosterID  int     `json:"roster_id"`
	MatchupID int     `json:"matchup_id"`
	Points    float64 `json:"points"`
}

// SleeperTransaction is a waiver/free-agent/trade transaction.
type SleeperTransaction struct {
	TransactionID string         `json:"transaction_id"`
	Type          string         `json:"type"`
	Status        string         `json:"status"`
	Adds          map[string]int `json:"adds"` // player ID -> receiving roster ID
	RosterIDs     []int          `json:"roster_ids"`
	StatusUpdated int64          `json:"status_updated"` // unix millis
}

// SleeperPlayer is one NFL player from the global players dump.
type SleeperPlayer struct {
	FullName string `json:"full_name"`
	Position string `json:"position"`
	Team     string `json:"team"`
}

// Users returns the league's members.
func (c *SleeperClient) Users(ctx context.Context, leagueID string) ([]SleeperUser, error) {
	var out []SleeperUser
	err := c.get(ctx, fmt.Sprintf("/league/%s/users", leagueID), &out)
	return out, err
}

// Rosters returns the league's rosters.
func (c *SleeperClient) Rosters(ctx context.Context, leagueID string) ([]SleeperRoster, error) {
	var out []SleeperRoster
	err := c.get(ctx, fmt.Sprintf("/league/%s/rosters", leagueID), &out)
	return out, err
}

// Matchups returns one week's matchups.
func (c *SleeperClient) Matchups(ctx context.Context, leagueID string, week int) ([]SleeperMatchup, error) {
	var out []SleeperMatchup
	err := c.get(ctx, fmt.Sprintf("/league/%s/matchups/%d", leagueID, week), &out)
	return out, err
}

// Transactions returns one week's transactions.
func (c *SleeperClient) Transactions(ctx context.Context, leagueID string, week int) ([]SleeperTransaction, error) {
	var out []SleeperTransaction
	err := c.get(ctx, fmt.Sprintf("/league/%s/transactions/%d", leagueID, week), &out)
	return out, err
}

// Players returns the full NFL player dump, keyed by player ID. It is a
// large response; callers fetch it once per sync.
func (c *SleeperClient) Players(ctx context.Context) (map[string]SleeperPlayer, error) {
	var out map[string]SleeperPlayer
	err := c.get(ctx, "/players/nfl", &out)
	return out, err
}

func (c *SleeperClient) get(ctx context.Context, path string, out any) error {
	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "sleeper: rate limit wait")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, eris.Wrap(err, "sleeper: build request")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "sleeper: GET %s", path)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
		if err != nil {
			return nil, eris.Wrap(err, "sleeper: read body")
		}
		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("sleeper: %s returned %d", path, resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "sleeper: decode %s", path)
	}
	return nil
}
