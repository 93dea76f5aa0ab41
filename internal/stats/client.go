// Package stats is the HTTP client for the external NFL statistics
// service: real-world season and per-game stat lines plus NFL standings.
// Calls are rate limited and retried; the season parameter defaults by
// the NFL calendar, never a hardcoded year.
package stats

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/gridironhq/league-analyst/internal/model"
	"github.com/gridironhq/league-analyst/internal/resilience"
)

// seasonRolloverMonth is when a new NFL season starts. September through
// December belong to the current calendar year's season; January through
// August still belong to the previous year's.
const seasonRolloverMonth = time.September

// CurrentSeason returns the NFL season in effect at the given instant.
func CurrentSeason(now time.Time) int {
	if now.Month() >= seasonRolloverMonth {
		return now.Year()
	}
	return now.Year() - 1
}

// Client talks to the stats service.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	retry   resilience.RetryConfig
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLimiter replaces the default rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithRetry replaces the default retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithClock overrides the season clock; tests pin it.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a stats client for the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
		retry:   resilience.DefaultRetryConfig(),
		now:     time.Now,
		log:     zap.L().Named("stats"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PlayerSeasonStats returns a player's cumulative stat line for one
// season. A zero season defaults by the NFL calendar.
func (c *Client) PlayerSeasonStats(ctx context.Context, player string, season int) (*model.SeasonStats, error) {
	if season == 0 {
		season = CurrentSeason(c.now())
	}
	q := url.Values{
		"name":   {player},
		"season": {strconv.Itoa(season)},
	}
	var out model.SeasonStats
	if err := c.get(ctx, "/v1/players/season", q, &out); err != nil {
		return nil, err
	}
	out.Season = season
	return &out, nil
}

// PlayerGameStats returns per-game lines. Date is optional ISO format.
func (c *Client) PlayerGameStats(ctx context.Context, player, date string, season int) ([]model.GameStats, error) {
	if season == 0 {
		season = CurrentSeason(c.now())
	}
	q := url.Values{
		"name":   {player},
		"season": {strconv.Itoa(season)},
	}
	if date != "" {
		q.Set("date", date)
	}
	var out struct {
		Games []model.GameStats `json:"games"`
	}
	if err := c.get(ctx, "/v1/players/games", q, &out); err != nil {
		return nil, err
	}
	return out.Games, nil
}

// NFLStandings returns real NFL records for a season.
func (c *Client) NFLStandings(ctx context.Context, season int) ([]model.NFLStanding, error) {
	if season == 0 {
		season = CurrentSeason(c.now())
	}
	q := url.Values{"season": {strconv.Itoa(season)}}
	var out struct {
		Standings []model.NFLStanding `json:"standings"`
	}
	if err := c.get(ctx, "/v1/standings", q, &out); err != nil {
		return nil, err
	}
	return out.Standings, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "stats: rate limit wait")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, eris.Wrap(err, "stats: build request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrapf(err, "stats: GET %s", path)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, eris.Wrap(err, "stats: read body")
		}
		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("stats: %s returned %d", path, resp.StatusCode)
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
		return eris.Wrapf(err, "stats: decode %s", path)
	}
	return nil
}
