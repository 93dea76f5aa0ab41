package leaguesync

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Target writes synced rows into a league store backend.
type Target interface {
	Upsert(ctx context.Context, table string, columns, conflictKeys []string, rows [][]any) error
}

// Syncer mirrors one Sleeper league into the local store.
type Syncer struct {
	client   *SleeperClient
	target   Target
	leagueID string
	season   string
	log      *zap.Logger
}

// NewSyncer builds a syncer for one league and season.
func NewSyncer(client *SleeperClient, target Target, leagueID, season string) *Syncer {
	return &Syncer{
		client:   client,
		target:   target,
		leagueID: leagueID,
		season:   season,
		log:      zap.L().Named("leaguesync"),
	}
}

// Summary reports what a sync run wrote.
type Summary struct {
	Users    int
	Rosters  int
	Players  int
	Trades   int
	Matchups int
}

// Fantasy-relevant positions; the Sleeper dump carries thousands of
// inactive or positionless entries we never need.
var syncedPositions = map[string]bool{
	"QB": true, "RB": true, "WR": true, "TE": true, "K": true, "DEF": true,
}

// Run syncs users, rosters, players, and weeks 1..weeks of matchups and
// trades. Weekly fetches run concurrently; writes happen once per table.
func (s *Syncer) Run(ctx context.Context, weeks int) (Summary, error) {
	var summary Summary

	users, err := s.client.Users(ctx, s.leagueID)
	if err != nil {
		return summary, eris.Wrap(err, "leaguesync: fetch users")
	}
	rosters, err := s.client.Rosters(ctx, s.leagueID)
	if err != nil {
		return summary, eris.Wrap(err, "leaguesync: fetch rosters")
	}

	if err := s.writeUsers(ctx, users); err != nil {
		return summary, err
	}
	summary.Users = len(users)

	if err := s.writeRosters(ctx, rosters); err != nil {
		return summary, err
	}
	summary.Rosters = len(rosters)

	teamByRoster := teamNames(users, rosters)

	players, err := s.client.Players(ctx)
	if err != nil {
		return summary, eris.Wrap(err, "leaguesync: fetch players")
	}
	summary.Players, err = s.writePlayers(ctx, players)
	if err != nil {
		return summary, err
	}

	weekly, err := s.fetchWeeks(ctx, weeks)
	if err != nil {
		return summary, err
	}

	summary.Trades, err = s.writeTrades(ctx, weekly, teamByRoster, players)
	if err != nil {
		return summary, err
	}
	summary.Matchups, err = s.writeMatchups(ctx, weekly, teamByRoster)
	if err != nil {
		return summary, err
	}

	s.log.Info("sync complete",
		zap.String("league", s.leagueID),
		zap.Int("users", summary.Users),
		zap.Int("players", summary.Players),
		zap.Int("trades", summary.Trades),
		zap.Int("matchups", summary.Matchups))
	return summary, nil
}

type weekData struct {
	week         int
	matchups     []SleeperMatchup
	transactions []SleeperTransaction
}

func (s *Syncer) fetchWeeks(ctx context.Context, weeks int) ([]weekData, error) {
	out := make([]weekData, weeks)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i := 0; i < weeks; i++ {
		i := i
		g.Go(func() error {
			week := i + 1
			matchups, err := s.client.Matchups(gctx, s.leagueID, week)
			if err != nil {
				return eris.Wrapf(err, "leaguesync: week %d matchups", week)
			}
			txns, err := s.client.Transactions(gctx, s.leagueID, week)
			if err != nil {
				return eris.Wrapf(err, "leaguesync: week %d transactions", week)
			}
			out[i] = weekData{week: week, matchups: matchups, transactions: txns}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func teamNames(users []SleeperUser, rosters []SleeperRoster) map[int]string {
	byUser := make(map[string]SleeperUser, len(users))
	for _, u := range users {
		byUser[u.UserID] = u
	}
	names := make(map[int]string, len(rosters))
	for _, r := range rosters {
		u := byUser[r.OwnerID]
		name := u.Metadata.TeamName
		if name == "" {
			name = u.DisplayName
		}
		if name == "" {
			name = fmt.Sprintf("Team %d", r.RosterID)
		}
		names[r.RosterID] = name
	}
	return names
}

func (s *Syncer) writeUsers(ctx context.Context, users []SleeperUser) error {
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{u.UserID, s.leagueID, u.DisplayName, u.Metadata.TeamName})
	}
	return s.target.Upsert(ctx, "users",
		[]string{"user_id", "league_id", "display_name", "team_name"},
		[]string{"user_id"}, rows)
}

func (s *Syncer) writeRosters(ctx context.Context, rosters []SleeperRoster) error {
	rows := make([][]any, 0, len(rosters))
	for _, r := range rosters {
		rows = append(rows, []any{
			r.RosterID, s.leagueID, r.OwnerID,
			r.Settings.Wins, r.Settings.Losses, r.Settings.Ties,
			r.PointsFor(), r.PointsAgainst(),
			encodeJSON(r.Players), encodeJSON(r.Starters), encodeJSON(r.Reserve),
		})
	}
	return s.target.Upsert(ctx, "rosters",
		[]string{
			"roster_id", "league_id", "owner_id", "wins", "losses", "ties",
			"points_for", "points_against", "players", "starters", "reserve",
		},
		[]string{"roster_id"}, rows)
}

func (s *Syncer) writePlayers(ctx context.Context, players map[string]SleeperPlayer) (int, error) {
	ids := make([]string, 0, len(players))
	for id, p := range players {
		if syncedPositions[p.Position] && p.FullName != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	rows := make([][]any, 0, len(ids))
	for _, id := range ids {
		p := players[id]
		rows = append(rows, []any{id, p.FullName, p.Position, p.Team})
	}
	if err := s.target.Upsert(ctx, "players",
		[]string{"player_id", "full_name", "position", "team"},
		[]string{"player_id"}, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// writeTrades flattens completed trade transactions into one row per
// receiving team, with player IDs translated to names.
func (s *Syncer) writeTrades(ctx context.Context, weekly []weekData, teamByRoster map[int]string, players map[string]SleeperPlayer) (int, error) {
	var rows [][]any
	trades := 0
	for _, wd := range weekly {
		for _, txn := range wd.transactions {
			if txn.Type != "trade" || txn.Status != "complete" {
				continue
			}
			trades++
			received := make(map[int][]string)
			for playerID, rosterID := range txn.Adds {
				name := players[playerID].FullName
				if name == "" {
					name = playerID
				}
				received[rosterID] = append(received[rosterID], name)
			}
			completed := time.UnixMilli(txn.StatusUpdated).UTC()
			for _, rosterID := range txn.RosterIDs {
				got := received[rosterID]
				sort.Strings(got)
				rows = append(rows, []any{
					txn.TransactionID, s.season, wd.week,
					teamByRoster[rosterID], encodeJSON(got), completed,
				})
			}
		}
	}
	if err := s.target.Upsert(ctx, "trades",
		[]string{"trade_id", "season", "week", "team_name", "received", "completed_at"},
		[]string{"trade_id", "team_name"}, rows); err != nil {
		return 0, err
	}
	return trades, nil
}

// writeMatchups pairs roster scores by matchup ID and writes one
// denormalized row per team per week.
func (s *Syncer) writeMatchups(ctx context.Context, weekly []weekData, teamByRoster map[int]string) (int, error) {
	var rows [][]any
	for _, wd := range weekly {
		pairs := make(map[int][]SleeperMatchup)
		for _, m := range wd.matchups {
			pairs[m.MatchupID] = append(pairs[m.MatchupID], m)
		}
		for _, sides := range pairs {
			for _, side := range sides {
				var opponent SleeperMatchup
				for _, other := range sides {
					if other.RosterID != side.RosterID {
						opponent = other
						break
					}
				}
				rows = append(rows, []any{
					s.leagueID, s.season, wd.week,
					teamByRoster[side.RosterID], teamByRoster[opponent.RosterID],
					side.Points, opponent.Points,
				})
			}
		}
	}
	if err := s.target.Upsert(ctx, "matchups",
		[]string{
			"league_id", "season", "week", "team_name",
			"opponent_name", "points", "opponent_points",
		},
		[]string{"league_id", "season", "week", "team_name"}, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func encodeJSON(v []string) string {
	if v == nil {
		v = []string{}
	}
	raw, _ := json.Marshal(v)
	return string(raw)
}
