package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gridironhq/league-analyst/internal/league"
	"github.com/gridironhq/league-analyst/internal/leaguesync"
	"github.com/gridironhq/league-analyst/internal/stats"
)

var syncWeeks int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull league data from Sleeper into the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("sync"); err != nil {
			return err
		}
		ctx := cmd.Context()

		backend, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()

		var target leaguesync.Target
		switch b := backend.(type) {
		case *league.PostgresBackend:
			if err := b.Migrate(ctx); err != nil {
				return err
			}
			target = leaguesync.NewPostgresTarget(b.Pool())
		case *league.SQLiteBackend:
			target = leaguesync.NewSQLiteTarget(b)
		default:
			return eris.New("sync: unsupported backend")
		}

		season := cfg.League.Season
		if season == "" {
			season = strconv.Itoa(stats.CurrentSeason(time.Now()))
		}
		weeks := syncWeeks
		if weeks == 0 {
			weeks = cfg.League.Weeks
		}

		client := leaguesync.NewSleeperClient(
			leaguesync.WithBaseURL(cfg.League.SleeperBaseURL))
		syncer := leaguesync.NewSyncer(client, target, cfg.League.SleeperLeagueID, season)

		summary, err := syncer.Run(ctx, weeks)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Synced league %s, season %s:\n", cfg.League.SleeperLeagueID, season)
		fmt.Fprintf(out, "  users:    %d\n", summary.Users)
		fmt.Fprintf(out, "  rosters:  %d\n", summary.Rosters)
		fmt.Fprintf(out, "  players:  %d\n", summary.Players)
		fmt.Fprintf(out, "  trades:   %d\n", summary.Trades)
		fmt.Fprintf(out, "  matchups: %d\n", summary.Matchups)
		return nil
	},
}

func init() {
	syncCmd.Flags().IntVar(&syncWeeks, "weeks", 0, "number of weeks to sync (default from config)")
	rootCmd.AddCommand(syncCmd)
}
