package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gridironhq/league-analyst/internal/league"
)

var teamsCmd = &cobra.Command{
	Use:   "teams",
	Short: "Print current league standings",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		backend, err := openBackend(ctx)
		if err != nil {
			return err
		}
		defer backend.Close()

		standings, err := league.NewStore(backend).Standings(ctx)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TEAM\tOWNER\tW\tL\tT\tPF\tPA")
		for _, s := range standings {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.1f\t%.1f\n",
				s.TeamName, s.OwnerName, s.Wins, s.Losses, s.Ties,
				s.PointsFor, s.PointsAgainst)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(teamsCmd)
}
