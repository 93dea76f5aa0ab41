package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rotisserie/eris"
)

var askSessionID string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask one question about the league",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEngine(cmd.Context(), "ask")
		if err != nil {
			return err
		}
		defer env.Close()

		sessionID := askSessionID
		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		question := strings.Join(args, " ")
		answer, err := env.Engine.Ask(cmd.Context(), sessionID, question)
		if err != nil {
			return eris.Wrap(err, "ask")
		}

		fmt.Fprintln(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askSessionID, "session", "", "session ID for follow-up context (default: fresh session)")
	rootCmd.AddCommand(askCmd)
}
