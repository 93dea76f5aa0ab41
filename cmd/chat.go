package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question-and-answer session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEngine(cmd.Context(), "ask")
		if err != nil {
			return err
		}
		defer env.Close()

		sessionID := uuid.NewString()
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "League analyst ready. /reset clears context, /quit exits.")

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				return scanner.Err()
			}
			line := strings.TrimSpace(scanner.Text())
			switch {
			case line == "":
				continue
			case line == "/quit", line == "/exit":
				return nil
			case line == "/reset":
				if err := env.Engine.Reset(cmd.Context(), sessionID); err != nil {
					fmt.Fprintf(out, "reset failed: %v\n", err)
					continue
				}
				fmt.Fprintln(out, "Context cleared.")
				continue
			}

			answer, err := env.Engine.Ask(cmd.Context(), sessionID, line)
			if err != nil {
				fmt.Fprintf(out, "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, answer)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
