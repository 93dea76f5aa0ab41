package synthesis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gridironhq/league-analyst/internal/model"
	"github.com/gridironhq/league-analyst/internal/resolver"
)

const (
	maxTradesShown = 50
	maxJSONBytes   = 10_000
)

// FormatPayload renders a fetched payload as compact, attributable text.
// Known domain shapes get purpose-built summaries so the reasoning
// backend's context window is spent on signal; anything else falls back
// to size-capped JSON.
func FormatPayload(payload any) string {
	switch v := payload.(type) {
	case []model.Trade:
		return formatTrades(v)
	case []model.Standing:
		return formatStandings(v)
	case []model.TradeCount:
		return formatTradeCounts(v)
	case []model.Matchup:
		return formatMatchups(v)
	case []resolver.Candidate:
		return formatCandidates(v)
	case []model.StepError:
		return formatStepErrors(v)
	case string:
		return v
	default:
		return formatJSON(v)
	}
}

func formatTrades(trades []model.Trade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total trades available: %d\n", len(trades))
	shown := trades
	if len(shown) > maxTradesShown {
		shown = shown[:maxTradesShown]
	}
	for i, t := range shown {
		fmt.Fprintf(&b, "%d. Season %s, Week %d\n", i+1, t.Season, t.Week)
		for _, side := range t.Sides {
			got := "nothing"
			if len(side.Received) > 0 {
				got = strings.Join(side.Received, ", ")
			}
			fmt.Fprintf(&b, "   - %s received: %s\n", side.TeamName, got)
		}
	}
	if len(trades) > maxTradesShown {
		fmt.Fprintf(&b, "... and %d more trades\n", len(trades)-maxTradesShown)
	}
	return b.String()
}

func formatStandings(standings []model.Standing) string {
	var b strings.Builder
	for i, s := range standings {
		fmt.Fprintf(&b, "%d. %s", i+1, s.TeamName)
		if s.OwnerName != "" {
			fmt.Fprintf(&b, " (%s)", s.OwnerName)
		}
		fmt.Fprintf(&b, ": %d-%d, %.1f PF, %.1f PA\n",
			s.Wins, s.Losses, s.PointsFor, s.PointsAgainst)
	}
	return b.String()
}

func formatTradeCounts(counts []model.TradeCount) string {
	var b strings.Builder
	for _, c := range counts {
		fmt.Fprintf(&b, "- %s: %d trades\n", c.TeamName, c.Trades)
	}
	return b.String()
}

func formatMatchups(matchups []model.Matchup) string {
	var b strings.Builder
	for _, m := range matchups {
		fmt.Fprintf(&b, "Week %d: %s %.1f vs %s %.1f\n",
			m.Week, m.TeamName, m.Points, m.OpponentName, m.OpponentPoints)
	}
	return b.String()
}

func formatCandidates(cands []resolver.Candidate) string {
	if len(cands) == 1 {
		return fmt.Sprintf("Resolved to: %s\n", cands[0].Entity.Name)
	}
	var b strings.Builder
	b.WriteString("Ambiguous reference; closest matches:\n")
	for _, c := range cands {
		fmt.Fprintf(&b, "- %s (score %d)\n", c.Entity.Name, c.Score)
	}
	return b.String()
}

func formatStepErrors(errs []model.StepError) string {
	var b strings.Builder
	for _, e := range errs {
		fmt.Fprintf(&b, "- %s: %s\n", e.Step, e.Message)
	}
	return b.String()
}

func formatJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	if len(raw) > maxJSONBytes {
		return fmt.Sprintf("%s\n... (truncated, %d bytes total)", raw[:maxJSONBytes], len(raw))
	}
	return string(raw)
}
