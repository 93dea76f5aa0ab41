// Package intent classifies a question into a QueryIntent using
// deterministic keyword heuristics. No ML, no network: the same question
// always yields the same intent, and classification never fails — an
// ambiguous question degrades to the most conservative category rather
// than erroring, since under-planning is worse than over-fetching.
package intent

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/gridironhq/league-analyst/internal/model"
)

// Keyword tiers. A question only needs to hit one word in a tier for the
// tier to fire.
var (
	aggregationWords = []string{
		"compare", "vs", "versus", "best", "worst", "most", "least",
		"average", "total", "rank", "top", "bottom", "history", "ever",
		"all time", "every", "all ",
	}

	advisoryWords = []string{
		"should i", "should we", "recommend", "advice", "advise",
		"worth it", "would you",
	}

	statsWords = []string{
		"yards", "touchdown", "td", "tds", "reception", "carries",
		"targets", "passing", "rushing", "receiving", "interception",
		"sack", "nfl", "real life", "real-life", "irl", "stat", "stats",
		"this season", "last season", "per game",
	}

	leagueWords = []string{
		"trade", "traded", "trades", "roster", "waiver", "matchup",
		"standings", "record", "owner", "owns", "team", "league",
		"start", "sit", "bench", "lineup", "points", "scored", "drafted",
		"faab", "playoff",
	}

	weekPattern = regexp.MustCompile(`\bweek\s+(\d{1,2})\b`)
	yearPattern = regexp.MustCompile(`\b(20\d{2})\b`)
)

// Classifier turns questions into intents.
type Classifier struct {
	log *zap.Logger
}

// New returns a Classifier.
func New() *Classifier {
	return &Classifier{log: zap.L().Named("intent")}
}

// Classify derives a QueryIntent from the question and prior turns. Prior
// turns only nudge source selection: a bare follow-up like "what about
// week 5?" inherits the sources implied by the previous question.
func (c *Classifier) Classify(question string, history []model.Turn) model.QueryIntent {
	q := strings.ToLower(strings.TrimSpace(question))

	intent := model.QueryIntent{
		Week:   extractWeek(q),
		Season: extractSeason(q),
	}

	hasAgg := containsAny(q, aggregationWords)
	hasAdvisory := containsAny(q, advisoryWords)
	hasStats := containsAny(q, statsWords)
	hasLeague := containsAny(q, leagueWords)

	// A follow-up with no source signal of its own inherits the prior
	// turn's signal.
	if !hasStats && !hasLeague && len(history) > 0 {
		prev := strings.ToLower(history[len(history)-1].Question)
		hasStats = containsAny(prev, statsWords)
		hasLeague = containsAny(prev, leagueWords)
	}

	switch {
	case hasStats && hasLeague:
		intent.Sources = []model.DataSource{model.SourceLeague, model.SourceStats}
	case hasStats:
		intent.Sources = []model.DataSource{model.SourceStats}
	case hasLeague:
		intent.Sources = []model.DataSource{model.SourceLeague}
	default:
		// No recognizable signal at all: assume everything.
		intent.Sources = []model.DataSource{model.SourceLeague, model.SourceStats}
	}

	intent.NeedsAggregation = hasAgg
	intent.NeedsComparison = strings.Contains(q, "compare") ||
		strings.Contains(q, " vs ") || strings.Contains(q, "versus")
	intent.Entities = extractEntitySlots(q)
	intent.Metric = extractMetric(q)

	switch {
	case hasAdvisory:
		intent.Category = model.IntentAdvisory
	case hasStats && hasLeague:
		intent.Category = model.IntentCrossSource
	case intent.NeedsComparison:
		intent.Category = model.IntentComparison
	case hasAgg:
		intent.Category = model.IntentAggregation
	case isSimpleLookup(q, intent):
		intent.Category = model.IntentSimpleLookup
	default:
		// Ambiguous: degrade to the most conservative category so the
		// planner over-fetches rather than under-plans.
		intent.Category = model.IntentCrossSource
		intent.Sources = []model.DataSource{model.SourceLeague, model.SourceStats}
	}

	c.log.Debug("classified question",
		zap.String("category", string(intent.Category)),
		zap.Bool("aggregation", intent.NeedsAggregation),
		zap.Int("entities", len(intent.Entities)))

	return intent
}

// isSimpleLookup reports whether the question is short, names at most one
// entity, and touches a single source. These bypass full planning.
func isSimpleLookup(q string, in model.QueryIntent) bool {
	if len(in.Sources) != 1 {
		return false
	}
	if len(in.Entities) > 1 {
		return false
	}
	return len(strings.Fields(q)) <= 10
}

func containsAny(q string, words []string) bool {
	fields := strings.FieldsFunc(q, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	})
	for _, w := range words {
		// Short keywords ("td", "vs") match whole tokens only; longer
		// ones substring-match so "trades" hits "trade".
		if len(w) <= 3 && !strings.ContainsAny(w, " ") {
			for _, f := range fields {
				if f == strings.TrimSpace(w) {
					return true
				}
			}
			continue
		}
		if strings.Contains(q, w) {
			return true
		}
	}
	return false
}

func extractWeek(q string) int {
	m := weekPattern.FindStringSubmatch(q)
	if m == nil {
		return 0
	}
	week := 0
	for _, ch := range m[1] {
		week = week*10 + int(ch-'0')
	}
	if week < 1 || week > 18 {
		return 0
	}
	return week
}

func extractSeason(q string) int {
	m := yearPattern.FindStringSubmatch(q)
	if m == nil {
		return 0
	}
	year := 0
	for _, ch := range m[1] {
		year = year*10 + int(ch-'0')
	}
	return year
}

// Stopwords that never start an entity mention.
var entityStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "my": true, "his": true,
	"her": true, "their": true, "our": true, "this": true, "that": true,
	"what": true, "who": true, "how": true, "did": true, "does": true,
	"is": true, "was": true, "are": true, "were": true, "has": true,
	"have": true, "should": true, "week": true, "season": true,
	"best": true, "worst": true, "most": true, "least": true,
	"trade": true, "trades": true, "team": true, "league": true,
	"for": true, "in": true, "on": true, "of": true, "to": true,
	"and": true, "or": true, "about": true, "many": true,
	"show": true, "me": true, "tell": true, "give": true, "list": true,
	"get": true, "see": true,
}

// extractEntitySlots pulls capitalized-looking or quoted runs out of the
// (lowercased) question. Lowercasing already happened, so we fall back to
// runs of non-stopword tokens adjacent to possessives or "owns"-style
// verbs. The resolver handles fuzziness; here we only need plausible
// fragments. Phrasing alone cannot tell a team mention from a player
// mention, so every slot is emitted with an unknown kind and the planner
// settles it against the registry.
func extractEntitySlots(q string) []model.EntitySlot {
	var slots []model.EntitySlot
	seen := map[string]bool{}

	add := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		slots = append(slots, model.EntitySlot{Kind: model.EntityUnknown, Text: text})
	}

	// Quoted fragments are explicit entity references.
	for _, m := range regexp.MustCompile(`"([^"]+)"`).FindAllStringSubmatch(q, -1) {
		add(m[1])
	}

	// Possessive fragments ("nickroachy's roster", "the jaxon 5's trades").
	for _, m := range regexp.MustCompile(`([a-z0-9_][a-z0-9_ ]{1,30})'s\b`).FindAllStringSubmatch(q, -1) {
		add(trimStopwords(m[1]))
	}

	// "X traded/owns/has ..." and "... for/about/with X" patterns.
	for _, re := range []*regexp.Regexp{
		regexp.MustCompile(`\b(?:did|does|has|is)\s+([a-z0-9_][a-z0-9_ ]{1,30}?)\s+(?:trade|traded|own|owns|have|doing|score|scored|rank)`),
		regexp.MustCompile(`\b(?:for|about|with|against)\s+([a-z0-9_][a-z0-9_ ]{1,30}?)(?:\?|$|\s+(?:in|this|last|week|season))`),
	} {
		for _, m := range re.FindAllStringSubmatch(q, -1) {
			add(trimStopwords(m[1]))
		}
	}

	return slots
}

func trimStopwords(frag string) string {
	tokens := strings.Fields(frag)
	for len(tokens) > 0 && entityStopwords[tokens[0]] {
		tokens = tokens[1:]
	}
	for len(tokens) > 0 && entityStopwords[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

var metricWords = []string{
	"points", "yards", "touchdowns", "wins", "losses", "trades",
	"receptions", "targets", "record",
}

func extractMetric(q string) string {
	for _, m := range metricWords {
		if strings.Contains(q, m) {
			return m
		}
	}
	return ""
}
