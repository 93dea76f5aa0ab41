// Package resolver maps free-text name fragments to canonical registry
// entities despite typos, partial names, and possessives.
package resolver

import (
	"sort"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/gridironhq/league-analyst/internal/model"
)

// Scoring tiers, highest rule wins. The margin and similarity floor are
// empirically tuned constants, not derived from a model; adjust them
// against a labeled set of real typos before trusting them elsewhere.
const (
	scoreExact       = 100
	scoreContains    = 80
	scoreContainedBy = 70
	tokenBase        = 50
	tokenPerShared   = 5
	tokenCap         = 70
	charSimFloor     = 60.0 // percent
	charSimScale     = 0.4  // scales 60-100% similarity into 24-40

	autoResolveScore  = 90
	autoResolveMargin = 15
	maxCandidates     = 3
)

// Candidate is one scored match from the registry.
type Candidate struct {
	Entity model.Entity `json:"entity"`
	Score  int          `json:"score"`
}

// Resolver matches free text against an immutable registry snapshot.
// Resolving the same text twice against the same snapshot yields identical
// ranked candidates.
type Resolver struct {
	reg *model.Registry
}

// New creates a Resolver over the given registry snapshot.
func New(reg *model.Registry) *Resolver {
	return &Resolver{reg: reg}
}

// Resolve returns ranked candidates for a free-text fragment. A clear
// winner (score >= 90 or a >= 15 point lead) comes back alone; otherwise
// the top 3 are returned for disambiguation. An empty candidate pool
// yields a ResolutionNotFoundError carrying the kind and attempted text.
func (r *Resolver) Resolve(kind model.EntityKind, text string) ([]Candidate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, eris.New("resolver: empty search text")
	}

	var cands []Candidate
	for _, e := range r.reg.Kind(kind) {
		best := score(e.Name, text)
		for _, alias := range e.Aliases {
			if s := score(alias, text); s > best {
				best = s
			}
		}
		if best > 0 {
			cands = append(cands, Candidate{Entity: e, Score: best})
		}
	}

	if len(cands) == 0 {
		return nil, &model.ResolutionNotFoundError{Kind: kind, Text: text}
	}

	// Stable order: score descending, then name ascending, so repeated
	// resolutions against the same snapshot are identical.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		return cands[i].Entity.Name < cands[j].Entity.Name
	})

	if len(cands) == 1 ||
		cands[0].Score >= autoResolveScore ||
		cands[0].Score-cands[1].Score >= autoResolveMargin {
		return cands[:1], nil
	}
	if len(cands) > maxCandidates {
		cands = cands[:maxCandidates]
	}
	return cands, nil
}

// ProbeKind resolves text against each candidate kind in order and returns
// the kind whose best match scores highest, first kind winning ties. It
// reports false when no kind matches at all.
func (r *Resolver) ProbeKind(text string, kinds ...model.EntityKind) (model.EntityKind, bool) {
	var (
		bestKind  model.EntityKind
		bestScore int
	)
	for _, kind := range kinds {
		cands, err := r.Resolve(kind, text)
		if err != nil {
			continue
		}
		if cands[0].Score > bestScore {
			bestScore = cands[0].Score
			bestKind = kind
		}
	}
	if bestScore == 0 {
		return "", false
	}
	return bestKind, true
}

// score rates how well text matches a single canonical name. Each rule is
// tried in descending priority; the first that fires wins.
func score(name, text string) int {
	n := normalize(name)
	t := normalize(text)
	if n == "" || t == "" {
		return 0
	}

	if n == t {
		return scoreExact
	}

	ns := stripPossessive(stripArticle(n))
	ts := stripPossessive(stripArticle(t))
	switch {
	case ns == ts, strings.Contains(ns, ts):
		return scoreContains
	case strings.Contains(ts, ns):
		return scoreContainedBy
	}

	if shared := sharedTokens(ns, ts); shared > 0 {
		s := tokenBase + tokenPerShared*shared
		if s > tokenCap {
			s = tokenCap
		}
		return s
	}

	if sim := charSimilarity(ns, ts); sim >= charSimFloor {
		return int(sim * charSimScale)
	}
	return 0
}

var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize lowercases, trims, and strips diacritics so "José" matches "jose".
func normalize(s string) string {
	folded, _, err := transform.String(foldTransform, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

func stripArticle(s string) string {
	return strings.TrimPrefix(s, "the ")
}

func stripPossessive(s string) string {
	if strings.HasSuffix(s, "'s") {
		return strings.TrimSuffix(s, "'s")
	}
	if len(s) > 3 && strings.HasSuffix(s, "s") {
		return strings.TrimSuffix(s, "s")
	}
	return s
}

func sharedTokens(a, b string) int {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(a) {
		set[tok] = true
	}
	n := 0
	for _, tok := range strings.Fields(b) {
		if set[tok] {
			n++
			set[tok] = false
		}
	}
	return n
}

// charSimilarity is the edit-distance similarity of the space-stripped
// forms, as a percentage of the longer string. Sequence-aware, so it
// catches typos and transpositions without treating two names that merely
// share an alphabet as related.
func charSimilarity(name, text string) float64 {
	a := []rune(strings.ReplaceAll(name, " ", ""))
	b := []rune(strings.ReplaceAll(text, " ", ""))
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	longest := max(len(a), len(b))
	return (1 - float64(editDistance(a, b))/float64(longest)) * 100
}

// editDistance is the Levenshtein distance, two-row formulation.
func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
