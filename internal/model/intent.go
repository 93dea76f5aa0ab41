package model

// IntentCategory classifies the complexity and shape of a question.
type IntentCategory string

const (
	IntentSimpleLookup IntentCategory = "simple_lookup"
	IntentAggregation  IntentCategory = "aggregation"
	IntentComparison   IntentCategory = "comparison"
	IntentCrossSource  IntentCategory = "cross_source"
	IntentAdvisory     IntentCategory = "advisory"
)

// DataSource names a backing service.
type DataSource string

const (
	SourceLeague DataSource = "league"
	SourceStats  DataSource = "stats"
)

// EntitySlot is a free-text entity mention extracted from a question,
// awaiting resolution against the registry.
type EntitySlot struct {
	Kind EntityKind `json:"kind"`
	Text string     `json:"text"`
}

// QueryIntent is the classifier's output for one question. It is consumed
// by the planner and discarded afterwards.
type QueryIntent struct {
	Category         IntentCategory `json:"category"`
	Sources          []DataSource   `json:"sources"`
	NeedsAggregation bool           `json:"needs_aggregation"`
	NeedsComparison  bool           `json:"needs_comparison"`

	// Extracted slots.
	Entities []EntitySlot `json:"entities,omitempty"`
	Week     int          `json:"week,omitempty"`
	Season   int          `json:"season,omitempty"`
	Metric   string       `json:"metric,omitempty"`
}

// HasSource reports whether the intent implicates the given backing service.
func (q QueryIntent) HasSource(src DataSource) bool {
	for _, s := range q.Sources {
		if s == src {
			return true
		}
	}
	return false
}
