package model

// StepKind distinguishes resolution steps from data fetches.
type StepKind string

const (
	StepResolve StepKind = "resolve"
	StepFetch   StepKind = "fetch"
)

// ExecutionStep is one planned unit of work. Its ID doubles as the slot
// name in the resulting DataContext. A step with a DependsOn marker runs
// only after the named step has produced a result; plans are shallow, at
// most resolve-then-fetch.
type ExecutionStep struct {
	ID        string         `json:"id"`
	Kind      StepKind       `json:"kind"`
	Operation string         `json:"operation,omitempty"`
	Source    DataSource     `json:"source"`
	Params    map[string]any `json:"params,omitempty"`
	DependsOn string         `json:"depends_on,omitempty"`

	// Entity is set on resolve steps only.
	Entity *EntitySlot `json:"entity,omitempty"`
}

// ExecutionPlan is the ordered, partially-parallel list of steps sufficient
// to answer one question. It is an inspectable artifact: tests assert on
// its shape rather than on opaque model behavior.
type ExecutionPlan struct {
	Steps     []ExecutionStep `json:"steps"`
	Intent    QueryIntent     `json:"intent"`
	Rationale string          `json:"rationale,omitempty"`
}

// Step returns the step with the given ID, if present.
func (p ExecutionPlan) Step(id string) (ExecutionStep, bool) {
	for _, s := range p.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return ExecutionStep{}, false
}

// FetchLimit returns the largest "limit" parameter across fetch steps for
// the given operation, or 0 if no such step exists.
func (p ExecutionPlan) FetchLimit(operation string) int {
	max := 0
	for _, s := range p.Steps {
		if s.Kind != StepFetch || s.Operation != operation {
			continue
		}
		if v, ok := s.Params["limit"]; ok {
			if n, ok := v.(int); ok && n > max {
				max = n
			}
		}
	}
	return max
}
