package model

import "sort"

// ResolutionErrorsSlot is the reserved DataContext slot where failed entity
// resolutions are recorded. The plan proceeds without the failed entity;
// synthesis sees the gap and caveats accordingly.
const ResolutionErrorsSlot = "resolution_errors"

// StepError is the typed error payload recorded in a slot when its step
// failed. It is data, not a Go error: a failed step never aborts the plan.
type StepError struct {
	Step    string `json:"step"`
	Kind    string `json:"kind"` // "resolution_not_found", "fetch_failed", "timeout", "dependency_failed"
	Message string `json:"message"`
}

// StepOutcome is the recorded result of one execution step: either a
// payload or a typed error, never both, never neither.
type StepOutcome struct {
	Payload any        `json:"payload,omitempty"`
	Err     *StepError `json:"error,omitempty"`
}

// OK reports whether the step produced a payload.
func (o StepOutcome) OK() bool { return o.Err == nil }

// DataContext is the complete, immutable bundle of fetched results for one
// question. Every planned step contributes exactly one slot — populated or
// error-flagged — before synthesis may run. The type deliberately exposes
// no way to fetch or add data: once built it is read-only.
type DataContext struct {
	question string
	slots    map[string]StepOutcome
}

// NewDataContext builds an immutable context from the executor's slot map.
// The map is copied; later mutation of the argument does not leak in.
func NewDataContext(question string, slots map[string]StepOutcome) *DataContext {
	copied := make(map[string]StepOutcome, len(slots))
	for k, v := range slots {
		copied[k] = v
	}
	return &DataContext{question: question, slots: copied}
}

// Question returns the question this context was assembled for.
func (c *DataContext) Question() string { return c.question }

// Slot returns the outcome recorded under the given logical name.
func (c *DataContext) Slot(name string) (StepOutcome, bool) {
	o, ok := c.slots[name]
	return o, ok
}

// SlotNames returns all slot names in deterministic order.
func (c *DataContext) SlotNames() []string {
	names := make([]string, 0, len(c.slots))
	for k := range c.slots {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of slots.
func (c *DataContext) Len() int { return len(c.slots) }

// Failures returns the typed errors of all failed slots.
func (c *DataContext) Failures() []StepError {
	var errs []StepError
	for _, name := range c.SlotNames() {
		if o := c.slots[name]; o.Err != nil {
			errs = append(errs, *o.Err)
		}
	}
	return errs
}

// Degraded reports whether any slot carries an error.
func (c *DataContext) Degraded() bool { return len(c.Failures()) > 0 }

// Empty reports whether no slot carries a usable payload.
func (c *DataContext) Empty() bool {
	for _, o := range c.slots {
		if o.OK() {
			return false
		}
	}
	return true
}
