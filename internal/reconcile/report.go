package reconcile

import "time"

// Action is the kind of change applied to one printer.
type Action string

const (
	ActionInstall Action = "install"
	ActionRemove  Action = "remove"
)

// Outcome is the result of one install or remove.
type Outcome struct {
	Action  Action
	Printer string
	Driver  string
	Err     error
}

// OK reports whether the action succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Report describes one reconciliation pass.
type Report struct {
	ID         string
	Plan       Plan
	Outcomes   []Outcome
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration of the pass
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Failures returns the outcomes that carry an error.
func (r Report) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Succeeded counts successful actions.
func (r Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.OK() {
			n++
		}
	}
	return n
}
