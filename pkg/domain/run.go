package domain

import "time"

// RunState is the engine-side cursor of a single run.
// It is created when a run begins, replaced on every step and discarded at halt.
type RunState struct {
	// State mirrors the head state after the last step.
	State State

	// LastRule is the index of the rule fired by the last step, or NotFound before the first step.
	LastRule int

	// Steps counts executed steps.
	Steps int

	// Halted is set once State is a terminal state.
	Halted bool

	// Outcome is valid only when Halted.
	Outcome HaltOutcome
}

// NewRunState creates the cursor for a fresh run starting at state.
func NewRunState(state State) RunState {
	return RunState{State: state, LastRule: NotFound}
}

// RunRecord is the persisted result of a finished (or aborted) run.
// Only the final outcome is kept; step history is never stored.
type RunRecord struct {
	ID         string      `json:"id"`
	Machine    string      `json:"machine"`
	Variant    Variant     `json:"variant"`
	Input      string      `json:"input"`
	Outcome    HaltOutcome `json:"outcome,omitempty"`
	Steps      int         `json:"steps"`
	Tape       string      `json:"tape"`
	Head       int         `json:"head"`
	State      State       `json:"state"`
	Error      string      `json:"error,omitempty"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
}

// Halted reports whether the run reached a terminal state.
func (r *RunRecord) Halted() bool {
	return r.Outcome == Accepted || r.Outcome == Rejected
}
