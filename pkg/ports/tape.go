package ports

import "github.com/aretw0/utm/pkg/domain"

// Tape is the tape/head collaborator driven by the engine.
// It owns cell storage, head position, the head state and any display.
// A Tape belongs to exactly one run at a time.
type Tape interface {
	// Read returns the symbol under the head.
	Read() domain.Symbol

	// Write overwrites the cell under the head.
	Write(symbol domain.Symbol)

	// Move shifts the head one cell. Only domain.Left and domain.Right are meaningful;
	// animated controls whether the display renders the motion.
	Move(dir domain.Direction, animated bool)

	// Reset rewinds the head to the tape origin.
	Reset()

	// CurrentState returns the head state.
	CurrentState() domain.State

	// UpdateState sets the head state.
	UpdateState(state domain.State)

	// LoadInput seeds the tape starting at the origin.
	LoadInput(symbols []domain.Symbol)

	// ReportHaltOutcome is invoked exactly once when a run halts.
	ReportHaltOutcome(outcome domain.HaltOutcome)
}
