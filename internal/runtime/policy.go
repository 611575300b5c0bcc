package runtime

import (
	"fmt"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/aretw0/utm/pkg/ports"
)

// Busy-beaver tape seeding.
const (
	BusyBeaverWidth  = 20
	BusyBeaverOffset = 10
)

// Policy is the variant-specific behaviour bound into an engine.
type Policy struct {
	Variant domain.Variant

	// OnDirective moves or resets the head after a rule fired.
	OnDirective func(tape ports.Tape, dir domain.Direction, animated bool)

	// PrepareTape seeds the tape before the first step.
	PrepareTape func(tape ports.Tape, input []domain.Symbol, blank domain.Symbol)
}

// PolicyFor resolves the policy of a variant.
func PolicyFor(v domain.Variant) (Policy, error) {
	switch v {
	case domain.Classical:
		return Policy{Variant: v, OnDirective: move, PrepareTape: loadAtOrigin}, nil
	case domain.LeftReset:
		return Policy{Variant: v, OnDirective: moveOrRewind, PrepareTape: loadAtOrigin}, nil
	case domain.BusyBeaver:
		return Policy{Variant: v, OnDirective: move, PrepareTape: seedBusyBeaver}, nil
	default:
		return Policy{}, fmt.Errorf("%w: %d", domain.ErrUnknownVariant, int(v))
	}
}

// move treats every non-Right directive as a single step left.
func move(tape ports.Tape, dir domain.Direction, animated bool) {
	if dir == domain.Right {
		tape.Move(domain.Right, animated)
		return
	}
	tape.Move(domain.Left, animated)
}

func moveOrRewind(tape ports.Tape, dir domain.Direction, animated bool) {
	if dir == domain.Right {
		tape.Move(domain.Right, animated)
		return
	}
	tape.Reset()
}

func loadAtOrigin(tape ports.Tape, input []domain.Symbol, _ domain.Symbol) {
	tape.LoadInput(input)
}

// seedBusyBeaver right-pads the input to BusyBeaverWidth cells and parks the head
// BusyBeaverOffset cells right of the origin. Longer inputs are loaded as is.
func seedBusyBeaver(tape ports.Tape, input []domain.Symbol, blank domain.Symbol) {
	padded := make([]domain.Symbol, len(input), max(len(input), BusyBeaverWidth))
	copy(padded, input)
	for len(padded) < BusyBeaverWidth {
		padded = append(padded, blank)
	}
	tape.LoadInput(padded)
	for range BusyBeaverOffset {
		tape.Move(domain.Right, false)
	}
}
