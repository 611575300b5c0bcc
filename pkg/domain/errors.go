package domain

import (
	"errors"
	"fmt"
)

// ErrMissingTape is returned when the engine runs without a bound tape.
var ErrMissingTape = errors.New("no tape bound to engine")

// ErrUndefinedTransition is returned when no rule matches the current (state, symbol) pair.
var ErrUndefinedTransition = errors.New("undefined transition")

// ErrUnknownVariant is returned when a variant tag does not name a known machine family.
var ErrUnknownVariant = errors.New("unknown machine variant")

// ErrMalformedRuleTable is returned when a rule description cannot form a deterministic table.
var ErrMalformedRuleTable = errors.New("malformed rule table")

// ErrRunNotFound is returned when a run ID cannot be found in the store.
var ErrRunNotFound = errors.New("run not found")

// ErrMachineNotFound is returned when a loader has no description for a machine name.
var ErrMachineNotFound = errors.New("machine not found")

// ErrStepBudgetExceeded is returned by bounded runners when a run does not halt in time.
var ErrStepBudgetExceeded = errors.New("step budget exceeded")

// UndefinedTransitionError carries the pair that had no rule.
type UndefinedTransitionError struct {
	State  State
	Symbol Symbol
	Step   int
}

func (e *UndefinedTransitionError) Error() string {
	return fmt.Sprintf("undefined transition for (%s, %q) at step %d", e.State, rune(e.Symbol), e.Step)
}

func (e *UndefinedTransitionError) Unwrap() error {
	return ErrUndefinedTransition
}

// MalformedRuleTableError describes why a rule description was rejected.
type MalformedRuleTableError struct {
	Rule   int // zero-based rule position, -1 when not tied to one rule
	Reason string
}

func (e *MalformedRuleTableError) Error() string {
	if e.Rule < 0 {
		return fmt.Sprintf("malformed rule table: %s", e.Reason)
	}
	return fmt.Sprintf("malformed rule table: rule %d: %s", e.Rule, e.Reason)
}

func (e *MalformedRuleTableError) Unwrap() error {
	return ErrMalformedRuleTable
}
