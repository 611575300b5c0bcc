package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStep  EventType = "step"
	EventHalt  EventType = "halt"
	EventFault EventType = "fault"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Variant   Variant   `json:"variant"`
}

// StepEvent describes one executed transition.
type StepEvent struct {
	EventBase
	Step      int    `json:"step"`
	RuleIndex int    `json:"rule_index"`
	Rule      Rule   `json:"rule"`
	Read      Symbol `json:"read"`
}

// HaltEvent is emitted once when a run reaches a terminal state.
type HaltEvent struct {
	EventBase
	Outcome HaltOutcome `json:"outcome"`
	State   State       `json:"state"`
	Steps   int         `json:"steps"`
}

// FaultEvent is emitted when a run aborts with a fatal error.
type FaultEvent struct {
	EventBase
	Steps int   `json:"steps"`
	Err   error `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously on the run's goroutine; nil hooks are skipped.
type LifecycleHooks struct {
	OnStep  func(context.Context, *StepEvent)
	OnHalt  func(context.Context, *HaltEvent)
	OnFault func(context.Context, *FaultEvent)
}
