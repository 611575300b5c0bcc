package graph

import (
	"context"
	"sync"

	"github.com/aretw0/utm/pkg/domain"
)

// Trace records the states a run passes through so they can be drawn as an overlay.
type Trace struct {
	mu      sync.Mutex
	visited []domain.State
	current domain.State
}

// NewTrace creates an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// Hooks returns lifecycle hooks that feed the trace.
func (t *Trace) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			t.mu.Lock()
			defer t.mu.Unlock()
			t.visited = append(t.visited, e.Rule.From)
			t.current = e.Rule.To
		},
	}
}

// Overlay returns the overlay for the steps seen so far.
func (t *Trace) Overlay() *GraphOverlay {
	t.mu.Lock()
	defer t.mu.Unlock()
	return &GraphOverlay{
		VisitedStates: append([]domain.State(nil), t.visited...),
		CurrentState:  t.current,
	}
}
