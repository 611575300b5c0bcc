package ports

import (
	"context"

	"github.com/aretw0/utm/pkg/domain"
)

// RunStore defines the interface for persisting run outcomes.
// Only the final record of a run is stored; there is no step history.
type RunStore interface {
	// Save persists the record under rec.ID, replacing any previous record.
	Save(ctx context.Context, rec *domain.RunRecord) error

	// Load retrieves a record by run ID.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.RunRecord, error)

	// Delete removes a record. Deleting a missing run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of all stored runs.
	List(ctx context.Context) ([]string, error)
}
