package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/utm/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoreContract runs a suite of tests to verify that a RunStore implementation
// adheres to the defined interface contract.
func RunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	newRecord := func(id string) *domain.RunRecord {
		return &domain.RunRecord{
			ID:         id,
			Machine:    "contract",
			Variant:    domain.Classical,
			Input:      "1",
			Outcome:    domain.Accepted,
			Steps:      2,
			Tape:       "01",
			Head:       2,
			State:      "qa",
			StartedAt:  time.Now().UTC().Truncate(time.Second),
			FinishedAt: time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		rec := newRecord(runID)

		err := store.Save(ctx, rec)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, rec.Machine, loaded.Machine)
		assert.Equal(t, domain.Classical, loaded.Variant)
		assert.Equal(t, domain.Accepted, loaded.Outcome)
		assert.Equal(t, "01", loaded.Tape)
		assert.Equal(t, 2, loaded.Steps)
		assert.Equal(t, 2, loaded.Head)
		assert.Equal(t, domain.State("qa"), loaded.State)
		assert.True(t, rec.FinishedAt.Equal(loaded.FinishedAt))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		rec := newRecord(runID)
		rec.Outcome = domain.Rejected
		rec.State = "qr"
		require.NoError(t, store.Save(ctx, rec))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.Rejected, loaded.Outcome)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, newRecord(runID))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")

		assert.NoError(t, store.Delete(ctx, runID), "Deleting a missing run is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, store.Save(ctx, newRecord(id1)))
		require.NoError(t, store.Save(ctx, newRecord(id2)))

		t.Cleanup(func() {
			assert.NoError(t, store.Delete(ctx, id1))
			assert.NoError(t, store.Delete(ctx, id2))
		})

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
