package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/utm/pkg/domain"
)

type nopStore struct{}

func (nopStore) Save(context.Context, *domain.RunRecord) error { return nil }
func (nopStore) Load(context.Context, string) (*domain.RunRecord, error) {
	return &domain.RunRecord{}, nil
}
func (nopStore) Delete(context.Context, string) error   { return nil }
func (nopStore) List(context.Context) ([]string, error) { return nil, nil }

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(nopStore{})
	ctx := context.Background()
	count := 10000

	for i := 0; i < count; i++ {
		id := fmt.Sprintf("run-%d", i)
		_ = mgr.Save(ctx, &domain.RunRecord{ID: id})
		_, _ = mgr.Load(ctx, id)
		_ = mgr.Delete(ctx, id)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("lock leak: %d locks remaining after %d runs", lockCount, count)
	}
}
