package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

func TestNewRunStore(t *testing.T) {
	store := NewRunStore()
	require.NotNil(t, store)
	assert.NotNil(t, store.runs)
}

func TestRunStore_SaveAndGet(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := domain.RunSummary{
		ID:        "run-1",
		Entity:    "orders",
		Phase:     domain.PhaseFullImport,
		State:     domain.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, run))

	retrieved, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run.ID, retrieved.ID)
	assert.Equal(t, domain.RunRunning, retrieved.State)
}

func TestRunStore_SaveUpdates(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	run := domain.RunSummary{ID: "run-1", Entity: "orders", State: domain.RunRunning, StartedAt: time.Now().UTC()}
	require.NoError(t, store.Save(ctx, run))

	run.State = domain.RunSucceeded
	run.FinishedAt = run.StartedAt.Add(time.Minute)
	require.NoError(t, store.Save(ctx, run))

	retrieved, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, retrieved.State)
	assert.False(t, retrieved.FinishedAt.IsZero())
}

func TestRunStore_Get_NotFound(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	_, err := store.Get(ctx, "nonexistent")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_List_MostRecentFirst(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, store.Save(ctx, domain.RunSummary{ID: "run-1", Entity: "orders", StartedAt: base.Add(-2 * time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.RunSummary{ID: "run-2", Entity: "users", StartedAt: base.Add(-time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.RunSummary{ID: "run-3", Entity: "orders", StartedAt: base}))

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "run-3", all[0].ID)
	assert.Equal(t, "run-2", all[1].ID)
	assert.Equal(t, "run-1", all[2].ID)
}

func TestRunStore_List_FiltersByEntity(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, store.Save(ctx, domain.RunSummary{ID: "run-1", Entity: "orders", StartedAt: base.Add(-time.Hour)}))
	require.NoError(t, store.Save(ctx, domain.RunSummary{ID: "run-2", Entity: "users", StartedAt: base}))

	orders, err := store.List(ctx, "orders", 0)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "run-1", orders[0].ID)
}

func TestRunStore_List_Limit(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, store.Save(ctx, domain.RunSummary{
			ID:        id,
			Entity:    "orders",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	limited, err := store.List(ctx, "orders", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-3", limited[0].ID)
	assert.Equal(t, "run-2", limited[1].ID)
}

func TestRunStore_List_Empty(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	runs, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}
