package sqlite_test

import (
	"context"
	"path/filepath"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/repository"
	"taskKeeper/internal/repository/task/sqlite"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T, path, key string) *sqlite.Storage {
	t.Helper()
	storage, err := sqlite.New(context.Background(), path, key)
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestStorage_Empty(t *testing.T) {
	storage := newStorage(t, filepath.Join(t.TempDir(), "tasks.db"), "")
	require.NoError(t, storage.HealthCheck(context.Background()))

	_, err := storage.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_SaveLoadUpsert(t *testing.T) {
	ctx := context.Background()
	storage := newStorage(t, filepath.Join(t.TempDir(), "tasks.db"), "tasks")

	due := task.Date{Year: 2030, Month: time.July, Day: 14}
	first := []task.Task{
		{ID: "1", Title: "One", Priority: task.PriorityMedium, CreatedAt: time.Unix(1, 0).UTC()},
	}
	second := append(first, task.Task{ID: "2", Title: "Two", Priority: task.PriorityHigh, DueDate: &due, CreatedAt: time.Unix(2, 0).UTC()})

	require.NoError(t, storage.Save(ctx, first))
	require.NoError(t, storage.Save(ctx, second))

	out, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, out)
}

func TestStorage_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.db")

	a := newStorage(t, path, "a")
	require.NoError(t, a.Save(ctx, []task.Task{{ID: "from-a"}}))

	b := newStorage(t, path, "b")
	_, err := b.Load(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
