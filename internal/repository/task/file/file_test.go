package file_test

import (
	"context"
	"os"
	"path/filepath"
	"taskKeeper/internal/models/task"
	"taskKeeper/internal/repository"
	"taskKeeper/internal/repository/task/file"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_LoadMissingFile(t *testing.T) {
	storage, err := file.New(filepath.Join(t.TempDir(), "tasks.json"))
	require.NoError(t, err)

	_, err = storage.Load(context.Background())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStorage_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tasks.json")
	storage, err := file.New(path)
	require.NoError(t, err)
	require.NoError(t, storage.HealthCheck(ctx))

	due := task.Date{Year: 2031, Month: time.February, Day: 3}
	in := []task.Task{
		{ID: "1", Title: "Buy milk", Priority: task.PriorityLow, CreatedAt: time.Unix(1, 0).UTC()},
		{ID: "2", Title: "File taxes", Priority: task.PriorityHigh, DueDate: &due, CreatedAt: time.Unix(2, 0).UTC()},
	}
	require.NoError(t, storage.Save(ctx, in))

	out, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	// временные файлы не остаются
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")

	first, err := file.New(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, []task.Task{{ID: "keep"}}))

	second, err := file.New(path)
	require.NoError(t, err)
	out, err := second.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "keep", out[0].ID)
}

func TestStorage_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	storage, err := file.New(path)
	require.NoError(t, err)

	_, err = storage.Load(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}
