package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"cortexprobe/internal/config"
	"cortexprobe/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string) *core.RunRecord {
	return &core.RunRecord{
		ID:         id,
		Command:    core.CommandAgent,
		Target:     "https://acct.snowflakecomputing.com/api/v2/cortex/agent:run",
		StartedAt:  time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
		Duration:   1500 * time.Millisecond,
		StatusCode: 200,
		Events:     4,
		Outcome:    core.OutcomeCompleted,
	}
}

func TestFileStorage_EmptyWhenMissing(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "runs.json"), 0)
	history, err := fs.LoadRuns()
	require.NoError(t, err)
	assert.NotNil(t, history.Runs)
	assert.Empty(t, history.Runs)
}

func TestFileStorage_AppendAndLoad(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "runs.json"), 0)
	require.NoError(t, fs.AppendRun(record("run-1")))
	require.NoError(t, fs.AppendRun(record("run-2")))

	history, err := fs.LoadRuns()
	require.NoError(t, err)
	require.Len(t, history.Runs, 2)
	assert.Equal(t, "run-1", history.Runs[0].ID)
	assert.Equal(t, "run-2", history.Runs[1].ID)
	assert.Equal(t, 1500*time.Millisecond, history.Runs[0].Duration)
	assert.True(t, history.Runs[0].StartedAt.Equal(record("x").StartedAt))
	assert.NoError(t, fs.Close())
}

func TestFileStorage_KeepsNewestWithinLimit(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "runs.json"), 2)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, fs.AppendRun(record(id)))
	}

	history, err := fs.LoadRuns()
	require.NoError(t, err)
	require.Len(t, history.Runs, 2)
	assert.Equal(t, "b", history.Runs[0].ID)
	assert.Equal(t, "c", history.Runs[1].ID)
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), core.FilePermissionReadWrite))

	fs := NewFileStorage(path, 0)
	_, err := fs.LoadRuns()
	assert.Error(t, err)
	assert.Error(t, fs.AppendRun(record("run-1")))
}

func TestInitStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")

	store := InitStorage(config.HistoryConfig{}, &core.NopLogger{})
	assert.IsType(t, &core.NopRunStore{}, store)

	store = InitStorage(config.HistoryConfig{FilePath: path}, &core.NopLogger{})
	assert.IsType(t, &FileStorage{}, store)
}

func TestInitStorage_RedisUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.json")

	store := InitStorage(config.HistoryConfig{RedisURL: "redis://127.0.0.1:1/0", FilePath: path}, &core.NopLogger{})
	assert.IsType(t, &FileStorage{}, store)

	store = InitStorage(config.HistoryConfig{RedisURL: "redis://127.0.0.1:1/0"}, &core.NopLogger{})
	assert.IsType(t, &core.NopRunStore{}, store)
}

func TestNewRedisStorage_InvalidURL(t *testing.T) {
	_, err := NewRedisStorage(RedisStorageConfig{URL: "not a url"})
	assert.Error(t, err)
}
