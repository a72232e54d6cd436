package progress

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/mockprep-backend/internal/config"
	"github.com/stemsi/mockprep-backend/internal/storage"
)

type brokenStore struct {
	failGet bool
	failSet bool
	// failSetKey fails Set only for this key when non-empty.
	failSetKey string
	inner      *storage.MemoryStore
}

func (s *brokenStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.failGet {
		return nil, false, &storage.FaultError{Op: "get", Key: key, Err: errors.New("quota exceeded")}
	}
	return s.inner.Get(ctx, key)
}

func (s *brokenStore) Set(ctx context.Context, key string, value []byte) error {
	if s.failSet || (s.failSetKey != "" && key == s.failSetKey) {
		return &storage.FaultError{Op: "set", Key: key, Err: errors.New("quota exceeded")}
	}
	return s.inner.Set(ctx, key, value)
}

func TestRecord_FirstFinishCreatesRecord(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(storage.NewMemoryStore(), zerolog.Nop())

	require.NoError(t, rec.Record(ctx, "u1", "s_cs_up-mock-7", 67))

	score, ok, err := rec.BestScore(ctx, "u1", "s_cs_up-mock-7")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 67, score)

	done, err := rec.IsCompleted(ctx, "u1", "s_cs_up-mock-7")
	require.NoError(t, err)
	assert.True(t, done)
}

func TestRecord_BestScoreIsMaximum(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(storage.NewMemoryStore(), zerolog.Nop())

	for _, pct := range []int{40, 90, 10, 70} {
		require.NoError(t, rec.Record(ctx, "u1", "m-mock-1", pct))
	}

	score, ok, err := rec.BestScore(ctx, "u1", "m-mock-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 90, score)

	p, err := rec.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m-mock-1"}, p.CompletedMockIDs, "completed set holds no duplicates")
}

func TestRecord_ZeroScoreStillCompletes(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(storage.NewMemoryStore(), zerolog.Nop())

	require.NoError(t, rec.Record(ctx, "u1", "m-mock-3", 0))

	score, ok, err := rec.BestScore(ctx, "u1", "m-mock-3")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, score)
}

func TestBestScore_AbsentForUnfinishedMock(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(storage.NewMemoryStore(), zerolog.Nop())

	_, ok, err := rec.BestScore(ctx, "u1", "m-mock-2")
	require.NoError(t, err)
	assert.False(t, ok)

	done, err := rec.IsCompleted(ctx, "u1", "m-mock-2")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRecord_UsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(storage.NewMemoryStore(), zerolog.Nop())

	require.NoError(t, rec.Record(ctx, "alice", "m-mock-1", 80))

	done, err := rec.IsCompleted(ctx, "bob", "m-mock-1")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestRecordMany_FoldsAttempts(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(storage.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, rec.Record(ctx, "u1", "m-mock-1", 50))

	require.NoError(t, rec.RecordMany(ctx, "u1", map[string]int{"m-mock-1": 30, "m-mock-2": 100, "m-mock-3": 150}))

	p, err := rec.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m-mock-1", "m-mock-2", "m-mock-3"}, p.CompletedMockIDs)
	assert.Equal(t, map[string]int{"m-mock-1": 50, "m-mock-2": 100, "m-mock-3": 100}, p.BestScores)
}

func TestRecord_WriteFaultIsPersistenceError(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorder(&brokenStore{failSet: true, inner: storage.NewMemoryStore()}, zerolog.Nop())

	err := rec.Record(ctx, "u1", "m-mock-1", 50)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

func TestProgress_ReadFaultIsPersistenceError(t *testing.T) {
	rec := NewRecorder(&brokenStore{failGet: true, inner: storage.NewMemoryStore()}, zerolog.Nop())

	_, err := rec.Progress(context.Background(), "u1")

	assert.ErrorIs(t, err, ErrPersistence)
}

func TestProgress_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "progress.db")

	store, err := storage.OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	rec := NewRecorder(store, zerolog.Nop())
	require.NoError(t, rec.Record(ctx, "u1", "s_gk_hg-mock-1", 40))
	require.NoError(t, rec.Record(ctx, "u1", "s_gk_hg-mock-16", 80))
	require.NoError(t, rec.Record(ctx, "u1", "s_gk_hg-mock-1", 60))
	before, err := rec.Progress(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := storage.OpenSQLiteStore(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	after, err := NewRecorder(reopened, zerolog.Nop()).Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, []string{"s_gk_hg-mock-1", "s_gk_hg-mock-16"}, after.CompletedMockIDs)
	assert.Equal(t, map[string]int{"s_gk_hg-mock-1": 60, "s_gk_hg-mock-16": 80}, after.BestScores)
}

func TestRecord_FailedCompletionWriteKeepsScoresPaired(t *testing.T) {
	ctx := context.Background()
	store := &brokenStore{inner: storage.NewMemoryStore()}
	rec := NewRecorder(store, zerolog.Nop())
	require.NoError(t, rec.Record(ctx, "u1", "s_cs_up-mock-1", 40))

	store.failSetKey = config.CacheKey.CompletedMocksKey("u1")
	err := rec.Record(ctx, "u1", "s_cs_up-mock-2", 80)
	require.ErrorIs(t, err, ErrPersistence)
	store.failSetKey = ""

	_, ok, err := rec.BestScore(ctx, "u1", "s_cs_up-mock-2")
	require.NoError(t, err)
	assert.False(t, ok, "no score without a completion")
	done, err := rec.IsCompleted(ctx, "u1", "s_cs_up-mock-2")
	require.NoError(t, err)
	assert.False(t, done)

	score, ok, err := rec.BestScore(ctx, "u1", "s_cs_up-mock-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 40, score)
}
