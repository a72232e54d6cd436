package worker

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/mockprep-backend/internal/progress"
	"github.com/stemsi/mockprep-backend/internal/storage"
)

func TestFoldAttempts(t *testing.T) {
	batch := []attemptPayload{
		{UserID: "u1", MockID: "m-mock-1", Percentage: 40},
		{UserID: "u1", MockID: "m-mock-1", Percentage: 80},
		{UserID: "u1", MockID: "m-mock-1", Percentage: 60},
		{UserID: "u1", MockID: "m-mock-2", Percentage: 0},
		{UserID: "u2", MockID: "m-mock-1", Percentage: 10},
		{UserID: "", MockID: "m-mock-9", Percentage: 100},
	}

	got := foldAttempts(batch)

	assert.Equal(t, map[string]map[string]int{
		"u1": {"m-mock-1": 80, "m-mock-2": 0},
		"u2": {"m-mock-1": 10},
	}, got)
}

func TestFlushSafe_WritesFoldedBatch(t *testing.T) {
	ctx := context.Background()
	rec := progress.NewRecorder(storage.NewMemoryStore(), zerolog.Nop())
	require.NoError(t, rec.Record(ctx, "u1", "m-mock-1", 90))
	w := NewProgressWorker(nil, rec, zerolog.Nop())

	w.flushSafe(ctx, []attemptPayload{
		{UserID: "u1", MockID: "m-mock-1", Percentage: 50},
		{UserID: "u1", MockID: "m-mock-4", Percentage: 30},
	})

	p, err := rec.Progress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m-mock-1", "m-mock-4"}, p.CompletedMockIDs)
	assert.Equal(t, map[string]int{"m-mock-1": 90, "m-mock-4": 30}, p.BestScores)
}
