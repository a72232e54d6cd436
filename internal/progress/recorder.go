// Package progress keeps the durable per-user mock history: which mocks were
// finished and the best percentage reached on each.
package progress

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"github.com/stemsi/mockprep-backend/internal/config"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/storage"
)

// ErrPersistence marks a read or write of progress that the persistence
// service could not complete.
var ErrPersistence = errors.New("progress persistence failed")

// Sink receives one finished attempt.
type Sink interface {
	Record(ctx context.Context, userID, mockID string, percentage int) error
}

// Recorder reads and writes progress through a storage.Store. Writes are
// read-modify-write and serialised by mu.
type Recorder struct {
	store storage.Store
	mu    sync.Mutex
	log   zerolog.Logger
}

// NewRecorder creates a Recorder.
func NewRecorder(store storage.Store, log zerolog.Logger) *Recorder {
	return &Recorder{
		store: store,
		log:   log.With().Str("component", "progress_recorder").Logger(),
	}
}

// Record marks mockID completed and raises its best score to percentage if higher.
func (r *Recorder) Record(ctx context.Context, userID, mockID string, percentage int) error {
	return r.RecordMany(ctx, userID, map[string]int{mockID: percentage})
}

// RecordMany applies several attempts of one user in a single read-modify-write.
func (r *Recorder) RecordMany(ctx context.Context, userID string, attempts map[string]int) error {
	if len(attempts) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	completed, err := r.loadCompleted(ctx, userID)
	if err != nil {
		return err
	}
	best, err := r.loadBestScores(ctx, userID)
	if err != nil {
		return err
	}

	prevBest := maps.Clone(best)

	// Deterministic append order for new completions.
	mockIDs := make([]string, 0, len(attempts))
	for id := range attempts {
		mockIDs = append(mockIDs, id)
	}
	slices.Sort(mockIDs)

	for _, mockID := range mockIDs {
		pct := clampPercentage(attempts[mockID])
		if !slices.Contains(completed, mockID) {
			completed = append(completed, mockID)
		}
		if cur, ok := best[mockID]; !ok || pct > cur {
			best[mockID] = pct
		}
	}

	// Best scores first: a completed mock always has a score on disk.
	if err := storage.SetJSON(ctx, r.store, config.CacheKey.BestScoresKey(userID), best); err != nil {
		return fmt.Errorf("%w: save best scores: %w", ErrPersistence, err)
	}
	if err := storage.SetJSON(ctx, r.store, config.CacheKey.CompletedMocksKey(userID), completed); err != nil {
		// Put the old scores back so no mock has a score without a completion.
		if rbErr := storage.SetJSON(ctx, r.store, config.CacheKey.BestScoresKey(userID), prevBest); rbErr != nil {
			r.log.Error().Err(rbErr).Str("user_id", userID).Msg("Best score rollback failed")
		}
		return fmt.Errorf("%w: save completed mocks: %w", ErrPersistence, err)
	}

	r.log.Debug().
		Str("user_id", userID).
		Int("attempts", len(attempts)).
		Msg("Progress recorded")
	return nil
}

// BestScore returns the best percentage for mockID. ok is false when the
// mock was never finished.
func (r *Recorder) BestScore(ctx context.Context, userID, mockID string) (int, bool, error) {
	best, err := r.loadBestScores(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	score, ok := best[mockID]
	return score, ok, nil
}

// IsCompleted reports whether mockID was finished at least once.
func (r *Recorder) IsCompleted(ctx context.Context, userID, mockID string) (bool, error) {
	completed, err := r.loadCompleted(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.Contains(completed, mockID), nil
}

// Progress returns the full history of userID.
func (r *Recorder) Progress(ctx context.Context, userID string) (*model.UserProgress, error) {
	completed, err := r.loadCompleted(ctx, userID)
	if err != nil {
		return nil, err
	}
	best, err := r.loadBestScores(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.UserProgress{
		UserID:           userID,
		CompletedMockIDs: completed,
		BestScores:       best,
	}, nil
}

func (r *Recorder) loadCompleted(ctx context.Context, userID string) ([]string, error) {
	completed := []string{}
	if _, err := storage.GetJSON(ctx, r.store, config.CacheKey.CompletedMocksKey(userID), &completed); err != nil {
		return nil, fmt.Errorf("%w: load completed mocks: %w", ErrPersistence, err)
	}
	if completed == nil {
		completed = []string{}
	}
	return completed, nil
}

func (r *Recorder) loadBestScores(ctx context.Context, userID string) (map[string]int, error) {
	best := map[string]int{}
	if _, err := storage.GetJSON(ctx, r.store, config.CacheKey.BestScoresKey(userID), &best); err != nil {
		return nil, fmt.Errorf("%w: load best scores: %w", ErrPersistence, err)
	}
	if best == nil {
		best = map[string]int{}
	}
	return best, nil
}

func clampPercentage(p int) int {
	return min(max(p, 0), 100)
}
