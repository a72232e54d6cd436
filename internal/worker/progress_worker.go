package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/mockprep-backend/internal/config"
	"github.com/stemsi/mockprep-backend/internal/progress"
)

const (
	ProgressBatchSize    = 50
	ProgressBatchTimeout = 2 * time.Second
	ProgressPollTimeout  = 1 * time.Second
)

type attemptPayload struct {
	UserID     string    `json:"user_id"`
	MockID     string    `json:"mock_id"`
	Percentage int       `json:"percentage"`
	FinishedAt time.Time `json:"finished_at"`
}

// ProgressQueue is a progress.Sink that enqueues finished attempts on Redis
// for ProgressWorker.
type ProgressQueue struct {
	rdb *redis.Client
}

// NewProgressQueue creates a ProgressQueue.
func NewProgressQueue(rdb *redis.Client) *ProgressQueue {
	return &ProgressQueue{rdb: rdb}
}

// Record enqueues one attempt.
func (q *ProgressQueue) Record(ctx context.Context, userID, mockID string, percentage int) error {
	raw, err := json.Marshal(attemptPayload{
		UserID:     userID,
		MockID:     mockID,
		Percentage: percentage,
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode attempt: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.PersistProgressQueue, raw).Err(); err != nil {
		return fmt.Errorf("%w: enqueue attempt: %w", progress.ErrPersistence, err)
	}
	return nil
}

// BatchRecorder applies folded attempts of one user.
type BatchRecorder interface {
	RecordMany(ctx context.Context, userID string, attempts map[string]int) error
}

// ProgressWorker drains the progress queue into the recorder in batches.
type ProgressWorker struct {
	rdb      *redis.Client
	recorder BatchRecorder
	log      zerolog.Logger
}

func NewProgressWorker(rdb *redis.Client, recorder BatchRecorder, log zerolog.Logger) *ProgressWorker {
	return &ProgressWorker{
		rdb:      rdb,
		recorder: recorder,
		log:      log.With().Str("component", "progress_worker").Logger(),
	}
}

// ----------------------------------------------------------------
// Worker loop with batching
// ----------------------------------------------------------------

func (w *ProgressWorker) Start(ctx context.Context) {
	w.log.Info().Msg("ProgressWorker started")

	batch := make([]attemptPayload, 0, ProgressBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 &&
			(len(batch) >= ProgressBatchSize || time.Since(lastFlush) >= ProgressBatchTimeout) {

			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.log.Info().Msg("Shutdown requested. Flushing remaining batch...")
			w.flushSafe(context.Background(), batch)
			return

		default:
			item, err := w.rdb.BLPop(ctx, ProgressPollTimeout, config.WorkerKey.PersistProgressQueue).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					w.log.Error().Err(err).Msg("BLPop error")
				}
				continue
			}

			if len(item) < 2 {
				continue
			}

			var p attemptPayload
			if err := json.Unmarshal([]byte(item[1]), &p); err != nil {
				w.log.Error().Err(err).Msg("Invalid JSON payload")
				continue
			}

			batch = append(batch, p)
		}
	}
}

// ----------------------------------------------------------------
// Batch write with per-user requeue on failure
// ----------------------------------------------------------------

func (w *ProgressWorker) flushSafe(ctx context.Context, batch []attemptPayload) {
	if len(batch) == 0 {
		return
	}

	for userID, attempts := range foldAttempts(batch) {
		if err := w.recorder.RecordMany(ctx, userID, attempts); err != nil {
			w.log.Error().Err(err).Str("user_id", userID).Msg("RecordMany failed, requeueing")
			w.requeue(ctx, userID, attempts)
		}
	}
}

func (w *ProgressWorker) requeue(ctx context.Context, userID string, attempts map[string]int) {
	pipe := w.rdb.Pipeline()
	for mockID, pct := range attempts {
		raw, _ := json.Marshal(attemptPayload{UserID: userID, MockID: mockID, Percentage: pct, FinishedAt: time.Now().UTC()})
		pipe.RPush(ctx, config.WorkerKey.PersistProgressQueue, raw)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Str("user_id", userID).Msg("Requeue failed, attempts dropped")
	}
}

// foldAttempts groups a batch by user and keeps the best percentage per mock.
func foldAttempts(batch []attemptPayload) map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, p := range batch {
		if p.UserID == "" || p.MockID == "" {
			continue
		}
		user := out[p.UserID]
		if user == nil {
			user = make(map[string]int)
			out[p.UserID] = user
		}
		if cur, ok := user[p.MockID]; !ok || p.Percentage > cur {
			user[p.MockID] = p.Percentage
		}
	}
	return out
}
