package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/mockprep-backend/internal/mock"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/progress"
	"github.com/stemsi/mockprep-backend/internal/review"
	"github.com/stemsi/mockprep-backend/internal/scoring"
	"github.com/stemsi/mockprep-backend/internal/session"
)

// Session service errors.
var (
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionNotFinished = errors.New("session is not finished")
	ErrInvalidDifficulty  = errors.New("difficulty must be Easy, Medium or Hard")
)

// ProgressQuerier answers progress reads for the presentation layer.
type ProgressQuerier interface {
	Progress(ctx context.Context, userID string) (*model.UserProgress, error)
	BestScore(ctx context.Context, userID, mockID string) (int, bool, error)
	IsCompleted(ctx context.Context, userID, mockID string) (bool, error)
}

// SessionOptions configures new sessions.
type SessionOptions struct {
	TimeLimitSeconds int
	TickInterval     time.Duration
}

// MockSessionService starts mock attempts and exposes progress.
type MockSessionService struct {
	assembler *mock.Assembler
	finder    mock.QuestionFinder
	sessions  *session.Manager
	sink      progress.Sink
	progress  ProgressQuerier
	opts      SessionOptions
	log       zerolog.Logger
}

// NewMockSessionService creates a new MockSessionService. Finished attempts
// are written to sink; reads go to querier.
func NewMockSessionService(
	finder mock.QuestionFinder,
	questionLimit int,
	sessions *session.Manager,
	sink progress.Sink,
	querier ProgressQuerier,
	opts SessionOptions,
	log zerolog.Logger,
) *MockSessionService {
	return &MockSessionService{
		assembler: mock.NewAssembler(finder, questionLimit),
		finder:    finder,
		sessions:  sessions,
		sink:      sink,
		progress:  querier,
		opts:      opts,
		log:       log.With().Str("component", "mock_session_service").Logger(),
	}
}

// StartSession draws the questions of req.MockID and starts an Active
// session. It returns mock.ErrEmptyCatalog, and creates nothing, when no
// question matches.
func (s *MockSessionService) StartSession(ctx context.Context, user model.User, req model.StartSessionRequest) (*session.Session, error) {
	draw, err := s.assembler.Assemble(ctx, req.MockID, req.Subject)
	if err != nil {
		return nil, fmt.Errorf("assemble mock: %w", err)
	}
	if draw.Empty() {
		s.log.Info().
			Str("user_id", user.ID).
			Str("mock_id", req.MockID).
			Str("difficulty", string(draw.Difficulty)).
			Msg("No questions for mock")
		return nil, mock.ErrEmptyCatalog
	}

	sess, err := session.New(uuid.New().String(), user.ID, draw, session.Options{
		TimeLimitSeconds: s.opts.TimeLimitSeconds,
		TickInterval:     s.opts.TickInterval,
		OnFinish:         s.recordFinish,
		Logger:           s.log.With().Str("user_id", user.ID).Logger(),
	})
	if err != nil {
		return nil, err
	}
	s.sessions.Add(sess)

	s.log.Info().
		Str("session_id", sess.ID()).
		Str("user_id", user.ID).
		Str("mock_id", req.MockID).
		Str("difficulty", string(draw.Difficulty)).
		Int("questions", len(draw.Questions)).
		Msg("Session started")
	return sess, nil
}

// recordFinish runs once per session on the finish edge.
func (s *MockSessionService) recordFinish(sess *session.Session, res scoring.Result) error {
	return s.sink.Record(context.Background(), sess.UserID(), sess.MockID(), res.Percentage)
}

// Get returns a session owned by userID.
func (s *MockSessionService) Get(userID, sessionID string) (*session.Session, error) {
	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if sess.UserID() != userID {
		return nil, ErrForbidden
	}
	return sess, nil
}

// Abandon discards a session. An Active session is stopped without a
// progress record.
func (s *MockSessionService) Abandon(userID, sessionID string) error {
	sess, err := s.Get(userID, sessionID)
	if err != nil {
		return err
	}
	sess.Abandon()
	s.sessions.Remove(sessionID)
	return nil
}

// Review pairs every question of a finished session with the recorded answer.
func (s *MockSessionService) Review(userID, sessionID string) ([]review.Item, error) {
	sess, err := s.Get(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status() != session.StatusFinished {
		return nil, ErrSessionNotFinished
	}
	return review.Build(sess.Questions(), sess.Answers()), nil
}

// Progress returns the full mock history of userID.
func (s *MockSessionService) Progress(ctx context.Context, userID string) (*model.UserProgress, error) {
	return s.progress.Progress(ctx, userID)
}

// GetBestScore returns the best percentage on mockID, if it was ever finished.
func (s *MockSessionService) GetBestScore(ctx context.Context, userID, mockID string) (int, bool, error) {
	return s.progress.BestScore(ctx, userID, mockID)
}

// IsCompleted reports whether mockID was finished at least once.
func (s *MockSessionService) IsCompleted(ctx context.Context, userID, mockID string) (bool, error) {
	return s.progress.IsCompleted(ctx, userID, mockID)
}

// MockProgress combines GetBestScore and IsCompleted.
func (s *MockSessionService) MockProgress(ctx context.Context, userID, mockID string) (*model.MockProgress, error) {
	completed, err := s.IsCompleted(ctx, userID, mockID)
	if err != nil {
		return nil, err
	}
	out := &model.MockProgress{MockID: mockID, Completed: completed}
	score, ok, err := s.GetBestScore(ctx, userID, mockID)
	if err != nil {
		return nil, err
	}
	if ok {
		out.BestScore = &score
	}
	return out, nil
}

// ListQuestions browses the bank with answer keys, for admins.
func (s *MockSessionService) ListQuestions(ctx context.Context, q model.ListQuestionsQuery) ([]model.Question, error) {
	d, ok := model.ParseDifficulty(q.Difficulty)
	if !ok {
		return nil, ErrInvalidDifficulty
	}
	questions, err := s.finder.FindMatching(ctx, q.Subject, d)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return questions, nil
}
