package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/mockprep-backend/internal/mock"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/progress"
	"github.com/stemsi/mockprep-backend/internal/repository"
	"github.com/stemsi/mockprep-backend/internal/session"
	"github.com/stemsi/mockprep-backend/internal/storage"
)

var student = model.User{ID: "u1", Username: "student_user", Role: model.RoleUser}

func questions(subject string, d model.Difficulty, n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:            fmt.Sprintf("%s-%d", d, i),
			Subject:       subject,
			Difficulty:    d,
			QuestionText:  fmt.Sprintf("%s question %d", d, i),
			Options:       model.Options{A: "a", B: "b", C: "c", D: "d"},
			CorrectAnswer: model.ChoiceB,
			Explanation:   "because b",
		}
	}
	return qs
}

type failingSink struct{}

func (failingSink) Record(context.Context, string, string, int) error {
	return fmt.Errorf("%w: quota exceeded", progress.ErrPersistence)
}

type fixture struct {
	svc      *MockSessionService
	recorder *progress.Recorder
	sessions *session.Manager
}

func newFixture(t *testing.T, bank []model.Question, opts SessionOptions, sink progress.Sink) *fixture {
	t.Helper()
	recorder := progress.NewRecorder(storage.NewMemoryStore(), zerolog.Nop())
	if sink == nil {
		sink = recorder
	}
	sessions := session.NewManager(time.Minute, zerolog.Nop())
	t.Cleanup(sessions.Shutdown)
	svc := NewMockSessionService(
		repository.NewMemoryQuestionRepository(bank),
		0,
		sessions,
		sink,
		recorder,
		opts,
		zerolog.Nop(),
	)
	return &fixture{svc: svc, recorder: recorder, sessions: sessions}
}

func TestStartSession_ScoresAndRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, questions("Computer Science", model.DifficultyMedium, 3), SessionOptions{}, nil)

	sess, err := f.svc.StartSession(ctx, student, model.StartSessionRequest{MockID: "s_cs_up-mock-7", Subject: "Computer Science"})
	require.NoError(t, err)
	require.Equal(t, 3, sess.Snapshot().Total)

	require.NoError(t, sess.SelectAnswer(model.ChoiceB))
	_, _ = sess.Next()
	require.NoError(t, sess.SelectAnswer(model.ChoiceB))
	_, _ = sess.Next()
	require.NoError(t, sess.SelectAnswer(model.ChoiceA))

	res, err := sess.Finish()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Raw)
	assert.Equal(t, 67, res.Percentage)

	mp, err := f.svc.MockProgress(ctx, student.ID, "s_cs_up-mock-7")
	require.NoError(t, err)
	assert.True(t, mp.Completed)
	require.NotNil(t, mp.BestScore)
	assert.Equal(t, 67, *mp.BestScore)

	items, err := f.svc.Review(student.ID, sess.ID())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.True(t, items[0].IsCorrect)
	assert.False(t, items[2].IsCorrect)
	assert.Equal(t, "because b", items[2].Explanation)
}

func TestStartSession_EmptyCatalog(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, questions("Maths", model.DifficultyMedium, 5), SessionOptions{}, nil)

	sess, err := f.svc.StartSession(ctx, student, model.StartSessionRequest{MockID: "s_math_rrb-mock-21", Subject: "Maths"})

	assert.Nil(t, sess)
	assert.ErrorIs(t, err, mock.ErrEmptyCatalog)
	assert.Equal(t, 0, f.sessions.Len())

	p, err := f.svc.Progress(ctx, student.ID)
	require.NoError(t, err)
	assert.Empty(t, p.CompletedMockIDs)
	assert.Empty(t, p.BestScores)
}

func TestStartSession_TimeoutStillRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, questions("GK", model.DifficultyEasy, 10), SessionOptions{
		TimeLimitSeconds: 5,
		TickInterval:     20 * time.Millisecond,
	}, nil)

	sess, err := f.svc.StartSession(ctx, student, model.StartSessionRequest{MockID: "s_gk_hg-mock-2", Subject: "GK"})
	require.NoError(t, err)
	for i := range 4 {
		_, err := sess.GoTo(i)
		require.NoError(t, err)
		require.NoError(t, sess.SelectAnswer(model.ChoiceB))
	}

	select {
	case <-sess.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("session did not time out")
	}

	snap := sess.Snapshot()
	assert.Equal(t, session.ReasonTimeout, snap.FinishReason)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 40, snap.Result.Percentage)

	score, ok, err := f.svc.GetBestScore(ctx, student.ID, "s_gk_hg-mock-2")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 40, score)
}

func TestStartSession_PersistenceFaultKeepsResult(t *testing.T) {
	f := newFixture(t, questions("GK", model.DifficultyEasy, 2), SessionOptions{}, failingSink{})

	sess, err := f.svc.StartSession(context.Background(), student, model.StartSessionRequest{MockID: "s_gk_hg-mock-1", Subject: "GK"})
	require.NoError(t, err)
	require.NoError(t, sess.SelectAnswer(model.ChoiceB))

	res, err := sess.Finish()

	require.NoError(t, err)
	assert.Equal(t, 50, res.Percentage)
	assert.ErrorIs(t, sess.PersistenceError(), progress.ErrPersistence)
	assert.Equal(t, session.StatusFinished, sess.Status())
}

func TestAbandon_WritesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, questions("GK", model.DifficultyEasy, 2), SessionOptions{}, nil)

	sess, err := f.svc.StartSession(ctx, student, model.StartSessionRequest{MockID: "s_gk_hg-mock-1", Subject: "GK"})
	require.NoError(t, err)
	require.NoError(t, sess.SelectAnswer(model.ChoiceB))

	require.NoError(t, f.svc.Abandon(student.ID, sess.ID()))

	_, err = f.svc.Get(student.ID, sess.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	done, err := f.svc.IsCompleted(ctx, student.ID, "s_gk_hg-mock-1")
	require.NoError(t, err)
	assert.False(t, done)
}

func TestGet_OtherUsersSessionIsForbidden(t *testing.T) {
	f := newFixture(t, questions("GK", model.DifficultyEasy, 2), SessionOptions{}, nil)
	sess, err := f.svc.StartSession(context.Background(), student, model.StartSessionRequest{MockID: "s_gk_hg-mock-1", Subject: "GK"})
	require.NoError(t, err)

	_, err = f.svc.Get("someone-else", sess.ID())

	assert.ErrorIs(t, err, ErrForbidden)
}

func TestReview_RequiresFinished(t *testing.T) {
	f := newFixture(t, questions("GK", model.DifficultyEasy, 2), SessionOptions{}, nil)
	sess, err := f.svc.StartSession(context.Background(), student, model.StartSessionRequest{MockID: "s_gk_hg-mock-1", Subject: "GK"})
	require.NoError(t, err)

	_, err = f.svc.Review(student.ID, sess.ID())

	assert.ErrorIs(t, err, ErrSessionNotFinished)
}

func TestRetake_AbandonsEarlierAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, questions("GK", model.DifficultyEasy, 2), SessionOptions{}, nil)
	req := model.StartSessionRequest{MockID: "s_gk_hg-mock-1", Subject: "GK"}

	first, err := f.svc.StartSession(ctx, student, req)
	require.NoError(t, err)
	second, err := f.svc.StartSession(ctx, student, req)
	require.NoError(t, err)

	assert.Equal(t, session.StatusAbandoned, first.Status())
	assert.Equal(t, session.StatusActive, second.Status())
	done, err := f.svc.IsCompleted(ctx, student.ID, req.MockID)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestListQuestions(t *testing.T) {
	bank := append(questions("GK", model.DifficultyEasy, 2), questions("GK", model.DifficultyHard, 1)...)
	f := newFixture(t, bank, SessionOptions{}, nil)

	qs, err := f.svc.ListQuestions(context.Background(), model.ListQuestionsQuery{Subject: "gk", Difficulty: "hard"})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, model.ChoiceB, qs[0].CorrectAnswer)

	_, err = f.svc.ListQuestions(context.Background(), model.ListQuestionsQuery{Subject: "gk", Difficulty: "extreme"})
	assert.True(t, errors.Is(err, ErrInvalidDifficulty))
}
