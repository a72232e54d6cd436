// Package session implements the live state machine of one mock attempt:
// free navigation over the drawn questions, a one-second countdown and a
// single-use finish latch.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/mockprep-backend/internal/mock"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/scoring"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusFinished  Status = "FINISHED"
	StatusAbandoned Status = "ABANDONED"
)

// FinishReason tells how a session reached Finished.
type FinishReason string

const (
	ReasonSubmitted FinishReason = "submitted"
	ReasonTimeout   FinishReason = "timeout"
)

const (
	DefaultTimeLimitSeconds = 900
	DefaultTickInterval     = time.Second
)

var (
	ErrSessionClosed = errors.New("session is no longer active")
	ErrInvalidChoice = errors.New("choice must be one of A, B, C, D")
)

// FinishFunc runs once on the Active to Finished edge, outside the session
// lock. A returned error is kept as a persistence warning and does not
// change the result.
type FinishFunc func(s *Session, result scoring.Result) error

// Options tunes a session. Zero values fall back to the defaults.
type Options struct {
	TimeLimitSeconds int
	TickInterval     time.Duration
	OnFinish         FinishFunc
	Logger           zerolog.Logger
}

// Session is one attempt. All methods are safe for concurrent use.
type Session struct {
	id         string
	userID     string
	mockID     string
	subject    string
	number     int
	difficulty model.Difficulty
	questions  []model.Question
	timeLimit  int
	startedAt  time.Time
	onFinish   FinishFunc
	log        zerolog.Logger

	mu         sync.Mutex
	status     Status
	current    int
	answers    map[int]model.ChoiceKey
	remaining  int
	reason     FinishReason
	result     *scoring.Result
	endedAt    time.Time
	persistErr error

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	doneOnce sync.Once
}

// New starts an Active session over draw and launches its countdown.
// An empty draw is refused with mock.ErrEmptyCatalog.
func New(id, userID string, draw *mock.Draw, opts Options) (*Session, error) {
	if draw == nil || draw.Empty() {
		return nil, mock.ErrEmptyCatalog
	}
	if opts.TimeLimitSeconds <= 0 {
		opts.TimeLimitSeconds = DefaultTimeLimitSeconds
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}

	questions := make([]model.Question, len(draw.Questions))
	copy(questions, draw.Questions)

	s := &Session{
		id:         id,
		userID:     userID,
		mockID:     draw.MockID,
		subject:    draw.Subject,
		number:     draw.Number,
		difficulty: draw.Difficulty,
		questions:  questions,
		timeLimit:  opts.TimeLimitSeconds,
		startedAt:  time.Now(),
		onFinish:   opts.OnFinish,
		log: opts.Logger.With().
			Str("session_id", id).
			Str("mock_id", draw.MockID).
			Logger(),
		status:    StatusActive,
		answers:   make(map[int]model.ChoiceKey),
		remaining: opts.TimeLimitSeconds,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go s.countdown(opts.TickInterval)
	return s, nil
}

func (s *Session) countdown(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			if s.tick() {
				s.finish(ReasonTimeout)
				return
			}
		}
	}
}

// tick reports whether the time limit was reached.
func (s *Session) tick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return false
	}
	if s.remaining > 0 {
		s.remaining--
	}
	return s.remaining == 0
}

// SelectAnswer records choice for the current question, replacing any
// earlier choice.
func (s *Session) SelectAnswer(choice model.ChoiceKey) error {
	if !choice.Valid() {
		return ErrInvalidChoice
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return ErrSessionClosed
	}
	s.answers[s.current] = choice
	return nil
}

// GoTo moves to index, clamped to the question range, and returns the new index.
func (s *Session) GoTo(index int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return s.current, ErrSessionClosed
	}
	s.current = max(0, min(index, len(s.questions)-1))
	return s.current, nil
}

// Next moves forward one question; it stays put on the last question.
func (s *Session) Next() (int, error) {
	return s.step(1)
}

// Previous moves back one question; it stays put on the first question.
func (s *Session) Previous() (int, error) {
	return s.step(-1)
}

func (s *Session) step(delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return s.current, ErrSessionClosed
	}
	s.current = max(0, min(s.current+delta, len(s.questions)-1))
	return s.current, nil
}

// Finish submits the attempt. Calls after the first return the stored
// result without side effects. An abandoned session returns ErrSessionClosed.
func (s *Session) Finish() (scoring.Result, error) {
	return s.finish(ReasonSubmitted)
}

func (s *Session) finish(reason FinishReason) (scoring.Result, error) {
	s.mu.Lock()
	switch s.status {
	case StatusFinished:
		res := *s.result
		s.mu.Unlock()
		return res, nil
	case StatusAbandoned:
		s.mu.Unlock()
		return scoring.Result{}, ErrSessionClosed
	}

	s.status = StatusFinished
	s.reason = reason
	s.endedAt = time.Now()
	res := scoring.Score(s.questions, s.answers)
	s.result = &res
	s.mu.Unlock()

	s.stopCountdown()

	s.log.Info().
		Str("reason", string(reason)).
		Int("score", res.Percentage).
		Int("raw", res.Raw).
		Int("total", res.Total).
		Msg("Session finished")

	if s.onFinish != nil {
		if err := s.onFinish(s, res); err != nil {
			s.log.Warn().Err(err).Msg("Progress not persisted")
			s.mu.Lock()
			s.persistErr = err
			s.mu.Unlock()
		}
	}

	s.doneOnce.Do(func() { close(s.done) })
	return res, nil
}

// Abandon discards an Active session without scoring it. It reports whether
// the session was Active.
func (s *Session) Abandon() bool {
	s.mu.Lock()
	if s.status != StatusActive {
		s.mu.Unlock()
		return false
	}
	s.status = StatusAbandoned
	s.endedAt = time.Now()
	s.mu.Unlock()

	s.stopCountdown()
	s.doneOnce.Do(func() { close(s.done) })

	s.log.Info().Msg("Session abandoned")
	return true
}

func (s *Session) stopCountdown() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Done is closed once the session is Finished (after the finish callback
// returned) or Abandoned.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) ID() string     { return s.id }
func (s *Session) UserID() string { return s.userID }
func (s *Session) MockID() string { return s.mockID }

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// EndedAt is the time the session left Active, or zero while Active.
func (s *Session) EndedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endedAt
}

// Questions returns a copy of the drawn questions, answer keys included.
func (s *Session) Questions() []model.Question {
	out := make([]model.Question, len(s.questions))
	copy(out, s.questions)
	return out
}

// Paper returns the questions without answer keys.
func (s *Session) Paper() []model.QuestionForStudent {
	out := make([]model.QuestionForStudent, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.ForStudent(i)
	}
	return out
}

// Answers returns a copy of the recorded answers keyed by question index.
func (s *Session) Answers() map[int]model.ChoiceKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyAnswers()
}

func (s *Session) copyAnswers() map[int]model.ChoiceKey {
	out := make(map[int]model.ChoiceKey, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}

// Result returns the score once Finished.
func (s *Session) Result() (scoring.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return scoring.Result{}, false
	}
	return *s.result, true
}

// PersistenceError is the progress write failure of a finished session, if any.
func (s *Session) PersistenceError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistErr
}

// Snapshot is the render state of a session.
type Snapshot struct {
	SessionID        string                  `json:"session_id"`
	MockID           string                  `json:"mock_id"`
	Subject          string                  `json:"subject"`
	Number           int                     `json:"number"`
	Difficulty       model.Difficulty        `json:"difficulty"`
	Status           Status                  `json:"status"`
	CurrentIndex     int                     `json:"current_index"`
	Total            int                     `json:"total"`
	Answers          map[int]model.ChoiceKey `json:"answers"`
	AnsweredCount    int                     `json:"answered_count"`
	RemainingSeconds int                     `json:"remaining_seconds"`
	ElapsedSeconds   int                     `json:"elapsed_seconds"`
	FinishReason     FinishReason            `json:"finish_reason,omitempty"`
	Result           *scoring.Result         `json:"result,omitempty"`
	Warnings         []string                `json:"warnings,omitempty"`
	StartedAt        time.Time               `json:"started_at"`
	EndedAt          *time.Time              `json:"ended_at,omitempty"`
}

// Snapshot captures the session state atomically.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		SessionID:        s.id,
		MockID:           s.mockID,
		Subject:          s.subject,
		Number:           s.number,
		Difficulty:       s.difficulty,
		Status:           s.status,
		CurrentIndex:     s.current,
		Total:            len(s.questions),
		Answers:          s.copyAnswers(),
		AnsweredCount:    len(s.answers),
		RemainingSeconds: s.remaining,
		ElapsedSeconds:   s.timeLimit - s.remaining,
		FinishReason:     s.reason,
		StartedAt:        s.startedAt,
	}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
	}
	if !s.endedAt.IsZero() {
		ended := s.endedAt
		snap.EndedAt = &ended
	}
	if s.persistErr != nil {
		snap.Warnings = []string{s.persistErr.Error()}
	}
	return snap
}
