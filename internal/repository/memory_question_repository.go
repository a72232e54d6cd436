package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/stemsi/mockprep-backend/internal/model"
)

// MemoryQuestionRepository is an in-process question bank. It backs local
// development (QUESTION_STORE=memory) and tests.
type MemoryQuestionRepository struct {
	mu        sync.RWMutex
	questions []model.Question
}

// NewMemoryQuestionRepository creates a bank holding questions in the given order.
func NewMemoryQuestionRepository(questions []model.Question) *MemoryQuestionRepository {
	qs := make([]model.Question, len(questions))
	copy(qs, questions)
	return &MemoryQuestionRepository{questions: qs}
}

// FindMatching returns questions of subject (case-insensitive) at difficulty
// in insertion order.
func (r *MemoryQuestionRepository) FindMatching(_ context.Context, subject string, difficulty model.Difficulty) ([]model.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := []model.Question{}
	for _, q := range r.questions {
		if q.Difficulty != difficulty {
			continue
		}
		if q.Subject == subject || strings.EqualFold(q.Subject, subject) {
			matches = append(matches, q)
		}
	}
	return matches, nil
}

// CountBySubject mirrors QuestionRepository.CountBySubject.
func (r *MemoryQuestionRepository) CountBySubject(_ context.Context) (map[string]map[model.Difficulty]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[string]map[model.Difficulty]int)
	for _, q := range r.questions {
		if counts[q.Subject] == nil {
			counts[q.Subject] = make(map[model.Difficulty]int)
		}
		counts[q.Subject][q.Difficulty]++
	}
	return counts, nil
}

// UpsertMany replaces questions with a known id in place and appends the rest.
func (r *MemoryQuestionRepository) UpsertMany(_ context.Context, questions []model.Question) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := make(map[string]int, len(r.questions))
	for i, q := range r.questions {
		index[q.ID] = i
	}
	for _, q := range questions {
		if i, ok := index[q.ID]; ok {
			r.questions[i] = q
			continue
		}
		index[q.ID] = len(r.questions)
		r.questions = append(r.questions, q)
	}
	return nil
}

// ReadQuestionsFile decodes a JSON array of questions.
func ReadQuestionsFile(path string) ([]model.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	var questions []model.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode questions file: %w", err)
	}
	return questions, nil
}
