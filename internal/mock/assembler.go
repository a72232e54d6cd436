package mock

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/mockprep-backend/internal/model"
)

// ErrEmptyCatalog is returned when a mock would start with no questions.
var ErrEmptyCatalog = errors.New("no questions available for this mock")

// DefaultQuestionLimit caps the size of a drawn mock.
const DefaultQuestionLimit = 10

// QuestionFinder is the read side of the question bank.
type QuestionFinder interface {
	FindMatching(ctx context.Context, subject string, difficulty model.Difficulty) ([]model.Question, error)
}

// Draw is the outcome of assembling one mock.
type Draw struct {
	MockID     string
	Subject    string
	Number     int
	Difficulty model.Difficulty
	Questions  []model.Question
}

// Empty reports whether the bank had no matching questions.
func (d *Draw) Empty() bool {
	return len(d.Questions) == 0
}

// Assembler draws the ordered question set of a mock.
type Assembler struct {
	finder QuestionFinder
	limit  int
}

// NewAssembler creates an Assembler. A non-positive limit means DefaultQuestionLimit.
func NewAssembler(finder QuestionFinder, limit int) *Assembler {
	if limit <= 0 {
		limit = DefaultQuestionLimit
	}
	return &Assembler{finder: finder, limit: limit}
}

// Assemble resolves the tier of mockID and takes the first matches in
// repository order. An empty draw is not an error; only repository faults are.
func (a *Assembler) Assemble(ctx context.Context, mockID, subject string) (*Draw, error) {
	n := ParseNumber(mockID)
	tier := Tier(n)

	matches, err := a.finder.FindMatching(ctx, subject, tier)
	if err != nil {
		return nil, fmt.Errorf("find %s questions for %q: %w", tier, subject, err)
	}

	if len(matches) > a.limit {
		matches = matches[:a.limit]
	}
	questions := make([]model.Question, len(matches))
	copy(questions, matches)

	return &Draw{
		MockID:     mockID,
		Subject:    subject,
		Number:     n,
		Difficulty: tier,
		Questions:  questions,
	}, nil
}
