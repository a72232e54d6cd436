package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/mockprep-backend/internal/model"
)

func questionsWithKeys(keys ...model.ChoiceKey) []model.Question {
	qs := make([]model.Question, len(keys))
	for i, k := range keys {
		qs[i] = model.Question{ID: string(rune('a' + i)), CorrectAnswer: k}
	}
	return qs
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		raw, total, want int
	}{
		{0, 10, 0},
		{10, 10, 100},
		{2, 3, 67},
		{1, 3, 33},
		{1, 8, 13}, // 12.5 rounds up
		{1, 2, 50},
		{5, 7, 71},
		{0, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percentage(tt.raw, tt.total), "%d/%d", tt.raw, tt.total)
	}
}

func TestScore_TwoOfThree(t *testing.T) {
	qs := questionsWithKeys(model.ChoiceA, model.ChoiceB, model.ChoiceC)
	answers := map[int]model.ChoiceKey{0: model.ChoiceA, 1: model.ChoiceB, 2: model.ChoiceD}

	got := Score(qs, answers)

	assert.Equal(t, Result{Raw: 2, Total: 3, Answered: 3, Percentage: 67}, got)
}

func TestScore_UnansweredCountAsWrong(t *testing.T) {
	qs := questionsWithKeys(
		model.ChoiceA, model.ChoiceA, model.ChoiceA, model.ChoiceA, model.ChoiceA,
		model.ChoiceA, model.ChoiceA, model.ChoiceA, model.ChoiceA, model.ChoiceA,
	)
	answers := map[int]model.ChoiceKey{0: model.ChoiceA, 1: model.ChoiceA, 2: model.ChoiceB, 3: model.ChoiceA}

	got := Score(qs, answers)

	assert.Equal(t, 3, got.Raw)
	assert.Equal(t, 4, got.Answered)
	assert.Equal(t, 10, got.Total)
	assert.Equal(t, 30, got.Percentage)
}

func TestScore_NoAnswers(t *testing.T) {
	got := Score(questionsWithKeys(model.ChoiceA, model.ChoiceB), nil)
	assert.Equal(t, Result{Total: 2}, got)
}

func TestScore_IgnoresOutOfRangeAnswers(t *testing.T) {
	qs := questionsWithKeys(model.ChoiceC)
	got := Score(qs, map[int]model.ChoiceKey{0: model.ChoiceC, 5: model.ChoiceC})
	assert.Equal(t, Result{Raw: 1, Total: 1, Answered: 1, Percentage: 100}, got)
}
