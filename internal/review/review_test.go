package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/mockprep-backend/internal/model"
)

func TestBuild(t *testing.T) {
	qs := []model.Question{
		{ID: "q1", QuestionText: "1+1?", CorrectAnswer: model.ChoiceB, Explanation: "two"},
		{ID: "q2", QuestionText: "2+2?", CorrectAnswer: model.ChoiceD, Explanation: "four"},
		{ID: "q3", QuestionText: "3+3?", CorrectAnswer: model.ChoiceA, Explanation: "six"},
	}
	answers := map[int]model.ChoiceKey{0: model.ChoiceB, 1: model.ChoiceA}

	items := Build(qs, answers)

	require.Len(t, items, 3)

	assert.True(t, items[0].Answered)
	assert.True(t, items[0].IsCorrect)
	assert.Equal(t, "two", items[0].Explanation)

	assert.True(t, items[1].Answered)
	assert.False(t, items[1].IsCorrect)
	assert.Equal(t, model.ChoiceA, items[1].Chosen)
	assert.Equal(t, model.ChoiceD, items[1].Correct)

	assert.False(t, items[2].Answered)
	assert.False(t, items[2].IsCorrect)
	assert.Empty(t, items[2].Chosen)
	assert.Equal(t, 2, items[2].Index)
}

func TestBuild_DoesNotMutateAnswers(t *testing.T) {
	qs := []model.Question{{ID: "q1", CorrectAnswer: model.ChoiceA}}
	answers := map[int]model.ChoiceKey{}

	Build(qs, answers)

	assert.Empty(t, answers)
}
