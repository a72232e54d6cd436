package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/mockprep-backend/internal/model"
)

func TestValidate_QuestionRules(t *testing.T) {
	Setup()

	good := model.Question{
		ID:            "q1",
		ExamName:      "Homeguard",
		Subject:       "GK",
		Difficulty:    model.DifficultyEasy,
		QuestionText:  "Capital of India?",
		Options:       model.Options{A: "Delhi", B: "Agra", C: "Pune", D: "Goa"},
		CorrectAnswer: model.ChoiceA,
	}
	assert.Nil(t, Validate(&good))

	bad := good
	bad.CorrectAnswer = "E"
	bad.Difficulty = "Extreme"
	fields := Validate(&bad)
	assert.Contains(t, fields, "correct_answer")
	assert.Contains(t, fields, "difficulty")
}

func TestValidate_MockID(t *testing.T) {
	Setup()

	assert.Nil(t, Validate(&model.StartSessionRequest{MockID: "s_gk_hg-mock-3", Subject: "GK"}))

	// Ids without a mock number are accepted and start as mock 1.
	assert.Nil(t, Validate(&model.StartSessionRequest{MockID: "s_gk_hg", Subject: "GK"}))

	fields := Validate(&model.StartSessionRequest{Subject: "GK"})
	assert.Contains(t, fields, "mock_id")
}
