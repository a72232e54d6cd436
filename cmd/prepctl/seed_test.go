package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/validator"
)

func validQuestion(id string) model.Question {
	return model.Question{
		ID:            id,
		ExamName:      "RRB Group D",
		Subject:       "Mathematics",
		Difficulty:    model.DifficultyEasy,
		QuestionText:  "2 + 2 = ?",
		Options:       model.Options{A: "3", B: "4", C: "5", D: "6"},
		CorrectAnswer: model.ChoiceB,
	}
}

func TestValidateQuestions(t *testing.T) {
	validator.Setup()

	bad := validQuestion("q3")
	bad.CorrectAnswer = "E"
	bad.Difficulty = "Impossible"

	lines := validateQuestions([]model.Question{validQuestion("q1"), validQuestion("q2"), bad, validQuestion("q1")})

	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "#2 q3")
	assert.Contains(t, lines[1], "#2 q3")
	assert.Equal(t, "#3 q1: duplicate of #0", lines[2])
}

func TestValidateQuestions_AllValid(t *testing.T) {
	validator.Setup()

	assert.Empty(t, validateQuestions([]model.Question{validQuestion("q1"), validQuestion("q2")}))
}
