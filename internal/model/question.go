package model

import "strings"

// Difficulty is the tier a question (and a mock) belongs to.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Valid reports whether d is one of the three known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ParseDifficulty maps a case-insensitive tier name to a Difficulty.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	return "", false
}

// ChoiceKey labels one of the four options of a question.
type ChoiceKey string

const (
	ChoiceA ChoiceKey = "A"
	ChoiceB ChoiceKey = "B"
	ChoiceC ChoiceKey = "C"
	ChoiceD ChoiceKey = "D"
)

// ChoiceKeys lists the option labels in display order.
var ChoiceKeys = []ChoiceKey{ChoiceA, ChoiceB, ChoiceC, ChoiceD}

// Valid reports whether k is A, B, C or D.
func (k ChoiceKey) Valid() bool {
	switch k {
	case ChoiceA, ChoiceB, ChoiceC, ChoiceD:
		return true
	}
	return false
}

// Options holds exactly four answer texts labelled A-D.
type Options struct {
	A string `json:"A" binding:"required"`
	B string `json:"B" binding:"required"`
	C string `json:"C" binding:"required"`
	D string `json:"D" binding:"required"`
}

// Text returns the option text for k, or "" for an unknown key.
func (o Options) Text(k ChoiceKey) string {
	switch k {
	case ChoiceA:
		return o.A
	case ChoiceB:
		return o.B
	case ChoiceC:
		return o.C
	case ChoiceD:
		return o.D
	}
	return ""
}

// Question is an immutable question-bank record.
type Question struct {
	ID            string     `json:"id" binding:"required,max=100"`
	ExamName      string     `json:"exam_name" binding:"required,max=255"`
	Subject       string     `json:"subject" binding:"required,max=255"`
	Topic         string     `json:"topic" binding:"max=500"`
	Difficulty    Difficulty `json:"difficulty" binding:"required,oneof=Easy Medium Hard"`
	QuestionText  string     `json:"question_text" binding:"required"`
	Options       Options    `json:"options"`
	CorrectAnswer ChoiceKey  `json:"correct_answer" binding:"required,choice"`
	Explanation   string     `json:"explanation"`
	Year          *string    `json:"year,omitempty"`
	Source        *string    `json:"source,omitempty"`
}

// QuestionForStudent is the in-progress view of a question: no answer key
// and no explanation.
type QuestionForStudent struct {
	Index        int        `json:"index"`
	ID           string     `json:"id"`
	Subject      string     `json:"subject"`
	Topic        string     `json:"topic"`
	Difficulty   Difficulty `json:"difficulty"`
	QuestionText string     `json:"question_text"`
	Options      Options    `json:"options"`
	Year         *string    `json:"year,omitempty"`
	Source       *string    `json:"source,omitempty"`
}

// ForStudent strips the answer key from q.
func (q Question) ForStudent(index int) QuestionForStudent {
	return QuestionForStudent{
		Index:        index,
		ID:           q.ID,
		Subject:      q.Subject,
		Topic:        q.Topic,
		Difficulty:   q.Difficulty,
		QuestionText: q.QuestionText,
		Options:      q.Options,
		Year:         q.Year,
		Source:       q.Source,
	}
}

// ListQuestionsQuery filters the admin question bank browse.
type ListQuestionsQuery struct {
	Subject    string `form:"subject" binding:"required,max=255"`
	Difficulty string `form:"difficulty" binding:"required,oneof=Easy Medium Hard easy medium hard"`
}
