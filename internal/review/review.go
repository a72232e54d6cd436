// Package review builds the post-attempt comparison of chosen and correct answers.
package review

import "github.com/stemsi/mockprep-backend/internal/model"

// Item is one reviewed question.
type Item struct {
	Index        int             `json:"index"`
	QuestionID   string          `json:"question_id"`
	Topic        string          `json:"topic"`
	QuestionText string          `json:"question_text"`
	Options      model.Options   `json:"options"`
	Chosen       model.ChoiceKey `json:"chosen,omitempty"`
	Answered     bool            `json:"answered"`
	Correct      model.ChoiceKey `json:"correct"`
	IsCorrect    bool            `json:"is_correct"`
	Explanation  string          `json:"explanation"`
	Year         *string         `json:"year,omitempty"`
	Source       *string         `json:"source,omitempty"`
}

// Build pairs each question with the recorded answer. It does not modify
// its inputs.
func Build(questions []model.Question, answers map[int]model.ChoiceKey) []Item {
	items := make([]Item, len(questions))
	for i, q := range questions {
		chosen, answered := answers[i]
		items[i] = Item{
			Index:        i,
			QuestionID:   q.ID,
			Topic:        q.Topic,
			QuestionText: q.QuestionText,
			Options:      q.Options,
			Chosen:       chosen,
			Answered:     answered,
			Correct:      q.CorrectAnswer,
			IsCorrect:    answered && chosen == q.CorrectAnswer,
			Explanation:  q.Explanation,
			Year:         q.Year,
			Source:       q.Source,
		}
	}
	return items
}
