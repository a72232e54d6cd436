// Package scoring grades a finished mock.
package scoring

import "github.com/stemsi/mockprep-backend/internal/model"

// Result is the grade of one attempt.
type Result struct {
	Raw        int `json:"raw"`
	Total      int `json:"total"`
	Answered   int `json:"answered"`
	Percentage int `json:"percentage"`
}

// Score counts answers equal to the question key. Unanswered questions are
// wrong. Percentage is relative to len(questions), rounded half up.
func Score(questions []model.Question, answers map[int]model.ChoiceKey) Result {
	res := Result{Total: len(questions)}
	for i, q := range questions {
		chosen, ok := answers[i]
		if !ok {
			continue
		}
		res.Answered++
		if chosen == q.CorrectAnswer {
			res.Raw++
		}
	}
	res.Percentage = Percentage(res.Raw, res.Total)
	return res
}

// Percentage returns round(raw/total*100) with halves rounded up, or 0 for
// an empty total.
func Percentage(raw, total int) int {
	if total <= 0 {
		return 0
	}
	return (raw*200 + total) / (total * 2)
}
