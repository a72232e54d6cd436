package model

// StartSessionRequest opens a mock attempt.
type StartSessionRequest struct {
	MockID  string `json:"mock_id" binding:"required,max=200"`
	Subject string `json:"subject" binding:"required,max=255"`
}

// SelectAnswerRequest records a choice for the current question.
type SelectAnswerRequest struct {
	Choice string `json:"choice" binding:"required,choice"`
}

// GoToRequest jumps to a question index. Out-of-range values are clamped.
type GoToRequest struct {
	Index *int `json:"index" binding:"required"`
}
