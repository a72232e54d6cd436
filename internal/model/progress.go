package model

// UserProgress is the durable mock history of one user.
type UserProgress struct {
	UserID           string         `json:"user_id"`
	CompletedMockIDs []string       `json:"completed_mock_ids"`
	BestScores       map[string]int `json:"best_scores"`
}

// MockProgress answers getBestScore/isCompleted for one mock.
type MockProgress struct {
	MockID    string `json:"mock_id"`
	Completed bool   `json:"completed"`
	BestScore *int   `json:"best_score,omitempty"`
}

// MockSummary is one row of a subject's mock list.
type MockSummary struct {
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	Difficulty Difficulty `json:"difficulty"`
	Completed  bool       `json:"completed"`
	BestScore  *int       `json:"best_score,omitempty"`
}

// MockList is a subject's full mock catalog with the user's progress overlaid.
type MockList struct {
	ExamID    string        `json:"exam_id"`
	SubjectID string        `json:"subject_id"`
	Subject   string        `json:"subject"`
	Cleared   int           `json:"cleared"`
	Total     int           `json:"total"`
	Mocks     []MockSummary `json:"mocks"`
}
