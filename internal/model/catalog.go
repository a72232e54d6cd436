package model

// Exam is a target exam grouping several subjects.
type Exam struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	SubjectIDs []string `json:"subjects"`
}

// Topic is one syllabus checklist entry.
type Topic struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}

// Subject is a syllabus subject with its topic checklist.
type Subject struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Progress int     `json:"progress"` // 0-100
	Topics   []Topic `json:"topics"`
}

// ExamDetail is an exam with its subjects resolved.
type ExamDetail struct {
	Exam
	Subjects    []Subject `json:"subject_details"`
	AvgProgress int       `json:"avg_progress"`
}

// ToggleTopicRequest flips one syllabus topic.
type ToggleTopicRequest struct {
	Topic string `json:"topic" binding:"required,max=500"`
}
