package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/stemsi/mockprep-backend/internal/config"
	"github.com/stemsi/mockprep-backend/internal/mock"
	"github.com/stemsi/mockprep-backend/internal/model"
	"github.com/stemsi/mockprep-backend/internal/progress"
	"github.com/stemsi/mockprep-backend/internal/storage"
)

//go:embed data/catalog.json
var catalogJSON []byte

// Catalog errors.
var (
	ErrExamNotFound    = errors.New("exam not found")
	ErrSubjectNotFound = errors.New("subject not found")
	ErrTopicNotFound   = errors.New("topic not found")
)

// ProgressReader is the read side of the progress recorder.
type ProgressReader interface {
	Progress(ctx context.Context, userID string) (*model.UserProgress, error)
}

type catalogFile struct {
	Exams    []model.Exam    `json:"exams"`
	Subjects []model.Subject `json:"subjects"`
}

// StudyTarget is a syllabus topic suggested for today.
type StudyTarget struct {
	SubjectID string `json:"subject_id,omitempty"`
	Subject   string `json:"subject"`
	Topic     string `json:"topic"`
	Mastered  bool   `json:"mastered"`
}

// CatalogService serves the static exam catalog with each user's syllabus
// checklist and mock progress overlaid.
type CatalogService struct {
	exams    []model.Exam
	subjects []model.Subject
	store    storage.Store
	progress ProgressReader
	mu       sync.Mutex
	log      zerolog.Logger
}

// NewCatalogService loads the embedded catalog.
func NewCatalogService(store storage.Store, progress ProgressReader, log zerolog.Logger) (*CatalogService, error) {
	var file catalogFile
	if err := json.Unmarshal(catalogJSON, &file); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return &CatalogService{
		exams:    file.Exams,
		subjects: file.Subjects,
		store:    store,
		progress: progress,
		log:      log.With().Str("component", "catalog_service").Logger(),
	}, nil
}

// Exams returns the static exam list.
func (s *CatalogService) Exams() []model.Exam {
	return slices.Clone(s.exams)
}

// Subject returns the catalog default of a subject.
func (s *CatalogService) Subject(subjectID string) (model.Subject, bool) {
	for _, sub := range s.subjects {
		if sub.ID == subjectID {
			return cloneSubject(sub), true
		}
	}
	return model.Subject{}, false
}

// ListExams returns every exam with the user's subject progress.
func (s *CatalogService) ListExams(ctx context.Context, userID string) ([]model.ExamDetail, error) {
	subjects, err := s.userSubjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	details := make([]model.ExamDetail, 0, len(s.exams))
	for _, exam := range s.exams {
		details = append(details, buildExamDetail(exam, subjects))
	}
	return details, nil
}

// GetExam returns one exam with the user's subject progress.
func (s *CatalogService) GetExam(ctx context.Context, userID, examID string) (*model.ExamDetail, error) {
	exam, ok := s.findExam(examID)
	if !ok {
		return nil, ErrExamNotFound
	}
	subjects, err := s.userSubjects(ctx, userID)
	if err != nil {
		return nil, err
	}
	detail := buildExamDetail(exam, subjects)
	return &detail, nil
}

// ListMocks returns the mock catalog of a subject with the user's completion
// and best scores.
func (s *CatalogService) ListMocks(ctx context.Context, userID, examID, subjectID string) (*model.MockList, error) {
	exam, ok := s.findExam(examID)
	if !ok {
		return nil, ErrExamNotFound
	}
	if !slices.Contains(exam.SubjectIDs, subjectID) {
		return nil, ErrSubjectNotFound
	}
	subject, ok := s.Subject(subjectID)
	if !ok {
		return nil, ErrSubjectNotFound
	}

	p, err := s.progress.Progress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return BuildMockList(examID, subject, p), nil
}

// BuildMockList overlays progress p on the mock catalog of subject.
func BuildMockList(examID string, subject model.Subject, p *model.UserProgress) *model.MockList {
	list := &model.MockList{
		ExamID:    examID,
		SubjectID: subject.ID,
		Subject:   subject.Name,
		Total:     mock.CatalogSize,
	}
	for _, e := range mock.Catalog(subject.ID) {
		summary := model.MockSummary{
			ID:         e.ID,
			Number:     e.Number,
			Difficulty: e.Difficulty,
			Completed:  slices.Contains(p.CompletedMockIDs, e.ID),
		}
		if score, ok := p.BestScores[e.ID]; ok {
			summary.BestScore = &score
		}
		list.Mocks = append(list.Mocks, summary)
	}
	for _, id := range p.CompletedMockIDs {
		if mock.SubjectID(id) == subject.ID {
			list.Cleared++
		}
	}
	return list
}

// ToggleTopic flips a syllabus topic and recomputes the subject progress.
func (s *CatalogService) ToggleTopic(ctx context.Context, userID, subjectID, topic string) (*model.Subject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subjects, err := s.userSubjects(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := slices.IndexFunc(subjects, func(sub model.Subject) bool { return sub.ID == subjectID })
	if i < 0 {
		return nil, ErrSubjectNotFound
	}
	sub := &subjects[i]
	j := slices.IndexFunc(sub.Topics, func(t model.Topic) bool { return t.Name == topic })
	if j < 0 {
		return nil, ErrTopicNotFound
	}

	sub.Topics[j].Completed = !sub.Topics[j].Completed
	sub.Progress = topicProgress(sub.Topics)

	if err := storage.SetJSON(ctx, s.store, config.CacheKey.SubjectsKey(userID), subjects); err != nil {
		return nil, fmt.Errorf("%w: save syllabus: %w", progress.ErrPersistence, err)
	}

	s.log.Debug().
		Str("user_id", userID).
		Str("subject_id", subjectID).
		Bool("completed", sub.Topics[j].Completed).
		Int("progress", sub.Progress).
		Msg("Topic toggled")

	out := cloneSubject(*sub)
	return &out, nil
}

// NextTarget picks a random unfinished topic across all subjects.
func (s *CatalogService) NextTarget(ctx context.Context, userID string) (*StudyTarget, error) {
	subjects, err := s.userSubjects(ctx, userID)
	if err != nil {
		return nil, err
	}

	var open []StudyTarget
	for _, sub := range subjects {
		for _, t := range sub.Topics {
			if !t.Completed {
				open = append(open, StudyTarget{SubjectID: sub.ID, Subject: sub.Name, Topic: t.Name})
			}
		}
	}
	if len(open) == 0 {
		return &StudyTarget{Subject: "Revision", Topic: "All Mastered! Take a Full Mock.", Mastered: true}, nil
	}
	target := open[rand.IntN(len(open))]
	return &target, nil
}

// userSubjects returns the stored checklist of userID, or the catalog
// defaults when nothing was saved yet.
func (s *CatalogService) userSubjects(ctx context.Context, userID string) ([]model.Subject, error) {
	var stored []model.Subject
	ok, err := storage.GetJSON(ctx, s.store, config.CacheKey.SubjectsKey(userID), &stored)
	if err != nil {
		return nil, fmt.Errorf("%w: load syllabus: %w", progress.ErrPersistence, err)
	}

	out := make([]model.Subject, 0, len(s.subjects))
	for _, def := range s.subjects {
		sub := cloneSubject(def)
		if ok {
			if i := slices.IndexFunc(stored, func(st model.Subject) bool { return st.ID == def.ID }); i >= 0 {
				sub.Topics = mergeTopics(sub.Topics, stored[i].Topics)
				sub.Progress = stored[i].Progress
			}
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *CatalogService) findExam(examID string) (model.Exam, bool) {
	i := slices.IndexFunc(s.exams, func(e model.Exam) bool { return e.ID == examID })
	if i < 0 {
		return model.Exam{}, false
	}
	return s.exams[i], true
}

// mergeTopics keeps the catalog topic list and takes completion flags from saved.
func mergeTopics(defaults, saved []model.Topic) []model.Topic {
	done := make(map[string]bool, len(saved))
	for _, t := range saved {
		done[t.Name] = t.Completed
	}
	for i := range defaults {
		if c, ok := done[defaults[i].Name]; ok {
			defaults[i].Completed = c
		}
	}
	return defaults
}

func buildExamDetail(exam model.Exam, subjects []model.Subject) model.ExamDetail {
	detail := model.ExamDetail{Exam: exam}
	sum := 0
	for _, id := range exam.SubjectIDs {
		if i := slices.IndexFunc(subjects, func(s model.Subject) bool { return s.ID == id }); i >= 0 {
			detail.Subjects = append(detail.Subjects, subjects[i])
			sum += subjects[i].Progress
		}
	}
	if n := len(detail.Subjects); n > 0 {
		detail.AvgProgress = int(math.Round(float64(sum) / float64(n)))
	}
	return detail
}

func topicProgress(topics []model.Topic) int {
	if len(topics) == 0 {
		return 0
	}
	done := 0
	for _, t := range topics {
		if t.Completed {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(topics)) * 100))
}

func cloneSubject(s model.Subject) model.Subject {
	s.Topics = slices.Clone(s.Topics)
	return s
}
