package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/mockprep-backend/internal/model"
)

// QuestionRepository handles question bank data access in PostgreSQL.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, exam_name, subject, topic, difficulty, question_text, options, correct_answer, explanation, year, source`

// FindMatching returns every question of subject (compared case-insensitively)
// at difficulty, in insertion order. No match yields an empty slice.
func (r *QuestionRepository) FindMatching(ctx context.Context, subject string, difficulty model.Difficulty) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+questionColumns+`
		 FROM questions
		 WHERE (subject = $1 OR lower(subject) = lower($1)) AND difficulty = $2
		 ORDER BY seq`, subject, string(difficulty),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// CountBySubject returns how many questions each (subject, difficulty) pair holds.
func (r *QuestionRepository) CountBySubject(ctx context.Context) (map[string]map[model.Difficulty]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT subject, difficulty, COUNT(*) FROM questions GROUP BY subject, difficulty`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]map[model.Difficulty]int)
	for rows.Next() {
		var subject, difficulty string
		var n int
		if err := rows.Scan(&subject, &difficulty, &n); err != nil {
			return nil, err
		}
		if counts[subject] == nil {
			counts[subject] = make(map[model.Difficulty]int)
		}
		counts[subject][model.Difficulty(difficulty)] = n
	}
	return counts, rows.Err()
}

// UpsertMany inserts questions in one transaction, replacing rows with the
// same id. Insertion order (seq) is preserved for new rows.
func (r *QuestionRepository) UpsertMany(ctx context.Context, questions []model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i := range questions {
		q := &questions[i]
		opts, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("marshal options of %s: %w", q.ID, err)
		}
		batch.Queue(
			`INSERT INTO questions (`+questionColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (id) DO UPDATE SET
			   exam_name = EXCLUDED.exam_name,
			   subject = EXCLUDED.subject,
			   topic = EXCLUDED.topic,
			   difficulty = EXCLUDED.difficulty,
			   question_text = EXCLUDED.question_text,
			   options = EXCLUDED.options,
			   correct_answer = EXCLUDED.correct_answer,
			   explanation = EXCLUDED.explanation,
			   year = EXCLUDED.year,
			   source = EXCLUDED.source`,
			q.ID, q.ExamName, q.Subject, q.Topic, string(q.Difficulty), q.QuestionText,
			opts, string(q.CorrectAnswer), q.Explanation, q.Year, q.Source,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert questions: %w", err)
	}
	return tx.Commit(ctx)
}

func scanQuestion(row pgx.Row) (*model.Question, error) {
	var (
		q          model.Question
		difficulty string
		answer     string
		opts       []byte
	)
	if err := row.Scan(&q.ID, &q.ExamName, &q.Subject, &q.Topic, &difficulty, &q.QuestionText,
		&opts, &answer, &q.Explanation, &q.Year, &q.Source); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(opts, &q.Options); err != nil {
		return nil, fmt.Errorf("decode options of %s: %w", q.ID, err)
	}
	q.Difficulty = model.Difficulty(difficulty)
	q.CorrectAnswer = model.ChoiceKey(answer)
	return &q, nil
}
