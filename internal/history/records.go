package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quizdeck/internal/quiz"
)

// Record statuses.
const (
	StatusCreated   = "created"
	StatusCompleted = "completed"
)

// Record is one remembered quiz session. Completion fields are nil until
// the record transitions to StatusCompleted.
type Record struct {
	ProblemSetID  string
	FileName      string
	FileSize      int64
	QuestionCount int
	QuizLevel     string
	CreatedAt     time.Time
	UploadedURL   string
	Status        string

	Score          *int
	CorrectCount   *int
	TotalQuestions *int
	TotalTime      *time.Duration
	CompletedAt    *time.Time
	QuizData       []quiz.Item
}

// CompletionPatch carries the fields merged in when a session finishes.
// Nil fields are left untouched.
type CompletionPatch struct {
	Status         string
	Score          *int
	CorrectCount   *int
	TotalQuestions *int
	TotalTime      *time.Duration
	CompletedAt    *time.Time
	QuizData       []quiz.Item
}

// Upsert inserts rec at the front when its problem-set id is new, then
// truncates the oldest records beyond the cap. An existing id is a strict
// no-op: the stored record is not overwritten and keeps its position.
// First write wins; use Update to transition to completed.
func (s *Store) Upsert(ctx context.Context, rec Record) error {
	quizData, err := encodeQuizData(rec.QuizData)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO quiz_history (
			problem_set_id, file_name, file_size, question_count, quiz_level,
			created_at, uploaded_url, status, score, correct_count,
			total_questions, total_time_secs, completed_at, quiz_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (problem_set_id) DO NOTHING`,
		rec.ProblemSetID, rec.FileName, rec.FileSize, rec.QuestionCount,
		rec.QuizLevel, rec.CreatedAt, rec.UploadedURL, rec.Status,
		rec.Score, rec.CorrectCount, rec.TotalQuestions,
		durationSecs(rec.TotalTime), rec.CompletedAt, quizData,
	)
	if err != nil {
		return fmt.Errorf("insert history record: %w", err)
	}

	// Evict the oldest entries beyond the cap.
	_, err = s.db.ExecContext(ctx, `
		DELETE FROM quiz_history WHERE seq NOT IN (
			SELECT seq FROM quiz_history ORDER BY seq DESC LIMIT ?
		)`, s.max)
	if err != nil {
		return fmt.Errorf("truncate history: %w", err)
	}
	return nil
}

// Update merges the patch into the record with the given problem-set id.
// A missing id is a no-op: Update never creates a record.
func (s *Store) Update(ctx context.Context, problemSetID string, patch CompletionPatch) error {
	quizData, err := encodeQuizData(patch.QuizData)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE quiz_history SET
			status          = COALESCE(NULLIF(?, ''), status),
			score           = COALESCE(?, score),
			correct_count   = COALESCE(?, correct_count),
			total_questions = COALESCE(?, total_questions),
			total_time_secs = COALESCE(?, total_time_secs),
			completed_at    = COALESCE(?, completed_at),
			quiz_data       = COALESCE(?, quiz_data)
		WHERE problem_set_id = ?`,
		patch.Status, patch.Score, patch.CorrectCount, patch.TotalQuestions,
		durationSecs(patch.TotalTime), patch.CompletedAt, quizData, problemSetID,
	)
	if err != nil {
		return fmt.Errorf("update history record: %w", err)
	}
	return nil
}

// Remove deletes one record. Removing an absent id is not an error.
func (s *Store) Remove(ctx context.Context, problemSetID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM quiz_history WHERE problem_set_id = ?`, problemSetID); err != nil {
		return fmt.Errorf("remove history record: %w", err)
	}
	return nil
}

// Clear deletes all records.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM quiz_history`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

// Get returns one record, or nil when absent.
func (s *Store) Get(ctx context.Context, problemSetID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE problem_set_id = ?`, problemSetID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get history record: %w", err)
	}
	return rec, nil
}

// List returns all records front-first (most recently inserted first).
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

const selectColumns = `
	SELECT problem_set_id, file_name, file_size, question_count, quiz_level,
	       created_at, uploaded_url, status, score, correct_count,
	       total_questions, total_time_secs, completed_at, quiz_data
	FROM quiz_history`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var totalTimeSecs sql.NullInt64
	var quizData sql.NullString

	err := row.Scan(
		&rec.ProblemSetID, &rec.FileName, &rec.FileSize, &rec.QuestionCount,
		&rec.QuizLevel, &rec.CreatedAt, &rec.UploadedURL, &rec.Status,
		&rec.Score, &rec.CorrectCount, &rec.TotalQuestions,
		&totalTimeSecs, &rec.CompletedAt, &quizData,
	)
	if err != nil {
		return nil, err
	}

	if totalTimeSecs.Valid {
		d := time.Duration(totalTimeSecs.Int64) * time.Second
		rec.TotalTime = &d
	}
	if quizData.Valid && quizData.String != "" {
		if err := json.Unmarshal([]byte(quizData.String), &rec.QuizData); err != nil {
			return nil, fmt.Errorf("decode quiz snapshot: %w", err)
		}
	}
	return &rec, nil
}

func encodeQuizData(items []quiz.Item) (*string, error) {
	if items == nil {
		return nil, nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode quiz snapshot: %w", err)
	}
	s := string(data)
	return &s, nil
}

func durationSecs(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	secs := int64(d.Seconds())
	return &secs
}
