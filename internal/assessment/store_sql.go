package assessment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/mind-engage/mindengage-grader/internal/grading"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// maxInArgs bounds the ids bound into one IN (...) list; sqlite caps bound
// variables per statement.
const maxInArgs = 500

func (s *SQLStore) PutQuestion(ctx context.Context, q Question) error {
	created := q.CreatedAt
	if created == 0 {
		created = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO questions (id,type,scheme_json,answer_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET type=EXCLUDED.type, scheme_json=EXCLUDED.scheme_json, answer_json=EXCLUDED.answer_json`,
		q.ID, q.Type, string(q.Scheme), string(q.Answer), created)
	return err
}

func scanQuestion(row interface{ Scan(...any) error }) (Question, error) {
	var q Question
	var scheme, answer string
	if err := row.Scan(&q.ID, &q.Type, &scheme, &answer, &q.CreatedAt); err != nil {
		return Question{}, err
	}
	q.Scheme = []byte(scheme)
	if answer != "" {
		q.Answer = []byte(answer)
	}
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,type,scheme_json,answer_json,created_at FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrQuestionNotFound
		}
		return Question{}, err
	}
	return q, nil
}

// GetQuestions loads ids in batches of maxInArgs.
func (s *SQLStore) GetQuestions(ctx context.Context, ids []string) (map[string]Question, error) {
	out := make(map[string]Question, len(ids))
	for _, chunk := range lo.Chunk(lo.Uniq(ids), maxInArgs) {
		if err := s.getQuestionChunk(ctx, chunk, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) getQuestionChunk(ctx context.Context, ids []string, out map[string]Question) error {
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,type,scheme_json,answer_json,created_at FROM questions WHERE id IN (`+strings.Join(ph, ",")+`)`,
		args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return err
		}
		out[q.ID] = q
	}
	return rows.Err()
}

func (s *SQLStore) ListQuestions(ctx context.Context, opts ListOpts) ([]Question, error) {
	opts = opts.normalized()
	query := `SELECT id,type,scheme_json,answer_json,created_at FROM questions`
	args := []any{}
	if opts.Type != "" {
		query += ` WHERE type=$1`
		args = append(args, opts.Type)
	}
	query += fmt.Sprintf(` ORDER BY id ASC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// SaveAttemptResult replaces any earlier result for the same attempt.
func (s *SQLStore) SaveAttemptResult(ctx context.Context, r AttemptResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO attempt_results (attempt_id,user_id,total_marks,max_marks,graded_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (attempt_id) DO UPDATE SET user_id=EXCLUDED.user_id, total_marks=EXCLUDED.total_marks,
			max_marks=EXCLUDED.max_marks, graded_at=EXCLUDED.graded_at`,
		r.AttemptID, r.UserID, r.TotalMarks, r.MaxMarks, r.GradedAt)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM graded_items WHERE attempt_id=$1`, r.AttemptID); err != nil {
		return err
	}
	for _, it := range r.Items {
		_, err := tx.ExecContext(ctx, `INSERT INTO graded_items (attempt_id,question_id,type,marks,status,error)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			r.AttemptID, it.QuestionID, it.Type, it.Marks, string(it.Status), it.Error)
		if err != nil {
			return fmt.Errorf("insert item %s: %w", it.QuestionID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) GetAttemptResult(ctx context.Context, attemptID string) (AttemptResult, error) {
	var r AttemptResult
	err := s.db.QueryRowContext(ctx,
		`SELECT attempt_id,user_id,max_marks,graded_at FROM attempt_results WHERE attempt_id=$1`, attemptID).
		Scan(&r.AttemptID, &r.UserID, &r.MaxMarks, &r.GradedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AttemptResult{}, ErrAttemptNotFound
		}
		return AttemptResult{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT question_id,type,marks,status,error FROM graded_items WHERE attempt_id=$1 ORDER BY question_id ASC`,
		attemptID)
	if err != nil {
		return AttemptResult{}, err
	}
	defer rows.Close()
	r.Items = []GradedItem{}
	for rows.Next() {
		var it GradedItem
		var status string
		if err := rows.Scan(&it.QuestionID, &it.Type, &it.Marks, &status, &it.Error); err != nil {
			return AttemptResult{}, err
		}
		it.Status = grading.Status(status)
		r.Items = append(r.Items, it)
	}
	if err := rows.Err(); err != nil {
		return AttemptResult{}, err
	}
	r.tally()
	return r, nil
}
