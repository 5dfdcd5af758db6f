package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"survey-service/internal/domain"
)

// TokenStore persists token bindings in the survey_tokens table.
type TokenStore struct {
	db *sql.DB
}

func NewTokenStore(db *sql.DB) *TokenStore {
	return &TokenStore{db: db}
}

func (s *TokenStore) SaveToken(ctx context.Context, token domain.Token) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO survey_tokens (token, user_name, created_at) VALUES (?, ?, ?)`,
		token.Value, token.UserName, formatTime(token.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (s *TokenStore) LookupToken(ctx context.Context, value string) (domain.Token, bool, error) {
	token := domain.Token{Value: value}
	var created string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_name, created_at FROM survey_tokens WHERE token = ?`, value,
	).Scan(&token.UserName, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Token{}, false, nil
	}
	if err != nil {
		return domain.Token{}, false, fmt.Errorf("select token: %w", err)
	}
	token.CreatedAt = parseTime(created)
	return token, true, nil
}

// Catalog stores questions in the survey_questions table.
type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM survey_questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (c *Catalog) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT order_index, question_text, responses FROM survey_questions ORDER BY order_index`)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw string
		)
		if err := rows.Scan(&q.Index, &q.Text, &raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &q.Responses); err != nil {
			return nil, fmt.Errorf("unmarshal responses: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// SeedQuestions inserts inside one transaction; the order_index primary key
// keeps a racing seeder from duplicating rows.
func (c *Catalog) SeedQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM survey_questions`).Scan(&existing); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	inserted := 0
	for _, q := range questions {
		raw, err := json.Marshal(q.Responses)
		if err != nil {
			return 0, fmt.Errorf("marshal responses: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO survey_questions (order_index, question_text, responses) VALUES (?, ?, ?)`,
			q.Index, q.Text, string(raw))
		if err != nil {
			return 0, fmt.Errorf("insert question %d: %w", q.Index, err)
		}
		n, _ := res.RowsAffected()
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return inserted, nil
}

// ResponseStore appends answers to the survey_responses table.
type ResponseStore struct {
	db *sql.DB
}

func NewResponseStore(db *sql.DB) *ResponseStore {
	return &ResponseStore{db: db}
}

func (s *ResponseStore) InsertResponse(ctx context.Context, r domain.ResponseRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO survey_responses (id, user_name, question_index, response, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.UserName, r.QuestionIndex, r.Answer, formatTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (s *ResponseStore) ListResponsesByUser(ctx context.Context, userName string) ([]domain.ResponseRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_name, question_index, response, created_at
		 FROM survey_responses WHERE user_name = ? ORDER BY seq`, userName)
	if err != nil {
		return nil, fmt.Errorf("select responses: %w", err)
	}
	defer rows.Close()

	var records []domain.ResponseRecord
	for rows.Next() {
		var (
			r       domain.ResponseRecord
			created string
		)
		if err := rows.Scan(&r.ID, &r.UserName, &r.QuestionIndex, &r.Answer, &created); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		r.CreatedAt = parseTime(created)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *ResponseStore) CountDistinctQuestions(ctx context.Context, userName string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT question_index) FROM survey_responses WHERE user_name = ?`, userName,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count distinct questions: %w", err)
	}
	return n, nil
}

func (s *ResponseStore) CountResponses(ctx context.Context, userName string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM survey_responses WHERE user_name = ?`, userName,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
