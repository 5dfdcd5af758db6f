package postgres

import (
	"context"
	"fmt"

	"survey-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// ResponseStore appends answers to the survey_responses table.
type ResponseStore struct {
	pool *pgxpool.Pool
}

func NewResponseStore(pool *pgxpool.Pool) *ResponseStore {
	return &ResponseStore{pool: pool}
}

func (s *ResponseStore) InsertResponse(ctx context.Context, r domain.ResponseRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO survey_responses (id, user_name, question_index, response, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		r.ID, r.UserName, r.QuestionIndex, r.Answer, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (s *ResponseStore) ListResponsesByUser(ctx context.Context, userName string) ([]domain.ResponseRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_name, question_index, response, created_at
		 FROM survey_responses WHERE user_name=$1 ORDER BY seq`, userName)
	if err != nil {
		return nil, fmt.Errorf("select responses: %w", err)
	}
	defer rows.Close()

	var records []domain.ResponseRecord
	for rows.Next() {
		var r domain.ResponseRecord
		if err := rows.Scan(&r.ID, &r.UserName, &r.QuestionIndex, &r.Answer, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *ResponseStore) CountDistinctQuestions(ctx context.Context, userName string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT question_index) FROM survey_responses WHERE user_name=$1`, userName,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count distinct questions: %w", err)
	}
	return n, nil
}

func (s *ResponseStore) CountResponses(ctx context.Context, userName string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM survey_responses WHERE user_name=$1`, userName,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}
