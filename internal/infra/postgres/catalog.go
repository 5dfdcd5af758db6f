package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"survey-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// seedLockKey serializes catalog seeding across instances sharing one database.
const seedLockKey = 0x5e7eed

// Catalog stores questions in the survey_questions table. order_index is the
// primary key, so a concurrent double seed cannot duplicate rows.
type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) CountQuestions(ctx context.Context) (int, error) {
	var n int
	if err := c.pool.QueryRow(ctx, `SELECT COUNT(*) FROM survey_questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}

func (c *Catalog) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT order_index, question_text, responses FROM survey_questions ORDER BY order_index`)
	if err != nil {
		return nil, fmt.Errorf("select questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.Index, &q.Text, &raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Responses); err != nil {
			return nil, fmt.Errorf("unmarshal responses: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (c *Catalog) SeedQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, seedLockKey); err != nil {
		return 0, fmt.Errorf("lock seed: %w", err)
	}

	var existing int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM survey_questions`).Scan(&existing); err != nil {
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
		tag, err := tx.Exec(ctx,
			`INSERT INTO survey_questions (order_index, question_text, responses)
			 VALUES ($1, $2, $3::jsonb) ON CONFLICT (order_index) DO NOTHING`,
			q.Index, q.Text, string(raw))
		if err != nil {
			return 0, fmt.Errorf("insert question %d: %w", q.Index, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit seed: %w", err)
	}
	return inserted, nil
}
