package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"survey-service/internal/domain"

	"github.com/google/uuid"
)

// ResponseRepository is the append-only store of answers.
type ResponseRepository interface {
	InsertResponse(ctx context.Context, record domain.ResponseRecord) error
	ListResponsesByUser(ctx context.Context, userName string) ([]domain.ResponseRecord, error)
	CountDistinctQuestions(ctx context.Context, userName string) (int, error)
	CountResponses(ctx context.Context, userName string) (int, error)
}

// ResponseLog validates and appends answers. It never rejects duplicates.
type ResponseLog struct {
	repo  ResponseRepository
	now   func() time.Time
	newID func() string
}

func NewResponseLog(repo ResponseRepository) *ResponseLog {
	return NewResponseLogWithClock(repo, func() time.Time { return time.Now().UTC() }, uuid.NewString)
}

// NewResponseLogWithClock is test-only for deterministic timestamps and ids.
func NewResponseLogWithClock(repo ResponseRepository, now func() time.Time, newID func() string) *ResponseLog {
	return &ResponseLog{repo: repo, now: now, newID: newID}
}

// Append stores a new record for the answer.
func (l *ResponseLog) Append(ctx context.Context, userName string, questionIndex int, answer string) (domain.ResponseRecord, error) {
	switch {
	case strings.TrimSpace(userName) == "":
		return domain.ResponseRecord{}, fmt.Errorf("%w: user_name is required", domain.ErrInvalidInput)
	case strings.TrimSpace(answer) == "":
		return domain.ResponseRecord{}, fmt.Errorf("%w: response is required", domain.ErrInvalidInput)
	case questionIndex < 0:
		return domain.ResponseRecord{}, fmt.Errorf("%w: question_index must not be negative", domain.ErrInvalidInput)
	}

	record := domain.ResponseRecord{
		ID:            l.newID(),
		UserName:      userName,
		QuestionIndex: questionIndex,
		Answer:        answer,
		CreatedAt:     l.now(),
	}
	if err := l.repo.InsertResponse(ctx, record); err != nil {
		return domain.ResponseRecord{}, fmt.Errorf("insert response: %w", err)
	}
	return record, nil
}

// ListByUser returns the user's records in insertion order.
func (l *ResponseLog) ListByUser(ctx context.Context, userName string) ([]domain.ResponseRecord, error) {
	records, err := l.repo.ListResponsesByUser(ctx, userName)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	if records == nil {
		records = []domain.ResponseRecord{}
	}
	return records, nil
}

// CountDistinctQuestions counts the question indices the user answered at least once.
func (l *ResponseLog) CountDistinctQuestions(ctx context.Context, userName string) (int, error) {
	n, err := l.repo.CountDistinctQuestions(ctx, userName)
	if err != nil {
		return 0, fmt.Errorf("count answered questions: %w", err)
	}
	return n, nil
}

// CountByUser counts every record of the user, resubmissions included.
func (l *ResponseLog) CountByUser(ctx context.Context, userName string) (int, error) {
	n, err := l.repo.CountResponses(ctx, userName)
	if err != nil {
		return 0, fmt.Errorf("count responses: %w", err)
	}
	return n, nil
}
