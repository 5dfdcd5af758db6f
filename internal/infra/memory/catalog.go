package memory

import (
	"context"
	"sync"

	"survey-service/internal/domain"
)

// Catalog is an in-memory implementation of app.CatalogRepository.
type Catalog struct {
	mu        sync.RWMutex
	questions []domain.Question
}

func NewCatalog() *Catalog {
	return &Catalog{}
}

func (c *Catalog) CountQuestions(_ context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.questions), nil
}

func (c *Catalog) ListQuestions(_ context.Context) ([]domain.Question, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneQuestions(c.questions), nil
}

func (c *Catalog) SeedQuestions(_ context.Context, questions []domain.Question) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.questions) > 0 {
		return 0, nil
	}
	c.questions = cloneQuestions(questions)
	return len(c.questions), nil
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Responses = append([]string(nil), q.Responses...)
		out[i] = q
	}
	return out
}

// StaticQuestionSource serves a fixed question list (useful for tests/demos).
type StaticQuestionSource struct {
	questions []domain.Question
}

func NewStaticQuestionSource(questions []domain.Question) *StaticQuestionSource {
	return &StaticQuestionSource{questions: questions}
}

func (s *StaticQuestionSource) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	return cloneQuestions(s.questions), nil
}
