package app

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"survey-service/internal/domain"
)

// CatalogRepository stores the ordered question list.
type CatalogRepository interface {
	CountQuestions(ctx context.Context) (int, error)
	ListQuestions(ctx context.Context) ([]domain.Question, error)
	// SeedQuestions inserts questions only while the catalog is still empty and
	// returns how many rows it wrote. Implementations re-check emptiness atomically.
	SeedQuestions(ctx context.Context, questions []domain.Question) (int, error)
}

// QuestionSource yields question definitions in catalog order.
type QuestionSource interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// Catalog is the read side of the question list plus its one-time bootstrap.
type Catalog struct {
	repo CatalogRepository
}

func NewCatalog(repo CatalogRepository) *Catalog {
	return &Catalog{repo: repo}
}

// LoadIfEmpty seeds the catalog from source unless it already has questions.
// The source is not read at all when the catalog is populated.
func (c *Catalog) LoadIfEmpty(ctx context.Context, source QuestionSource) (int, error) {
	count, err := c.repo.CountQuestions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	questions, err := source.LoadQuestions(ctx)
	if err != nil {
		return 0, fmt.Errorf("load question definitions: %w", err)
	}
	for i := range questions {
		questions[i].Index = i
		if strings.TrimSpace(questions[i].Text) == "" {
			return 0, fmt.Errorf("%w: question %d has no text", domain.ErrInvalidInput, i)
		}
		if len(questions[i].Responses) == 0 {
			return 0, fmt.Errorf("%w: question %d has no responses", domain.ErrInvalidInput, i)
		}
	}

	inserted, err := c.repo.SeedQuestions(ctx, questions)
	if err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	return inserted, nil
}

// List returns every question ordered by index.
func (c *Catalog) List(ctx context.Context) ([]domain.Question, error) {
	questions, err := c.repo.ListQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	if questions == nil {
		questions = []domain.Question{}
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Index < questions[j].Index
	})
	return questions, nil
}

// Count returns the catalog size.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	n, err := c.repo.CountQuestions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return n, nil
}
