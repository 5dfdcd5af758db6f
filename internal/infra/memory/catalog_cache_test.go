package memory

import (
	"context"
	"testing"
	"time"

	"survey-service/internal/domain"
)

func TestCatalogCacheCaches(t *testing.T) {
	backing := &countingCatalog{Catalog: NewCatalog()}
	if _, err := backing.SeedQuestions(context.Background(), sampleQuestions()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cache := NewCatalogCache(backing, time.Minute)

	if _, err := cache.ListQuestions(context.Background()); err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if backing.lists != 1 {
		t.Fatalf("expected backing list once, got %d", backing.lists)
	}

	n, err := cache.CountQuestions(context.Background())
	if err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 questions, got %d", n)
	}
	if backing.lists != 1 {
		t.Fatalf("expected cache hit, backing lists %d", backing.lists)
	}
}

func TestCatalogCacheExpires(t *testing.T) {
	backing := &countingCatalog{Catalog: NewCatalog()}
	_, _ = backing.SeedQuestions(context.Background(), sampleQuestions())
	cache := NewCatalogCache(backing, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }

	_, _ = cache.ListQuestions(context.Background())
	now = now.Add(2 * time.Minute)
	_, _ = cache.ListQuestions(context.Background())
	if backing.lists != 2 {
		t.Fatalf("expected reload after ttl, backing lists %d", backing.lists)
	}
}

func TestCatalogCacheSkipsEmptyCatalog(t *testing.T) {
	backing := &countingCatalog{Catalog: NewCatalog()}
	cache := NewCatalogCache(backing, time.Minute)

	if n, _ := cache.CountQuestions(context.Background()); n != 0 {
		t.Fatalf("expected empty catalog, got %d", n)
	}
	if _, err := cache.SeedQuestions(context.Background(), sampleQuestions()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n, _ := cache.CountQuestions(context.Background()); n != 2 {
		t.Fatalf("expected seeded catalog visible, got %d", n)
	}
}

type countingCatalog struct {
	*Catalog
	lists int
}

func (c *countingCatalog) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	c.lists++
	return c.Catalog.ListQuestions(ctx)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Index: 0, Text: "How often do you exercise?", Responses: []string{"Never", "Weekly", "Daily"}},
		{Index: 1, Text: "Do you sleep well?", Responses: []string{"Yes", "No"}},
	}
}
