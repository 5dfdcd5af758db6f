package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"survey-service/internal/app"
	"survey-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// CatalogCache keeps the question list in process with a TTL to avoid repeated DB hits.
// The catalog is immutable after seeding, so the TTL only bounds staleness after a reseed
// by another instance.
type CatalogCache struct {
	backing app.CatalogRepository
	ttl     time.Duration
	clock   func() time.Time
	sf      singleflight.Group
	rnd     *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	expiresAt time.Time
}

func NewCatalogCache(backing app.CatalogRepository, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		backing: backing,
		ttl:     ttl,
		clock:   time.Now,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CatalogCache) CountQuestions(ctx context.Context) (int, error) {
	questions, err := c.ListQuestions(ctx)
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}

func (c *CatalogCache) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.cached(c.clock()); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do("questions", func() (interface{}, error) {
		now := c.clock()
		if questions, ok := c.cached(now); ok {
			return questions, nil
		}

		questions, err := c.backing.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}

		// An empty catalog is not cached so a later seed is visible immediately.
		if len(questions) > 0 {
			c.mu.Lock()
			c.questions = cloneQuestions(questions)
			c.expiresAt = now.Add(c.ttlWithJitter())
			c.mu.Unlock()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

func (c *CatalogCache) SeedQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	n, err := c.backing.SeedQuestions(ctx, questions)
	c.mu.Lock()
	c.questions = nil
	c.expiresAt = time.Time{}
	c.mu.Unlock()
	return n, err
}

func (c *CatalogCache) cached(now time.Time) ([]domain.Question, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.questions != nil && c.expiresAt.After(now) {
		return cloneQuestions(c.questions), true
	}
	return nil, false
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
