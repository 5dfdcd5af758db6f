package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"time"

	"survey-service/internal/app"
	"survey-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const questionsKey = "survey:questions"

// CatalogCache caches the question list in Redis and falls back to the backing
// repository on a miss. The list is stored as one JSON value:
//
//	SET survey:questions [{"index":0,"text":..,"responses":[..]},..] EX ttl
type CatalogCache struct {
	client  *redis.Client
	backing app.CatalogRepository
	ttl     time.Duration
	sf      singleflight.Group
	rnd     *rand.Rand
}

type cachedQuestion struct {
	Index     int      `json:"index"`
	Text      string   `json:"text"`
	Responses []string `json:"responses"`
}

func NewCatalogCache(client *redis.Client, backing app.CatalogRepository, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client:  client,
		backing: backing,
		ttl:     ttl,
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
	if questions, ok := c.fromCache(ctx); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.fromCache(ctx); ok {
			return questions, nil
		}

		questions, err := c.backing.ListQuestions(ctx)
		if err != nil {
			return nil, err
		}
		if len(questions) > 0 {
			c.store(ctx, questions)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	// singleflight hands the same slice to every waiter.
	return cloneQuestions(result.([]domain.Question)), nil
}

func (c *CatalogCache) SeedQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	n, err := c.backing.SeedQuestions(ctx, questions)
	if delErr := c.client.Del(ctx, questionsKey).Err(); delErr != nil {
		log.Printf("catalog cache: invalidate: %v", delErr)
	}
	return n, err
}

func (c *CatalogCache) fromCache(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, questionsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("catalog cache: get: %v", err)
		}
		return nil, false
	}
	var cached []cachedQuestion
	if err := json.Unmarshal(raw, &cached); err != nil {
		log.Printf("catalog cache: decode: %v", err)
		return nil, false
	}
	questions := make([]domain.Question, len(cached))
	for i, q := range cached {
		questions[i] = domain.Question{Index: q.Index, Text: q.Text, Responses: q.Responses}
	}
	return questions, true
}

func (c *CatalogCache) store(ctx context.Context, questions []domain.Question) {
	cached := make([]cachedQuestion, len(questions))
	for i, q := range questions {
		cached[i] = cachedQuestion{Index: q.Index, Text: q.Text, Responses: q.Responses}
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		log.Printf("catalog cache: encode: %v", err)
		return
	}
	// best-effort; a failed write only costs another backing read
	if err := c.client.Set(ctx, questionsKey, raw, c.ttlWithJitter()).Err(); err != nil {
		log.Printf("catalog cache: set: %v", err)
	}
}

func cloneQuestions(in []domain.Question) []domain.Question {
	out := make([]domain.Question, len(in))
	for i, q := range in {
		q.Responses = append([]string(nil), q.Responses...)
		out[i] = q
	}
	return out
}

func (c *CatalogCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
