package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"survey-service/internal/app"
	"survey-service/internal/domain"
	"survey-service/internal/infra/memory"
	pgstore "survey-service/internal/infra/postgres"
	infraredis "survey-service/internal/infra/redis"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestSurveyEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	if _, err := pgstore.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Second run must be a no-op.
	if applied, err := pgstore.Migrate(ctx, pgURL); err != nil || len(applied) != 0 {
		t.Fatalf("expected no pending migrations, applied=%v err=%v", applied, err)
	}

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	catalog := app.NewCatalog(infraredis.NewCatalogCache(redisClient, pgstore.NewCatalog(pool), 5*time.Minute))
	source := memory.NewStaticQuestionSource(sampleQuestions())
	if n, err := catalog.LoadIfEmpty(ctx, source); err != nil || n != 2 {
		t.Fatalf("seed: n=%d err=%v", n, err)
	}
	if n, err := catalog.LoadIfEmpty(ctx, source); err != nil || n != 0 {
		t.Fatalf("reseed: n=%d err=%v", n, err)
	}

	tokens := app.NewTokenStore(infraredis.NewTokenStore(redisClient))
	responses := app.NewResponseLog(pgstore.NewResponseStore(pool))
	progress := app.NewProgressCalculator(catalog, responses, app.ProgressDistinct)
	service := app.NewSurveyService(tokens, catalog, responses, progress, app.Options{})

	token, err := service.IssueToken(ctx, "testuser")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	questions, err := service.ListQuestions(ctx, token.Value)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(questions) != 2 || questions[1].Text != "Second Question" {
		t.Fatalf("unexpected questions %+v", questions)
	}

	for _, idx := range []int{0, 0} {
		if _, err := service.RecordResponse(ctx, token.Value, idx, "Option 1"); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	records, err := service.ListResponses(ctx, token.Value, "testuser")
	if err != nil || len(records) != 2 {
		t.Fatalf("expected 2 records, got %d err=%v", len(records), err)
	}

	p, err := service.GetProgress(ctx, token.Value)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if p.TotalQuestions != 2 || p.AnsweredQuestions != 1 || p.Progress != 50 {
		t.Fatalf("unexpected progress %+v", p)
	}

	if _, err := service.GetProgress(ctx, "invalid-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestPostgresStoresWithoutRedis(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	if _, err := pgstore.Migrate(ctx, pgURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	tokens := pgstore.NewTokenStore(pool)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := tokens.SaveToken(ctx, domain.Token{Value: "tok-1", UserName: "alice", CreatedAt: created}); err != nil {
		t.Fatalf("save token: %v", err)
	}
	got, ok, err := tokens.LookupToken(ctx, "tok-1")
	if err != nil || !ok || got.UserName != "alice" || !got.CreatedAt.Equal(created) {
		t.Fatalf("lookup: got=%+v ok=%v err=%v", got, ok, err)
	}
	if _, ok, err := tokens.LookupToken(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected missing token absent, ok=%v err=%v", ok, err)
	}

	responses := pgstore.NewResponseStore(pool)
	for i, idx := range []int{1, 1, 0} {
		err := responses.InsertResponse(ctx, domain.ResponseRecord{
			ID: fmt.Sprintf("r%d", i), UserName: "alice", QuestionIndex: idx, Answer: "Yes", CreatedAt: created,
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if n, _ := responses.CountResponses(ctx, "alice"); n != 3 {
		t.Fatalf("expected 3 responses, got %d", n)
	}
	if n, _ := responses.CountDistinctQuestions(ctx, "alice"); n != 2 {
		t.Fatalf("expected 2 distinct, got %d", n)
	}
	records, _ := responses.ListResponsesByUser(ctx, "alice")
	if len(records) != 3 || records[0].ID != "r0" || records[2].ID != "r2" {
		t.Fatalf("expected insertion order, got %+v", records)
	}

	questions := sampleQuestions()
	for i := range questions {
		questions[i].Index = i
	}
	const seeders = 6
	inserted := make([]int, seeders)
	errs := make([]error, seeders)
	var wg sync.WaitGroup
	for i := 0; i < seeders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inserted[i], errs[i] = pgstore.NewCatalog(pool).SeedQuestions(ctx, questions)
		}(i)
	}
	wg.Wait()
	total := 0
	for i := range errs {
		if errs[i] != nil {
			t.Fatalf("seed %d: %v", i, errs[i])
		}
		total += inserted[i]
	}
	if total != len(questions) {
		t.Fatalf("expected %d inserted across seeders, got %d (%v)", len(questions), total, inserted)
	}
	stored, err := pgstore.NewCatalog(pool).ListQuestions(ctx)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if len(stored) != len(questions) || stored[0].Text != "Test Question" || stored[1].Index != 1 {
		t.Fatalf("unexpected stored questions %+v", stored)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "survey", "POSTGRES_PASSWORD": "surveypass", "POSTGRES_DB": "surveydb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://survey:surveypass@%s:%s/surveydb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{Text: "Test Question", Responses: []string{"Option 1", "Option 2"}},
		{Text: "Second Question", Responses: []string{"Yes", "No"}},
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
