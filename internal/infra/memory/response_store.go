package memory

import (
	"context"
	"sync"

	"survey-service/internal/domain"
)

// ResponseStore is an in-memory implementation of app.ResponseRepository.
// Records are kept per user in insertion order.
type ResponseStore struct {
	mu     sync.RWMutex
	byUser map[string][]domain.ResponseRecord
}

func NewResponseStore() *ResponseStore {
	return &ResponseStore{
		byUser: make(map[string][]domain.ResponseRecord),
	}
}

func (s *ResponseStore) InsertResponse(_ context.Context, record domain.ResponseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[record.UserName] = append(s.byUser[record.UserName], record)
	return nil
}

func (s *ResponseStore) ListResponsesByUser(_ context.Context, userName string) ([]domain.ResponseRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ResponseRecord(nil), s.byUser[userName]...), nil
}

func (s *ResponseStore) CountDistinctQuestions(_ context.Context, userName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[int]struct{})
	for _, r := range s.byUser[userName] {
		seen[r.QuestionIndex] = struct{}{}
	}
	return len(seen), nil
}

func (s *ResponseStore) CountResponses(_ context.Context, userName string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser[userName]), nil
}
