package app

import (
	"context"

	"survey-service/internal/domain"
)

// Options tunes SurveyService behavior.
type Options struct {
	// RestrictResponses limits ListResponses to the caller's own records.
	RestrictResponses bool
}

// SurveyService contains the survey use cases. Every operation except IssueToken
// resolves the token before reading the catalog or the response log.
type SurveyService struct {
	tokens    *TokenStore
	catalog   *Catalog
	responses *ResponseLog
	progress  *ProgressCalculator
	opts      Options
}

func NewSurveyService(tokens *TokenStore, catalog *Catalog, responses *ResponseLog, progress *ProgressCalculator, opts Options) *SurveyService {
	return &SurveyService{
		tokens:    tokens,
		catalog:   catalog,
		responses: responses,
		progress:  progress,
		opts:      opts,
	}
}

// IssueToken binds a fresh token to userName.
func (s *SurveyService) IssueToken(ctx context.Context, userName string) (domain.Token, error) {
	return s.tokens.IssueToken(ctx, userName)
}

// Authenticate resolves token to a user name or returns domain.ErrUnauthorized.
func (s *SurveyService) Authenticate(ctx context.Context, token string) (string, error) {
	userName, ok, err := s.tokens.ResolveToken(ctx, token)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return userName, nil
}

// ListQuestions returns the ordered catalog.
func (s *SurveyService) ListQuestions(ctx context.Context, token string) ([]domain.Question, error) {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return nil, err
	}
	return s.catalog.List(ctx)
}

// RecordResponse appends an answer on behalf of the token's user.
func (s *SurveyService) RecordResponse(ctx context.Context, token string, questionIndex int, answer string) (domain.ResponseRecord, error) {
	userName, err := s.Authenticate(ctx, token)
	if err != nil {
		return domain.ResponseRecord{}, err
	}
	return s.responses.Append(ctx, userName, questionIndex, answer)
}

// ListResponses returns the records of targetUserName, or of the caller when empty.
// Unless RestrictResponses is set, any valid token may read any user's records.
func (s *SurveyService) ListResponses(ctx context.Context, token, targetUserName string) ([]domain.ResponseRecord, error) {
	userName, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	if targetUserName == "" {
		targetUserName = userName
	}
	if s.opts.RestrictResponses && targetUserName != userName {
		return nil, domain.ErrUnauthorized
	}
	return s.responses.ListByUser(ctx, targetUserName)
}

// GetProgress reports the caller's completion.
func (s *SurveyService) GetProgress(ctx context.Context, token string) (domain.Progress, error) {
	userName, err := s.Authenticate(ctx, token)
	if err != nil {
		return domain.Progress{}, err
	}
	return s.progress.Calculate(ctx, userName)
}
