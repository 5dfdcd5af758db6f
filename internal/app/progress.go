package app

import (
	"context"
	"fmt"
	"strings"

	"survey-service/internal/domain"
)

// ProgressPolicy selects how answered questions are counted.
type ProgressPolicy string

const (
	// ProgressDistinct counts unique question indices and reports a percentage.
	ProgressDistinct ProgressPolicy = "distinct"
	// ProgressRaw counts every record and reports a fraction that can exceed 1.
	ProgressRaw ProgressPolicy = "raw"
)

// ParseProgressPolicy maps a config value to a policy. Empty selects ProgressDistinct.
func ParseProgressPolicy(raw string) (ProgressPolicy, error) {
	switch ProgressPolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ProgressDistinct:
		return ProgressDistinct, nil
	case ProgressRaw:
		return ProgressRaw, nil
	}
	return "", fmt.Errorf("unknown progress policy %q", raw)
}

// ProgressCalculator derives completion statistics from catalog size and a user's records.
type ProgressCalculator struct {
	catalog   *Catalog
	responses *ResponseLog
	policy    ProgressPolicy
}

func NewProgressCalculator(catalog *Catalog, responses *ResponseLog, policy ProgressPolicy) *ProgressCalculator {
	if policy == "" {
		policy = ProgressDistinct
	}
	return &ProgressCalculator{catalog: catalog, responses: responses, policy: policy}
}

// Policy reports the configured policy.
func (p *ProgressCalculator) Policy() ProgressPolicy {
	return p.policy
}

// Calculate returns the progress of userName.
func (p *ProgressCalculator) Calculate(ctx context.Context, userName string) (domain.Progress, error) {
	total, err := p.catalog.Count(ctx)
	if err != nil {
		return domain.Progress{}, err
	}

	var answered int
	if p.policy == ProgressRaw {
		answered, err = p.responses.CountByUser(ctx, userName)
	} else {
		answered, err = p.responses.CountDistinctQuestions(ctx, userName)
	}
	if err != nil {
		return domain.Progress{}, err
	}

	return domain.Progress{
		TotalQuestions:    total,
		AnsweredQuestions: answered,
		Progress:          computeProgress(p.policy, answered, total),
		Policy:            string(p.policy),
	}, nil
}

func computeProgress(policy ProgressPolicy, answered, total int) float64 {
	if total <= 0 {
		return 0
	}
	ratio := float64(answered) / float64(total)
	if policy == ProgressRaw {
		return ratio
	}
	return ratio * 100
}
