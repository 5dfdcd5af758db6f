package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"survey-service/internal/domain"

	"gopkg.in/yaml.v3"
)

// QuestionSource reads question definitions from a JSON or YAML file:
// a list of {"Question": text, "Responses": [..]} in catalog order.
type QuestionSource struct {
	path string
}

func NewQuestionSource(path string) *QuestionSource {
	return &QuestionSource{path: path}
}

func (s *QuestionSource) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return ParseQuestions(data)
}

// ParseQuestions decodes a definition list. A document starting with '[' is read as JSON,
// anything else as YAML.
func ParseQuestions(data []byte) ([]domain.Question, error) {
	var questions []domain.Question
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		if err := json.Unmarshal(data, &questions); err != nil {
			return nil, fmt.Errorf("decode questions json: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("decode questions yaml: %w", err)
	}
	for i := range questions {
		questions[i].Index = i
	}
	return questions, nil
}
