package domain

import "time"

// Question is a single survey question. Index is its zero-based position in the catalog.
type Question struct {
	Index     int      `json:"-" yaml:"-"`
	Text      string   `json:"Question" yaml:"Question"`
	Responses []string `json:"Responses" yaml:"Responses"`
}

// Token binds an opaque access token to a user name.
type Token struct {
	Value     string    `json:"token"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// ResponseRecord is one recorded answer. Records are never updated or deduplicated.
type ResponseRecord struct {
	ID            string    `json:"id"`
	UserName      string    `json:"user_name"`
	QuestionIndex int       `json:"question_index"`
	Answer        string    `json:"response"`
	CreatedAt     time.Time `json:"created_at"`
}

// Progress summarizes how far a user is through the survey.
type Progress struct {
	TotalQuestions    int     `json:"total_questions"`
	AnsweredQuestions int     `json:"answered_questions"`
	Progress          float64 `json:"progress"`
	Policy            string  `json:"policy"`
}
