package model

import (
	"strings"
	"time"
)

// AnswerSet maps question key to the raw answer string.
// Multi-select answers are encoded as comma-joined tokens ("5307,5310").
type AnswerSet map[string]string

// Get returns the raw answer for a question and whether it is present.
// Blank answers count as absent.
func (a AnswerSet) Get(key string) (string, bool) {
	v, ok := a[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// Tokens splits the answer for a question on commas, trimming each token
// and dropping empty ones.
func (a AnswerSet) Tokens(key string) []string {
	v, ok := a.Get(key)
	if !ok {
		return nil
	}
	return SplitTokens(v)
}

// Clone returns a copy safe to hand to other goroutines
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// SplitTokens splits a comma-delimited value into trimmed, non-empty tokens
func SplitTokens(v string) []string {
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ProjectAnswers is the stored answer set for a project.
// Submitting new answers replaces the document; no history is kept.
type ProjectAnswers struct {
	ProjectID   string    `json:"project_id" bson:"projectId"`
	Answers     AnswerSet `json:"answers" bson:"answers"`
	SubmittedAt time.Time `json:"submitted_at" bson:"submittedAt"`
}
