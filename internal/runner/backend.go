package runner

import (
	"context"

	"surveyd/internal/model"
	"surveyd/internal/quota"
)

// Backend is the external persistence collaborator the session writes to.
// Implementations must be idempotent per (response, key) for SaveAnswer and
// safe to call repeatedly for MarkComplete.
type Backend interface {
	// SaveAnswer persists one answer cell; last value wins.
	SaveAnswer(ctx context.Context, responseID, questionCode, subquestionCode string, value model.AnswerValue) error

	// Autosave overwrites the full snapshot and position for the response.
	Autosave(ctx context.Context, responseID string, answers model.AnswerSnapshot, currentGroupIndex int) error

	// CheckQuota asks the server whether the respondent hits a full quota.
	CheckQuota(ctx context.Context, surveyID string, answers model.AnswerSnapshot) (quota.Verdict, error)

	// MarkComplete records the response as finished.
	MarkComplete(ctx context.Context, responseID string) error
}

// FatalError wraps a write failure that must not be retried: the request
// itself is bad and repeating it cannot succeed. Transient failures are
// plain errors and stay inside the retry budget.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }
