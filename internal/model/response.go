package model

import "time"

// ResponseStatus tracks a response record's lifecycle on the server.
type ResponseStatus string

const (
	ResponseIncomplete  ResponseStatus = "incomplete"
	ResponseComplete    ResponseStatus = "complete"
	ResponseScreenedOut ResponseStatus = "screened_out"
)

// Response is the server-side record for one respondent's run through a
// survey. Individual answer cells live in their own collection; this record
// carries status and the autosaved position.
type Response struct {
	ID                string         `json:"id" bson:"_id,omitempty"`
	SurveyID          string         `json:"surveyId" bson:"surveyId"`
	Status            ResponseStatus `json:"status" bson:"status"`
	RandomizationSeed string         `json:"randomizationSeed" bson:"randomizationSeed"`
	CurrentGroupIndex int            `json:"currentGroupIndex" bson:"currentGroupIndex"`
	StartedAt         time.Time      `json:"startedAt" bson:"startedAt"`
	LastAutosaveAt    *time.Time     `json:"lastAutosaveAt,omitempty" bson:"lastAutosaveAt,omitempty"`
	CompletedAt       *time.Time     `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// AnswerCell is one persisted answer: the upsert target of the per-answer
// save operation, unique per (response, key).
type AnswerCell struct {
	ResponseID string    `json:"responseId" bson:"responseId"`
	Key        string    `json:"key" bson:"key"` // questionCode or questionCode_subquestionCode
	Value      string    `json:"value" bson:"value"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ResumeState is the cached snapshot a reloaded session restores from:
// answers, position and the original randomization seed, so option order
// is reproduced exactly.
type ResumeState struct {
	ResponseID        string         `json:"responseId"`
	SurveyID          string         `json:"surveyId"`
	Answers           AnswerSnapshot `json:"answers"`
	CurrentGroupIndex int            `json:"currentGroupIndex"`
	RandomizationSeed string         `json:"randomizationSeed"`
	SavedAt           time.Time      `json:"savedAt"`
}
