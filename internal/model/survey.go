package model

import (
	"sort"
	"time"
)

// SurveyStatus is the publication state of a survey.
type SurveyStatus string

const (
	SurveyDraft  SurveyStatus = "draft"
	SurveyActive SurveyStatus = "active"
	SurveyClosed SurveyStatus = "closed"
)

// SurveySettings configures survey-level behavior and copy. Everything here
// is authored outside the execution core and treated as read-only input.
type SurveySettings struct {
	ShowProgressBar         bool   `json:"showProgressBar" bson:"showProgressBar"`
	AllowBackwardNavigation bool   `json:"allowBackwardNavigation" bson:"allowBackwardNavigation"`
	CompletionRedirectURL   string `json:"completionRedirectUrl,omitempty" bson:"completionRedirectUrl,omitempty"`
	ScreenoutRedirectURL    string `json:"screenoutRedirectUrl,omitempty" bson:"screenoutRedirectUrl,omitempty"`
	QuotaFullRedirectURL    string `json:"quotaFullRedirectUrl,omitempty" bson:"quotaFullRedirectUrl,omitempty"`

	// Welcome page; when disabled the session starts directly in questions.
	WelcomeEnabled    bool   `json:"welcomeEnabled" bson:"welcomeEnabled"`
	WelcomeTitle      string `json:"welcomeTitle,omitempty" bson:"welcomeTitle,omitempty"`
	WelcomeMessage    string `json:"welcomeMessage,omitempty" bson:"welcomeMessage,omitempty"`
	WelcomeButtonText string `json:"welcomeButtonText,omitempty" bson:"welcomeButtonText,omitempty"`

	EndTitle         string `json:"endTitle,omitempty" bson:"endTitle,omitempty"`
	EndMessage       string `json:"endMessage,omitempty" bson:"endMessage,omitempty"`
	EndRedirectDelay int    `json:"endRedirectDelay,omitempty" bson:"endRedirectDelay,omitempty"` // seconds

	ScreenoutTitle   string `json:"screenoutTitle,omitempty" bson:"screenoutTitle,omitempty"`
	ScreenoutMessage string `json:"screenoutMessage,omitempty" bson:"screenoutMessage,omitempty"`
	QuotaFullTitle   string `json:"quotaFullTitle,omitempty" bson:"quotaFullTitle,omitempty"`
	QuotaFullMessage string `json:"quotaFullMessage,omitempty" bson:"quotaFullMessage,omitempty"`

	// Scheduling; the survey only accepts responses inside this window.
	StartDate  *time.Time `json:"startDate,omitempty" bson:"startDate,omitempty"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty" bson:"expiryDate,omitempty"`
}

// Survey is the full authored structure consumed by the execution core:
// ordered groups of ordered questions, plus survey-level settings.
type Survey struct {
	ID        string          `json:"id" bson:"_id,omitempty"`
	Title     string          `json:"title" bson:"title"`
	Desc      string          `json:"description,omitempty" bson:"description,omitempty"`
	Status    SurveyStatus    `json:"status" bson:"status"`
	Settings  SurveySettings  `json:"settings" bson:"settings"`
	Groups    []QuestionGroup `json:"groups" bson:"groups"`
	CreatedAt time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// QuestionGroup is one page of the questionnaire. Groups with relevance
// logic are shown only while the expression evaluates true against the
// respondent's answers so far.
type QuestionGroup struct {
	ID             string     `json:"id" bson:"id"`
	Title          string     `json:"title,omitempty" bson:"title,omitempty"`
	Desc           string     `json:"description,omitempty" bson:"description,omitempty"`
	OrderIndex     int        `json:"orderIndex" bson:"orderIndex"`
	RelevanceLogic string     `json:"relevanceLogic,omitempty" bson:"relevanceLogic,omitempty"`
	Questions      []Question `json:"questions" bson:"questions"`
}

// Question is a single item within a group. Code is unique within the
// survey and is how relevance logic and piping refer to the answer.
type Question struct {
	ID             string           `json:"id" bson:"id"`
	Code           string           `json:"code" bson:"code"`
	Text           string           `json:"text" bson:"text"`
	HelpText       string           `json:"helpText,omitempty" bson:"helpText,omitempty"`
	Type           QuestionType     `json:"type" bson:"type"`
	Settings       QuestionSettings `json:"settings" bson:"settings"`
	RelevanceLogic string           `json:"relevanceLogic,omitempty" bson:"relevanceLogic,omitempty"`
	OrderIndex     int              `json:"orderIndex" bson:"orderIndex"`
	Subquestions   []Subquestion    `json:"subquestions,omitempty" bson:"subquestions,omitempty"`
	Options        []AnswerOption   `json:"options,omitempty" bson:"options,omitempty"`
}

// Subquestion is a row in an array-type question. The answer for a row is
// keyed as questionCode_subquestionCode.
type Subquestion struct {
	Code       string `json:"code" bson:"code"`
	Text       string `json:"text" bson:"text"`
	OrderIndex int    `json:"orderIndex" bson:"orderIndex"`
}

// AnswerOption is a selectable choice for closed questions.
type AnswerOption struct {
	Code       string `json:"code" bson:"code"`
	Text       string `json:"text" bson:"text"`
	OrderIndex int    `json:"orderIndex" bson:"orderIndex"`
}

// QuestionSettings is the per-question configuration bag: validation rules,
// randomization flags and display hints.
type QuestionSettings struct {
	Mandatory             bool     `json:"mandatory,omitempty" bson:"mandatory,omitempty"`
	Hidden                bool     `json:"hidden,omitempty" bson:"hidden,omitempty"`
	Placeholder           string   `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	ValidationRegex       string   `json:"validationRegex,omitempty" bson:"validationRegex,omitempty"`
	ValidationMessage     string   `json:"validationMessage,omitempty" bson:"validationMessage,omitempty"`
	MinValue              *float64 `json:"minValue,omitempty" bson:"minValue,omitempty"`
	MaxValue              *float64 `json:"maxValue,omitempty" bson:"maxValue,omitempty"`
	MinAnswers            int      `json:"minAnswers,omitempty" bson:"minAnswers,omitempty"`
	MaxAnswers            int      `json:"maxAnswers,omitempty" bson:"maxAnswers,omitempty"`
	RandomizeSubquestions bool     `json:"randomizeSubquestions,omitempty" bson:"randomizeSubquestions,omitempty"`
	RandomizeAnswers      bool     `json:"randomizeAnswers,omitempty" bson:"randomizeAnswers,omitempty"`
	OtherOption           bool     `json:"otherOption,omitempty" bson:"otherOption,omitempty"`
	DisplayColumns        int      `json:"displayColumns,omitempty" bson:"displayColumns,omitempty"`
	ScaleLowLabel         string   `json:"scaleLowLabel,omitempty" bson:"scaleLowLabel,omitempty"`
	ScaleHighLabel        string   `json:"scaleHighLabel,omitempty" bson:"scaleHighLabel,omitempty"`
}

// SortedGroups returns the survey's groups ordered by OrderIndex. The
// structure arrives from the authoring side unsorted.
func (s *Survey) SortedGroups() []QuestionGroup {
	groups := make([]QuestionGroup, len(s.Groups))
	copy(groups, s.Groups)
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].OrderIndex < groups[j].OrderIndex })
	return groups
}

// SortedQuestions returns the group's questions ordered by OrderIndex.
func (g *QuestionGroup) SortedQuestions() []Question {
	qs := make([]Question, len(g.Questions))
	copy(qs, g.Questions)
	sort.SliceStable(qs, func(i, j int) bool { return qs[i].OrderIndex < qs[j].OrderIndex })
	return qs
}
