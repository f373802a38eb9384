package model

// QuotaAction is what happens to a respondent who matches a full quota.
type QuotaAction string

const (
	QuotaScreenout QuotaAction = "screenout"
	QuotaRedirect  QuotaAction = "redirect"
	QuotaStop      QuotaAction = "stop"
)

// QuotaOperator compares a respondent's answer against a rule value.
type QuotaOperator string

const (
	QuotaEquals    QuotaOperator = "equals"
	QuotaNotEquals QuotaOperator = "not_equals"
	QuotaIn        QuotaOperator = "in"
	QuotaNotIn     QuotaOperator = "not_in"
	QuotaGreater   QuotaOperator = "greater"
	QuotaLess      QuotaOperator = "less"
)

// QuotaCondition is one predicate over the answer snapshot. A rule's
// conditions combine with AND; a rule with no conditions matches every
// respondent.
type QuotaCondition struct {
	QuestionCode string        `json:"questionCode" bson:"questionCode"`
	Operator     QuotaOperator `json:"operator" bson:"operator"`
	Value        string        `json:"value,omitempty" bson:"value,omitempty"`
	Values       []string      `json:"values,omitempty" bson:"values,omitempty"` // for in / not_in
}

// QuotaRule caps how many completed responses may match its conditions.
// Rules are evaluated in OrderIndex order and the first full, matching rule
// decides the respondent's fate.
type QuotaRule struct {
	ID          string           `json:"id" bson:"_id,omitempty"`
	SurveyID    string           `json:"surveyId" bson:"surveyId"`
	Name        string           `json:"name" bson:"name"`
	OrderIndex  int              `json:"orderIndex" bson:"orderIndex"`
	Conditions  []QuotaCondition `json:"conditions" bson:"conditions"`
	Limit       int              `json:"limit" bson:"limit"`
	Count       int              `json:"count" bson:"count"` // live tally, overlaid from the counter store
	Action      QuotaAction      `json:"action" bson:"action"`
	RedirectURL string           `json:"redirectUrl,omitempty" bson:"redirectUrl,omitempty"`
	Active      bool             `json:"active" bson:"active"`
}

// Full reports whether the rule's tally has reached its limit.
func (r *QuotaRule) Full() bool {
	return r.Limit > 0 && r.Count >= r.Limit
}
