package runner

import (
	"fmt"
	"regexp"
	"time"

	"surveyd/internal/model"
)

// validateGroup checks every question against its settings and returns the
// violations in question order. The first entry is what blocks the
// advance; the full list feeds the field-level error map.
func validateGroup(questions []model.Question, answers model.AnswerSnapshot) []ValidationError {
	var errs []ValidationError

	for _, q := range questions {
		if q.Type.IsDisplayOnly() {
			continue
		}

		if q.Type.IsArray() {
			errs = append(errs, validateArray(q, answers)...)
			continue
		}

		v := answers[q.Code]
		errs = append(errs, validateValue(q, q.Code, v)...)
	}

	return errs
}

// validateArray applies mandatory and per-value rules row by row; the
// question's own key carries no answer for array types.
func validateArray(q model.Question, answers model.AnswerSnapshot) []ValidationError {
	var errs []ValidationError
	for _, sub := range q.Subquestions {
		key := model.AnswerKey(q.Code, sub.Code)
		v := answers[key]
		if q.Settings.Mandatory && v.IsEmpty() {
			errs = append(errs, ValidationError{Field: key, Message: "This row requires an answer."})
			continue
		}
		if !v.IsEmpty() {
			errs = append(errs, checkRules(q, key, v)...)
		}
	}
	return errs
}

func validateValue(q model.Question, key string, v model.AnswerValue) []ValidationError {
	if v.IsEmpty() {
		if q.Settings.Mandatory {
			return []ValidationError{{Field: key, Message: message(q, "This question requires an answer.")}}
		}
		return nil
	}
	return checkRules(q, key, v)
}

// checkRules applies the type-family rules to a non-empty answer.
func checkRules(q model.Question, key string, v model.AnswerValue) []ValidationError {
	var errs []ValidationError

	switch {
	case q.Type.IsNumeric():
		n, ok := v.Num()
		if !ok {
			return []ValidationError{{Field: key, Message: message(q, "Please enter a valid number.")}}
		}
		if q.Settings.MinValue != nil && n < *q.Settings.MinValue {
			errs = append(errs, ValidationError{Field: key, Message: message(q, fmt.Sprintf("Value must be at least %g.", *q.Settings.MinValue))})
		}
		if q.Settings.MaxValue != nil && n > *q.Settings.MaxValue {
			errs = append(errs, ValidationError{Field: key, Message: message(q, fmt.Sprintf("Value must be at most %g.", *q.Settings.MaxValue))})
		}

	case q.Type.IsMultiSelect():
		count := v.Count()
		if q.Settings.MinAnswers > 0 && count < q.Settings.MinAnswers {
			errs = append(errs, ValidationError{Field: key, Message: message(q, fmt.Sprintf("Please select at least %d option(s).", q.Settings.MinAnswers))})
		}
		if q.Settings.MaxAnswers > 0 && count > q.Settings.MaxAnswers {
			errs = append(errs, ValidationError{Field: key, Message: message(q, fmt.Sprintf("Please select at most %d option(s).", q.Settings.MaxAnswers))})
		}

	case q.Type == model.TypeDate:
		if !parseableDate(v.Text) {
			errs = append(errs, ValidationError{Field: key, Message: message(q, "Please enter a valid date.")})
		}
	}

	if q.Settings.ValidationRegex != "" {
		re, err := regexp.Compile(q.Settings.ValidationRegex)
		if err != nil {
			// An invalid authored pattern allows the value rather than
			// trapping the respondent.
			return errs
		}
		if !re.MatchString(v.String()) {
			errs = append(errs, ValidationError{Field: key, Message: message(q, "Please enter a valid value.")})
		}
	}

	return errs
}

func message(q model.Question, fallback string) string {
	if q.Settings.ValidationMessage != "" {
		return q.Settings.ValidationMessage
	}
	return fallback
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "01/02/2006", "02.01.2006"}

func parseableDate(s string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}
