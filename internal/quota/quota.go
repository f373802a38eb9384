// Package quota decides whether a respondent hits an author-defined quota
// cap. Rules are checked in declared order and the first full, matching
// rule wins; later matches are never consulted.
package quota

import (
	"sort"
	"strconv"

	"surveyd/internal/model"
)

// Verdict is the outcome of a quota check. A passing verdict carries no
// action; a failing one says how the session must terminate.
type Verdict struct {
	Passed      bool
	Rule        string // name of the deciding rule
	Action      model.QuotaAction
	RedirectURL string
}

// Check evaluates rules against the answer snapshot in OrderIndex order.
// A rule fires when it is active, its tally is full and every condition
// matches. Inactive and not-yet-full rules are skipped regardless of
// condition match.
func Check(answers model.AnswerSnapshot, rules []model.QuotaRule) Verdict {
	ordered := make([]model.QuotaRule, len(rules))
	copy(ordered, rules)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].OrderIndex < ordered[j].OrderIndex })

	for i := range ordered {
		r := &ordered[i]
		if !r.Active || !r.Full() {
			continue
		}
		if Matches(answers, r.Conditions) {
			return Verdict{
				Passed:      false,
				Rule:        r.Name,
				Action:      r.Action,
				RedirectURL: r.RedirectURL,
			}
		}
	}
	return Verdict{Passed: true}
}

// Matches reports whether all conditions hold against the snapshot (AND
// logic). An empty condition list matches every respondent. An unanswered
// question never matches a condition.
func Matches(answers model.AnswerSnapshot, conds []model.QuotaCondition) bool {
	for _, c := range conds {
		if !matchCondition(answers, c) {
			return false
		}
	}
	return true
}

func matchCondition(answers model.AnswerSnapshot, c model.QuotaCondition) bool {
	v, ok := answers.Get(c.QuestionCode)
	if !ok || v.IsEmpty() {
		return false
	}
	got := v.String()

	switch c.Operator {
	case model.QuotaEquals:
		return got == c.Value
	case model.QuotaNotEquals:
		return got != c.Value
	case model.QuotaIn:
		return contains(c.Values, got) || containsAny(c.Values, v)
	case model.QuotaNotIn:
		return !contains(c.Values, got) && !containsAny(c.Values, v)
	case model.QuotaGreater:
		gn, gok := parseNum(got)
		wn, wok := parseNum(c.Value)
		return gok && wok && gn > wn
	case model.QuotaLess:
		gn, gok := parseNum(got)
		wn, wok := parseNum(c.Value)
		return gok && wok && gn < wn
	}
	return false
}

// containsAny treats multi-select answers as matching when any selected
// code is in the rule's value set.
func containsAny(values []string, v model.AnswerValue) bool {
	if !v.Multi {
		return false
	}
	for _, item := range v.Items {
		if contains(values, item) {
			return true
		}
	}
	return false
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func parseNum(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
