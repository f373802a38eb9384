package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// AnswerValue is a single respondent answer: free text (numeric input is
// kept in its string form) or a set of selected option codes. It marshals
// as a plain JSON string or string array so the wire format matches what
// the rendering layer produces.
type AnswerValue struct {
	Text  string
	Items []string
	Multi bool
}

// TextValue returns a single-valued answer.
func TextValue(s string) AnswerValue {
	return AnswerValue{Text: s}
}

// MultiValue returns a multi-select answer.
func MultiValue(items ...string) AnswerValue {
	return AnswerValue{Items: items, Multi: true}
}

// IsEmpty reports whether the answer counts as unanswered for mandatory
// checks.
func (v AnswerValue) IsEmpty() bool {
	if v.Multi {
		for _, it := range v.Items {
			if it != "" {
				return false
			}
		}
		return true
	}
	return v.Text == ""
}

// String renders the answer for piping and storage. Multi-select answers
// join their codes with ", " the way the original platform displayed them.
func (v AnswerValue) String() string {
	if v.Multi {
		return strings.Join(v.Items, ", ")
	}
	return v.Text
}

// Num parses the answer as a number.
func (v AnswerValue) Num() (float64, bool) {
	if v.Multi {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Text), 64)
	return f, err == nil
}

// Count returns the number of non-empty selections.
func (v AnswerValue) Count() int {
	if !v.Multi {
		if v.Text == "" {
			return 0
		}
		return 1
	}
	n := 0
	for _, it := range v.Items {
		if it != "" {
			n++
		}
	}
	return n
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.Multi {
		return json.Marshal(v.Items)
	}
	return json.Marshal(v.Text)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = AnswerValue{Text: s}
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*v = AnswerValue{Items: items, Multi: true}
	return nil
}

// AnswerSnapshot maps answer keys (questionCode or
// questionCode_subquestionCode) to values. Keys are only ever overwritten,
// never removed, during a live session. The session's persistence path is
// the single writer; evaluators read clones.
type AnswerSnapshot map[string]AnswerValue

// Set records an answer under the composite key for the question and
// optional subquestion.
func (s AnswerSnapshot) Set(questionCode, subquestionCode string, v AnswerValue) {
	s[AnswerKey(questionCode, subquestionCode)] = v
}

// Get looks an answer up by its snapshot key.
func (s AnswerSnapshot) Get(key string) (AnswerValue, bool) {
	v, ok := s[key]
	return v, ok
}

// Clone returns an independent copy for handing to readers.
func (s AnswerSnapshot) Clone() AnswerSnapshot {
	out := make(AnswerSnapshot, len(s))
	for k, v := range s {
		if v.Multi {
			items := make([]string, len(v.Items))
			copy(items, v.Items)
			v.Items = items
		}
		out[k] = v
	}
	return out
}

// CanonicalJSON marshals the snapshot with sorted keys so equal snapshots
// always serialize identically. Used for the autosave change fingerprint.
func (s AnswerSnapshot) CanonicalJSON() []byte {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(s[k])
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String())
}

// AnswerKey builds the snapshot key for a question and optional
// subquestion code.
func AnswerKey(questionCode, subquestionCode string) string {
	if subquestionCode == "" {
		return questionCode
	}
	return questionCode + "_" + subquestionCode
}
