package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"surveyd/internal/model"
)

func snap(pairs ...string) model.AnswerSnapshot {
	s := make(model.AnswerSnapshot)
	for i := 0; i+1 < len(pairs); i += 2 {
		s[pairs[i]] = model.TextValue(pairs[i+1])
	}
	return s
}

func TestEvaluateDefaults(t *testing.T) {
	e := NewEngine(nil)

	assert.True(t, e.Evaluate("", nil))
	assert.True(t, e.Evaluate("1", nil))
	assert.True(t, e.Evaluate("  1  ", nil))
	assert.False(t, e.Evaluate("0", nil))
}

func TestEvaluateComparisons(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name    string
		expr    string
		answers model.AnswerSnapshot
		want    bool
	}{
		{"string equals", "Q1 == 'yes'", snap("Q1", "yes"), true},
		{"string not equals", "Q1 != 'yes'", snap("Q1", "no"), true},
		{"numeric comparison coerces", "age >= 18", snap("age", "21"), true},
		{"numeric comparison false", "age >= 18", snap("age", "17"), false},
		{"numeric equality across forms", "n == 5", snap("n", "5.0"), true},
		{"less than", "n < 3", snap("n", "2"), true},
		{"and both true", "Q1 == 'a' AND Q2 == 'b'", snap("Q1", "a", "Q2", "b"), true},
		{"and one false", "Q1 == 'a' AND Q2 == 'b'", snap("Q1", "a", "Q2", "x"), false},
		{"or short", "Q1 == 'a' OR Q2 == 'b'", snap("Q2", "b"), true},
		{"not", "NOT (Q1 == 'a')", snap("Q1", "b"), true},
		{"symbolic and", "Q1 == 'a' && Q2 == 'b'", snap("Q1", "a", "Q2", "b"), true},
		{"symbolic or", "Q1 == 'a' || Q2 == 'b'", snap("Q1", "a"), true},
		{"arithmetic", "a + b > 10", snap("a", "6", "b", "5"), true},
		{"precedence mul before add", "1 + 2 * 3 == 7", nil, true},
		{"parens override", "(1 + 2) * 3 == 9", nil, true},
		{"lowercase keywords", "Q1 == 'a' and Q2 == 'b'", snap("Q1", "a", "Q2", "b"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Evaluate(tt.expr, tt.answers))
		})
	}
}

func TestEvaluateBracedPlaceholders(t *testing.T) {
	e := NewEngine(nil)

	// Both authoring styles must parse: braces around each reference and
	// braces around the whole expression.
	assert.True(t, e.Evaluate("{Q1} == 'yes'", snap("Q1", "yes")))
	assert.True(t, e.Evaluate("{Q1 == 'yes'}", snap("Q1", "yes")))
	assert.True(t, e.Evaluate("{Q1} == {Q2}", snap("Q1", "x", "Q2", "x")))
}

func TestEvaluateMissingAnswers(t *testing.T) {
	e := NewEngine(nil)

	// A missing answer only equals another missing answer; it never equals
	// any literal.
	assert.False(t, e.Evaluate("Q9 == 'yes'", nil))
	assert.False(t, e.Evaluate("Q9 == ''", nil))

	// .NAOK makes a missing reference a defined false instead of an error.
	assert.False(t, e.Evaluate("Q9.NAOK", nil))
	assert.True(t, e.Evaluate("NOT Q9.NAOK", nil))
	assert.True(t, e.Evaluate("Q1.NAOK == 'yes'", snap("Q1", "yes")))
}

func TestEvaluateFailsOpen(t *testing.T) {
	e := NewEngine(nil)

	// Malformed expressions must never hide content.
	assert.True(t, e.Evaluate("Q1 ==", snap("Q1", "a")))
	assert.True(t, e.Evaluate("((Q1 == 'a'", snap("Q1", "a")))
	assert.True(t, e.Evaluate("unknownfn(Q1)", snap("Q1", "a")))
	assert.True(t, e.Evaluate("Q1 == 'a' extra", snap("Q1", "a")))
}

func TestEvaluateIsPure(t *testing.T) {
	e := NewEngine(nil)
	answers := snap("Q1", "yes")

	for i := 0; i < 5; i++ {
		assert.True(t, e.Evaluate("Q1 == 'yes'", answers))
	}
	assert.Equal(t, snap("Q1", "yes"), answers)
}

func TestEvaluateFunctions(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		expr    string
		answers model.AnswerSnapshot
		want    bool
	}{
		{"is_empty(Q1)", nil, true},
		{"is_empty(Q1)", snap("Q1", "x"), false},
		{"is_numeric(Q1)", snap("Q1", "42"), true},
		{"is_numeric(Q1)", snap("Q1", "abc"), false},
		{"intval(Q1) == 4", snap("Q1", "4.9"), true},
		{"abs(0 - 3) == 3", nil, true},
		{"ceil(1.2) == 2", nil, true},
		{"floor(1.8) == 1", nil, true},
		{"round(2.5) == 3", nil, true},
		{"min(3, 1, 2) == 1", nil, true},
		{"max(3, 1, 2) == 3", nil, true},
		{"sum(a, b) == 7", snap("a", "3", "b", "4"), true},
		{"count(a, b, c) == 2", snap("a", "x", "b", "y"), true},
		{"strlen(Q1) == 5", snap("Q1", "hello"), true},
		{"substr(Q1, 0, 2) == 'he'", snap("Q1", "hello"), true},
		{"trim(Q1) == 'x'", snap("Q1", "  x  "), true},
		{"strtoupper(Q1) == 'ABC'", snap("Q1", "abc"), true},
		{"strtolower(Q1) == 'abc'", snap("Q1", "ABC"), true},
		{"if(Q1 == 'a', 1, 0) == 1", snap("Q1", "a"), true},
		{"iif(Q1 == 'a', 1, 0) == 0", snap("Q1", "b"), true},
		{"regexmatch('^[a-z]+$', Q1)", snap("Q1", "abc"), true},
		{"regexmatch('^[a-z]+$', Q1)", snap("Q1", "abc1"), false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Evaluate(tt.expr, tt.answers))
		})
	}
}

func TestPipe(t *testing.T) {
	e := NewEngine(nil)

	tests := []struct {
		name    string
		text    string
		answers model.AnswerSnapshot
		want    string
	}{
		{"simple substitution", "Hello {name}!", snap("name", "Ada"), "Hello Ada!"},
		{"multiple placeholders", "{a} and {b}", snap("a", "x", "b", "y"), "x and y"},
		{"unresolved stays literal", "Hello {name}!", nil, "Hello {name}!"},
		{"expression content", "Total: {a + b}", snap("a", "2", "b", "3"), "Total: 5"},
		{"failed expression stays literal", "Total: {a +}", nil, "Total: {a +}"},
		{"no placeholders", "plain text", nil, "plain text"},
		{"empty text", "", snap("a", "x"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Pipe(tt.text, tt.answers))
		})
	}
}

func TestPipeMultiSelect(t *testing.T) {
	e := NewEngine(nil)
	answers := model.AnswerSnapshot{"services": model.MultiValue("NF", "DP")}

	assert.Equal(t, "You chose NF, DP.", e.Pipe("You chose {services}.", answers))
}
