package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyd/internal/model"
)

func fptr(v float64) *float64 { return &v }

func TestValidateMandatory(t *testing.T) {
	q := question("Q1", model.TypeText, model.QuestionSettings{Mandatory: true})

	errs := validateGroup([]model.Question{q}, model.AnswerSnapshot{})
	require.Len(t, errs, 1)
	assert.Equal(t, "Q1", errs[0].Field)

	errs = validateGroup([]model.Question{q}, model.AnswerSnapshot{"Q1": model.TextValue("x")})
	assert.Empty(t, errs)
}

func TestValidateOptionalEmptyPasses(t *testing.T) {
	q := question("Q1", model.TypeNumerical, model.QuestionSettings{MinValue: fptr(10)})
	assert.Empty(t, validateGroup([]model.Question{q}, model.AnswerSnapshot{}))
}

func TestValidateDisplayOnlySkipped(t *testing.T) {
	q := question("intro", model.TypeTextDisplay, model.QuestionSettings{Mandatory: true})
	assert.Empty(t, validateGroup([]model.Question{q}, model.AnswerSnapshot{}))
}

func TestValidateNumericRules(t *testing.T) {
	q := question("age", model.TypeNumerical, model.QuestionSettings{
		MinValue: fptr(18),
		MaxValue: fptr(99),
	})

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"in range", "42", true},
		{"at min", "18", true},
		{"at max", "99", true},
		{"below min", "17", false},
		{"above max", "100", false},
		{"not a number", "abc", false},
		{"decimal in range", "21.5", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateGroup([]model.Question{q}, model.AnswerSnapshot{"age": model.TextValue(tt.value)})
			assert.Equal(t, tt.valid, len(errs) == 0)
		})
	}
}

func TestValidateMultiSelectBounds(t *testing.T) {
	q := question("pick", model.TypeMultipleChoiceMultiple, model.QuestionSettings{
		MinAnswers: 2,
		MaxAnswers: 3,
	})

	check := func(items ...string) []ValidationError {
		return validateGroup([]model.Question{q}, model.AnswerSnapshot{"pick": model.MultiValue(items...)})
	}

	assert.NotEmpty(t, check("a"))
	assert.Empty(t, check("a", "b"))
	assert.Empty(t, check("a", "b", "c"))
	assert.NotEmpty(t, check("a", "b", "c", "d"))
}

func TestValidateArrayPerRow(t *testing.T) {
	q := model.Question{
		ID:       "grid",
		Code:     "grid",
		Type:     model.TypeArray5Point,
		Settings: model.QuestionSettings{Mandatory: true},
		Subquestions: []model.Subquestion{
			{Code: "r1", OrderIndex: 0},
			{Code: "r2", OrderIndex: 1},
		},
	}

	// Only r1 answered: exactly the r2 row is in violation.
	errs := validateGroup([]model.Question{q}, model.AnswerSnapshot{
		"grid_r1": model.TextValue("3"),
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "grid_r2", errs[0].Field)

	errs = validateGroup([]model.Question{q}, model.AnswerSnapshot{
		"grid_r1": model.TextValue("3"),
		"grid_r2": model.TextValue("5"),
	})
	assert.Empty(t, errs)
}

func TestValidateRegex(t *testing.T) {
	q := question("email", model.TypeText, model.QuestionSettings{
		ValidationRegex:   `^[^@\s]+@[^@\s]+$`,
		ValidationMessage: "Bad email.",
	})

	errs := validateGroup([]model.Question{q}, model.AnswerSnapshot{"email": model.TextValue("nope")})
	require.Len(t, errs, 1)
	assert.Equal(t, "Bad email.", errs[0].Message)

	errs = validateGroup([]model.Question{q}, model.AnswerSnapshot{"email": model.TextValue("a@b.com")})
	assert.Empty(t, errs)
}

func TestValidateInvalidRegexAllows(t *testing.T) {
	q := question("x", model.TypeText, model.QuestionSettings{
		ValidationRegex: `([unclosed`,
	})
	errs := validateGroup([]model.Question{q}, model.AnswerSnapshot{"x": model.TextValue("anything")})
	assert.Empty(t, errs)
}

func TestValidateDate(t *testing.T) {
	q := question("dob", model.TypeDate, model.QuestionSettings{})

	for _, ok := range []string{"1990-06-15", "06/15/1990", "15.06.1990"} {
		errs := validateGroup([]model.Question{q}, model.AnswerSnapshot{"dob": model.TextValue(ok)})
		assert.Empty(t, errs, "layout %s", ok)
	}

	errs := validateGroup([]model.Question{q}, model.AnswerSnapshot{"dob": model.TextValue("not a date")})
	assert.NotEmpty(t, errs)
}

func TestValidateCustomMessagePreferred(t *testing.T) {
	q := question("age", model.TypeNumerical, model.QuestionSettings{
		Mandatory:         true,
		ValidationMessage: "We need your age.",
	})

	errs := validateGroup([]model.Question{q}, model.AnswerSnapshot{})
	require.Len(t, errs, 1)
	assert.Equal(t, "We need your age.", errs[0].Message)
}
