package model

// QuestionType is the closed set of question variants the platform renders.
// The execution core only cares about a type's validation family (numeric,
// text, multi-select, array) and treats everything else as opaque display.
type QuestionType string

const (
	TypeText                     QuestionType = "text"
	TypeLongText                 QuestionType = "long_text"
	TypeHugeFreeText             QuestionType = "huge_free_text"
	TypeMultipleShortText        QuestionType = "multiple_short_text"
	TypeMultipleChoiceSingle     QuestionType = "multiple_choice_single"
	TypeMultipleChoiceMultiple   QuestionType = "multiple_choice_multiple"
	TypeMultipleChoiceComments   QuestionType = "multiple_choice_with_comments"
	TypeListWithComment          QuestionType = "list_with_comment"
	TypeDropdown                 QuestionType = "dropdown"
	TypeYesNo                    QuestionType = "yes_no"
	TypeGender                   QuestionType = "gender"
	TypeLanguageSwitch           QuestionType = "language_switch"
	TypeDate                     QuestionType = "date"
	TypeNumerical                QuestionType = "numerical"
	TypeMultipleNumerical        QuestionType = "multiple_numerical"
	TypeSlider                   QuestionType = "slider"
	TypeFivePointChoice          QuestionType = "five_point_choice"
	TypeArray                    QuestionType = "array"
	TypeArrayDualScale           QuestionType = "array_dual_scale"
	TypeArray5Point              QuestionType = "array_5_point"
	TypeArray10Point             QuestionType = "array_10_point"
	TypeArrayYesNoUncertain      QuestionType = "array_yes_no_uncertain"
	TypeArrayIncreaseSameDecr    QuestionType = "array_increase_same_decrease"
	TypeArrayNumbers             QuestionType = "array_numbers"
	TypeArrayTexts               QuestionType = "array_texts"
	TypeArrayColumn              QuestionType = "array_column"
	TypeRanking                  QuestionType = "ranking"
	TypeEquation                 QuestionType = "equation"
	TypeTextDisplay              QuestionType = "text_display"
	TypeFileUpload               QuestionType = "file_upload"
	TypeButtonSelect             QuestionType = "button_select"
	TypeButtonMultiSelect        QuestionType = "button_multi_select"
	TypeImageSelect              QuestionType = "image_select"
	TypeImageMultiSelect         QuestionType = "image_multi_select"
	TypeNPS                      QuestionType = "nps"
	TypeCSAT                     QuestionType = "csat"
	TypeCES                      QuestionType = "ces"
)

// IsDisplayOnly reports whether the type never collects an answer and is
// skipped by validation.
func (t QuestionType) IsDisplayOnly() bool {
	return t == TypeTextDisplay || t == TypeEquation
}

// IsArray reports whether the type answers row-by-row under
// questionCode_subquestionCode keys; the top-level key stays empty and
// mandatory checks apply per row instead.
func (t QuestionType) IsArray() bool {
	switch t {
	case TypeArray, TypeArrayDualScale, TypeArray5Point, TypeArray10Point,
		TypeArrayYesNoUncertain, TypeArrayIncreaseSameDecr, TypeArrayNumbers,
		TypeArrayTexts, TypeArrayColumn, TypeMultipleShortText, TypeMultipleNumerical:
		return true
	}
	return false
}

// IsNumeric reports whether answers must parse as numbers and respect
// min/max value settings.
func (t QuestionType) IsNumeric() bool {
	switch t {
	case TypeNumerical, TypeMultipleNumerical, TypeArrayNumbers, TypeSlider,
		TypeNPS, TypeCSAT, TypeCES, TypeFivePointChoice:
		return true
	}
	return false
}

// IsMultiSelect reports whether the answer is a set of option codes subject
// to min/max selection counts.
func (t QuestionType) IsMultiSelect() bool {
	switch t {
	case TypeMultipleChoiceMultiple, TypeMultipleChoiceComments,
		TypeButtonMultiSelect, TypeImageMultiSelect:
		return true
	}
	return false
}
