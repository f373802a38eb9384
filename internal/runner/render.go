package runner

import (
	"sort"

	"surveyd/internal/model"
	"surveyd/internal/random"
)

// RenderedQuestion is a question prepared for the rendering layer: piped
// text, and subquestions/options in their final (possibly shuffled) order.
type RenderedQuestion struct {
	Code         string                 `json:"code"`
	Text         string                 `json:"text"`
	HelpText     string                 `json:"helpText,omitempty"`
	Type         model.QuestionType     `json:"type"`
	Settings     model.QuestionSettings `json:"settings"`
	Subquestions []model.Subquestion    `json:"subquestions,omitempty"`
	Options      []model.AnswerOption   `json:"options,omitempty"`
}

// RenderedGroup is the currently visible page.
type RenderedGroup struct {
	ID        string             `json:"id"`
	Title     string             `json:"title,omitempty"`
	Desc      string             `json:"description,omitempty"`
	Questions []RenderedQuestion `json:"questions"`
}

// Output is everything the rendering layer needs after a transition: the
// phase, position, current page, the answer snapshot and any errors.
type Output struct {
	Phase            Phase                `json:"phase"`
	GroupIndex       int                  `json:"groupIndex"`
	TotalGroups      int                  `json:"totalGroups"`
	Group            *RenderedGroup       `json:"group,omitempty"`
	Answers          model.AnswerSnapshot `json:"answers"`
	ValidationErrors map[string]string    `json:"validationErrors,omitempty"`
	SaveWarning      string               `json:"saveWarning,omitempty"`
	CompletionError  string               `json:"completionError,omitempty"`
	RedirectURL      string               `json:"redirectUrl,omitempty"`
}

// Output projects the current state for the rendering layer. Visibility is
// recomputed from the latest snapshot on every call; nothing is cached
// across answer mutations.
func (s *Session) Output() Output {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible := s.visibleGroups()
	idx := s.groupIndex
	if idx >= len(visible) && len(visible) > 0 {
		idx = len(visible) - 1
	}

	out := Output{
		Phase:            s.phase,
		GroupIndex:       idx,
		TotalGroups:      len(visible),
		Answers:          s.answers.Clone(),
		ValidationErrors: s.validationErrs,
		SaveWarning:      s.saveWarning,
		CompletionError:  s.completionError,
		RedirectURL:      s.redirectURL,
	}

	if s.phase == PhaseQuestions && len(visible) > 0 {
		out.Group = s.renderGroup(visible[idx])
	}
	return out
}

// visibleGroups filters and orders the survey's groups by relevance
// against the current snapshot. Callers hold s.mu.
func (s *Session) visibleGroups() []model.QuestionGroup {
	var visible []model.QuestionGroup
	for _, g := range s.survey.SortedGroups() {
		if s.engine.Evaluate(g.RelevanceLogic, s.answers) {
			visible = append(visible, g)
		}
	}
	return visible
}

// visibleQuestions filters a group's questions by relevance and drops
// hidden ones. Callers hold s.mu.
func (s *Session) visibleQuestions(g model.QuestionGroup) []model.Question {
	var visible []model.Question
	for _, q := range g.SortedQuestions() {
		if q.Settings.Hidden {
			continue
		}
		if s.engine.Evaluate(q.RelevanceLogic, s.answers) {
			visible = append(visible, q)
		}
	}
	return visible
}

func (s *Session) renderGroup(g model.QuestionGroup) *RenderedGroup {
	out := &RenderedGroup{
		ID:    g.ID,
		Title: s.engine.Pipe(g.Title, s.answers),
		Desc:  s.engine.Pipe(g.Desc, s.answers),
	}
	for _, q := range s.visibleQuestions(g) {
		out.Questions = append(out.Questions, s.renderQuestion(q))
	}
	return out
}

// renderQuestion pipes the question text and applies the deterministic
// shuffle where the settings ask for it. Subquestion and option order
// shuffle independently: each gets its own role-discriminated seed.
func (s *Session) renderQuestion(q model.Question) RenderedQuestion {
	rq := RenderedQuestion{
		Code:     q.Code,
		Text:     s.engine.Pipe(q.Text, s.answers),
		HelpText: s.engine.Pipe(q.HelpText, s.answers),
		Type:     q.Type,
		Settings: q.Settings,
	}

	subqs := make([]model.Subquestion, len(q.Subquestions))
	copy(subqs, q.Subquestions)
	sortSubquestions(subqs)
	if q.Settings.RandomizeSubquestions {
		subqs = random.Shuffle(subqs, random.SubquestionSeed(s.seed, q.Code))
	}
	rq.Subquestions = subqs

	opts := make([]model.AnswerOption, len(q.Options))
	copy(opts, q.Options)
	sortOptions(opts)
	if q.Settings.RandomizeAnswers {
		opts = random.Shuffle(opts, random.OptionSeed(s.seed, q.Code))
	}
	rq.Options = opts

	return rq
}

func sortSubquestions(subqs []model.Subquestion) {
	sort.SliceStable(subqs, func(i, j int) bool { return subqs[i].OrderIndex < subqs[j].OrderIndex })
}

func sortOptions(opts []model.AnswerOption) {
	sort.SliceStable(opts, func(i, j int) bool { return opts[i].OrderIndex < opts[j].OrderIndex })
}
