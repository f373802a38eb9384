// Package logic evaluates the authored relevance/piping DSL against a
// respondent's answer snapshot. Expressions reference prior answers through
// {CODE} placeholders and combine comparisons with AND/OR/NOT.
//
// The evaluator is a real tokenizer + recursive-descent parser over a
// declared operator and function set; author input is never executed as
// code. Malformed expressions fail open: a group or question whose logic
// cannot be evaluated stays visible.
package logic

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"surveyd/internal/model"
)

// Engine evaluates expressions and pipes answer values into display text.
// It holds no answer state; every call takes the current snapshot, so
// results always reflect the latest answers.
type Engine struct {
	log *zap.Logger
}

// NewEngine returns an Engine logging evaluation failures to log.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Evaluate parses and evaluates a relevance expression. The empty
// expression and the literal "1" mean always visible; "0" means never.
// Any parse or evaluation failure returns true (fail-open to visible) and
// is logged, never propagated.
func (e *Engine) Evaluate(expr string, answers model.AnswerSnapshot) bool {
	trimmed := normalize(expr)

	if trimmed == "" || trimmed == "1" {
		return true
	}
	if trimmed == "0" {
		return false
	}

	result, err := evalExpr(trimmed, answers)
	if err != nil {
		e.log.Warn("relevance expression failed open",
			zap.String("expression", expr),
			zap.Error(err))
		return true
	}
	return result.truthy()
}

var pipePattern = regexp.MustCompile(`\{([^}]+)\}`)

// exprHint matches contents that should evaluate as an expression rather
// than a bare variable lookup.
var exprHint = regexp.MustCompile(`[()+\-*/%]|==|!=|<=|>=|<|>`)

// Pipe substitutes {PLACEHOLDER} occurrences in display text with the
// stringified current answer. Contents containing operators or calls are
// evaluated as expressions. Placeholders that cannot be resolved are left
// as literal text rather than blanked, so authoring mistakes stay visible.
func (e *Engine) Pipe(text string, answers model.AnswerSnapshot) string {
	if text == "" {
		return ""
	}

	return pipePattern.ReplaceAllStringFunc(text, func(match string) string {
		content := strings.TrimSpace(match[1 : len(match)-1])

		if exprHint.MatchString(content) {
			v, err := evalExpr(content, answers)
			if err != nil || v.isMissing() {
				if err != nil {
					e.log.Warn("piping expression failed",
						zap.String("expression", content),
						zap.Error(err))
				}
				return match
			}
			return v.asStr()
		}

		ev := &evaluator{answers: answers}
		v := ev.resolve(content)
		if v.isMissing() {
			return match
		}
		return v.asStr()
	})
}

// bracedVar matches a {CODE} placeholder holding a bare variable name.
var bracedVar = regexp.MustCompile(`\{\s*([A-Za-z_][A-Za-z0-9_.]*)\s*\}`)

// normalize unwraps placeholder braces so "{Q1} == 'yes'" and
// "{Q1 == 'yes'}" both parse: simple {CODE} references lose their braces
// first, then a remaining whole-expression wrap is stripped.
func normalize(expr string) string {
	s := strings.TrimSpace(bracedVar.ReplaceAllString(expr, "$1"))
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// evalExpr runs the full pipeline: tokenize, parse, require the whole
// input to be consumed.
func evalExpr(expr string, answers model.AnswerSnapshot) (value, error) {
	toks, err := tokenize(normalize(expr))
	if err != nil {
		return missing, err
	}
	if len(toks) == 0 {
		return missing, fmt.Errorf("empty expression")
	}

	ev := &evaluator{toks: toks, answers: answers}
	v, err := ev.parseOr()
	if err != nil {
		return missing, err
	}
	if ev.pos != len(toks) {
		return missing, fmt.Errorf("trailing tokens after position %d", ev.pos)
	}
	return v, nil
}
