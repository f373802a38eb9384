package logic

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"surveyd/internal/model"
)

// evaluator walks the token stream with one function per precedence level:
// OR < AND < NOT < comparison < add/sub < mul/div < unary < primary.
type evaluator struct {
	toks    []token
	pos     int
	answers model.AnswerSnapshot
}

func (e *evaluator) peek() (token, bool) {
	if e.pos >= len(e.toks) {
		return token{}, false
	}
	return e.toks[e.pos], true
}

func (e *evaluator) next() (token, bool) {
	t, ok := e.peek()
	if ok {
		e.pos++
	}
	return t, ok
}

func (e *evaluator) parseOr() (value, error) {
	left, err := e.parseAnd()
	if err != nil {
		return missing, err
	}
	result := left
	for {
		t, ok := e.peek()
		if !ok || t.kind != tokOr {
			break
		}
		e.pos++
		right, err := e.parseAnd()
		if err != nil {
			return missing, err
		}
		result = boolVal(result.truthy() || right.truthy())
	}
	return result, nil
}

func (e *evaluator) parseAnd() (value, error) {
	left, err := e.parseNot()
	if err != nil {
		return missing, err
	}
	result := left
	for {
		t, ok := e.peek()
		if !ok || t.kind != tokAnd {
			break
		}
		e.pos++
		right, err := e.parseNot()
		if err != nil {
			return missing, err
		}
		result = boolVal(result.truthy() && right.truthy())
	}
	return result, nil
}

func (e *evaluator) parseNot() (value, error) {
	if t, ok := e.peek(); ok && t.kind == tokNot {
		e.pos++
		v, err := e.parseNot()
		if err != nil {
			return missing, err
		}
		return boolVal(!v.truthy()), nil
	}
	return e.parseComparison()
}

func (e *evaluator) parseComparison() (value, error) {
	left, err := e.parseAddSub()
	if err != nil {
		return missing, err
	}
	t, ok := e.peek()
	if !ok || t.kind != tokOp || !isCompareOp(t.text) {
		return left, nil
	}
	e.pos++
	right, err := e.parseAddSub()
	if err != nil {
		return missing, err
	}
	return boolVal(compare(left, t.text, right)), nil
}

func isCompareOp(op string) bool {
	switch op {
	case "==", "!=", "<", ">", "<=", ">=":
		return true
	}
	return false
}

// compare coerces numerically when both sides parse as numbers; equality
// falls back to string comparison, ordering to false. Missing values only
// ever equal other missing values.
func compare(left value, op string, right value) bool {
	if left.isMissing() || right.isMissing() {
		switch op {
		case "==":
			return left.isMissing() && right.isMissing()
		case "!=":
			return left.isMissing() != right.isMissing()
		}
		return false
	}

	ln, lok := left.asNum()
	rn, rok := right.asNum()

	switch op {
	case "==":
		if lok && rok {
			return ln == rn
		}
		return left.asStr() == right.asStr()
	case "!=":
		if lok && rok {
			return ln != rn
		}
		return left.asStr() != right.asStr()
	}

	if !lok || !rok {
		return false
	}
	switch op {
	case "<":
		return ln < rn
	case ">":
		return ln > rn
	case "<=":
		return ln <= rn
	case ">=":
		return ln >= rn
	}
	return false
}

func (e *evaluator) parseAddSub() (value, error) {
	left, err := e.parseMulDiv()
	if err != nil {
		return missing, err
	}
	for {
		t, ok := e.peek()
		if !ok || t.kind != tokOp || (t.text != "+" && t.text != "-") {
			break
		}
		e.pos++
		right, err := e.parseMulDiv()
		if err != nil {
			return missing, err
		}
		if t.text == "+" {
			ln, lok := left.asNum()
			rn, rok := right.asNum()
			if lok && rok {
				left = numVal(ln + rn)
			} else {
				left = strVal(left.asStr() + right.asStr())
			}
		} else {
			left = numVal(forceNum(left) - forceNum(right))
		}
	}
	return left, nil
}

func (e *evaluator) parseMulDiv() (value, error) {
	left, err := e.parseUnary()
	if err != nil {
		return missing, err
	}
	for {
		t, ok := e.peek()
		if !ok || t.kind != tokOp || (t.text != "*" && t.text != "/" && t.text != "%") {
			break
		}
		e.pos++
		right, err := e.parseUnary()
		if err != nil {
			return missing, err
		}
		ln, rn := forceNum(left), forceNum(right)
		switch t.text {
		case "*":
			left = numVal(ln * rn)
		case "/":
			if rn == 0 {
				left = numVal(math.NaN())
			} else {
				left = numVal(ln / rn)
			}
		case "%":
			if rn == 0 {
				left = numVal(math.NaN())
			} else {
				left = numVal(math.Mod(ln, rn))
			}
		}
	}
	return left, nil
}

func (e *evaluator) parseUnary() (value, error) {
	t, ok := e.peek()
	if ok && t.kind == tokOp && (t.text == "-" || t.text == "+") {
		e.pos++
		v, err := e.parseUnary()
		if err != nil {
			return missing, err
		}
		if t.text == "-" {
			return numVal(-forceNum(v)), nil
		}
		return numVal(forceNum(v)), nil
	}
	return e.parsePrimary()
}

func (e *evaluator) parsePrimary() (value, error) {
	t, ok := e.next()
	if !ok {
		return missing, fmt.Errorf("unexpected end of expression")
	}

	switch t.kind {
	case tokLParen:
		v, err := e.parseOr()
		if err != nil {
			return missing, err
		}
		if nt, ok := e.next(); !ok || nt.kind != tokRParen {
			return missing, fmt.Errorf("missing closing parenthesis")
		}
		return v, nil

	case tokNumber:
		n, nok := strVal(t.text).asNum()
		if !nok {
			return missing, fmt.Errorf("bad number literal %q", t.text)
		}
		return numVal(n), nil

	case tokString:
		return strVal(t.text), nil

	case tokIdent:
		// Function call when followed by an opening parenthesis.
		if nt, ok := e.peek(); ok && nt.kind == tokLParen {
			e.pos++
			return e.parseCall(strings.ToLower(t.text))
		}
		switch t.text {
		case "true":
			return boolVal(true), nil
		case "false":
			return boolVal(false), nil
		case "null", "undefined":
			return missing, nil
		}
		return e.resolve(t.text), nil
	}

	return missing, fmt.Errorf("unexpected token %q", t.text)
}

func (e *evaluator) parseCall(name string) (value, error) {
	var args []value
	for {
		t, ok := e.peek()
		if !ok {
			return missing, fmt.Errorf("unterminated call to %s", name)
		}
		if t.kind == tokRParen {
			e.pos++
			break
		}
		if t.kind == tokComma {
			e.pos++
			continue
		}
		arg, err := e.parseComparison()
		if err != nil {
			return missing, err
		}
		args = append(args, arg)
	}

	fn, ok := builtins[name]
	if !ok {
		return missing, fmt.Errorf("unknown function %q", name)
	}
	return fn(args)
}

var placeholderSuffix = regexp.MustCompile(`(?i)\.(NAOK|SelectedValue|ChosenValue)$`)

// resolve looks an answer placeholder up in the snapshot. Lookups try the
// name as written, then with underscores and dots swapped, matching the key
// forms the authoring side produces. A missing variable with a .NAOK suffix
// resolves to false; otherwise it stays missing.
func (e *evaluator) resolve(name string) value {
	naok := strings.HasSuffix(strings.ToUpper(name), ".NAOK")
	clean := placeholderSuffix.ReplaceAllString(name, "")

	candidates := []string{
		clean,
		strings.ReplaceAll(clean, "_", "."),
		strings.ReplaceAll(clean, ".", "_"),
	}
	for _, key := range candidates {
		if v, ok := e.answers.Get(key); ok {
			return strVal(v.String())
		}
	}

	if naok {
		return boolVal(false)
	}
	return missing
}

// forceNum coerces for arithmetic; non-numeric operands become NaN the way
// the original engine behaved, which poisons any downstream comparison to
// false.
func forceNum(v value) float64 {
	if n, ok := v.asNum(); ok {
		return n
	}
	return math.NaN()
}
