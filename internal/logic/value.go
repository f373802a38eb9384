package logic

import (
	"strconv"
	"strings"
)

type valueKind int

const (
	kindMissing valueKind = iota
	kindBool
	kindNum
	kindStr
)

// value is the evaluator's runtime union. Missing stands in for answers
// that have not been given yet.
type value struct {
	kind valueKind
	b    bool
	num  float64
	str  string
}

var missing = value{kind: kindMissing}

func boolVal(b bool) value { return value{kind: kindBool, b: b} }
func numVal(f float64) value { return value{kind: kindNum, num: f} }
func strVal(s string) value { return value{kind: kindStr, str: s} }

func (v value) isMissing() bool { return v.kind == kindMissing }

// truthy follows the original platform's coercion: missing is false, zero
// is false, and the strings "", "false" and "0" are false.
func (v value) truthy() bool {
	switch v.kind {
	case kindBool:
		return v.b
	case kindNum:
		return v.num != 0
	case kindStr:
		return v.str != "" && v.str != "false" && v.str != "0"
	default:
		return false
	}
}

// asNum attempts numeric coercion.
func (v value) asNum() (float64, bool) {
	switch v.kind {
	case kindNum:
		return v.num, true
	case kindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case kindStr:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// asStr renders the value as text.
func (v value) asStr() string {
	switch v.kind {
	case kindStr:
		return v.str
	case kindNum:
		return formatNum(v.num)
	case kindBool:
		if v.b {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}

// formatNum prints integers without a decimal point so piped values read
// naturally ("3", not "3.000000").
func formatNum(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
