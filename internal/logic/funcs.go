package logic

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

type builtinFunc func(args []value) (value, error)

// builtins is the declared function set available to authored expressions.
// Anything outside this map is an evaluation error (which fails open at the
// Evaluate boundary).
var builtins = map[string]builtinFunc{
	"is_empty": func(args []value) (value, error) {
		if len(args) == 0 {
			return boolVal(true), nil
		}
		v := args[0]
		return boolVal(v.isMissing() || v.asStr() == ""), nil
	},
	"is_numeric": func(args []value) (value, error) {
		if len(args) == 0 {
			return boolVal(false), nil
		}
		_, ok := args[0].asNum()
		return boolVal(ok && !args[0].isMissing()), nil
	},
	"intval": func(args []value) (value, error) {
		if len(args) == 0 {
			return numVal(0), nil
		}
		n, ok := args[0].asNum()
		if !ok {
			return numVal(0), nil
		}
		return numVal(math.Trunc(n)), nil
	},
	"floatval": func(args []value) (value, error) {
		if len(args) == 0 {
			return numVal(0), nil
		}
		n, ok := args[0].asNum()
		if !ok {
			return numVal(0), nil
		}
		return numVal(n), nil
	},
	"abs":   numFn1(math.Abs),
	"ceil":  numFn1(math.Ceil),
	"floor": numFn1(math.Floor),
	"round": func(args []value) (value, error) {
		if len(args) == 0 {
			return missing, fmt.Errorf("round: missing argument")
		}
		n := forceNum(args[0])
		precision := 0.0
		if len(args) > 1 {
			precision = forceNum(args[1])
		}
		mult := math.Pow(10, precision)
		return numVal(math.Round(n*mult) / mult), nil
	},
	"min": func(args []value) (value, error) {
		if len(args) == 0 {
			return missing, fmt.Errorf("min: no arguments")
		}
		best := forceNum(args[0])
		for _, a := range args[1:] {
			best = math.Min(best, forceNum(a))
		}
		return numVal(best), nil
	},
	"max": func(args []value) (value, error) {
		if len(args) == 0 {
			return missing, fmt.Errorf("max: no arguments")
		}
		best := forceNum(args[0])
		for _, a := range args[1:] {
			best = math.Max(best, forceNum(a))
		}
		return numVal(best), nil
	},
	"sum": func(args []value) (value, error) {
		total := 0.0
		for _, a := range args {
			if n, ok := a.asNum(); ok {
				total += n
			}
		}
		return numVal(total), nil
	},
	"count": func(args []value) (value, error) {
		n := 0
		for _, a := range args {
			if !a.isMissing() && a.asStr() != "" {
				n++
			}
		}
		return numVal(float64(n)), nil
	},
	"strlen": func(args []value) (value, error) {
		if len(args) == 0 {
			return numVal(0), nil
		}
		return numVal(float64(len([]rune(args[0].asStr())))), nil
	},
	"substr": func(args []value) (value, error) {
		if len(args) < 2 {
			return missing, fmt.Errorf("substr: need string and start")
		}
		runes := []rune(args[0].asStr())
		start := int(forceNum(args[1]))
		if start < 0 || start > len(runes) {
			return strVal(""), nil
		}
		end := len(runes)
		if len(args) > 2 {
			if n := start + int(forceNum(args[2])); n < end {
				end = n
			}
		}
		if end < start {
			end = start
		}
		return strVal(string(runes[start:end])), nil
	},
	"trim":       strFn1(strings.TrimSpace),
	"strtoupper": strFn1(strings.ToUpper),
	"strtolower": strFn1(strings.ToLower),
	"if":         ifFn,
	"iif":        ifFn,
	"regexmatch": func(args []value) (value, error) {
		if len(args) < 2 {
			return boolVal(false), nil
		}
		re, err := regexp.Compile(args[0].asStr())
		if err != nil {
			return boolVal(false), nil
		}
		return boolVal(re.MatchString(args[1].asStr())), nil
	},
}

func ifFn(args []value) (value, error) {
	if len(args) < 2 {
		return missing, fmt.Errorf("if: need condition and result")
	}
	if args[0].truthy() {
		return args[1], nil
	}
	if len(args) > 2 {
		return args[2], nil
	}
	return missing, nil
}

func numFn1(fn func(float64) float64) builtinFunc {
	return func(args []value) (value, error) {
		if len(args) == 0 {
			return missing, fmt.Errorf("missing argument")
		}
		return numVal(fn(forceNum(args[0]))), nil
	}
}

func strFn1(fn func(string) string) builtinFunc {
	return func(args []value) (value, error) {
		if len(args) == 0 {
			return strVal(""), nil
		}
		return strVal(fn(args[0].asStr())), nil
	}
}
