package logic

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokOp     // == != <= >= < > + - * / % !
	tokLParen
	tokRParen
	tokComma
	tokAnd
	tokOr
	tokNot
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits an expression into tokens. Keywords AND/OR/NOT and the
// symbolic forms &&, ||, ! are normalized to the same token kinds.
func tokenize(expr string) ([]token, error) {
	var toks []token
	runes := []rune(expr)
	i := 0

	for i < len(runes) {
		c := runes[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '\'' || c == '"':
			quote := c
			j := i + 1
			var sb strings.Builder
			for j < len(runes) {
				if runes[j] == '\\' && j+1 < len(runes) && runes[j+1] == quote {
					sb.WriteRune(quote)
					j += 2
					continue
				}
				if runes[j] == quote {
					break
				}
				sb.WriteRune(runes[j])
				j++
			}
			if j >= len(runes) {
				return nil, fmt.Errorf("unterminated string at offset %d", i)
			}
			toks = append(toks, token{tokString, sb.String()})
			i = j + 1

		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == ',':
			toks = append(toks, token{tokComma, ","})
			i++

		default:
			// Two-character operators first.
			if i+1 < len(runes) {
				two := string(runes[i : i+2])
				switch two {
				case "==", "!=", "<=", ">=":
					toks = append(toks, token{tokOp, two})
					i += 2
					continue
				case "&&":
					toks = append(toks, token{tokAnd, "AND"})
					i += 2
					continue
				case "||":
					toks = append(toks, token{tokOr, "OR"})
					i += 2
					continue
				}
			}
			if strings.ContainsRune("<>+-*/%", c) {
				toks = append(toks, token{tokOp, string(c)})
				i++
				continue
			}
			if c == '!' {
				toks = append(toks, token{tokNot, "!"})
				i++
				continue
			}
			if unicode.IsDigit(c) || (c == '.' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])) {
				j := i
				for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
					j++
				}
				toks = append(toks, token{tokNumber, string(runes[i:j])})
				i = j
				continue
			}
			if unicode.IsLetter(c) || c == '_' {
				j := i
				for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_' || runes[j] == '.') {
					j++
				}
				word := string(runes[i:j])
				switch word {
				case "AND", "and":
					toks = append(toks, token{tokAnd, "AND"})
				case "OR", "or":
					toks = append(toks, token{tokOr, "OR"})
				case "NOT", "not":
					toks = append(toks, token{tokNot, "NOT"})
				default:
					toks = append(toks, token{tokIdent, word})
				}
				i = j
				continue
			}
			return nil, fmt.Errorf("unexpected character %q at offset %d", c, i)
		}
	}

	return toks, nil
}
