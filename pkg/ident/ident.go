// Package ident maps free-form control ids to legal identifiers of the
// target grammars.
//
// Sanitize is a pure, total function. Uniqueness within a framework is
// enforced by Table, which every renderer builds once per framework.
package ident

import (
	"strings"
)

// Grammar is a target language identifier grammar.
type Grammar int

// Supported grammars
const (
	Java Grammar = iota
	Go
	Python
	TypeScript
)

func (g Grammar) String() string {
	switch g {
	case Java:
		return "java"
	case Go:
		return "go"
	case Python:
		return "python"
	case TypeScript:
		return "typescript"
	default:
		return "unknown"
	}
}

// Prefix is prepended when an identifier cannot start with its first
// character. Go uses a letter so the identifier stays exported.
func (g Grammar) Prefix() string {
	if g == Go {
		return "C"
	}
	return "_"
}

// deleted runes are decorative and dropped. Every other rune outside
// [A-Za-z0-9_] is replaced by an underscore.
var deleted = map[rune]bool{
	'(': true, ')': true,
	'[': true, ']': true,
	'{': true, '}': true,
	'\'': true, '"': true, '`': true,
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// Sanitize converts id into a legal identifier of g:
//
//	Art.5(1)(f)    -> Art_51f
//	164.312(a)(1)  -> _164_312a1 (Go: C164_312a1)
//	A - 1          -> A_1
//
// Runs of underscores collapse into one, a leading character the grammar
// does not allow gets the grammar prefix, an empty result becomes the
// prefix alone, and reserved words get an underscore suffix.
func Sanitize(id string, g Grammar) string {
	var b strings.Builder
	b.Grow(len(id) + 1)

	lastUnderscore := false
	for _, r := range id {
		if deleted[r] {
			continue
		}

		if !isASCIILetter(r) && !isASCIIDigit(r) {
			r = '_'
		}

		if r == '_' {
			if lastUnderscore {
				continue
			}
			lastUnderscore = true
		} else {
			lastUnderscore = false
		}

		b.WriteRune(r)
	}

	s := b.String()

	if s == "" {
		s = g.Prefix()
	} else if needsPrefix(s, g) {
		s = g.Prefix() + s
	}

	if IsReserved(s, g) {
		s += "_"
	}

	return s
}

func needsPrefix(s string, g Grammar) bool {
	first := rune(s[0])

	if isASCIIDigit(first) {
		return true
	}

	if g == Go {
		return !(first >= 'A' && first <= 'Z')
	}

	return false
}

// Valid reports whether s is already a legal identifier of g, as
// Sanitize produces them: ASCII letters, digits and underscores, a
// legal first character, and not a reserved word.
func Valid(s string, g Grammar) bool {
	if s == "" || needsPrefix(s, g) {
		return false
	}

	for _, r := range s {
		if !isASCIILetter(r) && !isASCIIDigit(r) && r != '_' {
			return false
		}
	}

	return !IsReserved(s, g)
}
