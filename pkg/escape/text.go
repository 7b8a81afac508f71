package escape

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mitchellh/go-wordwrap"

	"github.com/fluohq/compliancegen/pkg/errs"
)

func checkUTF8(k Kind, text string) error {
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			return &errs.EscapeError{
				Kind:   k.String(),
				Offset: i,
				Reason: fmt.Sprintf("invalid UTF-8 byte %#02x", text[i]),
			}
		}
		i += size
	}
	return nil
}

func isBidi(r rune) bool {
	switch {
	case r >= 0x202A && r <= 0x202E:
		return true
	case r >= 0x2066 && r <= 0x2069:
		return true
	}
	return isMark(r)
}

// isMark reports the implicit direction marks, the only bidirectional
// characters comments keep raw.
func isMark(r rune) bool {
	return r == 0x200E || r == 0x200F || r == 0x061C
}

func isControl(r rune) bool {
	return (r < 0x20 && r != '\t' && r != '\n') || r == 0x7F || (r >= 0x80 && r <= 0x9F)
}

func isNoncharacter(r rune) bool {
	return (r >= 0xFDD0 && r <= 0xFDEF) || r&0xFFFE == 0xFFFE
}

// unsafe reports characters that literal kinds always escape.
func unsafe(r rune) bool {
	switch {
	case isControl(r):
		return true
	case isBidi(r), r == 0xFEFF, r == 0x2028, r == 0x2029:
		return true
	case isNoncharacter(r):
		return true
	}
	return false
}

// rejected reports characters a comment of kind k cannot carry.
// JavaDoc writes every other non-ASCII character as an HTML character
// reference; the other kinds only carry direction marks raw.
func rejected(k Kind, r rune) bool {
	if r == '\r' {
		return false
	}
	if k == JavaDoc {
		return isControl(r) || isNoncharacter(r)
	}
	return unsafe(r) && !isMark(r)
}

func describe(r rune) string {
	var what string
	switch {
	case r < 0x20 || r == 0x7F || (r >= 0x80 && r <= 0x9F):
		what = "control character"
	case isBidi(r):
		what = "bidirectional formatting character"
	case r == 0xFEFF:
		what = "byte order mark"
	case r == 0x2028:
		what = "line separator"
	case r == 0x2029:
		what = "paragraph separator"
	default:
		what = "noncharacter"
	}
	return fmt.Sprintf("%v %U", what, r)
}

func normalizeNewlines(text string) string {
	if !strings.ContainsRune(text, '\r') {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// paragraphs splits text into paragraphs of wrapped lines. Blank lines
// separate paragraphs; leading and trailing blank lines are dropped.
func paragraphs(text string) [][]string {
	var (
		out [][]string
		cur []string
	)

	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, wrap(line)...)
	}

	if len(cur) > 0 {
		out = append(out, cur)
	}

	return out
}

// wrap breaks a line at whitespace so it fits in Width columns where
// possible. Words longer than Width stay whole.
func wrap(line string) []string {
	if utf8.RuneCountInString(line) <= Width {
		return []string{line}
	}

	var out []string
	for _, l := range strings.Split(wordwrap.WrapString(line, Width), "\n") {
		l = strings.TrimRightFunc(l, unicode.IsSpace)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
