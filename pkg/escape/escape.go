// Package escape embeds free text into the literal and comment kinds of
// the target languages.
//
// Literal kinds are total over valid UTF-8: every sequence that could
// close the literal early, and every control, format or bidirectional
// character, is written as an escape. Carriage returns are kept as \r.
// Comment kinds have no escapes, so the characters they cannot carry are
// rejected with an *errs.EscapeError instead. Controls and noncharacters
// are rejected by every comment kind. JavaDoc writes anything else as a
// character reference; the other kinds also reject the byte order mark,
// line and paragraph separators and bidirectional controls other than
// the direction marks.
// Invalid UTF-8 is always rejected and nothing is ever truncated.
package escape

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/fluohq/compliancegen/pkg/errs"
)

// Kind is a target literal or comment form.
type Kind int

// Supported kinds
const (
	// JavaDoc is a /** */ block with HTML markup, paragraphs separated by <p>.
	JavaDoc Kind = iota
	// JSDoc is a /** */ block, paragraphs separated by a bare " *" line.
	JSDoc
	// GoComment is a block of // lines, paragraphs separated by a bare "//".
	GoComment
	// PythonDocstring is a """ string with real newlines.
	PythonDocstring
	// TemplateLiteral is a TypeScript backtick string with real newlines.
	TemplateLiteral
	JavaString
	GoString
	PythonString
	TypeScriptString
	// PythonComment is a block of # lines, paragraphs separated by a bare "#".
	PythonComment
)

var kindNames = map[Kind]string{
	JavaDoc:          "javadoc",
	JSDoc:            "jsdoc",
	GoComment:        "go comment",
	PythonDocstring:  "python docstring",
	TemplateLiteral:  "template literal",
	JavaString:       "java string",
	GoString:         "go string",
	PythonString:     "python string",
	TypeScriptString: "typescript string",
	PythonComment:    "python comment",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsComment reports whether k is a comment kind.
func (k Kind) IsComment() bool {
	return k == JavaDoc || k == JSDoc || k == GoComment || k == PythonComment
}

// Width is the column comment lines are wrapped at.
const Width = 80

// Escape converts text into a complete fragment of kind k, delimiters
// included. Comment kinds return an unindented block, or "" for text
// without any visible content.
func Escape(k Kind, text string) (string, error) {
	if err := checkUTF8(k, text); err != nil {
		return "", err
	}

	switch k {
	case JavaDoc, JSDoc, GoComment, PythonComment:
		lines, err := CommentLines(k, text)
		if err != nil {
			return "", err
		}
		return Block(k, lines, ""), nil
	case PythonDocstring:
		return pythonDocstring(text), nil
	case TemplateLiteral:
		return templateLiteral(text), nil
	case JavaString:
		return javaString(text)
	case GoString:
		return strconv.Quote(text), nil
	case PythonString:
		return pythonString(text), nil
	case TypeScriptString:
		return typeScriptString(text), nil
	default:
		return "", fmt.Errorf("unknown escape kind %v", k)
	}
}

// MustEscape is Escape for text known to be safe, such as fixed
// strings of the generator itself.
func MustEscape(k Kind, text string) string {
	s, err := Escape(k, text)
	if err != nil {
		panic(err)
	}
	return s
}

// CommentLines returns the escaped body lines of a comment of kind k,
// without comment markers. Paragraph separators are included, as an
// empty line or as "<p>" for JavaDoc.
func CommentLines(k Kind, text string) ([]string, error) {
	if !k.IsComment() {
		return nil, fmt.Errorf("%v is not a comment kind", k)
	}

	if err := checkUTF8(k, text); err != nil {
		return nil, err
	}

	for i, r := range text {
		if rejected(k, r) {
			return nil, &errs.EscapeError{Kind: k.String(), Offset: i, Reason: describe(r)}
		}
	}

	var lines []string
	for i, p := range paragraphs(text) {
		if i > 0 {
			if k == JavaDoc {
				lines = append(lines, "<p>")
			} else {
				lines = append(lines, "")
			}
		}

		for _, l := range p {
			lines = append(lines, escapeCommentLine(k, l))
		}
	}

	return lines, nil
}

// Block assembles comment lines of kind k, each line prefixed by indent.
func Block(k Kind, lines []string, indent string) string {
	if len(lines) == 0 {
		return ""
	}

	var b strings.Builder

	switch k {
	case GoComment, PythonComment:
		marker := "//"
		if k == PythonComment {
			marker = "#"
		}

		for i, l := range lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(indent)
			if l == "" {
				b.WriteString(marker)
			} else {
				b.WriteString(marker + " " + l)
			}
		}
	default:
		b.WriteString(indent + "/**\n")
		for _, l := range lines {
			b.WriteString(indent)
			if l == "" {
				b.WriteString(" *\n")
			} else {
				b.WriteString(" * " + l + "\n")
			}
		}
		b.WriteString(indent + " */")
	}

	return b.String()
}

func escapeCommentLine(k Kind, line string) string {
	var b strings.Builder
	b.Grow(len(line))

	var prev rune
	for _, r := range line {
		switch k {
		case JavaDoc:
			switch {
			case r == '&':
				b.WriteString("&amp;")
			case r == '<':
				b.WriteString("&lt;")
			case r == '>':
				b.WriteString("&gt;")
			case r == '@':
				b.WriteString("&#64;")
			case r == '\\':
				// javac translates \u escapes before it looks for */
				b.WriteString("&#92;")
			case r == '/' && prev == '*':
				b.WriteString("&#47;")
			case r >= utf8.RuneSelf:
				fmt.Fprintf(&b, "&#x%X;", r)
			default:
				b.WriteRune(r)
			}
		case JSDoc:
			switch {
			case r == '@':
				b.WriteString(`\@`)
			case r == '/' && prev == '*':
				b.WriteString(`\/`)
			default:
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
		prev = r
	}

	return b.String()
}

func pythonDocstring(text string) string {
	rs := []rune(text)

	var b strings.Builder
	b.Grow(len(text) + 6)
	b.WriteString(`"""`)

	for i, r := range rs {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '"' && (i == len(rs)-1 || rs[i+1] == '"'):
			b.WriteString(`\"`)
		case unsafe(r):
			pythonEscape(&b, r)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteString(`"""`)
	return b.String()
}

func pythonString(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte('"')

	for _, r := range text {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if unsafe(r) {
				pythonEscape(&b, r)
			} else {
				b.WriteRune(r)
			}
		}
	}

	b.WriteByte('"')
	return b.String()
}

func pythonEscape(b *strings.Builder, r rune) {
	switch {
	case r <= 0xFF:
		fmt.Fprintf(b, `\x%02x`, r)
	case r <= 0xFFFF:
		fmt.Fprintf(b, `\u%04x`, r)
	default:
		fmt.Fprintf(b, `\U%08x`, r)
	}
}

func templateLiteral(text string) string {
	rs := []rune(text)

	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte('`')

	for i, r := range rs {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '`':
			b.WriteString("\\`")
		case r == '$' && i+1 < len(rs) && rs[i+1] == '{':
			b.WriteString(`\$`)
		case unsafe(r):
			jsEscape(&b, r)
		default:
			b.WriteRune(r)
		}
	}

	b.WriteByte('`')
	return b.String()
}

func typeScriptString(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte('"')

	for _, r := range text {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if unsafe(r) {
				jsEscape(&b, r)
			} else {
				b.WriteRune(r)
			}
		}
	}

	b.WriteByte('"')
	return b.String()
}

// jsEscape writes r as \uXXXX, using a surrogate pair outside the BMP.
func jsEscape(b *strings.Builder, r rune) {
	if r > 0xFFFF {
		r1, r2 := utf16.EncodeRune(r)
		fmt.Fprintf(b, `\u%04X\u%04X`, r1, r2)
		return
	}
	fmt.Fprintf(b, `\u%04X`, r)
}

// javaConstantLimit is the longest string constant a class file can hold,
// in modified UTF-8 bytes.
const javaConstantLimit = 65535

func javaString(text string) (string, error) {
	if n := modifiedUTF8Len(text); n > javaConstantLimit {
		return "", &errs.EscapeError{
			Kind:   JavaString.String(),
			Offset: 0,
			Reason: fmt.Sprintf("text of %d bytes exceeds the %d byte limit of a string constant", n, javaConstantLimit),
		}
	}

	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte('"')

	for _, r := range text {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r < 0x20 || r == 0x7F:
				// never \u: javac would translate \u000a into a line break
				fmt.Fprintf(&b, `\%03o`, r)
			case r >= utf8.RuneSelf:
				for _, u := range utf16.Encode([]rune{r}) {
					fmt.Fprintf(&b, `\u%04x`, u)
				}
			default:
				b.WriteRune(r)
			}
		}
	}

	b.WriteByte('"')
	return b.String(), nil
}

func modifiedUTF8Len(text string) int {
	n := 0
	for _, r := range text {
		switch {
		case r == 0:
			n += 2
		case r < 0x80:
			n++
		case r < 0x800:
			n += 2
		case r <= 0xFFFF:
			n += 3
		default:
			n += 6
		}
	}
	return n
}
