package escape

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluohq/compliancegen/pkg/errs"
)

var literalKinds = []Kind{PythonDocstring, TemplateLiteral, JavaString, GoString, PythonString, TypeScriptString}

var commentKinds = []Kind{JavaDoc, JSDoc, GoComment, PythonComment}

func TestEscapeLiterals(t *testing.T) {
	tests := []struct {
		kind Kind
		text string
		want string
	}{
		{JavaString, `say "hi"`, `"say \"hi\""`},
		{JavaString, `C:\u0022`, `"C:\\u0022"`},
		{JavaString, "a\nb", `"a\nb"`},
		{JavaString, "bell\a", `"bell\007"`},
		{JavaString, "Ä", `"\u00c4"`},
		{JavaString, "😀", `"\ud83d\ude00"`},
		{GoString, "a\"b\n\u202e", `"a\"b\n\u202e"`},
		{PythonString, `"quoted" \ back`, `"\"quoted\" \\ back"`},
		{PythonString, "rtl\u202eover", `"rtl\u202eover"`},
		{PythonString, "nul\x00", `"nul\x00"`},
		{TypeScriptString, "a\u2028b", `"a\u2028b"`},
		{TypeScriptString, "tab\tend", `"tab\tend"`},
		{PythonDocstring, `ends with quote"`, `"""ends with quote\""""`},
		{PythonDocstring, `has """ inside`, `"""has \"\"" inside"""`},
		{PythonDocstring, "line one\r\nline two", "\"\"\"line one\\r\nline two\"\"\""},
		{TemplateLiteral, "cr\ronly\r\n", "`cr\\ronly\\r\n`"},
		{PythonDocstring, `path\to`, `"""path\\to"""`},
		{TemplateLiteral, "cost ${x} `y`", "`cost \\${x} \\`y\\``"},
		{TemplateLiteral, `$ alone \`, "`$ alone \\\\`"},
		{TemplateLiteral, "para one\n\npara two", "`para one\n\npara two`"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.text, func(t *testing.T) {
			got, err := Escape(tt.kind, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeComments(t *testing.T) {
	text := "First paragraph ends here */ and continues.\n\n  Second paragraph with @since <b> & \\u002a/."

	javadoc, err := Escape(JavaDoc, text)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"/**",
		" * First paragraph ends here *&#47; and continues.",
		" * <p>",
		" *   Second paragraph with &#64;since &lt;b&gt; &amp; &#92;u002a/.",
		" */",
	}, "\n"), javadoc)

	jsdoc, err := Escape(JSDoc, text)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"/**",
		" * First paragraph ends here *\\/ and continues.",
		" *",
		" *   Second paragraph with \\@since <b> & \\u002a/.",
		" */",
	}, "\n"), jsdoc)

	goComment, err := Escape(GoComment, text)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"// First paragraph ends here */ and continues.",
		"//",
		"//   Second paragraph with @since <b> & \\u002a/.",
	}, "\n"), goComment)

	pyComment, err := Escape(PythonComment, text)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"# First paragraph ends here */ and continues.",
		"#",
		"#   Second paragraph with @since <b> & \\u002a/.",
	}, "\n"), pyComment)
}

func TestCommentWrapping(t *testing.T) {
	text := strings.Repeat("word ", 40)

	lines, err := CommentLines(GoComment, text)
	require.NoError(t, err)
	require.Greater(t, len(lines), 1)

	for _, l := range lines {
		assert.LessOrEqual(t, utf8.RuneCountInString(l), Width)
	}
	assert.Equal(t, strings.TrimSpace(text), strings.Join(lines, " "))

	long := strings.Repeat("x", 2*Width)
	lines, err = CommentLines(GoComment, long)
	require.NoError(t, err)
	assert.Equal(t, []string{long}, lines)
}

func TestCommentEmpty(t *testing.T) {
	for _, k := range commentKinds {
		got, err := Escape(k, "  \n\n\t\n")
		require.NoError(t, err)
		assert.Empty(t, got)
	}
}

func TestCommentRejects(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		offset  int
		reason  string
		javadoc bool
	}{
		{"rtl override", "safe\u202Eevil", 4, "bidirectional formatting character U+202E", false},
		{"isolate", "x\u2066", 1, "bidirectional formatting character U+2066", false},
		{"nul", "a\x00", 1, "control character U+0000", true},
		{"escape", "\x1b[31m", 0, "control character U+001B", true},
		{"next line", "a\u0085", 1, "control character U+0085", true},
		{"line separator", "a\u2028b", 1, "line separator U+2028", false},
		{"bom", "\uFEFFtext", 0, "byte order mark U+FEFF", false},
		{"noncharacter", "a\uFFFE", 1, "noncharacter U+FFFE", true},
		{"invalid utf-8", "ok\xffno", 2, "invalid UTF-8 byte 0xff", true},
	}

	for _, k := range commentKinds {
		for _, tt := range tests {
			if k == JavaDoc && !tt.javadoc {
				continue
			}

			t.Run(k.String()+"/"+tt.name, func(t *testing.T) {
				_, err := Escape(k, tt.text)
				require.Error(t, err)

				var escErr *errs.EscapeError
				require.True(t, errors.As(err, &escErr))
				assert.True(t, errors.Is(err, errs.ErrEscape))
				assert.Equal(t, k.String(), escErr.Kind)
				assert.Equal(t, tt.offset, escErr.Offset)
				assert.Equal(t, tt.reason, escErr.Reason)
			})
		}
	}
}

func TestCommentDirectionText(t *testing.T) {
	rtl := "\u05E9\u05DC\u05D5\u05DD\u200F (v2)\u200E ok"

	for _, k := range commentKinds {
		lines, err := CommentLines(k, rtl)
		require.NoError(t, err, "%v", k)
		require.Len(t, lines, 1)

		if k == JavaDoc {
			assert.Equal(t, "&#x5E9;&#x5DC;&#x5D5;&#x5DD;&#x200F; (v2)&#x200E; ok", lines[0])
		} else {
			assert.Equal(t, rtl, lines[0], "%v", k)
		}
	}

	lines, err := CommentLines(JavaDoc, "a\u202Eb\u2028c\uFEFF")
	require.NoError(t, err)
	assert.Equal(t, []string{"a&#x202E;b&#x2028;c&#xFEFF;"}, lines)
}

func TestLiteralsRejectInvalidUTF8(t *testing.T) {
	for _, k := range literalKinds {
		_, err := Escape(k, "bad\xc3")
		assert.True(t, errors.Is(err, errs.ErrEscape), "%v", k)
	}
}

func TestCommentAcceptsCRLF(t *testing.T) {
	lines, err := CommentLines(JSDoc, "one\r\ntwo\r\rthree")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "", "three"}, lines)
}

func TestJavaStringLimit(t *testing.T) {
	_, err := Escape(JavaString, strings.Repeat("a", javaConstantLimit))
	require.NoError(t, err)

	_, err = Escape(JavaString, strings.Repeat("é", javaConstantLimit/2+1))
	assert.True(t, errors.Is(err, errs.ErrEscape))
}

func TestCommentLinesRejectsLiteralKind(t *testing.T) {
	_, err := CommentLines(GoString, "x")
	assert.Error(t, err)
}

func TestBlockIndent(t *testing.T) {
	assert.Equal(t, "    /**\n     * a\n     *\n     * b\n     */", Block(JSDoc, []string{"a", "", "b"}, "    "))
	assert.Equal(t, "\t// a\n\t//", Block(GoComment, []string{"a", ""}, "\t"))
	assert.Equal(t, "    # a\n    #", Block(PythonComment, []string{"a", ""}, "    "))
	assert.Empty(t, Block(JavaDoc, nil, ""))
}

// unescapeJava decodes the escapes javaString emits.
func unescapeJava(t *testing.T, lit string) string {
	require.True(t, len(lit) >= 2 && lit[0] == '"' && lit[len(lit)-1] == '"', lit)
	body := lit[1 : len(lit)-1]

	var (
		units []uint16
		out   strings.Builder
	)
	flush := func() {
		out.WriteString(string(utf16.Decode(units)))
		units = nil
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		require.Less(t, c, byte(utf8.RuneSelf), "java literal must be ASCII")
		require.NotEqual(t, byte('"'), c, "unescaped quote in %s", lit)
		require.NotEqual(t, byte('\n'), c)

		if c != '\\' {
			flush()
			out.WriteByte(c)
			continue
		}

		i++
		switch body[i] {
		case 'u':
			u, err := strconv.ParseUint(body[i+1:i+5], 16, 16)
			require.NoError(t, err)
			units = append(units, uint16(u))
			i += 4
			continue
		case 'n':
			flush()
			out.WriteByte('\n')
		case 'r':
			flush()
			out.WriteByte('\r')
		case 't':
			flush()
			out.WriteByte('\t')
		case 'b':
			flush()
			out.WriteByte('\b')
		case 'f':
			flush()
			out.WriteByte('\f')
		case '"', '\\':
			flush()
			out.WriteByte(body[i])
		default:
			v, err := strconv.ParseUint(body[i:i+3], 8, 8)
			require.NoError(t, err)
			flush()
			out.WriteByte(byte(v))
			i += 2
		}
	}
	flush()

	return out.String()
}

// stripEscapes replaces every backslash pair of a literal body with an
// underscore, leaving only the characters the target tokenizer sees
// unescaped.
// unescapeLong decodes the body of a Python docstring or a template
// literal. Raw characters stand for themselves.
func unescapeLong(t *testing.T, body string) string {
	var (
		units []uint16
		out   strings.Builder
	)
	flush := func() {
		out.WriteString(string(utf16.Decode(units)))
		units = nil
	}
	hex := func(s string) uint64 {
		n, err := strconv.ParseUint(s, 16, 32)
		require.NoError(t, err, s)
		return n
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			flush()
			out.WriteByte(c)
			continue
		}

		i++
		switch e := body[i]; e {
		case 'u':
			units = append(units, uint16(hex(body[i+1:i+5])))
			i += 4
			continue
		case 'x':
			flush()
			out.WriteRune(rune(hex(body[i+1 : i+3])))
			i += 2
		case 'U':
			flush()
			out.WriteRune(rune(hex(body[i+1 : i+9])))
			i += 8
		case 'r':
			flush()
			out.WriteByte('\r')
		case 'n':
			flush()
			out.WriteByte('\n')
		case 't':
			flush()
			out.WriteByte('\t')
		case '\\', '"', '`', '$':
			flush()
			out.WriteByte(e)
		default:
			t.Fatalf("unexpected escape \\%c in %q", e, body)
		}
	}
	flush()

	return out.String()
}

func TestLongLiteralsKeepText(t *testing.T) {
	texts := []string{
		"windows\r\nline\rendings\r\n\r\n",
		"quote at end\"",
		"tpl `${x}` \\ and $ alone",
		"\x00\u202e\u2028\ufeff\U0001FFFF 😀",
	}

	for _, text := range texts {
		for _, k := range []Kind{PythonDocstring, TemplateLiteral} {
			got, err := Escape(k, text)
			require.NoError(t, err)

			n := 1
			if k == PythonDocstring {
				n = 3
			}
			assert.NotContains(t, got, "\r", "%v", k)
			assert.Equal(t, text, unescapeLong(t, got[n:len(got)-n]), "%v %q", k, text)
		}
	}
}

func stripEscapes(body string) string {
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' {
			i++
			b.WriteByte('_')
			continue
		}
		b.WriteByte(body[i])
	}
	return b.String()
}

func hasUnsafe(s string) bool {
	for _, r := range s {
		if unsafe(r) {
			return true
		}
	}
	return false
}

func hasRejected(k Kind, s string) bool {
	for _, r := range s {
		if rejected(k, r) {
			return true
		}
	}
	return false
}

func FuzzEscape(f *testing.F) {
	seeds := []string{
		"",
		"plain",
		`"""`,
		`""`,
		`x"`,
		"*/",
		"/* */ */",
		"`${}`",
		`\u002a/`,
		"\u202e\u2066",
		"a\r\nb\rc",
		"\x00\x7f\u0085",
		"para\n\npara",
		"\uFFFE\U0001FFFF",
		"😀 emoji",
		"\xff",
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, text string) {
		valid := utf8.ValidString(text)

		for _, k := range literalKinds {
			got, err := Escape(k, text)
			if !valid {
				require.Error(t, err)
				continue
			}
			if k == JavaString && modifiedUTF8Len(text) > javaConstantLimit {
				continue
			}
			require.NoError(t, err, "%v", k)
			assert.False(t, hasUnsafe(got), "%v left an unsafe character in %q", k, got)

			switch k {
			case GoString:
				back, err := strconv.Unquote(got)
				require.NoError(t, err)
				assert.Equal(t, text, back)
			case TypeScriptString:
				var back string
				require.NoError(t, json.Unmarshal([]byte(got), &back))
				assert.Equal(t, strings.ToValidUTF8(text, ""), back)
			case JavaString:
				assert.Equal(t, text, unescapeJava(t, got))
			case PythonString:
				require.True(t, strings.HasPrefix(got, `"`) && strings.HasSuffix(got, `"`))
				body := stripEscapes(got[1 : len(got)-1])
				assert.NotContains(t, body, `"`)
				assert.NotContains(t, body, "\n")
			case PythonDocstring:
				require.True(t, strings.HasPrefix(got, `"""`) && strings.HasSuffix(got, `"""`))
				body := stripEscapes(got[3 : len(got)-3])
				assert.NotContains(t, body, `""`)
				assert.False(t, strings.HasSuffix(body, `"`))
				assert.Equal(t, text, unescapeLong(t, got[3:len(got)-3]))
			case TemplateLiteral:
				require.True(t, strings.HasPrefix(got, "`") && strings.HasSuffix(got, "`"))
				body := stripEscapes(got[1 : len(got)-1])
				assert.NotContains(t, body, "`")
				assert.NotContains(t, body, "${")
				assert.Equal(t, text, unescapeLong(t, got[1:len(got)-1]))
			}
		}

		for _, k := range commentKinds {
			lines, err := CommentLines(k, text)
			if err != nil {
				var escErr *errs.EscapeError
				require.True(t, errors.As(err, &escErr))
				assert.True(t, !valid || hasRejected(k, text), fmt.Sprintf("%v rejected safe text %q", k, text))
				continue
			}

			require.True(t, valid)
			for _, l := range lines {
				assert.NotContains(t, l, "\n")
				assert.NotContains(t, l, "\r")
				assert.False(t, hasRejected(k, l))
				if k == JavaDoc {
					assert.False(t, hasUnsafe(l))
				} else {
					assert.False(t, hasUnsafe(strings.Map(func(r rune) rune {
						if isMark(r) {
							return -1
						}
						return r
					}, l)))
				}
				if k == JavaDoc || k == JSDoc {
					assert.NotContains(t, l, "*/")
				}
				if k == JavaDoc {
					assert.NotContains(t, l, `\`)
				}
			}
		}
	})
}
