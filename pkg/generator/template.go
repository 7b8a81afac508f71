package generator

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig"

	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/escape"
)

// NewTemplate parses a file template. Besides the sprig functions it
// provides:
//
//	header              the generated file marker
//	doc INDENT LINES    a comment of kind from escaped comment lines
//	comment INDENT TEXT a comment of kind from fixed generator text
func NewTemplate(name string, kind escape.Kind, text string) *template.Template {
	return template.Must(template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{
			"header": func() string {
				return Header
			},
			"doc": func(indent string, lines []string) string {
				return escape.Block(kind, lines, indent)
			},
			"comment": func(indent, text string) (string, error) {
				lines, err := escape.CommentLines(kind, text)
				if err != nil {
					return "", err
				}
				return escape.Block(kind, lines, indent), nil
			},
		}).
		Parse(text))
}

// Execute renders t into an artifact at p. The content always ends in
// exactly one newline.
func Execute(t *template.Template, p string, data interface{}) (artifact.Artifact, error) {
	buf := &bytes.Buffer{}

	if err := t.Execute(buf, data); err != nil {
		return artifact.Artifact{}, fmt.Errorf("failed to render %v: %w", p, err)
	}

	content := strings.TrimRight(buf.String(), "\n") + "\n"

	return artifact.Artifact{Path: p, Content: []byte(content)}, nil
}
