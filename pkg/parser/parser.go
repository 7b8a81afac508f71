package parser

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"text/template"

	"github.com/mitchellh/mapstructure"

	"github.com/fluohq/compliancegen/internal/markdown"
	"github.com/fluohq/compliancegen/pkg/common"
	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/util"
)

// Parser parses framework definitions.
type Parser interface {
	common.DescriptionMarkdown

	// The name of the parser.
	Name() string

	// A short description of the parser.
	Description() string

	// Extensions returns the file extensions the parser is picked for, with the leading dot.
	Extensions() []string

	// DefaultOptions Returns the default options of the parser, or nil if it has none.
	DefaultOptions() interface{}

	// Parse parses every framework defined in data.
	Parse(ctx context.Context, options interface{}, data []byte) ([]*control.Framework, error)
}

// All returns every parser, in the order they are tried for
// inputs with an unknown extension.
func All() []Parser {
	return []Parser{&YAML{}, &JSON{}, &TOML{}}
}

// Find returns the parser with the given name.
func Find(parsers []Parser, name string) (Parser, bool) {
	for _, p := range parsers {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// ForPath returns the parser handling the extension of p.
func ForPath(parsers []Parser, p string) (Parser, bool) {
	ext := strings.ToLower(filepath.Ext(p))

	for _, parser := range parsers {
		for _, e := range parser.Extensions() {
			if e == ext {
				return parser, true
			}
		}
	}

	return nil, false
}

func decodeOptions(p Parser, options interface{}) (interface{}, error) {
	opts := p.DefaultOptions()
	if options == nil || opts == nil {
		return opts, nil
	}

	if reflect.TypeOf(options) == reflect.TypeOf(opts) {
		return options, nil
	}

	if err := mapstructure.Decode(options, opts); err != nil {
		return nil, fmt.Errorf("invalid options for %v: %w", p.Name(), err)
	}

	return opts, nil
}

// ParseData parses data with the parser for name, or with the first
// parser that accepts it if none handles the extension of name.
// options are the raw options of each parser by name.
func ParseData(ctx context.Context, parsers []Parser, options map[string]interface{}, name string, data []byte) ([]*control.Framework, error) {
	if p, ok := ForPath(parsers, name); ok {
		fws, err := p.Parse(ctx, options[p.Name()], data)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}
		return fws, nil
	}

	var failures []string

	for _, p := range parsers {
		fws, err := p.Parse(ctx, options[p.Name()], data)
		if err == nil {
			return fws, nil
		}
		failures = append(failures, fmt.Sprintf("%v: %v", p.Name(), err))
	}

	return nil, fmt.Errorf("%v: no parser accepts the input:\n\t%v", name, strings.Join(failures, "\n\t"))
}

// ParseResources reads and parses every path, keeping the order of the
// paths and of the frameworks within each file.
func ParseResources(ctx context.Context, parsers []Parser, options map[string]interface{}, paths ...string) ([]*control.Framework, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no paths supplied")
	}

	var out []*control.Framework

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}

		fws, err := ParseData(ctx, parsers, options, p, b)
		if err != nil {
			return nil, err
		}

		out = append(out, fws...)
	}

	return out, nil
}

var descriptionTemplate = template.Must(template.New("desc").Parse(`
# Description

{{ .Intro }}

Files ending in {{ .Extensions }} are parsed with this parser.

# Format

## Framework

{{ .FrameworkTable }}

## Control

{{ .ControlTable }}

# Options

## List of all options

{{ .OptionsTable }}

## Example usage in compliancegen config

{{ .OptionsExample }}
`[1:]))

func describe(p Parser, intro string) string {
	buf := &bytes.Buffer{}

	yamlComments := util.DisableYAMLMarshalComments
	util.DisableYAMLMarshalComments = true
	defer func() {
		util.DisableYAMLMarshalComments = yamlComments
	}()

	opts := p.DefaultOptions()

	err := descriptionTemplate.Execute(buf,
		map[string]interface{}{
			"Intro":          intro,
			"Extensions":     "`" + strings.Join(p.Extensions(), "`, `") + "`",
			"FrameworkTable": markdown.FieldsTable(control.Framework{}),
			"ControlTable":   markdown.FieldsTable(control.Control{}),
			"OptionsTable":   markdown.OptionsTable(reflect.ValueOf(opts).Elem().Interface()),
			"OptionsExample": "```yaml\n" + string(util.MustMarshalYAML(
				map[string]interface{}{
					"parsers": map[string]interface{}{
						p.Name(): opts,
					},
				},
			)) + "```\n",
		},
	)
	if err != nil {
		panic(err)
	}

	return buf.String()
}
