package transformer

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"
	"unicode"

	"github.com/Masterminds/sprig"
	"github.com/iancoleman/strcase"
	"github.com/mitchellh/mapstructure"
	"github.com/mohae/deepcopy"

	"github.com/fluohq/compliancegen/internal/markdown"
	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/util"
)

// MetadataTemplateValues contains values for metadata templates.
type MetadataTemplateValues struct {
	Framework string `description:"Id of the framework"`
	ID        string `description:"Id of the control"`
	Name      string `description:"Name of the control"`
	Category  string `description:"Category of the control"`
	RiskLevel string `description:"Risk level of the control"`
}

// DefaultOptions alters the behaviour of the default transformer.
type DefaultOptions struct {
	TrimSpace    bool              `yaml:"trimSpace" description:"Trim surrounding whitespace of single line text and trailing whitespace of every line"`
	Dedent       bool              `yaml:"dedent" description:"Remove the indentation common to all lines of descriptions and implementation guidance"`
	SortControls bool              `yaml:"sortControls" description:"Order the controls of every framework by id instead of definition order"`
	Metadata     map[string]string `yaml:"metadata,omitempty" description:"Add metadata to controls that do not have the key yet. Supports Go templating with sprig functions"`
}

// MarshalYAML implements YAML Marshaler.
func (d *DefaultOptions) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(d)
}

// Default is the default Transformer.
type Default struct{}

// Name implements Transformer
func (d *Default) Name() string {
	return "default"
}

// Description implements Transformer
func (d *Default) Description() string {
	return "The default framework transformer normalizing text"
}

// DescriptionMarkdown implements DescriptionMarkdown
func (d *Default) DescriptionMarkdown() string {
	desc := `
# Description

This transformer normalizes the text of framework definitions written by hand,
so indentation from YAML block scalars or trailing spaces do not end up in generated code.

# Options

## List of all options

{{ .OptionsTable }}

## Example usage in compliancegen config

{{ .OptionsExample }}

### Metadata template values

{{ .TagsTable }}

`[1:]

	buf := &bytes.Buffer{}

	templ, err := template.New("desc").Parse(desc)
	if err != nil {
		panic(err)
	}

	yamlComments := util.DisableYAMLMarshalComments

	util.DisableYAMLMarshalComments = true

	opts := d.DefaultOptions().(*DefaultOptions)
	opts.Metadata = map[string]string{
		"owner": "{{ .Framework | upper }}-team",
	}

	err = templ.Execute(buf,
		map[string]interface{}{
			"OptionsTable": markdown.OptionsTable(*d.DefaultOptions().(*DefaultOptions)),
			"OptionsExample": "```yaml\n" + string(util.MustMarshalYAML(
				map[string]interface{}{
					"transformers": []map[string]interface{}{
						{
							"name":    d.Name(),
							"options": opts,
						},
					},
				},
			)) + "```\n",
			"TagsTable": markdown.TagsTable(MetadataTemplateValues{}),
		},
	)
	if err != nil {
		panic(err)
	}

	util.DisableYAMLMarshalComments = yamlComments

	return buf.String()
}

// DefaultOptions implements Transformer
func (d *Default) DefaultOptions() interface{} {
	return &DefaultOptions{
		TrimSpace: true,
		Dedent:    true,
	}
}

// Transform implements Transformer
func (d *Default) Transform(ctx context.Context, rawOpts interface{}, frameworks []*control.Framework) ([]*control.Framework, error) {
	opts := d.DefaultOptions().(*DefaultOptions)

	if o, ok := rawOpts.(*DefaultOptions); ok {
		opts = o
	} else if err := mapstructure.Decode(rawOpts, opts); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	metadata, err := d.metadataTemplates(opts)
	if err != nil {
		return nil, err
	}

	out := make([]*control.Framework, 0, len(frameworks))

	for _, fw := range frameworks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fw := deepcopy.Copy(fw).(*control.Framework)

		if opts.TrimSpace {
			d.TrimSpace(fw)
		}

		if opts.Dedent {
			d.Dedent(fw)
		}

		if opts.SortControls {
			d.SortControls(fw)
		}

		if err := d.AddMetadata(fw, metadata); err != nil {
			return nil, err
		}

		out = append(out, fw)
	}

	return out, nil
}

type metadataTemplate struct {
	key  string
	tmpl *template.Template
}

func (d *Default) metadataTemplates(opts *DefaultOptions) ([]metadataTemplate, error) {
	keys := make([]string, 0, len(opts.Metadata))
	for k := range opts.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]metadataTemplate, 0, len(keys))
	for _, k := range keys {
		t, err := template.New(k).
			Funcs(sprig.TxtFuncMap()).
			Funcs(template.FuncMap{"camel": strcase.ToLowerCamel, "snake": strcase.ToSnake}).
			Parse(opts.Metadata[k])
		if err != nil {
			return nil, fmt.Errorf("invalid metadata template %q: %w", k, err)
		}
		out = append(out, metadataTemplate{key: k, tmpl: t})
	}

	return out, nil
}

// TrimSpace trims single line text and the trailing whitespace of every
// line of block text. Control ids are kept exactly as defined.
func (d *Default) TrimSpace(fw *control.Framework) {
	fw.Name = strings.TrimSpace(fw.Name)
	fw.Version = strings.TrimSpace(fw.Version)
	fw.Description = trimLines(fw.Description)

	for _, c := range fw.Controls {
		c.Name = strings.TrimSpace(c.Name)
		c.Category = strings.TrimSpace(c.Category)
		c.Description = trimLines(c.Description)
		c.ImplementationGuidance = trimLines(c.ImplementationGuidance)

		for _, list := range [][]string{c.Requirements, c.TestingProcedures, c.CanonicalObjectives} {
			for i := range list {
				list[i] = strings.TrimSpace(list[i])
			}
		}
	}
}

func trimLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRightFunc(l, unicode.IsSpace)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// Dedent removes the indentation shared by every non-blank line of block text.
func (d *Default) Dedent(fw *control.Framework) {
	fw.Description = dedent(fw.Description)

	for _, c := range fw.Controls {
		c.Description = dedent(c.Description)
		c.ImplementationGuidance = dedent(c.ImplementationGuidance)
	}
}

func dedent(s string) string {
	lines := strings.Split(s, "\n")

	prefix := ""
	first := true

	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}

		indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix = indent
			first = false
			continue
		}

		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	if prefix == "" {
		return s
	}

	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, prefix)
	}

	return strings.Join(lines, "\n")
}

// SortControls orders the controls by id.
func (d *Default) SortControls(fw *control.Framework) {
	sort.SliceStable(fw.Controls, func(i, j int) bool {
		return fw.Controls[i].ID < fw.Controls[j].ID
	})
}

// AddMetadata renders the metadata templates into every control lacking the key.
func (d *Default) AddMetadata(fw *control.Framework, templates []metadataTemplate) error {
	if len(templates) == 0 {
		return nil
	}

	for _, c := range fw.Controls {
		values := MetadataTemplateValues{
			Framework: fw.ID,
			ID:        c.ID,
			Name:      c.Name,
			Category:  c.Category,
			RiskLevel: string(c.RiskLevel),
		}

		for _, t := range templates {
			if _, ok := c.Metadata[t.key]; ok {
				continue
			}

			buf := &bytes.Buffer{}
			if err := t.tmpl.Execute(buf, values); err != nil {
				return fmt.Errorf("metadata %q of control %q: %w", t.key, c.ID, err)
			}

			if c.Metadata == nil {
				c.Metadata = make(map[string]interface{})
			}
			c.Metadata[t.key] = buf.String()
		}
	}

	return nil
}
