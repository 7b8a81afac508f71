package generator

import (
	"bytes"
	"reflect"
	"text/template"

	"github.com/fluohq/compliancegen/internal/markdown"
	"github.com/fluohq/compliancegen/pkg/util"
)

var descriptionTemplate = template.Must(template.New("desc").Parse(`
# Description

{{ .Intro }}

# Options

## List of all options

{{ .OptionsTable }}

## Example usage in compliancegen config

{{ .OptionsExample }}

# Targets

{{ .TargetsTable }}
`[1:]))

// DescriptionMarkdown renders the markdown documentation of g with an
// introduction paragraph.
func DescriptionMarkdown(g Generator, intro string) string {
	buf := &bytes.Buffer{}

	yamlComments := util.DisableYAMLMarshalComments
	util.DisableYAMLMarshalComments = true
	defer func() {
		util.DisableYAMLMarshalComments = yamlComments
	}()

	opts := g.DefaultOptions()

	err := descriptionTemplate.Execute(buf,
		map[string]interface{}{
			"Intro":        intro,
			"OptionsTable": markdown.OptionsTable(reflect.ValueOf(opts).Elem().Interface()),
			"OptionsExample": "```yaml\n" + string(util.MustMarshalYAML(
				map[string]interface{}{
					"generators": map[string]interface{}{
						g.Name(): opts,
					},
				},
			)) + "```\n",
			"TargetsTable": markdown.TargetsTable(g.Targets()),
		},
	)
	if err != nil {
		panic(err)
	}

	return buf.String()
}
