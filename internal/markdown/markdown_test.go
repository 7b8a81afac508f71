package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type options struct {
	Strict bool   `yaml:"strict" description:"Reject unknown fields"`
	Name   string `yaml:"name,omitempty" description:"A name"`
}

func TestOptionsTable(t *testing.T) {
	table := OptionsTable(options{Strict: true})

	assert.Contains(t, table, "| Option | Description | Type | Default Value |\n")
	assert.Contains(t, table, "name|A name.|string|")
	assert.Contains(t, table, "strict|Reject unknown fields.|bool|<pre lang=\"yaml\">true</pre>|\n")
}

func TestFieldsTable(t *testing.T) {
	assert.Equal(t, `
| Field | Description | Type |
|:-----:|-------------|:----:|
name|A name.|string|
strict|Reject unknown fields.|bool|
`[1:], FieldsTable(options{}))
}

func TestTagsTable(t *testing.T) {
	table := TagsTable(struct {
		ID        string `description:"Control id"`
		Framework string `description:"Framework id"`
	}{})

	assert.Equal(t, "| Value | Description |\n|:-----:|-------------|\nFramework|Framework id|\nID|Control id|\n", table)
}

func TestTargetsTable(t *testing.T) {
	table := TargetsTable(map[string]string{"models": "Definitions", "evidence": "Shared"})

	assert.Equal(t, "| Target | Description |\n|:------:|-------------|\nevidence|Shared|\nmodels|Definitions|\n", table)
}

func TestAnchor(t *testing.T) {
	tests := []struct {
		title  string
		anchor string
	}{
		{"Description", "description"},
		{"List of all options", "list-of-all-options"},
		{"Example usage in compliancegen config", "example-usage-in-compliancegen-config"},
		{"java (evidence, models)", "java-evidence-models"},
		{"snake_case", "snake_case"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.anchor, Anchor(tt.title))
		})
	}
}

func TestGenTOC(t *testing.T) {
	md := "# yaml\n## Options\ntext\n```yaml\n# not a heading\n```\n# json\n## Options\n"

	out := GenTOC("# Parsers\n", md)

	assert.Equal(t, "# Parsers\n"+
		"* [yaml](#yaml)\n"+
		"  * [Options](#options)\n"+
		"* [json](#json)\n"+
		"  * [Options](#options-1)\n"+
		"\n"+md, out)
}
