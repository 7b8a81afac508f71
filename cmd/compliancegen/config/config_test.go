package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/fluohq/compliancegen/pkg/generator"
	"github.com/fluohq/compliancegen/pkg/util"
)

func TestLoadDefaults(t *testing.T) {
	opts, err := Load([]byte("generators:\n  Java:\n    targets: [models]\n"))
	require.NoError(t, err)

	assert.Equal(t, "{{ .Generator }}", opts.OutPattern)
	assert.Equal(t, 4, opts.Concurrency)
	require.Len(t, opts.Transformers, 1)
	assert.Equal(t, "default", opts.Transformers[0].Name)

	require.Contains(t, opts.Generators, "java")
	assert.Equal(t, []string{"models"}, opts.Generators["java"].Targets)
	assert.Len(t, opts.Generators, 1)
}

func TestLoadKeepsValues(t *testing.T) {
	opts, err := Load([]byte(`
outPattern: "gen/{{ .Generator | upper }}"
concurrency: 1
skipCheck: true
parsers:
  yaml:
    strict: false
transformers:
  - name: default
    options:
      sortControls: true
`))
	require.NoError(t, err)

	assert.Equal(t, "gen/{{ .Generator | upper }}", opts.OutPattern)
	assert.Equal(t, 1, opts.Concurrency)
	assert.True(t, opts.SkipCheck)
	assert.Equal(t, map[string]interface{}{"strict": false}, opts.Parsers["yaml"])
	assert.Equal(t, map[string]interface{}{"sortControls": true}, opts.Transformers[0].Options)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"syntax", "generators: ["},
		{"unknown generator", "generators:\n  cobol: {}\n"},
		{"unknown target", "generators:\n  go:\n    targets: [server]\n"},
		{"unknown parser", "parsers:\n  xml: {}\n"},
		{"unknown transformer", "transformers:\n  - name: magic\n"},
		{"negative concurrency", "concurrency: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.config))
			assert.Error(t, err)
		})
	}
}

func TestParseTargets(t *testing.T) {
	targets, err := ParseTargets("java:evidence+models, GO ,python:annotations")
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"java":   {"evidence", "models"},
		"go":     nil,
		"python": {"annotations"},
	}, targets)

	for _, invalid := range []string{"", "cobol:models", "java:a:b", "java,java"} {
		_, err := ParseTargets(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestSelectGenerators(t *testing.T) {
	opts := DefaultOptions()
	opts.Generators["java"] = &Generator{Targets: []string{"models"}, Options: map[string]interface{}{"packageName": "com.acme"}}
	opts.Generators["go"] = &Generator{}

	SelectGenerators(opts, map[string][]string{"java": {"evidence"}, "typescript": nil})

	require.Len(t, opts.Generators, 2)
	assert.Equal(t, []string{"evidence"}, opts.Generators["java"].Targets)
	assert.Equal(t, map[string]interface{}{"packageName": "com.acme"}, opts.Generators["java"].Options)
	assert.Nil(t, opts.Generators["typescript"].Targets)
}

func TestAllOptionsRoundTrip(t *testing.T) {
	util.DisableYAMLMarshalComments = false

	b, err := yaml.Marshal(AllOptions())
	require.NoError(t, err)

	s := string(b)
	assert.True(t, strings.HasPrefix(s, "# Directory of the output of each generator"), s)
	for _, g := range Generators {
		assert.Contains(t, s, "    "+g.Name()+":\n")
	}

	opts, err := Load(b)
	require.NoError(t, err)
	assert.Len(t, opts.Generators, len(Generators))
	assert.Equal(t, generator.AllTargets, opts.Generators["python"].Targets)
	assert.Len(t, opts.Parsers, len(Parsers))
}
