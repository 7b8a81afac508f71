package parser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluohq/compliancegen/pkg/control"
)

const gdprYAML = `
id: gdpr
name: General Data Protection Regulation
controls:
  - id: Art.5(1)(f)
    name: Integrity and confidentiality
    riskLevel: HIGH
    evidenceTypes: [AUDIT_TRAIL, LOG]
    requirements:
      - Protect against unauthorised processing
    metadata:
      article: 5
      chapter: II
  - id: Art.15
    name: Right of access
    riskLevel: MEDIUM
`

const soc2YAML = `
---
id: soc2
name: SOC 2
controls:
  - id: CC6.1
    name: Logical access security
    riskLevel: HIGH
---
`

const gdprJSON = `{
  "id": "gdpr",
  "name": "General Data Protection Regulation",
  "controls": [
    {
      "id": "Art.5(1)(f)",
      "name": "Integrity and confidentiality",
      "riskLevel": "HIGH",
      "evidenceTypes": ["AUDIT_TRAIL", "LOG"],
      "requirements": ["Protect against unauthorised processing"],
      "metadata": {"chapter": "II", "article": 5}
    },
    {"id": "Art.15", "name": "Right of access", "riskLevel": "MEDIUM"}
  ]
}`

const gdprTOML = `
id = "gdpr"
name = "General Data Protection Regulation"

[[controls]]
id = "Art.5(1)(f)"
name = "Integrity and confidentiality"
riskLevel = "HIGH"
evidenceTypes = ["AUDIT_TRAIL", "LOG"]
requirements = ["Protect against unauthorised processing"]

[controls.metadata]
article = 5
chapter = "II"

[[controls]]
id = "Art.15"
name = "Right of access"
riskLevel = "MEDIUM"
`

func assertGDPR(t *testing.T, fws []*control.Framework) {
	t.Helper()

	require.Len(t, fws, 1)
	fw := fws[0]
	require.NoError(t, fw.Validate())

	assert.Equal(t, "gdpr", fw.ID)
	require.Len(t, fw.Controls, 2)

	c := fw.Controls[0]
	assert.Equal(t, "Art.5(1)(f)", c.ID)
	assert.Equal(t, control.RiskHigh, c.RiskLevel)
	assert.Equal(t, []control.EvidenceType{control.EvidenceAuditTrail, control.EvidenceLog}, c.EvidenceTypes)
	assert.Equal(t, []string{"Protect against unauthorised processing"}, c.Requirements)

	metadata, err := c.MetadataJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"article":5,"chapter":"II"}`, metadata)

	assert.Equal(t, "Art.15", fw.Controls[1].ID)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		parser  Parser
		options interface{}
		data    string
	}{
		{"yaml", &YAML{}, nil, gdprYAML},
		{"json", &JSON{}, nil, gdprJSON},
		{"json array", &JSON{}, nil, "[" + gdprJSON + "]"},
		{"toml", &TOML{}, map[string]interface{}{"strict": false}, gdprTOML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fws, err := tt.parser.Parse(context.Background(), tt.options, []byte(tt.data))
			require.NoError(t, err)
			assertGDPR(t, fws)
		})
	}
}

func TestParseYAMLDocuments(t *testing.T) {
	fws, err := (&YAML{}).Parse(context.Background(), nil, []byte(gdprYAML+soc2YAML))
	require.NoError(t, err)
	require.Len(t, fws, 2)
	assert.Equal(t, "gdpr", fws[0].ID)
	assert.Equal(t, "soc2", fws[1].ID)
}

func TestParseStrict(t *testing.T) {
	tests := []struct {
		name   string
		parser Parser
		data   string
	}{
		{"yaml", &YAML{}, "id: fw\nname: fw\nowner: me\n"},
		{"json", &JSON{}, `{"id": "fw", "name": "fw", "owner": "me"}`},
		{"toml", &TOML{}, "id = \"fw\"\nname = \"fw\"\nowner = \"me\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.parser.Parse(context.Background(), nil, []byte(tt.data))
			assert.Error(t, err)

			fws, err := tt.parser.Parse(context.Background(), map[string]interface{}{"strict": false}, []byte(tt.data))
			require.NoError(t, err)
			require.Len(t, fws, 1)
			assert.Equal(t, "fw", fws[0].ID)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, p := range All() {
		_, err := p.Parse(context.Background(), nil, []byte("\n"))
		assert.Error(t, err, p.Name())
	}

	_, err := (&JSON{}).Parse(context.Background(), nil, []byte("[]"))
	assert.Error(t, err)

	_, err = (&JSON{}).Parse(context.Background(), nil, []byte("[null]"))
	assert.Error(t, err)
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path   string
		parser string
	}{
		{"frameworks/gdpr.yaml", "yaml"},
		{"gdpr.YML", "yaml"},
		{"gdpr.json", "json"},
		{"gdpr.toml", "toml"},
		{"gdpr.txt", ""},
	}

	for _, tt := range tests {
		p, ok := ForPath(All(), tt.path)
		if tt.parser == "" {
			assert.False(t, ok, tt.path)
			continue
		}
		require.True(t, ok, tt.path)
		assert.Equal(t, tt.parser, p.Name())
	}
}

func TestParseResources(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"a.yaml": gdprYAML,
		"b.json": `{"id": "soc2", "name": "SOC 2", "controls": []}`,
		"c.txt":  "id: hipaa\nname: HIPAA\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	fws, err := ParseResources(context.Background(), All(), nil,
		filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.json"), filepath.Join(dir, "c.txt"))
	require.NoError(t, err)

	ids := make([]string, 0, len(fws))
	for _, fw := range fws {
		ids = append(ids, fw.ID)
	}
	assert.Equal(t, []string{"gdpr", "soc2", "hipaa"}, ids)

	_, err = ParseResources(context.Background(), All(), nil, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseResources(context.Background(), All(), nil)
	assert.Error(t, err)
}

func TestDescriptionMarkdown(t *testing.T) {
	for _, p := range All() {
		desc := p.DescriptionMarkdown()
		assert.Contains(t, desc, "# Options", p.Name())
		assert.Contains(t, desc, "parsers:", p.Name())
		assert.Contains(t, desc, "strict", p.Name())
		assert.Contains(t, desc, "# Format", p.Name())
		assert.Contains(t, desc, "controls|Controls of the framework, in order.|[]*control.Control|", p.Name())
	}
}
