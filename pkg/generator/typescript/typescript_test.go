package typescript

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/errs"
	"github.com/fluohq/compliancegen/pkg/escape"
	"github.com/fluohq/compliancegen/pkg/generator"
	"github.com/fluohq/compliancegen/pkg/generator/generatortest"
)

func generateAll(t *testing.T, options interface{}, frameworks ...*control.Framework) []artifact.Artifact {
	t.Helper()

	ts := &TypeScript{}
	units := make([]artifact.Unit, 0, len(frameworks))

	for _, fw := range frameworks {
		require.NoError(t, fw.Validate())

		var artifacts []artifact.Artifact
		for _, target := range generator.AllTargets {
			a, err := ts.Generate(context.Background(), options, fw, target)
			require.NoError(t, err, "%v %v", fw.ID, target)
			artifacts = append(artifacts, a...)
		}

		units = append(units, artifact.Unit{Framework: fw.ID, Generator: ts.Name(), Artifacts: artifacts})
	}

	out, err := artifact.Aggregate(units...)
	require.NoError(t, err)

	return out
}

func content(t *testing.T, artifacts []artifact.Artifact, p string) string {
	t.Helper()

	a, ok := artifact.Find(artifacts, p)
	require.True(t, ok, "missing %v", p)
	return string(a.Content)
}

func TestGenerateLayout(t *testing.T) {
	artifacts := generateAll(t, nil, generatortest.GDPR(), generatortest.SOC2())

	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		paths = append(paths, a.Path)
	}

	assert.Equal(t, []string{
		"annotations/gdpr.ts",
		"annotations/soc2.ts",
		"evidence/index.ts",
		"models/gdpr.ts",
		"models/soc2.ts",
	}, paths)

	for _, a := range artifacts {
		assert.True(t, strings.HasPrefix(string(a.Content), "// "+generator.Header+"\n"), a.Path)
		assert.False(t, strings.HasSuffix(string(a.Content), "\n\n"), a.Path)
	}
}

func TestEvidenceModule(t *testing.T) {
	artifacts := generateAll(t, nil, generatortest.GDPR())

	src := content(t, artifacts, "evidence/index.ts")

	assert.Contains(t, src, "export enum EvidenceType {\n  AUDIT_TRAIL = \"AUDIT_TRAIL\",\n  LOG = \"LOG\",\n")
	assert.Contains(t, src, "export enum RedactionStrategy {\n  EXCLUDE = \"EXCLUDE\",\n")
	assert.Contains(t, src, "/**\n * Framework id of the evidence.\n */\nexport const ATTR_FRAMEWORK = \"compliance.framework\";\n")
	assert.Contains(t, src, "export const ATTR_INPUT_PREFIX = \"input.\";")
	assert.Contains(t, src, "export const RESULT_FAILURE = \"failure\";")
	assert.Contains(t, src, "export interface ControlDefinition {")
}

func TestAnnotationsModule(t *testing.T) {
	artifacts := generateAll(t, nil, generatortest.GDPR())

	src := content(t, artifacts, "annotations/gdpr.ts")

	assert.Contains(t, src, "from \"../evidence/index\";\n")
	assert.Contains(t, src, "export const FRAMEWORK = \"gdpr\";\n")
	assert.Contains(t, src, "  /**\n   * Art.5(1)(f): Integrity and confidentiality\n   */\n  Art_51f: \"Art.5(1)(f)\",\n")
	assert.Contains(t, src, "export const GDPR_CONTROL_IDS: readonly GDPRControl[] = Object.freeze([\n  GDPRControls.Art_51f,\n  GDPRControls.Art_15,\n  GDPRControls.Art_32,\n]);\n")
	assert.Contains(t, src, "export function GDPREvidence(options: GDPREvidenceOptions) {")
}

func TestModelsModule(t *testing.T) {
	artifacts := generateAll(t, nil, generatortest.GDPR())

	src := content(t, artifacts, "models/gdpr.ts")

	assert.Contains(t, src, "export const Art_51f: ControlDefinition = Object.freeze({\n  framework: FRAMEWORK,\n  id: \"Art.5(1)(f)\",\n")
	assert.Contains(t, src, "  riskLevel: RiskLevel.HIGH,\n")
	assert.Contains(t, src, "  implementationGuidance: `Encrypt personal data at rest and in transit.\n\nRestrict access to personal data to the people who need it.`,\n")
	assert.Contains(t, src, "  evidenceTypes: Object.freeze([EvidenceType.AUDIT_TRAIL, EvidenceType.LOG]),\n")
	assert.Contains(t, src, "  testingProcedures: Object.freeze([]),\n")
	assert.Contains(t, src, "  metadata: \"{\\\"article\\\":5,\\\"chapter\\\":\\\"II\\\"}\",\n")
	assert.Contains(t, src, "export const ALL: readonly ControlDefinition[] = Object.freeze([\n  Art_51f,\n  Art_15,\n  Art_32,\n]);\n")
}

func TestImportExtension(t *testing.T) {
	artifacts := generateAll(t, map[string]interface{}{"importExtension": ".js"}, generatortest.SOC2())

	assert.Contains(t, content(t, artifacts, "annotations/soc2.ts"), "from \"../evidence/index.js\";\n")
	assert.Contains(t, content(t, artifacts, "models/soc2.ts"), "from \"../evidence/index.js\";\n")

	for _, ext := range []string{"js", ".j s", "./x", ".js\""} {
		_, err := (&TypeScript{}).Generate(context.Background(), map[string]interface{}{"importExtension": ext}, generatortest.SOC2(), generator.TargetModels)
		assert.Error(t, err, ext)
	}
}

func TestEmptyFramework(t *testing.T) {
	artifacts := generateAll(t, nil, generatortest.Empty())

	src := content(t, artifacts, "annotations/empty.ts")
	assert.Contains(t, src, "export const EMPTYControls = {\n} as const;\n")
	assert.Contains(t, src, "export const EMPTY_CONTROL_IDS: readonly EMPTYControl[] = Object.freeze([\n]);\n")

	defs := content(t, artifacts, "models/empty.ts")
	assert.Contains(t, defs, "export const ALL: readonly ControlDefinition[] = Object.freeze([\n]);\n")
}

func TestAdversarialText(t *testing.T) {
	artifacts := generateAll(t, nil, generatortest.Adversarial())

	for _, a := range artifacts {
		src := string(a.Content)
		assert.NotContains(t, src, "\r", a.Path)
		assert.NotContains(t, src, "\u202e", a.Path)
		assert.NotContains(t, src, "\u2028", a.Path)
		assert.NotContains(t, src, "\x00", a.Path)

		for _, line := range strings.Split(src, "\n") {
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "* ") {
				assert.NotContains(t, trimmed, "*/", "%v: %q", a.Path, line)
			}
		}
	}

	src := content(t, artifacts, "annotations/adversarial_fw.ts")
	assert.Contains(t, src, "  class_: \"class\",\n")
	assert.Contains(t, src, "  _164_312a1: \"164.312(a)(1)\",\n")
	assert.Contains(t, src, "\\@param")

	defs := content(t, artifacts, "models/adversarial_fw.ts")
	assert.Contains(t, defs, "\\${x}")
	assert.Contains(t, defs, "\\u202E")
	assert.Contains(t, defs, "\\`")
	assert.Contains(t, defs, "\\r\n\ttab`")
}

func TestLiteralsEvaluateToSourceText(t *testing.T) {
	if _, err := exec.LookPath("node"); err != nil {
		t.Skip("node not available")
	}

	c := generatortest.Adversarial().Controls[0]
	texts := []string{c.Name, c.Category, c.Description, c.ImplementationGuidance}

	lits := make([]string, 0, 2*len(texts))
	for _, text := range texts {
		lits = append(lits,
			escape.MustEscape(escape.TemplateLiteral, text),
			escape.MustEscape(escape.TypeScriptString, text),
		)
	}

	out, err := exec.Command("node", "-e", "process.stdout.write(JSON.stringify(["+strings.Join(lits, ",\n")+"]))").Output()
	require.NoError(t, err)

	var got []string
	require.NoError(t, json.Unmarshal(out, &got))
	require.Len(t, got, len(lits))

	for i, text := range texts {
		assert.Equal(t, text, got[2*i], "template literal %d", i)
		assert.Equal(t, text, got[2*i+1], "string %d", i)
	}
}

func TestReservedNames(t *testing.T) {
	tests := []struct {
		name string
		id   string
	}{
		{"index", "ALL"},
		{"global", "Object"},
		{"decorator", "FWEvidence"},
		{"guard", "isFWControl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw := &control.Framework{ID: "fw", Controls: []*control.Control{
				{ID: tt.id, Name: "clash", RiskLevel: control.RiskLow},
			}}

			_, err := (&TypeScript{}).Generate(context.Background(), nil, fw, generator.TargetModels)
			assert.True(t, errors.Is(err, errs.ErrIdentifierCollision), "%v", err)
		})
	}
}

func TestUnsafeCommentTextIsRejected(t *testing.T) {
	fw := generatortest.GDPR()
	fw.Controls[1].Description = "bidi \u202e override"

	_, err := (&TypeScript{}).Generate(context.Background(), nil, fw, generator.TargetModels)

	var escErr *errs.EscapeError
	require.True(t, errors.As(err, &escErr), "%v", err)
	assert.Equal(t, "Art.15", escErr.Control)
	assert.Equal(t, "description", escErr.Field)
}

func TestDeterministic(t *testing.T) {
	first := generateAll(t, nil, generatortest.Frameworks()...)
	second := generateAll(t, nil, generatortest.Frameworks()...)

	assert.Equal(t, artifact.Digest(first), artifact.Digest(second))
}

func TestTsc(t *testing.T) {
	if _, err := exec.LookPath("tsc"); err != nil {
		t.Skip("tsc not available")
	}

	artifacts := generateAll(t, nil, generatortest.Frameworks()...)

	checker, err := (&TypeScript{}).Checker(nil)
	require.NoError(t, err)
	assert.NoError(t, checker.Check(context.Background(), artifacts))
}
