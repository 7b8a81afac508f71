// Package java renders frameworks into Java sources.
package java

import (
	"context"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"

	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/check"
	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/errs"
	"github.com/fluohq/compliancegen/pkg/escape"
	"github.com/fluohq/compliancegen/pkg/generator"
	"github.com/fluohq/compliancegen/pkg/generator/view"
	"github.com/fluohq/compliancegen/pkg/ident"
	"github.com/fluohq/compliancegen/pkg/util"
)

// Options are options of the Java generator.
type Options struct {
	BasePackage   string `yaml:"basePackage" description:"Package the evidence and annotations packages are placed in"`
	ModelsPackage string `yaml:"modelsPackage" description:"Package of each framework's control definitions, {base} and {framework} are replaced"`
	CheckCommand  string `yaml:"checkCommand,omitempty" description:"Command checking the generated sources, {files} expands to the source files and {out} to a scratch directory"`
}

// MarshalYAML implements YAML Marshaler
func (o *Options) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(o)
}

var kinds = view.Kinds{Doc: escape.JavaDoc, Str: escape.JavaString, Long: escape.JavaString}

// reserved returns the names declared next to the control identifiers
// of fw.
func reserved(fw *control.Framework) []string {
	return []string{
		"FRAMEWORK", "id", "java", "String", "Object", "Override",
		"ControlDefinition", "EvidenceType", "RiskLevel",
		fw.Symbol() + "Controls", fw.Symbol() + "Evidence", fw.Symbol() + "Definitions",
	}
}

// Java generates Java sources.
type Java struct{}

// Name implements Generator
func (j *Java) Name() string {
	return "java"
}

// Description implements Generator
func (j *Java) Description() string {
	return "Generates Java 17 sources with control enums, evidence annotations and control definitions"
}

// Targets implements Generator
func (j *Java) Targets() map[string]string {
	return map[string]string{
		generator.TargetEvidence:    "The evidence package shared by every framework: enums, redaction annotations and records",
		generator.TargetAnnotations: "A control enum and an evidence annotation per framework",
		generator.TargetModels:      "A class per control holding its ControlDefinition, and an index per framework",
	}
}

// DefaultOptions implements Generator
func (j *Java) DefaultOptions() interface{} {
	return &Options{
		BasePackage:   "com.compliance",
		ModelsPackage: "{base}.models.{framework}",
	}
}

// DescriptionMarkdown implements DescriptionMarkdown
func (j *Java) DescriptionMarkdown() string {
	return generator.DescriptionMarkdown(j, "This generator generates Java 17 sources without third-party dependencies.")
}

// Checker implements Generator
func (j *Java) Checker(options interface{}) (check.Checker, error) {
	opts, err := j.options(options)
	if err != nil {
		return nil, err
	}

	return check.Javac(opts.CheckCommand), nil
}

func (j *Java) options(options interface{}) (*Options, error) {
	o, err := generator.DecodeOptions(j, options)
	if err != nil {
		return nil, err
	}

	opts := o.(*Options)

	if err := validPackage(opts.BasePackage); err != nil {
		return nil, err
	}

	return opts, nil
}

func validPackage(pkg string) error {
	if pkg == "" {
		return fmt.Errorf("package name is empty")
	}

	for _, seg := range strings.Split(pkg, ".") {
		if !ident.Valid(seg, ident.Java) {
			return fmt.Errorf("invalid package name %q: %q is not an identifier", pkg, seg)
		}
	}

	return nil
}

func packageDir(pkg string) string {
	return strings.ReplaceAll(pkg, ".", "/")
}

// Generate implements Generator
func (j *Java) Generate(ctx context.Context, options interface{}, fw *control.Framework, target string) ([]artifact.Artifact, error) {
	opts, err := j.options(options)
	if err != nil {
		return nil, err
	}

	switch target {
	case generator.TargetEvidence:
		return j.evidence(opts)
	case generator.TargetAnnotations:
		return j.annotations(opts, fw)
	case generator.TargetModels:
		return j.models(opts, fw)
	default:
		return nil, generator.UnsupportedTarget(j, target)
	}
}

type enumData struct {
	Package string
	Name    string
	Doc     string
	Values  []string
}

type redactionData struct {
	Package  string
	Name     string
	Doc      string
	Member   string
	Strategy control.RedactionStrategy
	Preserve bool
}

type attributeData struct {
	Name  string
	Value string
	Doc   string
}

func (j *Java) evidence(opts *Options) ([]artifact.Artifact, error) {
	pkg := opts.BasePackage + ".evidence"
	dir := packageDir(pkg)

	evidenceTypes := make([]string, 0, len(control.EvidenceTypes))
	for _, e := range control.EvidenceTypes {
		evidenceTypes = append(evidenceTypes, string(e))
	}

	strategies := make([]string, 0, len(control.RedactionStrategies))
	for _, s := range control.RedactionStrategies {
		strategies = append(strategies, string(s))
	}

	attributes := make([]attributeData, 0, len(generator.Attributes))
	for _, a := range generator.Attributes {
		attributes = append(attributes, attributeData{
			Name:  strcase.ToScreamingSnake(a.Key),
			Value: escape.MustEscape(escape.JavaString, a.Value),
			Doc:   a.Doc,
		})
	}

	files := []struct {
		name string
		t    *template.Template
		data interface{}
	}{
		{"EvidenceType", enumTemplate, enumData{pkg, "EvidenceType", "Kind of evidence a control expects.", evidenceTypes}},
		{"RiskLevel", enumTemplate, enumData{pkg, "RiskLevel", "Risk of not satisfying a control.", []string{
			string(control.RiskLow), string(control.RiskMedium), string(control.RiskHigh), string(control.RiskCritical),
		}}},
		{"RedactionStrategy", enumTemplate, enumData{pkg, "RedactionStrategy", "How a value is treated before it appears in evidence.", strategies}},
		{"Redact", redactionTemplate, redactionData{pkg, "Redact", "Marks a value that is redacted in evidence.", "strategy", control.RedactExclude, true}},
		{"PII", redactionTemplate, redactionData{pkg, "PII", "Marks personally identifiable information, hashed in evidence.", "redact", control.RedactHash, false}},
		{"Sensitive", redactionTemplate, redactionData{pkg, "Sensitive", "Marks a sensitive value, excluded from evidence.", "redact", control.RedactExclude, false}},
		{"EvidenceSpan", spanTemplate, map[string]string{"Package": pkg}},
		{"ControlDefinition", definitionTemplate, map[string]string{"Package": pkg}},
		{"Attributes", attributesTemplate, map[string]interface{}{
			"Package":    pkg,
			"Attributes": attributes,
			"Success":    escape.MustEscape(escape.JavaString, generator.ResultSuccess),
			"Failure":    escape.MustEscape(escape.JavaString, generator.ResultFailure),
		}},
	}

	out := make([]artifact.Artifact, 0, len(files))
	for _, f := range files {
		a, err := generator.Execute(f.t, path.Join(dir, f.name+".java"), f.data)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, nil
}

func (j *Java) annotations(opts *Options, fw *control.Framework) ([]artifact.Artifact, error) {
	v, err := view.Build(fw, ident.Java, kinds, reserved(fw)...)
	if err != nil {
		return nil, err
	}

	markerDoc, err := view.Comment(escape.JavaDoc, "", "name",
		fmt.Sprintf("Marks a method or type as producing evidence for a control of %v.", v.Name))
	if err != nil {
		return nil, err
	}

	pkg := opts.BasePackage + ".annotations"
	dir := packageDir(pkg)

	data := map[string]interface{}{
		"Package":         pkg,
		"EvidencePackage": opts.BasePackage + ".evidence",
		"Framework":       v,
		"MarkerDoc":       markerDoc,
	}

	controls, err := generator.Execute(controlsTemplate, path.Join(dir, v.Symbol+"Controls.java"), data)
	if err != nil {
		return nil, err
	}

	evidence, err := generator.Execute(evidenceTemplate, path.Join(dir, v.Symbol+"Evidence.java"), data)
	if err != nil {
		return nil, err
	}

	return []artifact.Artifact{controls, evidence}, nil
}

func (j *Java) modelsPackage(opts *Options, fw *control.Framework) (string, error) {
	pkg, err := generator.ExpandPattern(opts.ModelsPackage, fw, map[string]string{
		"base":      opts.BasePackage,
		"framework": view.Module(fw, ident.Java),
	})
	if err != nil {
		return "", err
	}

	if err := validPackage(pkg); err != nil {
		return "", err
	}

	return pkg, nil
}

func (j *Java) models(opts *Options, fw *control.Framework) ([]artifact.Artifact, error) {
	v, err := view.Build(fw, ident.Java, kinds, reserved(fw)...)
	if err != nil {
		return nil, err
	}

	pkg, err := j.modelsPackage(opts, fw)
	if err != nil {
		return nil, err
	}
	dir := packageDir(pkg)

	// one file per class: names differing only in case share a file on
	// case-insensitive file systems
	files := map[string]string{
		strings.ToLower(v.Symbol + "Definitions"): "(generated) " + v.Symbol + "Definitions",
	}

	out := make([]artifact.Artifact, 0, len(v.Controls)+1)
	for _, c := range v.Controls {
		lower := strings.ToLower(c.Ident)
		if other, ok := files[lower]; ok {
			return nil, &errs.IdentifierCollisionError{
				Grammar:    "java file name",
				Identifier: c.Ident + ".java",
				First:      other,
				Second:     c.ID,
			}
		}
		files[lower] = c.ID

		a, err := generator.Execute(modelTemplate, path.Join(dir, c.Ident+".java"), map[string]interface{}{
			"Package":         pkg,
			"EvidencePackage": opts.BasePackage + ".evidence",
			"Framework":       v,
			"Control":         c,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	index, err := generator.Execute(definitionsTemplate, path.Join(dir, v.Symbol+"Definitions.java"), map[string]interface{}{
		"Package":         pkg,
		"EvidencePackage": opts.BasePackage + ".evidence",
		"Framework":       v,
	})
	if err != nil {
		return nil, err
	}

	return append(out, index), nil
}
