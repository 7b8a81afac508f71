// Package typescript renders frameworks into TypeScript modules.
package typescript

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"text/template"

	"github.com/iancoleman/strcase"

	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/check"
	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/escape"
	"github.com/fluohq/compliancegen/pkg/generator"
	"github.com/fluohq/compliancegen/pkg/generator/view"
	"github.com/fluohq/compliancegen/pkg/ident"
	"github.com/fluohq/compliancegen/pkg/util"
)

// Options are options of the TypeScript generator.
type Options struct {
	ImportExtension string `yaml:"importExtension" description:"Suffix of relative import specifiers, e.g. .js for Node ESM consumers"`
	CheckCommand    string `yaml:"checkCommand,omitempty" description:"Command checking the generated sources, {files} expands to the source files"`
}

// MarshalYAML implements YAML Marshaler
func (o *Options) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(o)
}

var extensionPattern = regexp.MustCompile(`^(\.[A-Za-z0-9]+)?$`)

var kinds = view.Kinds{Doc: escape.JSDoc, Str: escape.TypeScriptString, Long: escape.TemplateLiteral}

// reserved returns the module level names of the annotations and models
// modules of fw.
func reserved(fw *control.Framework) []string {
	s := fw.Symbol()
	return []string{
		"FRAMEWORK", "ALL", "byId", "Object", "JSON", "RangeError",
		"ControlDefinition", "EvidenceMarker", "EvidenceType", "RiskLevel", "attachEvidence",
		s + "Controls", s + "Control", s + "_CONTROL_IDS", "is" + s + "Control",
		s + "EvidenceOptions", s + "Evidence",
	}
}

// TypeScript generates TypeScript modules.
type TypeScript struct{}

// Name implements Generator
func (t *TypeScript) Name() string {
	return "typescript"
}

// Description implements Generator
func (t *TypeScript) Description() string {
	return "Generates TypeScript 5 modules with control ids, evidence decorators and control definitions"
}

// Targets implements Generator
func (t *TypeScript) Targets() map[string]string {
	return map[string]string{
		generator.TargetEvidence:    "The evidence module shared by every framework",
		generator.TargetAnnotations: "A module per framework with the control ids and the evidence decorator",
		generator.TargetModels:      "A module per framework with a ControlDefinition per control",
	}
}

// DefaultOptions implements Generator
func (t *TypeScript) DefaultOptions() interface{} {
	return &Options{}
}

// DescriptionMarkdown implements DescriptionMarkdown
func (t *TypeScript) DescriptionMarkdown() string {
	return generator.DescriptionMarkdown(t, "This generator generates TypeScript modules using standard (stage 3) decorators.")
}

// Checker implements Generator
func (t *TypeScript) Checker(options interface{}) (check.Checker, error) {
	opts, err := t.options(options)
	if err != nil {
		return nil, err
	}

	return check.Tsc(opts.CheckCommand), nil
}

func (t *TypeScript) options(options interface{}) (*Options, error) {
	o, err := generator.DecodeOptions(t, options)
	if err != nil {
		return nil, err
	}

	opts := o.(*Options)

	if !extensionPattern.MatchString(opts.ImportExtension) {
		return nil, fmt.Errorf("invalid import extension %q", opts.ImportExtension)
	}

	return opts, nil
}

// Generate implements Generator
func (t *TypeScript) Generate(ctx context.Context, options interface{}, fw *control.Framework, target string) ([]artifact.Artifact, error) {
	opts, err := t.options(options)
	if err != nil {
		return nil, err
	}

	switch target {
	case generator.TargetEvidence:
		return t.evidence()
	case generator.TargetAnnotations:
		return t.module(opts, fw, "annotations", annotationsTemplate)
	case generator.TargetModels:
		return t.module(opts, fw, "models", modelsTemplate)
	default:
		return nil, generator.UnsupportedTarget(t, target)
	}
}

type enumData struct {
	Name   string
	Doc    string
	Values []string
}

type attributeData struct {
	Name  string
	Value string
	Doc   string
}

func (t *TypeScript) evidence() ([]artifact.Artifact, error) {
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
			Name:  "ATTR_" + strcase.ToScreamingSnake(a.Key),
			Value: escape.MustEscape(escape.TypeScriptString, a.Value),
			Doc:   a.Doc,
		})
	}

	a, err := generator.Execute(evidenceTemplate, "evidence/index.ts", map[string]interface{}{
		"Enums": []enumData{
			{"EvidenceType", "Kind of evidence a control expects.", evidenceTypes},
			{"RiskLevel", "Risk of not satisfying a control.", []string{
				string(control.RiskLow), string(control.RiskMedium), string(control.RiskHigh), string(control.RiskCritical),
			}},
			{"RedactionStrategy", "How a value is treated before it appears in evidence.", strategies},
		},
		"Attributes": attributes,
		"Success":    escape.MustEscape(escape.TypeScriptString, generator.ResultSuccess),
		"Failure":    escape.MustEscape(escape.TypeScriptString, generator.ResultFailure),
	})
	if err != nil {
		return nil, err
	}

	return []artifact.Artifact{a}, nil
}

func (t *TypeScript) module(opts *Options, fw *control.Framework, dir string, tmpl *template.Template) ([]artifact.Artifact, error) {
	v, err := view.Build(fw, ident.TypeScript, kinds, reserved(fw)...)
	if err != nil {
		return nil, err
	}

	markerDoc, err := view.Comment(escape.JSDoc, "", "name",
		fmt.Sprintf("Marks a method as producing evidence for a control of %v.", v.Name))
	if err != nil {
		return nil, err
	}

	a, err := generator.Execute(tmpl, path.Join(dir, v.Module+".ts"), map[string]interface{}{
		"Evidence":  "../evidence/index" + opts.ImportExtension,
		"Framework": v,
		"MarkerDoc": markerDoc,
	})
	if err != nil {
		return nil, err
	}

	return []artifact.Artifact{a}, nil
}
