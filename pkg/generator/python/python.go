// Package python renders frameworks into a Python package.
package python

import (
	"context"
	"fmt"
	"path"
	"strings"

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

// Options are options of the Python generator.
type Options struct {
	PackageName  string `yaml:"packageName" description:"Dotted name of the generated Python package"`
	CheckCommand string `yaml:"checkCommand,omitempty" description:"Command checking the generated sources, {files} expands to the source files"`
}

// MarshalYAML implements YAML Marshaler
func (o *Options) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(o)
}

var kinds = view.Kinds{Doc: escape.PythonComment, Str: escape.PythonString, Long: escape.PythonDocstring}

// reserved returns the names declared next to the control identifiers
// of fw, in the controls class and the definitions module.
func reserved(fw *control.Framework) []string {
	return []string{
		"ALL", "FRAMEWORK", "from_id", "by_id", "_BY_ID", "F",
		"ControlDefinition", "EvidenceMarker", "EvidenceType", "RiskLevel",
		"Any", "Callable", "Dict", "Optional", "Tuple", "TypeVar",
		"functools", "inspect", "str", "classmethod",
		decorator(fw), fw.Symbol() + "Controls",
	}
}

func decorator(fw *control.Framework) string {
	return fw.Lower() + "_evidence"
}

// Python generates Python packages.
type Python struct{}

// Name implements Generator
func (p *Python) Name() string {
	return "python"
}

// Description implements Generator
func (p *Python) Description() string {
	return "Generates a Python 3.9+ package with control ids, evidence decorators and control definitions"
}

// Targets implements Generator
func (p *Python) Targets() map[string]string {
	return map[string]string{
		generator.TargetEvidence:    "The package skeleton and the evidence module shared by every framework",
		generator.TargetAnnotations: "A module per framework with the control ids and the evidence decorator",
		generator.TargetModels:      "A module per framework with a ControlDefinition per control",
	}
}

// DefaultOptions implements Generator
func (p *Python) DefaultOptions() interface{} {
	return &Options{
		PackageName: "compliance",
	}
}

// DescriptionMarkdown implements DescriptionMarkdown
func (p *Python) DescriptionMarkdown() string {
	return generator.DescriptionMarkdown(p, "This generator generates a Python package that only relies on the standard library.")
}

// Checker implements Generator
func (p *Python) Checker(options interface{}) (check.Checker, error) {
	opts, err := p.options(options)
	if err != nil {
		return nil, err
	}

	return check.PyCompile(opts.CheckCommand), nil
}

func (p *Python) options(options interface{}) (*Options, error) {
	o, err := generator.DecodeOptions(p, options)
	if err != nil {
		return nil, err
	}

	opts := o.(*Options)

	if opts.PackageName == "" {
		return nil, fmt.Errorf("package name is empty")
	}

	for _, seg := range strings.Split(opts.PackageName, ".") {
		if !ident.Valid(seg, ident.Python) {
			return nil, fmt.Errorf("invalid package name %q: %q is not an identifier", opts.PackageName, seg)
		}
	}

	return opts, nil
}

// Generate implements Generator
func (p *Python) Generate(ctx context.Context, options interface{}, fw *control.Framework, target string) ([]artifact.Artifact, error) {
	opts, err := p.options(options)
	if err != nil {
		return nil, err
	}

	root := strings.ReplaceAll(opts.PackageName, ".", "/")

	switch target {
	case generator.TargetEvidence:
		return p.evidence(root)
	case generator.TargetAnnotations:
		return p.annotations(root, fw)
	case generator.TargetModels:
		return p.models(root, fw)
	default:
		return nil, generator.UnsupportedTarget(p, target)
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

func (p *Python) evidence(root string) ([]artifact.Artifact, error) {
	var out []artifact.Artifact

	for _, pkg := range []struct {
		dir, doc string
	}{
		{"", "Compliance evidence markers and control definitions."},
		{"annotations", "Control ids and evidence decorators, one module per framework."},
		{"models", "Control definitions, one module per framework."},
	} {
		a, err := generator.Execute(packageTemplate, path.Join(root, pkg.dir, "__init__.py"), map[string]string{"Doc": pkg.doc})
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

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
			Value: escape.MustEscape(escape.PythonString, a.Value),
			Doc:   a.Doc,
		})
	}

	a, err := generator.Execute(evidenceTemplate, path.Join(root, "evidence", "__init__.py"), map[string]interface{}{
		"Enums": []enumData{
			{"EvidenceType", "Kind of evidence a control expects.", evidenceTypes},
			{"RiskLevel", "Risk of not satisfying a control.", []string{
				string(control.RiskLow), string(control.RiskMedium), string(control.RiskHigh), string(control.RiskCritical),
			}},
			{"RedactionStrategy", "How a value is treated before it appears in evidence.", strategies},
		},
		"Attributes": attributes,
		"Success":    escape.MustEscape(escape.PythonString, generator.ResultSuccess),
		"Failure":    escape.MustEscape(escape.PythonString, generator.ResultFailure),
	})
	if err != nil {
		return nil, err
	}

	return append(out, a), nil
}

type controlData struct {
	Ident      string
	IDLit      string
	SummaryDoc string
}

func (p *Python) annotations(root string, fw *control.Framework) ([]artifact.Artifact, error) {
	v, err := view.Build(fw, ident.Python, kinds, reserved(fw)...)
	if err != nil {
		return nil, err
	}

	moduleDoc, err := view.Literal(escape.PythonDocstring, "", "name",
		fmt.Sprintf("Control ids and the evidence decorator of %v.", v.Name))
	if err != nil {
		return nil, err
	}

	classDoc, err := view.Literal(escape.PythonDocstring, "", "description", v.DocText)
	if err != nil {
		return nil, err
	}

	decoratorDoc, err := view.Literal(escape.PythonDocstring, "", "name",
		fmt.Sprintf("Marks a function as producing evidence for a control of %v.", v.Name))
	if err != nil {
		return nil, err
	}

	controls := make([]controlData, 0, len(v.Controls))
	for i, c := range v.Controls {
		doc, err := view.Literal(escape.PythonDocstring, c.ID, "name", c.ID+": "+fw.Controls[i].Name)
		if err != nil {
			return nil, err
		}
		controls = append(controls, controlData{Ident: c.Ident, IDLit: c.IDLit, SummaryDoc: doc})
	}

	a, err := generator.Execute(annotationsTemplate, path.Join(root, "annotations", v.Module+".py"), map[string]interface{}{
		"ModuleDoc":    moduleDoc,
		"ClassDoc":     classDoc,
		"DecoratorDoc": decoratorDoc,
		"Decorator":    decorator(fw),
		"Framework":    v,
		"Controls":     controls,
	})
	if err != nil {
		return nil, err
	}

	return []artifact.Artifact{a}, nil
}

func (p *Python) models(root string, fw *control.Framework) ([]artifact.Artifact, error) {
	v, err := view.Build(fw, ident.Python, kinds, reserved(fw)...)
	if err != nil {
		return nil, err
	}

	moduleDoc, err := view.Literal(escape.PythonDocstring, "", "name",
		fmt.Sprintf("Control definitions of %v.", v.Name))
	if err != nil {
		return nil, err
	}

	a, err := generator.Execute(modelsTemplate, path.Join(root, "models", v.Module+".py"), map[string]interface{}{
		"ModuleDoc": moduleDoc,
		"Framework": v,
	})
	if err != nil {
		return nil, err
	}

	return []artifact.Artifact{a}, nil
}
