// Package golang renders frameworks into Go packages with Jennifer.
package golang

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/iancoleman/strcase"

	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/check"
	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/escape"
	"github.com/fluohq/compliancegen/pkg/generator"
	"github.com/fluohq/compliancegen/pkg/generator/view"
	"github.com/fluohq/compliancegen/pkg/ident"
	"github.com/fluohq/compliancegen/pkg/util"
	"github.com/fluohq/compliancegen/pkg/util/gen"
	"github.com/fluohq/compliancegen/pkg/util/gen/templates"
)

// Options are options of the Go generator.
type Options struct {
	ModulePath     string `yaml:"modulePath" description:"Module path the generated packages are imported from"`
	MarkersPattern string `yaml:"markersPattern" description:"Directory of each framework's marker package, {framework} is replaced with the framework id"`
	ModelsPattern  string `yaml:"modelsPattern" description:"Directory of each framework's definitions package, {framework} is replaced with the framework id"`
	GoMod          bool   `yaml:"goMod" description:"Generate a go.mod declaring the module path"`
	GoVersion      string `yaml:"goVersion" description:"Go version of the generated go.mod"`
}

// MarshalYAML implements YAML Marshaler
func (o *Options) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(o)
}

// Names declared next to the control identifiers.
var reserved = []string{
	"Framework", "ControlID", "Controls", "Evidence", "WithEvidence",
	"EvidenceFromContext", "Lookup", "All", "ByID",
}

var kinds = view.Kinds{Doc: escape.GoComment, Str: escape.GoString, Long: escape.GoString}

// Go generates Go packages.
type Go struct{}

// Name implements Generator
func (g *Go) Name() string {
	return "go"
}

// Description implements Generator
func (g *Go) Description() string {
	return "Generates Go packages with control ids, evidence markers and control definitions"
}

// Targets implements Generator
func (g *Go) Targets() map[string]string {
	return map[string]string{
		generator.TargetEvidence:    "The evidence package shared by every framework, and optionally go.mod",
		generator.TargetAnnotations: "A package per framework with the control ids and the Evidence context marker",
		generator.TargetModels:      "A package per framework with a ControlDefinition per control",
	}
}

// DefaultOptions implements Generator
func (g *Go) DefaultOptions() interface{} {
	return &Options{
		ModulePath:     "example.com/compliance",
		MarkersPattern: "markers/{framework}",
		ModelsPattern:  "models/{framework}",
		GoMod:          true,
		GoVersion:      "1.21",
	}
}

// DescriptionMarkdown implements DescriptionMarkdown
func (g *Go) DescriptionMarkdown() string {
	return generator.DescriptionMarkdown(g, "This generator generates Go packages that only rely on the standard library.")
}

// Checker implements Generator
func (g *Go) Checker(options interface{}) (check.Checker, error) {
	opts, err := g.options(options)
	if err != nil {
		return nil, err
	}

	return &check.GoChecker{ModulePath: opts.ModulePath}, nil
}

func (g *Go) options(options interface{}) (*Options, error) {
	o, err := generator.DecodeOptions(g, options)
	if err != nil {
		return nil, err
	}

	opts := o.(*Options)

	if opts.ModulePath == "" || strings.ContainsAny(opts.ModulePath, " \t\r\n\"'`\\") {
		return nil, fmt.Errorf("invalid module path %q", opts.ModulePath)
	}

	return opts, nil
}

// Generate implements Generator
func (g *Go) Generate(ctx context.Context, options interface{}, fw *control.Framework, target string) ([]artifact.Artifact, error) {
	opts, err := g.options(options)
	if err != nil {
		return nil, err
	}

	switch target {
	case generator.TargetEvidence:
		return g.evidence(opts)
	case generator.TargetAnnotations:
		return g.markers(opts, fw)
	case generator.TargetModels:
		return g.models(opts, fw)
	default:
		return nil, generator.UnsupportedTarget(g, target)
	}
}

func (g *Go) evidencePath(opts *Options) string {
	return opts.ModulePath + "/evidence"
}

func (g *Go) dir(pattern string, fw *control.Framework) (string, error) {
	p, err := generator.ExpandPattern(pattern, fw, map[string]string{
		"framework": view.Module(fw, ident.Go),
	})
	if err != nil {
		return "", err
	}

	dir, err := generator.RelativeDir(p)
	if err != nil {
		return "", err
	}

	if dir == "" || dir == "evidence" {
		return "", fmt.Errorf("pattern %q must name a directory other than the evidence package", pattern)
	}

	return dir, nil
}

func render(p string, f *jen.File) (artifact.Artifact, error) {
	buf := &bytes.Buffer{}

	if err := f.Render(buf); err != nil {
		return artifact.Artifact{}, fmt.Errorf("failed to render %v: %w", p, err)
	}

	return artifact.Artifact{Path: p, Content: buf.Bytes()}, nil
}

func newFile(importPath, name string) *jen.File {
	f := jen.NewFilePathName(importPath, name)
	f.HeaderComment(generator.Header)
	return f
}

func constName(prefix, value string) string {
	return prefix + strcase.ToCamel(strings.ToLower(value))
}

func enum(f *jen.File, name, doc, prefix string, values []string) {
	f.Comment(doc)
	f.Type().Id(name).String()
	f.Line()
	f.Comment("Values of " + name + ".")
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, v := range values {
			g.Id(constName(prefix, v)).Id(name).Op("=").Lit(v)
		}
	})
	f.Line()
}

func (g *Go) evidence(opts *Options) ([]artifact.Artifact, error) {
	importPath := g.evidencePath(opts)

	var out []artifact.Artifact

	if opts.GoMod {
		out = append(out, artifact.Artifact{
			Path:    "go.mod",
			Content: []byte(fmt.Sprintf("module %v\n\ngo %v\n", opts.ModulePath, opts.GoVersion)),
		})
	}

	files := []struct {
		name  string
		build func(f *jen.File)
	}{
		{"evidence.go", g.evidenceTypes},
		{"redact.go", g.redaction},
		{"span.go", g.span},
		{"definition.go", g.definition},
	}

	for _, file := range files {
		f := newFile(importPath, "evidence")
		file.build(f)

		a, err := render(path.Join("evidence", file.name), f)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}

	return out, nil
}

func (g *Go) evidenceTypes(f *jen.File) {
	f.PackageComment("Package evidence holds the compliance primitives shared by every framework.")

	evidenceTypes := make([]string, 0, len(control.EvidenceTypes))
	for _, e := range control.EvidenceTypes {
		evidenceTypes = append(evidenceTypes, string(e))
	}

	enum(f, "EvidenceType", "EvidenceType is the kind of evidence a control expects.", "Evidence", evidenceTypes)
	enum(f, "RiskLevel", "RiskLevel is the risk of not satisfying a control.", "Risk", []string{
		string(control.RiskLow), string(control.RiskMedium), string(control.RiskHigh), string(control.RiskCritical),
	})

	f.Comment("Span attribute names of compliance evidence.")
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, a := range generator.Attributes {
			g.Comment(constName("Attr", a.Key) + " is the " + strings.ToLower(a.Doc[:1]) + a.Doc[1:])
			g.Id(constName("Attr", a.Key)).Op("=").Lit(a.Value)
		}
	})
	f.Line()
	f.Comment("Values of the result attribute.")
	f.Const().Defs(
		jen.Id("ResultSuccess").Op("=").Lit(generator.ResultSuccess),
		jen.Id("ResultFailure").Op("=").Lit(generator.ResultFailure),
	)
}

func (g *Go) redaction(f *jen.File) {
	strategies := make([]string, 0, len(control.RedactionStrategies))
	for _, s := range control.RedactionStrategies {
		strategies = append(strategies, string(s))
	}

	enum(f, "RedactionStrategy", "RedactionStrategy says how a value is treated before it appears in evidence.", "Redact", strategies)

	f.Comment("TagKey is the struct tag key read by FieldRedaction.")
	f.Const().Id("TagKey").Op("=").Lit("compliance")
	f.Line()

	f.Comment("Redactor is implemented by values that know how they are redacted.")
	f.Type().Id("Redactor").Interface(
		jen.Id("Redaction").Params().Id("RedactionStrategy"),
	)
	f.Line()

	for _, t := range []struct {
		name, doc string
		strategy  control.RedactionStrategy
	}{
		{"PII", "PII is personally identifiable information, hashed in evidence.", control.RedactHash},
		{"Sensitive", "Sensitive is a value excluded from evidence.", control.RedactExclude},
	} {
		f.Comment(t.doc)
		f.Type().Id(t.name).String()
		f.Line()
		f.Comment("Redaction implements Redactor.")
		f.Func().Params(jen.Id(t.name)).Id("Redaction").Params().Id("RedactionStrategy").Block(
			jen.Return(jen.Id(constName("Redact", string(t.strategy)))),
		)
		f.Line()
	}

	f.Comment("RedactionOf returns the redaction of a value implementing Redactor.")
	f.Func().Id("RedactionOf").Params(jen.Id("v").Interface()).Params(jen.Id("RedactionStrategy"), jen.Bool()).Block(
		jen.List(jen.Id("r"), jen.Id("ok")).Op(":=").Id("v").Assert(jen.Id("Redactor")),
		jen.If(jen.Op("!").Id("ok")).Block(jen.Return(jen.Lit(""), jen.False())),
		jen.Return(jen.Id("r").Dot("Redaction").Call(), jen.True()),
	)
	f.Line()

	f.Add(gen.MustTemplate(templates.FieldRedaction, templates.Values("")))
}

func (g *Go) span(f *jen.File) {
	f.Add(gen.MustTemplate(templates.EvidenceSpan, templates.Values("")))
}

func (g *Go) definition(f *jen.File) {
	f.Comment("ControlDefinition documents one compliance control.")
	f.Type().Id("ControlDefinition").Struct(
		jen.Id("Framework").String(),
		jen.Id("ID").String(),
		jen.Id("Name").String(),
		jen.Id("Category").String(),
		jen.Id("RiskLevel").Id("RiskLevel"),
		jen.Id("Description").String(),
		jen.Id("ImplementationGuidance").String(),
		jen.Id("Requirements").Index().String(),
		jen.Id("TestingProcedures").Index().String(),
		jen.Id("EvidenceTypes").Index().Id("EvidenceType"),
		jen.Id("CanonicalObjectives").Index().String(),
		jen.Comment("Metadata is the control's metadata as canonical JSON."),
		jen.Id("Metadata").String(),
	)
}

func (g *Go) markers(opts *Options, fw *control.Framework) ([]artifact.Artifact, error) {
	v, err := view.Build(fw, ident.Go, kinds, reserved...)
	if err != nil {
		return nil, err
	}

	dir, err := g.dir(opts.MarkersPattern, fw)
	if err != nil {
		return nil, err
	}

	evidencePath := g.evidencePath(opts)

	pkgDoc, err := view.Comment(escape.GoComment, "", "name",
		fmt.Sprintf("Package %v holds the control ids and the evidence marker of %v.", v.Module, v.Name))
	if err != nil {
		return nil, err
	}

	f := newFile(opts.ModulePath+"/"+dir, v.Module)
	f.PackageComment(gen.CommentText(pkgDoc...))
	f.ImportName(evidencePath, "evidence")

	f.Comment("Framework is the id of the framework.")
	f.Const().Id("Framework").Op("=").Add(gen.Raw(v.IDLit))
	f.Line()

	f.Comment("ControlID is the id of a control of the framework.")
	f.Type().Id("ControlID").String()
	f.Line()

	f.Add(gen.Comments(v.Doc...))
	f.Const().DefsFunc(func(g *jen.Group) {
		for _, c := range v.Controls {
			g.Add(gen.Comments(c.Summary...))
			g.Id(c.Ident).Id("ControlID").Op("=").Add(gen.Raw(c.IDLit))
		}
	})
	f.Line()

	f.Comment("Controls lists every control id in definition order.")
	f.Var().Id("Controls").Op("=").Index().Id("ControlID").ValuesFunc(func(g *jen.Group) {
		for _, c := range v.Controls {
			g.Line().Id(c.Ident)
		}
		if len(v.Controls) > 0 {
			g.Line()
		}
	})
	f.Line()

	f.Add(gen.MustTemplate(templates.Lookup, templates.Values(evidencePath)))
	f.Line()

	f.Comment("Evidence marks a call as producing evidence for a control.")
	f.Type().Id("Evidence").Struct(
		jen.Id("Control").Id("ControlID"),
		jen.Id("EvidenceType").Qual(evidencePath, "EvidenceType"),
		jen.Id("Description").String(),
	)
	f.Line()

	f.Add(gen.MustTemplate(templates.ContextEvidence, templates.Values(evidencePath)))

	a, err := render(path.Join(dir, "controls.go"), f)
	if err != nil {
		return nil, err
	}

	return []artifact.Artifact{a}, nil
}

func (g *Go) models(opts *Options, fw *control.Framework) ([]artifact.Artifact, error) {
	v, err := view.Build(fw, ident.Go, kinds, reserved...)
	if err != nil {
		return nil, err
	}

	dir, err := g.dir(opts.ModelsPattern, fw)
	if err != nil {
		return nil, err
	}

	evidencePath := g.evidencePath(opts)

	pkgDoc, err := view.Comment(escape.GoComment, "", "name",
		fmt.Sprintf("Package %v holds the control definitions of %v.", v.Module, v.Name))
	if err != nil {
		return nil, err
	}

	f := newFile(opts.ModulePath+"/"+dir, v.Module)
	f.PackageComment(gen.CommentText(pkgDoc...))
	f.ImportName(evidencePath, "evidence")

	for _, c := range v.Controls {
		f.Add(gen.Comments(c.Doc...))
		f.Var().Id(c.Ident).Op("=").Qual(evidencePath, "ControlDefinition").ValuesFunc(func(g *jen.Group) {
			field := func(name string, value jen.Code) {
				g.Line().Id(name).Op(":").Add(value)
			}

			field("Framework", gen.Raw(v.IDLit))
			field("ID", gen.Raw(c.IDLit))
			field("Name", gen.Raw(c.NameLit))
			field("Category", gen.Raw(c.CategoryLit))
			field("RiskLevel", jen.Qual(evidencePath, constName("Risk", string(c.RiskLevel))))
			field("Description", gen.Raw(c.DescriptionLit))
			field("ImplementationGuidance", gen.Raw(c.GuidanceLit))
			field("Requirements", gen.Strings(c.RequirementLits))
			field("TestingProcedures", gen.Strings(c.ProcedureLits))
			field("EvidenceTypes", jen.Index().Qual(evidencePath, "EvidenceType").ValuesFunc(func(g *jen.Group) {
				for _, e := range c.EvidenceTypes {
					g.Qual(evidencePath, constName("Evidence", string(e)))
				}
			}))
			field("CanonicalObjectives", gen.Strings(c.ObjectiveLits))
			field("Metadata", gen.Raw(c.MetadataLit))
			g.Line()
		})
		f.Line()
	}

	f.Comment("All lists every control definition in definition order.")
	f.Var().Id("All").Op("=").Index().Qual(evidencePath, "ControlDefinition").ValuesFunc(func(g *jen.Group) {
		for _, c := range v.Controls {
			g.Line().Id(c.Ident)
		}
		if len(v.Controls) > 0 {
			g.Line()
		}
	})
	f.Line()

	f.Add(gen.MustTemplate(templates.ByID, templates.Values(evidencePath)))

	a, err := render(path.Join(dir, "definitions.go"), f)
	if err != nil {
		return nil, err
	}

	return []artifact.Artifact{a}, nil
}
