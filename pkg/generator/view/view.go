// Package view prepares a framework for rendering in one target
// language: every control id is sanitized through one collision-checked
// table and every text field is escaped up front, so renderers only
// place ready fragments and escape failures name the control and field.
package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/errs"
	"github.com/fluohq/compliancegen/pkg/escape"
	"github.com/fluohq/compliancegen/pkg/ident"
)

// Kinds selects the escape kinds of a target language.
type Kinds struct {
	// Doc is the comment kind of documentation.
	Doc escape.Kind
	// Str is the single line string literal kind.
	Str escape.Kind
	// Long is the literal kind of multi-paragraph text.
	Long escape.Kind
}

// Framework is a framework ready for rendering.
type Framework struct {
	ID string
	// Symbol is the upper case name form, e.g. ISO_27001.
	Symbol string
	// Module is the lower case name form for packages and modules,
	// never a keyword of the grammar.
	Module string

	// Name is the display name, unescaped.
	Name string

	IDLit      string
	NameLit    string
	VersionLit string

	// Doc is the comment body describing the framework.
	Doc []string
	// DocText is the unescaped text Doc was built from.
	DocText string

	Controls []*Control
}

// Control is a control ready for rendering. Fields ending in Lit are
// complete literals of the target language.
type Control struct {
	// Ident is the sanitized identifier, unique within the framework.
	Ident string
	// ID is the original id.
	ID string

	IDLit          string
	NameLit        string
	CategoryLit    string
	DescriptionLit string
	GuidanceLit    string
	MetadataLit    string

	RequirementLits []string
	ProcedureLits   []string
	ObjectiveLits   []string

	RiskLevel     control.RiskLevel
	EvidenceTypes []control.EvidenceType

	// Summary is the comment body "id: name".
	Summary []string
	// Doc is the summary followed by the description paragraphs.
	Doc []string
	// DocText is the unescaped text Doc was built from.
	DocText string
}

type builder struct {
	kinds   Kinds
	control string
	err     error
}

func (b *builder) fail(field string, err error) {
	if b.err != nil {
		return
	}

	var escErr *errs.EscapeError
	if errors.As(err, &escErr) {
		escErr.Control = b.control
		escErr.Field = field
	}

	b.err = err
}

func (b *builder) lit(k escape.Kind, field, text string) string {
	if b.err != nil {
		return ""
	}

	s, err := escape.Escape(k, text)
	if err != nil {
		b.fail(field, err)
	}
	return s
}

func (b *builder) lits(field string, texts []string) []string {
	out := make([]string, 0, len(texts))
	for i, t := range texts {
		out = append(out, b.lit(b.kinds.Str, fmt.Sprintf("%v[%d]", field, i), t))
	}
	return out
}

func (b *builder) doc(field, text string) []string {
	if b.err != nil {
		return nil
	}

	lines, err := escape.CommentLines(b.kinds.Doc, text)
	if err != nil {
		b.fail(field, err)
	}
	return lines
}

// Build prepares fw for grammar g. Names the renderer declares next to
// the control identifiers are passed as reserved and can never be taken
// by a control.
func Build(fw *control.Framework, g ident.Grammar, kinds Kinds, reserved ...string) (*Framework, error) {
	table, err := ident.Build(g, fw.ControlIDs(), reserved...)
	if err != nil {
		return nil, err
	}

	// every control needs exactly one registry entry
	if table.Len() != len(fw.Controls) {
		return nil, &errs.InputError{Framework: fw.ID, Err: fmt.Errorf("%d controls share %d distinct ids", len(fw.Controls), table.Len())}
	}

	b := &builder{kinds: kinds}

	out := &Framework{
		ID:         fw.ID,
		Symbol:     fw.Symbol(),
		Module:     Module(fw, g),
		Name:       fw.DisplayName(),
		IDLit:      b.lit(kinds.Str, "id", fw.ID),
		NameLit:    b.lit(kinds.Str, "name", fw.DisplayName()),
		VersionLit: b.lit(kinds.Str, "version", fw.Version),
	}

	summary := fw.DisplayName()
	if fw.Version != "" {
		summary += " (" + fw.Version + ")"
	}
	if fw.Description != "" {
		summary += "\n\n" + fw.Description
	}
	out.Doc = b.doc("description", summary)
	out.DocText = summary

	for _, c := range fw.Controls {
		b.control = c.ID

		name, _ := table.Lookup(c.ID)

		metadata, err := c.MetadataJSON()
		if err != nil {
			return nil, &errs.InputError{Framework: fw.ID, Control: c.ID, Err: err}
		}

		summary := c.ID + ": " + c.Name
		doc := summary
		if strings.TrimSpace(c.Description) != "" {
			doc += "\n\n" + c.Description
		}

		out.Controls = append(out.Controls, &Control{
			Ident:           name,
			ID:              c.ID,
			IDLit:           b.lit(kinds.Str, "id", c.ID),
			NameLit:         b.lit(kinds.Str, "name", c.Name),
			CategoryLit:     b.lit(kinds.Str, "category", c.Category),
			DescriptionLit:  b.lit(kinds.Long, "description", c.Description),
			GuidanceLit:     b.lit(kinds.Long, "implementationGuidance", c.ImplementationGuidance),
			MetadataLit:     b.lit(kinds.Str, "metadata", metadata),
			RequirementLits: b.lits("requirements", c.Requirements),
			ProcedureLits:   b.lits("testingProcedures", c.TestingProcedures),
			ObjectiveLits:   b.lits("canonicalObjectives", c.CanonicalObjectives),
			RiskLevel:       c.RiskLevel,
			EvidenceTypes:   c.EvidenceSet(),
			Summary:         b.doc("name", summary),
			Doc:             b.doc("description", doc),
			DocText:         doc,
		})

		if b.err != nil {
			return nil, b.err
		}
	}

	if b.err != nil {
		return nil, b.err
	}

	return out, nil
}

// Literal escapes text of a framework or control field, attributing a
// failure to them. control is empty for framework fields.
func Literal(k escape.Kind, control, field, text string) (string, error) {
	b := &builder{control: control}
	s := b.lit(k, field, text)
	return s, b.err
}

// Comment is Literal for comment lines.
func Comment(k escape.Kind, control, field, text string) ([]string, error) {
	b := &builder{kinds: Kinds{Doc: k}, control: control}
	lines := b.doc(field, text)
	return lines, b.err
}

// Module is the lower case name form of fw that is safe as a package or
// module name of g.
func Module(fw *control.Framework, g ident.Grammar) string {
	m := fw.Lower()
	if ident.IsReserved(m, g) {
		m += "_"
	}
	return m
}
