package control

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/fluohq/compliancegen/pkg/errs"
)

type field struct {
	name string
	text string
}

var frameworkIDPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// Validate checks the framework against the control model invariants.
// The first violation is returned as an *errs.InputError.
func (f *Framework) Validate() error {
	fail := func(control string, err error) error {
		return &errs.InputError{Framework: f.ID, Control: control, Err: err}
	}

	if f.ID == "" {
		return fail("", errs.ErrMissing("framework id", "name: "+f.Name))
	}

	if !frameworkIDPattern.MatchString(f.ID) {
		return fail("", fmt.Errorf("framework id must match %v", frameworkIDPattern))
	}

	for _, t := range []field{{"name", f.Name}, {"version", f.Version}, {"description", f.Description}} {
		if !utf8.ValidString(t.text) {
			return fail("", fmt.Errorf("%v is not valid UTF-8", t.name))
		}
	}

	seen := make(map[string]int, len(f.Controls))

	for i, c := range f.Controls {
		if c == nil {
			return fail("", fmt.Errorf("control #%d is empty", i+1))
		}

		if c.ID == "" {
			return fail("", errs.ErrMissing("control id", fmt.Sprintf("control #%d", i+1)))
		}

		if first, ok := seen[c.ID]; ok {
			return fail(c.ID, fmt.Errorf("duplicate control id (controls #%d and #%d)", first+1, i+1))
		}
		seen[c.ID] = i

		if err := c.validate(); err != nil {
			return fail(c.ID, err)
		}
	}

	return nil
}

func (c *Control) validate() error {
	if c.Name == "" {
		return errs.ErrMissing("name")
	}

	if c.RiskLevel == "" {
		return errs.ErrMissing("riskLevel")
	}

	if !c.RiskLevel.Valid() {
		return fmt.Errorf("unknown risk level %q", c.RiskLevel)
	}

	for _, e := range c.EvidenceTypes {
		if !e.Valid() {
			return fmt.Errorf("unknown evidence type %q", e)
		}
	}

	texts := []field{
		{"id", c.ID},
		{"name", c.Name},
		{"category", c.Category},
		{"description", c.Description},
		{"implementationGuidance", c.ImplementationGuidance},
	}
	for _, t := range texts {
		if !utf8.ValidString(t.text) {
			return fmt.Errorf("%v is not valid UTF-8", t.name)
		}
	}

	lists := []struct {
		name  string
		items []string
	}{
		{"requirements", c.Requirements},
		{"testingProcedures", c.TestingProcedures},
		{"canonicalObjectives", c.CanonicalObjectives},
	}
	for _, l := range lists {
		for i, text := range l.items {
			if !utf8.ValidString(text) {
				return fmt.Errorf("%v[%d] is not valid UTF-8", l.name, i)
			}
		}
	}

	if _, err := c.MetadataJSON(); err != nil {
		return fmt.Errorf("metadata cannot be encoded: %w", err)
	}

	return nil
}
