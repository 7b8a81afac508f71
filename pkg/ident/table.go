package ident

import (
	"github.com/fluohq/compliancegen/pkg/errs"
)

// Table is the collision-checked mapping from control ids to
// identifiers of one grammar, built once per framework.
//
// Names the renderer itself declares in the same scope (helper
// functions, lists) can be reserved up front so that a control id can
// never shadow them.
type Table struct {
	grammar  Grammar
	byID     map[string]string
	byIdent  map[string]string
	reserved map[string]bool
}

// NewTable creates an empty table for g.
func NewTable(g Grammar, reserved ...string) *Table {
	t := &Table{
		grammar:  g,
		byID:     make(map[string]string),
		byIdent:  make(map[string]string),
		reserved: make(map[string]bool, len(reserved)),
	}

	for _, r := range reserved {
		t.reserved[r] = true
	}

	return t
}

// Build creates a table holding all ids, in order.
func Build(g Grammar, ids []string, reserved ...string) (*Table, error) {
	t := NewTable(g, reserved...)

	for _, id := range ids {
		if _, err := t.Add(id); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// Add sanitizes id and records it. Adding the same id twice returns the
// same identifier; two distinct ids with the same identifier, or an id
// whose identifier is reserved, return *errs.IdentifierCollisionError.
func (t *Table) Add(id string) (string, error) {
	if existing, ok := t.byID[id]; ok {
		return existing, nil
	}

	name := Sanitize(id, t.grammar)

	if t.reserved[name] {
		return "", &errs.IdentifierCollisionError{
			Grammar:    t.grammar.String(),
			Identifier: name,
			First:      "(generated) " + name,
			Second:     id,
		}
	}

	if other, ok := t.byIdent[name]; ok {
		return "", &errs.IdentifierCollisionError{
			Grammar:    t.grammar.String(),
			Identifier: name,
			First:      other,
			Second:     id,
		}
	}

	t.byID[id] = name
	t.byIdent[name] = id

	return name, nil
}

// Lookup returns the identifier for id.
func (t *Table) Lookup(id string) (string, bool) {
	name, ok := t.byID[id]
	return name, ok
}

// Len is the number of ids in the table.
func (t *Table) Len() int {
	return len(t.byID)
}
