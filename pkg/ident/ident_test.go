package ident

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluohq/compliancegen/pkg/errs"
)

var grammars = []Grammar{Java, Go, Python, TypeScript}

func TestSanitize(t *testing.T) {
	tests := []struct {
		id      string
		grammar Grammar
		want    string
	}{
		{"Art.5(1)(f)", Java, "Art_51f"},
		{"Art.5(1)(f)", Go, "Art_51f"},
		{"Art.15", Python, "Art_15"},
		{"CC6.1", TypeScript, "CC6_1"},
		{"164.312(a)(1)", Java, "_164_312a1"},
		{"164.312(a)(1)", Python, "_164_312a1"},
		{"164.312(a)(1)", TypeScript, "_164_312a1"},
		{"164.312(a)(1)", Go, "C164_312a1"},
		{"A - 1", Java, "A_1"},
		{"A.1", Java, "A_1"},
		{"A-1", Java, "A_1"},
		{"PR.AC-1: Identities/credentials", Python, "PR_AC_1_Identities_credentials"},
		{"req.1", Go, "Creq_1"},
		{"req.1", Java, "req_1"},
		{"", Java, "__"},
		{"", Python, "_"},
		{"", TypeScript, "_"},
		{"", Go, "C"},
		{"()", Python, "_"},
		{"class", Java, "class_"},
		{"None", Python, "None_"},
		{"delete", TypeScript, "delete_"},
		{"Ärt.1", Java, "_rt_1"},
	}

	for _, tt := range tests {
		t.Run(tt.grammar.String()+"/"+tt.id, func(t *testing.T) {
			got := Sanitize(tt.id, tt.grammar)
			assert.Equal(t, tt.want, got)
			assert.True(t, Valid(got, tt.grammar), "%q is not a legal %v identifier", got, tt.grammar)
		})
	}
}

func TestSanitizeIsPure(t *testing.T) {
	for _, g := range grammars {
		assert.Equal(t, Sanitize("ISO 27001 A.9.4.2", g), Sanitize("ISO 27001 A.9.4.2", g))
	}
}

func TestTableCollision(t *testing.T) {
	for _, g := range grammars {
		t.Run(g.String(), func(t *testing.T) {
			_, err := Build(g, []string{"A.1", "B.2", "A-1"})
			require.Error(t, err)

			var collision *errs.IdentifierCollisionError
			require.True(t, errors.As(err, &collision))
			assert.Equal(t, "A.1", collision.First)
			assert.Equal(t, "A-1", collision.Second)
			assert.Equal(t, Sanitize("A.1", g), collision.Identifier)
			assert.True(t, errors.Is(err, errs.ErrIdentifierCollision))
			assert.Contains(t, err.Error(), `"A.1"`)
			assert.Contains(t, err.Error(), `"A-1"`)
		})
	}
}

func TestTableReserved(t *testing.T) {
	_, err := Build(Python, []string{"Art.15", "ALL"}, "ALL", "FRAMEWORK")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrIdentifierCollision))
}

func TestTableLookup(t *testing.T) {
	tbl, err := Build(Java, []string{"Art.15", "Art.17", "Art.5(1)(f)"})
	require.NoError(t, err)

	assert.Equal(t, 3, tbl.Len())

	name, ok := tbl.Lookup("Art.5(1)(f)")
	require.True(t, ok)
	assert.Equal(t, "Art_51f", name)

	_, ok = tbl.Lookup("Art_51f")
	assert.False(t, ok)

	again, err := tbl.Add("Art.15")
	require.NoError(t, err)
	assert.Equal(t, "Art_15", again)
	assert.Equal(t, 3, tbl.Len())
}

func FuzzSanitize(f *testing.F) {
	for _, seed := range []string{"Art.5(1)(f)", "164.312(a)(1)", "", "__", "class", "日本語", "\x00"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, id string) {
		for _, g := range grammars {
			got := Sanitize(id, g)
			if !Valid(got, g) {
				t.Fatalf("Sanitize(%q, %v) = %q is not a legal identifier", id, g, got)
			}
			if got != Sanitize(id, g) {
				t.Fatalf("Sanitize(%q, %v) is not deterministic", id, g)
			}
		}
	})
}
