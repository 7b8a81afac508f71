package view

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/errs"
	"github.com/fluohq/compliancegen/pkg/escape"
	"github.com/fluohq/compliancegen/pkg/generator/generatortest"
	"github.com/fluohq/compliancegen/pkg/ident"
)

var pythonKinds = Kinds{Doc: escape.PythonComment, Str: escape.PythonString, Long: escape.PythonDocstring}

func TestBuild(t *testing.T) {
	v, err := Build(generatortest.GDPR(), ident.Python, pythonKinds)
	require.NoError(t, err)

	assert.Equal(t, "GDPR", v.Symbol)
	assert.Equal(t, "gdpr", v.Module)
	require.Len(t, v.Controls, 3)
	assert.Equal(t, "Art_51f", v.Controls[0].Ident)
	assert.Equal(t, `"Art.5(1)(f)"`, v.Controls[0].IDLit)
	assert.Equal(t, []string{"Art.5(1)(f): Integrity and confidentiality"}, v.Controls[0].Summary)
}

func TestBuildDuplicateIDs(t *testing.T) {
	fw := &control.Framework{ID: "fw", Controls: []*control.Control{
		{ID: "a", Name: "first", RiskLevel: control.RiskLow},
		{ID: "a", Name: "second", RiskLevel: control.RiskLow},
	}}

	_, err := Build(fw, ident.Go, pythonKinds)
	assert.True(t, errors.Is(err, errs.ErrInvalidInput), "%v", err)
}

func TestBuildNamesFailingField(t *testing.T) {
	fw := generatortest.SOC2()
	fw.Controls[0].Requirements = []string{"ok", "bad \xff"}

	_, err := Build(fw, ident.Python, pythonKinds)

	var escErr *errs.EscapeError
	require.True(t, errors.As(err, &escErr), "%v", err)
	assert.Equal(t, fw.Controls[0].ID, escErr.Control)
	assert.Equal(t, "requirements[1]", escErr.Field)
}

func TestBuildKeepsDirectionMarks(t *testing.T) {
	fw := &control.Framework{ID: "fw", Controls: []*control.Control{
		{ID: "he.1", Name: "בקרה‏", RiskLevel: control.RiskLow},
	}}

	v, err := Build(fw, ident.Python, pythonKinds)
	require.NoError(t, err)
	assert.Equal(t, []string{"he.1: בקרה‏"}, v.Controls[0].Summary)
	assert.Equal(t, `"בקרה\u200f"`, v.Controls[0].NameLit)
}
