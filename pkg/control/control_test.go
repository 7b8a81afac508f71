package control

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluohq/compliancegen/pkg/errs"
)

func valid() *Framework {
	return &Framework{
		ID:   "iso-27001",
		Name: "ISO 27001",
		Controls: []*Control{
			{ID: "A.5.1", Name: "Policies", RiskLevel: RiskMedium},
			{ID: "A.8.2", Name: "Privileged access", RiskLevel: RiskHigh, EvidenceTypes: []EvidenceType{EvidenceLog}},
		},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, valid().Validate())

	tests := []struct {
		name    string
		mutate  func(fw *Framework)
		control string
		missing bool
	}{
		{"missing framework id", func(fw *Framework) { fw.ID = "" }, "", true},
		{"bad framework id", func(fw *Framework) { fw.ID = "1so" }, "", false},
		{"invalid utf8 name", func(fw *Framework) { fw.Name = "\xff" }, "", false},
		{"nil control", func(fw *Framework) { fw.Controls[1] = nil }, "", false},
		{"missing control id", func(fw *Framework) { fw.Controls[1].ID = "" }, "", true},
		{"duplicate control id", func(fw *Framework) { fw.Controls[1].ID = "A.5.1" }, "A.5.1", false},
		{"missing name", func(fw *Framework) { fw.Controls[0].Name = "" }, "A.5.1", true},
		{"missing risk level", func(fw *Framework) { fw.Controls[0].RiskLevel = "" }, "A.5.1", true},
		{"unknown risk level", func(fw *Framework) { fw.Controls[0].RiskLevel = "SEVERE" }, "A.5.1", false},
		{"unknown evidence type", func(fw *Framework) { fw.Controls[1].EvidenceTypes = []EvidenceType{"VIDEO"} }, "A.8.2", false},
		{"invalid utf8 requirement", func(fw *Framework) { fw.Controls[1].Requirements = []string{"ok", "\xc3"} }, "A.8.2", false},
		{"unencodable metadata", func(fw *Framework) {
			fw.Controls[0].Metadata = map[string]interface{}{"f": func() {}}
		}, "A.5.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fw := valid()
			tt.mutate(fw)

			err := fw.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrInvalidInput), "%v", err)

			var inputErr *errs.InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.control, inputErr.Control)

			var missing *errs.ErrMissingValue
			assert.Equal(t, tt.missing, errors.As(err, &missing), "%v", err)
		})
	}
}

func TestEvidenceSet(t *testing.T) {
	c := &Control{EvidenceTypes: []EvidenceType{EvidenceLog, EvidencePolicy, EvidenceAuditTrail, EvidenceLog}}
	assert.Equal(t, []EvidenceType{EvidenceAuditTrail, EvidenceLog, EvidencePolicy}, c.EvidenceSet())

	assert.Empty(t, (&Control{}).EvidenceSet())
}

func TestMetadataJSON(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
		expected string
	}{
		{"empty", nil, "{}"},
		{"sorted keys", map[string]interface{}{"b": 1, "a": "<x>"}, `{"a":"<x>","b":1}`},
		{"nested", map[string]interface{}{
			"refs": []interface{}{map[interface{}]interface{}{"z": true, 1: "one"}},
		}, `{"refs":[{"1":"one","z":true}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := (&Control{Metadata: tt.metadata}).MetadataJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s)
		})
	}
}

func TestFrameworkNames(t *testing.T) {
	fw := valid()

	assert.Equal(t, "ISO_27001", fw.Symbol())
	assert.Equal(t, "iso_27001", fw.Lower())
	assert.Equal(t, "ISO 27001", fw.DisplayName())
	assert.Equal(t, []string{"A.5.1", "A.8.2"}, fw.ControlIDs())

	fw.Name = ""
	assert.Equal(t, "iso-27001", fw.DisplayName())
}
