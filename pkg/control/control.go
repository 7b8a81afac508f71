// Package control is the canonical in-memory model of compliance
// frameworks and their controls.
//
// Records are loaded once per generation run and are treated as
// immutable afterwards; renderers only read them.
package control

import (
	"fmt"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// RiskLevel of a control.
type RiskLevel string

// Risk levels
const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskLevels lists every risk level in ascending order.
var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskCritical}

// Valid reports whether r is a known risk level.
func (r RiskLevel) Valid() bool {
	for _, l := range RiskLevels {
		if l == r {
			return true
		}
	}
	return false
}

// EvidenceType is the kind of evidence a control expects.
type EvidenceType string

// Evidence types
const (
	EvidenceAuditTrail    EvidenceType = "AUDIT_TRAIL"
	EvidenceLog           EvidenceType = "LOG"
	EvidenceMetric        EvidenceType = "METRIC"
	EvidenceConfig        EvidenceType = "CONFIG"
	EvidenceTest          EvidenceType = "TEST"
	EvidenceScan          EvidenceType = "SCAN"
	EvidenceCertificate   EvidenceType = "CERTIFICATE"
	EvidenceDocumentation EvidenceType = "DOCUMENTATION"
	EvidenceScreenshot    EvidenceType = "SCREENSHOT"
	EvidenceCodeReview    EvidenceType = "CODE_REVIEW"
	EvidenceAlert         EvidenceType = "ALERT"
	EvidenceReport        EvidenceType = "REPORT"
	EvidenceApproval      EvidenceType = "APPROVAL"
	EvidencePolicy        EvidenceType = "POLICY"
)

// EvidenceTypes lists every evidence type in canonical order.
// The shared evidence-kind enumeration of every target is emitted
// in this order.
var EvidenceTypes = []EvidenceType{
	EvidenceAuditTrail,
	EvidenceLog,
	EvidenceMetric,
	EvidenceConfig,
	EvidenceTest,
	EvidenceScan,
	EvidenceCertificate,
	EvidenceDocumentation,
	EvidenceScreenshot,
	EvidenceCodeReview,
	EvidenceAlert,
	EvidenceReport,
	EvidenceApproval,
	EvidencePolicy,
}

func (e EvidenceType) rank() int {
	for i, t := range EvidenceTypes {
		if t == e {
			return i
		}
	}
	return -1
}

// Valid reports whether e is a known evidence type.
func (e EvidenceType) Valid() bool {
	return e.rank() >= 0
}

// RedactionStrategy says how a marked field is treated before it
// appears in an evidence record.
type RedactionStrategy string

// Redaction strategies
const (
	RedactExclude  RedactionStrategy = "EXCLUDE"
	RedactHash     RedactionStrategy = "HASH"
	RedactTruncate RedactionStrategy = "TRUNCATE"
	RedactEncrypt  RedactionStrategy = "ENCRYPT"
)

// RedactionStrategies lists every redaction strategy in canonical order.
var RedactionStrategies = []RedactionStrategy{RedactExclude, RedactHash, RedactTruncate, RedactEncrypt}

// Control is one compliance requirement.
type Control struct {
	ID                     string                 `json:"id" yaml:"id" toml:"id" description:"Unique id of the control within its framework, e.g. Art.5(1)(f)"`
	Name                   string                 `json:"name" yaml:"name" toml:"name" description:"Short name of the control"`
	Category               string                 `json:"category,omitempty" yaml:"category,omitempty" toml:"category" description:"Category the control belongs to"`
	Description            string                 `json:"description,omitempty" yaml:"description,omitempty" toml:"description" description:"Description of the control"`
	Requirements           []string               `json:"requirements,omitempty" yaml:"requirements,omitempty" toml:"requirements" description:"Requirements to satisfy"`
	EvidenceTypes          []EvidenceType         `json:"evidenceTypes,omitempty" yaml:"evidenceTypes,omitempty" toml:"evidenceTypes" description:"Kinds of evidence the control expects"`
	RiskLevel              RiskLevel              `json:"riskLevel" yaml:"riskLevel" toml:"riskLevel" description:"Risk of not satisfying the control, one of LOW, MEDIUM, HIGH or CRITICAL"`
	ImplementationGuidance string                 `json:"implementationGuidance,omitempty" yaml:"implementationGuidance,omitempty" toml:"implementationGuidance" description:"How to implement the control"`
	TestingProcedures      []string               `json:"testingProcedures,omitempty" yaml:"testingProcedures,omitempty" toml:"testingProcedures" description:"How to test the control"`
	CanonicalObjectives    []string               `json:"canonicalObjectives,omitempty" yaml:"canonicalObjectives,omitempty" toml:"canonicalObjectives" description:"Objectives the control serves"`
	Metadata               map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata" description:"Arbitrary data passed through to the generated definitions as JSON"`
}

// EvidenceSet returns the control's evidence types deduplicated and
// in canonical order. Unknown types sort last, by name.
func (c *Control) EvidenceSet() []EvidenceType {
	seen := make(map[EvidenceType]bool, len(c.EvidenceTypes))
	set := make([]EvidenceType, 0, len(c.EvidenceTypes))

	for _, e := range c.EvidenceTypes {
		if seen[e] {
			continue
		}
		seen[e] = true
		set = append(set, e)
	}

	sort.SliceStable(set, func(i, j int) bool {
		ri, rj := set[i].rank(), set[j].rank()
		if ri < 0 || rj < 0 {
			if ri == rj {
				return set[i] < set[j]
			}
			return rj < 0
		}
		return ri < rj
	})

	return set
}

// canonicalJSON sorts map keys, so equal metadata always encodes to
// the same bytes.
var canonicalJSON = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// MetadataJSON returns the metadata bag as canonical JSON,
// or "{}" if there is none.
func (c *Control) MetadataJSON() (string, error) {
	if len(c.Metadata) == 0 {
		return "{}", nil
	}

	b, err := canonicalJSON.Marshal(normalizeMetadata(c.Metadata))
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// normalizeMetadata turns the map[interface{}]interface{} values some
// decoders produce into string-keyed maps.
func normalizeMetadata(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = normalizeMetadata(item)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeMetadata(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeMetadata(item)
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeMetadata(item)
		}
		return out
	default:
		return v
	}
}

// Framework is a named, ordered collection of controls.
type Framework struct {
	ID          string     `json:"id" yaml:"id" toml:"id" description:"Id of the framework, e.g. gdpr or iso-27001"`
	Name        string     `json:"name" yaml:"name" toml:"name" description:"Display name of the framework"`
	Version     string     `json:"version,omitempty" yaml:"version,omitempty" toml:"version" description:"Version of the framework"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" toml:"description" description:"Description of the framework"`
	Controls    []*Control `json:"controls" yaml:"controls" toml:"controls" description:"Controls of the framework, in order"`
}

// Symbol is the framework's name form for type names, e.g. "GDPR" or "ISO_27001".
func (f *Framework) Symbol() string {
	return strings.ToUpper(strings.ReplaceAll(f.ID, "-", "_"))
}

// Lower is the framework's name form for packages and modules, e.g. "gdpr" or "iso_27001".
func (f *Framework) Lower() string {
	return strings.ToLower(strings.ReplaceAll(f.ID, "-", "_"))
}

// DisplayName returns the name, or the id if the name is empty.
func (f *Framework) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.ID
}

// ControlIDs returns the ids of all controls in order.
func (f *Framework) ControlIDs() []string {
	ids := make([]string, 0, len(f.Controls))
	for _, c := range f.Controls {
		ids = append(ids, c.ID)
	}
	return ids
}
