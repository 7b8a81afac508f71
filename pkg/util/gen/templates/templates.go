// Package templates holds Go code snippets of the generated packages,
// for use with gen.Template.
package templates

import (
	"github.com/dave/jennifer/jen"

	"github.com/fluohq/compliancegen/pkg/util/gen"
)

// EvidenceSpan is the immutable span record of the evidence package.
//
// Subst values:
//
// copyMap: name of the map copy helper
var EvidenceSpan = `
// EvidenceSpan is an immutable record of one call that produced
// compliance evidence. Attribute names follow the Attr constants.
type EvidenceSpan struct {
	framework    string
	control      string
	evidenceType EvidenceType
	result       string
	durationMs   int64
	err          string
	inputs       map[string]string
	outputs      map[string]string
}

// NewEvidenceSpan creates a span, copying inputs and outputs.
func NewEvidenceSpan(
	framework, control string,
	evidenceType EvidenceType,
	result string,
	durationMs int64,
	err string,
	inputs, outputs map[string]string,
) EvidenceSpan {
	return EvidenceSpan{
		framework:    framework,
		control:      control,
		evidenceType: evidenceType,
		result:       result,
		durationMs:   durationMs,
		err:          err,
		inputs:       {{ .copyMap }}(inputs),
		outputs:      {{ .copyMap }}(outputs),
	}
}

// Framework returns the framework id.
func (s EvidenceSpan) Framework() string { return s.framework }

// Control returns the control id.
func (s EvidenceSpan) Control() string { return s.control }

// EvidenceType returns the kind of evidence recorded.
func (s EvidenceSpan) EvidenceType() EvidenceType { return s.evidenceType }

// Result returns ResultSuccess or ResultFailure.
func (s EvidenceSpan) Result() string { return s.result }

// DurationMs returns the duration of the call in milliseconds.
func (s EvidenceSpan) DurationMs() int64 { return s.durationMs }

// Err returns the error message of a failed call.
func (s EvidenceSpan) Err() string { return s.err }

// Inputs returns a copy of the recorded inputs.
func (s EvidenceSpan) Inputs() map[string]string { return {{ .copyMap }}(s.inputs) }

// Outputs returns a copy of the recorded outputs.
func (s EvidenceSpan) Outputs() map[string]string { return {{ .copyMap }}(s.outputs) }

// Succeeded reports whether the call succeeded.
func (s EvidenceSpan) Succeeded() bool { return s.result == ResultSuccess }

func {{ .copyMap }}(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}`[1:]

// FieldRedaction reads the redaction of a struct field from its tag.
//
// Subst values:
//
// structField: reflect.StructField
// split: strings.Split
// cut: strings.Cut
// trim: strings.TrimSpace
// atoi: strconv.Atoi
var FieldRedaction = `
// Redact describes how a struct field is redacted, as written in its
// tag, e.g. ` + "`" + `compliance:"redact=TRUNCATE,preserve=4"` + "`" + `.
type Redact struct {
	Strategy       RedactionStrategy
	PreserveLength int
}

// FieldRedaction reads the compliance tag of a struct field. The tag
// values pii and sensitive select the strategies of PII and Sensitive.
func FieldRedaction(field {{ .structField }}) (Redact, bool) {
	tag, ok := field.Tag.Lookup(TagKey)
	if !ok {
		return Redact{}, false
	}

	r := Redact{Strategy: RedactExclude}
	for _, part := range {{ .split }}(tag, ",") {
		key, value, _ := {{ .cut }}({{ .trim }}(part), "=")
		switch key {
		case "pii":
			r.Strategy = RedactHash
		case "sensitive":
			r.Strategy = RedactExclude
		case "redact":
			r.Strategy = RedactionStrategy(value)
		case "preserve":
			if n, err := {{ .atoi }}(value); err == nil {
				r.PreserveLength = n
			}
		}
	}

	return r, true
}`[1:]

// Lookup finds a control id of a marker package.
var Lookup = `
// Lookup returns the control with the given id.
func Lookup(id string) (ControlID, bool) {
	for _, c := range Controls {
		if string(c) == id {
			return c, true
		}
	}
	return "", false
}`[1:]

// ContextEvidence attaches an Evidence marker to a context.
//
// Subst values:
//
// context: context.Context
// withValue: context.WithValue
// default: the default evidence type
var ContextEvidence = `
type evidenceKey struct{}

// WithEvidence returns a context marking the current call as producing
// evidence e. An empty evidence type defaults to audit trail.
func WithEvidence(ctx {{ .context }}, e Evidence) {{ .context }} {
	if e.EvidenceType == "" {
		e.EvidenceType = {{ .default }}
	}
	return {{ .withValue }}(ctx, evidenceKey{}, e)
}

// EvidenceFromContext returns the marker set by WithEvidence.
func EvidenceFromContext(ctx {{ .context }}) (Evidence, bool) {
	e, ok := ctx.Value(evidenceKey{}).(Evidence)
	return e, ok
}`[1:]

// ByID finds a definition of a models package.
//
// Subst values:
//
// definition: evidence.ControlDefinition
var ByID = `
// ByID returns the definition of the control with the given id.
func ByID(id string) ({{ .definition }}, bool) {
	for _, d := range All {
		if d.ID == id {
			return d, true
		}
	}
	return {{ .definition }}{}, false
}`[1:]

// Values are the usual substitutions of the snippets above.
func Values(evidencePath string) gen.Values {
	return gen.Values{
		"copyMap":     jen.Id("copyMap"),
		"structField": jen.Qual("reflect", "StructField"),
		"split":       jen.Qual("strings", "Split"),
		"cut":         jen.Qual("strings", "Cut"),
		"trim":        jen.Qual("strings", "TrimSpace"),
		"atoi":        jen.Qual("strconv", "Atoi"),
		"context":     jen.Qual("context", "Context"),
		"withValue":   jen.Qual("context", "WithValue"),
		"default":     gen.Qual(evidencePath, "EvidenceAuditTrail"),
		"definition":  gen.Qual(evidencePath, "ControlDefinition"),
	}
}
