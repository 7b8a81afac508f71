package java

import (
	"github.com/fluohq/compliancegen/pkg/escape"
	"github.com/fluohq/compliancegen/pkg/generator"
)

var enumTemplate = generator.NewTemplate("enum", escape.JavaDoc, `
// {{ header }}

package {{ .Package }};

{{ comment "" .Doc }}
public enum {{ .Name }} {
{{- range $i, $v := .Values }}
    {{ $v }}{{ if eq (add1 $i) (len $.Values) }};{{ else }},{{ end }}
{{- end }}
}
`[1:])

var redactionTemplate = generator.NewTemplate("redaction", escape.JavaDoc, `
// {{ header }}

package {{ .Package }};

import java.lang.annotation.Documented;
import java.lang.annotation.ElementType;
import java.lang.annotation.Retention;
import java.lang.annotation.RetentionPolicy;
import java.lang.annotation.Target;

{{ comment "" .Doc }}
@Documented
@Retention(RetentionPolicy.RUNTIME)
@Target({ElementType.FIELD, ElementType.PARAMETER, ElementType.METHOD, ElementType.RECORD_COMPONENT})
public @interface {{ .Name }} {
    /**
     * How the value is redacted.
     */
    RedactionStrategy {{ .Member }}() default RedactionStrategy.{{ .Strategy }};
{{- if .Preserve }}

    /**
     * Number of leading characters kept by {@code TRUNCATE}.
     */
    int preserveLength() default 0;
{{- end }}
}
`[1:])

var spanTemplate = generator.NewTemplate("span", escape.JavaDoc, `
// {{ header }}

package {{ .Package }};

import java.util.Map;

/**
 * Immutable record of one call that produced compliance evidence.
 * <p>
 * Attribute names follow {@link Attributes}.
 */
public record EvidenceSpan(
        String framework,
        String control,
        EvidenceType evidenceType,
        String result,
        long durationMs,
        String error,
        Map<String, String> inputs,
        Map<String, String> outputs) {

    public EvidenceSpan {
        inputs = inputs == null ? Map.of() : Map.copyOf(inputs);
        outputs = outputs == null ? Map.of() : Map.copyOf(outputs);
    }

    /**
     * Reports whether the call succeeded.
     */
    public boolean succeeded() {
        return Attributes.RESULT_SUCCESS.equals(result);
    }
}
`[1:])

var definitionTemplate = generator.NewTemplate("definition", escape.JavaDoc, `
// {{ header }}

package {{ .Package }};

import java.util.List;

/**
 * Documentation of one compliance control.
 * <p>
 * {@code metadata} is the metadata of the control as canonical JSON.
 */
public record ControlDefinition(
        String framework,
        String id,
        String name,
        String category,
        RiskLevel riskLevel,
        String description,
        String implementationGuidance,
        List<String> requirements,
        List<String> testingProcedures,
        List<EvidenceType> evidenceTypes,
        List<String> canonicalObjectives,
        String metadata) {

    public ControlDefinition {
        requirements = List.copyOf(requirements);
        testingProcedures = List.copyOf(testingProcedures);
        evidenceTypes = List.copyOf(evidenceTypes);
        canonicalObjectives = List.copyOf(canonicalObjectives);
    }
}
`[1:])

var attributesTemplate = generator.NewTemplate("attributes", escape.JavaDoc, `
// {{ header }}

package {{ .Package }};

/**
 * Span attribute names of compliance evidence.
 */
public final class Attributes {
{{- range .Attributes }}
{{ comment "    " .Doc }}
    public static final String {{ .Name }} = {{ .Value }};
{{ end }}
    /**
     * Value of {@link #RESULT} for a call that succeeded.
     */
    public static final String RESULT_SUCCESS = {{ .Success }};

    /**
     * Value of {@link #RESULT} for a call that failed.
     */
    public static final String RESULT_FAILURE = {{ .Failure }};

    private Attributes() {
    }
}
`[1:])

var controlsTemplate = generator.NewTemplate("controls", escape.JavaDoc, `
// {{ header }}

package {{ .Package }};

{{ doc "" .Framework.Doc }}
public enum {{ .Framework.Symbol }}Controls {
{{- range $i, $c := .Framework.Controls }}
{{ doc "    " $c.Summary }}
    {{ $c.Ident }}({{ $c.IDLit }}){{ if eq (add1 $i) (len $.Framework.Controls) }};{{ else }},{{ end }}
{{- else }}
    ;
{{- end }}

    /**
     * Id of the framework.
     */
    public static final String FRAMEWORK = {{ .Framework.IDLit }};

    private final String id;

    {{ .Framework.Symbol }}Controls(String id) {
        this.id = id;
    }

    /**
     * Returns the control id exactly as defined.
     */
    public String id() {
        return id;
    }

    /**
     * Returns the control with the given id, or {@code null}.
     */
    public static {{ .Framework.Symbol }}Controls fromId(String id) {
        for ({{ .Framework.Symbol }}Controls c : values()) {
            if (c.id.equals(id)) {
                return c;
            }
        }
        return null;
    }

    @Override
    public String toString() {
        return id;
    }
}
`[1:])

var evidenceTemplate = generator.NewTemplate("evidence", escape.JavaDoc, `
// {{ header }}

package {{ .Package }};

import java.lang.annotation.Documented;
import java.lang.annotation.ElementType;
import java.lang.annotation.Retention;
import java.lang.annotation.RetentionPolicy;
import java.lang.annotation.Target;

import {{ .EvidencePackage }}.EvidenceType;

{{ doc "" .MarkerDoc }}
@Documented
@Retention(RetentionPolicy.RUNTIME)
@Target({ElementType.METHOD, ElementType.TYPE})
public @interface {{ .Framework.Symbol }}Evidence {
    /**
     * The control the evidence supports.
     */
    {{ .Framework.Symbol }}Controls control();

    /**
     * Kind of evidence produced.
     */
    EvidenceType evidenceType() default EvidenceType.AUDIT_TRAIL;

    /**
     * What the evidence shows.
     */
    String description() default "";
}
`[1:])

var modelTemplate = generator.NewTemplate("model", escape.JavaDoc, `
// {{ header }}

package {{ .Package }};

import {{ .EvidencePackage }}.ControlDefinition;
import {{ .EvidencePackage }}.EvidenceType;
import {{ .EvidencePackage }}.RiskLevel;

{{ doc "" .Control.Doc }}
public final class {{ .Control.Ident }} {
    /**
     * Definition of the control.
     */
    public static final ControlDefinition DEFINITION = new ControlDefinition(
            {{ .Framework.IDLit }},
            {{ .Control.IDLit }},
            {{ .Control.NameLit }},
            {{ .Control.CategoryLit }},
            RiskLevel.{{ .Control.RiskLevel }},
            {{ .Control.DescriptionLit }},
            {{ .Control.GuidanceLit }},
            java.util.List.of({{ join ", " .Control.RequirementLits }}),
            java.util.List.of({{ join ", " .Control.ProcedureLits }}),
            java.util.List.of({{ range $i, $e := .Control.EvidenceTypes }}{{ if $i }}, {{ end }}EvidenceType.{{ $e }}{{ end }}),
            java.util.List.of({{ join ", " .Control.ObjectiveLits }}),
            {{ .Control.MetadataLit }});

    private {{ .Control.Ident }}() {
    }
}
`[1:])

var definitionsTemplate = generator.NewTemplate("definitions", escape.JavaDoc, `
// {{ header }}

package {{ .Package }};

import {{ .EvidencePackage }}.ControlDefinition;

{{ doc "" .Framework.Doc }}
public final class {{ .Framework.Symbol }}Definitions {
    /**
     * Every control definition, in definition order.
     */
    public static final java.util.List<ControlDefinition> ALL = java.util.List.of(
{{- range $i, $c := .Framework.Controls }}
            {{ $c.Ident }}.DEFINITION{{ if ne (add1 $i) (len $.Framework.Controls) }},{{ end }}
{{- end }});

    private {{ .Framework.Symbol }}Definitions() {
    }

    /**
     * Returns the definition of the control with the given id, or {@code null}.
     */
    public static ControlDefinition byId(String id) {
        for (ControlDefinition d : ALL) {
            if (d.id().equals(id)) {
                return d;
            }
        }
        return null;
    }
}
`[1:])
