package typescript

import (
	"github.com/fluohq/compliancegen/pkg/escape"
	"github.com/fluohq/compliancegen/pkg/generator"
)

var evidenceTemplate = generator.NewTemplate("evidence", escape.JSDoc, `
// {{ header }}

/**
 * Compliance primitives shared by every framework.
 */
{{ range .Enums }}
{{ comment "" .Doc }}
export enum {{ .Name }} {
{{- range .Values }}
  {{ . }} = "{{ . }}",
{{- end }}
}
{{ end }}
{{- range .Attributes }}
{{ comment "" .Doc }}
export const {{ .Name }} = {{ .Value }};
{{ end }}
/**
 * Value of ATTR_RESULT for a call that succeeded.
 */
export const RESULT_SUCCESS = {{ .Success }};

/**
 * Value of ATTR_RESULT for a call that failed.
 */
export const RESULT_FAILURE = {{ .Failure }};

/**
 * Marks a value that is redacted in evidence.
 */
export interface Redact {
  readonly strategy: RedactionStrategy;
  /**
   * Number of leading characters kept by TRUNCATE.
   */
  readonly preserveLength?: number;
}

/**
 * Returns a redaction marker.
 */
export function redact(strategy: RedactionStrategy = RedactionStrategy.EXCLUDE, preserveLength = 0): Redact {
  return Object.freeze({ strategy, preserveLength });
}

/**
 * Marks personally identifiable information, hashed in evidence.
 */
export const PII: Redact = redact(RedactionStrategy.HASH);

/**
 * Marks a sensitive value, excluded from evidence.
 */
export const Sensitive: Redact = redact(RedactionStrategy.EXCLUDE);

/**
 * Evidence a method produces, attached by the framework decorators.
 */
export interface EvidenceMarker {
  readonly framework: string;
  readonly control: string;
  readonly evidenceType: EvidenceType;
  readonly description: string;
}

/**
 * Property holding the evidence markers of a decorated function.
 */
export const EVIDENCE: unique symbol = Symbol.for("compliance.evidence");

type Marked = { readonly [EVIDENCE]?: readonly EvidenceMarker[] };

/**
 * Returns the evidence markers attached to fn, outermost last.
 */
export function evidenceOf(fn: unknown): readonly EvidenceMarker[] {
  if (typeof fn !== "function") {
    return [];
  }
  return (fn as unknown as Marked)[EVIDENCE] ?? [];
}

/**
 * Attaches the markers of original followed by marker to wrapper.
 */
export function attachEvidence<T extends object>(wrapper: T, original: unknown, marker: EvidenceMarker): T {
  Object.defineProperty(wrapper, EVIDENCE, {
    value: Object.freeze([...evidenceOf(original), marker]),
    enumerable: false,
  });
  return wrapper;
}

/**
 * Immutable record of one call that produced compliance evidence.
 */
export interface EvidenceSpan {
  readonly framework: string;
  readonly control: string;
  readonly evidenceType: EvidenceType;
  readonly result: string;
  readonly durationMs: number;
  readonly error?: string;
  readonly inputs: Readonly<Record<string, string>>;
  readonly outputs: Readonly<Record<string, string>>;
}

/**
 * Returns a frozen copy of span.
 */
export function createEvidenceSpan(span: EvidenceSpan): EvidenceSpan {
  return Object.freeze({
    ...span,
    inputs: Object.freeze({ ...span.inputs }),
    outputs: Object.freeze({ ...span.outputs }),
  });
}

/**
 * Reports whether the call of span succeeded.
 */
export function succeeded(span: EvidenceSpan): boolean {
  return span.result === RESULT_SUCCESS;
}

/**
 * Documentation of one compliance control.
 */
export interface ControlDefinition {
  readonly framework: string;
  readonly id: string;
  readonly name: string;
  readonly category: string;
  readonly riskLevel: RiskLevel;
  readonly description: string;
  readonly implementationGuidance: string;
  readonly requirements: readonly string[];
  readonly testingProcedures: readonly string[];
  readonly evidenceTypes: readonly EvidenceType[];
  readonly canonicalObjectives: readonly string[];
  /**
   * Metadata of the control as canonical JSON.
   */
  readonly metadata: string;
}
`[1:])

var annotationsTemplate = generator.NewTemplate("annotations", escape.JSDoc, `
// {{ header }}

{{ doc "" .Framework.Doc }}
import { attachEvidence, EvidenceType, type EvidenceMarker } from "{{ .Evidence }}";

/**
 * Id of the framework.
 */
export const FRAMEWORK = {{ .Framework.IDLit }};

/**
 * Control ids by identifier.
 */
export const {{ .Framework.Symbol }}Controls = {
{{- range .Framework.Controls }}
{{ doc "  " .Summary }}
  {{ .Ident }}: {{ .IDLit }},
{{- end }}
} as const;

/**
 * A control id of the framework.
 */
export type {{ .Framework.Symbol }}Control = (typeof {{ .Framework.Symbol }}Controls)[keyof typeof {{ .Framework.Symbol }}Controls];

/**
 * Every control id, in definition order.
 */
export const {{ .Framework.Symbol }}_CONTROL_IDS: readonly {{ .Framework.Symbol }}Control[] = Object.freeze([
{{- range .Framework.Controls }}
  {{ $.Framework.Symbol }}Controls.{{ .Ident }},
{{- end }}
]);

/**
 * Reports whether id is a control id of the framework.
 */
export function is{{ .Framework.Symbol }}Control(id: string): id is {{ .Framework.Symbol }}Control {
  return ({{ .Framework.Symbol }}_CONTROL_IDS as readonly string[]).includes(id);
}

/**
 * Options of {{ .Framework.Symbol }}Evidence.
 */
export interface {{ .Framework.Symbol }}EvidenceOptions {
  readonly control: {{ .Framework.Symbol }}Control;
  readonly evidenceType?: EvidenceType;
  readonly description?: string;
}

{{ doc "" .MarkerDoc }}
export function {{ .Framework.Symbol }}Evidence(options: {{ .Framework.Symbol }}EvidenceOptions) {
  if (!is{{ .Framework.Symbol }}Control(options.control)) {
    throw new RangeError("unknown control of " + FRAMEWORK + ": " + JSON.stringify(options.control));
  }

  const marker: EvidenceMarker = Object.freeze({
    framework: FRAMEWORK,
    control: options.control,
    evidenceType: options.evidenceType ?? EvidenceType.AUDIT_TRAIL,
    description: options.description ?? "",
  });

  return function <This, Args extends unknown[], Return>(
    target: (this: This, ...args: Args) => Return,
    _context: ClassMethodDecoratorContext<This, (this: This, ...args: Args) => Return>,
  ): (this: This, ...args: Args) => Return {
    function wrapped(this: This, ...args: Args): Return {
      return target.apply(this, args);
    }
    return attachEvidence(wrapped, target, marker);
  };
}
`[1:])

var modelsTemplate = generator.NewTemplate("models", escape.JSDoc, `
// {{ header }}

{{ doc "" .Framework.Doc }}
import { EvidenceType, RiskLevel, type ControlDefinition } from "{{ .Evidence }}";

/**
 * Id of the framework.
 */
export const FRAMEWORK = {{ .Framework.IDLit }};
{{ range .Framework.Controls }}
{{ doc "" .Doc }}
export const {{ .Ident }}: ControlDefinition = Object.freeze({
  framework: FRAMEWORK,
  id: {{ .IDLit }},
  name: {{ .NameLit }},
  category: {{ .CategoryLit }},
  riskLevel: RiskLevel.{{ .RiskLevel }},
  description: {{ .DescriptionLit }},
  implementationGuidance: {{ .GuidanceLit }},
  requirements: Object.freeze([{{ join ", " .RequirementLits }}]),
  testingProcedures: Object.freeze([{{ join ", " .ProcedureLits }}]),
  evidenceTypes: Object.freeze([{{ range $i, $e := .EvidenceTypes }}{{ if $i }}, {{ end }}EvidenceType.{{ $e }}{{ end }}]),
  canonicalObjectives: Object.freeze([{{ join ", " .ObjectiveLits }}]),
  metadata: {{ .MetadataLit }},
});
{{ end }}
/**
 * Every control definition, in definition order.
 */
export const ALL: readonly ControlDefinition[] = Object.freeze([
{{- range .Framework.Controls }}
  {{ .Ident }},
{{- end }}
]);

/**
 * Returns the definition of the control with the given id.
 */
export function byId(id: string): ControlDefinition | undefined {
  return ALL.find((d) => d.id === id);
}
`[1:])
