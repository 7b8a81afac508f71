package python

import (
	"github.com/fluohq/compliancegen/pkg/escape"
	"github.com/fluohq/compliancegen/pkg/generator"
)

var packageTemplate = generator.NewTemplate("package", escape.PythonComment, `
# {{ header }}
"""{{ .Doc }}"""
`[1:])

var evidenceTemplate = generator.NewTemplate("evidence", escape.PythonComment, `
# {{ header }}
"""Compliance primitives shared by every framework."""

from dataclasses import dataclass, field
from enum import Enum
from types import MappingProxyType
from typing import Mapping, Optional, Tuple
{{ range .Enums }}

class {{ .Name }}(str, Enum):
    """{{ .Doc }}"""
{{ range .Values }}
    {{ . }} = "{{ . }}"
{{- end }}
{{ end }}
{{ range .Attributes }}
{{ .Name }} = {{ .Value }}
"""{{ .Doc }}"""
{{ end }}
RESULT_SUCCESS = {{ .Success }}
"""Value of ATTR_RESULT for a call that succeeded."""

RESULT_FAILURE = {{ .Failure }}
"""Value of ATTR_RESULT for a call that failed."""


@dataclass(frozen=True)
class Redact:
    """Marks a value that is redacted in evidence."""

    strategy: RedactionStrategy = RedactionStrategy.EXCLUDE
    preserve_length: int = 0
    """Number of leading characters kept by TRUNCATE."""


@dataclass(frozen=True)
class PII:
    """Marks personally identifiable information, hashed in evidence."""

    redact: RedactionStrategy = RedactionStrategy.HASH


@dataclass(frozen=True)
class Sensitive:
    """Marks a sensitive value, excluded from evidence."""

    redact: RedactionStrategy = RedactionStrategy.EXCLUDE


@dataclass(frozen=True)
class EvidenceMarker:
    """Evidence a function produces, attached by the framework decorators."""

    framework: str
    control: str
    evidence_type: EvidenceType = EvidenceType.AUDIT_TRAIL
    description: str = ""


@dataclass(frozen=True)
class EvidenceSpan:
    """Immutable record of one call that produced compliance evidence."""

    framework: str
    control: str
    evidence_type: EvidenceType
    result: str
    duration_ms: int
    error: Optional[str] = None
    inputs: Mapping[str, str] = field(default_factory=dict)
    outputs: Mapping[str, str] = field(default_factory=dict)

    def __post_init__(self) -> None:
        object.__setattr__(self, "inputs", MappingProxyType(dict(self.inputs)))
        object.__setattr__(self, "outputs", MappingProxyType(dict(self.outputs)))

    @property
    def succeeded(self) -> bool:
        """Reports whether the call succeeded."""
        return self.result == RESULT_SUCCESS


@dataclass(frozen=True)
class ControlDefinition:
    """Documentation of one compliance control."""

    framework: str
    id: str
    name: str
    category: str
    risk_level: RiskLevel
    description: str
    implementation_guidance: str
    requirements: Tuple[str, ...]
    testing_procedures: Tuple[str, ...]
    evidence_types: Tuple[EvidenceType, ...]
    canonical_objectives: Tuple[str, ...]
    metadata: str
    """Metadata of the control as canonical JSON."""

    def __post_init__(self) -> None:
        for name in ("requirements", "testing_procedures", "evidence_types", "canonical_objectives"):
            object.__setattr__(self, name, tuple(getattr(self, name)))
`[1:])

var annotationsTemplate = generator.NewTemplate("annotations", escape.PythonComment, `
# {{ header }}
{{ .ModuleDoc }}

import functools
import inspect
from typing import Any, Callable, Optional, Tuple, TypeVar

from ..evidence import EvidenceMarker, EvidenceType

F = TypeVar("F", bound=Callable[..., Any])

FRAMEWORK = {{ .Framework.IDLit }}


class {{ .Framework.Symbol }}Controls:
    {{ .ClassDoc }}
{{ range .Controls }}
    {{ .Ident }} = {{ .IDLit }}
    {{ .SummaryDoc }}
{{ end }}
    ALL: Tuple[str, ...] = (
{{- range .Controls }}
        {{ .Ident }},
{{- end }}
    )

    @classmethod
    def from_id(cls, control_id: str) -> Optional[str]:
        """Returns the control with the given id, or None."""
        return control_id if control_id in cls.ALL else None


def {{ .Decorator }}(
    control: str,
    evidence_type: EvidenceType = EvidenceType.AUDIT_TRAIL,
    description: str = "",
) -> Callable[[F], F]:
    {{ .DecoratorDoc }}
    if {{ .Framework.Symbol }}Controls.from_id(control) is None:
        raise ValueError("unknown control of " + FRAMEWORK + ": " + repr(control))

    marker = EvidenceMarker(FRAMEWORK, control, EvidenceType(evidence_type), description)

    def decorate(fn: F) -> F:
        wrapper: Any
        if inspect.iscoroutinefunction(fn):

            @functools.wraps(fn)
            async def async_wrapper(*args: Any, **kwargs: Any) -> Any:
                return await fn(*args, **kwargs)

            wrapper = async_wrapper
        else:

            @functools.wraps(fn)
            def sync_wrapper(*args: Any, **kwargs: Any) -> Any:
                return fn(*args, **kwargs)

            wrapper = sync_wrapper

        wrapper.__compliance_evidence__ = tuple(getattr(fn, "__compliance_evidence__", ())) + (marker,)
        return wrapper  # type: ignore[return-value]

    return decorate
`[1:])

var modelsTemplate = generator.NewTemplate("models", escape.PythonComment, `
# {{ header }}
{{ .ModuleDoc }}

from typing import Dict, Optional, Tuple

from ..evidence import ControlDefinition, EvidenceType, RiskLevel

FRAMEWORK = {{ .Framework.IDLit }}
{{ range .Framework.Controls }}

{{ doc "" .Doc }}
{{ .Ident }} = ControlDefinition(
    framework=FRAMEWORK,
    id={{ .IDLit }},
    name={{ .NameLit }},
    category={{ .CategoryLit }},
    risk_level=RiskLevel.{{ .RiskLevel }},
    description={{ .DescriptionLit }},
    implementation_guidance={{ .GuidanceLit }},
    requirements=({{ range .RequirementLits }}
        {{ . }},{{ end }}
    ),
    testing_procedures=({{ range .ProcedureLits }}
        {{ . }},{{ end }}
    ),
    evidence_types=({{ range .EvidenceTypes }}
        EvidenceType.{{ . }},{{ end }}
    ),
    canonical_objectives=({{ range .ObjectiveLits }}
        {{ . }},{{ end }}
    ),
    metadata={{ .MetadataLit }},
)
{{ end }}

ALL: Tuple[ControlDefinition, ...] = (
{{- range .Framework.Controls }}
    {{ .Ident }},
{{- end }}
)
"""Every control definition, in definition order."""

_BY_ID: Dict[str, ControlDefinition] = {d.id: d for d in ALL}


def by_id(control_id: str) -> Optional[ControlDefinition]:
    """Returns the definition of the control with the given id, or None."""
    return _BY_ID.get(control_id)
`[1:])
