package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds, usable with errors.Is.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrIdentifierCollision = errors.New("identifier collision")
	ErrEscape              = errors.New("unsafe text")
	ErrArtifactCollision   = errors.New("artifact collision")
	ErrCheckFailed         = errors.New("generated code check failed")
)

// ErrMissingValue is returned if a value is not given
type ErrMissingValue struct {
	// What is missing
	Kind string

	// Additional info
	Info []string
}

// ErrMissing creates a "missing" error
func ErrMissing(kind string, info ...string) *ErrMissingValue {
	return &ErrMissingValue{
		Kind: kind,
		Info: info,
	}
}

func (e *ErrMissingValue) Error() string {
	if len(e.Info) == 0 {
		return fmt.Sprintf(`%v is missing`, e.Kind)
	}
	return fmt.Sprintf(`%v is missing (%v)`, e.Kind, strings.Join(e.Info, ", "))
}

// InputError reports a framework definition that violates the control model.
type InputError struct {
	Framework string
	// Control is the offending control id, empty for framework-level problems.
	Control string
	Err     error
}

func (e *InputError) Error() string {
	if e.Control == "" {
		return fmt.Sprintf("framework %q: %v", e.Framework, e.Err)
	}
	return fmt.Sprintf("framework %q, control %q: %v", e.Framework, e.Control, e.Err)
}

func (e *InputError) Unwrap() []error { return []error{ErrInvalidInput, e.Err} }

// IdentifierCollisionError is returned when two distinct control ids
// sanitize to the same identifier.
type IdentifierCollisionError struct {
	Grammar    string
	Identifier string
	First      string
	Second     string
}

func (e *IdentifierCollisionError) Error() string {
	return fmt.Sprintf("%v: %q and %q both become %v identifier %q",
		ErrIdentifierCollision, e.First, e.Second, e.Grammar, e.Identifier)
}

func (e *IdentifierCollisionError) Unwrap() error { return ErrIdentifierCollision }

// EscapeError is returned when text cannot be represented safely
// in a literal or comment.
type EscapeError struct {
	// Kind of literal or comment the text was escaped for.
	Kind string
	// Control and Field are filled in by renderers.
	Control string
	Field   string
	// Offset is the byte offset of the offending sequence.
	Offset int
	Reason string
}

func (e *EscapeError) Error() string {
	where := ""
	if e.Control != "" {
		where = fmt.Sprintf("control %q field %v: ", e.Control, e.Field)
	}
	return fmt.Sprintf("%v%v: %v at byte %d cannot be represented in %v", where, ErrEscape, e.Reason, e.Offset, e.Kind)
}

func (e *EscapeError) Unwrap() error { return ErrEscape }

// ArtifactCollisionError is returned when two generation units produce
// the same path with different content, or two paths that only differ
// in case.
type ArtifactCollisionError struct {
	Path string
	// OtherPath is set when Path collides with it case-insensitively.
	OtherPath string
	First     string
	Second    string
}

func (e *ArtifactCollisionError) Error() string {
	if e.OtherPath != "" {
		return fmt.Sprintf("%v: %v and %v only differ in case (frameworks %q and %q)",
			ErrArtifactCollision, e.OtherPath, e.Path, e.First, e.Second)
	}
	return fmt.Sprintf("%v: %v is produced with different content by frameworks %q and %q",
		ErrArtifactCollision, e.Path, e.First, e.Second)
}

func (e *ArtifactCollisionError) Unwrap() error { return ErrArtifactCollision }

// CheckError carries the verbatim output of a target toolchain.
type CheckError struct {
	Checker string
	Output  string
	Err     error
}

func (e *CheckError) Error() string {
	msg := fmt.Sprintf("%v (%v)", ErrCheckFailed, e.Checker)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += "\n" + strings.TrimRight(e.Output, "\n")
	}
	return msg
}

func (e *CheckError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrCheckFailed}
	}
	return []error{ErrCheckFailed, e.Err}
}
