// Package check runs the target toolchains over generated bundles.
//
// A bundle that does not parse or type-check is a failed generation,
// never a warning. Checkers report the toolchain's output verbatim in
// an *errs.CheckError.
package check

import (
	"context"

	"github.com/fluohq/compliancegen/pkg/artifact"
)

// Checker validates a generated bundle.
type Checker interface {
	// Name of the checker, as shown in errors and logs.
	Name() string

	// Check validates the bundle. Artifacts the checker does not
	// understand are ignored.
	Check(ctx context.Context, artifacts []artifact.Artifact) error
}

// Nop accepts everything.
type Nop struct{}

// Name implements Checker
func (Nop) Name() string { return "none" }

// Check implements Checker
func (Nop) Check(context.Context, []artifact.Artifact) error { return nil }
