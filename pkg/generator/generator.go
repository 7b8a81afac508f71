package generator

import (
	"context"
	"fmt"
	"io"
	"path"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/valyala/fasttemplate"

	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/check"
	"github.com/fluohq/compliancegen/pkg/control"
)

// Generator renders frameworks into source files of one ecosystem.
type Generator interface {
	// The name of the generator.
	Name() string

	// A short description of the generator.
	Description() string

	// Targets returns the targets the generator supports along with their summaries.
	Targets() map[string]string

	// DefaultOptions Returns the default options of the generator, or nil if it has none.
	DefaultOptions() interface{}

	// Generate renders one target for a validated framework.
	// The same framework and options always produce the same artifacts.
	Generate(ctx context.Context, options interface{}, fw *control.Framework, target string) ([]artifact.Artifact, error)

	// Checker returns the toolchain check for the generator's output.
	Checker(options interface{}) (check.Checker, error)
}

// Targets every generator supports.
const (
	// TargetEvidence are the primitives shared by every framework.
	TargetEvidence = "evidence"
	// TargetAnnotations are the evidence marker and the control id registry.
	TargetAnnotations = "annotations"
	// TargetModels are the documentation records, one per control.
	TargetModels = "models"
)

// AllTargets in generation order.
var AllTargets = []string{TargetEvidence, TargetAnnotations, TargetModels}

// Header is the first line of every generated file.
const Header = "Code generated by compliancegen. DO NOT EDIT."

// Attribute is a span attribute name surrounding code records evidence with.
type Attribute struct {
	// Key is the snake_case name constants are derived from.
	Key   string
	Value string
	Doc   string
}

// Attributes are the naming convention embedded in the shared primitives.
var Attributes = []Attribute{
	{"framework", "compliance.framework", "Framework id of the evidence."},
	{"control", "compliance.control", "Control id of the evidence."},
	{"evidence_type", "compliance.evidence_type", "Kind of evidence recorded."},
	{"result", "compliance.result", "Outcome of the call, success or failure."},
	{"duration_ms", "compliance.duration_ms", "Duration of the call in milliseconds."},
	{"error", "compliance.error", "Error message of a failed call."},
	{"input_prefix", "input.", "Prefix of recorded call inputs."},
	{"output_prefix", "output.", "Prefix of recorded call outputs."},
}

// Values of the result attribute.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// DecodeOptions decodes raw options into the defaults of g.
func DecodeOptions(g Generator, options interface{}) (interface{}, error) {
	opts := g.DefaultOptions()
	if options == nil || opts == nil {
		return opts, nil
	}

	if reflect.TypeOf(options) == reflect.TypeOf(opts) {
		return options, nil
	}

	if err := mapstructure.Decode(options, opts); err != nil {
		return nil, fmt.Errorf("invalid options for %v: %w", g.Name(), err)
	}

	return opts, nil
}

// UnsupportedTarget is returned for targets a generator does not know.
func UnsupportedTarget(g Generator, target string) error {
	return fmt.Errorf("target %v is not supported by %v", target, g.Name())
}

// ExpandPattern fills a namespace pattern such as "models/{framework}".
// Known tags are {framework} (lower case id), {FRAMEWORK} (symbol) and
// those in extra, which take precedence.
func ExpandPattern(pattern string, fw *control.Framework, extra map[string]string) (string, error) {
	return fasttemplate.ExecuteFuncStringWithErr(pattern, "{", "}", func(w io.Writer, tag string) (int, error) {
		if v, ok := extra[tag]; ok {
			return w.Write([]byte(v))
		}

		switch tag {
		case "framework":
			return w.Write([]byte(fw.Lower()))
		case "FRAMEWORK":
			return w.Write([]byte(fw.Symbol()))
		}

		return 0, fmt.Errorf("unknown tag {%v} in pattern %q", tag, pattern)
	})
}

// RelativeDir validates a slash separated directory below the output root.
func RelativeDir(dir string) (string, error) {
	clean := path.Clean(strings.TrimSpace(dir))
	if clean == "." {
		return "", nil
	}

	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("directory %q must stay below the output directory", dir)
	}

	return clean, nil
}
