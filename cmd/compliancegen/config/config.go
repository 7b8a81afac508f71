package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/imdario/mergo"
	"gopkg.in/yaml.v3"

	"github.com/fluohq/compliancegen/pkg/generator"
	"github.com/fluohq/compliancegen/pkg/generator/golang"
	"github.com/fluohq/compliancegen/pkg/generator/java"
	"github.com/fluohq/compliancegen/pkg/generator/python"
	"github.com/fluohq/compliancegen/pkg/generator/typescript"
	"github.com/fluohq/compliancegen/pkg/parser"
	"github.com/fluohq/compliancegen/pkg/transformer"
	"github.com/fluohq/compliancegen/pkg/util"
)

// Generators supported by the CLI.
var Generators = []generator.Generator{
	&java.Java{},
	&golang.Go{},
	&python.Python{},
	&typescript.TypeScript{},
}

// Parsers supported by the CLI.
var Parsers = parser.All()

// Transformers supported by the CLI.
var Transformers = transformer.All()

// Generator groups targets and options for generator.Generator
type Generator struct {
	Targets []string    `yaml:"targets,omitempty" description:"Targets to generate, all of them if empty"`
	Options interface{} `yaml:"options,omitempty" description:"Options for the generator"`
}

// MarshalYAML implements YAML Marshaler
func (t *Generator) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(t)
}

// Transformer groups the transformer name and its options
type Transformer struct {
	Name    string      `yaml:"name,omitempty" description:"Name of the transformer"`
	Options interface{} `yaml:"options,omitempty" description:"Options for the transformer"`
}

// GenerateOptions contains options for the CLI.
type GenerateOptions struct {
	Yes        bool
	Recursive  bool
	NoCheck    bool
	CheckOnly  bool
	Watch      bool
	ConfigPath string
	OutPath    string
	Targets    string
	Timeout    time.Duration
}

// GetOptions contains options for the CLI.
type GetOptions struct {
	Force      bool
	NoComments bool
	All        bool
	OutPath    string
}

// InspectOptions contains options for the CLI.
type InspectOptions struct {
	ConfigPath string
	Recursive  bool
	Dump       bool
}

// Options are the options of a compliancegen configuration file.
type Options struct {
	OutPattern   string                 `yaml:"outPattern" description:"Directory of the output of each generator below the output directory. Supports Go templating with sprig functions and the .Generator value"`
	SkipCheck    bool                   `yaml:"skipCheck" description:"Do not check the generated code with the toolchain of each language"`
	Concurrency  int                    `yaml:"concurrency" description:"Number of frameworks rendered at once"`
	Parsers      map[string]interface{} `yaml:"parsers,omitempty" description:"Parsers to use and their options, leave it empty to infer from the input"`
	Transformers []*Transformer         `yaml:"transformers,omitempty" description:"Transformers to alter the frameworks with before generating code, and their options"`
	Generators   map[string]*Generator  `yaml:"generators,omitempty" description:"Generators for code generation, all of them if empty"`
}

// MarshalYAML implements YAML Marshaler
func (o *Options) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(o)
}

// DefaultOptions returns the default config
func DefaultOptions() *Options {
	return &Options{
		OutPattern:  "{{ .Generator }}",
		Concurrency: 4,
		Parsers:     map[string]interface{}{},
		Transformers: []*Transformer{
			{Name: "default"},
		},
		Generators: map[string]*Generator{},
	}
}

// AllOptions returns a config with every component and its default options.
func AllOptions() *Options {
	conf := DefaultOptions()

	for _, g := range Generators {
		conf.Generators[g.Name()] = &Generator{
			Targets: append([]string(nil), generator.AllTargets...),
			Options: g.DefaultOptions(),
		}
	}

	conf.Transformers = make([]*Transformer, 0, len(Transformers))
	for _, t := range Transformers {
		conf.Transformers = append(conf.Transformers, &Transformer{
			Name:    t.Name(),
			Options: t.DefaultOptions(),
		})
	}

	for _, p := range Parsers {
		conf.Parsers[p.Name()] = p.DefaultOptions()
	}

	return conf
}

// Load decodes a configuration file and fills the unset values with
// the defaults.
func Load(data []byte) (*Options, error) {
	opts := &Options{}

	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := Complete(opts); err != nil {
		return nil, err
	}

	return opts, nil
}

// Complete fills the unset values of opts with the defaults, normalizes
// component names and validates them.
func Complete(opts *Options) error {
	if err := mergo.Merge(opts, DefaultOptions()); err != nil {
		return err
	}

	normalizeNames(opts)

	return Validate(opts)
}

func normalizeNames(opts *Options) {
	for pName, pVal := range opts.Parsers {
		normalizedName := strings.ToLower(strings.TrimSpace(pName))

		if normalizedName != pName {
			opts.Parsers[normalizedName] = pVal
			delete(opts.Parsers, pName)
		}
	}

	for gName, gVal := range opts.Generators {
		normalizedName := strings.ToLower(strings.TrimSpace(gName))

		if normalizedName != gName {
			opts.Generators[normalizedName] = gVal
			delete(opts.Generators, gName)
		}
	}

	for _, t := range opts.Transformers {
		t.Name = strings.ToLower(strings.TrimSpace(t.Name))
	}
}

// Validate checks that every named component exists.
func Validate(opts *Options) error {
	for name := range opts.Parsers {
		if _, ok := parser.Find(Parsers, name); !ok {
			return fmt.Errorf(`parser with name "%v" not found`, name)
		}
	}

	for _, t := range opts.Transformers {
		if t == nil {
			return fmt.Errorf("empty transformer entry")
		}
		if _, ok := transformer.Find(Transformers, t.Name); !ok {
			return fmt.Errorf(`transformer with name "%v" not found`, t.Name)
		}
	}

	for name, g := range opts.Generators {
		gen, ok := FindGenerator(name)
		if !ok {
			return fmt.Errorf(`generator with name "%v" not found`, name)
		}

		if g == nil {
			continue
		}

		for _, t := range g.Targets {
			if _, ok := gen.Targets()[t]; !ok {
				return generator.UnsupportedTarget(gen, t)
			}
		}
	}

	if opts.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}

	return nil
}

// FindGenerator returns the generator with the given name.
func FindGenerator(name string) (generator.Generator, bool) {
	for _, g := range Generators {
		if g.Name() == name {
			return g, true
		}
	}
	return nil, false
}

// ParseTargets parses targets in the format "java:evidence+models,go:annotations".
// A generator given without targets renders every target.
func ParseTargets(targets string) (map[string][]string, error) {
	out := make(map[string][]string)

	for _, g := range strings.Split(targets, ",") {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}

		gVals := strings.Split(g, ":")
		gName := strings.ToLower(gVals[0])

		if len(gVals) > 2 {
			return nil, fmt.Errorf("invalid format for generator %v", gName)
		}

		if _, ok := FindGenerator(gName); !ok {
			return nil, fmt.Errorf(`generator with name "%v" not found`, gName)
		}

		if _, ok := out[gName]; ok {
			return nil, fmt.Errorf("generator %v is given more than once", gName)
		}

		if len(gVals) == 1 || gVals[1] == "" {
			out[gName] = nil
			continue
		}

		out[gName] = strings.Split(gVals[1], "+")
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no generators in %q", targets)
	}

	return out, nil
}

// SelectGenerators restricts the generators of opts to targets, as
// parsed by ParseTargets. Generators missing from the config are added
// with their default options.
func SelectGenerators(opts *Options, targets map[string][]string) {
	selected := make(map[string]*Generator, len(targets))

	for name, t := range targets {
		g := opts.Generators[name]
		if g == nil {
			g = &Generator{}
		}
		g.Targets = t
		selected[name] = g
	}

	opts.Generators = selected
}
