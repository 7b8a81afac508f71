package generate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig"
	"go.uber.org/zap"

	"github.com/fluohq/compliancegen/cmd/compliancegen/config"
	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/engine"
	"github.com/fluohq/compliancegen/pkg/generator"
	"github.com/fluohq/compliancegen/pkg/parser"
	"github.com/fluohq/compliancegen/pkg/transformer"
	"github.com/fluohq/compliancegen/pkg/util"
	"github.com/fluohq/compliancegen/pkg/util/cli"
)

var (
	stdin  io.Reader = os.Stdin
	stdout io.Writer = os.Stdout
)

type outPatternValues struct {
	Generator string
}

// Generate generates code according to options
func Generate(ctx context.Context, cliOpts *config.GenerateOptions, options *config.Options, inPaths []string, logger *zap.Logger) error {
	if cliOpts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cliOpts.Timeout)
		defer cancel()
	}

	if cliOpts.Targets != "" {
		targets, err := config.ParseTargets(cliOpts.Targets)
		if err != nil {
			return err
		}
		config.SelectGenerators(options, targets)
	}

	frameworks, err := Load(ctx, options, inPaths, cliOpts.Recursive)
	if err != nil {
		return err
	}

	bundles, err := Render(ctx, options, frameworks, !cliOpts.NoCheck, logger)
	if err != nil {
		return err
	}

	if cliOpts.OutPath == "" || cliOpts.OutPath == "-" {
		return Print(stdout, bundles)
	}

	return Write(cliOpts, options, bundles)
}

// Load parses the frameworks in inPaths, or in the standard input for
// "-", and transforms them with the configured transformers.
func Load(ctx context.Context, options *config.Options, inPaths []string, recursive bool) ([]*control.Framework, error) {
	if len(inPaths) == 0 {
		return nil, fmt.Errorf("no input specified")
	}

	parsers, err := getParsers(options)
	if err != nil {
		return nil, err
	}

	var frameworks []*control.Framework

	if len(inPaths) == 1 && inPaths[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from standard input %w", err)
		}

		frameworks, err = parser.ParseData(ctx, parsers, options.Parsers, "-", data)
		if err != nil {
			return nil, err
		}
	} else {
		filePaths, err := util.CollectFiles(inPaths, recursive, func(p string) bool {
			_, ok := parser.ForPath(parsers, p)
			return ok
		})
		if err != nil {
			return nil, fmt.Errorf("failed to read files: %w", err)
		}

		if len(filePaths) == 0 {
			return nil, fmt.Errorf("no framework files found")
		}

		cli.Verbosef("Found %v.\n", util.Plural(len(filePaths), "file"))

		frameworks, err = parser.ParseResources(ctx, parsers, options.Parsers, filePaths...)
		if err != nil {
			return nil, err
		}
	}

	cli.Verbosef("Parsed %v.\n", util.Plural(len(frameworks), "framework"))

	for _, tOpts := range options.Transformers {
		t, ok := transformer.Find(config.Transformers, tOpts.Name)
		if !ok {
			return nil, fmt.Errorf(`transformer with name "%v" not found`, tOpts.Name)
		}

		frameworks, err = t.Transform(ctx, tOpts.Options, frameworks)
		if err != nil {
			return nil, fmt.Errorf("transform failed: %w", err)
		}
	}

	return frameworks, nil
}

// Render renders the frameworks with the configured generators, or with
// every generator if none is configured.
func Render(ctx context.Context, options *config.Options, frameworks []*control.Framework, check bool, logger *zap.Logger) (map[string][]artifact.Artifact, error) {
	jobs, err := getJobs(options, check)
	if err != nil {
		return nil, err
	}

	e := engine.New(logger)
	e.Concurrency = options.Concurrency

	bundles, err := e.Run(ctx, frameworks, jobs...)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return bundles, nil
}

// Print writes every artifact to w, each preceded by its path.
func Print(w io.Writer, bundles map[string][]artifact.Artifact) error {
	for _, name := range bundleNames(bundles) {
		for _, a := range bundles[name] {
			if _, err := fmt.Fprintf(w, "==> %v/%v <==\n", name, a.Path); err != nil {
				return err
			}
			if _, err := w.Write(a.Content); err != nil {
				return err
			}
		}
	}
	return nil
}

func bundleNames(bundles map[string][]artifact.Artifact) []string {
	names := make([]string, 0, len(bundles))
	for name := range bundles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutDir returns the directory of a generator's output below the output
// directory, rendered from pattern.
func OutDir(pattern, generatorName string) (string, error) {
	tmpl, err := template.New("outPattern").Funcs(sprig.TxtFuncMap()).Parse(pattern)
	if err != nil {
		return "", fmt.Errorf("invalid out pattern: %w", err)
	}

	buf := &bytes.Buffer{}
	if err := tmpl.Execute(buf, &outPatternValues{Generator: generatorName}); err != nil {
		return "", fmt.Errorf("invalid out pattern: %w", err)
	}

	return generator.RelativeDir(buf.String())
}

func getParsers(options *config.Options) ([]parser.Parser, error) {
	if len(options.Parsers) == 0 {
		return config.Parsers, nil
	}

	parsers := make([]parser.Parser, 0, len(options.Parsers))

	// keep the order of config.Parsers, it is the order of attempts
	for _, p := range config.Parsers {
		if _, ok := options.Parsers[p.Name()]; ok {
			parsers = append(parsers, p)
		}
	}

	for name := range options.Parsers {
		if _, ok := parser.Find(parsers, name); !ok {
			return nil, fmt.Errorf(`parser with name "%v" not found`, name)
		}
	}

	return parsers, nil
}

func getJobs(options *config.Options, check bool) ([]engine.Job, error) {
	check = check && !options.SkipCheck

	if len(options.Generators) == 0 {
		jobs := make([]engine.Job, 0, len(config.Generators))
		for _, g := range config.Generators {
			jobs = append(jobs, engine.Job{Generator: g, Check: check})
		}
		return jobs, nil
	}

	names := make([]string, 0, len(options.Generators))
	for name := range options.Generators {
		names = append(names, name)
	}
	sort.Strings(names)

	jobs := make([]engine.Job, 0, len(names))

	for _, name := range names {
		g, ok := config.FindGenerator(name)
		if !ok {
			return nil, fmt.Errorf(`generator with name "%v" not found`, name)
		}

		job := engine.Job{Generator: g, Check: check}
		if gOpts := options.Generators[name]; gOpts != nil {
			job.Options = gOpts.Options
			job.Targets = gOpts.Targets
		}

		jobs = append(jobs, job)
	}

	return jobs, nil
}
