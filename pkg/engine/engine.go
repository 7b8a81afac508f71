// Package engine renders frameworks with generators and merges the
// results into one checked bundle per generator.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/check"
	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/errs"
	"github.com/fluohq/compliancegen/pkg/generator"
)

// Job is one generator run over every framework.
type Job struct {
	Generator generator.Generator
	Options   interface{}

	// Targets to render, every target of the generator if empty.
	Targets []string

	// Check runs the generator's checker over the merged bundle.
	Check bool
}

// Engine renders jobs. The zero value is ready to use.
type Engine struct {
	Logger *zap.Logger

	// Concurrency limits the units rendered at once, unlimited if not positive.
	Concurrency int
}

// New returns an engine logging to logger, or nowhere if it is nil.
func New(logger *zap.Logger) *Engine {
	return &Engine{Logger: logger}
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Render renders the targets of one validated framework with g.
func (e *Engine) Render(ctx context.Context, fw *control.Framework, g generator.Generator, options interface{}, targets []string) (artifact.Unit, error) {
	unit := artifact.Unit{Framework: fw.ID, Generator: g.Name()}

	if len(targets) == 0 {
		targets = generator.AllTargets
	}

	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return unit, err
		}

		a, err := g.Generate(ctx, options, fw, target)
		if err != nil {
			return unit, fmt.Errorf("%v: framework %v, target %v: %w", g.Name(), fw.ID, target, err)
		}

		unit.Artifacts = append(unit.Artifacts, a...)
	}

	return unit, nil
}

// Validate validates every framework and rejects frameworks sharing an id.
func Validate(frameworks []*control.Framework) error {
	seen := make(map[string]bool, len(frameworks))

	for _, fw := range frameworks {
		if err := fw.Validate(); err != nil {
			return err
		}

		if seen[fw.ID] {
			return &errs.InputError{Framework: fw.ID, Err: fmt.Errorf("framework is defined more than once")}
		}
		seen[fw.ID] = true
	}

	return nil
}

// Run validates the frameworks, renders every (framework, job) unit in
// parallel and returns the merged bundle of each generator by name.
//
// Nothing is returned unless every unit renders, merges and passes its
// check.
func (e *Engine) Run(ctx context.Context, frameworks []*control.Framework, jobs ...Job) (map[string][]artifact.Artifact, error) {
	log := e.logger()

	if err := Validate(frameworks); err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		if names[j.Generator.Name()] {
			return nil, fmt.Errorf("generator %v is given more than once", j.Generator.Name())
		}
		names[j.Generator.Name()] = true
	}

	units := make([][]artifact.Unit, len(jobs))
	for i := range units {
		units[i] = make([]artifact.Unit, len(frameworks))
	}

	eg, egCtx := errgroup.WithContext(ctx)
	if e.Concurrency > 0 {
		eg.SetLimit(e.Concurrency)
	}

	for ji, j := range jobs {
		for fi, fw := range frameworks {
			ji, j, fi, fw := ji, j, fi, fw

			eg.Go(func() error {
				start := time.Now()

				u, err := e.Render(egCtx, fw, j.Generator, j.Options, j.Targets)
				if err != nil {
					return err
				}

				log.Debug("rendered unit",
					zap.String("generator", u.Generator),
					zap.String("framework", u.Framework),
					zap.Int("artifacts", len(u.Artifacts)),
					zap.Duration("took", time.Since(start)),
				)

				units[ji][fi] = u
				return nil
			})
		}
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string][]artifact.Artifact, len(jobs))
	for ji, j := range jobs {
		bundle, err := artifact.Aggregate(units[ji]...)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", j.Generator.Name(), err)
		}

		log.Info("generated bundle",
			zap.String("generator", j.Generator.Name()),
			zap.Int("frameworks", len(frameworks)),
			zap.Int("artifacts", len(bundle)),
			zap.String("digest", artifact.Digest(bundle)),
		)

		out[j.Generator.Name()] = bundle
	}

	if err := e.check(ctx, jobs, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (e *Engine) check(ctx context.Context, jobs []Job, bundles map[string][]artifact.Artifact) error {
	log := e.logger()

	eg, egCtx := errgroup.WithContext(ctx)

	for _, j := range jobs {
		if !j.Check {
			continue
		}

		j := j

		eg.Go(func() error {
			checker, err := j.Generator.Checker(j.Options)
			if err != nil {
				return fmt.Errorf("%v: %w", j.Generator.Name(), err)
			}
			if checker == nil {
				checker = check.Nop{}
			}

			start := time.Now()

			if err := checker.Check(egCtx, bundles[j.Generator.Name()]); err != nil {
				return fmt.Errorf("%v: %w", j.Generator.Name(), err)
			}

			log.Info("checked bundle",
				zap.String("generator", j.Generator.Name()),
				zap.String("checker", checker.Name()),
				zap.Duration("took", time.Since(start)),
			)

			return nil
		})
	}

	return eg.Wait()
}
