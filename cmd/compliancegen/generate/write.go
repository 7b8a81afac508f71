package generate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/fluohq/compliancegen/cmd/compliancegen/config"
	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/util"
	"github.com/fluohq/compliancegen/pkg/util/cli"
)

// confirm asks a yes or no question.
var confirm = func(message string) (bool, error) {
	ok := false
	err := survey.AskOne(&survey.Confirm{Message: message}, &ok)
	return ok, err
}

type pendingFile struct {
	path    string
	content []byte
}

// Write writes every bundle into its directory below cliOpts.OutPath.
//
// Every file is planned before anything is written, so a declined prompt
// leaves the output directory untouched.
func Write(cliOpts *config.GenerateOptions, options *config.Options, bundles map[string][]artifact.Artifact) error {
	if cliOpts.CheckOnly {
		return Verify(cliOpts.OutPath, options, bundles)
	}

	if err := ensureDir(cliOpts); err != nil {
		return err
	}

	var pending []pendingFile
	var unchanged int

	owners := make(map[string]string)

	for _, name := range bundleNames(bundles) {
		dir, err := OutDir(options.OutPattern, name)
		if err != nil {
			return err
		}

		for _, a := range bundles[name] {
			p := outPath(cliOpts.OutPath, dir, a)

			if other, ok := owners[p]; ok {
				return fmt.Errorf("generators %v and %v both write %v, use .Generator in outPattern", other, name, p)
			}
			owners[p] = name

			write, err := shouldWrite(cliOpts, p, a.Content)
			if err != nil {
				return err
			}

			if !write {
				unchanged++
				continue
			}

			pending = append(pending, pendingFile{path: p, content: a.Content})
		}
	}

	for _, f := range pending {
		if err := os.MkdirAll(filepath.Dir(f.path), os.ModePerm); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}

		if err := os.WriteFile(f.path, f.content, 0o644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}

		cli.Verbosef("%v written.\n", f.path)
	}

	cli.Successf("%v written, %v unchanged.\n", util.Plural(len(pending), "file"), unchanged)

	return nil
}

func ensureDir(cliOpts *config.GenerateOptions) error {
	info, err := os.Stat(cliOpts.OutPath)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("output path %v is not a directory", cliOpts.OutPath)
		}
		return nil
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat target directory: %w", err)
	}

	if !cliOpts.Yes {
		create, err := confirm(fmt.Sprintf(`the directory "%v" doesn't exist, create it?`, cliOpts.OutPath))
		if err != nil {
			return err
		}
		if !create {
			return fmt.Errorf("aborted")
		}
	}

	if err := os.MkdirAll(cliOpts.OutPath, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	return nil
}

// shouldWrite reports whether content has to be written to p, asking
// before a changed file is overwritten.
func shouldWrite(cliOpts *config.GenerateOptions, p string, content []byte) (bool, error) {
	existing, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to read existing file %v: %w", p, err)
	}

	if bytes.Equal(existing, content) {
		return false, nil
	}

	if cliOpts.Yes {
		return true, nil
	}

	overwrite, err := confirm(fmt.Sprintf(`the file "%v" already exists, overwrite it?`, p))
	if err != nil {
		return false, err
	}
	if !overwrite {
		return false, fmt.Errorf("aborted")
	}

	return true, nil
}

func outPath(root, dir string, a artifact.Artifact) string {
	return filepath.Join(root, filepath.FromSlash(dir), filepath.FromSlash(a.Path))
}

// Verify checks that the files below root match the bundles exactly,
// without writing anything.
func Verify(root string, options *config.Options, bundles map[string][]artifact.Artifact) error {
	var stale []string

	for _, name := range bundleNames(bundles) {
		dir, err := OutDir(options.OutPattern, name)
		if err != nil {
			return err
		}

		for _, a := range bundles[name] {
			p := outPath(root, dir, a)

			existing, err := os.ReadFile(p)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to read existing file %v: %w", p, err)
			}

			if err != nil || !bytes.Equal(existing, a.Content) {
				stale = append(stale, p)
			}
		}

		cli.Verbosef("%v: %v, digest %v.\n", name, util.Plural(len(bundles[name]), "file"), artifact.Digest(bundles[name]))
	}

	if len(stale) > 0 {
		return fmt.Errorf("%v out of date:\n\t%v", util.Plural(len(stale), "file"), strings.Join(stale, "\n\t"))
	}

	cli.Successln("Generated code is up to date.")
	return nil
}
