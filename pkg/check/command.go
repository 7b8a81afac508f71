package check

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"

	"github.com/kballard/go-shellquote"
	"github.com/valyala/fasttemplate"

	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/errs"
)

// Default commands of the target toolchains.
const (
	JavacCommand     = "javac -encoding UTF-8 -Xlint:none -d {out} {files}"
	PyCompileCommand = "python3 -m py_compile {files}"
	TscCommand       = "tsc --noEmit --strict --target es2022 --module es2022 --moduleResolution node {files}"
)

// CommandChecker writes the bundle to a scratch directory and runs an
// external toolchain command in it.
//
// The command is split like a shell would. An argument that is exactly
// {files} expands to the relative paths of every artifact with one of
// Extensions; without it the paths are appended. {dir} is the bundle
// root and {out} an empty scratch directory for compiler output.
type CommandChecker struct {
	Label      string
	Command    string
	Extensions []string
}

// Name implements Checker
func (c *CommandChecker) Name() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Command
}

// Check implements Checker
func (c *CommandChecker) Check(ctx context.Context, artifacts []artifact.Artifact) error {
	args, err := shellquote.Split(c.Command)
	if err != nil {
		return fmt.Errorf("invalid check command %q: %w", c.Command, err)
	}

	if len(args) == 0 {
		return fmt.Errorf("empty check command")
	}

	tool, err := exec.LookPath(args[0])
	if err != nil {
		return &errs.CheckError{Checker: c.Name(), Err: fmt.Errorf("%v is required to check generated code: %w", args[0], err)}
	}

	root, err := os.MkdirTemp("", "compliancegen-check-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(root)

	dir := filepath.Join(root, "src")
	out := filepath.Join(root, "out")

	if err := os.MkdirAll(out, 0o755); err != nil {
		return err
	}

	files, err := materialize(dir, artifacts, c.Extensions)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return nil
	}

	expanded := make([]string, 0, len(args)+len(files))
	sawFiles := false

	for _, a := range args[1:] {
		if a == "{files}" {
			expanded = append(expanded, files...)
			sawFiles = true
			continue
		}

		s, err := fasttemplate.ExecuteFuncStringWithErr(a, "{", "}", func(w io.Writer, tag string) (int, error) {
			switch tag {
			case "dir":
				return w.Write([]byte(dir))
			case "out":
				return w.Write([]byte(out))
			default:
				return 0, fmt.Errorf("unknown placeholder {%v} in check command", tag)
			}
		})
		if err != nil {
			return err
		}
		expanded = append(expanded, s)
	}

	if !sawFiles {
		expanded = append(expanded, files...)
	}

	cmd := exec.CommandContext(ctx, tool, expanded...)
	cmd.Dir = dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return &errs.CheckError{Checker: c.Name(), Output: output.String(), Err: err}
	}

	return nil
}

// materialize writes the artifacts below dir and returns the relative
// paths of the ones matching exts, sorted.
func materialize(dir string, artifacts []artifact.Artifact, exts []string) ([]string, error) {
	var files []string

	for _, a := range artifacts {
		p := path.Clean(a.Path)
		if path.IsAbs(p) || p == ".." || len(p) > 2 && p[:3] == "../" {
			return nil, fmt.Errorf("artifact path %q leaves the output directory", a.Path)
		}

		target := filepath.Join(dir, filepath.FromSlash(p))

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, err
		}

		if err := os.WriteFile(target, a.Content, 0o644); err != nil {
			return nil, err
		}

		if matchExt(p, exts) {
			files = append(files, filepath.FromSlash(p))
		}
	}

	sort.Strings(files)
	return files, nil
}

func matchExt(p string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	for _, e := range exts {
		if path.Ext(p) == e {
			return true
		}
	}
	return false
}

// Javac checks Java sources.
func Javac(command string) *CommandChecker {
	if command == "" {
		command = JavacCommand
	}
	return &CommandChecker{Label: "javac", Command: command, Extensions: []string{".java"}}
}

// PyCompile checks Python sources.
func PyCompile(command string) *CommandChecker {
	if command == "" {
		command = PyCompileCommand
	}
	return &CommandChecker{Label: "py_compile", Command: command, Extensions: []string{".py"}}
}

// Tsc checks TypeScript sources.
func Tsc(command string) *CommandChecker {
	if command == "" {
		command = TscCommand
	}
	return &CommandChecker{Label: "tsc", Command: command, Extensions: []string{".ts"}}
}
