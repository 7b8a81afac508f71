package check

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"sort"
	"strings"

	"github.com/fluohq/compliancegen/pkg/artifact"
	"github.com/fluohq/compliancegen/pkg/errs"
)

// GoChecker parses and type-checks every Go package of a bundle in
// process. Imports of packages inside the bundle are resolved from the
// bundle itself, everything else from the standard library sources.
type GoChecker struct {
	// ModulePath is the import path of the bundle root. A go.mod at the
	// root of the bundle takes precedence.
	ModulePath string
}

// Name implements Checker
func (g *GoChecker) Name() string {
	return "go/types"
}

// Check implements Checker
func (g *GoChecker) Check(ctx context.Context, artifacts []artifact.Artifact) error {
	modulePath := g.ModulePath

	if mod, ok := artifact.Find(artifacts, "go.mod"); ok {
		if p := moduleLine(mod.Content); p != "" {
			modulePath = p
		}
	}

	fset := token.NewFileSet()
	var problems []string

	files := make(map[string][]*ast.File)

	for _, a := range artifacts {
		if path.Ext(a.Path) != ".go" {
			continue
		}

		f, err := parser.ParseFile(fset, a.Path, a.Content, parser.ParseComments|parser.AllErrors)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}

		importPath := path.Dir(a.Path)
		switch {
		case modulePath == "":
		case importPath == ".":
			importPath = modulePath
		default:
			importPath = modulePath + "/" + importPath
		}

		files[importPath] = append(files[importPath], f)
	}

	if len(problems) > 0 {
		return &errs.CheckError{Checker: g.Name(), Output: strings.Join(problems, "\n")}
	}

	imp := &bundleImporter{
		ctx:      ctx,
		fset:     fset,
		files:    files,
		packages: make(map[string]*types.Package),
		checking: make(map[string]bool),
		std:      importer.ForCompiler(fset, "source", nil),
	}

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if _, err := imp.Import(p); err != nil {
			imp.problems = append(imp.problems, err.Error())
		}
	}

	if len(imp.problems) > 0 {
		return &errs.CheckError{Checker: g.Name(), Output: strings.Join(dedupe(imp.problems), "\n")}
	}

	return nil
}

type bundleImporter struct {
	ctx      context.Context
	fset     *token.FileSet
	files    map[string][]*ast.File
	packages map[string]*types.Package
	checking map[string]bool
	std      types.Importer
	problems []string
}

func (b *bundleImporter) Import(importPath string) (*types.Package, error) {
	if pkg, ok := b.packages[importPath]; ok {
		return pkg, nil
	}

	files, ok := b.files[importPath]
	if !ok {
		return b.std.Import(importPath)
	}

	if err := b.ctx.Err(); err != nil {
		return nil, err
	}

	if b.checking[importPath] {
		return nil, fmt.Errorf("import cycle through %v", importPath)
	}
	b.checking[importPath] = true
	defer delete(b.checking, importPath)

	conf := types.Config{
		Importer: b,
		Error: func(err error) {
			b.problems = append(b.problems, err.Error())
		},
	}

	pkg, err := conf.Check(importPath, b.fset, files, nil)
	if err != nil && pkg == nil {
		return nil, err
	}

	b.packages[importPath] = pkg
	return pkg, nil
}

func moduleLine(gomod []byte) string {
	scn := bufio.NewScanner(bytes.NewReader(gomod))
	for scn.Scan() {
		line := strings.TrimSpace(scn.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, "module ")), `"`)
		}
	}
	return ""
}

func dedupe(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	out := lines[:0]
	for _, l := range lines {
		if seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
