// Package gen contains Jennifer helpers shared by the Go renderer.
//
// Free text never reaches Jennifer's own string or comment rendering:
// literals and comment lines are escaped beforehand and placed as raw
// code.
package gen

import (
	"strings"

	jen "github.com/dave/jennifer/jen"
)

func commentLine(l string) string {
	if l == "" {
		return "//"
	}
	return "// " + l
}

// Comments creates a comment block from escaped comment lines.
// An empty line becomes a bare "//" paragraph separator.
func Comments(lines ...string) *jen.Statement {
	return jen.Comment(CommentText(lines...))
}

// CommentText joins escaped comment lines into raw comment text, as
// accepted by jen.Comment and jen.File.PackageComment.
func CommentText(lines ...string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, commentLine(l))
	}
	return strings.Join(out, "\n")
}

// Qual is jen.Qual, or a plain identifier for an empty path.
func Qual(path, name string) *jen.Statement {
	if path == "" {
		return jen.Id(name)
	}

	return jen.Qual(path, name)
}

// Raw places already rendered code.
func Raw(str string) *jen.Statement {
	return jen.Op(str)
}

// Strings is a []string composite literal of rendered literals, one
// element per line.
func Strings(lits []string) *jen.Statement {
	if len(lits) == 0 {
		return jen.Nil()
	}

	return jen.Index().String().ValuesFunc(func(g *jen.Group) {
		for _, l := range lits {
			g.Line().Add(Raw(l))
		}
		g.Line()
	})
}
