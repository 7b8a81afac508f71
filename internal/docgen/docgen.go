package main

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/fluohq/compliancegen/cmd/compliancegen/config"
	"github.com/fluohq/compliancegen/internal/markdown"
	"github.com/fluohq/compliancegen/pkg/common"
)

type section struct {
	dir    string
	header string
	docs   []common.Component
}

// nest turns the top level headings of a component's documentation
// into subsections of the component.
func nest(b *strings.Builder, c common.Component) {
	md, ok := c.(common.DescriptionMarkdown)
	if !ok {
		return
	}

	desc := bufio.NewScanner(bytes.NewBufferString(md.DescriptionMarkdown()))
	b.WriteString("# " + c.Name() + "\n")

	for desc.Scan() {
		line := desc.Text()
		if len(line) != 0 && line[0] == '#' {
			line = "#" + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")
}

func components[T common.Component](list []T) []common.Component {
	out := make([]common.Component, 0, len(list))
	for _, c := range list {
		out = append(out, c)
	}
	return out
}

func main() {
	sections := []section{
		{"parsers", "# Parsers\n", components(config.Parsers)},
		{"transformers", "# Framework transformers\n", components(config.Transformers)},
		{"generators", "# Code generators\n", components(config.Generators)},
	}

	for _, s := range sections {
		var b strings.Builder
		for _, c := range s.docs {
			nest(&b, c)
		}

		dir := filepath.Join("docs", "cli", s.dir)

		err := os.MkdirAll(dir, os.ModePerm)
		if err != nil {
			panic(err)
		}

		err = os.WriteFile(filepath.Join(dir, "README.md"), []byte(markdown.GenTOC(s.header, b.String())), 0o644)
		if err != nil {
			panic(err)
		}
	}
}
