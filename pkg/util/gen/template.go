package gen

import (
	"fmt"
	"regexp"

	jen "github.com/dave/jennifer/jen"
)

// Values are code substitutions of a snippet by name.
type Values map[string]jen.Code

var substPattern = regexp.MustCompile(`\{\{\s?\.([a-zA-Z0-9]+)\s?\}\}`)

// Template splices code into a Go snippet at every {{ .name }}, so that
// qualified references get imported by the enclosing jen.File.
//
// Every name in the snippet must have a value.
func Template(snippet string, values Values) (jen.Code, error) {
	indices := substPattern.FindAllStringSubmatchIndex(snippet, -1)
	if len(indices) == 0 {
		return Raw(snippet), nil
	}

	c := jen.Null()

	var last int
	for _, idx := range indices {
		name := snippet[idx[2]:idx[3]]

		code, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("no code substitution for %q", name)
		}

		c.Op(snippet[last:idx[0]]).Add(code)
		last = idx[1]
	}

	c.Op(snippet[last:])

	return c, nil
}

// MustTemplate is Template that panics on a missing substitution.
func MustTemplate(snippet string, values Values) jen.Code {
	c, err := Template(snippet, values)
	if err != nil {
		panic(err)
	}
	return c
}
