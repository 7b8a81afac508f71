// Package markdown renders the tables and the table of contents of the
// component documentation.
package markdown

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// table renders a header, the alignment row and one line per row.
// aligns holds the alignment row cell of each column.
func table(columns, aligns []string, rows [][]string) string {
	var b strings.Builder

	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString("|" + strings.Join(aligns, "|") + "|\n")

	for _, r := range rows {
		b.WriteString(strings.Join(r, "|") + "|\n")
	}

	return b.String()
}

// fields returns the fields of struct type t ordered by Go name.
func fields(t reflect.Type) []reflect.StructField {
	out := make([]reflect.StructField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		out = append(out, t.Field(i))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

func yamlName(f reflect.StructField) string {
	return strings.Split(f.Tag.Get("yaml"), ",")[0]
}

// OptionsTable lists the options of a component with their defaults, as
// set in opts.
func OptionsTable(opts interface{}) string {
	v := reflect.ValueOf(opts)

	var rows [][]string
	for _, f := range fields(v.Type()) {
		def, err := yaml.Marshal(v.FieldByIndex(f.Index).Interface())
		if err != nil {
			panic(err)
		}

		pre := `<pre lang="yaml">` + strings.TrimSuffix(string(def), "\n") + "</pre>"

		rows = append(rows, []string{
			yamlName(f),
			f.Tag.Get("description") + ".",
			f.Type.String(),
			strings.ReplaceAll(pre, "\n", "<br>"),
		})
	}

	return table(
		[]string{"Option", "Description", "Type", "Default Value"},
		[]string{":------:", "-------------", ":----:", ":--------------"},
		rows,
	)
}

// FieldsTable documents the fields of a framework definition record.
func FieldsTable(record interface{}) string {
	var rows [][]string
	for _, f := range fields(reflect.TypeOf(record)) {
		rows = append(rows, []string{yamlName(f), f.Tag.Get("description") + ".", f.Type.String()})
	}

	return table(
		[]string{"Field", "Description", "Type"},
		[]string{":-----:", "-------------", ":----:"},
		rows,
	)
}

// TagsTable lists the values available to a template.
func TagsTable(values interface{}) string {
	var rows [][]string
	for _, f := range fields(reflect.TypeOf(values)) {
		rows = append(rows, []string{f.Name, f.Tag.Get("description")})
	}

	return table([]string{"Value", "Description"}, []string{":-----:", "-------------"}, rows)
}

// TargetsTable lists generator targets by name.
func TargetsTable(targets map[string]string) string {
	names := make([]string, 0, len(targets))
	for n := range targets {
		names = append(names, n)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n, targets[n]})
	}

	return table([]string{"Target", "Description"}, []string{":------:", "-------------"}, rows)
}

// GenTOC prepends header and a table of contents of the headings of md
// to md. Headings inside fenced code blocks are ignored.
func GenTOC(header, md string) string {
	var toc strings.Builder

	anchors := make(map[string]int)
	fenced := false

	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "```") {
			fenced = !fenced
			continue
		}
		if fenced || !strings.HasPrefix(line, "#") {
			continue
		}

		level := len(line) - len(strings.TrimLeft(line, "#"))
		title := strings.TrimSpace(line[level:])
		if title == "" {
			continue
		}

		anchor := Anchor(title)
		if n := anchors[anchor]; n > 0 {
			anchors[anchor] = n + 1
			anchor = anchor + "-" + strconv.Itoa(n)
		} else {
			anchors[anchor] = 1
		}

		toc.WriteString(strings.Repeat("  ", level-1) + "* [" + title + "](#" + anchor + ")\n")
	}

	return header + toc.String() + "\n" + md
}

// Anchor returns the anchor GitHub generates for a heading.
func Anchor(title string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(title) {
		switch {
		case r == ' ':
			b.WriteRune('-')
		case r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}

	return b.String()
}
