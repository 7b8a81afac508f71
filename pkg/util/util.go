package util

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"gopkg.in/yaml.v3"
)

// DisableYAMLMarshalComments controls MarshalYAMLWithDescriptions
var DisableYAMLMarshalComments = false

// MarshalYAMLWithDescriptions provides marshaling structs with
// descriptions as comments.
//
// Make sure the value (pointer receiver is fine)
// you pass in doesn't implement YAML Marshaler,
// otherwise YAML will get into a Marshal() loop.
func MarshalYAMLWithDescriptions(val interface{}) (interface{}, error) {
	tp := reflect.TypeOf(val)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}

	if tp.Kind() != reflect.Struct {
		return nil, fmt.Errorf("only structs are supported")
	}

	v := reflect.ValueOf(val)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	b, err := yaml.Marshal(v.Interface())
	if err != nil {
		return nil, err
	}

	var node yaml.Node
	err = yaml.Unmarshal(b, &node)
	if err != nil {
		return nil, err
	}

	if !DisableYAMLMarshalComments {
		for _, n := range node.Content[0].Content {
			for i := 0; i < v.NumField(); i++ {
				fieldType := tp.Field(i)
				name := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]

				if name == "" {
					name = fieldType.Name
				}

				if n.Value == name {
					desc := fieldType.Tag.Get("description")
					n.HeadComment = wordwrap.WrapString(desc, 80) + "."
					break
				}

			}
		}
	}

	node.Kind = yaml.MappingNode
	node.Content = node.Content[0].Content

	return &node, nil
}

// MustMarshalYAML marshals i, and panics if there is an error.
func MustMarshalYAML(i interface{}) []byte {
	b, err := yaml.Marshal(i)
	if err != nil {
		panic(err)
	}
	return b
}

// CollectFiles returns the files in paths, descending into directories.
// Nested directories are only walked if recursive is set, and only files
// accepted by match are collected from directories. Files given
// directly are always returned. The result keeps the order of paths,
// files of a directory are sorted.
func CollectFiles(paths []string, recursive bool, match func(path string) bool) ([]string, error) {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool)

	add := func(p string) {
		if seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			add(root)
			continue
		}

		var found []string

		err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if path != root && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if match == nil || match(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}

	return out, nil
}
