package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/util"
)

// YAMLOptions are options for the YAML parser.
type YAMLOptions struct {
	Strict bool `yaml:"strict" description:"Reject fields that are not part of the control model"`
}

// MarshalYAML implements YAML Marshaler
func (o *YAMLOptions) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(o)
}

// YAML parses YAML framework definitions, one framework per document.
type YAML struct{}

// Name implements Parser
func (y *YAML) Name() string {
	return "yaml"
}

// Description implements Parser
func (y *YAML) Description() string {
	return "Parses YAML framework definitions, one framework per document"
}

// Extensions implements Parser
func (y *YAML) Extensions() []string {
	return []string{".yaml", ".yml"}
}

// DescriptionMarkdown implements DescriptionMarkdown
func (y *YAML) DescriptionMarkdown() string {
	return describe(y, "This parser parses YAML files. A file can hold several frameworks separated by `---`.")
}

// DefaultOptions implements Parser
func (y *YAML) DefaultOptions() interface{} {
	return &YAMLOptions{
		Strict: true,
	}
}

// Parse implements Parser
func (y *YAML) Parse(ctx context.Context, options interface{}, data []byte) ([]*control.Framework, error) {
	o, err := decodeOptions(y, options)
	if err != nil {
		return nil, err
	}
	opts := o.(*YAMLOptions)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(opts.Strict)

	var out []*control.Framework

	for i := 1; ; i++ {
		fw := &control.Framework{}

		err := dec.Decode(fw)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}

		if empty(fw) {
			continue
		}

		out = append(out, fw)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no framework is defined")
	}

	return out, nil
}

// empty reports whether fw comes from a null document.
func empty(fw *control.Framework) bool {
	return fw.ID == "" && fw.Name == "" && fw.Version == "" && fw.Description == "" && len(fw.Controls) == 0
}
