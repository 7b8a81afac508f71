package parser

import (
	"bytes"
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/util"
)

var (
	jsonLenient = jsoniter.Config{
		UseNumber: true,
	}.Froze()

	jsonStrict = jsoniter.Config{
		UseNumber:             true,
		DisallowUnknownFields: true,
	}.Froze()
)

// JSONOptions are options for the JSON parser.
type JSONOptions struct {
	Strict bool `yaml:"strict" description:"Reject fields that are not part of the control model"`
}

// MarshalYAML implements YAML Marshaler
func (o *JSONOptions) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(o)
}

// JSON parses JSON framework definitions.
type JSON struct{}

// Name implements Parser
func (j *JSON) Name() string {
	return "json"
}

// Description implements Parser
func (j *JSON) Description() string {
	return "Parses JSON framework definitions, a framework object or an array of them"
}

// Extensions implements Parser
func (j *JSON) Extensions() []string {
	return []string{".json"}
}

// DescriptionMarkdown implements DescriptionMarkdown
func (j *JSON) DescriptionMarkdown() string {
	return describe(j, "This parser parses JSON files holding a framework object or an array of framework objects.")
}

// DefaultOptions implements Parser
func (j *JSON) DefaultOptions() interface{} {
	return &JSONOptions{
		Strict: true,
	}
}

// Parse implements Parser
func (j *JSON) Parse(ctx context.Context, options interface{}, data []byte) ([]*control.Framework, error) {
	o, err := decodeOptions(j, options)
	if err != nil {
		return nil, err
	}
	opts := o.(*JSONOptions)

	api := jsonLenient
	if opts.Strict {
		api = jsonStrict
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no framework is defined")
	}

	if trimmed[0] == '[' {
		var out []*control.Framework
		if err := api.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}

		for i, fw := range out {
			if fw == nil {
				return nil, fmt.Errorf("framework #%d is null", i+1)
			}
		}

		if len(out) == 0 {
			return nil, fmt.Errorf("no framework is defined")
		}

		return out, nil
	}

	fw := &control.Framework{}
	if err := api.Unmarshal(trimmed, fw); err != nil {
		return nil, err
	}

	return []*control.Framework{fw}, nil
}
