package parser

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/fluohq/compliancegen/pkg/control"
	"github.com/fluohq/compliancegen/pkg/util"
)

// TOMLOptions are options for the TOML parser.
type TOMLOptions struct {
	Strict bool `yaml:"strict" description:"Reject keys that are not part of the control model"`
}

// MarshalYAML implements YAML Marshaler
func (o *TOMLOptions) MarshalYAML() (interface{}, error) {
	return util.MarshalYAMLWithDescriptions(o)
}

// TOML parses TOML framework definitions, controls as [[controls]] tables.
type TOML struct{}

// Name implements Parser
func (t *TOML) Name() string {
	return "toml"
}

// Description implements Parser
func (t *TOML) Description() string {
	return "Parses TOML framework definitions with controls as [[controls]] tables"
}

// Extensions implements Parser
func (t *TOML) Extensions() []string {
	return []string{".toml"}
}

// DescriptionMarkdown implements DescriptionMarkdown
func (t *TOML) DescriptionMarkdown() string {
	return describe(t, "This parser parses TOML files holding one framework, its controls given as `[[controls]]` tables.")
}

// DefaultOptions implements Parser
func (t *TOML) DefaultOptions() interface{} {
	return &TOMLOptions{
		Strict: true,
	}
}

// Parse implements Parser
func (t *TOML) Parse(ctx context.Context, options interface{}, data []byte) ([]*control.Framework, error) {
	o, err := decodeOptions(t, options)
	if err != nil {
		return nil, err
	}
	opts := o.(*TOMLOptions)

	fw := &control.Framework{}

	md, err := toml.Decode(string(data), fw)
	if err != nil {
		return nil, err
	}

	if opts.Strict {
		var keys []string
		for _, k := range md.Undecoded() {
			if !inMetadata(k) {
				keys = append(keys, k.String())
			}
		}
		if len(keys) > 0 {
			return nil, fmt.Errorf("unknown keys: %v", strings.Join(keys, ", "))
		}
	}

	if empty(fw) {
		return nil, fmt.Errorf("no framework is defined")
	}

	return []*control.Framework{fw}, nil
}

// inMetadata reports whether k lies inside the free-form metadata of a control.
func inMetadata(k toml.Key) bool {
	return len(k) > 2 && k[0] == "controls" && k[1] == "metadata"
}
