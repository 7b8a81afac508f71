package transformer

import (
	"context"

	"github.com/fluohq/compliancegen/pkg/common"
	"github.com/fluohq/compliancegen/pkg/control"
)

// Transformer alters framework definitions
// before code generation.
type Transformer interface {
	common.DescriptionMarkdown

	// The name of the transformer.
	Name() string

	// A short description of the transformer.
	Description() string

	// DefaultOptions Returns the default options of the transformer, or nil if it has none.
	DefaultOptions() interface{}

	// Transform returns transformed copies of the frameworks based on options,
	// the frameworks given are never modified.
	Transform(ctx context.Context, options interface{}, frameworks []*control.Framework) ([]*control.Framework, error)
}

// All returns every transformer.
func All() []Transformer {
	return []Transformer{&Default{}}
}

// Find returns the transformer with the given name.
func Find(transformers []Transformer, name string) (Transformer, bool) {
	for _, t := range transformers {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}
