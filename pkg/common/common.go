package common

// DescriptionMarkdown simply allows for getting markdown text.
type DescriptionMarkdown interface {
	DescriptionMarkdown() string
}

// Component is a named parser, transformer or generator.
type Component interface {
	Name() string
	Description() string
}

// Names returns the names of the components in order.
func Names[T Component](components []T) []string {
	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.Name())
	}
	return names
}
