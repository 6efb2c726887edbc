package parsers

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLParser parses a graph document from YAML, keeping source line numbers.
type YAMLParser struct{}

// Parse reads YAML from the reader.
func (p *YAMLParser) Parse(r io.Reader) (*Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return &Document{}, nil
	}

	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing YAML: line %d: expected a mapping with dependencies, relationships or metrics", top.Line)
	}

	doc := &Document{}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, value := top.Content[i], top.Content[i+1]
		var err error
		switch key.Value {
		case "dependencies":
			doc.Dependencies, err = decodeSequence[RawDependency](value, func(d *RawDependency, line int) { d.LineNum = line })
		case "relationships":
			doc.Relationships, err = decodeSequence[RawRelationship](value, func(rel *RawRelationship, line int) { rel.LineNum = line })
		case "metrics":
			doc.Metrics, err = decodeSequence[RawMetricPoint](value, func(m *RawMetricPoint, line int) { m.LineNum = line })
		default:
			err = fmt.Errorf("line %d: unknown section %q", key.Line, key.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	}

	return doc, nil
}

func decodeSequence[T any](node *yaml.Node, setLine func(*T, int)) ([]T, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list", node.Line)
	}
	items := make([]T, 0, len(node.Content))
	for _, child := range node.Content {
		var item T
		if err := child.Decode(&item); err != nil {
			return nil, fmt.Errorf("line %d: %w", child.Line, err)
		}
		setLine(&item, child.Line)
		items = append(items, item)
	}
	return items, nil
}
