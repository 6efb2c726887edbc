package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses a graph document from a JSON object.
type JSONParser struct{}

// Parse reads JSON from the reader. Rows are numbered by their position
// within each section.
func (p *JSONParser) Parse(r io.Reader) (*Document, error) {
	var doc Document

	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	for i := range doc.Dependencies {
		doc.Dependencies[i].LineNum = i + 1
	}
	for i := range doc.Relationships {
		doc.Relationships[i].LineNum = i + 1
	}
	for i := range doc.Metrics {
		doc.Metrics[i].LineNum = i + 1
	}

	return &doc, nil
}
