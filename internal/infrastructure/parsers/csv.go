package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// CSVParser parses one kind of row per file, chosen by the header:
// a "source" and "target" column means relationships, a "metric" column
// means metric readings, anything else is read as dependencies.
type CSVParser struct{}

// Parse reads CSV from the reader and returns the parsed document.
func (p *CSVParser) Parse(r io.Reader) (*Document, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	colIndex, err := p.readHeader(reader)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	lineNum := 1 // Header is line 1
	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		switch {
		case hasColumns(colIndex, "source", "target"):
			rel, err := parseRelationship(record, colIndex, lineNum)
			if err != nil {
				return nil, err
			}
			doc.Relationships = append(doc.Relationships, rel)
		case hasColumns(colIndex, "metric"):
			point, err := parseMetric(record, colIndex, lineNum)
			if err != nil {
				return nil, err
			}
			doc.Metrics = append(doc.Metrics, point)
		default:
			dep, err := parseDependency(record, colIndex, lineNum)
			if err != nil {
				return nil, err
			}
			doc.Dependencies = append(doc.Dependencies, dep)
		}
	}

	return doc, nil
}

// readHeader reads the header row and indexes its columns.
func (p *CSVParser) readHeader(reader *csv.Reader) (map[string]int, error) {
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	colIndex := make(map[string]int)
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}

	if !hasColumns(colIndex, "name") && !hasColumns(colIndex, "source", "target") && !hasColumns(colIndex, "metric") {
		return nil, fmt.Errorf("missing required column: name, source/target or metric")
	}

	return colIndex, nil
}

func parseDependency(record []string, colIndex map[string]int, lineNum int) (RawDependency, error) {
	dep := RawDependency{
		ID:               getColumn(record, colIndex, "id"),
		Name:             getColumn(record, colIndex, "name"),
		BusinessFunction: getColumn(record, colIndex, "business_function"),
		Kind:             getColumn(record, colIndex, "kind"),
		Criticality:      getColumn(record, colIndex, "criticality"),
		Redundancy:       getColumn(record, colIndex, "redundancy"),
		Status:           getColumn(record, colIndex, "status"),
		LineNum:          lineNum,
	}

	var err error
	if dep.MaxTolerableDowntimeHours, err = optionalFloat(record, colIndex, "max_tolerable_downtime_hours", lineNum); err != nil {
		return RawDependency{}, err
	}
	if dep.RecoveryTimeObjectiveHours, err = optionalFloat(record, colIndex, "recovery_time_objective_hours", lineNum); err != nil {
		return RawDependency{}, err
	}
	return dep, nil
}

func parseRelationship(record []string, colIndex map[string]int, lineNum int) (RawRelationship, error) {
	rel := RawRelationship{
		ID:       getColumn(record, colIndex, "id"),
		Source:   getColumn(record, colIndex, "source"),
		Target:   getColumn(record, colIndex, "target"),
		Type:     getColumn(record, colIndex, "type"),
		Strength: getColumn(record, colIndex, "strength"),
		LineNum:  lineNum,
	}

	var err error
	if rel.Likelihood, err = optionalFloat(record, colIndex, "likelihood", lineNum); err != nil {
		return RawRelationship{}, err
	}
	if rel.DelayMinutes, err = optionalFloat(record, colIndex, "delay_minutes", lineNum); err != nil {
		return RawRelationship{}, err
	}
	return rel, nil
}

func parseMetric(record []string, colIndex map[string]int, lineNum int) (RawMetricPoint, error) {
	point := RawMetricPoint{
		Metric:  getColumn(record, colIndex, "metric"),
		Date:    getColumn(record, colIndex, "date"),
		LineNum: lineNum,
	}

	var err error
	if point.Value, err = optionalFloat(record, colIndex, "value", lineNum); err != nil {
		return RawMetricPoint{}, err
	}
	return point, nil
}

// optionalFloat parses a numeric column, returning nil when it is empty.
func optionalFloat(record []string, colIndex map[string]int, col string, lineNum int) (*float64, error) {
	raw := getColumn(record, colIndex, col)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid %s value %q: %w", lineNum, col, raw, err)
	}
	return &v, nil
}

func hasColumns(colIndex map[string]int, cols ...string) bool {
	for _, col := range cols {
		if _, ok := colIndex[col]; !ok {
			return false
		}
	}
	return true
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return strings.TrimSpace(record[idx])
	}
	return ""
}
