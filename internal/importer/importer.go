// File path: internal/importer/importer.go
package importer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nicodishanthj/inkspace/internal/sqlite"
)

// ErrUnsupportedFormat reports a file extension other than .csv or .json.
var ErrUnsupportedFormat = errors.New("unsupported import format")

// ErrEmptyImport reports a payload that parsed to zero records.
var ErrEmptyImport = errors.New("import contains no records")

// Result carries the parsed rows and the schema inferred from the first one.
type Result struct {
	Schema sqlite.JSONMap
	Rows   []sqlite.JSONMap
}

// Parse dispatches on the filename extension and returns the flat records
// plus an inferred field schema.
func Parse(filename string, data []byte) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(data)
	case ".json":
		return parseJSON(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func parseCSV(data []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, ErrEmptyImport
	}
	header := records[0]
	rows := make([]sqlite.JSONMap, 0, len(records)-1)
	for _, record := range records[1:] {
		row := sqlite.JSONMap{}
		for i, field := range header {
			value := ""
			if i < len(record) {
				value = record[i]
			}
			row[field] = value
		}
		rows = append(rows, row)
	}
	return &Result{Schema: inferSchema(rows[0]), Rows: rows}, nil
}

func parseJSON(data []byte) (*Result, error) {
	trimmed := bytes.TrimSpace(data)
	rows := []sqlite.JSONMap{}
	if len(trimmed) > 0 && trimmed[0] == '{' {
		single := sqlite.JSONMap{}
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		rows = append(rows, single)
	} else {
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	}
	if len(rows) == 0 {
		return nil, ErrEmptyImport
	}
	return &Result{Schema: inferSchema(rows[0]), Rows: rows}, nil
}

// inferSchema classifies each field of the first record. String values are
// number when all-digits, checkbox when "true"/"false", email when they
// contain both "@" and "."; native JSON booleans and numbers map directly.
func inferSchema(first sqlite.JSONMap) sqlite.JSONMap {
	schema := sqlite.JSONMap{}
	for field, value := range first {
		schema[field] = map[string]interface{}{"type": classify(value)}
	}
	return schema
}

func classify(value interface{}) string {
	switch v := value.(type) {
	case bool:
		return "checkbox"
	case float64:
		return "number"
	case string:
		return classifyString(v)
	default:
		return "text"
	}
}

func classifyString(value string) string {
	if value != "" && allDigits(value) {
		return "number"
	}
	switch strings.ToLower(value) {
	case "true", "false":
		return "checkbox"
	}
	if strings.Contains(value, "@") && strings.Contains(value, ".") {
		return "email"
	}
	return "text"
}

func allDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
