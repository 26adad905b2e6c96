// File path: internal/sqlite/mapper.go
package sqlite

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap persists an arbitrary string-keyed structured value as JSON text.
// An empty or NULL stored value scans to an empty map, never an error.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal json map: %w", err)
	}
	return string(data), nil
}

func (m *JSONMap) Scan(src interface{}) error {
	data, err := jsonSource(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	out := JSONMap{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal json map: %w", err)
	}
	*m = out
	return nil
}

// JSONList persists an arbitrary ordered structured value as JSON text.
// An empty or NULL stored value scans to an empty list, never an error.
type JSONList []interface{}

func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal json list: %w", err)
	}
	return string(data), nil
}

func (l *JSONList) Scan(src interface{}) error {
	data, err := jsonSource(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		*l = JSONList{}
		return nil
	}
	out := JSONList{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("unmarshal json list: %w", err)
	}
	*l = out
	return nil
}

func jsonSource(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported json column type %T", src)
	}
}
