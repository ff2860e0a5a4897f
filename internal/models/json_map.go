package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap is a free-form object stored as JSON text in the database.
type JSONMap map[string]any

// Scan implements sql.Scanner interface
func (m *JSONMap) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to unmarshal JSON value")
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// Value implements driver.Valuer interface
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Merge returns a copy of m with patch applied. Nested objects are merged
// recursively; any other value in patch replaces the existing one. Keys absent
// from patch are kept.
func (m JSONMap) Merge(patch map[string]any) JSONMap {
	out := make(JSONMap, len(m)+len(patch))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range patch {
		next, ok := asObject(v)
		if !ok {
			out[k] = v
			continue
		}
		prev, ok := asObject(out[k])
		if !ok {
			prev = nil
		}
		out[k] = map[string]any(JSONMap(prev).Merge(next))
	}
	return out
}

func asObject(v any) (map[string]any, bool) {
	switch o := v.(type) {
	case map[string]any:
		return o, true
	case JSONMap:
		return o, true
	default:
		return nil, false
	}
}
