package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a set-like list of strings stored as a JSON array.
type StringList []string

// Value serializes the list to JSON. A nil list is stored as an empty array.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Scan decodes a JSON array.
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []string
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}

// Contains reports whether value is in the list.
func (s StringList) Contains(value string) bool {
	for _, v := range s {
		if v == value {
			return true
		}
	}
	return false
}

// Add returns the list with value appended unless already present.
func (s StringList) Add(value string) StringList {
	if s.Contains(value) {
		return s
	}
	return append(s, value)
}

// Remove returns the list without value.
func (s StringList) Remove(value string) StringList {
	out := make(StringList, 0, len(s))
	for _, v := range s {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

// Normalize trims entries, drops blanks and removes duplicates, keeping first
// occurrence order.
func (s StringList) Normalize() StringList {
	out := make(StringList, 0, len(s))
	for _, v := range s {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = out.Add(v)
	}
	return out
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
