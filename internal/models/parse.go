package models

import (
	"encoding/json"
	"strings"
)

// ParseJSON decodes a serialized nested field read back from storage.
// Historical rows may hold the literal strings "[object Object]" or
// "[object Array]" left behind by a double-serialization bug; those and any
// other non-JSON content decode to the zero value instead of failing.
func ParseJSON[T any](raw string) T {
	var v T
	s := strings.TrimSpace(raw)
	if s == "" || s == "null" || s == "[object Object]" || s == "[object Array]" {
		return v
	}
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		var zero T
		return zero
	}
	return v
}

// MarshalJSONField serializes a nested field for storage. A nil-ish value
// is stored as the empty string so ParseJSON round-trips it to nil.
func MarshalJSONField(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	s := string(b)
	if s == "null" {
		return ""
	}
	return s
}
