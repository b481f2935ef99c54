package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Row is a single label record: field name to field value, preserving the
// key order of the JSON document it was decoded from. Field-order
// preservation matters: the CSV column layout handed to the render tool is
// derived from first-seen key order across rows, and must be reproducible.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow builds a Row from alternating key/value pairs, in the given order.
// It panics on an odd number of arguments or a non-string key; it is meant
// for tests and fixtures, not for decoding untrusted input.
func NewRow(pairs ...any) Row {
	if len(pairs)%2 != 0 {
		// ALLOW-PANIC: fixture constructor misuse is a programming error
		panic("NewRow requires an even number of arguments")
	}
	row := Row{values: make(map[string]any, len(pairs)/2)}
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			// ALLOW-PANIC: fixture constructor misuse is a programming error
			panic("NewRow keys must be strings")
		}
		row.set(key, pairs[i+1])
	}
	return row
}

func (r *Row) set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Keys returns the field names in first-seen order. The returned slice must
// not be mutated.
func (r Row) Keys() []string {
	return r.keys
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r.keys)
}

// StringValue returns the field value rendered as a string, or "" when the
// field is absent or null. Numbers keep their JSON literal form.
func (r Row) StringValue(key string) string {
	v, ok := r.values[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// UnmarshalJSON decodes a JSON object while recording key order. Duplicate
// keys keep their first position and the last value, matching encoding/json.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row must be a JSON object, got %v", tok)
	}

	r.keys = nil
	r.values = make(map[string]any)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("row key must be a string, got %v", keyTok)
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		r.set(key, value)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the row as a JSON object in key order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		valueJSON, err := json.Marshal(r.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valueJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
