package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single column value inside a Row.
type Field struct {
	Name  string
	Value any
}

// Row is one sample-data record. Unlike a map it keeps its fields in
// column order, so the encoded JSON object lists keys the way the table
// declares them.
//
// Values are string, int64 or nil.
type Row []Field

// Get returns the value stored under name.
func (r Row) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// String returns the value under name if it is a string.
func (r Row) String(name string) string {
	v, _ := r.Get(name)
	s, _ := v.(string)
	return s
}

// Int returns the value under name if it is an integer.
func (r Row) Int(name string) (int64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}

// MarshalJSON encodes the row as a JSON object in field order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, f.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, f.Value); err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeJSON appends v without HTML escaping and without the trailing
// newline json.Encoder adds.
func writeJSON(buf *bytes.Buffer, v any) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// UnmarshalJSON decodes a JSON object, keeping key order. Integral numbers
// become int64, other numbers float64.
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

	row := Row{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected row key %v", tok)
		}

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		row = append(row, Field{Name: key, Value: normalizeValue(raw)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*r = row
	return nil
}

func normalizeValue(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}
