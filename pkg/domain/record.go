// Package domain defines the cattle record model, lifecycle states and the
// persistence contracts used by the gomata registry.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Status is the lifecycle state stored under FieldStatus.
type Status string

// Record lifecycle states. No operation moves a record back to StatusActive.
const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
)

// Well-known record field names.
const (
	FieldID                 = "adhaar_id"
	FieldOwnerName          = "owner_name"
	FieldBreed              = "breed"
	FieldAge                = "age"
	FieldGender             = "gender"
	FieldColor              = "color"
	FieldRegistrationDate   = "registration_date"
	FieldStatus             = "status"
	FieldLastUpdated        = "last_updated"
	FieldDeactivationDate   = "deactivation_date"
	FieldDeactivationReason = "deactivation_reason"
)

// TimestampLayout renders lifecycle timestamps as local ISO-8601 with
// microsecond precision and no zone, which keeps them lexically ordered.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Field is a single caller supplied key/value pair.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered list of fields merged into a record in sequence.
type Fields []Field

// With returns a copy of f with key=value appended.
func (f Fields) With(key string, value any) Fields {
	out := make(Fields, len(f), len(f)+1)
	copy(out, f)
	return append(out, Field{Key: key, Value: value})
}

// Record is an open, insertion-ordered mapping of field names to scalar
// values describing one animal. The zero value is an empty record.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord builds a record from fields applied in order.
func NewRecord(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// Set assigns key. New keys are appended; existing keys keep their position.
func (r *Record) Set(key string, value any) {
	if r.values == nil {
		r.values = make(map[string]any)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Merge applies fields in order, overwriting existing keys.
func (r *Record) Merge(fields Fields) {
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
}

// Get returns the raw value stored under key.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Text returns the value under key when it is a string.
func (r Record) Text(key string) (string, bool) {
	v, ok := r.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (r Record) str(key string) string {
	s, _ := r.Text(key)
	return s
}

// Keys returns field names in insertion order.
func (r Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len reports the number of fields.
func (r Record) Len() int { return len(r.keys) }

// Fields returns the record contents in insertion order.
func (r Record) Fields() Fields {
	out := make(Fields, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, Field{Key: k, Value: r.values[k]})
	}
	return out
}

// Clone returns a deep copy; nested maps and slices are copied as well.
func (r Record) Clone() Record {
	out := Record{
		keys:   make([]string, len(r.keys)),
		values: make(map[string]any, len(r.values)),
	}
	copy(out.keys, r.keys)
	for k, v := range r.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

// ID returns the adhaar_id field.
func (r Record) ID() string { return r.str(FieldID) }

// OwnerName returns the owner_name field.
func (r Record) OwnerName() string { return r.str(FieldOwnerName) }

// Breed returns the breed field.
func (r Record) Breed() string { return r.str(FieldBreed) }

// Gender returns the gender field.
func (r Record) Gender() string { return r.str(FieldGender) }

// Color returns the color field.
func (r Record) Color() string { return r.str(FieldColor) }

// RegistrationDate returns the registration_date timestamp string.
func (r Record) RegistrationDate() string { return r.str(FieldRegistrationDate) }

// LastUpdated returns the last_updated timestamp string, if any.
func (r Record) LastUpdated() string { return r.str(FieldLastUpdated) }

// DeactivationDate returns the deactivation_date timestamp string, if any.
func (r Record) DeactivationDate() string { return r.str(FieldDeactivationDate) }

// DeactivationReason returns the deactivation_reason field, if any.
func (r Record) DeactivationReason() string { return r.str(FieldDeactivationReason) }

// Status returns the lifecycle status field.
func (r Record) Status() Status { return Status(r.str(FieldStatus)) }

// Age returns the age field as an integer. Integral floats and numeric
// strings from hand edited documents are accepted.
func (r Record) Age() (int, bool) {
	v, ok := r.values[FieldAge]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == math.Trunc(n) {
			return int(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, true
		}
	}
	return 0, false
}

// MarshalJSON writes the record as a JSON object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object keeping the document's field order.
// Integral numbers decode as int64, others as float64.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	*r = Record{}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return err
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		r.Set(key, normalizeValue(raw))
	}
	return expectDelim(dec, '}')
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeValue(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalizeValue(inner)
		}
		return t
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, inner := range t {
			out[k] = cloneValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, inner := range t {
			out[i] = cloneValue(inner)
		}
		return out
	default:
		return v
	}
}
