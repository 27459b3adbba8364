// Package encoding serializes merged gateway results to strings. It is
// a pure structural transform: it knows nothing about providers, only
// the shape of the data (ordered documents, record lists, scalars).
package encoding

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Format selects a response encoding.
type Format string

const (
	// FormatJSON is the default structured encoding.
	FormatJSON Format = "json"
	// FormatTOON is a dense tabular encoding: uniform record lists are
	// rendered as a header row plus value rows instead of repeating
	// keys per record, which cuts the token count for agent consumers.
	FormatTOON Format = "toon"
)

// ErrDecodeUnsupported is returned when decoding a format that only
// supports encoding.
var ErrDecodeUnsupported = errors.New("decoding not supported for this format")

// ParseFormat maps a config string onto a Format, defaulting to JSON.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(FormatTOON)) {
		return FormatTOON
	}
	return FormatJSON
}

// Encode serializes v with the given format. Same input, same output:
// document fields keep insertion order and map keys are sorted.
func Encode(v any, f Format) (string, error) {
	if f == FormatTOON {
		return encodeTOON(v)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses an encoded string back into generic structured data.
// Only JSON supports decoding.
func Decode(s string, f Format) (any, error) {
	if f != FormatJSON {
		return nil, ErrDecodeUnsupported
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Field is one key/value pair of a Document.
type Field struct {
	Key   string
	Value any
}

// Document is an insertion-ordered string-keyed mapping. It exists so
// merged results serialize with a stable field order, which Go maps do
// not guarantee.
type Document struct {
	fields []Field
	index  map[string]int
}

// NewDocument creates an empty ordered document.
func NewDocument() *Document {
	return &Document{index: make(map[string]int)}
}

// Set appends a field, or replaces the value in place when the key is
// already present.
func (d *Document) Set(key string, value any) *Document {
	if i, ok := d.index[key]; ok {
		d.fields[i].Value = value
		return d
	}
	d.index[key] = len(d.fields)
	d.fields = append(d.fields, Field{Key: key, Value: value})
	return d
}

// Get returns the value stored under key.
func (d *Document) Get(key string) (any, bool) {
	i, ok := d.index[key]
	if !ok {
		return nil, false
	}
	return d.fields[i].Value, true
}

// Has reports whether key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.index[key]
	return ok
}

// Fields returns the fields in insertion order.
func (d *Document) Fields() []Field {
	return d.fields
}

// Len returns the number of fields.
func (d *Document) Len() int {
	return len(d.fields)
}

// MarshalJSON writes the document as a JSON object preserving field
// insertion order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
