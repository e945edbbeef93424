package domain

import (
	"encoding/json"
	"strings"
)

// IDField is the key under which the store surfaces a document's identity.
const IDField = "_id"

// Field is one key/value pair of a document.
type Field struct {
	Key   string
	Value Value
}

// Document is an ordered sequence of fields, the shape every record leaves
// the store in. Order is the store's order, not lexical, and is preserved
// through parsing, serialisation and flattening. Keys may repeat in a
// malformed document; Get returns the first occurrence.
type Document []Field

// Len returns the number of fields.
func (d Document) Len() int { return len(d) }

// Keys returns the field keys in document order.
func (d Document) Keys() []string {
	keys := make([]string, len(d))
	for i, f := range d {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key and whether the key is present.
func (d Document) Get(key string) (Value, bool) {
	for _, f := range d {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Null(), false
}

// Has reports whether key is present.
func (d Document) Has(key string) bool {
	_, ok := d.Get(key)
	return ok
}

// Set replaces the first field stored under key, or appends a new field
// when the key is absent.
func (d *Document) Set(key string, v Value) {
	for i, f := range *d {
		if f.Key == key {
			(*d)[i].Value = v
			return
		}
	}
	*d = append(*d, Field{Key: key, Value: v})
}

// Equal reports field-by-field equality, order included.
func (d Document) Equal(other Document) bool {
	if len(d) != len(other) {
		return false
	}
	for i := range d {
		if d[i].Key != other[i].Key || !d[i].Value.Equal(other[i].Value) {
			return false
		}
	}
	return true
}

// JSON renders the document as a single-line JSON object with fields in
// document order. Object ids render as their quoted hex form, so the result
// is plain JSON with no store-specific wrapper types.
func (d Document) JSON() string {
	var b strings.Builder
	d.writeJSON(&b)
	return b.String()
}

func (d Document) writeJSON(b *strings.Builder) {
	b.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quoteJSON(f.Key))
		b.WriteByte(':')
		f.Value.writeJSON(b)
	}
	b.WriteByte('}')
}

func quoteJSON(s string) string {
	raw, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(raw)
}

// FlatRecord is a document reduced to dotted field paths and serialised
// leaf values, the unit handed to downstream indexing.
type FlatRecord map[string]any

// ID returns the record's identity rendered as a string, and whether the
// record carries one.
func (r FlatRecord) ID() (string, bool) {
	raw, ok := r[IDField]
	if !ok || raw == nil {
		return "", false
	}
	switch t := raw.(type) {
	case string:
		return t, true
	default:
		return FromNative(t).String(), true
	}
}

// EntityCount pairs an entity name with how many records the sink holds
// for it.
type EntityCount struct {
	Entity  string
	Records int64
}

// ChangeMarker identifies one changed document discovered between imports.
// Only the identity travels; the delta import phase fetches the full
// document by substituting the id back into the entity's import query.
type ChangeMarker struct {
	ID string
}

// Record renders the marker in the same shape as an imported row, a flat
// record holding only the identity field.
func (m ChangeMarker) Record() FlatRecord {
	return FlatRecord{IDField: m.ID}
}
