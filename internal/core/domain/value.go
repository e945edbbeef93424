package domain

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the variants a Value can hold.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindDouble
	KindString
	KindObjectID
	KindList
	KindDocument
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindObjectID:
		return "objectid"
	case KindList:
		return "list"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Value is a tagged union over everything a schema-less store document can
// hold. The zero Value is null. Values are immutable once built; accessors
// for a kind other than the one stored return that accessor's zero value
// rather than panicking, so callers switch on Kind first when the
// distinction matters.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	doc  Document
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps a 64-bit integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Double wraps a 64-bit float.
func Double(f float64) Value { return Value{kind: KindDouble, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// ObjectID wraps a store object identifier, kept as its hex form.
func ObjectID(hex string) Value { return Value{kind: KindObjectID, s: hex} }

// List wraps an ordered sequence of values.
func List(elems ...Value) Value { return Value{kind: KindList, list: elems} }

// Nested wraps an embedded document.
func Nested(d Document) Value { return Value{kind: KindDocument, doc: d} }

// Kind reports which variant the value holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Boolean returns the boolean payload, or false for any other kind.
func (v Value) Boolean() bool { return v.b }

// Int64 returns the integer payload, or 0 for any other kind.
func (v Value) Int64() int64 { return v.i }

// Float64 returns the double payload. For KindInt the integer is widened so
// numeric callers can treat both number kinds alike.
func (v Value) Float64() float64 {
	if v.kind == KindInt {
		return float64(v.i)
	}
	return v.f
}

// Text returns the string payload for KindString and KindObjectID, or ""
// for any other kind.
func (v Value) Text() string { return v.s }

// Values returns the list payload, or nil for any other kind. The returned
// slice is shared and must not be mutated.
func (v Value) Values() []Value { return v.list }

// Document returns the embedded document payload, or an empty document for
// any other kind.
func (v Value) Document() Document { return v.doc }

// IsNumber reports whether the value is an int or a double.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindDouble }

// String renders the value the way it would appear inside a document's JSON
// form. Strings and object ids are quoted; lists and documents recurse.
func (v Value) String() string {
	var b strings.Builder
	v.writeJSON(&b)
	return b.String()
}

func (v Value) writeJSON(b *strings.Builder) {
	switch v.kind {
	case KindNull:
		b.WriteString("null")
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindDouble:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			b.WriteString("null")
			return
		}
		b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString, KindObjectID:
		b.WriteString(quoteJSON(v.s))
	case KindList:
		b.WriteByte('[')
		for i, e := range v.list {
			if i > 0 {
				b.WriteByte(',')
			}
			e.writeJSON(b)
		}
		b.WriteByte(']')
	case KindDocument:
		v.doc.writeJSON(b)
	}
}

// Equal reports deep equality. Int and double compare numerically, so
// Int(2) equals Double(2). Lists compare elementwise and documents compare
// field by field in order.
func (v Value) Equal(other Value) bool {
	if v.IsNumber() && other.IsNumber() {
		return v.Float64() == other.Float64()
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindString, KindObjectID:
		return v.s == other.s
	case KindList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	case KindDocument:
		return v.doc.Equal(other.doc)
	default:
		return false
	}
}

// Compare orders two values when an ordering exists. Numbers compare
// numerically across int and double; strings and object ids compare
// lexically, which orders ISO-8601 timestamps chronologically; booleans
// order false before true. Nulls, lists, documents and mixed kinds report
// ok false.
func (v Value) Compare(other Value) (int, bool) {
	if v.IsNumber() && other.IsNumber() {
		a, b := v.Float64(), other.Float64()
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	if v.kind != other.kind {
		return 0, false
	}
	switch v.kind {
	case KindString, KindObjectID:
		return strings.Compare(v.s, other.s), true
	case KindBool:
		switch {
		case v.b == other.b:
			return 0, true
		case other.b:
			return -1, true
		default:
			return 1, true
		}
	default:
		return 0, false
	}
}

// FromNative converts a plain Go value into a Value. It is total: anything
// unrecognised falls back to its fmt rendering as a string. Maps lose their
// iteration nondeterminism by sorting keys; parse ordered input with the
// docparse package when field order matters.
func FromNative(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case Document:
		return Nested(t)
	case bool:
		return Bool(t)
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Int(int64(t))
	case uint8:
		return Int(int64(t))
	case uint16:
		return Int(int64(t))
	case uint32:
		return Int(int64(t))
	case uint64:
		return Int(int64(t))
	case float32:
		return Double(float64(t))
	case float64:
		return Double(t)
	case string:
		return String(t)
	case time.Time:
		return String(t.UTC().Format(time.RFC3339))
	case []Value:
		return List(t...)
	case []any:
		elems := make([]Value, len(t))
		for i, e := range t {
			elems[i] = FromNative(e)
		}
		return List(elems...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var d Document
		for _, k := range keys {
			d = append(d, Field{Key: k, Value: FromNative(t[k])})
		}
		return Nested(d)
	default:
		return String(fmt.Sprint(t))
	}
}
