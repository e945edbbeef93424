// Package flatten reduces nested store documents to flat records keyed by
// dotted field paths.
//
// Enumeration, resolution and serialisation are exposed separately because
// they answer different questions: which paths a document has, what lives
// at one path, and how a leaf travels downstream. Flatten composes the
// three.
package flatten

import (
	"strconv"
	"strings"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// PathSeparator joins path segments and splits them again on resolution.
const PathSeparator = "."

// Enumerate lists the dotted field paths of a document, in document order,
// deduplicated.
//
// Nested documents contribute one path per leaf. Lists holding only
// scalars are leaves themselves and contribute their whole-list path,
// the empty list included. A list holding a nested document or list is
// entered per index: document elements recurse, list elements contribute
// their indexed path without being descended into, and scalar elements
// contribute nothing. Null values are leaves like any scalar.
func Enumerate(doc domain.Document) []string {
	var paths []string
	seen := make(map[string]struct{})
	enumerateDoc(doc, "", &paths, seen)
	return paths
}

func enumerateDoc(doc domain.Document, prefix string, paths *[]string, seen map[string]struct{}) {
	for _, f := range doc {
		full := f.Key
		if prefix != "" {
			full = prefix + PathSeparator + f.Key
		}
		enumerateValue(f.Value, full, paths, seen)
	}
}

func enumerateValue(v domain.Value, path string, paths *[]string, seen map[string]struct{}) {
	switch v.Kind() {
	case domain.KindDocument:
		enumerateDoc(v.Document(), path, paths, seen)
	case domain.KindList:
		if !holdsNested(v.Values()) {
			addPath(path, paths, seen)
			return
		}
		for i, elem := range v.Values() {
			indexed := path + PathSeparator + strconv.Itoa(i)
			switch elem.Kind() {
			case domain.KindDocument:
				enumerateDoc(elem.Document(), indexed, paths, seen)
			case domain.KindList:
				// A list directly inside a list is addressed whole.
				addPath(indexed, paths, seen)
			default:
				// Scalar elements of a mixed list yield no path.
			}
		}
	default:
		addPath(path, paths, seen)
	}
}

func holdsNested(elems []domain.Value) bool {
	for _, e := range elems {
		if e.Kind() == domain.KindDocument || e.Kind() == domain.KindList {
			return true
		}
	}
	return false
}

func addPath(path string, paths *[]string, seen map[string]struct{}) {
	if _, dup := seen[path]; dup {
		return
	}
	seen[path] = struct{}{}
	*paths = append(*paths, path)
}

// Resolve walks a dotted path through a document and returns the value it
// lands on. The second result is false when the path leads nowhere: a
// missing key, a non-numeric or out-of-range index into a list, or
// segments left over after reaching a scalar. Resolution never fails hard;
// a malformed path is simply absent.
func Resolve(doc domain.Document, path string) (domain.Value, bool) {
	current := domain.Nested(doc)
	for _, segment := range strings.Split(path, PathSeparator) {
		switch current.Kind() {
		case domain.KindDocument:
			v, ok := current.Document().Get(segment)
			if !ok {
				return domain.Null(), false
			}
			current = v
		case domain.KindList:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(current.Values()) {
				return domain.Null(), false
			}
			current = current.Values()[idx]
		default:
			return domain.Null(), false
		}
	}
	return current, true
}

// Serialize renders a leaf value into what a flat record carries. Scalars
// keep their native type, object ids flatten to their hex string, lists
// serialise elementwise, and nested documents collapse to their JSON text.
// The document case is lossy on purpose; structure below an enumerated
// path has already been accounted for by enumeration.
func Serialize(v domain.Value) any {
	switch v.Kind() {
	case domain.KindNull:
		return nil
	case domain.KindBool:
		return v.Boolean()
	case domain.KindInt:
		return v.Int64()
	case domain.KindDouble:
		return v.Float64()
	case domain.KindString, domain.KindObjectID:
		return v.Text()
	case domain.KindList:
		out := make([]any, len(v.Values()))
		for i, e := range v.Values() {
			out[i] = Serialize(e)
		}
		return out
	case domain.KindDocument:
		return v.Document().JSON()
	default:
		return nil
	}
}

// Flatten reduces a whole document to a flat record: every enumerated path
// resolved and serialised.
func Flatten(doc domain.Document) domain.FlatRecord {
	rec := make(domain.FlatRecord)
	for _, path := range Enumerate(doc) {
		if v, ok := Resolve(doc, path); ok {
			rec[path] = Serialize(v)
		}
	}
	return rec
}

// TopLevel reduces a document without path mapping: each top-level field
// serialised under its own key, nested structure collapsing to JSON text.
// This is the shape produced when field mapping is disabled in the store
// settings.
func TopLevel(doc domain.Document) domain.FlatRecord {
	rec := make(domain.FlatRecord, doc.Len())
	for _, f := range doc {
		rec[f.Key] = Serialize(f.Value)
	}
	return rec
}
