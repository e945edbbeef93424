package memstore

import (
	"fmt"
	"strings"

	"github.com/mongoflat/mongoflat/internal/core/domain"
	"github.com/mongoflat/mongoflat/internal/flatten"
)

// predicate reports whether a document matches a compiled filter.
type predicate func(domain.Document) bool

// compile turns a filter document into a predicate. Top-level fields are
// combined with AND. Supported operators: $and, $or, $eq, $ne, $gt,
// $gte, $lt, $lte, $in, $nin and $exists. Anything else is an error so
// that unsupported queries fail loudly instead of matching nothing.
func compile(filter domain.Document) (predicate, error) {
	preds := make([]predicate, 0, filter.Len())
	for _, field := range filter {
		pred, err := compileField(field.Key, field.Value)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return allOf(preds), nil
}

func compileField(key string, value domain.Value) (predicate, error) {
	switch key {
	case "$and":
		return compileBranch(key, value, allOf)
	case "$or":
		return compileBranch(key, value, anyOf)
	}
	if strings.HasPrefix(key, "$") {
		return nil, fmt.Errorf("unsupported operator %q", key)
	}
	if value.Kind() == domain.KindDocument && isOperatorDoc(value.Document()) {
		return compileOperators(key, value.Document())
	}
	return compileCompare(key, "$eq", value)
}

// compileBranch handles $and / $or, whose operand is a list of filters.
func compileBranch(op string, value domain.Value, join func([]predicate) predicate) (predicate, error) {
	if value.Kind() != domain.KindList {
		return nil, fmt.Errorf("%s expects a list of filters", op)
	}
	list := value.Values()
	preds := make([]predicate, 0, len(list))
	for _, elem := range list {
		if elem.Kind() != domain.KindDocument {
			return nil, fmt.Errorf("%s expects a list of filters", op)
		}
		pred, err := compile(elem.Document())
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return join(preds), nil
}

// isOperatorDoc reports whether every key of the document is an
// operator. A mixed document is treated as a plain nested value.
func isOperatorDoc(doc domain.Document) bool {
	if doc.Len() == 0 {
		return false
	}
	for _, field := range doc {
		if !strings.HasPrefix(field.Key, "$") {
			return false
		}
	}
	return true
}

func compileOperators(path string, ops domain.Document) (predicate, error) {
	preds := make([]predicate, 0, ops.Len())
	for _, op := range ops {
		pred, err := compileCompare(path, op.Key, op.Value)
		if err != nil {
			return nil, err
		}
		preds = append(preds, pred)
	}
	return allOf(preds), nil
}

func compileCompare(path, op string, operand domain.Value) (predicate, error) {
	switch op {
	case "$eq":
		return func(doc domain.Document) bool {
			return matchesEqual(doc, path, operand)
		}, nil
	case "$ne":
		return func(doc domain.Document) bool {
			return !matchesEqual(doc, path, operand)
		}, nil
	case "$gt", "$gte", "$lt", "$lte":
		return func(doc domain.Document) bool {
			return matchesOrder(doc, path, op, operand)
		}, nil
	case "$in":
		if operand.Kind() != domain.KindList {
			return nil, fmt.Errorf("$in expects a list")
		}
		list := operand.Values()
		return func(doc domain.Document) bool {
			return matchesIn(doc, path, list)
		}, nil
	case "$nin":
		if operand.Kind() != domain.KindList {
			return nil, fmt.Errorf("$nin expects a list")
		}
		list := operand.Values()
		return func(doc domain.Document) bool {
			return !matchesIn(doc, path, list)
		}, nil
	case "$exists":
		if operand.Kind() != domain.KindBool {
			return nil, fmt.Errorf("$exists expects a boolean")
		}
		want := operand.Boolean()
		return func(doc domain.Document) bool {
			_, present := flatten.Resolve(doc, path)
			return present == want
		}, nil
	}
	return nil, fmt.Errorf("unsupported operator %q", op)
}

// matchesEqual applies document-store equality: a direct match, a match
// against any element of a list field, and null matching absent fields.
func matchesEqual(doc domain.Document, path string, operand domain.Value) bool {
	value, present := flatten.Resolve(doc, path)
	if !present {
		return operand.IsNull()
	}
	if value.Equal(operand) {
		return true
	}
	if value.Kind() == domain.KindList {
		for _, elem := range value.Values() {
			if elem.Equal(operand) {
				return true
			}
		}
	}
	return false
}

func matchesOrder(doc domain.Document, path, op string, operand domain.Value) bool {
	value, present := flatten.Resolve(doc, path)
	if !present {
		return false
	}
	cmp, ok := value.Compare(operand)
	if !ok {
		return false
	}
	switch op {
	case "$gt":
		return cmp > 0
	case "$gte":
		return cmp >= 0
	case "$lt":
		return cmp < 0
	case "$lte":
		return cmp <= 0
	}
	return false
}

func matchesIn(doc domain.Document, path string, operands []domain.Value) bool {
	for _, operand := range operands {
		if matchesEqual(doc, path, operand) {
			return true
		}
	}
	return false
}

func allOf(preds []predicate) predicate {
	return func(doc domain.Document) bool {
		for _, pred := range preds {
			if !pred(doc) {
				return false
			}
		}
		return true
	}
}

func anyOf(preds []predicate) predicate {
	return func(doc domain.Document) bool {
		for _, pred := range preds {
			if pred(doc) {
				return true
			}
		}
		return false
	}
}
