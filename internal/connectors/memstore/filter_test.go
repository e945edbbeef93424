package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatching(t *testing.T) {
	doc := mustDoc(t, `{
		"_id": "a1",
		"total": 42,
		"price": 9.5,
		"status": "shipped",
		"tags": ["rush", "gift"],
		"customer": {"name": "Ada", "city": "Turin"},
		"updated": "2024-03-01T08:00:00Z"
	}`)

	cases := []struct {
		name   string
		filter string
		want   bool
	}{
		{"equality on string", `{"status": "shipped"}`, true},
		{"equality mismatch", `{"status": "pending"}`, false},
		{"equality on int", `{"total": 42}`, true},
		{"int matches double operand", `{"total": 42.0}`, true},
		{"equality against list element", `{"tags": "gift"}`, true},
		{"equality against absent list element", `{"tags": "bulk"}`, false},
		{"null matches absent field", `{"deleted_at": null}`, true},
		{"null does not match present field", `{"status": null}`, false},
		{"dotted path into nested document", `{"customer.city": "Turin"}`, true},
		{"dotted path mismatch", `{"customer.city": "Rome"}`, false},
		{"ne on absent field", `{"deleted_at": {"$ne": "x"}}`, true},
		{"gt numeric", `{"total": {"$gt": 40}}`, true},
		{"gt numeric false", `{"total": {"$gt": 42}}`, false},
		{"gte boundary", `{"total": {"$gte": 42}}`, true},
		{"lt on double", `{"price": {"$lt": 10}}`, true},
		{"lte boundary", `{"price": {"$lte": 9.5}}`, true},
		{"timestamp ordering is lexical", `{"updated": {"$gt": "2024-02-29T00:00:00Z"}}`, true},
		{"timestamp upper bound", `{"updated": {"$lt": "2024-03-01T00:00:00Z"}}`, false},
		{"range combines operators", `{"total": {"$gte": 40, "$lt": 50}}`, true},
		{"range excludes", `{"total": {"$gte": 40, "$lt": 42}}`, false},
		{"in matches", `{"status": {"$in": ["pending", "shipped"]}}`, true},
		{"in misses", `{"status": {"$in": ["pending", "cancelled"]}}`, false},
		{"in against list field", `{"tags": {"$in": ["gift"]}}`, true},
		{"nin", `{"status": {"$nin": ["pending"]}}`, true},
		{"exists true", `{"total": {"$exists": true}}`, true},
		{"exists false on absent", `{"deleted_at": {"$exists": false}}`, true},
		{"exists false on present", `{"total": {"$exists": false}}`, false},
		{"ordering across types never matches", `{"status": {"$gt": 5}}`, false},
		{"top level fields are anded", `{"status": "shipped", "total": 42}`, true},
		{"anded mismatch", `{"status": "shipped", "total": 1}`, false},
		{"explicit and", `{"$and": [{"status": "shipped"}, {"total": {"$gt": 40}}]}`, true},
		{"or takes either branch", `{"$or": [{"status": "pending"}, {"total": 42}]}`, true},
		{"or with no branch", `{"$or": [{"status": "pending"}, {"total": 1}]}`, false},
		{"nested document treated as value not operators", `{"customer": {"name": "Ada", "city": "Turin"}}`, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filter := mustDoc(t, tc.filter)
			match, err := compile(filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, match(doc))
		})
	}
}

func TestFilterCompileErrors(t *testing.T) {
	cases := []struct {
		name   string
		filter string
	}{
		{"unknown top-level operator", `{"$nor": [{"a": 1}]}`},
		{"unknown field operator", `{"a": {"$regex": "x"}}`},
		{"and without list", `{"$and": {"a": 1}}`},
		{"or with scalar branch", `{"$or": [1, 2]}`},
		{"in without list", `{"a": {"$in": "x"}}`},
		{"exists without bool", `{"a": {"$exists": "yes"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			filter := mustDoc(t, tc.filter)
			_, err := compile(filter)
			assert.Error(t, err)
		})
	}
}
