package docparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

func TestDocumentParsesStrictJSON(t *testing.T) {
	doc, err := Document(`{"name": "ada", "age": 36, "score": 9.5, "active": true, "note": null}`)

	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age", "score", "active", "note"}, doc.Keys())

	age, _ := doc.Get("age")
	assert.Equal(t, domain.KindInt, age.Kind())
	assert.Equal(t, int64(36), age.Int64())

	score, _ := doc.Get("score")
	assert.Equal(t, domain.KindDouble, score.Kind())

	note, _ := doc.Get("note")
	assert.True(t, note.IsNull())
}

func TestDocumentToleratesShellStyleKeys(t *testing.T) {
	doc, err := Document(`{status: "open", updated: {$gt: "2025-08-20T04:34:56Z"}}`)

	require.NoError(t, err)

	updated, ok := doc.Get("updated")
	require.True(t, ok)
	require.Equal(t, domain.KindDocument, updated.Kind())

	gt, ok := updated.Document().Get("$gt")
	require.True(t, ok)
	assert.Equal(t, "2025-08-20T04:34:56Z", gt.Text())
}

func TestDocumentPreservesNestedOrder(t *testing.T) {
	doc, err := Document(`{"z": 1, "a": {"m": [1, 2, {"d": 4}], "b": 2}}`)

	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"m":[1,2,{"d":4}],"b":2}}`, doc.JSON())
}

func TestDocumentEmptyInputsMatchEverything(t *testing.T) {
	for _, in := range []string{"", "   ", "{}"} {
		doc, err := Document(in)
		require.NoError(t, err)
		assert.Equal(t, 0, doc.Len())
	}
}

func TestDocumentRejectsNonDocumentRoot(t *testing.T) {
	_, err := Document(`[1, 2, 3]`)
	assert.ErrorIs(t, err, ErrNotDocument)

	_, err = Document(`"just a string"`)
	assert.ErrorIs(t, err, ErrNotDocument)
}

func TestDocumentReportsSyntaxErrors(t *testing.T) {
	_, err := Document(`{"a": {"unclosed": 1}`)
	assert.Error(t, err)
}

func TestDocumentCollapsesObjectIDWrapper(t *testing.T) {
	doc, err := Document(`{"_id": {"$oid": "64ef00aa1b2c3d4e5f607182"}}`)

	require.NoError(t, err)
	id, ok := doc.Get("_id")
	require.True(t, ok)
	assert.Equal(t, domain.KindObjectID, id.Kind())
	assert.Equal(t, "64ef00aa1b2c3d4e5f607182", id.Text())
}

func TestDocumentKeepsMultiFieldDollarDocuments(t *testing.T) {
	doc, err := Document(`{"range": {"$oid": "x", "other": 1}}`)

	require.NoError(t, err)
	r, _ := doc.Get("range")
	assert.Equal(t, domain.KindDocument, r.Kind())
}

func TestDocumentKeepsUnquotedTimestampsAsText(t *testing.T) {
	doc, err := Document(`{updated: 2025-08-20}`)

	require.NoError(t, err)
	updated, _ := doc.Get("updated")
	assert.Equal(t, domain.KindString, updated.Kind())
	assert.Equal(t, "2025-08-20", updated.Text())
}

func TestDocumentsParsesArray(t *testing.T) {
	docs, err := Documents(`[{"_id": "a"}, {"_id": "b"}]`)

	require.NoError(t, err)
	require.Len(t, docs, 2)

	id, _ := docs[1].Get("_id")
	assert.Equal(t, "b", id.Text())
}

func TestDocumentsParsesYAMLStream(t *testing.T) {
	docs, err := Documents("_id: a\nn: 1\n---\n_id: b\nn: 2\n")

	require.NoError(t, err)
	require.Len(t, docs, 2)

	n, _ := docs[0].Get("n")
	assert.Equal(t, int64(1), n.Int64())
}

func TestDocumentsRejectsScalarEntries(t *testing.T) {
	_, err := Documents(`[{"_id": "a"}, 42]`)
	assert.ErrorIs(t, err, ErrNotDocument)
}

func TestValueParsesScalars(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Value
	}{
		{`"x"`, domain.String("x")},
		{`7`, domain.Int(7)},
		{`2.5`, domain.Double(2.5)},
		{`true`, domain.Bool(true)},
		{`null`, domain.Null()},
		{``, domain.Null()},
		{`[1, "two"]`, domain.List(domain.Int(1), domain.String("two"))},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Value(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s", got)
		})
	}
}
