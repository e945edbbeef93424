package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mongoflat/mongoflat/internal/core/domain"
)

// mockBrowse implements driving.BrowseService for testing.
type mockBrowse struct {
	counts  []domain.EntityCount
	records []domain.FlatRecord
	record  domain.FlatRecord
	runs    []domain.RunSummary
	err     error
}

func (m *mockBrowse) Entities(_ context.Context) ([]domain.EntityCount, error) {
	return m.counts, m.err
}

func (m *mockBrowse) Records(_ context.Context, _ string, _ int) ([]domain.FlatRecord, error) {
	return m.records, m.err
}

func (m *mockBrowse) Record(_ context.Context, _, _ string) (domain.FlatRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.record == nil {
		return nil, domain.ErrNotFound
	}
	return m.record, nil
}

func (m *mockBrowse) Runs(_ context.Context, _ string, _ int) ([]domain.RunSummary, error) {
	return m.runs, m.err
}

func setupBrowseTest(m *mockBrowse) func() {
	old := browseService
	browseService = m
	return func() {
		browseService = old
		recordsDocID = ""
		recordsLimit = 20
		runsLimit = 10
	}
}

func TestEntitiesCmd_Use(t *testing.T) {
	assert.Equal(t, "entities", entitiesCmd.Use)
}

func TestEntitiesCmd_Short(t *testing.T) {
	assert.Equal(t, "List entities holding imported records", entitiesCmd.Short)
}

func TestEntitiesCmd_ListsCounts(t *testing.T) {
	cleanup := setupBrowseTest(&mockBrowse{
		counts: []domain.EntityCount{
			{Entity: "orders", Records: 42},
			{Entity: "users", Records: 7},
		},
	})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"entities"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "orders")
	assert.Contains(t, buf.String(), "42")
	assert.Contains(t, buf.String(), "users")
	assert.Contains(t, buf.String(), "Total: 2 entities")
}

func TestEntitiesCmd_Empty(t *testing.T) {
	cleanup := setupBrowseTest(&mockBrowse{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"entities"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No records imported yet.")
}

func TestEntitiesCmd_ServiceNotConfigured(t *testing.T) {
	old := browseService
	browseService = nil
	defer func() {
		browseService = old
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"entities"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "browse service not configured")
}

func TestEntitiesCmd_ServiceError(t *testing.T) {
	cleanup := setupBrowseTest(&mockBrowse{err: errors.New("database locked")})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"entities"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list entities")
}
