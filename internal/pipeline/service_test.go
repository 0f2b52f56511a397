/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/config"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/database"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/table"
)

type mockDBAdapter struct {
	mock.Mock
}

func (m *mockDBAdapter) ListTables(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockDBAdapter) ListColumns(ctx context.Context, tableName string) ([]database.ColumnInfo, error) {
	args := m.Called(ctx, tableName)
	return args.Get(0).([]database.ColumnInfo), args.Error(1)
}

func (m *mockDBAdapter) SampleColumn(ctx context.Context, tableName, columnName string, limit int) ([]string, error) {
	args := m.Called(ctx, tableName, columnName, limit)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockDBAdapter) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockDBAdapter) Close() error {
	return m.Called().Error(0)
}

func (m *mockDBAdapter) GetConfig() config.DatabaseConfig {
	return config.DatabaseConfig{Dialect: "mock"}
}

var (
	emails = []string{"a@b.com", "john@example.org", "x@y.net"}
	zips   = []string{"12345", "90210", "10001"}
	phones = []string{"650-253-0000", "(201) 555-0123", "+1 650 253 0000"}
)

func newTestService(t *testing.T, db database.DBAdapter) (*Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := Config{Retry: fastRetry}
	return NewService(classifier.New(classifier.Config{}), db, cfg, zap.New(core)), logs
}

func contactTable() *table.Table {
	return &table.Table{
		Name: "leads.txt",
		Rows: [][]string{
			{"a@b.com", "12345", "x@y.net", "1"},
			{"john@example.org", "90210", "jane@example.com", "2"},
			{"x@y.net", "10001", "bob@example.org", "3"},
			{"k@l.com", "55555"},
		},
	}
}

func TestClassifyTable(t *testing.T) {
	svc, _ := newTestService(t, nil)

	results, err := svc.ClassifyTable(context.Background(), contactTable())
	require.NoError(t, err)
	require.Len(t, results, 4)

	want := []classifier.SemanticType{classifier.Email, classifier.Zip, classifier.Email, classifier.Numeric}
	for i, r := range results {
		assert.Equal(t, want[i], r.Type(), "column %d", i)
		assert.Equal(t, i, r.Index)
		assert.Equal(t, "leads.txt", r.Table)
	}
	assert.Equal(t, "column_1", results[0].Column)
	assert.Equal(t, "column_4", results[3].Column)
}

func TestClassifyTableUsesHeaderNames(t *testing.T) {
	svc, _ := newTestService(t, nil)
	tbl := &table.Table{Header: []string{"mail", ""}, Rows: [][]string{{"a@b.com", "12345"}}}

	results, err := svc.ClassifyTable(context.Background(), tbl)
	require.NoError(t, err)
	assert.Equal(t, "mail", results[0].Column)
	assert.Equal(t, "column_2", results[1].Column)
}

func TestClassifyTableErrors(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.ClassifyTable(context.Background(), nil)
	var invalid *ErrInvalidInput
	assert.ErrorAs(t, err, &invalid)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.ClassifyTable(ctx, contactTable())
	var cancelled *ErrCancelled
	assert.ErrorAs(t, err, &cancelled)
}

func TestRelabel(t *testing.T) {
	svc, logs := newTestService(t, nil)
	tbl := contactTable()

	results, err := svc.ClassifyTable(context.Background(), tbl)
	require.NoError(t, err)

	out, assignments := svc.Relabel(tbl, results)

	assert.Equal(t, "leads.txt", out.Name)
	assert.Equal(t, []string{"Zip", "Email"}, out.Header)
	assert.Equal(t, [][]string{
		{"12345", "a@b.com"},
		{"90210", "john@example.org"},
		{"10001", "x@y.net"},
		{"55555", "k@l.com"},
	}, out.Rows)

	require.Len(t, assignments, 4)
	assert.Equal(t, 1, assignments[0].Position)
	assert.Equal(t, 0, assignments[1].Position)
	assert.False(t, assignments[2].Kept())
	assert.Equal(t, "duplicate of column_1", assignments[2].Dropped)
	assert.False(t, assignments[3].Kept())
	assert.Equal(t, "type not in output order", assignments[3].Dropped)

	dups := logs.FilterMessage("Duplicate column type dropped").All()
	require.Len(t, dups, 1)
	assert.Equal(t, "column_3", dups[0].ContextMap()["column"])
	assert.Equal(t, "column_1", dups[0].ContextMap()["kept"])
}

func TestRelabelCustomOrder(t *testing.T) {
	svc := NewService(classifier.New(classifier.Config{}), nil, Config{
		OutputOrder: []classifier.SemanticType{classifier.Email, classifier.Numeric},
	}, zap.NewNop())
	tbl := contactTable()

	results, err := svc.ClassifyTable(context.Background(), tbl)
	require.NoError(t, err)
	out, assignments := svc.Relabel(tbl, results)

	assert.Equal(t, []string{"Email", "Numeric"}, out.Header)
	assert.Equal(t, []string{"k@l.com", ""}, out.Rows[3])
	assert.Equal(t, "type not in output order", assignments[1].Dropped)
}

func TestProcessFile(t *testing.T) {
	svc, _ := newTestService(t, nil)
	dir := t.TempDir()
	in := filepath.Join(dir, "leads.txt")
	content := "a@b.com|12345\njohn@example.org|90210\nx@y.net|10001\n"
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))

	report, err := svc.ProcessFile(context.Background(), in, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "processed_leads.txt"), report.Output)
	assert.Len(t, report.Results, 2)

	written, err := os.ReadFile(report.Output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(written)), "\n")
	assert.Equal(t, []string{
		"Original File: leads.txt",
		"Zip,Email",
		"12345,a@b.com",
		"90210,john@example.org",
		"10001,x@y.net",
	}, lines)
}

func TestProcessFileErrors(t *testing.T) {
	svc, _ := newTestService(t, nil)
	dir := t.TempDir()

	_, err := svc.ProcessFile(context.Background(), filepath.Join(dir, "missing.txt"), "")
	var readErr *ErrReadTable
	assert.ErrorAs(t, err, &readErr)
	assert.ErrorIs(t, err, os.ErrNotExist)

	in := filepath.Join(dir, "leads.txt")
	require.NoError(t, os.WriteFile(in, []byte("a@b.com\n"), 0o644))
	_, err = svc.ProcessFile(context.Background(), in, filepath.Join(dir, "no", "such", "dir.csv"))
	var writeErr *ErrWriteTable
	assert.ErrorAs(t, err, &writeErr)
}

func TestConfigFrom(t *testing.T) {
	cfg := config.GetConfig()
	cfg.Table.Delimiter = ";"
	cfg.Table.OutputOrder = []string{"email", "first name"}
	cfg.Table.HasHeader = true

	got, err := ConfigFrom(cfg)
	require.NoError(t, err)
	assert.Equal(t, ';', got.Input.Delimiter)
	assert.True(t, got.Input.HasHeader)
	assert.Equal(t, ',', got.Output.Delimiter)
	assert.Equal(t, []classifier.SemanticType{classifier.Email, classifier.FirstName}, got.OutputOrder)

	cfg.Table.OutputOrder = []string{"Salary"}
	_, err = ConfigFrom(cfg)
	var invalid *ErrInvalidInput
	assert.ErrorAs(t, err, &invalid)
}

func TestClassifyDatabase(t *testing.T) {
	db := new(mockDBAdapter)
	db.On("ListTables", mock.Anything).Return([]string{"leads", "accounts"}, nil)
	db.On("ListColumns", mock.Anything, "leads").Return([]database.ColumnInfo{
		{Name: "zip", DataType: "text"},
		{Name: "email", DataType: "varchar"},
	}, nil)
	db.On("ListColumns", mock.Anything, "accounts").Return([]database.ColumnInfo{
		{Name: "phone", DataType: "text"},
	}, nil)
	db.On("SampleColumn", mock.Anything, "leads", "zip", 0).Return(zips, nil)
	db.On("SampleColumn", mock.Anything, "leads", "email", 0).Return(emails, nil)
	db.On("SampleColumn", mock.Anything, "accounts", "phone", 0).Return(phones, nil)

	svc, _ := newTestService(t, db)
	results, err := svc.ClassifyDatabase(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "accounts", results[0].Table)
	assert.Equal(t, classifier.Phone, results[0].Type())
	assert.Equal(t, "email", results[1].Column)
	assert.Equal(t, "varchar", results[1].DataType)
	assert.Equal(t, classifier.Email, results[1].Type())
	assert.Equal(t, "zip", results[2].Column)
	assert.Equal(t, classifier.Zip, results[2].Type())
	db.AssertExpectations(t)
}

func TestClassifyDatabaseFilters(t *testing.T) {
	db := new(mockDBAdapter)
	db.On("ListTables", mock.Anything).Return([]string{"leads", "accounts"}, nil)
	db.On("ListColumns", mock.Anything, "leads").Return([]database.ColumnInfo{
		{Name: "zip", DataType: "text"},
		{Name: "email", DataType: "text"},
	}, nil)
	db.On("SampleColumn", mock.Anything, "leads", "zip", 0).Return(zips, nil)

	svc, _ := newTestService(t, db)
	results, err := svc.ClassifyDatabase(context.Background(), map[string][]string{"leads": {"zip"}, "missing": nil})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, classifier.Zip, results[0].Type())

	db.AssertNotCalled(t, "ListColumns", mock.Anything, "accounts")
	db.AssertNotCalled(t, "SampleColumn", mock.Anything, "leads", "email", 0)
}

func TestClassifyDatabaseNoMatchingTables(t *testing.T) {
	db := new(mockDBAdapter)
	db.On("ListTables", mock.Anything).Return([]string{"leads"}, nil)

	svc, _ := newTestService(t, db)
	results, err := svc.ClassifyDatabase(context.Background(), map[string][]string{"other": nil})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClassifyDatabaseRetriesSampling(t *testing.T) {
	db := new(mockDBAdapter)
	db.On("ListTables", mock.Anything).Return([]string{"leads"}, nil)
	db.On("ListColumns", mock.Anything, "leads").Return([]database.ColumnInfo{{Name: "email"}}, nil)
	db.On("SampleColumn", mock.Anything, "leads", "email", 0).Return([]string(nil), errors.New("connection reset")).Once()
	db.On("SampleColumn", mock.Anything, "leads", "email", 0).Return(emails, nil).Once()

	svc, logs := newTestService(t, db)
	results, err := svc.ClassifyDatabase(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, classifier.Email, results[0].Type())
	db.AssertNumberOfCalls(t, "SampleColumn", 2)
	assert.Equal(t, 1, logs.FilterMessage("Operation failed, retrying").Len())
}

func TestClassifyDatabasePartialFailure(t *testing.T) {
	db := new(mockDBAdapter)
	db.On("ListTables", mock.Anything).Return([]string{"leads", "accounts"}, nil)
	db.On("ListColumns", mock.Anything, "leads").Return([]database.ColumnInfo{{Name: "email"}}, nil)
	db.On("ListColumns", mock.Anything, "accounts").Return([]database.ColumnInfo{{Name: "phone"}}, nil)
	db.On("SampleColumn", mock.Anything, "leads", "email", 0).Return(emails, nil)
	db.On("SampleColumn", mock.Anything, "accounts", "phone", 0).Return([]string(nil), errors.New("permission denied"))

	svc, _ := newTestService(t, db)
	results, err := svc.ClassifyDatabase(context.Background(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "encountered 1 error(s)")
	assert.Contains(t, err.Error(), "Table[accounts]")
	assert.Contains(t, err.Error(), "permission denied")
	require.Len(t, results, 1)
	assert.Equal(t, "leads", results[0].Table)
	db.AssertNumberOfCalls(t, "SampleColumn", 1+fastRetry.MaxAttempts)
}

func TestClassifyDatabaseListTablesFailure(t *testing.T) {
	db := new(mockDBAdapter)
	db.On("ListTables", mock.Anything).Return([]string(nil), errors.New("relation does not exist"))

	svc, _ := newTestService(t, db)
	_, err := svc.ClassifyDatabase(context.Background(), nil)

	var queryErr *ErrQueryExecution
	assert.ErrorAs(t, err, &queryErr)
	db.AssertNumberOfCalls(t, "ListTables", fastRetry.MaxAttempts)
}

func TestClassifyDatabaseWithoutAdapter(t *testing.T) {
	svc, _ := newTestService(t, nil)
	_, err := svc.ClassifyDatabase(context.Background(), nil)

	var connErr *ErrDatabaseConnection
	assert.ErrorAs(t, err, &connErr)
}
