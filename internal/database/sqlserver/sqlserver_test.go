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
package sqlserver

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/config"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSQLServerDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDb.Close() })
	return &database.DB{Pool: mockDb, Handler: sqlServerHandler{}, Config: config.DatabaseConfig{Dialect: "sqlserver"}}, mock
}

func TestSQLServerQuoteIdentifier(t *testing.T) {
	h := sqlServerHandler{}

	tests := []struct {
		in   string
		want string
	}{
		{"contacts", "[contacts]"},
		{"first name", "[first name]"},
		{"odd]name", "[odd]]name]"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, h.QuoteIdentifier(tt.in))
		})
	}
}

func TestSQLServerListTablesAndColumns(t *testing.T) {
	db, mock := newMockSQLServerDB(t)
	h := sqlServerHandler{}
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES")).
		WillReturnRows(sqlmock.NewRows([]string{"TABLE_NAME"}).AddRow("contacts").AddRow("leads"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COLUMN_NAME, DATA_TYPE")).
		WithArgs("contacts").
		WillReturnRows(sqlmock.NewRows([]string{"COLUMN_NAME", "DATA_TYPE"}).AddRow("email", "nvarchar"))

	tables, err := h.ListTables(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"contacts", "leads"}, tables)

	cols, err := h.ListColumns(ctx, db, "contacts")
	require.NoError(t, err)
	assert.Equal(t, []database.ColumnInfo{{Name: "email", DataType: "nvarchar"}}, cols)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLServerSampleColumn(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		query string
	}{
		{"Top N", 20, "SELECT TOP (20) CAST([email] AS NVARCHAR(MAX)) FROM [contacts] WHERE [email] IS NOT NULL"},
		{"Every value", 0, "SELECT CAST([email] AS NVARCHAR(MAX)) FROM [contacts] WHERE [email] IS NOT NULL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockSQLServerDB(t)
			mock.ExpectQuery("^" + regexp.QuoteMeta(tt.query) + "$").
				WillReturnRows(sqlmock.NewRows([]string{"email"}).AddRow("a@b.com"))

			got, err := sqlServerHandler{}.SampleColumn(context.Background(), db, "contacts", "email", tt.limit)
			require.NoError(t, err)
			assert.Equal(t, []string{"a@b.com"}, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestConnectionURLEscapesCredentials(t *testing.T) {
	got := connectionURL("sa", "p@ss:word", "db:1433", "crm")
	assert.Equal(t, "sqlserver://sa:p%40ss%3Aword@db:1433?database=crm", got)
}
