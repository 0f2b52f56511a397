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
package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/config"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/database"
)

// Helper to create a mock DB and handler for testing
func newMockPostgresDB(t *testing.T) (*database.DB, sqlmock.Sqlmock, *postgresHandler) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	handler := postgresHandler{}
	db := &database.DB{
		Pool:    mockDb,
		Handler: &handler,
		Config:  config.DatabaseConfig{Dialect: "postgres"},
	}
	return db, mock, &handler
}

func TestPostgresQuoteIdentifier(t *testing.T) {
	handler := postgresHandler{}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Simple name", "mytable", `"mytable"`},
		{"Name with spaces", "my table", `"my table"`},
		{"Name with quotes", `my"table`, `"my""table"`},
		{"Keyword", "user", `"user"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := handler.QuoteIdentifier(tt.in); got != tt.want {
				t.Errorf("QuoteIdentifier() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostgresListTables(t *testing.T) {
	db, mock, handler := newMockPostgresDB(t)
	defer db.Close()
	ctx := context.Background()

	expectedQuery := regexp.QuoteMeta("SELECT table_name")

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"table_name"}).
			AddRow("contacts").
			AddRow("leads")
		mock.ExpectQuery(expectedQuery).WillReturnRows(rows)

		tables, err := handler.ListTables(ctx, db)
		if err != nil {
			t.Fatalf("ListTables() unexpected error: %v", err)
		}
		if len(tables) != 2 || tables[0] != "contacts" || tables[1] != "leads" {
			t.Errorf("ListTables() got %v, want [contacts leads]", tables)
		}
	})

	t.Run("Query Error", func(t *testing.T) {
		dbError := errors.New("connection failed")
		mock.ExpectQuery(expectedQuery).WillReturnError(dbError)

		_, err := handler.ListTables(ctx, db)
		if !errors.Is(err, dbError) {
			t.Errorf("ListTables() got error %v, want error containing %v", err, dbError)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestPostgresListColumns(t *testing.T) {
	db, mock, handler := newMockPostgresDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"column_name", "data_type"}).
		AddRow("full_name", "text").
		AddRow("zip", "character varying")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT column_name, data_type")).
		WithArgs("contacts").
		WillReturnRows(rows)

	cols, err := handler.ListColumns(context.Background(), db, "contacts")
	if err != nil {
		t.Fatalf("ListColumns() unexpected error: %v", err)
	}
	if len(cols) != 2 || cols[1].Name != "zip" || cols[1].DataType != "character varying" {
		t.Errorf("ListColumns() got %+v", cols)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestPostgresSampleColumn(t *testing.T) {
	db, mock, handler := newMockPostgresDB(t)
	defer db.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		limit int
		query string
	}{
		{"With limit", 50, `SELECT CAST("e mail" AS TEXT) FROM "contacts" WHERE "e mail" IS NOT NULL LIMIT 50`},
		{"Without limit", 0, `SELECT CAST("e mail" AS TEXT) FROM "contacts" WHERE "e mail" IS NOT NULL`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock.ExpectQuery("^" + regexp.QuoteMeta(tt.query) + "$").
				WillReturnRows(sqlmock.NewRows([]string{"e mail"}).AddRow("a@b.com").AddRow("c@d.com"))

			values, err := handler.SampleColumn(ctx, db, "contacts", "e mail", tt.limit)
			if err != nil {
				t.Fatalf("SampleColumn() unexpected error: %v", err)
			}
			if len(values) != 2 || values[0] != "a@b.com" {
				t.Errorf("SampleColumn() got %v", values)
			}
		})
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestPostgresIsRegistered(t *testing.T) {
	for _, dialect := range []string{"postgres", "cloudsqlpostgres"} {
		if _, err := database.GetDialectHandler(dialect); err != nil {
			t.Errorf("dialect %s not registered: %v", dialect, err)
		}
	}
}

func TestIsTruthy(t *testing.T) {
	for in, want := range map[string]bool{"": false, "false": false, "0": false, "true": true, "TRUE": true, "1": true} {
		if got := isTruthy(in); got != want {
			t.Errorf("isTruthy(%q) = %v, want %v", in, got, want)
		}
	}
}
