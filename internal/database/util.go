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
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
)

// SupportedDialects returns the registered dialect names in sorted order.
func SupportedDialects() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(dialectHandlers))
	for name := range dialectHandlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// QueryStrings runs a single-column query and returns every non-NULL value.
// what names the rows in error messages, e.g. "table name".
func QueryStrings(ctx context.Context, db *DB, what string, query string, args ...any) ([]string, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database connection pool is not initialized")
	}
	rows, err := db.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", what, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", what, err)
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", what, err)
	}
	return values, nil
}

// QueryColumns runs a two-column (name, data type) query.
func QueryColumns(ctx context.Context, db *DB, tableName string, query string, args ...any) ([]ColumnInfo, error) {
	if db.Pool == nil {
		return nil, fmt.Errorf("database connection pool is not initialized")
	}
	rows, err := db.Pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying columns for table %s: %w", tableName, err)
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var colInfo ColumnInfo
		if err := rows.Scan(&colInfo.Name, &colInfo.DataType); err != nil {
			return nil, fmt.Errorf("error scanning column name and data type: %w", err)
		}
		columns = append(columns, colInfo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating column rows: %w", err)
	}
	return columns, nil
}
