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
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/config"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/pipeline"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateDialect(t *testing.T) {
	for _, d := range []string{"postgres", "cloudsqlpostgres", "mysql", "cloudsqlmysql", "sqlserver", "cloudsqlsqlserver"} {
		assert.NoError(t, validateDialect(d), d)
	}
	err := validateDialect("oracle")
	assert.ErrorContains(t, err, "unsupported dialect: oracle")
}

func TestApplyFlagOverrides(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	registerPersistentFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse([]string{
		"--default-region", "gb",
		"--sample-size", "50",
		"--delimiter", ";",
		"--order", "email,phone",
		"--dialect", "mysql",
		"--port", "3306",
	}))

	cfg := config.GetConfig()
	require.NoError(t, applyFlagOverrides(cmd, cfg))

	assert.Equal(t, "GB", cfg.Classifier.DefaultRegion)
	assert.Equal(t, 50, cfg.Classifier.SampleSize)
	assert.Equal(t, ";", cfg.Table.Delimiter)
	assert.Equal(t, []string{"Email", "Phone"}, cfg.Table.OutputOrder)
	assert.Equal(t, "mysql", cfg.Database.Dialect)
	assert.Equal(t, 3306, cfg.Database.Port)
	// Unset flags keep the loaded values.
	assert.Equal(t, ",", cfg.Table.OutputDelimiter)
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestWriteResults(t *testing.T) {
	tally := classifier.NewVoteTally()
	tally.Add(classifier.Email)
	tally.Add(classifier.Email)
	results := []pipeline.ColumnResult{
		{Table: "leads.txt", Column: "column_1", Decision: classifier.Decision{Type: classifier.Email, Tally: tally}},
	}

	var plain bytes.Buffer
	require.NoError(t, writeResults(&plain, results, false))
	assert.Contains(t, plain.String(), "TABLE")
	assert.NotContains(t, plain.String(), "DATA TYPE")
	assert.NotContains(t, plain.String(), "VOTES")
	assert.Regexp(t, `leads\.txt\s+column_1\s+Email`, plain.String())

	results[0].DataType = "text"
	var explained bytes.Buffer
	require.NoError(t, writeResults(&explained, results, true))
	assert.Contains(t, explained.String(), "DATA TYPE")
	assert.Contains(t, explained.String(), "{Email=2}")
}

func TestGenerateCompareAndRelabel(t *testing.T) {
	dir := t.TempDir()
	fixturePath := filepath.Join(dir, "contacts.txt")

	out, err := execute(t, "generate", "--out_file", fixturePath, "--rows", "40", "--seed", "11",
		"--columns", "Zip,Email", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "Fixture written to")

	labels, err := os.ReadFile(fixturePath + ".labels")
	require.NoError(t, err)
	assert.Equal(t, "Zip\nEmail\n", string(labels))

	out, err = execute(t, "compare", fixturePath, fixturePath+".labels", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "matched 2/2 columns")

	out, err = execute(t, "relabel", fixturePath, "--yes", "--log-level", "error")
	require.NoError(t, err)
	processed := filepath.Join(dir, "processed_contacts.txt")
	assert.Contains(t, out, processed)

	written, err := os.ReadFile(processed)
	require.NoError(t, err)
	lines := strings.Split(string(written), "\n")
	assert.Equal(t, "Original File: contacts.txt", lines[0])
	assert.Equal(t, "Zip,Email", lines[1])
}

func TestGenerateCompareDefaultColumns(t *testing.T) {
	dir := t.TempDir()
	fixturePath := filepath.Join(dir, "default.txt")
	labelsPath := filepath.Join(dir, "default.labels")

	_, err := execute(t, "generate", "--out_file", fixturePath, "--expected", labelsPath,
		"--rows", "150", "--seed", "42", "--columns", "", "--shuffle", "--log-level", "error")
	require.NoError(t, err)

	out, err := execute(t, "compare", fixturePath, labelsPath, "--min-accuracy", "1", "--log-level", "error")
	require.NoError(t, err, out)
	assert.Contains(t, out, "matched 8/8 columns (100.0%)")
}

func TestCompareBelowMinimumAccuracy(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "t.txt")
	labelsPath := filepath.Join(dir, "t.labels")
	require.NoError(t, os.WriteFile(tablePath, []byte("a@b.com|12345\nx@y.net|90210\n"), 0o644))
	require.NoError(t, os.WriteFile(labelsPath, []byte("Phone\nZip\n"), 0o644))

	out, err := execute(t, "compare", tablePath, labelsPath, "--min-accuracy", "0.9", "--log-level", "error")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below the minimum")
	assert.Contains(t, out, "column 1: expected Phone, got Email")
}
