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
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/config"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/utils"
)

var classifyDBCmd = &cobra.Command{
	Use:     "classify-db",
	Short:   "Classify the columns of database tables",
	Long:    `Connects to the database, samples the non-null values of each selected column, and prints the semantic type inferred for it.`,
	Example: `colclass classify-db --dialect cloudsqlpostgres --username user --password pass --database crm --cloudsql-instance-connection-name my-project:my-region:my-instance --tables "contacts[email,phone],leads" --sample-size 1000`,
	RunE:    runClassifyDB,
}

func runClassifyDB(cmd *cobra.Command, args []string) error {
	tableFilters, err := utils.ParseTablesFlag(cmd.Flag("tables").Value.String())
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	dbConfig := config.Current().Database
	appLogger.Info("Starting classify-db operation",
		zap.String("dialect", dbConfig.Dialect),
		zap.String("database", dbConfig.DBName))

	db, err := setupDatabase(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := newService(db)
	if err != nil {
		return err
	}

	results, classifyErr := svc.ClassifyDatabase(ctx, tableFilters)

	var out io.Writer = cmd.OutOrStdout()
	outputFile := cmd.Flag("out_file").Value.String()
	if outputFile != "" {
		file, createErr := os.Create(outputFile)
		if createErr != nil {
			return fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer file.Close()
		out = file
	}
	if err := writeResults(out, results, false); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	if outputFile != "" {
		appLogger.Info("Results written", zap.String("file", outputFile))
	}

	if classifyErr != nil {
		return fmt.Errorf("database classification failed: %w", classifyErr)
	}
	appLogger.Info("Classify-db operation completed", zap.Int("columns", len(results)))
	return nil
}

func init() {
	classifyDBCmd.Flags().StringP("out_file", "o", "", "File to write results to (defaults to stdout)")
	classifyDBCmd.Flags().String("tables", "", "Comma-separated list of tables and columns to include (e.g., 'table1[col1,col2],table2,table3[col4]')")
}
