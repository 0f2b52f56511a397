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
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/config"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/database"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/table"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/utils"
)

// Config controls how tables are read, relabeled and written.
type Config struct {
	Input       table.Options
	Output      table.Options
	OutputOrder []classifier.SemanticType
	Retry       RetryOptions
}

// ConfigFrom converts the application configuration.
func ConfigFrom(cfg *config.Config) (Config, error) {
	order, err := parseOrder(cfg.Table.OutputOrder)
	if err != nil {
		return Config{}, &ErrInvalidInput{Msg: "output order", Err: err}
	}
	return Config{
		Input:       table.Options{Delimiter: firstRune(cfg.Table.Delimiter), HasHeader: cfg.Table.HasHeader},
		Output:      table.Options{Delimiter: firstRune(cfg.Table.OutputDelimiter)},
		OutputOrder: order,
		Retry:       DefaultRetryOptions,
	}, nil
}

type Service struct {
	dbAdapter  database.DBAdapter
	classifier *classifier.Classifier
	cfg        Config
	logger     *zap.Logger
	position   map[classifier.SemanticType]int
}

// NewService wires a classifier to its sources. db may be nil when only files are processed.
func NewService(cls *classifier.Classifier, db database.DBAdapter, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.OutputOrder) == 0 {
		cfg.OutputOrder, _ = parseOrder(config.DefaultOutputOrder)
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryOptions
	}
	position := make(map[classifier.SemanticType]int, len(cfg.OutputOrder))
	for i, t := range cfg.OutputOrder {
		if _, seen := position[t]; !seen {
			position[t] = i
		}
	}
	return &Service{
		dbAdapter:  db,
		classifier: cls,
		cfg:        cfg,
		logger:     logger,
		position:   position,
	}
}

// ReadTable reads a delimited file with the configured input options.
func (s *Service) ReadTable(path string) (*table.Table, error) {
	tbl, err := table.Read(path, s.cfg.Input)
	if err != nil {
		return nil, &ErrReadTable{Msg: path, Err: err}
	}
	return tbl, nil
}

// ClassifyTable classifies every column of tbl. Results keep column order.
func (s *Service) ClassifyTable(ctx context.Context, tbl *table.Table) ([]ColumnResult, error) {
	if tbl == nil {
		return nil, &ErrInvalidInput{Msg: "table is nil"}
	}
	startTime := time.Now()

	decisions, err := s.classifier.ClassifyColumns(ctx, tbl.Columns())
	if err != nil {
		return nil, contextError("classify "+tbl.Name, err)
	}

	results := make([]ColumnResult, len(decisions))
	for i, d := range decisions {
		results[i] = ColumnResult{
			Table:    tbl.Name,
			Column:   columnName(tbl.Header, i),
			Index:    i,
			Decision: d,
		}
		s.logger.Debug("Column classified",
			zap.String("table", tbl.Name),
			zap.Int("column", i+1),
			zap.String("type", d.Type.String()),
			zap.Stringer("tally", d.Tally),
			zap.String("tie_rule", d.TieRule))
	}

	s.logger.Info("Table classified",
		zap.String("table", tbl.Name),
		zap.Int("columns", len(results)),
		zap.Int("rows", len(tbl.Rows)),
		zap.Duration("elapsed", time.Since(startTime)))
	return results, nil
}

// Relabel builds the output table: one column per claimed type, in output order, headed by
// the type name. The first column to claim a type keeps it; later claimants are dropped, as
// are columns whose type is not part of the output order.
func (s *Service) Relabel(tbl *table.Table, results []ColumnResult) (*table.Table, []Assignment) {
	claimed := make(map[classifier.SemanticType]int)
	assignments := make([]Assignment, len(results))
	bySource := make(map[int]int, len(results))

	for i, r := range results {
		a := Assignment{Index: r.Index, Column: r.Column, Type: r.Type(), Position: -1}
		bySource[r.Index] = i

		if _, ok := s.position[a.Type]; !ok {
			a.Dropped = "type not in output order"
			s.logger.Info("Column dropped",
				zap.String("table", tbl.Name),
				zap.String("column", r.Column),
				zap.String("type", a.Type.String()),
				zap.String("reason", a.Dropped))
		} else if first, dup := claimed[a.Type]; dup {
			a.Dropped = fmt.Sprintf("duplicate of %s", results[bySource[first]].Column)
			s.logger.Warn("Duplicate column type dropped",
				zap.String("table", tbl.Name),
				zap.String("column", r.Column),
				zap.String("type", a.Type.String()),
				zap.String("kept", results[bySource[first]].Column))
		} else {
			claimed[a.Type] = r.Index
		}
		assignments[i] = a
	}

	out := &table.Table{Name: tbl.Name}
	var sources []int
	for _, t := range s.cfg.OutputOrder {
		src, ok := claimed[t]
		if !ok {
			continue
		}
		if assignments[bySource[src]].Position >= 0 {
			continue
		}
		assignments[bySource[src]].Position = len(sources)
		out.Header = append(out.Header, t.String())
		sources = append(sources, src)
	}

	out.Rows = make([][]string, len(tbl.Rows))
	for r, row := range tbl.Rows {
		newRow := make([]string, len(sources))
		for j, src := range sources {
			if src < len(row) {
				newRow[j] = row[src]
			}
		}
		out.Rows[r] = newRow
	}
	return out, assignments
}

// ProcessFile reads inPath, classifies and relabels it, and writes the result to outPath.
// An empty outPath writes processed_<name> next to the input.
func (s *Service) ProcessFile(ctx context.Context, inPath, outPath string) (*FileReport, error) {
	tbl, err := s.ReadTable(inPath)
	if err != nil {
		return nil, err
	}

	results, err := s.ClassifyTable(ctx, tbl)
	if err != nil {
		return nil, err
	}

	relabeled, assignments := s.Relabel(tbl, results)

	if outPath == "" {
		outPath = utils.GetDefaultOutputFilePath(inPath)
	}
	if err := relabeled.WriteFile(outPath, s.cfg.Output); err != nil {
		return nil, &ErrWriteTable{Msg: outPath, Err: err}
	}
	s.logger.Info("Relabeled file written",
		zap.String("input", inPath),
		zap.String("output", outPath),
		zap.Int("columns", len(relabeled.Header)))

	return &FileReport{
		Input:       inPath,
		Output:      outPath,
		Results:     results,
		Assignments: assignments,
	}, nil
}

// ClassifyDatabase samples and classifies the columns of every table matching tableFilters
// (all tables when empty). Results are sorted by table, then column. When some tables fail,
// the results gathered so far are returned together with an aggregated error.
func (s *Service) ClassifyDatabase(ctx context.Context, tableFilters map[string][]string) ([]ColumnResult, error) {
	if s.dbAdapter == nil {
		return nil, &ErrDatabaseConnection{Msg: "database connection not available"}
	}
	startTime := time.Now()
	s.logger.Info("Starting database column classification...")

	tables, err := withRetry(ctx, s.logger, s.cfg.Retry, func(ctx context.Context) ([]string, error) {
		tables, err := s.dbAdapter.ListTables(ctx)
		if err != nil {
			return nil, queryError("list tables", err)
		}
		return tables, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	filteredTables := filterTables(tables, tableFilters)
	if len(filteredTables) == 0 {
		s.logger.Info("No tables match the provided filters (--tables).")
		return []ColumnResult{}, nil
	}

	var allResults []ColumnResult
	var wg sync.WaitGroup
	var mu sync.Mutex
	errorChannel := make(chan error, len(filteredTables))

	s.logger.Info("Processing filtered tables", zap.Int("tables", len(filteredTables)))

	for _, tableName := range filteredTables {
		wg.Add(1)
		go func(tbl string) {
			defer wg.Done()
			results, err := s.classifyDatabaseTable(ctx, tbl, tableFilters)
			if err != nil {
				s.logger.Error("Failed to classify table", zap.String("table", tbl), zap.Error(err))
				errorChannel <- fmt.Errorf("Table[%s]: %w", tbl, err)
				return
			}
			mu.Lock()
			allResults = append(allResults, results...)
			mu.Unlock()
		}(tableName)
	}

	wg.Wait()
	close(errorChannel)

	sortResults(allResults)

	var allErrors []error
	for err := range errorChannel {
		allErrors = append(allErrors, err)
	}
	if len(allErrors) > 0 {
		errorMessages := make([]string, len(allErrors))
		for i, e := range allErrors {
			errorMessages[i] = e.Error()
		}
		sort.Strings(errorMessages)
		return allResults, fmt.Errorf("encountered %d error(s) during classification:\n- %s",
			len(allErrors), strings.Join(errorMessages, "\n- "))
	}

	s.logger.Info("Database classification completed",
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("columns", len(allResults)))
	return allResults, nil
}

func (s *Service) classifyDatabaseTable(ctx context.Context, tbl string, tableFilters map[string][]string) ([]ColumnResult, error) {
	columnInfos, err := withRetry(ctx, s.logger, s.cfg.Retry, func(ctx context.Context) ([]database.ColumnInfo, error) {
		cols, err := s.dbAdapter.ListColumns(ctx, tbl)
		if err != nil {
			return nil, queryError("list columns", err)
		}
		return cols, nil
	})
	if err != nil {
		return nil, err
	}
	columnInfos = filterColumns(tbl, columnInfos, tableFilters)
	if len(columnInfos) == 0 {
		return nil, nil
	}

	samples := make([][]string, len(columnInfos))
	sampleErrs := make([]error, len(columnInfos))
	limit := s.classifier.SampleSize()

	var colWg sync.WaitGroup
	for i, ci := range columnInfos {
		colWg.Add(1)
		go func(i int, ci database.ColumnInfo) {
			defer colWg.Done()
			values, err := withRetry(ctx, s.logger, s.cfg.Retry, func(ctx context.Context) ([]string, error) {
				values, err := s.dbAdapter.SampleColumn(ctx, tbl, ci.Name, limit)
				if err != nil {
					return nil, queryError("sample "+ci.Name, err)
				}
				return values, nil
			})
			samples[i] = values
			sampleErrs[i] = err
		}(i, ci)
	}
	colWg.Wait()

	if err := errors.Join(sampleErrs...); err != nil {
		return nil, err
	}

	decisions, err := s.classifier.ClassifyColumns(ctx, samples)
	if err != nil {
		return nil, contextError("classify "+tbl, err)
	}

	results := make([]ColumnResult, len(decisions))
	for i, d := range decisions {
		results[i] = ColumnResult{
			Table:    tbl,
			Column:   columnInfos[i].Name,
			Index:    i,
			DataType: columnInfos[i].DataType,
			Decision: d,
		}
	}
	return results, nil
}

func filterTables(allTables []string, tableFilters map[string][]string) []string {
	if len(tableFilters) == 0 {
		return allTables
	}
	filtered := make([]string, 0, len(tableFilters))
	for _, table := range allTables {
		if _, ok := tableFilters[table]; ok {
			filtered = append(filtered, table)
		}
	}
	sort.Strings(filtered)
	return filtered
}

func filterColumns(tableName string, allColumns []database.ColumnInfo, tableFilters map[string][]string) []database.ColumnInfo {
	specificColumnFilters := tableFilters[tableName]
	if len(specificColumnFilters) == 0 {
		return allColumns
	}
	allowed := make(map[string]bool, len(specificColumnFilters))
	for _, colName := range specificColumnFilters {
		allowed[colName] = true
	}
	filtered := make([]database.ColumnInfo, 0, len(specificColumnFilters))
	for _, colInfo := range allColumns {
		if allowed[colInfo.Name] {
			filtered = append(filtered, colInfo)
		}
	}
	return filtered
}

func sortResults(results []ColumnResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Table != results[j].Table {
			return results[i].Table < results[j].Table
		}
		return results[i].Column < results[j].Column
	})
}

func queryError(msg string, err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return contextError(msg, err)
	case errors.Is(err, driver.ErrBadConn):
		return &ErrDatabaseConnection{Msg: msg, Err: err}
	default:
		return &ErrQueryExecution{Msg: msg, Err: err}
	}
}

func contextError(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ErrTimeout{Msg: msg, Err: err}
	}
	return &ErrCancelled{Msg: msg, Err: err}
}

func parseOrder(labels []string) ([]classifier.SemanticType, error) {
	order := make([]classifier.SemanticType, 0, len(labels))
	for _, label := range labels {
		t, err := classifier.ParseSemanticType(label)
		if err != nil {
			return nil, err
		}
		order = append(order, t)
	}
	return order, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
