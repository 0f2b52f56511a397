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
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/config"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/database"
	_ "github.com/GoogleCloudPlatform/column-type-classifier/internal/database/mysql"
	_ "github.com/GoogleCloudPlatform/column-type-classifier/internal/database/postgres"
	_ "github.com/GoogleCloudPlatform/column-type-classifier/internal/database/sqlserver"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/logger"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/metrics"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/pipeline"
	"github.com/GoogleCloudPlatform/column-type-classifier/internal/utils"
)

var configFile string

var (
	appLogger      = zap.NewNop()
	restoreStdLog  = func() {}
	metricRecorder *metrics.Recorder
)

var rootCmd = &cobra.Command{
	Use:   "colclass",
	Short: "Infer the semantic type of each column of a contact table",
	Long: `colclass samples the values of every column of a header-less delimited file (or of
database tables) and infers what each column holds: names, addresses, cities, states, zip codes,
countries, phone numbers or e-mail addresses. Files can be rewritten with a typed header row.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initFlagsAndConfig,
	PersistentPostRunE: flushMetrics,
}

// initFlagsAndConfig loads the config file and environment, then applies any flags set on the
// command line on top.
func initFlagsAndConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	appLogger = l
	restoreStdLog = logger.RedirectStdLog(l)

	metricRecorder = nil
	if cfg.Metrics.File != "" {
		metricRecorder = metrics.NewRecorder()
	}

	config.SetConfig(cfg)
	return nil
}

// applyFlagOverrides copies every flag set on the command line into cfg.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}
	str := func(name string, dst *string) {
		if changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	num := func(name string, dst *int) {
		if changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	str("log-level", &cfg.Log.Level)
	str("log-format", &cfg.Log.Format)
	str("default-region", &cfg.Classifier.DefaultRegion)
	cfg.Classifier.DefaultRegion = strings.ToUpper(cfg.Classifier.DefaultRegion)
	num("sample-size", &cfg.Classifier.SampleSize)
	num("workers", &cfg.Classifier.Workers)
	str("metrics-file", &cfg.Metrics.File)
	str("delimiter", &cfg.Table.Delimiter)
	str("output-delimiter", &cfg.Table.OutputDelimiter)
	boolean("has-header", &cfg.Table.HasHeader)
	if changed("order") {
		orderFlag, _ := flags.GetString("order")
		order, err := utils.ParseOrder(orderFlag)
		if err != nil {
			return fmt.Errorf("invalid --order: %w", err)
		}
		cfg.Table.OutputOrder = order
	}

	str("dialect", &cfg.Database.Dialect)
	str("host", &cfg.Database.Host)
	num("port", &cfg.Database.Port)
	str("username", &cfg.Database.User)
	str("password", &cfg.Database.Password)
	str("database", &cfg.Database.DBName)
	str("cloudsql-instance-connection-name", &cfg.Database.CloudSQLInstanceConnectionName)
	boolean("cloudsql-use-private-ip", &cfg.Database.UsePrivateIP)
	return nil
}

func flushMetrics(cmd *cobra.Command, args []string) error {
	defer restoreStdLog()
	defer func() { _ = appLogger.Sync() }()

	cfg := config.Current()
	if metricRecorder == nil || cfg.Metrics.File == "" {
		return nil
	}
	if err := metricRecorder.WriteFile(cfg.Metrics.File); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	appLogger.Info("Metrics written", zap.String("file", cfg.Metrics.File))
	return nil
}

func validateDialect(dialect string) error {
	supportedDialects := database.SupportedDialects()
	for _, supportedDialect := range supportedDialects {
		if dialect == supportedDialect {
			return nil
		}
	}
	return fmt.Errorf("unsupported dialect: %s (only %s are supported)", dialect, strings.Join(supportedDialects, ", "))
}

func setupDatabase(ctx context.Context) (*database.DB, error) {
	dbConfig := config.Current().Database
	if err := validateDialect(dbConfig.Dialect); err != nil {
		return nil, err
	}
	db, err := database.New(ctx, dbConfig)
	if err != nil {
		appLogger.Error("Failed to connect to database", zap.String("dialect", dbConfig.Dialect), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func newClassifier() *classifier.Classifier {
	cfg := config.Current()
	opts := []classifier.Option{classifier.WithLogger(appLogger)}
	if metricRecorder != nil {
		opts = append(opts, classifier.WithObserver(metricRecorder))
	}
	return classifier.New(classifier.Config{
		DefaultRegion: cfg.Classifier.DefaultRegion,
		SampleSize:    cfg.Classifier.SampleSize,
		Workers:       cfg.Classifier.Workers,
	}, opts...)
}

func newService(db database.DBAdapter) (*pipeline.Service, error) {
	pcfg, err := pipeline.ConfigFrom(config.Current())
	if err != nil {
		return nil, err
	}
	return pipeline.NewService(newClassifier(), db, pcfg, appLogger), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// registerPersistentFlags defines the flags shared by every subcommand.
func registerPersistentFlags(pf *pflag.FlagSet) {
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-format", "console", "Log format (console or json)")
	pf.String("default-region", classifier.DefaultRegion, "Region used to validate phone numbers without a country code")
	pf.Int("sample-size", 0, "Values sampled per column (0 = every value)")
	pf.Int("workers", 0, "Columns classified in parallel (0 = number of CPUs)")
	pf.String("metrics-file", "", "Write classification counters in Prometheus text format to this file")
	pf.String("delimiter", "|", "Input field delimiter")
	pf.String("output-delimiter", ",", "Output field delimiter")
	pf.String("order", strings.Join(config.DefaultOutputOrder, ","), "Column order of relabeled output")
	pf.Bool("has-header", false, "Input files start with a header row")

	// Database connection flags
	pf.String("dialect", "", fmt.Sprintf("Database dialect (%s)", strings.Join(database.SupportedDialects(), ", ")))
	pf.String("host", "", "Database host")
	pf.Int("port", 0, "Database port")
	pf.String("username", "", "Database username")
	pf.String("password", "", "Database password")
	pf.String("database", "", "Database name")
	pf.String("cloudsql-instance-connection-name", "", "Cloud SQL instance connection name (for Cloud SQL dialects)")
	pf.Bool("cloudsql-use-private-ip", false, "Use private IP for Cloud SQL connection (Cloud SQL)")
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (YAML, TOML or JSON); COLCLASS_* environment variables also apply")
	registerPersistentFlags(rootCmd.PersistentFlags())

	// Add subcommands
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(relabelCmd)
	rootCmd.AddCommand(classifyDBCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(compareCmd)
}
