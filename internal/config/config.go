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
package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/nyaruka/phonenumbers"
	"github.com/spf13/viper"

	"github.com/GoogleCloudPlatform/column-type-classifier/internal/classifier"
)

// EnvPrefix prefixes every environment override, e.g. COLCLASS_CLASSIFIER_DEFAULT_REGION.
const EnvPrefix = "COLCLASS"

// Config holds all configuration for the application
type Config struct {
	Classifier ClassifierConfig
	Table      TableConfig
	Database   DatabaseConfig
	Log        LogConfig
	Metrics    MetricsConfig
}

// ClassifierConfig tunes column classification.
type ClassifierConfig struct {
	DefaultRegion string
	SampleSize    int
	Workers       int
}

// TableConfig describes the delimited files read and written by the pipeline.
type TableConfig struct {
	Delimiter       string
	OutputDelimiter string
	OutputOrder     []string
	HasHeader       bool
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Dialect                        string
	Host                           string
	Port                           int
	User                           string
	Password                       string
	DBName                         string
	SSLMode                        string
	CloudSQLInstanceConnectionName string
	UsePrivateIP                   bool
}

// LogConfig mirrors logger.Config.
type LogConfig struct {
	Level  string
	Format string
	Output string
}

// MetricsConfig controls where classification counters are written. An empty File disables them.
type MetricsConfig struct {
	File string
}

// DefaultOutputOrder is the column order of relabeled output files.
var DefaultOutputOrder = []string{
	"Fullname", "FirstName", "LastName", "Address", "City", "State", "Zip", "Country", "Phone", "Email",
}

var globalConfig *Config

// GetConfig returns a default configuration. Flags in cmd/root.go override it.
func GetConfig() *Config {
	return &Config{
		Classifier: ClassifierConfig{
			DefaultRegion: classifier.DefaultRegion,
		},
		Table: TableConfig{
			Delimiter:       "|",
			OutputDelimiter: ",",
			OutputOrder:     append([]string(nil), DefaultOutputOrder...),
		},
		Database: DatabaseConfig{
			Dialect: "postgres",
			Host:    "localhost",
			Port:    5432,
			SSLMode: "disable",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load layers an optional config file and COLCLASS_* environment variables over GetConfig.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	def := GetConfig()
	v := viper.New()

	v.SetDefault("classifier.default_region", def.Classifier.DefaultRegion)
	v.SetDefault("classifier.sample_size", def.Classifier.SampleSize)
	v.SetDefault("classifier.workers", def.Classifier.Workers)
	v.SetDefault("table.delimiter", def.Table.Delimiter)
	v.SetDefault("table.output_delimiter", def.Table.OutputDelimiter)
	v.SetDefault("table.output_order", def.Table.OutputOrder)
	v.SetDefault("table.has_header", def.Table.HasHeader)
	v.SetDefault("database.dialect", def.Database.Dialect)
	v.SetDefault("database.host", def.Database.Host)
	v.SetDefault("database.port", def.Database.Port)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "")
	v.SetDefault("database.sslmode", def.Database.SSLMode)
	v.SetDefault("database.cloudsql_instance_connection_name", "")
	v.SetDefault("database.use_private_ip", false)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("log.output", def.Log.Output)
	v.SetDefault("metrics.file", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		Classifier: ClassifierConfig{
			DefaultRegion: v.GetString("classifier.default_region"),
			SampleSize:    v.GetInt("classifier.sample_size"),
			Workers:       v.GetInt("classifier.workers"),
		},
		Table: TableConfig{
			Delimiter:       v.GetString("table.delimiter"),
			OutputDelimiter: v.GetString("table.output_delimiter"),
			OutputOrder:     v.GetStringSlice("table.output_order"),
			HasHeader:       v.GetBool("table.has_header"),
		},
		Database: DatabaseConfig{
			Dialect:                        v.GetString("database.dialect"),
			Host:                           v.GetString("database.host"),
			Port:                           v.GetInt("database.port"),
			User:                           v.GetString("database.user"),
			Password:                       v.GetString("database.password"),
			DBName:                         v.GetString("database.dbname"),
			SSLMode:                        v.GetString("database.sslmode"),
			CloudSQLInstanceConnectionName: v.GetString("database.cloudsql_instance_connection_name"),
			UsePrivateIP:                   v.GetBool("database.use_private_ip"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Metrics: MetricsConfig{
			File: v.GetString("metrics.file"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	region := strings.ToUpper(c.Classifier.DefaultRegion)
	if phonenumbers.GetCountryCodeForRegion(region) == 0 {
		errs = append(errs, fmt.Errorf("unknown default region: %q", c.Classifier.DefaultRegion))
	}
	if c.Classifier.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("sample size must not be negative: %d", c.Classifier.SampleSize))
	}
	if c.Classifier.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative: %d", c.Classifier.Workers))
	}
	if utf8.RuneCountInString(c.Table.Delimiter) != 1 {
		errs = append(errs, fmt.Errorf("delimiter must be a single character: %q", c.Table.Delimiter))
	}
	if utf8.RuneCountInString(c.Table.OutputDelimiter) != 1 {
		errs = append(errs, fmt.Errorf("output delimiter must be a single character: %q", c.Table.OutputDelimiter))
	}
	for _, label := range c.Table.OutputOrder {
		if _, err := classifier.ParseSemanticType(label); err != nil {
			errs = append(errs, fmt.Errorf("invalid output order: %w", err))
		}
	}
	return errors.Join(errs...)
}

// SetConfig sets the global configuration.
func SetConfig(cfg *Config) {
	globalConfig = cfg
}

// Current returns the configuration set by SetConfig, or the defaults if none was set.
func Current() *Config {
	if globalConfig == nil {
		return GetConfig()
	}
	return globalConfig
}
