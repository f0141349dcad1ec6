//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for retail-analytics.
// Configuration is loaded from config files and CLI flags (no environment variables).
// CLI flags take precedence over config file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for retail-analytics.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Clean holds configuration for the clean subcommand.
	Clean CleanConfig `mapstructure:"clean"`

	// Report holds configuration for the report subcommand.
	Report ReportConfig `mapstructure:"report"`

	// Seed holds configuration for the seed subcommand.
	Seed SeedConfig `mapstructure:"seed"`
}

// LoadConfig holds configuration for batch loading.
type LoadConfig struct {
	// CustomersFile is the customer dimension CSV.
	CustomersFile string `mapstructure:"customers_file"`

	// ProductsFile is the product dimension CSV.
	ProductsFile string `mapstructure:"products_file"`

	// SalesFile is the sales transactions CSV.
	SalesFile string `mapstructure:"sales_file"`

	// Delimiter is the CSV field separator, a single character.
	Delimiter string `mapstructure:"delimiter"`
}

// CleanConfig holds configuration for the date repair pass.
type CleanConfig struct {
	// DateLayouts overrides the date formats tried, in order. Layouts use
	// Go reference time syntax. Empty keeps the defaults.
	DateLayouts []string `mapstructure:"date_layouts"`

	// BatchSize is how many repaired rows are written back per batch.
	BatchSize int `mapstructure:"batch_size"`
}

// ReportConfig holds configuration for view computation and output.
type ReportConfig struct {
	// Views selects which views to compute. Empty selects all of them.
	Views []string `mapstructure:"views"`

	// TopN limits products per store in the ranking view.
	TopN int `mapstructure:"top_n"`

	// Format selects the output format: "text" or "csv".
	Format string `mapstructure:"format"`

	// OutputDir receives one CSV file per view. Empty writes to stdout.
	OutputDir string `mapstructure:"output_dir"`
}

// SeedConfig holds configuration for sample data generation.
type SeedConfig struct {
	// OutputDir receives the generated CSV files.
	OutputDir string `mapstructure:"output_dir"`

	// Customers, Products and Sales are row counts per file.
	Customers int `mapstructure:"customers"`
	Products  int `mapstructure:"products"`
	Sales     int `mapstructure:"sales"`

	// Stores is how many distinct store ids the sales rows use.
	Stores int `mapstructure:"stores"`

	// Seed fixes the random sequence; zero picks a random seed.
	Seed uint64 `mapstructure:"seed"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Clean: CleanConfig{
			BatchSize: 500,
		},
		Report: ReportConfig{
			TopN:   5,
			Format: "text",
		},
		Seed: SeedConfig{
			OutputDir: "data",
			Customers: 1000,
			Products:  200,
			Sales:     20000,
			Stores:    5,
		},
	}
}

// Load reads configuration from config files.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./retail-analytics.yaml
// 3. ~/.config/retail-analytics/config.yaml
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("retail-analytics")
	v.SetConfigType("yaml")

	// Add config paths
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "retail-analytics"))
	}

	// Use specific config file if provided
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal config file values
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Load.CustomersFile == "" {
		return fmt.Errorf("customers file is required for load")
	}
	if c.Load.ProductsFile == "" {
		return fmt.Errorf("products file is required for load")
	}
	if c.Load.SalesFile == "" {
		return fmt.Errorf("sales file is required for load")
	}
	if len(c.Load.Delimiter) > 1 {
		return fmt.Errorf("delimiter must be a single character")
	}
	return nil
}

// ValidateClean checks configuration required for the clean command.
func (c *Config) ValidateClean() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Clean.BatchSize < 1 {
		return fmt.Errorf("batch_size must be at least 1")
	}
	for _, layout := range c.Clean.DateLayouts {
		if layout == "" {
			return fmt.Errorf("date_layouts must not contain empty entries")
		}
	}
	return nil
}

// ValidateReport checks configuration required for the report command.
func (c *Config) ValidateReport() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Report.Format != "text" && c.Report.Format != "csv" {
		return fmt.Errorf("format must be 'text' or 'csv'")
	}
	if c.Report.TopN < 1 {
		return fmt.Errorf("top_n must be at least 1")
	}
	return nil
}

// ValidateSeed checks configuration required for the seed command. Seeding
// only writes local files, so no connection is needed.
func (c *Config) ValidateSeed() error {
	if c.Seed.OutputDir == "" {
		return fmt.Errorf("output dir is required for seed")
	}
	if c.Seed.Customers < 1 || c.Seed.Products < 1 || c.Seed.Sales < 1 {
		return fmt.Errorf("seed row counts must be at least 1")
	}
	return nil
}
