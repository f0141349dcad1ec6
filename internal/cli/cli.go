//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package cli implements the command-line interface for retail-analytics.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/config"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/logging"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/report"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/pkg/version"
)

var (
	// Global flags
	cfgFile    string
	connection string
	logLevel   string

	// Global config
	cfg *config.Config

	rootCmd = &cobra.Command{
		Use:   "retail-analytics",
		Short: "Retail sales analytics pipeline for PostgreSQL",
		Long: `retail-analytics is a CLI tool that loads retail sales extracts
(customers, products, sales transactions) from CSV files into PostgreSQL,
repairs inconsistent order dates, and computes analytical views over the
cleaned data: revenue trends, category rankings, customer segmentation,
per-store product rankings, and customer lifetime value.

Rows that cannot be parsed, validated, or matched against the customer and
product dimensions are rejected individually; a bad row never aborts a load.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./retail-analytics.yaml)")
	rootCmd.PersistentFlags().StringVar(&connection, "connection", "",
		"PostgreSQL connection string")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(viewsCmd)
}

func initConfig() error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return err
	}

	// Override with CLI flags
	if connection != "" {
		cfg.Connection = connection
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	// Reinitialize logger with config
	logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(version.Info())
	},
}

var viewsCmd = &cobra.Command{
	Use:   "views",
	Short: "List available analytical views",
	Long: `List the analytical views the report command can compute. Each view
is a pure aggregation over the loaded sales facts.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println("Available views:")
		cmd.Println()
		for _, v := range report.Views() {
			cmd.Printf("  %-24s - %s\n", v.Name, v.Description)
		}
		cmd.Println()
		cmd.Println("Use 'retail-analytics report --views <name>[,<name>...]' to compute a subset.")
	},
}
