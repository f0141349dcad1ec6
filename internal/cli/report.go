package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/db"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/logging"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/report"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/store"
)

var (
	reportViews     []string
	reportTopN      int
	reportFormat    string
	reportOutputDir string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute analytical views over the loaded sales data",
	Long: `Compute analytical views over the loaded sales facts and print them
as aligned text or write them as CSV files. Views are pure aggregations over
a snapshot of the data; rows with an absent order date are excluded from the
time-based views but still count toward customer totals.

Example:
  retail-analytics report
  retail-analytics report --views monthly_revenue,customer_segments
  retail-analytics report --format csv --output-dir reports/`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringSliceVar(&reportViews, "views", nil,
		"views to compute (default: all; see 'retail-analytics views')")
	reportCmd.Flags().IntVar(&reportTopN, "top", 0,
		"products per store in the ranking view")
	reportCmd.Flags().StringVar(&reportFormat, "format", "",
		"output format: text or csv")
	reportCmd.Flags().StringVar(&reportOutputDir, "output-dir", "",
		"directory for CSV output, one file per view")
}

func runReport(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if len(reportViews) > 0 {
		cfg.Report.Views = reportViews
	}
	if reportTopN > 0 {
		cfg.Report.TopN = reportTopN
	}
	if reportFormat != "" {
		cfg.Report.Format = reportFormat
	}
	if reportOutputDir != "" {
		cfg.Report.OutputDir = reportOutputDir
	}

	// Validate configuration
	if err := cfg.ValidateReport(); err != nil {
		return err
	}

	// Connect to database
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Check that the database was initialized
	exists, err := store.SchemaExists(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if !exists {
		return fmt.Errorf(
			"database has not been initialized; run 'retail-analytics init' first")
	}

	// Snapshot the facts once; every view computes from the same snapshot
	facts, err := store.New(pool).Facts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sales facts: %w", err)
	}

	logging.Debug().
		Int("facts", len(facts)).
		Msg("Computing views")

	tables, err := report.Run(ctx, facts, cfg.Report.Views, report.Options{
		TopN: cfg.Report.TopN,
	})
	if err != nil {
		return err
	}

	if cfg.Report.Format == "csv" {
		return writeCSVReports(cmd, tables, cfg.Report.OutputDir)
	}
	return writeTextReports(cmd, tables)
}

// writeTextReports prints each view as an aligned text table on stdout.
func writeTextReports(cmd *cobra.Command, tables []report.Table) error {
	out := cmd.OutOrStdout()
	for _, t := range tables {
		fmt.Fprintf(out, "== %s ==\n", t.Name)
		if err := t.WriteText(out); err != nil {
			return fmt.Errorf("failed to render %s: %w", t.Name, err)
		}
		fmt.Fprintln(out)
	}
	return nil
}

// writeCSVReports writes each view to <outputDir>/<view>.csv, or to stdout
// when no output directory is configured.
func writeCSVReports(cmd *cobra.Command, tables []report.Table, outputDir string) error {
	if outputDir == "" {
		out := cmd.OutOrStdout()
		for _, t := range tables {
			if err := t.WriteCSV(out); err != nil {
				return fmt.Errorf("failed to render %s: %w", t.Name, err)
			}
		}
		return nil
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	for _, t := range tables {
		path := filepath.Join(outputDir, t.Name+".csv")
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := t.WriteCSV(f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", path, err)
		}
		logging.Info().
			Str("path", path).
			Int("rows", len(t.Rows)).
			Msg("View written")
	}
	return nil
}
