package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/db"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/ingest"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/logging"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/normalize"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/store"
)

var (
	cleanBatchSize int
	cleanLayouts   []string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Retry date normalization for rows with an absent order date",
	Long: `Re-attempt date parsing for loaded sales rows whose raw order date
matched none of the known formats. The original raw value is kept on every
row, so the repair can be re-run whenever new date formats are added.

Formats are tried in order; a value that matches none of them leaves the
date absent rather than guessing.

Example:
  retail-analytics clean --layouts "2006-01-02,02-01-2006,02/01/2006"`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().IntVar(&cleanBatchSize, "batch-size", 0,
		"repaired rows written back per batch")
	cleanCmd.Flags().StringSliceVar(&cleanLayouts, "layouts", nil,
		"date formats to try in order, in Go reference time syntax")
}

func runClean(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if cleanBatchSize > 0 {
		cfg.Clean.BatchSize = cleanBatchSize
	}
	if len(cleanLayouts) > 0 {
		cfg.Clean.DateLayouts = cleanLayouts
	}

	// Validate configuration
	if err := cfg.ValidateClean(); err != nil {
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

	normalizer := normalize.New()
	if len(cfg.Clean.DateLayouts) > 0 {
		normalizer = normalize.NewWithLayouts(cfg.Clean.DateLayouts)
	}

	repairer := ingest.NewRepairer(store.New(pool), normalizer, cfg.Clean.BatchSize)
	summary, err := repairer.Repair(ctx)
	if err != nil {
		return fmt.Errorf("date repair failed: %w", err)
	}

	if err := db.SaveMetadata(ctx, pool, map[string]string{
		"last_clean_examined":  strconv.Itoa(summary.Total),
		"last_clean_converted": strconv.Itoa(summary.Converted),
		"last_clean_failed":    strconv.Itoa(summary.Failed),
	}); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Int("examined", summary.Total).
		Int("converted", summary.Converted).
		Int("still_absent", summary.Failed).
		Msg("Final summary")

	return nil
}
