package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/db"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/logging"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/store"
)

var initDropExisting bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a database with the retail analytics schema",
	Long: `Initialize a PostgreSQL database with the customer, product and sales
tables used by the pipeline. The sales total column is computed by the
database from quantity and unit price, so it can never disagree with them.

Example:
  retail-analytics init --connection "postgres://..."`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schema before initialization")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Connect to database
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	// Check for an existing schema
	exists, err := store.SchemaExists(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to check for existing schema: %w", err)
	}
	if exists {
		// The stamp is absent when the schema was created outside this tool.
		stamp, stampErr := db.GetMetadataValue(ctx, pool, "initialized_at")
		if !initDropExisting {
			if stampErr == nil && stamp != "" {
				return fmt.Errorf(
					"database already contains the retail schema (initialized %s); "+
						"use --drop-existing to reinitialize", stamp)
			}
			return fmt.Errorf(
				"database already contains the retail schema; " +
					"use --drop-existing to reinitialize")
		}
		logging.Warn().Msg("Dropping existing schema")
		if err := store.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	// Create schema
	logging.Info().Msg("Creating schema")
	if err := store.CreateSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// Save metadata
	if err := db.SaveMetadata(ctx, pool, map[string]string{
		"initialized_at": time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().Msg("Database initialization complete")

	return nil
}
