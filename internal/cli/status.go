package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/db"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pipeline state of a database",
	Long: `Show whether the retail schema exists, how many rows each table
holds, how many sales rows still have an absent order date, and the metadata
recorded by previous commands.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	exists, err := store.SchemaExists(ctx, pool)
	if err != nil {
		return fmt.Errorf("failed to check schema: %w", err)
	}
	if !exists {
		cmd.Println("Schema: not initialized (run 'retail-analytics init')")
		return nil
	}
	cmd.Println("Schema: initialized")

	st := store.New(pool)

	counts, err := st.TableCounts(ctx)
	if err != nil {
		return err
	}
	cmd.Println()
	cmd.Println("Row counts:")
	for _, table := range []string{"customers", "products", "sales"} {
		cmd.Printf("  %-10s %d\n", table, counts[table])
	}

	nullDates, err := st.NullDateCount(ctx)
	if err != nil {
		return err
	}
	cmd.Println()
	cmd.Printf("Sales with absent order date: %d\n", nullDates)
	if nullDates > 0 {
		cmd.Println("Run 'retail-analytics clean' to retry date normalization.")
	}

	metaExists, err := db.MetadataExists(ctx, pool)
	if err != nil {
		return err
	}
	if metaExists {
		metadata, err := db.GetAllMetadata(ctx, pool)
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		cmd.Println()
		cmd.Println("Metadata:")
		for _, k := range keys {
			cmd.Printf("  %-22s %s\n", k, metadata[k])
		}
	}

	return nil
}
