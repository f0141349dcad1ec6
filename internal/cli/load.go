package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/db"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/ingest"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/logging"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/normalize"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/store"
)

var (
	loadCustomersFile string
	loadProductsFile  string
	loadSalesFile     string
	loadDelimiter     string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load retail CSV extracts into an initialized database",
	Long: `Load customer, product and sales CSV files into a database that was
previously initialized with the 'init' command. Order dates are normalized
during the load; rows whose date matches none of the known formats are kept
with an absent date and can be retried later with 'clean'.

Failures are row-local: a row that cannot be parsed, fails validation, or
references an unknown customer or product is rejected and logged, and the
rest of the file still loads.

Example:
  retail-analytics load --customers-file customers.csv \
    --products-file products.csv --sales-file sales.csv`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadCustomersFile, "customers-file", "",
		"customer dimension CSV file")
	loadCmd.Flags().StringVar(&loadProductsFile, "products-file", "",
		"product dimension CSV file")
	loadCmd.Flags().StringVar(&loadSalesFile, "sales-file", "",
		"sales transactions CSV file")
	loadCmd.Flags().StringVar(&loadDelimiter, "delimiter", "",
		"CSV field separator (default: comma)")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadCustomersFile != "" {
		cfg.Load.CustomersFile = loadCustomersFile
	}
	if loadProductsFile != "" {
		cfg.Load.ProductsFile = loadProductsFile
	}
	if loadSalesFile != "" {
		cfg.Load.SalesFile = loadSalesFile
	}
	if loadDelimiter != "" {
		cfg.Load.Delimiter = loadDelimiter
	}

	// Validate configuration
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	// Set up context with cancellation so Ctrl+C stops the load cleanly
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
	}()

	// Connect to database
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

	loader := ingest.NewLoader(store.New(pool), normalize.New(), ingest.Options{
		Comma: delimiterRune(cfg.Load.Delimiter),
	})

	summary, err := loader.Load(ctx, ingest.Files{
		Customers: cfg.Load.CustomersFile,
		Products:  cfg.Load.ProductsFile,
		Sales:     cfg.Load.SalesFile,
	})
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}

	// Report each rejected row so bad extracts can be fixed at the source
	for _, r := range summary.Rejects {
		logging.Warn().
			Str("stage", r.Stage).
			Int("line", r.Line).
			Str("key", r.Key).
			Str("reason", r.Reason).
			Msg("Rejected row")
	}

	if err := db.SaveMetadata(ctx, pool, map[string]string{
		"last_load_run":       summary.RunID,
		"last_load_customers": strconv.FormatInt(summary.Customers, 10),
		"last_load_products":  strconv.FormatInt(summary.Products, 10),
		"last_load_sales":     strconv.FormatInt(summary.Sales, 10),
		"last_load_rejected":  strconv.Itoa(summary.Rejected()),
	}); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().
		Str("run_id", summary.RunID).
		Int64("customers", summary.Customers).
		Int64("products", summary.Products).
		Int64("sales", summary.Sales).
		Int("rejected", summary.Rejected()).
		Int("dates_converted", summary.Dates.Converted).
		Int("dates_unconverted", summary.Dates.Failed).
		Msg("Final summary")

	return nil
}

// delimiterRune maps the configured delimiter to the CSV reader's comma.
// Validation already limits it to a single character.
func delimiterRune(s string) rune {
	if s == "" {
		return ','
	}
	return rune(s[0])
}
