package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/datagen"
)

var (
	seedOutputDir string
	seedCustomers int
	seedProducts  int
	seedSales     int
	seedStores    int
	seedSeed      uint64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate sample retail CSV extracts",
	Long: `Generate customer, product and sales CSV files with realistic fake
data for trying out the pipeline. The sales file mixes date formats the way
messy real extracts do, including a few malformed and empty dates, so the
load and clean commands have something to normalize.

Seeding only writes local files; no database connection is needed.

Example:
  retail-analytics seed --output-dir data --sales 50000`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedOutputDir, "output-dir", "",
		"directory for the generated CSV files")
	seedCmd.Flags().IntVar(&seedCustomers, "customers", 0,
		"number of customers to generate")
	seedCmd.Flags().IntVar(&seedProducts, "products", 0,
		"number of products to generate")
	seedCmd.Flags().IntVar(&seedSales, "sales", 0,
		"number of sales transactions to generate")
	seedCmd.Flags().IntVar(&seedStores, "stores", 0,
		"number of distinct store ids")
	seedCmd.Flags().Uint64Var(&seedSeed, "seed", 0,
		"random seed for reproducible output (0 = random)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if seedOutputDir != "" {
		cfg.Seed.OutputDir = seedOutputDir
	}
	if seedCustomers > 0 {
		cfg.Seed.Customers = seedCustomers
	}
	if seedProducts > 0 {
		cfg.Seed.Products = seedProducts
	}
	if seedSales > 0 {
		cfg.Seed.Sales = seedSales
	}
	if seedStores > 0 {
		cfg.Seed.Stores = seedStores
	}
	if seedSeed > 0 {
		cfg.Seed.Seed = seedSeed
	}

	// Validate configuration
	if err := cfg.ValidateSeed(); err != nil {
		return err
	}

	result, err := datagen.Generate(context.Background(), datagen.Config{
		OutputDir: cfg.Seed.OutputDir,
		Customers: cfg.Seed.Customers,
		Products:  cfg.Seed.Products,
		Sales:     cfg.Seed.Sales,
		Stores:    cfg.Seed.Stores,
		Seed:      cfg.Seed.Seed,
	})
	if err != nil {
		return fmt.Errorf("failed to generate sample data: %w", err)
	}

	cmd.Printf("Wrote %d customers to %s\n", result.Customers, result.CustomersFile)
	cmd.Printf("Wrote %d products to %s\n", result.Products, result.ProductsFile)
	cmd.Printf("Wrote %d sales to %s\n", result.Sales, result.SalesFile)

	return nil
}
