//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/logging"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
)

// Config controls how much sample data Generate writes.
type Config struct {
	OutputDir string
	Customers int
	Products  int
	Sales     int
	Stores    int

	// Seed fixes the random sequence; zero picks a random seed.
	Seed uint64
}

// Result reports what Generate wrote.
type Result struct {
	CustomersFile string
	ProductsFile  string
	SalesFile     string
	Customers     int
	Products      int
	Sales         int
}

// Raw date rendering mix. Most rows use the ISO layout, a sizable share
// uses the day-first layout, and a few rows are deliberately broken or
// empty so the repair pass has work to do.
var (
	dateKinds   = []string{"iso", "dayfirst", "malformed", "empty"}
	dateWeights = []int{60, 35, 3, 2}

	malformedLayouts = []string{"2006/01/02", "02.01.2006", "Jan _2 2006"}
)

// Generate writes the three CSV extracts described by cfg and returns
// where they landed.
func Generate(ctx context.Context, cfg Config) (*Result, error) {
	if cfg.Customers <= 0 || cfg.Products <= 0 || cfg.Sales <= 0 {
		return nil, fmt.Errorf("row counts must be positive: %+v", cfg)
	}
	if cfg.Stores <= 0 {
		cfg.Stores = 5
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	var faker *Faker
	if cfg.Seed != 0 {
		faker = NewFakerWithSeed(cfg.Seed)
	} else {
		faker = NewFaker()
	}

	result := &Result{
		CustomersFile: filepath.Join(cfg.OutputDir, "customers.csv"),
		ProductsFile:  filepath.Join(cfg.OutputDir, "products.csv"),
		SalesFile:     filepath.Join(cfg.OutputDir, "sales.csv"),
	}

	customers := make([]model.Customer, cfg.Customers)
	for i := range customers {
		customers[i] = model.Customer{
			CustomerID: fmt.Sprintf("C%05d", i+1),
			Name:       faker.Name(),
			Gender:     faker.Gender(),
			Age:        faker.Int(18, 75),
			City:       faker.City(),
		}
	}
	if err := writeCustomers(ctx, result.CustomersFile, customers); err != nil {
		return nil, err
	}
	result.Customers = len(customers)

	products := make([]model.Product, cfg.Products)
	for i := range products {
		products[i] = model.Product{
			ProductID: fmt.Sprintf("P%04d", i+1),
			Name:      Truncate(faker.ProductName(), 80),
			Category:  faker.ProductCategory(),
			UnitPrice: faker.Price(5, 500),
		}
	}
	if err := writeProducts(ctx, result.ProductsFile, products); err != nil {
		return nil, err
	}
	result.Products = len(products)

	if err := writeSales(ctx, result.SalesFile, faker, cfg, customers, products); err != nil {
		return nil, err
	}
	result.Sales = cfg.Sales

	logging.Info().
		Str("dir", cfg.OutputDir).
		Int("customers", result.Customers).
		Int("products", result.Products).
		Int("sales", result.Sales).
		Msg("Sample data written")

	return result, nil
}

func writeCustomers(ctx context.Context, path string, customers []model.Customer) error {
	return writeCSV(ctx, path,
		[]string{"customer_id", "customer_name", "gender", "age", "city"},
		len(customers), func(i int) []string {
			c := customers[i]
			return []string{c.CustomerID, c.Name, c.Gender, strconv.Itoa(c.Age), c.City}
		})
}

func writeProducts(ctx context.Context, path string, products []model.Product) error {
	return writeCSV(ctx, path,
		[]string{"product_id", "product_name", "category", "unit_price"},
		len(products), func(i int) []string {
			p := products[i]
			return []string{p.ProductID, p.Name, p.Category, money(p.UnitPrice)}
		})
}

func writeSales(ctx context.Context, path string, faker *Faker, cfg Config,
	customers []model.Customer, products []model.Product) error {

	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)

	// Store ids are random digit codes, redrawn on collision; the width
	// keeps the id space at least ten times the store count.
	width := max(3, len(strconv.Itoa(cfg.Stores))+1)
	stores := make([]string, cfg.Stores)
	seen := make(map[string]bool, cfg.Stores)
	for i := range stores {
		id := "S" + faker.Digits(width)
		for seen[id] {
			id = "S" + faker.Digits(width)
		}
		seen[id] = true
		stores[i] = id
	}

	return writeCSV(ctx, path,
		[]string{"order_id", "order_date", "customer_id", "product_id", "store_id", "quantity", "unit_price"},
		cfg.Sales, func(i int) []string {
			customer := Choose(faker, customers)
			product := Choose(faker, products)

			date := faker.DateRange(start, end)
			raw := renderDate(faker, date)

			// Price at sale time drifts a little around the list price.
			price := math.Round(product.UnitPrice*faker.Float64(0.9, 1.1)*100) / 100

			return []string{
				fmt.Sprintf("O%06d", i+1),
				raw,
				customer.CustomerID,
				product.ProductID,
				Choose(faker, stores),
				strconv.Itoa(faker.Int(1, 5)),
				money(price),
			}
		})
}

// renderDate turns a date into its raw CSV form using the configured mix of
// layouts, including the occasional broken or empty value.
func renderDate(faker *Faker, date time.Time) string {
	switch ChooseWeighted(faker, dateKinds, dateWeights) {
	case "iso":
		return date.Format("2006-01-02")
	case "dayfirst":
		return date.Format("02-01-2006")
	case "malformed":
		return date.Format(Choose(faker, malformedLayouts))
	default:
		return ""
	}
}

func writeCSV(ctx context.Context, path string, header []string, rows int, row func(i int) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	progress := NewProgressReporter(path, int64(rows), 0)
	for i := 0; i < rows; i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := w.Write(row(i)); err != nil {
			return err
		}
		progress.Update(1)
	}
	progress.Done()
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
