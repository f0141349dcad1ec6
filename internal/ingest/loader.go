//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package ingest

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/logging"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/normalize"
)

// Store is the persistence surface the loader depends on.
type Store interface {
	InsertCustomers(ctx context.Context, customers []model.Customer) (int64, error)
	InsertProducts(ctx context.Context, products []model.Product) (int64, error)
	InsertTransactions(ctx context.Context, txns []model.SalesTransaction) (int64, error)
	CustomerIDs(ctx context.Context) (map[string]struct{}, error)
	ProductIDs(ctx context.Context) (map[string]struct{}, error)
	OrderIDs(ctx context.Context) (map[string]struct{}, error)
}

// Files names the CSV extracts that make up one load batch.
type Files struct {
	Customers string
	Products  string
	Sales     string
}

// Summary reports what a load run accomplished.
type Summary struct {
	RunID     string
	Customers int64
	Products  int64
	Sales     int64
	Dates     normalize.Summary
	Rejects   []RejectedRow
}

// Rejected returns the number of rows dropped across all stages.
func (s *Summary) Rejected() int {
	return len(s.Rejects)
}

// Loader runs one batch load: dimensions first, then the sales fact rows
// gated on referential integrity against the loaded dimensions.
type Loader struct {
	store      Store
	normalizer *normalize.Normalizer
	options    Options
}

// NewLoader creates a Loader. The normalizer handles the first-pass date
// conversion during load; rows it cannot convert keep an absent date for
// the repair pass.
func NewLoader(store Store, normalizer *normalize.Normalizer, opt Options) *Loader {
	return &Loader{store: store, normalizer: normalizer, options: opt}
}

// Header aliases for the dimension extracts, which both call their label
// column "name".
var (
	customerHeaderMap = map[string]string{"name": "customer_name", "id": "customer_id"}
	productHeaderMap  = map[string]string{"name": "product_name", "id": "product_id"}
)

// Load ingests one batch. Row-level failures are collected in the summary;
// only I/O and database errors abort the run.
func (l *Loader) Load(ctx context.Context, files Files) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}

	logging.Info().
		Str("run_id", summary.RunID).
		Str("customers", files.Customers).
		Str("products", files.Products).
		Str("sales", files.Sales).
		Msg("Starting load")

	// Fetch the ids the database already holds so re-loading an extract
	// rejects previously loaded rows instead of failing the whole batch on
	// key violations.
	var customerIDs, productIDs map[string]struct{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		customerIDs, err = l.store.CustomerIDs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		productIDs, err = l.store.ProductIDs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The dimension extracts are independent, so parse them in parallel.
	var (
		customers   []model.Customer
		products    []model.Product
		custRejects []RejectedRow
		prodRejects []RejectedRow
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		customers, custRejects, err = l.parseCustomers(files.Customers, customerIDs)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		products, prodRejects, err = l.parseProducts(files.Products, productIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	summary.Rejects = append(summary.Rejects, custRejects...)
	summary.Rejects = append(summary.Rejects, prodRejects...)

	copied, err := l.store.InsertCustomers(ctx, customers)
	if err != nil {
		return nil, err
	}
	summary.Customers = copied

	copied, err = l.store.InsertProducts(ctx, products)
	if err != nil {
		return nil, err
	}
	summary.Products = copied

	logging.Debug().
		Int64("customers", summary.Customers).
		Int64("products", summary.Products).
		Msg("Dimensions loaded")

	// The sales rows are gated against dimensions from this batch and
	// earlier ones alike.
	for _, c := range customers {
		customerIDs[c.CustomerID] = struct{}{}
	}
	for _, p := range products {
		productIDs[p.ProductID] = struct{}{}
	}

	if err := l.loadSales(ctx, files.Sales, customerIDs, productIDs, summary); err != nil {
		return nil, err
	}

	logging.Info().
		Str("run_id", summary.RunID).
		Int64("customers", summary.Customers).
		Int64("products", summary.Products).
		Int64("sales", summary.Sales).
		Int("rejected", summary.Rejected()).
		Int("dates_converted", summary.Dates.Converted).
		Int("dates_failed", summary.Dates.Failed).
		Msg("Load complete")

	return summary, nil
}

func (l *Loader) parseCustomers(path string, existing map[string]struct{}) ([]model.Customer, []RejectedRow, error) {
	opt := l.options
	opt.HeaderMap = customerHeaderMap
	records, rejects, err := ReadFile(path, opt)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]struct{}, len(records))
	customers := make([]model.Customer, 0, len(records))
	for _, rec := range records {
		c, err := decodeCustomer(rec)
		if err != nil {
			rejects = append(rejects, RejectedRow{
				Stage:  StageValidate,
				Line:   rec.Line,
				Key:    rec.Values["customer_id"],
				Reason: err.Error(),
			})
			continue
		}
		if _, dup := seen[c.CustomerID]; dup {
			rejects = append(rejects, RejectedRow{
				Stage:  StageIntegrity,
				Line:   rec.Line,
				Key:    c.CustomerID,
				Reason: "duplicate customer_id",
			})
			continue
		}
		if _, dup := existing[c.CustomerID]; dup {
			rejects = append(rejects, RejectedRow{
				Stage:  StageIntegrity,
				Line:   rec.Line,
				Key:    c.CustomerID,
				Reason: "customer_id already loaded",
			})
			continue
		}
		seen[c.CustomerID] = struct{}{}
		customers = append(customers, c)
	}
	return customers, rejects, nil
}

func (l *Loader) parseProducts(path string, existing map[string]struct{}) ([]model.Product, []RejectedRow, error) {
	opt := l.options
	opt.HeaderMap = productHeaderMap
	records, rejects, err := ReadFile(path, opt)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[string]struct{}, len(records))
	products := make([]model.Product, 0, len(records))
	for _, rec := range records {
		p, err := decodeProduct(rec)
		if err != nil {
			rejects = append(rejects, RejectedRow{
				Stage:  StageValidate,
				Line:   rec.Line,
				Key:    rec.Values["product_id"],
				Reason: err.Error(),
			})
			continue
		}
		if _, dup := seen[p.ProductID]; dup {
			rejects = append(rejects, RejectedRow{
				Stage:  StageIntegrity,
				Line:   rec.Line,
				Key:    p.ProductID,
				Reason: "duplicate product_id",
			})
			continue
		}
		if _, dup := existing[p.ProductID]; dup {
			rejects = append(rejects, RejectedRow{
				Stage:  StageIntegrity,
				Line:   rec.Line,
				Key:    p.ProductID,
				Reason: "product_id already loaded",
			})
			continue
		}
		seen[p.ProductID] = struct{}{}
		products = append(products, p)
	}
	return products, rejects, nil
}

// loadSales parses the sales extract, gates each row on referential
// integrity against the stored dimensions, runs the first-pass date
// conversion and bulk-loads whatever survives.
func (l *Loader) loadSales(ctx context.Context, path string, customerIDs, productIDs map[string]struct{}, summary *Summary) error {
	records, rejects, err := ReadFile(path, l.options)
	if err != nil {
		return err
	}
	summary.Rejects = append(summary.Rejects, rejects...)

	// Order ids already in the database reject their rows, so re-loading
	// an extract never duplicates a sale.
	orderIDs, err := l.store.OrderIDs(ctx)
	if err != nil {
		return err
	}

	txns := make([]model.SalesTransaction, 0, len(records))
	for _, rec := range records {
		t, err := decodeSale(rec)
		if err != nil {
			summary.Rejects = append(summary.Rejects, RejectedRow{
				Stage:  StageValidate,
				Line:   rec.Line,
				Key:    rec.Values["order_id"],
				Reason: err.Error(),
			})
			continue
		}
		if reason := checkIntegrity(t, customerIDs, productIDs, orderIDs); reason != "" {
			summary.Rejects = append(summary.Rejects, RejectedRow{
				Stage:  StageIntegrity,
				Line:   rec.Line,
				Key:    t.OrderID,
				Reason: reason,
			})
			continue
		}
		orderIDs[t.OrderID] = struct{}{}

		if date, ok := l.normalizer.Parse(t.RawOrderDate); ok {
			t.OrderDate = &date
			summary.Dates.Observe(true)
		} else {
			summary.Dates.Observe(false)
		}

		txns = append(txns, t)
	}

	copied, err := l.store.InsertTransactions(ctx, txns)
	if err != nil {
		return err
	}
	summary.Sales = copied
	return nil
}

// checkIntegrity returns a reject reason for rows that reference unknown
// dimensions or reuse an order id, empty string otherwise.
func checkIntegrity(t model.SalesTransaction, customerIDs, productIDs, orderIDs map[string]struct{}) string {
	if _, ok := orderIDs[t.OrderID]; ok {
		return "duplicate order_id"
	}
	if _, ok := customerIDs[t.CustomerID]; !ok {
		return fmt.Sprintf("unknown customer_id %s", t.CustomerID)
	}
	if _, ok := productIDs[t.ProductID]; !ok {
		return fmt.Sprintf("unknown product_id %s", t.ProductID)
	}
	return ""
}

func requireField(rec Record, key string) (string, error) {
	v := rec.Values[key]
	if v == "" {
		return "", fmt.Errorf("missing %s", key)
	}
	return v, nil
}

func decodeCustomer(rec Record) (model.Customer, error) {
	var c model.Customer
	var err error

	if c.CustomerID, err = requireField(rec, "customer_id"); err != nil {
		return c, err
	}
	if c.Name, err = requireField(rec, "customer_name"); err != nil {
		return c, err
	}
	c.Gender = rec.Values["gender"]
	c.City = rec.Values["city"]

	if raw := rec.Values["age"]; raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return c, fmt.Errorf("invalid age %q", raw)
		}
		if age < 0 {
			return c, fmt.Errorf("negative age %d", age)
		}
		c.Age = age
	}
	return c, nil
}

func decodeProduct(rec Record) (model.Product, error) {
	var p model.Product
	var err error

	if p.ProductID, err = requireField(rec, "product_id"); err != nil {
		return p, err
	}
	if p.Name, err = requireField(rec, "product_name"); err != nil {
		return p, err
	}
	if p.Category, err = requireField(rec, "category"); err != nil {
		return p, err
	}

	raw, err := requireField(rec, "unit_price")
	if err != nil {
		return p, err
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return p, fmt.Errorf("invalid unit_price %q", raw)
	}
	if price < 0 {
		return p, fmt.Errorf("negative unit_price %v", price)
	}
	p.UnitPrice = price
	return p, nil
}

func decodeSale(rec Record) (model.SalesTransaction, error) {
	var t model.SalesTransaction
	var err error

	if t.OrderID, err = requireField(rec, "order_id"); err != nil {
		return t, err
	}
	if t.CustomerID, err = requireField(rec, "customer_id"); err != nil {
		return t, err
	}
	if t.ProductID, err = requireField(rec, "product_id"); err != nil {
		return t, err
	}
	if t.StoreID, err = requireField(rec, "store_id"); err != nil {
		return t, err
	}

	// The raw date is kept verbatim, conversion happens later. An empty
	// value is allowed and simply stays unconverted.
	t.RawOrderDate = rec.Values["order_date"]

	rawQty, err := requireField(rec, "quantity")
	if err != nil {
		return t, err
	}
	qty, err := strconv.Atoi(rawQty)
	if err != nil {
		return t, fmt.Errorf("invalid quantity %q", rawQty)
	}
	if qty <= 0 {
		return t, fmt.Errorf("non-positive quantity %d", qty)
	}
	t.Quantity = qty

	rawPrice, err := requireField(rec, "unit_price")
	if err != nil {
		return t, err
	}
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil {
		return t, fmt.Errorf("invalid unit_price %q", rawPrice)
	}
	if price < 0 {
		return t, fmt.Errorf("negative unit_price %v", price)
	}
	t.UnitPrice = price

	return t, nil
}
