//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
)

// Store provides access to the retail analytics tables.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Pool exposes the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// InsertCustomers bulk-loads customers using the COPY protocol.
func (s *Store) InsertCustomers(ctx context.Context, customers []model.Customer) (int64, error) {
	if len(customers) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(customers))
	for i, c := range customers {
		rows[i] = []any{c.CustomerID, c.Name, c.Gender, c.Age, c.City}
	}

	copied, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"customers"},
		[]string{"customer_id", "customer_name", "gender", "age", "city"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return copied, fmt.Errorf("failed to copy customers: %w", err)
	}
	return copied, nil
}

// InsertProducts bulk-loads products using the COPY protocol.
func (s *Store) InsertProducts(ctx context.Context, products []model.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(products))
	for i, p := range products {
		rows[i] = []any{p.ProductID, p.Name, p.Category, p.UnitPrice}
	}

	copied, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"products"},
		[]string{"product_id", "product_name", "category", "unit_price"},
		pgx.CopyFromRows(rows))
	if err != nil {
		return copied, fmt.Errorf("failed to copy products: %w", err)
	}
	return copied, nil
}

// InsertTransactions bulk-loads sales rows using the COPY protocol. The total
// column is generated by the database and is never written directly. A nil
// OrderDate is stored as NULL for the repair pass to pick up later.
func (s *Store) InsertTransactions(ctx context.Context, txns []model.SalesTransaction) (int64, error) {
	if len(txns) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(txns))
	for i, t := range txns {
		rows[i] = []any{
			t.OrderID, t.RawOrderDate, t.OrderDate,
			t.CustomerID, t.ProductID, t.StoreID,
			t.Quantity, t.UnitPrice,
		}
	}

	copied, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"sales"},
		[]string{
			"order_id", "order_date_raw", "order_date",
			"customer_id", "product_id", "store_id",
			"quantity", "unit_price",
		},
		pgx.CopyFromRows(rows))
	if err != nil {
		return copied, fmt.Errorf("failed to copy sales: %w", err)
	}
	return copied, nil
}

// CustomerIDs returns the set of known customer ids.
func (s *Store) CustomerIDs(ctx context.Context) (map[string]struct{}, error) {
	return s.idSet(ctx, `SELECT customer_id FROM customers`)
}

// ProductIDs returns the set of known product ids.
func (s *Store) ProductIDs(ctx context.Context) (map[string]struct{}, error) {
	return s.idSet(ctx, `SELECT product_id FROM products`)
}

// OrderIDs returns the set of order ids already loaded.
func (s *Store) OrderIDs(ctx context.Context) (map[string]struct{}, error) {
	return s.idSet(ctx, `SELECT order_id FROM sales`)
}

func (s *Store) idSet(ctx context.Context, query string) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// UnrepairedDates returns the sales rows whose order date is still absent,
// keyed by order id, along with the raw value that failed to parse at load
// time.
func (s *Store) UnrepairedDates(ctx context.Context) ([]model.RawDate, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT order_id, order_date_raw
        FROM sales
        WHERE order_date IS NULL
        ORDER BY order_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var raw []model.RawDate
	for rows.Next() {
		var r model.RawDate
		if err := rows.Scan(&r.OrderID, &r.Raw); err != nil {
			return nil, err
		}
		raw = append(raw, r)
	}
	return raw, rows.Err()
}

// ApplyRepairs writes repaired order dates back in a single batch.
func (s *Store) ApplyRepairs(ctx context.Context, repairs []model.DateRepair) (int64, error) {
	if len(repairs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, r := range repairs {
		batch.Queue(`UPDATE sales SET order_date = $1 WHERE order_id = $2`, r.Date, r.OrderID)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	var updated int64
	for range repairs {
		tag, err := br.Exec()
		if err != nil {
			return updated, fmt.Errorf("failed to apply date repair: %w", err)
		}
		updated += tag.RowsAffected()
	}
	return updated, nil
}

// NullDateCount returns the number of sales rows whose order date is absent.
func (s *Store) NullDateCount(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales WHERE order_date IS NULL`).Scan(&n)
	return n, err
}

// Facts loads the denormalized fact snapshot the reporting views aggregate
// over. Rows are joined to both dimensions, so the snapshot only contains
// sales that satisfy referential integrity.
func (s *Store) Facts(ctx context.Context) ([]model.Fact, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT s.order_id, s.order_date,
               s.customer_id, c.customer_name,
               s.product_id, p.product_name, p.category,
               s.store_id, s.quantity, s.unit_price
        FROM sales s
        JOIN customers c ON c.customer_id = s.customer_id
        JOIN products p ON p.product_id = s.product_id
        ORDER BY s.order_id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var facts []model.Fact
	for rows.Next() {
		var f model.Fact
		if err := rows.Scan(
			&f.OrderID, &f.OrderDate,
			&f.CustomerID, &f.CustomerName,
			&f.ProductID, &f.ProductName, &f.Category,
			&f.StoreID, &f.Quantity, &f.UnitPrice,
		); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// TableCounts returns the row count of each retail table.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 3)
	for _, table := range []string{"customers", "products", "sales"} {
		var n int64
		if err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
