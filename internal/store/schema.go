//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package store persists the retail entities in PostgreSQL and exposes
// the queries the ingest and reporting layers are built on.
package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema SQL for the retail analytics tables. The sales total is a stored
// generated column so it can never drift from quantity * unit_price, and
// order_date is nullable: rows whose raw date could not be parsed are kept
// with an absent date rather than a guessed one.
const createSchemaSQL = `
-- Customer Dimension
CREATE TABLE IF NOT EXISTS customers (
    customer_id   TEXT PRIMARY KEY,
    customer_name TEXT NOT NULL,
    gender        TEXT,
    age           INTEGER CHECK (age IS NULL OR age >= 0),
    city          TEXT
);

-- Product Dimension
CREATE TABLE IF NOT EXISTS products (
    product_id   TEXT PRIMARY KEY,
    product_name TEXT NOT NULL,
    category     TEXT NOT NULL,
    unit_price   NUMERIC(10,2) NOT NULL CHECK (unit_price >= 0)
);

-- Sales Fact
CREATE TABLE IF NOT EXISTS sales (
    order_id       TEXT PRIMARY KEY,
    order_date_raw TEXT NOT NULL,
    order_date     DATE,
    customer_id    TEXT NOT NULL REFERENCES customers(customer_id),
    product_id     TEXT NOT NULL REFERENCES products(product_id),
    store_id       TEXT NOT NULL,
    quantity       INTEGER NOT NULL CHECK (quantity > 0),
    unit_price     NUMERIC(10,2) NOT NULL CHECK (unit_price >= 0),
    total          NUMERIC(12,2) GENERATED ALWAYS AS (quantity * unit_price) STORED
);

-- Indexes for the analytical views
CREATE INDEX IF NOT EXISTS idx_sales_order_date ON sales(order_date);
CREATE INDEX IF NOT EXISTS idx_sales_customer ON sales(customer_id);
CREATE INDEX IF NOT EXISTS idx_sales_product ON sales(product_id);
CREATE INDEX IF NOT EXISTS idx_sales_store_product ON sales(store_id, product_id);
`

// Drop schema SQL
const dropSchemaSQL = `
DROP TABLE IF EXISTS sales CASCADE;
DROP TABLE IF EXISTS products CASCADE;
DROP TABLE IF EXISTS customers CASCADE;
`

// CreateSchema creates the retail analytics schema.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// DropSchema drops the retail analytics schema.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}

// SchemaExists reports whether the sales table is present.
func SchemaExists(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT FROM information_schema.tables
            WHERE table_name = 'sales'
        )
    `).Scan(&exists)
	return exists, err
}
