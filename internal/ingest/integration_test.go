//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

//go:build integration
// +build integration

// Integration tests for the full pipeline.
// Run with: go test -tags=integration ./internal/ingest/...
// Requires PostgreSQL to be available.
// Set RETAIL_TEST_CONN environment variable to override connection string.

package ingest_test

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/datagen"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/ingest"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/normalize"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/report"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/store"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/testutil"
)

// repairLayouts covers the formats the generator deliberately breaks dates
// into, so the repair pass can convert everything except empty values.
var repairLayouts = []string{
	"2006-01-02", "02-01-2006", "2006/01/02", "02.01.2006", "Jan _2 2006",
}

// TestPipelineIntegration drives the whole pipeline end to end: sample
// extracts are generated, loaded, date-repaired and aggregated.
func TestPipelineIntegration(t *testing.T) {
	pool := testutil.CreateRetailTestDB(t, "pipeline")
	st := store.New(pool)
	ctx := context.Background()

	// Generate reproducible sample extracts
	result, err := datagen.Generate(ctx, datagen.Config{
		OutputDir: t.TempDir(),
		Customers: 50,
		Products:  20,
		Sales:     1000,
		Stores:    3,
		Seed:      42,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	// Append two rows with known dates: one repairable only with an extra
	// layout, one empty and therefore never repairable.
	appendRows(t, result.SalesFile,
		"OX0001,2024/06/15,C00001,P0001,S01,2,10\n"+
			"OX0002,,C00001,P0001,S01,1,10\n")

	loader := ingest.NewLoader(st, normalize.New(), ingest.Options{})
	summary, err := loader.Load(ctx, ingest.Files{
		Customers: result.CustomersFile,
		Products:  result.ProductsFile,
		Sales:     result.SalesFile,
	})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if summary.Customers != 50 || summary.Products != 20 {
		t.Errorf("Expected 50 customers and 20 products, got %d and %d",
			summary.Customers, summary.Products)
	}
	if summary.Sales != 1002 {
		t.Errorf("Expected 1002 sales loaded, got %d", summary.Sales)
	}
	if summary.Rejected() != 0 {
		for _, r := range summary.Rejects {
			t.Logf("reject: %+v", r)
		}
		t.Errorf("Expected no rejects from generated extracts, got %d", summary.Rejected())
	}
	if summary.Dates.Total != 1002 ||
		summary.Dates.Converted+summary.Dates.Failed != summary.Dates.Total {
		t.Errorf("Inconsistent date summary: %+v", summary.Dates)
	}
	if summary.Dates.Converted == 0 {
		t.Error("Expected some dates to convert during load")
	}

	nullBefore, err := st.NullDateCount(ctx)
	if err != nil {
		t.Fatalf("NullDateCount failed: %v", err)
	}
	if nullBefore != int64(summary.Dates.Failed) {
		t.Errorf("Expected %d absent dates in store, got %d",
			summary.Dates.Failed, nullBefore)
	}

	// Repair with layouts covering the generator's malformed variants
	repairer := ingest.NewRepairer(st, normalize.NewWithLayouts(repairLayouts), 100)
	repaired, err := repairer.Repair(ctx)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if repaired.Total != int(nullBefore) {
		t.Errorf("Expected repair to examine %d rows, got %d", nullBefore, repaired.Total)
	}

	nullAfter, err := st.NullDateCount(ctx)
	if err != nil {
		t.Fatalf("NullDateCount failed: %v", err)
	}
	if nullAfter != nullBefore-int64(repaired.Converted) {
		t.Errorf("Expected %d absent dates after repair, got %d",
			nullBefore-int64(repaired.Converted), nullAfter)
	}
	if nullAfter < 1 {
		t.Error("Expected the empty-date row to stay absent after repair")
	}

	facts, err := st.Facts(ctx)
	if err != nil {
		t.Fatalf("Facts failed: %v", err)
	}
	if int64(len(facts)) != summary.Sales {
		t.Errorf("Expected %d facts, got %d", summary.Sales, len(facts))
	}

	byID := make(map[string]model.Fact)
	for _, f := range facts {
		byID[f.OrderID] = f
	}
	jun15 := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	if f, ok := byID["OX0001"]; !ok || f.OrderDate == nil || !f.OrderDate.Equal(jun15) {
		t.Errorf("Expected OX0001 repaired to %v, got %+v", jun15, f.OrderDate)
	}
	if f, ok := byID["OX0002"]; !ok || f.OrderDate != nil {
		t.Errorf("Expected OX0002 date to stay absent, got %+v", f.OrderDate)
	}

	verifyViews(t, ctx, facts)
}

// verifyViews checks cross-view consistency over the loaded facts.
func verifyViews(t *testing.T, ctx context.Context, facts []model.Fact) {
	tables, err := report.Run(ctx, facts, nil, report.Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(tables) != len(report.Views()) {
		t.Fatalf("Expected %d tables, got %d", len(report.Views()), len(tables))
	}
	for _, table := range tables {
		if len(table.Rows) == 0 {
			t.Errorf("Expected rows in view %s", table.Name)
		}
	}

	// Monthly and category revenue both sum over the dated facts, so their
	// totals must agree.
	var monthlyTotal, categoryTotal float64
	for _, r := range report.MonthlyRevenue(facts) {
		monthlyTotal += r.Revenue
	}
	for _, r := range report.CategoryYearRevenue(facts) {
		categoryTotal += r.Revenue
	}
	if math.Abs(monthlyTotal-categoryTotal) > 0.01 {
		t.Errorf("Monthly total %.2f disagrees with category total %.2f",
			monthlyTotal, categoryTotal)
	}

	// Segment counts sum to the distinct customers seen in the facts.
	distinct := make(map[string]struct{})
	for _, f := range facts {
		distinct[f.CustomerID] = struct{}{}
	}
	segmented := 0
	for _, r := range report.CustomerSegments(facts) {
		segmented += r.Customers
	}
	if segmented != len(distinct) {
		t.Errorf("Expected segments to cover %d customers, got %d", len(distinct), segmented)
	}

	// Lifetime value only returns customers above the global average.
	var total float64
	for _, f := range facts {
		total += f.Total()
	}
	threshold := total / float64(len(facts))
	for _, r := range report.CustomerLifetimeValue(facts) {
		if r.Lifetime <= threshold {
			t.Errorf("Customer %s lifetime %.2f is not above threshold %.2f",
				r.CustomerID, r.Lifetime, threshold)
		}
	}

	for _, r := range report.TopStoreProducts(facts, report.Options{}) {
		if r.Rank < 1 || r.Rank > report.DefaultTopN {
			t.Errorf("Unexpected rank %d for store %s product %s", r.Rank, r.StoreID, r.ProductID)
		}
	}
}

// TestLoadContextCancellation verifies a cancelled context aborts the load
// with an error instead of hanging or panicking.
func TestLoadContextCancellation(t *testing.T) {
	pool := testutil.CreateRetailTestDB(t, "cancel")
	ctx := context.Background()

	result, err := datagen.Generate(ctx, datagen.Config{
		OutputDir: t.TempDir(),
		Customers: 5,
		Products:  5,
		Sales:     20,
		Stores:    2,
		Seed:      7,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	loader := ingest.NewLoader(store.New(pool), normalize.New(), ingest.Options{})
	if _, err := loader.Load(cancelled, ingest.Files{
		Customers: result.CustomersFile,
		Products:  result.ProductsFile,
		Sales:     result.SalesFile,
	}); err == nil {
		t.Error("Expected error from cancelled context")
	}
}

func appendRows(t *testing.T, path, rows string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(rows); err != nil {
		t.Fatalf("Failed to append rows: %v", err)
	}
}
