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

// Integration tests for the metadata table.
// Run with: go test -tags=integration ./internal/db/...
// Requires PostgreSQL to be available.
// Set RETAIL_TEST_CONN environment variable to override connection string.

package db_test

import (
	"context"
	"testing"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/db"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/testutil"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/pkg/version"
)

func TestMetadataBeforeFirstSave(t *testing.T) {
	pool := testutil.CreateRetailTestDB(t, "metafresh")
	ctx := context.Background()

	exists, err := db.MetadataExists(ctx, pool)
	if err != nil {
		t.Fatalf("MetadataExists failed: %v", err)
	}
	if exists {
		t.Error("Expected no metadata table in a fresh database")
	}

	// Single-key reads fail until the first save creates the table; init
	// treats that as no stamp on record.
	if _, err := db.GetMetadataValue(ctx, pool, "initialized_at"); err == nil {
		t.Error("Expected GetMetadataValue to fail before the table exists")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	pool := testutil.CreateRetailTestDB(t, "metadata")
	ctx := context.Background()

	if err := db.SaveMetadata(ctx, pool, map[string]string{
		"initialized_at": "2026-08-25T10:00:00Z",
	}); err != nil {
		t.Fatalf("SaveMetadata failed: %v", err)
	}

	stamp, err := db.GetMetadataValue(ctx, pool, "initialized_at")
	if err != nil {
		t.Fatalf("GetMetadataValue failed: %v", err)
	}
	if stamp != "2026-08-25T10:00:00Z" {
		t.Errorf("Expected the stored stamp back, got %q", stamp)
	}

	// Every save records the tool version alongside the caller's keys.
	v, err := db.GetMetadataValue(ctx, pool, "version")
	if err != nil {
		t.Fatalf("GetMetadataValue failed: %v", err)
	}
	if v != version.Short() {
		t.Errorf("Expected version %q, got %q", version.Short(), v)
	}

	// A second save upserts rather than duplicating keys.
	if err := db.SaveMetadata(ctx, pool, map[string]string{
		"initialized_at": "2026-08-26T10:00:00Z",
	}); err != nil {
		t.Fatalf("Second SaveMetadata failed: %v", err)
	}
	stamp, err = db.GetMetadataValue(ctx, pool, "initialized_at")
	if err != nil {
		t.Fatalf("GetMetadataValue failed: %v", err)
	}
	if stamp != "2026-08-26T10:00:00Z" {
		t.Errorf("Expected the replaced stamp, got %q", stamp)
	}

	all, err := db.GetAllMetadata(ctx, pool)
	if err != nil {
		t.Fatalf("GetAllMetadata failed: %v", err)
	}
	for _, key := range []string{"initialized_at", "version", "updated_at"} {
		if all[key] == "" {
			t.Errorf("Expected %s in metadata, got %v", key, all)
		}
	}

	if err := db.DropMetadata(ctx, pool); err != nil {
		t.Fatalf("DropMetadata failed: %v", err)
	}
	exists, err := db.MetadataExists(ctx, pool)
	if err != nil {
		t.Fatalf("MetadataExists failed: %v", err)
	}
	if exists {
		t.Error("Expected metadata table gone after DropMetadata")
	}
}
