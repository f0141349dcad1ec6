//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package testutil manages throwaway Postgres databases for integration
// tests. Each test gets its own database, and a failing test keeps its
// database around so the data can be inspected.
package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/store"
)

const (
	// DefaultTestConnString is used when RETAIL_TEST_CONN is not set.
	DefaultTestConnString = "postgres://postgres@localhost:5432/postgres"

	// TestDBPrefix marks the databases these helpers create.
	TestDBPrefix = "retail_test_"
)

// PostgresAvailable reports whether a Postgres server answers on the
// configured connection string, returning the string when it does.
func PostgresAvailable() string {
	connStr := os.Getenv("RETAIL_TEST_CONN")
	if connStr == "" {
		connStr = DefaultTestConnString
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return ""
	}
	defer pool.Close()

	if pool.Ping(ctx) != nil {
		return ""
	}
	return connStr
}

// SkipIfNoPostgres skips the calling test unless Postgres is reachable.
func SkipIfNoPostgres(t *testing.T) string {
	connStr := PostgresAvailable()
	if connStr == "" {
		t.Skip("PostgreSQL not available, skipping integration test")
	}
	return connStr
}

// CreateTestDB creates a uniquely named database on the server behind
// baseConnStr and returns a connection string pointing at it.
func CreateTestDB(t *testing.T, baseConnStr, name string) string {
	t.Helper()

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		t.Fatalf("Failed to generate database suffix: %v", err)
	}
	dbName := TestDBPrefix + name + "_" + hex.EncodeToString(suffix)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, "DROP DATABASE IF EXISTS "+dbName); err != nil {
		t.Fatalf("Failed to drop leftover database %s: %v", dbName, err)
	}
	if _, err := pool.Exec(ctx, "CREATE DATABASE "+dbName); err != nil {
		t.Fatalf("Failed to create database %s: %v", dbName, err)
	}

	return replaceDatabase(t, baseConnStr, dbName)
}

// replaceDatabase rebuilds baseConnStr as a URL pointing at dbName. Going
// through the parsed config keeps DSN-style inputs working too.
func replaceDatabase(t *testing.T, baseConnStr, dbName string) string {
	t.Helper()

	cfg, err := pgxpool.ParseConfig(baseConnStr)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	cc := cfg.ConnConfig

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", cc.Host, cc.Port),
		Path:   "/" + dbName,
	}
	switch {
	case cc.Password != "":
		u.User = url.UserPassword(cc.User, cc.Password)
	case cc.User != "":
		u.User = url.User(cc.User)
	}
	return u.String()
}

// DropTestDB terminates open sessions on dbName and drops it. Failures are
// logged, not fatal, so cleanup never fails a passing test.
func DropTestDB(t *testing.T, baseConnStr, dbName string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, baseConnStr)
	if err != nil {
		t.Logf("Warning: Failed to connect to drop test database: %v", err)
		return
	}
	defer pool.Close()

	_, _ = pool.Exec(ctx, fmt.Sprintf(`
        SELECT pg_terminate_backend(pid)
        FROM pg_stat_activity
        WHERE datname = '%s' AND pid <> pg_backend_pid()
    `, dbName))

	if _, err := pool.Exec(ctx, "DROP DATABASE IF EXISTS "+dbName); err != nil {
		t.Logf("Warning: Failed to drop test database %s: %v", dbName, err)
	}
}

// GetDBNameFromConnStr extracts the database name from a connection string.
func GetDBNameFromConnStr(connStr string) string {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return ""
	}
	return cfg.ConnConfig.Database
}

// ConnectTestDB opens a pool on a test database and verifies it answers.
func ConnectTestDB(t *testing.T, connStr string) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Fatalf("Failed to ping test database: %v", err)
	}
	return pool
}

// TestCleanup closes the pool and drops the test database when the test
// finishes.
type TestCleanup struct {
	t           *testing.T
	baseConnStr string
	dbName      string
	pool        *pgxpool.Pool
}

// NewTestCleanup creates a cleanup helper for the named test database.
func NewTestCleanup(t *testing.T, baseConnStr, dbName string) *TestCleanup {
	return &TestCleanup{t: t, baseConnStr: baseConnStr, dbName: dbName}
}

// SetPool hands over the pool to close on cleanup.
func (tc *TestCleanup) SetPool(pool *pgxpool.Pool) {
	tc.pool = pool
}

// Cleanup closes the pool and drops the database unless the test failed.
func (tc *TestCleanup) Cleanup() {
	if tc.pool != nil {
		tc.pool.Close()
	}
	if tc.dbName == "" {
		return
	}
	if tc.t.Failed() {
		tc.t.Logf("Test failed - keeping database %s for diagnostics", tc.dbName)
		return
	}
	DropTestDB(tc.t, tc.baseConnStr, tc.dbName)
}

// CreateRetailTestDB creates a fresh database with the retail schema applied
// and returns a connected pool. Cleanup is registered on t; the database
// survives a failing test.
func CreateRetailTestDB(t *testing.T, name string) *pgxpool.Pool {
	t.Helper()

	baseConnStr := SkipIfNoPostgres(t)
	connStr := CreateTestDB(t, baseConnStr, name)

	cleanup := NewTestCleanup(t, baseConnStr, GetDBNameFromConnStr(connStr))
	t.Cleanup(cleanup.Cleanup)

	pool := ConnectTestDB(t, connStr)
	cleanup.SetPool(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.CreateSchema(ctx, pool); err != nil {
		t.Fatalf("Failed to create retail schema: %v", err)
	}
	return pool
}
