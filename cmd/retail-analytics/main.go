// Package main is the entry point for retail-analytics.
package main

import (
	"fmt"
	"os"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
