//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package ingest reads the raw retail CSV extracts, validates them and
// bulk-loads them into the store. Malformed rows never abort a load; they
// are collected as rejects so a batch always makes progress.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Reject stages, in pipeline order.
const (
	StageParse     = "parse"
	StageValidate  = "validate"
	StageIntegrity = "integrity"
)

// RejectedRow describes a single input row that was dropped, at which stage,
// and why. Line is the physical line the row starts on in its source file,
// and Key holds the row's natural id when one could be read.
type RejectedRow struct {
	Stage  string
	Line   int
	Key    string
	Reason string
}

// Record is one CSV data row keyed by canonical column name. Line is the
// physical line the record starts on; a quoted field can push a record
// across several lines.
type Record struct {
	Line   int
	Values map[string]string
}

// Options configures CSV reading. All fields are optional; zero values get
// sensible defaults.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// HeaderMap maps source header names (after normalization) to canonical
	// keys, e.g. {"name": "customer_name"}.
	HeaderMap map[string]string
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// ReadFile parses the CSV file at path. The first row is the header. Rows
// that fail to parse or have the wrong width become parse-stage rejects;
// they never abort the read.
func ReadFile(path string, opt Options) ([]Record, []RejectedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, rejects, err := Parse(f, opt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, rejects, nil
}

// Parse consumes CSV records from r. The header row is required; a missing
// or unreadable header is a hard error since no row can be interpreted
// without it.
func Parse(r io.Reader, opt Options) ([]Record, []RejectedRow, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	// Width mismatches are handled per row below.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	headers := normalizeHeaders(header, opt.HeaderMap)

	var out []Record
	var rejects []RejectedRow

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Parse errors are row-local; anything else is an I/O failure
			// and aborts the read.
			var pe *csv.ParseError
			if !errors.As(err, &pe) {
				return nil, nil, fmt.Errorf("failed to read csv: %w", err)
			}
			rejects = append(rejects, RejectedRow{
				Stage:  StageParse,
				Line:   pe.StartLine,
				Reason: err.Error(),
			})
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(row) != len(headers) {
			rejects = append(rejects, RejectedRow{
				Stage:  StageParse,
				Line:   line,
				Reason: fmt.Sprintf("expected %d fields, got %d", len(headers), len(row)),
			})
			continue
		}

		values := make(map[string]string, len(row))
		for i, val := range row {
			values[headers[i]] = strings.TrimSpace(val)
		}
		out = append(out, Record{Line: line, Values: values})
	}

	return out, rejects, nil
}

// normalizeHeaders produces canonical header keys: BOM stripped from the
// first cell, lowercased, spaces replaced with underscores, then mapped
// through headerMap when provided.
func normalizeHeaders(h []string, headerMap map[string]string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		c := strings.TrimSpace(col)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		c = strings.ReplaceAll(strings.ToLower(c), " ", "_")
		if headerMap != nil {
			if m, ok := headerMap[c]; ok {
				c = m
			}
		}
		res[i] = c
	}
	return res
}
