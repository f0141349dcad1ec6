//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package report computes the analytical views over the loaded sales facts.
// Every view is a pure function of an immutable fact snapshot: given the
// same facts it returns the same rows in the same order, and an empty
// snapshot yields an empty result. That keeps the views safe to run in
// parallel and trivial to test.
package report

import (
	"sort"
	"time"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
)

// View names.
const (
	ViewMonthlyRevenue   = "monthly_revenue"
	ViewCategoryYear     = "category_year_revenue"
	ViewCustomerSegments = "customer_segments"
	ViewTopStoreProducts = "top_store_products"
	ViewCustomerLifetime = "customer_lifetime_value"
)

// Customer segments.
const (
	SegmentNew    = "New"
	SegmentRepeat = "Repeat"
)

// DefaultTopN is the per-store product cutoff when none is configured.
const DefaultTopN = 5

// Options configures view computation.
type Options struct {
	// TopN limits how many ranked products each store contributes. Zero or
	// less selects DefaultTopN. Rank ties on the cutoff are all kept.
	TopN int
}

func (o Options) topN() int {
	if o.TopN <= 0 {
		return DefaultTopN
	}
	return o.TopN
}

// MonthlyRevenueRow is one calendar month of the revenue trend.
type MonthlyRevenueRow struct {
	Year    int
	Month   time.Month
	Revenue float64
	Orders  int
}

// CategoryYearRow is the revenue of one product category in one year.
type CategoryYearRow struct {
	Category string
	Year     int
	Revenue  float64
}

// SegmentRow is the customer count of one segment.
type SegmentRow struct {
	Segment   string
	Customers int
}

// StoreProductRankRow is one ranked product within a store.
type StoreProductRankRow struct {
	StoreID     string
	ProductID   string
	ProductName string
	Revenue     float64
	Rank        int
}

// CustomerValueRow is one high-value customer with lifetime totals.
type CustomerValueRow struct {
	CustomerID string
	Name       string
	Orders     int
	Lifetime   float64
}

// MonthlyRevenue aggregates revenue and order counts per calendar month.
// Facts without a date have no month to land in and are left out. Rows are
// ordered chronologically.
func MonthlyRevenue(facts []model.Fact) []MonthlyRevenueRow {
	type key struct {
		year  int
		month time.Month
	}
	grouped := make(map[key]*MonthlyRevenueRow)
	for _, f := range facts {
		if f.OrderDate == nil {
			continue
		}
		k := key{year: f.OrderDate.Year(), month: f.OrderDate.Month()}
		row, ok := grouped[k]
		if !ok {
			row = &MonthlyRevenueRow{Year: k.year, Month: k.month}
			grouped[k] = row
		}
		row.Revenue += f.Total()
		row.Orders++
	}

	rows := make([]MonthlyRevenueRow, 0, len(grouped))
	for _, row := range grouped {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})
	return rows
}

// CategoryYearRevenue aggregates revenue per product category and year,
// highest revenue first. Ties are broken by category, then year, so the
// order is stable. Facts without a date are left out.
func CategoryYearRevenue(facts []model.Fact) []CategoryYearRow {
	type key struct {
		category string
		year     int
	}
	grouped := make(map[key]float64)
	for _, f := range facts {
		if f.OrderDate == nil {
			continue
		}
		grouped[key{category: f.Category, year: f.OrderDate.Year()}] += f.Total()
	}

	rows := make([]CategoryYearRow, 0, len(grouped))
	for k, revenue := range grouped {
		rows = append(rows, CategoryYearRow{Category: k.category, Year: k.year, Revenue: revenue})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Revenue != rows[j].Revenue {
			return rows[i].Revenue > rows[j].Revenue
		}
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].Year < rows[j].Year
	})
	return rows
}

// CustomerSegments splits customers into New (exactly one order) and Repeat
// (more than one). Dates play no role here, so undated facts count too.
// An empty snapshot yields no rows at all.
func CustomerSegments(facts []model.Fact) []SegmentRow {
	orders := make(map[string]int)
	for _, f := range facts {
		orders[f.CustomerID]++
	}
	if len(orders) == 0 {
		return nil
	}

	var fresh, repeat int
	for _, n := range orders {
		if n > 1 {
			repeat++
		} else {
			fresh++
		}
	}
	return []SegmentRow{
		{Segment: SegmentNew, Customers: fresh},
		{Segment: SegmentRepeat, Customers: repeat},
	}
}

// TopStoreProducts ranks products inside each store by revenue and keeps the
// leading ranks per store. Ranking follows competition rules: products with
// equal revenue share a rank and the next distinct revenue skips past the
// tie group, so two products tied at rank 1 are followed by rank 3.
func TopStoreProducts(facts []model.Fact, opt Options) []StoreProductRankRow {
	type key struct {
		store   string
		product string
	}
	names := make(map[string]string)
	grouped := make(map[key]float64)
	for _, f := range facts {
		grouped[key{store: f.StoreID, product: f.ProductID}] += f.Total()
		names[f.ProductID] = f.ProductName
	}

	byStore := make(map[string][]StoreProductRankRow)
	for k, revenue := range grouped {
		byStore[k.store] = append(byStore[k.store], StoreProductRankRow{
			StoreID:     k.store,
			ProductID:   k.product,
			ProductName: names[k.product],
			Revenue:     revenue,
		})
	}

	stores := make([]string, 0, len(byStore))
	for store := range byStore {
		stores = append(stores, store)
	}
	sort.Strings(stores)

	limit := opt.topN()
	var rows []StoreProductRankRow
	for _, store := range stores {
		ranked := byStore[store]
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Revenue != ranked[j].Revenue {
				return ranked[i].Revenue > ranked[j].Revenue
			}
			return ranked[i].ProductID < ranked[j].ProductID
		})
		for i := range ranked {
			if i > 0 && ranked[i].Revenue == ranked[i-1].Revenue {
				ranked[i].Rank = ranked[i-1].Rank
			} else {
				ranked[i].Rank = i + 1
			}
			if ranked[i].Rank > limit {
				break
			}
			rows = append(rows, ranked[i])
		}
	}
	return rows
}

// CustomerLifetimeValue lists customers whose lifetime spend exceeds the
// average transaction value across the whole snapshot. Highest lifetime
// first, ties broken by customer id.
func CustomerLifetimeValue(facts []model.Fact) []CustomerValueRow {
	if len(facts) == 0 {
		return nil
	}

	var totalRevenue float64
	perCustomer := make(map[string]*CustomerValueRow)
	for _, f := range facts {
		totalRevenue += f.Total()
		row, ok := perCustomer[f.CustomerID]
		if !ok {
			row = &CustomerValueRow{CustomerID: f.CustomerID, Name: f.CustomerName}
			perCustomer[f.CustomerID] = row
		}
		row.Orders++
		row.Lifetime += f.Total()
	}
	threshold := totalRevenue / float64(len(facts))

	rows := make([]CustomerValueRow, 0, len(perCustomer))
	for _, row := range perCustomer {
		if row.Lifetime > threshold {
			rows = append(rows, *row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Lifetime != rows[j].Lifetime {
			return rows[i].Lifetime > rows[j].Lifetime
		}
		return rows[i].CustomerID < rows[j].CustomerID
	})
	return rows
}
