package report

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
)

// View couples a view name with its computation.
type View struct {
	Name        string
	Description string
	Compute     func(facts []model.Fact, opt Options) Table
}

// views lists every view in report order.
var views = []View{
	{
		Name:        ViewMonthlyRevenue,
		Description: "Revenue and order volume per calendar month",
		Compute:     monthlyRevenueTable,
	},
	{
		Name:        ViewCategoryYear,
		Description: "Revenue per product category and year, highest first",
		Compute:     categoryYearTable,
	},
	{
		Name:        ViewCustomerSegments,
		Description: "Customer counts split into New and Repeat buyers",
		Compute:     customerSegmentsTable,
	},
	{
		Name:        ViewTopStoreProducts,
		Description: "Top products per store by revenue, competition-ranked",
		Compute:     topStoreProductsTable,
	},
	{
		Name:        ViewCustomerLifetime,
		Description: "Customers whose lifetime spend beats the average transaction",
		Compute:     customerLifetimeTable,
	},
}

// Views returns every view in report order.
func Views() []View {
	out := make([]View, len(views))
	copy(out, views)
	return out
}

// List returns the view names in report order.
func List() []string {
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.Name
	}
	return names
}

// Get retrieves a view by name.
func Get(name string) (View, error) {
	for _, v := range views {
		if v.Name == name {
			return v, nil
		}
	}
	return View{}, fmt.Errorf("unknown view: %s", name)
}

// Run computes the named views over one immutable fact snapshot. The views
// are pure functions, so they run in parallel. An empty names slice selects
// every view; tables come back in the requested order.
func Run(ctx context.Context, facts []model.Fact, names []string, opt Options) ([]Table, error) {
	var selected []View
	if len(names) == 0 {
		selected = Views()
	} else {
		selected = make([]View, 0, len(names))
		for _, name := range names {
			v, err := Get(name)
			if err != nil {
				return nil, err
			}
			selected = append(selected, v)
		}
	}

	tables := make([]Table, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range selected {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tables[i] = v.Compute(facts, opt)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
