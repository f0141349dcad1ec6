package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
)

// Table is a rendered view: ordered columns and stringified rows, ready for
// text or CSV output.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// WriteText renders the table as column-aligned text.
func (t Table) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// WriteCSV renders the table as CSV with a header row.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// money renders a revenue amount with two decimal places.
func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func monthlyRevenueTable(facts []model.Fact, _ Options) Table {
	t := Table{
		Name:    ViewMonthlyRevenue,
		Columns: []string{"year", "month", "revenue", "orders"},
	}
	for _, r := range MonthlyRevenue(facts) {
		t.Rows = append(t.Rows, []string{
			strconv.Itoa(r.Year),
			fmt.Sprintf("%02d", int(r.Month)),
			money(r.Revenue),
			strconv.Itoa(r.Orders),
		})
	}
	return t
}

func categoryYearTable(facts []model.Fact, _ Options) Table {
	t := Table{
		Name:    ViewCategoryYear,
		Columns: []string{"category", "year", "revenue"},
	}
	for _, r := range CategoryYearRevenue(facts) {
		t.Rows = append(t.Rows, []string{
			r.Category,
			strconv.Itoa(r.Year),
			money(r.Revenue),
		})
	}
	return t
}

func customerSegmentsTable(facts []model.Fact, _ Options) Table {
	t := Table{
		Name:    ViewCustomerSegments,
		Columns: []string{"segment", "customers"},
	}
	for _, r := range CustomerSegments(facts) {
		t.Rows = append(t.Rows, []string{
			r.Segment,
			strconv.Itoa(r.Customers),
		})
	}
	return t
}

func topStoreProductsTable(facts []model.Fact, opt Options) Table {
	t := Table{
		Name:    ViewTopStoreProducts,
		Columns: []string{"store_id", "rank", "product_id", "product_name", "revenue"},
	}
	for _, r := range TopStoreProducts(facts, opt) {
		t.Rows = append(t.Rows, []string{
			r.StoreID,
			strconv.Itoa(r.Rank),
			r.ProductID,
			r.ProductName,
			money(r.Revenue),
		})
	}
	return t
}

func customerLifetimeTable(facts []model.Fact, _ Options) Table {
	t := Table{
		Name:    ViewCustomerLifetime,
		Columns: []string{"customer_id", "customer_name", "orders", "lifetime_value"},
	}
	for _, r := range CustomerLifetimeValue(facts) {
		t.Rows = append(t.Rows, []string{
			r.CustomerID,
			r.Name,
			strconv.Itoa(r.Orders),
			money(r.Lifetime),
		})
	}
	return t
}
