package report

import (
	"context"
	"testing"
	"time"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
)

func onDate(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("Bad test date %q: %v", s, err)
	}
	return &d
}

func TestMonthlyRevenue(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", OrderDate: onDate(t, "2024-01-15"), Quantity: 2, UnitPrice: 50},
		{OrderID: "O2", OrderDate: onDate(t, "2024-01-20"), Quantity: 1, UnitPrice: 30},
		{OrderID: "O3", OrderDate: onDate(t, "2024-02-05"), Quantity: 1, UnitPrice: 10},
		{OrderID: "O4", OrderDate: onDate(t, "2023-12-31"), Quantity: 1, UnitPrice: 5},
		{OrderID: "O5", OrderDate: nil, Quantity: 10, UnitPrice: 100},
	}

	rows := MonthlyRevenue(facts)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 months, got %d", len(rows))
	}

	expected := []MonthlyRevenueRow{
		{Year: 2023, Month: time.December, Revenue: 5, Orders: 1},
		{Year: 2024, Month: time.January, Revenue: 130, Orders: 2},
		{Year: 2024, Month: time.February, Revenue: 10, Orders: 1},
	}
	for i, want := range expected {
		if rows[i] != want {
			t.Errorf("Row %d: expected %+v, got %+v", i, want, rows[i])
		}
	}
}

func TestMonthlyRevenueExcludesUndated(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", OrderDate: nil, Quantity: 1, UnitPrice: 100},
	}
	if rows := MonthlyRevenue(facts); len(rows) != 0 {
		t.Errorf("Expected no rows for undated facts, got %+v", rows)
	}
}

func TestCategoryYearRevenue(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", OrderDate: onDate(t, "2024-03-01"), Category: "Footwear", Quantity: 2, UnitPrice: 50},
		{OrderID: "O2", OrderDate: onDate(t, "2024-06-01"), Category: "Footwear", Quantity: 1, UnitPrice: 100},
		{OrderID: "O3", OrderDate: onDate(t, "2024-04-01"), Category: "Outdoors", Quantity: 4, UnitPrice: 50},
		{OrderID: "O4", OrderDate: onDate(t, "2023-04-01"), Category: "Apparel", Quantity: 1, UnitPrice: 200},
		{OrderID: "O5", OrderDate: nil, Category: "Footwear", Quantity: 9, UnitPrice: 9},
	}

	rows := CategoryYearRevenue(facts)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	// Footwear 2024 and Outdoors 2024 tie at 200 alongside Apparel 2023;
	// equal revenue falls back to category order.
	expected := []CategoryYearRow{
		{Category: "Apparel", Year: 2023, Revenue: 200},
		{Category: "Footwear", Year: 2024, Revenue: 200},
		{Category: "Outdoors", Year: 2024, Revenue: 200},
	}
	for i, want := range expected {
		if rows[i] != want {
			t.Errorf("Row %d: expected %+v, got %+v", i, want, rows[i])
		}
	}
}

func TestCategoryYearRevenueOrdersByRevenue(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", OrderDate: onDate(t, "2024-01-01"), Category: "Small", Quantity: 1, UnitPrice: 10},
		{OrderID: "O2", OrderDate: onDate(t, "2024-01-01"), Category: "Big", Quantity: 1, UnitPrice: 500},
	}

	rows := CategoryYearRevenue(facts)
	if rows[0].Category != "Big" || rows[1].Category != "Small" {
		t.Errorf("Expected revenue-descending order, got %+v", rows)
	}
}

func TestCustomerSegments(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", CustomerID: "C1", Quantity: 1, UnitPrice: 10},
		{OrderID: "O2", CustomerID: "C1", Quantity: 1, UnitPrice: 10},
		{OrderID: "O3", CustomerID: "C2", Quantity: 1, UnitPrice: 10},
		{OrderID: "O4", CustomerID: "C3", OrderDate: nil, Quantity: 1, UnitPrice: 10},
	}

	rows := CustomerSegments(facts)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 segments, got %d", len(rows))
	}
	if rows[0].Segment != SegmentNew || rows[0].Customers != 2 {
		t.Errorf("Expected 2 New customers, got %+v", rows[0])
	}
	if rows[1].Segment != SegmentRepeat || rows[1].Customers != 1 {
		t.Errorf("Expected 1 Repeat customer, got %+v", rows[1])
	}
}

func TestCustomerSegmentsAllNew(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", CustomerID: "C1", Quantity: 1, UnitPrice: 10},
	}

	rows := CustomerSegments(facts)
	if len(rows) != 2 {
		t.Fatalf("Expected both segments present, got %d rows", len(rows))
	}
	if rows[1].Customers != 0 {
		t.Errorf("Expected 0 Repeat customers, got %d", rows[1].Customers)
	}
}

func storeFact(product, store string, revenue float64) model.Fact {
	return model.Fact{
		OrderID:     product + "-" + store,
		ProductID:   product,
		ProductName: "Product " + product,
		StoreID:     store,
		Quantity:    1,
		UnitPrice:   revenue,
	}
}

func TestTopStoreProductsCompetitionRanking(t *testing.T) {
	facts := []model.Fact{
		storeFact("P1", "S1", 100),
		storeFact("P2", "S1", 100),
		storeFact("P3", "S1", 80),
		storeFact("P4", "S1", 70),
		storeFact("P5", "S1", 60),
		storeFact("P6", "S1", 50),
	}

	rows := TopStoreProducts(facts, Options{})
	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}

	// Two products tied at the top share rank 1 and the next rank is 3.
	expected := []struct {
		product string
		rank    int
	}{
		{"P1", 1},
		{"P2", 1},
		{"P3", 3},
		{"P4", 4},
		{"P5", 5},
	}
	for i, want := range expected {
		if rows[i].ProductID != want.product || rows[i].Rank != want.rank {
			t.Errorf("Row %d: expected %s rank %d, got %s rank %d",
				i, want.product, want.rank, rows[i].ProductID, rows[i].Rank)
		}
	}
}

func TestTopStoreProductsBoundaryTie(t *testing.T) {
	facts := []model.Fact{
		storeFact("P1", "S1", 100),
		storeFact("P2", "S1", 90),
		storeFact("P3", "S1", 80),
		storeFact("P4", "S1", 70),
		storeFact("P5", "S1", 60),
		storeFact("P6", "S1", 60),
		storeFact("P7", "S1", 50),
	}

	rows := TopStoreProducts(facts, Options{})

	// P5 and P6 share rank 5, so both stay; P7 lands at rank 7 and is cut.
	if len(rows) != 6 {
		t.Fatalf("Expected 6 rows with the boundary tie kept, got %d", len(rows))
	}
	if rows[4].Rank != 5 || rows[5].Rank != 5 {
		t.Errorf("Expected shared rank 5, got %d and %d", rows[4].Rank, rows[5].Rank)
	}
	for _, r := range rows {
		if r.ProductID == "P7" {
			t.Error("Expected P7 beyond the cutoff to be dropped")
		}
	}
}

func TestTopStoreProductsPerStore(t *testing.T) {
	facts := []model.Fact{
		storeFact("P1", "S2", 10),
		storeFact("P2", "S1", 100),
		storeFact("P1", "S1", 50),
	}

	rows := TopStoreProducts(facts, Options{})
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	// Stores come back in order, each ranked independently.
	if rows[0].StoreID != "S1" || rows[0].ProductID != "P2" || rows[0].Rank != 1 {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[1].StoreID != "S1" || rows[1].ProductID != "P1" || rows[1].Rank != 2 {
		t.Errorf("Unexpected second row: %+v", rows[1])
	}
	if rows[2].StoreID != "S2" || rows[2].ProductID != "P1" || rows[2].Rank != 1 {
		t.Errorf("Unexpected third row: %+v", rows[2])
	}
}

func TestTopStoreProductsCustomLimit(t *testing.T) {
	facts := []model.Fact{
		storeFact("P1", "S1", 100),
		storeFact("P2", "S1", 100),
		storeFact("P3", "S1", 80),
	}

	rows := TopStoreProducts(facts, Options{TopN: 2})
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows with TopN=2, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Rank != 1 {
			t.Errorf("Expected only rank-1 ties within limit 2, got %+v", r)
		}
	}
}

func TestTopStoreProductsSumsAcrossOrders(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", ProductID: "P1", ProductName: "Product P1", StoreID: "S1", Quantity: 2, UnitPrice: 10},
		{OrderID: "O2", ProductID: "P1", ProductName: "Product P1", StoreID: "S1", Quantity: 3, UnitPrice: 10},
	}

	rows := TopStoreProducts(facts, Options{})
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Revenue != 50 {
		t.Errorf("Expected revenue 50, got %v", rows[0].Revenue)
	}
}

func TestCustomerLifetimeValue(t *testing.T) {
	// C1 places two orders worth 300 total, C2 one order worth 150. The
	// average transaction value is 150, so only C1 clears the bar.
	facts := []model.Fact{
		{OrderID: "O1", CustomerID: "C1", CustomerName: "Asha Verma", Quantity: 1, UnitPrice: 100},
		{OrderID: "O2", CustomerID: "C1", CustomerName: "Asha Verma", Quantity: 2, UnitPrice: 100},
		{OrderID: "O3", CustomerID: "C2", CustomerName: "Rohan Iyer", Quantity: 1, UnitPrice: 150},
	}

	rows := CustomerLifetimeValue(facts)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 customer above average, got %d", len(rows))
	}
	row := rows[0]
	if row.CustomerID != "C1" || row.Name != "Asha Verma" {
		t.Errorf("Expected C1 Asha Verma, got %+v", row)
	}
	if row.Orders != 2 {
		t.Errorf("Expected 2 orders, got %d", row.Orders)
	}
	if row.Lifetime != 300 {
		t.Errorf("Expected lifetime 300, got %v", row.Lifetime)
	}
}

func TestCustomerLifetimeValueOrdering(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", CustomerID: "C2", Quantity: 1, UnitPrice: 400},
		{OrderID: "O2", CustomerID: "C3", Quantity: 1, UnitPrice: 400},
		{OrderID: "O3", CustomerID: "C1", Quantity: 1, UnitPrice: 900},
		{OrderID: "O4", CustomerID: "C4", Quantity: 1, UnitPrice: 1},
	}

	rows := CustomerLifetimeValue(facts)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[0].CustomerID != "C1" {
		t.Errorf("Expected C1 first, got %s", rows[0].CustomerID)
	}
	// C2 and C3 tie on lifetime; ids break the tie.
	if rows[1].CustomerID != "C2" || rows[2].CustomerID != "C3" {
		t.Errorf("Expected C2 then C3, got %s then %s", rows[1].CustomerID, rows[2].CustomerID)
	}
}

func TestViewsEmptySnapshot(t *testing.T) {
	if rows := MonthlyRevenue(nil); len(rows) != 0 {
		t.Errorf("MonthlyRevenue: expected empty, got %+v", rows)
	}
	if rows := CategoryYearRevenue(nil); len(rows) != 0 {
		t.Errorf("CategoryYearRevenue: expected empty, got %+v", rows)
	}
	if rows := CustomerSegments(nil); len(rows) != 0 {
		t.Errorf("CustomerSegments: expected empty, got %+v", rows)
	}
	if rows := TopStoreProducts(nil, Options{}); len(rows) != 0 {
		t.Errorf("TopStoreProducts: expected empty, got %+v", rows)
	}
	if rows := CustomerLifetimeValue(nil); len(rows) != 0 {
		t.Errorf("CustomerLifetimeValue: expected empty, got %+v", rows)
	}
}

func TestViewsDoNotMutateFacts(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", CustomerID: "C1", ProductID: "P1", StoreID: "S1",
			OrderDate: onDate(t, "2024-01-15"), Quantity: 2, UnitPrice: 50},
		{OrderID: "O2", CustomerID: "C2", ProductID: "P2", StoreID: "S2",
			OrderDate: nil, Quantity: 1, UnitPrice: 10},
	}
	snapshot := make([]model.Fact, len(facts))
	copy(snapshot, facts)

	MonthlyRevenue(facts)
	CategoryYearRevenue(facts)
	CustomerSegments(facts)
	TopStoreProducts(facts, Options{})
	CustomerLifetimeValue(facts)

	for i := range facts {
		if facts[i] != snapshot[i] {
			t.Errorf("Fact %d mutated: %+v", i, facts[i])
		}
	}
}

func TestRegistry(t *testing.T) {
	names := List()
	expected := []string{
		ViewMonthlyRevenue,
		ViewCategoryYear,
		ViewCustomerSegments,
		ViewTopStoreProducts,
		ViewCustomerLifetime,
	}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d views, got %d", len(expected), len(names))
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Expected view %d to be %s, got %s", i, name, names[i])
		}
	}

	v, err := Get(ViewCustomerSegments)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v.Name != ViewCustomerSegments || v.Compute == nil {
		t.Errorf("Unexpected view: %+v", v)
	}

	if _, err := Get("nope"); err == nil {
		t.Error("Expected error for unknown view")
	}
}

func TestRun(t *testing.T) {
	facts := []model.Fact{
		{OrderID: "O1", CustomerID: "C1", ProductID: "P1", StoreID: "S1",
			OrderDate: onDate(t, "2024-01-15"), Quantity: 2, UnitPrice: 50},
	}

	tables, err := Run(context.Background(), facts, nil, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(tables) != len(views) {
		t.Fatalf("Expected %d tables, got %d", len(views), len(tables))
	}
	for i, v := range views {
		if tables[i].Name != v.Name {
			t.Errorf("Expected table %d to be %s, got %s", i, v.Name, tables[i].Name)
		}
	}
}

func TestRunSelectedViews(t *testing.T) {
	tables, err := Run(context.Background(), nil,
		[]string{ViewCustomerSegments, ViewMonthlyRevenue}, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(tables) != 2 {
		t.Fatalf("Expected 2 tables, got %d", len(tables))
	}
	if tables[0].Name != ViewCustomerSegments || tables[1].Name != ViewMonthlyRevenue {
		t.Errorf("Expected requested order, got %s then %s", tables[0].Name, tables[1].Name)
	}
}

func TestRunUnknownView(t *testing.T) {
	if _, err := Run(context.Background(), nil, []string{"nope"}, Options{}); err == nil {
		t.Error("Expected error for unknown view")
	}
}
