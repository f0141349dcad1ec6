// Package model defines the entity and fact row types shared by the loader,
// the entity store, and the aggregation views.
package model

import "time"

// Customer is immutable reference data describing a buyer.
type Customer struct {
	CustomerID string
	Name       string
	Gender     string
	Age        int
	City       string
}

// Product is immutable reference data describing a catalog item.
type Product struct {
	ProductID string
	Name      string
	Category  string
	UnitPrice float64
}

// SalesTransaction is a single order line as it enters the store. The raw
// order date is kept verbatim; OrderDate stays nil until date conversion
// resolves it, and remains nil when the raw value matches no known layout.
type SalesTransaction struct {
	OrderID      string
	RawOrderDate string
	OrderDate    *time.Time
	CustomerID   string
	ProductID    string
	StoreID      string
	Quantity     int
	UnitPrice    float64
}

// Total is the derived line value. It is always recomputed from its inputs;
// the store mirrors this with a generated column, so the value can never
// drift from quantity * unit_price.
func (t SalesTransaction) Total() float64 {
	return float64(t.Quantity) * t.UnitPrice
}

// Fact is one row of the validated fact snapshot: a sales transaction joined
// to its customer and product dimensions. OrderDate is nil for rows the date
// repair pass could not resolve; date-keyed views skip those rows.
type Fact struct {
	OrderID      string
	OrderDate    *time.Time
	CustomerID   string
	CustomerName string
	ProductID    string
	ProductName  string
	Category     string
	StoreID      string
	Quantity     int
	UnitPrice    float64
}

// Total is the derived line value, recomputed on access.
func (f Fact) Total() float64 {
	return float64(f.Quantity) * f.UnitPrice
}

// RawDate is an order date still awaiting repair.
type RawDate struct {
	OrderID string
	Raw     string
}

// DateRepair is a resolved order date ready to be written back.
type DateRepair struct {
	OrderID string
	Date    time.Time
}
