package model

import (
	"testing"
	"time"
)

func TestTransactionTotal(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		price    float64
		want     float64
	}{
		{"simple", 2, 50, 100},
		{"fractional price", 3, 10.5, 31.5},
		{"single unit", 1, 19.99, 19.99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := SalesTransaction{Quantity: tt.quantity, UnitPrice: tt.price}
			if got := txn.Total(); got != tt.want {
				t.Errorf("Expected total %v, got %v", tt.want, got)
			}

			fact := Fact{Quantity: tt.quantity, UnitPrice: tt.price}
			if got := fact.Total(); got != tt.want {
				t.Errorf("Expected fact total %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFactOrderDateAbsent(t *testing.T) {
	f := Fact{OrderID: "O1"}
	if f.OrderDate != nil {
		t.Errorf("Expected absent order date by default, got %v", f.OrderDate)
	}

	d := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	f.OrderDate = &d
	if !f.OrderDate.Equal(d) {
		t.Errorf("Expected order date %v, got %v", d, f.OrderDate)
	}
}
