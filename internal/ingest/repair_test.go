package ingest

import (
	"context"
	"testing"
	"time"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/normalize"
)

type fakeRepairStore struct {
	raw     []model.RawDate
	applied [][]model.DateRepair
}

func (f *fakeRepairStore) UnrepairedDates(_ context.Context) ([]model.RawDate, error) {
	return f.raw, nil
}

func (f *fakeRepairStore) ApplyRepairs(_ context.Context, repairs []model.DateRepair) (int64, error) {
	batch := make([]model.DateRepair, len(repairs))
	copy(batch, repairs)
	f.applied = append(f.applied, batch)
	return int64(len(repairs)), nil
}

func (f *fakeRepairStore) allRepairs() []model.DateRepair {
	var all []model.DateRepair
	for _, batch := range f.applied {
		all = append(all, batch...)
	}
	return all
}

func TestRepairerRepair(t *testing.T) {
	store := &fakeRepairStore{raw: []model.RawDate{
		{OrderID: "O1", Raw: "15-01-2024"},
		{OrderID: "O2", Raw: "garbage"},
		{OrderID: "O3", Raw: "2024-02-20"},
		{OrderID: "O4", Raw: ""},
	}}
	repairer := NewRepairer(store, normalize.New(), 0)

	summary, err := repairer.Repair(context.Background())
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	if summary.Total != 4 {
		t.Errorf("Expected 4 rows examined, got %d", summary.Total)
	}
	if summary.Converted != 2 {
		t.Errorf("Expected 2 rows converted, got %d", summary.Converted)
	}
	if summary.Failed != 2 {
		t.Errorf("Expected 2 rows failed, got %d", summary.Failed)
	}

	repairs := store.allRepairs()
	if len(repairs) != 2 {
		t.Fatalf("Expected 2 repairs applied, got %d", len(repairs))
	}
	jan15 := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	if repairs[0].OrderID != "O1" || !repairs[0].Date.Equal(jan15) {
		t.Errorf("Unexpected first repair: %+v", repairs[0])
	}
	feb20 := time.Date(2024, time.February, 20, 0, 0, 0, 0, time.UTC)
	if repairs[1].OrderID != "O3" || !repairs[1].Date.Equal(feb20) {
		t.Errorf("Unexpected second repair: %+v", repairs[1])
	}
}

func TestRepairerBatches(t *testing.T) {
	store := &fakeRepairStore{raw: []model.RawDate{
		{OrderID: "O1", Raw: "01-01-2024"},
		{OrderID: "O2", Raw: "02-01-2024"},
		{OrderID: "O3", Raw: "03-01-2024"},
	}}
	repairer := NewRepairer(store, normalize.New(), 2)

	if _, err := repairer.Repair(context.Background()); err != nil {
		t.Fatalf("Repair failed: %v", err)
	}

	if len(store.applied) != 2 {
		t.Fatalf("Expected 2 batches, got %d", len(store.applied))
	}
	if len(store.applied[0]) != 2 || len(store.applied[1]) != 1 {
		t.Errorf("Expected batch sizes 2 and 1, got %d and %d",
			len(store.applied[0]), len(store.applied[1]))
	}
}

func TestRepairerNothingToRepair(t *testing.T) {
	store := &fakeRepairStore{}
	repairer := NewRepairer(store, normalize.New(), 10)

	summary, err := repairer.Repair(context.Background())
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if summary.Total != 0 || summary.Converted != 0 || summary.Failed != 0 {
		t.Errorf("Expected empty summary, got %+v", summary)
	}
	if len(store.applied) != 0 {
		t.Errorf("Expected no batches applied, got %d", len(store.applied))
	}
}
