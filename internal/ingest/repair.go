package ingest

import (
	"context"

	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/logging"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/model"
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/normalize"
)

// RepairStore is the persistence surface of the date repair pass.
type RepairStore interface {
	UnrepairedDates(ctx context.Context) ([]model.RawDate, error)
	ApplyRepairs(ctx context.Context, repairs []model.DateRepair) (int64, error)
}

const defaultRepairBatchSize = 500

// Repairer re-runs date conversion over sales rows whose order date is
// still absent and writes back the ones that now convert. Rows that fail
// every configured format keep an absent date; a date is never guessed.
type Repairer struct {
	store      RepairStore
	normalizer *normalize.Normalizer
	batchSize  int
}

// NewRepairer creates a Repairer. A batchSize of zero or less selects the
// default.
func NewRepairer(store RepairStore, normalizer *normalize.Normalizer, batchSize int) *Repairer {
	if batchSize <= 0 {
		batchSize = defaultRepairBatchSize
	}
	return &Repairer{store: store, normalizer: normalizer, batchSize: batchSize}
}

// Repair runs one repair pass and reports how many rows were examined,
// converted and left unconverted.
func (r *Repairer) Repair(ctx context.Context) (normalize.Summary, error) {
	var summary normalize.Summary

	raw, err := r.store.UnrepairedDates(ctx)
	if err != nil {
		return summary, err
	}

	batch := make([]model.DateRepair, 0, r.batchSize)
	for _, rd := range raw {
		date, ok := r.normalizer.Parse(rd.Raw)
		summary.Observe(ok)
		if !ok {
			logging.Debug().
				Str("order_id", rd.OrderID).
				Str("raw", rd.Raw).
				Msg("Date still unconvertible")
			continue
		}

		batch = append(batch, model.DateRepair{OrderID: rd.OrderID, Date: date})
		if len(batch) >= r.batchSize {
			if _, err := r.store.ApplyRepairs(ctx, batch); err != nil {
				return summary, err
			}
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if _, err := r.store.ApplyRepairs(ctx, batch); err != nil {
			return summary, err
		}
	}

	logging.Info().
		Int("examined", summary.Total).
		Int("converted", summary.Converted).
		Int("failed", summary.Failed).
		Msg("Date repair complete")

	return summary, nil
}
