package datagen

import (
	"github.com/meet-ved001/retail-sales-sql-powerbi-analysis/internal/logging"
)

// defaultProgressInterval is how many rows pass between progress logs.
const defaultProgressInterval = 10000

// ProgressReporter tracks and reports file generation progress.
type ProgressReporter struct {
	file             string
	totalRows        int64
	currentRow       int64
	progressInterval int64
}

// NewProgressReporter creates a new progress reporter. An interval of zero
// uses the default.
func NewProgressReporter(file string, totalRows int64, interval int64) *ProgressReporter {
	if interval <= 0 {
		interval = defaultProgressInterval
	}
	return &ProgressReporter{
		file:             file,
		totalRows:        totalRows,
		progressInterval: interval,
	}
}

// Update updates the progress and logs if necessary.
func (p *ProgressReporter) Update(rowsWritten int64) {
	oldRow := p.currentRow
	p.currentRow += rowsWritten

	// Check if we crossed a progress interval
	if p.currentRow/p.progressInterval > oldRow/p.progressInterval {
		pct := float64(p.currentRow) / float64(p.totalRows) * 100
		logging.Info().
			Str("file", p.file).
			Int64("rows", p.currentRow).
			Int64("total", p.totalRows).
			Float64("percent", pct).
			Msg("Generating data")
	}
}

// Done logs completion.
func (p *ProgressReporter) Done() {
	logging.Debug().
		Str("file", p.file).
		Int64("rows", p.currentRow).
		Msg("File complete")
}
