//-------------------------------------------------------------------------
//
// Retail Sales Analytics
//
// Copyright (c) 2025 - 2026, the retail-sales-analysis authors
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package normalize repairs inconsistently formatted order date strings into
// typed calendar dates. Source exports mix ISO yyyy-mm-dd with European
// dd-mm-yyyy and the occasional malformed value; a value either parses under
// one of the configured layouts or is reported as unparseable. The package
// never guesses: a swapped day/month that fits no layout stays unresolved
// rather than becoming a plausible-looking wrong date.
package normalize

import (
	"strings"
	"time"
)

// Strategy is a named date layout. Strategies are tried strictly in order
// and the first successful parse wins, so the list defines a reproducible
// precedence (ISO before day-first by default).
type Strategy struct {
	// Name identifies the strategy in logs and summaries.
	Name string

	// Layout is the Go reference-time layout.
	Layout string
}

// DefaultStrategies returns the layout order used when none is configured:
// ISO yyyy-mm-dd first, then European dd-mm-yyyy.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "iso", Layout: "2006-01-02"},
		{Name: "dayfirst", Layout: "02-01-2006"},
	}
}

// Summary counts the outcome of a repair pass for data-quality reporting.
type Summary struct {
	// Total is the number of raw values examined.
	Total int

	// Converted is the number of values that parsed under some strategy.
	Converted int

	// Failed is the number of values that matched no strategy.
	Failed int
}

// Observe records one parse outcome.
func (s *Summary) Observe(ok bool) {
	s.Total++
	if ok {
		s.Converted++
	} else {
		s.Failed++
	}
}

// Normalizer converts raw date strings into calendar dates using an ordered
// strategy list. The zero value is not usable; construct with New or
// NewWithLayouts.
type Normalizer struct {
	strategies []Strategy
}

// New returns a Normalizer with the default strategy order.
func New() *Normalizer {
	return &Normalizer{strategies: DefaultStrategies()}
}

// NewWithLayouts returns a Normalizer trying the given layouts in order.
// Each layout doubles as its strategy name. An empty list falls back to the
// default order.
func NewWithLayouts(layouts []string) *Normalizer {
	if len(layouts) == 0 {
		return New()
	}
	strategies := make([]Strategy, 0, len(layouts))
	for _, layout := range layouts {
		strategies = append(strategies, Strategy{Name: layout, Layout: layout})
	}
	return &Normalizer{strategies: strategies}
}

// Strategies returns the configured strategy order.
func (n *Normalizer) Strategies() []Strategy {
	return n.strategies
}

// Parse attempts to convert one raw value. It returns the parsed date and
// true on success, or the zero time and false when the value (after
// trimming surrounding space) matches no strategy. Out-of-range components
// such as "32-13-2024" fail: time.Parse validates calendar ranges rather
// than normalizing them.
func (n *Normalizer) Parse(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, s := range n.strategies {
		if t, err := time.Parse(s.Layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
