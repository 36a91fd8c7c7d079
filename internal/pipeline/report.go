package pipeline

import (
	"time"

	"github.com/stock-tracker/tracker/internal/indicator"
	"github.com/stock-tracker/tracker/internal/types"
)

// SymbolReport is the outcome of one symbol.
type SymbolReport struct {
	Symbol      string
	Fetch       types.LookupStatus
	Info        types.LookupResult[types.TickerInfo]
	Records     int
	CSVPath     string
	HTMLPath    string
	ParquetPath string
	// Latest holds the indicator values at the last bar, once computed.
	Latest []indicator.Reading
	// Err is the fetch, persist or render failure of this symbol, if any.
	Err error
}

// Skipped reports whether the symbol was rejected by the info lookup.
func (s SymbolReport) Skipped() bool {
	return s.Info.IsNotFound()
}

// Written reports whether the CSV and HTML files were produced.
func (s SymbolReport) Written() bool {
	return s.CSVPath != "" && s.HTMLPath != ""
}

// RunReport summarizes one run.
type RunReport struct {
	RunID      string
	Symbols    []SymbolReport
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Written returns the symbols whose files were produced.
func (r RunReport) Written() []SymbolReport {
	return r.filter(SymbolReport.Written)
}

// Skipped returns the symbols reported as invalid or delisted.
func (r RunReport) Skipped() []SymbolReport {
	return r.filter(SymbolReport.Skipped)
}

// Failed returns the symbols that ended with an error.
func (r RunReport) Failed() []SymbolReport {
	return r.filter(func(s SymbolReport) bool { return s.Err != nil })
}

func (r RunReport) filter(keep func(SymbolReport) bool) []SymbolReport {
	var out []SymbolReport

	for _, s := range r.Symbols {
		if keep(s) {
			out = append(out, s)
		}
	}

	return out
}
