package pipeline

import (
	"fmt"
	"io"

	"github.com/stock-tracker/tracker/internal/types"
)

// writeInfo prints the report block of one symbol.
func writeInfo(w io.Writer, symbol string, info types.LookupResult[types.TickerInfo]) error {
	var err error

	switch {
	case info.IsFound():
		_, err = fmt.Fprintf(w, "Stock: %s (%s)\nIndustry: %s\n", info.Value.Name, symbol, info.Value.IndustryOrDefault())
	case info.IsNotFound():
		_, err = fmt.Fprintf(w, "Invalid or delisted stock symbol: %s\n\n", symbol)
	default:
		_, err = fmt.Fprintf(w, "Stock information unavailable for %s: %v\n\n", symbol, info.Err)
	}

	return err
}

// normalizeInfo treats a found ticker without a name as unknown.
func normalizeInfo(symbol string, info types.LookupResult[types.TickerInfo]) types.LookupResult[types.TickerInfo] {
	if info.IsFound() && info.Value.Name == "" {
		return types.NotFound[types.TickerInfo](fmt.Errorf("%s has no name", symbol))
	}

	return info
}
