package writer

import (
	"github.com/moznion/go-optional"
	"go.uber.org/multierr"

	"github.com/stock-tracker/tracker/internal/types"
)

// Row is one output line: a bar and the indicator values computed for it.
type Row struct {
	types.MarketData

	SMA optional.Option[float64]
	RSI optional.Option[float64]
}

// MarketDataWriter defines the interface for writing market data to a destination.
type MarketDataWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single row.
	Write(row Row) error
	// Finalize completes the writing process (e.g., flushes rows, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
	// GetOutputPath returns the configured output file path.
	GetOutputPath() string
}

// Rows pairs every bar of series with its indicator values.
// Missing indicator columns yield None.
func Rows(series types.TimeSeries) []Row {
	rows := make([]Row, len(series.Records))
	for i, record := range series.Records {
		rows[i] = Row{
			MarketData: record,
			SMA:        valueAt(series.SMA, i),
			RSI:        valueAt(series.RSI, i),
		}
	}

	return rows
}

// WriteSeries streams series through w and returns the finalized path.
// w is always closed.
func WriteSeries(w MarketDataWriter, series types.TimeSeries) (outputPath string, err error) {
	if err = w.Initialize(); err != nil {
		return "", err
	}

	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	for _, row := range Rows(series) {
		if err = w.Write(row); err != nil {
			return "", err
		}
	}

	return w.Finalize()
}

func valueAt(column []optional.Option[float64], i int) optional.Option[float64] {
	if i >= len(column) {
		return optional.None[float64]()
	}

	return column[i]
}
