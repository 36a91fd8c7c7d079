package writer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// ReadParquet loads a file written by DuckDBWriter back into a series, ordered by date.
func ReadParquet(path string, symbol string) (series types.TimeSeries, err error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return types.TimeSeries{}, errors.Wrap(errors.ErrCodeParquetReadFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	query, args, err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Question).
		Select(stockDataColumns...).
		From(fmt.Sprintf("read_parquet('%s')", quoteLiteral(path))).
		Where(squirrel.Eq{"symbol": symbol}).
		OrderBy("date").
		ToSql()
	if err != nil {
		return types.TimeSeries{}, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return types.TimeSeries{}, errors.Wrapf(errors.ErrCodeParquetReadFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	series = types.NewTimeSeries(symbol, nil)
	series.SMA = []optional.Option[float64]{}
	series.RSI = []optional.Option[float64]{}

	for rows.Next() {
		var (
			bar      types.MarketData
			date     time.Time
			sma, rsi sql.NullFloat64
		)

		if err := rows.Scan(&date, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &sma, &rsi); err != nil {
			return types.TimeSeries{}, fmt.Errorf("failed to scan row: %w", err)
		}

		bar.Time = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		series.Records = append(series.Records, bar)
		series.SMA = append(series.SMA, fromNullable(sma))
		series.RSI = append(series.RSI, fromNullable(rsi))
	}

	return series, rows.Err()
}

func fromNullable(v sql.NullFloat64) optional.Option[float64] {
	if !v.Valid {
		return optional.None[float64]()
	}

	return optional.Some(v.Float64)
}
