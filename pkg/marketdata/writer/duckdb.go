package writer

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/multierr"

	"github.com/stock-tracker/tracker/pkg/errors"
)

const stockDataTable = "stock_data"

var stockDataColumns = []string{"date", "symbol", "open", "high", "low", "close", "volume", "sma", "rsi"}

// DuckDBWriter stages rows in an in-memory DuckDB table and exports them to Parquet.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	sq         squirrel.StatementBuilderType
	outputPath string
}

// NewDuckDBWriter creates a new DuckDBWriter.
// outputPath is the Parquet file written by Finalize.
func NewDuckDBWriter(outputPath string) MarketDataWriter {
	return &DuckDBWriter{
		outputPath: outputPath,
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Initialize opens the in-memory database, creates the table and begins a transaction.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeParquetWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS stock_data (
			date DATE,
			symbol TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			sma DOUBLE,
			rsi DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeParquetWriteFailed, "failed to create table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()
		w.db = nil

		return errors.Wrap(errors.ErrCodeParquetWriteFailed, "failed to begin transaction", err)
	}

	return nil
}

func (w *DuckDBWriter) Write(row Row) error {
	if w.tx == nil {
		return errors.New(errors.ErrCodeParquetWriteFailed, "writer not initialized or transaction is nil")
	}

	_, err := w.sq.
		Insert(stockDataTable).
		Columns(stockDataColumns...).
		Values(
			row.Time,
			row.Symbol,
			row.Open,
			row.High,
			row.Low,
			row.Close,
			row.Volume,
			nullable(row.SMA),
			nullable(row.RSI),
		).
		RunWith(w.tx).
		Exec()
	if err != nil {
		return errors.Wrap(errors.ErrCodeParquetWriteFailed, "failed to insert row", err)
	}

	return nil
}

// Finalize commits the transaction and exports the table ordered by date.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeParquetWriteFailed, "writer not initialized or transaction is nil")
	}

	if err := w.tx.Commit(); err != nil {
		_ = w.tx.Rollback()
		w.tx = nil

		return "", errors.Wrap(errors.ErrCodeParquetWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	// COPY takes no bind parameters for the target path
	query := fmt.Sprintf(`COPY (SELECT * FROM stock_data ORDER BY date) TO '%s' (FORMAT PARQUET)`, quoteLiteral(w.outputPath))
	if _, err := w.db.Exec(query); err != nil {
		return "", errors.Wrapf(errors.ErrCodeParquetWriteFailed, err, "failed to export %s", w.outputPath)
	}

	return w.outputPath, nil
}

// Close rolls back an unfinished transaction and closes the database.
func (w *DuckDBWriter) Close() error {
	var err error

	if w.tx != nil {
		err = multierr.Append(err, w.tx.Rollback())
		w.tx = nil
	}

	if w.db != nil {
		err = multierr.Append(err, w.db.Close())
		w.db = nil
	}

	return err
}

func (w *DuckDBWriter) GetOutputPath() string {
	return w.outputPath
}

func nullable(v optional.Option[float64]) sql.NullFloat64 {
	if v.IsNone() {
		return sql.NullFloat64{}
	}

	return sql.NullFloat64{Float64: v.Unwrap(), Valid: true}
}

func quoteLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
