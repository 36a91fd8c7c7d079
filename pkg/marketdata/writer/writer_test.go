package writer

import (
	"errors"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/mocks"
)

// recordingWriter is a MarketDataWriter that keeps rows in memory.
type recordingWriter struct {
	rows        []Row
	writeErr    error
	closeErr    error
	closed      bool
	initialized bool
}

func (r *recordingWriter) Initialize() error { r.initialized = true; return nil }

func (r *recordingWriter) Write(row Row) error {
	if r.writeErr != nil {
		return r.writeErr
	}

	r.rows = append(r.rows, row)

	return nil
}

func (r *recordingWriter) Finalize() (string, error) { return "memory", nil }
func (r *recordingWriter) Close() error              { r.closed = true; return r.closeErr }
func (r *recordingWriter) GetOutputPath() string     { return "memory" }

type WriterTestSuite struct {
	suite.Suite
}

func TestWriterSuite(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

func (suite *WriterTestSuite) TestRowsWithoutIndicators() {
	series := mocks.NewDataGenerator(7).Series("AAPL", 3)

	rows := Rows(series)
	suite.Require().Len(rows, 3)

	for i, row := range rows {
		suite.Equal(series.Records[i], row.MarketData)
		suite.True(row.SMA.IsNone())
		suite.True(row.RSI.IsNone())
	}
}

func (suite *WriterTestSuite) TestRowsWithIndicators() {
	series := mocks.NewDataGenerator(7).Series("AAPL", 2)
	series.SMA = []optional.Option[float64]{optional.None[float64](), optional.Some(1.5)}
	series.RSI = []optional.Option[float64]{optional.Some(40.0), optional.None[float64]()}

	rows := Rows(series)
	suite.Equal(optional.Some(1.5), rows[1].SMA)
	suite.Equal(optional.Some(40.0), rows[0].RSI)
	suite.True(rows[1].RSI.IsNone())
}

func (suite *WriterTestSuite) TestWriteSeries() {
	w := &recordingWriter{}

	path, err := WriteSeries(w, mocks.NewDataGenerator(1).Series("AAPL", 4))
	suite.NoError(err)
	suite.Equal("memory", path)
	suite.Len(w.rows, 4)
	suite.True(w.initialized)
	suite.True(w.closed)
}

func (suite *WriterTestSuite) TestWriteSeriesErrors() {
	w := &recordingWriter{writeErr: errors.New("disk full"), closeErr: errors.New("close failed")}

	_, err := WriteSeries(w, mocks.NewDataGenerator(1).Series("AAPL", 1))
	suite.ErrorContains(err, "disk full")
	suite.ErrorContains(err, "close failed")
	suite.True(w.closed)

	_, err = WriteSeries(&recordingWriter{}, types.NewTimeSeries("AAPL", nil))
	suite.NoError(err)
}
