package writer

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/moznion/go-optional"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// csvRecord is the on-disk layout: Date,Open,High,Low,Close,Volume,SMA,RSI.
type csvRecord struct {
	Date   csvDate          `csv:"Date"`
	Open   csvFloat         `csv:"Open"`
	High   csvFloat         `csv:"High"`
	Low    csvFloat         `csv:"Low"`
	Close  csvFloat         `csv:"Close"`
	Volume csvFloat         `csv:"Volume"`
	SMA    csvOptionalFloat `csv:"SMA"`
	RSI    csvOptionalFloat `csv:"RSI"`
}

type csvDate time.Time

func (d csvDate) MarshalCSV() (string, error) {
	return time.Time(d).Format(types.DateLayout), nil
}

func (d *csvDate) UnmarshalCSV(value string) error {
	t, err := time.Parse(types.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return err
	}

	*d = csvDate(t)

	return nil
}

// csvFloat is written in the shortest form that parses back to the same value.
type csvFloat float64

func (f csvFloat) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(f), 'f', -1, 64), nil
}

func (f *csvFloat) UnmarshalCSV(value string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return err
	}

	*f = csvFloat(v)

	return nil
}

// csvOptionalFloat is an empty cell when None.
type csvOptionalFloat struct {
	optional.Option[float64]
}

func (f csvOptionalFloat) MarshalCSV() (string, error) {
	if f.IsNone() {
		return "", nil
	}

	return strconv.FormatFloat(f.Unwrap(), 'f', -1, 64), nil
}

func (f *csvOptionalFloat) UnmarshalCSV(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		f.Option = optional.None[float64]()

		return nil
	}

	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return err
	}

	f.Option = optional.Some(v)

	return nil
}

// CSVWriter buffers rows and writes them in one pass on Finalize.
// An existing file at the output path is replaced.
type CSVWriter struct {
	outputPath string
	records    []csvRecord
	file       *os.File
}

func NewCSVWriter(outputPath string) MarketDataWriter {
	return &CSVWriter{outputPath: outputPath}
}

func (w *CSVWriter) Initialize() error {
	file, err := os.Create(w.outputPath)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeCSVWriteFailed, err, "failed to create %s", w.outputPath)
	}

	w.file = file
	w.records = w.records[:0]

	return nil
}

func (w *CSVWriter) Write(row Row) error {
	if w.file == nil {
		return errors.New(errors.ErrCodeCSVWriteFailed, "writer not initialized")
	}

	w.records = append(w.records, csvRecord{
		Date:   csvDate(row.Time),
		Open:   csvFloat(row.Open),
		High:   csvFloat(row.High),
		Low:    csvFloat(row.Low),
		Close:  csvFloat(row.Close),
		Volume: csvFloat(row.Volume),
		SMA:    csvOptionalFloat{row.SMA},
		RSI:    csvOptionalFloat{row.RSI},
	})

	return nil
}

func (w *CSVWriter) Finalize() (string, error) {
	if w.file == nil {
		return "", errors.New(errors.ErrCodeCSVWriteFailed, "writer not initialized")
	}

	if err := gocsv.Marshal(&w.records, w.file); err != nil {
		return "", errors.Wrapf(errors.ErrCodeCSVWriteFailed, err, "failed to write %s", w.outputPath)
	}

	return w.outputPath, nil
}

func (w *CSVWriter) Close() error {
	if w.file == nil {
		return nil
	}

	err := w.file.Close()
	w.file = nil

	return err
}

func (w *CSVWriter) GetOutputPath() string {
	return w.outputPath
}

// ReadCSV loads a file written by CSVWriter back into a series for symbol.
func ReadCSV(path string, symbol string) (types.TimeSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.TimeSeries{}, errors.Wrapf(errors.ErrCodeCSVReadFailed, err, "failed to open %s", path)
	}
	defer file.Close()

	var records []csvRecord
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return types.TimeSeries{}, errors.Wrapf(errors.ErrCodeCSVReadFailed, err, "failed to parse %s", path)
	}

	bars := make([]types.MarketData, len(records))
	series := types.NewTimeSeries(symbol, bars)
	series.SMA = make([]optional.Option[float64], len(records))
	series.RSI = make([]optional.Option[float64], len(records))

	for i, r := range records {
		bars[i] = types.MarketData{
			Symbol: symbol,
			Time:   time.Time(r.Date),
			Open:   float64(r.Open),
			High:   float64(r.High),
			Low:    float64(r.Low),
			Close:  float64(r.Close),
			Volume: float64(r.Volume),
		}
		series.SMA[i] = r.SMA.Option
		series.RSI[i] = r.RSI.Option
	}

	return series, nil
}
