// Package chart renders a symbol's close, SMA and RSI as an interactive HTML page.
//
// The page has two stacked grids sharing the trading dates: close and SMA on the
// upper band, RSI on the lower band with a fixed 0-100 scale. The echarts library
// is inlined so the page opens without network access.
package chart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/moznion/go-optional"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// Renderer writes the chart of a series.
type Renderer interface {
	Render(w io.Writer, series types.TimeSeries) error
}

// Options controls the labels and size of the rendered page.
type Options struct {
	Width     string
	Height    string
	SMALabel  string
	RSILabel  string
	PriceAxis string
	// Script is the echarts library inlined into every page.
	Script []byte
}

// DefaultOptions labels the indicators with their default periods and inlines the embedded echarts.
func DefaultOptions() Options {
	return Options{
		Width:     "1200px",
		Height:    "800px",
		SMALabel:  "SMA (20)",
		RSILabel:  "RSI (14)",
		PriceAxis: "Price (USD)",
		Script:    EmbeddedScript(),
	}
}

// WithPeriods labels the indicators with the given periods.
func (o Options) WithPeriods(smaPeriod, rsiPeriod int) Options {
	o.SMALabel = fmt.Sprintf("SMA (%d)", smaPeriod)
	o.RSILabel = fmt.Sprintf("RSI (%d)", rsiPeriod)

	return o
}

// WithScript inlines script instead of the embedded echarts.
func (o Options) WithScript(script []byte) Options {
	o.Script = script

	return o
}

// EChartsRenderer renders with go-echarts.
type EChartsRenderer struct {
	options Options
}

func NewRenderer(options Options) *EChartsRenderer {
	return &EChartsRenderer{options: options}
}

// missingValue is how echarts marks a gap in a line series.
const missingValue = "-"

func (r *EChartsRenderer) Render(w io.Writer, series types.TimeSeries) error {
	if len(r.options.Script) == 0 {
		return errors.Newf(errors.ErrCodeChartAssetMissing,
			"echarts library is not embedded, run go generate ./internal/chart before building (%s)", series.Symbol)
	}

	legends := r.legends()

	var page bytes.Buffer
	if err := r.build(series, legends[0]).Render(&page); err != nil {
		return errors.Wrapf(errors.ErrCodeChartRenderFailed, err, "failed to render chart for %s", series.Symbol)
	}

	content, err := withGridLegends(page.Bytes(), legends)
	if err != nil {
		return err
	}

	if _, err := w.Write(inlineScript(content, r.options.Script)); err != nil {
		return errors.Wrapf(errors.ErrCodeChartRenderFailed, err, "failed to write chart for %s", series.Symbol)
	}

	return nil
}

// inlineScript places script at the end of the page head.
func inlineScript(page, script []byte) []byte {
	script = bytes.ReplaceAll(script, []byte("</script"), []byte(`<\/script`))

	var tag bytes.Buffer
	tag.WriteString(`<script type="text/javascript">`)
	tag.Write(script)
	tag.WriteString("</script>\n</head>")

	return bytes.Replace(page, []byte("</head>"), tag.Bytes(), 1)
}

func (r *EChartsRenderer) build(series types.TimeSeries, legend opts.Legend) *charts.Line {
	title := fmt.Sprintf("%s Stock Price", series.Symbol)
	dates := series.Dates()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     r.options.Width,
			Height:    r.options.Height,
			ChartID:   ChartID(series.Symbol),
		}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithLegendOpts(legend),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithGridOpts(
			opts.Grid{Left: "8%", Right: "4%", Top: "10%", Height: "56%"},
			opts.Grid{Left: "8%", Right: "4%", Top: "74%", Height: "18%"},
		),
		charts.WithXAxisOpts(opts.XAxis{Name: "Date", Type: "category", GridIndex: 0}),
		charts.WithYAxisOpts(opts.YAxis{Name: r.options.PriceAxis, Type: "value", GridIndex: 0}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside", XAxisIndex: []int{0, 1}}),
	)

	line.ExtendXAxis(opts.XAxis{Type: "category", GridIndex: 1, Data: dates})
	line.ExtendYAxis(opts.YAxis{Name: "RSI", Type: "value", GridIndex: 1, Min: 0, Max: 100})

	line.SetXAxis(dates).
		AddSeries("Close", closeData(series)).
		AddSeries(r.options.SMALabel, optionalData(series.SMA, series.Len())).
		AddSeries(r.options.RSILabel, optionalData(series.RSI, series.Len()),
			charts.WithLineChartOpts(opts.LineChart{XAxisIndex: 1, YAxisIndex: 1}))

	// Drops the hosted echarts.min.js reference; the library is inlined at render.
	line.JSAssets.Init()

	return line
}

// legends gives each grid its own legend, the price series on top and RSI on the lower band.
func (r *EChartsRenderer) legends() []opts.Legend {
	return []opts.Legend{
		{Show: true, Orient: "horizontal", Right: "2%", Top: "1%", Data: []string{"Close", r.options.SMALabel}},
		{Show: true, Orient: "horizontal", Right: "2%", Top: "70%", Data: []string{r.options.RSILabel}},
	}
}

// withGridLegends swaps the single legend go-echarts emits for the per-grid list.
func withGridLegends(page []byte, legends []opts.Legend) ([]byte, error) {
	single, err := encodeOption(legends[0])
	if err != nil {
		return nil, err
	}

	all, err := encodeOption(legends)
	if err != nil {
		return nil, err
	}

	from := append([]byte(`"legend":`), single...)
	if !bytes.Contains(page, from) {
		return nil, errors.New(errors.ErrCodeChartRenderFailed, "legend option not found in rendered chart")
	}

	return bytes.Replace(page, from, append([]byte(`"legend":`), all...), 1), nil
}

// encodeOption matches how go-echarts serialises the chart option.
func encodeOption(v interface{}) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, errors.Wrap(errors.ErrCodeChartRenderFailed, "failed to encode chart option", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// RenderFile renders series to path, replacing any existing file.
func RenderFile(r Renderer, path string, series types.TimeSeries) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeChartRenderFailed, err, "failed to create %s", path)
	}

	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(errors.ErrCodeChartRenderFailed, cerr, "failed to close %s", path)
		}
	}()

	if err := r.Render(file, series); err != nil {
		if errors.HasCode(err, errors.ErrCodeUnknown) {
			return errors.Wrapf(errors.ErrCodeChartRenderFailed, err, "failed to render %s", path)
		}

		return err
	}

	return nil
}

// ChartID derives a stable element id from symbol so repeated renders are byte-identical.
func ChartID(symbol string) string {
	var b strings.Builder

	b.WriteString("chart_")

	for _, c := range symbol {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			b.WriteRune(unicode.ToLower(c))
		} else {
			b.WriteRune('_')
		}
	}

	return b.String()
}

func closeData(series types.TimeSeries) []opts.LineData {
	data := make([]opts.LineData, series.Len())
	for i, record := range series.Records {
		data[i] = opts.LineData{Value: record.Close}
	}

	return data
}

func optionalData(column []optional.Option[float64], n int) []opts.LineData {
	data := make([]opts.LineData, n)
	for i := range data {
		data[i] = opts.LineData{Value: missingValue}

		if i < len(column) && column[i].IsSome() {
			data[i] = opts.LineData{Value: column[i].Unwrap()}
		}
	}

	return data
}
