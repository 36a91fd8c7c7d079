package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/stock-tracker/tracker/internal/chart"
	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/mocks"
	"github.com/stock-tracker/tracker/pkg/errors"
	"github.com/stock-tracker/tracker/pkg/marketdata/provider"
	"github.com/stock-tracker/tracker/pkg/marketdata/writer"
)

type PipelineTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	provider *mocks.MockProvider
	output   string
	info     *bytes.Buffer
}

func TestPipelineSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func (suite *PipelineTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.provider = mocks.NewMockProvider(suite.ctrl)
	suite.provider.EXPECT().Name().Return(provider.ProviderYahoo).AnyTimes()
	suite.output = filepath.Join(suite.T().TempDir(), "out")
	suite.info = &bytes.Buffer{}
}

func (suite *PipelineTestSuite) TearDownTest() {
	suite.ctrl.Finish()
}

func (suite *PipelineTestSuite) newPipeline(options Options) *Pipeline {
	options.InfoOutput = suite.info

	p, err := New(suite.provider, chart.NewRenderer(chart.DefaultOptions().WithScript([]byte("var echarts={};"))), nil, options)
	suite.Require().NoError(err)

	return p
}

func (suite *PipelineTestSuite) request(symbols string) RunRequest {
	return RunRequest{
		Symbols:      symbols,
		StartDate:    "2024-01-01",
		EndDate:      "2024-06-01",
		OutputFolder: suite.output,
	}
}

func (suite *PipelineTestSuite) expectSymbol(symbol, name, industry string, bars int) {
	series := mocks.NewDataGenerator(7).Series(symbol, bars)

	suite.provider.EXPECT().
		Fetch(gomock.Any(), symbol, gomock.Any(), gomock.Any(), provider.TimespanOneDay).
		Return(types.Found(series))
	suite.provider.EXPECT().
		Info(gomock.Any(), symbol).
		Return(types.Found(types.TickerInfo{Symbol: symbol, Name: name, Industry: industry}))
}

func (suite *PipelineTestSuite) expectUnknown(symbol string) {
	suite.provider.EXPECT().
		Fetch(gomock.Any(), symbol, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.NotFound[types.TimeSeries](fmt.Errorf("no data")))
	suite.provider.EXPECT().
		Info(gomock.Any(), symbol).
		Return(types.NotFound[types.TickerInfo](fmt.Errorf("unknown symbol")))
}

func (suite *PipelineTestSuite) exists(symbol, ext string) bool {
	_, err := os.Stat(ArtifactPath(suite.output, symbol, ext))

	return err == nil
}

func (suite *PipelineTestSuite) TestValidAndInvalidSymbols() {
	suite.expectSymbol("AAPL", "Apple Inc.", "Consumer Electronics", 60)
	suite.expectUnknown("BOGUSXYZ")

	report, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), suite.request("aapl, BOGUSXYZ"))
	suite.Require().NoError(err)

	suite.Equal("Stock: Apple Inc. (AAPL)\nIndustry: Consumer Electronics\n"+
		"Invalid or delisted stock symbol: BOGUSXYZ\n\n"+
		"\n", suite.info.String())

	suite.True(suite.exists("AAPL", ExtCSV))
	suite.True(suite.exists("AAPL", ExtHTML))
	suite.False(suite.exists("AAPL", ExtParquet))
	suite.False(suite.exists("BOGUSXYZ", ExtCSV))
	suite.False(suite.exists("BOGUSXYZ", ExtHTML))

	suite.Equal(MessageDone, report.Message)
	suite.NotEmpty(report.RunID)
	suite.Require().Len(report.Written(), 1)
	suite.Equal("AAPL", report.Written()[0].Symbol)
	suite.Equal(60, report.Written()[0].Records)
	suite.Require().Len(report.Skipped(), 1)
	suite.Equal("BOGUSXYZ", report.Skipped()[0].Symbol)
	suite.Empty(report.Failed())
}

func (suite *PipelineTestSuite) TestCSVCarriesIndicators() {
	suite.expectSymbol("MSFT", "Microsoft Corporation", "", 40)

	report, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), suite.request("MSFT"))
	suite.Require().NoError(err)
	suite.Equal("Stock: Microsoft Corporation (MSFT)\nIndustry: Not available\n\n", suite.info.String())

	read, err := writer.ReadCSV(ArtifactPath(suite.output, "MSFT", ExtCSV), "MSFT")
	suite.Require().NoError(err)
	suite.Require().Equal(40, read.Len())

	suite.True(read.SMA[18].IsNone())
	suite.True(read.SMA[19].IsSome())
	suite.True(read.RSI[13].IsNone())
	suite.True(read.RSI[14].IsSome())

	latest := report.Symbols[0].Latest
	suite.Require().Len(latest, 2)
	suite.Equal(types.IndicatorTypeMA, latest[0].Indicator)
	suite.InDelta(read.SMA[39].Unwrap(), latest[0].Value, 1e-6)
	suite.Equal(types.IndicatorTypeRSI, latest[1].Indicator)
	suite.InDelta(read.RSI[39].Unwrap(), latest[1].Value, 1e-6)
}

func (suite *PipelineTestSuite) TestEmptyRangeWritesHeaderOnly() {
	suite.provider.EXPECT().
		Fetch(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.Found(types.NewTimeSeries("AAPL", nil)))
	suite.provider.EXPECT().
		Info(gomock.Any(), "AAPL").
		Return(types.Found(types.TickerInfo{Symbol: "AAPL", Name: "Apple Inc.", Industry: "Consumer Electronics"}))

	req := suite.request("AAPL")
	req.EndDate = req.StartDate

	report, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), req)
	suite.Require().NoError(err)

	content, err := os.ReadFile(ArtifactPath(suite.output, "AAPL", ExtCSV))
	suite.Require().NoError(err)
	suite.Equal("Date,Open,High,Low,Close,Volume,SMA,RSI", strings.TrimSpace(string(content)))
	suite.True(suite.exists("AAPL", ExtHTML))
	suite.Equal(0, report.Symbols[0].Records)
}

func (suite *PipelineTestSuite) TestNotFoundSeriesStillWritten() {
	suite.provider.EXPECT().
		Fetch(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.NotFound[types.TimeSeries](fmt.Errorf("no bars")))
	suite.provider.EXPECT().
		Info(gomock.Any(), "AAPL").
		Return(types.Found(types.TickerInfo{Symbol: "AAPL", Name: "Apple Inc."}))

	report, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), suite.request("AAPL"))
	suite.Require().NoError(err)
	suite.Equal(types.LookupNotFound, report.Symbols[0].Fetch)
	suite.True(suite.exists("AAPL", ExtCSV))
	suite.True(suite.exists("AAPL", ExtHTML))
}

func (suite *PipelineTestSuite) TestRerunProducesIdenticalFiles() {
	suite.expectSymbol("AAPL", "Apple Inc.", "Consumer Electronics", 30)
	suite.expectSymbol("AAPL", "Apple Inc.", "Consumer Electronics", 30)

	p := suite.newPipeline(DefaultOptions())

	_, err := p.Run(context.Background(), suite.request("AAPL"))
	suite.Require().NoError(err)

	firstCSV, err := os.ReadFile(ArtifactPath(suite.output, "AAPL", ExtCSV))
	suite.Require().NoError(err)
	firstHTML, err := os.ReadFile(ArtifactPath(suite.output, "AAPL", ExtHTML))
	suite.Require().NoError(err)

	_, err = p.Run(context.Background(), suite.request("AAPL"))
	suite.Require().NoError(err)

	secondCSV, err := os.ReadFile(ArtifactPath(suite.output, "AAPL", ExtCSV))
	suite.Require().NoError(err)
	secondHTML, err := os.ReadFile(ArtifactPath(suite.output, "AAPL", ExtHTML))
	suite.Require().NoError(err)

	suite.Equal(firstCSV, secondCSV)
	suite.Equal(firstHTML, secondHTML)
}

func (suite *PipelineTestSuite) TestInfoErrorStillWritesFiles() {
	suite.provider.EXPECT().
		Fetch(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.Found(mocks.NewDataGenerator(1).Series("AAPL", 5)))
	suite.provider.EXPECT().
		Info(gomock.Any(), "AAPL").
		Return(types.Failed[types.TickerInfo](fmt.Errorf("rate limited")))

	report, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), suite.request("AAPL"))
	suite.Require().NoError(err)
	suite.Equal("Stock information unavailable for AAPL: rate limited\n\n\n", suite.info.String())
	suite.True(suite.exists("AAPL", ExtCSV))
	suite.Len(report.Written(), 1)
}

func (suite *PipelineTestSuite) TestNamelessInfoIsInvalid() {
	suite.provider.EXPECT().
		Fetch(gomock.Any(), "XYZ", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.Found(mocks.NewDataGenerator(1).Series("XYZ", 5)))
	suite.provider.EXPECT().
		Info(gomock.Any(), "XYZ").
		Return(types.Found(types.TickerInfo{Symbol: "XYZ"}))

	report, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), suite.request("XYZ"))
	suite.Require().NoError(err)
	suite.Equal("Invalid or delisted stock symbol: XYZ\n\n\n", suite.info.String())
	suite.False(suite.exists("XYZ", ExtCSV))
	suite.Len(report.Skipped(), 1)
}

func (suite *PipelineTestSuite) TestFetchErrorContinues() {
	suite.provider.EXPECT().
		Fetch(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.Failed[types.TimeSeries](errors.New(errors.ErrCodeMarketDataFetchFailed, "timeout")))
	suite.provider.EXPECT().
		Info(gomock.Any(), "AAPL").
		Return(types.Found(types.TickerInfo{Symbol: "AAPL", Name: "Apple Inc."}))
	suite.expectSymbol("MSFT", "Microsoft Corporation", "Software", 10)

	report, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), suite.request("AAPL,MSFT"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.Contains(err.Error(), "AAPL")

	suite.False(suite.exists("AAPL", ExtCSV))
	suite.True(suite.exists("MSFT", ExtCSV))
	suite.True(suite.exists("MSFT", ExtHTML))
	suite.Equal(MessageDone, report.Message)
	suite.Require().Len(report.Failed(), 1)
	suite.Equal("AAPL", report.Failed()[0].Symbol)
}

func (suite *PipelineTestSuite) TestFailFastStopsAtFirstError() {
	suite.provider.EXPECT().
		Fetch(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(types.Failed[types.TimeSeries](errors.New(errors.ErrCodeMarketDataFetchFailed, "timeout")))

	options := DefaultOptions()
	options.FailFast = true

	report, err := suite.newPipeline(options).Run(context.Background(), suite.request("AAPL,MSFT"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeMarketDataFetchFailed))
	suite.False(errors.HasCode(err, errors.ErrCodeRunCancelled))
	suite.Empty(report.Message)
	suite.Empty(suite.info.String())
	suite.False(suite.exists("MSFT", ExtCSV))
}

func (suite *PipelineTestSuite) TestFailFastDuringRenderNeverReportsDone() {
	suite.expectSymbol("AAPL", "Apple Inc.", "Consumer Electronics", 10)
	suite.expectSymbol("MSFT", "Microsoft Corporation", "Software", 10)

	renderer := mocks.NewMockRenderer(suite.ctrl)
	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(fmt.Errorf("boom")).Times(1)

	var statuses []string

	options := DefaultOptions()
	options.InfoOutput = suite.info
	options.FailFast = true
	options.OnStatus = func(progress, message string) {
		statuses = append(statuses, progress+"|"+message)
	}

	p, err := New(suite.provider, renderer, nil, options)
	suite.Require().NoError(err)

	report, err := p.Run(context.Background(), suite.request("AAPL,MSFT"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeChartRenderFailed))
	suite.False(errors.HasCode(err, errors.ErrCodeRunCancelled))
	suite.Empty(report.Message)
	suite.Equal([]string{StatusFetching + "|", StatusPlotting + "|", "|"}, statuses)
	suite.NotContains(statuses, "|"+MessageDone)
	suite.False(suite.exists("MSFT", ExtHTML))
}

func (suite *PipelineTestSuite) TestRenderErrorIsRecorded() {
	suite.expectSymbol("AAPL", "Apple Inc.", "Consumer Electronics", 10)

	renderer := mocks.NewMockRenderer(suite.ctrl)
	renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(fmt.Errorf("boom"))

	options := DefaultOptions()
	options.InfoOutput = suite.info

	p, err := New(suite.provider, renderer, nil, options)
	suite.Require().NoError(err)

	report, err := p.Run(context.Background(), suite.request("AAPL"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeChartRenderFailed))
	suite.True(suite.exists("AAPL", ExtCSV))
	suite.Empty(report.Written())
	suite.Len(report.Failed(), 1)
}

func (suite *PipelineTestSuite) TestParquetExport() {
	suite.expectSymbol("AAPL", "Apple Inc.", "Consumer Electronics", 25)

	options := DefaultOptions()
	options.Parquet = true

	report, err := suite.newPipeline(options).Run(context.Background(), suite.request("AAPL"))
	suite.Require().NoError(err)
	suite.True(suite.exists("AAPL", ExtParquet))
	suite.Equal(ArtifactPath(suite.output, "AAPL", ExtParquet), report.Symbols[0].ParquetPath)

	read, err := writer.ReadParquet(report.Symbols[0].ParquetPath, "AAPL")
	suite.Require().NoError(err)
	suite.Equal(25, read.Len())
}

func (suite *PipelineTestSuite) TestCreatesNestedOutputFolder() {
	suite.expectSymbol("AAPL", "Apple Inc.", "", 3)

	req := suite.request("AAPL")
	req.OutputFolder = filepath.Join(suite.output, "a", "b")

	_, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), req)
	suite.Require().NoError(err)

	_, err = os.Stat(ArtifactPath(req.OutputFolder, "AAPL", ExtCSV))
	suite.NoError(err)
}

func (suite *PipelineTestSuite) TestOutputFolderIsAFile() {
	file := filepath.Join(suite.T().TempDir(), "file")
	suite.Require().NoError(os.WriteFile(file, []byte("x"), 0o644))

	req := suite.request("AAPL")
	req.OutputFolder = file

	_, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), req)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeOutputDirFailed))
}

func (suite *PipelineTestSuite) TestInvalidRequest() {
	req := suite.request("AAPL")
	req.EndDate = "2023-12-31"

	_, err := suite.newPipeline(DefaultOptions()).Run(context.Background(), req)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidDateRange))

	_, statErr := os.Stat(suite.output)
	suite.True(os.IsNotExist(statErr))
}

func (suite *PipelineTestSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := suite.newPipeline(DefaultOptions()).Run(ctx, suite.request("AAPL"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeRunCancelled))
	suite.ErrorIs(err, context.Canceled)
}

func (suite *PipelineTestSuite) TestCancelBetweenSymbols() {
	ctx, cancel := context.WithCancel(context.Background())

	suite.provider.EXPECT().
		Fetch(gomock.Any(), "AAPL", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, time.Time, time.Time, provider.Timespan) types.LookupResult[types.TimeSeries] {
			cancel()

			return types.Found(mocks.NewDataGenerator(1).Series("AAPL", 3))
		})

	_, err := suite.newPipeline(DefaultOptions()).Run(ctx, suite.request("AAPL,MSFT"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeRunCancelled))
}

func (suite *PipelineTestSuite) TestStatusAndProgress() {
	suite.expectSymbol("AAPL", "Apple Inc.", "", 3)
	suite.expectUnknown("BOGUS")

	var statuses []string

	var last, total float64

	options := DefaultOptions()
	options.OnStatus = func(progress, message string) {
		statuses = append(statuses, progress+"|"+message)
	}
	options.OnProgress = func(current, t float64, _ string) {
		suite.LessOrEqual(current, t)
		suite.GreaterOrEqual(current, last)
		last, total = current, t
	}

	_, err := suite.newPipeline(options).Run(context.Background(), suite.request("AAPL,BOGUS"))
	suite.Require().NoError(err)

	suite.Equal([]string{
		StatusFetching + "|",
		StatusPlotting + "|",
		"|" + MessageDone,
	}, statuses)
	suite.Equal(float64(2*stepsPerSymbol), total)
	suite.Equal(total, last)
}

func (suite *PipelineTestSuite) TestNewRejectsBadOptions() {
	options := DefaultOptions()
	options.SMAPeriod = 0

	_, err := New(suite.provider, chart.NewRenderer(chart.DefaultOptions().WithScript([]byte("var echarts={};"))), nil, options)
	suite.Error(err)

	options = DefaultOptions()
	options.Timespan = "5m"

	_, err = New(suite.provider, chart.NewRenderer(chart.DefaultOptions().WithScript([]byte("var echarts={};"))), nil, options)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidTimespan))
}
