package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/stock-tracker/tracker/pkg/errors"
)

type RequestTestSuite struct {
	suite.Suite
}

func TestRequestSuite(t *testing.T) {
	suite.Run(t, new(RequestTestSuite))
}

func (suite *RequestTestSuite) TestParseSymbols() {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "single", input: "AAPL", expected: []string{"AAPL"}},
		{name: "trimmed and upper cased", input: " aapl , msft,GOOG ", expected: []string{"AAPL", "MSFT", "GOOG"}},
		{name: "empty entries dropped", input: "AAPL,,  ,MSFT,", expected: []string{"AAPL", "MSFT"}},
		{name: "duplicates kept", input: "AAPL,aapl", expected: []string{"AAPL", "AAPL"}},
		{name: "only separators", input: " , ,", expected: []string{}},
		{name: "empty", input: "", expected: []string{}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, ParseSymbols(tc.input))
		})
	}
}

func (suite *RequestTestSuite) TestParseDate() {
	date, err := ParseDate(" 2024-02-29 ")
	suite.Require().NoError(err)
	suite.Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), date)

	for _, bad := range []string{"2024/01/01", "01-02-2024", "2023-02-29", "yesterday", ""} {
		_, err := ParseDate(bad)
		suite.True(errors.HasCode(err, errors.ErrCodeInvalidDate), bad)
	}
}

func (suite *RequestTestSuite) TestParse() {
	parsed, err := RunRequest{
		Symbols:      "aapl,msft",
		StartDate:    "2024-01-01",
		EndDate:      "2024-01-31",
		OutputFolder: " ./out ",
	}.parse()
	suite.Require().NoError(err)

	suite.Equal([]string{"AAPL", "MSFT"}, parsed.Symbols)
	suite.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), parsed.StartDate)
	suite.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), parsed.EndDate)
	suite.Equal("./out", parsed.OutputFolder)
}

func (suite *RequestTestSuite) TestValidate() {
	valid := RunRequest{Symbols: "AAPL", StartDate: "2024-01-01", EndDate: "2024-01-01", OutputFolder: "out"}

	tests := []struct {
		name   string
		modify func(r *RunRequest)
		code   errors.ErrorCode
	}{
		{name: "missing symbols", modify: func(r *RunRequest) { r.Symbols = "" }, code: errors.ErrCodeMissingParameter},
		{name: "blank symbols", modify: func(r *RunRequest) { r.Symbols = " , " }, code: errors.ErrCodeMissingParameter},
		{name: "missing start", modify: func(r *RunRequest) { r.StartDate = "" }, code: errors.ErrCodeMissingParameter},
		{name: "missing output", modify: func(r *RunRequest) { r.OutputFolder = "" }, code: errors.ErrCodeMissingParameter},
		{name: "bad start", modify: func(r *RunRequest) { r.StartDate = "2024-13-01" }, code: errors.ErrCodeInvalidDate},
		{name: "bad end", modify: func(r *RunRequest) { r.EndDate = "tomorrow" }, code: errors.ErrCodeInvalidDate},
		{name: "end before start", modify: func(r *RunRequest) { r.EndDate = "2023-12-31" }, code: errors.ErrCodeInvalidDateRange},
	}

	suite.NoError(valid.Validate())

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			req := valid
			tc.modify(&req)

			err := req.Validate()
			suite.Require().Error(err)
			suite.Equal(tc.code, errors.GetCode(err))
		})
	}
}
