package pipeline

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stock-tracker/tracker/internal/types"
	"github.com/stock-tracker/tracker/pkg/errors"
)

// RunRequest is the raw input of one run, as typed into the form or passed as flags.
type RunRequest struct {
	// Symbols is a comma separated list, e.g. "AAPL, msft".
	Symbols      string `validate:"required"`
	StartDate    string `validate:"required"`
	EndDate      string `validate:"required"`
	OutputFolder string `validate:"required"`
}

// parsedRequest is a validated RunRequest.
type parsedRequest struct {
	Symbols      []string
	StartDate    time.Time
	EndDate      time.Time
	OutputFolder string
}

// ParseSymbols splits input on commas, trims and upper-cases each entry and drops empty ones.
func ParseSymbols(input string) []string {
	parts := strings.Split(input, ",")
	symbols := make([]string, 0, len(parts))

	for _, part := range parts {
		symbol := strings.ToUpper(strings.TrimSpace(part))
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	return symbols
}

// ParseDate parses a YYYY-MM-DD date at midnight UTC.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(types.DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errors.Wrapf(errors.ErrCodeInvalidDate, err, "invalid date %q, expected YYYY-MM-DD", value)
	}

	return t, nil
}

// Validate checks the request without touching the network or the file system.
func (r RunRequest) Validate() error {
	_, err := r.parse()

	return err
}

func (r RunRequest) parse() (parsedRequest, error) {
	if err := validator.New().Struct(r); err != nil {
		return parsedRequest{}, errors.Wrap(errors.ErrCodeMissingParameter, "symbols, start date, end date and output folder are required", err)
	}

	symbols := ParseSymbols(r.Symbols)
	if len(symbols) == 0 {
		return parsedRequest{}, errors.Newf(errors.ErrCodeMissingParameter, "no stock symbols in %q", r.Symbols)
	}

	start, err := ParseDate(r.StartDate)
	if err != nil {
		return parsedRequest{}, err
	}

	end, err := ParseDate(r.EndDate)
	if err != nil {
		return parsedRequest{}, err
	}

	if end.Before(start) {
		return parsedRequest{}, errors.Newf(errors.ErrCodeInvalidDateRange, "end date %s is before start date %s",
			end.Format(types.DateLayout), start.Format(types.DateLayout))
	}

	return parsedRequest{
		Symbols:      symbols,
		StartDate:    start,
		EndDate:      end,
		OutputFolder: strings.TrimSpace(r.OutputFolder),
	}, nil
}
