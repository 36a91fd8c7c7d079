package errors

// ErrorCode identifies the kind of failure carried by an *Error.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Request and configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidDate          ErrorCode = 102
	ErrCodeInvalidDateRange     ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeInvalidPeriod        ErrorCode = 105
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidTimespan      ErrorCode = 107
	ErrCodeInvalidProvider      ErrorCode = 108
	ErrCodeInvalidVersion       ErrorCode = 109

	// Lookup errors (200-299)
	ErrCodeSymbolNotFound ErrorCode = 200
	ErrCodeNoDataFound    ErrorCode = 201

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Market data errors (400-499)
	ErrCodeMarketDataFetchFailed ErrorCode = 400
	ErrCodeMarketDataParseFailed ErrorCode = 401
	ErrCodeTickerInfoFailed      ErrorCode = 402

	// Output errors (500-599)
	ErrCodeOutputDirFailed    ErrorCode = 500
	ErrCodeCSVWriteFailed     ErrorCode = 501
	ErrCodeCSVReadFailed      ErrorCode = 502
	ErrCodeParquetWriteFailed ErrorCode = 503
	ErrCodeChartRenderFailed  ErrorCode = 504
	ErrCodeParquetReadFailed  ErrorCode = 505
	ErrCodeChartAssetMissing  ErrorCode = 506

	// Run errors (600-699)
	ErrCodeRunCancelled ErrorCode = 600
)
