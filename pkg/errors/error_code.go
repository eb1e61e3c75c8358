package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown  ErrorCode = 1
	ErrCodeCanceled ErrorCode = 2

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidThreshold     ErrorCode = 112
	ErrCodeInvalidBar           ErrorCode = 120
	ErrCodeInvalidRange         ErrorCode = 121

	// Series errors (200-299)
	ErrCodeEmptySeries         ErrorCode = 200
	ErrCodeUnsupportedInterval ErrorCode = 201
	ErrCodeQueryFailed         ErrorCode = 202
	ErrCodeNoVolumeData        ErrorCode = 210

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 704
)

var codeNames = map[ErrorCode]string{
	ErrCodeUnknown:                "unknown",
	ErrCodeCanceled:               "canceled",
	ErrCodeInvalidParameter:       "invalid_parameter",
	ErrCodeInvalidConfiguration:   "invalid_configuration",
	ErrCodeInsufficientData:       "insufficient_data",
	ErrCodeInvalidPeriod:          "invalid_period",
	ErrCodeMissingParameter:       "missing_parameter",
	ErrCodeInvalidThreshold:       "invalid_threshold",
	ErrCodeInvalidBar:             "invalid_bar",
	ErrCodeInvalidRange:           "invalid_range",
	ErrCodeEmptySeries:            "empty_series",
	ErrCodeUnsupportedInterval:    "unsupported_interval",
	ErrCodeQueryFailed:            "query_failed",
	ErrCodeNoVolumeData:           "no_volume_data",
	ErrCodeIndicatorNotFound:      "indicator_not_found",
	ErrCodeIndicatorAlreadyExists: "indicator_already_exists",
	ErrCodeIndicatorCalculation:   "indicator_calculation",
	ErrCodeMarketDataFetchFailed:  "fetch_failed",
	ErrCodeMarketDataWriteFailed:  "write_failed",
	ErrCodeMarketDataParseFailed:  "parse_failed",
	ErrCodeInvalidProvider:        "invalid_provider",
}

// String returns the snake_case name used in JSON responses and logs.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}

	return "unknown"
}
