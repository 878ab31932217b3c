package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidRepeatCount   ErrorCode = 102
	ErrCodeInvalidFrequency     ErrorCode = 103
	ErrCodeInvalidAllocation    ErrorCode = 104
	ErrCodeInvalidAmount        ErrorCode = 105
	ErrCodeInvalidQuantity      ErrorCode = 106
	ErrCodeInvalidRate          ErrorCode = 107
	ErrCodeInvalidBand          ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110
	ErrCodeUnsupportedRule      ErrorCode = 111

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound     ErrorCode = 200
	ErrCodeQueryFailed      ErrorCode = 201
	ErrCodeCacheReadFailed  ErrorCode = 202
	ErrCodeCacheWriteFailed ErrorCode = 203
	ErrCodeUnknownField     ErrorCode = 204

	// Portfolio errors (500-599)
	ErrCodeInsufficientCash     ErrorCode = 500
	ErrCodeInsufficientPosition ErrorCode = 501
	ErrCodeMarketDataMissing    ErrorCode = 502
	ErrCodeJournalFailed        ErrorCode = 503

	// Simulation errors (600-699)
	ErrCodeSimulationNoRules     ErrorCode = 600
	ErrCodeSimulationNoData      ErrorCode = 601
	ErrCodeSimulationCancelled   ErrorCode = 602
	ErrCodeSimulationRuleFailed  ErrorCode = 603
	ErrCodeSimulationWriteFailed ErrorCode = 604
	ErrCodeSimulationConfigError ErrorCode = 605

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 703

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
