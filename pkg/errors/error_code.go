package errors

// ErrorCode identifies the kind of failure.
type ErrorCode int

const (
	ErrCodeUnknown ErrorCode = 1

	// Validation
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidLatency       ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeInvalidVersion       ErrorCode = 105
	ErrCodeInvalidBroker        ErrorCode = 106

	// Data
	ErrCodeNoTickData            ErrorCode = 200
	ErrCodeDataNotFound          ErrorCode = 201
	ErrCodeDataSourceUnavailable ErrorCode = 202
	ErrCodeQueryFailed           ErrorCode = 203
	ErrCodeTickParseFailed       ErrorCode = 204
	ErrCodeUnsupportedFormat     ErrorCode = 205

	// Indicator
	ErrCodeIndicatorNotReady ErrorCode = 300

	// Strategy
	ErrCodeStrategyNotRegistered ErrorCode = 400
	ErrCodeStrategyConfigError   ErrorCode = 401
	ErrCodeUnsupportedStrategy   ErrorCode = 402
	ErrCodeVersionMismatch       ErrorCode = 403

	// Position
	ErrCodePositionNotFound ErrorCode = 500
	ErrCodeInvalidFill      ErrorCode = 501
	ErrCodeLedgerWriteFailed ErrorCode = 502

	// Backtest
	ErrCodeBacktestStateNil       ErrorCode = 600
	ErrCodeBacktestInitFailed     ErrorCode = 601
	ErrCodeBacktestConfigError    ErrorCode = 602
	ErrCodeBacktestNotInitialized ErrorCode = 603
	ErrCodeBacktestNoStrategies   ErrorCode = 604
	ErrCodeBacktestWriteFailed    ErrorCode = 605
	ErrCodeCallbackFailed         ErrorCode = 606
)
