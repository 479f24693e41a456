package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidType          ErrorCode = 107
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeNoDataFound           ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Genome errors (900-949)
	ErrCodeInvalidGenome       ErrorCode = 900
	ErrCodeGenomeDecodeFailed  ErrorCode = 901
	ErrCodeNoCompatibleSubtree ErrorCode = 902

	// Evolution errors (950-999)
	ErrCodeEvaluationTimeout  ErrorCode = 950
	ErrCodeEvaluationFailed   ErrorCode = 951
	ErrCodeControllerState    ErrorCode = 952
	ErrCodeEmptyPopulation    ErrorCode = 953
	ErrCodeScoreCountMismatch ErrorCode = 954

	// Promotion / candidate store errors (1000-1049)
	ErrCodeCandidateNotFound    ErrorCode = 1000
	ErrCodeCandidateWriteFailed ErrorCode = 1001
	ErrCodeCandidateReadFailed  ErrorCode = 1002
	ErrCodeFormatVersion        ErrorCode = 1003

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800
)
