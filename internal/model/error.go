package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeMissingCredential = "MISSING_CREDENTIAL"
	ErrCodeInvalidCredential = "INVALID_CREDENTIAL"
	ErrCodeQueueEmpty        = "QUEUE_EMPTY"
	ErrCodeInvalidFormat     = "INVALID_FORMAT"
	ErrCodeIOFailure         = "IO_FAILURE"
	ErrCodeUnknownButton     = "UNKNOWN_BUTTON"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// Domain errors for business logic.
// Wrap them with fmt.Errorf("%w: ...: %w", ErrX, cause) so callers can match
// the taxonomy with errors.Is while keeping the underlying cause.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrMissingCredential = NewDomainError(ErrCodeMissingCredential, "access token is required")
	ErrInvalidCredential = NewDomainError(ErrCodeInvalidCredential, "invalid access token")
	ErrQueueEmpty        = NewDomainError(ErrCodeQueueEmpty, "no promo codes available")
	ErrInvalidFormat     = NewDomainError(ErrCodeInvalidFormat, "stored data has an invalid format")
	ErrIOFailure         = NewDomainError(ErrCodeIOFailure, "storage I/O failure")
	ErrUnknownButton     = NewDomainError(ErrCodeUnknownButton, "unknown button")
)
