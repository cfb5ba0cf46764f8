package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation      = "VALIDATION_ERROR"
	ErrCodeChunking        = "CHUNKING_ERROR"
	ErrCodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	ErrCodeProvider        = "PROVIDER_ERROR"
	ErrCodeDeserialization = "DESERIALIZATION_ERROR"
	ErrCodeCacheRead       = "CACHE_READ_ERROR"
	ErrCodeCacheWrite      = "CACHE_WRITE_ERROR"
	ErrCodeDimension       = "DIMENSION_MISMATCH"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeInternalError   = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyDocument   = NewDomainError(ErrCodeValidation, "document text is empty")
	ErrEmptyQuestions  = NewDomainError(ErrCodeValidation, "at least one question is required")
	ErrEmptyDocumentID = NewDomainError(ErrCodeValidation, "document identity is required")
)

// Pipeline errors
var (
	ErrPayloadTooLarge   = NewDomainError(ErrCodePayloadTooLarge, "embedding request exceeds provider payload ceiling")
	ErrDimensionMismatch = NewDomainError(ErrCodeDimension, "vectors have different dimensionality")
)
