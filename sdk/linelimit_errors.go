package sdk

import "fmt"

// LineLimitError represents an input rejected before line limiting.
// Errors from the engine itself are *linelimit.Error values.
type LineLimitError struct {
	Code    string
	Message string
	Cause   error
}

func (e *LineLimitError) Error() string {
	return fmt.Sprintf("line limit error [%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the rejected field, when there is one.
func (e *LineLimitError) Unwrap() error {
	return e.Cause
}

// Is matches any *LineLimitError with the same code.
func (e *LineLimitError) Is(target error) bool {
	t, ok := target.(*LineLimitError)
	return ok && t.Code == e.Code
}

// Error codes for rejected inputs.
const (
	ErrCodeInputTooLarge  = "INPUT_TOO_LARGE"
	ErrCodeInvalidOptions = "INVALID_OPTIONS"
)

// Common line limit errors.
var (
	// ErrInputTooLarge indicates the input exceeds MaxBytes limit.
	ErrInputTooLarge = &LineLimitError{
		Code:    ErrCodeInputTooLarge,
		Message: "input exceeds maximum size limit",
	}

	// ErrInvalidOptions indicates invalid options were provided.
	ErrInvalidOptions = &LineLimitError{
		Code:    ErrCodeInvalidOptions,
		Message: "invalid line limit options",
	}
)

// NewInputTooLargeError creates an error for inputs exceeding size limits.
// Does not include actual size to prevent information leakage.
func NewInputTooLargeError() *LineLimitError {
	return &LineLimitError{
		Code:    ErrCodeInputTooLarge,
		Message: "input exceeds maximum size limit",
	}
}

// NewInvalidOptionsError creates an error for invalid option values.
func NewInvalidOptionsError(reason string) *LineLimitError {
	return &LineLimitError{
		Code:    ErrCodeInvalidOptions,
		Message: fmt.Sprintf("invalid options: %s", reason),
	}
}
