package domain

import "fmt"

// Error codes used across the review engine
const (
	ErrConfigInvalid          = "CONFIG_INVALID"
	ErrValidation             = "VALIDATION_ERROR"
	ErrNotConfigured          = "NOT_CONFIGURED"
	ErrProviderUnavailable    = "PROVIDER_UNAVAILABLE"
	ErrTimeout                = "TIMEOUT"
	ErrAuth                   = "AUTH_ERROR"
	ErrRateLimited            = "RATE_LIMITED"
	ErrFileUnreadable         = "FILE_UNREADABLE"
	ErrTargetNotFound         = "TARGET_NOT_FOUND"
	ErrCompletionUnavailable  = "COMPLETION_UNAVAILABLE"
	ErrUnsupportedOutput      = "UNSUPPORTED_OUTPUT"
)

// DomainError represents an error with a stable code for programmatic handling
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface
func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e DomainError) Unwrap() error {
	return e.Cause
}

// NewDomainError creates a DomainError with an arbitrary code
func NewDomainError(code, message string, cause error) error {
	return DomainError{Code: code, Message: message, Cause: cause}
}

// ErrorCode extracts the domain error code from err, or "" if err is not
// a DomainError.
func ErrorCode(err error) string {
	if de, ok := err.(DomainError); ok {
		return de.Code
	}
	return ""
}

// NewConfigInvalidError signals bad or missing provider settings
func NewConfigInvalidError(message string, cause error) error {
	return DomainError{Code: ErrConfigInvalid, Message: message, Cause: cause}
}

// NewNotConfiguredError signals an operation on a provider without configuration
func NewNotConfiguredError(providerID string) error {
	return DomainError{Code: ErrNotConfigured, Message: fmt.Sprintf("provider %q is not configured", providerID)}
}

// NewProviderUnavailableError signals a provider that could not be reached
func NewProviderUnavailableError(message string, cause error) error {
	return DomainError{Code: ErrProviderUnavailable, Message: message, Cause: cause}
}

// NewTimeoutError signals an expired analysis deadline
func NewTimeoutError(message string, cause error) error {
	return DomainError{Code: ErrTimeout, Message: message, Cause: cause}
}

// NewAuthError signals rejected credentials; never retried
func NewAuthError(message string, cause error) error {
	return DomainError{Code: ErrAuth, Message: message, Cause: cause}
}

// NewRateLimitedError signals vendor-side throttling
func NewRateLimitedError(message string, cause error) error {
	return DomainError{Code: ErrRateLimited, Message: message, Cause: cause}
}

// NewFileUnreadableError signals one unreadable file; a directory run continues
func NewFileUnreadableError(path string, cause error) error {
	return DomainError{Code: ErrFileUnreadable, Message: fmt.Sprintf("cannot read %s", path), Cause: cause}
}

// NewTargetNotFoundError is fatal: the review target does not exist
func NewTargetNotFoundError(path string, cause error) error {
	return DomainError{Code: ErrTargetNotFound, Message: fmt.Sprintf("target path %s not found", path), Cause: cause}
}

// NewCompletionUnavailableError is fatal: no completion capability was injected
func NewCompletionUnavailableError() error {
	return DomainError{Code: ErrCompletionUnavailable, Message: "completion capability is not available"}
}

// NewUnsupportedOutputError rejects an unknown output format
func NewUnsupportedOutputError(format string) error {
	return DomainError{Code: ErrUnsupportedOutput, Message: fmt.Sprintf("unsupported output format: %s", format)}
}

// FieldError describes one invalid configuration field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates field-level configuration failures
type ValidationError struct {
	ProviderID string
	Fields     []FieldError
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("[%s] invalid config for %s: %s: %s", ErrValidation, e.ProviderID, e.Fields[0].Field, e.Fields[0].Message)
	}
	return fmt.Sprintf("[%s] invalid config for %s: %d invalid fields", ErrValidation, e.ProviderID, len(e.Fields))
}
