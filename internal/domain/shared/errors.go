package shared

// DomainError represents a domain-level error with optional structured details
// so callers can explain a failure without a second round-trip.
type DomainError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface
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

// WithDetail attaches a detail entry to the error and returns it for chaining.
// Never call this on the shared sentinel errors below; construct a fresh error
// when details are needed.
func (e *DomainError) WithDetail(key string, value any) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Error codes used across the core engine
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeInvalidTransition   = "INVALID_TRANSITION"
	ErrCodeInsufficientStock   = "INSUFFICIENT_STOCK"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeCrossTenant         = "CROSS_TENANT"
	ErrCodeIntegrity           = "INTEGRITY_ERROR"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(ErrCodeAlreadyExists, "Resource already exists")
	ErrCrossTenant         = NewDomainError(ErrCodeCrossTenant, "Entity belongs to a different organization")
	ErrConcurrencyConflict = NewDomainError(ErrCodeConcurrencyConflict, "Resource was modified by another process")
)

// NewValidationError creates a VALIDATION_ERROR with the given message
func NewValidationError(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message)
}

// NewIntegrityError creates an INTEGRITY_ERROR with the given message.
// Integrity errors indicate prior data corruption and must surface to the
// caller rather than being silently repaired.
func NewIntegrityError(message string) *DomainError {
	return NewDomainError(ErrCodeIntegrity, message)
}
