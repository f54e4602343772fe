package shared

import "errors"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
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

// IsCode reports whether err is a DomainError carrying the given code
func IsCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidArgument     = NewDomainError("INVALID_ARGUMENT", "Invalid input provided")
	ErrInvalidTransition   = NewDomainError("INVALID_TRANSITION", "Operation not allowed in current status")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Acting role lacks authority for this action")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another transaction")
	ErrInvariantViolation  = NewDomainError("INVARIANT_VIOLATION", "Ledger invariant violated")
)
