package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainSelectionError indicates a command invoked against an unusable selection
	DomainSelectionError DomainErrorType = "SELECTION_ERROR"

	// DomainInvariantError indicates a graph model guard rejected a mutation
	DomainInvariantError DomainErrorType = "INVARIANT_ERROR"

	// DomainNotFoundError indicates a resource was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainPersistenceError indicates a storage-level failure
	DomainPersistenceError DomainErrorType = "PERSISTENCE_ERROR"
)

// Error codes
const (
	CodeInvalidSelection      = "INVALID_SELECTION"
	CodeInsufficientSelection = "INSUFFICIENT_SELECTION"
	CodeInvalidEndpoint       = "INVALID_ENDPOINT"
	CodeNodeNotFound          = "NODE_NOT_FOUND"
	CodeEdgeNotFound          = "EDGE_NOT_FOUND"
	CodeInvalidDocument       = "INVALID_DOCUMENT"
	CodeInvalidInput          = "INVALID_INPUT"
	CodeStoreUnavailable      = "STORE_UNAVAILABLE"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type    DomainErrorType        `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:    errorType,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// WithCause adds a cause to the error
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// Is matches on Type and Code so fresh errors compare equal to the sentinels below.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Sentinels for errors.Is. Never attach details to these; use the constructors.
var (
	ErrInvalidSelection      = NewDomainError(DomainSelectionError, CodeInvalidSelection, "invalid selection")
	ErrInsufficientSelection = NewDomainError(DomainSelectionError, CodeInsufficientSelection, "select at least 2 nodes")
	ErrInvalidEndpoint       = NewDomainError(DomainInvariantError, CodeInvalidEndpoint, "edge endpoint must be an existing non-group node")
	ErrNodeNotFound          = NewDomainError(DomainNotFoundError, CodeNodeNotFound, "node not found")
	ErrEdgeNotFound          = NewDomainError(DomainNotFoundError, CodeEdgeNotFound, "edge not found")
	ErrInvalidDocument       = NewDomainError(DomainInvariantError, CodeInvalidDocument, "document violates graph invariants")
	ErrStoreUnavailable      = NewDomainError(DomainPersistenceError, CodeStoreUnavailable, "document store unavailable")
)

// InvalidSelection builds an INVALID_SELECTION error with a user-facing message.
func InvalidSelection(message string) *DomainError {
	return NewDomainError(DomainSelectionError, CodeInvalidSelection, message)
}

// InsufficientSelection builds the group-creation arity error.
func InsufficientSelection() *DomainError {
	return NewDomainError(DomainSelectionError, CodeInsufficientSelection, "select at least 2 nodes")
}

// InvalidEndpoint builds an INVALID_ENDPOINT error naming the offending node.
func InvalidEndpoint(nodeID string) *DomainError {
	return NewDomainError(DomainInvariantError, CodeInvalidEndpoint, "edge endpoint must be an existing non-group node").
		WithDetail("node_id", nodeID)
}

// NodeNotFound builds a NODE_NOT_FOUND error.
func NodeNotFound(nodeID string) *DomainError {
	return NewDomainError(DomainNotFoundError, CodeNodeNotFound, "node not found").
		WithDetail("node_id", nodeID)
}

// EdgeNotFound builds an EDGE_NOT_FOUND error.
func EdgeNotFound(edgeID string) *DomainError {
	return NewDomainError(DomainNotFoundError, CodeEdgeNotFound, "edge not found").
		WithDetail("edge_id", edgeID)
}

// InvalidDocument builds an INVALID_DOCUMENT error.
func InvalidDocument(message string) *DomainError {
	return NewDomainError(DomainInvariantError, CodeInvalidDocument, message)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *DomainError {
	return NewDomainError(DomainValidationError, CodeInvalidInput, message)
}

// StoreUnavailable wraps a storage failure.
func StoreUnavailable(cause error) *DomainError {
	return NewDomainError(DomainPersistenceError, CodeStoreUnavailable, "document store unavailable").
		WithCause(cause)
}

// IsInvalidSelection reports whether err is an INVALID_SELECTION error
func IsInvalidSelection(err error) bool {
	return stderrors.Is(err, ErrInvalidSelection)
}

// IsInsufficientSelection reports whether err is an INSUFFICIENT_SELECTION error
func IsInsufficientSelection(err error) bool {
	return stderrors.Is(err, ErrInsufficientSelection)
}

// IsInvalidEndpoint reports whether err is an INVALID_ENDPOINT error
func IsInvalidEndpoint(err error) bool {
	return stderrors.Is(err, ErrInvalidEndpoint)
}

// IsNotFound reports whether err is any NOT_FOUND error
func IsNotFound(err error) bool {
	var de *DomainError
	return stderrors.As(err, &de) && de.Type == DomainNotFoundError
}

// IsUserFacing reports whether err should be shown as a notice rather than logged as a fault.
func IsUserFacing(err error) bool {
	var de *DomainError
	if !stderrors.As(err, &de) {
		return false
	}
	return de.Type == DomainSelectionError || de.Type == DomainValidationError
}

// HTTPStatus maps an error to a response status code
func HTTPStatus(err error) int {
	var de *DomainError
	if !stderrors.As(err, &de) {
		return http.StatusInternalServerError
	}
	switch de.Type {
	case DomainValidationError:
		return http.StatusBadRequest
	case DomainSelectionError, DomainInvariantError:
		return http.StatusUnprocessableEntity
	case DomainNotFoundError:
		return http.StatusNotFound
	case DomainPersistenceError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
