package errors

import (
	stderrors "errors"
	"fmt"
)

// Error codes
const (
	CodeLookupError = "LOOKUP_ERROR"
	CodeAPIError    = "API_ERROR"
	CodeValidation  = "VALIDATION_ERROR"
	CodeCache       = "CACHE_ERROR"
)

// Kind classifies why a lookup failed.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindNetworkFailure    Kind = "NETWORK_FAILURE"
	KindMalformedResponse Kind = "MALFORMED_RESPONSE"
)

func (k Kind) String() string {
	return string(k)
}

// Sentinels for errors.Is against a LookupError of the matching kind.
var (
	ErrNotFound          = stderrors.New("not found")
	ErrNetworkFailure    = stderrors.New("network failure")
	ErrMalformedResponse = stderrors.New("malformed response")
)

type PokedexError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *PokedexError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *PokedexError) Unwrap() error {
	return e.Cause
}

func (e *PokedexError) WithCause(cause error) *PokedexError {
	e.Cause = cause
	return e
}

// LookupError is the single failure value surfaced by a creature lookup.
type LookupError struct {
	*PokedexError
	Kind     Kind
	Resource string
	Name     string
}

func NewLookupError(kind Kind, resource, name string, statusCode int, cause error) *LookupError {
	return &LookupError{
		PokedexError: &PokedexError{
			Message:    fmt.Sprintf("%s %q: %s", resource, name, describeKind(kind)),
			Code:       CodeLookupError,
			StatusCode: statusCode,
			Context: map[string]any{
				"kind":     string(kind),
				"resource": resource,
				"name":     name,
			},
			Cause: cause,
		},
		Kind:     kind,
		Resource: resource,
		Name:     name,
	}
}

func NewNotFoundError(resource, name string) *LookupError {
	return NewLookupError(KindNotFound, resource, name, 404, nil)
}

func NewNetworkError(resource, name string, statusCode int, cause error) *LookupError {
	return NewLookupError(KindNetworkFailure, resource, name, statusCode, cause)
}

func NewMalformedError(resource, name string, cause error) *LookupError {
	return NewLookupError(KindMalformedResponse, resource, name, 502, cause)
}

// Is lets errors.Is match a LookupError against the kind sentinels.
func (e *LookupError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrNetworkFailure:
		return e.Kind == KindNetworkFailure
	case ErrMalformedResponse:
		return e.Kind == KindMalformedResponse
	}
	return false
}

// KindOf returns the lookup kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var lookupErr *LookupError
	if stderrors.As(err, &lookupErr) {
		return lookupErr.Kind, true
	}
	return "", false
}

func describeKind(kind Kind) string {
	switch kind {
	case KindNotFound:
		return "not found"
	case KindNetworkFailure:
		return "network failure"
	case KindMalformedResponse:
		return "malformed response"
	default:
		return "lookup failed"
	}
}

type APIError struct {
	*PokedexError
}

func NewAPIError(message string, statusCode int, context map[string]any) *APIError {
	return &APIError{
		PokedexError: &PokedexError{
			Message:    message,
			Code:       CodeAPIError,
			StatusCode: statusCode,
			Context:    context,
		},
	}
}

type ValidationError struct {
	*PokedexError
	Field string
	Value interface{}
}

func NewValidationError(message, field string, value interface{}) *ValidationError {
	return &ValidationError{
		PokedexError: &PokedexError{
			Message:    message,
			Code:       CodeValidation,
			StatusCode: 400,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

type CacheError struct {
	*PokedexError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		PokedexError: &PokedexError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: 500,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}
