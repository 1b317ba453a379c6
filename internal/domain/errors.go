package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate resource.
	ErrAlreadyExists = errors.New("already exists")
	// ErrValidation signals caller-supplied parameters outside the contract.
	ErrValidation = errors.New("validation failed")

	// ErrCollaboratorUnavailable signals that an external collaborator
	// (enhancement, embedding, summarization, answering) failed or timed out.
	ErrCollaboratorUnavailable = errors.New("collaborator unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrMalformedResponse signals a collaborator reply that could not be parsed.
	ErrMalformedResponse = errors.New("malformed collaborator response")

	// ErrRetrievalEngine signals that the token-search engine rejected a query.
	ErrRetrievalEngine = errors.New("retrieval engine error")
)

// ValidationError carries the offending field alongside ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error for field.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
