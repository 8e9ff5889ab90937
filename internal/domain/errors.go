package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a malformed request or catalog record.
	ErrValidation = errors.New("validation failed")
	// ErrConfigInvalid signals an unusable startup configuration (no embedding
	// model could be selected, catalog file absent). Fatal.
	ErrConfigInvalid = errors.New("invalid configuration")
	// ErrVectorDimMismatch signals a vector whose length differs from the
	// collection dimension. Never recovered by truncation or padding.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrStorageUnavailable signals that the vector store cannot be reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrExternalService signals a failed call to the language collaborator.
	ErrExternalService = errors.New("external service error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)
