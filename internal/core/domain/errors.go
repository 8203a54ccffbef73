package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedLanguage indicates a language other than English or German.
	ErrUnsupportedLanguage = errors.New("unsupported language")

	// ErrUnauthenticated indicates an operation needs a validated user session.
	ErrUnauthenticated = errors.New("authentication required")

	// Quota Errors.

	// ErrSearchRateLimitExceeded indicates the daily search quota is used up.
	// The message is part of the client contract.
	ErrSearchRateLimitExceeded = errors.New("SEARCH_RATE_LIMIT_EXCEEDED")

	// ErrAIRateLimitExceeded indicates the daily AI quota (or the generation
	// service's own rate limit) is exhausted. Callers fall back to database results.
	ErrAIRateLimitExceeded = errors.New("AI_RATE_LIMIT_EXCEEDED")

	// Generation Errors.

	// ErrMissingAPIKey indicates the generation service has no API key.
	// This is a configuration error and is never retried.
	ErrMissingAPIKey = errors.New("generation service API key is not configured")

	// ErrInvalidAPIKey indicates the generation service rejected the configured
	// key. Unlike ErrMissingAPIKey it is a service failure and searches degrade
	// to database results.
	ErrInvalidAPIKey = errors.New("generation service rejected the API key")

	// ErrGenerationService indicates the generation service returned a non-2xx status.
	ErrGenerationService = errors.New("generation service request failed")

	// ErrGenerationFailed indicates no usable candidate survived parsing and validation.
	ErrGenerationFailed = errors.New("generation produced no valid quotes")
)
