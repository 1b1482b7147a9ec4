// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoResults is returned by a Geocoder when the provider answered but had
// no match for the query. Distinct from *ProviderError: a tier that gets
// ErrNoResults falls through immediately, a transient failure may be retried.
var ErrNoResults = errors.New("geocoder: no results for query")

// ErrNotResolved is returned when a job has no stored location row.
var ErrNotResolved = errors.New("job location not resolved")

// ErrJobNotFound is returned when the referenced job does not exist.
var ErrJobNotFound = errors.New("job not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// ProviderError represents a failure talking to the geocoding provider.
type ProviderError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies geocoding provider failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit provider throttled the request.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded provider quota exhausted.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout request deadline exceeded.
	ErrorTypeTimeout
	// ErrorTypeInvalidRequest malformed request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError transport-level failure.
	ErrorTypeNetworkError
)

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether the failure is worth retrying: timeouts,
// throttling and network errors may clear; an invalid request never will.
func IsTransient(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		switch provErr.Type {
		case ErrorTypeRateLimit, ErrorTypeTimeout, ErrorTypeNetworkError, ErrorTypeUnknown:
			return true
		default:
			return false
		}
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "connection refused")
}

// IsRateLimitError reports whether the provider throttled the request.
func IsRateLimitError(err error) bool {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Type == ErrorTypeRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// ClassifyHTTPError maps a provider HTTP status to a ProviderError.
func ClassifyHTTPError(statusCode int) *ProviderError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &ProviderError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden: // 403
		return &ProviderError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		return &ProviderError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &ProviderError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (status %d)", statusCode),
		}
	default:
		return &ProviderError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}
