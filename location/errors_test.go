// Copyright 2026 The JobGeo Authors
// SPDX-License-Identifier: Apache-2.0

package location

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "rate limit is transient",
			err:  &ProviderError{Type: ErrorTypeRateLimit, Message: "429"},
			want: true,
		},
		{
			name: "timeout is transient",
			err:  &ProviderError{Type: ErrorTypeTimeout, Message: "deadline"},
			want: true,
		},
		{
			name: "network error is transient",
			err:  &ProviderError{Type: ErrorTypeNetworkError, Message: "refused"},
			want: true,
		},
		{
			name: "unknown provider error is transient",
			err:  &ProviderError{Type: ErrorTypeUnknown, Message: "http 500"},
			want: true,
		},
		{
			name: "invalid request is permanent",
			err:  &ProviderError{Type: ErrorTypeInvalidRequest, Message: "bad"},
			want: false,
		},
		{
			name: "quota exceeded is permanent",
			err:  &ProviderError{Type: ErrorTypeQuotaExceeded, Message: "quota"},
			want: false,
		},
		{
			name: "wrapped provider error is unwrapped",
			err:  fmt.Errorf("lookup: %w", &ProviderError{Type: ErrorTypeTimeout, Message: "deadline"}),
			want: true,
		},
		{
			name: "plain timeout message",
			err:  errors.New("context deadline exceeded"),
			want: true,
		},
		{
			name: "plain unrelated error",
			err:  errors.New("something else"),
			want: false,
		},
		{
			name: "no results is not transient",
			err:  ErrNoResults,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsRateLimitError(t *testing.T) {
	if !IsRateLimitError(&ProviderError{Type: ErrorTypeRateLimit}) {
		t.Error("typed rate-limit error not detected")
	}

	if !IsRateLimitError(errors.New("upstream said: too many requests")) {
		t.Error("rate-limit message not detected")
	}

	if IsRateLimitError(&ProviderError{Type: ErrorTypeTimeout}) {
		t.Error("timeout misclassified as rate limit")
	}
}

func TestClassifyHTTPError(t *testing.T) {
	tests := []struct {
		status   int
		wantType ErrorType
	}{
		{http.StatusTooManyRequests, ErrorTypeRateLimit},
		{http.StatusForbidden, ErrorTypeQuotaExceeded},
		{http.StatusBadRequest, ErrorTypeInvalidRequest},
		{http.StatusServiceUnavailable, ErrorTypeNetworkError},
		{http.StatusBadGateway, ErrorTypeNetworkError},
		{http.StatusGatewayTimeout, ErrorTypeNetworkError},
		{http.StatusInternalServerError, ErrorTypeUnknown},
		{http.StatusTeapot, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		provErr := ClassifyHTTPError(tt.status)
		if provErr.Type != tt.wantType {
			t.Errorf("ClassifyHTTPError(%d).Type = %v, want %v", tt.status, provErr.Type, tt.wantType)
		}
	}
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	provErr := &ProviderError{Type: ErrorTypeNetworkError, Message: "request failed", Err: inner}

	if !errors.Is(provErr, inner) {
		t.Error("ProviderError should unwrap to its cause")
	}

	if provErr.Error() != "request failed: connection reset" {
		t.Errorf("Error() = %q", provErr.Error())
	}
}
