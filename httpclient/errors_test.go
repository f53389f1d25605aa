package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestErrorCode_String(t *testing.T) {
	names := map[ErrorCode]string{
		ErrCodeTimeout:    "timeout",
		ErrCodeConnection: "connection",
		ErrCodeAuth:       "auth",
		ErrCodeNotFound:   "not_found",
		ErrCodeRateLimit:  "rate_limit",
		ErrCodeValidation: "validation",
		ErrCodeServer:     "server",
		ErrorCode(99):     "unknown",
	}
	for code, want := range names {
		if got := code.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", code, got, want)
		}
	}
}

func TestError_ErrorAndUnwrap(t *testing.T) {
	e := ClassifyStatusCode(http.StatusBadGateway, nil)
	if !strings.Contains(e.Error(), "HTTP 502") {
		t.Errorf("unexpected message %q", e.Error())
	}
	cause := fmt.Errorf("dial tcp: refused")
	ce := NewConnectionError(cause)
	if !errors.Is(ce, cause) {
		t.Error("expected Unwrap to expose the cause")
	}
	if strings.Contains(ce.Error(), "HTTP") {
		t.Errorf("connection errors have no status, got %q", ce.Error())
	}
}

func TestClassifyStatusCode(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, ErrCodeAuth, false},
		{http.StatusForbidden, ErrCodeAuth, false},
		{http.StatusNotFound, ErrCodeNotFound, false},
		{http.StatusTooManyRequests, ErrCodeRateLimit, false},
		{http.StatusUnprocessableEntity, ErrCodeValidation, false},
		{http.StatusInternalServerError, ErrCodeServer, true},
		{http.StatusServiceUnavailable, ErrCodeServer, true},
	}
	for _, tt := range tests {
		e := ClassifyStatusCode(tt.status, []byte("body"))
		if e == nil {
			t.Fatalf("status %d: expected error", tt.status)
		}
		if e.Code != tt.code || e.Retryable != tt.retryable {
			t.Errorf("status %d: got %s retryable=%v", tt.status, e.Code, e.Retryable)
		}
		if string(e.Body) != "body" {
			t.Errorf("status %d: body not kept", tt.status)
		}
	}
	if ClassifyStatusCode(http.StatusOK, nil) != nil || ClassifyStatusCode(http.StatusNoContent, nil) != nil {
		t.Error("2xx must classify as nil")
	}
}

func TestIsHelpers(t *testing.T) {
	wrapped := fmt.Errorf("geocode: %w", ClassifyStatusCode(http.StatusNotFound, nil))
	if !IsNotFound(wrapped) || IsServerError(wrapped) || IsRetryable(wrapped) {
		t.Error("unexpected helper results for wrapped 404")
	}
	if !IsTimeout(NewTimeoutError(errors.New("deadline"))) {
		t.Error("expected IsTimeout")
	}
	if !IsRetryable(NewConnectionError(errors.New("reset"))) {
		t.Error("connection errors are retryable")
	}
	if IsRetryable(errors.New("plain")) {
		t.Error("plain errors are not retryable")
	}
}
