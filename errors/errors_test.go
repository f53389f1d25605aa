package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_NotFound(t *testing.T) {
	err := NotFound("guide", "abc")
	if err.Details["resource"] != "guide" || err.Details["id"] != "abc" {
		t.Errorf("unexpected details: %v", err.Details)
	}
	if _, ok := NotFound("guide", "").Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_RateLimited(t *testing.T) {
	err := RateLimited("geocoding")
	if err.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", err.HTTPStatus)
	}
	if !err.Retryable {
		t.Error("RateLimited should be retryable")
	}
	if err.Details["provider"] != "geocoding" {
		t.Errorf("expected provider detail, got %v", err.Details)
	}
	if RateLimited("").Details != nil {
		t.Error("expected no details for inbound limit")
	}
}

func TestAppError_StepFailed(t *testing.T) {
	cause := fmt.Errorf("upstream down")
	err := StepFailed("weather", cause)
	if err.Code != ErrCodeStepFailed {
		t.Errorf("expected STEP_FAILED, got %s", err.Code)
	}
	if err.Message != "weather: upstream down" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if err.Details["step"] != "weather" {
		t.Errorf("expected step detail, got %v", err.Details)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_Internal(t *testing.T) {
	cause := fmt.Errorf("db connection lost")
	err := Internal(cause)
	if err.Cause != cause {
		t.Error("expected cause to be set")
	}
	if err.Retryable {
		t.Error("Internal should NOT be retryable")
	}
}

func TestAppError_ExternalServiceError(t *testing.T) {
	err := ExternalServiceError("mapbox", fmt.Errorf("502"))
	if err.HTTPStatus != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", err.HTTPStatus)
	}
	if !err.Retryable {
		t.Error("ExternalServiceError should be retryable")
	}
}

func TestAppError_Error(t *testing.T) {
	err := Validation("address is required")
	if err.Error() != "INVALID_INPUT: address is required" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	wrapped := Internal(fmt.Errorf("boom"))
	if !strings.Contains(wrapped.Error(), "cause: boom") {
		t.Errorf("expected cause in message, got %q", wrapped.Error())
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := Conflict("run already started").WithDetail("run", "r1")
	if err.Details["run"] != "r1" {
		t.Errorf("expected run detail, got %v", err.Details)
	}
}

func TestMissingFieldAndInvalidInput(t *testing.T) {
	if MissingField("prompt").Details["field"] != "prompt" {
		t.Error("expected field detail")
	}
	err := InvalidInput("addresses", "must not be empty")
	if err.Message != "Invalid input: must not be empty" {
		t.Errorf("unexpected message: %q", err.Message)
	}
}

func TestFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
	}{
		{"app error", NotFound("guide", "x"), ErrCodeNotFound},
		{"wrapped app error", fmt.Errorf("wrap: %w", RateLimited("weather")), ErrCodeRateLimited},
		{"canceled", context.Canceled, ErrCodeCanceled},
		{"deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), ErrCodeTimeout},
		{"plain", fmt.Errorf("plain"), ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := From(tt.err)
			if got.Code != tt.code {
				t.Errorf("From() code = %s, want %s", got.Code, tt.code)
			}
		})
	}
	if From(nil) != nil {
		t.Error("From(nil) should be nil")
	}
}

func TestToResponse(t *testing.T) {
	err := InvalidInput("addresses", "too many")
	data, jerr := json.Marshal(err.ToResponse())
	if jerr != nil {
		t.Fatal(jerr)
	}
	var decoded map[string]map[string]any
	if jerr := json.Unmarshal(data, &decoded); jerr != nil {
		t.Fatal(jerr)
	}
	body := decoded["error"]
	if body["code"] != string(ErrCodeInvalidInput) {
		t.Errorf("unexpected code: %v", body["code"])
	}
	if body["retryable"] != false {
		t.Errorf("unexpected retryable: %v", body["retryable"])
	}
}

func TestIsAppError(t *testing.T) {
	if !IsAppError(fmt.Errorf("wrap: %w", Timeout("geocode"))) {
		t.Error("expected wrapped AppError to be detected")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error is not an AppError")
	}
	if _, ok := AsAppError(nil); ok {
		t.Error("nil is not an AppError")
	}
}
