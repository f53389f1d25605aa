package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/guidegen/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("place", "Paris").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("place", "").HasErrors() {
		t.Error("expected error for empty required field")
	}
	if !New().Required("place", "   ").HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorChecks(t *testing.T) {
	tests := []struct {
		name    string
		check   func(v *Validator)
		wantErr bool
	}{
		{"max length ok", func(v *Validator) { v.MaxLength("place", "Rome", 10) }, false},
		{"max length exceeded", func(v *Validator) { v.MaxLength("place", strings.Repeat("x", 11), 10) }, true},
		{"range ok", func(v *Validator) { v.Range("days", 5, 1, 30) }, false},
		{"range low", func(v *Validator) { v.Range("days", 0, 1, 30) }, true},
		{"range high", func(v *Validator) { v.Range("days", 31, 1, 30) }, true},
		{"date ok", func(v *Validator) { v.Date("start", "2026-07-01", "2006-01-02") }, false},
		{"date empty", func(v *Validator) { v.Date("start", "", "2006-01-02") }, false},
		{"date bad", func(v *Validator) { v.Date("start", "07/01/2026", "2006-01-02") }, true},
		{"one of ok", func(v *Validator) { v.OneOf("policy", "wait", []string{"wait", "fail_fast"}) }, false},
		{"one of bad", func(v *Validator) { v.OneOf("policy", "retry", []string{"wait", "fail_fast"}) }, true},
		{"custom ok", func(v *Validator) { v.Custom(true, "x", "bad") }, false},
		{"custom bad", func(v *Validator) { v.Custom(false, "x", "bad") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			tt.check(v)
			if v.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors() = %v, want %v (%v)", v.HasErrors(), tt.wantErr, v.Errors())
			}
		})
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Validate() != nil || New().Err() != nil {
		t.Error("expected nil for no errors")
	}

	v := New().Required("place", "").Range("days", 0, 1, 30)
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected an AppError")
	}
	if appErr.Code != errors.ErrCodeInvalidInput || appErr.HTTPStatus != 400 {
		t.Errorf("unexpected error: %s/%d", appErr.Code, appErr.HTTPStatus)
	}
	if !strings.Contains(appErr.Message, "place: is required") || !strings.Contains(appErr.Message, "days: must be between 1 and 30") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	if fields, ok := appErr.Details["fields"].([]FieldError); !ok || len(fields) != 2 {
		t.Errorf("unexpected details: %v", appErr.Details)
	}
}

type generateRequest struct {
	Prompt    string `json:"prompt" validate:"required,max=20"`
	StartDate string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Days      int    `json:"days" validate:"gte=0,lte=30"`
	Policy    string `validate:"omitempty,oneof=wait fail_fast"`
}

func TestStruct(t *testing.T) {
	if err := Struct(generateRequest{Prompt: "3 days in Rome", StartDate: "2026-07-01", Days: 3}); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}

	err := Struct(generateRequest{Prompt: "", StartDate: "tomorrow", Days: 45, Policy: "retry"})
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	for _, want := range []string{
		"prompt: is required",
		"startDate: must be a date in the format 2006-01-02",
		"days: must be at most 30",
		"Policy: must be one of: wait fail_fast",
	} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("message %q missing %q", appErr.Message, want)
		}
	}
}

func TestStruct_StringLength(t *testing.T) {
	err := Struct(generateRequest{Prompt: strings.Repeat("x", 21)})
	if err == nil || !strings.Contains(err.Error(), "prompt: must be at most 20 characters") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateUUID(t *testing.T) {
	want := uuid.New()
	got, err := ValidateUUID("id", want.String())
	if err != nil || got != want {
		t.Errorf("ValidateUUID() = %v, %v", got, err)
	}

	if _, err := ValidateUUID("id", ""); err == nil {
		t.Error("expected error for empty id")
	} else if appErr, _ := errors.AsAppError(err); appErr.Code != errors.ErrCodeMissingField {
		t.Errorf("expected missing field, got %s", appErr.Code)
	}

	if _, err := ValidateUUID("id", "nope"); err == nil {
		t.Error("expected error for invalid id")
	}
}
