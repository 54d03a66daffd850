package utils

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestSanitizeValidationErrorEmail(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Email string `validate:"required,email"`
	}

	err := validate.Struct(TestReq{Email: "not-an-email"})
	if err == nil {
		t.Fatal("expected validation error for invalid email")
	}

	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "valid email address") {
		t.Errorf("expected user-friendly email error, got: %s", msg)
	}
}

func TestSanitizeValidationErrorRequired(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Name     string `validate:"required"`
		Quantity int    `validate:"min=1"`
	}

	msg := SanitizeValidationError(validate.Struct(TestReq{}))
	if !strings.Contains(msg, "name is required") {
		t.Errorf("expected error message to mention 'name is required', got: %s", msg)
	}
	if !strings.Contains(msg, "quantity must be at least 1") {
		t.Errorf("expected min message, got: %s", msg)
	}
}

func TestSanitizeValidationErrorNumericMax(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Quantity int `validate:"min=1,max=10000"`
	}

	msg := SanitizeValidationError(validate.Struct(TestReq{Quantity: 10001}))
	if msg != "quantity must be at most 10000" {
		t.Errorf("expected numeric max message, got: %s", msg)
	}
}

func TestSanitizeValidationErrorOneOf(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Status string `validate:"oneof=Pending Failed Completed"`
	}

	msg := SanitizeValidationError(validate.Struct(TestReq{Status: "Refunded"}))
	if !strings.Contains(msg, "status must be one of: Pending Failed Completed") {
		t.Errorf("expected oneof message, got: %s", msg)
	}
}

func TestSanitizeValidationErrorWrapped(t *testing.T) {
	validate := validator.New()

	type TestReq struct {
		Name string `validate:"max=3"`
	}

	err := fmt.Errorf("validation failed: %w", validate.Struct(TestReq{Name: "toolong"}))
	msg := SanitizeValidationError(err)
	if !strings.Contains(msg, "at most 3") {
		t.Errorf("expected wrapped validator errors to be unpacked, got: %s", msg)
	}
}

func TestSanitizeValidationErrorNilReturnsEmpty(t *testing.T) {
	msg := SanitizeValidationError(nil)
	if msg != "" {
		t.Errorf("expected empty string for nil error, got: %s", msg)
	}
}

func TestSanitizeValidationErrorGeneric(t *testing.T) {
	msg := SanitizeValidationError(errors.New("invalid character 'x' looking for beginning of value"))
	if msg != "Invalid request body" {
		t.Errorf("expected generic message, got: %s", msg)
	}
}
