package validation

import (
	"regexp"
	"strings"
	"testing"

	"github.com/streamkit/streamkit/errors"
)

func TestValidator_CleanRun(t *testing.T) {
	v := New().
		Required("name", "pipeline").
		MinLength("name", "pipeline", 2).
		MaxLength("name", "pipeline", 64).
		Min("workers", 4, 1).
		Max("workers", 4, 16)

	if v.HasErrors() {
		t.Errorf("unexpected errors: %v", v.Errors())
	}
	if err := v.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestValidator_Required(t *testing.T) {
	cases := []struct {
		name  string
		value string
		valid bool
	}{
		{"filled", "x", true},
		{"empty", "", false},
		{"whitespace only", "   \t", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := New().Required("field", tc.value)
			if v.HasErrors() == tc.valid {
				t.Errorf("Required(%q): HasErrors() = %v, want %v", tc.value, v.HasErrors(), !tc.valid)
			}
		})
	}
}

func TestValidator_Lengths(t *testing.T) {
	v := New().MinLength("short", "ab", 3).MaxLength("long", "abcdef", 4)
	got := v.Errors()
	if len(got) != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
	if got[0].Field != "short" || got[0].Message != "must be at least 3 characters" {
		t.Errorf("min error = %+v", got[0])
	}
	if got[1].Field != "long" || got[1].Message != "must be at most 4 characters" {
		t.Errorf("max error = %+v", got[1])
	}
}

func TestValidator_MinMax(t *testing.T) {
	if v := New().Min("n", 0, 1); !v.HasErrors() {
		t.Error("Min(0, 1) should fail")
	}
	if v := New().Max("n", 10, 5); !v.HasErrors() {
		t.Error("Max(10, 5) should fail")
	}
	if v := New().Min("n", 1, 1).Max("n", 1, 1); v.HasErrors() {
		t.Errorf("boundary values should pass: %v", v.Errors())
	}
}

func TestValidator_Pattern(t *testing.T) {
	ident := regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

	if v := New().Pattern("name", "word-count", ident); v.HasErrors() {
		t.Errorf("matching value failed: %v", v.Errors())
	}
	if v := New().Pattern("name", "Word Count!", ident); !v.HasErrors() {
		t.Error("non-matching value passed")
	}
	// Empty values are Required's job.
	if v := New().Pattern("name", "", ident); v.HasErrors() {
		t.Errorf("empty value failed Pattern: %v", v.Errors())
	}
}

func TestValidator_OneOf(t *testing.T) {
	allowed := []string{"json", "console"}

	if v := New().OneOf("format", "json", allowed); v.HasErrors() {
		t.Errorf("allowed value failed: %v", v.Errors())
	}
	v := New().OneOf("format", "xml", allowed)
	if !v.HasErrors() {
		t.Fatal("disallowed value passed")
	}
	if msg := v.Errors()[0].Message; msg != "must be one of: json, console" {
		t.Errorf("message = %q", msg)
	}
	if v := New().OneOf("format", "", allowed); v.HasErrors() {
		t.Errorf("empty value failed OneOf: %v", v.Errors())
	}
}

func TestValidator_Custom(t *testing.T) {
	v := New().
		Custom(true, "ok", "never recorded").
		Custom(false, "bad", "must be even")

	got := v.Errors()
	if len(got) != 1 {
		t.Fatalf("expected 1 error, got %v", got)
	}
	if got[0].Field != "bad" || got[0].Message != "must be even" {
		t.Errorf("custom error = %+v", got[0])
	}
}

func TestValidator_ErrShape(t *testing.T) {
	err := New().
		Required("name", "").
		Min("workers", 0, 1).
		Err()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want INVALID_INPUT", errors.GetCode(err))
	}
	if want := "name: is required; workers: must be at least 1"; err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}

	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatal("Err() did not produce an AppError")
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Fatalf("details fields = %#v, want 2 FieldErrors", appErr.Details["fields"])
	}
}

type testSettings struct {
	Name        string  `mapstructure:"name" validate:"required"`
	Environment string  `mapstructure:"environment" validate:"required,oneof=development staging production"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

func TestValidate_Passes(t *testing.T) {
	err := Validate(testSettings{Name: "app", Environment: "production", SampleRate: 0.25})
	if err != nil {
		t.Errorf("valid struct rejected: %v", err)
	}
}

func TestValidate_ReportsTagNames(t *testing.T) {
	err := Validate(testSettings{Environment: "laptop", SampleRate: 2})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("code = %v, want INVALID_INPUT", errors.GetCode(err))
	}

	msg := err.Error()
	for _, want := range []string{
		"name: is required",
		"environment: must be one of: development, staging, production",
		"sample_rate: must be at most 1",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidate_JSONTagFallback(t *testing.T) {
	type payload struct {
		FullName string `json:"full_name" validate:"required"`
	}
	err := Validate(payload{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "full_name:") {
		t.Errorf("error %q does not use the json tag name", err.Error())
	}
}

func TestValidate_UntaggedFieldName(t *testing.T) {
	type bare struct {
		MaxRetries int `validate:"gte=1"`
	}
	err := Validate(bare{})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "max_retries:") {
		t.Errorf("error %q does not snake-case the field name", err.Error())
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if err := Validate(42); err == nil {
		t.Error("expected an error for non-struct input")
	}
}

func TestSnakeCase(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Name", "name"},
		{"SampleRate", "sample_rate"},
		{"MaxGCPercent", "max_g_c_percent"},
		{"already_snake", "already_snake"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := snakeCase(tc.in); got != tc.want {
			t.Errorf("snakeCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
