package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad word: %s", "c\x01t")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}
	if err.Message != "bad word: c\x01t" {
		t.Errorf("Message = %q", err.Message)
	}
	if got, want := New(ErrCodeUnsupported, "no pdf").Error(), "UNSUPPORTED: no pdf"; got != want {
		t.Errorf("Error() = %v, want %v", got, want)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("no such file")
	err := Wrap(ErrCodeFileNotFound, cause, "read route.json")

	if errors.Unwrap(err) != cause {
		t.Error("Unwrap did not return the cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if want := "FILE_NOT_FOUND: read route.json: no such file"; err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInvalidInput, true},
		{"non-matching code", New(ErrCodeInvalidInput, "test"), ErrCodeInternal, false},
		{"outer code wins", Wrap(ErrCodeInternal, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeInternal, true},
		{"fmt wrapped", fmt.Errorf("layout: %w", New(ErrCodeInvalidConfig, "x")), ErrCodeInvalidConfig, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
		{"empty code", errors.New("plain"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"coded", New(ErrCodeInvalidFormat, "unknown format %q", "gif"), `unknown format "gif"`},
		{"wrapped coded", fmt.Errorf("render: %w", New(ErrCodeUnsupported, "no converter")), "no converter"},
		{"plain error", errors.New("plain error"), "plain error"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, ""), http.StatusBadRequest},
		{New(ErrCodeInvalidConfig, ""), http.StatusBadRequest},
		{New(ErrCodeInvalidFormat, ""), http.StatusUnsupportedMediaType},
		{New(ErrCodeUnsupported, ""), http.StatusUnsupportedMediaType},
		{New(ErrCodeFileNotFound, ""), http.StatusNotFound},
		{New(ErrCodeRateLimited, ""), http.StatusTooManyRequests},
		{New(ErrCodeUnavailable, ""), http.StatusServiceUnavailable},
		{New(ErrCodeInternal, ""), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
	if CodeOf(errors.New("plain")) != ErrCodeInternal {
		t.Error("uncoded error should report INTERNAL_ERROR")
	}
}
