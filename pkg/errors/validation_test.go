package errors

import (
	"strings"
	"testing"
)

func TestValidateWord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "cat", false},
		{"mixed case", "Cat", false},
		{"unicode", "größe", false},
		{"empty", "", false},
		{"max length", strings.Repeat("a", MaxWordLength), false},

		{"too long", strings.Repeat("a", MaxWordLength+1), true},
		{"control char", "c\x01t", true},
		{"newline", "cat\ndog", true},
		{"invalid utf8", "c\xfft", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWord(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateWord(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("code = %v", GetCode(err))
			}
		})
	}
}

func TestValidatePathEntries(t *testing.T) {
	if err := ValidatePathEntries([]string{"cat", "cot", "dog"}); err != nil {
		t.Errorf("valid path: %v", err)
	}
	if err := ValidatePathEntries(nil); err != nil {
		t.Errorf("nil path: %v", err)
	}
	if err := ValidatePathEntries(make([]string, MaxPathEntries+1)); err == nil {
		t.Error("oversized path accepted")
	}
	if err := ValidatePathEntries([]string{"cat", "d\x00g"}); err == nil {
		t.Error("bad entry accepted")
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple file", "out.svg", false},
		{"nested", "diagrams/cat-dog.png", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "../secret", true},
		{"backslash", "dir\\file", true},
		{"null byte", "out\x00.svg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
