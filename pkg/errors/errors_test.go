package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNoMatchingPlatform, "no artifact for os=%s cpu=%s", "linux", "x86_64")

	if err.Code != ErrCodeNoMatchingPlatform {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNoMatchingPlatform)
	}

	if err.Message != "no artifact for os=linux cpu=x86_64" {
		t.Errorf("Message = %v, want %v", err.Message, "no artifact for os=linux cpu=x86_64")
	}

	expected := "NO_MATCHING_PLATFORM: no artifact for os=linux cpu=x86_64"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(ErrCodeManifestFetchFailed, cause, "fetch %s", "https://example.com/spm.json")

	if err.Code != ErrCodeManifestFetchFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeManifestFetchFailed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "MANIFEST_FETCH_FAILED: fetch https://example.com/spm.json: connection refused"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeIntegrityMismatch, "test"),
			code:     ErrCodeIntegrityMismatch,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeIntegrityMismatch, "test"),
			code:     ErrCodeUnsupportedArchiveFormat,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeRemoteResolutionFailed, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeRemoteResolutionFailed,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("install gh:a/b: %w", New(ErrCodeNoMatchingPlatform, "x")),
			code:     ErrCodeNoMatchingPlatform,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeMissingProjectFiles, "test"),
			expected: ErrCodeMissingProjectFiles,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
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
		{
			name:     "Error type",
			err:      New(ErrCodeMissingProjectFiles, "spm.toml not found"),
			expected: "spm.toml not found",
		},
		{
			name:     "Error with cause",
			err:      Wrap(ErrCodeManifestDecodeFailed, errors.New("unexpected EOF"), "decode https://x/spm.json"),
			expected: "decode https://x/spm.json: unexpected EOF",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}
