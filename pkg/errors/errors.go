// Package errors provides structured error types for spm.
//
// Every failure that reaches the user carries a machine-readable [Code] so
// callers can classify it without string matching, and a human-readable
// message that names the URL, reference, or platform involved.
//
// # Error Codes
//
// Codes map one-to-one onto the failure modes of the install pipeline:
//   - reference parsing: UNRESOLVABLE_REFERENCE
//   - remote lookups: REMOTE_RESOLUTION_FAILED, MALFORMED_REMOTE_RESPONSE
//   - release manifests: MANIFEST_FETCH_FAILED, MANIFEST_DECODE_FAILED
//   - installation: NO_MATCHING_PLATFORM, INTEGRITY_MISMATCH, UNSUPPORTED_ARCHIVE_FORMAT
//   - activation: PRELOAD_DIRECTORY_NOT_FOUND, INVALID_PATH_SEGMENT
//   - project layout: MISSING_PROJECT_FILES
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNoMatchingPlatform, "no artifact for %s/%s", os, cpu)
//	if errors.Is(err, errors.ErrCodeNoMatchingPlatform) {
//	    // Handle unsupported platform
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeManifestFetchFailed, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Reference and manifest input errors
	ErrCodeUnresolvableReference Code = "UNRESOLVABLE_REFERENCE"
	ErrCodeInvalidManifest       Code = "INVALID_MANIFEST"
	ErrCodeInvalidLockfile       Code = "INVALID_LOCKFILE"
	ErrCodeInvalidInput          Code = "INVALID_INPUT"
	ErrCodeInvalidPath           Code = "INVALID_PATH"
	ErrCodeMissingProjectFiles   Code = "MISSING_PROJECT_FILES"

	// Remote errors
	ErrCodeRemoteResolutionFailed  Code = "REMOTE_RESOLUTION_FAILED"
	ErrCodeMalformedRemoteResponse Code = "MALFORMED_REMOTE_RESPONSE"
	ErrCodeManifestFetchFailed     Code = "MANIFEST_FETCH_FAILED"
	ErrCodeManifestDecodeFailed    Code = "MANIFEST_DECODE_FAILED"
	ErrCodeDownloadFailed          Code = "DOWNLOAD_FAILED"

	// Installation errors
	ErrCodeNoMatchingPlatform       Code = "NO_MATCHING_PLATFORM"
	ErrCodeIntegrityMismatch        Code = "INTEGRITY_MISMATCH"
	ErrCodeUnsupportedArchiveFormat Code = "UNSUPPORTED_ARCHIVE_FORMAT"
	ErrCodeExtractionFailed         Code = "ARCHIVE_EXTRACTION_FAILED"

	// Activation errors
	ErrCodePreloadDirectoryNotFound Code = "PRELOAD_DIRECTORY_NOT_FOUND"
	ErrCodeInvalidPathSegment       Code = "INVALID_PATH_SEGMENT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix, followed
// by the cause when one is attached. For other errors, returns the error
// string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}
