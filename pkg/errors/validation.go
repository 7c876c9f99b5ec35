package errors

import (
	"strings"
	"unicode"
)

// ValidateReference validates a package reference string before it is
// written to spm.toml or used as a lockfile key.
//
// The rules are intentionally conservative:
//   - No empty references
//   - No control characters or null bytes
//   - Maximum length of 256 characters
//
// Form-specific parsing is done separately by the reference package.
func ValidateReference(ref string) error {
	if ref == "" {
		return New(ErrCodeUnresolvableReference, "reference cannot be empty")
	}

	if len(ref) > 256 {
		return New(ErrCodeUnresolvableReference, "reference too long (max 256 characters)")
	}

	for _, r := range ref {
		if unicode.IsControl(r) {
			return New(ErrCodeUnresolvableReference, "reference contains invalid control characters")
		}
	}

	return nil
}

// ValidateVersion validates a release tag before it is interpolated into a
// download URL. Tags come from user input or from the remote API, so both
// are checked the same way.
func ValidateVersion(version string) error {
	if version == "" {
		return New(ErrCodeInvalidInput, "version cannot be empty")
	}

	if len(version) > 128 {
		return New(ErrCodeInvalidInput, "version too long (max 128 characters)")
	}

	for _, r := range version {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "version %q contains invalid characters", version)
		}
	}

	// Slashes may separate non-empty segments, as in monorepo tags like "ext/v1.0".
	if strings.HasPrefix(version, "/") || strings.HasSuffix(version, "/") || strings.Contains(version, "//") {
		return New(ErrCodeInvalidInput, "version %q has an empty path segment", version)
	}

	dangerousPatterns := []string{
		"..", // Parent directory
		"\\", // Backslash (Windows path)
		"?",  // Query string
		"#",  // Fragment
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(version, pattern) {
			return New(ErrCodeInvalidInput, "version %q contains invalid characters: %q", version, pattern)
		}
	}

	return nil
}

// ValidateAssetName validates a release asset filename for safety.
// It ensures the filename is a simple basename without path components,
// since it is used both in a download URL and to pick an archive format.
func ValidateAssetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidManifest, "asset name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidManifest, "asset name %q cannot contain path separators", name)
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidManifest, "asset name %q is not a file name", name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "asset name contains invalid control characters")
		}
	}

	return nil
}

// ValidateEntryName validates the flattened base name of an archive entry
// before it is written into the extensions directory.
//
// Validation rules:
//   - Name cannot be empty, "." or ".."
//   - No path separators (the caller flattens entries first)
//   - No null bytes or control characters
func ValidateEntryName(name string) error {
	if name == "" || name == "." || name == ".." {
		return New(ErrCodeInvalidPath, "archive entry name %q is not a file name", name)
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "archive entry name %q cannot contain path separators", name)
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "archive entry name contains invalid characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
