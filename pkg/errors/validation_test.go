package errors

import (
	"strings"
	"testing"
)

func TestValidateReference(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"gh form", "gh:asg017/sqlite-vec", false},
		{"gh form with version", "gh:asg017/sqlite-vec@v0.1.0", false},
		{"url form", "https://github.com/asg017/sqlite-vec", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "gh:a/b\x00", true},
		{"newline", "gh:a/b\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReference(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateReference(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeUnresolvableReference) {
				t.Errorf("ValidateReference(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeUnresolvableReference)
			}
		})
	}
}

func TestValidateVersion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"semver tag", "v0.1.0", false},
		{"prerelease tag", "v0.1.0-alpha.3", false},
		{"build metadata", "v1.0.0+build.5", false},
		{"plain", "nightly", false},
		{"monorepo tag", "ext/v1.0", false},

		{"empty", "", true},
		{"slash traversal", "v1/../../x", true},
		{"leading slash", "/v1", true},
		{"trailing slash", "v1/", true},
		{"empty segment", "ext//v1", true},
		{"traversal", "..", true},
		{"backslash", "v1\\x", true},
		{"query", "v1?x=1", true},
		{"space", "v1 0", true},
		{"too long", strings.Repeat("1", 200), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVersion(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateVersion(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateAssetName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"tarball", "sqlite-vec-0.1.0-loadable-linux-x86_64.tar.gz", false},
		{"zip", "sqlite-vec-0.1.0-loadable-windows-x86_64.zip", false},

		{"empty", "", true},
		{"with path /", "path/to/file.tar.gz", true},
		{"with path \\", "path\\file.zip", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"control", "a\x01.zip", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAssetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAssetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEntryName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"shared object", "vec0.so", false},
		{"dylib", "vec0.dylib", false},
		{"no extension", "LICENSE", false},

		{"empty", "", true},
		{"dot", ".", true},
		{"dotdot", "..", true},
		{"nested", "lib/vec0.so", true},
		{"null byte", "vec0\x00.so", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntryName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/path", false},
		{"http", "http://example.com/path", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
