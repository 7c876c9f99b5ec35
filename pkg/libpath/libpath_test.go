package libpath

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/spm/pkg/errors"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		preloads []string
		sep      rune
		want     string
	}{
		{
			name:     "existing then absolute preload then extensions",
			existing: "/a:/b",
			preloads: []string{"/c"},
			sep:      ':',
			want:     "/a:/b:/c:/proj/sqlite_extensions",
		},
		{
			name: "empty environment",
			sep:  ':',
			want: "/proj/sqlite_extensions",
		},
		{
			name:     "preload order is kept",
			preloads: []string{"/x", "/y"},
			sep:      ':',
			want:     "/x:/y:/proj/sqlite_extensions",
		},
		{
			name:     "windows separator",
			existing: "/a",
			sep:      ';',
			want:     "/a;/proj/sqlite_extensions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.existing, tt.preloads, "/proj", "/proj/sqlite_extensions", tt.sep)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveRelativePreload(t *testing.T) {
	base := t.TempDir()
	if err := os.Mkdir(filepath.Join(base, "vendor"), 0o755); err != nil {
		t.Fatal(err)
	}
	canonicalBase, err := filepath.EvalSymlinks(base)
	if err != nil {
		t.Fatal(err)
	}

	ext := filepath.Join(base, "sqlite_extensions")
	got, err := Resolve("", []string{"vendor"}, base, ext, ':')
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := filepath.Join(canonicalBase, "vendor") + ":" + ext
	if got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestResolveMissingPreload(t *testing.T) {
	base := t.TempDir()
	_, err := Resolve("", []string{"missing"}, base, filepath.Join(base, "sqlite_extensions"), ':')
	if !errors.Is(err, errors.ErrCodePreloadDirectoryNotFound) {
		t.Fatalf("error = %v, want PRELOAD_DIRECTORY_NOT_FOUND", err)
	}
}

func TestResolveSeparatorInSegment(t *testing.T) {
	_, err := Resolve("", []string{"/odd:dir"}, "/proj", "/proj/sqlite_extensions", ':')
	if !errors.Is(err, errors.ErrCodeInvalidPathSegment) {
		t.Fatalf("error = %v, want INVALID_PATH_SEGMENT", err)
	}

	_, err = Resolve("", nil, "/proj", "/pr;oj/sqlite_extensions", ';')
	if !errors.Is(err, errors.ErrCodeInvalidPathSegment) {
		t.Fatalf("error = %v, want INVALID_PATH_SEGMENT", err)
	}
}
