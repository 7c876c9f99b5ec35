// Package libpath computes the dynamic-library search path that makes a
// project's installed extensions loadable.
//
// The resulting value keeps whatever the environment already had, appends
// the project's preload directories, and puts the extensions directory
// last:
//
//	existing..., preloads..., <project>/sqlite_extensions
package libpath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/spm/pkg/errors"
)

// Resolve builds the search-path value.
//
// existing is the variable's current value; empty contributes nothing.
// Absolute preloads are used verbatim. Relative preloads are resolved
// against baseDir and must exist. Every segment is checked for sep before
// joining.
func Resolve(existing string, preloads []string, baseDir, extensionsDir string, sep rune) (string, error) {
	var segments []string
	if existing != "" {
		segments = strings.Split(existing, string(sep))
	}

	for _, p := range preloads {
		dir, err := resolvePreload(p, baseDir)
		if err != nil {
			return "", err
		}
		segments = append(segments, dir)
	}
	segments = append(segments, extensionsDir)

	return Join(segments, sep)
}

// Join joins segments with sep. A segment that itself contains sep cannot
// be represented and is rejected.
func Join(segments []string, sep rune) (string, error) {
	for _, s := range segments {
		if strings.ContainsRune(s, sep) {
			return "", errors.New(errors.ErrCodeInvalidPathSegment,
				"path segment %q contains the separator %q", s, string(sep))
		}
	}
	return strings.Join(segments, string(sep)), nil
}

func resolvePreload(p, baseDir string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}

	joined := filepath.Join(baseDir, p)
	if _, err := os.Stat(joined); err != nil {
		return "", errors.Wrap(errors.ErrCodePreloadDirectoryNotFound, err,
			"could not find the preload directory %q", p)
	}
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePreloadDirectoryNotFound, err,
			"could not find the preload directory %q", p)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodePreloadDirectoryNotFound, err,
			"could not find the preload directory %q", p)
	}
	return canonical, nil
}
