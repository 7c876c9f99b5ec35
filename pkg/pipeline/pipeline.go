// Package pipeline runs spm's project-level commands.
//
// A project is a directory holding spm.toml, the spm.lock generated from
// it, and the sqlite_extensions/ directory extensions are installed into.
// The [Runner] ties the lower layers together:
//
//	add      parse → resolve version → update spm.toml → lock → install
//	install  lock → install
//	ci       install from the existing spm.lock
//	activate compute the library search path
//	run      library search path → spawn child
//
// # Usage
//
//	runner := pipeline.NewRunner(gh, pipeline.Options{}, logger)
//	project, err := pipeline.NewProject(".")
//	if err != nil {
//	    return err
//	}
//	installed, err := runner.Install(ctx, project)
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/spm/pkg/lockfile"
	"github.com/matzehuels/spm/pkg/manifest"
	"github.com/matzehuels/spm/pkg/platform"
)

// ExtensionsDirName is the directory extensions are installed into,
// relative to the project root.
const ExtensionsDirName = "sqlite_extensions"

// extensionsGitignore keeps installed binaries out of version control.
const extensionsGitignore = "*"

// =============================================================================
// Project - On-disk Layout
// =============================================================================

// Project locates the files of one spm project.
type Project struct {
	Dir string // absolute project root
}

// NewProject returns the project rooted at dir. An empty dir means the
// working directory.
func NewProject(dir string) (Project, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Project{}, fmt.Errorf("resolve project directory %s: %w", dir, err)
	}
	return Project{Dir: abs}, nil
}

// ManifestPath is <dir>/spm.toml.
func (p Project) ManifestPath() string {
	return filepath.Join(p.Dir, manifest.Filename)
}

// LockfilePath is <dir>/spm.lock.
func (p Project) LockfilePath() string {
	return filepath.Join(p.Dir, lockfile.Filename)
}

// ExtensionsDir is <dir>/sqlite_extensions.
func (p Project) ExtensionsDir() string {
	return filepath.Join(p.Dir, ExtensionsDirName)
}

// HasManifest reports whether spm.toml exists.
func (p Project) HasManifest() bool {
	return exists(p.ManifestPath())
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// Options - Runner Configuration
// =============================================================================

// Options configures a Runner. The zero value targets the host.
type Options struct {
	// Platform selects which release artifact is installed.
	// Zero means platform.Current().
	Platform platform.Platform

	// LibraryPath names the search-path variable for activate and run.
	// Zero means platform.CurrentLibraryPath().
	LibraryPath platform.LibraryPath

	// Refresh bypasses cached release manifests.
	Refresh bool
}

// withDefaults fills zero fields from the running host.
func (o Options) withDefaults() Options {
	if o.Platform == (platform.Platform{}) {
		o.Platform = platform.Current()
	}
	if o.LibraryPath == (platform.LibraryPath{}) {
		o.LibraryPath = platform.CurrentLibraryPath()
	}
	return o
}
