package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spm/pkg/errors"
	"github.com/matzehuels/spm/pkg/install"
	"github.com/matzehuels/spm/pkg/integrations/github"
	"github.com/matzehuels/spm/pkg/libpath"
	"github.com/matzehuels/spm/pkg/lockfile"
	"github.com/matzehuels/spm/pkg/manifest"
	"github.com/matzehuels/spm/pkg/platform"
	"github.com/matzehuels/spm/pkg/reference"
	"github.com/matzehuels/spm/pkg/resolver"
)

// Runner executes project commands. It holds no per-project state, so one
// Runner can serve any number of projects.
type Runner struct {
	Resolver    *resolver.Resolver
	Installer   *install.Installer
	LibraryPath platform.LibraryPath
	Logger      *log.Logger
}

// NewRunner creates a runner backed by gh. A nil gh talks to github.com
// without a cache; a nil logger uses log.Default().
func NewRunner(gh *github.Client, opts Options, logger *log.Logger) *Runner {
	if gh == nil {
		gh = github.NewClient()
	}
	if logger == nil {
		logger = log.Default()
	}
	opts = opts.withDefaults()

	res := resolver.New(gh, logger)
	res.Refresh = opts.Refresh

	return &Runner{
		Resolver:    res,
		Installer:   install.New(gh, install.WithPlatform(opts.Platform), install.WithLogger(logger)),
		LibraryPath: opts.LibraryPath,
		Logger:      logger,
	}
}

// =============================================================================
// init
// =============================================================================

// InitResult reports what Init created.
type InitResult struct {
	CreatedManifest      bool
	CreatedExtensionsDir bool
}

// Init creates spm.toml and sqlite_extensions/ (with a catch-all
// .gitignore) when they do not exist. Existing files are left untouched.
func (r *Runner) Init(p Project) (InitResult, error) {
	var res InitResult

	if !p.HasManifest() {
		if err := os.WriteFile(p.ManifestPath(), []byte(manifest.InitialContents), 0o644); err != nil {
			return res, fmt.Errorf("write %s: %w", p.ManifestPath(), err)
		}
		res.CreatedManifest = true
		r.Logger.Debug("created manifest", "path", p.ManifestPath())
	}

	if !exists(p.ExtensionsDir()) {
		if err := os.Mkdir(p.ExtensionsDir(), 0o755); err != nil {
			return res, fmt.Errorf("create %s: %w", p.ExtensionsDir(), err)
		}
		gitignore := filepath.Join(p.ExtensionsDir(), ".gitignore")
		if err := os.WriteFile(gitignore, []byte(extensionsGitignore), 0o644); err != nil {
			return res, fmt.Errorf("write %s: %w", gitignore, err)
		}
		res.CreatedExtensionsDir = true
		r.Logger.Debug("created extensions directory", "path", p.ExtensionsDir())
	}

	return res, nil
}

// =============================================================================
// add
// =============================================================================

// AddResult reports the outcome of Add.
type AddResult struct {
	Key        string // spm.toml key the package was written under
	Resolution resolver.Resolution
	Installed  []install.Installed
}

// Add resolves raw, records it in spm.toml under its canonical name, then
// regenerates spm.lock and installs. With artifacts the table form is
// written; without, the bare version string.
//
// spm.toml and spm.lock are written only after the new lockfile has been
// built, so a package that cannot be locked leaves the project unchanged.
func (r *Runner) Add(ctx context.Context, p Project, raw string, artifacts []string, prerelease bool) (*AddResult, error) {
	id, err := reference.Parse(raw, prerelease)
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(p.ManifestPath())
	if err != nil {
		return nil, err
	}

	res, err := r.Resolver.ResolveVersion(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Prerelease {
		r.Logger.Info("resolved a prerelease", "package", id.LookupName(), "version", res.Version)
	} else {
		r.Logger.Info("resolved", "package", id.LookupName(), "version", res.Version)
	}

	key := id.LookupName()
	if len(artifacts) > 0 {
		m.SetExtension(key, manifest.Configured(res.Version, artifacts))
	} else {
		m.SetExtension(key, manifest.Pinned(res.Version))
	}

	doc, err := r.Resolver.BuildLock(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := m.Save(p.ManifestPath()); err != nil {
		return nil, err
	}
	if err := doc.Save(p.LockfilePath()); err != nil {
		return nil, err
	}

	installed, err := r.install(ctx, p, doc)
	if err != nil {
		return nil, err
	}
	return &AddResult{Key: key, Resolution: res, Installed: installed}, nil
}

// =============================================================================
// install / ci
// =============================================================================

// Lock regenerates spm.lock from spm.toml and returns it.
func (r *Runner) Lock(ctx context.Context, p Project) (*lockfile.Document, error) {
	m, err := manifest.Load(p.ManifestPath())
	if err != nil {
		return nil, err
	}
	doc, err := r.Resolver.BuildLock(ctx, m)
	if err != nil {
		return nil, err
	}
	if err := doc.Save(p.LockfilePath()); err != nil {
		return nil, err
	}
	r.Logger.Debug("wrote lockfile", "path", p.LockfilePath(), "extensions", len(doc.Extensions))
	return doc, nil
}

// Install regenerates spm.lock and installs every entry.
func (r *Runner) Install(ctx context.Context, p Project) ([]install.Installed, error) {
	doc, err := r.Lock(ctx, p)
	if err != nil {
		return nil, err
	}
	return r.install(ctx, p, doc)
}

// CleanInstall installs exactly what spm.lock records, without contacting
// the release API or regenerating the lockfile.
func (r *Runner) CleanInstall(ctx context.Context, p Project) ([]install.Installed, error) {
	if !p.HasManifest() {
		return nil, missingManifest(p)
	}
	doc, err := lockfile.Load(p.LockfilePath())
	if err != nil {
		return nil, err
	}
	return r.install(ctx, p, doc)
}

func (r *Runner) install(ctx context.Context, p Project, doc *lockfile.Document) ([]install.Installed, error) {
	if !p.HasManifest() {
		return nil, missingManifest(p)
	}
	installed, err := r.Installer.Install(ctx, doc, p.ExtensionsDir())
	for _, in := range installed {
		r.Logger.Info("installed", "package", in.Ref, "version", in.Version, "files", len(in.Files))
	}
	return installed, err
}

func missingManifest(p Project) error {
	return errors.New(errors.ErrCodeMissingProjectFiles, "no %s found in %s", manifest.Filename, p.Dir)
}

// =============================================================================
// activate / run
// =============================================================================

// ResolveLibraryPath computes the search-path value for p, given the
// variable's current value.
func (r *Runner) ResolveLibraryPath(p Project, existing string) (string, error) {
	m, err := manifest.Load(p.ManifestPath())
	if err != nil {
		return "", err
	}
	return libpath.Resolve(existing, m.PreloadDirectories, p.Dir, p.ExtensionsDir(), r.LibraryPath.Separator)
}

// Environment returns the search-path variable assignment for p, using
// the current process environment as the existing value.
func (r *Runner) Environment(p Project) (name, value string, err error) {
	value, err = r.ResolveLibraryPath(p, os.Getenv(r.LibraryPath.VariableName))
	if err != nil {
		return "", "", err
	}
	return r.LibraryPath.VariableName, value, nil
}

// Stdio is the standard streams handed to a child process.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Run executes program with the project's library search path set in its
// environment only. It returns the child's exit code; a child killed by a
// signal reports 1. A non-nil error means the child could not be started.
//
// Cancelling ctx interrupts the child instead of killing it, and Run still
// waits for the child's own exit status.
func (r *Runner) Run(ctx context.Context, p Project, program string, args []string, stdio Stdio) (int, error) {
	name, value, err := r.Environment(p)
	if err != nil {
		return 1, err
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.Env = setEnv(os.Environ(), name, value)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err

	r.Logger.Debug("running", "program", program, name, value)
	err = cmd.Run()

	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			return code, nil
		}
		return 1, nil
	}
	if err != nil {
		return 1, fmt.Errorf("run %s: %w", program, err)
	}
	return 0, nil
}

// setEnv returns env with name set to value, replacing any existing entry.
func setEnv(env []string, name, value string) []string {
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		k, _, _ := strings.Cut(kv, "=")
		if k == name || (runtime.GOOS == "windows" && strings.EqualFold(k, name)) {
			continue
		}
		out = append(out, kv)
	}
	return append(out, name+"="+value)
}
