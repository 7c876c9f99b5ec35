// Package install downloads locked release assets, verifies them and
// unpacks the extension libraries into a project's extensions directory.
//
// For every lockfile entry the installer:
//
//  1. picks the artifact built for the target os/cpu,
//  2. downloads it in full,
//  3. compares its SHA-256 digest with the one the release manifest
//     published, and
//  4. extracts the allowed files, flattened, into the extensions directory.
//
// Nothing is written for an entry whose digest does not match.
package install

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/spm/pkg/errors"
	"github.com/matzehuels/spm/pkg/integrations/github"
	"github.com/matzehuels/spm/pkg/lockfile"
	"github.com/matzehuels/spm/pkg/observability"
	"github.com/matzehuels/spm/pkg/platform"
)

// Downloader fetches a URL in full. *github.Client satisfies it.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// Installer installs lockfile entries for one platform.
type Installer struct {
	downloader Downloader
	platform   platform.Platform
	logger     *log.Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithPlatform installs artifacts built for p instead of the host.
func WithPlatform(p platform.Platform) Option {
	return func(i *Installer) {
		i.platform = p
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *log.Logger) Option {
	return func(i *Installer) {
		if l != nil {
			i.logger = l
		}
	}
}

// New creates an installer targeting platform.Current().
func New(d Downloader, opts ...Option) *Installer {
	i := &Installer{
		downloader: d,
		platform:   platform.Current(),
		logger:     log.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Platform returns the os/cpu pair artifacts are matched against.
func (i *Installer) Platform() platform.Platform {
	return i.platform
}

// Installed describes one extension written to disk.
type Installed struct {
	Ref     string
	Version string
	Asset   string
	Files   []string // base names, in archive order
}

// Install installs every entry of doc into dir, in sorted key order. dir is
// created if missing. The first failure stops the install; files written
// for earlier entries are left in place.
func (i *Installer) Install(ctx context.Context, doc *lockfile.Document, dir string) ([]Installed, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var out []Installed
	for _, ref := range doc.Refs() {
		res, err := i.InstallEntry(ctx, ref, doc.Extensions[ref], dir)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// InstallEntry installs a single lockfile entry into dir.
func (i *Installer) InstallEntry(ctx context.Context, ref string, e lockfile.Entry, dir string) (res Installed, err error) {
	artifact, ok := e.Manifest.Find(i.platform.OS, i.platform.CPU)
	if !ok {
		return Installed{}, errors.New(errors.ErrCodeNoMatchingPlatform,
			"%s@%s has no artifact for os %q cpu %q", ref, e.Version, i.platform.OS, i.platform.CPU)
	}
	if err := errors.ValidateAssetName(artifact.AssetName); err != nil {
		return Installed{}, err
	}

	hooks := observability.Pipeline()
	hooks.OnInstallStart(ctx, ref, artifact.AssetName)
	start := time.Now()
	defer func() {
		hooks.OnInstallComplete(ctx, ref, len(res.Files), time.Since(start), err)
	}()

	format, err := DetectFormat(artifact.AssetName)
	if err != nil {
		return Installed{}, err
	}

	url := github.AssetURL(e.ResolvedURL, e.Version, artifact.AssetName)
	i.logger.Debug("downloading", "package", ref, "url", url)
	data, err := i.downloader.Download(ctx, url)
	if err != nil {
		return Installed{}, errors.Wrap(errors.ErrCodeDownloadFailed, err, "could not download %s", url)
	}

	if err := Verify(data, artifact.AssetSHA256); err != nil {
		return Installed{}, errors.Wrap(errors.ErrCodeIntegrityMismatch, err, "%s from %s", ref, url)
	}

	files, err := Extract(format, data, e.Artifacts, dir)
	if err != nil {
		return Installed{Ref: ref, Version: e.Version, Asset: artifact.AssetName, Files: files}, err
	}

	i.logger.Debug("installed", "package", ref, "version", e.Version, "files", len(files))
	return Installed{Ref: ref, Version: e.Version, Asset: artifact.AssetName, Files: files}, nil
}

// Verify compares the SHA-256 digest of data with the expected hex digest.
// Hex case is ignored.
func Verify(data []byte, expected string) error {
	sum := sha256.Sum256(data)
	actual := hex.EncodeToString(sum[:])
	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("sha256 mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}
