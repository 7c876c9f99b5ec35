// Package resolver turns package references into pinned, verifiable lock
// entries.
//
// It covers three steps of the install pipeline:
//
//   - [Resolver.ResolveVersion] picks a release tag when the reference
//     names none.
//   - [Resolver.FetchManifest] downloads the release's spm.json.
//   - [Resolver.BuildLock] does both for every spm.toml entry and assembles
//     a complete lockfile.
//
// All network access goes through a [github.Client], so results are cached
// and observed the same way everywhere.
package resolver

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/mod/semver"

	"github.com/matzehuels/spm/pkg/errors"
	"github.com/matzehuels/spm/pkg/integrations"
	"github.com/matzehuels/spm/pkg/integrations/github"
	"github.com/matzehuels/spm/pkg/lockfile"
	"github.com/matzehuels/spm/pkg/manifest"
	"github.com/matzehuels/spm/pkg/observability"
	"github.com/matzehuels/spm/pkg/reference"
)

// Resolver resolves references against GitHub releases.
type Resolver struct {
	GitHub  *github.Client
	Logger  *log.Logger
	Refresh bool // skip cached release manifests
}

// New creates a resolver. A nil client talks to github.com without a
// cache; a nil logger uses log.Default().
func New(gh *github.Client, logger *log.Logger) *Resolver {
	if gh == nil {
		gh = github.NewClient()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{GitHub: gh, Logger: logger}
}

// Resolution is the outcome of ResolveVersion.
type Resolution struct {
	Identity   reference.Identity // pinned to Version
	Version    string
	Prerelease bool // tag carries a semver prerelease suffix; display only
}

// ResolveVersion returns the identity's version unchanged when it has one.
// Otherwise it asks GitHub for the latest release, or the latest release of
// any kind when the identity was parsed with prerelease set.
func (r *Resolver) ResolveVersion(ctx context.Context, id reference.Identity) (Resolution, error) {
	if id.HasVersion() {
		return newResolution(id, id.Version), nil
	}

	var (
		tag string
		err error
	)
	switch id.Kind {
	case reference.KindHostedRelease:
		if id.Prerelease {
			tag, err = r.GitHub.LatestPrereleaseTag(ctx, id.Owner, id.Repo)
		} else {
			tag, err = r.GitHub.LatestTag(ctx, id.Owner, id.Repo)
		}
	default:
		return Resolution{}, errors.New(errors.ErrCodeUnresolvableReference, "no resolver for %s", id)
	}
	if err != nil {
		if github.IsMalformed(err) {
			return Resolution{}, errors.Wrap(errors.ErrCodeMalformedRemoteResponse, err,
				"unexpected release response for %s", id.LookupName())
		}
		return Resolution{}, errors.Wrap(errors.ErrCodeRemoteResolutionFailed, err,
			"could not resolve the latest version of %s", id.LookupName())
	}
	if err := errors.ValidateVersion(tag); err != nil {
		return Resolution{}, errors.Wrap(errors.ErrCodeMalformedRemoteResponse, err,
			"unusable release tag for %s", id.LookupName())
	}

	res := newResolution(id, tag)
	r.Logger.Debug("resolved version", "package", id.LookupName(), "version", tag, "prerelease", res.Prerelease)
	return res, nil
}

func newResolution(id reference.Identity, version string) Resolution {
	return Resolution{
		Identity:   id.WithVersion(version),
		Version:    version,
		Prerelease: IsPrerelease(version),
	}
}

// IsPrerelease reports whether tag is a semantic version with a
// prerelease suffix, e.g. "v0.1.0-alpha.3". Tags that are not semver are
// never prereleases.
func IsPrerelease(tag string) bool {
	v := tag
	if v != "" && v[0] != 'v' {
		v = "v" + v
	}
	return semver.IsValid(v) && semver.Prerelease(v) != ""
}

// ManifestURL returns where the release manifest for id is published.
func (r *Resolver) ManifestURL(id reference.Identity) string {
	return r.GitHub.ManifestURL(id.Owner, id.Repo, id.Version)
}

// FetchManifest downloads and decodes spm.json for a pinned identity.
func (r *Resolver) FetchManifest(ctx context.Context, id reference.Identity) (*lockfile.ReleaseManifest, error) {
	url := r.ManifestURL(id)

	var m lockfile.ReleaseManifest
	if err := r.GitHub.FetchManifest(ctx, id.Owner, id.Repo, id.Version, r.Refresh, &m); err != nil {
		if stderrors.Is(err, integrations.ErrDecode) {
			return nil, errors.Wrap(errors.ErrCodeManifestDecodeFailed, err, "invalid release manifest at %s", url)
		}
		return nil, errors.Wrap(errors.ErrCodeManifestFetchFailed, err, "could not fetch %s", url)
	}

	r.Logger.Debug("fetched release manifest", "url", url, "platforms", len(m.Loadable))
	return &m, nil
}

// BuildLock resolves every entry of m into a lockfile document. Entries are
// processed in sorted key order and the first failure aborts the build, so
// a document is returned only when every entry resolved.
func (r *Resolver) BuildLock(ctx context.Context, m *manifest.Manifest) (doc *lockfile.Document, err error) {
	refs := m.Refs()

	hooks := observability.Pipeline()
	hooks.OnLockStart(ctx, len(refs))
	start := time.Now()
	defer func() {
		hooks.OnLockComplete(ctx, len(refs), time.Since(start), err)
	}()

	doc = lockfile.New()
	for _, ref := range refs {
		entry, err := r.lockEntry(ctx, ref, m.Extensions[ref])
		if err != nil {
			return nil, err
		}
		doc.Extensions[ref] = entry
	}
	return doc, nil
}

func (r *Resolver) lockEntry(ctx context.Context, ref string, def manifest.Definition) (lockfile.Entry, error) {
	id, err := reference.Parse(ref, false)
	if err != nil {
		return lockfile.Entry{}, err
	}

	version := def.Version
	if version == "" {
		version = id.Version
	}
	if version == "" {
		return lockfile.Entry{}, errors.New(errors.ErrCodeInvalidManifest,
			"extension %q has no version", ref)
	}
	if err := errors.ValidateVersion(version); err != nil {
		return lockfile.Entry{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "extension %q", ref)
	}
	id = id.WithVersion(version)

	var rm *lockfile.ReleaseManifest
	switch id.Kind {
	case reference.KindHostedRelease:
		rm, err = r.FetchManifest(ctx, id)
	default:
		err = errors.New(errors.ErrCodeUnresolvableReference, "no resolver for %s", ref)
	}
	if err != nil {
		return lockfile.Entry{}, err
	}

	for _, dup := range rm.Duplicates() {
		r.Logger.Warn("release manifest lists a platform twice, using the first entry",
			"package", ref, "platform", dup)
	}

	return lockfile.Entry{
		Version:             version,
		Artifacts:           def.AllowList(),
		ResolvedURL:         r.GitHub.RepoURL(id.Owner, id.Repo),
		ResolvedManifestURL: r.ManifestURL(id),
		Integrity:           "",
		Manifest:            *rm,
	}, nil
}
