// Package reference parses the package references users type on the
// command line and write as keys in spm.toml.
//
// Three spellings name the same GitHub repository:
//
//	gh:asg017/sqlite-vec@v0.1.0
//	https://github.com/asg017/sqlite-vec@v0.1.0
//	github.com/asg017/sqlite-vec@v0.1.0
//
// The version after the first "@" is optional; without it the resolver
// picks the latest release.
package reference

import (
	"net/url"
	"strings"

	"github.com/matzehuels/spm/pkg/errors"
	"github.com/matzehuels/spm/pkg/integrations/github"
)

// Kind identifies which resolver handles a reference.
type Kind int

const (
	// KindHostedRelease is a package distributed as GitHub release assets.
	KindHostedRelease Kind = iota + 1
)

// String returns the kind's name.
func (k Kind) String() string {
	switch k {
	case KindHostedRelease:
		return "hosted-release"
	default:
		return "unknown"
	}
}

// GitHubHost is the only host references may point at.
const GitHubHost = "github.com"

const (
	prefixShort = "gh:"
	prefixBare  = GitHubHost + "/"
)

// Identity is a parsed reference. It lives only for the duration of one
// command; spm.toml and spm.lock keep the reference string itself.
type Identity struct {
	Kind       Kind
	Host       string
	Owner      string
	Repo       string
	Version    string // empty when the reference names no version
	Prerelease bool   // resolve against prereleases when Version is empty
}

// Parse parses raw into an Identity. prerelease is carried through to the
// version resolver and only matters when raw names no version.
//
// Parse never panics; every unrecognized input fails with
// errors.ErrCodeUnresolvableReference.
func Parse(raw string, prerelease bool) (Identity, error) {
	if err := errors.ValidateReference(raw); err != nil {
		return Identity{}, err
	}

	var path string
	switch {
	case strings.HasPrefix(raw, prefixShort):
		path = strings.TrimPrefix(raw, prefixShort)
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Identity{}, errors.Wrap(errors.ErrCodeUnresolvableReference, err, "cannot parse %q as a URL", raw)
		}
		if !strings.EqualFold(u.Hostname(), GitHubHost) {
			return Identity{}, errors.New(errors.ErrCodeUnresolvableReference,
				"unsupported host %q in %q: only %s references are supported", u.Host, raw, GitHubHost)
		}
		path = strings.TrimPrefix(u.Path, "/")
	case strings.HasPrefix(raw, prefixBare):
		path = strings.TrimPrefix(raw, prefixBare)
	default:
		return Identity{}, errors.New(errors.ErrCodeUnresolvableReference,
			"cannot resolve %q: use gh:<owner>/<repo>, github.com/<owner>/<repo> or https://github.com/<owner>/<repo>", raw)
	}

	id, err := parsePath(raw, path)
	if err != nil {
		return Identity{}, err
	}
	id.Prerelease = prerelease
	return id, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level values built from literals.
func MustParse(raw string) Identity {
	id, err := Parse(raw, false)
	if err != nil {
		panic(err)
	}
	return id
}

// parsePath splits "<owner>/<repo>[@<version>][/...]". Segments after the
// repository are ignored so browser URLs such as .../tree/main still parse.
func parsePath(raw, path string) (Identity, error) {
	segments := strings.Split(path, "/")

	owner := segments[0]
	if owner == "" {
		return Identity{}, errors.New(errors.ErrCodeUnresolvableReference, "%q: github owner name required", raw)
	}
	if len(segments) < 2 || segments[1] == "" {
		return Identity{}, errors.New(errors.ErrCodeUnresolvableReference, "%q: github repo name required", raw)
	}

	repo, version, hasVersion := strings.Cut(segments[1], "@")
	if repo == "" {
		return Identity{}, errors.New(errors.ErrCodeUnresolvableReference, "%q: github repo name required", raw)
	}
	if hasVersion && version == "" {
		return Identity{}, errors.New(errors.ErrCodeUnresolvableReference, "%q: empty version after @", raw)
	}
	if err := github.ValidateRepoRef(owner, repo); err != nil {
		return Identity{}, errors.Wrap(errors.ErrCodeUnresolvableReference, err, "%q", raw)
	}
	if hasVersion {
		if err := errors.ValidateVersion(version); err != nil {
			return Identity{}, errors.Wrap(errors.ErrCodeUnresolvableReference, err, "%q", raw)
		}
	}

	return Identity{
		Kind:    KindHostedRelease,
		Host:    GitHubHost,
		Owner:   owner,
		Repo:    repo,
		Version: version,
	}, nil
}

// LookupName is the canonical, form-independent name of the package:
// "https://github.com/<owner>/<repo>".
func (id Identity) LookupName() string {
	return "https://" + id.Host + "/" + id.Owner + "/" + id.Repo
}

// BaseURL is the canonical repository URL recorded as resolved_url.
func (id Identity) BaseURL() string {
	return id.LookupName()
}

// HasVersion reports whether the reference pinned a version.
func (id Identity) HasVersion() bool {
	return id.Version != ""
}

// WithVersion returns a copy of id pinned to version.
func (id Identity) WithVersion(version string) Identity {
	id.Version = version
	return id
}

// String renders the identity in the short gh: form.
func (id Identity) String() string {
	s := prefixShort + id.Owner + "/" + id.Repo
	if id.Version != "" {
		s += "@" + id.Version
	}
	return s
}
