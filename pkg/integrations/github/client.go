package github

import (
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/spm/pkg/buildinfo"
	"github.com/matzehuels/spm/pkg/cache"
	"github.com/matzehuels/spm/pkg/integrations"
)

const (
	// DefaultAPIURL is the GitHub REST API base.
	DefaultAPIURL = "https://api.github.com"

	// DefaultDownloadURL is the host serving release assets.
	DefaultDownloadURL = "https://github.com"

	// ManifestFilename is the release asset describing per-platform artifacts.
	ManifestFilename = "spm.json"
)

// Client resolves release tags and downloads release assets.
type Client struct {
	api      *integrations.Client
	download *integrations.Client

	apiURL      string
	downloadURL string
	token       string
	userAgent   string
	httpClient  *http.Client
	timeout     time.Duration
	cache       cache.Cache
	cacheTTL    time.Duration
	keyer       cache.Keyer
}

// Option configures a Client during construction.
type Option func(*Client)

// WithAPIURL overrides the GitHub API base URL, primarily for test servers.
func WithAPIURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.apiURL = strings.TrimRight(base, "/")
		}
	}
}

// WithDownloadURL overrides the release download host, for mirrors and tests.
func WithDownloadURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.downloadURL = strings.TrimRight(base, "/")
		}
	}
}

// WithToken sets a GitHub personal access token for API requests.
// Authenticated requests have a higher rate limit (5000/hour vs 60/hour).
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient sets a custom HTTP client, useful for tests or proxies.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// WithTimeout sets the per-request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithCache stores fetched release manifests in ch for ttl (zero = forever).
func WithCache(ch cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = ch
		c.cacheTTL = ttl
	}
}

// WithKeyer overrides how manifest cache keys are built.
func WithKeyer(k cache.Keyer) Option {
	return func(c *Client) {
		if k != nil {
			c.keyer = k
		}
	}
}

// NewClient creates a Client. Without options it talks to github.com
// anonymously and caches nothing.
func NewClient(opts ...Option) *Client {
	c := &Client{
		apiURL:      DefaultAPIURL,
		downloadURL: DefaultDownloadURL,
		userAgent:   buildinfo.UserAgent(),
		keyer:       cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(c)
	}

	apiHeaders := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
		"User-Agent":           c.userAgent,
	}
	if c.token != "" {
		apiHeaders["Authorization"] = "Bearer " + c.token
	}
	downloadHeaders := map[string]string{
		"User-Agent": c.userAgent,
	}

	httpOpts := func() []integrations.Option {
		var o []integrations.Option
		if c.httpClient != nil {
			o = append(o, integrations.WithHTTPClient(c.httpClient))
		}
		if c.timeout > 0 {
			o = append(o, integrations.WithTimeout(c.timeout))
		}
		return o
	}

	c.api = integrations.NewClient(nil, "", 0, apiHeaders, httpOpts()...)
	c.download = integrations.NewClient(c.cache, "github:", c.cacheTTL, downloadHeaders, httpOpts()...)
	return c
}

// RepoURL returns the base URL of a repository on the download host,
// e.g. "https://github.com/asg017/sqlite-vec".
func (c *Client) RepoURL(owner, repo string) string {
	return c.downloadURL + "/" + owner + "/" + repo
}

// ManifestURL returns the URL of the release manifest published with a tag.
func (c *Client) ManifestURL(owner, repo, version string) string {
	return AssetURL(c.RepoURL(owner, repo), version, ManifestFilename)
}

// AssetURL joins a repository base URL, a tag and an asset name into the
// release download URL "<base>/releases/download/<tag>/<asset>".
func AssetURL(repoURL, version, asset string) string {
	return strings.TrimRight(repoURL, "/") + "/releases/download/" + version + "/" + asset
}
