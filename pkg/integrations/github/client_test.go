package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/spm/pkg/cache"
	"github.com/matzehuels/spm/pkg/integrations"
)

// fakeGitHub serves the API and download endpoints from one router.
type fakeGitHub struct {
	*httptest.Server
	manifestHits int
	lastAuth     string
	lastDLAuth   string
	lastUA       string
}

func newFakeGitHub(t *testing.T) *fakeGitHub {
	t.Helper()
	f := &fakeGitHub{}
	r := chi.NewRouter()

	r.Get("/repos/{owner}/{repo}/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		f.lastAuth = r.Header.Get("Authorization")
		f.lastUA = r.Header.Get("User-Agent")
		switch chi.URLParam(r, "repo") {
		case "missing":
			http.NotFound(w, r)
		case "notag":
			w.Write([]byte(`{"name":"x"}`))
		case "numtag":
			w.Write([]byte(`{"tag_name":42}`))
		case "html":
			w.Write([]byte(`<html>`))
		default:
			w.Write([]byte(`{"tag_name":"v0.1.0","prerelease":false}`))
		}
	})
	r.Get("/repos/{owner}/{repo}/releases", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("per_page") != "1" {
			t.Errorf("per_page = %q, want 1", r.URL.Query().Get("per_page"))
		}
		switch chi.URLParam(r, "repo") {
		case "empty":
			w.Write([]byte(`[]`))
		default:
			w.Write([]byte(`[{"tag_name":"v0.2.0-alpha.1","prerelease":true},{"tag_name":"v0.1.0"}]`))
		}
	})
	r.Get("/{owner}/{repo}/releases/download/{version}/{asset}", func(w http.ResponseWriter, r *http.Request) {
		f.lastDLAuth = r.Header.Get("Authorization")
		switch chi.URLParam(r, "asset") {
		case ManifestFilename:
			f.manifestHits++
			if chi.URLParam(r, "repo") == "broken" {
				w.Write([]byte(`{"version":`))
				return
			}
			w.Write([]byte(`{"version":0,"description":"vec","loadable":[]}`))
		case "blob.bin":
			w.Write([]byte("payload"))
		default:
			http.NotFound(w, r)
		}
	})

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

func testClient(t *testing.T, serverURL, token string, opts ...Option) *Client {
	t.Helper()
	base := []Option{
		WithAPIURL(serverURL),
		WithDownloadURL(serverURL),
		WithToken(token),
		WithUserAgent("spm-test"),
	}
	return NewClient(append(base, opts...)...)
}

func TestLatestTag(t *testing.T) {
	f := newFakeGitHub(t)
	c := testClient(t, f.URL, "secret")

	tag, err := c.LatestTag(context.Background(), "asg017", "sqlite-vec")
	if err != nil {
		t.Fatalf("LatestTag() error: %v", err)
	}
	if tag != "v0.1.0" {
		t.Errorf("LatestTag() = %q, want v0.1.0", tag)
	}
	if f.lastAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want Bearer secret", f.lastAuth)
	}
	if f.lastUA != "spm-test" {
		t.Errorf("User-Agent = %q, want spm-test", f.lastUA)
	}
}

func TestLatestTagErrors(t *testing.T) {
	f := newFakeGitHub(t)
	c := testClient(t, f.URL, "")

	tests := []struct {
		repo      string
		malformed bool
		notFound  bool
	}{
		{repo: "missing", notFound: true},
		{repo: "notag", malformed: true},
		{repo: "numtag", malformed: true},
		{repo: "html", malformed: true},
	}

	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			_, err := c.LatestTag(context.Background(), "o", tt.repo)
			if err == nil {
				t.Fatal("LatestTag() should fail")
			}
			if IsMalformed(err) != tt.malformed {
				t.Errorf("IsMalformed(%v) = %v, want %v", err, IsMalformed(err), tt.malformed)
			}
			if errors.Is(err, integrations.ErrNotFound) != tt.notFound {
				t.Errorf("errors.Is(ErrNotFound) = %v, want %v", !tt.notFound, tt.notFound)
			}
			if !strings.Contains(err.Error(), "/repos/o/"+tt.repo) {
				t.Errorf("error should name the URL: %v", err)
			}
		})
	}
}

func TestLatestPrereleaseTag(t *testing.T) {
	f := newFakeGitHub(t)
	c := testClient(t, f.URL, "")

	tag, err := c.LatestPrereleaseTag(context.Background(), "asg017", "sqlite-vec")
	if err != nil {
		t.Fatalf("LatestPrereleaseTag() error: %v", err)
	}
	if tag != "v0.2.0-alpha.1" {
		t.Errorf("LatestPrereleaseTag() = %q, want first entry v0.2.0-alpha.1", tag)
	}

	_, err = c.LatestPrereleaseTag(context.Background(), "asg017", "empty")
	if !IsMalformed(err) {
		t.Errorf("empty release list should be malformed, got %v", err)
	}
}

func TestFetchManifest(t *testing.T) {
	f := newFakeGitHub(t)
	ch, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := testClient(t, f.URL, "secret", WithCache(ch, 0))

	type manifest struct {
		Version     int    `json:"version"`
		Description string `json:"description"`
	}

	for i := 0; i < 2; i++ {
		var m manifest
		if err := c.FetchManifest(context.Background(), "asg017", "sqlite-vec", "v0.1.0", false, &m); err != nil {
			t.Fatalf("FetchManifest() error: %v", err)
		}
		if m.Description != "vec" {
			t.Errorf("Description = %q, want vec", m.Description)
		}
	}
	if f.manifestHits != 1 {
		t.Errorf("manifest fetched %d times, want 1 (second read cached)", f.manifestHits)
	}
	if f.lastDLAuth != "" {
		t.Errorf("token leaked to download host: %q", f.lastDLAuth)
	}

	// refresh bypasses the cached copy
	var m manifest
	if err := c.FetchManifest(context.Background(), "asg017", "sqlite-vec", "v0.1.0", true, &m); err != nil {
		t.Fatalf("FetchManifest(refresh) error: %v", err)
	}
	if f.manifestHits != 2 {
		t.Errorf("manifest fetched %d times after refresh, want 2", f.manifestHits)
	}
}

func TestFetchManifestErrors(t *testing.T) {
	f := newFakeGitHub(t)
	c := testClient(t, f.URL, "")

	var v map[string]any
	err := c.FetchManifest(context.Background(), "o", "broken", "v1", false, &v)
	if !errors.Is(err, integrations.ErrDecode) {
		t.Errorf("broken manifest error = %v, want ErrDecode", err)
	}
	if !strings.Contains(err.Error(), f.URL+"/o/broken/releases/download/v1/spm.json") {
		t.Errorf("error should name the URL: %v", err)
	}

	err = c.FetchManifest(context.Background(), "o", "r", "v1", false, &json.RawMessage{})
	if err != nil {
		t.Errorf("FetchManifest() error: %v", err)
	}
}

func TestDownload(t *testing.T) {
	f := newFakeGitHub(t)
	c := testClient(t, f.URL, "secret")

	data, err := c.Download(context.Background(), AssetURL(c.RepoURL("o", "r"), "v1", "blob.bin"))
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("Download() = %q", data)
	}

	_, err = c.Download(context.Background(), AssetURL(c.RepoURL("o", "r"), "v1", "nope.zip"))
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("Download() missing asset error = %v, want ErrNotFound", err)
	}
}

func TestURLs(t *testing.T) {
	c := NewClient()
	if got := c.RepoURL("asg017", "sqlite-vec"); got != "https://github.com/asg017/sqlite-vec" {
		t.Errorf("RepoURL() = %q", got)
	}
	want := "https://github.com/asg017/sqlite-vec/releases/download/v0.1.0/spm.json"
	if got := c.ManifestURL("asg017", "sqlite-vec", "v0.1.0"); got != want {
		t.Errorf("ManifestURL() = %q, want %q", got, want)
	}
	if got := AssetURL("https://github.com/a/b/", "v1", "x.zip"); got != "https://github.com/a/b/releases/download/v1/x.zip" {
		t.Errorf("AssetURL() = %q", got)
	}
}

func TestValidateRepoRef(t *testing.T) {
	tests := []struct {
		owner, repo string
		wantErr     error
	}{
		{"asg017", "sqlite-vec", nil},
		{"a", "repo.name_1", nil},
		{"-bad", "repo", ErrInvalidOwner},
		{"", "repo", ErrInvalidOwner},
		{"owner", "", ErrInvalidRepo},
		{"owner", "..", ErrInvalidRepo},
		{"owner", "has space", ErrInvalidRepo},
	}

	for _, tt := range tests {
		err := ValidateRepoRef(tt.owner, tt.repo)
		if tt.wantErr == nil {
			if err != nil {
				t.Errorf("ValidateRepoRef(%q, %q) error = %v", tt.owner, tt.repo, err)
			}
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("ValidateRepoRef(%q, %q) error = %v, want %v", tt.owner, tt.repo, err, tt.wantErr)
		}
	}
}
