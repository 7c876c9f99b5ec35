package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/spm/pkg/integrations"
)

// ErrMissingTag is returned when a release response has no usable tag_name.
var ErrMissingTag = errors.New("release has no tag_name")

// release is the subset of the GitHub Release object spm reads. TagName is
// a pointer so a missing field can be told apart from an empty one.
type release struct {
	TagName    *string `json:"tag_name"`
	Prerelease bool    `json:"prerelease"`
	Draft      bool    `json:"draft"`
}

// LatestTag returns the tag of the latest stable release.
func (c *Client) LatestTag(ctx context.Context, owner, repo string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiURL, owner, repo)

	var data release
	if err := c.api.Get(ctx, url, &data); err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	return tagOf(url, data)
}

// LatestPrereleaseTag returns the tag of the most recent release of any kind,
// prereleases included. An empty release list yields ErrMissingTag.
func (c *Client) LatestPrereleaseTag(ctx context.Context, owner, repo string) (string, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=1", c.apiURL, owner, repo)

	var data []release
	if err := c.api.Get(ctx, url, &data); err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("GET %s: %w: no releases published", url, ErrMissingTag)
	}
	return tagOf(url, data[0])
}

func tagOf(url string, r release) (string, error) {
	if r.TagName == nil || *r.TagName == "" {
		return "", fmt.Errorf("GET %s: %w", url, ErrMissingTag)
	}
	return *r.TagName, nil
}

// IsMalformed reports whether err came from a response that arrived but
// could not be understood, as opposed to a transport or status failure.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMissingTag) || errors.Is(err, integrations.ErrDecode)
}
