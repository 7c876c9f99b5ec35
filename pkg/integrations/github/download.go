package github

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/spm/pkg/integrations"
)

// FetchManifest downloads the release manifest published with a tag and
// decodes it into v. Decoded manifests are cached per (owner, repo, tag);
// refresh skips the cache read. A body that is not valid JSON for v fails
// with integrations.ErrDecode and is never cached.
func (c *Client) FetchManifest(ctx context.Context, owner, repo, version string, refresh bool, v any) error {
	url := c.ManifestURL(owner, repo, version)
	key := c.keyer.ManifestKey(owner, repo, version)

	return c.download.Cached(ctx, key, refresh, v, func() error {
		data, err := c.download.GetBytes(ctx, url)
		if err != nil {
			return fmt.Errorf("GET %s: %w", url, err)
		}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w: %v", url, integrations.ErrDecode, err)
		}
		return nil
	})
}

// Download fetches a release asset in full. The API token is never sent.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	data, err := c.download.GetBytesWithHeaders(ctx, url, map[string]string{
		"Accept": "application/octet-stream",
	})
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	return data, nil
}
