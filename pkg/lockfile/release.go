package lockfile

import (
	"encoding/json"
	"fmt"
)

// ReleaseManifest is spm.json, published by extension authors next to
// their release assets. It is immutable once published.
type ReleaseManifest struct {
	Version     int                `json:"version"`
	Description string             `json:"description"`
	Loadable    []PlatformArtifact `json:"loadable"`
}

// PlatformArtifact describes one downloadable archive for an os/cpu pair.
type PlatformArtifact struct {
	OS          string `json:"os"`
	CPU         string `json:"cpu"`
	AssetName   string `json:"asset_name"`
	AssetSHA256 string `json:"asset_sha256"`
	AssetMD5    string `json:"asset_md5"`
}

// UnmarshalJSON accepts both snake_case and camelCase asset keys.
func (p *PlatformArtifact) UnmarshalJSON(data []byte) error {
	var raw struct {
		OS          string  `json:"os"`
		CPU         string  `json:"cpu"`
		AssetName   *string `json:"asset_name"`
		AssetSHA256 *string `json:"asset_sha256"`
		AssetMD5    *string `json:"asset_md5"`
		AssetNameC  *string `json:"assetName"`
		AssetSHAC   *string `json:"assetSha256"`
		AssetMD5C   *string `json:"assetMd5"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = PlatformArtifact{
		OS:          raw.OS,
		CPU:         raw.CPU,
		AssetName:   first(raw.AssetName, raw.AssetNameC),
		AssetSHA256: first(raw.AssetSHA256, raw.AssetSHAC),
		AssetMD5:    first(raw.AssetMD5, raw.AssetMD5C),
	}
	return nil
}

// Find returns the first artifact whose os and cpu match exactly.
// Matching is case-sensitive.
func (m *ReleaseManifest) Find(os, cpu string) (PlatformArtifact, bool) {
	for _, p := range m.Loadable {
		if p.OS == os && p.CPU == cpu {
			return p, true
		}
	}
	return PlatformArtifact{}, false
}

// Duplicates returns every "os/cpu" pair listed more than once, in order
// of second appearance. Find uses the first entry for each of them.
func (m *ReleaseManifest) Duplicates() []string {
	seen := make(map[string]bool, len(m.Loadable))
	var dups []string
	for _, p := range m.Loadable {
		key := fmt.Sprintf("%s/%s", p.OS, p.CPU)
		if seen[key] {
			dups = append(dups, key)
			continue
		}
		seen[key] = true
	}
	return dups
}

func first(a, b *string) string {
	if a != nil {
		return *a
	}
	if b != nil {
		return *b
	}
	return ""
}
