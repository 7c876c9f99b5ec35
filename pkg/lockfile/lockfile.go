// Package lockfile reads and writes spm.lock, the machine-generated record
// of exactly which release of each extension a project installs.
//
// The lockfile is self-contained: every entry embeds the release manifest
// it was built from, so installing from it needs no further metadata
// requests, only the asset downloads themselves.
package lockfile

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/matzehuels/spm/pkg/errors"
)

// Filename is the lockfile name inside a project directory.
const Filename = "spm.lock"

// FormatVersion is the only lockfile format version written or accepted.
const FormatVersion = 0

// Document is the decoded contents of spm.lock.
type Document struct {
	Version    int              `json:"version"`
	Extensions map[string]Entry `json:"extensions"`
}

// Entry pins one extension reference.
type Entry struct {
	Version             string          `json:"version"`
	Artifacts           []string        `json:"artifacts,omitempty"`
	ResolvedURL         string          `json:"resolved_url"`
	ResolvedManifestURL string          `json:"resolved_spm_json"`
	Integrity           string          `json:"integrity"`
	Manifest            ReleaseManifest `json:"spm_json"`
}

// UnmarshalJSON accepts both snake_case and camelCase keys.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw struct {
		Version      string           `json:"version"`
		Artifacts    []string         `json:"artifacts"`
		Integrity    string           `json:"integrity"`
		ResolvedURL  *string          `json:"resolved_url"`
		ResolvedSpm  *string          `json:"resolved_spm_json"`
		Manifest     *ReleaseManifest `json:"spm_json"`
		ResolvedURLC *string          `json:"resolvedUrl"`
		ResolvedSpmC *string          `json:"resolvedSpmJson"`
		ManifestC    *ReleaseManifest `json:"spmJson"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Entry{
		Version:             raw.Version,
		Artifacts:           raw.Artifacts,
		Integrity:           raw.Integrity,
		ResolvedURL:         first(raw.ResolvedURL, raw.ResolvedURLC),
		ResolvedManifestURL: first(raw.ResolvedSpm, raw.ResolvedSpmC),
	}
	if len(e.Artifacts) == 0 {
		// An empty list and a missing one both mean "no allow-list".
		e.Artifacts = nil
	}
	switch {
	case raw.Manifest != nil:
		e.Manifest = *raw.Manifest
	case raw.ManifestC != nil:
		e.Manifest = *raw.ManifestC
	}
	return nil
}

// New returns an empty document.
func New() *Document {
	return &Document{Version: FormatVersion, Extensions: map[string]Entry{}}
}

// Refs returns the locked references in sorted order.
func (d *Document) Refs() []string {
	refs := make([]string, 0, len(d.Extensions))
	for ref := range d.Extensions {
		refs = append(refs, ref)
	}
	slices.Sort(refs)
	return refs
}

// Parse decodes lockfile JSON.
func Parse(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	if d.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported lockfile version %d", d.Version)
	}
	if d.Extensions == nil {
		d.Extensions = map[string]Entry{}
	}
	return &d, nil
}

// Encode renders the document as indented JSON with a trailing newline.
// Map keys are sorted, so equal documents encode to equal bytes.
func (d *Document) Encode() ([]byte, error) {
	out := *d
	if out.Extensions == nil {
		out.Extensions = map[string]Entry{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Load reads the lockfile at path. A missing file fails with
// errors.ErrCodeMissingProjectFiles.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.New(errors.ErrCodeMissingProjectFiles, "%s not found; run \"spm install\" first", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLockfile, err, "read %s", path)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLockfile, err, "parse %s", path)
	}
	return d, nil
}

// Save writes the document to path, replacing any previous file. The new
// contents are written to a temporary file in the same directory first and
// renamed into place.
func (d *Document) Save(path string) error {
	data, err := d.Encode()
	if err != nil {
		return fmt.Errorf("encode lockfile: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+Filename+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
