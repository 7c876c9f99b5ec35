// Package manifest reads and writes spm.toml, the user-edited list of
// extensions a project depends on.
//
//	description = "my project"
//	preloadDirectories = ["./vendor/lib"]
//
//	[extensions]
//	"gh:asg017/sqlite-vec" = "v0.1.0"
//	"gh:asg017/sqlite-lines" = { version = "v0.2.2", artifacts = ["lines0"] }
package manifest

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spm/pkg/errors"
)

// Filename is the manifest file name inside a project directory.
const Filename = "spm.toml"

// InitialContents is written by "spm init" for a new project.
const InitialContents = "\n[extensions]\n"

// Manifest is the decoded contents of spm.toml.
type Manifest struct {
	Description        string                `toml:"description,omitempty"`
	PreloadDirectories []string              `toml:"preloadDirectories,omitempty"`
	Extensions         map[string]Definition `toml:"extensions"`
}

// Load reads and decodes the manifest at path. A missing file fails with
// errors.ErrCodeMissingProjectFiles.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.New(errors.ErrCodeMissingProjectFiles, "%s not found; run \"spm init\" first", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read %s", path)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse %s", path)
	}
	return m, nil
}

// Parse decodes manifest TOML.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, err
	}
	if !md.IsDefined("extensions") {
		return nil, fmt.Errorf("missing [extensions] table")
	}
	if m.Extensions == nil {
		m.Extensions = map[string]Definition{}
	}
	for ref := range m.Extensions {
		if err := errors.ValidateReference(ref); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// Encode renders the manifest as TOML. Extensions are written in key order
// so the file diffs cleanly.
func (m *Manifest) Encode() ([]byte, error) {
	out := *m
	if out.Extensions == nil {
		out.Extensions = map[string]Definition{}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Save writes the manifest to path through a temporary file in the same
// directory that is renamed into place, so readers never see a partial file.
func (m *Manifest) Save(path string) error {
	data, err := m.Encode()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "encode %s", path)
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

// SetExtension inserts or replaces the definition stored under ref.
func (m *Manifest) SetExtension(ref string, def Definition) {
	if m.Extensions == nil {
		m.Extensions = map[string]Definition{}
	}
	m.Extensions[ref] = def
}

// Refs returns the extension references in sorted order.
func (m *Manifest) Refs() []string {
	refs := make([]string, 0, len(m.Extensions))
	for ref := range m.Extensions {
		refs = append(refs, ref)
	}
	slices.Sort(refs)
	return refs
}
