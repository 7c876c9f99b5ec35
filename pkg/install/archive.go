package install

import (
	"archive/tar"
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/matzehuels/spm/pkg/errors"
)

// MaxEntryBytes bounds the uncompressed size of a single extracted file.
const MaxEntryBytes = 512 << 20

// Format is an archive container format.
type Format int

const (
	FormatTarGz Format = iota + 1
	FormatZip
)

// String returns the conventional file suffix.
func (f Format) String() string {
	switch f {
	case FormatTarGz:
		return "tar.gz"
	case FormatZip:
		return "zip"
	default:
		return "unknown"
	}
}

// DetectFormat picks the archive format from an asset name's suffix.
func DetectFormat(assetName string) (Format, error) {
	switch {
	case strings.HasSuffix(assetName, ".tar.gz"), strings.HasSuffix(assetName, ".tgz"):
		return FormatTarGz, nil
	case strings.HasSuffix(assetName, ".zip"):
		return FormatZip, nil
	default:
		return 0, errors.New(errors.ErrCodeUnsupportedArchiveFormat,
			"unsupported archive format for %q: expected .tar.gz, .tgz or .zip", assetName)
	}
}

// ArtifactName is the allow-list key of an archive entry: its base name
// without the final extension ("vec0.so" -> "vec0").
func ArtifactName(base string) string {
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Extract unpacks the regular files of an archive into dir, flattening
// every entry to its base name. When allow is non-empty only entries whose
// ArtifactName is listed are written. Existing files are overwritten and a
// later entry with the same base name replaces an earlier one.
//
// It returns the base names written, in archive order.
func Extract(format Format, data []byte, allow []string, dir string) ([]string, error) {
	if len(allow) == 0 {
		allow = nil
	}
	var (
		files []string
		err   error
	)
	switch format {
	case FormatTarGz:
		files, err = extractTarGz(data, allow, dir)
	case FormatZip:
		files, err = extractZip(data, allow, dir)
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedArchiveFormat, "unsupported archive format %s", format)
	}
	if err != nil && errors.GetCode(err) == "" {
		err = errors.Wrap(errors.ErrCodeExtractionFailed, err, "extract %s archive", format)
	}
	return files, err
}

func extractTarGz(data []byte, allow []string, dir string) (_ []string, err error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating gzip reader: %w", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	var files []string
	tr := tar.NewReader(gz)
	for {
		hdr, nextErr := tr.Next()
		if stderrors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return files, fmt.Errorf("reading tar entry: %w", nextErr)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		base, ok, err := selectEntry(hdr.Name, hdr.Size, allow)
		if err != nil {
			return files, err
		}
		if !ok {
			continue
		}
		if err := writeEntry(dir, base, tr); err != nil {
			return files, err
		}
		files = append(files, base)
	}
	return files, nil
}

func extractZip(data []byte, allow []string, dir string) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}

	var files []string
	for _, f := range zr.File {
		if !f.Mode().IsRegular() {
			continue
		}

		base, ok, err := selectEntry(f.Name, int64(f.UncompressedSize64), allow)
		if err != nil {
			return files, err
		}
		if !ok {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return files, fmt.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		err = writeEntry(dir, base, rc)
		_ = rc.Close()
		if err != nil {
			return files, err
		}
		files = append(files, base)
	}
	return files, nil
}

// selectEntry flattens name and decides whether it is extracted.
func selectEntry(name string, size int64, allow []string) (string, bool, error) {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if allow != nil && !slices.Contains(allow, ArtifactName(base)) {
		return "", false, nil
	}
	if err := errors.ValidateEntryName(base); err != nil {
		return "", false, err
	}
	if size > MaxEntryBytes {
		return "", false, fmt.Errorf("entry %s is %d bytes, larger than the %d byte limit", name, size, MaxEntryBytes)
	}
	return base, true, nil
}

// writeEntry copies r into dir/base through a temp file and a rename, so a
// failed copy never leaves a truncated library behind.
func writeEntry(dir, base string, r io.Reader) (err error) {
	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", base, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, io.LimitReader(r, MaxEntryBytes+1))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("extracting %s: %w", base, err)
	}
	if n > MaxEntryBytes {
		return fmt.Errorf("entry %s exceeds the %d byte limit", base, MaxEntryBytes)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", base, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, base)); err != nil {
		return fmt.Errorf("install %s: %w", base, err)
	}
	return nil
}
