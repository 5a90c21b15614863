package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/bundler/pkg/errors"
	"github.com/arthur-debert/bundler/pkg/logging"
	"github.com/spf13/afero"
)

// Format selects the encoding of the written manifest document
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown manifest format %q (want json or yaml)", s)
	}
}

// FileName returns the name of the manifest document for a format
func (f Format) FileName() string {
	if f == FormatYAML {
		return "manifest.yaml"
	}
	return "manifest.json"
}

// Encode encodes m in this format
func (f Format) Encode(m *Manifest) ([]byte, error) {
	if f == FormatYAML {
		return m.EncodeYAML()
	}
	return m.EncodeJSON()
}

// Emit writes every entry of m under dir followed by the manifest document,
// and returns the number of files written
func Emit(fs afero.Fs, dir string, m *Manifest, format Format) (int, error) {
	logger := logging.GetLogger("manifest.emit")

	written := 0
	for _, e := range m.Entries() {
		target := filepath.Join(dir, filepath.FromSlash(e.Path))
		if err := fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %s", e.Path)
		}
		if err := afero.WriteFile(fs, target, e.Content, 0o644); err != nil {
			return written, errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", e.Path)
		}
		written++
		logger.Trace().Str("path", e.Path).Int64("size", e.SizeBytes).Msg("Wrote output")
	}

	data, err := format.Encode(m)
	if err != nil {
		return written, err
	}
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return written, errors.Wrapf(err, errors.ErrDirCreate, "failed to create output directory %s", dir)
	}
	docPath := filepath.Join(dir, format.FileName())
	if err := afero.WriteFile(fs, docPath, data, 0o644); err != nil {
		return written, errors.Wrap(err, errors.ErrFileWrite, fmt.Sprintf("failed to write %s", format.FileName()))
	}

	logger.Debug().
		Str("dir", dir).
		Int("files", written).
		Msg("Emitted build output")
	return written, nil
}
