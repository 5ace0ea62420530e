// Package output writes and reads the canonical tariff artifact.
package output

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/tariff-cli/internal/tariff"
)

// Format selects the artifact encoding.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, YAML:
		return f, nil
	default:
		return "", eris.Errorf("output: unknown format %q (valid: json, yaml)", s)
	}
}

// FormatForPath infers the format from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return JSON
	}
}

// Encode writes agg to w in the given format.
func Encode(w io.Writer, agg tariff.Aggregate, format Format, indent int) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		if indent > 0 {
			enc.SetIndent(indent)
		}
		if err := enc.Encode(agg); err != nil {
			return eris.Wrap(err, "output: encode yaml")
		}
		return eris.Wrap(enc.Close(), "output: close yaml encoder")
	case JSON:
		enc := json.NewEncoder(w)
		if indent > 0 {
			enc.SetIndent("", strings.Repeat(" ", indent))
		}
		return eris.Wrap(enc.Encode(agg), "output: encode json")
	default:
		return eris.Errorf("output: unknown format %q", format)
	}
}

// Writer persists artifacts through an afero filesystem.
type Writer struct {
	fs     afero.Fs
	format Format
	indent int
}

// NewWriter creates a Writer.
func NewWriter(fsys afero.Fs, format Format, indent int) *Writer {
	return &Writer{fs: fsys, format: format, indent: indent}
}

// Write encodes agg and atomically replaces path with it: the artifact is
// written to a temp file in the same directory and renamed into place, so a
// failure never leaves a partial file behind.
func (w *Writer) Write(path string, agg tariff.Aggregate) error {
	var buf bytes.Buffer
	if err := Encode(&buf, agg, w.format, w.indent); err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "output: create dir %s", dir)
	}

	tmp, err := afero.TempFile(w.fs, dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return eris.Wrap(err, "output: create temp file")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = w.fs.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		cleanup()
		return eris.Wrapf(err, "output: write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return eris.Wrapf(err, "output: close %s", tmpName)
	}
	if err := w.fs.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return eris.Wrapf(err, "output: chmod %s", tmpName)
	}
	if err := w.fs.Rename(tmpName, path); err != nil {
		cleanup()
		return eris.Wrapf(err, "output: rename to %s", path)
	}
	return nil
}

// Read loads an artifact, choosing the decoder from the file extension.
func Read(fsys afero.Fs, path string) (tariff.Aggregate, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, eris.Wrapf(err, "output: read %s", path)
	}

	var agg tariff.Aggregate
	switch FormatForPath(path) {
	case YAML:
		if err := yaml.Unmarshal(data, &agg); err != nil {
			return nil, eris.Wrapf(err, "output: decode yaml %s", path)
		}
	default:
		if err := json.Unmarshal(data, &agg); err != nil {
			return nil, eris.Wrapf(err, "output: decode json %s", path)
		}
	}
	return agg, nil
}
