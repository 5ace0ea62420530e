package source

import (
	"bytes"
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/afero"
)

// DecodeJSON reads path and decodes it into a T. Unknown fields are rejected so
// a catalog with a misspelled key fails loudly instead of producing zero values.
func DecodeJSON[T any](fsys afero.Fs, path string) (T, error) {
	var out T

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return out, eris.Wrapf(err, "source: read %s", path)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, eris.Wrapf(err, "source: decode %s", path)
	}
	return out, nil
}
