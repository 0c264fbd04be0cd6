// Package parse converts between roml.Value and the interchange formats the
// command line reads and writes: JSON, YAML, TOML and MessagePack.
//
// Scope:
// - Object key order is preserved in every direction
// - Numbers are float64, as in the value model
//
// Non-goals:
// - Comments and formatting of the source document
// - YAML anchors beyond resolving aliases
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/robbyt/roml/parse/roml"
	"github.com/robbyt/roml/parse/toml"
)

var (
	ErrUnknownFormat = errors.New("parse: unknown format")
	ErrInvalidInput  = errors.New("parse: invalid input")
)

// Format is one interchange format.
type Format struct {
	Name       string
	Extensions []string
	Binary     bool

	decode func([]byte) (roml.Value, error)
	encode func(roml.Value) ([]byte, error)
}

// Decode parses data into a value.
func (f Format) Decode(data []byte) (roml.Value, error) {
	v, err := f.decode(data)
	if err != nil {
		return roml.Value{}, fmt.Errorf("%s: %w", f.Name, err)
	}
	return v, nil
}

// Encode renders v in this format.
func (f Format) Encode(v roml.Value) ([]byte, error) {
	data, err := f.encode(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Name, err)
	}
	return data, nil
}

var (
	JSON = Format{
		Name:       "json",
		Extensions: []string{".json"},
		decode:     decodeJSON,
		encode:     encodeJSON,
	}
	YAML = Format{
		Name:       "yaml",
		Extensions: []string{".yaml", ".yml"},
		decode:     decodeYAML,
		encode:     encodeYAML,
	}
	TOML = Format{
		Name:       "toml",
		Extensions: []string{".toml"},
		decode:     decodeTOML,
		encode:     toml.Marshal,
	}
	MsgPack = Format{
		Name:       "msgpack",
		Extensions: []string{".msgpack", ".mp"},
		Binary:     true,
		decode:     decodeMsgPack,
		encode:     encodeMsgPack,
	}
)

// Formats lists every supported format.
func Formats() []Format { return []Format{JSON, YAML, TOML, MsgPack} }

// LookupFormat finds a format by name, case-insensitively.
func LookupFormat(name string) (Format, error) {
	for _, f := range Formats() {
		if strings.EqualFold(f.Name, name) {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// DetectFormat picks a format from the extension of path.
func DetectFormat(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return Format{}, false
	}
	for _, f := range Formats() {
		for _, e := range f.Extensions {
			if e == ext {
				return f, true
			}
		}
	}
	return Format{}, false
}

func decodeTOML(data []byte) (roml.Value, error) {
	root, err := toml.Parse(bytes.NewReader(data))
	if err != nil {
		return roml.Value{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return toml.ToValue(root), nil
}
