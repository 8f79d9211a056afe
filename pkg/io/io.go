package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/familytree/pkg/errors"
	"github.com/matzehuels/familytree/pkg/family"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "unknown format %q (want json or yaml)", s)
}

// FormatFromPath picks the format from path's extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// WriteData encodes d to w.
func WriteData(d *family.Data, w io.Writer, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}

// ExportData writes d to path in the format implied by its extension.
func ExportData(d *family.Data, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteData(d, f, FormatFromPath(path))
}

// ReadData decodes and validates a family document from r.
// It does not close r.
func ReadData(r io.Reader, f Format) (*family.Data, error) {
	d := family.NewData()
	var err error
	switch f {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(d)
	default:
		err = json.NewDecoder(r).Decode(d)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", f)
	}
	if d.Members == nil {
		d.Members = make(map[string]*family.Member)
	}
	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// ImportData reads the family document at path.
func ImportData(path string) (*family.Data, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	d, err := ReadData(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Validate checks member ids, link endpoints and the start member.
func Validate(d *family.Data) error {
	for id, m := range d.Members {
		if m == nil {
			return errors.New(errors.ErrCodeInvalidFormat, "member %s is empty", id)
		}
		if m.ID != id {
			return errors.New(errors.ErrCodeInvalidFormat, "member key %s holds id %q", id, m.ID)
		}
	}
	for _, l := range d.Links {
		src, dst := l.Source(), l.Target()
		if family.IsUnionID(src) == family.IsUnionID(dst) {
			return errors.New(errors.ErrCodeInvalidFormat, "link %s->%s must join a member and a union", src, dst)
		}
		for _, id := range []string{src, dst} {
			if !family.IsUnionID(id) && d.Members[id] == nil {
				return errors.New(errors.ErrCodeInvalidFormat, "link %s->%s references unknown member %s", src, dst, id)
			}
		}
	}
	if d.Start != "" && d.Members[d.Start] == nil {
		return errors.New(errors.ErrCodeInvalidFormat, "start member %s not found", d.Start)
	}
	return nil
}
